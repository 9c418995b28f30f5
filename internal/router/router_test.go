package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"teamwear_shop/internal/api/dto"
	"teamwear_shop/internal/config"
	"teamwear_shop/internal/controller"
	"teamwear_shop/internal/event"
	"teamwear_shop/internal/middleware"
	"teamwear_shop/internal/model"
	"teamwear_shop/internal/repository"
	"teamwear_shop/internal/service"
	"teamwear_shop/pkg/database"
	"teamwear_shop/pkg/georef"
	"teamwear_shop/pkg/mailer"
	"teamwear_shop/pkg/mercadopago"
	"teamwear_shop/pkg/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const (
	testBaseURL       = "http://tienda.test"
	testWebhookSecret = "whsec-test"
	testAdminEmail    = "admin@tienda.test"
	testAdminPassword = "s3cret-pass"
)

// ==================== 测试替身 ====================

type nopSender struct{}

func (nopSender) Send(context.Context, mailer.Message) error { return nil }

type stubGateway struct{}

func (stubGateway) CreatePreference(_ context.Context, pref *mercadopago.Preference) (*mercadopago.PreferenceResponse, error) {
	return &mercadopago.PreferenceResponse{
		ID:               "pref-1",
		InitPoint:        "https://mp.test/checkout?pref_id=pref-1",
		SandboxInitPoint: "https://sandbox.mp.test/checkout?pref_id=pref-1",
	}, nil
}

func (stubGateway) GetPayment(_ context.Context, id string) (*mercadopago.Payment, error) {
	return nil, &mercadopago.APIError{StatusCode: http.StatusNotFound, Message: "payment not found"}
}

func (stubGateway) SearchPaymentsByReference(context.Context, string) ([]mercadopago.Payment, error) {
	return nil, nil
}

type stubGeo struct{}

func (stubGeo) Provinces(context.Context) ([]georef.Entity, error) {
	return []georef.Entity{{ID: "02", Nombre: "Ciudad Autónoma de Buenos Aires"}, {ID: "06", Nombre: "Buenos Aires"}}, nil
}

func (stubGeo) Localities(_ context.Context, province string) ([]georef.Entity, error) {
	return []georef.Entity{{ID: "060007", Nombre: "Adolfo Alsina"}}, nil
}

// ==================== 测试环境 ====================

type testServer struct {
	t      *testing.T
	engine *gin.Engine
	token  string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWithGateway(t, stubGateway{})
}

// newTestServerWithGateway gateway 为 nil 时模拟支付未配置
func newTestServerWithGateway(t *testing.T, gateway mercadopago.Gateway) *testServer {
	t.Helper()
	db, err := database.InitDB("file::memory:", false, model.AllModels()...)
	require.NoError(t, err)

	log := zap.NewNop()
	uploadDir := t.TempDir()

	admins := repository.NewAdminUserRepository(db)
	products := repository.NewProductRepository(db)
	categories := repository.NewCategoryRepository(db)
	clubs := repository.NewClubRepository(db)
	links := repository.NewClubProductRepository(db)
	carousel := repository.NewCarouselRepository(db)
	orders := repository.NewOrderRepository(db)

	provider, err := service.NewStorageProvider(config.StorageConfig{Provider: "local", LocalDir: uploadDir}, testBaseURL)
	require.NoError(t, err)

	auth := service.NewAuthService(admins)
	notify := service.NewNotifyService(nopSender{}, clubs, links, testBaseURL, log)
	payment := service.NewPaymentService(gateway, orders, notify, event.NoopPublisher{}, testWebhookSecret, log)

	ctrls := &Controllers{
		Auth:     controller.NewAuthController(auth, log),
		Product:  controller.NewProductController(service.NewProductService(products, clubs, links), log),
		Category: controller.NewCategoryController(service.NewCategoryService(categories), log),
		Club:     controller.NewClubController(service.NewClubService(clubs, products, links), log),
		Carousel: controller.NewCarouselController(service.NewCarouselService(carousel), log),
		Upload:   controller.NewUploadController(service.NewUploadService(provider), log),
		Checkout: controller.NewCheckoutController(
			service.NewCheckoutService(gateway, products, clubs, orders, testBaseURL, log), payment, log),
		Order: controller.NewOrderController(service.NewOrderService(orders, notify, event.NoopPublisher{}, log), payment, log),
		Geo: controller.NewGeoController(
			service.NewGeoService(stubGeo{}, service.NewMemoryGeoCache(utils.NewTTLCache(time.Hour)), log), log),
	}

	_, err = auth.CreateAdmin(context.Background(), testAdminEmail, testAdminPassword, "Admin")
	require.NoError(t, err)

	ts := &testServer{
		t: t,
		engine: SetupRouter(ctrls, Options{
			Log:       log,
			UploadDir: uploadDir,
			Cooldown:  &middleware.CooldownLimiter{},
		}),
	}
	ts.token = ts.login()
	return ts
}

func (s *testServer) login() string {
	w := s.do(http.MethodPost, "/api/auth/login", dto.LoginReq{Email: testAdminEmail, Password: testAdminPassword}, false)
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	var resp dto.LoginResp
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.AccessToken
}

// do 发送 JSON 请求，admin=true 时带上 Bearer token
func (s *testServer) do(method, path string, body interface{}, admin bool) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if admin {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	return s.serve(req)
}

func (s *testServer) serve(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func (s *testServer) createProduct(name string, active bool) model.Product {
	s.t.Helper()
	price := 25000.0
	w := s.do(http.MethodPost, "/api/products", dto.CreateProductReq{
		Name:     name,
		Category: "Camisetas",
		Price:    &price,
		Active:   &active,
	}, true)
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	var p model.Product
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &p))
	return p
}

func (s *testServer) listProducts(admin bool) []model.Product {
	s.t.Helper()
	w := s.do(http.MethodGet, "/api/products", nil, admin)
	require.Equal(s.t, http.StatusOK, w.Code)
	var list []model.Product
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &list))
	return list
}

func productIDs(list []model.Product) []int64 {
	ids := make([]int64, 0, len(list))
	for _, p := range list {
		ids = append(ids, p.ID)
	}
	return ids
}

// ==================== 目录接口 ====================

func TestProducts_InactiveHiddenFromPublic(t *testing.T) {
	s := newTestServer(t)
	visible := s.createProduct("Camiseta titular", true)
	hidden := s.createProduct("Camiseta borrador", false)

	public := productIDs(s.listProducts(false))
	assert.Contains(t, public, visible.ID)
	assert.NotContains(t, public, hidden.ID)

	admin := productIDs(s.listProducts(true))
	assert.Contains(t, admin, visible.ID)
	assert.Contains(t, admin, hidden.ID)

	w := s.do(http.MethodGet, "/api/products/"+strconv.FormatInt(hidden.ID, 10), nil, false)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = s.do(http.MethodGet, "/api/products/"+strconv.FormatInt(hidden.ID, 10), nil, true)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestProducts_Reorder(t *testing.T) {
	s := newTestServer(t)
	first := s.createProduct("Uno", true)
	s.createProduct("Dos", true)
	third := s.createProduct("Tres", true)

	w := s.do(http.MethodPatch, "/api/products/reorder", []dto.ReorderEntry{
		{ID: third.ID, OrderIndex: 0},
		{ID: first.ID, OrderIndex: 1},
	}, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	ids := productIDs(s.listProducts(false))
	pos := map[int64]int{}
	for i, id := range ids {
		pos[id] = i
	}
	assert.Less(t, pos[third.ID], pos[first.ID])
}

func TestCatalog_WritesRequireAuth(t *testing.T) {
	s := newTestServer(t)

	cases := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/products"},
		{http.MethodPatch, "/api/products/1"},
		{http.MethodDelete, "/api/products/1"},
		{http.MethodPatch, "/api/products/reorder"},
		{http.MethodPost, "/api/categories"},
		{http.MethodPost, "/api/clubs"},
		{http.MethodPut, "/api/clubs/1/products"},
		{http.MethodPost, "/api/carousel"},
		{http.MethodPost, "/api/upload"},
		{http.MethodGet, "/api/orders"},
		{http.MethodPost, "/api/orders/reconcile"},
		{http.MethodGet, "/api/auth/me"},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			w := s.do(tc.method, tc.path, map[string]string{}, false)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestClubs_SlugCollision(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/clubs", dto.CreateClubReq{Name: "Club Atlético River"}, true)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var club model.Club
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &club))
	assert.Equal(t, "club-atletico-river", club.Slug)

	w = s.do(http.MethodPost, "/api/clubs", dto.CreateClubReq{Name: "Club Atletico River"}, true)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodGet, "/api/clubs/slug/club-atletico-river", nil, false)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestClubs_ProductAssociations(t *testing.T) {
	s := newTestServer(t)
	product := s.createProduct("Short", true)

	w := s.do(http.MethodPost, "/api/clubs", dto.CreateClubReq{Name: "Ñandú RC"}, true)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var club model.Club
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &club))
	clubPath := "/api/clubs/" + strconv.FormatInt(club.ID, 10) + "/products"

	w = s.do(http.MethodPost, clubPath, dto.AddClubProductReq{ProductID: product.ID}, true)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = s.do(http.MethodPost, clubPath, dto.AddClubProductReq{ProductID: product.ID}, true)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodGet, clubPath, nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	var list []model.Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, []int64{product.ID}, productIDs(list))

	w = s.do(http.MethodDelete, clubPath+"/"+strconv.FormatInt(product.ID, 10), nil, true)
	assert.Equal(t, http.StatusOK, w.Code)
}

// ==================== 上传 ====================

func multipartUpload(t *testing.T, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("folder", "products"))
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func (s *testServer) upload(filename string, data []byte) *httptest.ResponseRecorder {
	body, contentType := multipartUpload(s.t, filename, data)
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+s.token)
	return s.serve(req)
}

// pngBytes PNG 文件头加零填充
func pngBytes(size int) []byte {
	data := make([]byte, size)
	copy(data, []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"))
	return data
}

func TestUpload_Limits(t *testing.T) {
	s := newTestServer(t)

	w := s.upload("big.png", pngBytes(6<<20))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.upload("notes.txt", []byte("just some plain text, not an image"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.upload("ok.png", pngBytes(1<<20))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res service.UploadResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.NotEmpty(t, res.Path)

	u, err := url.Parse(res.URL)
	require.NoError(t, err)
	get := s.serve(httptest.NewRequest(http.MethodGet, u.Path, nil))
	assert.Equal(t, http.StatusOK, get.Code)
	assert.Equal(t, 1<<20, get.Body.Len())

	w = s.do(http.MethodDelete, "/api/upload?path="+url.QueryEscape(res.Path), nil, true)
	assert.Equal(t, http.StatusOK, w.Code)
	get = s.serve(httptest.NewRequest(http.MethodGet, u.Path, nil))
	assert.Equal(t, http.StatusNotFound, get.Code)
}

// ==================== 结账与支付 ====================

func TestCheckout_CreatePreference(t *testing.T) {
	s := newTestServer(t)
	product := s.createProduct("Camiseta", true)

	w := s.do(http.MethodPost, "/api/create-preference", dto.CreatePreferenceReq{
		Items: []dto.CartItem{{ProductID: product.ID, Quantity: 2, Size: "M"}},
		CustomerData: dto.CustomerData{
			Name:           "Ana Pérez",
			Email:          "ana@example.com",
			DeliveryMethod: "shipping",
			Address:        "Av. Siempreviva 742",
			Province:       "Buenos Aires",
			Locality:       "La Plata",
		},
	}, false)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp dto.CreatePreferenceResp
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "pref-1", resp.ID)
	assert.NotEmpty(t, resp.RedirectURL)
	assert.Regexp(t, `^ORD-\d+-[0-9a-f]{4}$`, resp.OrderNumber)

	// 顾客凭邮箱查询
	w = s.do(http.MethodGet, "/api/orders/track/"+resp.OrderNumber+"?email=ana@example.com", nil, false)
	assert.Equal(t, http.StatusOK, w.Code)
	w = s.do(http.MethodGet, "/api/orders/track/"+resp.OrderNumber+"?email=otro@example.com", nil, false)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCheckout_RejectsEmptyCart(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodPost, "/api/create-preference", map[string]interface{}{
		"items":        []interface{}{},
		"customerData": map[string]string{"name": "Ana", "email": "ana@example.com", "delivery_method": "shipping"},
	}, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhook_BadSignature(t *testing.T) {
	s := newTestServer(t)
	notification := map[string]interface{}{"type": "payment", "data": map[string]string{"id": "123"}}

	raw, err := json.Marshal(notification)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/mercadopago?data.id=123&type=payment", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-signature", "ts=1700000000,v1=deadbeef")
	req.Header.Set("x-request-id", "req-1")
	w := s.serve(req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// 缺少签名同样拒绝
	req = httptest.NewRequest(http.MethodPost, "/api/webhooks/mercadopago", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w = s.serve(req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWebhook_IgnoresNonPaymentTopics(t *testing.T) {
	s := newTestServer(t)
	raw := []byte(`{"type":"merchant_order","data":{"id":"77"}}`)

	ts := "1700000000"
	manifest := mercadopago.Manifest("77", "req-2", ts)
	sig := fmt.Sprintf("ts=%s,v1=%s", ts, mercadopago.Sign(testWebhookSecret, manifest))

	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/mercadopago?data.id=77&type=merchant_order", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-signature", sig)
	req.Header.Set("x-request-id", "req-2")
	w := s.serve(req)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"received":true}`, w.Body.String())
}

// ==================== 订单后台 ====================

func TestOrders_ReconcileCooldown(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/orders/reconcile", nil, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp dto.ReconcileResp
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Checked)

	w = s.do(http.MethodPost, "/api/orders/reconcile", nil, true)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestOrders_ReconcileFailureKeepsCooldownOpen(t *testing.T) {
	s := newTestServerWithGateway(t, nil)

	// 支付未配置时每次都是 500，不应被冷却挡成 429
	for i := 0; i < 2; i++ {
		w := s.do(http.MethodPost, "/api/orders/reconcile", nil, true)
		require.Equal(t, http.StatusInternalServerError, w.Code, w.Body.String())
		var resp dto.ErrorResp
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, service.ErrPaymentNotConfigured.Error(), resp.Error)
	}
}

func TestOrders_ListRequiresValidStatus(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/api/orders?status=paid", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	var page dto.PageResp[model.Order]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, int64(0), page.Total)

	w = s.do(http.MethodGet, "/api/orders?status=lost", nil, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// ==================== 地理数据 ====================

func TestGeo_Provinces(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/api/geo/provinces", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.GeoListResp
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 2)

	w = s.do(http.MethodGet, "/api/geo/localities", nil, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
