package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"teamwear_shop/internal/event"
	"teamwear_shop/internal/model"
	"teamwear_shop/internal/repository"
	"teamwear_shop/pkg/database"
	"teamwear_shop/pkg/mailer"
	"teamwear_shop/pkg/mercadopago"
)

// ==================== 测试辅助函数 ====================

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.InitDB("file::memory:", false, model.AllModels()...)
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	return db
}

type catalogRepos struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
	clubs      repository.ClubRepository
	links      repository.ClubProductRepository
	carousel   repository.CarouselRepository
	orders     repository.OrderRepository
	admins     repository.AdminUserRepository
}

func newCatalogRepos(db *gorm.DB) catalogRepos {
	return catalogRepos{
		products:   repository.NewProductRepository(db),
		categories: repository.NewCategoryRepository(db),
		clubs:      repository.NewClubRepository(db),
		links:      repository.NewClubProductRepository(db),
		carousel:   repository.NewCarouselRepository(db),
		orders:     repository.NewOrderRepository(db),
		admins:     repository.NewAdminUserRepository(db),
	}
}

func seedPricedProduct(t *testing.T, repo repository.ProductRepository, name string, price float64) *model.Product {
	t.Helper()
	p := &model.Product{
		Name:     name,
		Category: "Camisetas",
		Price:    &price,
		Sortable: model.Sortable{Active: true},
	}
	require.NoError(t, repo.Create(context.Background(), p))
	return p
}

func seedTestClub(t *testing.T, repo repository.ClubRepository, name, slug, email string) *model.Club {
	t.Helper()
	c := &model.Club{
		Name:              name,
		Slug:              slug,
		NotificationEmail: email,
		Sortable:          model.Sortable{Active: true},
	}
	require.NoError(t, repo.Create(context.Background(), c))
	return c
}

// ==================== Mock 实现 ====================

// fakeGateway 支付平台替身
type fakeGateway struct {
	mu          sync.Mutex
	payments    map[string]*mercadopago.Payment
	search      map[string][]mercadopago.Payment
	preferences []*mercadopago.Preference
	prefErr     error
	getCalls    int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		payments: map[string]*mercadopago.Payment{},
		search:   map[string][]mercadopago.Payment{},
	}
}

func (g *fakeGateway) CreatePreference(_ context.Context, pref *mercadopago.Preference) (*mercadopago.PreferenceResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.prefErr != nil {
		return nil, g.prefErr
	}
	g.preferences = append(g.preferences, pref)
	return &mercadopago.PreferenceResponse{
		ID:               "pref-123",
		InitPoint:        "https://www.mercadopago.com.ar/checkout/v1/redirect?pref_id=pref-123",
		SandboxInitPoint: "https://sandbox.mercadopago.com.ar/checkout/v1/redirect?pref_id=pref-123",
	}, nil
}

func (g *fakeGateway) GetPayment(_ context.Context, paymentID string) (*mercadopago.Payment, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.getCalls++
	p, ok := g.payments[paymentID]
	if !ok {
		return nil, &mercadopago.APIError{StatusCode: 404, Message: "Payment not found", ErrorCode: "not_found"}
	}
	cp := *p
	return &cp, nil
}

func (g *fakeGateway) SearchPaymentsByReference(_ context.Context, ref string) ([]mercadopago.Payment, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.search[ref], nil
}

// fakeSender 记录发送的邮件
type fakeSender struct {
	mu   sync.Mutex
	sent []mailer.Message
	fail map[string]bool
}

func (s *fakeSender) Send(_ context.Context, msg mailer.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail[msg.To[0]] {
		return errors.New("smtp down")
	}
	s.sent = append(s.sent, msg)
	return nil
}

func (s *fakeSender) recipients() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.sent))
	for _, m := range s.sent {
		out = append(out, m.To...)
	}
	sort.Strings(out)
	return out
}

// recordingPublisher 记录订单事件
type recordingPublisher struct {
	mu     sync.Mutex
	events []event.OrderStatusChanged
}

func (p *recordingPublisher) PublishOrderStatus(_ context.Context, evt event.OrderStatusChanged) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
}
