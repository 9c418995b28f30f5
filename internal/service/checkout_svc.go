package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"teamwear_shop/internal/api/dto"
	"teamwear_shop/internal/model"
	"teamwear_shop/internal/repository"
	"teamwear_shop/pkg/mercadopago"
)

// 支付单 metadata 字段，webhook 补建订单时读取
const (
	metaCustomerName   = "customer_name"
	metaCustomerEmail  = "customer_email"
	metaCustomerPhone  = "customer_phone"
	metaCustomerDNI    = "customer_dni"
	metaAddress        = "address"
	metaProvince       = "province"
	metaLocality       = "locality"
	metaPostalCode     = "postal_code"
	metaDeliveryMethod = "delivery_method"
	metaClubID         = "club_id"
	metaNotes          = "notes"
	metaItems          = "items"
)

const (
	currencyARS        = "ARS"
	statementDescriber = "TEAMWEAR"
)

// ==================== CheckoutService 结账 ====================

// CheckoutService 创建支付偏好并落库待支付订单
type CheckoutService struct {
	gateway       mercadopago.Gateway // nil 表示未配置
	productRepo   repository.ProductRepository
	clubRepo      repository.ClubRepository
	orderRepo     repository.OrderRepository
	publicBaseURL string
	log           *zap.Logger
	now           func() time.Time
}

// NewCheckoutService 创建结账服务
func NewCheckoutService(
	gateway mercadopago.Gateway,
	productRepo repository.ProductRepository,
	clubRepo repository.ClubRepository,
	orderRepo repository.OrderRepository,
	publicBaseURL string,
	log *zap.Logger,
) *CheckoutService {
	return &CheckoutService{
		gateway:       gateway,
		productRepo:   productRepo,
		clubRepo:      clubRepo,
		orderRepo:     orderRepo,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		log:           log,
		now:           time.Now,
	}
}

// CreatePreference 按目录价格重新计价，创建支付偏好
// 订单写入失败只记日志，webhook 会补建
func (s *CheckoutService) CreatePreference(ctx context.Context, req *dto.CreatePreferenceReq) (*dto.CreatePreferenceResp, error) {
	if s.gateway == nil {
		return nil, ErrPaymentNotConfigured
	}

	items, err := s.priceItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	customer := req.CustomerData
	clubID, err := s.validateDelivery(ctx, &customer)
	if err != nil {
		return nil, err
	}

	ref := newExternalReference(s.now())
	order := &model.Order{
		OrderNumber:    ref,
		CustomerName:   strings.TrimSpace(customer.Name),
		CustomerEmail:  normalizeEmail(customer.Email),
		CustomerPhone:  strings.TrimSpace(customer.Phone),
		CustomerDNI:    strings.TrimSpace(customer.DNI),
		Address:        strings.TrimSpace(customer.Address),
		Province:       customer.Province,
		Locality:       customer.Locality,
		PostalCode:     strings.TrimSpace(customer.PostalCode),
		DeliveryMethod: customer.DeliveryMethod,
		ClubID:         clubID,
		Notes:          strings.TrimSpace(customer.Notes),
		Items:          items,
		Status:         model.OrderStatusPending,
	}
	order.TotalAmount = order.ComputeTotal()

	pref := s.buildPreference(order)
	resp, err := s.gateway.CreatePreference(ctx, pref)
	if err != nil {
		return nil, fmt.Errorf("创建支付偏好失败: %w", err)
	}

	order.MercadoPagoPreferenceID = resp.ID
	if err := s.orderRepo.Create(ctx, order); err != nil {
		s.log.Error("保存待支付订单失败，等待 webhook 补建",
			zap.String("order", ref),
			zap.String("preference_id", resp.ID),
			zap.Error(err),
		)
	}

	return &dto.CreatePreferenceResp{
		ID:          resp.ID,
		RedirectURL: resp.InitPoint,
		SandboxURL:  resp.SandboxInitPoint,
		OrderNumber: ref,
	}, nil
}

// priceItems 用目录价格重建购物车行
func (s *CheckoutService) priceItems(ctx context.Context, lines []dto.CartItem) ([]model.OrderItem, error) {
	if len(lines) == 0 {
		return nil, NewValidationError("El carrito está vacío")
	}

	ids := make([]int64, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}
	products, err := s.productRepo.ListByIDs(ctx, uniqueIDs(ids))
	if err != nil {
		return nil, fmt.Errorf("查询商品失败: %w", err)
	}
	byID := make(map[int64]*model.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	items := make([]model.OrderItem, 0, len(lines))
	for _, line := range lines {
		product, ok := byID[line.ProductID]
		if !ok || !product.Active {
			return nil, NewValidationError(fmt.Sprintf("El producto %d no está disponible", line.ProductID))
		}
		if line.Quantity < 1 {
			return nil, NewValidationError(fmt.Sprintf("Cantidad inválida para %s", product.Name))
		}
		price, ok := product.UnitPrice(line.Fabric)
		if !ok {
			return nil, NewValidationError(fmt.Sprintf("%s se cotiza a pedido y no puede comprarse online", product.Name))
		}
		items = append(items, model.OrderItem{
			ProductID:       product.ID,
			Name:            product.Name,
			Quantity:        line.Quantity,
			Price:           price,
			Size:            strings.TrimSpace(line.Size),
			Color:           strings.TrimSpace(line.Color),
			Fabric:          strings.TrimSpace(line.Fabric),
			Personalization: strings.TrimSpace(line.Personalization),
		})
	}
	return items, nil
}

// validateDelivery 自提需要有效俱乐部，邮寄需要地址
func (s *CheckoutService) validateDelivery(ctx context.Context, customer *dto.CustomerData) (*int64, error) {
	switch customer.DeliveryMethod {
	case model.DeliveryMethodClubPickup:
		if customer.ClubID == nil || *customer.ClubID <= 0 {
			return nil, NewValidationError("Seleccioná el club donde retirar el pedido")
		}
		club, err := s.clubRepo.GetByID(ctx, *customer.ClubID, repository.ScopePublic)
		if err != nil {
			return nil, fmt.Errorf("查询俱乐部失败: %w", err)
		}
		if club == nil {
			return nil, NewValidationError("El club seleccionado no existe")
		}
		id := club.ID
		return &id, nil
	case model.DeliveryMethodShipping:
		if strings.TrimSpace(customer.Address) == "" || customer.Province == "" || customer.Locality == "" {
			return nil, NewValidationError("Completá la dirección de envío")
		}
		return nil, nil
	default:
		return nil, NewValidationError("Método de entrega inválido")
	}
}

func (s *CheckoutService) buildPreference(order *model.Order) *mercadopago.Preference {
	items := make([]mercadopago.Item, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, mercadopago.Item{
			ID:          strconv.FormatInt(item.ProductID, 10),
			Title:       item.Name,
			Description: itemDescription(item),
			Quantity:    item.Quantity,
			CurrencyID:  currencyARS,
			UnitPrice:   item.Price,
		})
	}

	payer := &mercadopago.Payer{
		Name:  order.CustomerName,
		Email: order.CustomerEmail,
	}
	if order.CustomerPhone != "" {
		payer.Phone = &mercadopago.Phone{Number: order.CustomerPhone}
	}
	if order.CustomerDNI != "" {
		payer.Identification = &mercadopago.Identification{Type: "DNI", Number: order.CustomerDNI}
	}

	back := func(result string) string {
		return fmt.Sprintf("%s/checkout/%s?order=%s", s.publicBaseURL, result, order.OrderNumber)
	}

	return &mercadopago.Preference{
		Items: items,
		Payer: payer,
		BackURLs: mercadopago.BackURLs{
			Success: back("success"),
			Failure: back("failure"),
			Pending: back("pending"),
		},
		AutoReturn:        "approved",
		ExternalReference: order.OrderNumber,
		NotificationURL:   s.publicBaseURL + "/api/webhooks/mercadopago",
		StatementDesc:     statementDescriber,
		Metadata:          orderMetadata(order),
	}
}

// orderMetadata 随支付单传递的订单上下文
func orderMetadata(order *model.Order) map[string]interface{} {
	meta := map[string]interface{}{
		metaCustomerName:   order.CustomerName,
		metaCustomerEmail:  order.CustomerEmail,
		metaCustomerPhone:  order.CustomerPhone,
		metaCustomerDNI:    order.CustomerDNI,
		metaAddress:        order.Address,
		metaProvince:       order.Province,
		metaLocality:       order.Locality,
		metaPostalCode:     order.PostalCode,
		metaDeliveryMethod: order.DeliveryMethod,
		metaNotes:          order.Notes,
		metaItems:          order.Items,
	}
	if order.ClubID != nil {
		meta[metaClubID] = *order.ClubID
	}
	return meta
}

func itemDescription(item model.OrderItem) string {
	var parts []string
	if item.Size != "" {
		parts = append(parts, "Talle "+item.Size)
	}
	if item.Color != "" {
		parts = append(parts, item.Color)
	}
	if item.Fabric != "" {
		parts = append(parts, item.Fabric)
	}
	if item.Personalization != "" {
		parts = append(parts, "Personalizado: "+item.Personalization)
	}
	return strings.Join(parts, " · ")
}

// newExternalReference ORD-<毫秒时间戳>-<4位十六进制>
func newExternalReference(now time.Time) string {
	b := make([]byte, 2)
	_, _ = rand.Read(b)
	return fmt.Sprintf("ORD-%d-%s", now.UnixMilli(), hex.EncodeToString(b))
}
