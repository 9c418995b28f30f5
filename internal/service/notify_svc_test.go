package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"teamwear_shop/internal/model"
)

func newTestNotify(t *testing.T) (*NotifyService, catalogRepos, *fakeSender) {
	t.Helper()
	repos := newCatalogRepos(setupTestDB(t))
	sender := &fakeSender{fail: map[string]bool{}}
	return NewNotifyService(sender, repos.clubs, repos.links, "https://tienda.example.com", zap.NewNop()), repos, sender
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "$ 0,00", formatMoney(0))
	assert.Equal(t, "$ 999,90", formatMoney(999.9))
	assert.Equal(t, "$ 12.345,50", formatMoney(12345.5))
	assert.Equal(t, "$ 1.000.000,00", formatMoney(1000000))
	assert.Equal(t, "-$ 10,00", formatMoney(-10))
}

func TestNotifyService_NewOrderFanOut(t *testing.T) {
	svc, repos, sender := newTestNotify(t)
	ctx := context.Background()

	camiseta := seedPricedProduct(t, repos.products, "Camiseta", 20000)
	short := seedPricedProduct(t, repos.products, "Short", 10000)
	norte := seedTestClub(t, repos.clubs, "Club Norte", "club-norte", "norte@example.com")
	sur := seedTestClub(t, repos.clubs, "Club Sur", "club-sur", "sur@example.com")
	sinEmail := seedTestClub(t, repos.clubs, "Club Sin Email", "club-sin-email", "")
	pickup := seedTestClub(t, repos.clubs, "Club Retiro", "club-retiro", "retiro@example.com")

	require.NoError(t, repos.links.Add(ctx, norte.ID, camiseta.ID))
	require.NoError(t, repos.links.Add(ctx, sur.ID, camiseta.ID))
	require.NoError(t, repos.links.Add(ctx, sur.ID, short.ID))
	require.NoError(t, repos.links.Add(ctx, sinEmail.ID, short.ID))

	paidAt := time.Now()
	order := &model.Order{
		OrderNumber:    "ORD-1",
		CustomerName:   "Lucía",
		CustomerEmail:  "lucia@example.com",
		DeliveryMethod: model.DeliveryMethodClubPickup,
		ClubID:         &pickup.ID,
		Items: []model.OrderItem{
			{ProductID: camiseta.ID, Name: "Camiseta", Quantity: 1, Price: 20000},
			{ProductID: short.ID, Name: "Short", Quantity: 2, Price: 10000},
		},
		TotalAmount: 40000,
		Status:      model.OrderStatusPaid,
		PaidAt:      &paidAt,
	}

	// 单个收件人失败不影响其他
	sender.fail["norte@example.com"] = true

	svc.OrderStatusChanged(ctx, order, model.OrderStatusPending)

	assert.Equal(t,
		[]string{"lucia@example.com", "retiro@example.com", "sur@example.com"},
		sender.recipients(),
	)

	for _, msg := range sender.sent {
		assert.Contains(t, msg.HTML, "ORD-1")
		assert.Contains(t, msg.HTML, "$ 40.000,00")
		if msg.To[0] == "lucia@example.com" {
			assert.Contains(t, msg.HTML, "Club Retiro")
			assert.Contains(t, msg.HTML, "/seguimiento/ORD-1?email=lucia%40example.com")
		}
	}
}

func TestNotifyService_StatusChangePolicy(t *testing.T) {
	svc, repos, sender := newTestNotify(t)
	ctx := context.Background()

	product := seedPricedProduct(t, repos.products, "Camiseta", 20000)
	club := seedTestClub(t, repos.clubs, "Club Norte", "club-norte", "norte@example.com")
	require.NoError(t, repos.links.Add(ctx, club.ID, product.ID))

	order := &model.Order{
		OrderNumber:   "ORD-2",
		CustomerEmail: "lucia@example.com",
		Items:         []model.OrderItem{{ProductID: product.ID, Name: "Camiseta", Quantity: 1, Price: 20000}},
		Status:        model.OrderStatusRejected,
	}

	// 未付款过的订单被拒：只通知顾客
	svc.OrderStatusChanged(ctx, order, model.OrderStatusPending)
	assert.Equal(t, []string{"lucia@example.com"}, sender.recipients())
	assert.True(t, strings.HasPrefix(sender.sent[0].Subject, "Tu pedido ORD-2"))
	assert.Contains(t, sender.sent[0].HTML, "Pago rechazado")

	// 已付款订单发货：顾客和俱乐部都通知
	sender.sent = nil
	paidAt := time.Now()
	order.PaidAt = &paidAt
	order.Status = model.OrderStatusShipped
	svc.OrderStatusChanged(ctx, order, model.OrderStatusPaid)
	assert.Equal(t, []string{"lucia@example.com", "norte@example.com"}, sender.recipients())

	// 状态未变：不发送
	sender.sent = nil
	svc.OrderStatusChanged(ctx, order, model.OrderStatusShipped)
	assert.Empty(t, sender.recipients())

	// 新建即为 pending：不发送
	order.Status = model.OrderStatusPending
	svc.OrderStatusChanged(ctx, order, "")
	assert.Empty(t, sender.recipients())
}
