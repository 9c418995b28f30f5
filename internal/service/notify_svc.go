package service

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"math"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"teamwear_shop/internal/event"
	"teamwear_shop/internal/model"
	"teamwear_shop/internal/repository"
	"teamwear_shop/pkg/mailer"
)

//go:embed templates/*.html
var templateFS embed.FS

var mailTemplates = template.Must(
	template.New("mail").
		Funcs(template.FuncMap{"money": formatMoney}).
		ParseFS(templateFS, "templates/*.html"),
)

// 邮件并发上限
const notifyConcurrency = 4

// ==================== NotifyService 订单通知 ====================

// NotifyService 订单邮件通知，发送失败只记日志
type NotifyService struct {
	sender   mailer.Sender
	clubRepo repository.ClubRepository
	linkRepo repository.ClubProductRepository
	storeURL string
	log      *zap.Logger
}

// NewNotifyService 创建通知服务
func NewNotifyService(
	sender mailer.Sender,
	clubRepo repository.ClubRepository,
	linkRepo repository.ClubProductRepository,
	storeURL string,
	log *zap.Logger,
) *NotifyService {
	return &NotifyService{
		sender:   sender,
		clubRepo: clubRepo,
		linkRepo: linkRepo,
		storeURL: strings.TrimRight(storeURL, "/"),
		log:      log,
	}
}

type mailData struct {
	Order         *model.Order
	StatusLabel   string
	PreviousLabel string
	ClubName      string
	RecipientName string
	TrackURL      string
}

type outgoing struct {
	to       string
	subject  string
	template string
	data     mailData
}

// OrderStatusChanged 按状态迁移发送通知
// 转为 paid 发送新订单邮件；其他迁移通知顾客，订单曾经付款时同时通知俱乐部
func (s *NotifyService) OrderStatusChanged(ctx context.Context, order *model.Order, previousStatus string) {
	if previousStatus == "" {
		previousStatus = model.OrderStatusPending
	}
	if order == nil || previousStatus == order.Status {
		return
	}

	newOrder := order.Status == model.OrderStatusPaid
	notifyClubs := newOrder || order.PaidAt != nil

	var clubs []model.Club
	if notifyClubs {
		var err error
		clubs, err = s.recipientClubs(ctx, order)
		if err != nil {
			// 俱乐部查询失败不影响顾客邮件
			s.log.Error("查询通知俱乐部失败", zap.String("order", order.OrderNumber), zap.Error(err))
		}
	}

	base := mailData{
		Order:         order,
		StatusLabel:   model.StatusLabel(order.Status),
		PreviousLabel: model.StatusLabel(previousStatus),
		ClubName:      pickupClubName(order, clubs),
		TrackURL:      s.trackURL(order),
	}

	var mails []outgoing
	if newOrder {
		if order.CustomerEmail != "" {
			mails = append(mails, outgoing{
				to:       order.CustomerEmail,
				subject:  fmt.Sprintf("Confirmamos tu pedido %s", order.OrderNumber),
				template: "order_new_customer.html",
				data:     base,
			})
		}
		for _, club := range clubs {
			data := base
			data.RecipientName = club.Name
			mails = append(mails, outgoing{
				to:       club.NotificationEmail,
				subject:  fmt.Sprintf("Nuevo pedido %s", order.OrderNumber),
				template: "order_new_club.html",
				data:     data,
			})
		}
	} else {
		if order.CustomerEmail != "" {
			mails = append(mails, outgoing{
				to:       order.CustomerEmail,
				subject:  fmt.Sprintf("Tu pedido %s: %s", order.OrderNumber, base.StatusLabel),
				template: "order_status.html",
				data:     base,
			})
		}
		for _, club := range clubs {
			data := base
			data.RecipientName = club.Name
			data.TrackURL = ""
			mails = append(mails, outgoing{
				to:       club.NotificationEmail,
				subject:  fmt.Sprintf("Pedido %s: %s", order.OrderNumber, base.StatusLabel),
				template: "order_status.html",
				data:     data,
			})
		}
	}

	s.send(ctx, mails)
}

// send 并发发送，单封失败不影响其他
func (s *NotifyService) send(ctx context.Context, mails []outgoing) {
	var g errgroup.Group
	g.SetLimit(notifyConcurrency)

	for _, m := range mails {
		g.Go(func() error {
			html, err := renderMail(m.template, m.data)
			if err != nil {
				s.log.Error("渲染邮件失败", zap.String("template", m.template), zap.Error(err))
				return nil
			}
			err = s.sender.Send(ctx, mailer.Message{
				To:      []string{m.to},
				Subject: m.subject,
				HTML:    html,
			})
			switch {
			case errors.Is(err, mailer.ErrNotConfigured):
				s.log.Warn("邮件未配置，跳过发送", zap.String("to", m.to))
			case err != nil:
				s.log.Error("发送邮件失败", zap.String("to", m.to), zap.String("subject", m.subject), zap.Error(err))
			}
			return nil
		})
	}
	_ = g.Wait()
}

// recipientClubs 自提俱乐部 + 订单商品关联的俱乐部，去重并跳过未配置邮箱的
func (s *NotifyService) recipientClubs(ctx context.Context, order *model.Order) ([]model.Club, error) {
	ids, err := s.linkRepo.ClubIDsForProducts(ctx, order.ItemProductIDs())
	if err != nil {
		return nil, err
	}
	if order.IsClubPickup() {
		ids = append(ids, *order.ClubID)
	}
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return nil, nil
	}

	clubs, err := s.clubRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	result := clubs[:0]
	for _, club := range clubs {
		if strings.TrimSpace(club.NotificationEmail) != "" {
			result = append(result, club)
		}
	}
	return result, nil
}

func (s *NotifyService) trackURL(order *model.Order) string {
	if s.storeURL == "" || order.CustomerEmail == "" {
		return ""
	}
	return fmt.Sprintf("%s/seguimiento/%s?email=%s",
		s.storeURL, url.PathEscape(order.OrderNumber), url.QueryEscape(order.CustomerEmail))
}

// ==================== 辅助函数 ====================

func pickupClubName(order *model.Order, clubs []model.Club) string {
	if !order.IsClubPickup() {
		return ""
	}
	for _, club := range clubs {
		if club.ID == *order.ClubID {
			return club.Name
		}
	}
	return ""
}

func renderMail(name string, data mailData) (string, error) {
	var buf bytes.Buffer
	if err := mailTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// formatMoney 阿根廷比索格式：$ 12.345,50
func formatMoney(v float64) string {
	cents := int64(math.Round(v * 100))
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	whole := fmt.Sprintf("%d", cents/100)

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	return fmt.Sprintf("%s$ %s,%02d", sign, b.String(), cents%100)
}

// ==================== 状态迁移副作用 ====================

// statusHooks 订单状态迁移后：发布事件 + 邮件通知
type statusHooks struct {
	notifier  *NotifyService
	publisher event.Publisher
}

func newStatusHooks(notifier *NotifyService, publisher event.Publisher) *statusHooks {
	if publisher == nil {
		publisher = event.NoopPublisher{}
	}
	return &statusHooks{notifier: notifier, publisher: publisher}
}

func (h *statusHooks) afterTransition(ctx context.Context, order *model.Order, previousStatus, source string) {
	if previousStatus == order.Status {
		return
	}
	h.publisher.PublishOrderStatus(ctx, event.OrderStatusChanged{
		OrderNumber:    order.OrderNumber,
		Status:         order.Status,
		PreviousStatus: previousStatus,
		PaymentStatus:  order.PaymentStatus,
		Source:         source,
		OccurredAt:     time.Now(),
	})
	if h.notifier != nil {
		h.notifier.OrderStatusChanged(ctx, order, previousStatus)
	}
}
