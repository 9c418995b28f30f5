package controller

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"teamwear_shop/internal/api/dto"
	"teamwear_shop/internal/service"
)

// CheckoutController 结账与支付回调
type CheckoutController struct {
	checkoutService *service.CheckoutService
	paymentService  *service.PaymentService
	log             *zap.Logger
}

func NewCheckoutController(
	checkoutService *service.CheckoutService,
	paymentService *service.PaymentService,
	log *zap.Logger,
) *CheckoutController {
	return &CheckoutController{
		checkoutService: checkoutService,
		paymentService:  paymentService,
		log:             log,
	}
}

// CreatePreference 创建支付偏好
// @Summary 创建 Mercado Pago 支付偏好并返回跳转地址
// @Tags Checkout
// @Accept json
// @Produce json
// @Param body body dto.CreatePreferenceReq true "购物车与顾客信息"
// @Success 200 {object} dto.CreatePreferenceResp
// @Failure 400 {object} dto.ErrorResp
// @Failure 500 {object} dto.ErrorResp
// @Router /api/create-preference [post]
func (ctrl *CheckoutController) CreatePreference(c *gin.Context) {
	var req dto.CreatePreferenceReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	resp, err := ctrl.checkoutService.CreatePreference(c.Request.Context(), &req)
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// MercadoPagoWebhook 支付通知
// 签名错误返回 401 不重试；处理异常返回 500 由平台重投
// @Summary Mercado Pago 支付通知
// @Tags Checkout
// @Accept json
// @Param x-signature header string false "ts=...,v1=..."
// @Param x-request-id header string false "请求ID"
// @Success 200 {object} map[string]bool
// @Failure 401 {object} dto.ErrorResp
// @Router /api/webhooks/mercadopago [post]
func (ctrl *CheckoutController) MercadoPagoWebhook(c *gin.Context) {
	var notification dto.WebhookNotification
	if err := c.ShouldBindJSON(&notification); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, err)
		return
	}

	queryType := c.Query("type")
	if queryType == "" {
		queryType = c.Query("topic")
	}

	err := ctrl.paymentService.HandleWebhook(c.Request.Context(), service.WebhookInput{
		Signature:    c.GetHeader("x-signature"),
		RequestID:    c.GetHeader("x-request-id"),
		QueryDataID:  c.Query("data.id"),
		QueryType:    queryType,
		Notification: notification,
	})
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
