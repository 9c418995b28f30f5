package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"teamwear_shop/internal/api/dto"
	"teamwear_shop/internal/service"
)

type OrderController struct {
	orderService   *service.OrderService
	paymentService *service.PaymentService
	log            *zap.Logger
}

func NewOrderController(orderService *service.OrderService, paymentService *service.PaymentService, log *zap.Logger) *OrderController {
	return &OrderController{orderService: orderService, paymentService: paymentService, log: log}
}

// List 订单列表
// @Summary 订单列表
// @Tags Order
// @Security BearerAuth
// @Param status query string false "订单状态"
// @Param q query string false "订单号/姓名/邮箱"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} dto.PageResp[model.Order]
// @Router /api/orders [get]
func (ctrl *OrderController) List(c *gin.Context) {
	var req dto.ListOrdersReq
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err)
		return
	}
	page, err := ctrl.orderService.List(c.Request.Context(), &req)
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// Get 订单详情
// @Summary 订单详情
// @Tags Order
// @Security BearerAuth
// @Param id path int true "订单ID"
// @Success 200 {object} model.Order
// @Router /api/orders/{id} [get]
func (ctrl *OrderController) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	order, err := ctrl.orderService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// UpdateStatus 修改订单状态
// @Summary 修改订单状态并通知顾客
// @Tags Order
// @Accept json
// @Security BearerAuth
// @Param id path int true "订单ID"
// @Param body body dto.UpdateOrderStatusReq true "新状态"
// @Success 200 {object} model.Order
// @Router /api/orders/{id}/status [patch]
func (ctrl *OrderController) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateOrderStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	order, err := ctrl.orderService.UpdateStatus(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// Track 顾客查询订单状态
// @Summary 按订单号和邮箱查询订单状态
// @Tags Order
// @Param orderNumber path string true "订单号"
// @Param email query string true "下单邮箱"
// @Success 200 {object} dto.OrderTrackResp
// @Failure 404 {object} dto.ErrorResp
// @Router /api/orders/track/{orderNumber} [get]
func (ctrl *OrderController) Track(c *gin.Context) {
	resp, err := ctrl.orderService.Track(c.Request.Context(), c.Param("orderNumber"), c.Query("email"))
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Reconcile 立即执行一次待支付订单对账
// @Summary 手动触发对账（有冷却时间）
// @Tags Order
// @Security BearerAuth
// @Success 200 {object} dto.ReconcileResp
// @Failure 429 {object} dto.ErrorResp
// @Router /api/orders/reconcile [post]
func (ctrl *OrderController) Reconcile(c *gin.Context) {
	result, err := ctrl.paymentService.ReconcilePending(c.Request.Context())
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
