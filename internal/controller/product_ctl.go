package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"teamwear_shop/internal/api/dto"
	"teamwear_shop/internal/service"
)

type ProductController struct {
	productService *service.ProductService
	log            *zap.Logger
}

func NewProductController(productService *service.ProductService, log *zap.Logger) *ProductController {
	return &ProductController{productService: productService, log: log}
}

// ==================== 查询接口 ====================

// List 商品列表
// @Summary 商品列表（未登录只返回启用的商品）
// @Tags Product
// @Produce json
// @Param category query string false "分类名称"
// @Param club query string false "俱乐部 slug 或 ID"
// @Success 200 {array} model.Product
// @Router /api/products [get]
func (ctrl *ProductController) List(c *gin.Context) {
	var q dto.ProductQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}

	products, err := ctrl.productService.List(c.Request.Context(), q, scopeOf(c))
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

// Get 商品详情
// @Summary 商品详情
// @Tags Product
// @Produce json
// @Param id path int true "商品ID"
// @Success 200 {object} model.Product
// @Failure 404 {object} dto.ErrorResp
// @Router /api/products/{id} [get]
func (ctrl *ProductController) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	product, err := ctrl.productService.Get(c.Request.Context(), id, scopeOf(c))
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// ==================== 管理接口 ====================

// Create 创建商品
// @Summary 创建商品
// @Tags Product
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CreateProductReq true "商品"
// @Success 201 {object} model.Product
// @Failure 400 {object} dto.ErrorResp
// @Router /api/products [post]
func (ctrl *ProductController) Create(c *gin.Context) {
	var req dto.CreateProductReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	product, err := ctrl.productService.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

// Update 更新商品
// @Summary 部分更新商品
// @Tags Product
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "商品ID"
// @Param body body dto.UpdateProductReq true "需要修改的字段"
// @Success 200 {object} model.Product
// @Router /api/products/{id} [patch]
func (ctrl *ProductController) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateProductReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	product, err := ctrl.productService.Update(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// Delete 删除商品
// @Summary 删除商品
// @Tags Product
// @Security BearerAuth
// @Param id path int true "商品ID"
// @Success 200 {object} dto.MessageResp
// @Router /api/products/{id} [delete]
func (ctrl *ProductController) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := ctrl.productService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResp{Message: "Producto eliminado"})
}

// Reorder 全量重排
// @Summary 按给定 order_index 重排商品
// @Tags Product
// @Accept json
// @Security BearerAuth
// @Param body body []dto.ReorderEntry true "排序"
// @Success 200 {object} dto.MessageResp
// @Router /api/products/reorder [patch]
func (ctrl *ProductController) Reorder(c *gin.Context) {
	var entries []dto.ReorderEntry
	if err := c.ShouldBindJSON(&entries); err != nil {
		badRequest(c, err)
		return
	}

	if err := ctrl.productService.Reorder(c.Request.Context(), entries); err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResp{Message: "Orden actualizado"})
}

// ==================== 所属俱乐部 ====================

// ListClubs 商品所属俱乐部
// @Summary 商品所属俱乐部
// @Tags Product
// @Security BearerAuth
// @Param id path int true "商品ID"
// @Success 200 {array} model.Club
// @Router /api/products/{id}/clubs [get]
func (ctrl *ProductController) ListClubs(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	clubs, err := ctrl.productService.ListClubs(c.Request.Context(), id)
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.JSON(http.StatusOK, clubs)
}

// SetClubs 替换商品所属俱乐部
// @Summary 替换商品所属俱乐部
// @Tags Product
// @Accept json
// @Security BearerAuth
// @Param id path int true "商品ID"
// @Param body body dto.SetProductClubsReq true "俱乐部ID列表"
// @Success 200 {array} model.Club
// @Router /api/products/{id}/clubs [put]
func (ctrl *ProductController) SetClubs(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.SetProductClubsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	clubs, err := ctrl.productService.SetClubs(c.Request.Context(), id, req.ClubIDs)
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.JSON(http.StatusOK, clubs)
}
