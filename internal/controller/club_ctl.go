package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"teamwear_shop/internal/api/dto"
	"teamwear_shop/internal/model"
	"teamwear_shop/internal/service"
)

type ClubController struct {
	clubService *service.ClubService
	log         *zap.Logger
}

func NewClubController(clubService *service.ClubService, log *zap.Logger) *ClubController {
	return &ClubController{clubService: clubService, log: log}
}

// ==================== 查询接口 ====================

// List 俱乐部列表
// @Summary 俱乐部列表（未登录只返回启用的）
// @Tags Club
// @Success 200 {array} model.Club
// @Router /api/clubs [get]
func (ctrl *ClubController) List(c *gin.Context) {
	clubs, err := ctrl.clubService.List(c.Request.Context(), scopeOf(c))
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.JSON(http.StatusOK, clubs)
}

// Get 俱乐部详情，id 为数字或 slug
// @Summary 俱乐部详情
// @Tags Club
// @Param id path string true "俱乐部ID或slug"
// @Success 200 {object} model.Club
// @Failure 404 {object} dto.ErrorResp
// @Router /api/clubs/{id} [get]
func (ctrl *ClubController) Get(c *gin.Context) {
	ref := c.Param("id")
	ctx := c.Request.Context()

	var club *model.Club
	var err error
	if id, parseErr := strconv.ParseInt(ref, 10, 64); parseErr == nil {
		club, err = ctrl.clubService.Get(ctx, id, scopeOf(c))
	} else {
		club, err = ctrl.clubService.GetBySlug(ctx, ref, scopeOf(c))
	}
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.JSON(http.StatusOK, club)
}

// GetBySlug 按 slug 查询俱乐部
// @Summary 按 slug 查询俱乐部
// @Tags Club
// @Param slug path string true "slug"
// @Success 200 {object} model.Club
// @Failure 404 {object} dto.ErrorResp
// @Router /api/clubs/slug/{slug} [get]
func (ctrl *ClubController) GetBySlug(c *gin.Context) {
	club, err := ctrl.clubService.GetBySlug(c.Request.Context(), c.Param("slug"), scopeOf(c))
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.JSON(http.StatusOK, club)
}

// ==================== 管理接口 ====================

// Create 创建俱乐部
// @Summary 创建俱乐部（未提供 slug 时由名称生成）
// @Tags Club
// @Accept json
// @Security BearerAuth
// @Param body body dto.CreateClubReq true "俱乐部"
// @Success 201 {object} model.Club
// @Failure 409 {object} dto.ErrorResp
// @Router /api/clubs [post]
func (ctrl *ClubController) Create(c *gin.Context) {
	var req dto.CreateClubReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	club, err := ctrl.clubService.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.JSON(http.StatusCreated, club)
}

// Update 更新俱乐部
// @Summary 部分更新俱乐部
// @Tags Club
// @Accept json
// @Security BearerAuth
// @Param id path int true "俱乐部ID"
// @Param body body dto.UpdateClubReq true "需要修改的字段"
// @Success 200 {object} model.Club
// @Failure 409 {object} dto.ErrorResp
// @Router /api/clubs/{id} [patch]
func (ctrl *ClubController) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateClubReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	club, err := ctrl.clubService.Update(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.JSON(http.StatusOK, club)
}

// Delete 删除俱乐部
// @Summary 删除俱乐部及其商品关联
// @Tags Club
// @Security BearerAuth
// @Param id path int true "俱乐部ID"
// @Success 200 {object} dto.MessageResp
// @Router /api/clubs/{id} [delete]
func (ctrl *ClubController) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := ctrl.clubService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResp{Message: "Club eliminado"})
}

// Move 与相邻俱乐部交换位置
// @Summary 上移/下移俱乐部
// @Tags Club
// @Accept json
// @Security BearerAuth
// @Param body body dto.SwapReq true "方向"
// @Success 200 {object} dto.MessageResp
// @Router /api/clubs/reorder [patch]
func (ctrl *ClubController) Move(c *gin.Context) {
	var req dto.SwapReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := ctrl.clubService.Move(c.Request.Context(), &req); err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResp{Message: "Orden actualizado"})
}

// ==================== 俱乐部商品 ====================

// ListProducts 俱乐部商品
// @Summary 俱乐部商品（按关联顺序）
// @Tags Club
// @Param id path int true "俱乐部ID"
// @Success 200 {array} model.Product
// @Router /api/clubs/{id}/products [get]
func (ctrl *ClubController) ListProducts(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	products, err := ctrl.clubService.ListProducts(c.Request.Context(), id, scopeOf(c))
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

// SetProducts 替换俱乐部商品
// @Summary 替换俱乐部商品集合，顺序即展示顺序
// @Tags Club
// @Accept json
// @Security BearerAuth
// @Param id path int true "俱乐部ID"
// @Param body body dto.SetClubProductsReq true "商品ID列表"
// @Success 200 {array} model.Product
// @Router /api/clubs/{id}/products [put]
func (ctrl *ClubController) SetProducts(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.SetClubProductsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	products, err := ctrl.clubService.SetProducts(c.Request.Context(), id, req.ProductIDs)
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

// AddProduct 添加单个商品
// @Summary 添加俱乐部商品
// @Tags Club
// @Accept json
// @Security BearerAuth
// @Param id path int true "俱乐部ID"
// @Param body body dto.AddClubProductReq true "商品ID"
// @Success 201 {object} dto.MessageResp
// @Failure 409 {object} dto.ErrorResp
// @Router /api/clubs/{id}/products [post]
func (ctrl *ClubController) AddProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.AddClubProductReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := ctrl.clubService.AddProduct(c.Request.Context(), id, req.ProductID); err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.JSON(http.StatusCreated, dto.MessageResp{Message: "Producto asociado"})
}

// RemoveProduct 移除单个商品
// @Summary 移除俱乐部商品
// @Tags Club
// @Security BearerAuth
// @Param id path int true "俱乐部ID"
// @Param productId path int true "商品ID"
// @Success 200 {object} dto.MessageResp
// @Router /api/clubs/{id}/products/{productId} [delete]
func (ctrl *ClubController) RemoveProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	productID, ok := parseID(c, "productId")
	if !ok {
		return
	}
	if err := ctrl.clubService.RemoveProduct(c.Request.Context(), id, productID); err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResp{Message: "Producto desasociado"})
}
