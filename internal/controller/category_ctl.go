package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"teamwear_shop/internal/api/dto"
	"teamwear_shop/internal/service"
)

type CategoryController struct {
	categoryService *service.CategoryService
	log             *zap.Logger
}

func NewCategoryController(categoryService *service.CategoryService, log *zap.Logger) *CategoryController {
	return &CategoryController{categoryService: categoryService, log: log}
}

// List 分类列表
// @Summary 分类列表（未登录只返回启用的分类）
// @Tags Category
// @Produce json
// @Success 200 {array} model.Category
// @Router /api/categories [get]
func (ctrl *CategoryController) List(c *gin.Context) {
	categories, err := ctrl.categoryService.List(c.Request.Context(), scopeOf(c))
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

// Get 分类详情
// @Summary 分类详情
// @Tags Category
// @Param id path int true "分类ID"
// @Success 200 {object} model.Category
// @Router /api/categories/{id} [get]
func (ctrl *CategoryController) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	category, err := ctrl.categoryService.Get(c.Request.Context(), id, scopeOf(c))
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

// Create 创建分类
// @Summary 创建分类
// @Tags Category
// @Accept json
// @Security BearerAuth
// @Param body body dto.CreateCategoryReq true "分类"
// @Success 201 {object} model.Category
// @Router /api/categories [post]
func (ctrl *CategoryController) Create(c *gin.Context) {
	var req dto.CreateCategoryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	category, err := ctrl.categoryService.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

// Update 更新分类
// @Summary 部分更新分类
// @Tags Category
// @Accept json
// @Security BearerAuth
// @Param id path int true "分类ID"
// @Param body body dto.UpdateCategoryReq true "需要修改的字段"
// @Success 200 {object} model.Category
// @Router /api/categories/{id} [patch]
func (ctrl *CategoryController) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateCategoryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	category, err := ctrl.categoryService.Update(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

// Delete 删除分类
// @Summary 删除分类
// @Tags Category
// @Security BearerAuth
// @Param id path int true "分类ID"
// @Success 200 {object} dto.MessageResp
// @Router /api/categories/{id} [delete]
func (ctrl *CategoryController) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := ctrl.categoryService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResp{Message: "Categoría eliminada"})
}

// Move 与相邻分类交换位置
// @Summary 上移/下移分类
// @Tags Category
// @Accept json
// @Security BearerAuth
// @Param body body dto.SwapReq true "方向"
// @Success 200 {object} dto.MessageResp
// @Router /api/categories/reorder [patch]
func (ctrl *CategoryController) Move(c *gin.Context) {
	var req dto.SwapReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := ctrl.categoryService.Move(c.Request.Context(), &req); err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResp{Message: "Orden actualizado"})
}
