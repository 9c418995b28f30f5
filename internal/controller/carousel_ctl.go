package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"teamwear_shop/internal/api/dto"
	"teamwear_shop/internal/service"
)

type CarouselController struct {
	carouselService *service.CarouselService
	log             *zap.Logger
}

func NewCarouselController(carouselService *service.CarouselService, log *zap.Logger) *CarouselController {
	return &CarouselController{carouselService: carouselService, log: log}
}

// List 首页轮播
// @Summary 轮播图列表（未登录只返回启用的）
// @Tags Carousel
// @Success 200 {array} model.CarouselImage
// @Router /api/carousel [get]
func (ctrl *CarouselController) List(c *gin.Context) {
	images, err := ctrl.carouselService.List(c.Request.Context(), scopeOf(c))
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.JSON(http.StatusOK, images)
}

// Create 新增轮播图
// @Summary 新增轮播图
// @Tags Carousel
// @Accept json
// @Security BearerAuth
// @Param body body dto.CreateCarouselReq true "轮播图"
// @Success 201 {object} model.CarouselImage
// @Router /api/carousel [post]
func (ctrl *CarouselController) Create(c *gin.Context) {
	var req dto.CreateCarouselReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	img, err := ctrl.carouselService.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.JSON(http.StatusCreated, img)
}

// Update 更新轮播图
// @Summary 部分更新轮播图
// @Tags Carousel
// @Accept json
// @Security BearerAuth
// @Param id path int true "轮播图ID"
// @Param body body dto.UpdateCarouselReq true "需要修改的字段"
// @Success 200 {object} model.CarouselImage
// @Router /api/carousel/{id} [patch]
func (ctrl *CarouselController) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateCarouselReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	img, err := ctrl.carouselService.Update(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.JSON(http.StatusOK, img)
}

// Delete 删除轮播图
// @Summary 删除轮播图
// @Tags Carousel
// @Security BearerAuth
// @Param id path int true "轮播图ID"
// @Success 200 {object} dto.MessageResp
// @Router /api/carousel/{id} [delete]
func (ctrl *CarouselController) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := ctrl.carouselService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResp{Message: "Imagen eliminada"})
}

// Move 与相邻轮播图交换位置
// @Summary 上移/下移轮播图
// @Tags Carousel
// @Accept json
// @Security BearerAuth
// @Param body body dto.SwapReq true "方向"
// @Success 200 {object} dto.MessageResp
// @Router /api/carousel/reorder [patch]
func (ctrl *CarouselController) Move(c *gin.Context) {
	var req dto.SwapReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := ctrl.carouselService.Move(c.Request.Context(), &req); err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResp{Message: "Orden actualizado"})
}
