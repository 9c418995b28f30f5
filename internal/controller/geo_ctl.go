package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"teamwear_shop/internal/api/dto"
	"teamwear_shop/internal/service"
)

type GeoController struct {
	geoService *service.GeoService
	log        *zap.Logger
}

func NewGeoController(geoService *service.GeoService, log *zap.Logger) *GeoController {
	return &GeoController{geoService: geoService, log: log}
}

// Provinces 省份列表
// @Summary 阿根廷省份
// @Tags Geo
// @Success 200 {object} dto.GeoListResp
// @Router /api/geo/provinces [get]
func (ctrl *GeoController) Provinces(c *gin.Context) {
	data, err := ctrl.geoService.Provinces(c.Request.Context())
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.Header("Cache-Control", "public, max-age=86400")
	c.JSON(http.StatusOK, dto.GeoListResp{Data: data})
}

// Localities 城镇列表
// @Summary 某省份的城镇
// @Tags Geo
// @Param province query string true "省份名称或ID"
// @Success 200 {object} dto.GeoListResp
// @Router /api/geo/localities [get]
func (ctrl *GeoController) Localities(c *gin.Context) {
	data, err := ctrl.geoService.Localities(c.Request.Context(), c.Query("province"))
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.Header("Cache-Control", "public, max-age=86400")
	c.JSON(http.StatusOK, dto.GeoListResp{Data: data})
}
