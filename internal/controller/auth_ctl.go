package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"teamwear_shop/internal/api/dto"
	"teamwear_shop/internal/middleware"
	"teamwear_shop/internal/service"
)

// AuthController 管理员认证
type AuthController struct {
	authService *service.AuthService
	log         *zap.Logger
}

func NewAuthController(authService *service.AuthService, log *zap.Logger) *AuthController {
	return &AuthController{authService: authService, log: log}
}

// Login 管理员登录
// @Summary 管理员登录
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body dto.LoginReq true "登录信息"
// @Success 200 {object} dto.LoginResp
// @Failure 401 {object} dto.ErrorResp
// @Router /api/auth/login [post]
func (ctrl *AuthController) Login(c *gin.Context) {
	var req dto.LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	resp, err := ctrl.authService.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Refresh 刷新 Token
// @Summary 使用 Refresh Token 换取新的 Token 对
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body dto.RefreshTokenReq true "Refresh Token"
// @Success 200 {object} dto.LoginResp
// @Failure 401 {object} dto.ErrorResp
// @Router /api/auth/refresh [post]
func (ctrl *AuthController) Refresh(c *gin.Context) {
	var req dto.RefreshTokenReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	resp, err := ctrl.authService.Refresh(c.Request.Context(), &req)
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Me 当前管理员
// @Summary 当前登录的管理员
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.AdminInfo
// @Router /api/auth/me [get]
func (ctrl *AuthController) Me(c *gin.Context) {
	info, err := ctrl.authService.Me(c.Request.Context(), middleware.GetAdminID(c))
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.JSON(http.StatusOK, info)
}
