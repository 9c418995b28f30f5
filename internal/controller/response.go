package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"teamwear_shop/internal/api/dto"
	"teamwear_shop/internal/middleware"
	"teamwear_shop/internal/repository"
	"teamwear_shop/internal/service"
)

const msgInternalError = "Error interno del servidor"

// respondError 把业务错误翻译为 {error, details?}
func respondError(c *gin.Context, log *zap.Logger, err error) {
	var vErr *service.ValidationError
	var cErr *service.ConflictError

	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, dto.ErrorResp{Error: vErr.Message})
	case errors.As(err, &cErr):
		c.JSON(http.StatusConflict, dto.ErrorResp{Error: cErr.Message})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResp{Error: err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, service.ErrUnauthorized),
		errors.Is(err, service.ErrInvalidSignature):
		c.JSON(http.StatusUnauthorized, dto.ErrorResp{Error: err.Error()})
	case errors.Is(err, service.ErrUserDisabled):
		c.JSON(http.StatusForbidden, dto.ErrorResp{Error: err.Error()})
	default:
		log.Error("请求处理失败",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		msg := msgInternalError
		if errors.Is(err, service.ErrPaymentNotConfigured) {
			msg = err.Error()
		}
		c.JSON(http.StatusInternalServerError, dto.ErrorResp{Error: msg, Details: err.Error()})
	}
}

// badRequest 参数绑定失败
func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, dto.ErrorResp{Error: "Datos inválidos", Details: err.Error()})
}

// parseID 解析路径参数中的 ID，失败时已写入 400
func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, dto.ErrorResp{Error: "ID inválido"})
		return 0, false
	}
	return id, true
}

// scopeOf 已登录管理员能看到未启用的记录
func scopeOf(c *gin.Context) repository.Scope {
	if middleware.IsAdmin(c) {
		return repository.ScopeAdmin
	}
	return repository.ScopePublic
}
