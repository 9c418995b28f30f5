package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
)

// ==================== 审计上下文 ====================

// AuditContext Key
type auditContextKey struct{}

// AuditInfo 审计信息
type AuditInfo struct {
	AdminID int64
	Email   string
}

// WithAuditInfo 注入审计信息到 context
func WithAuditInfo(ctx context.Context, adminID int64, email string) context.Context {
	return context.WithValue(ctx, auditContextKey{}, &AuditInfo{
		AdminID: adminID,
		Email:   email,
	})
}

// GetAuditInfo 从 context 获取审计信息
func GetAuditInfo(ctx context.Context) *AuditInfo {
	if info, ok := ctx.Value(auditContextKey{}).(*AuditInfo); ok {
		return info
	}
	return nil
}

// AuditActor 操作人描述，未登录返回 "system"
func AuditActor(ctx context.Context) string {
	if info := GetAuditInfo(ctx); info != nil && info.Email != "" {
		return info.Email
	}
	return "system"
}

// ==================== Gin 中间件 ====================

// AuditContext 审计上下文中间件
// 将 JWT 中的管理员信息注入到 request context，供 service 层记录操作人
func AuditContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		if adminID := GetAdminID(c); adminID > 0 {
			ctx := WithAuditInfo(c.Request.Context(), adminID, GetAdminEmail(c))
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	}
}
