package service

import (
	"errors"

	"gorm.io/gorm"
)

// ==================== 错误定义 ====================

// 对外消息使用西班牙语，直接展示给店铺用户
var (
	ErrNotFound             = errors.New("Recurso no encontrado")
	ErrUnauthorized         = errors.New("No autorizado")
	ErrInvalidCredentials   = errors.New("Email o contraseña incorrectos")
	ErrUserDisabled         = errors.New("Usuario deshabilitado")
	ErrInvalidToken         = errors.New("Token inválido o expirado")
	ErrPaymentNotConfigured = errors.New("Mercado Pago no está configurado")
	ErrInvalidSignature     = errors.New("Firma de webhook inválida")
)

// ValidationError 请求字段校验失败 (400)
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NewValidationError 创建校验错误
func NewValidationError(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

// ConflictError 唯一约束冲突 (409)
type ConflictError struct {
	Message string
	Err     error
}

func (e *ConflictError) Error() string { return e.Message }

func (e *ConflictError) Unwrap() error { return e.Err }

// storeError 把仓储层错误翻译为业务错误
// conflictMsg 为空时唯一约束冲突原样返回
func storeError(err error, conflictMsg string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey) && conflictMsg != "":
		return &ConflictError{Message: conflictMsg, Err: err}
	}
	return err
}
