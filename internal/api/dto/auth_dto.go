package dto

import "time"

// LoginReq 登录请求
type LoginReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshTokenReq 刷新 Token
type RefreshTokenReq struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// AdminInfo 管理员信息
type AdminInfo struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// LoginResp 登录响应
type LoginResp struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         AdminInfo `json:"user"`
}
