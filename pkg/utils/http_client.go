package utils

import (
	"time"

	"github.com/go-resty/resty/v2"
)

// NewAPIClient 创建一个配置好基础地址、超时和 UA 的 Resty 客户端
// 支付、邮件、存储、地理查询统一从这里创建
func NewAPIClient(baseURL string, timeout time.Duration, debug bool) *resty.Client {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return resty.New().
		SetBaseURL(baseURL).
		SetDebug(debug).
		SetTimeout(timeout).
		SetHeader("User-Agent", "Teamwear-Shop/1.0").
		SetHeader("Accept", "application/json")
}
