package mercadopago

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"teamwear_shop/pkg/utils"
)

// DefaultBaseURL 生产环境 API 地址
const DefaultBaseURL = "https://api.mercadopago.com"

// Gateway 支付平台接口，service 层依赖它以便测试替换
type Gateway interface {
	CreatePreference(ctx context.Context, pref *Preference) (*PreferenceResponse, error)
	GetPayment(ctx context.Context, paymentID string) (*Payment, error)
	SearchPaymentsByReference(ctx context.Context, externalReference string) ([]Payment, error)
}

// Client Mercado Pago REST 客户端
type Client struct {
	http *resty.Client
}

// NewClient 创建客户端
func NewClient(baseURL, accessToken string, debug bool) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := utils.NewAPIClient(baseURL, 20*time.Second, debug).
		SetAuthToken(accessToken).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= 500
		})
	return &Client{http: c}
}

// CreatePreference 创建 checkout preference
// 每次请求带独立的幂等键，重试不会产生多个 preference
func (c *Client) CreatePreference(ctx context.Context, pref *Preference) (*PreferenceResponse, error) {
	var out PreferenceResponse
	var apiErr APIError

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("X-Idempotency-Key", pref.ExternalReference).
		SetBody(pref).
		SetResult(&out).
		SetError(&apiErr).
		Post("/checkout/preferences")
	if err != nil {
		return nil, fmt.Errorf("create preference: %w", err)
	}
	if resp.IsError() {
		apiErr.StatusCode = resp.StatusCode()
		return nil, &apiErr
	}
	return &out, nil
}

// GetPayment 按支付 ID 查询权威支付详情
func (c *Client) GetPayment(ctx context.Context, paymentID string) (*Payment, error) {
	var out Payment
	var apiErr APIError

	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", paymentID).
		SetResult(&out).
		SetError(&apiErr).
		Get("/v1/payments/{id}")
	if err != nil {
		return nil, fmt.Errorf("get payment %s: %w", paymentID, err)
	}
	if resp.IsError() {
		apiErr.StatusCode = resp.StatusCode()
		return nil, &apiErr
	}
	return &out, nil
}

// SearchPaymentsByReference 按 external_reference 搜索支付，最新的在前
func (c *Client) SearchPaymentsByReference(ctx context.Context, externalReference string) ([]Payment, error) {
	var out SearchResult
	var apiErr APIError

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"external_reference": externalReference,
			"sort":               "date_created",
			"criteria":           "desc",
		}).
		SetResult(&out).
		SetError(&apiErr).
		Get("/v1/payments/search")
	if err != nil {
		return nil, fmt.Errorf("search payments %s: %w", externalReference, err)
	}
	if resp.IsError() {
		apiErr.StatusCode = resp.StatusCode()
		return nil, &apiErr
	}
	return out.Results, nil
}

func itoa(n int) string { return strconv.Itoa(n) }

func formatInt(n int64) string { return strconv.FormatInt(n, 10) }

func parseInt(s string) int64 {
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}
