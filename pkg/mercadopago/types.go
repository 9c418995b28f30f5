package mercadopago

import "time"

// ==================== Preference ====================

// Item 支付单商品行
type Item struct {
	ID          string  `json:"id,omitempty"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	PictureURL  string  `json:"picture_url,omitempty"`
	Quantity    int     `json:"quantity"`
	CurrencyID  string  `json:"currency_id"`
	UnitPrice   float64 `json:"unit_price"`
}

// Payer 付款人
type Payer struct {
	Name           string          `json:"name,omitempty"`
	Email          string          `json:"email,omitempty"`
	Phone          *Phone          `json:"phone,omitempty"`
	Identification *Identification `json:"identification,omitempty"`
}

type Phone struct {
	Number string `json:"number,omitempty"`
}

type Identification struct {
	Type   string `json:"type,omitempty"`
	Number string `json:"number,omitempty"`
}

// BackURLs 支付完成后的回跳地址
type BackURLs struct {
	Success string `json:"success"`
	Failure string `json:"failure"`
	Pending string `json:"pending"`
}

// Preference 创建 checkout preference 的请求体
type Preference struct {
	Items             []Item                 `json:"items"`
	Payer             *Payer                 `json:"payer,omitempty"`
	BackURLs          BackURLs               `json:"back_urls"`
	AutoReturn        string                 `json:"auto_return,omitempty"`
	ExternalReference string                 `json:"external_reference"`
	NotificationURL   string                 `json:"notification_url,omitempty"`
	StatementDesc     string                 `json:"statement_descriptor,omitempty"`
	Metadata          map[string]interface{} `json:"metadata,omitempty"`
}

// PreferenceResponse 创建结果
type PreferenceResponse struct {
	ID               string `json:"id"`
	InitPoint        string `json:"init_point"`
	SandboxInitPoint string `json:"sandbox_init_point"`
}

// ==================== Payment ====================

// Payment 支付详情（只取对账需要的字段）
type Payment struct {
	ID                int64                  `json:"id"`
	Status            string                 `json:"status"`
	StatusDetail      string                 `json:"status_detail"`
	ExternalReference string                 `json:"external_reference"`
	TransactionAmount float64                `json:"transaction_amount"`
	PaymentMethodID   string                 `json:"payment_method_id"`
	PaymentTypeID     string                 `json:"payment_type_id"`
	DateCreated       *time.Time             `json:"date_created"`
	DateApproved      *time.Time             `json:"date_approved"`
	Payer             PaymentPayer           `json:"payer"`
	Metadata          map[string]interface{} `json:"metadata"`
}

// PaymentPayer 支付详情中的付款人
type PaymentPayer struct {
	Email          string         `json:"email"`
	FirstName      string         `json:"first_name"`
	LastName       string         `json:"last_name"`
	Phone          PaymentPhone   `json:"phone"`
	Identification Identification `json:"identification"`
}

type PaymentPhone struct {
	AreaCode string `json:"area_code"`
	Number   string `json:"number"`
}

// FullName 付款人姓名
func (p PaymentPayer) FullName() string {
	switch {
	case p.FirstName != "" && p.LastName != "":
		return p.FirstName + " " + p.LastName
	case p.FirstName != "":
		return p.FirstName
	default:
		return p.LastName
	}
}

// MetadataString 读取 metadata 中的字符串字段
// 支付平台会把 metadata 的 key 转为 snake_case，数字会被解析为 float64
func (p *Payment) MetadataString(key string) string {
	v, ok := p.Metadata[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return formatInt(int64(t))
		}
	}
	return ""
}

// MetadataInt64 读取 metadata 中的整数字段
func (p *Payment) MetadataInt64(key string) int64 {
	v, ok := p.Metadata[key]
	if !ok || v == nil {
		return 0
	}
	switch t := v.(type) {
	case float64:
		return int64(t)
	case string:
		return parseInt(t)
	}
	return 0
}

// SearchResult /v1/payments/search 响应
type SearchResult struct {
	Results []Payment `json:"results"`
	Paging  struct {
		Total  int `json:"total"`
		Limit  int `json:"limit"`
		Offset int `json:"offset"`
	} `json:"paging"`
}

// APIError 接口错误响应
type APIError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"message"`
	ErrorCode  string `json:"error"`
}

func (e *APIError) Error() string {
	return "mercadopago: " + itoa(e.StatusCode) + " " + e.ErrorCode + ": " + e.Message
}
