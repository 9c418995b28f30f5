package mailer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"teamwear_shop/pkg/utils"
)

// DefaultBaseURL Resend API 地址
const DefaultBaseURL = "https://api.resend.com"

// ErrNotConfigured 未配置 API key
var ErrNotConfigured = errors.New("mailer: resend api key not configured")

// Message 一封邮件
type Message struct {
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	ReplyTo string   `json:"reply_to,omitempty"`
}

// Sender 邮件发送接口
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// ResendSender 基于 Resend 的邮件发送
type ResendSender struct {
	http   *resty.Client
	from   string
	apiKey string
}

// NewResendSender 创建发送器，apiKey 为空时 Send 返回 ErrNotConfigured
func NewResendSender(baseURL, apiKey, from string, debug bool) *ResendSender {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &ResendSender{
		http:   utils.NewAPIClient(baseURL, 15*time.Second, debug).SetAuthToken(apiKey),
		from:   from,
		apiKey: apiKey,
	}
}

type sendReq struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	ReplyTo string   `json:"reply_to,omitempty"`
}

type sendResp struct {
	ID string `json:"id"`
}

type errorResp struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// Send 发送一封邮件
func (s *ResendSender) Send(ctx context.Context, msg Message) error {
	if s.apiKey == "" {
		return ErrNotConfigured
	}
	if len(msg.To) == 0 {
		return fmt.Errorf("mailer: no recipients")
	}

	var out sendResp
	var apiErr errorResp
	resp, err := s.http.R().
		SetContext(ctx).
		SetBody(sendReq{
			From:    s.from,
			To:      msg.To,
			Subject: msg.Subject,
			HTML:    msg.HTML,
			ReplyTo: msg.ReplyTo,
		}).
		SetResult(&out).
		SetError(&apiErr).
		Post("/emails")
	if err != nil {
		return fmt.Errorf("mailer: send: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("mailer: resend %d %s: %s", resp.StatusCode(), apiErr.Name, apiErr.Message)
	}
	return nil
}
