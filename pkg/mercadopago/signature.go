package mercadopago

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

var (
	ErrSignatureMissing  = errors.New("x-signature header missing or malformed")
	ErrSignatureMismatch = errors.New("x-signature does not match")
)

// Signature x-signature 头解析结果，格式 "ts=...,v1=..."
type Signature struct {
	TS string
	V1 string
}

// ParseSignature 解析 x-signature 头
func ParseSignature(header string) (Signature, error) {
	var sig Signature
	for _, part := range strings.Split(header, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch strings.TrimSpace(key) {
		case "ts":
			sig.TS = strings.TrimSpace(value)
		case "v1":
			sig.V1 = strings.TrimSpace(value)
		}
	}
	if sig.TS == "" || sig.V1 == "" {
		return Signature{}, ErrSignatureMissing
	}
	return sig, nil
}

// Manifest 参与签名的字符串
func Manifest(dataID, requestID, ts string) string {
	return "id:" + dataID + ";request-id:" + requestID + ";ts:" + ts + ";"
}

// Sign 计算 manifest 的 HMAC-SHA256 十六进制摘要
func Sign(secret, manifest string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(manifest))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature 校验 webhook 签名
func VerifySignature(secret, header, requestID, dataID string) error {
	sig, err := ParseSignature(header)
	if err != nil {
		return err
	}
	expected := Sign(secret, Manifest(dataID, requestID, sig.TS))
	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(sig.V1))) {
		return ErrSignatureMismatch
	}
	return nil
}
