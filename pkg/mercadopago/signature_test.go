package mercadopago

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSignature(t *testing.T) {
	sig, err := ParseSignature("ts=1704908010, v1=abc123")
	require.NoError(t, err)
	assert.Equal(t, "1704908010", sig.TS)
	assert.Equal(t, "abc123", sig.V1)

	_, err = ParseSignature("ts=1704908010")
	assert.ErrorIs(t, err, ErrSignatureMissing)

	_, err = ParseSignature("")
	assert.ErrorIs(t, err, ErrSignatureMissing)
}

func TestManifest(t *testing.T) {
	assert.Equal(t, "id:123;request-id:req-1;ts:1700;", Manifest("123", "req-1", "1700"))
}

func TestVerifySignature(t *testing.T) {
	secret := "s3cr3t"
	v1 := Sign(secret, Manifest("987654", "req-42", "1704908010"))
	header := "ts=1704908010,v1=" + v1

	assert.NoError(t, VerifySignature(secret, header, "req-42", "987654"))

	// 任一参与签名的字段变化都应失败
	assert.ErrorIs(t, VerifySignature(secret, header, "req-43", "987654"), ErrSignatureMismatch)
	assert.ErrorIs(t, VerifySignature(secret, header, "req-42", "987655"), ErrSignatureMismatch)
	assert.ErrorIs(t, VerifySignature("other", header, "req-42", "987654"), ErrSignatureMismatch)
	assert.ErrorIs(t, VerifySignature(secret, "ts=1704908011,v1="+v1, "req-42", "987654"), ErrSignatureMismatch)
}
