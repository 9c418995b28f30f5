package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookNotification_FlexibleIDs(t *testing.T) {
	var numeric WebhookNotification
	require.NoError(t, json.Unmarshal([]byte(`{"type":"payment","data":{"id":123456789}}`), &numeric))
	assert.Equal(t, FlexID("123456789"), numeric.Data.ID)

	var text WebhookNotification
	require.NoError(t, json.Unmarshal([]byte(`{"id":"abc","type":"payment","data":{"id":"987"}}`), &text))
	assert.Equal(t, FlexID("987"), text.Data.ID)
	assert.Equal(t, FlexID("abc"), text.ID)

	var empty WebhookNotification
	require.NoError(t, json.Unmarshal([]byte(`{"type":"merchant_order","data":{"id":null}}`), &empty))
	assert.Equal(t, FlexID(""), empty.Data.ID)
}
