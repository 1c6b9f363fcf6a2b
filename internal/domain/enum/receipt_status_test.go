package enum

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReceiptStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    ReceiptStatus
		wantErr bool
	}{
		{"draft", ReceiptStatusDraft, false},
		{"COMPLETED", ReceiptStatusCompleted, false},
		{" Paid ", ReceiptStatusPaid, false},
		{"cancelled", ReceiptStatusCancelled, false},
		{"archived", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseReceiptStatus(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseReceiptStatusOrDefault(t *testing.T) {
	assert.Equal(t, ReceiptStatusCompleted, ParseReceiptStatusOrDefault("bogus"))
	assert.Equal(t, ReceiptStatusCompleted, ParseReceiptStatusOrDefault(""))
	assert.Equal(t, ReceiptStatusDraft, ParseReceiptStatusOrDefault("Draft"))
}

func TestReceiptStatusUnmarshalRejectsUnknown(t *testing.T) {
	var s ReceiptStatus
	assert.Error(t, json.Unmarshal([]byte(`"archived"`), &s))
	require.NoError(t, json.Unmarshal([]byte(`"paid"`), &s))
	assert.Equal(t, ReceiptStatusPaid, s)
}

func TestPaymentMethod(t *testing.T) {
	assert.True(t, PaymentMethodCheque.IsValid())
	assert.False(t, PaymentMethod("cheque").IsValid())
	assert.True(t, PaymentMethodTransferencia.UsesBankDetails())
	assert.False(t, PaymentMethodEfectivo.UsesBankDetails())
}
