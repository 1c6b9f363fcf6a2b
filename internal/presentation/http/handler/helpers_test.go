package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/receipts-api/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONPath(t *testing.T) {
	tests := map[string]string{
		"CreateReceiptRequest.Items":                "items",
		"CreateReceiptRequest.Items[0].Description": "items[0].description",
		"CreateReceiptRequest.CustomerNIT":          "customer_nit",
		"RegisterRequest.FullName":                  "full_name",
		"Email":                                     "email",
	}
	for in, want := range tests {
		assert.Equal(t, want, jsonPath(in), in)
	}
}

func TestSkipExistingParam(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name    string
		form    string
		query   string
		want    bool
		wantErr bool
	}{
		{name: "default", want: true},
		{name: "form false", form: "false", want: false},
		{name: "query false", query: "0", want: false},
		{name: "form wins", form: "true", query: "false", want: true},
		{name: "invalid", form: "maybe", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := "/import"
			if tt.query != "" {
				target += "?skip_existing=" + tt.query
			}
			var body string
			if tt.form != "" {
				body = "skip_existing=" + tt.form
			}
			req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = req

			got, err := skipExistingParam(c)
			if tt.wantErr {
				assert.True(t, apperror.IsAppError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeBackup(t *testing.T) {
	_, err := decodeBackup([]byte("not json"))
	assert.Equal(t, http.StatusBadRequest, apperror.GetAppError(err).Code)

	_, err = decodeBackup([]byte(`{"version":"1.0"}`))
	assert.Equal(t, http.StatusBadRequest, apperror.GetAppError(err).Code)

	_, err = decodeBackup([]byte(`{"receipts": "nope"}`))
	assert.Equal(t, http.StatusBadRequest, apperror.GetAppError(err).Code)

	records, err := decodeBackup([]byte(`{"receipts":[{"receipt_number":"RECIBO-00000001"},{"items":[{"quantity":"mucho"}]}]}`))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.JSONEq(t, `{"receipt_number":"RECIBO-00000001"}`, string(records[0]))
}
