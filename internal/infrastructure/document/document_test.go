package document

import (
	"bytes"
	"testing"
	"time"

	"github.com/sangkips/receipts-api/internal/domain/entity"
	"github.com/sangkips/receipts-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/datatypes"
)

func sampleReceipt() *entity.Receipt {
	method := enum.PaymentMethodCheque
	check := "000123"
	r := &entity.Receipt{
		ReceiptNumber: "RECIBO-00000001",
		CustomerName:  "José Pérez",
		PaymentMethod: &method,
		CheckNumber:   &check,
		Date:          datatypes.Date(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)),
		Status:        enum.ReceiptStatusCompleted,
		CreatedAt:     time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
	}
	r.SetItems([]entity.ReceiptItem{
		{Description: "Servicio de diseño", Quantity: decimal.RequireFromString("2"), UnitPrice: decimal.RequireFromString("100.00")},
		{Description: "Impresión", Quantity: decimal.RequireFromString("1"), UnitPrice: decimal.RequireFromString("150.00")},
	})
	return r
}

func TestReceiptPDF(t *testing.T) {
	out, err := ReceiptPDF(sampleReceipt(), entity.DefaultSettings())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestReceiptPDFIgnoresBrokenSignature(t *testing.T) {
	r := sampleReceipt()
	sig := "data:image/png;base64,not-base64!!"
	r.Signature = &sig

	out, err := ReceiptPDF(r, entity.DefaultSettings())
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestDecodeImage(t *testing.T) {
	data, typ, ok := decodeImage("data:image/jpeg;base64,aGVsbG8=")
	require.True(t, ok)
	assert.Equal(t, "JPG", typ)
	assert.Equal(t, []byte("hello"), data)

	_, typ, ok = decodeImage("aGVsbG8=")
	assert.True(t, ok)
	assert.Equal(t, "PNG", typ)

	_, _, ok = decodeImage("data:image/png;base64")
	assert.False(t, ok)
}

func TestReceiptsXLSX(t *testing.T) {
	out, err := ReceiptsXLSX([]entity.Receipt{*sampleReceipt()})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	number, err := f.GetCellValue(receiptsSheet, "A2")
	require.NoError(t, err)
	assert.Equal(t, "RECIBO-00000001", number)

	formula, err := f.GetCellFormula(receiptsSheet, "F3")
	require.NoError(t, err)
	assert.Equal(t, "SUM(F2:F2)", formula)
}
