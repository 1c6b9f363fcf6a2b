package document

import (
	"fmt"
	"time"

	"github.com/sangkips/receipts-api/internal/domain/entity"
	"github.com/xuri/excelize/v2"
)

const receiptsSheet = "Recibos"

var receiptColumns = []interface{}{
	"No. recibo", "Fecha", "Cliente", "NIT", "Estado", "Total", "Creado",
}

// ReceiptsXLSX writes one row per receipt followed by a total row.
func ReceiptsXLSX(receipts []entity.Receipt) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", receiptsSheet); err != nil {
		return nil, err
	}

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return nil, err
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return nil, err
	}

	if err := f.SetSheetRow(receiptsSheet, "A1", &receiptColumns); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(receiptsSheet, "A1", "G1", header); err != nil {
		return nil, err
	}

	for i, r := range receipts {
		row := []interface{}{
			r.ReceiptNumber,
			time.Time(r.Date).Format("2006-01-02"),
			r.CustomerName,
			deref(r.CustomerNIT),
			r.Status.String(),
			r.Total.InexactFloat64(),
			r.CreatedAt.UTC().Format(time.RFC3339),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(receiptsSheet, cell, &row); err != nil {
			return nil, err
		}
	}

	last := len(receipts) + 1
	totalRow := last + 1
	if err := f.SetCellValue(receiptsSheet, fmt.Sprintf("E%d", totalRow), "TOTAL"); err != nil {
		return nil, err
	}
	if len(receipts) > 0 {
		if err := f.SetCellFormula(receiptsSheet, fmt.Sprintf("F%d", totalRow), fmt.Sprintf("SUM(F2:F%d)", last)); err != nil {
			return nil, err
		}
	}
	if err := f.SetCellStyle(receiptsSheet, "F2", fmt.Sprintf("F%d", totalRow), money); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(receiptsSheet, "A", "G", 18); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx: write receipts: %w", err)
	}
	return buf.Bytes(), nil
}

// Renderer exposes the package renderers behind a value the services can
// depend on through an interface.
type Renderer struct{}

// ReceiptPDF renders a single receipt.
func (Renderer) ReceiptPDF(r *entity.Receipt, settings *entity.Settings) ([]byte, error) {
	return ReceiptPDF(r, settings)
}

// ReceiptsXLSX renders a receipt listing.
func (Renderer) ReceiptsXLSX(receipts []entity.Receipt) ([]byte, error) {
	return ReceiptsXLSX(receipts)
}
