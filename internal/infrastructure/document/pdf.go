// Package document renders receipts into PDF and spreadsheet files.
package document

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/sangkips/receipts-api/internal/domain/entity"
	"github.com/sangkips/receipts-api/pkg/amountwords"
)

const (
	pageMargin = 12.0
	lineHeight = 6.0
)

// ReceiptPDF renders one receipt on an A5 page. Fields hidden in the
// settings' visibility map are left out.
func ReceiptPDF(r *entity.Receipt, settings *entity.Settings) ([]byte, error) {
	vis := settings.Visibility()

	pdf := fpdf.New("P", "mm", "A5", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.AddPage()

	// Core fonts are cp1252; accented Spanish text needs translating.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 2*pageMargin

	// Header
	pdf.SetFont("Helvetica", "B", 15)
	pdf.CellFormat(contentW, 8, tr(settings.CompanyName), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.MultiCell(contentW, 4.5, tr(settings.CompanyInfo), "", "C", false)
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(contentW/2, 7, tr(settings.ReceiptTitle), "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(contentW/2, 7, "No. "+r.ReceiptNumber, "", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW/2, 5, "Fecha: "+time.Time(r.Date).Format("02/01/2006"), "", 0, "L", false, 0, "")
	pdf.CellFormat(contentW/2, 5, tr("Total: Q "+r.Total.StringFixed(2)), "", 1, "R", false, 0, "")
	pdf.Ln(2)
	pdf.Line(pageMargin, pdf.GetY(), pageW-pageMargin, pdf.GetY())
	pdf.Ln(3)

	field := func(label, value string) {
		if strings.TrimSpace(value) == "" {
			return
		}
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(32, lineHeight, tr(label), "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.MultiCell(contentW-32, lineHeight, tr(value), "", "L", false)
	}

	field("Recibí de:", r.CustomerName)
	field("NIT:", deref(r.CustomerNIT))
	if vis.Institution && (r.Institution == nil || *r.Institution != r.CustomerName) {
		field("Institución:", deref(r.Institution))
	}
	if vis.CustomerPhone {
		field("Teléfono:", deref(r.CustomerPhone))
	}
	if vis.CustomerEmail {
		field("Correo:", deref(r.CustomerEmail))
	}
	if vis.CustomerAddress {
		field("Dirección:", deref(r.CustomerAddress))
	}
	if vis.AmountInWords {
		field("La cantidad de:", amountwords.Spanish(r.Total))
	}
	if vis.Concept {
		field("Concepto:", deref(r.Concept))
	}

	if vis.LineItems && len(r.Items) > 0 {
		pdf.Ln(2)
		itemsTable(pdf, tr, r, contentW)
	}

	if vis.PaymentMethod && r.PaymentMethod != nil {
		pdf.Ln(2)
		field("Forma de pago:", string(*r.PaymentMethod))
		field("No. de cheque:", deref(r.CheckNumber))
		field("Cuenta:", deref(r.BankAccount))
	}
	if vis.Notes {
		field("Notas:", deref(r.Notes))
	}

	if vis.Signature {
		pdf.Ln(4)
		signatureBlock(pdf, tr, r, contentW)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: render receipt %s: %w", r.ReceiptNumber, err)
	}
	return buf.Bytes(), nil
}

func itemsTable(pdf *fpdf.Fpdf, tr func(string) string, r *entity.Receipt, contentW float64) {
	colDesc := contentW * 0.52
	colQty := contentW * 0.14
	colPrice := contentW * 0.17
	colTotal := contentW * 0.17

	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetFillColor(235, 235, 235)
	pdf.CellFormat(colDesc, 6, tr("Descripción"), "1", 0, "L", true, 0, "")
	pdf.CellFormat(colQty, 6, "Cant.", "1", 0, "C", true, 0, "")
	pdf.CellFormat(colPrice, 6, "P. unit.", "1", 0, "R", true, 0, "")
	pdf.CellFormat(colTotal, 6, "Total", "1", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	for _, item := range r.Items {
		desc := item.Description
		if len([]rune(desc)) > 60 {
			desc = string([]rune(desc)[:59]) + "..."
		}
		pdf.CellFormat(colDesc, 6, tr(desc), "1", 0, "L", false, 0, "")
		pdf.CellFormat(colQty, 6, item.Quantity.StringFixed(2), "1", 0, "C", false, 0, "")
		pdf.CellFormat(colPrice, 6, item.UnitPrice.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(colTotal, 6, item.Total.StringFixed(2), "1", 1, "R", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(colDesc+colQty+colPrice, 7, "TOTAL", "1", 0, "R", false, 0, "")
	pdf.CellFormat(colTotal, 7, "Q "+r.Total.StringFixed(2), "1", 1, "R", false, 0, "")
}

func signatureBlock(pdf *fpdf.Fpdf, tr func(string) string, r *entity.Receipt, contentW float64) {
	x := pdf.GetX() + contentW/2
	width := contentW / 2

	if r.Signature != nil {
		if data, imgType, ok := decodeImage(*r.Signature); ok {
			name := "signature-" + r.ReceiptNumber
			info := pdf.RegisterImageOptionsReader(name, fpdf.ImageOptions{ImageType: imgType}, bytes.NewReader(data))
			if pdf.Ok() && info != nil {
				pdf.ImageOptions(name, x+width*0.15, pdf.GetY(), width*0.7, 0, true, fpdf.ImageOptions{ImageType: imgType}, 0, "")
			} else {
				pdf.ClearError()
			}
		}
	}

	pdf.Ln(2)
	y := pdf.GetY()
	pdf.Line(x, y, x+width, y)
	pdf.SetX(x)
	pdf.SetFont("Helvetica", "", 8)
	label := "Firma"
	if r.ReceivedByName != nil && *r.ReceivedByName != "" {
		label = *r.ReceivedByName
	}
	pdf.CellFormat(width, 5, tr(label), "", 1, "C", false, 0, "")
}

// decodeImage accepts raw base64 or a data URL and reports the fpdf image type
func decodeImage(s string) ([]byte, string, bool) {
	imgType := "PNG"
	if strings.HasPrefix(s, "data:") {
		header, payload, found := strings.Cut(s, ",")
		if !found {
			return nil, "", false
		}
		if strings.Contains(header, "jpeg") || strings.Contains(header, "jpg") {
			imgType = "JPG"
		}
		s = payload
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil || len(data) == 0 {
		return nil, "", false
	}
	return data, imgType, true
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
