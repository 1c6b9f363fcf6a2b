package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sangkips/receipts-api/internal/domain/entity"
	"github.com/sangkips/receipts-api/pkg/amountwords"
	"github.com/sangkips/receipts-api/pkg/printer"
)

// PrinterService formats receipts as ESC/POS and sends them to the thermal printer.
type PrinterService struct {
	printer   printer.Printer
	receipts  *ReceiptService
	settings  *SettingsService
	charWidth int
}

// NewPrinterService creates a new printer service.
func NewPrinterService(p printer.Printer, receipts *ReceiptService, settings *SettingsService, charWidth int) *PrinterService {
	if charWidth <= 0 {
		charWidth = printer.Width80mm
	}
	return &PrinterService{
		printer:   p,
		receipts:  receipts,
		settings:  settings,
		charWidth: charWidth,
	}
}

// PrinterStatus returns the current printer status information.
type PrinterStatus struct {
	Configured bool   `json:"configured"`
	Connected  bool   `json:"connected"`
	Type       string `json:"type"`
}

// GetStatus returns printer connection status.
func (s *PrinterService) GetStatus(ctx context.Context) *PrinterStatus {
	return &PrinterStatus{
		Configured: s.printer.Type() != printer.TypeNone,
		Connected:  s.printer.IsConnected(ctx),
		Type:       s.printer.Type(),
	}
}

// PrintReceipt loads a receipt and prints it. The receipt is returned even
// when the printer fails.
func (s *PrinterService) PrintReceipt(ctx context.Context, id uint) (*entity.Receipt, error) {
	receipt, err := s.receipts.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	settings, err := s.settings.GetSettings(ctx)
	if err != nil {
		return nil, err
	}

	data := FormatReceipt(receipt, settings, s.charWidth)
	if err := s.printer.Print(ctx, data); err != nil {
		log.Error().Err(err).Str("receipt_number", receipt.ReceiptNumber).Msg("printer error")
		return receipt, fmt.Errorf("failed to print receipt: %w", err)
	}
	return receipt, nil
}

// FormatReceipt converts a receipt into ESC/POS bytes for a printer with
// the given character width.
func FormatReceipt(r *entity.Receipt, settings *entity.Settings, width int) []byte {
	vis := settings.Visibility()
	doc := printer.NewDocument(width)

	// Header
	doc.SetAlign(printer.AlignCenter).
		SetBold(true).
		SetFontSize(printer.FontDouble).
		Text(settings.CompanyName).
		SetFontSize(printer.FontNormal).
		SetBold(false).
		Paragraph(settings.CompanyInfo).
		LineFeed().
		SetBold(true).
		Text(settings.ReceiptTitle).
		SetBold(false)

	doc.SetAlign(printer.AlignLeft).
		Separator('-')

	doc.KeyValue("No.:", r.ReceiptNumber).
		KeyValue("Fecha:", time.Time(r.Date).Format("02/01/2006")).
		KeyValue("Cliente:", r.CustomerName)

	field := func(show bool, key string, value *string) {
		if show && value != nil && *value != "" {
			doc.KeyValue(key, *value)
		}
	}
	field(true, "NIT:", r.CustomerNIT)
	if r.Institution == nil || *r.Institution != r.CustomerName {
		field(vis.Institution, "Institucion:", r.Institution)
	}
	field(vis.CustomerPhone, "Tel:", r.CustomerPhone)
	field(vis.CustomerEmail, "Correo:", r.CustomerEmail)
	field(vis.CustomerAddress, "Direccion:", r.CustomerAddress)

	if vis.Concept && r.Concept != nil && *r.Concept != "" {
		doc.Separator('-').Paragraph("Concepto: " + *r.Concept)
	}

	if vis.LineItemsInPrint && len(r.Items) > 0 {
		doc.Separator('-')
		for _, item := range r.Items {
			doc.ItemLine(item.Description, item.Quantity.String(), item.UnitPrice.StringFixed(2), item.Total.StringFixed(2))
		}
	}

	doc.Separator('-').
		SetBold(true).
		KeyValue("TOTAL:", "Q "+r.Total.StringFixed(2)).
		SetBold(false)

	if vis.AmountInWords {
		doc.Paragraph(amountwords.Spanish(r.Total))
	}

	if vis.PaymentMethod && r.PaymentMethod != nil {
		doc.Separator('-').KeyValue("Pago:", string(*r.PaymentMethod))
		field(true, "Cheque:", r.CheckNumber)
		field(true, "Cuenta:", r.BankAccount)
	}
	if vis.Notes && r.Notes != nil && *r.Notes != "" {
		doc.Separator('-').Paragraph(*r.Notes)
	}

	if vis.Signature {
		doc.FeedLines(3).
			SetAlign(printer.AlignCenter).
			Text("________________________")
		if r.ReceivedByName != nil && *r.ReceivedByName != "" {
			doc.Text(*r.ReceivedByName)
		} else {
			doc.Text("Firma")
		}
		doc.SetAlign(printer.AlignLeft)
	}

	doc.FeedLines(3).
		PartialCut()

	return doc.Bytes()
}
