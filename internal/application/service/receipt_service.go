package service

import (
	"context"
	"fmt"

	"github.com/sanjeevani/pos-api/internal/domain/entity"
	"github.com/sanjeevani/pos-api/internal/domain/repository"
	"github.com/sanjeevani/pos-api/pkg/apperror"
	"github.com/sanjeevani/pos-api/pkg/printer"
	"github.com/sirupsen/logrus"
)

const receiptWidth = 32 // 58mm paper

// ReceiptService renders invoices as ESC/POS receipts and sends them to
// the configured printer
type ReceiptService struct {
	invoiceRepo repository.InvoiceRepository
	printer     printer.Printer
	storeName   string
}

// NewReceiptService creates a new receipt service
func NewReceiptService(invoiceRepo repository.InvoiceRepository, p printer.Printer, storeName string) *ReceiptService {
	return &ReceiptService{
		invoiceRepo: invoiceRepo,
		printer:     p,
		storeName:   storeName,
	}
}

// PrinterConnected reports whether the configured printer is reachable
func (s *ReceiptService) PrinterConnected() bool {
	return s.printer.IsConnected()
}

// PrintInvoice renders the invoice and sends it to the printer
func (s *ReceiptService) PrintInvoice(ctx context.Context, invoiceID int64) error {
	invoice, err := s.invoiceRepo.GetWithDetails(ctx, invoiceID)
	if err != nil {
		return err
	}
	if invoice == nil {
		return apperror.NewNotFoundError("Invoice")
	}

	if !s.printer.IsConnected() {
		return apperror.NewAppError(503, "Printer is not connected")
	}

	data := s.render(invoice)
	if err := s.printer.Print(data); err != nil {
		logrus.WithError(err).WithField("invoiceNo", invoice.InvoiceNo).Error("receipt print failed")
		return apperror.NewAppError(503, "Failed to print receipt")
	}

	logrus.WithField("invoiceNo", invoice.InvoiceNo).Info("receipt printed")
	return nil
}

func (s *ReceiptService) render(inv *entity.Invoice) []byte {
	doc := printer.NewDocument(receiptWidth)

	doc.Align(printer.AlignCenter).
		Size(printer.SizeDouble).Bold(true).Line(s.storeName).
		Size(printer.SizeNormal).Bold(false).
		Line("Tax Invoice").
		Align(printer.AlignLeft).
		Rule('=').
		KeyValue("Invoice", inv.InvoiceNo).
		KeyValue("Date", inv.CreatedAt.Format("02-01-2006 15:04"))

	if inv.CustomerName != "" {
		doc.KeyValue("Customer", inv.CustomerName)
	}
	if inv.Mobile != "" {
		doc.KeyValue("Mobile", inv.Mobile)
	}

	doc.Rule('-')
	for _, item := range inv.Items {
		doc.Item(item.Quantity, item.Name, rupees(item.LineTotal))
	}
	doc.Rule('-')

	doc.Bold(true).KeyValue("TOTAL", rupees(inv.TotalAmount)).Bold(false)
	doc.KeyValue("SP Earned", fmt.Sprintf("%d", inv.TotalSP))

	for _, p := range inv.Payments {
		doc.KeyValue(string(p.Mode), rupees(p.Amount))
	}
	if inv.DueAmount > 0 {
		doc.Bold(true).KeyValue("DUE", rupees(inv.DueAmount)).Bold(false)
	}

	doc.Rule('=').
		Align(printer.AlignCenter).
		Line("Thank you, visit again!").
		Feed(4).
		Cut()

	return doc.Bytes()
}

func rupees(paise int64) string {
	return fmt.Sprintf("%.2f", float64(paise)/100)
}
