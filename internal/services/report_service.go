package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"html/template"
	"os"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/jung-kurt/gofpdf"

	"github.com/farmanet/farmanet-api/internal/repository"
)

type ReportService struct {
	payablesSvc *PayablesService
	paymentRepo repository.PaymentRepository
}

func NewReportService(payablesSvc *PayablesService, paymentRepo repository.PaymentRepository) *ReportService {
	return &ReportService{
		payablesSvc: payablesSvc,
		paymentRepo: paymentRepo,
	}
}

var settlementTranslations = map[string]string{
	"unpaid":         "Pendiente",
	"partially_paid": "Abonada",
	"paid":           "Pagada",
}

var methodTranslations = map[string]string{
	"cash":     "Efectivo",
	"transfer": "Transferencia",
	"check":    "Cheque",
}

// GenerateAgingCSV generates a CSV of the payables aging view
func (s *ReportService) GenerateAgingCSV(ctx context.Context, query *repository.PurchaseQuery) (*bytes.Buffer, error) {
	view, err := s.payablesSvc.GetAgingView(ctx, query)
	if err != nil {
		return nil, err
	}

	b := &bytes.Buffer{}
	w := csv.NewWriter(b)

	header := []string{"Factura", "Proveedor", "Total", "Pagado", "Saldo", "Estado", "Vencimiento", "Días", "Ahorro Pronto Pago"}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, inv := range view.Invoices {
		dueDate := "N/A"
		if inv.DueDate != nil {
			dueDate = inv.DueDate.Format("2006-01-02")
		}

		days := "N/A"
		if inv.DaysRemaining != nil {
			days = fmt.Sprintf("%d", *inv.DaysRemaining)
		}

		settlement := string(inv.Settlement)
		if val, ok := settlementTranslations[settlement]; ok {
			settlement = val
		}

		record := []string{
			inv.InvoiceNumber,
			inv.SupplierName,
			fmt.Sprintf("%.2f", inv.Total),
			fmt.Sprintf("%.2f", inv.AmountPaid),
			fmt.Sprintf("%.2f", inv.AmountRemaining),
			settlement,
			dueDate,
			days,
			fmt.Sprintf("%.2f", inv.EarlySavings),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	return b, nil
}

// GenerateOverdueCSV generates a CSV of overdue invoices
func (s *ReportService) GenerateOverdueCSV(ctx context.Context) (*bytes.Buffer, error) {
	overdue, err := s.payablesSvc.GetOverdueInvoices(ctx)
	if err != nil {
		return nil, err
	}

	b := &bytes.Buffer{}
	w := csv.NewWriter(b)

	header := []string{"Factura", "Proveedor", "Saldo", "Vencimiento", "Días Mora"}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, inv := range overdue {
		dueDate := ""
		if inv.DueDate != nil {
			dueDate = inv.DueDate.Format("2006-01-02")
		}

		daysOverdue := 0
		if inv.DaysRemaining != nil && *inv.DaysRemaining < 0 {
			daysOverdue = -*inv.DaysRemaining
		}

		record := []string{
			inv.InvoiceNumber,
			inv.SupplierName,
			fmt.Sprintf("%.2f", inv.AmountRemaining),
			dueDate,
			fmt.Sprintf("%d", daysOverdue),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	return b, nil
}

// Helper to generate PDF from HTML template
func (s *ReportService) generatePDF(templateName string, data interface{}) (*bytes.Buffer, error) {
	// Try path relative to project root (Prod)
	tmplPath := fmt.Sprintf("internal/services/templates/reports/%s", templateName)
	if _, err := os.Stat(tmplPath); os.IsNotExist(err) {
		// Try path relative to package (Test)
		tmplPath = fmt.Sprintf("templates/reports/%s", templateName)
	}

	tmpl, err := template.ParseFiles(tmplPath)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s (path: %s): %w", templateName, tmplPath, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create pdf generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)
	pdfg.Grayscale.Set(false)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader(buf.Bytes()))
	page.EnableLocalFileAccess.Set(true)
	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create pdf: %w", err)
	}

	return pdfg.Buffer(), nil
}

// GenerateSupplierStatementPDF generates a PDF account statement for a supplier
func (s *ReportService) GenerateSupplierStatementPDF(ctx context.Context, supplierID uint) (*bytes.Buffer, error) {
	statement, err := s.payablesSvc.GetSupplierStatement(ctx, supplierID)
	if err != nil {
		return nil, err
	}

	type InvoiceData struct {
		InvoiceNumber string
		Total         string
		AmountPaid    string
		Remaining     string
		Settlement    string
		DueDate       string
		Overdue       bool
		EarlySavings  string
	}

	var invoices []InvoiceData
	for _, inv := range statement.Invoices {
		row := InvoiceData{
			InvoiceNumber: inv.InvoiceNumber,
			Total:         fmt.Sprintf("%.2f", inv.Total),
			AmountPaid:    fmt.Sprintf("%.2f", inv.AmountPaid),
			Remaining:     fmt.Sprintf("%.2f", inv.AmountRemaining),
			Settlement:    string(inv.Settlement),
			DueDate:       "N/A",
			Overdue:       inv.Overdue,
		}
		if val, ok := settlementTranslations[row.Settlement]; ok {
			row.Settlement = val
		}
		if inv.DueDate != nil {
			row.DueDate = inv.DueDate.Format("02/01/2006")
		}
		if inv.EarlySavings > 0 {
			row.EarlySavings = fmt.Sprintf("%.2f", inv.EarlySavings)
		}
		invoices = append(invoices, row)
	}

	data := map[string]interface{}{
		"SupplierName":  statement.Supplier.Name,
		"TaxID":         statement.Supplier.TaxID,
		"CreditDays":    statement.Supplier.CreditDays,
		"Invoices":      invoices,
		"TotalInvoiced": fmt.Sprintf("%.2f", statement.Summary.TotalInvoiced),
		"TotalPaid":     fmt.Sprintf("%.2f", statement.Summary.TotalPaid),
		"TotalOwed":     fmt.Sprintf("%.2f", statement.Summary.TotalOwed),
		"EarlySavings":  fmt.Sprintf("%.2f", statement.Summary.EarlySavings),
		"OverdueCount":  statement.Summary.OverdueCount,
		"Date":          statement.AsOf.Format("02/01/2006"),
	}

	return s.generatePDF("supplier_statement.html", data)
}

// GeneratePaymentReceiptPDF generates a printable receipt for a registered abono
func (s *ReportService) GeneratePaymentReceiptPDF(ctx context.Context, paymentID uint) (*bytes.Buffer, error) {
	payment, err := s.paymentRepo.FindByID(ctx, paymentID)
	if err != nil {
		return nil, ErrNotFound
	}

	supplierName := "N/A"
	invoiceNumber := "N/A"
	if payment.Purchase != nil {
		invoiceNumber = payment.Purchase.InvoiceNumber
		if payment.Purchase.Supplier != nil {
			supplierName = payment.Purchase.Supplier.Name
		}
	}

	method := payment.Method
	if val, ok := methodTranslations[method]; ok {
		method = val
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Comprobante de Abono")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(60, 8, "Comprobante No.:")
	pdf.Cell(80, 8, payment.VoucherNumber)
	pdf.Ln(6)
	pdf.Cell(60, 8, "Fecha:")
	pdf.Cell(80, 8, payment.PaymentDate.Format("02/01/2006"))
	pdf.Ln(6)
	pdf.Cell(60, 8, "Proveedor:")
	pdf.Cell(80, 8, tr(supplierName))
	pdf.Ln(6)
	pdf.Cell(60, 8, "Factura:")
	pdf.Cell(80, 8, tr(invoiceNumber))
	pdf.Ln(6)
	pdf.Cell(60, 8, tr("Método de pago:"))
	pdf.Cell(80, 8, tr(method))
	pdf.Ln(6)
	if payment.Reference != "" {
		pdf.Cell(60, 8, "Referencia:")
		pdf.Cell(80, 8, tr(payment.Reference))
		pdf.Ln(6)
	}
	if payment.BankAccount != nil {
		pdf.Cell(60, 8, "Cuenta bancaria:")
		pdf.Cell(80, 8, tr(fmt.Sprintf("%s (%s)", payment.BankAccount.Alias, payment.BankAccount.BankName)))
		pdf.Ln(6)
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(60, 10, "Monto:")
	pdf.Cell(80, 10, fmt.Sprintf("$ %.2f", payment.Amount))
	pdf.Ln(8)

	pdf.SetFont("Arial", "I", 9)
	pdf.MultiCell(180, 6, tr(NumberToWords(payment.Amount)), "", "L", false)
	pdf.Ln(6)

	if payment.IsReversed() {
		pdf.SetFont("Arial", "B", 12)
		pdf.SetTextColor(178, 59, 59)
		reversedAt := ""
		if payment.ReversedAt != nil {
			reversedAt = payment.ReversedAt.Format("02/01/2006")
		}
		pdf.Cell(120, 10, tr(fmt.Sprintf("REVERSADO el %s", reversedAt)))
		pdf.SetTextColor(0, 0, 0)
		pdf.Ln(10)
	}

	pdf.SetFont("Arial", "", 8)
	pdf.Cell(120, 6, fmt.Sprintf("Generado el %s", time.Now().Format("02/01/2006 15:04")))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to create pdf: %w", err)
	}

	return &buf, nil
}
