package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"github.com/farmanet/farmanet-api/internal/aging"
	"github.com/farmanet/farmanet-api/internal/repository"
)

type ExportService struct {
	payablesSvc *PayablesService
}

func NewExportService(payablesSvc *PayablesService) *ExportService {
	return &ExportService{payablesSvc: payablesSvc}
}

func (s *ExportService) ExportCSV(ctx context.Context, stats *repository.PurchaseStats, summary *aging.Summary) ([]byte, string, error) {
	buf := new(bytes.Buffer)
	writer := csv.NewWriter(buf)

	// Header
	_ = writer.Write([]string{"Reporte de Cuentas por Pagar", time.Now().Format("2006-01-02 15:04")})
	_ = writer.Write([]string{""})

	// Totals Section
	_ = writer.Write([]string{"Resumen General"})
	_ = writer.Write([]string{"Métrica", "Valor"})
	_ = writer.Write([]string{"Total Facturado", fmt.Sprintf("%.2f", stats.TotalInvoiced)})
	_ = writer.Write([]string{"Total Pagado", fmt.Sprintf("%.2f", stats.TotalPaid)})
	_ = writer.Write([]string{"Saldo Pendiente", fmt.Sprintf("%.2f", stats.TotalOwed)})
	_ = writer.Write([]string{"Facturas Registradas", fmt.Sprintf("%d", stats.InvoiceCount)})
	_ = writer.Write([]string{"Facturas Sin Pagar", fmt.Sprintf("%d", stats.UnpaidCount)})
	_ = writer.Write([]string{""})

	// Aging Section
	_ = writer.Write([]string{"Antigüedad de Saldos"})
	_ = writer.Write([]string{"Métrica", "Valor"})
	_ = writer.Write([]string{"Facturas Vencidas", fmt.Sprintf("%d", summary.OverdueCount)})
	_ = writer.Write([]string{"Ahorro Pronto Pago Disponible", fmt.Sprintf("%.2f", summary.EarlySavings)})

	writer.Flush()

	filename := fmt.Sprintf("payables_report_%s.csv", time.Now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}

func (s *ExportService) ExportXLSX(ctx context.Context, stats *repository.PurchaseStats, summary *aging.Summary) ([]byte, string, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Payables"
	_ = f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	_ = f.SetCellValue(sheet, "A1", "Reporte de Cuentas por Pagar")
	_ = f.SetCellStyle(sheet, "A1", "A1", headerStyle)

	_ = f.SetCellValue(sheet, "A3", "Resumen General")
	_ = f.SetCellValue(sheet, "A4", "Métrica")
	_ = f.SetCellValue(sheet, "B4", "Valor")

	_ = f.SetCellValue(sheet, "A5", "Total Facturado")
	_ = f.SetCellValue(sheet, "B5", stats.TotalInvoiced)
	_ = f.SetCellValue(sheet, "A6", "Total Pagado")
	_ = f.SetCellValue(sheet, "B6", stats.TotalPaid)
	_ = f.SetCellValue(sheet, "A7", "Saldo Pendiente")
	_ = f.SetCellValue(sheet, "B7", stats.TotalOwed)
	_ = f.SetCellValue(sheet, "A8", "Facturas Registradas")
	_ = f.SetCellValue(sheet, "B8", stats.InvoiceCount)
	_ = f.SetCellValue(sheet, "A9", "Facturas Sin Pagar")
	_ = f.SetCellValue(sheet, "B9", stats.UnpaidCount)

	_ = f.SetCellValue(sheet, "A11", "Antigüedad de Saldos")
	_ = f.SetCellValue(sheet, "A12", "Métrica")
	_ = f.SetCellValue(sheet, "B12", "Valor")

	_ = f.SetCellValue(sheet, "A13", "Facturas Vencidas")
	_ = f.SetCellValue(sheet, "B13", summary.OverdueCount)
	_ = f.SetCellValue(sheet, "A14", "Ahorro Pronto Pago Disponible")
	_ = f.SetCellValue(sheet, "B14", summary.EarlySavings)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("payables_report_%s.xlsx", time.Now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}

func (s *ExportService) ExportPDF(ctx context.Context, stats *repository.PurchaseStats, summary *aging.Summary) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Reporte de Cuentas por Pagar")
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(40, 10, "Resumen General")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(60, 10, "Total Facturado:")
	pdf.Cell(40, 10, fmt.Sprintf("%.2f USD", stats.TotalInvoiced))
	pdf.Ln(6)

	pdf.Cell(60, 10, "Total Pagado:")
	pdf.Cell(40, 10, fmt.Sprintf("%.2f USD", stats.TotalPaid))
	pdf.Ln(6)

	pdf.Cell(60, 10, "Saldo Pendiente:")
	pdf.Cell(40, 10, fmt.Sprintf("%.2f USD", stats.TotalOwed))
	pdf.Ln(6)

	pdf.Cell(60, 10, "Facturas Registradas:")
	pdf.Cell(40, 10, fmt.Sprintf("%d", stats.InvoiceCount))
	pdf.Ln(6)

	pdf.Cell(60, 10, "Facturas Sin Pagar:")
	pdf.Cell(40, 10, fmt.Sprintf("%d", stats.UnpaidCount))
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(40, 10, "Antiguedad de Saldos")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(60, 10, "Facturas Vencidas:")
	pdf.Cell(40, 10, fmt.Sprintf("%d", summary.OverdueCount))
	pdf.Ln(6)

	pdf.Cell(60, 10, "Ahorro Pronto Pago:")
	pdf.Cell(40, 10, fmt.Sprintf("%.2f USD", summary.EarlySavings))
	pdf.Ln(6)

	buf := new(bytes.Buffer)
	err := pdf.Output(buf)
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("payables_report_%s.pdf", time.Now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}
