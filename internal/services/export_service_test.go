package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/farmanet/farmanet-api/internal/aging"
	"github.com/farmanet/farmanet-api/internal/repository"
)

func exportFixtures() (*repository.PurchaseStats, *aging.Summary) {
	stats := &repository.PurchaseStats{
		TotalInvoiced: 50000,
		TotalPaid:     32000,
		TotalOwed:     18000,
		InvoiceCount:  40,
		UnpaidCount:   12,
	}
	summary := &aging.Summary{
		OverdueCount: 5,
		EarlySavings: 640.50,
	}
	return stats, summary
}

func TestExportCSV(t *testing.T) {
	service := NewExportService(nil)
	stats, summary := exportFixtures()

	data, filename, err := service.ExportCSV(context.Background(), stats, summary)
	assert.NoError(t, err)
	assert.Contains(t, filename, "payables_report_")
	assert.Contains(t, filename, ".csv")

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	assert.NoError(t, err)

	flat := map[string]string{}
	for _, rec := range records {
		if len(rec) == 2 {
			flat[rec[0]] = rec[1]
		}
	}
	assert.Equal(t, "50000.00", flat["Total Facturado"])
	assert.Equal(t, "18000.00", flat["Saldo Pendiente"])
	assert.Equal(t, "5", flat["Facturas Vencidas"])
	assert.Equal(t, "640.50", flat["Ahorro Pronto Pago Disponible"])
}

func TestExportXLSX(t *testing.T) {
	service := NewExportService(nil)
	stats, summary := exportFixtures()

	data, filename, err := service.ExportXLSX(context.Background(), stats, summary)
	assert.NoError(t, err)
	assert.Contains(t, filename, ".xlsx")
	assert.Greater(t, len(data), 0, "XLSX buffer should not be empty")
}

func TestExportPDF(t *testing.T) {
	service := NewExportService(nil)
	stats, summary := exportFixtures()

	data, filename, err := service.ExportPDF(context.Background(), stats, summary)
	assert.NoError(t, err)
	assert.Contains(t, filename, ".pdf")
	assert.Greater(t, len(data), 0, "PDF buffer should not be empty")
}
