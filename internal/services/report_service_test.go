package services

import (
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/farmanet/farmanet-api/internal/models"
	"github.com/farmanet/farmanet-api/internal/repository"
)

func TestGenerateAgingCSV(t *testing.T) {
	now := time.Now()
	purchaseDate := now.AddDate(0, 0, -10)

	purchaseRepo := &mockPurchaseRepository{}
	supplierRepo := &mockSupplierRepository{}

	purchaseRepo.mockList = func(ctx context.Context, query *repository.PurchaseQuery) ([]models.Purchase, int64, error) {
		return []models.Purchase{
			{ID: 1, SupplierID: 1, InvoiceNumber: "F-2024-001", PurchaseDate: &purchaseDate, Total: 1250.50, AmountPaid: 250.50},
		}, 1, nil
	}
	supplierRepo.mockFindAll = func(ctx context.Context) ([]models.Supplier, error) {
		return []models.Supplier{
			{ID: 1, Name: "Droguería Continental", CreditDays: 30, EarlyPaymentDiscount: 2.0},
		}, nil
	}

	payablesSvc := testPayablesService(purchaseRepo, supplierRepo)
	service := NewReportService(payablesSvc, nil)

	query := &repository.PurchaseQuery{ListQuery: repository.NewListQuery()}
	buf, err := service.GenerateAgingCSV(context.Background(), query)
	assert.NoError(t, err)
	assert.NotNil(t, buf)

	reader := csv.NewReader(buf)
	records, err := reader.ReadAll()
	assert.NoError(t, err)
	assert.Len(t, records, 2)

	expectedHeader := []string{"Factura", "Proveedor", "Total", "Pagado", "Saldo", "Estado", "Vencimiento", "Días", "Ahorro Pronto Pago"}
	assert.Equal(t, expectedHeader, records[0])

	row := records[1]
	assert.Equal(t, "F-2024-001", row[0])
	assert.Equal(t, "Droguería Continental", row[1])
	assert.Equal(t, "1250.50", row[2])
	assert.Equal(t, "250.50", row[3])
	assert.Equal(t, "1000.00", row[4])
	assert.Equal(t, "Abonada", row[5]) // Translated "partially_paid"
	assert.Equal(t, purchaseDate.AddDate(0, 0, 30).Format("2006-01-02"), row[6])
	assert.Equal(t, "20", row[7])
	assert.Equal(t, "25.01", row[8]) // 2% of 1250.50, window still open
}

func TestGenerateOverdueCSV(t *testing.T) {
	now := time.Now()
	purchaseDate := now.AddDate(0, 0, -40)

	purchaseRepo := &mockPurchaseRepository{}
	supplierRepo := &mockSupplierRepository{}

	purchaseRepo.mockFindOutstanding = func(ctx context.Context) ([]models.Purchase, error) {
		return []models.Purchase{
			{ID: 1, SupplierID: 1, InvoiceNumber: "F-OLD-01", PurchaseDate: &purchaseDate, Total: 600, AmountPaid: 100},
		}, nil
	}
	supplierRepo.mockFindAll = func(ctx context.Context) ([]models.Supplier, error) {
		return []models.Supplier{{ID: 1, Name: "Laboratorio Delta", CreditDays: 30}}, nil
	}

	payablesSvc := testPayablesService(purchaseRepo, supplierRepo)
	service := NewReportService(payablesSvc, nil)

	buf, err := service.GenerateOverdueCSV(context.Background())
	assert.NoError(t, err)

	reader := csv.NewReader(buf)
	records, err := reader.ReadAll()
	assert.NoError(t, err)
	assert.Len(t, records, 2)

	expectedHeader := []string{"Factura", "Proveedor", "Saldo", "Vencimiento", "Días Mora"}
	assert.Equal(t, expectedHeader, records[0])

	row := records[1]
	assert.Equal(t, "F-OLD-01", row[0])
	assert.Equal(t, "500.00", row[2])
	assert.Equal(t, "10", row[4]) // 40 days old against 30 credit days
}

func TestGeneratePaymentReceiptPDF(t *testing.T) {
	paymentRepo := &mockPaymentRepository{}
	paymentRepo.mockFindByID = func(ctx context.Context, id uint) (*models.PurchasePayment, error) {
		return &models.PurchasePayment{
			ID:            id,
			PurchaseID:    1,
			Amount:        1500.50,
			PaymentDate:   time.Now(),
			Method:        models.PaymentMethodTransfer,
			Reference:     "TRF-99812",
			VoucherNumber: "AB-1A2B3C4D",
			Status:        models.PaymentStatusApplied,
			Purchase: &models.Purchase{
				ID:            1,
				InvoiceNumber: "F-2024-001",
				Supplier:      &models.Supplier{ID: 1, Name: "Droguería Continental"},
			},
			BankAccount: &models.BankAccount{ID: 3, Alias: "Cuenta Operativa", BankName: "Banco Atlántida"},
		}, nil
	}

	service := NewReportService(nil, paymentRepo)

	buf, err := service.GeneratePaymentReceiptPDF(context.Background(), 5)
	assert.NoError(t, err)
	assert.NotNil(t, buf)
	assert.Greater(t, buf.Len(), 0, "PDF buffer should not be empty")
}

func TestGeneratePaymentReceiptPDF_Reversed(t *testing.T) {
	reversedAt := time.Now()
	paymentRepo := &mockPaymentRepository{}
	paymentRepo.mockFindByID = func(ctx context.Context, id uint) (*models.PurchasePayment, error) {
		return &models.PurchasePayment{
			ID:            id,
			PurchaseID:    1,
			Amount:        300,
			PaymentDate:   time.Now().AddDate(0, 0, -2),
			Method:        models.PaymentMethodCash,
			VoucherNumber: "AB-REV00001",
			Status:        models.PaymentStatusReversed,
			ReversedAt:    &reversedAt,
		}, nil
	}

	service := NewReportService(nil, paymentRepo)

	buf, err := service.GeneratePaymentReceiptPDF(context.Background(), 9)
	assert.NoError(t, err)
	assert.Greater(t, buf.Len(), 0)
}

func TestGeneratePaymentReceiptPDF_NotFound(t *testing.T) {
	service := NewReportService(nil, &mockPaymentRepository{})

	_, err := service.GeneratePaymentReceiptPDF(context.Background(), 404)
	assert.ErrorIs(t, err, ErrNotFound)
}
