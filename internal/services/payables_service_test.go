package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/farmanet/farmanet-api/internal/aging"
	"github.com/farmanet/farmanet-api/internal/config"
	"github.com/farmanet/farmanet-api/internal/models"
	"github.com/farmanet/farmanet-api/internal/repository"
)

// Mock PurchaseRepository (using embedding to avoid implementing all methods)
type mockPurchaseRepository struct {
	repository.PurchaseRepository
	mockFindByID        func(ctx context.Context, id uint) (*models.Purchase, error)
	mockList            func(ctx context.Context, query *repository.PurchaseQuery) ([]models.Purchase, int64, error)
	mockFindOutstanding func(ctx context.Context) ([]models.Purchase, error)
	mockFindBySupplier  func(ctx context.Context, supplierID uint) ([]models.Purchase, error)
	mockGetStats        func(ctx context.Context) (*repository.PurchaseStats, error)
}

func (m *mockPurchaseRepository) FindByID(ctx context.Context, id uint) (*models.Purchase, error) {
	if m.mockFindByID != nil {
		return m.mockFindByID(ctx, id)
	}
	return nil, errors.New("not found")
}

func (m *mockPurchaseRepository) List(ctx context.Context, query *repository.PurchaseQuery) ([]models.Purchase, int64, error) {
	if m.mockList != nil {
		return m.mockList(ctx, query)
	}
	return nil, 0, nil
}

func (m *mockPurchaseRepository) FindOutstanding(ctx context.Context) ([]models.Purchase, error) {
	if m.mockFindOutstanding != nil {
		return m.mockFindOutstanding(ctx)
	}
	return nil, nil
}

func (m *mockPurchaseRepository) FindBySupplier(ctx context.Context, supplierID uint) ([]models.Purchase, error) {
	if m.mockFindBySupplier != nil {
		return m.mockFindBySupplier(ctx, supplierID)
	}
	return nil, nil
}

func (m *mockPurchaseRepository) GetStats(ctx context.Context) (*repository.PurchaseStats, error) {
	if m.mockGetStats != nil {
		return m.mockGetStats(ctx)
	}
	return &repository.PurchaseStats{}, nil
}

// Mock SupplierRepository
type mockSupplierRepository struct {
	repository.SupplierRepository
	mockFindAll  func(ctx context.Context) ([]models.Supplier, error)
	mockFindByID func(ctx context.Context, id uint) (*models.Supplier, error)
}

func (m *mockSupplierRepository) FindAll(ctx context.Context) ([]models.Supplier, error) {
	if m.mockFindAll != nil {
		return m.mockFindAll(ctx)
	}
	return nil, nil
}

func (m *mockSupplierRepository) FindByID(ctx context.Context, id uint) (*models.Supplier, error) {
	if m.mockFindByID != nil {
		return m.mockFindByID(ctx, id)
	}
	return nil, errors.New("not found")
}

func testPayablesService(purchaseRepo *mockPurchaseRepository, supplierRepo *mockSupplierRepository) *PayablesService {
	cfg := &config.Config{EarlyPaymentWindowDays: 15}
	return NewPayablesService(purchaseRepo, supplierRepo, cfg)
}

func TestGetAgingView_Classification(t *testing.T) {
	now := time.Now()
	oldDate := now.AddDate(0, 0, -45) // past a 30 day credit window
	recentDate := now.AddDate(0, 0, -5)

	supplier := models.Supplier{
		ID:                   1,
		Name:                 "Distribuidora Andina",
		CreditDays:           30,
		EarlyPaymentDiscount: 2.0,
	}

	purchaseRepo := &mockPurchaseRepository{}
	supplierRepo := &mockSupplierRepository{}

	purchaseRepo.mockList = func(ctx context.Context, query *repository.PurchaseQuery) ([]models.Purchase, int64, error) {
		return []models.Purchase{
			{ID: 10, SupplierID: 1, BranchID: 1, InvoiceNumber: "F-001", PurchaseDate: &oldDate, Total: 1000, AmountPaid: 400},
			{ID: 11, SupplierID: 1, BranchID: 1, InvoiceNumber: "F-002", PurchaseDate: &recentDate, Total: 500, AmountPaid: 0},
			{ID: 12, SupplierID: 1, BranchID: 1, InvoiceNumber: "F-003", PurchaseDate: &oldDate, Total: 200, AmountPaid: 200},
		}, 3, nil
	}

	service := testPayablesService(purchaseRepo, supplierRepo)
	supplierRepo.mockFindAll = func(ctx context.Context) ([]models.Supplier, error) {
		return []models.Supplier{supplier}, nil
	}

	view, err := service.GetAgingView(context.Background(), &repository.PurchaseQuery{ListQuery: repository.NewListQuery()})
	assert.NoError(t, err)
	assert.Len(t, view.Invoices, 3)

	overdue := view.Invoices[0]
	assert.Equal(t, aging.SettlementPartiallyPaid, overdue.Settlement)
	assert.True(t, overdue.Overdue, "45 day old invoice with 30 credit days should be overdue")
	assert.Equal(t, 600.0, overdue.AmountRemaining)
	assert.Zero(t, overdue.EarlySavings, "pronto pago window closed after 15 days")

	open := view.Invoices[1]
	assert.Equal(t, aging.SettlementUnpaid, open.Settlement)
	assert.False(t, open.Overdue)
	// 2% of 500, window still open at 5 days
	assert.InDelta(t, 10.0, open.EarlySavings, 0.001)

	paid := view.Invoices[2]
	assert.Equal(t, aging.SettlementPaid, paid.Settlement)
	assert.False(t, paid.Overdue, "a paid invoice is never overdue")
	assert.Zero(t, paid.EarlySavings)

	assert.Equal(t, 1700.0, view.Summary.TotalInvoiced)
	assert.Equal(t, 600.0, view.Summary.TotalPaid)
	assert.Equal(t, 1100.0, view.Summary.TotalOwed)
	assert.Equal(t, 3, view.Summary.InvoiceCount)
	assert.Equal(t, 1, view.Summary.OverdueCount)
}

func TestGetAgingView_UnknownSupplierUsesSentinel(t *testing.T) {
	now := time.Now().AddDate(0, 0, -100)

	purchaseRepo := &mockPurchaseRepository{}
	supplierRepo := &mockSupplierRepository{}

	purchaseRepo.mockList = func(ctx context.Context, query *repository.PurchaseQuery) ([]models.Purchase, int64, error) {
		return []models.Purchase{
			{ID: 20, SupplierID: 999, InvoiceNumber: "F-100", PurchaseDate: &now, Total: 300, AmountPaid: 0},
		}, 1, nil
	}
	supplierRepo.mockFindAll = func(ctx context.Context) ([]models.Supplier, error) {
		return nil, nil
	}

	service := testPayablesService(purchaseRepo, supplierRepo)

	view, err := service.GetAgingView(context.Background(), &repository.PurchaseQuery{ListQuery: repository.NewListQuery()})
	assert.NoError(t, err)
	assert.Len(t, view.Invoices, 1)

	inv := view.Invoices[0]
	assert.Equal(t, "Proveedor desconocido", inv.SupplierName)
	// Sentinel supplier extends no credit, so aging fields stay undefined
	assert.Nil(t, inv.DueDate)
	assert.Nil(t, inv.DaysRemaining)
	assert.False(t, inv.Overdue)
	assert.Equal(t, 300.0, view.Summary.TotalOwed, "financial totals still compute without a supplier")
}

func TestGetOverdueInvoices_FiltersByDueDate(t *testing.T) {
	now := time.Now()
	overdueDate := now.AddDate(0, 0, -60)
	openDate := now.AddDate(0, 0, -3)

	supplier := models.Supplier{ID: 1, Name: "Laboratorios Sur", CreditDays: 30}

	purchaseRepo := &mockPurchaseRepository{}
	supplierRepo := &mockSupplierRepository{}

	purchaseRepo.mockFindOutstanding = func(ctx context.Context) ([]models.Purchase, error) {
		return []models.Purchase{
			{ID: 1, SupplierID: 1, InvoiceNumber: "V-001", PurchaseDate: &overdueDate, Total: 800, AmountPaid: 100},
			{ID: 2, SupplierID: 1, InvoiceNumber: "V-002", PurchaseDate: &openDate, Total: 400, AmountPaid: 0},
		}, nil
	}
	supplierRepo.mockFindAll = func(ctx context.Context) ([]models.Supplier, error) {
		return []models.Supplier{supplier}, nil
	}

	service := testPayablesService(purchaseRepo, supplierRepo)

	overdue, err := service.GetOverdueInvoices(context.Background())
	assert.NoError(t, err)
	assert.Len(t, overdue, 1)
	assert.Equal(t, uint(1), overdue[0].PurchaseID)
	assert.Equal(t, 700.0, overdue[0].AmountRemaining)
}

func TestGetEarlyPaymentCandidates_WindowAndDiscount(t *testing.T) {
	now := time.Now()
	insideWindow := now.AddDate(0, 0, -10)
	outsideWindow := now.AddDate(0, 0, -20)

	suppliers := []models.Supplier{
		{ID: 1, Name: "Con descuento", CreditDays: 30, EarlyPaymentDiscount: 3.0},
		{ID: 2, Name: "Sin descuento", CreditDays: 30},
	}

	purchaseRepo := &mockPurchaseRepository{}
	supplierRepo := &mockSupplierRepository{}

	purchaseRepo.mockFindOutstanding = func(ctx context.Context) ([]models.Purchase, error) {
		return []models.Purchase{
			{ID: 1, SupplierID: 1, InvoiceNumber: "P-001", PurchaseDate: &insideWindow, Total: 1000, AmountPaid: 0},
			{ID: 2, SupplierID: 1, InvoiceNumber: "P-002", PurchaseDate: &outsideWindow, Total: 1000, AmountPaid: 0},
			{ID: 3, SupplierID: 2, InvoiceNumber: "P-003", PurchaseDate: &insideWindow, Total: 1000, AmountPaid: 0},
		}, nil
	}
	supplierRepo.mockFindAll = func(ctx context.Context) ([]models.Supplier, error) {
		return suppliers, nil
	}

	service := testPayablesService(purchaseRepo, supplierRepo)

	candidates, err := service.GetEarlyPaymentCandidates(context.Background())
	assert.NoError(t, err)
	assert.Len(t, candidates, 1, "only the invoice inside the window with a discount qualifies")
	assert.Equal(t, uint(1), candidates[0].PurchaseID)
	assert.InDelta(t, 30.0, candidates[0].EarlySavings, 0.001)
}

func TestGetSupplierStatement_NotFound(t *testing.T) {
	purchaseRepo := &mockPurchaseRepository{}
	supplierRepo := &mockSupplierRepository{}

	supplierRepo.mockFindByID = func(ctx context.Context, id uint) (*models.Supplier, error) {
		return nil, errors.New("record not found")
	}

	service := testPayablesService(purchaseRepo, supplierRepo)

	_, err := service.GetSupplierStatement(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetSupplierStatement_BuildsSummary(t *testing.T) {
	now := time.Now()
	date := now.AddDate(0, 0, -5)

	supplier := &models.Supplier{ID: 7, Name: "Farmacéutica Central", CreditDays: 45, EarlyPaymentDiscount: 1.5}

	purchaseRepo := &mockPurchaseRepository{}
	supplierRepo := &mockSupplierRepository{}

	supplierRepo.mockFindByID = func(ctx context.Context, id uint) (*models.Supplier, error) {
		assert.Equal(t, uint(7), id)
		return supplier, nil
	}
	purchaseRepo.mockFindBySupplier = func(ctx context.Context, supplierID uint) ([]models.Purchase, error) {
		return []models.Purchase{
			{ID: 1, SupplierID: 7, InvoiceNumber: "C-001", PurchaseDate: &date, Total: 2000, AmountPaid: 500},
		}, nil
	}

	service := testPayablesService(purchaseRepo, supplierRepo)

	statement, err := service.GetSupplierStatement(context.Background(), 7)
	assert.NoError(t, err)
	assert.Equal(t, "Farmacéutica Central", statement.Supplier.Name)
	assert.Len(t, statement.Invoices, 1)
	assert.Equal(t, 1500.0, statement.Summary.TotalOwed)
	assert.InDelta(t, 30.0, statement.Summary.EarlySavings, 0.001)
}
