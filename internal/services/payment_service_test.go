package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/farmanet/farmanet-api/internal/models"
	"github.com/farmanet/farmanet-api/internal/repository"
	"github.com/farmanet/farmanet-api/pkg/logger"
)

// Mock PaymentRepository
type mockPaymentRepository struct {
	repository.PaymentRepository
	mockFindByID func(ctx context.Context, id uint) (*models.PurchasePayment, error)
}

func (m *mockPaymentRepository) FindByID(ctx context.Context, id uint) (*models.PurchasePayment, error) {
	if m.mockFindByID != nil {
		return m.mockFindByID(ctx, id)
	}
	return nil, ErrNotFound
}

// Mock UserRepository
type mockUserRepository struct {
	repository.UserRepository
	mockFindAdmins func(ctx context.Context) ([]models.User, error)
}

func (m *mockUserRepository) FindAdmins(ctx context.Context) ([]models.User, error) {
	if m.mockFindAdmins != nil {
		return m.mockFindAdmins(ctx)
	}
	return nil, nil
}

// Mock NotificationRepository
type mockNotificationRepository struct {
	repository.NotificationRepository
	mockCreate func(ctx context.Context, notification *models.Notification) error
}

func (m *mockNotificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	if m.mockCreate != nil {
		return m.mockCreate(ctx, notification)
	}
	return nil
}

func TestRegister_RejectsInvalidAmount(t *testing.T) {
	service := NewPaymentService(&mockPaymentRepository{}, &mockPurchaseRepository{}, nil, nil, nil, nil, nil, nil, nil)

	_, err := service.Register(context.Background(), &RegisterPaymentInput{PurchaseID: 1, Amount: 0}, 1, "", "")
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = service.Register(context.Background(), &RegisterPaymentInput{PurchaseID: 1, Amount: -50}, 1, "", "")
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestRegister_RejectsUnknownPurchase(t *testing.T) {
	purchaseRepo := &mockPurchaseRepository{}
	service := NewPaymentService(&mockPaymentRepository{}, purchaseRepo, nil, nil, nil, nil, nil, nil, nil)

	_, err := service.Register(context.Background(), &RegisterPaymentInput{PurchaseID: 99, Amount: 100}, 1, "", "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRegister_RejectsSettledInvoice(t *testing.T) {
	purchaseRepo := &mockPurchaseRepository{}
	purchaseRepo.mockFindByID = func(ctx context.Context, id uint) (*models.Purchase, error) {
		return &models.Purchase{ID: 1, Total: 500, AmountPaid: 500, Settlement: models.SettlementPaid}, nil
	}

	service := NewPaymentService(&mockPaymentRepository{}, purchaseRepo, nil, nil, nil, nil, nil, nil, nil)

	_, err := service.Register(context.Background(), &RegisterPaymentInput{PurchaseID: 1, Amount: 100}, 1, "", "")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestRegister_RejectsOverpayment(t *testing.T) {
	purchaseRepo := &mockPurchaseRepository{}
	purchaseRepo.mockFindByID = func(ctx context.Context, id uint) (*models.Purchase, error) {
		return &models.Purchase{ID: 1, Total: 1000, AmountPaid: 700, Settlement: models.SettlementPartiallyPaid}, nil
	}

	service := NewPaymentService(&mockPaymentRepository{}, purchaseRepo, nil, nil, nil, nil, nil, nil, nil)

	// Remaining is 300; anything above it bounces
	_, err := service.Register(context.Background(), &RegisterPaymentInput{PurchaseID: 1, Amount: 300.50}, 1, "", "")
	assert.ErrorIs(t, err, ErrOverpayment)
}

func TestReverse_RejectsAlreadyReversed(t *testing.T) {
	reversedAt := time.Now()
	paymentRepo := &mockPaymentRepository{}
	paymentRepo.mockFindByID = func(ctx context.Context, id uint) (*models.PurchasePayment, error) {
		return &models.PurchasePayment{
			ID:         id,
			PurchaseID: 1,
			Amount:     200,
			Status:     models.PaymentStatusReversed,
			ReversedAt: &reversedAt,
		}, nil
	}

	service := NewPaymentService(paymentRepo, &mockPurchaseRepository{}, nil, nil, nil, nil, nil, nil, nil)

	_, err := service.Reverse(context.Background(), 5, 1, "", "")
	assert.ErrorIs(t, err, ErrAlreadyReversed)
}

func TestCheckOverdueInvoices_NotifiesAdmins(t *testing.T) {
	logger.Setup("test")

	now := time.Now()
	overdueDate := now.AddDate(0, 0, -90)

	purchaseRepo := &mockPurchaseRepository{}
	supplierRepo := &mockSupplierRepository{}

	purchaseRepo.mockFindOutstanding = func(ctx context.Context) ([]models.Purchase, error) {
		return []models.Purchase{
			{ID: 1, SupplierID: 1, InvoiceNumber: "F-900", PurchaseDate: &overdueDate, Total: 1200, AmountPaid: 200},
		}, nil
	}
	supplierRepo.mockFindAll = func(ctx context.Context) ([]models.Supplier, error) {
		return []models.Supplier{{ID: 1, Name: "Droguería Norte", CreditDays: 30}}, nil
	}

	payablesSvc := testPayablesService(purchaseRepo, supplierRepo)

	mockUserRepo := &mockUserRepository{}
	mockUserRepo.mockFindAdmins = func(ctx context.Context) ([]models.User, error) {
		return []models.User{{ID: 99, Email: "admin@farmanet.app"}}, nil
	}

	var created []models.Notification
	mockNotifRepo := &mockNotificationRepository{}
	mockNotifRepo.mockCreate = func(ctx context.Context, notification *models.Notification) error {
		created = append(created, *notification)
		return nil
	}

	notifService := NewNotificationService(mockNotifRepo, mockUserRepo)
	service := NewPaymentService(&mockPaymentRepository{}, purchaseRepo, nil, notifService, nil, nil, nil, nil, nil)

	err := service.CheckOverdueInvoices(context.Background(), payablesSvc)
	assert.NoError(t, err)
	assert.Len(t, created, 1)
	assert.Equal(t, uint(99), created[0].UserID)
	assert.Equal(t, "Facturas vencidas", created[0].Title)
	assert.Contains(t, created[0].Message, "1000.00", "message carries the outstanding total")
}

func TestCheckOverdueInvoices_NoOverdueIsQuiet(t *testing.T) {
	purchaseRepo := &mockPurchaseRepository{}
	supplierRepo := &mockSupplierRepository{}

	purchaseRepo.mockFindOutstanding = func(ctx context.Context) ([]models.Purchase, error) {
		return nil, nil
	}
	supplierRepo.mockFindAll = func(ctx context.Context) ([]models.Supplier, error) {
		return nil, nil
	}

	payablesSvc := testPayablesService(purchaseRepo, supplierRepo)

	notified := false
	mockNotifRepo := &mockNotificationRepository{}
	mockNotifRepo.mockCreate = func(ctx context.Context, notification *models.Notification) error {
		notified = true
		return nil
	}
	mockUserRepo := &mockUserRepository{}
	mockUserRepo.mockFindAdmins = func(ctx context.Context) ([]models.User, error) {
		return []models.User{{ID: 1}}, nil
	}

	notifService := NewNotificationService(mockNotifRepo, mockUserRepo)
	service := NewPaymentService(&mockPaymentRepository{}, purchaseRepo, nil, notifService, nil, nil, nil, nil, nil)

	err := service.CheckOverdueInvoices(context.Background(), payablesSvc)
	assert.NoError(t, err)
	assert.False(t, notified, "no notification when nothing is overdue")
}
