package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/farmanet/farmanet-api/internal/jobs"
	"github.com/farmanet/farmanet-api/internal/models"
	"github.com/farmanet/farmanet-api/internal/repository"
	"github.com/farmanet/farmanet-api/internal/statemachine"
	"github.com/farmanet/farmanet-api/internal/storage"
	"github.com/farmanet/farmanet-api/pkg/logger"
)

// RegisterPaymentInput carries the fields needed to apply an abono
type RegisterPaymentInput struct {
	PurchaseID    uint
	Amount        float64
	PaymentDate   time.Time
	Method        string
	Reference     string
	BankAccountID *uint
}

type PaymentService struct {
	repo            repository.PaymentRepository
	purchaseRepo    repository.PurchaseRepository
	bankRepo        repository.BankRepository
	notificationSvc *NotificationService
	emailSvc        *EmailService
	auditSvc        *AuditService
	storage         *storage.LocalStorage
	worker          *jobs.Worker
	db              *gorm.DB
}

func NewPaymentService(
	repo repository.PaymentRepository,
	purchaseRepo repository.PurchaseRepository,
	bankRepo repository.BankRepository,
	notificationSvc *NotificationService,
	emailSvc *EmailService,
	auditSvc *AuditService,
	storage *storage.LocalStorage,
	worker *jobs.Worker,
	db *gorm.DB,
) *PaymentService {
	return &PaymentService{
		repo:            repo,
		purchaseRepo:    purchaseRepo,
		bankRepo:        bankRepo,
		notificationSvc: notificationSvc,
		emailSvc:        emailSvc,
		auditSvc:        auditSvc,
		storage:         storage,
		worker:          worker,
		db:              db,
	}
}

func (s *PaymentService) FindByID(ctx context.Context, id uint) (*models.PurchasePayment, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *PaymentService) FindByPurchase(ctx context.Context, purchaseID uint) ([]models.PurchasePayment, error) {
	return s.repo.FindByPurchase(ctx, purchaseID)
}

func (s *PaymentService) List(ctx context.Context, query *repository.ListQuery) ([]models.PurchasePayment, int64, error) {
	return s.repo.List(ctx, query)
}

// Register applies an abono to a purchase invoice. The payment row, the
// purchase aggregates and the bank movement commit in one transaction.
func (s *PaymentService) Register(ctx context.Context, input *RegisterPaymentInput, actorID uint, ip, userAgent string) (*models.PurchasePayment, error) {
	if input.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	purchase, err := s.purchaseRepo.FindByID(ctx, input.PurchaseID)
	if err != nil {
		return nil, ErrNotFound
	}

	if !purchase.CanReceivePayment() {
		return nil, ErrInvalidState
	}

	// An abono never exceeds the outstanding balance
	if input.Amount > purchase.Remaining()+0.009 {
		return nil, ErrOverpayment
	}

	if input.BankAccountID != nil {
		if _, err := s.bankRepo.FindAccountByID(ctx, *input.BankAccountID); err != nil {
			return nil, fmt.Errorf("cuenta bancaria no encontrada: %w", err)
		}
	}

	paymentDate := input.PaymentDate
	if paymentDate.IsZero() {
		paymentDate = time.Now()
	}
	method := input.Method
	if method == "" {
		method = models.PaymentMethodTransfer
	}

	payment := &models.PurchasePayment{
		PurchaseID:    purchase.ID,
		Amount:        input.Amount,
		PaymentDate:   paymentDate,
		Method:        method,
		Reference:     input.Reference,
		VoucherNumber: newVoucherNumber(),
		BankAccountID: input.BankAccountID,
		Status:        models.PaymentStatusApplied,
		CreatedBy:     &actorID,
	}

	sfsm := statemachine.NewSettlementFSM(purchase)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.CreateTx(ctx, tx, payment); err != nil {
			return err
		}

		purchase.AmountPaid += input.Amount
		if err := sfsm.ApplyPayment(ctx, purchase.Remaining()); err != nil {
			return err
		}
		if err := s.purchaseRepo.UpdateAggregates(ctx, tx, purchase); err != nil {
			return err
		}

		if input.BankAccountID != nil {
			movement := &models.BankMovement{
				BankAccountID: *input.BankAccountID,
				PaymentID:     &payment.ID,
				Type:          models.MovementDebit,
				Amount:        input.Amount,
				Description:   fmt.Sprintf("Abono a factura %s (comprobante %s)", purchase.InvoiceNumber, payment.VoucherNumber),
				MovementDate:  paymentDate,
				CreatedBy:     &actorID,
			}
			if err := s.bankRepo.CreateMovement(ctx, tx, movement); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Notify admins in the background
	settled := purchase.IsSettled()
	s.worker.EnqueueAsync(func(ctx context.Context) error {
		title := "Abono registrado"
		msg := fmt.Sprintf("Abono de %.2f aplicado a la factura %s", input.Amount, purchase.InvoiceNumber)
		if settled {
			title = "Factura liquidada"
			msg = fmt.Sprintf("La factura %s quedó liquidada con el abono de %.2f", purchase.InvoiceNumber, input.Amount)
		}
		return s.notificationSvc.NotifyAdmins(ctx, title, msg, models.NotificationTypePaymentRegistered)
	})

	// Audit log
	s.auditSvc.Log(ctx, actorID, "CREATE", "Payment", payment.ID,
		fmt.Sprintf("Abono de %.2f aplicado a factura #%d", input.Amount, purchase.ID), ip, userAgent)

	return payment, nil
}

// Reverse undoes an applied abono. The original row is kept and marked
// reversed; the purchase aggregate is recomputed from the surviving abonos and
// the bank ledger gets a compensating credit.
func (s *PaymentService) Reverse(ctx context.Context, id uint, actorID uint, ip, userAgent string) (*models.PurchasePayment, error) {
	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}

	if payment.IsReversed() {
		return nil, ErrAlreadyReversed
	}

	purchase, err := s.purchaseRepo.FindByID(ctx, payment.PurchaseID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.WithContext(ctx).
			Model(&models.PurchasePayment{}).
			Where("id = ? AND status = ?", payment.ID, models.PaymentStatusApplied).
			Updates(map[string]interface{}{
				"status":      models.PaymentStatusReversed,
				"reversed_at": now,
				"reversed_by": actorID,
			}).Error; err != nil {
			return err
		}

		purchase.AmountPaid -= payment.Amount
		if purchase.AmountPaid < 0 {
			purchase.AmountPaid = 0
		}

		sfsm := statemachine.NewSettlementFSM(purchase)
		if err := sfsm.ReversePayment(ctx, purchase.AmountPaid); err != nil {
			return err
		}
		if err := s.purchaseRepo.UpdateAggregates(ctx, tx, purchase); err != nil {
			return err
		}

		if payment.BankAccountID != nil {
			movement := &models.BankMovement{
				BankAccountID: *payment.BankAccountID,
				PaymentID:     &payment.ID,
				Type:          models.MovementCredit,
				Amount:        payment.Amount,
				Description:   fmt.Sprintf("Reversión de abono (comprobante %s)", payment.VoucherNumber),
				MovementDate:  now,
				CreatedBy:     &actorID,
			}
			if err := s.bankRepo.CreateMovement(ctx, tx, movement); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	payment.Status = models.PaymentStatusReversed
	payment.ReversedAt = &now
	payment.ReversedBy = &actorID

	s.worker.EnqueueAsync(func(ctx context.Context) error {
		return s.notificationSvc.NotifyAdmins(ctx, "Abono reversado",
			fmt.Sprintf("El abono %s de %.2f fue reversado", payment.VoucherNumber, payment.Amount),
			models.NotificationTypePaymentReversed)
	})

	s.auditSvc.Log(ctx, actorID, "REVERSE", "Payment", payment.ID,
		fmt.Sprintf("Abono de %.2f reversado (factura #%d)", payment.Amount, payment.PurchaseID), ip, userAgent)

	return payment, nil
}

// UpdateReceiptPath attaches an uploaded receipt file to a payment
func (s *PaymentService) UpdateReceiptPath(ctx context.Context, id uint, path string) error {
	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	payment.ReceiptPath = &path
	return s.repo.Update(ctx, payment)
}

// RecalculateAggregates rebuilds a purchase aggregate from its applied abonos.
// Used to heal drift after manual database intervention.
func (s *PaymentService) RecalculateAggregates(ctx context.Context, purchaseID uint) error {
	purchase, err := s.purchaseRepo.FindByID(ctx, purchaseID)
	if err != nil {
		return err
	}

	sum, err := s.repo.SumAppliedByPurchase(ctx, purchaseID)
	if err != nil {
		return err
	}

	purchase.AmountPaid = sum
	switch {
	case purchase.Total <= 0 || sum <= 0:
		purchase.Settlement = models.SettlementUnpaid
	case sum >= purchase.Total:
		purchase.Settlement = models.SettlementPaid
	default:
		purchase.Settlement = models.SettlementPartiallyPaid
	}

	return s.purchaseRepo.UpdateAggregates(ctx, nil, purchase)
}

// CheckOverdueInvoices scans outstanding invoices and notifies admins about
// the ones past their due date. Intended to run on a schedule.
func (s *PaymentService) CheckOverdueInvoices(ctx context.Context, payablesSvc *PayablesService) error {
	overdue, err := payablesSvc.GetOverdueInvoices(ctx)
	if err != nil {
		return err
	}
	if len(overdue) == 0 {
		return nil
	}

	var totalOwed float64
	for _, inv := range overdue {
		totalOwed += inv.AmountRemaining
	}

	msg := fmt.Sprintf("Hay %d factura(s) vencida(s) por un total de %.2f", len(overdue), totalOwed)
	logger.Info("Overdue invoice scan completed", "overdue_count", len(overdue), "total_owed", totalOwed)

	return s.notificationSvc.NotifyAdmins(ctx, "Facturas vencidas", msg, models.NotificationTypeInvoiceOverdue)
}

// SendDailyPayablesDigest emails admins the overdue invoices and the pronto
// pago candidates whose window is still open. Runs once per day.
func (s *PaymentService) SendDailyPayablesDigest(ctx context.Context, payablesSvc *PayablesService, userRepo repository.UserRepository) error {
	overdue, err := payablesSvc.GetOverdueInvoices(ctx)
	if err != nil {
		return fmt.Errorf("find overdue invoices: %w", err)
	}

	candidates, err := payablesSvc.GetEarlyPaymentCandidates(ctx)
	if err != nil {
		return fmt.Errorf("find early payment candidates: %w", err)
	}

	if len(overdue) == 0 && len(candidates) == 0 {
		return nil
	}

	admins, err := userRepo.FindAdmins(ctx)
	if err != nil {
		return err
	}

	sent := 0
	for i := range admins {
		admin := &admins[i]
		if err := s.emailSvc.SendPayablesDigest(ctx, admin, overdue, candidates); err != nil {
			logger.Warn(fmt.Sprintf("[Daily digest] Failed to send payables digest to user %d: %v", admin.ID, err))
			continue
		}
		sent++
	}

	logger.Info(fmt.Sprintf("[Daily digest] Sent %d payables digest email(s): %d overdue, %d pronto pago", sent, len(overdue), len(candidates)))
	return nil
}

// newVoucherNumber generates a short unique voucher reference
func newVoucherNumber() string {
	return "AB-" + strings.ToUpper(uuid.New().String()[:8])
}
