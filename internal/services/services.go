package services

import (
	"github.com/farmanet/farmanet-api/internal/config"
	"github.com/farmanet/farmanet-api/internal/jobs"
	"github.com/farmanet/farmanet-api/internal/repository"
	"github.com/farmanet/farmanet-api/internal/storage"
	"gorm.io/gorm"
)

// Services holds all service instances
type Services struct {
	Auth         *AuthService
	User         *UserService
	Supplier     *SupplierService
	Branch       *BranchService
	Purchase     *PurchaseService
	Payment      *PaymentService
	Payables     *PayablesService
	Bank         *BankService
	Notification *NotificationService
	Report       *ReportService
	Audit        *AuditService
	Email        *EmailService
	Export       *ExportService
	Job          *JobService
}

// NewServices creates all service instances
func NewServices(repos *repository.Repositories, worker *jobs.Worker, storage *storage.LocalStorage, cfg *config.Config, db *gorm.DB) *Services {
	notificationSvc := NewNotificationService(repos.Notification, repos.User)
	emailSvc := NewEmailService(cfg)
	auditSvc := NewAuditService(db)

	payablesSvc := NewPayablesService(repos.Purchase, repos.Supplier, cfg)
	jobSvc := NewJobService(worker)

	return &Services{
		Auth:         NewAuthService(repos.User, repos.RefreshToken, cfg),
		User:         NewUserService(repos.User, worker, emailSvc, auditSvc),
		Supplier:     NewSupplierService(repos.Supplier, auditSvc),
		Branch:       NewBranchService(repos.Branch, auditSvc),
		Purchase:     NewPurchaseService(repos.Purchase, repos.Supplier, repos.Branch, auditSvc, worker),
		Payment:      NewPaymentService(repos.Payment, repos.Purchase, repos.Bank, notificationSvc, emailSvc, auditSvc, storage, worker, db),
		Payables:     payablesSvc,
		Bank:         NewBankService(repos.Bank, auditSvc),
		Notification: notificationSvc,
		Report:       NewReportService(payablesSvc, repos.Payment),
		Audit:        auditSvc,
		Email:        emailSvc,
		Export:       NewExportService(payablesSvc),
		Job:          jobSvc,
	}
}
