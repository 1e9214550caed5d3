package handlers

import (
	"github.com/farmanet/farmanet-api/internal/services"
	"github.com/farmanet/farmanet-api/internal/storage"
)

// Handlers holds all handler instances
type Handlers struct {
	Health       *HealthHandler
	Auth         *AuthHandler
	User         *UserHandler
	Supplier     *SupplierHandler
	Branch       *BranchHandler
	Purchase     *PurchaseHandler
	Payment      *PaymentHandler
	Payables     *PayablesHandler
	Bank         *BankHandler
	Notification *NotificationHandler
	Audit        *AuditHandler
	Job          *JobHandler
}

// NewHandlers creates all handler instances
func NewHandlers(svcs *services.Services, storage *storage.LocalStorage) *Handlers {
	return &Handlers{
		Health:       NewHealthHandler(),
		Auth:         NewAuthHandler(svcs.Auth),
		User:         NewUserHandler(svcs.User),
		Supplier:     NewSupplierHandler(svcs.Supplier),
		Branch:       NewBranchHandler(svcs.Branch),
		Purchase:     NewPurchaseHandler(svcs.Purchase),
		Payment:      NewPaymentHandler(svcs.Payment, svcs.Report, storage),
		Payables:     NewPayablesHandler(svcs.Payables, svcs.Report, svcs.Export),
		Bank:         NewBankHandler(svcs.Bank),
		Notification: NewNotificationHandler(svcs.Notification),
		Audit:        NewAuditHandler(svcs.Audit),
		Job:          NewJobHandler(svcs.Job),
	}
}
