package repository

import (
	"gorm.io/gorm"
)

// Repositories holds all repository instances
type Repositories struct {
	User         UserRepository
	Supplier     SupplierRepository
	Branch       BranchRepository
	Purchase     PurchaseRepository
	Payment      PaymentRepository
	Bank         BankRepository
	Notification NotificationRepository
	RefreshToken RefreshTokenRepository
}

// NewRepositories creates all repository instances
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Supplier:     NewSupplierRepository(db),
		Branch:       NewBranchRepository(db),
		Purchase:     NewPurchaseRepository(db),
		Payment:      NewPaymentRepository(db),
		Bank:         NewBankRepository(db),
		Notification: NewNotificationRepository(db),
		RefreshToken: NewRefreshTokenRepository(db),
	}
}
