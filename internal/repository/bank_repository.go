package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/farmanet/farmanet-api/internal/models"
)

// BankRepository defines the interface for bank account and movement data access
type BankRepository interface {
	FindAccountByID(ctx context.Context, id uint) (*models.BankAccount, error)
	FindAccounts(ctx context.Context) ([]models.BankAccount, error)
	FindActiveAccounts(ctx context.Context) ([]models.BankAccount, error)
	CreateAccount(ctx context.Context, account *models.BankAccount) error
	UpdateAccount(ctx context.Context, account *models.BankAccount) error
	CreateMovement(ctx context.Context, tx *gorm.DB, movement *models.BankMovement) error
	FindMovementsByAccount(ctx context.Context, accountID uint, query *ListQuery) ([]models.BankMovement, int64, error)
	FindMovementsByPayment(ctx context.Context, paymentID uint) ([]models.BankMovement, error)
	CalculateBalance(ctx context.Context, accountID uint) (float64, error)
}

type bankRepository struct {
	db *gorm.DB
}

// NewBankRepository creates a new bank repository
func NewBankRepository(db *gorm.DB) BankRepository {
	return &bankRepository{db: db}
}

func (r *bankRepository) FindAccountByID(ctx context.Context, id uint) (*models.BankAccount, error) {
	var account models.BankAccount
	err := r.db.WithContext(ctx).First(&account, id).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *bankRepository) FindAccounts(ctx context.Context) ([]models.BankAccount, error) {
	var accounts []models.BankAccount
	err := r.db.WithContext(ctx).Order("bank_name ASC, alias ASC").Find(&accounts).Error
	return accounts, err
}

func (r *bankRepository) FindActiveAccounts(ctx context.Context) ([]models.BankAccount, error) {
	var accounts []models.BankAccount
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("bank_name ASC, alias ASC").
		Find(&accounts).Error
	return accounts, err
}

func (r *bankRepository) CreateAccount(ctx context.Context, account *models.BankAccount) error {
	if err := r.db.WithContext(ctx).Create(account).Error; err != nil {
		if isDuplicateKeyError(err, "bank_accounts_alias_key") {
			return errors.New("Ya existe una cuenta bancaria con este alias")
		}
		return err
	}
	return nil
}

func (r *bankRepository) UpdateAccount(ctx context.Context, account *models.BankAccount) error {
	return r.db.WithContext(ctx).Save(account).Error
}

// CreateMovement appends a ledger row and keeps the account balance column
// in sync, inside the caller's transaction when one is given.
func (r *bankRepository) CreateMovement(ctx context.Context, tx *gorm.DB, movement *models.BankMovement) error {
	db := r.db
	if tx != nil {
		db = tx
	}

	var account models.BankAccount
	if err := db.WithContext(ctx).First(&account, movement.BankAccountID).Error; err != nil {
		return err
	}

	if movement.IsDebit() {
		account.Balance -= movement.Amount
	} else {
		account.Balance += movement.Amount
	}
	movement.BalanceAfter = account.Balance

	if err := db.WithContext(ctx).Create(movement).Error; err != nil {
		return err
	}

	return db.WithContext(ctx).
		Model(&models.BankAccount{}).
		Where("id = ?", account.ID).
		Update("balance", account.Balance).Error
}

func (r *bankRepository) FindMovementsByAccount(ctx context.Context, accountID uint, query *ListQuery) ([]models.BankMovement, int64, error) {
	var movements []models.BankMovement
	var total int64

	db := r.db.WithContext(ctx).Model(&models.BankMovement{}).Where("bank_account_id = ?", accountID)

	if query.Filters["type"] != "" {
		db = db.Where("type = ?", query.Filters["type"])
	}
	if val, ok := query.Filters["start_date"]; ok && val != "" {
		db = db.Where("movement_date >= ?", val)
	}
	if val, ok := query.Filters["end_date"]; ok && val != "" {
		endDate := val
		if len(endDate) == 10 {
			endDate += " 23:59:59"
		}
		db = db.Where("movement_date <= ?", endDate)
	}

	db.Count(&total)
	db = db.Order("movement_date DESC, id DESC")

	if query.PerPage > 0 {
		db = db.Offset((query.Page - 1) * query.PerPage).Limit(query.PerPage)
	}

	err := db.Preload("Payment").Find(&movements).Error
	return movements, total, err
}

func (r *bankRepository) FindMovementsByPayment(ctx context.Context, paymentID uint) ([]models.BankMovement, error) {
	var movements []models.BankMovement
	err := r.db.WithContext(ctx).
		Where("payment_id = ?", paymentID).
		Order("created_at ASC").
		Find(&movements).Error
	return movements, err
}

// CalculateBalance recomputes an account balance from its ledger rows.
// Credits add, debits subtract.
func (r *bankRepository) CalculateBalance(ctx context.Context, accountID uint) (float64, error) {
	var result struct {
		Balance float64
	}

	err := r.db.WithContext(ctx).
		Model(&models.BankMovement{}).
		Select("COALESCE(SUM(CASE WHEN type = ? THEN amount ELSE -amount END), 0) as balance", models.MovementCredit).
		Where("bank_account_id = ?", accountID).
		Scan(&result).Error

	return result.Balance, err
}
