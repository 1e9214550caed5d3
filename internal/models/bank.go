package models

import (
	"time"
)

// Bank movement type constants
const (
	MovementDebit  = "debit"
	MovementCredit = "credit"
)

// BankAccount is a company account payments are drawn from
type BankAccount struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	BankName  string    `gorm:"not null" json:"bank_name"`
	Alias     string    `gorm:"uniqueIndex" json:"alias"`
	Number    string    `gorm:"not null" json:"number"`
	Currency  string    `gorm:"default:USD" json:"currency"`
	Balance   float64   `gorm:"type:decimal(14,2);default:0" json:"balance"`
	Active    bool      `gorm:"default:true" json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Associations
	Movements []BankMovement `gorm:"foreignKey:BankAccountID" json:"movements,omitempty"`
}

// TableName specifies the table name for BankAccount
func (BankAccount) TableName() string {
	return "bank_accounts"
}

// BankAccountResponse is the JSON response format for bank accounts
type BankAccountResponse struct {
	ID       uint    `json:"id"`
	BankName string  `json:"bank_name"`
	Alias    string  `json:"alias"`
	Number   string  `json:"number"`
	Currency string  `json:"currency"`
	Balance  float64 `json:"balance"`
	Active   bool    `json:"active"`
}

// ToResponse converts BankAccount to BankAccountResponse
func (ba *BankAccount) ToResponse() BankAccountResponse {
	return BankAccountResponse{
		ID:       ba.ID,
		BankName: ba.BankName,
		Alias:    ba.Alias,
		Number:   maskAccountNumber(ba.Number),
		Currency: ba.Currency,
		Balance:  ba.Balance,
		Active:   ba.Active,
	}
}

// maskAccountNumber shows only the last four digits of an account number
func maskAccountNumber(number string) string {
	if len(number) <= 4 {
		return number
	}
	masked := make([]rune, 0, len(number))
	runes := []rune(number)
	for i, r := range runes {
		if i < len(runes)-4 {
			masked = append(masked, '*')
		} else {
			masked = append(masked, r)
		}
	}
	return string(masked)
}

// BankMovement is a ledger entry recording money leaving or entering an account.
// The ledger is append only; reversals add a compensating row.
type BankMovement struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	BankAccountID uint      `gorm:"not null;index" json:"bank_account_id"`
	PaymentID     *uint     `gorm:"index" json:"payment_id"`
	Type          string    `gorm:"not null;index" json:"type"`
	Amount        float64   `gorm:"type:decimal(14,2);not null" json:"amount"`
	BalanceAfter  float64   `gorm:"type:decimal(14,2)" json:"balance_after"`
	Description   string    `json:"description"`
	MovementDate  time.Time `gorm:"not null;index" json:"movement_date"`
	CreatedBy     *uint     `json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`

	// Associations
	BankAccount *BankAccount     `gorm:"foreignKey:BankAccountID" json:"bank_account,omitempty"`
	Payment     *PurchasePayment `gorm:"foreignKey:PaymentID" json:"payment,omitempty"`
}

// TableName specifies the table name for BankMovement
func (BankMovement) TableName() string {
	return "bank_movements"
}

// IsDebit returns true if the movement takes money out of the account
func (bm *BankMovement) IsDebit() bool {
	return bm.Type == MovementDebit
}
