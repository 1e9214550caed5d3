package models

import (
	"time"
)

// Payment status constants
const (
	PaymentStatusApplied  = "applied"
	PaymentStatusReversed = "reversed"
)

// Payment method constants
const (
	PaymentMethodCash     = "cash"
	PaymentMethodTransfer = "transfer"
	PaymentMethodCheck    = "check"
)

// PurchasePayment is an abono applied against a purchase invoice.
// Payments are append only; a mistake is corrected with a reversal,
// never by editing the original row.
type PurchasePayment struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	PurchaseID    uint       `gorm:"not null;index" json:"purchase_id"`
	Amount        float64    `gorm:"type:decimal(12,2);not null" json:"amount"`
	PaymentDate   time.Time  `gorm:"not null;index" json:"payment_date"`
	Method        string     `gorm:"default:transfer" json:"method"`
	Reference     string     `json:"reference"`
	VoucherNumber string     `gorm:"uniqueIndex" json:"voucher_number"`
	BankAccountID *uint      `gorm:"index" json:"bank_account_id"`
	Status        string     `gorm:"default:applied;index" json:"status"`
	ReceiptPath   *string    `json:"-"`
	ReversedAt    *time.Time `json:"reversed_at,omitempty"`
	ReversedBy    *uint      `json:"reversed_by,omitempty"`
	CreatedBy     *uint      `json:"created_by"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	// Associations
	Purchase    *Purchase    `gorm:"foreignKey:PurchaseID" json:"purchase,omitempty"`
	BankAccount *BankAccount `gorm:"foreignKey:BankAccountID" json:"bank_account,omitempty"`
}

// TableName specifies the table name for PurchasePayment
func (PurchasePayment) TableName() string {
	return "purchase_payments"
}

// IsReversed returns true if the payment was undone
func (pp *PurchasePayment) IsReversed() bool {
	return pp.Status == PaymentStatusReversed
}

// HasReceipt returns true if a receipt file was uploaded for the payment
func (pp *PurchasePayment) HasReceipt() bool {
	return pp.ReceiptPath != nil && *pp.ReceiptPath != ""
}

// PurchasePaymentResponse is the JSON response format for payments
type PurchasePaymentResponse struct {
	ID            uint       `json:"id"`
	PurchaseID    uint       `json:"purchase_id"`
	Amount        float64    `json:"amount"`
	PaymentDate   time.Time  `json:"payment_date"`
	Method        string     `json:"method"`
	Reference     string     `json:"reference,omitempty"`
	VoucherNumber string     `json:"voucher_number"`
	BankAccountID *uint      `json:"bank_account_id,omitempty"`
	Status        string     `json:"status"`
	HasReceipt    bool       `json:"has_receipt"`
	ReversedAt    *time.Time `json:"reversed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// ToResponse converts PurchasePayment to PurchasePaymentResponse
func (pp *PurchasePayment) ToResponse() PurchasePaymentResponse {
	return PurchasePaymentResponse{
		ID:            pp.ID,
		PurchaseID:    pp.PurchaseID,
		Amount:        pp.Amount,
		PaymentDate:   pp.PaymentDate,
		Method:        pp.Method,
		Reference:     pp.Reference,
		VoucherNumber: pp.VoucherNumber,
		BankAccountID: pp.BankAccountID,
		Status:        pp.Status,
		HasReceipt:    pp.HasReceipt(),
		ReversedAt:    pp.ReversedAt,
		CreatedAt:     pp.CreatedAt,
	}
}
