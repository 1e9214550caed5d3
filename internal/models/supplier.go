package models

import (
	"time"
)

// Supplier represents a supplier (proveedor) granting credit terms to the chain
type Supplier struct {
	ID                   uint       `gorm:"primaryKey" json:"id"`
	Name                 string     `gorm:"not null;index" json:"name"`
	TaxID                string     `gorm:"column:tax_id;uniqueIndex" json:"tax_id"`
	Phone                string     `json:"phone"`
	Email                string     `json:"email"`
	CreditDays           int        `gorm:"default:0" json:"credit_days"`
	CommercialDiscount   float64    `gorm:"type:decimal(5,2);default:0" json:"commercial_discount"`
	EarlyPaymentDiscount float64    `gorm:"type:decimal(5,2);default:0" json:"early_payment_discount"`
	Notes                *string    `gorm:"type:text" json:"notes"`
	DiscardedAt          *time.Time `gorm:"index" json:"-"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`

	// Associations
	Purchases []Purchase `gorm:"foreignKey:SupplierID" json:"purchases,omitempty"`
}

// TableName specifies the table name for Supplier
func (Supplier) TableName() string {
	return "suppliers"
}

// ExtendsCredit returns true if the supplier grants a payment grace period
func (s *Supplier) ExtendsCredit() bool {
	return s.CreditDays > 0
}

// SupplierResponse is the JSON response format for suppliers
type SupplierResponse struct {
	ID                   uint      `json:"id"`
	Name                 string    `json:"name"`
	TaxID                string    `json:"tax_id"`
	Phone                string    `json:"phone"`
	Email                string    `json:"email"`
	CreditDays           int       `json:"credit_days"`
	CommercialDiscount   float64   `json:"commercial_discount"`
	EarlyPaymentDiscount float64   `json:"early_payment_discount"`
	Notes                *string   `json:"notes,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
}

// ToResponse converts Supplier to SupplierResponse
func (s *Supplier) ToResponse() SupplierResponse {
	return SupplierResponse{
		ID:                   s.ID,
		Name:                 s.Name,
		TaxID:                s.TaxID,
		Phone:                s.Phone,
		Email:                s.Email,
		CreditDays:           s.CreditDays,
		CommercialDiscount:   s.CommercialDiscount,
		EarlyPaymentDiscount: s.EarlyPaymentDiscount,
		Notes:                s.Notes,
		CreatedAt:            s.CreatedAt,
	}
}
