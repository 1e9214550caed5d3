package models

import (
	"time"
)

// Settlement status constants for purchases
const (
	SettlementUnpaid        = "unpaid"
	SettlementPartiallyPaid = "partially_paid"
	SettlementPaid          = "paid"
)

// Purchase represents a supplier invoice received by a branch
type Purchase struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	SupplierID    uint       `gorm:"not null;index" json:"supplier_id"`
	BranchID      uint       `gorm:"not null;index" json:"branch_id"`
	InvoiceNumber string     `gorm:"index" json:"invoice_number"`
	PurchaseDate  *time.Time `gorm:"index" json:"purchase_date"`
	Total         float64    `gorm:"type:decimal(12,2);not null" json:"total"`
	AmountPaid    float64    `gorm:"type:decimal(12,2);default:0" json:"amount_paid"`
	Settlement    string     `gorm:"default:unpaid;index" json:"settlement"`
	Notes         *string    `gorm:"type:text" json:"notes"`
	CreatedBy     *uint      `json:"created_by"`
	DiscardedAt   *time.Time `gorm:"index" json:"-"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	// Associations
	Supplier *Supplier         `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
	Branch   *Branch           `gorm:"foreignKey:BranchID" json:"branch,omitempty"`
	Items    []PurchaseItem    `gorm:"foreignKey:PurchaseID" json:"items,omitempty"`
	Payments []PurchasePayment `gorm:"foreignKey:PurchaseID" json:"payments,omitempty"`
}

// TableName specifies the table name for Purchase
func (Purchase) TableName() string {
	return "purchases"
}

// Remaining returns the outstanding balance, never negative
func (p *Purchase) Remaining() float64 {
	remaining := p.Total - p.AmountPaid
	if remaining < 0 {
		return 0
	}
	return remaining
}

// IsSettled returns true if nothing remains to be paid
func (p *Purchase) IsSettled() bool {
	return p.Settlement == SettlementPaid
}

// CanReceivePayment returns true if the purchase still accepts payments
func (p *Purchase) CanReceivePayment() bool {
	return p.DiscardedAt == nil && p.Settlement != SettlementPaid && p.Remaining() > 0
}

// PurchaseItem is a product line within a purchase invoice
type PurchaseItem struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	PurchaseID uint      `gorm:"not null;index" json:"purchase_id"`
	Name       string    `gorm:"not null" json:"name"`
	Barcode    string    `gorm:"index" json:"barcode"`
	Quantity   float64   `gorm:"type:decimal(10,2);default:1" json:"quantity"`
	UnitCost   float64   `gorm:"type:decimal(12,4);default:0" json:"unit_cost"`
	LineTotal  float64   `gorm:"type:decimal(12,2);default:0" json:"line_total"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName specifies the table name for PurchaseItem
func (PurchaseItem) TableName() string {
	return "purchase_items"
}

// PurchaseResponse is the JSON response format for purchases
type PurchaseResponse struct {
	ID            uint                      `json:"id"`
	SupplierID    uint                      `json:"supplier_id"`
	SupplierName  string                    `json:"supplier_name,omitempty"`
	BranchID      uint                      `json:"branch_id"`
	BranchName    string                    `json:"branch_name,omitempty"`
	InvoiceNumber string                    `json:"invoice_number"`
	PurchaseDate  *time.Time                `json:"purchase_date"`
	Total         float64                   `json:"total"`
	AmountPaid    float64                   `json:"amount_paid"`
	Remaining     float64                   `json:"remaining"`
	Settlement    string                    `json:"settlement"`
	Notes         *string                   `json:"notes,omitempty"`
	Items         []PurchaseItem            `json:"items,omitempty"`
	Payments      []PurchasePaymentResponse `json:"payments,omitempty"`
	CreatedAt     time.Time                 `json:"created_at"`
}

// ToResponse converts Purchase to PurchaseResponse
func (p *Purchase) ToResponse() PurchaseResponse {
	resp := PurchaseResponse{
		ID:            p.ID,
		SupplierID:    p.SupplierID,
		BranchID:      p.BranchID,
		InvoiceNumber: p.InvoiceNumber,
		PurchaseDate:  p.PurchaseDate,
		Total:         p.Total,
		AmountPaid:    p.AmountPaid,
		Remaining:     p.Remaining(),
		Settlement:    p.Settlement,
		Notes:         p.Notes,
		Items:         p.Items,
		CreatedAt:     p.CreatedAt,
	}
	if p.Supplier != nil {
		resp.SupplierName = p.Supplier.Name
	}
	if p.Branch != nil {
		resp.BranchName = p.Branch.Name
	}
	for i := range p.Payments {
		resp.Payments = append(resp.Payments, p.Payments[i].ToResponse())
	}
	return resp
}
