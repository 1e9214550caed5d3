// Package aging computes accounts-payable aging, settlement state and
// early-payment ("pronto pago") savings for supplier invoices. It is a pure
// computation layer: it performs no I/O, mutates nothing, and calling it twice
// on the same snapshot yields identical results.
package aging

import (
	"log/slog"
	"math"
	"time"
)

// Settlement is the derived payment state of a purchase invoice
type Settlement string

const (
	SettlementUnpaid        Settlement = "unpaid"
	SettlementPartiallyPaid Settlement = "partially_paid"
	SettlementPaid          Settlement = "paid"
)

// DefaultEarlyPaymentWindowDays is the pronto pago window, counted in calendar
// days from the purchase date.
const DefaultEarlyPaymentWindowDays = 15

// Supplier carries the credit terms needed to age an invoice
type Supplier struct {
	ID                   uint
	Name                 string
	CreditDays           int
	CommercialDiscount   float64
	EarlyPaymentDiscount float64
}

// SentinelSupplier stands in for an unresolved supplier reference: zero credit
// days, zero discounts. Financial totals still compute; aging fields stay
// undefined.
func SentinelSupplier(id uint) Supplier {
	return Supplier{ID: id, Name: "Proveedor desconocido"}
}

// Payment is a single settlement event against an invoice
type Payment struct {
	Amount float64
	Date   time.Time
}

// Purchase is the canonical invoice record the calculator operates on.
// A zero Date means the purchase date is unknown; aging fields derived from it
// stay undefined rather than defaulting to "due today".
type Purchase struct {
	ID            uint
	SupplierID    uint
	BranchID      uint
	InvoiceNumber string
	Date          time.Time
	Total         float64
	AmountPaid    *float64 // server-maintained aggregate, trusted when present
	Payments      []Payment
}

// InvoiceView is the derived per-invoice view model
type InvoiceView struct {
	PurchaseID      uint       `json:"purchase_id"`
	SupplierID      uint       `json:"supplier_id"`
	SupplierName    string     `json:"supplier_name"`
	BranchID        uint       `json:"branch_id"`
	InvoiceNumber   string     `json:"invoice_number"`
	Total           float64    `json:"total"`
	AmountPaid      float64    `json:"amount_paid"`
	AmountRemaining float64    `json:"amount_remaining"`
	Settlement      Settlement `json:"settlement"`
	DueDate         *time.Time `json:"due_date,omitempty"`
	DaysRemaining   *int       `json:"days_remaining,omitempty"`
	Overdue         bool       `json:"overdue"`
	EarlySavings    float64    `json:"early_savings"`
}

// Summary aggregates a filtered invoice set
type Summary struct {
	TotalInvoiced float64 `json:"total_invoiced"`
	TotalPaid     float64 `json:"total_paid"`
	TotalOwed     float64 `json:"total_owed"`
	EarlySavings  float64 `json:"early_savings"`
	InvoiceCount  int     `json:"invoice_count"`
	OverdueCount  int     `json:"overdue_count"`
}

// AmountPaid returns the settled amount for a purchase. The server aggregate is
// used verbatim when present and sane; otherwise payments are summed, with
// NaN or negative entries contributing zero instead of failing.
func AmountPaid(p Purchase) float64 {
	if p.AmountPaid != nil && !math.IsNaN(*p.AmountPaid) && *p.AmountPaid >= 0 {
		return *p.AmountPaid
	}

	var paid float64
	for _, pay := range p.Payments {
		if math.IsNaN(pay.Amount) || pay.Amount < 0 {
			slog.Warn("Ignoring invalid payment amount", "purchase_id", p.ID, "amount", pay.Amount)
			continue
		}
		paid += pay.Amount
	}
	return paid
}

// Remaining returns the outstanding balance, never negative
func Remaining(total, amountPaid float64) float64 {
	return math.Max(0, total-amountPaid)
}

// ClassifySettlement derives the settlement state from amounts alone.
// A degenerate invoice (total <= 0) is always unpaid to avoid a false "paid".
func ClassifySettlement(total, amountPaid float64) Settlement {
	if total <= 0 {
		return SettlementUnpaid
	}
	if amountPaid >= total {
		return SettlementPaid
	}
	if amountPaid > 0 {
		return SettlementPartiallyPaid
	}
	return SettlementUnpaid
}

// DueDate returns purchaseDate + creditDays calendar days, or nil when the
// purchase date is unknown or the supplier extends no credit.
func DueDate(purchaseDate time.Time, creditDays int) *time.Time {
	if purchaseDate.IsZero() || creditDays <= 0 {
		return nil
	}
	due := purchaseDate.AddDate(0, 0, creditDays)
	return &due
}

// DaysRemaining returns whole days until the due date. Both dates are
// re-anchored to UTC midnight so time of day and DST transitions never
// drift the count (a 23 or 25 hour local day still counts as one day).
// Positive = days until due, negative = days overdue, zero = due today.
func DaysRemaining(dueDate, today time.Time) int {
	due := time.Date(dueDate.Year(), dueDate.Month(), dueDate.Day(), 0, 0, 0, 0, time.UTC)
	now := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	return int(due.Sub(now).Hours() / 24)
}

// EarlySavings returns the advisory pronto pago savings for a single invoice.
// The discount is informational: it prompts the user to pay sooner and is never
// deducted from the outstanding balance.
func EarlySavings(p Purchase, s Supplier, today time.Time, windowDays int) float64 {
	if windowDays <= 0 {
		windowDays = DefaultEarlyPaymentWindowDays
	}
	if s.EarlyPaymentDiscount <= 0 || p.Date.IsZero() {
		return 0
	}
	// Same sanitization as BuildInvoice: a malformed total yields zero savings,
	// never a NaN or negative contribution to the aggregate
	if math.IsNaN(p.Total) || math.IsInf(p.Total, 0) || p.Total <= 0 {
		return 0
	}
	if ClassifySettlement(p.Total, AmountPaid(p)) == SettlementPaid {
		return 0
	}
	limit := startOfDay(p.Date).AddDate(0, 0, windowDays)
	if startOfDay(today).After(limit) {
		return 0
	}
	return p.Total * s.EarlyPaymentDiscount / 100
}

// BuildInvoice derives the full view model for one purchase
func BuildInvoice(p Purchase, s Supplier, today time.Time, windowDays int) InvoiceView {
	total := p.Total
	if math.IsNaN(total) || total < 0 {
		slog.Warn("Ignoring invalid purchase total", "purchase_id", p.ID, "total", total)
		total = 0
	}

	paid := AmountPaid(p)
	settlement := ClassifySettlement(total, paid)

	view := InvoiceView{
		PurchaseID:      p.ID,
		SupplierID:      p.SupplierID,
		SupplierName:    s.Name,
		BranchID:        p.BranchID,
		InvoiceNumber:   p.InvoiceNumber,
		Total:           total,
		AmountPaid:      paid,
		AmountRemaining: Remaining(total, paid),
		Settlement:      settlement,
	}

	if due := DueDate(p.Date, s.CreditDays); due != nil {
		days := DaysRemaining(*due, today)
		view.DueDate = due
		view.DaysRemaining = &days
		// A paid invoice is never overdue regardless of date math
		view.Overdue = days < 0 && settlement != SettlementPaid
	}

	view.EarlySavings = EarlySavings(p, s, today, windowDays)
	return view
}

// Build derives view models and aggregate totals for a purchase snapshot.
// Suppliers are resolved by ID; unresolved references fall back to the
// sentinel supplier. A single malformed record never aborts the rest.
func Build(purchases []Purchase, suppliers []Supplier, today time.Time, windowDays int) ([]InvoiceView, Summary) {
	byID := make(map[uint]Supplier, len(suppliers))
	for _, s := range suppliers {
		byID[s.ID] = s
	}

	views := make([]InvoiceView, 0, len(purchases))
	var summary Summary

	for _, p := range purchases {
		supplier, ok := byID[p.SupplierID]
		if !ok {
			slog.Warn("Supplier not found for purchase, using sentinel", "purchase_id", p.ID, "supplier_id", p.SupplierID)
			supplier = SentinelSupplier(p.SupplierID)
		}

		view := BuildInvoice(p, supplier, today, windowDays)
		views = append(views, view)

		summary.TotalInvoiced += view.Total
		summary.TotalPaid += view.AmountPaid
		summary.TotalOwed += view.AmountRemaining
		summary.EarlySavings += view.EarlySavings
		summary.InvoiceCount++
		if view.Overdue {
			summary.OverdueCount++
		}
	}

	return views, summary
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
