package services

import (
	"context"
	"time"

	"github.com/farmanet/farmanet-api/internal/aging"
	"github.com/farmanet/farmanet-api/internal/config"
	"github.com/farmanet/farmanet-api/internal/models"
	"github.com/farmanet/farmanet-api/internal/repository"
)

// PayablesView is the aging dashboard payload: every invoice with its
// settlement, due date and pronto pago figures, plus chain-wide totals.
type PayablesView struct {
	Invoices []aging.InvoiceView `json:"invoices"`
	Summary  aging.Summary       `json:"summary"`
	AsOf     time.Time           `json:"as_of"`
}

// SupplierStatement is the per-supplier account statement
type SupplierStatement struct {
	Supplier models.SupplierResponse `json:"supplier"`
	Invoices []aging.InvoiceView     `json:"invoices"`
	Summary  aging.Summary           `json:"summary"`
	AsOf     time.Time               `json:"as_of"`
}

// PayablesService computes accounts payable aging on top of stored purchases
type PayablesService struct {
	purchaseRepo repository.PurchaseRepository
	supplierRepo repository.SupplierRepository
	cfg          *config.Config
}

func NewPayablesService(purchaseRepo repository.PurchaseRepository, supplierRepo repository.SupplierRepository, cfg *config.Config) *PayablesService {
	return &PayablesService{
		purchaseRepo: purchaseRepo,
		supplierRepo: supplierRepo,
		cfg:          cfg,
	}
}

// GetAgingView builds the payables dashboard for the purchases matching the query
func (s *PayablesService) GetAgingView(ctx context.Context, query *repository.PurchaseQuery) (*PayablesView, error) {
	purchases, _, err := s.purchaseRepo.List(ctx, query)
	if err != nil {
		return nil, err
	}

	suppliers, err := s.supplierRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	invoices, summary := aging.Build(toAgingPurchases(purchases), toAgingSuppliers(suppliers), now, s.windowDays())

	return &PayablesView{
		Invoices: invoices,
		Summary:  summary,
		AsOf:     now,
	}, nil
}

// GetSupplierStatement builds the account statement for one supplier
func (s *PayablesService) GetSupplierStatement(ctx context.Context, supplierID uint) (*SupplierStatement, error) {
	supplier, err := s.supplierRepo.FindByID(ctx, supplierID)
	if err != nil {
		return nil, ErrNotFound
	}

	purchases, err := s.purchaseRepo.FindBySupplier(ctx, supplierID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	invoices, summary := aging.Build(toAgingPurchases(purchases),
		[]aging.Supplier{toAgingSupplier(supplier)}, now, s.windowDays())

	return &SupplierStatement{
		Supplier: supplier.ToResponse(),
		Invoices: invoices,
		Summary:  summary,
		AsOf:     now,
	}, nil
}

// GetOverdueInvoices returns only the invoices past their due date with a balance
func (s *PayablesService) GetOverdueInvoices(ctx context.Context) ([]aging.InvoiceView, error) {
	purchases, err := s.purchaseRepo.FindOutstanding(ctx)
	if err != nil {
		return nil, err
	}

	suppliers, err := s.supplierRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	invoices, _ := aging.Build(toAgingPurchases(purchases), toAgingSuppliers(suppliers), time.Now(), s.windowDays())

	var overdue []aging.InvoiceView
	for _, inv := range invoices {
		if inv.Overdue {
			overdue = append(overdue, inv)
		}
	}
	return overdue, nil
}

// GetEarlyPaymentCandidates returns outstanding invoices whose pronto pago
// window is still open, sorted oldest first by the repository.
func (s *PayablesService) GetEarlyPaymentCandidates(ctx context.Context) ([]aging.InvoiceView, error) {
	purchases, err := s.purchaseRepo.FindOutstanding(ctx)
	if err != nil {
		return nil, err
	}

	suppliers, err := s.supplierRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	invoices, _ := aging.Build(toAgingPurchases(purchases), toAgingSuppliers(suppliers), time.Now(), s.windowDays())

	var candidates []aging.InvoiceView
	for _, inv := range invoices {
		if inv.EarlySavings > 0 {
			candidates = append(candidates, inv)
		}
	}
	return candidates, nil
}

// GetStats returns aggregate payable figures straight from the database
func (s *PayablesService) GetStats(ctx context.Context) (*repository.PurchaseStats, error) {
	return s.purchaseRepo.GetStats(ctx)
}

func (s *PayablesService) windowDays() int {
	if s.cfg != nil && s.cfg.EarlyPaymentWindowDays > 0 {
		return s.cfg.EarlyPaymentWindowDays
	}
	return aging.DefaultEarlyPaymentWindowDays
}

func toAgingPurchases(purchases []models.Purchase) []aging.Purchase {
	out := make([]aging.Purchase, 0, len(purchases))
	for i := range purchases {
		out = append(out, toAgingPurchase(&purchases[i]))
	}
	return out
}

func toAgingPurchase(p *models.Purchase) aging.Purchase {
	amountPaid := p.AmountPaid
	ap := aging.Purchase{
		ID:            p.ID,
		SupplierID:    p.SupplierID,
		BranchID:      p.BranchID,
		InvoiceNumber: p.InvoiceNumber,
		Total:         p.Total,
		AmountPaid:    &amountPaid,
	}
	if p.PurchaseDate != nil {
		ap.Date = *p.PurchaseDate
	}
	for _, pay := range p.Payments {
		if pay.IsReversed() {
			continue
		}
		ap.Payments = append(ap.Payments, aging.Payment{Amount: pay.Amount, Date: pay.PaymentDate})
	}
	return ap
}

func toAgingSuppliers(suppliers []models.Supplier) []aging.Supplier {
	out := make([]aging.Supplier, 0, len(suppliers))
	for i := range suppliers {
		out = append(out, toAgingSupplier(&suppliers[i]))
	}
	return out
}

func toAgingSupplier(s *models.Supplier) aging.Supplier {
	return aging.Supplier{
		ID:                   s.ID,
		Name:                 s.Name,
		CreditDays:           s.CreditDays,
		CommercialDiscount:   s.CommercialDiscount,
		EarlyPaymentDiscount: s.EarlyPaymentDiscount,
	}
}
