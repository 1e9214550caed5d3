package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/farmanet/farmanet-api/internal/aging"
	"github.com/farmanet/farmanet-api/internal/jobs"
	"github.com/farmanet/farmanet-api/internal/models"
	"github.com/farmanet/farmanet-api/internal/repository"
	"github.com/farmanet/farmanet-api/pkg/logger"
)

// ImportResult summarizes a legacy data import run
type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

type PurchaseService struct {
	repo         repository.PurchaseRepository
	supplierRepo repository.SupplierRepository
	branchRepo   repository.BranchRepository
	auditSvc     *AuditService
	worker       *jobs.Worker
}

func NewPurchaseService(
	repo repository.PurchaseRepository,
	supplierRepo repository.SupplierRepository,
	branchRepo repository.BranchRepository,
	auditSvc *AuditService,
	worker *jobs.Worker,
) *PurchaseService {
	return &PurchaseService{
		repo:         repo,
		supplierRepo: supplierRepo,
		branchRepo:   branchRepo,
		auditSvc:     auditSvc,
		worker:       worker,
	}
}

func (s *PurchaseService) FindByID(ctx context.Context, id uint) (*models.Purchase, error) {
	return s.repo.FindByIDWithDetails(ctx, id)
}

func (s *PurchaseService) List(ctx context.Context, query *repository.PurchaseQuery) ([]models.Purchase, int64, error) {
	return s.repo.List(ctx, query)
}

func (s *PurchaseService) Create(ctx context.Context, purchase *models.Purchase, actorID uint) error {
	if purchase.Total < 0 {
		return ErrInvalidAmount
	}

	if _, err := s.supplierRepo.FindByID(ctx, purchase.SupplierID); err != nil {
		return errors.New("proveedor no encontrado")
	}
	if _, err := s.branchRepo.FindByID(ctx, purchase.BranchID); err != nil {
		return errors.New("sucursal no encontrada")
	}

	// Same supplier + invoice number means the invoice was already entered
	if purchase.InvoiceNumber != "" {
		if _, err := s.repo.FindByInvoiceNumber(ctx, purchase.SupplierID, purchase.InvoiceNumber); err == nil {
			return ErrDuplicate
		}
	}

	purchase.Settlement = string(aging.ClassifySettlement(purchase.Total, purchase.AmountPaid))
	purchase.CreatedBy = &actorID

	if err := s.repo.Create(ctx, purchase); err != nil {
		return err
	}

	return s.auditSvc.Log(ctx, actorID, "CREATE", "Purchase", purchase.ID,
		fmt.Sprintf("Factura %s registrada por %.2f (proveedor #%d)", purchase.InvoiceNumber, purchase.Total, purchase.SupplierID), "", "")
}

func (s *PurchaseService) Update(ctx context.Context, purchase *models.Purchase, actorID uint) error {
	existing, err := s.repo.FindByID(ctx, purchase.ID)
	if err != nil {
		return ErrNotFound
	}

	// Totals and aggregates are settled through payments, not edits
	purchase.Total = existing.Total
	purchase.AmountPaid = existing.AmountPaid
	purchase.Settlement = existing.Settlement
	purchase.CreatedAt = existing.CreatedAt
	purchase.CreatedBy = existing.CreatedBy
	if purchase.SupplierID == 0 {
		purchase.SupplierID = existing.SupplierID
	}
	if purchase.BranchID == 0 {
		purchase.BranchID = existing.BranchID
	}
	if purchase.InvoiceNumber == "" {
		purchase.InvoiceNumber = existing.InvoiceNumber
	}
	if purchase.PurchaseDate == nil {
		purchase.PurchaseDate = existing.PurchaseDate
	}
	if purchase.Notes == nil {
		purchase.Notes = existing.Notes
	}

	if err := s.repo.Update(ctx, purchase); err != nil {
		return err
	}
	return s.auditSvc.Log(ctx, actorID, "UPDATE", "Purchase", purchase.ID,
		fmt.Sprintf("Factura %s actualizada", purchase.InvoiceNumber), "", "")
}

func (s *PurchaseService) Delete(ctx context.Context, id uint, actorID uint) error {
	purchase, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return ErrNotFound
	}
	if purchase.AmountPaid > 0 {
		return errors.New("no se puede eliminar una factura con abonos aplicados")
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	return s.auditSvc.Log(ctx, actorID, "DELETE", "Purchase", id,
		fmt.Sprintf("Factura %s eliminada (soft delete)", purchase.InvoiceNumber), "", "")
}

func (s *PurchaseService) FindBySupplier(ctx context.Context, supplierID uint) ([]models.Purchase, error) {
	return s.repo.FindBySupplier(ctx, supplierID)
}

// ImportLegacy ingests a legacy JSON export. Records are normalized first
// (field aliases, string numbers, mixed date formats), then persisted one by
// one: a bad record is reported and skipped, never aborting the rest.
func (s *PurchaseService) ImportLegacy(ctx context.Context, data []byte, actorID uint) (*ImportResult, error) {
	normalized, normErrs := aging.NormalizePurchases(data)
	if len(normalized) == 0 && len(normErrs) > 0 {
		return nil, fmt.Errorf("archivo de importación inválido: %v", normErrs[0])
	}

	result := &ImportResult{}
	for _, e := range normErrs {
		result.Skipped++
		result.Errors = append(result.Errors, e.Error())
	}

	for _, np := range normalized {
		if _, err := s.supplierRepo.FindByID(ctx, np.SupplierID); err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("compra %d: proveedor %d no existe", np.ID, np.SupplierID))
			continue
		}

		if np.InvoiceNumber != "" {
			if _, err := s.repo.FindByInvoiceNumber(ctx, np.SupplierID, np.InvoiceNumber); err == nil {
				result.Skipped++
				result.Errors = append(result.Errors, fmt.Sprintf("compra %d: factura %s ya registrada", np.ID, np.InvoiceNumber))
				continue
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
		}

		purchase := s.toModel(&np, actorID)
		if err := s.repo.Create(ctx, purchase); err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("compra %d: %v", np.ID, err))
			logger.Warn("Legacy import: failed to persist purchase", "purchase_id", np.ID, "error", err)
			continue
		}
		result.Imported++
	}

	s.auditSvc.Log(ctx, actorID, "IMPORT", "Purchase", 0,
		fmt.Sprintf("Importación de datos: %d facturas importadas, %d omitidas", result.Imported, result.Skipped), "", "")

	return result, nil
}

// toModel converts a normalized legacy record into a persistable purchase.
// The legacy id is not carried over; the database assigns a fresh one.
func (s *PurchaseService) toModel(np *aging.NormalizedPurchase, actorID uint) *models.Purchase {
	paid := aging.AmountPaid(np.Purchase)

	purchase := &models.Purchase{
		SupplierID:    np.SupplierID,
		BranchID:      np.BranchID,
		InvoiceNumber: np.InvoiceNumber,
		Total:         np.Total,
		AmountPaid:    paid,
		Settlement:    string(aging.ClassifySettlement(np.Total, paid)),
		CreatedBy:     &actorID,
	}
	if !np.Date.IsZero() {
		date := np.Date
		purchase.PurchaseDate = &date
	}

	for _, item := range np.Items {
		purchase.Items = append(purchase.Items, models.PurchaseItem{
			Name:      item.Name,
			Barcode:   item.Barcode,
			Quantity:  item.Quantity,
			UnitCost:  item.UnitCost,
			LineTotal: item.LineTotal,
		})
	}

	for _, pay := range np.Payments {
		if pay.Amount <= 0 {
			continue
		}
		purchase.Payments = append(purchase.Payments, models.PurchasePayment{
			Amount:        pay.Amount,
			PaymentDate:   pay.Date,
			Method:        models.PaymentMethodTransfer,
			VoucherNumber: newVoucherNumber(),
			Status:        models.PaymentStatusApplied,
			CreatedBy:     &actorID,
		})
	}

	return purchase
}
