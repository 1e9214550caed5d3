package services

import (
	"context"
	"fmt"

	"github.com/farmanet/farmanet-api/internal/models"
	"github.com/farmanet/farmanet-api/internal/repository"
)

type SupplierService struct {
	repo     repository.SupplierRepository
	auditSvc *AuditService
}

func NewSupplierService(repo repository.SupplierRepository, auditSvc *AuditService) *SupplierService {
	return &SupplierService{repo: repo, auditSvc: auditSvc}
}

func (s *SupplierService) FindByID(ctx context.Context, id uint) (*models.Supplier, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *SupplierService) List(ctx context.Context, query *repository.ListQuery) ([]models.Supplier, int64, error) {
	return s.repo.List(ctx, query)
}

func (s *SupplierService) FindAll(ctx context.Context) ([]models.Supplier, error) {
	return s.repo.FindAll(ctx)
}

func (s *SupplierService) Create(ctx context.Context, supplier *models.Supplier, actorID uint) error {
	if supplier.CreditDays < 0 {
		supplier.CreditDays = 0
	}
	if err := s.repo.Create(ctx, supplier); err != nil {
		return err
	}
	return s.auditSvc.Log(ctx, actorID, "CREATE", "Supplier", supplier.ID,
		fmt.Sprintf("Proveedor creado: %s (%d días de crédito)", supplier.Name, supplier.CreditDays), "", "")
}

func (s *SupplierService) Update(ctx context.Context, supplier *models.Supplier, actorID uint) error {
	existing, err := s.repo.FindByID(ctx, supplier.ID)
	if err != nil {
		return err
	}

	// Preserve fields not provided
	if supplier.Name == "" {
		supplier.Name = existing.Name
	}
	if supplier.TaxID == "" {
		supplier.TaxID = existing.TaxID
	}
	if supplier.Notes == nil {
		supplier.Notes = existing.Notes
	}
	supplier.CreatedAt = existing.CreatedAt

	if supplier.CreditDays < 0 {
		supplier.CreditDays = 0
	}

	if err := s.repo.Update(ctx, supplier); err != nil {
		return err
	}
	return s.auditSvc.Log(ctx, actorID, "UPDATE", "Supplier", supplier.ID,
		fmt.Sprintf("Proveedor actualizado: %s", supplier.Name), "", "")
}

func (s *SupplierService) Delete(ctx context.Context, id uint, actorID uint) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	return s.auditSvc.Log(ctx, actorID, "DELETE", "Supplier", id, "Proveedor eliminado (soft delete)", "", "")
}

func (s *SupplierService) Restore(ctx context.Context, id uint, actorID uint) error {
	if err := s.repo.Restore(ctx, id); err != nil {
		return err
	}
	return s.auditSvc.Log(ctx, actorID, "RESTORE", "Supplier", id, "Proveedor restaurado", "", "")
}

type BranchService struct {
	repo     repository.BranchRepository
	auditSvc *AuditService
}

func NewBranchService(repo repository.BranchRepository, auditSvc *AuditService) *BranchService {
	return &BranchService{repo: repo, auditSvc: auditSvc}
}

func (s *BranchService) FindByID(ctx context.Context, id uint) (*models.Branch, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *BranchService) FindAll(ctx context.Context) ([]models.Branch, error) {
	return s.repo.FindAll(ctx)
}

func (s *BranchService) FindActive(ctx context.Context) ([]models.Branch, error) {
	return s.repo.FindActive(ctx)
}

func (s *BranchService) Create(ctx context.Context, branch *models.Branch, actorID uint) error {
	if err := s.repo.Create(ctx, branch); err != nil {
		return err
	}
	return s.auditSvc.Log(ctx, actorID, "CREATE", "Branch", branch.ID,
		fmt.Sprintf("Sucursal creada: %s", branch.Name), "", "")
}

func (s *BranchService) Update(ctx context.Context, branch *models.Branch, actorID uint) error {
	existing, err := s.repo.FindByID(ctx, branch.ID)
	if err != nil {
		return err
	}
	if branch.Name == "" {
		branch.Name = existing.Name
	}
	branch.CreatedAt = existing.CreatedAt

	if err := s.repo.Update(ctx, branch); err != nil {
		return err
	}
	return s.auditSvc.Log(ctx, actorID, "UPDATE", "Branch", branch.ID,
		fmt.Sprintf("Sucursal actualizada: %s", branch.Name), "", "")
}

func (s *BranchService) Delete(ctx context.Context, id uint, actorID uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	return s.auditSvc.Log(ctx, actorID, "DELETE", "Branch", id, "Sucursal eliminada", "", "")
}
