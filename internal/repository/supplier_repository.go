package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/farmanet/farmanet-api/internal/models"
)

// SupplierRepository defines the interface for supplier data access
type SupplierRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Supplier, error)
	FindByTaxID(ctx context.Context, taxID string) (*models.Supplier, error)
	Create(ctx context.Context, supplier *models.Supplier) error
	Update(ctx context.Context, supplier *models.Supplier) error
	SoftDelete(ctx context.Context, id uint) error
	Restore(ctx context.Context, id uint) error
	List(ctx context.Context, query *ListQuery) ([]models.Supplier, int64, error)
	FindAll(ctx context.Context) ([]models.Supplier, error)
	FindWithEarlyPaymentDiscount(ctx context.Context) ([]models.Supplier, error)
}

type supplierRepository struct {
	db *gorm.DB
}

// NewSupplierRepository creates a new supplier repository
func NewSupplierRepository(db *gorm.DB) SupplierRepository {
	return &supplierRepository{db: db}
}

func (r *supplierRepository) FindByID(ctx context.Context, id uint) (*models.Supplier, error) {
	var supplier models.Supplier
	err := r.db.WithContext(ctx).
		Where("discarded_at IS NULL").
		First(&supplier, id).Error
	if err != nil {
		return nil, err
	}
	return &supplier, nil
}

func (r *supplierRepository) FindByTaxID(ctx context.Context, taxID string) (*models.Supplier, error) {
	var supplier models.Supplier
	err := r.db.WithContext(ctx).
		Where("tax_id = ? AND discarded_at IS NULL", taxID).
		First(&supplier).Error
	if err != nil {
		return nil, err
	}
	return &supplier, nil
}

func (r *supplierRepository) Create(ctx context.Context, supplier *models.Supplier) error {
	if err := r.db.WithContext(ctx).Create(supplier).Error; err != nil {
		if isDuplicateKeyError(err, "suppliers_tax_id_key") {
			return errors.New("Ya existe un proveedor con este RTN")
		}
		return err
	}
	return nil
}

func (r *supplierRepository) Update(ctx context.Context, supplier *models.Supplier) error {
	return r.db.WithContext(ctx).Save(supplier).Error
}

func (r *supplierRepository) SoftDelete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Supplier{}).
		Where("id = ?", id).
		Update("discarded_at", gorm.Expr("NOW()")).Error
}

func (r *supplierRepository) Restore(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Supplier{}).
		Where("id = ?", id).
		Update("discarded_at", nil).Error
}

func (r *supplierRepository) List(ctx context.Context, query *ListQuery) ([]models.Supplier, int64, error) {
	var suppliers []models.Supplier
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Supplier{}).Where("discarded_at IS NULL")

	// Apply search
	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Where("name ILIKE ? OR tax_id ILIKE ? OR email ILIKE ?", search, search, search)
	}

	// Only suppliers that extend credit
	if query.Filters["with_credit"] == "true" {
		db = db.Where("credit_days > 0")
	}

	// Only suppliers offering a pronto pago discount
	if query.Filters["with_early_discount"] == "true" {
		db = db.Where("early_payment_discount > 0")
	}

	// Count total
	db.Count(&total)

	// Apply sorting
	if query.SortBy != "" {
		order := query.SortBy
		if query.SortDir == "desc" {
			order += " DESC"
		}
		db = db.Order(order)
	} else {
		db = db.Order("name ASC")
	}

	// Apply pagination
	if query.PerPage > 0 {
		db = db.Offset((query.Page - 1) * query.PerPage).Limit(query.PerPage)
	}

	err := db.Find(&suppliers).Error
	return suppliers, total, err
}

func (r *supplierRepository) FindAll(ctx context.Context) ([]models.Supplier, error) {
	var suppliers []models.Supplier
	err := r.db.WithContext(ctx).
		Where("discarded_at IS NULL").
		Order("name ASC").
		Find(&suppliers).Error
	return suppliers, err
}

func (r *supplierRepository) FindWithEarlyPaymentDiscount(ctx context.Context) ([]models.Supplier, error) {
	var suppliers []models.Supplier
	err := r.db.WithContext(ctx).
		Where("early_payment_discount > 0 AND discarded_at IS NULL").
		Find(&suppliers).Error
	return suppliers, err
}

// BranchRepository defines the interface for branch data access
type BranchRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Branch, error)
	Create(ctx context.Context, branch *models.Branch) error
	Update(ctx context.Context, branch *models.Branch) error
	Delete(ctx context.Context, id uint) error
	FindAll(ctx context.Context) ([]models.Branch, error)
	FindActive(ctx context.Context) ([]models.Branch, error)
}

type branchRepository struct {
	db *gorm.DB
}

// NewBranchRepository creates a new branch repository
func NewBranchRepository(db *gorm.DB) BranchRepository {
	return &branchRepository{db: db}
}

func (r *branchRepository) FindByID(ctx context.Context, id uint) (*models.Branch, error) {
	var branch models.Branch
	err := r.db.WithContext(ctx).First(&branch, id).Error
	if err != nil {
		return nil, err
	}
	return &branch, nil
}

func (r *branchRepository) Create(ctx context.Context, branch *models.Branch) error {
	if err := r.db.WithContext(ctx).Create(branch).Error; err != nil {
		if isDuplicateKeyError(err, "branches_name_key") {
			return errors.New("Ya existe una sucursal con este nombre")
		}
		return err
	}
	return nil
}

func (r *branchRepository) Update(ctx context.Context, branch *models.Branch) error {
	return r.db.WithContext(ctx).Save(branch).Error
}

func (r *branchRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Branch{}, id).Error
}

func (r *branchRepository) FindAll(ctx context.Context) ([]models.Branch, error) {
	var branches []models.Branch
	err := r.db.WithContext(ctx).Order("name ASC").Find(&branches).Error
	return branches, err
}

func (r *branchRepository) FindActive(ctx context.Context) ([]models.Branch, error) {
	var branches []models.Branch
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("name ASC").
		Find(&branches).Error
	return branches, err
}
