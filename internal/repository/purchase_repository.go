package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/farmanet/farmanet-api/internal/models"
)

// PurchaseRepository defines the interface for purchase data access
type PurchaseRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Purchase, error)
	FindByIDWithDetails(ctx context.Context, id uint) (*models.Purchase, error)
	FindBySupplier(ctx context.Context, supplierID uint) ([]models.Purchase, error)
	FindByInvoiceNumber(ctx context.Context, supplierID uint, invoiceNumber string) (*models.Purchase, error)
	Create(ctx context.Context, purchase *models.Purchase) error
	Update(ctx context.Context, purchase *models.Purchase) error
	UpdateAggregates(ctx context.Context, tx *gorm.DB, purchase *models.Purchase) error
	SoftDelete(ctx context.Context, id uint) error
	List(ctx context.Context, query *PurchaseQuery) ([]models.Purchase, int64, error)
	FindOutstanding(ctx context.Context) ([]models.Purchase, error)
	FindOutstandingBySupplier(ctx context.Context, supplierID uint) ([]models.Purchase, error)
	GetStats(ctx context.Context) (*PurchaseStats, error)
}

// PurchaseQuery extends ListQuery with purchase-specific filters
type PurchaseQuery struct {
	*ListQuery
	SupplierID uint
	BranchID   uint
	Settlement string
}

// PurchaseStats holds aggregate figures for the payables dashboard
type PurchaseStats struct {
	TotalInvoiced float64 `json:"total_invoiced"`
	TotalPaid     float64 `json:"total_paid"`
	TotalOwed     float64 `json:"total_owed"`
	InvoiceCount  int64   `json:"invoice_count"`
	UnpaidCount   int64   `json:"unpaid_count"`
}

type purchaseRepository struct {
	db *gorm.DB
}

// NewPurchaseRepository creates a new purchase repository
func NewPurchaseRepository(db *gorm.DB) PurchaseRepository {
	return &purchaseRepository{db: db}
}

func (r *purchaseRepository) FindByID(ctx context.Context, id uint) (*models.Purchase, error) {
	var purchase models.Purchase
	err := r.db.WithContext(ctx).
		Where("discarded_at IS NULL").
		First(&purchase, id).Error
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (r *purchaseRepository) FindByIDWithDetails(ctx context.Context, id uint) (*models.Purchase, error) {
	var purchase models.Purchase
	// Supplier and Branch via Joins in one query; Items and Payments are
	// one-to-many so they stay as Preloads.
	err := r.db.WithContext(ctx).
		Joins("Supplier").
		Joins("Branch").
		Preload("Items").
		Preload("Payments", func(db *gorm.DB) *gorm.DB {
			return db.Order("payment_date ASC, created_at ASC")
		}).
		Where("purchases.discarded_at IS NULL").
		First(&purchase, id).Error
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (r *purchaseRepository) FindBySupplier(ctx context.Context, supplierID uint) ([]models.Purchase, error) {
	var purchases []models.Purchase
	err := r.db.WithContext(ctx).
		Where("supplier_id = ? AND discarded_at IS NULL", supplierID).
		Preload("Branch").
		Order("purchase_date ASC NULLS LAST, id ASC").
		Find(&purchases).Error
	return purchases, err
}

func (r *purchaseRepository) FindByInvoiceNumber(ctx context.Context, supplierID uint, invoiceNumber string) (*models.Purchase, error) {
	var purchase models.Purchase
	err := r.db.WithContext(ctx).
		Where("supplier_id = ? AND invoice_number = ? AND discarded_at IS NULL", supplierID, invoiceNumber).
		First(&purchase).Error
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (r *purchaseRepository) Create(ctx context.Context, purchase *models.Purchase) error {
	return r.db.WithContext(ctx).Create(purchase).Error
}

func (r *purchaseRepository) Update(ctx context.Context, purchase *models.Purchase) error {
	return r.db.WithContext(ctx).Save(purchase).Error
}

// UpdateAggregates persists only the payment aggregate and settlement columns,
// inside the caller's transaction when one is given.
func (r *purchaseRepository) UpdateAggregates(ctx context.Context, tx *gorm.DB, purchase *models.Purchase) error {
	db := r.db
	if tx != nil {
		db = tx
	}
	return db.WithContext(ctx).
		Model(&models.Purchase{}).
		Where("id = ?", purchase.ID).
		Select("AmountPaid", "Settlement").
		Updates(map[string]interface{}{
			"amount_paid": purchase.AmountPaid,
			"settlement":  purchase.Settlement,
		}).Error
}

func (r *purchaseRepository) SoftDelete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Purchase{}).
		Where("id = ?", id).
		Update("discarded_at", gorm.Expr("NOW()")).Error
}

func (r *purchaseRepository) List(ctx context.Context, query *PurchaseQuery) ([]models.Purchase, int64, error) {
	var purchases []models.Purchase
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Purchase{}).Where("purchases.discarded_at IS NULL")

	// Apply supplier filter
	if query.SupplierID > 0 {
		db = db.Where("purchases.supplier_id = ?", query.SupplierID)
	}

	// Apply branch filter
	if query.BranchID > 0 {
		db = db.Where("purchases.branch_id = ?", query.BranchID)
	}

	// Apply settlement filter (single or multiple via settlement_in)
	if query.Filters != nil {
		if val, ok := query.Filters["settlement_in"]; ok && val != "" {
			settlements := strings.Split(val, ",")
			for i, s := range settlements {
				settlements[i] = strings.TrimSpace(s)
			}
			db = db.Where("purchases.settlement IN ?", settlements)
		}
	}
	if query.Filters == nil || query.Filters["settlement_in"] == "" {
		if query.Settlement != "" {
			db = db.Where("purchases.settlement = ?", query.Settlement)
		}
	}

	// Apply purchase date filters
	if query.Filters != nil {
		if val, ok := query.Filters["start_date"]; ok && val != "" {
			db = db.Where("purchases.purchase_date >= ?", val)
		}
		if val, ok := query.Filters["end_date"]; ok && val != "" {
			// Ensure we include the full day if only date is provided
			if len(val) == 10 { // YYYY-MM-DD
				val += " 23:59:59"
			}
			db = db.Where("purchases.purchase_date <= ?", val)
		}
	}

	// Apply search (JOINs only for filtering; associations loaded via Preload below)
	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Joins("LEFT JOIN suppliers ON suppliers.id = purchases.supplier_id").
			Joins("LEFT JOIN branches ON branches.id = purchases.branch_id").
			Where("purchases.invoice_number ILIKE ? OR suppliers.name ILIKE ? OR branches.name ILIKE ?",
				search, search, search)
	}

	// Clone the database session for count to avoid affecting the main query
	countDb := db.Session(&gorm.Session{})
	if err := countDb.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Apply sorting
	if query.SortBy != "" {
		field := query.SortBy
		switch field {
		case "created_at", "purchase_date", "total", "amount_paid", "settlement":
			field = "purchases." + field
		case "supplier":
			db = db.Joins("LEFT JOIN suppliers AS sort_s ON sort_s.id = purchases.supplier_id")
			field = "sort_s.name"
		}

		order := field
		if strings.ToLower(query.SortDir) == "desc" {
			order += " DESC"
		} else {
			order += " ASC"
		}
		db = db.Order(order)
	} else {
		db = db.Order("purchases.purchase_date ASC NULLS LAST, purchases.id ASC")
	}

	// Apply pagination
	if query.PerPage > 0 {
		db = db.Offset((query.Page - 1) * query.PerPage).Limit(query.PerPage)
	}

	err := db.
		Select("purchases.*"). // Ensure we select only purchase fields, especially when joining
		Preload("Supplier").
		Preload("Branch").
		Find(&purchases).Error

	return purchases, total, err
}

func (r *purchaseRepository) FindOutstanding(ctx context.Context) ([]models.Purchase, error) {
	var purchases []models.Purchase
	err := r.db.WithContext(ctx).
		Where("settlement IN ? AND discarded_at IS NULL",
			[]string{models.SettlementUnpaid, models.SettlementPartiallyPaid}).
		Preload("Supplier").
		Preload("Branch").
		Order("purchase_date ASC NULLS LAST, id ASC").
		Find(&purchases).Error
	return purchases, err
}

func (r *purchaseRepository) FindOutstandingBySupplier(ctx context.Context, supplierID uint) ([]models.Purchase, error) {
	var purchases []models.Purchase
	err := r.db.WithContext(ctx).
		Where("supplier_id = ? AND settlement IN ? AND discarded_at IS NULL",
			supplierID, []string{models.SettlementUnpaid, models.SettlementPartiallyPaid}).
		Preload("Supplier").
		Order("purchase_date ASC NULLS LAST, id ASC").
		Find(&purchases).Error
	return purchases, err
}

func (r *purchaseRepository) GetStats(ctx context.Context) (*PurchaseStats, error) {
	stats := &PurchaseStats{}

	err := r.db.WithContext(ctx).
		Model(&models.Purchase{}).
		Select("COALESCE(SUM(total), 0) AS total_invoiced, "+
			"COALESCE(SUM(LEAST(amount_paid, total)), 0) AS total_paid, "+
			"COALESCE(SUM(GREATEST(total - amount_paid, 0)), 0) AS total_owed, "+
			"COUNT(*) AS invoice_count").
		Where("discarded_at IS NULL").
		Scan(stats).Error
	if err != nil {
		return nil, err
	}

	err = r.db.WithContext(ctx).
		Model(&models.Purchase{}).
		Where("settlement IN ? AND discarded_at IS NULL",
			[]string{models.SettlementUnpaid, models.SettlementPartiallyPaid}).
		Count(&stats.UnpaidCount).Error
	if err != nil {
		return nil, err
	}

	return stats, nil
}

// PaymentRepository defines the interface for purchase payment data access
type PaymentRepository interface {
	FindByID(ctx context.Context, id uint) (*models.PurchasePayment, error)
	FindByPurchase(ctx context.Context, purchaseID uint) ([]models.PurchasePayment, error)
	FindByVoucher(ctx context.Context, voucherNumber string) (*models.PurchasePayment, error)
	Create(ctx context.Context, payment *models.PurchasePayment) error
	CreateTx(ctx context.Context, tx *gorm.DB, payment *models.PurchasePayment) error
	Update(ctx context.Context, payment *models.PurchasePayment) error
	List(ctx context.Context, query *ListQuery) ([]models.PurchasePayment, int64, error)
	SumAppliedByPurchase(ctx context.Context, purchaseID uint) (float64, error)
	FindAppliedBetween(ctx context.Context, from, to time.Time) ([]models.PurchasePayment, error)
}

type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) FindByID(ctx context.Context, id uint) (*models.PurchasePayment, error) {
	var payment models.PurchasePayment
	err := r.db.WithContext(ctx).
		Preload("Purchase.Supplier").
		Preload("Purchase.Branch").
		Preload("BankAccount").
		First(&payment, id).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) FindByPurchase(ctx context.Context, purchaseID uint) ([]models.PurchasePayment, error) {
	var payments []models.PurchasePayment
	err := r.db.WithContext(ctx).
		Where("purchase_id = ?", purchaseID).
		Preload("BankAccount").
		Order("payment_date ASC, created_at ASC").
		Find(&payments).Error
	return payments, err
}

func (r *paymentRepository) FindByVoucher(ctx context.Context, voucherNumber string) (*models.PurchasePayment, error) {
	var payment models.PurchasePayment
	err := r.db.WithContext(ctx).
		Preload("Purchase.Supplier").
		Where("voucher_number = ?", voucherNumber).
		First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) Create(ctx context.Context, payment *models.PurchasePayment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

// CreateTx creates a payment inside the caller's transaction.
func (r *paymentRepository) CreateTx(ctx context.Context, tx *gorm.DB, payment *models.PurchasePayment) error {
	db := r.db
	if tx != nil {
		db = tx
	}
	return db.WithContext(ctx).Create(payment).Error
}

func (r *paymentRepository) Update(ctx context.Context, payment *models.PurchasePayment) error {
	return r.db.WithContext(ctx).Save(payment).Error
}

func (r *paymentRepository) List(ctx context.Context, query *ListQuery) ([]models.PurchasePayment, int64, error) {
	var payments []models.PurchasePayment
	var total int64

	db := r.db.WithContext(ctx).Model(&models.PurchasePayment{})

	// Apply status filter
	if query.Filters["status"] != "" {
		db = db.Where("purchase_payments.status = ?", query.Filters["status"])
	}

	// Apply method filter
	if query.Filters["method"] != "" {
		db = db.Where("purchase_payments.method = ?", query.Filters["method"])
	}

	// Apply date filters
	if val, ok := query.Filters["start_date"]; ok && val != "" {
		db = db.Where("purchase_payments.payment_date >= ?", val)
	}
	if val, ok := query.Filters["end_date"]; ok && val != "" {
		endDate := val
		if len(endDate) == 10 {
			endDate += " 23:59:59"
		}
		db = db.Where("purchase_payments.payment_date <= ?", endDate)
	}

	// Apply search filter (case-insensitive across multiple fields)
	if query.Search != "" {
		term := "%" + query.Search + "%"
		db = db.Joins("JOIN purchases ON purchases.id = purchase_payments.purchase_id").
			Joins("LEFT JOIN suppliers ON suppliers.id = purchases.supplier_id").
			Where("purchase_payments.voucher_number ILIKE ? OR purchase_payments.reference ILIKE ? OR "+
				"purchases.invoice_number ILIKE ? OR suppliers.name ILIKE ?", term, term, term, term)
	}

	// Clone the database session for count to avoid affecting the main query
	countDb := db.Session(&gorm.Session{})
	if err := countDb.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Apply sorting
	if query.SortBy != "" {
		order := "purchase_payments." + query.SortBy
		if strings.ToLower(query.SortDir) == "desc" {
			order += " DESC"
		}
		db = db.Order(order)
	} else {
		db = db.Order("purchase_payments.payment_date DESC, purchase_payments.id DESC")
	}

	// Apply pagination
	if query.PerPage > 0 {
		db = db.Offset((query.Page - 1) * query.PerPage).Limit(query.PerPage)
	}

	err := db.
		Select("purchase_payments.*").
		Preload("Purchase.Supplier").
		Preload("BankAccount").
		Find(&payments).Error

	return payments, total, err
}

// SumAppliedByPurchase totals the applied abonos for a purchase.
// Reversed payments never count toward the settled amount.
func (r *paymentRepository) SumAppliedByPurchase(ctx context.Context, purchaseID uint) (float64, error) {
	var result struct {
		Total float64
	}

	err := r.db.WithContext(ctx).
		Model(&models.PurchasePayment{}).
		Select("COALESCE(SUM(amount), 0) as total").
		Where("purchase_id = ? AND status = ?", purchaseID, models.PaymentStatusApplied).
		Scan(&result).Error

	return result.Total, err
}

func (r *paymentRepository) FindAppliedBetween(ctx context.Context, from, to time.Time) ([]models.PurchasePayment, error) {
	var payments []models.PurchasePayment
	err := r.db.WithContext(ctx).
		Where("status = ? AND payment_date >= ? AND payment_date <= ?", models.PaymentStatusApplied, from, to).
		Preload("Purchase.Supplier").
		Preload("BankAccount").
		Order("payment_date ASC").
		Find(&payments).Error
	return payments, err
}

// NotificationRepository defines the interface for notification data access
type NotificationRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Notification, error)
	FindByUser(ctx context.Context, userID uint, query *ListQuery) ([]models.Notification, int64, error)
	Create(ctx context.Context, notification *models.Notification) error
	Update(ctx context.Context, notification *models.Notification) error
	Delete(ctx context.Context, id uint) error
	MarkAllAsRead(ctx context.Context, userID uint) error
	CountUnread(ctx context.Context, userID uint) (int64, error)
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) FindByID(ctx context.Context, id uint) (*models.Notification, error) {
	var notification models.Notification
	err := r.db.WithContext(ctx).First(&notification, id).Error
	if err != nil {
		return nil, err
	}
	return &notification, nil
}

func (r *notificationRepository) FindByUser(ctx context.Context, userID uint, query *ListQuery) ([]models.Notification, int64, error) {
	var notifications []models.Notification
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Notification{}).Where("user_id = ?", userID)

	if status, ok := query.Filters["status"]; ok && status != "" {
		switch strings.ToLower(status) {
		case "unread":
			db = db.Where("read_at IS NULL")
		case "read":
			db = db.Where("read_at IS NOT NULL")
		}
	}

	db.Count(&total)
	db = db.Order("created_at DESC")

	if query.PerPage > 0 {
		db = db.Offset((query.Page - 1) * query.PerPage).Limit(query.PerPage)
	}

	err := db.Find(&notifications).Error
	return notifications, total, err
}

func (r *notificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *notificationRepository) Update(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Save(notification).Error
}

func (r *notificationRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Notification{}, id).Error
}

func (r *notificationRepository) MarkAllAsRead(ctx context.Context, userID uint) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Update("read_at", now).Error
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Count(&count).Error
	return count, err
}

// RefreshTokenRepository defines the interface for refresh token data access
type RefreshTokenRepository interface {
	FindByToken(ctx context.Context, token string) (*models.RefreshToken, error)
	Create(ctx context.Context, rt *models.RefreshToken) error
	Delete(ctx context.Context, token string) error
	DeleteByUser(ctx context.Context, userID uint) error
}

type refreshTokenRepository struct {
	db *gorm.DB
}

func NewRefreshTokenRepository(db *gorm.DB) RefreshTokenRepository {
	return &refreshTokenRepository{db: db}
}

func (r *refreshTokenRepository) FindByToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	var rt models.RefreshToken
	err := r.db.WithContext(ctx).Where("token = ?", token).First(&rt).Error
	if err != nil {
		return nil, err
	}
	return &rt, nil
}

func (r *refreshTokenRepository) Create(ctx context.Context, rt *models.RefreshToken) error {
	return r.db.WithContext(ctx).Create(rt).Error
}

func (r *refreshTokenRepository) Delete(ctx context.Context, token string) error {
	return r.db.WithContext(ctx).Where("token = ?", token).Delete(&models.RefreshToken{}).Error
}

func (r *refreshTokenRepository) DeleteByUser(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.RefreshToken{}).Error
}
