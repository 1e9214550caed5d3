package handlers

import (
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/farmanet/farmanet-api/internal/middleware"
	"github.com/farmanet/farmanet-api/internal/models"
	"github.com/farmanet/farmanet-api/internal/repository"
	"github.com/farmanet/farmanet-api/internal/services"
)

type PurchaseHandler struct {
	purchaseService *services.PurchaseService
}

func NewPurchaseHandler(purchaseService *services.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{purchaseService: purchaseService}
}

// buildQuery parses the shared list parameters for purchase endpoints
func (h *PurchaseHandler) buildQuery(c *gin.Context) *repository.PurchaseQuery {
	listQuery := repository.NewListQuery()
	listQuery.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	listQuery.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	listQuery.Search = c.Query("search_term")
	listQuery.Filters["settlement_in"] = c.Query("settlement_in")
	listQuery.Filters["start_date"] = c.Query("start_date")
	listQuery.Filters["end_date"] = c.Query("end_date")

	// Parse sort parameter (format: field-direction)
	if sort := c.Query("sort"); sort != "" {
		parts := strings.Split(sort, "-")
		listQuery.SortBy = parts[0]
		if len(parts) > 1 {
			listQuery.SortDir = parts[1]
		}
	}

	supplierID, _ := strconv.ParseUint(c.Query("supplier_id"), 10, 32)
	branchID, _ := strconv.ParseUint(c.Query("branch_id"), 10, 32)

	return &repository.PurchaseQuery{
		ListQuery:  listQuery,
		SupplierID: uint(supplierID),
		BranchID:   uint(branchID),
		Settlement: c.Query("settlement"),
	}
}

// @Summary List Purchases
// @Description Get a paginated list of purchase invoices
// @Tags Purchases
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param search_term query string false "Search by invoice number or supplier"
// @Param supplier_id query int false "Filter by supplier"
// @Param branch_id query int false "Filter by branch"
// @Param settlement query string false "Filter by settlement state"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /purchases [get]
func (h *PurchaseHandler) Index(c *gin.Context) {
	query := h.buildQuery(c)

	purchases, total, err := h.purchaseService.List(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var responses []interface{}
	for _, p := range purchases {
		responses = append(responses, p.ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{
		"purchases": responses,
		"pagination": gin.H{
			"page":        query.Page,
			"per_page":    query.PerPage,
			"total":       total,
			"total_pages": (total + int64(query.PerPage) - 1) / int64(query.PerPage),
		},
	})
}

// @Summary Get Purchase
// @Description Get a purchase invoice with its items and payments
// @Tags Purchases
// @Accept json
// @Produce json
// @Param purchase_id path int true "Purchase ID"
// @Success 200 {object} models.PurchaseResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /purchases/{purchase_id} [get]
func (h *PurchaseHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("purchase_id"), 10, 32)
	purchase, err := h.purchaseService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Factura no encontrada"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"purchase": purchase.ToResponse()})
}

type CreatePurchaseRequest struct {
	SupplierID    uint                  `json:"supplier_id" binding:"required"`
	BranchID      uint                  `json:"branch_id" binding:"required"`
	InvoiceNumber string                `json:"invoice_number"`
	PurchaseDate  *time.Time            `json:"purchase_date"`
	Total         float64               `json:"total" binding:"required"`
	Notes         *string               `json:"notes"`
	Items         []models.PurchaseItem `json:"items"`
}

// @Summary Create Purchase
// @Description Register a new purchase invoice
// @Tags Purchases
// @Accept json
// @Produce json
// @Param request body CreatePurchaseRequest true "Purchase Data"
// @Success 201 {object} models.PurchaseResponse
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /purchases [post]
func (h *PurchaseHandler) Create(c *gin.Context) {
	var req CreatePurchaseRequest
	if err := BindNestedOrFlat(c, "purchase", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.SupplierID == 0 || req.BranchID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Proveedor y sucursal son requeridos"})
		return
	}

	purchase := &models.Purchase{
		SupplierID:    req.SupplierID,
		BranchID:      req.BranchID,
		InvoiceNumber: req.InvoiceNumber,
		PurchaseDate:  req.PurchaseDate,
		Total:         req.Total,
		Notes:         req.Notes,
		Items:         req.Items,
	}

	if err := h.purchaseService.Create(c.Request.Context(), purchase, middleware.GetUserID(c)); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"purchase": purchase.ToResponse()})
}

type UpdatePurchaseRequest struct {
	SupplierID    uint       `json:"supplier_id"`
	BranchID      uint       `json:"branch_id"`
	InvoiceNumber string     `json:"invoice_number"`
	PurchaseDate  *time.Time `json:"purchase_date"`
	Notes         *string    `json:"notes"`
}

// @Summary Update Purchase
// @Description Update descriptive fields of an invoice. Amounts only change through payments.
// @Tags Purchases
// @Accept json
// @Produce json
// @Param purchase_id path int true "Purchase ID"
// @Param request body UpdatePurchaseRequest true "Purchase Data"
// @Success 200 {object} models.PurchaseResponse
// @Security BearerAuth
// @Router /purchases/{purchase_id} [put]
func (h *PurchaseHandler) Update(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("purchase_id"), 10, 32)
	var req UpdatePurchaseRequest
	if err := BindNestedOrFlat(c, "purchase", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	purchase := &models.Purchase{
		SupplierID:    req.SupplierID,
		BranchID:      req.BranchID,
		InvoiceNumber: req.InvoiceNumber,
		PurchaseDate:  req.PurchaseDate,
		Notes:         req.Notes,
	}
	purchase.ID = uint(id)

	if err := h.purchaseService.Update(c.Request.Context(), purchase, middleware.GetUserID(c)); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"purchase": purchase.ToResponse()})
}

// @Summary Delete Purchase
// @Description Soft delete an invoice without payments
// @Tags Purchases
// @Accept json
// @Produce json
// @Param purchase_id path int true "Purchase ID"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /purchases/{purchase_id} [delete]
func (h *PurchaseHandler) Delete(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("purchase_id"), 10, 32)
	if err := h.purchaseService.Delete(c.Request.Context(), uint(id), middleware.GetUserID(c)); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Factura eliminada"})
}

// @Summary Import Legacy Data
// @Description Import purchases from a legacy JSON export. Malformed records are skipped and reported.
// @Tags Purchases
// @Accept json
// @Produce json
// @Success 200 {object} services.ImportResult
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /purchases/import [post]
func (h *PurchaseHandler) Import(c *gin.Context) {
	data, err := io.ReadAll(c.Request.Body)
	if err != nil || len(data) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Archivo de importación requerido"})
		return
	}

	result, err := h.purchaseService.ImportLegacy(c.Request.Context(), data, middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}
