package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/farmanet/farmanet-api/internal/middleware"
	"github.com/farmanet/farmanet-api/internal/models"
	"github.com/farmanet/farmanet-api/internal/repository"
	"github.com/farmanet/farmanet-api/internal/services"
)

type SupplierHandler struct {
	supplierService *services.SupplierService
}

func NewSupplierHandler(supplierService *services.SupplierService) *SupplierHandler {
	return &SupplierHandler{supplierService: supplierService}
}

// @Summary List Suppliers
// @Description Get a paginated list of suppliers
// @Tags Suppliers
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param search_term query string false "Search by name or RTN"
// @Param with_credit query bool false "Only suppliers extending credit"
// @Param with_early_discount query bool false "Only suppliers with pronto pago discount"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /suppliers [get]
func (h *SupplierHandler) Index(c *gin.Context) {
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.Search = c.Query("search_term")
	query.Filters["with_credit"] = c.Query("with_credit")
	query.Filters["with_early_discount"] = c.Query("with_early_discount")

	suppliers, total, err := h.supplierService.List(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var responses []interface{}
	for _, s := range suppliers {
		responses = append(responses, s.ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{
		"suppliers": responses,
		"pagination": gin.H{
			"page":        query.Page,
			"per_page":    query.PerPage,
			"total":       total,
			"total_pages": (total + int64(query.PerPage) - 1) / int64(query.PerPage),
		},
	})
}

// @Summary Get Supplier
// @Description Get a supplier by ID
// @Tags Suppliers
// @Accept json
// @Produce json
// @Param supplier_id path int true "Supplier ID"
// @Success 200 {object} models.SupplierResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /suppliers/{supplier_id} [get]
func (h *SupplierHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("supplier_id"), 10, 32)
	supplier, err := h.supplierService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Proveedor no encontrado"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"supplier": supplier.ToResponse()})
}

// @Summary Create Supplier
// @Description Create a new supplier with its credit terms
// @Tags Suppliers
// @Accept json
// @Produce json
// @Param request body models.Supplier true "Supplier Data"
// @Success 201 {object} models.SupplierResponse
// @Security BearerAuth
// @Router /suppliers [post]
func (h *SupplierHandler) Create(c *gin.Context) {
	var supplier models.Supplier
	if err := BindNestedOrFlat(c, "supplier", &supplier); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if supplier.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "El nombre del proveedor es requerido"})
		return
	}

	if err := h.supplierService.Create(c.Request.Context(), &supplier, middleware.GetUserID(c)); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"supplier": supplier.ToResponse()})
}

// @Summary Update Supplier
// @Description Update an existing supplier
// @Tags Suppliers
// @Accept json
// @Produce json
// @Param supplier_id path int true "Supplier ID"
// @Param request body models.Supplier true "Supplier Data"
// @Success 200 {object} models.SupplierResponse
// @Security BearerAuth
// @Router /suppliers/{supplier_id} [put]
func (h *SupplierHandler) Update(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("supplier_id"), 10, 32)
	var supplier models.Supplier
	if err := BindNestedOrFlat(c, "supplier", &supplier); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	supplier.ID = uint(id)

	if err := h.supplierService.Update(c.Request.Context(), &supplier, middleware.GetUserID(c)); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"supplier": supplier.ToResponse()})
}

// @Summary Delete Supplier
// @Description Soft delete a supplier
// @Tags Suppliers
// @Accept json
// @Produce json
// @Param supplier_id path int true "Supplier ID"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /suppliers/{supplier_id} [delete]
func (h *SupplierHandler) Delete(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("supplier_id"), 10, 32)
	if err := h.supplierService.Delete(c.Request.Context(), uint(id), middleware.GetUserID(c)); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Proveedor eliminado"})
}

// @Summary Restore Supplier
// @Description Restore a soft deleted supplier
// @Tags Suppliers
// @Accept json
// @Produce json
// @Param supplier_id path int true "Supplier ID"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /suppliers/{supplier_id}/restore [post]
func (h *SupplierHandler) Restore(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("supplier_id"), 10, 32)
	if err := h.supplierService.Restore(c.Request.Context(), uint(id), middleware.GetUserID(c)); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Proveedor restaurado"})
}

type BranchHandler struct {
	branchService *services.BranchService
}

func NewBranchHandler(branchService *services.BranchService) *BranchHandler {
	return &BranchHandler{branchService: branchService}
}

// @Summary List Branches
// @Description Get all pharmacy branches
// @Tags Branches
// @Accept json
// @Produce json
// @Param active query bool false "Only active branches"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /branches [get]
func (h *BranchHandler) Index(c *gin.Context) {
	var branches []models.Branch
	var err error
	if c.Query("active") == "true" {
		branches, err = h.branchService.FindActive(c.Request.Context())
	} else {
		branches, err = h.branchService.FindAll(c.Request.Context())
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var responses []interface{}
	for _, b := range branches {
		responses = append(responses, b.ToResponse())
	}
	c.JSON(http.StatusOK, gin.H{"branches": responses})
}

// @Summary Get Branch
// @Description Get a branch by ID
// @Tags Branches
// @Accept json
// @Produce json
// @Param branch_id path int true "Branch ID"
// @Success 200 {object} models.BranchResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /branches/{branch_id} [get]
func (h *BranchHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("branch_id"), 10, 32)
	branch, err := h.branchService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Sucursal no encontrada"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"branch": branch.ToResponse()})
}

// @Summary Create Branch
// @Description Create a new branch
// @Tags Branches
// @Accept json
// @Produce json
// @Param request body models.Branch true "Branch Data"
// @Success 201 {object} models.BranchResponse
// @Security BearerAuth
// @Router /branches [post]
func (h *BranchHandler) Create(c *gin.Context) {
	var branch models.Branch
	if err := BindNestedOrFlat(c, "branch", &branch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if branch.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "El nombre de la sucursal es requerido"})
		return
	}

	if err := h.branchService.Create(c.Request.Context(), &branch, middleware.GetUserID(c)); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"branch": branch.ToResponse()})
}

// @Summary Update Branch
// @Description Update an existing branch
// @Tags Branches
// @Accept json
// @Produce json
// @Param branch_id path int true "Branch ID"
// @Param request body models.Branch true "Branch Data"
// @Success 200 {object} models.BranchResponse
// @Security BearerAuth
// @Router /branches/{branch_id} [put]
func (h *BranchHandler) Update(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("branch_id"), 10, 32)
	var branch models.Branch
	if err := BindNestedOrFlat(c, "branch", &branch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	branch.ID = uint(id)

	if err := h.branchService.Update(c.Request.Context(), &branch, middleware.GetUserID(c)); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"branch": branch.ToResponse()})
}

// @Summary Delete Branch
// @Description Delete a branch
// @Tags Branches
// @Accept json
// @Produce json
// @Param branch_id path int true "Branch ID"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /branches/{branch_id} [delete]
func (h *BranchHandler) Delete(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("branch_id"), 10, 32)
	if err := h.branchService.Delete(c.Request.Context(), uint(id), middleware.GetUserID(c)); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Sucursal eliminada"})
}

type NotificationHandler struct {
	notificationService *services.NotificationService
}

func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// @Summary List Notifications
// @Description Get a paginated list of notifications for the current user
// @Tags Notifications
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /notifications [get]
func (h *NotificationHandler) Index(c *gin.Context) {
	userID := middleware.GetUserID(c)
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))

	notifications, total, err := h.notificationService.FindByUser(c.Request.Context(), userID, query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	unread, _ := h.notificationService.CountUnread(c.Request.Context(), userID)

	var responses []interface{}
	for _, n := range notifications {
		responses = append(responses, n.ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{"notifications": responses, "unread": unread, "pagination": gin.H{"total": total}})
}

// @Summary Get Notification
// @Description Get a notification by ID
// @Tags Notifications
// @Accept json
// @Produce json
// @Param notification_id path int true "Notification ID"
// @Success 200 {object} models.NotificationResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /notifications/{notification_id} [get]
func (h *NotificationHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("notification_id"), 10, 32)
	notification, err := h.notificationService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notificación no encontrada"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notification": notification.ToResponse()})
}

// @Summary Mark Notification Read
// @Description Mark a notification as read
// @Tags Notifications
// @Accept json
// @Produce json
// @Param notification_id path int true "Notification ID"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /notifications/{notification_id} [put]
func (h *NotificationHandler) Update(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("notification_id"), 10, 32)
	if err := h.notificationService.MarkAsRead(c.Request.Context(), uint(id)); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notificación marcada como leída"})
}

// @Summary Delete Notification
// @Description Delete a notification
// @Tags Notifications
// @Accept json
// @Produce json
// @Param notification_id path int true "Notification ID"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /notifications/{notification_id} [delete]
func (h *NotificationHandler) Delete(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("notification_id"), 10, 32)
	if err := h.notificationService.Delete(c.Request.Context(), uint(id)); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notificación eliminada"})
}

// @Summary Mark All Notifications Read
// @Description Mark all notifications as read for current user
// @Tags Notifications
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /notifications/mark_all_as_read [post]
func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if err := h.notificationService.MarkAllAsRead(c.Request.Context(), userID); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Todas las notificaciones marcadas como leídas"})
}

type AuditHandler struct {
	auditService *services.AuditService
}

func NewAuditHandler(auditService *services.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// @Summary List Audit Logs
// @Description Get a paginated list of system audit logs
// @Tags Audit
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(50)
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /audits [get]
func (h *AuditHandler) Index(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "50"))
	offset := (page - 1) * perPage

	logs, total, err := h.auditService.List(c.Request.Context(), perPage, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"audits": logs, "pagination": gin.H{"total": total, "page": page, "per_page": perPage}})
}
