package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/farmanet/farmanet-api/internal/middleware"
	"github.com/farmanet/farmanet-api/internal/repository"
	"github.com/farmanet/farmanet-api/internal/services"
	"github.com/farmanet/farmanet-api/internal/storage"
)

type PaymentHandler struct {
	paymentService *services.PaymentService
	reportService  *services.ReportService
	storage        *storage.LocalStorage
}

func NewPaymentHandler(paymentService *services.PaymentService, reportService *services.ReportService, storage *storage.LocalStorage) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService, reportService: reportService, storage: storage}
}

// @Summary List Payments
// @Description Get a paginated list of abonos
// @Tags Payments
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param status query string false "Filter by status (applied/reversed)"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /payments [get]
func (h *PaymentHandler) Index(c *gin.Context) {
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.Filters["status"] = c.Query("status")
	query.Filters["method"] = c.Query("method")
	query.Filters["start_date"] = c.Query("start_date")
	query.Filters["end_date"] = c.Query("end_date")

	if search := c.Query("search_term"); search != "" {
		query.Search = search
	}

	// Parse sort parameter (format: field-direction)
	if sort := c.Query("sort"); sort != "" {
		parts := strings.Split(sort, "-")
		query.SortBy = parts[0]
		if len(parts) > 1 {
			query.SortDir = parts[1]
		}
	}

	payments, total, err := h.paymentService.List(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var responses []interface{}
	for _, p := range payments {
		responses = append(responses, p.ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{
		"payments": responses,
		"pagination": gin.H{
			"page":        query.Page,
			"per_page":    query.PerPage,
			"total":       total,
			"total_pages": (total + int64(query.PerPage) - 1) / int64(query.PerPage),
		},
	})
}

// @Summary Get Payment
// @Description Get an abono by ID
// @Tags Payments
// @Accept json
// @Produce json
// @Param payment_id path int true "Payment ID"
// @Success 200 {object} models.PurchasePaymentResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /payments/{payment_id} [get]
func (h *PaymentHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("payment_id"), 10, 32)
	payment, err := h.paymentService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Abono no encontrado"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment": payment.ToResponse()})
}

type RegisterPaymentRequest struct {
	PurchaseID    uint       `json:"purchase_id"`
	Amount        float64    `json:"amount" binding:"required"`
	PaymentDate   *time.Time `json:"payment_date"`
	Method        string     `json:"method"`
	Reference     string     `json:"reference"`
	BankAccountID *uint      `json:"bank_account_id"`
}

// @Summary Register Payment
// @Description Apply an abono to a purchase invoice
// @Tags Payments
// @Accept json
// @Produce json
// @Param purchase_id path int true "Purchase ID"
// @Param request body RegisterPaymentRequest true "Payment Data"
// @Success 201 {object} models.PurchasePaymentResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /purchases/{purchase_id}/payments [post]
func (h *PaymentHandler) Register(c *gin.Context) {
	purchaseID, _ := strconv.ParseUint(c.Param("purchase_id"), 10, 32)

	var req RegisterPaymentRequest
	if err := BindNestedOrFlat(c, "payment", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if purchaseID == 0 {
		purchaseID = uint64(req.PurchaseID)
	}
	if purchaseID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Factura es requerida"})
		return
	}

	input := &services.RegisterPaymentInput{
		PurchaseID:    uint(purchaseID),
		Amount:        req.Amount,
		Method:        req.Method,
		Reference:     req.Reference,
		BankAccountID: req.BankAccountID,
	}
	if req.PaymentDate != nil {
		input.PaymentDate = *req.PaymentDate
	}

	payment, err := h.paymentService.Register(c.Request.Context(), input,
		middleware.GetUserID(c),
		c.ClientIP(),
		c.Request.UserAgent(),
	)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"payment": payment.ToResponse(), "message": "Abono registrado"})
}

// @Summary Reverse Payment
// @Description Reverse an applied abono. The original row is preserved and marked reversed.
// @Tags Payments
// @Accept json
// @Produce json
// @Param payment_id path int true "Payment ID"
// @Success 200 {object} models.PurchasePaymentResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /payments/{payment_id}/reverse [post]
func (h *PaymentHandler) Reverse(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("payment_id"), 10, 32)

	payment, err := h.paymentService.Reverse(c.Request.Context(), uint(id),
		middleware.GetUserID(c),
		c.ClientIP(),
		c.Request.UserAgent(),
	)
	if err != nil {
		if err == services.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Abono no encontrado"})
			return
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"payment": payment.ToResponse(), "message": "Abono reversado"})
}

// @Summary Upload Receipt
// @Description Upload payment receipt image/pdf
// @Tags Payments
// @Accept multipart/form-data
// @Produce json
// @Param payment_id path int true "Payment ID"
// @Param receipt formData file true "Receipt File"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /payments/{payment_id}/receipt [post]
func (h *PaymentHandler) UploadReceipt(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("payment_id"), 10, 32)

	payment, err := h.paymentService.FindByID(c.Request.Context(), uint(id))
	if err != nil || payment.ID == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Abono no encontrado"})
		return
	}

	file, header, err := c.Request.FormFile("receipt")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Archivo requerido"})
		return
	}
	defer file.Close()

	if c.Request.ContentLength > 0 && c.Request.ContentLength > storage.MaxFileSize() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Archivo demasiado grande"})
		return
	}

	if !storage.IsValidContentType(header.Header.Get("Content-Type")) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Tipo de archivo inválido"})
		return
	}

	path, err := h.storage.Upload(file, header, "receipts")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al guardar archivo"})
		return
	}

	if err := h.paymentService.UpdateReceiptPath(c.Request.Context(), uint(id), path); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Comprobante subido exitosamente"})
}

// @Summary Download Receipt
// @Description Download the uploaded receipt file for a payment
// @Tags Payments
// @Produce application/octet-stream
// @Param payment_id path int true "Payment ID"
// @Success 200 {file} file "receipt"
// @Security BearerAuth
// @Router /payments/{payment_id}/receipt [get]
func (h *PaymentHandler) DownloadReceipt(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("payment_id"), 10, 32)
	payment, err := h.paymentService.FindByID(c.Request.Context(), uint(id))
	if err != nil || payment.ReceiptPath == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comprobante no encontrado"})
		return
	}

	fullPath, err := h.storage.SafeFullPath(*payment.ReceiptPath)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comprobante no encontrado"})
		return
	}

	c.File(fullPath)
}

// @Summary Payment Voucher PDF
// @Description Download the printable voucher for an abono
// @Tags Payments
// @Produce application/pdf
// @Param payment_id path int true "Payment ID"
// @Success 200 {file} file "voucher.pdf"
// @Security BearerAuth
// @Router /payments/{payment_id}/voucher_pdf [get]
func (h *PaymentHandler) VoucherPDF(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("payment_id"), 10, 32)

	buf, err := h.reportService.GeneratePaymentReceiptPDF(c.Request.Context(), uint(id))
	if err != nil {
		if err == services.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Abono no encontrado"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", "attachment; filename=voucher_"+strconv.FormatUint(id, 10)+".pdf")
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// Nested routes handlers

// @Summary List Purchase Payments
// @Description Get the abonos applied against a purchase invoice
// @Tags Payments
// @Accept json
// @Produce json
// @Param purchase_id path int true "Purchase ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /purchases/{purchase_id}/payments [get]
func (h *PaymentHandler) IndexByPurchase(c *gin.Context) {
	purchaseID, _ := strconv.ParseUint(c.Param("purchase_id"), 10, 32)
	payments, err := h.paymentService.FindByPurchase(c.Request.Context(), uint(purchaseID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var responses []interface{}
	for _, p := range payments {
		responses = append(responses, p.ToResponse())
	}
	c.JSON(http.StatusOK, gin.H{"payments": responses})
}
