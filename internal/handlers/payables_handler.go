package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/farmanet/farmanet-api/internal/repository"
	"github.com/farmanet/farmanet-api/internal/services"
)

type PayablesHandler struct {
	payablesSvc *services.PayablesService
	reportSvc   *services.ReportService
	exportSvc   *services.ExportService
}

func NewPayablesHandler(payablesSvc *services.PayablesService, reportSvc *services.ReportService, exportSvc *services.ExportService) *PayablesHandler {
	return &PayablesHandler{
		payablesSvc: payablesSvc,
		reportSvc:   reportSvc,
		exportSvc:   exportSvc,
	}
}

// parseQuery builds the purchase filter for aging endpoints
func (h *PayablesHandler) parseQuery(c *gin.Context) *repository.PurchaseQuery {
	listQuery := repository.NewListQuery()
	listQuery.Page = 1
	// Aging is computed over the full filtered set, not a page
	listQuery.PerPage = 10000
	listQuery.Filters["settlement_in"] = c.Query("settlement_in")
	listQuery.Filters["start_date"] = c.Query("start_date")
	listQuery.Filters["end_date"] = c.Query("end_date")

	supplierID, _ := strconv.ParseUint(c.Query("supplier_id"), 10, 32)
	branchID, _ := strconv.ParseUint(c.Query("branch_id"), 10, 32)

	return &repository.PurchaseQuery{
		ListQuery:  listQuery,
		SupplierID: uint(supplierID),
		BranchID:   uint(branchID),
		Settlement: c.Query("settlement"),
	}
}

// @Summary Payables Aging View
// @Description Returns every invoice with settlement, due date, days remaining and pronto pago savings, plus totals
// @Tags Payables
// @Produce json
// @Param supplier_id query int false "Filter by supplier"
// @Param branch_id query int false "Filter by branch"
// @Param settlement query string false "Filter by settlement state"
// @Success 200 {object} services.PayablesView
// @Security BearerAuth
// @Router /payables/aging [get]
func (h *PayablesHandler) Aging(c *gin.Context) {
	view, err := h.payablesSvc.GetAgingView(c.Request.Context(), h.parseQuery(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, view)
}

// @Summary Overdue Invoices
// @Description Returns invoices past their due date with an outstanding balance
// @Tags Payables
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /payables/overdue [get]
func (h *PayablesHandler) Overdue(c *gin.Context) {
	invoices, err := h.payablesSvc.GetOverdueInvoices(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoices": invoices})
}

// @Summary Early Payment Candidates
// @Description Returns outstanding invoices whose pronto pago window is still open
// @Tags Payables
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /payables/early_payment [get]
func (h *PayablesHandler) EarlyPayment(c *gin.Context) {
	invoices, err := h.payablesSvc.GetEarlyPaymentCandidates(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoices": invoices})
}

// @Summary Supplier Statement
// @Description Returns the account statement for one supplier
// @Tags Payables
// @Produce json
// @Param supplier_id path int true "Supplier ID"
// @Success 200 {object} services.SupplierStatement
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /payables/suppliers/{supplier_id}/statement [get]
func (h *PayablesHandler) SupplierStatement(c *gin.Context) {
	supplierID, _ := strconv.ParseUint(c.Param("supplier_id"), 10, 32)
	statement, err := h.payablesSvc.GetSupplierStatement(c.Request.Context(), uint(supplierID))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Proveedor no encontrado"})
		return
	}
	c.JSON(http.StatusOK, statement)
}

// @Summary Payables Stats
// @Description Returns aggregate payable figures (invoiced, paid, owed, counts)
// @Tags Payables
// @Produce json
// @Success 200 {object} repository.PurchaseStats
// @Security BearerAuth
// @Router /payables/stats [get]
func (h *PayablesHandler) Stats(c *gin.Context) {
	stats, err := h.payablesSvc.GetStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// @Summary Export Payables Summary
// @Description Generates and downloads the payables summary in various formats
// @Tags Payables
// @Produce application/octet-stream
// @Param format query string true "Report format (csv, xlsx, pdf)"
// @Security BearerAuth
// @Router /payables/export [get]
func (h *PayablesHandler) Export(c *gin.Context) {
	format := c.Query("format")

	stats, err := h.payablesSvc.GetStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get payable stats"})
		return
	}

	view, err := h.payablesSvc.GetAgingView(c.Request.Context(), h.parseQuery(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute aging"})
		return
	}

	var data []byte
	var filename string

	switch format {
	case "csv":
		data, filename, err = h.exportSvc.ExportCSV(c.Request.Context(), stats, &view.Summary)
	case "xlsx":
		data, filename, err = h.exportSvc.ExportXLSX(c.Request.Context(), stats, &view.Summary)
	case "pdf":
		data, filename, err = h.exportSvc.ExportPDF(c.Request.Context(), stats, &view.Summary)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid format (csv, xlsx, pdf)"})
		return
	}

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to generate %s: %v", format, err)})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "application/octet-stream", data)
}

// @Summary Aging Report CSV
// @Description Download the full aging view as CSV
// @Tags Reports
// @Produce text/csv
// @Success 200 {file} file "aging.csv"
// @Security BearerAuth
// @Router /reports/aging_csv [get]
func (h *PayablesHandler) AgingCSV(c *gin.Context) {
	buf, err := h.reportSvc.GenerateAgingCSV(c.Request.Context(), h.parseQuery(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename=aging.csv")
	c.String(http.StatusOK, buf.String())
}

// @Summary Overdue Invoices CSV
// @Description Download overdue invoices report as CSV
// @Tags Reports
// @Produce text/csv
// @Success 200 {file} file "overdue.csv"
// @Security BearerAuth
// @Router /reports/overdue_csv [get]
func (h *PayablesHandler) OverdueCSV(c *gin.Context) {
	buf, err := h.reportSvc.GenerateOverdueCSV(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename=overdue.csv")
	c.String(http.StatusOK, buf.String())
}

// @Summary Supplier Statement PDF
// @Description Download a supplier account statement as PDF
// @Tags Reports
// @Produce application/pdf
// @Param supplier_id query int true "Supplier ID"
// @Success 200 {file} file "statement.pdf"
// @Security BearerAuth
// @Router /reports/supplier_statement_pdf [get]
func (h *PayablesHandler) SupplierStatementPDF(c *gin.Context) {
	supplierID, _ := strconv.ParseUint(c.Query("supplier_id"), 10, 32)
	if supplierID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "supplier_id is required"})
		return
	}

	buf, err := h.reportSvc.GenerateSupplierStatementPDF(c.Request.Context(), uint(supplierID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=statement_%d.pdf", supplierID))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
