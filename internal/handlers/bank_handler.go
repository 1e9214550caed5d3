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

type BankHandler struct {
	bankService *services.BankService
}

func NewBankHandler(bankService *services.BankService) *BankHandler {
	return &BankHandler{bankService: bankService}
}

// @Summary List Bank Accounts
// @Description Get the bank accounts used to pay suppliers
// @Tags Banks
// @Accept json
// @Produce json
// @Param active query bool false "Only active accounts"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /bank_accounts [get]
func (h *BankHandler) Index(c *gin.Context) {
	var accounts []models.BankAccount
	var err error
	if c.Query("active") == "true" {
		accounts, err = h.bankService.FindActiveAccounts(c.Request.Context())
	} else {
		accounts, err = h.bankService.FindAccounts(c.Request.Context())
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var responses []interface{}
	for _, a := range accounts {
		responses = append(responses, a.ToResponse())
	}
	c.JSON(http.StatusOK, gin.H{"bank_accounts": responses})
}

// @Summary Get Bank Account
// @Description Get a bank account by ID
// @Tags Banks
// @Accept json
// @Produce json
// @Param account_id path int true "Account ID"
// @Success 200 {object} models.BankAccountResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /bank_accounts/{account_id} [get]
func (h *BankHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("account_id"), 10, 32)
	account, err := h.bankService.FindAccountByID(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Cuenta bancaria no encontrada"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"bank_account": account.ToResponse()})
}

// @Summary Create Bank Account
// @Description Register a new bank account
// @Tags Banks
// @Accept json
// @Produce json
// @Param request body models.BankAccount true "Account Data"
// @Success 201 {object} models.BankAccountResponse
// @Security BearerAuth
// @Router /bank_accounts [post]
func (h *BankHandler) Create(c *gin.Context) {
	var account models.BankAccount
	if err := BindNestedOrFlat(c, "bank_account", &account); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if account.Alias == "" || account.BankName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Alias y banco son requeridos"})
		return
	}

	if err := h.bankService.CreateAccount(c.Request.Context(), &account, middleware.GetUserID(c)); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"bank_account": account.ToResponse()})
}

// @Summary Update Bank Account
// @Description Update a bank account. The balance only moves through ledger movements.
// @Tags Banks
// @Accept json
// @Produce json
// @Param account_id path int true "Account ID"
// @Param request body models.BankAccount true "Account Data"
// @Success 200 {object} models.BankAccountResponse
// @Security BearerAuth
// @Router /bank_accounts/{account_id} [put]
func (h *BankHandler) Update(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("account_id"), 10, 32)
	var account models.BankAccount
	if err := BindNestedOrFlat(c, "bank_account", &account); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	account.ID = uint(id)

	if err := h.bankService.UpdateAccount(c.Request.Context(), &account, middleware.GetUserID(c)); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"bank_account": account.ToResponse()})
}

// @Summary List Account Movements
// @Description Get the movement ledger for a bank account
// @Tags Banks
// @Accept json
// @Produce json
// @Param account_id path int true "Account ID"
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /bank_accounts/{account_id}/movements [get]
func (h *BankHandler) Movements(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("account_id"), 10, 32)
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))

	movements, total, err := h.bankService.FindMovements(c.Request.Context(), uint(id), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"movements": movements, "pagination": gin.H{"total": total}})
}

// @Summary Reconcile Account Balance
// @Description Recompute the account balance from the movement ledger
// @Tags Banks
// @Accept json
// @Produce json
// @Param account_id path int true "Account ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /bank_accounts/{account_id}/reconcile [post]
func (h *BankHandler) Reconcile(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("account_id"), 10, 32)
	balance, err := h.bankService.ReconcileBalance(c.Request.Context(), uint(id), middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"balance": balance, "message": "Saldo reconciliado"})
}
