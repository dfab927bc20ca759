package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kisahtegar/alqowy/internal/repositories"
	"github.com/kisahtegar/alqowy/internal/services"
	"github.com/kisahtegar/alqowy/internal/utils"
)

type TransactionHandler struct {
	BaseHandler
	subscriptions services.SubscriptionService
	reports       services.ReportService
}

func NewTransactionHandler(subscriptions services.SubscriptionService, reports services.ReportService, logger utils.Logger) *TransactionHandler {
	return &TransactionHandler{
		BaseHandler:   NewBaseHandler(logger),
		subscriptions: subscriptions,
		reports:       reports,
	}
}

// ===== CHECKOUT ENDPOINTS =====

// Checkout submits a payment proof and opens a pending transaction
// @Summary Submit payment
// @Description Upload a transfer proof (multipart field "proof") to open a pending subscription payment
// @Tags transactions
// @Accept multipart/form-data
// @Produce json
// @Success 201 {object} services.TransactionResponse
// @Failure 400 {object} ErrorResponse "Missing or invalid proof"
// @Router /checkout [post]
func (h *TransactionHandler) Checkout(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	h.LogRequest(c, "Submitting payment proof", "user_id", userID)

	proof, err := formFileUpload(c, "proof")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid proof upload",
			Details: err.Error(),
		})
		return
	}

	transaction, err := h.subscriptions.SubmitPayment(c.Request.Context(), userID, proof)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, transaction)
}

// SubscriptionStatus reports whether the caller holds an active subscription
// @Summary Get subscription status
// @Tags transactions
// @Produce json
// @Success 200 {object} map[string]any
// @Router /subscription/status [get]
func (h *TransactionHandler) SubscriptionStatus(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	active, err := h.subscriptions.HasActiveAccess(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"active": active})
}

// MyTransactions lists the caller's own transactions
// @Summary List own transactions
// @Tags transactions
// @Produce json
// @Success 200 {object} services.TransactionListResponse
// @Router /transactions/me [get]
func (h *TransactionHandler) MyTransactions(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	transactions, err := h.subscriptions.ListUserTransactions(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, transactions)
}

// ===== ADMIN ENDPOINTS =====

// ListTransactions lists all transactions for review
// @Summary List transactions
// @Tags transactions
// @Produce json
// @Param is_paid query bool false "Filter by paid status"
// @Param user_id query string false "Filter by user"
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 20, max: 100)"
// @Success 200 {object} services.TransactionListResponse
// @Router /transactions [get]
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	filters, ok := h.transactionFilters(c)
	if !ok {
		return
	}

	transactions, err := h.subscriptions.ListTransactions(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, transactions)
}

// GetTransaction returns a single transaction
// @Summary Get transaction
// @Tags transactions
// @Produce json
// @Success 200 {object} services.TransactionResponse
// @Failure 404 {object} ErrorResponse "Transaction not found"
// @Router /transactions/{id} [get]
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	transaction, err := h.subscriptions.GetTransaction(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, transaction)
}

// ApprovePayment marks a transaction paid and starts the subscription
// @Summary Approve payment
// @Description Mark the transaction paid and stamp the subscription start date at approval time
// @Tags transactions
// @Produce json
// @Success 200 {object} services.TransactionResponse
// @Failure 404 {object} ErrorResponse "Transaction not found"
// @Router /transactions/{id}/approve [put]
func (h *TransactionHandler) ApprovePayment(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	h.LogRequest(c, "Approving payment", "transaction_id", id)

	transaction, err := h.subscriptions.ApprovePayment(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, transaction)
}

// ExportTransactions streams the transactions workbook
// @Summary Export transactions
// @Description Download the filtered transaction list as an XLSX workbook
// @Tags transactions
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param is_paid query bool false "Filter by paid status"
// @Param user_id query string false "Filter by user"
// @Router /transactions/export [get]
func (h *TransactionHandler) ExportTransactions(c *gin.Context) {
	h.LogRequest(c, "Exporting transactions")

	filters, ok := h.transactionFilters(c)
	if !ok {
		return
	}
	// Exports are unpaginated; the filters only narrow the rows.
	filters.Limit = 0
	filters.Offset = 0

	data, filename, err := h.reports.ExportTransactions(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// transactionFilters reads the shared admin listing filters. The false
// return means a response has already been written.
func (h *TransactionHandler) transactionFilters(c *gin.Context) (repositories.TransactionFilters, bool) {
	var filters repositories.TransactionFilters

	if v := c.Query("is_paid"); v != "" {
		isPaid, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid is_paid parameter"})
			return filters, false
		}
		filters.IsPaid = &isPaid
	}
	if v := c.Query("user_id"); v != "" {
		filters.UserID = &v
	}

	page, size := paginationParams(c)
	filters.Limit = size
	filters.Offset = (page - 1) * size

	return filters, true
}
