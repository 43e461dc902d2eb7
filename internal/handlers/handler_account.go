package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ledgerforge/gl_backend/internal/apperrors"
	"github.com/ledgerforge/gl_backend/internal/core/domain"
	portssvc "github.com/ledgerforge/gl_backend/internal/core/ports/services"
	"github.com/ledgerforge/gl_backend/internal/dto"
	"github.com/ledgerforge/gl_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// accountHandler handles HTTP requests related to accounts and account types.
type accountHandler struct {
	accountService portssvc.AccountSvcFacade
	journalService portssvc.JournalSvcFacade
}

// newAccountHandler creates a new accountHandler.
func newAccountHandler(as portssvc.AccountSvcFacade, js portssvc.JournalSvcFacade) *accountHandler {
	return &accountHandler{
		accountService: as,
		journalService: js,
	}
}

// registerAccountRoutes registers routes related to accounts and account types.
func registerAccountRoutes(rg *gin.RouterGroup, accountService portssvc.AccountSvcFacade, journalService portssvc.JournalSvcFacade) {
	h := newAccountHandler(accountService, journalService)

	accountTypes := rg.Group("/account-types")
	{
		accountTypes.POST("", h.createAccountType)
		accountTypes.GET("", h.listAccountTypes)
	}

	accounts := rg.Group("/accounts")
	{
		accounts.POST("", h.createAccount)
		accounts.GET("", h.listAccounts)
		accounts.GET("/:code", h.getAccountByCode)
		accounts.PUT("/:code", h.updateAccount)
		accounts.GET("/:code/lines", h.listAccountLines)
	}
}

// parseAccountCode parses the :code path parameter as a positive integer.
func parseAccountCode(c *gin.Context) (int64, bool) {
	code, err := strconv.ParseInt(c.Param("code"), 10, 64)
	if err != nil || code <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Account code must be a positive integer"})
		return 0, false
	}
	return code, true
}

// createAccountType godoc
// @Summary Register a custom account type
// @Description Registers an account type beyond the standard set, with its normal balance polarity
// @Tags account-types
// @Accept json
// @Produce json
// @Param   accountType body dto.CreateAccountTypeRequest true "Account type details"
// @Success 201 {object} dto.AccountTypeResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 409 {object} map[string]string "Account type already exists"
// @Failure 500 {object} map[string]string "Failed to create account type"
// @Router /account-types [post]
func (h *accountHandler) createAccountType(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateAccountTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateAccountType", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("user_id", userID))
	logger.Info("Received request to create account type", slog.String("type_name", req.Name))

	accountType, err := h.accountService.RegisterAccountType(c.Request.Context(), req.Name, domain.NormalBalance(req.NormalBalance), userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			logger.Warn("Attempted to create duplicate account type", slog.String("type_name", req.Name))
			c.JSON(http.StatusConflict, gin.H{"error": fmt.Sprintf("Account type '%s' already exists", req.Name)})
		} else if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error creating account type", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to create account type in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account type"})
		}
		return
	}

	logger.Info("Account type created successfully", slog.String("type_name", accountType.Name))
	c.JSON(http.StatusCreated, dto.ToAccountTypeResponse(*accountType))
}

// listAccountTypes godoc
// @Summary List account types
// @Description Retrieves the account type reference set, standard and custom
// @Tags account-types
// @Produce json
// @Success 200 {array} dto.AccountTypeResponse
// @Failure 500 {object} map[string]string "Failed to list account types"
// @Router /account-types [get]
func (h *accountHandler) listAccountTypes(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	logger.Info("Received request to list account types")

	accountTypes, err := h.accountService.ListAccountTypes(c.Request.Context())
	if err != nil {
		logger.Error("Failed to list account types from service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list account types"})
		return
	}

	responses := make([]dto.AccountTypeResponse, len(accountTypes))
	for i, t := range accountTypes {
		responses[i] = dto.ToAccountTypeResponse(t)
	}

	logger.Info("Account types listed successfully", slog.Int("count", len(responses)))
	c.JSON(http.StatusOK, responses)
}

// createAccount godoc
// @Summary Create a new account
// @Description Registers an account with its code, type and currency; an optional opening balance posts immediately against equity
// @Tags accounts
// @Accept json
// @Produce json
// @Param   account body dto.CreateAccountRequest true "Account details"
// @Success 201 {object} dto.AccountResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 409 {object} map[string]string "Account code already exists"
// @Failure 500 {object} map[string]string "Failed to create account"
// @Router /accounts [post]
func (h *accountHandler) createAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateAccount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Creator user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("creator_user_id", creatorUserID))
	logger.Info("Received request to create account", slog.Int64("account_code", req.Code))

	account, err := h.accountService.CreateAccount(c.Request.Context(), req, creatorUserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			logger.Warn("Attempted to create duplicate account", slog.Int64("account_code", req.Code))
			c.JSON(http.StatusConflict, gin.H{"error": fmt.Sprintf("Account code %d already exists", req.Code)})
		} else if errors.Is(err, apperrors.ErrInvalidCurrency) {
			logger.Warn("Unknown currency for account", slog.String("currency_code", req.CurrencyCode))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error creating account", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to create account in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		}
		return
	}

	logger.Info("Account created successfully", slog.Int64("account_code", account.Code))
	c.JSON(http.StatusCreated, dto.ToAccountResponse(account))
}

// getAccountByCode godoc
// @Summary Get an account by code
// @Description Retrieves an account with its current native and functional balances
// @Tags accounts
// @Produce json
// @Param   code path int true "Account Code"
// @Success 200 {object} dto.AccountResponse
// @Failure 400 {object} map[string]string "Invalid account code"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 500 {object} map[string]string "Failed to retrieve account"
// @Router /accounts/{code} [get]
func (h *accountHandler) getAccountByCode(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	code, ok := parseAccountCode(c)
	if !ok {
		return
	}

	logger = logger.With(slog.Int64("account_code", code))
	logger.Info("Received request to get account by code")

	account, err := h.accountService.GetAccountByCode(c.Request.Context(), code)
	if err != nil {
		if errors.Is(err, apperrors.ErrUnknownAccount) || errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Account not found")
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		} else {
			logger.Error("Failed to get account from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve account"})
		}
		return
	}

	logger.Info("Account retrieved successfully")
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// listAccounts godoc
// @Summary List accounts
// @Description Retrieves a paginated list of accounts ordered by code
// @Tags accounts
// @Produce json
// @Param   limit query int false "Page size" default(50)
// @Param   nextToken query string false "Pagination token from a previous page"
// @Success 200 {object} dto.ListAccountsResponse
// @Failure 400 {object} map[string]string "Invalid pagination parameters"
// @Failure 500 {object} map[string]string "Failed to list accounts"
// @Router /accounts [get]
func (h *accountHandler) listAccounts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListAccountsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for ListAccounts", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	logger.Info("Received request to list accounts")

	resp, err := h.accountService.ListAccounts(c.Request.Context(), params)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Invalid pagination token", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to list accounts from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list accounts"})
		}
		return
	}

	logger.Info("Accounts listed successfully", slog.Int("count", len(resp.Accounts)))
	c.JSON(http.StatusOK, resp)
}

// updateAccount godoc
// @Summary Rename an account
// @Description Updates an account's name; code, type and currency are immutable
// @Tags accounts
// @Accept json
// @Produce json
// @Param   code path int true "Account Code"
// @Param   account body dto.UpdateAccountRequest true "Fields to update"
// @Success 200 {object} dto.AccountResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 500 {object} map[string]string "Failed to update account"
// @Router /accounts/{code} [put]
func (h *accountHandler) updateAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	code, ok := parseAccountCode(c)
	if !ok {
		return
	}

	var req dto.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateAccount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.Int64("account_code", code), slog.String("user_id", userID))
	logger.Info("Received request to update account")

	account, err := h.accountService.UpdateAccount(c.Request.Context(), code, req, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUnknownAccount) || errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Account not found")
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		} else if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error updating account", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to update account in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update account"})
		}
		return
	}

	logger.Info("Account updated successfully")
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// listAccountLines godoc
// @Summary List posted lines for an account
// @Description Retrieves the ledger view of an account: posted journal lines touching it, newest entry first
// @Tags accounts
// @Produce json
// @Param   code path int true "Account Code"
// @Param   limit query int false "Page size" default(50)
// @Param   nextToken query string false "Pagination token from a previous page"
// @Success 200 {object} dto.ListAccountLinesResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 500 {object} map[string]string "Failed to list account lines"
// @Router /accounts/{code}/lines [get]
func (h *accountHandler) listAccountLines(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	code, ok := parseAccountCode(c)
	if !ok {
		return
	}

	var params dto.ListAccountLinesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for ListAccountLines", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	logger = logger.With(slog.Int64("account_code", code))
	logger.Info("Received request to list account lines")

	resp, err := h.journalService.ListAccountLines(c.Request.Context(), code, params)
	if err != nil {
		if errors.Is(err, apperrors.ErrUnknownAccount) || errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Account not found")
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		} else if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Invalid pagination token", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to list account lines from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list account lines"})
		}
		return
	}

	logger.Info("Account lines listed successfully", slog.Int("count", len(resp.Lines)))
	c.JSON(http.StatusOK, resp)
}
