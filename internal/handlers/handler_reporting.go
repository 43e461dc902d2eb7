package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ledgerforge/gl_backend/internal/apperrors"
	portssvc "github.com/ledgerforge/gl_backend/internal/core/ports/services"
	"github.com/ledgerforge/gl_backend/internal/dto"
	"github.com/ledgerforge/gl_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// reportingHandler handles HTTP requests for ledger projections.
type reportingHandler struct {
	reportingService  portssvc.ReportingSvcFacade
	fiscalYearService portssvc.FiscalYearSvcFacade
}

// newReportingHandler creates a new reportingHandler.
func newReportingHandler(rs portssvc.ReportingSvcFacade, fs portssvc.FiscalYearSvcFacade) *reportingHandler {
	return &reportingHandler{
		reportingService:  rs,
		fiscalYearService: fs,
	}
}

// registerReportingRoutes registers routes related to ledger reports.
func registerReportingRoutes(rg *gin.RouterGroup, reportingService portssvc.ReportingSvcFacade, fiscalYearService portssvc.FiscalYearSvcFacade) {
	h := newReportingHandler(reportingService, fiscalYearService)

	reports := rg.Group("/reports")
	{
		reports.GET("/trial-balance", h.getTrialBalance)
		reports.GET("/income-statement", h.getIncomeStatement)
		reports.GET("/balance-sheet", h.getBalanceSheet)
		reports.GET("/converted-balances", h.getConvertedBalances)
		reports.GET("/accounting-equation", h.getAccountingEquation)
	}
}

// getTrialBalance godoc
// @Summary Generate a trial balance
// @Description Generates the functional-currency trial balance as of a date
// @Tags reports
// @Produce json
// @Param   asOf query string false "Report date (YYYY-MM-DD)" default(current date)
// @Success 200 {object} dto.TrialBalanceResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 500 {object} map[string]string "Failed to generate report"
// @Router /reports/trial-balance [get]
func (h *reportingHandler) getTrialBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	asOfStr := c.DefaultQuery("asOf", time.Now().Format("2006-01-02"))
	asOf, err := time.Parse("2006-01-02", asOfStr)
	if err != nil {
		logger.Warn("Invalid asOf date format", slog.String("asOf", asOfStr), slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format. Use YYYY-MM-DD"})
		return
	}

	logger = logger.With(slog.String("asOf", asOfStr))
	logger.Info("Received request to generate trial balance report")

	report, err := h.reportingService.TrialBalance(c.Request.Context(), asOf)
	if err != nil {
		logger.Error("Failed to generate trial balance report", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate trial balance report"})
		return
	}

	logger.Info("Trial balance report generated successfully", slog.Int("row_count", len(report.Rows)))
	c.JSON(http.StatusOK, report)
}

// getIncomeStatement godoc
// @Summary Generate an income statement
// @Description Generates an income statement (revenue, cost of goods, expenses, net income) over a posting period
// @Tags reports
// @Produce json
// @Param   from query string false "Start date (YYYY-MM-DD)" default(first day of current month)
// @Param   to query string false "End date (YYYY-MM-DD)" default(current date)
// @Success 200 {object} domain.IncomeStatementReport
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 500 {object} map[string]string "Failed to generate report"
// @Router /reports/income-statement [get]
func (h *reportingHandler) getIncomeStatement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	now := time.Now()
	firstDayOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	fromStr := c.DefaultQuery("from", firstDayOfMonth.Format("2006-01-02"))
	from, err := time.Parse("2006-01-02", fromStr)
	if err != nil {
		logger.Warn("Invalid from date format", slog.String("from", fromStr), slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid from date format. Use YYYY-MM-DD"})
		return
	}

	toStr := c.DefaultQuery("to", now.Format("2006-01-02"))
	to, err := time.Parse("2006-01-02", toStr)
	if err != nil {
		logger.Warn("Invalid to date format", slog.String("to", toStr), slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid to date format. Use YYYY-MM-DD"})
		return
	}

	logger = logger.With(slog.String("from", fromStr), slog.String("to", toStr))
	logger.Info("Received request to generate income statement report")

	report, err := h.reportingService.IncomeStatement(c.Request.Context(), from, to)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Invalid reporting period", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to generate income statement report", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate income statement report"})
		}
		return
	}

	logger.Info("Income statement report generated successfully",
		slog.Int("revenue_accounts", len(report.Revenue)),
		slog.Int("expense_accounts", len(report.Expenses)))
	c.JSON(http.StatusOK, report)
}

// getBalanceSheet godoc
// @Summary Generate a balance sheet
// @Description Generates a balance sheet (assets, liabilities, equity) as of a point in time
// @Tags reports
// @Produce json
// @Param   asOf query string false "Report date (YYYY-MM-DD)" default(current date)
// @Success 200 {object} domain.BalanceSheetReport
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 500 {object} map[string]string "Failed to generate report"
// @Router /reports/balance-sheet [get]
func (h *reportingHandler) getBalanceSheet(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	asOfStr := c.DefaultQuery("asOf", time.Now().Format("2006-01-02"))
	asOf, err := time.Parse("2006-01-02", asOfStr)
	if err != nil {
		logger.Warn("Invalid asOf date format", slog.String("asOf", asOfStr), slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format. Use YYYY-MM-DD"})
		return
	}

	logger = logger.With(slog.String("asOf", asOfStr))
	logger.Info("Received request to generate balance sheet report")

	report, err := h.reportingService.BalanceSheet(c.Request.Context(), asOf)
	if err != nil {
		logger.Error("Failed to generate balance sheet report", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate balance sheet report"})
		return
	}

	logger.Info("Balance sheet report generated successfully",
		slog.Int("asset_accounts", len(report.Assets)),
		slog.Int("liability_accounts", len(report.Liabilities)),
		slog.Int("equity_accounts", len(report.Equity)))
	c.JSON(http.StatusOK, report)
}

// getConvertedBalances godoc
// @Summary Re-express balances in a target currency
// @Description Converts every account balance into the target currency using recorded rates; accounts without a rate are listed as excluded, never converted at par
// @Tags reports
// @Produce json
// @Param   currency query string true "Target currency code" MinLength(3) MaxLength(3)
// @Param   asOf query string false "Rate date (YYYY-MM-DD)" default(current date)
// @Success 200 {object} domain.ConvertedBalancesReport
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 500 {object} map[string]string "Failed to generate report"
// @Router /reports/converted-balances [get]
func (h *reportingHandler) getConvertedBalances(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	targetCurrency := c.Query("currency")
	if len(targetCurrency) != 3 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "currency must be a 3-letter currency code"})
		return
	}

	asOfStr := c.DefaultQuery("asOf", time.Now().Format("2006-01-02"))
	asOf, err := time.Parse("2006-01-02", asOfStr)
	if err != nil {
		logger.Warn("Invalid asOf date format", slog.String("asOf", asOfStr), slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format. Use YYYY-MM-DD"})
		return
	}

	logger = logger.With(slog.String("target_currency", targetCurrency), slog.String("asOf", asOfStr))
	logger.Info("Received request to generate converted balances report")

	report, err := h.reportingService.ConvertedBalances(c.Request.Context(), targetCurrency, asOf)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidCurrency) {
			logger.Warn("Unknown target currency", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to generate converted balances report", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate converted balances report"})
		}
		return
	}

	logger.Info("Converted balances report generated successfully",
		slog.Int("converted_count", len(report.Balances)),
		slog.Int("excluded_count", len(report.Excluded)))
	c.JSON(http.StatusOK, report)
}

// getAccountingEquation godoc
// @Summary Check the accounting equation
// @Description Verifies assets = liabilities + equity over all account balances, signed by normal balance
// @Tags reports
// @Produce json
// @Success 200 {object} dto.AccountingEquationResponse
// @Failure 500 {object} map[string]string "Failed to validate accounting equation"
// @Router /reports/accounting-equation [get]
func (h *reportingHandler) getAccountingEquation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	logger.Info("Received request to validate accounting equation")

	assets, liabilitiesEquity, holds, err := h.fiscalYearService.ValidateAccountingEquation(c.Request.Context())
	if err != nil {
		logger.Error("Failed to validate accounting equation", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to validate accounting equation"})
		return
	}

	resp := dto.AccountingEquationResponse{
		Assets:            assets,
		LiabilitiesEquity: liabilitiesEquity,
		Holds:             holds,
	}

	logger.Info("Accounting equation validated", slog.Bool("holds", holds))
	c.JSON(http.StatusOK, resp)
}
