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

// fiscalYearHandler handles HTTP requests for fiscal period lifecycle.
type fiscalYearHandler struct {
	fiscalYearService portssvc.FiscalYearSvcFacade
}

// newFiscalYearHandler creates a new fiscalYearHandler.
func newFiscalYearHandler(fs portssvc.FiscalYearSvcFacade) *fiscalYearHandler {
	return &fiscalYearHandler{
		fiscalYearService: fs,
	}
}

// registerFiscalYearRoutes registers routes related to fiscal years.
func registerFiscalYearRoutes(rg *gin.RouterGroup, fiscalYearService portssvc.FiscalYearSvcFacade) {
	h := newFiscalYearHandler(fiscalYearService)

	years := rg.Group("/fiscal-years")
	{
		years.POST("", h.createFiscalYear)
		years.GET("", h.listFiscalYears)
		years.POST("/:begin/close", h.closeFiscalYear)
	}
}

// createFiscalYear godoc
// @Summary Open a fiscal year
// @Description Opens a new fiscal period; periods must not overlap
// @Tags fiscal-years
// @Accept json
// @Produce json
// @Param   fiscalYear body dto.CreateFiscalYearRequest true "Period bounds"
// @Success 201 {object} dto.FiscalYearResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 409 {object} map[string]string "Period overlaps an existing one"
// @Failure 500 {object} map[string]string "Failed to create fiscal year"
// @Router /fiscal-years [post]
func (h *fiscalYearHandler) createFiscalYear(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateFiscalYearRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateFiscalYear", slog.String("error", err.Error()))
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
	logger.Info("Received request to create fiscal year",
		slog.Time("begin_time", req.BeginTime),
		slog.Time("end_time", req.EndTime),
	)

	fiscalYear, err := h.fiscalYearService.CreateFiscalYear(c.Request.Context(), req.BeginTime, req.EndTime, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrOverlappingPeriod) {
			logger.Warn("Fiscal year overlaps an existing period")
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrDuplicate) {
			logger.Warn("Fiscal year with this begin time already exists")
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error creating fiscal year", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to create fiscal year in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create fiscal year"})
		}
		return
	}

	logger.Info("Fiscal year created successfully", slog.String("fiscal_year_id", fiscalYear.FiscalYearID))
	c.JSON(http.StatusCreated, dto.ToFiscalYearResponse(fiscalYear))
}

// listFiscalYears godoc
// @Summary List fiscal years
// @Description Retrieves all fiscal periods ordered by begin time
// @Tags fiscal-years
// @Produce json
// @Success 200 {array} dto.FiscalYearResponse
// @Failure 500 {object} map[string]string "Failed to list fiscal years"
// @Router /fiscal-years [get]
func (h *fiscalYearHandler) listFiscalYears(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	logger.Info("Received request to list fiscal years")

	years, err := h.fiscalYearService.ListFiscalYears(c.Request.Context())
	if err != nil {
		logger.Error("Failed to list fiscal years from service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list fiscal years"})
		return
	}

	responses := make([]dto.FiscalYearResponse, len(years))
	for i := range years {
		responses[i] = dto.ToFiscalYearResponse(&years[i])
	}

	logger.Info("Fiscal years listed successfully", slog.Int("count", len(responses)))
	c.JSON(http.StatusOK, responses)
}

// closeFiscalYear godoc
// @Summary Close a fiscal year
// @Description Zeroes all temporary accounts into retained earnings through the income summary account via ordinary posted entries, then marks the period closed
// @Tags fiscal-years
// @Accept json
// @Produce json
// @Param   begin path string true "Period begin time (RFC 3339)"
// @Param   close body dto.CloseFiscalYearRequest false "Optional closing post time"
// @Success 200 {object} dto.CloseFiscalYearResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Fiscal year not found"
// @Failure 409 {object} map[string]string "Fiscal year already closed"
// @Failure 500 {object} map[string]string "Failed to close fiscal year"
// @Router /fiscal-years/{begin}/close [post]
func (h *fiscalYearHandler) closeFiscalYear(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	begin, err := time.Parse(time.RFC3339, c.Param("begin"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Period begin time must be RFC 3339"})
		return
	}

	var req dto.CloseFiscalYearRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.Warn("Failed to bind JSON for CloseFiscalYear", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
			return
		}
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.Time("begin_time", begin), slog.String("user_id", userID))
	logger.Info("Received request to close fiscal year")

	fiscalYear, closingRefs, err := h.fiscalYearService.CloseFiscalYear(c.Request.Context(), begin, req.PostTime, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			logger.Warn("Fiscal year not found")
			c.JSON(http.StatusNotFound, gin.H{"error": "Fiscal year not found"})
		case errors.Is(err, apperrors.ErrAlreadyClosed):
			logger.Warn("Fiscal year already closed")
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrConflict):
			logger.Warn("Account balances changed during close", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrUnknownAccount):
			logger.Error("Closing accounts are not configured", slog.String("error", err.Error()))
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrValidation):
			logger.Warn("Validation error closing fiscal year", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to close fiscal year in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to close fiscal year"})
		}
		return
	}

	resp := dto.CloseFiscalYearResponse{
		FiscalYear:  dto.ToFiscalYearResponse(fiscalYear),
		ClosingRefs: closingRefs,
	}

	logger.Info("Fiscal year closed successfully", slog.Int("closing_entry_count", len(closingRefs)))
	c.JSON(http.StatusOK, resp)
}
