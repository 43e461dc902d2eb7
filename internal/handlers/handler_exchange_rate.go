package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ledgerforge/gl_backend/internal/apperrors"
	portssvc "github.com/ledgerforge/gl_backend/internal/core/ports/services"
	"github.com/ledgerforge/gl_backend/internal/dto"
	"github.com/ledgerforge/gl_backend/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// exchangeRateHandler handles HTTP requests related to exchange rates.
type exchangeRateHandler struct {
	rateService portssvc.ExchangeRateSvcFacade
}

// newExchangeRateHandler creates a new exchangeRateHandler.
func newExchangeRateHandler(rs portssvc.ExchangeRateSvcFacade) *exchangeRateHandler {
	return &exchangeRateHandler{
		rateService: rs,
	}
}

// registerExchangeRateRoutes registers routes related to exchange rates.
func registerExchangeRateRoutes(rg *gin.RouterGroup, rateService portssvc.ExchangeRateSvcFacade) {
	h := newExchangeRateHandler(rateService)

	rates := rg.Group("/exchange-rates")
	{
		rates.POST("", h.recordRate)
		rates.GET("", h.listRates)
		rates.GET("/latest", h.getLatestRate)
		rates.GET("/convert", h.convert)
		rates.PUT("/:id", h.updateRate)
	}
}

// parseRatePair reads and validates the from/to query parameters.
func parseRatePair(c *gin.Context) (string, string, bool) {
	from := c.Query("from")
	to := c.Query("to")
	if len(from) != 3 || len(to) != 3 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from and to must be 3-letter currency codes"})
		return "", "", false
	}
	return from, to, true
}

// parseAsOf reads the optional asOf query parameter, defaulting to now.
func parseAsOf(c *gin.Context) (time.Time, bool) {
	asOfStr := c.Query("asOf")
	if asOfStr == "" {
		return time.Now().UTC(), true
	}
	asOf, err := time.Parse("2006-01-02", asOfStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid asOf date format. Use YYYY-MM-DD"})
		return time.Time{}, false
	}
	return asOf, true
}

// recordRate godoc
// @Summary Record an exchange rate
// @Description Records a rate for a currency pair and date; recording the same pair and date again amends the stored rate
// @Tags exchange-rates
// @Accept json
// @Produce json
// @Param   rate body dto.RecordRateRequest true "Rate details"
// @Success 201 {object} dto.ExchangeRateResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 500 {object} map[string]string "Failed to record rate"
// @Router /exchange-rates [post]
func (h *exchangeRateHandler) recordRate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.RecordRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for RecordRate", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Creator user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(
		slog.String("creator_user_id", creatorUserID),
		slog.String("from", req.FromCurrencyCode),
		slog.String("to", req.ToCurrencyCode),
	)
	logger.Info("Received request to record exchange rate")

	rate, err := h.rateService.RecordRate(c.Request.Context(), req, creatorUserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidCurrency) {
			logger.Warn("Unknown currency in rate pair", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error recording rate", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to record rate in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record rate"})
		}
		return
	}

	logger.Info("Exchange rate recorded successfully", slog.String("rate_id", rate.ExchangeRateID))
	c.JSON(http.StatusCreated, dto.ToExchangeRateResponse(rate))
}

// updateRate godoc
// @Summary Amend an exchange rate record
// @Description Amends the rate or source of an existing record; the pair and date are immutable
// @Tags exchange-rates
// @Accept json
// @Produce json
// @Param   id path string true "Exchange Rate ID"
// @Param   rate body dto.UpdateRateRequest true "Fields to update"
// @Success 200 {object} dto.ExchangeRateResponse
// @Failure 400 {object} map[string]string "Invalid input or immutable key change"
// @Failure 404 {object} map[string]string "Rate not found"
// @Failure 500 {object} map[string]string "Failed to update rate"
// @Router /exchange-rates/{id} [put]
func (h *exchangeRateHandler) updateRate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	rateID := c.Param("id")

	var req dto.UpdateRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateRate", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("rate_id", rateID), slog.String("user_id", userID))
	logger.Info("Received request to update exchange rate")

	rate, err := h.rateService.UpdateRate(c.Request.Context(), rateID, req, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Exchange rate not found")
			c.JSON(http.StatusNotFound, gin.H{"error": "Exchange rate not found"})
		} else if errors.Is(err, apperrors.ErrImmutableKey) {
			logger.Warn("Attempted to change immutable rate key", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error updating rate", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to update rate in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update rate"})
		}
		return
	}

	logger.Info("Exchange rate updated successfully")
	c.JSON(http.StatusOK, dto.ToExchangeRateResponse(rate))
}

// getLatestRate godoc
// @Summary Get the latest rate for a pair
// @Description Retrieves the most recent rate at or before a date; a missing rate is an explicit error, never an implied 1.0
// @Tags exchange-rates
// @Produce json
// @Param   from query string true "From currency code" MinLength(3) MaxLength(3)
// @Param   to query string true "To currency code" MinLength(3) MaxLength(3)
// @Param   asOf query string false "Rate date (YYYY-MM-DD)" default(today)
// @Success 200 {object} dto.ExchangeRateResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "No rate available"
// @Failure 500 {object} map[string]string "Failed to retrieve rate"
// @Router /exchange-rates/latest [get]
func (h *exchangeRateHandler) getLatestRate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	from, to, ok := parseRatePair(c)
	if !ok {
		return
	}
	asOf, ok := parseAsOf(c)
	if !ok {
		return
	}

	logger = logger.With(slog.String("from", from), slog.String("to", to))
	logger.Info("Received request to get latest exchange rate")

	rate, err := h.rateService.LatestRate(c.Request.Context(), from, to, asOf)
	if err != nil {
		if errors.Is(err, apperrors.ErrRateUnavailable) {
			logger.Warn("No exchange rate available for pair")
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrValidation) || errors.Is(err, apperrors.ErrInvalidCurrency) {
			logger.Warn("Invalid rate lookup", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to get latest rate from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve rate"})
		}
		return
	}

	logger.Info("Latest exchange rate retrieved successfully")
	c.JSON(http.StatusOK, dto.ToExchangeRateResponse(rate))
}

// convert godoc
// @Summary Convert an amount between currencies
// @Description Converts an amount using the latest rate at or before a date, rounded to the target currency's precision
// @Tags exchange-rates
// @Produce json
// @Param   amount query string true "Amount to convert"
// @Param   from query string true "From currency code" MinLength(3) MaxLength(3)
// @Param   to query string true "To currency code" MinLength(3) MaxLength(3)
// @Param   asOf query string false "Rate date (YYYY-MM-DD)" default(today)
// @Success 200 {object} dto.ConvertResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "No rate available"
// @Failure 500 {object} map[string]string "Failed to convert"
// @Router /exchange-rates/convert [get]
func (h *exchangeRateHandler) convert(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	from, to, ok := parseRatePair(c)
	if !ok {
		return
	}
	asOf, ok := parseAsOf(c)
	if !ok {
		return
	}

	amount, err := decimal.NewFromString(c.Query("amount"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be a valid decimal number"})
		return
	}

	logger = logger.With(slog.String("from", from), slog.String("to", to))
	logger.Info("Received request to convert amount")

	converted, rate, err := h.rateService.Convert(c.Request.Context(), amount, from, to, asOf)
	if err != nil {
		if errors.Is(err, apperrors.ErrRateUnavailable) {
			logger.Warn("No exchange rate available for conversion")
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrValidation) || errors.Is(err, apperrors.ErrInvalidCurrency) {
			logger.Warn("Invalid conversion request", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to convert amount in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to convert"})
		}
		return
	}

	resp := dto.ConvertResponse{
		Amount:    amount,
		From:      from,
		To:        to,
		Converted: converted,
	}
	if rate != nil {
		resp.Rate = rate.Rate
		resp.RateDate = rate.RateDate
	} else {
		// Same-currency conversion; rate is par by identity.
		resp.Rate = decimal.NewFromInt(1)
		resp.RateDate = asOf
	}

	logger.Info("Amount converted successfully")
	c.JSON(http.StatusOK, resp)
}

// listRates godoc
// @Summary List rate history for a pair
// @Description Retrieves recorded rates for a currency pair, newest first
// @Tags exchange-rates
// @Produce json
// @Param   from query string true "From currency code" MinLength(3) MaxLength(3)
// @Param   to query string true "To currency code" MinLength(3) MaxLength(3)
// @Param   limit query int false "Maximum rows" default(50)
// @Success 200 {array} dto.ExchangeRateResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 500 {object} map[string]string "Failed to list rates"
// @Router /exchange-rates [get]
func (h *exchangeRateHandler) listRates(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	from, to, ok := parseRatePair(c)
	if !ok {
		return
	}

	limit := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	logger = logger.With(slog.String("from", from), slog.String("to", to))
	logger.Info("Received request to list exchange rates")

	rates, err := h.rateService.ListRates(c.Request.Context(), from, to, limit)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) || errors.Is(err, apperrors.ErrInvalidCurrency) {
			logger.Warn("Invalid rate listing request", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to list rates from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list rates"})
		}
		return
	}

	responses := make([]dto.ExchangeRateResponse, len(rates))
	for i := range rates {
		responses[i] = dto.ToExchangeRateResponse(&rates[i])
	}

	logger.Info("Exchange rates listed successfully", slog.Int("count", len(responses)))
	c.JSON(http.StatusOK, responses)
}
