package handlers

import (
	"context"
	"errors"
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

// journalHandler handles HTTP requests for the posting engine and the
// reversal/correction manager.
type journalHandler struct {
	journalService portssvc.JournalSvcFacade
}

// newJournalHandler creates a new journalHandler.
func newJournalHandler(js portssvc.JournalSvcFacade) *journalHandler {
	return &journalHandler{
		journalService: js,
	}
}

// registerJournalRoutes registers routes related to journal entries.
func registerJournalRoutes(rg *gin.RouterGroup, journalService portssvc.JournalSvcFacade) {
	h := newJournalHandler(journalService)

	entries := rg.Group("/journal-entries")
	{
		entries.POST("", h.createEntry)
		entries.GET("", h.listEntries)
		entries.GET("/:ref", h.getEntry)
		entries.PUT("/:ref", h.updateEntry)
		entries.DELETE("/:ref", h.deleteEntry)
		entries.POST("/:ref/post", h.postEntry)
		entries.POST("/:ref/reverse", h.reverseEntry)
		entries.POST("/:ref/correct", h.correctEntry)
		entries.GET("/:ref/status", h.getEntryStatus)
	}
}

// parseEntryRef parses the :ref path parameter as a positive integer.
func parseEntryRef(c *gin.Context) (int64, bool) {
	ref, err := strconv.ParseInt(c.Param("ref"), 10, 64)
	if err != nil || ref <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Entry ref must be a positive integer"})
		return 0, false
	}
	return ref, true
}

// writeEntryError maps posting-engine errors onto HTTP statuses shared by the
// draft mutation endpoints.
func writeEntryError(c *gin.Context, logger *slog.Logger, err error, action string) {
	switch {
	case errors.Is(err, apperrors.ErrUnknownEntry) || errors.Is(err, apperrors.ErrNotFound):
		logger.Warn("Journal entry not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Journal entry not found"})
	case errors.Is(err, apperrors.ErrPostedImmutable):
		logger.Warn("Attempted to mutate a posted entry")
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrUnknownAccount):
		logger.Warn("Entry references an unknown account", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrInvalidCurrency):
		logger.Warn("Entry references an unknown currency", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrRateUnavailable):
		logger.Warn("No exchange rate available for entry", slog.String("error", err.Error()))
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrUnbalanced) || errors.Is(err, apperrors.ErrZeroAmount):
		logger.Warn("Entry violates balance invariants", slog.String("error", err.Error()))
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrValidation):
		logger.Warn("Validation error on journal entry", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrConflict):
		logger.Warn("Entry changed concurrently", slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logger.Error("Failed to "+action, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to " + action})
	}
}

// createEntry godoc
// @Summary Create a draft journal entry
// @Description Validates and persists a draft entry; foreign-currency entries resolve their rate from the recorded rate series when no explicit rate is given
// @Tags journal-entries
// @Accept json
// @Produce json
// @Param   entry body dto.CreateEntryRequest true "Entry details"
// @Success 201 {object} dto.EntryResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 422 {object} map[string]string "No exchange rate available"
// @Failure 500 {object} map[string]string "Failed to create entry"
// @Router /journal-entries [post]
func (h *journalHandler) createEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateEntry", slog.String("error", err.Error()))
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
	logger.Info("Received request to create journal entry", slog.Int("line_count", len(req.Lines)))

	entry, err := h.journalService.CreateEntry(c.Request.Context(), req, creatorUserID)
	if err != nil {
		writeEntryError(c, logger, err, "create entry")
		return
	}

	logger.Info("Journal entry created successfully", slog.Int64("ref", entry.Ref))
	c.JSON(http.StatusCreated, dto.ToEntryResponse(entry))
}

// getEntry godoc
// @Summary Get a journal entry
// @Description Retrieves an entry with its lines by ref
// @Tags journal-entries
// @Produce json
// @Param   ref path int true "Entry Ref"
// @Success 200 {object} dto.EntryResponse
// @Failure 400 {object} map[string]string "Invalid ref"
// @Failure 404 {object} map[string]string "Entry not found"
// @Failure 500 {object} map[string]string "Failed to retrieve entry"
// @Router /journal-entries/{ref} [get]
func (h *journalHandler) getEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	ref, ok := parseEntryRef(c)
	if !ok {
		return
	}

	logger = logger.With(slog.Int64("ref", ref))
	logger.Info("Received request to get journal entry")

	entry, err := h.journalService.GetEntry(c.Request.Context(), ref)
	if err != nil {
		if errors.Is(err, apperrors.ErrUnknownEntry) {
			logger.Warn("Journal entry not found")
			c.JSON(http.StatusNotFound, gin.H{"error": "Journal entry not found"})
		} else {
			logger.Error("Failed to get entry from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve entry"})
		}
		return
	}

	logger.Info("Journal entry retrieved successfully")
	c.JSON(http.StatusOK, dto.ToEntryResponse(entry))
}

// listEntries godoc
// @Summary List journal entries
// @Description Retrieves a paginated list of entries ordered by ref; lines are included on request
// @Tags journal-entries
// @Produce json
// @Param   limit query int false "Page size" default(50)
// @Param   nextToken query string false "Pagination token from a previous page"
// @Param   includeLines query bool false "Include entry lines" default(false)
// @Success 200 {object} dto.ListEntriesResponse
// @Failure 400 {object} map[string]string "Invalid pagination parameters"
// @Failure 500 {object} map[string]string "Failed to list entries"
// @Router /journal-entries [get]
func (h *journalHandler) listEntries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListEntriesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for ListEntries", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	logger.Info("Received request to list journal entries")

	resp, err := h.journalService.ListEntries(c.Request.Context(), params)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Invalid pagination token", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to list entries from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list entries"})
		}
		return
	}

	logger.Info("Journal entries listed successfully", slog.Int("count", len(resp.Entries)))
	c.JSON(http.StatusOK, resp)
}

// updateEntry godoc
// @Summary Edit a draft journal entry
// @Description Edits a draft entry; replacing lines swaps the whole line set. Posted entries reject all edits
// @Tags journal-entries
// @Accept json
// @Produce json
// @Param   ref path int true "Entry Ref"
// @Param   entry body dto.UpdateEntryRequest true "Fields to update"
// @Success 200 {object} dto.EntryResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Entry not found"
// @Failure 409 {object} map[string]string "Entry is posted and immutable"
// @Failure 500 {object} map[string]string "Failed to update entry"
// @Router /journal-entries/{ref} [put]
func (h *journalHandler) updateEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	ref, ok := parseEntryRef(c)
	if !ok {
		return
	}

	var req dto.UpdateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateEntry", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.Int64("ref", ref), slog.String("user_id", userID))
	logger.Info("Received request to update journal entry")

	entry, err := h.journalService.UpdateEntry(c.Request.Context(), ref, req, userID)
	if err != nil {
		writeEntryError(c, logger, err, "update entry")
		return
	}

	logger.Info("Journal entry updated successfully")
	c.JSON(http.StatusOK, dto.ToEntryResponse(entry))
}

// deleteEntry godoc
// @Summary Delete a draft journal entry
// @Description Removes a draft entry and its lines. Posted entries reject deletion
// @Tags journal-entries
// @Produce json
// @Param   ref path int true "Entry Ref"
// @Success 204 "Entry deleted"
// @Failure 400 {object} map[string]string "Invalid ref"
// @Failure 404 {object} map[string]string "Entry not found"
// @Failure 409 {object} map[string]string "Entry is posted and immutable"
// @Failure 500 {object} map[string]string "Failed to delete entry"
// @Router /journal-entries/{ref} [delete]
func (h *journalHandler) deleteEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	ref, ok := parseEntryRef(c)
	if !ok {
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.Int64("ref", ref), slog.String("user_id", userID))
	logger.Info("Received request to delete journal entry")

	if err := h.journalService.DeleteEntry(c.Request.Context(), ref, userID); err != nil {
		writeEntryError(c, logger, err, "delete entry")
		return
	}

	logger.Info("Journal entry deleted successfully")
	c.Status(http.StatusNoContent)
}

// postEntry godoc
// @Summary Post a draft journal entry
// @Description Commits a draft entry: validates balance invariants and atomically updates account balances. Posting is one-way
// @Tags journal-entries
// @Accept json
// @Produce json
// @Param   ref path int true "Entry Ref"
// @Param   post body dto.PostEntryRequest false "Optional post time"
// @Success 200 {object} dto.EntryResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Entry not found"
// @Failure 409 {object} map[string]string "Entry already posted"
// @Failure 422 {object} map[string]string "Entry violates balance invariants"
// @Failure 500 {object} map[string]string "Failed to post entry"
// @Router /journal-entries/{ref}/post [post]
func (h *journalHandler) postEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	ref, ok := parseEntryRef(c)
	if !ok {
		return
	}

	var req dto.PostEntryRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.Warn("Failed to bind JSON for PostEntry", slog.String("error", err.Error()))
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

	logger = logger.With(slog.Int64("ref", ref), slog.String("user_id", userID))
	logger.Info("Received request to post journal entry")

	entry, err := h.journalService.PostEntry(c.Request.Context(), ref, req, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrAlreadyPosted) {
			logger.Warn("Journal entry already posted")
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		writeEntryError(c, logger, err, "post entry")
		return
	}

	logger.Info("Journal entry posted successfully")
	c.JSON(http.StatusOK, dto.ToEntryResponse(entry))
}

// reverseEntry godoc
// @Summary Reverse a posted journal entry
// @Description Posts a compensating entry that exactly negates the original and links it as its reversal. Each posted entry can be reversed or corrected at most once
// @Tags journal-entries
// @Produce json
// @Param   ref path int true "Entry Ref"
// @Success 201 {object} dto.EntryResponse
// @Failure 400 {object} map[string]string "Invalid ref"
// @Failure 404 {object} map[string]string "Entry not found"
// @Failure 409 {object} map[string]string "Entry not posted or already compensated"
// @Failure 500 {object} map[string]string "Failed to reverse entry"
// @Router /journal-entries/{ref}/reverse [post]
func (h *journalHandler) reverseEntry(c *gin.Context) {
	h.compensateEntry(c, "reverse", h.journalService.ReverseEntry)
}

// correctEntry godoc
// @Summary Correct a posted journal entry
// @Description Posts a compensating entry like a reversal but linked as a correction, marking the original as superseded by a replacement
// @Tags journal-entries
// @Produce json
// @Param   ref path int true "Entry Ref"
// @Success 201 {object} dto.EntryResponse
// @Failure 400 {object} map[string]string "Invalid ref"
// @Failure 404 {object} map[string]string "Entry not found"
// @Failure 409 {object} map[string]string "Entry not posted or already compensated"
// @Failure 500 {object} map[string]string "Failed to correct entry"
// @Router /journal-entries/{ref}/correct [post]
func (h *journalHandler) correctEntry(c *gin.Context) {
	h.compensateEntry(c, "correct", h.journalService.CorrectEntry)
}

// compensateEntry is the shared reverse/correct handler body.
func (h *journalHandler) compensateEntry(c *gin.Context, action string, fn func(ctx context.Context, ref int64, userID string) (*domain.JournalEntry, error)) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	ref, ok := parseEntryRef(c)
	if !ok {
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.Int64("ref", ref), slog.String("user_id", userID), slog.String("action", action))
	logger.Info("Received request to compensate journal entry")

	entry, err := fn(c.Request.Context(), ref, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrUnknownEntry) || errors.Is(err, apperrors.ErrNotFound):
			logger.Warn("Journal entry not found")
			c.JSON(http.StatusNotFound, gin.H{"error": "Journal entry not found"})
		case errors.Is(err, apperrors.ErrNotPosted):
			logger.Warn("Cannot compensate an unposted entry")
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrAlreadyProcessed):
			logger.Warn("Entry already reversed or corrected")
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to "+action+" entry", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to " + action + " entry"})
		}
		return
	}

	logger.Info("Compensating entry posted successfully", slog.Int64("compensating_ref", entry.Ref))
	c.JSON(http.StatusCreated, dto.ToEntryResponse(entry))
}

// getEntryStatus godoc
// @Summary Get the reversible status of an entry
// @Description Reports the derived lifecycle state (UNPOSTED, POSTED, REVERSED, CORRECTED) plus the compensating ref when one exists
// @Tags journal-entries
// @Produce json
// @Param   ref path int true "Entry Ref"
// @Success 200 {object} dto.EntryStatusResponse
// @Failure 400 {object} map[string]string "Invalid ref"
// @Failure 404 {object} map[string]string "Entry not found"
// @Failure 500 {object} map[string]string "Failed to retrieve status"
// @Router /journal-entries/{ref}/status [get]
func (h *journalHandler) getEntryStatus(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	ref, ok := parseEntryRef(c)
	if !ok {
		return
	}

	logger = logger.With(slog.Int64("ref", ref))
	logger.Info("Received request to get entry status")

	status, err := h.journalService.ReversibleStatus(c.Request.Context(), ref)
	if err != nil {
		if errors.Is(err, apperrors.ErrUnknownEntry) {
			logger.Warn("Journal entry not found")
			c.JSON(http.StatusNotFound, gin.H{"error": "Journal entry not found"})
		} else {
			logger.Error("Failed to get entry status from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve status"})
		}
		return
	}

	resp := dto.EntryStatusResponse{
		Ref:             ref,
		State:           string(status.State),
		CompensatingRef: status.CompensatingRef,
	}

	logger.Info("Entry status retrieved successfully", slog.String("state", resp.State))
	c.JSON(http.StatusOK, resp)
}
