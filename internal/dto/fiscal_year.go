package dto

import (
	"time"

	"github.com/ledgerforge/gl_backend/internal/core/domain"
)

// CreateFiscalYearRequest is the payload for opening a fiscal period.
type CreateFiscalYearRequest struct {
	BeginTime time.Time `json:"beginTime" binding:"required"`
	EndTime   time.Time `json:"endTime" binding:"required"`
}

// CloseFiscalYearRequest carries the optional closing post time.
type CloseFiscalYearRequest struct {
	PostTime *time.Time `json:"postTime,omitempty"`
}

// FiscalYearResponse is the API representation of a fiscal year.
type FiscalYearResponse struct {
	FiscalYearID string     `json:"fiscalYearID"`
	BeginTime    time.Time  `json:"beginTime"`
	EndTime      time.Time  `json:"endTime"`
	PostTime     *time.Time `json:"postTime,omitempty"`
}

// ToFiscalYearResponse converts a domain FiscalYear to its API representation.
func ToFiscalYearResponse(f *domain.FiscalYear) FiscalYearResponse {
	return FiscalYearResponse{
		FiscalYearID: f.FiscalYearID,
		BeginTime:    f.BeginTime,
		EndTime:      f.EndTime,
		PostTime:     f.PostTime,
	}
}

// CloseFiscalYearResponse reports the fiscal year after closing plus the refs
// of the closing entries it generated.
type CloseFiscalYearResponse struct {
	FiscalYear  FiscalYearResponse `json:"fiscalYear"`
	ClosingRefs []int64            `json:"closingRefs"`
}
