package domain

import "time"

// FiscalYear is a reporting period. PostTime is nil while the period is open;
// closing sets it exactly once, after the closing entries it generated have
// been posted through the ordinary journal path.
type FiscalYear struct {
	FiscalYearID string     `json:"fiscalYearID"`
	BeginTime    time.Time  `json:"beginTime"`
	EndTime      time.Time  `json:"endTime"`
	PostTime     *time.Time `json:"postTime,omitempty"`
	AuditFields
}

// Closed reports whether the period has been closed.
func (f *FiscalYear) Closed() bool {
	return f.PostTime != nil
}

// Overlaps reports whether the period shares any instant with [begin, end).
func (f *FiscalYear) Overlaps(begin, end time.Time) bool {
	return f.BeginTime.Before(end) && begin.Before(f.EndTime)
}
