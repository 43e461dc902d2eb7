package models

import "time"

// FiscalYear represents a row of the fiscal_years table.
type FiscalYear struct {
	FiscalYearID string     `db:"fiscal_year_id"`
	BeginTime    time.Time  `db:"begin_time"`
	EndTime      time.Time  `db:"end_time"`
	PostTime     *time.Time `db:"post_time"`
	AuditFields
}
