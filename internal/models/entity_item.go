package models

import (
	"time"

	"diaries-qc/internal/dates"
)

// Entity item kinds
const (
	ItemHealthIssue     = "health_issue"
	ItemFinancialDevice = "financial_device"
)

// EntityItem tracked household entity with an open/close lifecycle (entity_items table).
// Health issues and financial devices share the table and differ by Kind.
type EntityItem struct {
	ID          int64      `json:"id" db:"id"`
	HouseholdID int64      `json:"household_id" db:"household_id"`
	MemberID    *int64     `json:"member_id,omitempty" db:"member_id"`
	Kind        string     `json:"kind" db:"kind"`
	Name        string     `json:"name" db:"name"`
	Subtype     string     `json:"subtype" db:"subtype"` // device type label, e.g. "M-Pesa"
	OpenDate    time.Time  `json:"open_date" db:"open_date"`
	CloseDate   *time.Time `json:"close_date,omitempty" db:"close_date"`
	Dormant     bool       `json:"dormant" db:"dormant"`
}

// IsOpen reports whether the item has no close date
func (e EntityItem) IsOpen() bool {
	return e.CloseDate == nil
}

// OpenOn reports whether the item was still open at the end of day: opened on or before it and
// either unclosed or closed on a later day. A close date recorded after an interview does not make
// the item closed at that interview.
func (e EntityItem) OpenOn(day time.Time) bool {
	if !dates.OnOrBefore(e.OpenDate, day) {
		return false
	}
	return e.CloseDate == nil || dates.Day(*e.CloseDate).After(dates.Day(day))
}
