package models

import (
	"time"
)

// Member household member (members table)
type Member struct {
	ID          int64      `json:"id" db:"id"`
	HouseholdID int64      `json:"household_id" db:"household_id"`
	Name        string     `json:"name" db:"name"`
	Birthdate   *time.Time `json:"birthdate,omitempty" db:"birthdate"`
	Status      int        `json:"status" db:"status"`
}

// StatusEventType kind of membership change
type StatusEventType string

const (
	StatusJoined StatusEventType = "joined"
	StatusExited StatusEventType = "exited"
)

// StatusEvent one row of member_status_history
type StatusEvent struct {
	MemberID      int64           `json:"member_id" db:"member_id"`
	Type          StatusEventType `json:"event_type" db:"event_type"`
	EffectiveDate time.Time       `json:"effective_date" db:"effective_date"`
}
