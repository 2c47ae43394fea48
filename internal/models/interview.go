package models

import (
	"time"
)

// StatusActive status value of rows that take part in a run (interviews, households, cashflows)
const StatusActive = 1

// Household household record (households table)
type Household struct {
	ID        int64  `json:"id" db:"id"`
	Code      string `json:"code" db:"name"` // e.g. "KIB014"; used for exclusions and rural prefixes
	ProjectID int64  `json:"project_id" db:"project_id"`
	Status    int    `json:"status" db:"status"`
	Out       bool   `json:"out" db:"out"` // out of sample
}

// Interview one household visit (interviews table)
type Interview struct {
	ID            int64     `json:"id" db:"id"`
	HouseholdID   int64     `json:"household_id" db:"household_id"`
	StartedAt     time.Time `json:"interview_start_date" db:"interview_start_date"`
	InterviewerID *int64    `json:"interviewer_id,omitempty" db:"interviewer_id"`
	RAName        string    `json:"ra_name" db:"username"` // "Unknown" when the user row is missing
	Status        int       `json:"status" db:"status"`
}

// JournalEntry free text written by the RA during an interview (journal_entries table)
type JournalEntry struct {
	ID          int64  `json:"id" db:"id"`
	InterviewID int64  `json:"interview_id" db:"interview_id"`
	Body        string `json:"body" db:"body"`
}
