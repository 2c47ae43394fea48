package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Scorecard statuses
const (
	StatusComplete    = "Complete"
	StatusIssuesFound = "Issues Found"
)

// Issue one quality-list row
type Issue struct {
	RuleCode       string    `json:"rule_code"`
	RuleTitle      string    `json:"rule_title"`
	HouseholdCode  string    `json:"household_code"`
	MemberName     string    `json:"member_name,omitempty"`
	InterviewID    int64     `json:"interview_id"`
	InterviewStart time.Time `json:"interview_start"`
	RAName         string    `json:"ra_name"`
	Description    string    `json:"description"`

	// transaction metadata, set for cashflow rules
	TransactionDate *time.Time       `json:"transaction_date,omitempty"`
	Amount          *decimal.Decimal `json:"amount,omitempty"`
	Category        string           `json:"category,omitempty"`
	CashflowType    string           `json:"cashflow_type,omitempty"`
	PaymentMode     string           `json:"payment_mode,omitempty"`

	// imbalance diagnostics (CF02)
	Sources      *float64 `json:"sources,omitempty"`
	Uses         *float64 `json:"uses,omitempty"`
	ImbalancePct *float64 `json:"imbalance_pct,omitempty"`
}

// CheckResult one completion check within a scorecard row
type CheckResult struct {
	Code   string `json:"code"`
	Flag   int    `json:"flag"` // 0 or 1
	Detail string `json:"detail,omitempty"`
}

// ScorecardRow wide per-interview completion row
type ScorecardRow struct {
	InterviewID    int64         `json:"interview_id"`
	HouseholdCode  string        `json:"household_code"`
	InterviewStart time.Time     `json:"interview_start"`
	RAName         string        `json:"ra_name"`
	Checks         []CheckResult `json:"checks"`
	TotalIssues    int           `json:"total_issues"`
	Status         string        `json:"status"`
	Details        string        `json:"details"`

	// visit statistics used by the RA summary
	CashflowCount int  `json:"cashflow_count"`
	AnswerCount   int  `json:"answer_count"`
	GapDays       *int `json:"gap_days,omitempty"` // days since previous visit
}

// Flag returns the flag of the check with the given code (0 when absent)
func (r ScorecardRow) Flag(code string) int {
	for _, c := range r.Checks {
		if c.Code == code {
			return c.Flag
		}
	}
	return 0
}

// RASummaryRow per-RA automated performance summary
type RASummaryRow struct {
	RAName          string   `json:"ra_name"`
	TotalInterviews int      `json:"total_interviews"`
	TotalCashflows  int      `json:"total_cfs"`
	AvgAnswers      int      `json:"avg_answers"`
	OnTimeVisits    int      `json:"on_time_visits"`
	ScheduledVisits int      `json:"scheduled_visits"`
	SchedulePct     *float64 `json:"schedule_pct"`
	CleanInterviews int      `json:"clean_interviews"`
	QualityPct      *float64 `json:"quality_pct"`
	ScheduleScore   int      `json:"schedule_score"`
	QualityScore    int      `json:"quality_score"`
}

// ReportKind one of the three report shapes
type ReportKind string

const (
	KindScorecard ReportKind = "scorecard"
	KindIssues    ReportKind = "issues"
	KindRASummary ReportKind = "ra-summary"
)

// ReportKinds all shapes, in output order
func ReportKinds() []ReportKind {
	return []ReportKind{KindScorecard, KindIssues, KindRASummary}
}

// Report output of one evaluation run
type Report struct {
	RunID       string         `json:"run_id"`
	WindowStart time.Time      `json:"window_start"`
	WindowEnd   time.Time      `json:"window_end"`
	GeneratedAt time.Time      `json:"generated_at"`
	Scorecard   []ScorecardRow `json:"scorecard"`
	Issues      []Issue        `json:"issues"`
	RASummary   []RASummaryRow `json:"ra_summary"`
}
