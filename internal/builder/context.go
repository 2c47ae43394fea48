package builder

import (
	"time"

	"diaries-qc/internal/answers"
	"diaries-qc/internal/dates"
	"diaries-qc/internal/models"

	"github.com/shopspring/decimal"
)

// MemberContext household member as seen on the interview date
type MemberContext struct {
	models.Member
	Present  bool
	Adult    bool
	Excluded bool // manual exclusion
}

// Eligible present adults that are not manually excluded
func (m MemberContext) Eligible() bool {
	return m.Present && m.Adult && !m.Excluded
}

// InterviewContext everything the rules read about one interview. Shared read-only by all rules.
type InterviewContext struct {
	Interview models.Interview
	Household models.Household
	Date      time.Time // interview day

	Previous           *models.Interview
	PreviousCashOnHand decimal.Decimal // zero without a previous interview

	// WindowStart first day of the quality window: the previous interview day, or
	// Date minus the fallback days when there is none
	WindowStart time.Time

	Members   []MemberContext
	Cashflows []EnrichedCashflow

	HealthIssues     []models.EntityItem // opened on or before Date
	OpenHealthIssues []models.EntityItem // open at the interview
	Devices          []models.EntityItem // financial devices open on Date

	Journals []models.JournalEntry
	Answers  answers.View

	// ChangesQuestions active questions of the changes-since-last-visit category
	ChangesQuestions []int64
}

// PreviousDate day of the previous interview
func (ic *InterviewContext) PreviousDate() (time.Time, bool) {
	if ic.Previous == nil {
		return time.Time{}, false
	}
	return dates.Day(ic.Previous.StartedAt), true
}

// GapDays days since the previous interview, nil without one
func (ic *InterviewContext) GapDays() *int {
	prev, ok := ic.PreviousDate()
	if !ok {
		return nil
	}
	gap := dates.DaysBetween(prev, ic.Date)
	return &gap
}

// Adults eligible members, in member id order
func (ic *InterviewContext) Adults() []MemberContext {
	var adults []MemberContext
	for _, m := range ic.Members {
		if m.Eligible() {
			adults = append(adults, m)
		}
	}
	return adults
}

// MemberName name of a household member, "" when unknown
func (ic *InterviewContext) MemberName(id *int64) string {
	if id == nil {
		return ""
	}
	for _, m := range ic.Members {
		if m.ID == *id {
			return m.Name
		}
	}
	return ""
}

// CashOnHand total of the interview's cash-on-hand rows
func (ic *InterviewContext) CashOnHand() decimal.Decimal {
	return cashOnHand(ic.Cashflows)
}

// Cashflow looks up a cashflow of the interview by id
func (ic *InterviewContext) Cashflow(id int64) (EnrichedCashflow, bool) {
	for _, c := range ic.Cashflows {
		if c.ID == id {
			return c, true
		}
	}
	return EnrichedCashflow{}, false
}

func cashOnHand(list []EnrichedCashflow) decimal.Decimal {
	total := decimal.Zero
	for _, c := range list {
		if c.IsCashOnHand {
			total = total.Add(c.Value)
		}
	}
	return total
}
