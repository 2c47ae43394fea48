package evaluator

import (
	"testing"
	"time"

	"diaries-qc/internal/answers"
	"diaries-qc/internal/builder"
	"diaries-qc/internal/config"
	"diaries-qc/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const interviewID = int64(1)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func ptr[T any](v T) *T { return &v }

// fixture builds an interview context by hand: interview on 2025-07-03, no previous visit
type fixture struct {
	t      *testing.T
	ref    *config.Reference
	ic     *builder.InterviewContext
	kinds  map[int64]answers.Kind
	values *answers.Values
	rows   []models.Answer
	nextID int64
}

func newFixture(t *testing.T) *fixture {
	ref, err := config.DefaultReference()
	require.NoError(t, err)

	started := day("2025-07-03").Add(9 * time.Hour)
	return &fixture{
		t:   t,
		ref: ref,
		ic: &builder.InterviewContext{
			Interview:   models.Interview{ID: interviewID, HouseholdID: 1, StartedAt: started, RAName: "alice", Status: 1},
			Household:   models.Household{ID: 1, Code: "NRB001", ProjectID: 129, Status: 1},
			Date:        day("2025-07-03"),
			WindowStart: day("2025-06-19"),
		},
		kinds:  map[int64]answers.Kind{},
		values: answers.NewValues(),
	}
}

func (f *fixture) withPrevious(at string) *fixture {
	f.ic.Previous = &models.Interview{ID: 99, HouseholdID: 1, StartedAt: day(at).Add(9 * time.Hour), Status: 1}
	f.ic.WindowStart = day(at)
	return f
}

func (f *fixture) addAnswer(q int64, entity *answers.EntityRef, kind answers.Kind) int64 {
	f.nextID++
	f.kinds[q] = kind
	a := models.Answer{ID: f.nextID, InterviewID: interviewID, QuestionID: q, HistoryID: f.nextID}
	if entity != nil {
		a.EntityType = entity.Type
		a.EntityID = ptr(entity.ID)
	}
	f.rows = append(f.rows, a)
	return f.nextID
}

func (f *fixture) answerBool(q int64, entity *answers.EntityRef, v bool) {
	f.values.Bool[f.addAnswer(q, entity, answers.KindBool)] = v
}

func (f *fixture) answerText(q int64, entity *answers.EntityRef, v string) {
	f.values.Text[f.addAnswer(q, entity, answers.KindText)] = v
}

func (f *fixture) answerDecimal(q int64, entity *answers.EntityRef, v string) {
	f.values.Decimal[f.addAnswer(q, entity, answers.KindDecimal)] = decimal.RequireFromString(v)
}

func (f *fixture) answerAll(questions []int64, entity *answers.EntityRef) {
	for _, q := range questions {
		f.answerBool(q, entity, true)
	}
}

func (f *fixture) addMember(id int64, name string, present, adult bool) {
	f.ic.Members = append(f.ic.Members, builder.MemberContext{
		Member:  models.Member{ID: id, HouseholdID: 1, Name: name, Status: 1},
		Present: present,
		Adult:   adult,
	})
}

func (f *fixture) addCashflow(c builder.EnrichedCashflow) {
	if c.ID == 0 {
		c.ID = int64(1000 + len(f.ic.Cashflows))
	}
	c.InterviewID = interviewID
	c.HouseholdID = 1
	if c.TransactionDate.IsZero() {
		c.TransactionDate = f.ic.Date
	}
	if c.Mode == 0 {
		c.Mode = 1
	}
	f.ic.Cashflows = append(f.ic.Cashflows, c)
}

// addHealthIssues adds items opened by the interview, splitting them the way the builder does:
// open at the interview when unclosed or closed no earlier than the window start
func (f *fixture) addHealthIssues(items ...models.EntityItem) {
	for _, hi := range items {
		f.ic.HealthIssues = append(f.ic.HealthIssues, hi)
		if hi.CloseDate == nil || !hi.CloseDate.Before(f.ic.WindowStart) {
			f.ic.OpenHealthIssues = append(f.ic.OpenHealthIssues, hi)
		}
	}
}

func (f *fixture) addJournal(body string) {
	f.ic.Journals = append(f.ic.Journals, models.JournalEntry{
		ID: int64(len(f.ic.Journals) + 1), InterviewID: interviewID, Body: body,
	})
}

// context finalises the answer store
func (f *fixture) context() *builder.InterviewContext {
	f.ic.Answers = answers.NewStore(f.kinds, f.values, f.rows).Interview(interviewID)
	return f.ic
}

func (f *fixture) run(check CheckFunc) []Finding {
	return check(f.context(), f.ref)
}

func outflow(typeName string, value int64) builder.EnrichedCashflow {
	return builder.EnrichedCashflow{
		Cashflow:  models.Cashflow{Value: decimal.NewFromInt(value)},
		TypeName:  typeName,
		Direction: models.DirectionOut,
	}
}

func inflow(typeName string, value int64) builder.EnrichedCashflow {
	return builder.EnrichedCashflow{
		Cashflow:  models.Cashflow{Value: decimal.NewFromInt(value)},
		TypeName:  typeName,
		Direction: models.DirectionIn,
	}
}

func details(findings []Finding) []string {
	out := make([]string, 0, len(findings))
	for _, f := range findings {
		out = append(out, f.Detail)
	}
	return out
}
