package aggregator

import (
	"testing"
	"time"

	"diaries-qc/internal/answers"
	"diaries-qc/internal/builder"
	"diaries-qc/internal/config"
	"diaries-qc/internal/evaluator"
	"diaries-qc/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func ptr[T any](v T) *T { return &v }

func result(id int64, code, ra, date string, prev string, checks ...models.CheckResult) evaluator.Result {
	ic := &builder.InterviewContext{
		Interview: models.Interview{ID: id, StartedAt: day(date).Add(10 * time.Hour), RAName: ra},
		Household: models.Household{Code: code},
		Date:      day(date),
	}
	if prev != "" {
		ic.Previous = &models.Interview{StartedAt: day(prev).Add(9 * time.Hour)}
	}
	return evaluator.Result{Context: ic, Checks: checks}
}

func TestScorecard_TotalsStatusAndDetails(t *testing.T) {
	kinds := map[int64]answers.Kind{1: answers.KindBool}
	values := answers.NewValues()
	values.Bool[10] = true
	rows := []models.Answer{
		{ID: 1, InterviewID: 5, QuestionID: 1, HistoryID: 10},
		{ID: 2, InterviewID: 5, QuestionID: 2, HistoryID: 11},
	}
	store := answers.NewStore(kinds, values, rows)

	dirty := result(5, "NRB002", "alice", "2025-07-03", "2025-06-19",
		models.CheckResult{Code: "goings_on", Flag: 1, Detail: "Goings-on: 8 of 11 answered"},
		models.CheckResult{Code: "wellbeing"},
		models.CheckResult{Code: "journal", Flag: 1, Detail: "No journal entries"},
	)
	dirty.Context.Answers = store.Interview(5)
	dirty.Context.Cashflows = make([]builder.EnrichedCashflow, 3)

	clean := result(6, "NRB001", "bob", "2025-07-04", "",
		models.CheckResult{Code: "goings_on"},
		models.CheckResult{Code: "wellbeing"},
		models.CheckResult{Code: "journal"},
	)

	got := Scorecard([]evaluator.Result{dirty, clean})
	require.Len(t, got, 2)

	assert.Equal(t, "NRB001", got[0].HouseholdCode, "ordered by household code")
	assert.Equal(t, 0, got[0].TotalIssues)
	assert.Equal(t, models.StatusComplete, got[0].Status)
	assert.Empty(t, got[0].Details)
	assert.Nil(t, got[0].GapDays)

	r := got[1]
	assert.Equal(t, int64(5), r.InterviewID)
	assert.Equal(t, 2, r.TotalIssues)
	assert.Equal(t, models.StatusIssuesFound, r.Status)
	assert.Equal(t, "Goings-on: 8 of 11 answered | No journal entries", r.Details)
	assert.Equal(t, 3, r.CashflowCount)
	assert.Equal(t, 2, r.AnswerCount)
	require.NotNil(t, r.GapDays)
	assert.Equal(t, 14, *r.GapDays)
	assert.Equal(t, 1, r.Flag("journal"))
	assert.Equal(t, 0, r.Flag("wellbeing"))
}

func TestScorecard_Empty(t *testing.T) {
	assert.Empty(t, Scorecard(nil))
}

func TestIssues_Sorted(t *testing.T) {
	a := result(1, "NRB002", "alice", "2025-07-03", "")
	a.Issues = []models.Issue{
		{RuleCode: "HI01", HouseholdCode: "NRB002", InterviewID: 1, InterviewStart: a.Context.Interview.StartedAt, Description: "b"},
		{RuleCode: "CF03", HouseholdCode: "NRB002", InterviewID: 1, InterviewStart: a.Context.Interview.StartedAt, Description: "z"},
		{RuleCode: "CF03", HouseholdCode: "NRB002", InterviewID: 1, InterviewStart: a.Context.Interview.StartedAt, Description: "a"},
	}
	b := result(2, "NRB001", "bob", "2025-07-05", "")
	b.Issues = []models.Issue{
		{RuleCode: "OT01", HouseholdCode: "NRB001", InterviewID: 2, InterviewStart: b.Context.Interview.StartedAt},
	}
	c := result(3, "NRB001", "bob", "2025-07-01", "")
	c.Issues = []models.Issue{
		{RuleCode: "CF18", HouseholdCode: "NRB001", InterviewID: 3, InterviewStart: c.Context.Interview.StartedAt},
	}

	got := Issues([]evaluator.Result{a, b, c})
	var keys []string
	for _, is := range got {
		keys = append(keys, is.HouseholdCode+"/"+is.RuleCode+"/"+is.Description)
	}
	assert.Equal(t, []string{
		"NRB001/CF18/",
		"NRB001/OT01/",
		"NRB002/CF03/a",
		"NRB002/CF03/z",
		"NRB002/HI01/b",
	}, keys)
}

func TestRASummary(t *testing.T) {
	ref, err := config.DefaultReference()
	require.NoError(t, err)

	flagged := func(codes ...string) []models.CheckResult {
		var checks []models.CheckResult
		for _, c := range codes {
			checks = append(checks, models.CheckResult{Code: c, Flag: 1})
		}
		return checks
	}
	rows := []models.ScorecardRow{
		{RAName: "bob", CashflowCount: 10, AnswerCount: 100, GapDays: ptr(14)},
		{RAName: "alice", CashflowCount: 20, AnswerCount: 101, GapDays: ptr(16), TotalIssues: 2, Checks: flagged("goings_on", "journal")},
		{RAName: "alice", CashflowCount: 30, AnswerCount: 102, GapDays: ptr(17)},
		{RAName: "alice", CashflowCount: 5, AnswerCount: 100, GapDays: ptr(13)},
		{RAName: "alice", CashflowCount: 0, AnswerCount: 0},
		{RAName: "carol", CashflowCount: 1, AnswerCount: 3, TotalIssues: 1, Checks: flagged("few_cashflows")},
	}

	got := RASummary(rows, ref)
	require.Len(t, got, 3)
	assert.Equal(t, "alice", got[0].RAName)
	assert.Equal(t, "bob", got[1].RAName)
	assert.Equal(t, "carol", got[2].RAName)

	alice := got[0]
	assert.Equal(t, 4, alice.TotalInterviews)
	assert.Equal(t, 55, alice.TotalCashflows)
	assert.Equal(t, 76, alice.AvgAnswers) // 303/4 = 75.75
	assert.Equal(t, 1, alice.OnTimeVisits)
	assert.Equal(t, 3, alice.ScheduledVisits)
	require.NotNil(t, alice.SchedulePct)
	assert.Equal(t, 33.3, *alice.SchedulePct)
	assert.Equal(t, 3, alice.CleanInterviews)
	require.NotNil(t, alice.QualityPct)
	assert.Equal(t, 75.0, *alice.QualityPct)
	assert.Equal(t, 1, alice.ScheduleScore)
	assert.Equal(t, 1, alice.QualityScore)

	bob := got[1]
	assert.Equal(t, 100.0, *bob.SchedulePct)
	assert.Equal(t, 5, bob.ScheduleScore)
	assert.Equal(t, 5, bob.QualityScore)

	carol := got[2]
	assert.Nil(t, carol.SchedulePct, "no scheduled visits")
	assert.Equal(t, 1, carol.ScheduleScore)
	assert.Equal(t, 0.0, *carol.QualityPct)
	assert.Equal(t, 1, carol.QualityScore)
}

func TestRASummary_CleanUsesConfiguredChecks(t *testing.T) {
	ref, err := config.DefaultReference()
	require.NoError(t, err)

	rows := []models.ScorecardRow{
		{RAName: "alice", TotalIssues: 1, Checks: []models.CheckResult{{Code: "journal", Flag: 1}, {Code: "goings_on", Flag: 0}}},
		{RAName: "alice", TotalIssues: 1, Checks: []models.CheckResult{{Code: "no_food", Flag: 1}}},
		{RAName: "alice", TotalIssues: 1, Checks: []models.CheckResult{{Code: "wellbeing", Flag: 1}}},
	}

	got := RASummary(rows, ref)
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].CleanInterviews)
	assert.Equal(t, 66.7, *got[0].QualityPct)

	ref.CleanChecks = []string{"journal"}
	got = RASummary(rows, ref)
	assert.Equal(t, 2, got[0].CleanInterviews, "only the journal row is unclean")
}

func TestScoreBands(t *testing.T) {
	tests := []struct {
		pct      *float64
		schedule int
		quality  int
	}{
		{nil, 1, 1},
		{ptr(100.0), 5, 5},
		{ptr(95.0), 5, 5},
		{ptr(94.9), 5, 4},
		{ptr(90.0), 5, 4},
		{ptr(89.9), 4, 3},
		{ptr(85.0), 4, 3},
		{ptr(80.0), 4, 2},
		{ptr(79.9), 3, 1},
		{ptr(70.0), 3, 1},
		{ptr(60.0), 2, 1},
		{ptr(59.9), 1, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.schedule, score(tt.pct, scheduleRubric))
		assert.Equal(t, tt.quality, score(tt.pct, qualityRubric))
	}
}

func TestPercent_Rounding(t *testing.T) {
	assert.Nil(t, percent(1, 0))
	assert.Equal(t, 66.7, *percent(2, 3))
	assert.Equal(t, 90.0, *percent(8999, 10000)) // 89.99
}
