package aggregator

import (
	"sort"

	"diaries-qc/internal/config"
	"diaries-qc/internal/models"

	"github.com/shopspring/decimal"
)

// band lower bound (inclusive) of a rubric score
type band struct {
	min   float64
	score int
}

var (
	scheduleRubric = []band{{90, 5}, {80, 4}, {70, 3}, {60, 2}}
	qualityRubric  = []band{{95, 5}, {90, 4}, {85, 3}, {80, 2}}
)

func score(pct *float64, rubric []band) int {
	v := 0.0
	if pct != nil {
		v = *pct
	}
	for _, b := range rubric {
		if v >= b.min {
			return b.score
		}
	}
	return 1
}

// percent part/whole*100 rounded to one decimal, nil when whole is zero
func percent(part, whole int) *float64 {
	if whole == 0 {
		return nil
	}
	v := decimal.NewFromInt(int64(part) * 100).
		Div(decimal.NewFromInt(int64(whole))).
		Round(1).
		InexactFloat64()
	return &v
}

type raTotals struct {
	interviews int
	cashflows  int
	answers    int
	onTime     int
	scheduled  int
	clean      int
}

// clean reports whether none of the given completion checks is flagged on the row
func clean(r models.ScorecardRow, checks []string) bool {
	for _, code := range checks {
		if r.Flag(code) != 0 {
			return false
		}
	}
	return true
}

// RASummary per-RA visit schedule and data quality summary built from scorecard rows.
// An interview is clean when none of ref.CleanChecks is flagged.
func RASummary(rows []models.ScorecardRow, ref *config.Reference) []models.RASummaryRow {
	th := ref.Thresholds
	totals := make(map[string]*raTotals)
	for _, r := range rows {
		t, ok := totals[r.RAName]
		if !ok {
			t = &raTotals{}
			totals[r.RAName] = t
		}
		t.interviews++
		t.cashflows += r.CashflowCount
		t.answers += r.AnswerCount
		if r.GapDays != nil {
			t.scheduled++
			if *r.GapDays >= th.OnTimeGapMinDays && *r.GapDays <= th.OnTimeGapMaxDays {
				t.onTime++
			}
		}
		if clean(r, ref.CleanChecks) {
			t.clean++
		}
	}

	out := make([]models.RASummaryRow, 0, len(totals))
	for name, t := range totals {
		row := models.RASummaryRow{
			RAName:          name,
			TotalInterviews: t.interviews,
			TotalCashflows:  t.cashflows,
			AvgAnswers: int(decimal.NewFromInt(int64(t.answers)).
				Div(decimal.NewFromInt(int64(t.interviews))).
				Round(0).
				IntPart()),
			OnTimeVisits:    t.onTime,
			ScheduledVisits: t.scheduled,
			SchedulePct:     percent(t.onTime, t.scheduled),
			CleanInterviews: t.clean,
			QualityPct:      percent(t.clean, t.interviews),
		}
		row.ScheduleScore = score(row.SchedulePct, scheduleRubric)
		row.QualityScore = score(row.QualityPct, qualityRubric)
		out = append(out, row)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].RAName < out[j].RAName })
	return out
}
