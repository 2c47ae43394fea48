// Package aggregator turns per-interview rule results into report rows: the wide completion
// scorecard, the long quality issue list and the per-RA summary. Nothing here re-runs a rule.
package aggregator

import (
	"sort"
	"strings"

	"diaries-qc/internal/evaluator"
	"diaries-qc/internal/models"
)

// DetailSeparator joins the non-empty check details of a scorecard row
const DetailSeparator = " | "

// Scorecard one row per interview, ordered by household code, interview start and id
func Scorecard(results []evaluator.Result) []models.ScorecardRow {
	rows := make([]models.ScorecardRow, 0, len(results))
	for _, res := range results {
		ic := res.Context
		row := models.ScorecardRow{
			InterviewID:    ic.Interview.ID,
			HouseholdCode:  ic.Household.Code,
			InterviewStart: ic.Interview.StartedAt,
			RAName:         ic.Interview.RAName,
			Checks:         res.Checks,
			CashflowCount:  len(ic.Cashflows),
			AnswerCount:    ic.Answers.RowCount(),
			GapDays:        ic.GapDays(),
		}
		var details []string
		for _, c := range res.Checks {
			row.TotalIssues += c.Flag
			if c.Detail != "" {
				details = append(details, c.Detail)
			}
		}
		row.Details = strings.Join(details, DetailSeparator)
		row.Status = models.StatusComplete
		if row.TotalIssues > 0 {
			row.Status = models.StatusIssuesFound
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.HouseholdCode != b.HouseholdCode {
			return a.HouseholdCode < b.HouseholdCode
		}
		if !a.InterviewStart.Equal(b.InterviewStart) {
			return a.InterviewStart.Before(b.InterviewStart)
		}
		return a.InterviewID < b.InterviewID
	})
	return rows
}

// Issues every quality finding, ordered by household code, interview start, rule code and
// description
func Issues(results []evaluator.Result) []models.Issue {
	var issues []models.Issue
	for _, res := range results {
		issues = append(issues, res.Issues...)
	}

	sort.SliceStable(issues, func(i, j int) bool {
		a, b := issues[i], issues[j]
		if a.HouseholdCode != b.HouseholdCode {
			return a.HouseholdCode < b.HouseholdCode
		}
		if !a.InterviewStart.Equal(b.InterviewStart) {
			return a.InterviewStart.Before(b.InterviewStart)
		}
		if a.InterviewID != b.InterviewID {
			return a.InterviewID < b.InterviewID
		}
		if a.RuleCode != b.RuleCode {
			return a.RuleCode < b.RuleCode
		}
		return a.Description < b.Description
	})
	return issues
}
