// Package export renders report rows as CSV files or an XLSX workbook.
package export

import (
	"fmt"
	"strconv"
	"time"

	"diaries-qc/internal/evaluator"
	"diaries-qc/internal/models"

	"github.com/shopspring/decimal"
)

const timeLayout = "2006-01-02 15:04:05"
const dateLayout = "2006-01-02"

// table headers plus typed cells; nil cells render empty
type table struct {
	sheet   string
	headers []string
	widths  []float64
	rows    [][]any
}

func scorecardTable(rows []models.ScorecardRow) table {
	codes := evaluator.CompletionCodes()
	t := table{
		sheet:   "Scorecard",
		headers: append([]string{"interview_id", "household_code", "interview_start", "ra_name"}, codes...),
		widths:  []float64{12, 16, 20, 16},
	}
	t.headers = append(t.headers, "total_issues", "status", "details")
	for range codes {
		t.widths = append(t.widths, 8)
	}
	t.widths = append(t.widths, 12, 14, 80)

	for _, r := range rows {
		cells := []any{r.InterviewID, r.HouseholdCode, r.InterviewStart, r.RAName}
		for _, code := range codes {
			cells = append(cells, r.Flag(code))
		}
		cells = append(cells, r.TotalIssues, r.Status, r.Details)
		t.rows = append(t.rows, cells)
	}
	return t
}

func issuesTable(issues []models.Issue) table {
	t := table{
		sheet: "Issues",
		headers: []string{
			"rule_code", "rule_title", "household_code", "member_name", "interview_id",
			"interview_start", "ra_name", "description", "transaction_date", "amount",
			"category", "cashflow_type", "payment_mode", "sources", "uses", "imbalance_pct",
		},
		widths: []float64{10, 36, 16, 20, 12, 20, 16, 60, 14, 12, 20, 24, 16, 12, 12, 12},
	}
	for _, is := range issues {
		var txDate, amount, sources, uses, pct any
		if is.TransactionDate != nil {
			txDate = is.TransactionDate.Format(dateLayout)
		}
		if is.Amount != nil {
			amount = *is.Amount
		}
		if is.Sources != nil {
			sources = *is.Sources
		}
		if is.Uses != nil {
			uses = *is.Uses
		}
		if is.ImbalancePct != nil {
			pct = *is.ImbalancePct
		}
		t.rows = append(t.rows, []any{
			is.RuleCode, is.RuleTitle, is.HouseholdCode, is.MemberName, is.InterviewID,
			is.InterviewStart, is.RAName, is.Description, txDate, amount,
			is.Category, is.CashflowType, is.PaymentMode, sources, uses, pct,
		})
	}
	return t
}

func raSummaryTable(rows []models.RASummaryRow) table {
	t := table{
		sheet: "RA Summary",
		headers: []string{
			"ra_name", "total_interviews", "total_cfs", "avg_answers", "on_time_visits",
			"scheduled_visits", "schedule_pct", "clean_interviews", "quality_pct",
			"schedule_score", "quality_score",
		},
		widths: []float64{18, 16, 12, 12, 14, 16, 13, 16, 12, 14, 13},
	}
	for _, r := range rows {
		var schedule, quality any
		if r.SchedulePct != nil {
			schedule = *r.SchedulePct
		}
		if r.QualityPct != nil {
			quality = *r.QualityPct
		}
		t.rows = append(t.rows, []any{
			r.RAName, r.TotalInterviews, r.TotalCashflows, r.AvgAnswers, r.OnTimeVisits,
			r.ScheduledVisits, schedule, r.CleanInterviews, quality,
			r.ScheduleScore, r.QualityScore,
		})
	}
	return t
}

func tableFor(report *models.Report, kind models.ReportKind) (table, error) {
	switch kind {
	case models.KindScorecard:
		return scorecardTable(report.Scorecard), nil
	case models.KindIssues:
		return issuesTable(report.Issues), nil
	case models.KindRASummary:
		return raSummaryTable(report.RASummary), nil
	default:
		return table{}, fmt.Errorf("unknown report kind %q", kind)
	}
}

// text renders a cell for CSV output
func text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case decimal.Decimal:
		return x.String()
	case time.Time:
		return x.Format(timeLayout)
	default:
		return fmt.Sprint(x)
	}
}
