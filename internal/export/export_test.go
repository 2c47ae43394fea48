package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"diaries-qc/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func ptr[T any](v T) *T { return &v }

func sampleReport() *models.Report {
	started := time.Date(2025, 7, 3, 9, 30, 0, 0, time.UTC)
	return &models.Report{
		RunID:       "run-1",
		WindowStart: time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC),
		WindowEnd:   time.Date(2025, 7, 2, 0, 0, 0, 0, time.UTC),
		Scorecard: []models.ScorecardRow{{
			InterviewID:    5,
			HouseholdCode:  "NRB001",
			InterviewStart: started,
			RAName:         "alice",
			Checks: []models.CheckResult{
				{Code: "journal", Flag: 1, Detail: "No journal entries"},
				{Code: "no_food", Flag: 1, Detail: "No food purchase recorded"},
			},
			TotalIssues: 2,
			Status:      models.StatusIssuesFound,
			Details:     "No journal entries | No food purchase recorded",
		}},
		Issues: []models.Issue{
			{
				RuleCode: "CF02", RuleTitle: "Sources and uses imbalance", HouseholdCode: "NRB001",
				InterviewID: 5, InterviewStart: started, RAName: "alice",
				Description: "Sources 100.00 vs uses 80.00 (20.0% imbalance)",
				Sources:     ptr(100.0), Uses: ptr(80.0), ImbalancePct: ptr(20.0),
			},
			{
				RuleCode: "CF10", RuleTitle: "Unlinked mobile money cashflow", HouseholdCode: "NRB001",
				MemberName: "Wanjiru", InterviewID: 5, InterviewStart: started, RAName: "alice",
				Description:     "Airtime, 20",
				TransactionDate: ptr(time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)),
				Amount:          ptr(decimal.RequireFromString("20.50")),
				Category:        "Communication", CashflowType: "Airtime", PaymentMode: "M-Pesa",
			},
		},
		RASummary: []models.RASummaryRow{
			{RAName: "alice", TotalInterviews: 1, SchedulePct: nil, QualityPct: ptr(0.0), ScheduleScore: 1, QualityScore: 1},
		},
	}
}

func readCSV(t *testing.T, data string) [][]string {
	records, err := csv.NewReader(strings.NewReader(data)).ReadAll()
	require.NoError(t, err)
	return records
}

func TestWriteScorecardCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteScorecardCSV(&buf, sampleReport().Scorecard))

	records := readCSV(t, buf.String())
	require.Len(t, records, 2)
	header := records[0]
	assert.Equal(t, []string{"interview_id", "household_code", "interview_start", "ra_name", "goings_on"}, header[:5])
	assert.Equal(t, []string{"total_issues", "status", "details"}, header[len(header)-3:])

	row := map[string]string{}
	for i, h := range header {
		row[h] = records[1][i]
	}
	assert.Equal(t, "5", row["interview_id"])
	assert.Equal(t, "2025-07-03 09:30:00", row["interview_start"])
	assert.Equal(t, "1", row["journal"])
	assert.Equal(t, "0", row["goings_on"])
	assert.Equal(t, "2", row["total_issues"])
	assert.Equal(t, "Issues Found", row["status"])
	assert.Equal(t, "No journal entries | No food purchase recorded", row["details"])
}

func TestWriteIssuesCSV_OptionalColumns(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteIssuesCSV(&buf, sampleReport().Issues))

	records := readCSV(t, buf.String())
	require.Len(t, records, 3)
	assert.Equal(t, "rule_code", records[0][0])

	cf02, cf10 := records[1], records[2]
	assert.Equal(t, "CF02", cf02[0])
	assert.Equal(t, "", cf02[8], "no transaction date")
	assert.Equal(t, "100", cf02[13])
	assert.Equal(t, "80", cf02[14])
	assert.Equal(t, "20", cf02[15])

	assert.Equal(t, "Wanjiru", cf10[3])
	assert.Equal(t, "2025-07-01", cf10[8])
	assert.Equal(t, "20.5", cf10[9])
	assert.Equal(t, "M-Pesa", cf10[12])
	assert.Equal(t, "", cf10[15])
}

func TestWriteRASummaryCSV_NullPercent(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRASummaryCSV(&buf, sampleReport().RASummary))

	records := readCSV(t, buf.String())
	require.Len(t, records, 2)
	assert.Equal(t, []string{"alice", "1", "0", "0", "0", "0", "", "0", "0", "1", "1"}, records[1])
}

func TestWriteCSV_UnknownKind(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, WriteCSV(&buf, sampleReport(), "bogus"))
}

func TestBuildWorkbook_AllSheets(t *testing.T) {
	data, err := BuildWorkbook(sampleReport())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Scorecard", "Issues", "RA Summary"}, f.GetSheetList())

	rows, err := f.GetRows("Issues")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "CF10", rows[2][0])
	assert.Equal(t, "Wanjiru", rows[2][3])

	v, err := f.GetCellValue("Scorecard", "B2")
	require.NoError(t, err)
	assert.Equal(t, "NRB001", v)
}

func TestBuildWorkbook_SingleKind(t *testing.T) {
	data, err := BuildWorkbook(sampleReport(), models.KindRASummary)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"RA Summary"}, f.GetSheetList())
	v, err := f.GetCellValue("RA Summary", "A2")
	require.NoError(t, err)
	assert.Equal(t, "alice", v)
}
