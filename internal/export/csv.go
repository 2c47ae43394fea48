package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"diaries-qc/internal/models"
)

// WriteScorecardCSV writes the wide completion scorecard
func WriteScorecardCSV(w io.Writer, rows []models.ScorecardRow) error {
	return writeCSV(w, scorecardTable(rows))
}

// WriteIssuesCSV writes the long quality issue list
func WriteIssuesCSV(w io.Writer, issues []models.Issue) error {
	return writeCSV(w, issuesTable(issues))
}

// WriteRASummaryCSV writes the per-RA summary
func WriteRASummaryCSV(w io.Writer, rows []models.RASummaryRow) error {
	return writeCSV(w, raSummaryTable(rows))
}

// WriteCSV writes one report shape
func WriteCSV(w io.Writer, report *models.Report, kind models.ReportKind) error {
	t, err := tableFor(report, kind)
	if err != nil {
		return err
	}
	return writeCSV(w, t)
}

func writeCSV(w io.Writer, t table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.headers); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	record := make([]string, len(t.headers))
	for i, cells := range t.rows {
		for j, v := range cells {
			record[j] = text(v)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}
