package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"diaries-qc/internal/models"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// PostgresSource reads the field-collection tables from Postgres
type PostgresSource struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPostgresSource creates the Postgres source
func NewPostgresSource(db *sql.DB, logger *zap.Logger) *PostgresSource {
	return &PostgresSource{
		db:     db,
		logger: logger,
	}
}

// Load reads every table the run needs. Any query failure is reported as ErrSourceUnavailable;
// a window without households or interviews is an empty dataset, not an error.
func (s *PostgresSource) Load(ctx context.Context, q Query) (*Dataset, error) {
	started := time.Now()
	ds := NewDataset()

	if err := s.loadHouseholds(ctx, q, ds); err != nil {
		return nil, unavailable("households", err)
	}
	if len(ds.Households) == 0 {
		s.logger.Info("No households in scope", zap.Int64("project_id", q.ProjectID))
		return ds, nil
	}
	householdIDs := ds.HouseholdIDs()

	if err := s.loadInterviews(ctx, q, householdIDs, ds); err != nil {
		return nil, unavailable("interviews", err)
	}
	if len(ds.Interviews) == 0 {
		s.logger.Info("No interviews in window",
			zap.Time("start", q.Start),
			zap.Time("end", q.End),
		)
		return ds, nil
	}
	windowIDs := ds.WindowInterviewIDs()
	cashflowIDs := ds.CashflowInterviewIDs()

	// Remaining tables are independent of each other; each loader writes its own fields.
	g, gctx := errgroup.WithContext(ctx)
	loaders := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"members", func(c context.Context) error { return s.loadMembers(c, householdIDs, ds) }},
		{"member_status_history", func(c context.Context) error { return s.loadStatusHistory(c, householdIDs, ds) }},
		{"questions", func(c context.Context) error { return s.loadQuestions(c, ds) }},
		{"answers", func(c context.Context) error { return s.loadAnswers(c, windowIDs, ds) }},
		{"values_tinyint", func(c context.Context) error { return s.loadBoolValues(c, windowIDs, ds) }},
		{"values_int", func(c context.Context) error { return s.loadIntValues(c, windowIDs, ds) }},
		{"values_decimal", func(c context.Context) error { return s.loadDecimalValues(c, windowIDs, ds) }},
		{"values_varchar", func(c context.Context) error {
			return s.loadTextValues(c, "values_varchar", windowIDs, ds.Values.Varchar)
		}},
		{"values_text", func(c context.Context) error {
			return s.loadTextValues(c, "values_text", windowIDs, ds.Values.Text)
		}},
		{"cashflows", func(c context.Context) error { return s.loadCashflows(c, cashflowIDs, ds) }},
		{"cashflow_types", func(c context.Context) error { return s.loadCashflowTypes(c, ds) }},
		{"cashflow_categories", func(c context.Context) error { return s.loadCashflowCategories(c, ds) }},
		{"entity_items", func(c context.Context) error { return s.loadEntityItems(c, householdIDs, ds) }},
		{"journal_entries", func(c context.Context) error { return s.loadJournals(c, windowIDs, ds) }},
	}
	for _, l := range loaders {
		l := l
		g.Go(func() error {
			if err := l.fn(gctx); err != nil {
				return unavailable(l.name, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.logger.Debug("Source data loaded",
		zap.Int("households", len(ds.Households)),
		zap.Int("interviews", len(ds.Interviews)),
		zap.Int("answers", len(ds.Answers)),
		zap.Duration("elapsed", time.Since(started)),
	)
	return ds, nil
}

func unavailable(table string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrSourceUnavailable, table, err)
}

func (s *PostgresSource) loadHouseholds(ctx context.Context, q Query, ds *Dataset) error {
	query := `
		SELECT h.id, h.name, h.project_id, h.status, h."out" <> 0
		FROM households h
		WHERE h.project_id = $1
		  AND h.status = 1
		  AND h."out" = 0
		  AND NOT (LOWER(h.name) LIKE ANY($2))
		  AND NOT (UPPER(h.name) = ANY($3))
		ORDER BY h.id
	`
	patterns := make([]string, 0, len(q.TestPatterns))
	for _, p := range q.TestPatterns {
		if p = strings.TrimSpace(p); p != "" {
			patterns = append(patterns, "%"+strings.ToLower(p)+"%")
		}
	}
	excluded := make([]string, 0, len(q.ExcludedHouseholds))
	for _, c := range q.ExcludedHouseholds {
		excluded = append(excluded, strings.ToUpper(strings.TrimSpace(c)))
	}

	rows, err := s.db.QueryContext(ctx, query, q.ProjectID, pq.Array(patterns), pq.Array(excluded))
	if err != nil {
		return fmt.Errorf("failed to query households: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var h models.Household
		if err := rows.Scan(&h.ID, &h.Code, &h.ProjectID, &h.Status, &h.Out); err != nil {
			return fmt.Errorf("failed to scan household: %w", err)
		}
		ds.Households[h.ID] = h
	}
	return rows.Err()
}

func (s *PostgresSource) loadInterviews(ctx context.Context, q Query, householdIDs []int64, ds *Dataset) error {
	query := `
		SELECT i.id, i.household_id, i.interview_start_date, i.interviewer_id,
		       COALESCE(cu.username, 'Unknown'), i.status
		FROM interviews i
		LEFT JOIN core_users cu ON cu.id = i.interviewer_id
		WHERE i.household_id = ANY($1)
		  AND i.status = 1
		  AND i.interview_start_date::date BETWEEN $2 AND $3
		ORDER BY i.household_id, i.interview_start_date, i.id
	`
	historyStart := q.HistoryStart
	if historyStart.IsZero() || historyStart.After(q.Start) {
		historyStart = q.Start
	}

	rows, err := s.db.QueryContext(ctx, query, pq.Array(householdIDs), historyStart, q.End)
	if err != nil {
		return fmt.Errorf("failed to query interviews: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var iv models.Interview
		var interviewerID sql.NullInt64
		if err := rows.Scan(&iv.ID, &iv.HouseholdID, &iv.StartedAt, &interviewerID, &iv.RAName, &iv.Status); err != nil {
			return fmt.Errorf("failed to scan interview: %w", err)
		}
		if interviewerID.Valid {
			iv.InterviewerID = &interviewerID.Int64
		}
		ds.AddInterview(iv, q.Start, q.End)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	ds.SortInterviews()
	return nil
}

func (s *PostgresSource) loadMembers(ctx context.Context, householdIDs []int64, ds *Dataset) error {
	query := `
		SELECT m.id, m.household_id, COALESCE(m.name, ''), m.birthdate, m.status
		FROM members m
		WHERE m.household_id = ANY($1)
		  AND m.status = 1
		ORDER BY m.household_id, m.id
	`
	rows, err := s.db.QueryContext(ctx, query, pq.Array(householdIDs))
	if err != nil {
		return fmt.Errorf("failed to query members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m models.Member
		var birthdate sql.NullTime
		if err := rows.Scan(&m.ID, &m.HouseholdID, &m.Name, &birthdate, &m.Status); err != nil {
			return fmt.Errorf("failed to scan member: %w", err)
		}
		if birthdate.Valid {
			m.Birthdate = &birthdate.Time
		}
		ds.Members[m.HouseholdID] = append(ds.Members[m.HouseholdID], m)
	}
	return rows.Err()
}

func (s *PostgresSource) loadStatusHistory(ctx context.Context, householdIDs []int64, ds *Dataset) error {
	query := `
		SELECT sh.member_id, sh.event_type, sh.effective_date
		FROM member_status_history sh
		JOIN members m ON m.id = sh.member_id
		WHERE m.household_id = ANY($1)
		ORDER BY sh.member_id, sh.effective_date
	`
	rows, err := s.db.QueryContext(ctx, query, pq.Array(householdIDs))
	if err != nil {
		return fmt.Errorf("failed to query status history: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ev models.StatusEvent
		var eventType string
		if err := rows.Scan(&ev.MemberID, &eventType, &ev.EffectiveDate); err != nil {
			return fmt.Errorf("failed to scan status event: %w", err)
		}
		ev.Type = models.StatusEventType(strings.ToLower(strings.TrimSpace(eventType)))
		ds.StatusHistory[ev.MemberID] = append(ds.StatusHistory[ev.MemberID], ev)
	}
	return rows.Err()
}

func (s *PostgresSource) loadQuestions(ctx context.Context, ds *Dataset) error {
	query := `
		SELECT q.id, q.value_type, q.category_id, q.active
		FROM questions q
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to query questions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var qu models.Question
		var categoryID sql.NullInt64
		if err := rows.Scan(&qu.ID, &qu.ValueType, &categoryID, &qu.Active); err != nil {
			return fmt.Errorf("failed to scan question: %w", err)
		}
		if categoryID.Valid {
			qu.CategoryID = &categoryID.Int64
		}
		ds.Questions[qu.ID] = qu
	}
	return rows.Err()
}

func (s *PostgresSource) loadAnswers(ctx context.Context, interviewIDs []int64, ds *Dataset) error {
	query := `
		SELECT a.id, a.interview_id, a.question_id, COALESCE(a.entity_type, ''), a.entity_id, a.history_id
		FROM answers a
		WHERE a.interview_id = ANY($1)
		ORDER BY a.interview_id, a.id
	`
	rows, err := s.db.QueryContext(ctx, query, pq.Array(interviewIDs))
	if err != nil {
		return fmt.Errorf("failed to query answers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a models.Answer
		var entityID sql.NullInt64
		if err := rows.Scan(&a.ID, &a.InterviewID, &a.QuestionID, &a.EntityType, &entityID, &a.HistoryID); err != nil {
			return fmt.Errorf("failed to scan answer: %w", err)
		}
		if entityID.Valid {
			a.EntityID = &entityID.Int64
		}
		ds.Answers = append(ds.Answers, a)
	}
	return rows.Err()
}

// valuesQuery selects the typed values referenced by the answers of the given interviews
func valuesQuery(table string) string {
	return fmt.Sprintf(`
		SELECT v.history_id, v.value
		FROM %s v
		JOIN answers a ON a.history_id = v.history_id
		WHERE a.interview_id = ANY($1)
	`, table)
}

func (s *PostgresSource) loadBoolValues(ctx context.Context, interviewIDs []int64, ds *Dataset) error {
	rows, err := s.db.QueryContext(ctx, valuesQuery("values_tinyint"), pq.Array(interviewIDs))
	if err != nil {
		return fmt.Errorf("failed to query values_tinyint: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var historyID int64
		var v sql.NullInt64
		if err := rows.Scan(&historyID, &v); err != nil {
			return fmt.Errorf("failed to scan values_tinyint: %w", err)
		}
		if v.Valid {
			ds.Values.Bool[historyID] = v.Int64 != 0
		}
	}
	return rows.Err()
}

func (s *PostgresSource) loadIntValues(ctx context.Context, interviewIDs []int64, ds *Dataset) error {
	rows, err := s.db.QueryContext(ctx, valuesQuery("values_int"), pq.Array(interviewIDs))
	if err != nil {
		return fmt.Errorf("failed to query values_int: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var historyID int64
		var v sql.NullInt64
		if err := rows.Scan(&historyID, &v); err != nil {
			return fmt.Errorf("failed to scan values_int: %w", err)
		}
		if v.Valid {
			ds.Values.Int[historyID] = v.Int64
		}
	}
	return rows.Err()
}

func (s *PostgresSource) loadDecimalValues(ctx context.Context, interviewIDs []int64, ds *Dataset) error {
	rows, err := s.db.QueryContext(ctx, valuesQuery("values_decimal"), pq.Array(interviewIDs))
	if err != nil {
		return fmt.Errorf("failed to query values_decimal: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var historyID int64
		var v decimal.NullDecimal
		if err := rows.Scan(&historyID, &v); err != nil {
			return fmt.Errorf("failed to scan values_decimal: %w", err)
		}
		if v.Valid {
			ds.Values.Decimal[historyID] = v.Decimal
		}
	}
	return rows.Err()
}

func (s *PostgresSource) loadTextValues(ctx context.Context, table string, interviewIDs []int64, dst map[int64]string) error {
	rows, err := s.db.QueryContext(ctx, valuesQuery(table), pq.Array(interviewIDs))
	if err != nil {
		return fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var historyID int64
		var v sql.NullString
		if err := rows.Scan(&historyID, &v); err != nil {
			return fmt.Errorf("failed to scan %s: %w", table, err)
		}
		if v.Valid {
			dst[historyID] = v.String
		}
	}
	return rows.Err()
}

func (s *PostgresSource) loadCashflows(ctx context.Context, interviewIDs []int64, ds *Dataset) error {
	query := `
		SELECT c.id, c.interview_id, c.household_id, c.member_id, c.financial_device_id,
		       c.cashflow_type_id, COALESCE(c.payment_mode, ''), c.value,
		       c.transaction_date, c.linked_cashflow_id
		FROM cashflows c
		WHERE c.interview_id = ANY($1)
		  AND c.status = 1
		ORDER BY c.interview_id, c.id
	`
	rows, err := s.db.QueryContext(ctx, query, pq.Array(interviewIDs))
	if err != nil {
		return fmt.Errorf("failed to query cashflows: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var cf models.Cashflow
		var memberID, deviceID, linkedID sql.NullInt64
		var value decimal.NullDecimal
		if err := rows.Scan(&cf.ID, &cf.InterviewID, &cf.HouseholdID, &memberID, &deviceID,
			&cf.TypeID, &cf.PaymentMode, &value, &cf.TransactionDate, &linkedID); err != nil {
			return fmt.Errorf("failed to scan cashflow: %w", err)
		}
		cf.MemberID = nullInt64Ptr(memberID)
		cf.DeviceID = nullInt64Ptr(deviceID)
		cf.LinkedCashflowID = nullInt64Ptr(linkedID)
		if value.Valid {
			cf.Value = value.Decimal
		}
		ds.Cashflows[cf.InterviewID] = append(ds.Cashflows[cf.InterviewID], cf)
	}
	return rows.Err()
}

func (s *PostgresSource) loadCashflowTypes(ctx context.Context, ds *Dataset) error {
	query := `
		SELECT t.id, COALESCE(t.name, ''), t.category_id, COALESCE(t.direction, ''),
		       COALESCE(t.is_balance, false), COALESCE(t.is_cash_on_hand, false)
		FROM cashflow_types t
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to query cashflow types: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var t models.CashflowType
		var categoryID sql.NullInt64
		var direction string
		if err := rows.Scan(&t.ID, &t.Name, &categoryID, &direction, &t.IsBalance, &t.IsCashOnHand); err != nil {
			return fmt.Errorf("failed to scan cashflow type: %w", err)
		}
		t.CategoryID = nullInt64Ptr(categoryID)
		t.Direction = models.Direction(strings.ToLower(strings.TrimSpace(direction)))
		ds.CashflowTypes[t.ID] = t
	}
	return rows.Err()
}

func (s *PostgresSource) loadCashflowCategories(ctx context.Context, ds *Dataset) error {
	query := `
		SELECT cc.id, COALESCE(cc.name, '')
		FROM cashflow_categories cc
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to query cashflow categories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c models.CashflowCategory
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return fmt.Errorf("failed to scan cashflow category: %w", err)
		}
		ds.CashflowCategories[c.ID] = c
	}
	return rows.Err()
}

func (s *PostgresSource) loadEntityItems(ctx context.Context, householdIDs []int64, ds *Dataset) error {
	query := `
		SELECT e.id, e.household_id, e.member_id, e.kind, COALESCE(e.name, ''), COALESCE(e.subtype, ''),
		       e.open_date, e.close_date, COALESCE(e.dormant, false)
		FROM entity_items e
		WHERE e.household_id = ANY($1)
		  AND e.kind = ANY($2)
		ORDER BY e.household_id, e.open_date, e.id
	`
	kinds := []string{models.ItemHealthIssue, models.ItemFinancialDevice}
	rows, err := s.db.QueryContext(ctx, query, pq.Array(householdIDs), pq.Array(kinds))
	if err != nil {
		return fmt.Errorf("failed to query entity items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e models.EntityItem
		var memberID sql.NullInt64
		var closeDate sql.NullTime
		if err := rows.Scan(&e.ID, &e.HouseholdID, &memberID, &e.Kind, &e.Name, &e.Subtype,
			&e.OpenDate, &closeDate, &e.Dormant); err != nil {
			return fmt.Errorf("failed to scan entity item: %w", err)
		}
		e.MemberID = nullInt64Ptr(memberID)
		if closeDate.Valid {
			e.CloseDate = &closeDate.Time
		}
		ds.EntityItems[e.HouseholdID] = append(ds.EntityItems[e.HouseholdID], e)
	}
	return rows.Err()
}

func (s *PostgresSource) loadJournals(ctx context.Context, interviewIDs []int64, ds *Dataset) error {
	query := `
		SELECT j.id, j.interview_id, COALESCE(j.body, '')
		FROM journal_entries j
		WHERE j.interview_id = ANY($1)
		ORDER BY j.interview_id, j.id
	`
	rows, err := s.db.QueryContext(ctx, query, pq.Array(interviewIDs))
	if err != nil {
		return fmt.Errorf("failed to query journal entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var j models.JournalEntry
		if err := rows.Scan(&j.ID, &j.InterviewID, &j.Body); err != nil {
			return fmt.Errorf("failed to scan journal entry: %w", err)
		}
		ds.Journals[j.InterviewID] = append(ds.Journals[j.InterviewID], j)
	}
	return rows.Err()
}

func nullInt64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	i := v.Int64
	return &i
}
