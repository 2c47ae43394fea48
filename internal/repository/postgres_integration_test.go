//go:build integration
// +build integration

package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"go.uber.org/zap"
)

const testSchema = `
CREATE TABLE core_users (id BIGINT PRIMARY KEY, username TEXT);
CREATE TABLE households (id BIGINT PRIMARY KEY, name TEXT, project_id BIGINT, status INT, "out" INT);
CREATE TABLE interviews (id BIGINT PRIMARY KEY, household_id BIGINT, interview_start_date TIMESTAMP,
	interviewer_id BIGINT, status INT);
CREATE TABLE members (id BIGINT PRIMARY KEY, household_id BIGINT, name TEXT, birthdate DATE, status INT);
CREATE TABLE member_status_history (member_id BIGINT, event_type TEXT, effective_date DATE);
CREATE TABLE questions (id BIGINT PRIMARY KEY, value_type TEXT, category_id BIGINT, active BOOLEAN);
CREATE TABLE answers (id BIGINT PRIMARY KEY, interview_id BIGINT, question_id BIGINT, entity_type TEXT,
	entity_id BIGINT, history_id BIGINT);
CREATE TABLE values_tinyint (history_id BIGINT, value SMALLINT);
CREATE TABLE values_int (history_id BIGINT, value BIGINT);
CREATE TABLE values_decimal (history_id BIGINT, value NUMERIC(14,2));
CREATE TABLE values_varchar (history_id BIGINT, value VARCHAR(255));
CREATE TABLE values_text (history_id BIGINT, value TEXT);
CREATE TABLE cashflows (id BIGINT PRIMARY KEY, interview_id BIGINT, household_id BIGINT, member_id BIGINT,
	financial_device_id BIGINT, cashflow_type_id BIGINT, payment_mode TEXT, value NUMERIC(14,2),
	transaction_date DATE, linked_cashflow_id BIGINT, status INT);
CREATE TABLE cashflow_types (id BIGINT PRIMARY KEY, name TEXT, category_id BIGINT, direction TEXT,
	is_balance BOOLEAN, is_cash_on_hand BOOLEAN);
CREATE TABLE cashflow_categories (id BIGINT PRIMARY KEY, name TEXT);
CREATE TABLE entity_items (id BIGINT PRIMARY KEY, household_id BIGINT, member_id BIGINT, kind TEXT, name TEXT,
	subtype TEXT, open_date DATE, close_date DATE, dormant BOOLEAN);
CREATE TABLE journal_entries (id BIGINT PRIMARY KEY, interview_id BIGINT, body TEXT);
`

const testData = `
INSERT INTO core_users VALUES (5, 'alice');
INSERT INTO households VALUES (1, 'KIB014', 129, 1, 0), (2, 'KIB-TEST', 129, 1, 0), (3, 'VIH001', 129, 1, 1);
INSERT INTO interviews VALUES
	(10, 1, '2025-06-19 09:00', 5, 1),
	(11, 1, '2025-07-03 09:00', 5, 1),
	(12, 1, '2025-07-05 09:00', NULL, 0),
	(20, 2, '2025-07-03 09:00', 5, 1);
INSERT INTO members VALUES (7, 1, 'Wanjiru', '1980-02-01', 1);
INSERT INTO member_status_history VALUES (7, 'joined', '2024-01-01');
INSERT INTO questions VALUES (590727, 'tinyint', NULL, true), (592000, 'decimal', 4411, true);
INSERT INTO answers VALUES (100, 11, 590727, 'member', 7, 900), (101, 11, 592000, NULL, NULL, 901);
INSERT INTO values_tinyint VALUES (900, 1);
INSERT INTO values_decimal VALUES (901, 12.50);
INSERT INTO cashflow_categories VALUES (2, 'Health');
INSERT INTO cashflow_types VALUES (3, 'Medicine', 2, 'out', false, false);
INSERT INTO cashflows VALUES
	(400, 10, 1, 7, NULL, 3, '1', 40, '2025-06-19', NULL, 1),
	(500, 11, 1, 7, NULL, 3, '2', 150, '2025-07-02', NULL, 1),
	(501, 11, 1, 7, NULL, 3, '2', 99, '2025-07-02', NULL, 0);
INSERT INTO entity_items VALUES (60, 1, 7, 'health_issue', 'Malaria', NULL, '2025-06-01', NULL, false);
INSERT INTO journal_entries VALUES (1, 11, 'Visited the household.');
`

func setupPostgres(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("fd_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		tcpostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.ExecContext(ctx, testSchema)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, testData)
	require.NoError(t, err)
	return db
}

func TestPostgresSource_Integration(t *testing.T) {
	db := setupPostgres(t)
	src := NewPostgresSource(db, zap.NewNop())

	ds, err := src.Load(context.Background(), Query{
		ProjectID:    129,
		Start:        time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		End:          time.Date(2025, 7, 14, 0, 0, 0, 0, time.UTC),
		HistoryStart: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		TestPatterns: []string{"test"},
	})
	require.NoError(t, err)

	// test and out-of-sample households are skipped
	assert.Len(t, ds.Households, 1)
	require.Len(t, ds.Interviews, 1)
	assert.Equal(t, "alice", ds.Interviews[0].RAName)

	prev := ds.Previous(ds.Interviews[0])
	require.NotNil(t, prev)
	assert.Equal(t, int64(10), prev.ID)

	assert.Len(t, ds.Cashflows[11], 1, "inactive cashflows are skipped")
	assert.Len(t, ds.Cashflows[10], 1, "previous interview cashflows are loaded")
	assert.True(t, ds.Values.Bool[900])
	assert.Equal(t, "12.5", ds.Values.Decimal[901].String())
	assert.Equal(t, "", ds.Answers[1].EntityType)
	assert.Len(t, ds.EntityItems[1], 1)
	assert.Len(t, ds.Journals[11], 1)
}
