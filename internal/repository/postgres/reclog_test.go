package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/adpilot/internal/domain"
)

func TestExpirePending(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	cutoff := time.Now().AddDate(0, 0, -7)
	mock.ExpectExec(regexp.QuoteMeta(`SET status='expired'`)).
		WithArgs("acct-1", cutoff).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := NewRecommendationLogRepo(db).ExpirePending(context.Background(), "acct-1", cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertSkipsDuplicates(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	logs := []domain.RecommendationLog{
		{ID: "row-1", AccountID: "acct-1", RecommendationID: "scale_winner", Status: domain.LogPending},
		{ID: "row-2", AccountID: "acct-1", RecommendationID: "low_ctr", Status: domain.LogPending},
	}
	// The second row conflicts with an existing pending duplicate: zero rows
	// affected, no error.
	mock.ExpectExec(regexp.QuoteMeta(`ON CONFLICT DO NOTHING`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`ON CONFLICT DO NOTHING`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = NewRecommendationLogRepo(db).Insert(context.Background(), logs)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkFeedbackOnlyPending(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	mock.ExpectExec(regexp.QuoteMeta(`WHERE id=$1 AND status='pending'`)).
		WithArgs("row-1", string(domain.LogImplemented), "", now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := NewRecommendationLogRepo(db).MarkFeedback(context.Background(), "row-1", domain.LogImplemented, "", now)
	require.NoError(t, err)
	assert.True(t, ok)

	// Already-transitioned row: the status guard filters it out.
	mock.ExpectExec(regexp.QuoteMeta(`WHERE id=$1 AND status='pending'`)).
		WithArgs("row-1", string(domain.LogDismissed), "too risky", now).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err = NewRecommendationLogRepo(db).MarkFeedback(context.Background(), "row-1", domain.LogDismissed, "too risky", now)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveOutcome(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`RETURNING recommendation_id`)).
		WithArgs("row-1", 2.0, 3.0, 50.0, true, "", now).
		WillReturnRows(sqlmock.NewRows([]string{"recommendation_id"}).AddRow("learning_7f3a"))

	recID, ok, err := NewRecommendationLogRepo(db).SaveOutcome(context.Background(), "row-1",
		domain.Outcome{RoasBefore: 2.0, RoasAfter: 3.0}, 50.0, true, now)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "learning_7f3a", recID)
}

func TestSaveOutcomeMissingRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`RETURNING recommendation_id`)).
		WithArgs("gone", 2.0, 3.0, 50.0, true, "", now).
		WillReturnRows(sqlmock.NewRows([]string{"recommendation_id"}))

	recID, ok, err := NewRecommendationLogRepo(db).SaveOutcome(context.Background(), "gone",
		domain.Outcome{RoasBefore: 2.0, RoasAfter: 3.0}, 50.0, true, now)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, recID)
}

func TestListSince(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	since := now.AddDate(0, 0, -30)
	change := 25.0
	successful := true

	rows := sqlmock.NewRows([]string{
		"id", "account_id", "recommendation_id", "recommendation_text",
		"category", "priority", "platform",
		"campaign_name", "confidence_score", "confidence_level", "data_points", "tags",
		"status", "dismiss_reason",
		"roas_before", "roas_after", "roas_change", "was_successful", "outcome_notes",
		"created_at", "implemented_at", "dismissed_at", "expired_at", "outcome_at",
	}).AddRow(
		"row-1", "acct-1", "scale_winner", "Raise the budget on Summer Sale",
		"budget", 1, "search",
		"Summer Sale", 85, "high", pq.Array([]string{"ROAS: 4.20x"}), pq.Array([]string{"scale"}),
		"implemented", "",
		2.0, 2.5, change, successful, "raised budget 25%",
		now, now, nil, nil, now,
	)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM recommendation_logs`)).
		WithArgs("acct-1", since).
		WillReturnRows(rows)

	out, err := NewRecommendationLogRepo(db).ListSince(context.Background(), "acct-1", since)
	require.NoError(t, err)
	require.Len(t, out, 1)

	l := out[0]
	assert.Equal(t, "scale_winner", l.RecommendationID)
	assert.Equal(t, "Raise the budget on Summer Sale", l.Recommendation)
	assert.Equal(t, domain.LogImplemented, l.Status)
	require.NotNil(t, l.RoasChange)
	assert.InDelta(t, 25.0, *l.RoasChange, 0.001)
	require.NotNil(t, l.WasSuccessful)
	assert.True(t, *l.WasSuccessful)
	assert.Nil(t, l.DismissedAt)
	assert.NotNil(t, l.ImplementedAt)
}
