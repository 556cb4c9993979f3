package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/ignite/adpilot/internal/domain"
)

// RecommendationLogRepo implements tracker.Repository against PostgreSQL.
//
// The recommendation_logs table carries a partial unique index on
// (account_id, recommendation_id, campaign_name) WHERE status='pending',
// which gives Insert its skip-duplicate semantics.
type RecommendationLogRepo struct{ db *sql.DB }

// NewRecommendationLogRepo creates a Postgres-backed log repository.
func NewRecommendationLogRepo(db *sql.DB) *RecommendationLogRepo {
	return &RecommendationLogRepo{db: db}
}

// ExpirePending bulk-transitions stale pending rows. The status guard makes
// it race-safe: two concurrent sweeps cannot double-transition a row.
func (r *RecommendationLogRepo) ExpirePending(ctx context.Context, accountID string, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE recommendation_logs
		SET status='expired', expired_at=NOW()
		WHERE account_id=$1 AND status='pending' AND created_at < $2
	`, accountID, cutoff)
	if err != nil {
		return 0, fmt.Errorf("expire pending: %w", err)
	}
	return res.RowsAffected()
}

// Insert persists a batch of log rows. Conflicts with an existing pending
// row for the same rule and campaign are skipped, making re-runs idempotent.
func (r *RecommendationLogRepo) Insert(ctx context.Context, logs []domain.RecommendationLog) error {
	for _, l := range logs {
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO recommendation_logs
			(id, account_id, recommendation_id, recommendation_text, category,
			 priority, platform, campaign_name, confidence_score, confidence_level,
			 data_points, tags, status, created_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
			ON CONFLICT DO NOTHING
		`, l.ID, l.AccountID, l.RecommendationID, l.Recommendation, l.Category,
			l.Priority, l.Platform, l.CampaignName, l.ConfidenceScore, l.ConfidenceLevel,
			pq.Array(l.DataPoints), pq.Array(l.Tags), l.Status, l.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert log row: %w", err)
		}
	}
	return nil
}

// MarkFeedback transitions one pending row to implemented or dismissed.
// The WHERE status='pending' guard enforces the one-way lifecycle.
func (r *RecommendationLogRepo) MarkFeedback(ctx context.Context, logID string, status domain.LogStatus, reason string, at time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE recommendation_logs SET
			status=$2,
			dismiss_reason=CASE WHEN $2='dismissed' THEN $3 ELSE dismiss_reason END,
			implemented_at=CASE WHEN $2='implemented' THEN $4 ELSE implemented_at END,
			dismissed_at=CASE WHEN $2='dismissed' THEN $4 ELSE dismissed_at END
		WHERE id=$1 AND status='pending'
	`, logID, status, reason, at)
	if err != nil {
		return false, fmt.Errorf("mark feedback: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// SaveOutcome stores a measured outcome, overwriting any prior one. It
// returns the row's recommendation id so the tracker can credit successes
// back to learnings.
func (r *RecommendationLogRepo) SaveOutcome(ctx context.Context, logID string, o domain.Outcome, change float64, successful bool, at time.Time) (string, bool, error) {
	var recID string
	err := r.db.QueryRowContext(ctx, `
		UPDATE recommendation_logs SET
			roas_before=$2, roas_after=$3, roas_change=$4, was_successful=$5,
			outcome_notes=$6, outcome_at=$7
		WHERE id=$1
		RETURNING recommendation_id
	`, logID, o.RoasBefore, o.RoasAfter, change, successful, o.Notes, at).Scan(&recID)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("save outcome: %w", err)
	}
	return recID, true, nil
}

// ListSince returns the account's log rows created after the cutoff.
func (r *RecommendationLogRepo) ListSince(ctx context.Context, accountID string, since time.Time) ([]domain.RecommendationLog, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, account_id, recommendation_id, COALESCE(recommendation_text,''),
		       category, priority, platform,
		       campaign_name, confidence_score, confidence_level, data_points, tags,
		       status, COALESCE(dismiss_reason,''),
		       roas_before, roas_after, roas_change, was_successful,
		       COALESCE(outcome_notes,''),
		       created_at, implemented_at, dismissed_at, expired_at, outcome_at
		FROM recommendation_logs
		WHERE account_id=$1 AND created_at >= $2
		ORDER BY created_at DESC
	`, accountID, since)
	if err != nil {
		return nil, fmt.Errorf("list logs: %w", err)
	}
	defer rows.Close()

	var out []domain.RecommendationLog
	for rows.Next() {
		var l domain.RecommendationLog
		if err := rows.Scan(&l.ID, &l.AccountID, &l.RecommendationID, &l.Recommendation,
			&l.Category, &l.Priority, &l.Platform, &l.CampaignName, &l.ConfidenceScore,
			&l.ConfidenceLevel, pq.Array(&l.DataPoints), pq.Array(&l.Tags),
			&l.Status, &l.DismissReason,
			&l.RoasBefore, &l.RoasAfter, &l.RoasChange, &l.WasSuccessful,
			&l.OutcomeNotes,
			&l.CreatedAt, &l.ImplementedAt, &l.DismissedAt, &l.ExpiredAt, &l.OutcomeAt); err != nil {
			return nil, fmt.Errorf("scan log row: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
