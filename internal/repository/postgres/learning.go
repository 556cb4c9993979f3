package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/ignite/adpilot/internal/domain"
	"github.com/ignite/adpilot/internal/learning"
)

// LearningRepo implements learning.Repository against PostgreSQL.
type LearningRepo struct{ db *sql.DB }

// NewLearningRepo creates a Postgres-backed learning repository.
func NewLearningRepo(db *sql.DB) *LearningRepo { return &LearningRepo{db: db} }

const learningColumns = `id, account_id, platform, category, condition, recommendation,
	COALESCE(explanation,''), source, is_active, is_pending, applied_count, success_count,
	derived_from, created_at, updated_at`

func scanLearning(row interface{ Scan(...interface{}) error }) (domain.Learning, error) {
	var l domain.Learning
	err := row.Scan(&l.ID, &l.AccountID, &l.Platform, &l.Category, &l.Condition,
		&l.Recommendation, &l.Explanation, &l.Source, &l.IsActive, &l.IsPending,
		&l.AppliedCount, &l.SuccessCount, pq.Array(&l.DerivedFrom), &l.CreatedAt, &l.UpdatedAt)
	return l, err
}

func (r *LearningRepo) Insert(ctx context.Context, l domain.Learning) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO learnings
		(id, account_id, platform, category, condition, recommendation, explanation,
		 source, is_active, is_pending, applied_count, success_count, derived_from,
		 created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
	`, l.ID, l.AccountID, l.Platform, l.Category, l.Condition, l.Recommendation,
		l.Explanation, l.Source, l.IsActive, l.IsPending, l.AppliedCount, l.SuccessCount,
		pq.Array(l.DerivedFrom), l.CreatedAt, l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert learning: %w", err)
	}
	return nil
}

func (r *LearningRepo) Update(ctx context.Context, l domain.Learning) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE learnings SET
			platform=$1, category=$2, condition=$3, recommendation=$4, explanation=$5,
			is_active=$6, updated_at=$7
		WHERE id=$8 AND account_id=$9
	`, l.Platform, l.Category, l.Condition, l.Recommendation, l.Explanation,
		l.IsActive, l.UpdatedAt, l.ID, l.AccountID)
	if err != nil {
		return fmt.Errorf("update learning: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return learning.ErrNotFound
	}
	return nil
}

func (r *LearningRepo) Delete(ctx context.Context, accountID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM learnings WHERE id=$1 AND account_id=$2`, id, accountID)
	if err != nil {
		return fmt.Errorf("delete learning: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return learning.ErrNotFound
	}
	return nil
}

func (r *LearningRepo) Get(ctx context.Context, accountID, id string) (domain.Learning, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+learningColumns+` FROM learnings WHERE id=$1 AND account_id=$2`, id, accountID)
	l, err := scanLearning(row)
	if err == sql.ErrNoRows {
		return domain.Learning{}, learning.ErrNotFound
	}
	if err != nil {
		return domain.Learning{}, fmt.Errorf("get learning: %w", err)
	}
	return l, nil
}

func (r *LearningRepo) List(ctx context.Context, accountID string) ([]domain.Learning, error) {
	return r.list(ctx, `SELECT `+learningColumns+` FROM learnings
		WHERE account_id=$1 ORDER BY created_at DESC`, accountID)
}

func (r *LearningRepo) ListActive(ctx context.Context, accountID string) ([]domain.Learning, error) {
	return r.list(ctx, `SELECT `+learningColumns+` FROM learnings
		WHERE account_id=$1 AND is_active AND NOT is_pending ORDER BY created_at DESC`, accountID)
}

func (r *LearningRepo) ListPending(ctx context.Context, accountID string) ([]domain.Learning, error) {
	return r.list(ctx, `SELECT `+learningColumns+` FROM learnings
		WHERE account_id=$1 AND is_pending ORDER BY created_at DESC`, accountID)
}

func (r *LearningRepo) list(ctx context.Context, query string, args ...interface{}) ([]domain.Learning, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list learnings: %w", err)
	}
	defer rows.Close()

	var out []domain.Learning
	for rows.Next() {
		l, err := scanLearning(rows)
		if err != nil {
			return nil, fmt.Errorf("scan learning: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// Approve flips a pending learning to active. Conditional on is_pending so
// a double approval is a no-op reported as false.
func (r *LearningRepo) Approve(ctx context.Context, accountID, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE learnings SET is_pending=false, is_active=true, updated_at=NOW()
		WHERE id=$1 AND account_id=$2 AND is_pending
	`, id, accountID)
	if err != nil {
		return false, fmt.Errorf("approve learning: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// IncrementApplied bumps the applied counter in a single statement so
// concurrent matching calls never lose updates.
func (r *LearningRepo) IncrementApplied(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE learnings SET applied_count = applied_count + 1, updated_at=NOW() WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("increment applied: %w", err)
	}
	return nil
}

// IncrementSuccess bumps the success counter in a single statement.
func (r *LearningRepo) IncrementSuccess(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE learnings SET success_count = success_count + 1, updated_at=NOW() WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("increment success: %w", err)
	}
	return nil
}

func (r *LearningRepo) ExistsDerived(ctx context.Context, accountID string, category domain.Category, platform domain.Platform) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM learnings
			WHERE account_id=$1 AND category=$2 AND platform=$3 AND source='ai_derived'
		)
	`, accountID, category, platform).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("derived exists: %w", err)
	}
	return exists, nil
}
