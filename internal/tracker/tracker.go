// Package tracker keeps the append-only log of emitted recommendations and
// the user feedback and measured outcomes recorded against them. Its stats
// double as the training signal for the learning store.
package tracker

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ignite/adpilot/internal/domain"
)

// pendingExpiryDays is how long a pending log row stays actionable before
// the next logging pass sweeps it to expired.
const pendingExpiryDays = 7

// minRuleSample is the minimum implemented count before a rule shows up in
// top-performer stats.
const minRuleSample = 3

// Repository is the persistence boundary for recommendation log rows.
type Repository interface {
	// ExpirePending bulk-transitions the account's pending rows older than
	// cutoff to expired. Conditional on status, so it is race-safe under
	// concurrent runs.
	ExpirePending(ctx context.Context, accountID string, cutoff time.Time) (int64, error)
	// Insert persists new rows with skip-duplicate semantics.
	Insert(ctx context.Context, logs []domain.RecommendationLog) error
	// MarkFeedback transitions one pending row; returns false when the row
	// was missing or already transitioned.
	MarkFeedback(ctx context.Context, logID string, status domain.LogStatus, reason string, at time.Time) (bool, error)
	// SaveOutcome stores a measured outcome, overwriting any prior one. It
	// returns the row's recommendation id so successes can be credited back
	// to the learning that produced the recommendation.
	SaveOutcome(ctx context.Context, logID string, o domain.Outcome, change float64, successful bool, at time.Time) (string, bool, error)
	ListSince(ctx context.Context, accountID string, since time.Time) ([]domain.RecommendationLog, error)
}

// SuccessRecorder receives credit when a successful outcome lands on a
// recommendation that came from a learning. Implemented by the learning
// store.
type SuccessRecorder interface {
	RecordSuccess(ctx context.Context, learningID string) error
}

// Tracker implements the recommendation lifecycle log.
type Tracker struct {
	repo      Repository
	successes SuccessRecorder
}

// New creates a tracker over the given repository.
func New(repo Repository) *Tracker {
	return &Tracker{repo: repo}
}

// SetSuccessRecorder wires the learning store in after construction. The
// store consumes this tracker's outcomes when deriving, so the hookup has
// to happen once both sides exist.
func (t *Tracker) SetSuccessRecorder(sr SuccessRecorder) {
	t.successes = sr
}

// LogRecommendations expires stale pending rows for the account and then
// inserts the new batch. Persistence failures are logged, never raised, so
// a logging problem cannot break the recommendation response.
func (t *Tracker) LogRecommendations(ctx context.Context, accountID string, recs []domain.Recommendation) {
	cutoff := time.Now().AddDate(0, 0, -pendingExpiryDays)
	if n, err := t.repo.ExpirePending(ctx, accountID, cutoff); err != nil {
		log.Printf("[tracker] expiry sweep failed for account %s: %v", accountID, err)
	} else if n > 0 {
		log.Printf("[tracker] expired %d stale pending recommendations for account %s", n, accountID)
	}

	if len(recs) == 0 {
		return
	}
	now := time.Now().UTC()
	rows := make([]domain.RecommendationLog, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, domain.RecommendationLog{
			ID:               uuid.NewString(),
			AccountID:        accountID,
			RecommendationID: domain.BaseRuleID(r.ID),
			Recommendation:   r.Recommendation,
			Category:         r.Category,
			Priority:         r.Priority,
			Platform:         r.Platform,
			CampaignName:     r.CampaignName,
			ConfidenceScore:  r.ConfidenceScore,
			ConfidenceLevel:  r.ConfidenceLevel,
			DataPoints:       r.DataPoints,
			Tags:             r.Tags,
			Status:           domain.LogPending,
			CreatedAt:        now,
		})
	}
	if err := t.repo.Insert(ctx, rows); err != nil {
		log.Printf("[tracker] insert failed for account %s (%d rows): %v", accountID, len(rows), err)
	}
}

// RecordFeedback applies a one-way pending -> implemented|dismissed
// transition. Returns false (never an error to the caller) when the status
// is invalid, the row is gone, or persistence fails.
func (t *Tracker) RecordFeedback(ctx context.Context, logID string, fb domain.Feedback) bool {
	if fb.Status != domain.LogImplemented && fb.Status != domain.LogDismissed {
		log.Printf("[tracker] rejected feedback status %q for log %s", fb.Status, logID)
		return false
	}
	ok, err := t.repo.MarkFeedback(ctx, logID, fb.Status, fb.DismissReason, time.Now().UTC())
	if err != nil {
		log.Printf("[tracker] feedback write failed for log %s: %v", logID, err)
		return false
	}
	return ok
}

// RecordOutcome stores the measured ROAS movement for one log row. The
// change and success flag are derived here, never supplied by the caller;
// recording twice simply overwrites the prior outcome. A successful outcome
// on a learning-sourced recommendation also bumps that learning's success
// counter, which is what moves its confidence tier over time.
func (t *Tracker) RecordOutcome(ctx context.Context, logID string, o domain.Outcome) bool {
	recID, ok, err := t.repo.SaveOutcome(ctx, logID, o, o.Change(), o.Successful(), time.Now().UTC())
	if err != nil {
		log.Printf("[tracker] outcome write failed for log %s: %v", logID, err)
		return false
	}
	if ok && o.Successful() && t.successes != nil {
		if learningID, found := strings.CutPrefix(recID, "learning_"); found {
			if err := t.successes.RecordSuccess(ctx, learningID); err != nil {
				log.Printf("[tracker] success credit failed for learning %s: %v", learningID, err)
			}
		}
	}
	return ok
}

// SuccessfulImplemented returns the implemented rows with a recorded
// positive outcome, the raw material for deriving learnings.
func (t *Tracker) SuccessfulImplemented(ctx context.Context, accountID string) ([]domain.RecommendationLog, error) {
	rows, err := t.repo.ListSince(ctx, accountID, time.Now().AddDate(0, 0, -90))
	if err != nil {
		return nil, fmt.Errorf("list logs: %w", err)
	}
	var out []domain.RecommendationLog
	for _, r := range rows {
		if r.Status == domain.LogImplemented && r.WasSuccessful != nil && *r.WasSuccessful {
			out = append(out, r)
		}
	}
	return out, nil
}

// GetStats aggregates the account's log rows over the window.
func (t *Tracker) GetStats(ctx context.Context, accountID string, days int) (domain.RecommendationStats, error) {
	if days <= 0 {
		days = 30
	}
	rows, err := t.repo.ListSince(ctx, accountID, time.Now().AddDate(0, 0, -days))
	if err != nil {
		return domain.RecommendationStats{}, fmt.Errorf("list logs: %w", err)
	}

	stats := domain.RecommendationStats{
		AccountID:       accountID,
		WindowDays:      days,
		Total:           len(rows),
		ByStatus:        map[domain.LogStatus]int{},
		ByCategory:      map[domain.Category]int{},
		CategorySuccess: map[domain.Category]float64{},
	}

	type catCounts struct{ outcomes, successes int }
	byCat := map[domain.Category]*catCounts{}
	byRule := map[string]*domain.RulePerformance{}
	ruleOutcomes := map[string]int{}
	var withOutcome, successes int
	var roasSum float64

	for _, r := range rows {
		stats.ByStatus[r.Status]++
		stats.ByCategory[r.Category]++
		if r.Status != domain.LogImplemented {
			continue
		}

		rp := byRule[r.RecommendationID]
		if rp == nil {
			rp = &domain.RulePerformance{RecommendationID: r.RecommendationID}
			byRule[r.RecommendationID] = rp
		}
		rp.Implemented++

		if r.WasSuccessful == nil {
			continue
		}
		withOutcome++
		cc := byCat[r.Category]
		if cc == nil {
			cc = &catCounts{}
			byCat[r.Category] = cc
		}
		cc.outcomes++
		if r.RoasChange != nil {
			roasSum += *r.RoasChange
			rp.AvgRoasChange += *r.RoasChange
			ruleOutcomes[r.RecommendationID]++
		}
		if *r.WasSuccessful {
			successes++
			cc.successes++
			rp.Successful++
		}
	}

	if withOutcome > 0 {
		stats.SuccessRate = float64(successes) / float64(withOutcome)
		stats.AvgRoasImprovement = roasSum / float64(withOutcome)
	}
	for cat, cc := range byCat {
		if cc.outcomes > 0 {
			stats.CategorySuccess[cat] = float64(cc.successes) / float64(cc.outcomes)
		}
	}

	for id, rp := range byRule {
		if rp.Implemented < minRuleSample {
			continue
		}
		rp.SuccessRate = float64(rp.Successful) / float64(rp.Implemented)
		// Only outcome-bearing rows contribute to the sum, so rows still
		// waiting on an outcome must not dilute the average.
		if n := ruleOutcomes[id]; n > 0 {
			rp.AvgRoasChange /= float64(n)
		}
		stats.TopRules = append(stats.TopRules, *rp)
	}
	sort.Slice(stats.TopRules, func(i, j int) bool {
		if stats.TopRules[i].SuccessRate != stats.TopRules[j].SuccessRate {
			return stats.TopRules[i].SuccessRate > stats.TopRules[j].SuccessRate
		}
		return stats.TopRules[i].RecommendationID < stats.TopRules[j].RecommendationID
	})
	return stats, nil
}
