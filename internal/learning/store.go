// Package learning manages account-scoped rules layered on top of the
// static knowledge base: user-authored rules and rules derived from
// recommendation outcomes, the latter gated behind an approval workflow.
package learning

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/ignite/adpilot/internal/domain"
)

// ErrNotFound is returned when a learning does not exist.
var ErrNotFound = errors.New("learning not found")

// minDeriveSample is the minimum number of successful implementations of a
// rule before an AI-derived learning is synthesized from it.
const minDeriveSample = 3

// Repository is the persistence boundary for learnings.
type Repository interface {
	Insert(ctx context.Context, l domain.Learning) error
	Update(ctx context.Context, l domain.Learning) error
	Delete(ctx context.Context, accountID, id string) error
	Get(ctx context.Context, accountID, id string) (domain.Learning, error)
	List(ctx context.Context, accountID string) ([]domain.Learning, error)
	ListActive(ctx context.Context, accountID string) ([]domain.Learning, error)
	ListPending(ctx context.Context, accountID string) ([]domain.Learning, error)
	Approve(ctx context.Context, accountID, id string) (bool, error)
	// IncrementApplied and IncrementSuccess must be single-statement
	// increments, not read-modify-write, so concurrent matches never lose
	// updates.
	IncrementApplied(ctx context.Context, id string) error
	IncrementSuccess(ctx context.Context, id string) error
	ExistsDerived(ctx context.Context, accountID string, category domain.Category, platform domain.Platform) (bool, error)
}

// OutcomeSource supplies the implemented-and-successful log rows learnings
// are derived from. Implemented by the tracker.
type OutcomeSource interface {
	SuccessfulImplemented(ctx context.Context, accountID string) ([]domain.RecommendationLog, error)
}

// Store is the learning rule store.
type Store struct {
	repo     Repository
	outcomes OutcomeSource
}

// NewStore creates a learning store.
func NewStore(repo Repository, outcomes OutcomeSource) *Store {
	return &Store{repo: repo, outcomes: outcomes}
}

// Create persists a new learning. User rules start active; AI-derived rules
// are never created active — they always start pending regardless of what
// the caller set.
func (s *Store) Create(ctx context.Context, l domain.Learning) (domain.Learning, error) {
	if l.AccountID == "" {
		return domain.Learning{}, errors.New("account id required")
	}
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.Source == "" {
		l.Source = domain.LearningSourceUser
	}
	now := time.Now().UTC()
	l.CreatedAt, l.UpdatedAt = now, now

	switch l.Source {
	case domain.LearningSourceAI:
		l.IsPending = true
		l.IsActive = false
	default:
		l.IsPending = false
		l.IsActive = true
	}

	if err := s.repo.Insert(ctx, l); err != nil {
		return domain.Learning{}, fmt.Errorf("insert learning: %w", err)
	}
	return l, nil
}

// Update modifies a learning's editable fields.
func (s *Store) Update(ctx context.Context, l domain.Learning) (domain.Learning, error) {
	existing, err := s.repo.Get(ctx, l.AccountID, l.ID)
	if err != nil {
		return domain.Learning{}, err
	}
	existing.Condition = l.Condition
	existing.Recommendation = l.Recommendation
	existing.Explanation = l.Explanation
	existing.Platform = l.Platform
	existing.Category = l.Category
	existing.IsActive = l.IsActive
	existing.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, existing); err != nil {
		return domain.Learning{}, fmt.Errorf("update learning: %w", err)
	}
	return existing, nil
}

// Delete removes a learning.
func (s *Store) Delete(ctx context.Context, accountID, id string) error {
	return s.repo.Delete(ctx, accountID, id)
}

// List returns all of an account's learnings.
func (s *Store) List(ctx context.Context, accountID string) ([]domain.Learning, error) {
	return s.repo.List(ctx, accountID)
}

// GetPending returns the account's learnings awaiting approval.
func (s *Store) GetPending(ctx context.Context, accountID string) ([]domain.Learning, error) {
	return s.repo.ListPending(ctx, accountID)
}

// ApprovePending activates a pending learning. Returns false when the
// learning does not exist or was not pending.
func (s *Store) ApprovePending(ctx context.Context, accountID, id string) (bool, error) {
	return s.repo.Approve(ctx, accountID, id)
}

// ListActive implements knowledge.LearningSource.
func (s *Store) ListActive(ctx context.Context, accountID string) ([]domain.Learning, error) {
	return s.repo.ListActive(ctx, accountID)
}

// IncrementApplied implements knowledge.LearningSource.
func (s *Store) IncrementApplied(ctx context.Context, id string) error {
	return s.repo.IncrementApplied(ctx, id)
}

// RecordSuccess bumps a learning's success counter after a positive outcome
// is attributed to it.
func (s *Store) RecordSuccess(ctx context.Context, id string) error {
	return s.repo.IncrementSuccess(ctx, id)
}

// DeriveFromOutcomes mines the account's implemented-and-successful
// recommendation history for repeated winning patterns and synthesizes
// pending learnings from them. Groups need at least minDeriveSample rows,
// and a category+platform that already has an AI-derived learning is
// skipped so the store does not fill with near-duplicates.
func (s *Store) DeriveFromOutcomes(ctx context.Context, accountID string) ([]domain.Learning, error) {
	rows, err := s.outcomes.SuccessfulImplemented(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("load outcomes: %w", err)
	}

	type groupKey struct {
		ruleID   string
		category domain.Category
		platform domain.Platform
	}
	groups := map[groupKey][]domain.RecommendationLog{}
	for _, r := range rows {
		k := groupKey{ruleID: r.RecommendationID, category: r.Category, platform: r.Platform}
		groups[k] = append(groups[k], r)
	}

	var created []domain.Learning
	for k, members := range groups {
		if len(members) < minDeriveSample {
			continue
		}
		exists, err := s.repo.ExistsDerived(ctx, accountID, k.category, k.platform)
		if err != nil {
			log.Printf("[learning] derived-existence check failed for account %s: %v", accountID, err)
			continue
		}
		if exists {
			continue
		}

		var roasSum float64
		var withChange int
		ids := make([]string, 0, len(members))
		for _, m := range members {
			ids = append(ids, m.ID)
			if m.RoasChange != nil {
				roasSum += *m.RoasChange
				withChange++
			}
		}
		avgChange := 0.0
		if withChange > 0 {
			avgChange = roasSum / float64(withChange)
		}

		// The recommendation text is quoted from a representative sample so
		// the pending learning reads like the recommendations it came from.
		sample := members[0]
		recText := sample.Recommendation
		if recText == "" {
			recText = fmt.Sprintf("Apply the %q playbook: %s recommendations of this shape keep working for this account",
				k.ruleID, k.category)
		}
		l := domain.Learning{
			ID:             uuid.NewString(),
			AccountID:      accountID,
			Platform:       k.platform,
			Category:       k.category,
			Condition:      fmt.Sprintf("campaigns matching the %s pattern on %s", k.ruleID, k.platform),
			Recommendation: recText,
			Explanation: fmt.Sprintf("Derived from %d implemented recommendations (e.g. on %q) averaging %.1f%% ROAS improvement.",
				len(members), sample.CampaignName, avgChange),
			Source:      domain.LearningSourceAI,
			IsPending:   true,
			IsActive:    false,
			DerivedFrom: ids,
			CreatedAt:   time.Now().UTC(),
			UpdatedAt:   time.Now().UTC(),
		}
		if err := s.repo.Insert(ctx, l); err != nil {
			log.Printf("[learning] derived insert failed for account %s: %v", accountID, err)
			continue
		}
		created = append(created, l)
	}
	if len(created) > 0 {
		log.Printf("[learning] derived %d pending learnings for account %s", len(created), accountID)
	}
	return created, nil
}
