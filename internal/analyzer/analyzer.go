package analyzer

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ignite/adpilot/internal/domain"
)

// Analyzer is one independent, stateless analysis unit. Implementations
// must treat an empty or absent dataset as a normal, empty result rather
// than an error.
type Analyzer interface {
	Name() string
	Analyze(ctx context.Context, accountID string) ([]domain.Recommendation, error)
}

// Result is one analyzer's stamped output. A failed analyzer still yields
// a Result, with HasData=false and no suggestions.
type Result struct {
	Source      string                  `json:"source"`
	AccountID   string                  `json:"account_id"`
	AnalyzedAt  time.Time               `json:"analyzed_at"`
	DurationMS  int64                   `json:"duration_ms"`
	HasData     bool                    `json:"has_data"`
	Suggestions []domain.Recommendation `json:"suggestions"`
}

// Runner fans out all registered analyzers and collects stamped results.
// It enforces failure isolation: an analyzer error or panic is logged and
// becomes an empty result, never aborting the others. There are no retries.
type Runner struct {
	analyzers []Analyzer
}

// NewRunner creates a runner over the given analyzers.
func NewRunner(analyzers ...Analyzer) *Runner {
	return &Runner{analyzers: analyzers}
}

// Run executes every analyzer concurrently and returns results in
// registration order. Each analyzer receives the caller's context, so
// cancelling it abandons in-flight work.
func (r *Runner) Run(ctx context.Context, accountID string) []Result {
	results := make([]Result, len(r.analyzers))
	var wg sync.WaitGroup
	for i, a := range r.analyzers {
		wg.Add(1)
		go func(i int, a Analyzer) {
			defer wg.Done()
			results[i] = runOne(ctx, a, accountID)
		}(i, a)
	}
	wg.Wait()
	return results
}

// runOne wraps a single analyzer call with timing, metadata stamping, and
// panic/error containment.
func runOne(ctx context.Context, a Analyzer, accountID string) Result {
	start := time.Now()
	res := Result{
		Source:    a.Name(),
		AccountID: accountID,
	}

	suggestions, err := callSafely(ctx, a, accountID)
	res.AnalyzedAt = time.Now().UTC()
	res.DurationMS = time.Since(start).Milliseconds()
	if err != nil {
		log.Printf("[analyzer] %s failed for account %s after %dms: %v",
			a.Name(), accountID, res.DurationMS, err)
		return res
	}
	res.Suggestions = suggestions
	res.HasData = len(suggestions) > 0
	return res
}

func callSafely(ctx context.Context, a Analyzer, accountID string) (out []domain.Recommendation, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			out, err = nil, panicError{rec}
		}
	}()
	return a.Analyze(ctx, accountID)
}

type panicError struct{ v interface{} }

func (p panicError) Error() string { return fmt.Sprintf("analyzer panic: %v", p.v) }

// Merge flattens a batch of results into one suggestion list.
func Merge(results []Result) []domain.Recommendation {
	var all []domain.Recommendation
	for _, r := range results {
		all = append(all, r.Suggestions...)
	}
	return all
}
