package analyzer

import (
	"context"
	"strings"
	"time"

	"github.com/ignite/adpilot/internal/domain"
)

// DefaultLookbackDays is the analysis window shared by the analyzers.
const DefaultLookbackDays = 30

// DataSource supplies the historical account data the analyzers consume.
// All of it is already shaped by the ingestion layer; fetch timeouts are the
// caller's responsibility via ctx. A failed fetch is treated like any other
// analyzer error: logged, isolated, empty result.
type DataSource interface {
	Snapshots(ctx context.Context, accountID string, platform domain.Platform, since, until time.Time) ([]domain.CampaignSnapshot, error)
	Orders(ctx context.Context, accountID string, since time.Time) ([]domain.Order, error)
	Customers(ctx context.Context, accountID string) ([]domain.Customer, error)
	Events(ctx context.Context, accountID string, types []domain.SiteEventType, since time.Time) ([]domain.SiteEvent, error)
	KeywordOverlaps(ctx context.Context, accountID string) ([]domain.KeywordOverlap, error)
}

func lookback(days int) time.Time {
	return time.Now().AddDate(0, 0, -days)
}

// slug normalizes a free-form name into an id-safe suffix.
func slug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_' || r == '/':
			b.WriteByte('-')
		}
	}
	out := strings.Trim(b.String(), "-")
	if out == "" {
		return "unknown"
	}
	return out
}
