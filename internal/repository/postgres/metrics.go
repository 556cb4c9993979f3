package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/ignite/adpilot/internal/domain"
)

// MetricsRepo reads the already-shaped campaign, commerce, and analytics
// data the ingestion layer maintains. This core never writes these tables.
type MetricsRepo struct{ db *sql.DB }

// NewMetricsRepo creates a read-only repository over the ingested data.
func NewMetricsRepo(db *sql.DB) *MetricsRepo { return &MetricsRepo{db: db} }

// Snapshots returns campaign metric snapshots overlapping the window.
// Platform "both" (or empty) matches every channel.
func (r *MetricsRepo) Snapshots(ctx context.Context, accountID string, platform domain.Platform, since, until time.Time) ([]domain.CampaignSnapshot, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT account_id, platform, campaign_id, name, spend, revenue,
		       impressions, clicks, conversions,
		       COALESCE(days_since_launch,0), COALESCE(frequency,0),
		       COALESCE(in_learning_phase,false), window_start, window_end
		FROM campaign_snapshots
		WHERE account_id=$1
		  AND ($2 IN ('both','') OR platform=$2)
		  AND window_end > $3 AND window_start < $4
		ORDER BY name
	`, accountID, platform, since, until)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var out []domain.CampaignSnapshot
	for rows.Next() {
		var s domain.CampaignSnapshot
		if err := rows.Scan(&s.AccountID, &s.Platform, &s.CampaignID, &s.Name,
			&s.Spend, &s.Revenue, &s.Impressions, &s.Clicks, &s.Conversions,
			&s.DaysSinceLaunch, &s.Frequency, &s.InLearningPhase,
			&s.WindowStart, &s.WindowEnd); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Trends returns per-campaign trend directions computed upstream.
func (r *MetricsRepo) Trends(ctx context.Context, accountID string, platform domain.Platform) (map[string]domain.TrendSet, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT campaign_name, roas_trend, ctr_trend
		FROM campaign_trends
		WHERE account_id=$1 AND ($2 IN ('both','') OR platform=$2)
	`, accountID, platform)
	if err != nil {
		return nil, fmt.Errorf("query trends: %w", err)
	}
	defer rows.Close()

	out := map[string]domain.TrendSet{}
	for rows.Next() {
		var name string
		var t domain.TrendSet
		if err := rows.Scan(&name, &t.ROAS, &t.CTR); err != nil {
			return nil, fmt.Errorf("scan trend: %w", err)
		}
		out[name] = t
	}
	return out, rows.Err()
}

// Orders returns orders with their line items since the cutoff.
func (r *MetricsRepo) Orders(ctx context.Context, accountID string, since time.Time) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, account_id, customer_email, total, created_at
		FROM orders
		WHERE account_id=$1 AND created_at >= $2
		ORDER BY created_at
	`, accountID, since)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	index := map[string]int{}
	var ids []string
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.AccountID, &o.CustomerEmail, &o.Total, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		index[o.ID] = len(orders)
		ids = append(ids, o.ID)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, nil
	}

	lineRows, err := r.db.QueryContext(ctx, `
		SELECT order_id, product_id, product_name, quantity, price
		FROM order_lines
		WHERE order_id = ANY($1)
	`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("query order lines: %w", err)
	}
	defer lineRows.Close()

	for lineRows.Next() {
		var orderID string
		var line domain.OrderLine
		if err := lineRows.Scan(&orderID, &line.ProductID, &line.ProductName,
			&line.Quantity, &line.Price); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		if i, ok := index[orderID]; ok {
			orders[i].Lines = append(orders[i].Lines, line)
		}
	}
	return orders, lineRows.Err()
}

// Customers returns the account's customers with lifetime value fields.
func (r *MetricsRepo) Customers(ctx context.Context, accountID string) ([]domain.Customer, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT email, account_id, lifetime_spend, order_count,
		       COALESCE(first_source,''), first_seen_at
		FROM customers
		WHERE account_id=$1
	`, accountID)
	if err != nil {
		return nil, fmt.Errorf("query customers: %w", err)
	}
	defer rows.Close()

	var out []domain.Customer
	for rows.Next() {
		var c domain.Customer
		if err := rows.Scan(&c.Email, &c.AccountID, &c.LifetimeSpend,
			&c.OrderCount, &c.FirstSource, &c.FirstSeenAt); err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Events returns typed site-analytics events since the cutoff.
func (r *MetricsRepo) Events(ctx context.Context, accountID string, types []domain.SiteEventType, since time.Time) ([]domain.SiteEvent, error) {
	typeStrs := make([]string, len(types))
	for i, t := range types {
		typeStrs[i] = string(t)
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, account_id, session_id, type,
		       COALESCE(query,''), COALESCE(converted,false), COALESCE(revenue,0),
		       COALESCE(first_touch_source,''), COALESCE(last_touch_source,''),
		       COALESCE(utm_source,''), COALESCE(utm_medium,''), COALESCE(utm_campaign,''),
		       COALESCE(device,''), COALESCE(region,''), created_at
		FROM site_events
		WHERE account_id=$1 AND type = ANY($2) AND created_at >= $3
		ORDER BY created_at
	`, accountID, pq.Array(typeStrs), since)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var out []domain.SiteEvent
	for rows.Next() {
		var e domain.SiteEvent
		if err := rows.Scan(&e.ID, &e.AccountID, &e.SessionID, &e.Type,
			&e.Query, &e.Converted, &e.Revenue,
			&e.FirstTouchSource, &e.LastTouchSource,
			&e.UTMSource, &e.UTMMedium, &e.UTMCampaign,
			&e.Device, &e.Region, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// KeywordOverlaps returns the pre-joined organic/paid keyword rows.
func (r *MetricsRepo) KeywordOverlaps(ctx context.Context, accountID string) ([]domain.KeywordOverlap, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT account_id, keyword, organic_rank, organic_ctr, organic_clicks,
		       paid_cpc, paid_clicks, paid_spend, paid_roas
		FROM keyword_overlaps
		WHERE account_id=$1
	`, accountID)
	if err != nil {
		return nil, fmt.Errorf("query keyword overlaps: %w", err)
	}
	defer rows.Close()

	var out []domain.KeywordOverlap
	for rows.Next() {
		var k domain.KeywordOverlap
		if err := rows.Scan(&k.AccountID, &k.Keyword, &k.OrganicRank, &k.OrganicCTR,
			&k.OrganicClicks, &k.PaidCPC, &k.PaidClicks, &k.PaidSpend, &k.PaidROAS); err != nil {
			return nil, fmt.Errorf("scan keyword overlap: %w", err)
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

// ActiveAccountIDs lists accounts with snapshot data in the last window,
// used by the derive worker to know which accounts to mine.
func (r *MetricsRepo) ActiveAccountIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT account_id FROM campaign_snapshots
		WHERE window_end > NOW() - INTERVAL '35 days'
		ORDER BY account_id
	`)
	if err != nil {
		return nil, fmt.Errorf("query active accounts: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan account id: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
