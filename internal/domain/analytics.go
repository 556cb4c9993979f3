package domain

import "time"

// SiteEventType enumerates the site-analytics event payloads this core consumes.
type SiteEventType string

const (
	EventSearch   SiteEventType = "search"
	EventPurchase SiteEventType = "purchase"
)

// SiteEvent is a typed site-analytics event with session attribution.
// Search events carry the query and whether the session later converted;
// purchase events carry revenue.
type SiteEvent struct {
	ID        string        `json:"id"`
	AccountID string        `json:"account_id"`
	SessionID string        `json:"session_id"`
	Type      SiteEventType `json:"type"`

	Query     string  `json:"query,omitempty"`
	Converted bool    `json:"converted,omitempty"`
	Revenue   float64 `json:"revenue,omitempty"`

	// Acquisition attribution
	FirstTouchSource string `json:"first_touch_source,omitempty"`
	LastTouchSource  string `json:"last_touch_source,omitempty"`
	UTMSource        string `json:"utm_source,omitempty"`
	UTMMedium        string `json:"utm_medium,omitempty"`
	UTMCampaign      string `json:"utm_campaign,omitempty"`

	Device    string    `json:"device,omitempty"`
	Region    string    `json:"region,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// KeywordOverlap is one organic/paid keyword pair, pre-joined by the
// ingestion layer from search-console and paid-search data.
type KeywordOverlap struct {
	AccountID     string  `json:"account_id"`
	Keyword       string  `json:"keyword"`
	OrganicRank   float64 `json:"organic_rank"`
	OrganicCTR    float64 `json:"organic_ctr"`
	OrganicClicks int64   `json:"organic_clicks"`
	PaidCPC       float64 `json:"paid_cpc"`
	PaidClicks    int64   `json:"paid_clicks"`
	PaidSpend     float64 `json:"paid_spend"`
	PaidROAS      float64 `json:"paid_roas"`
}
