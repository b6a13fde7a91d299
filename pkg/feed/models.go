package feed

import "time"

// ---- Upstream wire shapes ----
// Field names mirror the ingestion service's JSON. Records are immutable once
// received; a later poll carrying the same cluster_id supersedes, never
// mutates.

type TokenRef struct {
	Address string `json:"address"`
	Symbol  string `json:"symbol,omitempty"`
	Name    string `json:"name,omitempty"`
	Chain   string `json:"chain"`
}

type Metrics struct {
	UniqueSources int     `json:"unique_sources"`
	TotalMentions int     `json:"total_mentions"`
	UniqueWallets int     `json:"unique_wallets"`
	Velocity      float64 `json:"velocity"` // mentions per minute
}

type Sentiment struct {
	Bullish        int     `json:"bullish"`
	Bearish        int     `json:"bearish"`
	Neutral        int     `json:"neutral"`
	PercentBullish float64 `json:"percent_bullish"`
}

type Timing struct {
	FirstSeen  time.Time `json:"first_seen"`
	AgeMinutes float64   `json:"age_minutes"`
}

// TopSignal is the representative quoted message upstream picked for the
// cluster.
type TopSignal struct {
	Text   string `json:"text"`
	Source string `json:"source"`
}

// MentionRecord is one upstream unit of evidence: a scored token cluster with
// its representative message.
type MentionRecord struct {
	ClusterID string    `json:"cluster_id"`
	Token     TokenRef  `json:"token"`
	Score     float64   `json:"score"`
	Metrics   Metrics   `json:"metrics"`
	Sentiment Sentiment `json:"sentiment"`
	Timing    Timing    `json:"timing"`
	TopSignal TopSignal `json:"top_signal"`
	Sources   []string  `json:"sources"`
}

// ---- Composed view ----

// ClusterSummary is one renderable feed entry. Quote may be empty: clusters
// whose representative message failed the scan filter still appear, just
// without an excerpt.
type ClusterSummary struct {
	ClusterID     string    `json:"cluster_id"`
	DisplaySymbol string    `json:"display_symbol,omitempty"`
	DisplayName   string    `json:"display_name,omitempty"`
	Chain         string    `json:"chain"`
	Address       string    `json:"address"`
	Score         float64   `json:"score"`
	Metrics       Metrics   `json:"metrics"`
	Sentiment     Sentiment `json:"sentiment"`
	Timing        Timing    `json:"timing"`
	Quote         string    `json:"quote,omitempty"`
	QuoteSource   string    `json:"quote_source,omitempty"`
	Themes        []string  `json:"themes,omitempty"`
	Sources       []string  `json:"sources"`
}

// FeedView is the ordered, filtered cluster list ready for rendering.
// HiddenCount discloses how many records were dropped for chain/identity
// reasons so the UI never presents an unexplained shorter list.
type FeedView struct {
	Clusters            []ClusterSummary `json:"clusters"`
	HiddenCount         int              `json:"hidden_count"`
	ScannedMessageCount int              `json:"scanned_message_count"`
	LastUpdated         time.Time        `json:"last_updated"`
}

// SortKey is a client-requested ordering that overrides the upstream
// score ranking.
type SortKey string

const (
	SortUpstream SortKey = ""         // preserve upstream order
	SortRecency  SortKey = "recency"  // newest first
	SortVelocity SortKey = "velocity" // mentions/minute, descending
	SortMentions SortKey = "mentions" // total mentions, descending
)

func ParseSortKey(s string) SortKey {
	switch SortKey(s) {
	case SortRecency, SortVelocity, SortMentions:
		return SortKey(s)
	default:
		return SortUpstream
	}
}
