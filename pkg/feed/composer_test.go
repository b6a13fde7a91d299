package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(clusterID, chain, symbol, name, text string) MentionRecord {
	return MentionRecord{
		ClusterID: clusterID,
		Token: TokenRef{
			Address: "8sLbNZoA1cfnvMJLPfp98ZLAnFSYCFApfJKMbiXN",
			Symbol:  symbol,
			Name:    name,
			Chain:   chain,
		},
		TopSignal: TopSignal{Text: text, Source: "alpha chat"},
	}
}

func TestComposeChainGate(t *testing.T) {
	c := NewComposer()
	view := c.Compose([]MentionRecord{
		record("c1", "solana", "PEPE", "", "the chart looks great, adding more on this dip"),
		record("c2", "ethereum", "UNI", "", "the chart looks great, adding more on this dip"),
		record("c3", "Base", "TOSHI", "", "the chart looks great, adding more on this dip"),
	})

	require.Len(t, view.Clusters, 2)
	assert.Equal(t, "c1", view.Clusters[0].ClusterID)
	assert.Equal(t, "c3", view.Clusters[1].ClusterID)
	assert.Equal(t, 1, view.HiddenCount)
}

func TestComposeIdentityGate(t *testing.T) {
	c := NewComposer()
	view := c.Compose([]MentionRecord{
		record("c1", "solana", "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", "0xdeadbeefdeadbeefdeadbeefdeadbeefdeadbeef", "hello there everyone today"),
		record("c2", "solana", "0xAbC123...", "PepeCoin", "hello there everyone today"),
	})

	// c1 has no human-readable identity and is dropped outright, never shown
	// as a bare address. c2 falls back to its name.
	require.Len(t, view.Clusters, 1)
	assert.Equal(t, "c2", view.Clusters[0].ClusterID)
	assert.Equal(t, "PepeCoin", view.Clusters[0].DisplayName)
	assert.Empty(t, view.Clusters[0].DisplaySymbol)
	assert.Equal(t, 1, view.HiddenCount)
}

func TestComposeQuoteGating(t *testing.T) {
	c := NewComposer()
	view := c.Compose([]MentionRecord{
		record("c1", "solana", "PEPE", "", "🔥 New gem! pump.fun/abc123 buy now!!"),
		record("c2", "solana", "WIF", "", "community is really strong on this one, holding long term"),
		record("c3", "solana", "BONK", "", ""),
	})

	require.Len(t, view.Clusters, 3, "message-quality failures never drop a cluster")

	assert.Empty(t, view.Clusters[0].Quote, "scanner message must not be quoted")
	assert.Equal(t, 1, view.ScannedMessageCount)

	assert.Equal(t, "community is really strong on this one, holding long term", view.Clusters[1].Quote)
	assert.Equal(t, "alpha chat", view.Clusters[1].QuoteSource)

	assert.Empty(t, view.Clusters[2].Quote)
	assert.Zero(t, view.HiddenCount)
}

func TestComposeThemes(t *testing.T) {
	c := NewComposer()
	view := c.Compose([]MentionRecord{
		record("c1", "solana", "PEPE", "", "price target 10x, buying this dip hard"),
	})

	require.Len(t, view.Clusters, 1)
	assert.Equal(t, []string{"Price Target", "Entry Signal"}, view.Clusters[0].Themes)
}

func TestComposePreservesUpstreamOrder(t *testing.T) {
	c := NewComposer()
	records := []MentionRecord{
		record("c1", "solana", "AAA", "", ""),
		record("c2", "base", "BBB", "", ""),
		record("c3", "bsc", "CCC", "", ""),
	}
	records[0].Score = 10
	records[1].Score = 90
	records[2].Score = 50

	view := c.Compose(records)
	require.Len(t, view.Clusters, 3)
	assert.Equal(t, "c1", view.Clusters[0].ClusterID, "upstream order is authoritative")
	assert.Equal(t, "c2", view.Clusters[1].ClusterID)
	assert.Equal(t, "c3", view.Clusters[2].ClusterID)
	assert.False(t, view.LastUpdated.IsZero())
}

func TestSortBy(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	mk := func(id string, age time.Duration, velocity float64, mentions int) ClusterSummary {
		return ClusterSummary{
			ClusterID: id,
			Timing:    Timing{FirstSeen: base.Add(-age)},
			Metrics:   Metrics{Velocity: velocity, TotalMentions: mentions},
		}
	}
	fresh := func() FeedView {
		return FeedView{Clusters: []ClusterSummary{
			mk("c1", 3*time.Hour, 1.5, 40),
			mk("c2", 1*time.Hour, 0.5, 40),
			mk("c3", 2*time.Hour, 9.0, 10),
		}}
	}

	t.Run("upstream key leaves order alone", func(t *testing.T) {
		v := fresh()
		SortBy(&v, SortUpstream)
		assert.Equal(t, "c1", v.Clusters[0].ClusterID)
	})

	t.Run("recency", func(t *testing.T) {
		v := fresh()
		SortBy(&v, SortRecency)
		assert.Equal(t, []string{"c2", "c3", "c1"}, ids(v))
	})

	t.Run("velocity", func(t *testing.T) {
		v := fresh()
		SortBy(&v, SortVelocity)
		assert.Equal(t, []string{"c3", "c1", "c2"}, ids(v))
	})

	t.Run("mentions is stable on ties", func(t *testing.T) {
		v := fresh()
		SortBy(&v, SortMentions)
		// c1 and c2 tie at 40; stable sort keeps their upstream order.
		assert.Equal(t, []string{"c1", "c2", "c3"}, ids(v))
	})

	t.Run("sort never filters", func(t *testing.T) {
		v := fresh()
		SortBy(&v, SortVelocity)
		assert.Len(t, v.Clusters, 3)
	})
}

func ids(v FeedView) []string {
	out := make([]string, len(v.Clusters))
	for i, c := range v.Clusters {
		out[i] = c.ClusterID
	}
	return out
}

func TestParseSortKey(t *testing.T) {
	assert.Equal(t, SortRecency, ParseSortKey("recency"))
	assert.Equal(t, SortVelocity, ParseSortKey("velocity"))
	assert.Equal(t, SortMentions, ParseSortKey("mentions"))
	assert.Equal(t, SortUpstream, ParseSortKey(""))
	assert.Equal(t, SortUpstream, ParseSortKey("nonsense"))
}
