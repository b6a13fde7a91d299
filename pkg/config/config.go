package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Chain string

const (
	ChainSolana Chain = "solana"
	ChainBase   Chain = "base"
	ChainBSC    Chain = "bsc"
)

// AllowedChains is the closed set of chains the feed renders. Records on any
// other chain are dropped before composition.
func AllowedChains() []Chain {
	return []Chain{ChainSolana, ChainBase, ChainBSC}
}

type Config struct {
	// Upstream ingestion/clustering service
	UpstreamBaseURL string
	UpstreamTimeout time.Duration

	// Token metadata lookups
	MetadataBaseURL   string
	MetadataTimeout   time.Duration
	MetadataCacheTTL  time.Duration // 0 = retain until restart
	MetadataPruneSpec string        // cron spec for cache pruning

	// Feed query defaults
	FeedChain      string
	FeedMinScore   float64
	FeedMinSources int
	FeedLimit      int

	// Refresh cadence
	FeedPollInterval time.Duration

	// Manual / auto scan
	ScanPerAccountLimit int
	ScanAccountTimeout  time.Duration
	AutoScanSettleDelay time.Duration
	AutoScanInterval    time.Duration

	// Dashboard
	DashboardPort int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		UpstreamBaseURL: envOr("UPSTREAM_BASE_URL", "http://localhost:8000/api/v1"),
		UpstreamTimeout: time.Duration(envInt("UPSTREAM_TIMEOUT_SECONDS", 30)) * time.Second,

		MetadataBaseURL:   envOr("METADATA_BASE_URL", "https://api.dexscreener.com/latest/dex/tokens"),
		MetadataTimeout:   time.Duration(envInt("METADATA_TIMEOUT_SECONDS", 10)) * time.Second,
		MetadataCacheTTL:  time.Duration(envInt("METADATA_CACHE_TTL_MINUTES", 0)) * time.Minute,
		MetadataPruneSpec: envOr("METADATA_PRUNE_SPEC", "@every 30m"),

		FeedChain:      strings.ToLower(os.Getenv("FEED_CHAIN")),
		FeedMinScore:   envFloat("FEED_MIN_SCORE", 0),
		FeedMinSources: envInt("FEED_MIN_SOURCES", 1),
		FeedLimit:      envInt("FEED_LIMIT", 50),

		FeedPollInterval: time.Duration(envInt("FEED_POLL_INTERVAL", 30)) * time.Second,

		ScanPerAccountLimit: envInt("SCAN_PER_ACCOUNT_LIMIT", 200),
		ScanAccountTimeout:  time.Duration(envInt("SCAN_ACCOUNT_TIMEOUT_SECONDS", 45)) * time.Second,
		AutoScanSettleDelay: time.Duration(envInt("AUTO_SCAN_SETTLE_SECONDS", 2)) * time.Second,
		AutoScanInterval:    time.Duration(envInt("AUTO_SCAN_INTERVAL", 60)) * time.Second,

		DashboardPort: envInt("DASHBOARD_PORT", 8080),
	}

	return cfg, nil
}

// helpers
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
