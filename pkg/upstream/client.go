package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/signal-feed/pkg/feed"
	"github.com/signal-feed/pkg/token"
)

// ── Ingestion service client ────────────────────────────────
// Talks to the upstream service that owns raw message ingestion, clustering
// and scoring. This process only consumes its outputs.

// Account is one linked ingestion account.
type Account struct {
	ID          string `json:"id"`
	SessionName string `json:"session_name"`
	IsActive    bool   `json:"is_active"`
	IsConnected bool   `json:"is_connected"`
}

// IngestResult is the outcome of one per-account ingestion pass.
type IngestResult struct {
	MessagesProcessed int `json:"messages_processed"`
	TokensFound       int `json:"tokens_found"`
	ClustersUpdated   int `json:"clusters_updated"`
}

// FeedQuery narrows the feed fetch. Zero values mean "no constraint".
type FeedQuery struct {
	Chain      string
	MinScore   float64
	MinSources int
	Limit      int
}

type Client struct {
	baseURL string
	metaURL string
	client  *http.Client
}

func NewClient(baseURL, metaURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		metaURL: strings.TrimRight(metaURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// FetchFeed retrieves the ranked signal feed. Records come back in upstream
// score order.
func (c *Client) FetchFeed(ctx context.Context, q FeedQuery) ([]feed.MentionRecord, error) {
	params := url.Values{}
	if q.Chain != "" {
		params.Set("chain", q.Chain)
	}
	if q.MinScore > 0 {
		params.Set("min_score", strconv.FormatFloat(q.MinScore, 'f', -1, 64))
	}
	if q.MinSources > 1 {
		params.Set("min_sources", strconv.Itoa(q.MinSources))
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}

	u := c.baseURL + "/signals/feed"
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var records []feed.MentionRecord
	if err := c.getJSON(ctx, u, &records); err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	return records, nil
}

// Accounts lists the linked ingestion accounts.
func (c *Client) Accounts(ctx context.Context) ([]Account, error) {
	var accounts []Account
	if err := c.getJSON(ctx, c.baseURL+"/accounts", &accounts); err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, nil
}

// Ingest asks the upstream service to pull and process recent messages for
// one account.
func (c *Client) Ingest(ctx context.Context, accountID string, limit int) (*IngestResult, error) {
	reqBody, _ := json.Marshal(map[string]int{"limit": limit})

	u := fmt.Sprintf("%s/accounts/%s/ingest", c.baseURL, url.PathEscape(accountID))
	req, err := http.NewRequestWithContext(ctx, "POST", u, bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ingest %s: %w", accountID, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("ingest %s: status %d: %s", accountID, resp.StatusCode, truncate(string(body), 200))
	}

	var result IngestResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("ingest %s: unmarshal: %w", accountID, err)
	}
	return &result, nil
}

// ── Token metadata lookup ───────────────────────────────────
// DexScreener-style endpoint: GET {metaURL}/{address} returns the trading
// pairs for a token; the base token of the most relevant pair carries symbol
// and name.

type metaResponse struct {
	Pairs []struct {
		ChainID   string `json:"chainId"`
		BaseToken struct {
			Symbol string `json:"symbol"`
			Name   string `json:"name"`
		} `json:"baseToken"`
	} `json:"pairs"`
}

// TokenMetadata implements token.Fetcher. A token with no pairs yields
// (nil, nil): genuinely no metadata, not an error.
func (c *Client) TokenMetadata(ctx context.Context, chain, address string) (*token.Info, error) {
	var meta metaResponse
	if err := c.getJSON(ctx, c.metaURL+"/"+url.PathEscape(address), &meta); err != nil {
		return nil, fmt.Errorf("token metadata: %w", err)
	}
	if len(meta.Pairs) == 0 {
		return nil, nil
	}

	// Prefer a pair on the requested chain; fall back to the first.
	pair := meta.Pairs[0]
	for _, p := range meta.Pairs {
		if strings.EqualFold(p.ChainID, chain) {
			pair = p
			break
		}
	}
	if pair.BaseToken.Symbol == "" && pair.BaseToken.Name == "" {
		return nil, nil
	}
	return &token.Info{Symbol: pair.BaseToken.Symbol, Name: pair.BaseToken.Name}, nil
}

func (c *Client) getJSON(ctx context.Context, u string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode != 200 {
		return fmt.Errorf("status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}
	return json.Unmarshal(body, out)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
