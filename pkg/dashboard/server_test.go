package dashboard

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signal-feed/pkg/feed"
	"github.com/signal-feed/pkg/orchestrator"
	"github.com/signal-feed/pkg/token"
	"github.com/signal-feed/pkg/upstream"
)

type stubSource struct {
	records  []feed.MentionRecord
	accounts []upstream.Account
}

func (s *stubSource) FetchFeed(ctx context.Context, q upstream.FeedQuery) ([]feed.MentionRecord, error) {
	return s.records, nil
}

func (s *stubSource) Accounts(ctx context.Context) ([]upstream.Account, error) {
	return s.accounts, nil
}

func (s *stubSource) Ingest(ctx context.Context, accountID string, limit int) (*upstream.IngestResult, error) {
	return &upstream.IngestResult{MessagesProcessed: 5, TokensFound: 1, ClustersUpdated: 1}, nil
}

type nullFetcher struct{}

func (nullFetcher) TokenMetadata(ctx context.Context, chain, address string) (*token.Info, error) {
	return nil, nil
}

func newTestServer(src *stubSource) *Server {
	metadata := token.NewService(nullFetcher{}, token.NewMemoryCache(), time.Second)
	orch := orchestrator.New(src, feed.NewComposer(), metadata, orchestrator.Options{
		PerAccountLimit:     50,
		AccountTimeout:      time.Second,
		AutoScanSettleDelay: time.Hour, // never fires during a test
		AutoScanInterval:    time.Hour,
	})
	s := New(orch, 0)
	s.baseCtx = context.Background()
	return s
}

func TestHandleFeed(t *testing.T) {
	src := &stubSource{records: []feed.MentionRecord{
		{ClusterID: "c1", Token: feed.TokenRef{Address: "addr", Symbol: "PEPE", Chain: "solana"}},
	}}
	s := newTestServer(src)
	require.NoError(t, s.orch.Refresh(context.Background()))

	w := httptest.NewRecorder()
	s.handleFeed(w, httptest.NewRequest("GET", "/api/feed", nil))

	require.Equal(t, 200, w.Code)
	var view feed.FeedView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	require.Len(t, view.Clusters, 1)
	assert.Equal(t, "PEPE", view.Clusters[0].DisplaySymbol)
}

func TestHandleStatus(t *testing.T) {
	s := newTestServer(&stubSource{})

	w := httptest.NewRecorder()
	s.handleStatus(w, httptest.NewRequest("GET", "/api/status", nil))

	var sv statusView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sv))
	assert.Equal(t, orchestrator.StatusIdle, sv.Status)
	assert.False(t, sv.AutoScan)
	assert.Nil(t, sv.LastScan)
}

func TestHandleScan(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		src := &stubSource{accounts: []upstream.Account{{ID: "A", IsActive: true}}}
		s := newTestServer(src)

		w := httptest.NewRecorder()
		s.handleScan(w, httptest.NewRequest("POST", "/api/scan", nil))

		require.Equal(t, 200, w.Code)
		var job orchestrator.ScanJob
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &job))
		require.Contains(t, job.Results, "A")
		assert.Equal(t, 5, job.Results["A"].MessagesProcessed)
	})

	t.Run("no accounts linked", func(t *testing.T) {
		s := newTestServer(&stubSource{})

		w := httptest.NewRecorder()
		s.handleScan(w, httptest.NewRequest("POST", "/api/scan", nil))

		assert.Equal(t, 400, w.Code)
		assert.Contains(t, w.Body.String(), "no ingestion accounts linked")
	})

	t.Run("method guard", func(t *testing.T) {
		s := newTestServer(&stubSource{})
		w := httptest.NewRecorder()
		s.handleScan(w, httptest.NewRequest("GET", "/api/scan", nil))
		assert.Equal(t, 405, w.Code)
	})
}

func TestHandleAutoScan(t *testing.T) {
	s := newTestServer(&stubSource{accounts: []upstream.Account{{ID: "A", IsActive: true}}})

	w := httptest.NewRecorder()
	s.handleAutoScan(w, httptest.NewRequest("POST", "/api/autoscan", strings.NewReader(`{"enabled": true}`)))
	require.Equal(t, 200, w.Code)
	assert.True(t, s.orch.AutoScanEnabled())

	w = httptest.NewRecorder()
	s.handleAutoScan(w, httptest.NewRequest("POST", "/api/autoscan", strings.NewReader(`{"enabled": false}`)))
	require.Equal(t, 200, w.Code)
	assert.False(t, s.orch.AutoScanEnabled())
}

func TestHandleAutoScanBadBody(t *testing.T) {
	s := newTestServer(&stubSource{})
	w := httptest.NewRecorder()
	s.handleAutoScan(w, httptest.NewRequest("POST", "/api/autoscan", strings.NewReader("not json")))
	assert.Equal(t, 400, w.Code)
}
