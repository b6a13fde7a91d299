package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/signal-feed/pkg/classify"
	"github.com/signal-feed/pkg/feed"
	"github.com/signal-feed/pkg/token"
	"github.com/signal-feed/pkg/upstream"
)

// Status is the feed state exposed to the UI. Fetching only while a request
// is in flight; Failed still serves the last good view.
type Status string

const (
	StatusIdle     Status = "idle"
	StatusFetching Status = "fetching"
	StatusSuccess  Status = "success"
	StatusFailed   Status = "failed"
)

// Source is the slice of the upstream client the orchestrator drives.
type Source interface {
	FetchFeed(ctx context.Context, q upstream.FeedQuery) ([]feed.MentionRecord, error)
	Accounts(ctx context.Context) ([]upstream.Account, error)
	Ingest(ctx context.Context, accountID string, limit int) (*upstream.IngestResult, error)
}

// Options bundle the cadence and fan-out knobs.
type Options struct {
	Query               upstream.FeedQuery
	PollInterval        time.Duration
	PerAccountLimit     int
	AccountTimeout      time.Duration
	AutoScanSettleDelay time.Duration
	AutoScanInterval    time.Duration
}

// Orchestrator owns the refresh cadence, manual scan fan-out and cache
// invalidation for one feed view. The pipeline itself stays pure; all shared
// mutable state lives here and in the metadata cache.
type Orchestrator struct {
	source   Source
	composer *feed.Composer
	metadata *token.Service
	opts     Options

	mu         sync.Mutex
	status     Status
	view       *feed.FeedView // last good view, served stale on failure
	lastErr    error
	fetching   bool
	scanning   bool
	gen        uint64 // bumped on invalidation/teardown; stale fetches are discarded
	lastScan   *ScanJob
	autoCancel context.CancelFunc
}

func New(source Source, composer *feed.Composer, metadata *token.Service, opts Options) *Orchestrator {
	return &Orchestrator{
		source:   source,
		composer: composer,
		metadata: metadata,
		opts:     opts,
		status:   StatusIdle,
	}
}

// Run drives the timed refresh loop until ctx is cancelled. Overlapping
// ticks coalesce into the in-flight request.
func (o *Orchestrator) Run(ctx context.Context) error {
	log.Info().Dur("interval", o.opts.PollInterval).Msg("📡 feed refresh loop started")

	_ = o.Refresh(ctx)

	ticker := time.NewTicker(o.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			o.Invalidate() // late results must not land in a dead view
			return ctx.Err()
		case <-ticker.C:
			_ = o.Refresh(ctx)
		}
	}
}

// Refresh performs one fetch-compose cycle. If a fetch is already in flight
// the trigger is dropped, not queued. On failure the previous view is kept
// (stale-while-revalidate) and only the status flips.
func (o *Orchestrator) Refresh(ctx context.Context) error {
	o.mu.Lock()
	if o.fetching {
		o.mu.Unlock()
		log.Debug().Msg("refresh coalesced into in-flight fetch")
		return nil
	}
	o.fetching = true
	o.status = StatusFetching
	gen := o.gen
	o.mu.Unlock()

	records, err := o.source.FetchFeed(ctx, o.opts.Query)

	var view feed.FeedView
	if err == nil {
		o.enrich(ctx, records)
		view = o.composer.Compose(records)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.fetching = false

	if gen != o.gen {
		// Invalidated or torn down while in flight: these results describe
		// a view nobody wants anymore.
		log.Debug().Msg("discarding stale fetch result")
		o.status = o.settledStatus()
		return nil
	}

	if err != nil {
		o.status = StatusFailed
		o.lastErr = err
		log.Warn().Err(err).Msg("feed refresh failed, serving stale view")
		return err
	}

	o.view = &view
	o.status = StatusSuccess
	o.lastErr = nil
	log.Info().Int("clusters", len(view.Clusters)).Int("hidden", view.HiddenCount).
		Msg("📡 feed refreshed")
	return nil
}

// Invalidate marks any in-flight fetch as stale.
func (o *Orchestrator) Invalidate() {
	o.mu.Lock()
	o.gen++
	o.mu.Unlock()
}

// enrich backfills missing token identities from the metadata cache and
// kicks off asynchronous lookups for unseen addresses so a later refresh can
// use them. Never blocks on the network.
func (o *Orchestrator) enrich(ctx context.Context, records []feed.MentionRecord) {
	for i := range records {
		rec := &records[i]
		if !classify.ClassifyIdentity(rec.Token.Symbol, rec.Token.Name).AddressOnly {
			continue
		}
		if info, ok := o.metadata.Cached(rec.Token.Chain, rec.Token.Address); ok {
			if info != nil {
				rec.Token.Symbol = info.Symbol
				rec.Token.Name = info.Name
			}
			continue
		}
		go o.metadata.Lookup(ctx, rec.Token.Chain, rec.Token.Address)
	}
}

// View returns the last good feed view, reordered by key if requested. A
// zero view with no LastUpdated means "no data yet", which the UI renders
// differently from a failed refresh over stale data.
func (o *Orchestrator) View(key feed.SortKey) feed.FeedView {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.view == nil {
		return feed.FeedView{}
	}
	view := *o.view
	view.Clusters = append([]feed.ClusterSummary(nil), o.view.Clusters...)
	feed.SortBy(&view, key)
	return view
}

func (o *Orchestrator) Status() Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status
}

func (o *Orchestrator) LastError() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastErr
}

func (o *Orchestrator) LastScan() *ScanJob {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastScan
}

// settledStatus reports what status the retained view justifies. Callers
// must hold o.mu.
func (o *Orchestrator) settledStatus() Status {
	if o.lastErr != nil {
		return StatusFailed
	}
	if o.view != nil {
		return StatusSuccess
	}
	return StatusIdle
}
