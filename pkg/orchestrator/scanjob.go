package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

var (
	// ErrScanInFlight rejects a second manual scan while one is running.
	// Triggers are dropped, never queued.
	ErrScanInFlight = errors.New("scan already in progress")

	// ErrNoAccounts means there is nothing to scan; surfaced to the user
	// verbatim unlike silent timed-refresh failures.
	ErrNoAccounts = errors.New("no ingestion accounts linked")
)

// AccountResult is the outcome for one account within a ScanJob. Error and
// the counters are mutually exclusive.
type AccountResult struct {
	MessagesProcessed int    `json:"messages_processed"`
	TokensFound       int    `json:"tokens_found"`
	ClustersUpdated   int    `json:"clusters_updated"`
	Error             string `json:"error,omitempty"`
}

// ScanJob is one manual multi-account ingestion refresh. Results always
// carries an entry per requested account, failures included.
type ScanJob struct {
	AccountIDs      []string                 `json:"account_ids"`
	PerAccountLimit int                      `json:"per_account_limit"`
	StartedAt       time.Time                `json:"started_at"`
	FinishedAt      time.Time                `json:"finished_at"`
	Results         map[string]AccountResult `json:"results"`
}

// Succeeded counts accounts that ingested without error.
func (j *ScanJob) Succeeded() int {
	n := 0
	for _, r := range j.Results {
		if r.Error == "" {
			n++
		}
	}
	return n
}

// ScanNow fans an ingestion request out to every active linked account
// concurrently. Each account gets its own timeout; one slow or failing
// account never blocks the rest. Whatever the per-account outcomes, the feed
// cache is invalidated exactly once and re-fetched once afterwards.
func (o *Orchestrator) ScanNow(ctx context.Context) (*ScanJob, error) {
	o.mu.Lock()
	if o.scanning {
		o.mu.Unlock()
		log.Debug().Msg("scan trigger dropped: job already in flight")
		return nil, ErrScanInFlight
	}
	o.scanning = true
	o.mu.Unlock()
	defer func() {
		o.mu.Lock()
		o.scanning = false
		o.mu.Unlock()
	}()

	accounts, err := o.source.Accounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve accounts: %w", err)
	}
	var active []string
	for _, a := range accounts {
		if a.IsActive {
			active = append(active, a.ID)
		}
	}
	if len(active) == 0 {
		return nil, ErrNoAccounts
	}

	job := &ScanJob{
		AccountIDs:      active,
		PerAccountLimit: o.opts.PerAccountLimit,
		StartedAt:       time.Now().UTC(),
		Results:         make(map[string]AccountResult, len(active)),
	}
	log.Info().Strs("accounts", active).Int("limit", job.PerAccountLimit).Msg("🔎 scan started")

	var (
		wg    sync.WaitGroup
		resMu sync.Mutex
	)
	for _, id := range active {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			actx, cancel := context.WithTimeout(ctx, o.opts.AccountTimeout)
			defer cancel()

			res, err := o.source.Ingest(actx, id, o.opts.PerAccountLimit)

			resMu.Lock()
			defer resMu.Unlock()
			if err != nil {
				log.Warn().Err(err).Str("account", id).Msg("account ingest failed")
				job.Results[id] = AccountResult{Error: err.Error()}
				return
			}
			job.Results[id] = AccountResult{
				MessagesProcessed: res.MessagesProcessed,
				TokensFound:       res.TokensFound,
				ClustersUpdated:   res.ClustersUpdated,
			}
		}(id)
	}
	wg.Wait()
	job.FinishedAt = time.Now().UTC()

	// Exactly one invalidation and one re-fetch, regardless of how the
	// individual accounts fared.
	o.Invalidate()
	_ = o.Refresh(ctx)

	o.mu.Lock()
	o.lastScan = job
	o.mu.Unlock()

	log.Info().Int("ok", job.Succeeded()).Int("total", len(active)).
		Dur("took", job.FinishedAt.Sub(job.StartedAt)).Msg("🔎 scan complete")
	return job, nil
}
