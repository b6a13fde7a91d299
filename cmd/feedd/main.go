package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/signal-feed/pkg/config"
	"github.com/signal-feed/pkg/dashboard"
	"github.com/signal-feed/pkg/feed"
	"github.com/signal-feed/pkg/orchestrator"
	"github.com/signal-feed/pkg/token"
	"github.com/signal-feed/pkg/upstream"
)

func main() {
	oneShotScan := flag.Bool("scan", false, "run one multi-account scan, print results and exit")
	flag.Parse()

	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).With().Timestamp().Logger()
	log.Info().Msg("📡 signal feed starting...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	client := upstream.NewClient(cfg.UpstreamBaseURL, cfg.MetadataBaseURL, cfg.UpstreamTimeout)
	cache := token.NewMemoryCache()
	metadata := token.NewService(client, cache, cfg.MetadataTimeout)

	orch := orchestrator.New(client, feed.NewComposer(), metadata, orchestrator.Options{
		Query: upstream.FeedQuery{
			Chain:      cfg.FeedChain,
			MinScore:   cfg.FeedMinScore,
			MinSources: cfg.FeedMinSources,
			Limit:      cfg.FeedLimit,
		},
		PollInterval:        cfg.FeedPollInterval,
		PerAccountLimit:     cfg.ScanPerAccountLimit,
		AccountTimeout:      cfg.ScanAccountTimeout,
		AutoScanSettleDelay: cfg.AutoScanSettleDelay,
		AutoScanInterval:    cfg.AutoScanInterval,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() { <-sigCh; log.Info().Msg("shutting down..."); cancel() }()

	if *oneShotScan {
		os.Exit(runOneShotScan(ctx, orch))
	}

	// Metadata cache retention. TTL 0 keeps entries for the process
	// lifetime; the job then has nothing to do.
	cronner := cron.New()
	if cfg.MetadataCacheTTL > 0 {
		_, err := cronner.AddFunc(cfg.MetadataPruneSpec, func() {
			if n := metadata.Prune(cfg.MetadataCacheTTL); n > 0 {
				log.Debug().Int("removed", n).Msg("metadata cache pruned")
			}
		})
		if err != nil {
			log.Fatal().Err(err).Str("spec", cfg.MetadataPruneSpec).Msg("bad prune spec")
		}
		cronner.Start()
		defer cronner.Stop()
	}

	dash := dashboard.New(orch, cfg.DashboardPort)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return orch.Run(gctx) })
	g.Go(func() error { return dash.Run(gctx) })

	printSummary(cfg)

	if err := g.Wait(); err != nil && err != context.Canceled {
		log.Error().Err(err).Msg("error")
	}
	log.Info().Msg("goodbye 👋")
}

// runOneShotScan drives a single manual scan from the CLI and prints the
// per-account outcome table.
func runOneShotScan(ctx context.Context, orch *orchestrator.Orchestrator) int {
	job, err := orch.ScanNow(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("scan failed: %v", err))
		return 1
	}

	ids := make([]string, 0, len(job.Results))
	for id := range job.Results {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Account", "Messages", "Tokens", "Clusters", "Status"})
	for _, id := range ids {
		r := job.Results[id]
		status := color.GreenString("ok")
		if r.Error != "" {
			status = color.RedString(r.Error)
		}
		table.Append([]string{
			id,
			fmt.Sprintf("%d", r.MessagesProcessed),
			fmt.Sprintf("%d", r.TokensFound),
			fmt.Sprintf("%d", r.ClustersUpdated),
			status,
		})
	}
	table.Render()

	fmt.Printf("%d/%d accounts ok in %s\n",
		job.Succeeded(), len(job.AccountIDs), job.FinishedAt.Sub(job.StartedAt).Round(time.Millisecond))
	if job.Succeeded() == 0 {
		return 1
	}
	return 0
}

func printSummary(cfg *config.Config) {
	chains := make([]string, 0, 3)
	for _, c := range config.AllowedChains() {
		chains = append(chains, string(c))
	}

	fmt.Println("\n" + strings.Repeat("═", 60))
	fmt.Println("  📡 SIGNAL FEED - RUNNING")
	fmt.Println(strings.Repeat("═", 60))
	fmt.Printf("  Upstream:  %s\n", cfg.UpstreamBaseURL)
	fmt.Printf("  Chains:    %s\n", strings.Join(chains, ", "))
	fmt.Printf("  Poll:      every %s\n", cfg.FeedPollInterval)
	fmt.Printf("  Dashboard: http://localhost:%d\n", cfg.DashboardPort)
	fmt.Println(strings.Repeat("═", 60) + "\n")
}
