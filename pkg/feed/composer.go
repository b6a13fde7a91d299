package feed

import (
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/signal-feed/pkg/classify"
)

// Composer turns a raw upstream result set into a renderable FeedView in a
// single pass: chain gate, identity gate, quote scrubbing, narrative tags.
// Pure over its input slice; safe to re-run on every fetch.
type Composer struct {
	identities *classify.Identifier
}

func NewComposer() *Composer {
	return &Composer{identities: classify.NewIdentifier()}
}

// NewComposerWith substitutes the address classifier, e.g. the strict
// decoding variant.
func NewComposerWith(addrs classify.AddressClassifier) *Composer {
	return &Composer{identities: &classify.Identifier{Addresses: addrs}}
}

// Compose filters and decorates records in upstream order. Records on a
// disallowed chain or without a human-readable identity are dropped and
// counted; message-quality failures only cost the cluster its quote, never
// its feed slot.
func (c *Composer) Compose(records []MentionRecord) FeedView {
	view := FeedView{
		Clusters:    make([]ClusterSummary, 0, len(records)),
		LastUpdated: time.Now().UTC(),
	}

	for _, rec := range records {
		if !classify.IsChainAllowed(rec.Token.Chain) {
			view.HiddenCount++
			continue
		}

		identity := c.identities.Classify(rec.Token.Symbol, rec.Token.Name)
		if identity.AddressOnly {
			log.Debug().Str("cluster", rec.ClusterID).
				Str("address", classify.Abbrev(rec.Token.Address)).
				Msg("cluster hidden: no token identity")
			view.HiddenCount++
			continue
		}

		summary := ClusterSummary{
			ClusterID:     rec.ClusterID,
			DisplaySymbol: identity.DisplaySymbol,
			DisplayName:   identity.DisplayName,
			Chain:         rec.Token.Chain,
			Address:       rec.Token.Address,
			Score:         rec.Score,
			Metrics:       rec.Metrics,
			Sentiment:     rec.Sentiment,
			Timing:        rec.Timing,
			Themes:        classify.ExtractThemes(rec.TopSignal.Text),
			Sources:       rec.Sources,
		}

		if text := rec.TopSignal.Text; text != "" {
			if classify.IsOrganic(text) {
				// Sanitize may still come back empty; that means no
				// quotable text, same as a scanner message.
				if quote := classify.Sanitize(text); quote != "" {
					summary.Quote = quote
					summary.QuoteSource = rec.TopSignal.Source
				}
			} else {
				view.ScannedMessageCount++
			}
		}

		view.Clusters = append(view.Clusters, summary)
	}

	return view
}

// SortBy reorders a view in place by the requested key. The sort is stable
// and only ever reorders; SortUpstream leaves the upstream score ranking
// untouched.
func SortBy(view *FeedView, key SortKey) {
	switch key {
	case SortRecency:
		sort.SliceStable(view.Clusters, func(i, j int) bool {
			return view.Clusters[i].Timing.FirstSeen.After(view.Clusters[j].Timing.FirstSeen)
		})
	case SortVelocity:
		sort.SliceStable(view.Clusters, func(i, j int) bool {
			return view.Clusters[i].Metrics.Velocity > view.Clusters[j].Metrics.Velocity
		})
	case SortMentions:
		sort.SliceStable(view.Clusters, func(i, j int) bool {
			return view.Clusters[i].Metrics.TotalMentions > view.Clusters[j].Metrics.TotalMentions
		})
	}
}
