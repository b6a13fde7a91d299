package token

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// minLookupAddrLen gates lookups: anything shorter is not a plausible
// contract address and would only waste a request.
const minLookupAddrLen = 21

// Fetcher retrieves metadata from the external token-info service.
// A (nil, nil) return means the service has no metadata for this token.
type Fetcher interface {
	TokenMetadata(ctx context.Context, chain, address string) (*Info, error)
}

// Service fronts the Fetcher with a cache and in-flight deduplication.
// Concurrent lookups for the same (chain, address) pair collapse into one
// upstream call; the first writer wins and everyone gets its result.
type Service struct {
	fetcher Fetcher
	cache   Cache
	timeout time.Duration
	group   singleflight.Group
}

func NewService(fetcher Fetcher, cache Cache, timeout time.Duration) *Service {
	return &Service{fetcher: fetcher, cache: cache, timeout: timeout}
}

// Key builds the cache key for a (chain, address) pair.
func Key(chain, address string) string {
	return chain + ":" + address
}

// Cached returns the cached metadata without triggering a lookup. The bool
// reports whether any entry (including a negative one) exists.
func (s *Service) Cached(chain, address string) (*Info, bool) {
	return s.cache.Get(Key(chain, address))
}

// Lookup resolves metadata for a token, consulting the cache first. Lookup
// failures and empty results are cached as nil so a token with genuinely no
// metadata never causes a retry storm. Never returns an error: a missing
// symbol just degrades the display.
func (s *Service) Lookup(ctx context.Context, chain, address string) *Info {
	if len(address) < minLookupAddrLen {
		return nil
	}
	key := Key(chain, address)
	if info, ok := s.cache.Get(key); ok {
		return info
	}

	v, _, _ := s.group.Do(key, func() (interface{}, error) {
		// Re-check: a concurrent caller may have written while we queued.
		if info, ok := s.cache.Get(key); ok {
			return info, nil
		}

		lctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		info, err := s.fetcher.TokenMetadata(lctx, chain, address)
		if err != nil {
			// A caller-cancelled lookup is abandoned, not concluded: the
			// token may well have metadata, so leave the cache untouched
			// and let a later lookup retry. Only a lookup that ran its
			// course caches a negative entry.
			if errors.Is(err, context.Canceled) {
				log.Debug().Str("chain", chain).Str("address", address).
					Msg("metadata lookup abandoned")
				return (*Info)(nil), nil
			}
			log.Debug().Err(err).Str("chain", chain).Str("address", address).
				Msg("metadata lookup failed, caching negative result")
			info = nil
		}
		s.cache.Set(key, info)
		return info, nil
	})

	info, _ := v.(*Info)
	return info
}

// Prune applies the retention policy to the underlying cache.
func (s *Service) Prune(maxAge time.Duration) int {
	return s.cache.Prune(maxAge)
}
