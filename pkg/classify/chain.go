package classify

import "strings"

// Closed allow-list. Everything else, ethereum mainnet and unknown or empty
// chains included, is rejected.
var allowedChains = map[string]bool{
	"solana": true,
	"base":   true,
	"bsc":    true,
}

// IsChainAllowed reports whether records on the given chain may appear in the
// feed. Matching is case-insensitive.
func IsChainAllowed(chain string) bool {
	return allowedChains[strings.ToLower(chain)]
}
