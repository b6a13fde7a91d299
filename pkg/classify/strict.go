package classify

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gagliardetto/solana-go"
)

// StrictClassifier validates candidate addresses by actually decoding them:
// EVM addresses through go-ethereum's hex check, Solana addresses through
// base58 public-key decoding. Stricter than HeuristicClassifier: a
// mixed-case ticker that merely looks base58-ish passes through.
type StrictClassifier struct{}

func (StrictClassifier) LooksLikeAddress(s string) bool {
	if s == "" {
		return false
	}
	if common.IsHexAddress(s) {
		return true
	}
	// Truncated addresses ("EPjFW...Dt1v") never decode, so keep the marker
	// check from the heuristic.
	if strings.Contains(s, "...") {
		return true
	}
	candidate := s
	if strings.HasSuffix(strings.ToLower(candidate), "pump") && len(candidate) > 32 {
		return true
	}
	if len(candidate) < 32 || len(candidate) > 44 {
		return false
	}
	_, err := solana.PublicKeyFromBase58(candidate)
	return err == nil
}
