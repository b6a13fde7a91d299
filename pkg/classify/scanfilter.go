package classify

import (
	"regexp"
	"strings"
)

const (
	minOrganicLen = 20
	maxQuoteLen   = 280
	longRunLen    = 32
)

var (
	urlRe        = regexp.MustCompile(`https?://[^\s\)\]]+`)
	longRunRe    = regexp.MustCompile(`[A-Za-z0-9]{32,}`)
	danglingRe   = regexp.MustCompile(`(^|\s)/\S*`)
	whitespaceRe = regexp.MustCompile(`\s+`)

	// Fixed scanner/bot vocabulary. Channel-scanner bots paste these into
	// every post; organic chatter almost never does.
	scannerMarkers = []string{
		"pump.fun",
		"dexscreener.com",
		"dextools.io",
		"birdeye.so",
		"gmgn.ai",
		"photon-sol",
		"bullx.io",
		"axiom.trade",
		"t.me/",
		"contract:",
		"ca:",
		"mint:",
		"🚀 launch",
		"🔥 new",
		"💎 gem",
		"🚨 alert",
		"📈 chart",
		"new gem",
		"buy now",
		"fair launch",
		"lp locked",
		"renounced",
	}
)

// IsOrganic reports whether quoted message text reads as genuine human
// discussion rather than scanner/bot output.
func IsOrganic(text string) bool {
	if len(text) < minOrganicLen {
		return false
	}
	lower := strings.ToLower(text)
	for _, marker := range scannerMarkers {
		if strings.Contains(lower, marker) {
			return false
		}
	}
	if urlRe.MatchString(text) {
		return false
	}
	// Messages that are mostly raw addresses are paste dumps, not chat.
	runTotal := 0
	for _, run := range longRunRe.FindAllString(text, -1) {
		runTotal += len(run)
	}
	return float64(runTotal) <= 0.3*float64(len(text))
}

// Sanitize strips URLs and address-length alphanumeric runs from message
// text, collapses whitespace and truncates for quoting. Returns "" when too
// little survives to be worth quoting; callers must treat "" as "no quotable
// text" and render no quote. Sanitize(Sanitize(x)) == Sanitize(x).
func Sanitize(text string) string {
	s := urlRe.ReplaceAllString(text, " ")
	s = longRunRe.ReplaceAllString(s, " ")
	// URL stripping can leave path fragments like "/solana/..." behind.
	s = danglingRe.ReplaceAllString(s, " ")
	s = whitespaceRe.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)

	if len(s) > maxQuoteLen {
		cut := strings.TrimRight(s[:maxQuoteLen-3], "/ ")
		s = cut + "..."
	}
	if len(s) < minOrganicLen {
		return ""
	}
	return s
}
