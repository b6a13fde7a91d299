package classify

import "strings"

// TokenIdentity is the single display identity derived for a token. When
// AddressOnly is set neither field is usable and the caller must drop the
// record rather than render a raw address as if it were a ticker.
type TokenIdentity struct {
	DisplaySymbol string `json:"display_symbol,omitempty"`
	DisplayName   string `json:"display_name,omitempty"`
	AddressOnly   bool   `json:"address_only"`
}

// Display returns whichever identity string is usable, symbol first.
func (t TokenIdentity) Display() string {
	if t.DisplaySymbol != "" {
		return t.DisplaySymbol
	}
	return t.DisplayName
}

// AddressClassifier decides whether a display string is really a disguised
// token address. Pluggable so the string heuristic can be swapped for strict
// decoding without touching the composer.
type AddressClassifier interface {
	LooksLikeAddress(s string) bool
}

// HeuristicClassifier uses cheap string predicates, no decoding. It
// false-positives on some legitimate mixed-case tickers longer than 10
// characters; showing a raw address as a ticker is the worse failure mode.
type HeuristicClassifier struct{}

func (HeuristicClassifier) LooksLikeAddress(s string) bool {
	if s == "" {
		return false
	}
	if strings.HasPrefix(s, "0x") {
		return true
	}
	// "..." is the truncation marker upstream uses when it abbreviates an
	// address into the symbol slot.
	if strings.Contains(s, "...") {
		return true
	}
	if len(s) > 15 {
		return true
	}
	// pump.fun mints carry a literal "pump" suffix.
	if strings.HasSuffix(strings.ToLower(s), "pump") {
		return true
	}
	return len(s) > 10 && isMixedAlnum(s)
}

// isMixedAlnum matches the base58 look: all alphanumeric with at least one
// lowercase, one uppercase and one digit.
func isMixedAlnum(s string) bool {
	hasUpper, hasLower, hasDigit := false, false, false
	for _, c := range s {
		switch {
		case c >= 'A' && c <= 'Z':
			hasUpper = true
		case c >= 'a' && c <= 'z':
			hasLower = true
		case c >= '0' && c <= '9':
			hasDigit = true
		default:
			return false
		}
	}
	return hasUpper && hasLower && hasDigit
}

// Identifier derives display identities using a pluggable address classifier.
type Identifier struct {
	Addresses AddressClassifier
}

func NewIdentifier() *Identifier {
	return &Identifier{Addresses: HeuristicClassifier{}}
}

// Classify picks the first of {symbol, name} that does not look like an
// address. If neither qualifies the token has no human-readable identity and
// the record must be dropped by the caller.
func (i *Identifier) Classify(symbol, name string) TokenIdentity {
	symbol = strings.TrimSpace(symbol)
	name = strings.TrimSpace(name)

	if symbol != "" && !i.Addresses.LooksLikeAddress(symbol) {
		return TokenIdentity{DisplaySymbol: symbol}
	}
	if name != "" && !i.Addresses.LooksLikeAddress(name) {
		return TokenIdentity{DisplayName: name}
	}
	return TokenIdentity{AddressOnly: true}
}

// ClassifyIdentity applies the default heuristic classifier.
func ClassifyIdentity(symbol, name string) TokenIdentity {
	return NewIdentifier().Classify(symbol, name)
}

// Abbrev shortens an address for log output.
func Abbrev(addr string) string {
	if len(addr) > 12 {
		return addr[:6] + "..." + addr[len(addr)-4:]
	}
	return addr
}
