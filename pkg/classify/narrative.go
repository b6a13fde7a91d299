package classify

import "regexp"

const maxThemes = 3

// theme table, in display priority order. First three distinct matches win.
var themePatterns = []struct {
	tag string
	re  *regexp.Regexp
}{
	{"Price Target", regexp.MustCompile(`(?i)price\s*target|\btarget\b|\btp\b|\b\d+(\.\d+)?x\b|\bmoon(ing|shot)?\b|\bath\b`)},
	{"Entry Signal", regexp.MustCompile(`(?i)\bdip\b|\bentry\b|\baccumulat\w*|\bbuy\s*zone\b|\bape(d|ing)?\b|\bload(ed|ing)?\s+up\b|\bbottom\s*(is\s*)?in\b`)},
	{"Warning", regexp.MustCompile(`(?i)\brug(ged|pull)?\b|\bscam\b|\bexit\b|\bdump(ed|ing)?\b|\bhoneypot\b|\bsell\s*pressure\b`)},
	{"Listing", regexp.MustCompile(`(?i)\blist(ing|ed)\b|\bcex\b|\bbinance\b|\bcoinbase\b|\bkucoin\b|\bexchange\b`)},
	{"Airdrop", regexp.MustCompile(`(?i)\bairdrop\w*\b`)},
	{"Partnership", regexp.MustCompile(`(?i)\bpartner(ship|ed)?\b|\bcollab(oration)?\b`)},
	{"Development", regexp.MustCompile(`(?i)\bdev(s|eloper)?\b|\bmainnet\b|\btestnet\b|\brelease(d)?\b|\broadmap\b|\bshipp?(ed|ing)\b|\bupgrade\b`)},
	{"Whale Activity", regexp.MustCompile(`(?i)\bwhale(s)?\b|\b(large|big|massive)\s+buy(s)?\b|\bsniper(s)?\b|\binsider(s)?\b`)},
	{"Influencer", regexp.MustCompile(`(?i)\binfluencer(s)?\b|\bkol(s)?\b|\bcalled\s+(it|by)\b|\bshill(ed|ing)?\b`)},
	{"Team Activity", regexp.MustCompile(`(?i)\bteam\s+(is|has|wallet|selling|buying)\b|\bfounder(s)?\b|\bdeployer\b`)},
}

// ExtractThemes derives up to three topical tags from message text for
// compact display. Tags come back in table order, never duplicated.
func ExtractThemes(text string) []string {
	if text == "" {
		return nil
	}
	var tags []string
	for _, tp := range themePatterns {
		if tp.re.MatchString(text) {
			tags = append(tags, tp.tag)
			if len(tags) == maxThemes {
				break
			}
		}
	}
	return tags
}
