package content

import (
	"regexp"
	"strings"
)

var (
	schemeURLRe = regexp.MustCompile(`(?i)https?://\S+`)
	wwwURLRe    = regexp.MustCompile(`(?i)\bwww\.[a-z0-9\-]+\.[a-z]{2,}`)
	wwwFullRe   = regexp.MustCompile(`(?i)\bwww\.[a-z0-9\-]+\.[a-z]{2,}\S*`)
	bareURLRe   = regexp.MustCompile(`(?i)\b[a-z0-9\-]+\.(?:com|org|net|info|biz|io|co|me|tv|cc|uk|de|fr|es|it|ru|cn|jp)\b`)

	ipURLRe        = regexp.MustCompile(`(?i)https?://\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}`)
	hexURLRe       = regexp.MustCompile(`(?i)https?.*%[0-9a-f]{2}`)
	credentialRe   = regexp.MustCompile(`(?i)https?://[^/\s]*@`)
	deepSubdomains = regexp.MustCompile(`(?i)https?://(?:[a-z0-9\-]+\.){4,}`)
	shortenerRe    = regexp.MustCompile(`(?i)(?:^|[^a-z0-9\-])(?:bit\.ly|tinyurl\.com|goo\.gl|t\.co|ow\.ly|is\.gd|buff\.ly|adf\.ly)(?:$|[^a-z0-9\-])`)
)

// Shorteners hide the destination of a link.
var Shorteners = []string{"bit.ly", "tinyurl.com", "goo.gl", "t.co", "ow.ly", "is.gd", "buff.ly", "adf.ly"}

// SuspiciousTLDs are free or abuse-heavy top level domains.
var SuspiciousTLDs = []string{".tk", ".ml", ".ga", ".cf", ".gq", ".pw", ".top", ".xyz"}

// CountURLs counts links written with a scheme, with a www. prefix, or as a
// bare domain with a common TLD. A match that overlaps one already counted is
// ignored, so "http://example.com" counts once.
func CountURLs(text string) int {
	if text == "" {
		return 0
	}
	var spans [][]int
	for _, re := range []*regexp.Regexp{schemeURLRe, wwwURLRe, bareURLRe} {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			if !overlaps(spans, loc) {
				spans = append(spans, loc)
			}
		}
	}
	return len(spans)
}

func overlaps(spans [][]int, loc []int) bool {
	for _, s := range spans {
		if loc[0] < s[1] && s[0] < loc[1] {
			return true
		}
	}
	return false
}

// ExtractURLs returns the distinct scheme and www. links in text, in order of
// appearance per pattern.
func ExtractURLs(text string) []string {
	if text == "" {
		return nil
	}
	seen := map[string]struct{}{}
	var out []string
	for _, re := range []*regexp.Regexp{schemeURLRe, wwwFullRe} {
		for _, u := range re.FindAllString(text, -1) {
			u = strings.TrimSpace(u)
			if _, dup := seen[u]; dup {
				continue
			}
			seen[u] = struct{}{}
			out = append(out, u)
		}
	}
	return out
}

// DetectObfuscatedURL returns a description of the first obfuscation pattern
// found, or "".
func DetectObfuscatedURL(text string) string {
	switch {
	case text == "":
		return ""
	case ipURLRe.MatchString(text):
		return "IP address URL"
	case hexURLRe.MatchString(text):
		return "Hex-encoded URL"
	case shortenerRe.MatchString(text):
		return "URL shortener"
	case credentialRe.MatchString(text):
		return "URL with @ symbol (phishing)"
	case deepSubdomains.MatchString(text):
		return "Excessive subdomains"
	}
	return ""
}

// SuspiciousTLD returns the suspicious TLD the host of u ends with, or "".
func SuspiciousTLD(u string) string {
	host := Host(u)
	for _, tld := range SuspiciousTLDs {
		if strings.HasSuffix(host, tld) {
			return tld
		}
	}
	return ""
}

// Host extracts the lower-cased host of a loosely formatted link.
func Host(u string) string {
	s := strings.ToLower(strings.TrimSpace(u))
	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+3:]
	}
	if i := strings.LastIndexByte(s, '@'); i >= 0 {
		if j := strings.IndexAny(s, "/?#"); j < 0 || i < j {
			s = s[i+1:]
		}
	}
	if i := strings.IndexAny(s, "/?#:"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimRightFunc(s, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
}
