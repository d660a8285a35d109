// Package content implements stateless text analysis for submitted form
// content.
//
// Analyze runs an ordered set of checks and stops at the first failure:
//
//  1. character encoding sanity (UTF-8, control characters, bidi override,
//     printable ratio)
//  2. URL count against a ceiling
//  3. obfuscated URL patterns (IP literal, percent-encoding, shorteners,
//     credentials, deep subdomains), suspicious TLDs and overlong URLs
//  4. spam keyword scoring and suspicious word combinations
//  5. special-character ratio
//  6. character and word repetition
//  7. all-caps text
//
// Every function in this package is pure: the same input always yields the
// same Result.
package content

import (
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Check identifies which check produced a rejection.
type Check string

const (
	CheckNone          Check = ""
	CheckEncoding      Check = "encoding"
	CheckURLCount      Check = "url_count"
	CheckObfuscatedURL Check = "obfuscated_url"
	CheckSuspiciousTLD Check = "suspicious_tld"
	CheckURLLength     Check = "url_length"
	CheckKeywords      Check = "keywords"
	CheckKeywordCombo  Check = "keyword_combination"
	CheckSpecialChars  Check = "special_chars"
	CheckRepetition    Check = "repetition"
	CheckAllCaps       Check = "all_caps"
)

// Spam reports whether the check is keyword based (as opposed to a structural
// content signal).
func (c Check) Spam() bool { return c == CheckKeywords || c == CheckKeywordCombo }

// Sensitivity levels for keyword scoring.
const (
	SensitivityLow    = 1
	SensitivityMedium = 2
	SensitivityHigh   = 3
)

// Thresholds.
const (
	MaxSpecialPercent  = 30.0
	MaxUpperPercent    = 70.0
	MinAlphaForCaps    = 20
	MinPrintableRatio  = 0.95
	CharRepeatRun      = 11
	WordRepeatRun      = 4
	MaxURLLength       = 200
	minURLLength       = 4
	repeatExcerptRunes = 15
)

// Result is the outcome of Analyze.
type Result struct {
	Valid    bool
	Reason   string
	URLCount int
	Check    Check
}

func reject(c Check, reason string, urls int) Result {
	return Result{Valid: false, Reason: reason, URLCount: urls, Check: c}
}

// Analyze runs every content check against text. Empty text is valid.
func Analyze(text string, maxURLs int, checkKeywords bool, sensitivity int) Result {
	if text == "" {
		return Result{Valid: true}
	}

	if reason := EncodingProblem(text); reason != "" {
		return reject(CheckEncoding, reason, 0)
	}

	urls := CountURLs(text)
	if urls > maxURLs {
		return reject(CheckURLCount, "Too many URLs ("+strconv.Itoa(urls)+" found, maximum "+strconv.Itoa(maxURLs)+" allowed)", urls)
	}
	if kind := DetectObfuscatedURL(text); kind != "" {
		return reject(CheckObfuscatedURL, "Suspicious URL detected: "+kind, urls)
	}
	for _, u := range ExtractURLs(text) {
		if len(u) < minURLLength {
			continue
		}
		if tld := SuspiciousTLD(u); tld != "" {
			return reject(CheckSuspiciousTLD, "Suspicious TLD detected: "+tld, urls)
		}
		if len(u) > MaxURLLength {
			return reject(CheckURLLength, "URL too long (possible spam)", urls)
		}
	}

	if checkKeywords {
		if ks := ScoreKeywords(text, sensitivity); ks.Spam {
			return reject(CheckKeywords, ks.Reason(), urls)
		}
		if a, b, ok := KeywordCombination(text); ok {
			return reject(CheckKeywordCombo, "Suspicious keyword combination: "+a+" + "+b, urls)
		}
	}

	if pct := SpecialCharPercent(text); pct > MaxSpecialPercent {
		return reject(CheckSpecialChars, "Content contains excessive special characters ("+formatPct(pct)+"%)", urls)
	}

	if pattern := Repetition(text); pattern != "" {
		return reject(CheckRepetition, "Content contains suspicious repetition: "+pattern, urls)
	}

	if pct, alpha := UpperPercent(text); pct > MaxUpperPercent && alpha > MinAlphaForCaps {
		return reject(CheckAllCaps, "Content is mostly uppercase ("+formatPct(pct)+"%)", urls)
	}

	return Result{Valid: true, URLCount: urls}
}

// EncodingProblem returns a rejection reason, or "" when text is clean.
func EncodingProblem(text string) string {
	if !utf8.ValidString(text) {
		return "Invalid character encoding (not UTF-8)"
	}
	if strings.IndexByte(text, 0) >= 0 {
		return "Content contains null bytes"
	}
	for _, r := range text {
		if isDisallowedControl(r) {
			return "Content contains suspicious control characters"
		}
	}
	if strings.ContainsRune(text, '\u202e') {
		return "Content contains right-to-left override character"
	}
	total, printable := 0, 0
	for _, r := range text {
		total++
		if unicode.IsPrint(r) || unicode.IsSpace(r) {
			printable++
		}
	}
	if total > 0 && float64(printable)/float64(total) < MinPrintableRatio {
		return "Content contains excessive non-printable characters"
	}
	return ""
}

// Tab, LF and CR are allowed.
func isDisallowedControl(r rune) bool {
	switch {
	case r == '\t' || r == '\n' || r == '\r':
		return false
	case r < 0x20 || r == 0x7F:
		return true
	}
	return false
}

// SpecialCharPercent is the share of runes that are neither letters, digits
// nor whitespace, rounded to two decimals.
func SpecialCharPercent(text string) float64 {
	total, special := 0, 0
	for _, r := range text {
		total++
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsSpace(r) {
			special++
		}
	}
	if total == 0 {
		return 0
	}
	return round2(float64(special) / float64(total) * 100)
}

// UpperPercent returns the share of ASCII letters that are uppercase and the
// number of ASCII letters.
func UpperPercent(text string) (pct float64, alpha int) {
	upper := 0
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c >= 'A' && c <= 'Z':
			upper++
			alpha++
		case c >= 'a' && c <= 'z':
			alpha++
		}
	}
	if alpha == 0 {
		return 0, 0
	}
	return round2(float64(upper) / float64(alpha) * 100), alpha
}

// IsAllCaps reports whether text would trip the all-caps check.
func IsAllCaps(text string) bool {
	pct, alpha := UpperPercent(text)
	return pct > MaxUpperPercent && alpha > MinAlphaForCaps
}

// Repetition returns a description of the first suspicious repetition in
// text, or "".
func Repetition(text string) string {
	if run := longestRun(text); run != "" {
		return `Excessive character repetition: "` + truncateRunes(run, repeatExcerptRunes) + `..."`
	}
	if w := repeatedWord(text); w != "" {
		return `Excessive word repetition: "` + w + `"`
	}
	return ""
}

// longestRun returns the first run of at least CharRepeatRun identical runes.
func longestRun(text string) string {
	start, n := 0, 0
	var prev rune = -1
	for i, r := range text {
		if r == prev {
			n++
		} else {
			if n >= CharRepeatRun {
				return text[start:i]
			}
			start, n, prev = i, 1, r
		}
	}
	if n >= CharRepeatRun {
		return text[start:]
	}
	return ""
}

// repeatedWord finds a word repeated WordRepeatRun times in a row separated
// only by whitespace. Comparison is case-insensitive.
func repeatedWord(text string) string {
	locs := wordRe.FindAllStringIndex(text, -1)
	for i := 0; i+WordRepeatRun <= len(locs); i++ {
		first := text[locs[i][0]:locs[i][1]]
		j := i + 1
		for ; j < i+WordRepeatRun; j++ {
			gap := text[locs[j-1][1]:locs[j][0]]
			if gap == "" || strings.TrimSpace(gap) != "" {
				break
			}
			if !strings.EqualFold(first, text[locs[j][0]:locs[j][1]]) {
				break
			}
		}
		if j == i+WordRepeatRun {
			return first
		}
	}
	return ""
}

func truncateRunes(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func formatPct(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
