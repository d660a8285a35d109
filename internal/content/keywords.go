package content

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
)

// Keyword weights.
const (
	KeywordPoints = 1
	PhrasePoints  = 3
	maxReasonList = 3
)

// SpamKeywords are matched as case-insensitive substrings.
var SpamKeywords = []string{
	// pharmaceutical
	"viagra", "cialis", "levitra", "xanax", "valium", "phentermine", "tramadol",
	"ambien", "adipex", "soma", "cheap pills", "online pharmacy", "buy pills",
	"prescription drugs", "no prescription",
	// gambling
	"online casino", "poker online", "casino bonus", "slot machine", "blackjack",
	"roulette", "casino games", "free casino", "win money", "jackpot",
	// money
	"make money fast", "earn money online", "work from home", "get rich quick",
	"easy money", "free money", "cash advance", "payday loan", "quick loan",
	"bad credit ok", "debt consolidation", "credit repair", "binary options",
	"forex trading", "cryptocurrency investment",
	// adult
	"xxx", "porn", "adult dating", "sex chat", "webcam girls", "live girls",
	"hot girls", "meet singles",
	// seo
	"seo services", "link building", "backlinks", "increase traffic", "pagerank",
	"search engine optimization", "buy backlinks", "cheap seo",
	// counterfeit
	"replica watches", "replica handbags", "fake rolex", "designer replica",
	"louis vuitton replica", "gucci replica", "coach outlet",
	// weight loss
	"weight loss", "lose weight fast", "diet pills", "fat burner",
	"garcinia cambogia", "green coffee", "acai berry",
	// support scams
	"tech support", "computer repair", "virus removal", "windows support",
	"call now", "toll free",
	// marketing
	"click here", "buy now", "order now", "limited time", "act now", "hurry up",
	"dont miss", "special offer", "exclusive deal", "risk free",
	"money back guarantee", "free trial", "no obligation",
	"satisfaction guaranteed", "lowest price", "best price", "cheap", "discount",
	"save money", "amazing deal",
	// mlm
	"mlm", "multi level marketing", "pyramid scheme", "network marketing",
	"home based business", "be your own boss", "financial freedom",
	// list hygiene
	"unsubscribe", "remove email", "opt out", "stop receiving",
	// prizes
	"congratulations", "winner", "selected", "claim your prize", "you won",
	"free gift", "gift card", "award",
}

// ExactPhrases must match on word boundaries and weigh more.
var ExactPhrases = []string{
	"buy now", "click here", "act now", "order now", "call now", "limited time", "free trial",
}

// Combinations are word pairs that signal spam when both appear.
var Combinations = [][2]string{
	{"free", "money"},
	{"click", "here"},
	{"buy", "now"},
	{"limited", "time"},
	{"act", "now"},
	{"earn", "money"},
	{"work", "home"},
	{"make", "money"},
	{"online", "casino"},
	{"cheap", "pills"},
}

var (
	wordRe    = regexp.MustCompile(`\w+`)
	phraseRes = compileWords(ExactPhrases)
	comboRes  = func() map[string]*regexp.Regexp {
		var words []string
		for _, c := range Combinations {
			words = append(words, c[0], c[1])
		}
		return compileWords(words)
	}()
)

func compileWords(words []string) map[string]*regexp.Regexp {
	m := make(map[string]*regexp.Regexp, len(words))
	for _, w := range words {
		m[w] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(w) + `\b`)
	}
	return m
}

// Threshold returns the score at which content counts as spam for a
// sensitivity level (1 low, 2 medium, 3 high). Unknown levels use medium.
func Threshold(sensitivity int) int {
	switch sensitivity {
	case SensitivityLow:
		return 5
	case SensitivityHigh:
		return 1
	}
	return 3
}

// KeywordScore is the outcome of ScoreKeywords.
type KeywordScore struct {
	Score     int
	Matches   []string
	Threshold int
	Spam      bool
}

// Reason renders the rejection text, listing at most three matches.
func (k KeywordScore) Reason() string {
	shown := k.Matches
	if len(shown) > maxReasonList {
		shown = shown[:maxReasonList]
	}
	s := "Spam keywords detected (" + strconv.Itoa(k.Score) + " points): " + strings.Join(shown, ", ")
	if extra := len(k.Matches) - maxReasonList; extra > 0 {
		s += " and " + strconv.Itoa(extra) + " more"
	}
	return s
}

// ScoreKeywords sums keyword and exact-phrase points for text.
func ScoreKeywords(text string, sensitivity int) KeywordScore {
	ks := KeywordScore{Threshold: Threshold(sensitivity)}
	if text == "" {
		return ks
	}
	folded := Fold(text)
	for _, kw := range SpamKeywords {
		if strings.Contains(folded, kw) {
			ks.Matches = append(ks.Matches, kw)
			ks.Score += KeywordPoints
		}
	}
	for _, p := range ExactPhrases {
		if phraseRes[p].MatchString(text) {
			ks.Matches = append(ks.Matches, p+" (exact)")
			ks.Score += PhrasePoints
		}
	}
	ks.Spam = ks.Score >= ks.Threshold
	return ks
}

// KeywordCombination returns the first suspicious word pair present in text.
func KeywordCombination(text string) (string, string, bool) {
	for _, c := range Combinations {
		if comboRes[c[0]].MatchString(text) && comboRes[c[1]].MatchString(text) {
			return c[0], c[1], true
		}
	}
	return "", "", false
}

// Fold returns the Unicode case-folded form of s. A Caser is stateful, so a
// fresh one is used per call.
func Fold(s string) string {
	return cases.Fold().String(s)
}

// ContainsFold reports whether needle occurs in haystack ignoring case.
func ContainsFold(haystack, needle string) bool {
	needle = strings.TrimSpace(needle)
	if needle == "" {
		return false
	}
	return strings.Contains(Fold(haystack), Fold(needle))
}
