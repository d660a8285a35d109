package content

import (
	"strings"
	"unicode/utf8"
)

// FieldKind selects the gibberish thresholds for a field.
type FieldKind int

const (
	FieldMessage FieldKind = iota
	FieldName
)

const (
	minGibberishLen   = 6
	maxNameNoSpace    = 15
	minLetters        = 8
	minVowelRatio     = 0.15
	maxVowelRatio     = 0.70
	consonantRun      = 5
	minCaseMixLen     = 10
	maxMidCapsRatio   = 0.25
	minRandomLen      = 10
	maxCaseFlipRatio  = 0.40
	minRandomVowels   = 0.20
	minPureGibberLen  = 20
	consonantsLetters = "bcdfghjklmnpqrstvwxyzBCDFGHJKLMNPQRSTVWXYZ"
)

func isASCIILetter(c byte) bool { return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' }
func isLower(c byte) bool       { return c >= 'a' && c <= 'z' }
func isUpper(c byte) bool       { return c >= 'A' && c <= 'Z' }
func isVowel(c byte) bool       { return strings.IndexByte("aeiouAEIOU", c) >= 0 }
func isConsonant(c byte) bool   { return strings.IndexByte(consonantsLetters, c) >= 0 }

// IsGibberish reports whether text looks machine generated. Text shorter than
// six characters is never gibberish.
func IsGibberish(text string, kind FieldKind) bool {
	text = strings.TrimSpace(text)
	n := utf8.RuneCountInString(text)
	if n < minGibberishLen {
		return false
	}

	// Real full names have a space between first and last name.
	if kind == FieldName && n > maxNameNoSpace && !strings.Contains(text, " ") {
		return true
	}

	letters, vowels := 0, 0
	for i := 0; i < len(text); i++ {
		if isASCIILetter(text[i]) {
			letters++
			if isVowel(text[i]) {
				vowels++
			}
		}
	}
	if letters > minLetters {
		ratio := float64(vowels) / float64(letters)
		if ratio < minVowelRatio || ratio > maxVowelRatio {
			return true
		}
	}

	run := 0
	for i := 0; i < len(text); i++ {
		if isConsonant(text[i]) {
			run++
			if run >= consonantRun {
				return true
			}
		} else {
			run = 0
		}
	}

	// Uppercase letters directly after a lowercase one: "rAnDoM".
	midCaps := 0
	for i := 1; i < len(text); i++ {
		if isUpper(text[i]) && isLower(text[i-1]) {
			midCaps++
		}
	}
	return n > minCaseMixLen && float64(midCaps)/float64(max(1, letters)) > maxMidCapsRatio
}

// IsRandomChars reports whether text is a random character string, such as an
// obfuscated token pasted into a name field.
func IsRandomChars(text string) bool {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) < minRandomLen {
		return false
	}

	transitions, flips := 0, 0
	vowels, consonants := 0, 0
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case isVowel(c):
			vowels++
		case isConsonant(c):
			consonants++
		}
		if i > 0 && isASCIILetter(c) && isASCIILetter(text[i-1]) {
			transitions++
			if isUpper(c) != isUpper(text[i-1]) {
				flips++
			}
		}
	}
	if transitions > 0 && float64(flips)/float64(transitions) > maxCaseFlipRatio {
		return true
	}
	if total := vowels + consonants; total > 0 && float64(vowels)/float64(total) < minRandomVowels {
		return true
	}
	return false
}

// IsPureGibberish reports whether a message is one long random token.
func IsPureGibberish(text string) bool {
	text = strings.TrimSpace(text)
	if strings.ContainsAny(text, " \t\r\n") {
		return false
	}
	return utf8.RuneCountInString(text) > minPureGibberLen && IsRandomChars(text)
}
