package content

import (
	"unicode"
)

// scriptTables groups the writing systems counted by CountScripts. CJK covers
// Han, Hiragana, Katakana and Hangul as one script family.
var scriptTables = [][]*unicode.RangeTable{
	{unicode.Latin},
	{unicode.Cyrillic},
	{unicode.Han, unicode.Hiragana, unicode.Katakana, unicode.Hangul},
	{unicode.Arabic},
	{unicode.Hebrew},
	{unicode.Thai},
	{unicode.Greek},
}

// CountScripts returns how many distinct writing systems appear in text.
// Mixing many scripts in one message is typical of spam templates.
func CountScripts(text string) int {
	seen := make([]bool, len(scriptTables))
	count := 0
	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		for i, tables := range scriptTables {
			if !seen[i] && unicode.In(r, tables...) {
				seen[i] = true
				count++
				break
			}
		}
		if count == len(scriptTables) {
			break
		}
	}
	return count
}
