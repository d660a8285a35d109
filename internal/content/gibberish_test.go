package content

import "testing"

func TestIsGibberish(t *testing.T) {
	cases := []struct {
		text string
		kind FieldKind
		want bool
	}{
		{"TnjBNulLnzQAwdFEMoomDyl", FieldName, true},
		{"John Smith", FieldName, false},
		{"Maria Gonzalez", FieldName, false},
		{"pRYOONQQvytDyHcAoUFXNNVt", FieldMessage, true},
		{"Bob", FieldName, false},
		{"Is the bike still for sale?", FieldMessage, false},
		{"Strengths", FieldMessage, true},
		{"aeiouaeiouae", FieldMessage, true},
		{"heLLo thEre fRiEnD", FieldMessage, true},
	}
	for _, c := range cases {
		if got := IsGibberish(c.text, c.kind); got != c.want {
			t.Errorf("IsGibberish(%q, %d) = %v; want %v", c.text, c.kind, got, c.want)
		}
	}
}

func TestIsRandomChars(t *testing.T) {
	if !IsRandomChars("xK9mQ2pL7vR4") {
		t.Fatalf("alternating case token should be random")
	}
	if !IsRandomChars("bcdfghjklmnp") {
		t.Fatalf("vowel-free token should be random")
	}
	if IsRandomChars("Hello World") {
		t.Fatalf("ordinary words are not random")
	}
	if IsRandomChars("xK9mQ") {
		t.Fatalf("short strings are never random")
	}
}

func TestIsPureGibberish(t *testing.T) {
	if !IsPureGibberish("aBcDeFgHiJkLmNoPqRsTuV") {
		t.Fatalf("single random token should be pure gibberish")
	}
	if IsPureGibberish("aBcDeFgHiJ kLmNoPqRsTuV") {
		t.Fatalf("text with spaces is never pure gibberish")
	}
	if IsPureGibberish("aBcDeFgHiJ") {
		t.Fatalf("short tokens are not pure gibberish")
	}
}

func TestCountScripts(t *testing.T) {
	if got := CountScripts("Hello Привет 你好"); got != 3 {
		t.Fatalf("CountScripts = %d; want 3", got)
	}
	if got := CountScripts("123 !!!"); got != 0 {
		t.Fatalf("CountScripts = %d; want 0", got)
	}
	if got := CountScripts("こんにちは 안녕 漢字"); got != 1 {
		t.Fatalf("CJK scripts count as one family, got %d", got)
	}
}

func TestContainsFold(t *testing.T) {
	if !ContainsFold("Buy CHEAP Watches", "cheap watches") {
		t.Fatalf("fold match expected")
	}
	if ContainsFold("anything", "  ") {
		t.Fatalf("blank needle never matches")
	}
}
