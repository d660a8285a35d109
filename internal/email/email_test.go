package email

import (
	"strings"
	"testing"
)

func TestValidatePatterns(t *testing.T) {
	cases := []struct {
		addr   string
		reason string
	}{
		{"", "Email is empty"},
		{"no-at-sign", "Invalid email format"},
		{"@example.com", "Invalid email format"},
		{"user@[192.168.0.1]", "Email uses IP address as domain"},
		{"user@10.0.0.1", "Email uses IP address as domain"},
		{strings.Repeat("a", 65) + "@example.com", "Email local part too long"},
		{"x@a.b", "Email domain too short"},
		{"not valid@example.com", "Invalid email format"},
		{"1234567890a@example.com", "Email contains excessive numbers"},
		{"john++spam@example.com", "Email contains suspicious character pattern"},
		{"jane.doe@example.com", ""},
		{"  user7@Example.ORG  ", ""},
	}
	for _, c := range cases {
		res := ValidatePatterns(c.addr)
		if c.reason == "" {
			if !res.Valid {
				t.Errorf("ValidatePatterns(%q) rejected: %s", c.addr, res.Reason)
			}
			continue
		}
		if res.Valid || res.Reason != c.reason {
			t.Errorf("ValidatePatterns(%q) = %+v; want reason %q", c.addr, res, c.reason)
		}
	}
}

func TestDisposableAndFree(t *testing.T) {
	if !IsDisposable("Someone@Mailinator.COM") {
		t.Fatalf("mailinator must be disposable")
	}
	if IsDisposable("someone@example.com") || IsDisposable("nope") {
		t.Fatalf("false positive on disposable lookup")
	}
	if !IsFree("x@gmail.com") || IsFree("x@example.com") {
		t.Fatalf("free provider lookup mismatch")
	}
	if IsFree("x@sub.gmail.com") {
		t.Fatalf("domain matching is exact")
	}
}

func TestDomain(t *testing.T) {
	if got := Domain("A@B@Example.org"); got != "example.org" {
		t.Fatalf("Domain = %q", got)
	}
	if got := Domain("missing"); got != "" {
		t.Fatalf("Domain = %q; want empty", got)
	}
}
