package ipresolve

import (
	"net/http/httptest"
	"reflect"
	"testing"
)

func TestResolve_HeaderPriority(t *testing.T) {
	r := httptest.NewRequest("POST", "/", nil)
	r.RemoteAddr = "10.0.0.1:5555"
	r.Header.Set("X-Forwarded-For", "198.51.100.7, 10.0.0.2")
	r.Header.Set("X-Real-IP", "203.0.113.9")

	rv := Resolver{TrustHeaders: true}
	if got := rv.Resolve(r); got != "203.0.113.9" {
		t.Fatalf("X-Real-IP should win over X-Forwarded-For, got %q", got)
	}

	r.Header.Set("CF-Connecting-IP", "192.0.2.1")
	if got := rv.Resolve(r); got != "192.0.2.1" {
		t.Fatalf("CDN header should win, got %q", got)
	}
}

func TestResolve_ChainLeftMostAndFallthrough(t *testing.T) {
	r := httptest.NewRequest("POST", "/", nil)
	r.RemoteAddr = "10.0.0.1:5555"
	r.Header.Set("X-Real-IP", "not-an-ip")
	r.Header.Set("X-Forwarded-For", " 198.51.100.7 , 10.0.0.2")

	rv := Resolver{TrustHeaders: true}
	if got := rv.Resolve(r); got != "198.51.100.7" {
		t.Fatalf("invalid header must fall through to the next; got %q", got)
	}
}

func TestResolve_UntrustedUsesRemoteAddr(t *testing.T) {
	r := httptest.NewRequest("POST", "/", nil)
	r.RemoteAddr = "[2001:db8::1]:443"
	r.Header.Set("X-Forwarded-For", "198.51.100.7")
	if got := (Resolver{}).Resolve(r); got != "2001:db8::1" {
		t.Fatalf("got %q", got)
	}
}

func TestResolve_Unknown(t *testing.T) {
	r := httptest.NewRequest("POST", "/", nil)
	r.RemoteAddr = "pipe"
	if got := (Resolver{TrustHeaders: true}).Resolve(r); got != "" {
		t.Fatalf("expected unknown address, got %q", got)
	}
	if got := (Resolver{}).Resolve(nil); got != "" {
		t.Fatalf("nil request must resolve to empty")
	}
}

func TestSanitize(t *testing.T) {
	cases := map[string]string{
		"  203.0.113.5 ":                      "203.0.113.5",
		"203.0.113.5:8080":                    "203.0.113.5",
		"[2001:db8::1]:4711":                  "2001:db8::1",
		`for="[2001:db8::2]:4711";proto=http`: "2001:db8::2",
		"for=192.0.2.60;by=203.0.113.43":      "192.0.2.60",
		"proto=https":                         "",
		"::ffff:192.0.2.128":                  "192.0.2.128",
		"999.1.1.1":                           "",
		"":                                    "",
	}
	for in, want := range cases {
		if got := Sanitize(in); got != want {
			t.Errorf("Sanitize(%q) = %q; want %q", in, got, want)
		}
	}
}

func TestIsBehindProxy(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	if IsBehindProxy(r.Header) {
		t.Fatalf("no proxy headers yet")
	}
	r.Header.Set("Via", "1.1 varnish")
	if !IsBehindProxy(r.Header) {
		t.Fatalf("Via indicates a proxy")
	}
}

func TestProxyChain(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.0.0.2:1234"
	r.Header.Set("X-Forwarded-For", "198.51.100.7, junk, 10.0.0.2")
	want := []string{"198.51.100.7", "10.0.0.2"}
	if got := ProxyChain(r); !reflect.DeepEqual(got, want) {
		t.Fatalf("ProxyChain = %v; want %v", got, want)
	}
}

func TestVersionPrivateValid(t *testing.T) {
	if Version("192.0.2.1") != 4 || Version("2001:db8::1") != 6 || Version("x") != 0 {
		t.Fatalf("Version mismatch")
	}
	if !IsPrivate("10.1.2.3") || !IsPrivate("127.0.0.1") || !IsPrivate("fe80::1") || IsPrivate("8.8.8.8") {
		t.Fatalf("IsPrivate mismatch")
	}
	if !IsValid("::1") || IsValid("1.2.3") {
		t.Fatalf("IsValid mismatch")
	}
}

func TestMatches(t *testing.T) {
	cases := []struct {
		ip, pattern string
		want        bool
	}{
		{"192.168.1.44", "192.168.1.*", true},
		{"192.168.2.44", "192.168.1.*", false},
		{"10.20.30.40", "10.0.0.0/8", true},
		{"11.0.0.1", "10.0.0.0/8", false},
		{"2001:db8::5", "2001:db8::/32", true},
		{"2001:db8::5", "2001:db8::5", true},
		{"203.0.113.1", "203.0.113.1", true},
		{"203.0.113.1", "203.0.113.2", false},
		{"203.0.113.1", "", false},
		{"2001:db8::5", "2001.*.*.*", false},
	}
	for _, c := range cases {
		if got := Matches(c.ip, c.pattern); got != c.want {
			t.Errorf("Matches(%q, %q) = %v; want %v", c.ip, c.pattern, got, c.want)
		}
	}
}
