package useragent

import "testing"

const chrome = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

func TestCheck(t *testing.T) {
	cases := []struct {
		name, ua, reason string
	}{
		{"empty", "", "User-Agent empty or too short"},
		{"short", "Mozilla", "User-Agent empty or too short"},
		{"browser", chrome, ""},
		{"allowed crawler", "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)", ""},
		{"blacklisted tool", "curl/8.4.0", "User-Agent matches blacklist pattern: curl"},
		{"case insensitive", "Python-Requests/2.31", "User-Agent matches blacklist pattern: python-requests"},
		{"digits", "1234567890123 ab", "User-Agent contains excessive numbers"},
		{"sql", "Mozilla/5.0 UNION SELECT password FROM users", "User-Agent contains SQL injection attempt"},
		{"sql word boundary", "Mozilla/5.0 (CreativeSuite; Updater)", ""},
		{"xss", "Mozilla/5.0 <script>alert(1)</script>", "User-Agent contains XSS attempt"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			res := Check(c.ua)
			if c.reason == "" {
				if res.Blocked {
					t.Fatalf("unexpected block: %s", res.Reason)
				}
				return
			}
			if !res.Blocked || res.Reason != c.reason {
				t.Fatalf("Check(%q) = %+v; want %q", c.ua, res, c.reason)
			}
		})
	}
}

func TestAllowlistBeatsBlacklist(t *testing.T) {
	// "slurp" is allowed even though "spider@" is a blacklisted signature.
	ua := "Mozilla/5.0 (compatible; Yahoo! Slurp; spider@example.com)"
	if res := Check(ua); res.Blocked {
		t.Fatalf("allowed crawler blocked: %s", res.Reason)
	}
	if !IsAllowedCrawler("UptimeRobot/2.0") || IsAllowedCrawler(chrome) {
		t.Fatalf("IsAllowedCrawler mismatch")
	}
}
