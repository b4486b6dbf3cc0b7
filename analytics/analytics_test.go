package analytics

import "testing"

func TestParseUserAgent(t *testing.T) {
	tests := []struct {
		name                string
		ua                  string
		browser, os, device string
	}{
		{"chrome windows", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36", "Chrome", "Windows", "Desktop"},
		{"edge", "Mozilla/5.0 (Windows NT 10.0) AppleWebKit/537.36 Chrome/120.0 Safari/537.36 Edg/120.0", "Edge", "Windows", "Desktop"},
		{"firefox linux", "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0", "Firefox", "Linux", "Desktop"},
		{"safari iphone", "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 Version/17.0 Mobile/15E148 Safari/604.1", "Safari", "iOS", "Mobile"},
		{"ipad", "Mozilla/5.0 (iPad; CPU OS 17_0 like Mac OS X) AppleWebKit/605.1.15 Version/17.0 Mobile/15E148 Safari/604.1", "Safari", "iOS", "Tablet"},
		{"android chrome", "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 Chrome/120.0 Mobile Safari/537.36", "Chrome", "Android", "Mobile"},
		{"opera mac", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 Chrome/120.0 Safari/537.36 OPR/106.0", "Opera", "macOS", "Desktop"},
		{"empty", "", "Other", "Other", "Desktop"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, o, d := ParseUserAgent(tt.ua)
			if b != tt.browser || o != tt.os || d != tt.device {
				t.Errorf("ParseUserAgent() = (%q, %q, %q), want (%q, %q, %q)", b, o, d, tt.browser, tt.os, tt.device)
			}
		})
	}
}

func TestBotName(t *testing.T) {
	tests := []struct {
		ua, want string
	}{
		{"Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)", "Googlebot"},
		{"Mozilla/5.0 (compatible; bingbot/2.0)", "Bingbot"},
		{"facebookexternalhit/1.1", "Facebook"},
		{"curl/8.4.0", "Other Bot"},
		{"Go-http-client/1.1", "Other Bot"},
		{"", "Unknown"},
		{"Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0", ""},
	}
	for _, tt := range tests {
		if got := BotName(tt.ua); got != tt.want {
			t.Errorf("BotName(%q) = %q, want %q", tt.ua, got, tt.want)
		}
	}
}

func TestCleanReferrer(t *testing.T) {
	tests := []struct {
		ref, own, want string
	}{
		{"", "example.org", "Direct"},
		{"https://www.google.com/search?q=shield", "example.org", "Google"},
		{"https://duckduckgo.com/", "example.org", "DuckDuckGo"},
		{"https://news.ycombinator.com/item?id=1", "example.org", "news.ycombinator.com"},
		{"https://www.partner.org/links", "example.org", "partner.org"},
		{"https://example.org/blog/", "example.org", ""},
		{"http://localhost:3000/about/", "localhost:3000", ""},
		{"not a url", "example.org", "Other"},
	}
	for _, tt := range tests {
		if got := CleanReferrer(tt.ref, tt.own); got != tt.want {
			t.Errorf("CleanReferrer(%q, %q) = %q, want %q", tt.ref, tt.own, got, tt.want)
		}
	}
}

func TestSaltedHashDependsOnSalt(t *testing.T) {
	a := saltedHash("one", "203.0.113.1", "ua")
	b := saltedHash("two", "203.0.113.1", "ua")
	if a == b {
		t.Fatal("different salts produced the same hash")
	}
	if len(a) != 16 {
		t.Fatalf("hash length = %d, want 16", len(a))
	}
	if a != saltedHash("one", "203.0.113.1", "ua") {
		t.Fatal("hash is not deterministic")
	}
}
