package util

import (
	"net/http"
	"net/url"
	"testing"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		limit int
		want  string
	}{
		{"hello", 10, "hello"},
		{"hello", 3, "hel"},
		{"hello", 0, "hello"},
		{"₹1,00,000", 2, "₹1"},
		{"", 5, ""},
	}
	for _, tt := range tests {
		if got := Truncate(tt.in, tt.limit); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.limit, got, tt.want)
		}
	}
}

func TestSlug(t *testing.T) {
	tests := map[string]string{
		"CLM/2024/00123": "clm-2024-00123",
		"  Star Health ": "star-health",
		"///":            "claim",
		"":               "claim",
	}
	for in, want := range tests {
		if got := Slug(in); got != want {
			t.Errorf("Slug(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNewProxyFunc(t *testing.T) {
	proxy := NewProxyFunc("http://proxy:3128", "http://secure-proxy:3128", "localhost, .internal")

	check := func(rawURL, want string) {
		t.Helper()
		u, _ := url.Parse(rawURL)
		got, err := proxy(&http.Request{URL: u})
		if err != nil {
			t.Fatalf("proxy(%s): %v", rawURL, err)
		}
		if want == "" {
			if got != nil {
				t.Errorf("proxy(%s) = %v, want direct", rawURL, got)
			}
			return
		}
		if got == nil || got.String() != want {
			t.Errorf("proxy(%s) = %v, want %s", rawURL, got, want)
		}
	}

	check("http://api.mistral.ai/v1", "http://proxy:3128")
	check("https://api.mistral.ai/v1", "http://secure-proxy:3128")
	check("http://localhost:11434", "")
	check("https://llm.internal/v1", "")
}
