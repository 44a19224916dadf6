package core

import "testing"

func TestContentHashFromTextIgnoresSurroundingWhitespace(t *testing.T) {
	a := ContentHashFromText("hello world")
	b := ContentHashFromText("  hello world \n")
	if a != b {
		t.Fatalf("Expected equal hashes, got %s and %s", a, b)
	}

	c := ContentHashFromText("hello  world")
	if a == c {
		t.Fatal("Different content should hash differently")
	}
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases scheme and host", "HTTPS://Example.COM/Path", "https://example.com/Path"},
		{"strips fragment", "https://example.com/page#section", "https://example.com/page"},
		{"strips default https port", "https://example.com:443/page", "https://example.com/page"},
		{"strips default http port", "http://example.com:80/page", "http://example.com/page"},
		{"keeps custom port", "https://example.com:8443/page", "https://example.com:8443/page"},
		{"trims trailing slash", "https://example.com/page/", "https://example.com/page"},
		{"trims surrounding whitespace", "  https://example.com/a  ", "https://example.com/a"},
		{"keeps query", "https://example.com/a?q=1", "https://example.com/a?q=1"},
		{"unparseable passes through", "not a url", "not a url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeURL(tt.in); got != tt.want {
				t.Fatalf("NormalizeURL(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestContentHashFromURLEquivalentSpellings(t *testing.T) {
	a := ContentHashFromURL("https://Example.com/docs/")
	b := ContentHashFromURL("https://example.com:443/docs#intro")
	if a != b {
		t.Fatal("Equivalent URL spellings should hash identically")
	}

	c := ContentHashFromURL("https://example.com/docs?page=2")
	if a == c {
		t.Fatal("Different query strings should hash differently")
	}
}
