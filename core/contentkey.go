package core

import (
	"encoding/hex"
	"net/url"
	"strings"

	"github.com/go-crypt/x/blake2b"
)

// contentHashSize is the digest length in bytes for content hashes.
// 128 bits keeps accidental collisions out of reach at knowledge-base scale.
const contentHashSize = 16

// ContentHashFromText returns the dedup hash for inline text content.
// Identical text (modulo surrounding whitespace) produces identical hashes.
func ContentHashFromText(text string) string {
	return hashHex(strings.TrimSpace(text))
}

// ContentHashFromURL returns the dedup hash for a URL submission.
// The URL is normalized first so trivially different spellings of the same
// address (scheme/host case, default ports, trailing slash, fragments)
// hash identically. A URL that does not parse is hashed as-is.
func ContentHashFromURL(rawURL string) string {
	return hashHex(NormalizeURL(rawURL))
}

// NormalizeURL canonicalizes a URL for deduplication purposes.
func NormalizeURL(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	// Strip default ports.
	if (u.Scheme == "http" && strings.HasSuffix(u.Host, ":80")) ||
		(u.Scheme == "https" && strings.HasSuffix(u.Host, ":443")) {
		u.Host = u.Host[:strings.LastIndex(u.Host, ":")]
	}

	u.Path = strings.TrimSuffix(u.Path, "/")

	return u.String()
}

func hashHex(s string) string {
	h, _ := blake2b.New(contentHashSize, nil)
	h.Write([]byte(s))
	return hex.EncodeToString(h.Sum(nil))
}
