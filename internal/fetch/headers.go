package fetch

import (
	"math/rand/v2"
	"net/http"
)

// DefaultUserAgents is the static set of desktop browser identities rotated
// across requests.
var DefaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Edge/120.0.0.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Safari/605.1.15",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
}

// BrowserHeaders returns the request headers of an ordinary browser page
// load with a User-Agent picked at random from agents. An empty agents
// list uses DefaultUserAgents. Accept-Encoding is left to the transport so
// compressed bodies are decoded transparently.
func BrowserHeaders(agents []string) http.Header {
	if len(agents) == 0 {
		agents = DefaultUserAgents
	}

	h := make(http.Header)
	h.Set("User-Agent", agents[rand.IntN(len(agents))]) //nolint:gosec // not security sensitive
	h.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	h.Set("Accept-Language", "ar,en-US;q=0.9,en;q=0.8")
	h.Set("Upgrade-Insecure-Requests", "1")
	h.Set("Sec-Fetch-Dest", "document")
	h.Set("Sec-Fetch-Mode", "navigate")
	h.Set("Sec-Fetch-Site", "none")
	h.Set("Cache-Control", "max-age=0")
	return h
}
