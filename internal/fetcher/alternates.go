package fetcher

import (
	"net/url"
	"strings"
)

// alternatePaths maps known domains to fallback paths worth trying when the
// requested page keeps failing. They point at listing/markets pages of the
// same site which tend to be less aggressively protected.
var alternatePaths = map[string][]string{
	"coinmarketcap.com": {
		"/trending-cryptocurrencies",
		"/cryptocurrencies",
		"/markets",
	},
	"finance.yahoo.com": {
		"/quote",
		"/markets",
		"/screener",
	},
	"github.com": {
		"/trending",
		"/explore",
		"/topics",
	},
}

// alternateURLs returns the alternate URL table entries for the same domain,
// or nil when the domain is unknown.
func alternateURLs(rawURL string) []string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil
	}

	host := parsed.Hostname()
	for domain, paths := range alternatePaths {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			alternates := make([]string, 0, len(paths))
			for _, p := range paths {
				alternates = append(alternates, parsed.Scheme+"://"+parsed.Host+p)
			}
			return alternates
		}
	}
	return nil
}
