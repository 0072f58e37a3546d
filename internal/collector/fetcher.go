package collector

import (
	"net/http"
	"net/url"
	"time"

	"LevelSentinel/internal/model"
)

// Fetcher defines the interface for fetching primary-timeframe bars.
type Fetcher interface {
	// FetchBars returns up to limit of the most recent bars of the given
	// interval (e.g. "15m"), oldest first. The last bar may still be forming.
	FetchBars(symbol, interval string, limit int) ([]model.Bar, error)
	Name() string
}

// newHTTPClient returns a client routed through proxyURL when it parses.
func newHTTPClient(proxyURL string) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{Timeout: 30 * time.Second, Transport: transport}
}
