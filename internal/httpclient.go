package internal

import (
	"net"
	"net/http"
	"sync"
	"time"
)

var clientPool sync.Map

// GetHTTPClient returns a pooled http.Client per base URL with a tuned
// transport. Timeouts live here; the sync core above has none of its own.
func GetHTTPClient(baseURL string, timeout time.Duration) *http.Client {
	rawClient, _ := clientPool.LoadOrStore(baseURL, &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	})

	return rawClient.(*http.Client)
}
