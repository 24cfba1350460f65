package adapter

import (
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// newRetryClient creates a new HTTP client with retry capabilities.
// Retries are bounded with exponential backoff; only the naturally
// idempotent quote and status queries go through it.
func newRetryClient() *retryablehttp.Client {
	c := retryablehttp.NewClient()
	c.RetryMax = 3
	c.RetryWaitMin = 500 * time.Millisecond
	c.RetryWaitMax = 3 * time.Second
	c.Logger = nil
	return c
}

// StandardClient returns a standard http.Client backed by bounded retries,
// shared by all protocol adapters.
func StandardClient() *http.Client {
	return newRetryClient().StandardClient()
}
