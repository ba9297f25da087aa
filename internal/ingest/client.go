package ingest

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

func NewHTTPClient(timeout time.Duration) HTTPClient {
	return &http.Client{Timeout: timeout}
}

// rateLimitedClient throttles outbound calls to the ads platform so report
// pulls stay under the API quota.
type rateLimitedClient struct {
	c       HTTPClient
	limiter *rate.Limiter
}

func NewRateLimitedClient(c HTTPClient, requestsPerSecond float64, burst int) HTTPClient {
	return &rateLimitedClient{
		c:       c,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

func (r *rateLimitedClient) Do(req *http.Request) (*http.Response, error) {
	if err := r.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return r.c.Do(req)
}
