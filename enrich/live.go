package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"
)

// HTTPFetcher queries a RapidAPI-style app store search endpoint.
type HTTPFetcher struct {
	client *http.Client
	url    string
	host   string
	apiKey string
}

// NewHTTPFetcher builds a live fetcher for the given provider host.
func NewHTTPFetcher(apiKey, host string, timeout time.Duration) *HTTPFetcher {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	return &HTTPFetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		url:    fmt.Sprintf("https://%s/v1/app-store-api/search", host),
		host:   host,
		apiKey: apiKey,
	}
}

// Fetch issues one search request and decodes the candidate list.
func (f *HTTPFetcher) Fetch(ctx context.Context, req Request) (*Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	query := url.Values{}
	query.Set("query", req.Query)
	if req.Country != "" {
		query.Set("country", req.Country)
	}
	httpReq.URL.RawQuery = query.Encode()
	httpReq.Header.Set("X-RapidAPI-Key", f.apiKey)
	httpReq.Header.Set("X-RapidAPI-Host", f.host)

	resp, err := f.client.Do(httpReq)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return nil, ErrUnauthorized{Err: fmt.Errorf("http status %d", resp.StatusCode)}
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited{Err: fmt.Errorf("http status %d", resp.StatusCode)}
	default:
		return nil, ErrMalformed{Err: fmt.Errorf("unexpected http status %d", resp.StatusCode)}
	}

	var payload struct {
		Data []Candidate `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, ErrMalformed{Err: fmt.Errorf("decode response: %w", err)}
	}

	return &Response{Candidates: payload.Data}, nil
}

func classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout{Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout{Err: err}
	}
	return ErrConnection{Err: err}
}
