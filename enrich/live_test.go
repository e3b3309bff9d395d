package enrich

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
)

const searchURL = "https://api.test/v1/app-store-api/search"

func newMockedFetcher(responder httpmock.Responder) *HTTPFetcher {
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", searchURL, responder)

	fetcher := NewHTTPFetcher("test-key", "api.test", 5*time.Second)
	fetcher.client.Transport = transport
	return fetcher
}

func TestHTTPFetcherDecodesCandidates(t *testing.T) {
	body := `{"data":[{"title":"Some App","category":"GAME","rating":4.4,"review_count":1500,"price":0}]}`

	var gotReq *http.Request
	fetcher := newMockedFetcher(func(req *http.Request) (*http.Response, error) {
		gotReq = req
		return httpmock.NewStringResponse(http.StatusOK, body), nil
	})

	resp, err := fetcher.Fetch(context.Background(), Request{Query: "Some App", Country: "us"})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(resp.Candidates) != 1 {
		t.Fatalf("candidates = %d, want 1", len(resp.Candidates))
	}
	if got := resp.Candidates[0].StringField("title"); got != "Some App" {
		t.Fatalf("title = %q", got)
	}

	if gotReq.URL.Query().Get("query") != "Some App" || gotReq.URL.Query().Get("country") != "us" {
		t.Fatalf("unexpected query: %s", gotReq.URL.RawQuery)
	}
	if gotReq.Header.Get("X-RapidAPI-Key") != "test-key" || gotReq.Header.Get("X-RapidAPI-Host") != "api.test" {
		t.Fatalf("missing provider headers")
	}
}

func TestHTTPFetcherStatusClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(error) bool
	}{
		{
			name:   "rate limited",
			status: http.StatusTooManyRequests,
			check: func(err error) bool {
				var e ErrRateLimited
				return errors.As(err, &e)
			},
		},
		{
			name:   "unauthorized",
			status: http.StatusUnauthorized,
			check: func(err error) bool {
				var e ErrUnauthorized
				return errors.As(err, &e)
			},
		},
		{
			name:   "forbidden",
			status: http.StatusForbidden,
			check: func(err error) bool {
				var e ErrUnauthorized
				return errors.As(err, &e)
			},
		},
		{
			name:   "server error",
			status: http.StatusInternalServerError,
			check: func(err error) bool {
				var e ErrMalformed
				return errors.As(err, &e)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := newMockedFetcher(httpmock.NewStringResponder(tt.status, ""))
			_, err := fetcher.Fetch(context.Background(), Request{Query: "App"})
			if err == nil || !tt.check(err) {
				t.Fatalf("status %d classified as %v", tt.status, err)
			}
		})
	}
}

func TestHTTPFetcherMalformedPayload(t *testing.T) {
	fetcher := newMockedFetcher(httpmock.NewStringResponder(http.StatusOK, "{not json"))
	_, err := fetcher.Fetch(context.Background(), Request{Query: "App"})
	var malformed ErrMalformed
	if !errors.As(err, &malformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}

func TestHTTPFetcherConnectionError(t *testing.T) {
	fetcher := newMockedFetcher(httpmock.NewErrorResponder(errors.New("connection refused")))
	_, err := fetcher.Fetch(context.Background(), Request{Query: "App"})
	var conn ErrConnection
	if !errors.As(err, &conn) {
		t.Fatalf("expected ErrConnection, got %v", err)
	}
}
