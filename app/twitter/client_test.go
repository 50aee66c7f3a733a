package twitter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"
)

func testClient(serverURL string) *Client {
	return &Client{
		BaseURL:   serverURL,
		HTTP:      http.DefaultClient,
		userAgent: "social-ingest-test/1.0",
	}
}

func TestPlaceTrends(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/trends/place.json" {
			t.Errorf("Unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("id"); got != "2459115" {
			t.Errorf("Expected id=2459115, got %q", got)
		}
		fmt.Fprint(w, `[{
			"trends": [
				{"name": "Chelsea", "url": "http://twitter.com/search?q=Chelsea", "promoted_content": null, "query": "Chelsea", "tweet_volume": 798388},
				{"name": "Quiet", "tweet_volume": null}
			],
			"as_of": "2022-01-17T14:40:13Z",
			"created_at": "2022-01-17T14:35:00Z",
			"locations": [{"name": "New York", "woeid": 2459115}]
		}]`)
	}))
	defer server.Close()

	envelopes, err := testClient(server.URL).PlaceTrends(context.Background(), 2459115)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(envelopes) != 1 {
		t.Fatalf("Expected 1 envelope, got %d", len(envelopes))
	}
	if len(envelopes[0].Trends) != 2 {
		t.Fatalf("Expected 2 trends, got %d", len(envelopes[0].Trends))
	}
	if envelopes[0].Trends[0].TweetVolume == nil || *envelopes[0].Trends[0].TweetVolume != 798388 {
		t.Error("Expected tweet_volume 798388")
	}
	if envelopes[0].Trends[1].TweetVolume != nil {
		t.Error("Expected nil tweet_volume for null value")
	}
	if envelopes[0].Locations[0].WOEID != 2459115 {
		t.Error("Expected envelope location woeid 2459115")
	}
}

func TestAvailableTrends(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/trends/available.json" {
			t.Errorf("Unexpected path %q", r.URL.Path)
		}
		fmt.Fprint(w, `[
			{"name": "Ottawa", "placeType": {"code": 7, "name": "Town"}, "parentid": 23424775, "country": "Canada", "woeid": 3369, "countryCode": "CA"},
			{"name": "Worldwide", "placeType": {"code": 19, "name": "Supername"}, "parentid": 0, "country": "", "woeid": 1, "countryCode": null}
		]`)
	}))
	defer server.Close()

	locations, err := testClient(server.URL).AvailableTrends(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(locations) != 2 {
		t.Fatalf("Expected 2 locations, got %d", len(locations))
	}
	if locations[0].WOEID != 3369 || locations[0].Name != "Ottawa" {
		t.Errorf("Unexpected first location: %+v", locations[0])
	}
	if locations[1].CountryCode != nil {
		t.Error("Expected nil country code for null value")
	}
}

func TestGet_RateLimitWaitsForEpochReset(t *testing.T) {
	var calls int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			reset := time.Now().Add(2 * time.Second).Unix()
			w.Header().Set("x-rate-limit-reset", strconv.FormatInt(reset, 10))
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `[{"trends": [{"name": "Chelsea"}], "as_of": "2022-01-17T14:40:13Z"}]`)
	}))
	defer server.Close()

	start := time.Now()
	envelopes, err := testClient(server.URL).PlaceTrends(context.Background(), 1)
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	// The reset timestamp has one-second granularity, so the wait can
	// round down by up to a second.
	if elapsed < 1*time.Second {
		t.Errorf("Expected fetch to block until the rate-limit window reset, returned after %v", elapsed)
	}
	if len(envelopes) != 1 || envelopes[0].Trends[0].Name != "Chelsea" {
		t.Errorf("Expected the originally requested data after the wait, got %v", envelopes)
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Errorf("Expected exactly one retry of the same request, got %d calls", calls)
	}
}

func TestGet_UnauthorizedIsAuthenticationError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	_, err := testClient(server.URL).AvailableTrends(context.Background())
	if !errors.Is(err, ErrAuthentication) {
		t.Errorf("Expected ErrAuthentication, got %v", err)
	}
}

func TestRateLimitWait_Headers(t *testing.T) {
	now := time.Date(2022, 1, 17, 14, 0, 0, 0, time.UTC)

	h := http.Header{}
	h.Set("Retry-After", "3")
	if wait := rateLimitWait(h, now); wait != 3*time.Second {
		t.Errorf("Expected 3s from Retry-After, got %v", wait)
	}

	h = http.Header{}
	h.Set("x-rate-limit-reset", strconv.FormatInt(now.Add(90*time.Second).Unix(), 10))
	if wait := rateLimitWait(h, now); wait != 90*time.Second {
		t.Errorf("Expected 90s from x-rate-limit-reset, got %v", wait)
	}

	// A reset already in the past falls back to the initial backoff
	h = http.Header{}
	h.Set("x-rate-limit-reset", strconv.FormatInt(now.Add(-10*time.Second).Unix(), 10))
	if wait := rateLimitWait(h, now); wait != initialBackoff {
		t.Errorf("Expected fallback for past reset, got %v", wait)
	}
}
