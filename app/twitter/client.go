package twitter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/velkozz/social-ingest/app/database"
)

const (
	AuthURL = "https://api.twitter.com/oauth2/token"
	APIURL  = "https://api.twitter.com/1.1"

	maxRetries     = 5
	initialBackoff = 1 * time.Second
	maxBackoff     = 32 * time.Second
)

// ErrAuthentication marks a credential failure. It is fatal for the job
// run and is never retried.
var ErrAuthentication = errors.New("twitter: authentication failed")

// Client is a short-lived Twitter API client built per job run with
// application-only authentication.
type Client struct {
	BaseURL string
	HTTP    *http.Client

	userAgent    string
	requestDelay time.Duration
}

// NewClient prefers a pre-issued bearer token when the account carries
// one, otherwise it exchanges the consumer key pair through the
// client-credentials grant.
func NewClient(account *database.DeveloperAccount, userAgent string, requestDelay time.Duration) *Client {
	var httpClient *http.Client

	if account.BearerToken != "" {
		source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: account.BearerToken})
		httpClient = oauth2.NewClient(context.Background(), source)
	} else {
		conf := &clientcredentials.Config{
			ClientID:     account.APIKey,
			ClientSecret: account.APISecretKey,
			TokenURL:     AuthURL,
		}
		httpClient = conf.Client(context.Background())
	}

	return &Client{
		BaseURL:      APIURL,
		HTTP:         httpClient,
		userAgent:    userAgent,
		requestDelay: requestDelay,
	}
}

// AvailableTrends returns every location the trends API can report on.
func (c *Client) AvailableTrends(ctx context.Context) ([]RawLocation, error) {
	body, err := c.get(ctx, c.BaseURL+"/trends/available.json")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch available trends: %w", err)
	}

	var locations []RawLocation
	if err := json.Unmarshal(body, &locations); err != nil {
		return nil, fmt.Errorf("failed to decode available trends: %w", err)
	}

	return locations, nil
}

// PlaceTrends returns the current trending topics for one WOEID.
func (c *Client) PlaceTrends(ctx context.Context, woeid int64) ([]TrendsEnvelope, error) {
	body, err := c.get(ctx, fmt.Sprintf("%s/trends/place.json?id=%d", c.BaseURL, woeid))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch trends for woeid %d: %w", woeid, err)
	}

	var envelopes []TrendsEnvelope
	if err := json.Unmarshal(body, &envelopes); err != nil {
		return nil, fmt.Errorf("failed to decode trends for woeid %d: %w", woeid, err)
	}

	return envelopes, nil
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	if err := sleepCtx(ctx, c.requestDelay); err != nil {
		return nil, err
	}

	backoff := initialBackoff
	attempts := 0

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("User-Agent", c.userAgent)

		resp, err := c.HTTP.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			attempts++
			if attempts >= maxRetries {
				return nil, fmt.Errorf("request failed after %d attempts: %w", attempts, err)
			}
			slog.Warn("Transient request failure, retrying", "service", "twitter", "attempt", attempts, "backoff", backoff.String(), "error", err)
			if err := sleepCtx(ctx, backoff); err != nil {
				return nil, err
			}
			backoff = nextBackoff(backoff)
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			if readErr != nil {
				return nil, fmt.Errorf("failed to read response body: %w", readErr)
			}
			return body, nil

		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			return nil, fmt.Errorf("HTTP %d from %s: %w", resp.StatusCode, endpoint, ErrAuthentication)

		case resp.StatusCode == http.StatusTooManyRequests:
			wait := rateLimitWait(resp.Header, time.Now())
			slog.Debug("Rate limited, waiting for window reset", "service", "twitter", "wait", wait.String())
			if err := sleepCtx(ctx, wait); err != nil {
				return nil, err
			}
			continue

		case resp.StatusCode >= 500:
			attempts++
			if attempts >= maxRetries {
				return nil, fmt.Errorf("HTTP %d from %s after %d attempts", resp.StatusCode, endpoint, attempts)
			}
			slog.Warn("Server error, retrying", "service", "twitter", "status", resp.StatusCode, "attempt", attempts, "backoff", backoff.String())
			if err := sleepCtx(ctx, backoff); err != nil {
				return nil, err
			}
			backoff = nextBackoff(backoff)
			continue

		default:
			return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, endpoint)
		}
	}
}

// rateLimitWait derives the wait from x-rate-limit-reset, which Twitter
// reports as a unix timestamp. Retry-After seconds win when present.
func rateLimitWait(h http.Header, now time.Time) time.Duration {
	if v := h.Get("Retry-After"); v != "" {
		if secs, err := strconv.ParseFloat(v, 64); err == nil && secs > 0 {
			return time.Duration(secs * float64(time.Second))
		}
	}
	if v := h.Get("x-rate-limit-reset"); v != "" {
		if epoch, err := strconv.ParseInt(v, 10, 64); err == nil {
			if wait := time.Unix(epoch, 0).Sub(now); wait > 0 {
				return wait
			}
		}
	}
	return initialBackoff
}

func nextBackoff(current time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		next = maxBackoff
	}
	return next
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
