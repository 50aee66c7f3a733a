package reddit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/velkozz/social-ingest/app/database"
)

const (
	AuthURL = "https://www.reddit.com/api/v1/access_token"
	APIURL  = "https://oauth.reddit.com"

	maxRetries     = 5
	initialBackoff = 1 * time.Second
	maxBackoff     = 32 * time.Second

	pageSize = 100
)

// ErrAuthentication marks a credential failure. It is fatal for the job
// run and is never retried.
var ErrAuthentication = errors.New("reddit: authentication failed")

// Client is a short-lived, read-only Reddit API client. One client is
// constructed per job run so credentials and token state never leak
// across scheduled ticks.
type Client struct {
	BaseURL string
	HTTP    *http.Client

	userAgent    string
	requestDelay time.Duration
}

// NewClient authenticates with the OAuth2 client-credentials grant using
// the developer account's script-app credentials.
func NewClient(account *database.DeveloperAccount, requestDelay time.Duration) *Client {
	conf := &clientcredentials.Config{
		ClientID:     account.ClientID,
		ClientSecret: account.ClientSecret,
		TokenURL:     AuthURL,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}

	return &Client{
		BaseURL:      APIURL,
		HTTP:         conf.Client(context.Background()),
		userAgent:    account.UserAgent,
		requestDelay: requestDelay,
	}
}

// ListPosts pages through /r/<subreddit>/<listing>.json following the
// "after" cursor until limit items are collected or the listing ends.
// Top listings are scoped to the last day.
func (c *Client) ListPosts(ctx context.Context, subreddit, listing string, limit int) ([]Thing, error) {
	var items []Thing
	after := ""

	for len(items) < limit {
		remaining := limit - len(items)
		if remaining > pageSize {
			remaining = pageSize
		}

		params := url.Values{}
		params.Set("limit", strconv.Itoa(remaining))
		params.Set("raw_json", "1")
		if listing == ListingTop {
			params.Set("t", "day")
		}
		if after != "" {
			params.Set("after", after)
		}

		endpoint := fmt.Sprintf("%s/r/%s/%s.json?%s", c.BaseURL, subreddit, listing, params.Encode())

		body, err := c.get(ctx, endpoint)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s/%s posts: %w", subreddit, listing, err)
		}

		var page Listing
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("failed to decode %s listing: %w", subreddit, err)
		}

		if len(page.Data.Children) == 0 {
			break
		}

		items = append(items, page.Data.Children...)

		after = page.Data.After
		if after == "" {
			break
		}
	}

	return items, nil
}

// AboutSubreddit fetches /r/<name>/about.json for scope enrichment.
func (c *Client) AboutSubreddit(ctx context.Context, name string) (*ItemData, error) {
	body, err := c.get(ctx, fmt.Sprintf("%s/r/%s/about.json", c.BaseURL, name))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch subreddit about: %w", err)
	}

	var envelope Thing
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode subreddit about: %w", err)
	}

	return &envelope.Data, nil
}

// AboutUser fetches author metadata for post enrichment. Callers treat
// failures as best-effort and leave the author fields null.
func (c *Client) AboutUser(ctx context.Context, username string) (*UserAbout, error) {
	body, err := c.get(ctx, fmt.Sprintf("%s/user/%s/about.json", c.BaseURL, url.PathEscape(username)))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user about: %w", err)
	}

	var envelope userEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode user about: %w", err)
	}

	return &envelope.Data, nil
}

// get issues a single GET, waiting out rate-limit windows and retrying
// transient failures with bounded exponential backoff.
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
			slog.Warn("Transient request failure, retrying", "service", "reddit", "attempt", attempts, "backoff", backoff.String(), "error", err)
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
			wait := rateLimitWait(resp.Header)
			slog.Debug("Rate limited, waiting for window reset", "service", "reddit", "wait", wait.String())
			if err := sleepCtx(ctx, wait); err != nil {
				return nil, err
			}
			// Not counted against transient retries; the same
			// request is reissued once the window resets.
			continue

		case resp.StatusCode >= 500:
			attempts++
			if attempts >= maxRetries {
				return nil, fmt.Errorf("HTTP %d from %s after %d attempts", resp.StatusCode, endpoint, attempts)
			}
			slog.Warn("Server error, retrying", "service", "reddit", "status", resp.StatusCode, "attempt", attempts, "backoff", backoff.String())
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

// rateLimitWait reads the reset window from the response headers.
// Reddit reports seconds until reset in x-ratelimit-reset; Retry-After
// is honored when present.
func rateLimitWait(h http.Header) time.Duration {
	if v := h.Get("Retry-After"); v != "" {
		if secs, err := strconv.ParseFloat(v, 64); err == nil && secs > 0 {
			return time.Duration(secs * float64(time.Second))
		}
	}
	if v := h.Get("x-ratelimit-reset"); v != "" {
		if secs, err := strconv.ParseFloat(v, 64); err == nil && secs > 0 {
			return time.Duration(secs * float64(time.Second))
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
