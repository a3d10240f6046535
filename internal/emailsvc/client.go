package emailsvc

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ignite/email-insights/internal/config"
	"github.com/ignite/email-insights/internal/domain"
	"github.com/ignite/email-insights/internal/pkg/httpretry"
)

// Client is the upstream email-service API client. All calls are bounded
// by the configured timeout; exceeding it aborts the in-flight request and
// is treated identically to a network failure.
type Client struct {
	domain       string
	proxyBaseURL string
	timeout      time.Duration
	httpClient   httpretry.HTTPDoer
	profiles     ProfileCache
}

// NewClient creates a new email-service client. The profile cache is
// shared across all lookups issued through this client.
func NewClient(cfg config.EmailSvcConfig, profiles ProfileCache) *Client {
	return &Client{
		domain:       cfg.Domain,
		proxyBaseURL: cfg.ProxyBaseURL,
		timeout:      cfg.Timeout(),
		httpClient: httpretry.NewRetryClient(&http.Client{
			Timeout: cfg.Timeout(),
		}, 2),
		profiles: profiles,
	}
}

// SetHTTPClient sets a custom HTTP client (useful for testing)
func (c *Client) SetHTTPClient(client httpretry.HTTPDoer) {
	c.httpClient = client
}

// Domain returns the upstream domain this client talks to.
func (c *Client) Domain() string { return c.domain }

// proxyEnvelope is the wrapper a public CORS proxy puts around the real
// payload.
type proxyEnvelope struct {
	Contents string `json:"contents"`
}

// fetch performs a GET against the upstream, routing through the CORS
// proxy when one is configured and unwrapping its envelope. Every call
// carries a deadline; transport failures, timeouts, and non-success
// statuses all come back as a TransportError.
func (c *Client) fetch(ctx context.Context, target string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	reqURL := target
	if c.proxyBaseURL != "" {
		reqURL = c.proxyBaseURL + url.QueryEscape(target)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &TransportError{Op: "build request", Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "request " + target, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: "read response", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &TransportError{
			Op:  "request " + target,
			Err: fmt.Errorf("status %d: %s", resp.StatusCode, bytes.TrimSpace(body)),
		}
	}

	if c.proxyBaseURL == "" {
		return body, nil
	}

	var envelope proxyEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, &ParseError{Op: "unwrap proxy envelope", Err: err}
	}
	return []byte(envelope.Contents), nil
}

// sentEmailsResponse is the campaign-list payload shape.
type sentEmailsResponse struct {
	Data []domain.Campaign `json:"data"`
}

// ListSentEmails retrieves the most recent sent campaigns, newest first as
// the upstream returns them.
func (c *Client) ListSentEmails(ctx context.Context, limit int) ([]domain.Campaign, error) {
	target := fmt.Sprintf("https://%s/api/email-service/emails/sent?limit=%s",
		c.domain, strconv.Itoa(limit))

	body, err := c.fetch(ctx, target)
	if err != nil {
		return nil, err
	}

	var response sentEmailsResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, &ParseError{Op: "parse sent emails", Err: err}
	}
	return response.Data, nil
}

// StreamEvents retrieves the raw tracking events for one campaign within
// [since, until]. The payload is newline-delimited JSON; lines that fail
// to parse are logged and dropped, and event order is preserved as
// received.
func (c *Client) StreamEvents(ctx context.Context, emailID string, since, until time.Time) ([]domain.TrackingEvent, error) {
	target := fmt.Sprintf("https://%s/api/email-performance/%s/events?since=%s&until=%s",
		c.domain, url.PathEscape(emailID),
		url.QueryEscape(since.Format(time.RFC3339)),
		url.QueryEscape(until.Format(time.RFC3339)))

	body, err := c.fetch(ctx, target)
	if err != nil {
		return nil, err
	}

	var events []domain.TrackingEvent
	scanner := bufio.NewScanner(bytes.NewReader(body))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var event domain.TrackingEvent
		if err := json.Unmarshal(line, &event); err != nil {
			log.Printf("[emailsvc] dropping unparseable event line for email %s: %v", emailID, err)
			continue
		}
		events = append(events, event)
	}
	if err := scanner.Err(); err != nil {
		return nil, &ParseError{Op: "scan event stream", Err: err}
	}

	return events, nil
}

// GetUserProfile fetches one recipient's public profile, memoized by user
// id. A repeated call with the same id never re-issues the network call.
// Failures return a TransportError so bulk resolvers can drop just that
// user and continue.
func (c *Client) GetUserProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	if profile, ok := c.profiles.Get(ctx, userID); ok {
		return profile, nil
	}

	target := fmt.Sprintf("https://%s/api/profiles/public/%s", c.domain, url.PathEscape(userID))

	body, err := c.fetch(ctx, target)
	if err != nil {
		return nil, err
	}

	var profile domain.UserProfile
	if err := json.Unmarshal(body, &profile); err != nil {
		return nil, &ParseError{Op: "parse profile " + userID, Err: err}
	}

	c.profiles.Put(ctx, userID, &profile)
	return &profile, nil
}
