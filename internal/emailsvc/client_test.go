package emailsvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ignite/email-insights/internal/config"
)

func newTestClient(serverURL string) *Client {
	u, _ := url.Parse(serverURL)
	client := NewClient(config.EmailSvcConfig{
		Domain:         u.Host,
		TimeoutSeconds: 5,
	}, NewMemoryCache())
	// Tests run over plain HTTP; rewrite the https scheme the client builds
	client.SetHTTPClient(schemeRewriter{})
	return client
}

// schemeRewriter downgrades https to http so httptest servers can be used
// as the upstream.
type schemeRewriter struct{}

func (schemeRewriter) Do(req *http.Request) (*http.Response, error) {
	req.URL.Scheme = "http"
	return http.DefaultClient.Do(req)
}

func TestListSentEmails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/email-service/emails/sent" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("limit") != "100" {
			t.Errorf("Expected limit=100, got %s", r.URL.Query().Get("limit"))
		}
		fmt.Fprint(w, `{"data":[
			{"id":"email-1","title":"Launch","sentAt":"2026-08-20T10:00:00Z","sender":{"name":"Ana Reyes"},"targetAudience":{"totalRecipients":42}},
			{"id":"email-2","title":"Digest","sentAt":"2026-08-21T10:00:00Z","sender":{"name":"Bo Chen"}}
		]}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	campaigns, err := client.ListSentEmails(context.Background(), 100)
	if err != nil {
		t.Fatalf("ListSentEmails failed: %v", err)
	}

	if len(campaigns) != 2 {
		t.Fatalf("Expected 2 campaigns, got %d", len(campaigns))
	}
	if campaigns[0].Title != "Launch" {
		t.Errorf("Expected title 'Launch', got %q", campaigns[0].Title)
	}
	if count, ok := campaigns[0].RecipientCount(); !ok || count != 42 {
		t.Errorf("Expected recipient count 42, got %d (ok=%v)", count, ok)
	}
	if _, ok := campaigns[1].RecipientCount(); ok {
		t.Error("Expected no recipient count for campaign without targetAudience")
	}
}

func TestListSentEmailsTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.ListSentEmails(context.Background(), 10)
	if err == nil {
		t.Fatal("Expected error for 403 response")
	}
	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Errorf("Expected TransportError, got %T: %v", err, err)
	}
}

func TestStreamEventsDropsBadLines(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/api/email-performance/email-1/events") {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		lines := []string{
			`{"eventSubject":"user/u1","eventType":"sent","eventTime":"2026-08-20T10:00:00Z"}`,
			`not json at all`,
			``,
			`{"eventSubject":"user/u1","eventType":"open","eventTime":"2026-08-20T11:00:00Z"}`,
			`{"eventSubject":"user/u1","eventType":"click","eventTime":"not-a-time"}`,
			`{"eventSubject":"user/u2","eventType":"click","eventTime":"2026-08-20T11:05:00Z","eventTarget":"https://example.com"}`,
		}
		fmt.Fprint(w, strings.Join(lines, "\n"))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	since := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	until := since.Add(48 * time.Hour)

	events, err := client.StreamEvents(context.Background(), "email-1", since, until)
	if err != nil {
		t.Fatalf("StreamEvents failed: %v", err)
	}

	if len(events) != 3 {
		t.Fatalf("Expected 3 parseable events, got %d", len(events))
	}
	// Order preserved as received
	if events[0].EventType != "sent" || events[1].EventType != "open" || events[2].EventType != "click" {
		t.Errorf("Event order not preserved: %v", events)
	}
	if events[2].EventTarget != "https://example.com" {
		t.Errorf("Expected click target, got %q", events[2].EventTarget)
	}
}

func TestGetUserProfileMemoized(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		json.NewEncoder(w).Encode(map[string]any{
			"id": "u1", "firstName": "Ana", "lastName": "Reyes",
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	first, err := client.GetUserProfile(context.Background(), "u1")
	if err != nil {
		t.Fatalf("GetUserProfile failed: %v", err)
	}
	second, err := client.GetUserProfile(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Second GetUserProfile failed: %v", err)
	}

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("Expected exactly 1 upstream call, got %d", got)
	}
	if first.LastName != second.LastName || first.ID != second.ID {
		t.Errorf("Cached profile differs: %+v vs %+v", first, second)
	}
}

func TestGetUserProfileFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such user", http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.GetUserProfile(context.Background(), "ghost")
	if err == nil {
		t.Fatal("Expected error for missing profile")
	}
}

func TestFetchUnwrapsProxyEnvelope(t *testing.T) {
	upstreamPayload := `{"data":[{"id":"email-1","title":"Proxied","sentAt":"2026-08-20T10:00:00Z","sender":{"name":"Ana"}}]}`
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		target := r.URL.Query().Get("url")
		if !strings.Contains(target, "/api/email-service/emails/sent") {
			t.Errorf("Proxy did not receive the upstream URL, got %q", target)
		}
		json.NewEncoder(w).Encode(map[string]string{"contents": upstreamPayload})
	}))
	defer proxy.Close()

	client := NewClient(config.EmailSvcConfig{
		Domain:         "app.example.com",
		ProxyBaseURL:   proxy.URL + "/get?url=",
		TimeoutSeconds: 5,
	}, NewMemoryCache())

	campaigns, err := client.ListSentEmails(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListSentEmails via proxy failed: %v", err)
	}
	if len(campaigns) != 1 || campaigns[0].Title != "Proxied" {
		t.Errorf("Unexpected campaigns via proxy: %+v", campaigns)
	}
}

func TestIsFixtureSentinels(t *testing.T) {
	if !IsFixtureDomain("Fixture.local") {
		t.Error("Expected fixture domain sentinel to match")
	}
	if IsFixtureDomain("app.example.com") {
		t.Error("Real domain flagged as fixture")
	}
	if !IsFixtureEmailID("") || !IsFixtureEmailID("fixture-email-1") {
		t.Error("Expected fixture email id sentinel to match")
	}
	if IsFixtureEmailID("email-42") {
		t.Error("Real email id flagged as fixture")
	}
}
