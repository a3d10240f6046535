package interactions

import (
	"context"
	"log"
	"time"

	"github.com/ignite/email-insights/internal/domain"
	"github.com/ignite/email-insights/internal/emailsvc"
)

// Source marks whether a result came from the live upstream or from
// fixture data. Fallback is never surfaced as an error; the UI shows an
// informational banner off this marker instead.
type Source string

const (
	SourceLive    Source = "live"
	SourceFixture Source = "fixture"
)

// EventSource is the slice of the upstream client the service needs.
type EventSource interface {
	ListSentEmails(ctx context.Context, limit int) ([]domain.Campaign, error)
	StreamEvents(ctx context.Context, emailID string, since, until time.Time) ([]domain.TrackingEvent, error)
}

// CampaignsResult is a campaign list plus its provenance.
type CampaignsResult struct {
	Campaigns []domain.Campaign `json:"campaigns"`
	Source    Source            `json:"source"`
}

// PerformanceResult is an interaction list plus its provenance.
type PerformanceResult struct {
	Interactions []domain.Interaction `json:"interactions"`
	Source       Source               `json:"source"`
}

// Service wires the data access layer and the aggregator together and
// owns the fixture-fallback policy. Every read is total: failures and
// empty results are absorbed into fixture data, never propagated.
type Service struct {
	source     EventSource
	aggregator *Aggregator
	domain     string
	listLimit  int
}

// NewService creates the performance service.
func NewService(source EventSource, aggregator *Aggregator, domain string, listLimit int) *Service {
	return &Service{
		source:     source,
		aggregator: aggregator,
		domain:     domain,
		listLimit:  listLimit,
	}
}

// SentEmails returns the sent campaign list. A fixture-sentinel domain,
// a failed live call, or an empty result all yield the campaign fixtures.
func (s *Service) SentEmails(ctx context.Context) CampaignsResult {
	if emailsvc.IsFixtureDomain(s.domain) {
		return CampaignsResult{Campaigns: emailsvc.FixtureCampaigns(), Source: SourceFixture}
	}

	campaigns, err := s.source.ListSentEmails(ctx, s.listLimit)
	if err != nil {
		log.Printf("[interactions] sent-emails fetch failed, falling back to fixtures: %v", err)
		return CampaignsResult{Campaigns: emailsvc.FixtureCampaigns(), Source: SourceFixture}
	}
	if len(campaigns) == 0 {
		log.Printf("[interactions] no sent emails found, falling back to fixtures")
		return CampaignsResult{Campaigns: emailsvc.FixtureCampaigns(), Source: SourceFixture}
	}

	return CampaignsResult{Campaigns: campaigns, Source: SourceLive}
}

// Performance returns the aggregated interactions for one campaign within
// [since, until]. A fixture-sentinel email id short-circuits to the
// interaction fixtures; transport failures, empty event streams, and
// aggregations that retain no recipients fall back the same way.
func (s *Service) Performance(ctx context.Context, emailID string, since, until time.Time) PerformanceResult {
	if emailsvc.IsFixtureEmailID(emailID) {
		return PerformanceResult{Interactions: emailsvc.FixtureInteractions(), Source: SourceFixture}
	}

	events, err := s.source.StreamEvents(ctx, emailID, since, until)
	if err != nil {
		log.Printf("[interactions] event stream failed for %s, falling back to fixtures: %v", emailID, err)
		return PerformanceResult{Interactions: emailsvc.FixtureInteractions(), Source: SourceFixture}
	}
	if len(events) == 0 {
		log.Printf("[interactions] no events for %s in range, falling back to fixtures", emailID)
		return PerformanceResult{Interactions: emailsvc.FixtureInteractions(), Source: SourceFixture}
	}

	results, err := s.aggregator.ProcessEvents(ctx, events)
	if err != nil {
		log.Printf("[interactions] aggregation failed for %s, falling back to fixtures: %v", emailID, err)
		return PerformanceResult{Interactions: emailsvc.FixtureInteractions(), Source: SourceFixture}
	}
	if len(results) == 0 {
		log.Printf("[interactions] aggregation retained no recipients for %s, falling back to fixtures", emailID)
		return PerformanceResult{Interactions: emailsvc.FixtureInteractions(), Source: SourceFixture}
	}

	return PerformanceResult{Interactions: results, Source: SourceLive}
}

// DetailWindow computes the default [since, until] range for a campaign:
// one minute before the send until 30 days after it, clamped to now minus
// a small clock-skew buffer.
func DetailWindow(sentAt time.Time, now time.Time) (time.Time, time.Time) {
	safeNow := now.Add(-10 * time.Second)
	since := sentAt.Add(-1 * time.Minute)
	until := sentAt.Add(30 * 24 * time.Hour)
	if until.After(safeNow) {
		until = safeNow
	}
	return since, until
}
