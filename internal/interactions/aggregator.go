// Package interactions turns a raw stream of per-recipient tracking events
// into structured interaction records, and carries the dashboard-side
// transforms (sorting, filtering, stats, CSV export) applied on top.
package interactions

import (
	"context"
	"log"
	"regexp"
	"sort"
	"sync"

	"github.com/ignite/email-insights/internal/domain"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// ProfileResolver resolves recipient profiles by user id.
// *emailsvc.Client satisfies this.
type ProfileResolver interface {
	GetUserProfile(ctx context.Context, userID string) (*domain.UserProfile, error)
}

// Aggregator folds tracking events into per-recipient interactions.
// It is stateless; all caching lives behind the ProfileResolver.
type Aggregator struct {
	profiles ProfileResolver
}

// NewAggregator creates an Aggregator backed by the given resolver.
func NewAggregator(profiles ProfileResolver) *Aggregator {
	return &Aggregator{profiles: profiles}
}

// userSubjectRe extracts the user id from an event subject of the form
// "user/<id>". Events whose subject does not match are discarded.
var userSubjectRe = regexp.MustCompile(`user/(.+)`)

// ProcessEvents aggregates one campaign's events into interactions:
// partition by recipient, resolve profiles concurrently, replay each
// recipient's events in time order, and emit one Interaction per
// recipient whose profile resolved. The output is in canonical order:
// ascending recipient last name under locale-aware collation.
//
// An empty event list, or one that collapses to zero retained
// recipients, returns an empty list and no error; the fixture fallback
// is the caller's policy, not this function's.
func (a *Aggregator) ProcessEvents(ctx context.Context, events []domain.TrackingEvent) ([]domain.Interaction, error) {
	if len(events) == 0 {
		return []domain.Interaction{}, nil
	}

	// Partition events by recipient, preserving arrival order per user so
	// the later stable sort keeps equal-timestamp events in stream order.
	eventsByUser := make(map[string][]domain.TrackingEvent)
	var userOrder []string
	for _, event := range events {
		if event.EventSubject == "" {
			continue
		}
		match := userSubjectRe.FindStringSubmatch(event.EventSubject)
		if match == nil {
			continue
		}
		userID := match[1]
		if _, seen := eventsByUser[userID]; !seen {
			userOrder = append(userOrder, userID)
		}
		eventsByUser[userID] = append(eventsByUser[userID], event)
	}

	profiles := a.resolveProfiles(ctx, userOrder)

	interactions := make([]domain.Interaction, 0, len(profiles))
	for _, userID := range userOrder {
		profile, ok := profiles[userID]
		if !ok {
			// Unresolvable recipient: no placeholder entry, their events
			// simply produce nothing.
			continue
		}
		interactions = append(interactions, foldEvents(*profile, eventsByUser[userID]))
	}

	sortCanonical(interactions)
	return interactions, nil
}

// resolveProfiles looks up every user id concurrently and returns the
// successes. This is a settle-all join: one failed lookup drops that one
// user and never cancels or fails the rest of the batch.
func (a *Aggregator) resolveProfiles(ctx context.Context, userIDs []string) map[string]*domain.UserProfile {
	type lookupResult struct {
		userID  string
		profile *domain.UserProfile
		err     error
	}

	results := make(chan lookupResult, len(userIDs))
	var wg sync.WaitGroup
	for _, userID := range userIDs {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			profile, err := a.profiles.GetUserProfile(ctx, id)
			results <- lookupResult{userID: id, profile: profile, err: err}
		}(userID)
	}
	wg.Wait()
	close(results)

	profiles := make(map[string]*domain.UserProfile, len(userIDs))
	for result := range results {
		if result.err != nil {
			log.Printf("[interactions] dropping recipient %s: profile lookup failed: %v",
				result.userID, result.err)
			continue
		}
		profiles[result.userID] = result.profile
	}
	return profiles
}

// foldEvents replays one recipient's events in time order into a single
// Interaction. Policy, preserved exactly: the last sent event wins;
// clicks attach to the most recent open and need a target URL; clicks
// with no preceding open are dropped.
func foldEvents(user domain.UserProfile, events []domain.TrackingEvent) domain.Interaction {
	sorted := make([]domain.TrackingEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].EventTime.Before(sorted[j].EventTime)
	})

	interaction := domain.Interaction{
		User:  user,
		Opens: []domain.OpenDetail{},
	}

	currentOpen := -1
	for _, event := range sorted {
		switch event.EventType {
		case domain.EventSent:
			sentTime := event.EventTime
			interaction.SentTime = &sentTime
		case domain.EventOpen:
			interaction.WasOpened = true
			interaction.Opens = append(interaction.Opens, domain.OpenDetail{
				OpenTime: event.EventTime,
				Clicks:   []domain.ClickDetail{},
			})
			currentOpen = len(interaction.Opens) - 1
		case domain.EventClick:
			if currentOpen >= 0 && event.EventTarget != "" {
				interaction.Opens[currentOpen].Clicks = append(interaction.Opens[currentOpen].Clicks, domain.ClickDetail{
					ClickTime: event.EventTime,
					TargetURL: event.EventTarget,
				})
			}
		}
	}

	return interaction
}

// sortCanonical orders interactions by recipient last name ascending
// using locale-neutral Unicode collation. The server cannot know a
// viewer's locale, so Und keeps the order deterministic across hosts.
func sortCanonical(interactions []domain.Interaction) {
	collator := collate.New(language.Und)
	sort.SliceStable(interactions, func(i, j int) bool {
		return collator.CompareString(interactions[i].User.LastName, interactions[j].User.LastName) < 0
	})
}
