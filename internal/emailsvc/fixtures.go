package emailsvc

import (
	"strings"
	"time"

	"github.com/ignite/email-insights/internal/domain"
)

// Fixture data stands in for live data whenever the upstream is
// unreachable, errors, or returns nothing. Shapes match live payloads
// exactly so downstream code never special-cases the source. Timestamps
// are computed relative to now at fallback time, keeping demo data
// temporally plausible instead of frozen in the past.

const fixtureSentinel = "fixture"

// IsFixtureDomain reports whether the configured domain asks for fixture
// data instead of live calls.
func IsFixtureDomain(domain string) bool {
	return strings.Contains(strings.ToLower(domain), fixtureSentinel)
}

// IsFixtureEmailID reports whether a campaign id short-circuits to the
// fixture interaction set.
func IsFixtureEmailID(emailID string) bool {
	return emailID == "" || strings.Contains(strings.ToLower(emailID), fixtureSentinel)
}

func strptr(s string) *string { return &s }

// FixtureCampaigns returns the static sent-campaign list used when the
// live listing fails or comes back empty. Never empty.
func FixtureCampaigns() []domain.Campaign {
	now := time.Now()
	return []domain.Campaign{
		{
			ID:             "fixture-email-1",
			Title:          "The Heart Behind the Care 💙",
			SentAt:         now.Add(-2 * 24 * time.Hour),
			Sender:         domain.Sender{Name: "Marcus Barlow"},
			TargetAudience: &domain.TargetAudience{TotalRecipients: 150},
		},
		{
			ID:             "fixture-email-2",
			Title:          "Weekly Newsletter",
			SentAt:         now.Add(-9 * 24 * time.Hour),
			Sender:         domain.Sender{Name: "Nicole Adams"},
			TargetAudience: &domain.TargetAudience{TotalRecipients: 1200},
		},
		{
			ID:             "fixture-email-3",
			Title:          "Townhall Briefing",
			SentAt:         now.Add(-12 * 24 * time.Hour),
			Sender:         domain.Sender{Name: "Nicole Adams"},
			TargetAudience: &domain.TargetAudience{TotalRecipients: 85},
		},
	}
}

// FixtureInteractions returns the static recipient interaction set used
// when event streaming or aggregation yields nothing. The list is already
// in canonical order (ascending last name).
func FixtureInteractions() []domain.Interaction {
	now := time.Now()
	sentRecent := now.Add(-2 * 24 * time.Hour)
	sentOlder := now.Add(-3 * 24 * time.Hour)

	openRecent := sentRecent.Add(1 * time.Hour)
	clickRecent := openRecent.Add(5 * time.Minute)
	openOlder := sentOlder.Add(30 * time.Minute)

	return []domain.Interaction{
		{
			User: domain.UserProfile{
				ID:        "fixture-user-1",
				FirstName: "Nicole",
				LastName:  "Adams",
				AvatarURL: strptr("https://cdn.example.com/avatars/nicole-adams.png"),
			},
			SentTime:  &sentRecent,
			WasOpened: true,
			Opens: []domain.OpenDetail{
				{
					OpenTime: openRecent,
					Clicks: []domain.ClickDetail{
						{ClickTime: clickRecent, TargetURL: "https://www.example.com/blog/"},
					},
				},
			},
		},
		{
			User: domain.UserProfile{
				ID:        "fixture-user-2",
				FirstName: "Jean",
				LastName:  "Kirstein",
				AvatarURL: strptr(""),
			},
			SentTime:  &sentOlder,
			WasOpened: false,
			Opens:     []domain.OpenDetail{},
		},
		{
			User: domain.UserProfile{
				ID:        "fixture-user-3",
				FirstName: "Ash",
				LastName:  "Krishnan",
			},
			SentTime:  &sentOlder,
			WasOpened: true,
			Opens:     []domain.OpenDetail{{OpenTime: openOlder, Clicks: []domain.ClickDetail{}}},
		},
		{
			User: domain.UserProfile{
				ID:        "fixture-user-4",
				FirstName: "Shirley",
				LastName:  "Lai",
			},
			SentTime:  &sentOlder,
			WasOpened: false,
			Opens:     []domain.OpenDetail{},
		},
		{
			User: domain.UserProfile{
				ID:        "fixture-user-5",
				FirstName: "Jon",
				LastName:  "Lam",
			},
			SentTime:  &sentOlder,
			WasOpened: false,
			Opens:     []domain.OpenDetail{},
		},
		{
			User: domain.UserProfile{
				ID:        "fixture-user-6",
				FirstName: "Eira",
				LastName:  "Topé",
			},
			SentTime:  &sentOlder,
			WasOpened: true,
			Opens:     []domain.OpenDetail{{OpenTime: openOlder, Clicks: []domain.ClickDetail{}}},
		},
	}
}
