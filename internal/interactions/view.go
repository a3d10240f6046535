package interactions

import (
	"sort"
	"strings"

	"github.com/ignite/email-insights/internal/domain"
)

// SortKey selects the column the dashboard sorts by.
type SortKey string

// SortDirection selects the order; DirectionOriginal restores the
// canonical last-name order the aggregator emitted.
type SortDirection string

const (
	SortByRecipient SortKey = "recipient"
	SortByStatus    SortKey = "status"

	DirectionAscending  SortDirection = "ascending"
	DirectionDescending SortDirection = "descending"
	DirectionOriginal   SortDirection = "original"
)

// Stats summarizes one campaign's engagement for the dashboard header.
type Stats struct {
	TotalRecipients int `json:"totalRecipients"`
	UniqueOpens     int `json:"uniqueOpens"`
	TotalOpens      int `json:"totalOpens"`
}

// SortRecipients returns a copy of the list in the requested order.
// All sorting operates on top of the canonical order as the "original"
// order, so DirectionOriginal (or an unknown key) is the identity.
func SortRecipients(list []domain.Interaction, key SortKey, direction SortDirection) []domain.Interaction {
	sorted := make([]domain.Interaction, len(list))
	copy(sorted, list)

	if direction == DirectionOriginal || direction == "" {
		return sorted
	}

	switch key {
	case SortByRecipient:
		sort.SliceStable(sorted, func(i, j int) bool {
			a, b := sorted[i].User.FullName(), sorted[j].User.FullName()
			if direction == DirectionDescending {
				return b < a
			}
			return a < b
		})
	case SortByStatus:
		sort.SliceStable(sorted, func(i, j int) bool {
			a, b := statusScore(sorted[i]), statusScore(sorted[j])
			if direction == DirectionDescending {
				return b < a
			}
			return a < b
		})
	}

	return sorted
}

// statusScore ranks engagement: opened counts each open, sent-only is 0,
// no sent record at all is below sent.
func statusScore(interaction domain.Interaction) int {
	if interaction.WasOpened {
		return len(interaction.Opens)
	}
	if interaction.SentTime != nil {
		return 0
	}
	return -1
}

// FilterRecipients keeps interactions whose recipient full name contains
// the search term, case-insensitively. An empty term keeps everything.
func FilterRecipients(list []domain.Interaction, term string) []domain.Interaction {
	if term == "" {
		return list
	}
	needle := strings.ToLower(term)
	filtered := make([]domain.Interaction, 0, len(list))
	for _, interaction := range list {
		if strings.Contains(strings.ToLower(interaction.User.FullName()), needle) {
			filtered = append(filtered, interaction)
		}
	}
	return filtered
}

// ComputeStats derives the header stats for one campaign. The campaign's
// reported audience size wins when present; otherwise the interaction
// count stands in for it.
func ComputeStats(list []domain.Interaction, campaign *domain.Campaign) Stats {
	stats := Stats{TotalRecipients: len(list)}
	if campaign != nil {
		if count, ok := campaign.RecipientCount(); ok {
			stats.TotalRecipients = count
		}
	}
	for _, interaction := range list {
		stats.TotalOpens += len(interaction.Opens)
		if interaction.WasOpened {
			stats.UniqueOpens++
		}
	}
	return stats
}
