package domain

import "time"

// Campaign represents a sent email campaign as returned by the upstream
// email service. Immutable once fetched; identified by ID.
type Campaign struct {
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	ThumbnailURL   *string         `json:"thumbnailUrl"`
	SentAt         time.Time       `json:"sentAt"`
	Sender         Sender          `json:"sender"`
	TargetAudience *TargetAudience `json:"targetAudience,omitempty"`
}

// Sender identifies who sent a campaign.
type Sender struct {
	Name string `json:"name"`
}

// TargetAudience describes the audience a campaign was sent to.
type TargetAudience struct {
	TotalRecipients int `json:"totalRecipients"`
}

// RecipientCount returns the audience size if the upstream reported one.
func (c Campaign) RecipientCount() (int, bool) {
	if c.TargetAudience == nil {
		return 0, false
	}
	return c.TargetAudience.TotalRecipients, true
}
