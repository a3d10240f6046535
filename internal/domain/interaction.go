package domain

import "time"

// UserProfile is the public profile of one recipient, fetched lazily per
// unique user id appearing in an event stream.
type UserProfile struct {
	ID        string  `json:"id"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	AvatarURL *string `json:"avatarUrl"`
}

// FullName returns "First Last" for display and search.
func (u UserProfile) FullName() string {
	return u.FirstName + " " + u.LastName
}

// ClickDetail records one link click inside an open.
type ClickDetail struct {
	ClickTime time.Time `json:"clickTime"`
	TargetURL string    `json:"targetUrl"`
}

// OpenDetail records one open and the clicks that followed it before the
// next open. Clicks are in event order.
type OpenDetail struct {
	OpenTime time.Time     `json:"openTime"`
	Clicks   []ClickDetail `json:"clicks"`
}

// Interaction is the aggregated engagement record of one recipient for
// one campaign. Opens are in non-decreasing OpenTime order because they
// are replayed from events sorted by event time.
type Interaction struct {
	User      UserProfile  `json:"user"`
	SentTime  *time.Time   `json:"sentTime"`
	WasOpened bool         `json:"wasOpened"`
	Opens     []OpenDetail `json:"opens"`
}
