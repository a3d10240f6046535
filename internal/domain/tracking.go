package domain

import "time"

// TrackingEventType enumerates the recipient engagement events the
// upstream event stream emits.
type TrackingEventType string

const (
	EventSent  TrackingEventType = "sent"
	EventOpen  TrackingEventType = "open"
	EventClick TrackingEventType = "click"
)

// TrackingEvent is a single raw engagement event for one recipient.
// EventSubject encodes the recipient as "user/<userId>". EventTarget is
// the clicked URL and is only present for click events.
type TrackingEvent struct {
	EventSubject string            `json:"eventSubject"`
	EventType    TrackingEventType `json:"eventType"`
	EventTime    time.Time         `json:"eventTime"`
	EventTarget  string            `json:"eventTarget,omitempty"`
}
