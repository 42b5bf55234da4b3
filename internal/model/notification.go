package model

import "time"

// Notification represents an alert pushed by the marketplace server,
// typically about an order being created.
type Notification struct {
	// ID is the server-assigned identifier.
	ID int64 `json:"id"`

	// Message is the human-readable notification text.
	Message string `json:"message"`

	// OrderID links this notification to an order, when there is one.
	OrderID *int64 `json:"orderId,omitempty"`

	// Read indicates whether the user has seen this notification.
	Read bool `json:"read"`

	// CreatedAt is the raw server timestamp. The server sends a local
	// date-time without a zone, so it is kept verbatim and parsed on demand.
	CreatedAt string `json:"createdAt"`
}

// CreatedTime parses CreatedAt. ok is false when the value is missing
// or in an unknown layout.
func (n Notification) CreatedTime() (time.Time, bool) {
	return ParseTimestamp(n.CreatedAt)
}

// sortKey returns the createdAt value used for ordering. Unparseable
// timestamps sort as 0, after every valid timestamp in a descending sort.
func (n Notification) sortKey() int64 {
	t, ok := n.CreatedTime()
	if !ok {
		return 0
	}
	return t.UnixMilli()
}

// NotificationLess reports whether a sorts before b: unread before read,
// then newest first.
func NotificationLess(a, b Notification) bool {
	if a.Read != b.Read {
		return !a.Read
	}
	return a.sortKey() > b.sortKey()
}
