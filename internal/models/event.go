package models

import "time"

// EventType enumerates the kinds of post events written to the event log.
type EventType string

const (
	// EventTypeCreate is appended once when a post is created.
	EventTypeCreate EventType = "create"
	// EventTypeLike is appended for every like.
	EventTypeLike EventType = "like"
)

// Valid reports whether t is a known event type.
func (t EventType) Valid() bool {
	return t == EventTypeCreate || t == EventTypeLike
}

// PostEvent is an append-only event log row. EventTime has millisecond
// precision.
type PostEvent struct {
	PostID    string    `json:"post_id"`
	EventTime time.Time `json:"event_time"`
	EventType EventType `json:"event_type"`
	Value     int       `json:"value"`
}
