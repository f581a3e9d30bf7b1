// Package pubsub provides a generic publish/subscribe event system.
package pubsub

import (
	"context"
	"time"
)

// EventType represents the type of event being published.
type EventType string

const (
	// RehighlightedEvent carries a range of lines whose spans or exit states changed.
	RehighlightedEvent EventType = "rehighlighted"
	// ResetEvent is published when a document drops every cached line.
	ResetEvent EventType = "reset"
	// LoggedEvent carries a formatted log entry.
	LoggedEvent EventType = "logged"
)

// Event represents a published event with a typed payload.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}

// Subscriber provides a subscription channel for events.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}

// Publisher allows publishing events with a typed payload.
type Publisher[T any] interface {
	Publish(eventType EventType, payload T) int
}
