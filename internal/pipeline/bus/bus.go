// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package bus provides the in-process publish/subscribe transport that carries
// session lifecycle events and supervisory faults to the daemon.
package bus

import "context"

// Message is an opaque event payload.
type Message = interface{}

// Bus publishes messages to every subscriber of a topic.
type Bus interface {
	Publish(ctx context.Context, topic string, msg Message) error
	Subscribe(ctx context.Context, topic string) (Subscriber, error)
}

// Subscriber receives messages for one topic until closed.
type Subscriber interface {
	C() <-chan Message
	Close() error
}
