// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"context"
	"time"

	"github.com/ManuGH/tvinput/internal/domain/session/ports"
	"github.com/ManuGH/tvinput/internal/pipeline/bus"
)

// publishTimeout bounds how long the dispatcher waits on a slow subscriber.
const publishTimeout = 250 * time.Millisecond

// busAdapter exposes a MemoryBus as the dispatcher's event port.
type busAdapter struct {
	b       *bus.MemoryBus
	timeout time.Duration
}

var _ ports.Bus = busAdapter{}

func newBusAdapter(b *bus.MemoryBus) busAdapter {
	return busAdapter{b: b, timeout: publishTimeout}
}

func (a busAdapter) Publish(ctx context.Context, topic string, event interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	return a.b.Publish(ctx, topic, event)
}

func (a busAdapter) Subscribe(ctx context.Context, topic string) (ports.Subscription, error) {
	sub, err := a.b.Subscribe(ctx, topic)
	if err != nil {
		return nil, err
	}
	return sub, nil
}
