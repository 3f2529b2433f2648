package remote

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/odvcencio/padnav/pkg/bus"
	"github.com/odvcencio/padnav/pkg/logging"
	"github.com/odvcencio/padnav/pkg/telemetry"
)

// Publisher mirrors hub events onto the bus and answers focus queries
// from the shared State.
type Publisher struct {
	bus    bus.MessageBus
	hub    *telemetry.Hub
	state  *State
	logger *logging.Logger
}

// NewPublisher creates a publisher. A nil logger discards output.
func NewPublisher(b bus.MessageBus, hub *telemetry.Hub, state *State, logger *logging.Logger) *Publisher {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Publisher{bus: b, hub: hub, state: state, logger: logger}
}

// Run publishes events until ctx ends or the hub closes.
func (p *Publisher) Run(ctx context.Context) error {
	query, err := p.bus.Subscribe(ctx, SubjectFocusQuery, func(*bus.Message) []byte {
		data, err := json.Marshal(p.state.Get())
		if err != nil {
			return nil
		}
		return data
	})
	if err != nil {
		return err
	}
	defer query.Unsubscribe()

	events, unsubscribe := p.hub.Subscribe()
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			data, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			if err := p.bus.Publish(ctx, SubjectFocus, data); err != nil {
				p.logger.Warn("focus publish failed",
					slog.String("event", string(ev.Type)),
					slog.String("error", err.Error()),
				)
			}
		}
	}
}

// QueryFocus asks a host on b for its focus snapshot.
func QueryFocus(ctx context.Context, b bus.MessageBus) (Snapshot, error) {
	var snap Snapshot
	data, err := b.Request(ctx, SubjectFocusQuery, nil, 0)
	if err != nil {
		return snap, err
	}
	err = json.Unmarshal(data, &snap)
	return snap, err
}
