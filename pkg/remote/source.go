package remote

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/odvcencio/padnav/pkg/bus"
	"github.com/odvcencio/padnav/pkg/logging"
	"github.com/odvcencio/padnav/pkg/nav"
	"github.com/odvcencio/padnav/pkg/nav/input"
	"github.com/odvcencio/padnav/pkg/telemetry"
)

// BusSource is an input.Source fed by commands published on the bus.
type BusSource struct {
	bus    bus.MessageBus
	queue  string
	logger *logging.Logger

	mu   sync.Mutex
	subs []bus.Subscription
}

var _ input.Source = (*BusSource)(nil)

// SourceOption configures a BusSource.
type SourceOption func(*BusSource)

// WithQueueGroup load-balances commands across hosts sharing group.
func WithQueueGroup(group string) SourceOption {
	return func(s *BusSource) { s.queue = group }
}

// WithSourceLogger sets the logger.
func WithSourceLogger(l *logging.Logger) SourceOption {
	return func(s *BusSource) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewBusSource creates a source reading SubjectDirections from b.
func NewBusSource(b bus.MessageBus, opts ...SourceOption) *BusSource {
	s := &BusSource{bus: b, logger: logging.Discard()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name implements input.Source.
func (s *BusSource) Name() string { return "remote" }

// Subscribe implements input.Source. Malformed commands are logged and
// dropped. fn runs on a bus goroutine.
func (s *BusSource) Subscribe(fn func(nav.Direction)) func() {
	handler := func(msg *bus.Message) []byte {
		cmd, err := DecodeCommand(msg.Data)
		if err != nil {
			telemetry.RemoteCommandsTotal.WithLabelValues(TransportBus, "rejected").Inc()
			s.logger.Warn("remote command rejected",
				slog.String("subject", msg.Subject),
				slog.String("error", err.Error()),
			)
			return nil
		}
		telemetry.RemoteCommandsTotal.WithLabelValues(TransportBus, "accepted").Inc()
		s.logger.Debug("remote command",
			slog.String("client", clientName(msg.Subject, cmd.Client)),
			slog.String("direction", cmd.Direction.String()),
		)
		fn(cmd.Direction)
		return nil
	}

	var (
		sub bus.Subscription
		err error
	)
	ctx := context.Background()
	if s.queue != "" {
		sub, err = s.bus.QueueSubscribe(ctx, SubjectDirections, s.queue, handler)
	} else {
		sub, err = s.bus.Subscribe(ctx, SubjectDirections, handler)
	}
	if err != nil {
		s.logger.Error("remote subscribe failed", slog.String("error", err.Error()))
		return func() {}
	}

	s.mu.Lock()
	s.subs = append(s.subs, sub)
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			_ = sub.Unsubscribe()
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, other := range s.subs {
				if other == sub {
					s.subs = append(s.subs[:i], s.subs[i+1:]...)
					break
				}
			}
		})
	}
}

// Close drops every subscription.
func (s *BusSource) Close() {
	s.mu.Lock()
	subs := s.subs
	s.subs = nil
	s.mu.Unlock()
	for _, sub := range subs {
		_ = sub.Unsubscribe()
	}
}

func clientName(subject, fallback string) string {
	if fallback != "" {
		return fallback
	}
	return strings.TrimPrefix(subject, SubjectDirectionPrefix)
}

// Publish sends a command to hosts listening on b.
func Publish(ctx context.Context, b bus.MessageBus, client string, dir nav.Direction) error {
	if client == "" {
		client = "cli"
	}
	data, err := Command{Direction: dir, Client: client}.Encode()
	if err != nil {
		return err
	}
	return b.Publish(ctx, SubjectDirectionPrefix+client, data)
}
