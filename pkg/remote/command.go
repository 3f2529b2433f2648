// Package remote lets other processes drive and observe navigation: a
// message-bus direction source, a focus publisher, and an HTTP control
// surface with a websocket focus stream.
package remote

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/odvcencio/padnav/pkg/errors"
	"github.com/odvcencio/padnav/pkg/nav"
)

// Bus subjects. Controllers publish commands on SubjectDirectionPrefix
// followed by their client name.
const (
	SubjectDirectionPrefix = "padnav.direction."
	SubjectDirections      = SubjectDirectionPrefix + "*"
	SubjectFocus           = "padnav.focus"
	SubjectFocusQuery      = "padnav.focus.query"
)

// Transport labels used in metrics.
const (
	TransportBus       = "bus"
	TransportHTTP      = "http"
	TransportWebsocket = "websocket"
)

// Command asks a host to fire one direction.
type Command struct {
	Direction nav.Direction `json:"direction"`
	Client    string        `json:"client,omitempty"`
}

// DecodeCommand parses a JSON command. A bare direction name is accepted
// as well, so `nats pub padnav.direction.tv down` works.
func DecodeCommand(data []byte) (Command, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return Command{}, errors.New(errors.ErrCodeBadPayload, "empty command")
	}
	if !strings.HasPrefix(trimmed, "{") {
		dir, err := nav.ParseDirection(strings.Trim(trimmed, `"`))
		if err != nil {
			return Command{}, err
		}
		return Command{Direction: dir}, nil
	}

	var raw struct {
		Direction *nav.Direction `json:"direction"`
		Client    string         `json:"client"`
	}
	if err := json.Unmarshal([]byte(trimmed), &raw); err != nil {
		if errors.IsCode(err, errors.ErrCodeUnknownDirection) {
			return Command{}, err
		}
		return Command{}, errors.Wrap(err, errors.ErrCodeBadPayload, "decode command")
	}
	if raw.Direction == nil {
		return Command{}, errors.New(errors.ErrCodeBadPayload, "command has no direction")
	}
	return Command{Direction: *raw.Direction, Client: raw.Client}, nil
}

// Encode renders the command as JSON.
func (c Command) Encode() ([]byte, error) {
	return json.Marshal(c)
}

// Snapshot is the focus state reported to remote clients.
type Snapshot struct {
	Selected  string    `json:"selected,omitempty"`
	Root      string    `json:"root,omitempty"`
	TrapDepth int       `json:"trapDepth"`
	Updated   time.Time `json:"updated"`
}

// State holds the latest Snapshot. The UI loop writes it; transports
// read it from their own goroutines.
type State struct {
	mu   sync.RWMutex
	snap Snapshot
}

// Set replaces the snapshot, stamping it if Updated is zero.
func (s *State) Set(snap Snapshot) {
	if snap.Updated.IsZero() {
		snap.Updated = time.Now()
	}
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
}

// Get returns the latest snapshot.
func (s *State) Get() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}
