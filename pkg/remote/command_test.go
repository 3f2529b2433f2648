package remote

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odvcencio/padnav/pkg/errors"
	"github.com/odvcencio/padnav/pkg/nav"
)

func TestDecodeCommand(t *testing.T) {
	tests := []struct {
		name string
		data string
		want Command
		code errors.ErrorCode
	}{
		{"json", `{"direction":"left","client":"tv"}`, Command{Direction: nav.Left, Client: "tv"}, ""},
		{"json case insensitive", `{"direction":"TabRight"}`, Command{Direction: nav.TabRight}, ""},
		{"bare name", "down\n", Command{Direction: nav.Down}, ""},
		{"quoted name", `"submit"`, Command{Direction: nav.Submit}, ""},
		{"empty", "  ", Command{}, errors.ErrCodeBadPayload},
		{"unknown bare", "sideways", Command{}, errors.ErrCodeUnknownDirection},
		{"unknown json", `{"direction":"sideways"}`, Command{}, errors.ErrCodeUnknownDirection},
		{"missing direction", `{"client":"tv"}`, Command{}, errors.ErrCodeBadPayload},
		{"broken json", `{"direction":`, Command{}, errors.ErrCodeBadPayload},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeCommand([]byte(tt.data))
			if tt.code != "" {
				require.Error(t, err)
				assert.True(t, errors.IsCode(err, tt.code), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCommand_EncodeRoundTrip(t *testing.T) {
	data, err := Command{Direction: nav.Menu, Client: "phone"}.Encode()
	require.NoError(t, err)
	assert.JSONEq(t, `{"direction":"menu","client":"phone"}`, string(data))

	got, err := DecodeCommand(data)
	require.NoError(t, err)
	assert.Equal(t, Command{Direction: nav.Menu, Client: "phone"}, got)
}

func TestState(t *testing.T) {
	var s State
	assert.Zero(t, s.Get())

	s.Set(Snapshot{Selected: "#play", TrapDepth: 1})
	got := s.Get()
	assert.Equal(t, "#play", got.Selected)
	assert.Equal(t, 1, got.TrapDepth)
	assert.False(t, got.Updated.IsZero())
}
