package input

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/odvcencio/padnav/pkg/nav"
)

func TestDefaultKeymap(t *testing.T) {
	km := DefaultKeymap()

	tests := []struct {
		code KeyCode
		want nav.Direction
	}{
		{KeyLeft, nav.Left},
		{KeyUp, nav.Up},
		{KeyRight, nav.Right},
		{KeyDown, nav.Down},
		{KeyEnter, nav.Submit},
		{KeySpace, nav.Submit},
		{KeyEscape, nav.Back},
		{KeyBackspace, nav.Back},
		{KeyNumpad7, nav.X},
		{KeyNumpad9, nav.Y},
		{KeyNumpad4, nav.TabLeft},
		{KeyNumpad6, nav.TabRight},
		{KeyNumpad8, nav.TabUp},
		{KeyNumpad2, nav.TabDown},
		{KeyNumpad1, nav.View},
		{KeyNumpad3, nav.Menu},
		{KeyGamepadA, nav.Submit},
		{KeyGamepadB, nav.Back},
		{KeyGamepadLeftShoulder, nav.TabLeft},
		{KeyGamepadRightTrigger, nav.TabDown},
		{KeyGamepadDPadUp, nav.Up},
		{KeyGamepadLeftThumbstickLeft, nav.Left},
	}
	for _, tt := range tests {
		got, ok := km.Lookup(tt.code)
		assert.True(t, ok, "code %d", tt.code)
		assert.Equal(t, tt.want, got, "code %d", tt.code)
	}

	_, ok := km.Lookup(KeyCode(65))
	assert.False(t, ok)
}

func TestDefaultKeymap_ReturnsCopy(t *testing.T) {
	km := DefaultKeymap()
	delete(km, KeyLeft)

	_, ok := DefaultKeymap().Lookup(KeyLeft)
	assert.True(t, ok)
}

func TestKeymap_With(t *testing.T) {
	base := DefaultKeymap()
	km := base.With(Keymap{KeyCode(72): nav.Left, KeyEnter: nav.X})

	d, ok := km.Lookup(KeyCode(72))
	assert.True(t, ok)
	assert.Equal(t, nav.Left, d)
	d, _ = km.Lookup(KeyEnter)
	assert.Equal(t, nav.X, d)

	d, _ = base.Lookup(KeyEnter)
	assert.Equal(t, nav.Submit, d)

	var empty Keymap
	d, ok = empty.With(Keymap{KeyUp: nav.Up}).Lookup(KeyUp)
	assert.True(t, ok)
	assert.Equal(t, nav.Up, d)
}
