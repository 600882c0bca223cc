package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spaghettifunk/midnight/engine/core"
)

func TestTranslateKeysym(t *testing.T) {
	tests := []struct {
		keysym uint64
		want   core.KeyCode
		ok     bool
	}{
		{0xff1b, core.KEY_ESCAPE, true},
		{0xff0d, core.KEY_ENTER, true},
		{0xff8d, core.KEY_ENTER, true},
		{0xff09, core.KEY_TAB, true},
		{0xff08, core.KEY_BACKSPACE, true},
		{' ', core.KEY_SPACE, true},
		{'a', core.KEY_A, true},
		{'z', core.KEY_Z, true},
		{'0', core.KEY_0, true},
		{'9', core.KEY_9, true},
		{'`', core.KeyCode('`'), true},
		{'{', 0, false},
		{0xffbe, 0, false}, // F1
		{0, 0, false},
	}
	for _, tt := range tests {
		got, ok := translateKeysym(tt.keysym)
		assert.Equal(t, tt.ok, ok, "keysym %#x", tt.keysym)
		assert.Equal(t, tt.want, got, "keysym %#x", tt.keysym)
	}
}
