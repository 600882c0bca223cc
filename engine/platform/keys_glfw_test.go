//go:build windows

package platform

import (
	"testing"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/stretchr/testify/assert"

	"github.com/spaghettifunk/midnight/engine/core"
)

func TestTranslateKey(t *testing.T) {
	tests := []struct {
		key  glfw.Key
		want core.KeyCode
		ok   bool
	}{
		{glfw.KeyEscape, core.KEY_ESCAPE, true},
		{glfw.KeyEnter, core.KEY_ENTER, true},
		{glfw.KeyKPEnter, core.KEY_ENTER, true},
		{glfw.KeyTab, core.KEY_TAB, true},
		{glfw.KeyBackspace, core.KEY_BACKSPACE, true},
		{glfw.KeySpace, core.KEY_SPACE, true},
		{glfw.KeyA, core.KEY_A, true},
		{glfw.KeyZ, core.KEY_Z, true},
		{glfw.Key0, core.KEY_0, true},
		{glfw.Key9, core.KEY_9, true},
		{glfw.KeyF1, 0, false},
		{glfw.KeyUnknown, 0, false},
	}
	for _, tt := range tests {
		got, ok := translateKey(tt.key)
		assert.Equal(t, tt.ok, ok, "key %d", tt.key)
		assert.Equal(t, tt.want, got, "key %d", tt.key)
	}
}
