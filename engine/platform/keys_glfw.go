//go:build windows

package platform

import (
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/spaghettifunk/midnight/engine/core"
)

// translateKey maps a glfw key to the engine key code. Printable keys share
// their ASCII value in both.
func translateKey(key glfw.Key) (core.KeyCode, bool) {
	switch key {
	case glfw.KeyEscape:
		return core.KEY_ESCAPE, true
	case glfw.KeyEnter, glfw.KeyKPEnter:
		return core.KEY_ENTER, true
	case glfw.KeyTab:
		return core.KEY_TAB, true
	case glfw.KeyBackspace:
		return core.KEY_BACKSPACE, true
	}
	if key >= glfw.KeySpace && key <= glfw.KeyGraveAccent {
		return core.KeyCode(key), true
	}
	return 0, false
}
