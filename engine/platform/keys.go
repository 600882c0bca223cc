package platform

import (
	"github.com/spaghettifunk/midnight/engine/core"
)

// X11 keysyms outside the Latin-1 range.
const (
	xkBackSpace = 0xff08
	xkTab       = 0xff09
	xkReturn    = 0xff0d
	xkEscape    = 0xff1b
	xkKPEnter   = 0xff8d
)

// translateKeysym maps an unshifted X11 keysym to the engine key code.
// Latin-1 keysyms are ASCII, letters arrive lower case.
func translateKeysym(keysym uint64) (core.KeyCode, bool) {
	switch keysym {
	case xkEscape:
		return core.KEY_ESCAPE, true
	case xkReturn, xkKPEnter:
		return core.KEY_ENTER, true
	case xkTab:
		return core.KEY_TAB, true
	case xkBackSpace:
		return core.KEY_BACKSPACE, true
	}
	switch {
	case keysym >= 'a' && keysym <= 'z':
		return core.KeyCode(keysym - 'a' + 'A'), true
	case keysym >= ' ' && keysym <= '`':
		return core.KeyCode(keysym), true
	}
	return 0, false
}
