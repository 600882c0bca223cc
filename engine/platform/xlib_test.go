//go:build linux || freebsd

package platform

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/midnight/engine/config"
)

func TestXlibStructLayout(t *testing.T) {
	assert.Equal(t, uintptr(192), unsafe.Sizeof(xEvent{}))
	assert.Equal(t, uintptr(80), unsafe.Sizeof(xSizeHints{}))
	assert.Equal(t, uintptr(32), unsafe.Offsetof(xSizeHints{}.maxWidth))
}

func TestXEventAccessors(t *testing.T) {
	var event xEvent
	event[0] = xClientMessage
	event[7] = 42
	assert.Equal(t, int32(xClientMessage), event.kind())
	assert.Equal(t, uint64(42), event.clientData())
}

func TestNewWindowWithoutDisplay(t *testing.T) {
	t.Setenv("DISPLAY", "")
	x, err := loadXlib()
	if err != nil {
		t.Skipf("libX11 not available: %s", err)
	}
	x.close()

	_, err = NewWindow(config.Default().Window)
	require.Error(t, err)
	assert.ErrorIs(t, err, errNoDisplay)
}
