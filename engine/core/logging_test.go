package core

import (
	"bytes"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogErrorKeepsVerbsInArguments(t *testing.T) {
	var buf bytes.Buffer
	l := getLogger()
	l.SetOutput(&buf)
	t.Cleanup(func() { l.SetOutput(os.Stderr) })

	LogError("%s", errors.New("surface lost at 100% load"))

	assert.Contains(t, buf.String(), "surface lost at 100% load")
	assert.NotContains(t, buf.String(), "%!")
}

func TestSetLogLevel(t *testing.T) {
	var buf bytes.Buffer
	l := getLogger()
	l.SetOutput(&buf)
	t.Cleanup(func() {
		l.SetOutput(os.Stderr)
		require.NoError(t, SetLogLevel("info"))
	})

	require.NoError(t, SetLogLevel("warn"))
	LogInfo("hidden")
	LogWarn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	assert.Error(t, SetLogLevel("loud"))
}
