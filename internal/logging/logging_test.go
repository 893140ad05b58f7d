package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLoggingToFile(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	path := filepath.Join(t.TempDir(), "debug.log")
	cleanup, err := SetupLogging(path)
	require.NoError(t, err)

	Debugf("dialog %s token=%d", "ticket", 3)
	Errorf("save failed: %v", "boom")
	cleanup()

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `msg="dialog ticket token=3"`)
	assert.Contains(t, string(b), "level=ERROR")
}

func TestSetupLoggingDisabled(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	cleanup, err := SetupLogging("")
	require.NoError(t, err)
	defer cleanup()

	assert.NotNil(t, cleanup)
	Infof("nothing to see")
}

func TestSetupLoggingBadPath(t *testing.T) {
	_, err := SetupLogging(filepath.Join(t.TempDir(), "missing", "debug.log"))
	assert.Error(t, err)
}
