package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRunCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "run"}
	cmd.Flags().String("config", "", "")
	cmd.Flags().String("log-level", "", "")
	cmd.Flags().String("log-format", "", "")
	cmd.Flags().String("ledger", "", "")
	addRunFlags(cmd.Flags())
	return cmd
}

func TestLoadConfig_FlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "turtleshot.yaml")
	require.NoError(t, os.WriteFile(path, []byte("width: 640\nheight: 480\ntag: from-file\n"), 0o644))

	cmd := newRunCommand()
	require.NoError(t, cmd.Flags().Parse([]string{"--config", path, "--height", "300", "--combined"}))

	cfg, err := loadConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, 640, cfg.Width)
	assert.Equal(t, 300, cfg.Height)
	assert.Equal(t, "from-file", cfg.Tag)
	assert.True(t, cfg.Combined)
	assert.Equal(t, 5, cfg.Margin)
}

func TestLoadConfig_UnsetFlagsKeepDefaults(t *testing.T) {
	cmd := newRunCommand()
	require.NoError(t, cmd.Flags().Parse(nil))

	cfg, err := loadConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, "/dev/stdin", cfg.File)
	assert.Equal(t, 80000, cfg.MaxCycles)
}
