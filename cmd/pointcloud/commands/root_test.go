package commands

import (
	"bytes"
	"testing"

	gp "github.com/gekko3d/gridparticles"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newFlagCmd rebinds the package flag variables to a fresh flag set.
func newFlagCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "pointcloud"}
	cmd.Flags().IntVarP(&particles, "particles", "n", 0, "")
	cmd.Flags().IntVar(&width, "width", 0, "")
	cmd.Flags().IntVar(&height, "height", 0, "")
	cmd.Flags().BoolVarP(&debug, "debug", "d", false, "")
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func TestApplyFlags_OnlyChangedFlags(t *testing.T) {
	cfg := gp.DefaultConfig()
	cmd := newFlagCmd(t, "-n", "1234", "--debug")

	require.NoError(t, applyFlags(cmd, cfg))
	assert.Equal(t, 1234, cfg.Particles.Count)
	assert.True(t, cfg.Logging.Debug)
	assert.Equal(t, gp.DefaultConfig().Window, cfg.Window)
}

func TestApplyFlags_ZeroParticlesAllowed(t *testing.T) {
	cfg := gp.DefaultConfig()
	cmd := newFlagCmd(t, "--particles", "0")

	require.NoError(t, applyFlags(cmd, cfg))
	assert.Equal(t, 0, cfg.Particles.Count)
}

func TestApplyFlags_Invalid(t *testing.T) {
	cfg := gp.DefaultConfig()
	cmd := newFlagCmd(t, "--width", "0")

	err := applyFlags(cmd, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid flags")
	assert.Contains(t, err.Error(), "window size must be positive")
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	versionCmd.Run(versionCmd, nil)

	assert.Equal(t, "pointcloud v"+Version+"\n", out.String())
}
