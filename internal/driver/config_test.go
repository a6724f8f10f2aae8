package driver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jlmgo/internal/passes/cne"
	"jlmgo/internal/passes/dne"
	"jlmgo/internal/passes/motion"
)

// TestParseArgsPreservesFlagOrder checks repeated --OPT flags build the
// pass list in the exact left-to-right order they were given, since that
// order fixes the order passes run in.
func TestParseArgsPreservesFlagOrder(t *testing.T) {
	cfg, err := ParseArgs([]string{"--dne", "--cne", "--dne", "in.ir"})
	require.NoError(t, err)
	require.Len(t, cfg.Passes, 3)
	assert.Equal(t, dne.Pass{}.Name(), cfg.Passes[0].Name())
	assert.Equal(t, cne.Pass{}.Name(), cfg.Passes[1].Name())
	assert.Equal(t, dne.Pass{}.Name(), cfg.Passes[2].Name())
	assert.Equal(t, "in.ir", cfg.Input)
}

func TestParseArgsOutputAndStatsFlags(t *testing.T) {
	cfg, err := ParseArgs([]string{"-o", "out.ir", "-s", "out.stats", "--xml", "in.ir"})
	require.NoError(t, err)
	assert.Equal(t, "out.ir", cfg.Output)
	assert.Equal(t, "out.stats", cfg.StatsFile)
	assert.Equal(t, FormatXML, cfg.Format)
	assert.Equal(t, "in.ir", cfg.Input)
}

func TestParseArgsUnrollDefaultAndExplicitFactor(t *testing.T) {
	cfg, err := ParseArgs([]string{"--url", "in.ir"})
	require.NoError(t, err)
	require.Len(t, cfg.Passes, 1)
	u, ok := cfg.Passes[0].(motion.Unroll)
	require.True(t, ok)
	assert.Equal(t, motion.DefaultUnrollFactor, u.Factor)

	cfg, err = ParseArgs([]string{"--url=8", "in.ir"})
	require.NoError(t, err)
	u, ok = cfg.Passes[0].(motion.Unroll)
	require.True(t, ok)
	assert.Equal(t, 8, u.Factor)
}

func TestParseArgsPrintStatSelectsPassByName(t *testing.T) {
	cfg, err := ParseArgs([]string{"--dne", "--print-dne-stat", "in.ir"})
	require.NoError(t, err)
	assert.True(t, cfg.StatsNames[dne.Pass{}.Name()])
}

func TestParseArgsRejectsUnknownFlag(t *testing.T) {
	_, err := ParseArgs([]string{"--nonsense", "in.ir"})
	require.Error(t, err)
}

func TestParseArgsRejectsMissingInput(t *testing.T) {
	_, err := ParseArgs([]string{"--dne"})
	require.Error(t, err)
}

func TestParseArgsRejectsExtraPositional(t *testing.T) {
	_, err := ParseArgs([]string{"in.ir", "extra.ir"})
	require.Error(t, err)
}
