package main

import (
	"flag"
	"io"
	"testing"

	"github.com/idilsaglam/hotelres/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("hotelres", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func TestRootFlagsDefaultFromConfig(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	cfg := &config.Config{Theme: "neon", NoColor: true}

	rf, err := parseRootFlags(newFlagSet(), cfg, []string{"quote", "2024-06-10", "2024-06-13"})
	require.NoError(t, err)
	assert.Equal(t, "neon", rf.theme)
	assert.True(t, rf.noColor)
	assert.Equal(t, []string{"quote", "2024-06-10", "2024-06-13"}, rf.args)
}

func TestRootFlagsOverrideConfig(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	cfg := &config.Config{Theme: "neon", NoColor: true}

	rf, err := parseRootFlags(newFlagSet(), cfg, []string{"-theme", "mono", "-no-color=false", "cart"})
	require.NoError(t, err)
	assert.Equal(t, "mono", rf.theme)
	assert.False(t, rf.noColor)
	assert.Equal(t, []string{"cart"}, rf.args)
}

func TestRootFlagsHonourNoColorEnv(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	rf, err := parseRootFlags(newFlagSet(), &config.Config{Theme: "classic"}, nil)
	require.NoError(t, err)
	assert.True(t, rf.noColor)
	assert.Empty(t, rf.args)
}
