package simconfig_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/llcsim/hawkeye/internal/simconfig"
	"github.com/stretchr/testify/require"
)

func Test_Load_MissingFile_ReturnsDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := simconfig.Load(filepath.Join(t.TempDir(), "absent.jsonc"))
	require.NoError(t, err)
	require.Equal(t, simconfig.Default(), cfg)
}

func Test_Load_JSONCWithComments_Overrides(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "sim.jsonc")
	body := `{
		// superblock compression off for this run
		"compressed_cache": false,
		"num_ways": 8,
		"optgen_variant": "demand",
		"dp_policy": "all",
	}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := simconfig.Load(path)
	require.NoError(t, err)
	require.False(t, cfg.CompressedCache)
	require.Equal(t, 8, cfg.NumWays)
	require.Equal(t, "demand", cfg.OptgenVariant)
}

func Test_Validate_RejectsUnknownEnum(t *testing.T) {
	t.Parallel()

	cfg := simconfig.Default()
	cfg.OptgenVariant = "bogus"
	require.Error(t, simconfig.Validate(cfg))
}

func Test_Validate_RejectsNonPowerOfTwoSets(t *testing.T) {
	t.Parallel()

	cfg := simconfig.Default()
	cfg.NumSets = 3
	require.Error(t, simconfig.Validate(cfg))
}
