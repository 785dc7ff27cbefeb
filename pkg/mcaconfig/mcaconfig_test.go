package mcaconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	m, err := ParseMode("MCA")
	require.NoError(t, err)
	assert.Equal(t, ModeMCA, m)

	_, err = ParseMode("bogus")
	assert.Error(t, err)
}

func TestParseErrorMode(t *testing.T) {
	cases := map[string]ErrorMode{"rel": ErrorModeRel, "abs": ErrorModeAbs, "all": ErrorModeAll}
	for s, want := range cases {
		got, err := ParseErrorMode(s)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseErrorMode("bogus")
	assert.Error(t, err)
}

func TestErrorModeEnabledFlags(t *testing.T) {
	assert.True(t, ErrorModeRel.RelEnabled())
	assert.False(t, ErrorModeRel.AbsEnabled())
	assert.True(t, ErrorModeAbs.AbsEnabled())
	assert.False(t, ErrorModeAbs.RelEnabled())
	assert.True(t, ErrorModeAll.RelEnabled())
	assert.True(t, ErrorModeAll.AbsEnabled())
}

func TestDefaultOptionsValidates(t *testing.T) {
	assert.NoError(t, DefaultOptions().Validate())
}

func TestValidateRejectsOutOfRangePrecision(t *testing.T) {
	opts := DefaultOptions()
	opts.PrecisionBinary32 = 0
	assert.Error(t, opts.Validate())

	opts = DefaultOptions()
	opts.PrecisionBinary64 = PrecisionBinary64Max + 1
	assert.Error(t, opts.Validate())
}

func TestValidateRejectsBadSparsity(t *testing.T) {
	opts := DefaultOptions()
	opts.Sparsity = 0
	assert.Error(t, opts.Validate())

	opts.Sparsity = 1.5
	assert.Error(t, opts.Validate())
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	opts, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultOptions(), opts)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	opts := DefaultOptions()
	opts.Mode = "pb"
	opts.PrecisionBinary64 = 30

	require.NoError(t, opts.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, opts, loaded)
}

func TestLoadRejectsUnparseableYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("precision_binary32: [not, a, scalar]\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
