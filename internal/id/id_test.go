package id

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatImportID(t *testing.T) {
	at := time.UnixMilli(1737552000000)
	assert.Equal(t, "import-1737552000000-0", FormatImportID(at, 0))
	assert.Equal(t, "import-1737552000000-41", FormatImportID(at, 41))
}

func TestParseImportID(t *testing.T) {
	at, row, err := ParseImportID("import-1737552000000-5")
	require.NoError(t, err)
	assert.Equal(t, int64(1737552000000), at.UnixMilli())
	assert.Equal(t, 5, row)
}

func TestParseImportID_RoundTrip(t *testing.T) {
	at := time.UnixMilli(1700000000123)
	parsed, row, err := ParseImportID(FormatImportID(at, 7))
	require.NoError(t, err)
	assert.True(t, parsed.Equal(at))
	assert.Equal(t, 7, row)
}

func TestParseImportID_Invalid(t *testing.T) {
	_, _, err := ParseImportID("batch-123-0")
	assert.Error(t, err)

	_, _, err = ParseImportID("import-abc-0")
	assert.Error(t, err)

	_, _, err = ParseImportID("import-123")
	assert.Error(t, err)
}
