package id

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FormatImportID returns a row ID like "import-1737552000000-5" for the
// given import instant and zero-based row index.
func FormatImportID(t time.Time, row int) string {
	return fmt.Sprintf("import-%d-%d", t.UnixMilli(), row)
}

// ParseImportID parses "import-1737552000000-5" into its instant and row.
func ParseImportID(id string) (t time.Time, row int, err error) {
	parts := strings.SplitN(id, "-", 3)
	if len(parts) != 3 || parts[0] != "import" {
		return time.Time{}, 0, fmt.Errorf("invalid import ID format: %q", id)
	}

	ms, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("invalid timestamp in import ID %q: %w", id, err)
	}

	row, err = strconv.Atoi(parts[2])
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("invalid row in import ID %q: %w", id, err)
	}

	return time.UnixMilli(ms), row, nil
}
