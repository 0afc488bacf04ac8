package utils

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedIdentifier means a stored identifier does not have the
// PREFIX + digits shape. It points at corrupt data, not bad user input.
var ErrMalformedIdentifier = errors.New("malformed identifier")

// IDWidth is the zero padding used by every identifier kind.
const IDWidth = 4

// FormatID renders n as prefix + n zero-padded to width, e.g. CUST0007.
func FormatID(prefix string, width int, n int64) string {
	return fmt.Sprintf("%s%0*d", prefix, width, n)
}

// ParseID returns the numeric part of id.
func ParseID(prefix, id string) (int64, error) {
	if !strings.HasPrefix(id, prefix) {
		return 0, fmt.Errorf("%w: %q lacks prefix %q", ErrMalformedIdentifier, id, prefix)
	}
	digits := id[len(prefix):]
	if digits == "" || strings.TrimLeft(digits, "0123456789") != "" {
		return 0, fmt.Errorf("%w: %q", ErrMalformedIdentifier, id)
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrMalformedIdentifier, id, err)
	}
	return n, nil
}

// NextID returns the identifier following the last element of existing. An
// empty slice starts the sequence at 1.
func NextID(prefix string, width int, existing []string) (string, error) {
	if len(existing) == 0 {
		return FormatID(prefix, width, 1), nil
	}
	last, err := ParseID(prefix, existing[len(existing)-1])
	if err != nil {
		return "", err
	}
	return FormatID(prefix, width, last+1), nil
}
