// Package hexutil handles the hex text form of encoded coordinates.
//
// Input is case-insensitive and may carry a "0x" or "0X" prefix; output is
// always lower-case without a prefix.
package hexutil

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/arloliu/hybractal/errs"
)

// Strip removes an optional "0x"/"0X" prefix and surrounding whitespace.
func Strip(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}

	return s
}

// Decode decodes s after stripping the prefix.
//
// Returns an error wrapping errs.ErrInvalidHex for odd-length input or
// non-hex characters.
func Decode(s string) ([]byte, error) {
	s = Strip(s)
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("%w: odd length %d", errs.ErrInvalidHex, len(s))
	}

	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrInvalidHex, err)
	}

	return b, nil
}

// Encode returns the lower-case hex form of b.
func Encode(b []byte) string {
	return hex.EncodeToString(b)
}
