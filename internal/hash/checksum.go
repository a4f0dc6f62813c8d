// Package hash provides the block checksum used by the archive block table.
package hash

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Checksum computes the xxHash64 of data.
func Checksum(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// Format renders a checksum the way hybtool prints it: 16 lower-case hex digits.
func Format(sum uint64) string {
	return fmt.Sprintf("%016x", sum)
}
