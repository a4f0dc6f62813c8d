// Package collision detects block tags that occur more than once in an
// archive block table.
package collision

import (
	"github.com/arloliu/hybractal/format"
)

// Tracker records block tags in table order. The first entry of a tag is
// the one readers use; later entries with the same tag are duplicates.
type Tracker struct {
	first      map[format.BlockTag]int // tag → index of its first entry
	duplicates []int                   // indexes of shadowed entries, in table order
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		first: make(map[format.BlockTag]int),
	}
}

// Track records the entry at index idx. When tag was seen before it returns
// the index of the first entry and true.
func (t *Tracker) Track(tag format.BlockTag, idx int) (int, bool) {
	if prev, exists := t.first[tag]; exists {
		t.duplicates = append(t.duplicates, idx)
		return prev, true
	}

	t.first[tag] = idx

	return idx, false
}

// HasCollision reports whether any tag occurred more than once.
func (t *Tracker) HasCollision() bool {
	return len(t.duplicates) > 0
}

// Duplicates returns the indexes of the shadowed entries.
func (t *Tracker) Duplicates() []int {
	return t.duplicates
}

// Count returns the number of distinct tags tracked.
func (t *Tracker) Count() int {
	return len(t.first)
}

// Reset clears the tracker for reuse, keeping its capacity.
func (t *Tracker) Reset() {
	clear(t.first)
	t.duplicates = t.duplicates[:0]
}
