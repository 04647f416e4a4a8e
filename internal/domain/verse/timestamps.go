package verse

import "github.com/cockroachdb/errors"

// ErrNonMonotonic is returned when verse start offsets decrease.
var ErrNonMonotonic = errors.New("verse timestamps are not non-decreasing")

// TimestampTable holds verse start offsets in seconds for one chapter
// recitation. Index 0 is verse 1. A table is immutable once built; a new
// chapter or reciter gets a new table.
type TimestampTable struct {
	offsets []float64
}

// NewTimestampTable builds a table from start offsets in seconds.
func NewTimestampTable(offsets []float64) (TimestampTable, error) {
	for i := 1; i < len(offsets); i++ {
		if offsets[i] < offsets[i-1] {
			return TimestampTable{}, errors.Wrapf(ErrNonMonotonic,
				"verse %d starts at %.3fs before verse %d at %.3fs", i+1, offsets[i], i, offsets[i-1])
		}
	}

	copied := make([]float64, len(offsets))
	copy(copied, offsets)
	return TimestampTable{offsets: copied}, nil
}

// Len returns the number of verses in the table.
func (t TimestampTable) Len() int {
	return len(t.offsets)
}

// IsEmpty reports whether the table has no entries.
func (t TimestampTable) IsEmpty() bool {
	return len(t.offsets) == 0
}

// Offsets returns a copy of the start offsets.
func (t TimestampTable) Offsets() []float64 {
	copied := make([]float64, len(t.offsets))
	copy(copied, t.offsets)
	return copied
}

// StartOf returns the start offset of a 1-based verse number.
func (t TimestampTable) StartOf(verseNumber int) (float64, bool) {
	if verseNumber < 1 || verseNumber > len(t.offsets) {
		return 0, false
	}
	return t.offsets[verseNumber-1], true
}

// ActiveVerse returns the 1-based number of the last verse whose start offset
// is <= seconds. Negative times are treated as 0. Returns false when the table
// is empty or seconds precedes the first verse. When consecutive offsets are
// equal the later verse wins.
func (t TimestampTable) ActiveVerse(seconds float64) (int, bool) {
	if seconds < 0 {
		seconds = 0
	}

	active := 0
	for i, start := range t.offsets {
		if start > seconds {
			break
		}
		active = i + 1
	}

	if active == 0 {
		return 0, false
	}
	return active, true
}
