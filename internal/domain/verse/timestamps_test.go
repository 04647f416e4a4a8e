package verse

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestampTable_ActiveVerse(t *testing.T) {
	tests := []struct {
		name      string
		offsets   []float64
		seconds   float64
		wantVerse int
		wantOK    bool
	}{
		{
			name:      "between second and third verse",
			offsets:   []float64{0, 12.5, 30.0},
			seconds:   20.0,
			wantVerse: 2,
			wantOK:    true,
		},
		{
			name:      "exactly at a start offset",
			offsets:   []float64{0, 12.5, 30.0},
			seconds:   30.0,
			wantVerse: 3,
			wantOK:    true,
		},
		{
			name:      "negative time clamps to zero",
			offsets:   []float64{0, 12.5, 30.0},
			seconds:   -1,
			wantVerse: 1,
			wantOK:    true,
		},
		{
			name:      "past the last verse stays on last verse",
			offsets:   []float64{0, 12.5, 30.0},
			seconds:   900,
			wantVerse: 3,
			wantOK:    true,
		},
		{
			name:    "before the first verse",
			offsets: []float64{5, 12.5},
			seconds: 4.99,
			wantOK:  false,
		},
		{
			name:    "empty table",
			offsets: nil,
			seconds: 10,
			wantOK:  false,
		},
		{
			name:      "equal offsets pick the later verse",
			offsets:   []float64{0, 10, 10, 20},
			seconds:   10,
			wantVerse: 3,
			wantOK:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := NewTimestampTable(tt.offsets)
			require.NoError(t, err)

			got, ok := table.ActiveVerse(tt.seconds)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantVerse, got)
		})
	}
}

// Checks the lookup against a reference scan for every time step.
func TestTimestampTable_ActiveVerseMatchesReference(t *testing.T) {
	offsets := []float64{0, 0, 3.2, 7.5, 7.5, 7.5, 11, 19.75, 40}
	table, err := NewTimestampTable(offsets)
	require.NoError(t, err)

	for step := 0; step <= 500; step++ {
		seconds := float64(step) / 10

		want := 0
		for i, start := range offsets {
			if start <= seconds {
				want = i + 1
			}
		}

		got, ok := table.ActiveVerse(seconds)
		assert.Equal(t, want != 0, ok, "seconds=%.1f", seconds)
		assert.Equal(t, want, got, "seconds=%.1f", seconds)
	}
}

func TestNewTimestampTable_RejectsDecreasing(t *testing.T) {
	_, err := NewTimestampTable([]float64{0, 10, 5})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNonMonotonic))
}

func TestTimestampTable_IsImmutable(t *testing.T) {
	offsets := []float64{0, 4, 8}
	table, err := NewTimestampTable(offsets)
	require.NoError(t, err)

	offsets[1] = 100
	table.Offsets()[2] = 100

	start, ok := table.StartOf(2)
	assert.True(t, ok)
	assert.Equal(t, 4.0, start)
	start, _ = table.StartOf(3)
	assert.Equal(t, 8.0, start)

	_, ok = table.StartOf(4)
	assert.False(t, ok)
}
