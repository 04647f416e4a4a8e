// Package playback provides the chapter timeline, the single-verse switcher
// and the player that arbitrates between them.
package playback

// Mode represents which transport is audibly active.
type Mode int

const (
	ModeIdle           Mode = iota // Nothing playing
	ModeChapterPlaying             // Whole-chapter transport playing
	ModeVersePlaying               // Single verse playing in isolation
)

// String returns the string representation of the mode.
func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeChapterPlaying:
		return "chapter_playing"
	case ModeVersePlaying:
		return "verse_playing"
	default:
		return "unknown"
	}
}

// DefaultVolume is the initial chapter volume.
const DefaultVolume = 0.8

// State is a snapshot of the timeline.
type State struct {
	CurrentTime float64 // Seconds, >= 0
	Duration    float64 // Seconds, 0 until metadata is loaded
	IsPlaying   bool
	IsLoading   bool
	Volume      float64 // [0, 1]
	ActiveVerse int     // 1-based, 0 when none
	Dragging    bool
	Preview     float64 // Drag preview position in seconds
}

// HasActiveVerse reports whether a verse is active.
func (s State) HasActiveVerse() bool {
	return s.ActiveVerse > 0
}

// DisplayPosition returns the drag preview while dragging, else the current time.
func (s State) DisplayPosition() float64 {
	if s.Dragging {
		return s.Preview
	}
	return s.CurrentTime
}

func clamp(v, low, high float64) float64 {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}
