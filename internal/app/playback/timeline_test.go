package playback

import (
	"context"
	"testing"

	"github.com/BadrElyatim/quran-app/internal/app/transport"
	"github.com/BadrElyatim/quran-app/internal/domain/verse"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTable(t *testing.T, offsets ...float64) verse.TimestampTable {
	t.Helper()
	table, err := verse.NewTimestampTable(offsets)
	require.NoError(t, err)
	return table
}

// newLoadedTimeline returns a timeline over T = [0, 12.5, 30] with a 60s source.
func newLoadedTimeline(t *testing.T) (*Timeline, *transport.Manual) {
	t.Helper()
	tr := transport.NewManual()
	tl := NewTimeline(tr, TimelineConfig{Volume: DefaultVolume})
	t.Cleanup(tl.Close)

	require.NoError(t, tl.Load(context.Background(), "chapter.mp3", mustTable(t, 0, 12.5, 30)))
	tr.FinishLoading(60)
	return tl, tr
}

func drain(ch <-chan Event) []Event {
	var out []Event
	for {
		select {
		case e, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, e)
		default:
			return out
		}
	}
}

func countType(events []Event, typ EventType) int {
	n := 0
	for _, e := range events {
		if e.Type == typ {
			n++
		}
	}
	return n
}

func TestTimeline_ActiveVerse(t *testing.T) {
	tests := []struct {
		name     string
		position float64
		want     int
	}{
		{name: "inside second verse", position: 20, want: 2},
		{name: "exactly at third start", position: 30, want: 3},
		{name: "negative clamps to zero", position: -1, want: 1},
		{name: "past last timestamp", position: 59, want: 3},
		{name: "start", position: 0, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tl, tr := newLoadedTimeline(t)
			tr.SetPosition(tt.position)
			assert.Equal(t, tt.want, tl.State().ActiveVerse)
		})
	}
}

func TestTimeline_NoActiveVerseBeforeFirstTimestamp(t *testing.T) {
	tr := transport.NewManual()
	tl := NewTimeline(tr, TimelineConfig{Volume: DefaultVolume})
	defer tl.Close()
	require.NoError(t, tl.Load(context.Background(), "chapter.mp3", mustTable(t, 2, 10)))

	tr.SetPosition(1)
	assert.False(t, tl.State().HasActiveVerse())
	assert.Equal(t, 1.0, tl.State().CurrentTime)
}

func TestTimeline_EmptyTableHasNoActiveVerse(t *testing.T) {
	tr := transport.NewManual()
	tl := NewTimeline(tr, TimelineConfig{Volume: DefaultVolume})
	defer tl.Close()
	require.NoError(t, tl.Load(context.Background(), "chapter.mp3", verse.TimestampTable{}))

	tr.SetPosition(42)
	assert.Equal(t, 0, tl.State().ActiveVerse)
}

func TestTimeline_VerseChangeNotifiedOnlyOnChange(t *testing.T) {
	tl, tr := newLoadedTimeline(t)
	drain(tl.Events())

	tr.SetPosition(1)
	tr.SetPosition(5)
	tr.SetPosition(12)
	tr.SetPosition(13)
	tr.SetPosition(14)

	events := drain(tl.Events())
	assert.Equal(t, 2, countType(events, EventVerseChanged))
	assert.Equal(t, 2, tl.State().ActiveVerse)
}

func TestTimeline_CommitWithoutBeginIsNoop(t *testing.T) {
	tl, tr := newLoadedTimeline(t)
	tr.SetPosition(20)

	before := tl.State()
	tl.CommitSeekDrag()

	assert.Equal(t, before, tl.State())
	assert.Empty(t, tr.Seeks())
}

func TestTimeline_DragShadowsCurrentTime(t *testing.T) {
	tl, tr := newLoadedTimeline(t)
	tr.SetPosition(10)

	tl.BeginSeekDrag()
	assert.Equal(t, 10.0, tl.DisplayPosition())

	tl.UpdateSeekDrag(40)
	tr.SetPosition(15)

	st := tl.State()
	assert.True(t, st.Dragging)
	assert.Equal(t, 10.0, st.CurrentTime)
	assert.Equal(t, 40.0, tl.DisplayPosition())
	assert.Equal(t, 2, st.ActiveVerse)
	assert.Empty(t, tr.Seeks())

	tl.CommitSeekDrag()
	st = tl.State()
	assert.False(t, st.Dragging)
	assert.Equal(t, []float64{40}, tr.Seeks())
	assert.Equal(t, 40.0, st.CurrentTime)
	assert.Equal(t, 3, st.ActiveVerse)

	// Second commit is a no-op.
	tl.CommitSeekDrag()
	assert.Len(t, tr.Seeks(), 1)
}

func TestTimeline_UpdateSeekDragClamps(t *testing.T) {
	tests := []struct {
		name     string
		position float64
		want     float64
	}{
		{name: "past duration", position: 100, want: 60},
		{name: "negative", position: -5, want: 0},
		{name: "inside", position: 33.3, want: 33.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tl, _ := newLoadedTimeline(t)
			tl.BeginSeekDrag()
			tl.UpdateSeekDrag(tt.position)
			assert.Equal(t, tt.want, tl.State().Preview)
		})
	}
}

func TestTimeline_UpdateWithoutDragIgnored(t *testing.T) {
	tl, _ := newLoadedTimeline(t)
	tl.UpdateSeekDrag(30)
	assert.Equal(t, 0.0, tl.State().Preview)
	assert.False(t, tl.State().Dragging)
}

func TestTimeline_CancelSeekDrag(t *testing.T) {
	tl, tr := newLoadedTimeline(t)
	tl.BeginSeekDrag()
	tl.UpdateSeekDrag(30)
	tl.CancelSeekDrag()
	tl.CommitSeekDrag()

	assert.False(t, tl.State().Dragging)
	assert.Empty(t, tr.Seeks())
}

func TestTimeline_SetVolumeClamps(t *testing.T) {
	tests := []struct {
		input float64
		want  float64
	}{
		{input: 1.5, want: 1.0},
		{input: -0.2, want: 0.0},
		{input: 0.5, want: 0.5},
	}

	for _, tt := range tests {
		tl, tr := newLoadedTimeline(t)
		got := tl.SetVolume(tt.input)
		assert.Equal(t, tt.want, got)
		assert.Equal(t, tt.want, tl.State().Volume)
		assert.Equal(t, tt.want, tr.Volume())
	}
}

func TestTimeline_DefaultVolumeApplied(t *testing.T) {
	tr := transport.NewManual()
	tl := NewTimeline(tr, TimelineConfig{Volume: DefaultVolume})
	defer tl.Close()

	assert.Equal(t, 0.8, tr.Volume())
	assert.Equal(t, 0.8, tl.State().Volume)
}

func TestTimeline_TogglePlayPause(t *testing.T) {
	ctx := context.Background()
	tr := transport.NewManual()
	tl := NewTimeline(tr, TimelineConfig{Volume: DefaultVolume})
	defer tl.Close()

	hookCalls := 0
	tl.SetPlayRequestHook(func() { hookCalls++ })

	// No source yet.
	assert.True(t, errors.Is(tl.TogglePlayPause(ctx), ErrNotReady))

	// Loading.
	require.NoError(t, tl.Load(ctx, "chapter.mp3", mustTable(t, 0, 5)))
	assert.True(t, tl.State().IsLoading)
	assert.True(t, errors.Is(tl.TogglePlayPause(ctx), ErrNotReady))

	tr.FinishLoading(10)
	assert.False(t, tl.State().IsLoading)
	assert.Equal(t, 10.0, tl.State().Duration)

	require.NoError(t, tl.TogglePlayPause(ctx))
	assert.True(t, tl.IsPlaying())
	assert.False(t, tr.Paused())
	assert.Equal(t, 1, hookCalls)

	require.NoError(t, tl.TogglePlayPause(ctx))
	assert.False(t, tl.IsPlaying())
	assert.True(t, tr.Paused())
	assert.Equal(t, 1, hookCalls)
}

func TestTimeline_PlaybackRejected(t *testing.T) {
	tl, tr := newLoadedTimeline(t)
	tr.RejectPlay(errors.New("autoplay blocked"))

	err := tl.TogglePlayPause(context.Background())
	assert.True(t, errors.Is(err, ErrPlaybackRejected))
	assert.False(t, tl.IsPlaying())
	assert.True(t, tr.Paused())
}

func TestTimeline_PlaybackEnded(t *testing.T) {
	tl, tr := newLoadedTimeline(t)
	require.NoError(t, tl.TogglePlayPause(context.Background()))

	tr.Advance(35)
	assert.Equal(t, 3, tl.State().ActiveVerse)

	drain(tl.Events())
	tr.Advance(100)

	st := tl.State()
	assert.Equal(t, 0.0, st.CurrentTime)
	assert.False(t, st.IsPlaying)
	assert.Equal(t, 0, st.ActiveVerse)
	assert.Equal(t, 1, countType(drain(tl.Events()), EventEnded))
}

func TestTimeline_ExternalPauseSyncs(t *testing.T) {
	tl, tr := newLoadedTimeline(t)
	require.NoError(t, tl.TogglePlayPause(context.Background()))

	tr.Pause()
	assert.False(t, tl.IsPlaying())
}

func TestTimeline_LoadingLifecycle(t *testing.T) {
	ctx := context.Background()
	tl, tr := newLoadedTimeline(t)
	require.NoError(t, tl.TogglePlayPause(ctx))

	tl.BeginLoading()
	assert.True(t, tl.State().IsLoading)
	assert.True(t, tr.Paused())
	assert.True(t, errors.Is(tl.TogglePlayPause(ctx), ErrNotReady))

	tl.AbortLoading()
	st := tl.State()
	assert.False(t, st.IsLoading)
	assert.Equal(t, 0.0, st.Duration)
	assert.True(t, errors.Is(tl.TogglePlayPause(ctx), ErrNotReady))
}

func TestTimeline_LoadFailure(t *testing.T) {
	tr := transport.NewManual()
	tl := NewTimeline(tr, TimelineConfig{Volume: DefaultVolume})
	defer tl.Close()

	tr.FailLoad(errors.New("404"))
	err := tl.Load(context.Background(), "missing.mp3", mustTable(t, 0))
	require.Error(t, err)
	assert.False(t, tl.State().IsLoading)
	assert.True(t, errors.Is(tl.TogglePlayPause(context.Background()), ErrNotReady))
}

func TestTimeline_LoadResetsState(t *testing.T) {
	ctx := context.Background()
	tl, tr := newLoadedTimeline(t)
	require.NoError(t, tl.TogglePlayPause(ctx))
	tr.Advance(20)
	tl.SetVolume(0.3)

	require.NoError(t, tl.Load(ctx, "next.mp3", mustTable(t, 0, 3)))

	st := tl.State()
	assert.Equal(t, 0.0, st.CurrentTime)
	assert.Equal(t, 0, st.ActiveVerse)
	assert.False(t, st.IsPlaying)
	assert.True(t, st.IsLoading)
	assert.Equal(t, 0.3, st.Volume)
	assert.True(t, tr.Paused())
}

func TestTimeline_CloseDetachesTransport(t *testing.T) {
	tr := transport.NewManual()
	tl := NewTimeline(tr, TimelineConfig{Volume: DefaultVolume})
	require.NoError(t, tl.Load(context.Background(), "chapter.mp3", mustTable(t, 0, 5)))

	tl.Close()
	tl.Close()
	tr.SetPosition(7)

	assert.Equal(t, 0.0, tl.State().CurrentTime)
	drain(tl.Events())
	_, ok := <-tl.Events()
	assert.False(t, ok)
}

func TestMode_String(t *testing.T) {
	assert.Equal(t, "idle", ModeIdle.String())
	assert.Equal(t, "chapter_playing", ModeChapterPlaying.String())
	assert.Equal(t, "verse_playing", ModeVersePlaying.String())
	assert.Equal(t, "unknown", Mode(9).String())
	assert.Equal(t, "verse_changed", EventVerseChanged.String())
}
