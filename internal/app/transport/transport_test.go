package transport

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(m *Manual) (*[]Event, *Subscription) {
	var got []Event
	sub := m.Subscribe(func(e Event) { got = append(got, e) })
	return &got, sub
}

func types(events []Event) []EventType {
	out := make([]EventType, len(events))
	for i, e := range events {
		out[i] = e.Type
	}
	return out
}

func TestHub_DispatchOrderAndUnsubscribe(t *testing.T) {
	h := NewHub()
	var order []string

	first := h.Subscribe(func(Event) { order = append(order, "first") })
	h.Subscribe(func(Event) { order = append(order, "second") })
	assert.Equal(t, 2, h.SubscriberCount())
	assert.NotEmpty(t, first.ID())

	h.Dispatch(Event{Type: EventPlay})
	assert.Equal(t, []string{"first", "second"}, order)

	first.Unsubscribe()
	first.Unsubscribe()
	assert.Equal(t, 1, h.SubscriberCount())

	order = nil
	h.Dispatch(Event{Type: EventPause})
	assert.Equal(t, []string{"second"}, order)

	h.Close()
	assert.Equal(t, 0, h.SubscriberCount())
}

func TestHub_UnsubscribeDuringDispatch(t *testing.T) {
	h := NewHub()
	calls := 0
	var sub *Subscription
	sub = h.Subscribe(func(Event) {
		calls++
		sub.Unsubscribe()
	})

	h.Dispatch(Event{})
	h.Dispatch(Event{})
	assert.Equal(t, 1, calls)
}

func TestEventType_String(t *testing.T) {
	assert.Equal(t, "time_update", EventTimeUpdate.String())
	assert.Equal(t, "metadata_loaded", EventMetadataLoaded.String())
	assert.Equal(t, "ended", EventEnded.String())
	assert.Equal(t, "play", EventPlay.String())
	assert.Equal(t, "pause", EventPause.String())
	assert.Equal(t, "unknown", EventType(99).String())
}

func TestManual_PlayRequiresSource(t *testing.T) {
	m := NewManual()
	err := m.Play(context.Background())
	assert.True(t, errors.Is(err, ErrNoSource))
	assert.True(t, m.Paused())
}

func TestManual_Lifecycle(t *testing.T) {
	m := NewManual()
	got, _ := collect(m)
	ctx := context.Background()

	require.NoError(t, m.Load(ctx, "chapter.mp3"))
	m.FinishLoading(10)
	require.NoError(t, m.Play(ctx))
	require.NoError(t, m.Play(ctx)) // already playing
	m.Advance(4)
	m.Pause()
	m.Pause() // already paused
	m.Advance(4)

	assert.Equal(t, []EventType{EventMetadataLoaded, EventPlay, EventTimeUpdate, EventPause}, types(*got))
	assert.Equal(t, 4.0, m.Position())
	assert.Equal(t, 1, m.PlayCount())
	assert.Equal(t, "chapter.mp3", m.Source())
}

func TestManual_AdvancePastEnd(t *testing.T) {
	m := NewManual()
	ctx := context.Background()
	require.NoError(t, m.Load(ctx, "verse.mp3"))
	m.FinishLoading(3)
	require.NoError(t, m.Play(ctx))

	got, _ := collect(m)
	m.Advance(5)

	assert.Equal(t, []EventType{EventTimeUpdate, EventEnded}, types(*got))
	assert.Equal(t, 3.0, m.Position())
	assert.True(t, m.Paused())

	// Playing again after the end restarts.
	require.NoError(t, m.Play(ctx))
	assert.Equal(t, 0.0, m.Position())
}

func TestManual_LoadPausesPlayback(t *testing.T) {
	m := NewManual()
	ctx := context.Background()
	require.NoError(t, m.Load(ctx, "a.mp3"))
	require.NoError(t, m.Play(ctx))

	got, _ := collect(m)
	require.NoError(t, m.Load(ctx, "b.mp3"))

	assert.Equal(t, []EventType{EventPause}, types(*got))
	assert.True(t, m.Paused())
	assert.Equal(t, "b.mp3", m.Source())
}

func TestManual_Rejections(t *testing.T) {
	m := NewManual()
	ctx := context.Background()

	m.FailLoad(errors.New("404"))
	assert.Error(t, m.Load(ctx, "missing.mp3"))
	m.FailLoad(nil)
	require.NoError(t, m.Load(ctx, "ok.mp3"))

	m.RejectPlay(errors.New("autoplay blocked"))
	assert.Error(t, m.Play(ctx))
	assert.True(t, m.Paused())
	m.RejectPlay(nil)
	assert.NoError(t, m.Play(ctx))
}

func TestManual_SeekAndVolume(t *testing.T) {
	m := NewManual()
	got, _ := collect(m)

	m.Seek(12.5)
	m.SetVolume(0.3)

	assert.Equal(t, []float64{12.5}, m.Seeks())
	assert.Equal(t, 12.5, m.Position())
	assert.Equal(t, 0.3, m.Volume())
	require.Len(t, *got, 1)
	assert.Equal(t, EventTimeUpdate, (*got)[0].Type)
	assert.Equal(t, 12.5, (*got)[0].Position)
}
