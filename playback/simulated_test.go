package playback

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"obsync/common"
)

func TestEventQueue(t *testing.T) {
	q := NewEventQueue()
	for _, k := range []EventKind{EventLoaded, EventPlaying, EventEnded} {
		q.Push(Event{Kind: k})
	}
	for _, want := range []EventKind{EventLoaded, EventPlaying, EventEnded} {
		select {
		case e := <-q.Events():
			if e.Kind != want {
				t.Errorf("event = %s, want %s", e.Kind, want)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for %s", want)
		}
	}

	q.Close()
	q.Push(Event{Kind: EventLoaded})
	select {
	case _, ok := <-q.Events():
		if ok {
			t.Error("event delivered after Close()")
		}
	case <-time.After(time.Second):
		t.Fatal("Events() channel not closed")
	}
}

func TestSimulated_PlaysToEnd(t *testing.T) {
	sim := &Simulated{DurationFunc: FixedDuration(150 * time.Millisecond)}
	c := NewController(sim, Options{PollInterval: 10 * time.Millisecond, Volume: 1}, zaptest.NewLogger(t))
	defer c.Close()

	c.Load(context.Background(), 0, "01.mp3")
	waitFor(t, "loaded", func() bool { return c.Session().IsLoaded() })
	if d := c.Session().Duration; d != 0.15 {
		t.Errorf("Duration = %v, want 0.15", d)
	}

	c.Play()
	waitFor(t, "position advance", func() bool { return c.Session().Position > 0 })
	waitFor(t, "ended", func() bool { return c.Session().Transport == common.TransportStateEnded })
	if got := c.Session().Position; got != 0.15 {
		t.Errorf("Position at end = %v, want 0.15", got)
	}

	// play after end restarts
	c.Play()
	if s := c.Session(); !s.IsPlaying() || s.Position >= 0.1 {
		t.Errorf("session after restart = %v", s)
	}
}

func TestSimulated_PauseSeek(t *testing.T) {
	sim := &Simulated{DurationFunc: FixedDuration(10 * time.Second), LoadDelay: 20 * time.Millisecond}
	h, err := sim.Open(context.Background(), "x.mp3")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer h.Close()

	if err := h.Play(); err == nil {
		t.Error("Play() before loaded should fail")
	}
	select {
	case e := <-h.Events():
		if e.Kind != EventLoaded || e.Duration != 10 {
			t.Fatalf("first event = %+v", e)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for loaded")
	}

	if err := h.Seek(4); err != nil {
		t.Fatalf("Seek() error = %v", err)
	}
	if got := h.Position(); got != 4 {
		t.Errorf("Position() = %v, want 4", got)
	}
	if err := h.Seek(99); err != nil {
		t.Fatalf("Seek() error = %v", err)
	}
	if got := h.Position(); got != 10 {
		t.Errorf("Position() = %v, want clamped 10", got)
	}

	h.Seek(1)
	h.Play()
	time.Sleep(20 * time.Millisecond)
	h.Pause()
	paused := h.Position()
	if paused <= 1 {
		t.Errorf("Position() after play = %v, want > 1", paused)
	}
	time.Sleep(20 * time.Millisecond)
	if got := h.Position(); got != paused {
		t.Errorf("Position() moved while paused: %v -> %v", paused, got)
	}
}

func TestSimulated_LoadError(t *testing.T) {
	sim := &Simulated{DurationFunc: func(context.Context, string) (time.Duration, error) {
		return 0, errors.New("unsupported codec")
	}}
	c := NewController(sim, Options{}, zaptest.NewLogger(t))
	defer c.Close()

	c.Load(context.Background(), 4, "05.mp3")
	waitFor(t, "failed", func() bool { return c.Session().Load == common.LoadStateFailed })
	if s := c.Session(); s.IsLoaded() || s.IsPlaying() || !errors.Is(s.Err, common.ErrAudioLoad) {
		t.Errorf("session = %v, err = %v", s, s.Err)
	}
}
