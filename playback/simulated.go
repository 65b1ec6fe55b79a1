package playback

import (
	"context"
	"errors"
	"sync"
	"time"
)

var errNotLoaded = errors.New("audio is not loaded")

// Simulated is clock driven backend without audio output. It lets the engine
// run headless: position advances in real time while playing and EventEnded
// fires when duration is reached.
type Simulated struct {
	// DurationFunc returns media duration or error which is reported as
	// EventLoadError. Required.
	DurationFunc func(ctx context.Context, url string) (time.Duration, error)
	// LoadDelay postpones EventLoaded.
	LoadDelay time.Duration
}

// FixedDuration returns DurationFunc reporting the same duration for every URL.
func FixedDuration(d time.Duration) func(context.Context, string) (time.Duration, error) {
	return func(context.Context, string) (time.Duration, error) {
		return d, nil
	}
}

func (s *Simulated) Open(ctx context.Context, url string) (Handle, error) {
	if s.DurationFunc == nil {
		return nil, errors.New("simulated backend has no duration source")
	}
	loadCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	h := &simHandle{
		events: NewEventQueue(),
		volume: 1,
		cancel: cancel,
	}
	go h.load(loadCtx, s, url)
	return h, nil
}

type simHandle struct {
	events *EventQueue
	cancel context.CancelFunc

	mu       sync.Mutex
	loaded   bool
	closed   bool
	duration time.Duration
	offset   time.Duration // position when playback (re)started
	since    time.Time     // zero when not playing
	volume   float64
	timer    *time.Timer
}

func (h *simHandle) load(ctx context.Context, s *Simulated, url string) {
	if s.LoadDelay > 0 {
		select {
		case <-time.After(s.LoadDelay):
		case <-ctx.Done():
			return
		}
	}
	d, err := s.DurationFunc(ctx, url)

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	if err == nil && d <= 0 {
		err = errors.New("media has no duration")
	}
	if err != nil {
		h.events.Push(Event{Kind: EventLoadError, Err: err})
		return
	}
	h.loaded, h.duration = true, d
	h.events.Push(Event{Kind: EventLoaded, Duration: d.Seconds()})
}

func (h *simHandle) positionLocked() time.Duration {
	pos := h.offset
	if !h.since.IsZero() {
		pos += time.Since(h.since)
	}
	return min(pos, h.duration)
}

func (h *simHandle) stopTimerLocked() {
	if h.timer != nil {
		h.timer.Stop()
		h.timer = nil
	}
}

func (h *simHandle) armLocked() {
	h.stopTimerLocked()
	var timer *time.Timer
	timer = time.AfterFunc(h.duration-h.offset, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		// stopped timer may still fire once
		if h.closed || h.since.IsZero() || h.timer != timer {
			return
		}
		h.timer = nil
		h.offset, h.since = h.duration, time.Time{}
		h.events.Push(Event{Kind: EventEnded})
	})
	h.timer = timer
}

func (h *simHandle) Play() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.loaded || h.closed {
		return errNotLoaded
	}
	if !h.since.IsZero() {
		return nil
	}
	if h.offset >= h.duration {
		h.offset = 0
	}
	h.since = time.Now()
	h.armLocked()
	h.events.Push(Event{Kind: EventPlaying})
	return nil
}

func (h *simHandle) Pause() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.loaded || h.closed {
		return errNotLoaded
	}
	if h.since.IsZero() {
		return nil
	}
	h.offset, h.since = h.positionLocked(), time.Time{}
	h.stopTimerLocked()
	h.events.Push(Event{Kind: EventPaused})
	return nil
}

func (h *simHandle) Stop() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.loaded || h.closed {
		return errNotLoaded
	}
	h.offset, h.since = 0, time.Time{}
	h.stopTimerLocked()
	h.events.Push(Event{Kind: EventStopped})
	return nil
}

func (h *simHandle) Seek(position float64) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.loaded || h.closed {
		return errNotLoaded
	}
	h.offset = min(max(time.Duration(position*float64(time.Second)), 0), h.duration)
	if !h.since.IsZero() {
		h.since = time.Now()
		h.armLocked()
	}
	return nil
}

func (h *simHandle) SetVolume(volume float64) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.volume = volume
	return nil
}

func (h *simHandle) Position() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.positionLocked().Seconds()
}

func (h *simHandle) Events() <-chan Event {
	return h.events.Events()
}

func (h *simHandle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	h.stopTimerLocked()
	h.cancel()
	h.events.Close()
	return nil
}
