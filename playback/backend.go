// Package playback owns the single audio handle and translates backend events
// into explicit session state.
package playback

import (
	"context"
	"sync"
)

type EventKind int

const (
	EventLoaded EventKind = iota + 1
	EventPlaying
	EventPaused
	EventStopped
	EventEnded
	EventLoadError
)

func (k EventKind) String() string {
	switch k {
	case EventLoaded:
		return "loaded"
	case EventPlaying:
		return "playing"
	case EventPaused:
		return "paused"
	case EventStopped:
		return "stopped"
	case EventEnded:
		return "ended"
	case EventLoadError:
		return "load-error"
	}
	return "unknown"
}

// Event is reported by Handle. Duration (seconds) is set for EventLoaded, Err
// for EventLoadError.
type Event struct {
	Kind     EventKind
	Duration float64
	Err      error
}

// Backend opens audio handles. Open must not wait for media to load, readiness
// is reported later with EventLoaded or EventLoadError.
type Backend interface {
	Open(ctx context.Context, url string) (Handle, error)
}

// Handle is a single opened audio source. Handle methods must not block on
// event delivery. Events channel is closed after Close.
type Handle interface {
	Play() error
	Pause() error
	Stop() error
	Seek(position float64) error
	SetVolume(volume float64) error
	// Position returns current position in seconds.
	Position() float64
	Events() <-chan Event
	Close() error
}

// EventQueue is unbounded event buffer backends may use to satisfy Handle
// requirements: Push never blocks.
type EventQueue struct {
	mu     sync.Mutex
	items  []Event
	wake   chan struct{}
	done   chan struct{}
	out    chan Event
	closed bool
}

func NewEventQueue() *EventQueue {
	q := &EventQueue{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
		out:  make(chan Event),
	}
	go q.run()
	return q
}

// Events returns receiving side of the queue.
func (q *EventQueue) Events() <-chan Event {
	return q.out
}

// Push queues event, events pushed after Close are dropped.
func (q *EventQueue) Push(e Event) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.items = append(q.items, e)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Close drops undelivered events and closes Events channel.
func (q *EventQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.done)
}

func (q *EventQueue) run() {
	defer close(q.out)
	for {
		q.mu.Lock()
		if q.closed {
			q.mu.Unlock()
			return
		}
		if len(q.items) == 0 {
			q.mu.Unlock()
			select {
			case <-q.wake:
			case <-q.done:
				return
			}
			continue
		}
		e := q.items[0]
		q.items = q.items[1:]
		q.mu.Unlock()

		select {
		case q.out <- e:
		case <-q.done:
			return
		}
	}
}
