package playback

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"obsync/common"
	"obsync/config"
)

var ErrClosed = errors.New("playback controller is closed")

// Options tunes Controller. OnChange receives every session change in order
// of occurrence and must not call back into Controller. SaveVolume is called
// on every volume change.
type Options struct {
	PollInterval time.Duration
	Volume       float64
	OnChange     func(Session)
	SaveVolume   func(float64)
}

// OptionsFromConfig returns options with poll interval and default volume
// taken from configuration.
func OptionsFromConfig(cfg *config.PlaybackConfig) Options {
	return Options{
		PollInterval: cfg.PollInterval,
		Volume:       cfg.DefaultVolume,
	}
}

// Controller exclusively owns one audio handle at a time. Transport
// operations are no-ops until backend reports the handle loaded. Failures are
// reported through Session, never returned.
type Controller struct {
	backend Backend
	opts    Options
	log     *zap.Logger

	mu         sync.Mutex
	session    Session
	handle     Handle
	release    context.CancelFunc // stops event pump of current handle
	stopPoll   context.CancelFunc
	prevVolume float64
	closed     bool

	// held while OnChange runs so callbacks observe changes in order
	notifyMu sync.Mutex
	wg       sync.WaitGroup
}

func NewController(backend Backend, opts Options, log *zap.Logger) *Controller {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 100 * time.Millisecond
	}
	opts.Volume = clampVolume(opts.Volume)
	return &Controller{
		backend: backend,
		opts:    opts,
		log:     log.Named("playback"),
		session: Session{StoryIndex: -1, Volume: opts.Volume},
	}
}

// Session returns current state.
func (c *Controller) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// commit publishes current session. Must be called with c.mu held, releases it.
func (c *Controller) commit() {
	s := c.session
	c.notifyMu.Lock()
	c.mu.Unlock()
	defer c.notifyMu.Unlock()
	if c.opts.OnChange != nil {
		c.opts.OnChange(s)
	}
}

// Load releases previous handle and opens new one for the story audio.
// Outcome is reported asynchronously through session state.
func (c *Controller) Load(ctx context.Context, storyIndex int, url string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.releaseLocked()

	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	c.session = Session{
		ID:         id,
		StoryIndex: storyIndex,
		AudioURL:   url,
		Load:       common.LoadStateLoading,
		Volume:     c.session.Volume,
	}
	c.log.Debug("Loading audio", zap.Int("story", storyIndex+1), zap.String("url", url), zap.Stringer("session", id))
	c.commit()

	h, err := c.backend.Open(ctx, url)

	c.mu.Lock()
	if c.closed || c.session.ID != id {
		// superseded while opening
		c.mu.Unlock()
		if h != nil {
			h.Close()
		}
		return
	}
	if err != nil {
		c.failLocked(err)
		c.commit()
		return
	}
	if err := h.SetVolume(c.session.Volume); err != nil {
		c.log.Warn("Unable to set volume", zap.Error(err))
	}
	pumpCtx, release := context.WithCancel(context.Background())
	c.handle, c.release = h, release
	c.wg.Add(1)
	go c.pump(pumpCtx, id, h)
	c.mu.Unlock()
}

// Play starts or resumes loaded audio.
func (c *Controller) Play() {
	c.mu.Lock()
	if !c.session.IsLoaded() || c.handle == nil || c.session.Transport == common.TransportStatePlaying {
		c.mu.Unlock()
		return
	}
	if err := c.handle.Play(); err != nil {
		c.log.Warn("Unable to start playback", zap.Error(err))
		c.mu.Unlock()
		return
	}
	if c.session.Transport == common.TransportStateEnded {
		c.session.Position = 0
	}
	c.session.Transport = common.TransportStatePlaying
	c.startPollLocked()
	c.commit()
}

// Pause keeps position and session.
func (c *Controller) Pause() {
	c.mu.Lock()
	if !c.session.IsPlaying() || c.handle == nil {
		c.mu.Unlock()
		return
	}
	if err := c.handle.Pause(); err != nil {
		c.log.Warn("Unable to pause playback", zap.Error(err))
	}
	c.stopPollLocked()
	c.session.Transport = common.TransportStatePaused
	c.session.Position = c.clampPosition(c.handle.Position())
	c.commit()
}

// Stop resets position and marks session stopped.
func (c *Controller) Stop() {
	c.mu.Lock()
	if !c.session.IsLoaded() || c.handle == nil {
		c.mu.Unlock()
		return
	}
	if err := c.handle.Stop(); err != nil {
		c.log.Warn("Unable to stop playback", zap.Error(err))
	}
	c.stopPollLocked()
	c.session.Transport = common.TransportStateStopped
	c.session.Position = 0
	c.commit()
}

// Seek moves to position clamped into [0, duration]. Session position is
// updated immediately.
func (c *Controller) Seek(position float64) {
	c.mu.Lock()
	if !c.session.IsLoaded() || c.handle == nil {
		c.mu.Unlock()
		return
	}
	position = c.clampPosition(position)
	if err := c.handle.Seek(position); err != nil {
		c.log.Warn("Unable to seek", zap.Float64("position", position), zap.Error(err))
	}
	c.session.Position = position
	c.commit()
}

// SetVolume applies volume in [0, 1] to live handle if any and always
// reports it for persistence.
func (c *Controller) SetVolume(volume float64) {
	volume = clampVolume(volume)

	c.mu.Lock()
	if c.handle != nil {
		if err := c.handle.SetVolume(volume); err != nil {
			c.log.Warn("Unable to set volume", zap.Error(err))
		}
	}
	c.session.Volume = volume
	c.commit()

	if c.opts.SaveVolume != nil {
		c.opts.SaveVolume(volume)
	}
}

// ToggleMute mutes remembering current volume or restores remembered one.
func (c *Controller) ToggleMute() {
	c.mu.Lock()
	volume := c.session.Volume
	if volume > 0 {
		c.prevVolume = volume
		volume = 0
	} else {
		volume = c.prevVolume
		if volume <= 0 {
			volume = 1
		}
	}
	c.mu.Unlock()
	c.SetVolume(volume)
}

// Unload releases the handle and resets session.
func (c *Controller) Unload() {
	c.mu.Lock()
	if c.handle == nil && c.session.StoryIndex < 0 {
		c.mu.Unlock()
		return
	}
	c.releaseLocked()
	c.session = Session{StoryIndex: -1, Volume: c.session.Volume}
	c.commit()
}

// Close releases the handle and waits for background goroutines. Controller
// is unusable afterwards.
func (c *Controller) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.releaseLocked()
	c.session = Session{StoryIndex: -1, Volume: c.session.Volume}
	c.mu.Unlock()

	c.wg.Wait()
	return nil
}

func (c *Controller) releaseLocked() {
	c.stopPollLocked()
	if c.release != nil {
		c.release()
		c.release = nil
	}
	if c.handle != nil {
		if err := c.handle.Close(); err != nil {
			c.log.Debug("Unable to close audio handle", zap.Error(err))
		}
		c.handle = nil
	}
}

func (c *Controller) failLocked(err error) {
	c.stopPollLocked()
	c.session.Load = common.LoadStateFailed
	c.session.Transport = common.TransportStateIdle
	c.session.Err = &common.AudioLoadError{URL: c.session.AudioURL, Err: err}
	c.log.Warn("Unable to load audio", zap.String("url", c.session.AudioURL), zap.Error(err))
}

func (c *Controller) clampPosition(position float64) float64 {
	if math.IsNaN(position) || position < 0 {
		return 0
	}
	if d := c.session.Duration; d > 0 && position > d {
		return d
	}
	return position
}

func clampVolume(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

// pump translates events of handle h into session changes until h is
// released. Events of superseded sessions are ignored.
func (c *Controller) pump(ctx context.Context, id uuid.UUID, h Handle) {
	defer c.wg.Done()
	events := h.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			c.mu.Lock()
			if c.session.ID != id || c.handle != h {
				c.mu.Unlock()
				return
			}
			if !c.applyLocked(h, e) {
				c.mu.Unlock()
				continue
			}
			c.commit()
		}
	}
}

// applyLocked returns false when event does not change session.
func (c *Controller) applyLocked(h Handle, e Event) bool {
	c.log.Debug("Audio event", zap.Stringer("event", e.Kind), zap.Stringer("session", c.session.ID))
	s := &c.session
	switch e.Kind {
	case EventLoaded:
		s.Load = common.LoadStateLoaded
		s.Duration = e.Duration
		s.Err = nil
	case EventLoadError:
		err := e.Err
		if err == nil {
			err = errors.New("unknown error")
		}
		c.failLocked(err)
		c.releaseLocked()
	case EventPlaying:
		if !s.IsLoaded() || s.Transport == common.TransportStatePlaying {
			return false
		}
		s.Transport = common.TransportStatePlaying
		c.startPollLocked()
	case EventPaused:
		if !s.IsLoaded() || s.Transport == common.TransportStatePaused {
			return false
		}
		c.stopPollLocked()
		s.Transport = common.TransportStatePaused
		s.Position = c.clampPosition(h.Position())
	case EventStopped:
		if !s.IsLoaded() || s.Transport == common.TransportStateStopped {
			return false
		}
		c.stopPollLocked()
		s.Transport = common.TransportStateStopped
		s.Position = 0
	case EventEnded:
		if !s.IsLoaded() {
			return false
		}
		c.stopPollLocked()
		s.Transport = common.TransportStateEnded
		s.Position = s.Duration
	default:
		return false
	}
	return true
}

func (c *Controller) startPollLocked() {
	if c.stopPoll != nil || c.handle == nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.stopPoll = cancel
	c.wg.Add(1)
	go c.poll(ctx, c.session.ID, c.handle)
}

func (c *Controller) stopPollLocked() {
	if c.stopPoll != nil {
		c.stopPoll()
		c.stopPoll = nil
	}
}

// poll samples position of h while it plays.
func (c *Controller) poll(ctx context.Context, id uuid.UUID, h Handle) {
	defer c.wg.Done()
	ticker := time.NewTicker(c.opts.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.mu.Lock()
			if ctx.Err() != nil || c.session.ID != id || c.handle != h || !c.session.IsPlaying() {
				c.mu.Unlock()
				return
			}
			position := c.clampPosition(h.Position())
			if position == c.session.Position {
				c.mu.Unlock()
				continue
			}
			c.session.Position = position
			c.commit()
		}
	}
}
