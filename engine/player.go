package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"obsync/common"
	"obsync/config"
	"obsync/playback"
	"obsync/prefs"
	"obsync/timing"
)

// OpenStory navigates into story with 0-based index. Playback of another
// story is stopped first and audio of the story is loaded unless it is
// already in the player. Stored resume position is applied once audio loads.
func (e *Engine) OpenStory(ctx context.Context, index int) error {
	if index < 0 || index >= e.cfg.Stories.Count {
		return &common.NotFoundError{What: "story", Key: fmt.Sprint(index + 1)}
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	s := e.snap.Session
	lang := e.snap.Language
	tr := e.machine.Enter(index, s.StoryIndex, s.Transport.Active())
	e.snap.StoryIndex = e.machine.Story()
	e.snap.Presentation = e.machine.State()
	e.publishLocked()
	e.mu.Unlock()

	e.log.Debug("Story opened", zap.Int("story", index+1), zap.Stringer("from", tr.From), zap.Stringer("to", tr.To))

	if tr.StopPlayback {
		e.log.Debug("Stopping playback of another story", zap.Int("story", s.StoryIndex+1))
		if err := e.Stop(ctx); err != nil {
			e.log.Warn("Unable to save resume position", zap.Error(err))
		}
	}

	if s.StoryIndex == index && (s.Load == common.LoadStateLoaded || s.Load == common.LoadStateLoading) {
		return nil
	}
	if len(e.cfg.Stories.AudioURLTemplate) == 0 {
		return nil
	}
	audioURL, err := config.ExpandURL(config.AudioURLTemplateFieldName, e.cfg.Stories.AudioURLTemplate,
		config.StoryURLValues(index, lang, e.Snapshot().RepoURL))
	if err != nil {
		return err
	}

	position, err := prefs.GetFloat(ctx, e.store, prefs.ResumeKey(lang, index), 0)
	if err != nil {
		e.log.Warn("Unable to read resume position", zap.Error(err))
	}
	e.mu.Lock()
	e.resume = resumeRequest{story: index, position: position}
	e.mu.Unlock()

	e.player.Load(ctx, index, audioURL)
	return nil
}

func (e *Engine) Play() {
	e.player.Play()
}

// Pause keeps session and remembers position for later resume.
func (e *Engine) Pause(ctx context.Context) error {
	e.player.Pause()
	s := e.player.Session()
	return e.saveResume(ctx, e.language(), s, s.Position)
}

// Stop ends active session. Position reached before stopping is remembered.
func (e *Engine) Stop(ctx context.Context) error {
	before := e.player.Session()
	e.player.Stop()
	return e.saveResume(ctx, e.language(), before, before.Position)
}

// Seek moves playback, current episode is synchronized before Seek returns.
func (e *Engine) Seek(position float64) {
	e.player.Seek(position)
}

// SeekEpisode moves playback to start of episode i of the playing story.
func (e *Engine) SeekEpisode(i int) error {
	s := e.Snapshot()
	table, ok := s.Timings[s.Session.StoryIndex]
	if !ok {
		return &common.NotFoundError{What: "timing", Key: config.StoryFileName(s.Session.StoryIndex, "")}
	}
	start, ok := table.Start(i)
	if !ok {
		return &common.NotFoundError{What: "episode", Key: fmt.Sprint(i + 1)}
	}
	e.player.Seek(start)
	return nil
}

func (e *Engine) NextEpisode() error {
	return e.SeekEpisode(e.Snapshot().Episode + 1)
}

// PrevEpisode restarts the first episode when there is no previous one.
func (e *Engine) PrevEpisode() error {
	return e.SeekEpisode(max(e.Snapshot().Episode-1, 0))
}

func (e *Engine) SetVolume(v float64) {
	e.player.SetVolume(v)
}

func (e *Engine) ToggleMute() {
	e.player.ToggleMute()
}

func (e *Engine) language() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snap.Language
}

// onSession receives every session change from the player. It runs with
// player notifications serialized and must not call into the player.
func (e *Engine) onSession(s playback.Session) {
	e.mu.Lock()
	prev := e.snap.Session
	e.snap.Session = s
	e.syncLocked()

	var seekTo float64
	if s.IsLoaded() && e.resume.story == s.StoryIndex {
		seekTo = e.resume.position
		e.resume = resumeRequest{story: -1}
	}
	ended := s.Transport == common.TransportStateEnded && prev.Transport != common.TransportStateEnded
	lang := e.snap.Language
	e.publishLocked()
	e.mu.Unlock()

	if seekTo > 0 && seekTo < s.Duration {
		e.log.Debug("Resuming playback position", zap.Int("story", s.StoryIndex+1), zap.Float64("position", seekTo))
		e.wg.Add(1)
		go func() {
			defer e.wg.Done()
			e.player.Seek(seekTo)
		}()
	}
	if ended {
		if err := prefs.SetFloat(context.Background(), e.store, prefs.ResumeKey(lang, s.StoryIndex), 0); err != nil {
			e.log.Warn("Unable to reset resume position", zap.Error(err))
		}
	}
}

// syncLocked recomputes episode of the playing story and its captions.
// Episode is clamped into the story, 0 when story is unknown.
func (e *Engine) syncLocked() {
	s := e.snap.Session
	episode := timing.CurrentEpisode(s.StoryIndex, s.Position, e.snap.Timings)
	st, ok := e.snap.Stories[s.StoryIndex]
	if !ok || episode < 0 || episode >= len(st.Episodes) {
		episode = 0
	}
	e.snap.Episode = episode

	key := captionsKey{story: s.StoryIndex, episode: episode, content: len(e.snap.Stories)}
	if key == e.captions {
		return
	}
	e.captions = key
	e.snap.Captions = nil
	if ok && len(st.Episodes) > 0 {
		e.snap.Captions = e.splitter.Captions(st.Episodes[episode].Text)
	}
}

func (e *Engine) saveVolume(v float64) {
	if err := prefs.SetFloat(context.Background(), e.store, prefs.KeyVolume, v); err != nil {
		e.log.Warn("Unable to save volume", zap.Error(err))
	}
}

// saveResume remembers position of session story, sessions which never
// loaded are ignored.
func (e *Engine) saveResume(ctx context.Context, lang string, s playback.Session, position float64) error {
	if s.StoryIndex < 0 || !s.IsLoaded() || s.IsStopped() || len(lang) == 0 {
		return nil
	}
	if s.Transport == common.TransportStateEnded {
		position = 0
	}
	if err := prefs.SetFloat(ctx, e.store, prefs.ResumeKey(lang, s.StoryIndex), position); err != nil {
		return fmt.Errorf("unable to save resume position: %w", err)
	}
	return nil
}
