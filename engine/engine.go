// Package engine is the single owner of catalog, story content, playback
// session and presentation state. Consumers read immutable snapshots and
// change state only through engine methods.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"obsync/catalog"
	"obsync/config"
	"obsync/fetch"
	"obsync/playback"
	"obsync/prefs"
	"obsync/presentation"
	"obsync/story"
	"obsync/timing"
)

var ErrClosed = errors.New("engine is closed")

// Option customizes Engine.
type Option func(*Engine)

// WithFetcher replaces fetcher built from configuration.
func WithFetcher(f fetch.TextFetcher) Option {
	return func(e *Engine) {
		e.fetcher = f
	}
}

// WithReport makes engine keep malformed documents in debug report.
func WithReport(rpt *config.Report) Option {
	return func(e *Engine) {
		e.rpt = rpt
	}
}

type resumeRequest struct {
	story    int
	position float64
}

// captionsKey identifies captions kept in snapshot. Content changes with
// every story added, language switch resets it.
type captionsKey struct {
	story, episode, content int
}

type Engine struct {
	cfg     *config.Config
	fetcher fetch.TextFetcher
	store   prefs.Store
	rpt     *config.Report
	log     *zap.Logger

	catalogs *catalog.Loader
	timings  *timing.Loader
	player   *playback.Controller

	mu          sync.Mutex
	snap        Snapshot
	machine     *presentation.Machine
	splitter    *story.Splitter
	generation  uint64
	cancelLoad  context.CancelFunc
	resume      resumeRequest
	captions    captionsKey
	subscribers map[int]chan Snapshot
	nextSub     int
	closed      bool

	wg sync.WaitGroup
}

// New creates engine which plays audio through backend and keeps user choices
// in store.
func New(cfg *config.Config, backend playback.Backend, store prefs.Store, log *zap.Logger, options ...Option) *Engine {
	e := &Engine{
		cfg:         cfg,
		store:       store,
		log:         log.Named("engine"),
		machine:     presentation.NewMachine(),
		subscribers: make(map[int]chan Snapshot),
		resume:      resumeRequest{story: -1},
		captions:    captionsKey{story: -1},
	}
	for _, opt := range options {
		opt(e)
	}
	if e.fetcher == nil {
		e.fetcher = fetch.New(&cfg.Fetch, log, fetch.WithReport(e.rpt))
	}
	e.catalogs = catalog.NewLoader(e.fetcher, &cfg.Catalog, e.rpt, log)
	if len(cfg.Stories.TimingURLTemplate) > 0 {
		e.timings = timing.NewLoader(e.fetcher, cfg.Stories.TimingURLTemplate, e.rpt, log)
	}

	opts := playback.OptionsFromConfig(&cfg.Playback)
	opts.OnChange = e.onSession
	opts.SaveVolume = e.saveVolume
	e.player = playback.NewController(backend, opts, log)

	e.snap = Snapshot{
		Stories:      map[int]story.Story{},
		Timings:      map[int]timing.Table{},
		Session:      e.player.Session(),
		Presentation: e.machine.State(),
		StoryIndex:   -1,
	}
	return e
}

// Snapshot returns current state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snap
}

// Subscribe returns channel receiving snapshots starting with the current
// one. Slow receivers skip intermediate snapshots and always get the latest.
// Channel is closed by cancel or when engine is closed.
func (e *Engine) Subscribe() (<-chan Snapshot, func()) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ch := make(chan Snapshot, 1)
	if e.closed {
		close(ch)
		return ch, func() {}
	}
	id := e.nextSub
	e.nextSub++
	e.subscribers[id] = ch
	ch <- e.snap

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			if c, ok := e.subscribers[id]; ok {
				delete(e.subscribers, id)
				close(c)
			}
		})
	}
}

// publishLocked must be called with e.mu held.
func (e *Engine) publishLocked() {
	e.snap.Seq++
	for _, ch := range e.subscribers {
		select {
		case ch <- e.snap:
			continue
		default:
		}
		// drop stale snapshot, we are the only sender
		select {
		case <-ch:
		default:
		}
		ch <- e.snap
	}
}

// Restore applies persisted language, region and volume choices.
func (e *Engine) Restore(ctx context.Context) error {
	lang, haveLang, err := e.store.Get(ctx, prefs.KeySelectedLanguage)
	if err != nil {
		return fmt.Errorf("unable to restore preferences: %w", err)
	}
	region, _, err := e.store.Get(ctx, prefs.KeySelectedRegion)
	if err != nil {
		return fmt.Errorf("unable to restore preferences: %w", err)
	}
	chosen, err := prefs.GetBool(ctx, e.store, prefs.KeyLanguageChosen)
	if err != nil {
		return fmt.Errorf("unable to restore preferences: %w", err)
	}
	_, haveVolume, err := e.store.Get(ctx, prefs.KeyVolume)
	if err != nil {
		return fmt.Errorf("unable to restore preferences: %w", err)
	}

	var splitter *story.Splitter
	if haveLang {
		splitter = story.NewSplitter(lang, e.log)
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	prev := e.snap.Language
	switched := haveLang && lang != prev
	if switched {
		e.switchLanguageLocked(lang, splitter)
	}
	e.snap.Region = region
	e.snap.LanguageChosen = chosen
	e.publishLocked()
	e.mu.Unlock()

	if switched {
		e.releaseSession(ctx, prev)
	}

	if haveVolume {
		v, err := prefs.GetFloat(ctx, e.store, prefs.KeyVolume, e.cfg.Playback.DefaultVolume)
		if err != nil {
			return fmt.Errorf("unable to restore volume: %w", err)
		}
		e.player.SetVolume(v)
	}
	e.log.Debug("Preferences restored", zap.String("lang", lang), zap.String("region", region), zap.Bool("chosen", chosen))
	return nil
}

// LoadCatalog fetches and parses catalog archive. Failure is kept in
// snapshot, previously loaded catalog is replaced only on success.
func (e *Engine) LoadCatalog(ctx context.Context) error {
	cat, err := e.catalogs.Load(ctx, e.cfg.Catalog.ArchiveURL)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	e.snap.CatalogErr = err
	if err == nil {
		e.snap.Catalog = cat
	}
	e.publishLocked()
	return err
}

// SelectLanguage makes code current language and persists the choice. When
// catalog is loaded code must be one of its languages. Content of previously
// selected language is dropped and its in-flight loads are discarded.
func (e *Engine) SelectLanguage(ctx context.Context, code string) error {
	e.mu.Lock()
	cat := e.snap.Catalog
	e.mu.Unlock()
	if cat != nil {
		if _, err := cat.Language(code); err != nil {
			return err
		}
	}
	splitter := story.NewSplitter(code, e.log)

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	prev := e.snap.Language
	switched := code != prev
	if switched {
		e.switchLanguageLocked(code, splitter)
	}
	e.snap.LanguageChosen = true
	e.publishLocked()
	e.mu.Unlock()

	if switched {
		e.releaseSession(ctx, prev)
	}

	e.log.Info("Language selected", zap.String("lang", code))
	if err := e.store.Set(ctx, prefs.KeySelectedLanguage, code); err != nil {
		return fmt.Errorf("unable to save language: %w", err)
	}
	if err := prefs.SetBool(ctx, e.store, prefs.KeyLanguageChosen, true); err != nil {
		return fmt.Errorf("unable to save language: %w", err)
	}
	return nil
}

// SelectRegion persists region used to filter language choices.
func (e *Engine) SelectRegion(ctx context.Context, region string) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	e.snap.Region = region
	e.publishLocked()
	e.mu.Unlock()

	if err := e.store.Set(ctx, prefs.KeySelectedRegion, region); err != nil {
		return fmt.Errorf("unable to save region: %w", err)
	}
	return nil
}

// switchLanguageLocked invalidates content of previous language.
func (e *Engine) switchLanguageLocked(code string, splitter *story.Splitter) {
	e.generation++
	if e.cancelLoad != nil {
		e.cancelLoad()
		e.cancelLoad = nil
	}
	e.snap.Language = code
	e.snap.RepoURL = ""
	e.snap.Loading = false
	e.snap.Stories = map[int]story.Story{}
	e.snap.Timings = map[int]timing.Table{}
	e.snap.ContentErr = nil
	e.splitter = splitter
	e.captions = captionsKey{story: -1}
	e.resume = resumeRequest{story: -1}
	e.syncLocked()
}

// releaseSession drops audio of the previous language. Position reached is
// remembered under that language.
func (e *Engine) releaseSession(ctx context.Context, lang string) {
	e.player.Pause()
	s := e.player.Session()
	if err := e.saveResume(ctx, lang, s, s.Position); err != nil {
		e.log.Warn("Unable to save resume position", zap.String("lang", lang), zap.Error(err))
	}
	e.player.Unload()
}

// Minimize collapses expanded player view.
func (e *Engine) Minimize() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.machine.Minimize() {
		return false
	}
	e.snap.Presentation = e.machine.State()
	e.publishLocked()
	return true
}

// RestoreView expands minimized player view.
func (e *Engine) RestoreView() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.machine.Restore() {
		return false
	}
	e.snap.Presentation = e.machine.State()
	e.publishLocked()
	return true
}

// Close saves resume position, releases audio and hides the player. Engine
// does not close preference store it was given.
func (e *Engine) Close(ctx context.Context) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.generation++
	if e.cancelLoad != nil {
		e.cancelLoad()
		e.cancelLoad = nil
	}
	lang := e.snap.Language
	e.mu.Unlock()

	s := e.player.Session()
	err := e.saveResume(ctx, lang, s, s.Position)

	if er := e.player.Close(); er != nil {
		err = multierr.Append(err, er)
	}
	e.wg.Wait()

	e.mu.Lock()
	defer e.mu.Unlock()
	e.machine.Reset()
	e.snap.Session = e.player.Session()
	e.snap.Presentation = e.machine.State()
	e.snap.StoryIndex = e.machine.Story()
	e.syncLocked()
	e.publishLocked()
	for id, ch := range e.subscribers {
		delete(e.subscribers, id)
		close(ch)
	}
	return err
}
