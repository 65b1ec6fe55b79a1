package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"runtime/debug"
	"strings"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"

	"obsync/common"
	"obsync/config"
	"obsync/story"
	"obsync/timing"
)

// searchResult is the part of catalog search response we need.
type searchResult struct {
	Data []struct {
		Repo struct {
			HTMLURL string `json:"html_url"`
		} `json:"repo"`
	} `json:"data"`
}

// ResolveRepo returns story repository of the language: configured one or
// the first one reported by catalog search.
func (e *Engine) ResolveRepo(ctx context.Context, lang string) (string, error) {
	if len(e.cfg.Stories.RepoURL) > 0 {
		return e.cfg.Stories.RepoURL, nil
	}
	if len(e.cfg.Stories.SearchURL) == 0 {
		return "", &common.NotFoundError{What: "story repository", Key: lang}
	}

	q := url.Values{}
	if len(e.cfg.Stories.Subject) > 0 {
		q.Set("subject", e.cfg.Stories.Subject)
	}
	if len(e.cfg.Stories.Stage) > 0 {
		q.Set("stage", e.cfg.Stories.Stage)
	}
	id := e.publishedID(lang)
	q.Set("lang", id)
	search := e.cfg.Stories.SearchURL + "?" + q.Encode()

	data, err := e.fetcher.Fetch(ctx, search)
	if err != nil {
		return "", err
	}
	var res searchResult
	if err := json.Unmarshal(data, &res); err != nil {
		e.rpt.StoreData("search/"+lang+".json", data)
		return "", &common.ParseError{Source: search, Err: err}
	}
	if len(res.Data) == 0 || len(res.Data[0].Repo.HTMLURL) == 0 {
		return "", &common.NotFoundError{What: "story repository", Key: lang}
	}
	repo := res.Data[0].Repo.HTMLURL
	e.log.Debug("Story repository resolved", zap.String("lang", lang), zap.String("id", id), zap.String("repo", repo))
	return repo, nil
}

// publishedID maps catalog language code to the id catalog search knows it
// by. Configured ids win, otherwise the canonical tag is used so 3-letter
// codes become 2-letter ones where such exist.
func (e *Engine) publishedID(code string) string {
	if id, ok := e.cfg.Stories.PublishedIDs[code]; ok && len(id) > 0 {
		return id
	}
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	return strings.ToLower(tag.String())
}

// LoadStories fetches text and timing of every story of selected language
// with bounded concurrency. Failure of one story is logged and skipped, the
// combined failures are kept in snapshot. Results arriving after language
// changed are discarded.
func (e *Engine) LoadStories(ctx context.Context) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	lang := e.snap.Language
	if len(lang) == 0 {
		e.mu.Unlock()
		return &common.NotFoundError{What: "selected language", Key: ""}
	}
	if e.cancelLoad != nil {
		e.cancelLoad()
	}
	e.generation++
	gen := e.generation
	ctx, cancel := context.WithCancel(ctx)
	e.cancelLoad = cancel
	e.snap.Loading = true
	e.snap.ContentErr = nil
	e.publishLocked()
	e.mu.Unlock()
	defer cancel()

	repo, err := e.ResolveRepo(ctx, lang)
	if err != nil {
		e.finishLoad(gen, err)
		return fmt.Errorf("unable to resolve story repository for %s: %w", lang, err)
	}
	e.mu.Lock()
	if gen == e.generation {
		e.snap.RepoURL = repo
		e.publishLocked()
	}
	e.mu.Unlock()

	e.log.Info("Loading stories", zap.String("lang", lang), zap.String("repo", repo), zap.Int("count", e.cfg.Stories.Count))

	var (
		g      errgroup.Group
		errsMu sync.Mutex
		errs   error
	)
	g.SetLimit(e.cfg.Stories.Workers)
	for i := range e.cfg.Stories.Count {
		g.Go(func() error {
			if err := e.loadStory(ctx, gen, i, lang, repo); err != nil {
				errsMu.Lock()
				errs = multierr.Append(errs, err)
				errsMu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		e.finishLoad(gen, nil)
		return err
	}
	if errs != nil {
		e.log.Warn("Some stories were skipped", zap.Int("count", len(multierr.Errors(errs))), zap.Error(errs))
	}
	e.finishLoad(gen, errs)

	snap := e.Snapshot()
	e.log.Info("Stories loaded", zap.String("lang", lang), zap.Int("stories", len(snap.Stories)), zap.Int("timings", len(snap.Timings)))
	return nil
}

// LoadStory fetches single story of selected language without touching
// other stories already loaded.
func (e *Engine) LoadStory(ctx context.Context, index int) error {
	if index < 0 || index >= e.cfg.Stories.Count {
		return &common.NotFoundError{What: "story", Key: fmt.Sprint(index + 1)}
	}
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	lang, repo, gen := e.snap.Language, e.snap.RepoURL, e.generation
	e.mu.Unlock()
	if len(lang) == 0 {
		return &common.NotFoundError{What: "selected language", Key: ""}
	}

	if len(repo) == 0 {
		var err error
		if repo, err = e.ResolveRepo(ctx, lang); err != nil {
			return fmt.Errorf("unable to resolve story repository for %s: %w", lang, err)
		}
		e.mu.Lock()
		if gen == e.generation {
			e.snap.RepoURL = repo
			e.publishLocked()
		}
		e.mu.Unlock()
	}
	return e.loadStory(ctx, gen, index, lang, repo)
}

func (e *Engine) finishLoad(gen uint64, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.generation {
		return
	}
	e.cancelLoad = nil
	e.snap.Loading = false
	e.snap.ContentErr = err
	e.publishLocked()
}

// loadStory fetches one story. Missing or malformed timing does not fail the
// story, it is displayed without synchronization.
func (e *Engine) loadStory(ctx context.Context, gen uint64, index int, lang, repo string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("Story loading panicked", zap.Int("story", index+1), zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
			err = fmt.Errorf("story %d: panic: %v", index+1, r)
		}
	}()

	textURL, err := config.ExpandURL(config.TextURLTemplateFieldName, e.cfg.Stories.TextURLTemplate, config.StoryURLValues(index, lang, repo))
	if err != nil {
		return fmt.Errorf("story %d: %w", index+1, err)
	}
	text, err := e.fetcher.FetchText(ctx, textURL)
	if err != nil {
		e.log.Warn("Unable to fetch story", zap.Int("story", index+1), zap.Error(err))
		return fmt.Errorf("story %d: %w", index+1, err)
	}
	st := story.Segment(text)
	if len(st.Episodes) == 0 {
		e.rpt.StoreData("stories/"+lang+"/"+config.StoryFileName(index, ".md"), []byte(text))
		e.log.Debug("Story has no episodes", zap.Int("story", index+1), zap.String("url", textURL))
	}

	var table timing.Table
	if e.timings != nil {
		table, err = e.timings.Load(ctx, index, lang)
		switch {
		case err == nil:
		case errors.Is(err, common.ErrParse):
			e.log.Warn("Malformed timing, story is not synchronized", zap.Int("story", index+1), zap.Error(err))
		default:
			e.log.Debug("No timing, story is not synchronized", zap.Int("story", index+1), zap.Error(err))
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.generation {
		e.log.Debug("Discarding stale story", zap.Int("story", index+1), zap.String("lang", lang))
		return nil
	}
	e.snap.Stories = withStory(e.snap.Stories, index, st)
	if table != nil {
		e.snap.Timings = withTiming(e.snap.Timings, index, table)
	}
	e.syncLocked()
	e.publishLocked()
	return nil
}
