package timing

import (
	"context"

	"go.uber.org/zap"

	"obsync/config"
	"obsync/fetch"
)

// Loader fetches timing tables from location given by URL template.
type Loader struct {
	fetcher  fetch.Fetcher
	template string
	rpt      *config.Report
	log      *zap.Logger
}

// NewLoader creates timing loader, tmpl is text/template expanded with
// config.URLValues. rpt may be nil.
func NewLoader(f fetch.Fetcher, tmpl string, rpt *config.Report, log *zap.Logger) *Loader {
	return &Loader{
		fetcher:  f,
		template: tmpl,
		rpt:      rpt,
		log:      log.Named("timing"),
	}
}

// URL returns location of timing table for 0-based story index.
func (l *Loader) URL(storyIndex int, lang string) (string, error) {
	return config.ExpandURL(config.TimingURLTemplateFieldName, l.template, config.StoryURLValues(storyIndex, lang, ""))
}

// Load fetches and parses timing table of the story.
func (l *Loader) Load(ctx context.Context, storyIndex int, lang string) (Table, error) {
	url, err := l.URL(storyIndex, lang)
	if err != nil {
		return nil, err
	}
	data, err := l.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	table, err := Parse(url, data)
	if err != nil {
		l.rpt.StoreData("timing/"+config.StoryFileName(storyIndex, ".json"), data)
		return nil, err
	}
	l.log.Debug("Timing loaded", zap.Int("story", storyIndex+1), zap.Int("entries", len(table)))
	return table, nil
}
