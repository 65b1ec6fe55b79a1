package catalog

import (
	"archive/zip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/maruel/natural"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"obsync/archive"
	"obsync/common"
	"obsync/config"
	"obsync/fetch"
)

type summaryName struct {
	N string `json:"n"`
	V string `json:"v"`
}

// categoryMap is category -> language code -> names.
type categoryMap map[common.Category]map[string]summaryName

type summaryIndex struct {
	Canons struct {
		OT categoryMap `json:"ot,omitempty"`
		NT categoryMap `json:"nt,omitempty"`
	} `json:"canons"`
}

func (s *summaryIndex) testament(t common.Testament) categoryMap {
	switch t {
	case common.TestamentOt:
		return s.Canons.OT
	case common.TestamentNt:
		return s.Canons.NT
	}
	return nil
}

// dataKey addresses group of candidate data files in the archive.
type dataKey struct {
	testament common.Testament
	category  common.Category
	lang      string
}

type dataFile struct {
	distinctID string
	file       *zip.File
}

// Loader builds Catalog from archive. Loader keeps no state between loads.
type Loader struct {
	fetcher      fetch.Fetcher
	summaryEntry string
	dataFileName string
	rpt          *config.Report
	log          *zap.Logger
}

// NewLoader creates loader configured by catalog section of configuration.
// rpt may be nil.
func NewLoader(f fetch.Fetcher, cfg *config.CatalogConfig, rpt *config.Report, log *zap.Logger) *Loader {
	return &Loader{
		fetcher:      f,
		summaryEntry: cfg.SummaryEntry,
		dataFileName: cfg.DataFileName,
		rpt:          rpt,
		log:          log.Named("catalog"),
	}
}

// Load fetches archive and builds catalog from it.
func (l *Loader) Load(ctx context.Context, url string) (*Catalog, error) {
	l.log.Debug("Loading catalog", zap.String("url", url))

	data, err := l.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	cat, err := l.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("unable to load catalog from %s: %w", url, err)
	}
	return cat, nil
}

// Parse builds catalog from archive content. Only missing or malformed
// summary index fails the whole load, broken data files are logged and
// skipped.
func (l *Loader) Parse(data []byte) (*Catalog, error) {
	arc, err := archive.Open(data)
	if err != nil {
		return nil, err
	}
	for _, name := range arc.Skipped() {
		l.log.Warn("Skipping unsafe archive entry", zap.String("entry", name))
	}

	if !arc.Has(l.summaryEntry) {
		return nil, &common.ParseError{Source: l.summaryEntry, Err: &common.NotFoundError{What: "summary index", Key: l.summaryEntry}}
	}
	raw, err := arc.ReadEntry(l.summaryEntry)
	if err != nil {
		return nil, &common.ParseError{Source: l.summaryEntry, Err: fmt.Errorf("unable to read summary index: %w", err)}
	}
	var summary summaryIndex
	if err := json.Unmarshal(raw, &summary); err != nil {
		l.rpt.StoreData("catalog/"+l.summaryEntry, raw)
		return nil, &common.ParseError{Source: l.summaryEntry, Err: err}
	}

	names, codes := collectNames(&summary)
	index := l.indexDataFiles(arc)

	cat := &Catalog{
		Languages: make(map[string]*LanguageEntry),
		Names:     make(map[string]Names, len(names)),
	}

	var skipped error
	for _, code := range codes {
		n := fallbackNames(code, names[code])
		cat.Names[code] = n

		entry := &LanguageEntry{Code: code, Names: n}
		found := false
		for _, t := range common.TestamentOrder {
			te, err := l.selectEntry(index, t, code)
			skipped = multierr.Append(skipped, err)
			if te != nil {
				entry.setTestament(t, te)
				found = true
			}
		}
		if !found {
			l.log.Debug("Language has no content", zap.String("lang", code))
			continue
		}
		cat.Languages[code] = entry
		cat.Available = append(cat.Available, code)
	}

	if errs := multierr.Errors(skipped); len(errs) > 0 {
		l.log.Warn("Some data files were skipped", zap.Int("count", len(errs)), zap.Error(skipped))
	}
	l.log.Debug("Catalog ready", zap.Int("languages", len(cat.Available)), zap.Int("named", len(cat.Names)))
	return cat, nil
}

// collectNames returns display names and union of language codes in natural
// order. For names the first occurrence wins scanning testaments in fixed
// order and categories in priority order, categories outside of priority list
// go last.
func collectNames(s *summaryIndex) (map[string]Names, []string) {
	names := make(map[string]Names)
	for _, t := range common.TestamentOrder {
		cm := s.testament(t)
		for _, c := range orderedCategories(cm) {
			for code, sn := range cm[c] {
				if len(code) == 0 {
					continue
				}
				if _, seen := names[code]; seen {
					continue
				}
				names[code] = Names{English: strings.TrimSpace(sn.N), Vernacular: strings.TrimSpace(sn.V)}
			}
		}
	}
	codes := make([]string, 0, len(names))
	for code := range names {
		codes = append(codes, code)
	}
	sort.Sort(natural.StringSlice(codes))
	return names, codes
}

func orderedCategories(cm categoryMap) []common.Category {
	out := make([]common.Category, 0, len(cm))
	out = append(out, common.CategoryPriority...)
	var extra []string
	for c := range cm {
		if c.Rank() < 0 {
			extra = append(extra, string(c))
		}
	}
	sort.Sort(natural.StringSlice(extra))
	for _, c := range extra {
		out = append(out, common.Category(c))
	}
	return out
}

// indexDataFiles groups archive entries matching
// {testament}/{category}/{lang}/{distinctId}/{dataFileName}.
func (l *Loader) indexDataFiles(arc *archive.Archive) map[dataKey][]dataFile {
	index := make(map[dataKey][]dataFile)
	for _, t := range common.TestamentOrder {
		prefix := t.String() + "/"
		// callback never fails
		_ = arc.Walk(prefix, func(name string, file *zip.File) error {
			parts := strings.Split(strings.TrimPrefix(name, prefix), "/")
			if len(parts) != 4 || parts[3] != l.dataFileName {
				return nil
			}
			c, err := common.ParseCategory(parts[0])
			if err != nil || len(parts[1]) == 0 || len(parts[2]) == 0 {
				return nil
			}
			key := dataKey{testament: t, category: c, lang: parts[1]}
			// walk goes in natural order
			index[key] = append(index[key], dataFile{distinctID: parts[2], file: file})
			return nil
		})
	}
	return index
}

// selectEntry searches categories in priority order and stops at the first
// one with parsable data file. Returned error lists skipped files.
func (l *Loader) selectEntry(index map[dataKey][]dataFile, t common.Testament, code string) (*TestamentEntry, error) {
	var skipped error
	for _, c := range common.CategoryPriority {
		for _, df := range index[dataKey{testament: t, category: c, lang: code}] {
			data, err := l.readData(df.file)
			if err != nil {
				l.log.Debug("Skipping data file", zap.String("entry", df.file.Name), zap.Error(err))
				skipped = multierr.Append(skipped, err)
				continue
			}
			return &TestamentEntry{Category: c, DistinctID: df.distinctID, Data: data}, skipped
		}
	}
	return nil, skipped
}

func (l *Loader) readData(file *zip.File) (json.RawMessage, error) {
	data, err := archive.ReadFile(file)
	if err != nil {
		return nil, err
	}
	if !json.Valid(data) {
		l.rpt.StoreData("catalog/"+file.Name, data)
		return nil, &common.ParseError{Source: file.Name, Err: errors.New("invalid JSON")}
	}
	return json.RawMessage(data), nil
}
