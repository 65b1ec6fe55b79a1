// Package catalog builds the catalog of available languages from compressed
// multi-file archive.
package catalog

import (
	"encoding/json"
	"sort"

	"github.com/maruel/natural"

	"obsync/common"
	"obsync/utils/debug"
)

// Names are display names of a language.
type Names struct {
	English    string `json:"english,omitempty"`
	Vernacular string `json:"vernacular,omitempty"`
}

// Label returns text suitable for language selector.
func (n Names) Label() string {
	switch {
	case len(n.Vernacular) > 0 && len(n.English) > 0 && n.Vernacular != n.English:
		return n.Vernacular + " - " + n.English
	case len(n.Vernacular) > 0:
		return n.Vernacular
	default:
		return n.English
	}
}

// TestamentEntry is the content selected for a language and testament.
// Data is opaque to the engine.
type TestamentEntry struct {
	Category   common.Category `json:"category"`
	DistinctID string          `json:"distinctId"`
	Data       json.RawMessage `json:"data"`
}

// LanguageEntry holds at most one entry per testament.
type LanguageEntry struct {
	Code  string          `json:"code"`
	Names Names           `json:"names"`
	OT    *TestamentEntry `json:"ot,omitempty"`
	NT    *TestamentEntry `json:"nt,omitempty"`
}

// Testament returns entry for testament t or nil.
func (e *LanguageEntry) Testament(t common.Testament) *TestamentEntry {
	switch t {
	case common.TestamentOt:
		return e.OT
	case common.TestamentNt:
		return e.NT
	}
	return nil
}

func (e *LanguageEntry) setTestament(t common.Testament, te *TestamentEntry) {
	switch t {
	case common.TestamentOt:
		e.OT = te
	case common.TestamentNt:
		e.NT = te
	}
}

// Catalog is immutable once built, reload produces new one.
type Catalog struct {
	// Languages which have content in at least one testament.
	Languages map[string]*LanguageEntry
	// Codes of Languages in natural order.
	Available []string
	// Display names of every language mentioned in the summary index.
	Names map[string]Names
}

// Language returns catalog entry for the code.
func (c *Catalog) Language(code string) (*LanguageEntry, error) {
	if c != nil {
		if e, ok := c.Languages[code]; ok {
			return e, nil
		}
	}
	return nil, &common.NotFoundError{What: "language", Key: code}
}

// AvailableLanguages returns codes of languages with content.
func (c *Catalog) AvailableLanguages() []string {
	if c == nil {
		return nil
	}
	out := make([]string, len(c.Available))
	copy(out, c.Available)
	return out
}

// LanguageNames returns display names keyed by language code.
func (c *Catalog) LanguageNames() map[string]Names {
	if c == nil {
		return nil
	}
	out := make(map[string]Names, len(c.Names))
	for k, v := range c.Names {
		out[k] = v
	}
	return out
}

// String returns catalog dump for debugging.
func (c *Catalog) String() string {
	tw := debug.NewTreeWriter()
	if c == nil {
		tw.Line(0, "Catalog: <nil>")
		return tw.String()
	}
	tw.Line(0, "Catalog: %d available, %d named", len(c.Available), len(c.Names))
	for _, code := range c.Available {
		e := c.Languages[code]
		tw.Line(1, "Language %s", code)
		tw.TextBlock(2, "Label", e.Names.Label())
		for _, t := range common.TestamentOrder {
			te := e.Testament(t)
			if te == nil {
				continue
			}
			tw.Line(2, "%s: %s/%s (%d bytes)", t, te.Category, te.DistinctID, len(te.Data))
		}
	}

	unavailable := make([]string, 0, len(c.Names))
	for code := range c.Names {
		if _, ok := c.Languages[code]; !ok {
			unavailable = append(unavailable, code)
		}
	}
	if len(unavailable) > 0 {
		sort.Sort(natural.StringSlice(unavailable))
		tw.Line(1, "Without content: %d", len(unavailable))
		for _, code := range unavailable {
			tw.TextBlock(2, code, c.Names[code].Label())
		}
	}
	return tw.String()
}
