// Package timing loads per-story episode timing tables and maps playback
// position to the current episode.
package timing

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"obsync/common"
)

// Entry is start offset of one episode in seconds.
type Entry struct {
	Position float64 `json:"pos"`
	Episode  int     `json:"episode"`
}

// Table is ordered by non-decreasing Position, entry i belongs to episode i.
type Table []Entry

type rawEntry struct {
	Pos json.RawMessage `json:"pos"`
}

// Parse decodes JSON array of {"pos": string|number} objects.
func Parse(source string, data []byte) (Table, error) {
	var raw []rawEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &common.ParseError{Source: source, Err: err}
	}

	table := make(Table, 0, len(raw))
	for i, r := range raw {
		pos, err := parsePosition(r.Pos)
		if err != nil {
			return nil, &common.ParseError{Source: source, Err: fmt.Errorf("entry %d: %w", i, err)}
		}
		if i > 0 && pos < table[i-1].Position {
			return nil, &common.ParseError{Source: source, Err: fmt.Errorf("entry %d: position %g precedes %g", i, pos, table[i-1].Position)}
		}
		table = append(table, Entry{Position: pos, Episode: i})
	}
	return table, nil
}

func parsePosition(raw json.RawMessage) (float64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, errors.New("missing position")
	}

	var v float64
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, err
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, fmt.Errorf("bad position %q: %w", s, err)
		}
		v = f
	} else if err := json.Unmarshal(raw, &v); err != nil {
		return 0, fmt.Errorf("bad position %s: %w", raw, err)
	}

	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, fmt.Errorf("position %g out of range", v)
	}
	return v, nil
}

// EpisodeAt returns index of the last entry starting at or before position,
// 0 for empty table or position before the first entry.
func (t Table) EpisodeAt(position float64) int {
	// first entry starting after position
	i := sort.Search(len(t), func(i int) bool {
		return t[i].Position > position
	})
	if i == 0 {
		return 0
	}
	return i - 1
}

// Start returns start offset of episode i.
func (t Table) Start(i int) (float64, bool) {
	if i < 0 || i >= len(t) {
		return 0, false
	}
	return t[i].Position, true
}

// Marks returns episode start offsets in order.
func (t Table) Marks() []float64 {
	out := make([]float64, len(t))
	for i, e := range t {
		out[i] = e.Position
	}
	return out
}

// CurrentEpisode maps playback position of the story to episode index using
// timing tables keyed by 0-based story index. Missing table yields 0.
func CurrentEpisode(storyIndex int, position float64, tables map[int]Table) int {
	t, ok := tables[storyIndex]
	if !ok {
		return 0
	}
	return t.EpisodeAt(position)
}
