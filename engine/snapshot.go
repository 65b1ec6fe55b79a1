package engine

import (
	"maps"

	"obsync/catalog"
	"obsync/common"
	"obsync/playback"
	"obsync/story"
	"obsync/timing"
)

// Snapshot is immutable view of the engine state. Maps are shared between
// snapshots and must not be modified by receivers.
type Snapshot struct {
	// Seq grows with every published change.
	Seq uint64

	Language       string
	Region         string
	LanguageChosen bool

	Catalog    *catalog.Catalog
	CatalogErr error

	// RepoURL is story repository of selected language, empty until resolved.
	RepoURL string
	// Loading is true while story content of selected language is fetched.
	Loading    bool
	Stories    map[int]story.Story
	Timings    map[int]timing.Table
	ContentErr error

	Session      playback.Session
	Presentation common.PresentationState
	// StoryIndex is the story user navigated into, -1 if none.
	StoryIndex int
	// Episode of the story loaded in player synchronized with its position.
	Episode  int
	Captions []string
}

// Story returns segmented story with 0-based index.
func (s *Snapshot) Story(index int) (story.Story, bool) {
	st, ok := s.Stories[index]
	return st, ok
}

// Synced reports whether the playing story has timing table, without it
// whole story is displayed at once.
func (s *Snapshot) Synced() bool {
	_, ok := s.Timings[s.Session.StoryIndex]
	return ok
}

// Marks returns episode boundaries of the playing story in seconds.
func (s *Snapshot) Marks() []float64 {
	return s.Timings[s.Session.StoryIndex].Marks()
}

func withStory(m map[int]story.Story, index int, st story.Story) map[int]story.Story {
	out := make(map[int]story.Story, len(m)+1)
	maps.Copy(out, m)
	out[index] = st
	return out
}

func withTiming(m map[int]timing.Table, index int, t timing.Table) map[int]timing.Table {
	out := make(map[int]timing.Table, len(m)+1)
	maps.Copy(out, m)
	out[index] = t
	return out
}
