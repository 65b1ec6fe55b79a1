// Package common keeps enums and errors shared by the catalog, playback and
// presentation layers. Generated parts live in enums_enum.go (go-enum).
package common

// Content division used to key catalog entries.
// ENUM(ot, nt)
type Testament string

// Quality/completeness tier of content for a language and testament.
// ENUM(with-timecode, syncable, audio-only, text-only, incomplete-timecode)
type Category string

// What the player view should render.
// ENUM(hidden, expanded, minimized)
type PresentationState int

// Whether the single audio handle is usable.
// ENUM(unloaded, loading, loaded, failed)
type LoadState int

// Transport position of a loaded audio handle.
// ENUM(idle, playing, paused, stopped, ended)
type TransportState int

// CategoryPriority is the order in which categories are searched, best first.
var CategoryPriority = []Category{
	CategoryWithTimecode,
	CategorySyncable,
	CategoryAudioOnly,
	CategoryTextOnly,
	CategoryIncompleteTimecode,
}

// TestamentOrder is the fixed scanning order for summary and data lookups.
var TestamentOrder = []Testament{TestamentOt, TestamentNt}

// Rank returns position of the category in CategoryPriority, -1 when unknown.
func (x Category) Rank() int {
	for i, c := range CategoryPriority {
		if c == x {
			return i
		}
	}
	return -1
}

// HasTimecode reports whether content in this category carries usable episode timing.
func (x Category) HasTimecode() bool {
	return x == CategoryWithTimecode || x == CategorySyncable
}

// Active reports whether the transport is moving or may be resumed.
func (x TransportState) Active() bool {
	return x == TransportStatePlaying || x == TransportStatePaused
}
