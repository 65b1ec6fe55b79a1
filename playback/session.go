package playback

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"obsync/common"
)

// Session is a snapshot of the playback state. StoryIndex is -1 when nothing
// is loaded.
type Session struct {
	ID         uuid.UUID
	StoryIndex int
	AudioURL   string
	Load       common.LoadState
	Transport  common.TransportState
	Duration   float64
	Position   float64
	Volume     float64
	Err        error
}

func (s Session) IsLoaded() bool {
	return s.Load == common.LoadStateLoaded
}

func (s Session) IsPlaying() bool {
	return s.IsLoaded() && s.Transport == common.TransportStatePlaying
}

// IsStopped is set only by explicit stop, pause keeps session active.
func (s Session) IsStopped() bool {
	return s.Transport == common.TransportStateStopped
}

func (s Session) String() string {
	return fmt.Sprintf("story=%d load=%s transport=%s position=%s/%s volume=%.2f",
		s.StoryIndex+1, s.Load, s.Transport, FormatTime(s.Position), FormatTime(s.Duration), s.Volume)
}

// FormatTime renders seconds as m:ss.
func FormatTime(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds <= 0 {
		return "0:00"
	}
	total := int(seconds)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
