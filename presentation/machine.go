// Package presentation decides how the player view is shown while the user
// navigates between stories.
package presentation

import (
	"obsync/common"
)

// Transition is the outcome of navigation. StopPlayback asks the caller to
// stop active session of another story before showing the new one.
type Transition struct {
	From         common.PresentationState
	To           common.PresentationState
	StopPlayback bool
}

// Machine starts hidden. Hidden is reached again only through Reset. Machine
// is not safe for concurrent use, owner serializes access.
type Machine struct {
	state common.PresentationState
	story int
}

func NewMachine() *Machine {
	return &Machine{state: common.PresentationStateHidden, story: -1}
}

func (m *Machine) State() common.PresentationState {
	return m.state
}

// Story returns 0-based index of the story the view belongs to, -1 if none.
func (m *Machine) Story() int {
	return m.story
}

// Enter handles navigation into story. loadedStory is the story loaded in
// the player (-1 for none) and active tells whether its playback is live.
// Re-entering loaded story keeps minimized view, any other entry expands.
func (m *Machine) Enter(story, loadedStory int, active bool) Transition {
	tr := Transition{From: m.state}
	m.story = story

	if story == loadedStory && m.state == common.PresentationStateMinimized {
		tr.To = m.state
		return tr
	}
	tr.StopPlayback = active && loadedStory >= 0 && story != loadedStory
	m.state = common.PresentationStateExpanded
	tr.To = m.state
	return tr
}

// Minimize returns false when view is not expanded.
func (m *Machine) Minimize() bool {
	if m.state != common.PresentationStateExpanded {
		return false
	}
	m.state = common.PresentationStateMinimized
	return true
}

// Restore returns false when view is not minimized.
func (m *Machine) Restore() bool {
	if m.state != common.PresentationStateMinimized {
		return false
	}
	m.state = common.PresentationStateExpanded
	return true
}

// Reset hides the view and forgets the story.
func (m *Machine) Reset() {
	m.state = common.PresentationStateHidden
	m.story = -1
}
