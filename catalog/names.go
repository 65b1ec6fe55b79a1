package catalog

import (
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// fallbackNames fills missing display names when code is recognizable
// language tag.
func fallbackNames(code string, n Names) Names {
	if len(n.English) > 0 && len(n.Vernacular) > 0 {
		return n
	}
	tag, err := language.Parse(code)
	if err != nil {
		return n
	}
	if len(n.English) == 0 {
		n.English = display.English.Tags().Name(tag)
	}
	if len(n.Vernacular) == 0 {
		n.Vernacular = display.Self.Name(tag)
	}
	return n
}
