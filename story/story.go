// Package story turns narrative markup of a single story into title and
// ordered episodes.
package story

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"obsync/utils/debug"
)

var (
	imageRef    = regexp.MustCompile(`!\[[^\]]*\]\(([^)\s]+)[^)]*\)`)
	titleNumber = regexp.MustCompile(`^\d+\s*\.\s*`)
)

// Episode is one image with its narrative text. Text is never empty.
type Episode struct {
	ImageRef string `json:"image"`
	Text     string `json:"text"`
}

type Story struct {
	Title    string    `json:"title"`
	Episodes []Episode `json:"episodes"`
}

// Segment splits markup into title and episodes. The first line starting
// with single "#" becomes the title. Every line with image reference starts
// new episode, following non-empty lines are its text. Episodes without text
// are dropped. Segment never fails, markup without structure produces empty
// Story.
func Segment(markup string) Story {
	var (
		st       Story
		titled   bool
		current  *Episode
		text     []string
		finalize = func() {
			if current != nil && len(text) > 0 {
				current.Text = strings.Join(text, "\n")
				st.Episodes = append(st.Episodes, *current)
			}
			current, text = nil, nil
		}
	)

	markup = norm.NFC.String(markup)
	markup = strings.ReplaceAll(markup, "\r\n", "\n")

	for line := range strings.SplitSeq(markup, "\n") {
		line = strings.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		if !titled && isTitle(line) {
			st.Title = strings.TrimSpace(strings.TrimPrefix(line, "#"))
			titled = true
			continue
		}
		if m := imageRef.FindStringSubmatch(line); m != nil {
			finalize()
			current = &Episode{ImageRef: m[1]}
			continue
		}
		if current != nil {
			text = append(text, line)
		}
	}
	finalize()
	return st
}

func isTitle(line string) bool {
	return strings.HasPrefix(line, "#") && !strings.HasPrefix(line, "##")
}

// DisplayTitle removes leading story number from the heading text,
// "01. The Creation" becomes "The Creation".
func DisplayTitle(title string) string {
	if t := titleNumber.ReplaceAllString(title, ""); len(t) > 0 {
		return t
	}
	return title
}

// DisplayTitle returns story title without number.
func (s *Story) DisplayTitle() string {
	return DisplayTitle(s.Title)
}

// String returns story dump for debugging.
func (s *Story) String() string {
	tw := debug.NewTreeWriter()
	tw.Line(0, "Story: %d episodes", len(s.Episodes))
	tw.TextBlock(1, "Title", s.Title)
	for i, ep := range s.Episodes {
		tw.Line(1, "Episode %d", i)
		tw.TextBlock(2, "Image", ep.ImageRef)
		tw.TextBlockLimit(2, "Text", ep.Text, 60)
	}
	return tw.String()
}
