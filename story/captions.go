package story

import (
	"strings"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

// Splitter breaks episode text into caption sentences. Nil Splitter keeps
// every paragraph as a single caption.
type Splitter struct {
	*sentences.DefaultSentenceTokenizer
}

// NewSplitter returns splitter for the language or nil when no tokenizer
// model is available for it.
func NewSplitter(lang string, log *zap.Logger) *Splitter {
	tag, err := language.Parse(lang)
	if err != nil {
		log.Debug("Unable to parse language, sentence splitting is off", zap.String("lang", lang), zap.Error(err))
		return nil
	}
	base, _ := tag.Base()
	if en, _ := language.English.Base(); base != en {
		log.Debug("No sentence tokenizer model for language, sentence splitting is off", zap.Stringer("tag", tag))
		return nil
	}
	tok, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		log.Warn("Unable to load sentences tokenizer data", zap.Stringer("tag", tag), zap.Error(err))
		return nil
	}
	return &Splitter{tok}
}

// Captions returns sentences of every paragraph in text, trimmed, in order.
func (s *Splitter) Captions(text string) []string {
	var out []string
	for para := range strings.SplitSeq(text, "\n") {
		para = strings.TrimSpace(para)
		if len(para) == 0 {
			continue
		}
		if s == nil {
			out = append(out, para)
			continue
		}
		for _, sentence := range s.Tokenize(para) {
			if t := strings.TrimSpace(sentence.Text); len(t) > 0 {
				out = append(out, t)
			}
		}
	}
	return out
}
