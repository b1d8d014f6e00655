package chunker

import (
	"strings"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
)

// sentenceSplitter breaks a paragraph-sized span into sentences. It is the
// Chunker's fallback when a paragraph alone exceeds the token target.
type sentenceSplitter interface {
	Split(text string) []string
}

// neurosnapSplitter uses a statistical sentence tokenizer trained on
// English, so it handles abbreviations ("Dr.", "e.g.") without splitting
// mid-sentence the way a naive ". " split would.
type neurosnapSplitter struct {
	tokenizer *sentences.DefaultSentenceTokenizer
}

func newNeurosnapSplitter() (sentenceSplitter, error) {
	tokenizer, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, err
	}
	return &neurosnapSplitter{tokenizer: tokenizer}, nil
}

func (s *neurosnapSplitter) Split(text string) []string {
	sentences := s.tokenizer.Tokenize(text)
	out := make([]string, 0, len(sentences))
	for _, sent := range sentences {
		trimmed := strings.TrimSpace(sent.Text)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// wordSplitter is the last-resort fallback when a single sentence still
// exceeds the token target (e.g. a run-on line with no punctuation).
type wordSplitter struct{}

func (wordSplitter) Split(text string) []string {
	return strings.Fields(text)
}
