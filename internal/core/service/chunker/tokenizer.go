package chunker

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// TokenCounter estimates how many tokens a string of text costs an LLM
// provider. The chunker's hot path uses the cheap character-based estimate;
// an exact counter exists for tests that need to validate the estimate
// stays within tolerance, and for callers that request an adaptive budget
// tied to a specific model's real tokenizer.
type TokenCounter interface {
	Count(text string) int
}

// charEstimateCounter implements the spec's 4-chars-per-token rule of
// thumb. It never touches the network and never errors, which is why it is
// the chunker's default.
type charEstimateCounter struct{}

// NewCharEstimateCounter returns the default fast-path counter.
func NewCharEstimateCounter() TokenCounter {
	return charEstimateCounter{}
}

func (charEstimateCounter) Count(text string) int {
	n := len([]rune(text))
	return (n + 3) / 4
}

// tikTokenCounter wraps tiktoken-go for exact counts against a specific
// model's real encoding.
type tikTokenCounter struct {
	encoding *tiktoken.Tiktoken
}

// NewTikTokenCounter returns an exact counter for the named chat model,
// falling back to gpt-3.5-turbo's encoding if model is empty or unknown.
func NewTikTokenCounter(model string) (TokenCounter, error) {
	if model == "" {
		model = "gpt-3.5-turbo"
	}
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		return nil, fmt.Errorf("resolving tiktoken encoding for %s: %w", model, err)
	}
	return &tikTokenCounter{encoding: enc}, nil
}

func (c *tikTokenCounter) Count(text string) int {
	return len(c.encoding.Encode(text, nil, nil))
}
