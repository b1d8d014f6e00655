// Package chunker implements the Chunker (C4): splitting page-marked
// extracted text into token-bounded, page-attributed chunks ready for
// embedding.
package chunker

import (
	"regexp"
	"strings"

	"github.com/ragsvc/rag-engine/internal/core/entity"
)

const (
	defaultTargetTokens  = 500
	defaultOverlapTokens = 100
)

var pageMarkerRe = regexp.MustCompile(`\[Page (\d+)\]`)

// Chunker splits extracted, page-marked text into chunks.
type Chunker struct {
	counter       TokenCounter
	sentences     sentenceSplitter
	words         wordSplitter
	targetTokens  int
	overlapTokens int
}

// New creates a Chunker with the spec's default target and overlap.
func New() (*Chunker, error) {
	sp, err := newNeurosnapSplitter()
	if err != nil {
		return nil, err
	}
	return &Chunker{
		counter:       NewCharEstimateCounter(),
		sentences:     sp,
		words:         wordSplitter{},
		targetTokens:  defaultTargetTokens,
		overlapTokens: defaultOverlapTokens,
	}, nil
}

// NewWithBudget creates a Chunker with a non-default target/overlap, for
// tests that need deterministic, small chunk counts.
func NewWithBudget(counter TokenCounter, targetTokens, overlapTokens int) (*Chunker, error) {
	sp, err := newNeurosnapSplitter()
	if err != nil {
		return nil, err
	}
	if counter == nil {
		counter = NewCharEstimateCounter()
	}
	return &Chunker{
		counter:       counter,
		sentences:     sp,
		words:         wordSplitter{},
		targetTokens:  targetTokens,
		overlapTokens: overlapTokens,
	}, nil
}

// pageMarker is a [Page N] marker's position in the source text.
type pageMarker struct {
	number int
	pos    int
}

// span is a contiguous byte range of the source text.
type span struct {
	start, end int
}

func (s span) text(source string) string {
	return source[s.start:s.end]
}

// Chunk splits page-marked source text into chunks, returning them
// unattached to any document (DocumentSlug and Ordinal are left for the
// caller to assign once the parent document record exists) plus the total
// page count found in the source.
func (c *Chunker) Chunk(source string) ([]entity.Chunk, int) {
	if strings.TrimSpace(source) == "" {
		return nil, 0
	}

	markers := parsePageMarkers(source)
	pageCount := 1
	if len(markers) > 0 {
		pageCount = markers[len(markers)-1].number
	}

	paragraphs := splitParagraphs(source)
	var leaves []span
	for _, p := range paragraphs {
		leaves = append(leaves, c.splitToFit(source, p)...)
	}
	if len(leaves) == 0 {
		return nil, pageCount
	}

	chunkSpans := c.merge(source, leaves)

	chunks := make([]entity.Chunk, 0, len(chunkSpans))
	for _, cs := range chunkSpans {
		raw := cs.text(source)
		pageNumber := derivePageNumber(markers, cs.start, cs.end)
		cleaned := strings.TrimSpace(pageMarkerRe.ReplaceAllString(raw, ""))
		if cleaned == "" {
			continue
		}
		chunks = append(chunks, entity.Chunk{
			Text: cleaned,
			Metadata: entity.ChunkMetadata{
				PageNumber: pageNumber,
				CharStart:  cs.start,
				CharEnd:    cs.end,
			},
		})
	}
	for i := range chunks {
		chunks[i].Ordinal = i
	}
	return chunks, pageCount
}

// splitToFit recursively splits a span on paragraph -> sentence -> word
// boundaries until every leaf fits within the token target.
func (c *Chunker) splitToFit(source string, s span) []span {
	if c.counter.Count(s.text(source)) <= c.targetTokens {
		return []span{s}
	}

	sub := splitWithin(source, s, func(t string) []string { return c.sentences.Split(t) })
	if len(sub) <= 1 {
		sub = splitWithin(source, s, func(t string) []string { return c.words.Split(t) })
	}
	if len(sub) <= 1 {
		// No further boundary to split on; accept the oversized leaf as-is
		// rather than cutting mid-word.
		return []span{s}
	}

	var out []span
	for _, piece := range sub {
		if c.counter.Count(piece.text(source)) <= c.targetTokens {
			out = append(out, piece)
			continue
		}
		out = append(out, c.splitToFit(source, piece)...)
	}
	return out
}

// merge packs leaf spans into chunks bounded by targetTokens, carrying
// trailing leaves from the end of each closed chunk forward as overlap
// (bounded by overlapTokens) for the next one.
func (c *Chunker) merge(source string, leaves []span) []span {
	var chunks []span
	var current []span
	currentTokens := 0

	closeChunk := func() {
		if len(current) == 0 {
			return
		}
		chunks = append(chunks, span{start: current[0].start, end: current[len(current)-1].end})

		var overlap []span
		overlapTokens := 0
		for i := len(current) - 1; i >= 0; i-- {
			t := c.counter.Count(current[i].text(source))
			if overlapTokens+t > c.overlapTokens {
				break
			}
			overlap = append([]span{current[i]}, overlap...)
			overlapTokens += t
		}
		current = overlap
		currentTokens = overlapTokens
	}

	for _, leaf := range leaves {
		t := c.counter.Count(leaf.text(source))
		if len(current) > 0 && currentTokens+t > c.targetTokens {
			closeChunk()
		}
		current = append(current, leaf)
		currentTokens += t
	}
	if len(current) > 0 {
		chunks = append(chunks, span{start: current[0].start, end: current[len(current)-1].end})
	}
	return chunks
}

// splitWithin splits the text of span s using splitFn and locates each
// resulting piece's offset within the source by searching forward from a
// cursor, since every piece is a literal, in-order substring of s.
func splitWithin(source string, s span, splitFn func(string) []string) []span {
	pieces := splitFn(s.text(source))
	var out []span
	cursor := s.start
	for _, p := range pieces {
		if p == "" {
			continue
		}
		idx := strings.Index(source[cursor:s.end], p)
		if idx < 0 {
			continue
		}
		start := cursor + idx
		end := start + len(p)
		out = append(out, span{start: start, end: end})
		cursor = end
	}
	return out
}

var paragraphSepRe = regexp.MustCompile(`\n{2,}`)

// splitParagraphs splits the source on blank-line boundaries, returning
// non-empty paragraph spans in document order.
func splitParagraphs(source string) []span {
	var out []span
	cursor := 0
	seps := paragraphSepRe.FindAllStringIndex(source, -1)
	for _, sep := range seps {
		if sep[0] > cursor {
			out = append(out, trimSpan(source, span{start: cursor, end: sep[0]}))
		}
		cursor = sep[1]
	}
	if cursor < len(source) {
		out = append(out, trimSpan(source, span{start: cursor, end: len(source)}))
	}

	filtered := out[:0]
	for _, s := range out {
		if s.start < s.end {
			filtered = append(filtered, s)
		}
	}
	return filtered
}

// trimSpan narrows a span to exclude leading/trailing whitespace while
// keeping offsets relative to source.
func trimSpan(source string, s span) span {
	for s.start < s.end && isSpace(source[s.start]) {
		s.start++
	}
	for s.end > s.start && isSpace(source[s.end-1]) {
		s.end--
	}
	return s
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func parsePageMarkers(source string) []pageMarker {
	matches := pageMarkerRe.FindAllStringSubmatchIndex(source, -1)
	markers := make([]pageMarker, 0, len(matches))
	for _, m := range matches {
		numStr := source[m[2]:m[3]]
		n := 0
		for _, ch := range numStr {
			n = n*10 + int(ch-'0')
		}
		markers = append(markers, pageMarker{number: n, pos: m[0]})
	}
	return markers
}

// derivePageNumber selects the last marker inside [charStart, charEnd), or
// failing that the last marker strictly before charStart. Center-of-chunk
// heuristics are deliberately not used: they misattribute chunks spanning a
// page boundary.
func derivePageNumber(markers []pageMarker, charStart, charEnd int) int {
	inside := 0
	for _, m := range markers {
		if m.pos >= charStart && m.pos < charEnd {
			inside = m.number
		}
	}
	if inside != 0 {
		return inside
	}

	before := 0
	for _, m := range markers {
		if m.pos < charStart {
			before = m.number
		}
	}
	if before != 0 {
		return before
	}
	return 1
}
