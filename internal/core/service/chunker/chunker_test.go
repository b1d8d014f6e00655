package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunk_SinglePageShortText(t *testing.T) {
	c, err := New()
	require.NoError(t, err)

	source := "[Page 1]\nThe mitochondrion is the powerhouse of the cell.\n\nIt generates most of the cell's ATP."
	chunks, pageCount := c.Chunk(source)

	require.NotEmpty(t, chunks)
	assert.Equal(t, 1, pageCount)
	for _, ch := range chunks {
		assert.Equal(t, 1, ch.Metadata.PageNumber)
		assert.NotContains(t, ch.Text, "[Page")
	}
}

func TestChunk_PageAttributionAtBoundary(t *testing.T) {
	// A 16-token budget keeps each page's paragraph in a chunk of its own;
	// with the default budget all three pages merge into one chunk, which
	// is attributed to the last marker inside it (page 3).
	c, err := NewWithBudget(NewCharEstimateCounter(), 16, 0)
	require.NoError(t, err)

	source := "[Page 1]\nFirst page content about cats and dogs.\n\n" +
		"[Page 2]\nThe mitochondrion is the powerhouse of the cell.\n\n" +
		"[Page 3]\nThird page talks about rivers."

	chunks, pageCount := c.Chunk(source)
	require.NotEmpty(t, chunks)
	assert.Equal(t, 3, pageCount)

	var found bool
	for _, ch := range chunks {
		if strings.Contains(ch.Text, "powerhouse of the cell") {
			assert.Equal(t, 2, ch.Metadata.PageNumber)
			found = true
		}
	}
	assert.True(t, found, "expected a chunk containing the mitochondrion sentence")
}

func TestChunk_EmptySourceProducesNoChunks(t *testing.T) {
	c, err := New()
	require.NoError(t, err)

	chunks, pageCount := c.Chunk("   \n\n  ")
	assert.Empty(t, chunks)
	assert.Equal(t, 0, pageCount)
}

func TestChunk_RespectsTokenBudgetWithOverlap(t *testing.T) {
	counter := NewCharEstimateCounter()
	c, err := NewWithBudget(counter, 20, 5)
	require.NoError(t, err)

	paragraph := strings.Repeat("word ", 200)
	source := "[Page 1]\n" + paragraph

	chunks, _ := c.Chunk(source)
	require.Greater(t, len(chunks), 1, "a long paragraph should be split into multiple chunks")

	for i, ch := range chunks {
		assert.Equal(t, i, ch.Ordinal)
		assert.LessOrEqual(t, counter.Count(ch.Text), 40, "chunk should stay close to the configured budget")
	}
}

func TestChunk_CharSpansAreOrdered(t *testing.T) {
	c, err := New()
	require.NoError(t, err)

	source := "[Page 1]\nAlpha sentence one. Alpha sentence two.\n\nBeta paragraph follows here with more words."
	chunks, _ := c.Chunk(source)
	require.NotEmpty(t, chunks)

	for _, ch := range chunks {
		assert.GreaterOrEqual(t, ch.Metadata.CharEnd, ch.Metadata.CharStart)
	}
}

func TestDerivePageNumber(t *testing.T) {
	markers := []pageMarker{{number: 1, pos: 0}, {number: 2, pos: 50}, {number: 3, pos: 120}}

	assert.Equal(t, 1, derivePageNumber(markers, 5, 40))
	assert.Equal(t, 2, derivePageNumber(markers, 45, 100), "chunk spanning the page-2 marker attributes to page 2")
	assert.Equal(t, 2, derivePageNumber(markers, 60, 119), "chunk wholly inside page 2, before the next marker")
	assert.Equal(t, 3, derivePageNumber(markers, 125, 200))
}
