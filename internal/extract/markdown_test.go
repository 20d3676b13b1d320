package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quaero-labs/quaero/internal/core/domain"
)

const sampleMarkdown = `# Quarterly Report

Revenue grew steadily across all regions.

| Region | Q1 | Q2 |
|--------|----|----|
| North  | 10 | 12 |
| South  |  8 |  9 |

![Revenue chart](images/revenue.png)

Costs remained flat.
`

func TestMarkdownExtractMixedContent(t *testing.T) {
	m := NewMarkdown()

	chunks, err := m.Extract("report.md", []byte(sampleMarkdown))
	require.NoError(t, err)
	require.Len(t, chunks, 4)

	assert.Equal(t, domain.ChunkText, chunks[0].Kind)
	assert.Contains(t, chunks[0].Content, "Revenue grew steadily")
	assert.NotContains(t, chunks[0].Content, "#")

	table := chunks[1]
	assert.Equal(t, domain.ChunkTable, table.Kind)
	require.NotNil(t, table.Table)
	assert.Contains(t, table.Table.Markdown, "| Region | Q1 | Q2 |")
	assert.Contains(t, table.Table.Markdown, "| South  |  8 |  9 |")

	image := chunks[2]
	assert.Equal(t, domain.ChunkImage, image.Kind)
	require.NotNil(t, image.Image)
	assert.Equal(t, "Revenue chart", image.Image.Caption)
	assert.Equal(t, "images/revenue.png", image.Image.URI)

	assert.Equal(t, domain.ChunkText, chunks[3].Kind)
	assert.Contains(t, chunks[3].Content, "Costs remained flat")

	for i, c := range chunks {
		assert.Equal(t, i, c.Position)
	}
}

func TestMarkdownExtractPlainProse(t *testing.T) {
	m := NewMarkdown()

	chunks, err := m.Extract("plain.md", []byte("Just a paragraph with a [link](https://example.com)."))
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, domain.ChunkText, chunks[0].Kind)
	assert.Contains(t, chunks[0].Content, "Just a paragraph with a link.")
}

func TestMarkdownExtractStripsCodeBlocks(t *testing.T) {
	m := NewMarkdown()

	src := "Intro text.\n\n```\nfunc main() {}\n```\n\nOutro text."
	chunks, err := m.Extract("code.md", []byte(src))
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.NotContains(t, chunks[0].Content, "func main")
	assert.Contains(t, chunks[0].Content, "Intro text.")
	assert.Contains(t, chunks[0].Content, "Outro text.")
}

func TestDefaultsRegistry(t *testing.T) {
	reg := Defaults()

	assert.Contains(t, reg, ".txt")
	assert.Contains(t, reg, ".md")
	assert.Contains(t, reg, ".markdown")
	assert.IsType(t, &PlainText{}, reg[".txt"])
	assert.IsType(t, &Markdown{}, reg[".md"])
}
