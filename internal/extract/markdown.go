package extract

import (
	"regexp"
	"strings"

	"github.com/quaero-labs/quaero/internal/core/domain"
)

var (
	imageRe     = regexp.MustCompile(`!\[([^\]]*)\]\(([^)]+)\)`)
	linkRe      = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	headingRe   = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	tableRowRe  = regexp.MustCompile(`^\s*\|.*\|\s*$`)
	tableSepRe  = regexp.MustCompile(`^\s*\|?[\s:|-]+\|?\s*$`)
	fencedCodeRe = regexp.MustCompile("(?s)```[^`]*```")
)

// Markdown extracts text, table and image chunks from markdown files.
// Pipe tables become table chunks carrying the verbatim markdown,
// image references become image chunks, the remaining prose is split
// like plain text.
type Markdown struct {
	text *PlainText
}

// NewMarkdown creates a markdown extractor.
func NewMarkdown(opts ...PlainTextOption) *Markdown {
	return &Markdown{text: NewPlainText(opts...)}
}

// Extract parses the markdown file into ordered chunks. Tables and
// images keep their position relative to the surrounding prose.
func (m *Markdown) Extract(_ string, data []byte) ([]domain.Chunk, error) {
	content := strings.ReplaceAll(string(data), "\r\n", "\n")

	var chunks []domain.Chunk
	var prose []string

	flushProse := func() {
		text := strings.TrimSpace(strings.Join(prose, "\n"))
		prose = prose[:0]
		if text == "" {
			return
		}
		for _, part := range splitFixed(cleanProse(text), m.text.chunkSize, m.text.overlap) {
			chunks = append(chunks, domain.Chunk{
				Content: part,
				Kind:    domain.ChunkText,
				Page:    domain.PageUnknown,
			})
		}
	}

	lines := strings.Split(content, "\n")
	for i := 0; i < len(lines); i++ {
		if isTableStart(lines, i) {
			flushProse()
			table, consumed := collectTable(lines, i)
			chunks = append(chunks, domain.Chunk{
				Content: table,
				Kind:    domain.ChunkTable,
				Page:    domain.PageUnknown,
				Table:   &domain.TableMeta{Markdown: table},
			})
			i += consumed - 1
			continue
		}

		if matches := imageRe.FindAllStringSubmatch(lines[i], -1); len(matches) > 0 {
			remainder := imageRe.ReplaceAllString(lines[i], "")
			if strings.TrimSpace(remainder) != "" {
				prose = append(prose, remainder)
			}
			flushProse()
			for _, match := range matches {
				caption, uri := match[1], match[2]
				chunks = append(chunks, domain.Chunk{
					Content: caption,
					Kind:    domain.ChunkImage,
					Page:    domain.PageUnknown,
					Image:   &domain.ImageMeta{Caption: caption, URI: uri},
				})
			}
			continue
		}

		prose = append(prose, lines[i])
	}
	flushProse()

	for i := range chunks {
		chunks[i].Position = i
	}
	return chunks, nil
}

// cleanProse strips markdown syntax that adds no retrieval value:
// fenced code blocks, link targets and heading markers.
func cleanProse(text string) string {
	text = fencedCodeRe.ReplaceAllString(text, "")
	text = linkRe.ReplaceAllString(text, "$1")
	text = headingRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// isTableStart reports whether a pipe table begins at line i: a row of
// cells followed by a separator row.
func isTableStart(lines []string, i int) bool {
	if i+1 >= len(lines) {
		return false
	}
	return tableRowRe.MatchString(lines[i]) &&
		tableRowRe.MatchString(lines[i+1]) &&
		tableSepRe.MatchString(lines[i+1])
}

// collectTable gathers consecutive table rows starting at line i and
// returns the verbatim table text with the number of lines consumed.
func collectTable(lines []string, i int) (string, int) {
	end := i
	for end < len(lines) && tableRowRe.MatchString(lines[end]) {
		end++
	}
	rows := make([]string, 0, end-i)
	for _, line := range lines[i:end] {
		rows = append(rows, strings.TrimSpace(line))
	}
	return strings.Join(rows, "\n"), end - i
}
