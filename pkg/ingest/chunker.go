package ingest

import (
	"errors"
	"fmt"
	"path"
	"regexp"
	"strings"
	"unicode/utf8"
)

// ErrEmptyDocument is returned when a document body yields no chunks.
var ErrEmptyDocument = errors.New("document produced no chunks")

// DefaultHeading labels chunks that precede the first section heading.
const DefaultHeading = "Introduction"

// fallbackMatchLen is how many characters of a chunk's first line are used
// for containment matching when exact line matching fails.
const fallbackMatchLen = 50

var headingPattern = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)

// Document identifies the source a set of chunks was cut from. Metadata is
// the full front matter map and is copied onto every chunk record.
type Document struct {
	SourcePath string
	Title      string
	Slug       string
	PageType   string
	Metadata   map[string]interface{}
}

// Chunk is the atomic retrieval unit. StartLine and EndLine are 1-indexed,
// inclusive, and relative to the original file including front matter.
type Chunk struct {
	ID           string
	Text         string
	CharCount    int
	WordCount    int
	StartLine    int
	EndLine      int
	Heading      string
	HeadingLevel int
	ChunkIndex   int
}

// ChunkID builds the deterministic chunk identifier: the source path with
// separators replaced by underscores and the extension stripped, plus the
// ordinal index. Reprocessing the same file yields the same ids, which is
// what makes upserts idempotent.
func ChunkID(sourcePath string, index int) string {
	slug := strings.NewReplacer("/", "_", "\\", "_").Replace(sourcePath)
	if ext := path.Ext(slug); ext != "" {
		slug = strings.TrimSuffix(slug, ext)
	}
	return fmt.Sprintf("%s_chunk_%d", slug, index)
}

// BuildChunks splits a normalized body into chunks and reconstructs each
// chunk's position in the original file. lineOffset is the front matter
// offset from Normalize; both line fields are shifted by it.
func BuildChunks(doc Document, body string, lineOffset int, cfg SplitConfig) ([]Chunk, error) {
	if strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("%s: %w", doc.SourcePath, ErrEmptyDocument)
	}

	texts := Split(body, cfg)
	if len(texts) == 0 {
		return nil, fmt.Errorf("%s: %w", doc.SourcePath, ErrEmptyDocument)
	}

	bodyLines := strings.Split(body, "\n")
	chunks := make([]Chunk, 0, len(texts))

	// Chunks overlap their predecessor, so the scan for each chunk's start
	// begins at the previous chunk's start line, never earlier. Scanning
	// forward only is what keeps repeated text earlier in the document
	// from being mismatched.
	prevStart := 1

	for i, text := range texts {
		startLine := locateStart(bodyLines, text, prevStart)
		prevStart = startLine

		lineCount := countLines(text)
		endLine := startLine + lineCount - 1
		if endLine > len(bodyLines) {
			endLine = len(bodyLines)
		}

		heading, level := attributeHeading(bodyLines, text, startLine)

		chunks = append(chunks, Chunk{
			ID:           ChunkID(doc.SourcePath, i),
			Text:         text,
			CharCount:    utf8.RuneCountInString(text),
			WordCount:    len(strings.Fields(text)),
			StartLine:    startLine + lineOffset,
			EndLine:      endLine + lineOffset,
			Heading:      heading,
			HeadingLevel: level,
			ChunkIndex:   i,
		})
	}

	return chunks, nil
}

// locateStart finds the 1-indexed body line a chunk begins on by matching
// its first non-empty line against body lines from prevStart onward. When
// no exact match exists (whitespace normalization, mid-line cuts) it falls
// back to containment matching on the first 50 characters, and finally to
// prevStart itself.
func locateStart(bodyLines []string, text string, prevStart int) int {
	first, leadingBlanks := firstContentLine(text)
	if first == "" {
		return prevStart
	}

	for i := prevStart - 1; i < len(bodyLines); i++ {
		if strings.TrimSpace(bodyLines[i]) == first {
			return matchedStart(i+1, leadingBlanks, prevStart)
		}
	}

	prefix := first
	if utf8.RuneCountInString(prefix) > fallbackMatchLen {
		prefix = string([]rune(prefix)[:fallbackMatchLen])
	}
	for i := prevStart - 1; i < len(bodyLines); i++ {
		line := strings.TrimSpace(bodyLines[i])
		if line == "" {
			continue
		}
		if strings.Contains(line, prefix) || strings.Contains(prefix, line) {
			return matchedStart(i+1, leadingBlanks, prevStart)
		}
	}

	return prevStart
}

func matchedStart(matched, leadingBlanks, prevStart int) int {
	start := matched - leadingBlanks
	if start < prevStart {
		start = prevStart
	}
	return start
}

func firstContentLine(text string) (string, int) {
	blanks := 0
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" {
			return trimmed, blanks
		}
		blanks++
	}
	return "", blanks
}

// countLines reports how many body lines a chunk's text occupies. A
// trailing newline closes the last line rather than opening a new one.
func countLines(text string) int {
	parts := strings.Split(text, "\n")
	n := len(parts)
	if n > 1 && parts[n-1] == "" {
		n--
	}
	return n
}

// attributeHeading finds the nearest section heading at or above the
// chunk's first content line, scanning the whole body backward. If the
// body has none, the chunk's own text is scanned; failing that the chunk
// is labelled with the default heading. This is a heuristic: it does not
// track code fences, so a "# " line inside a fence can be picked up.
func attributeHeading(bodyLines []string, text string, startLine int) (string, int) {
	scanFrom := startLine - 1
	if scanFrom >= len(bodyLines) {
		scanFrom = len(bodyLines) - 1
	}
	for i := scanFrom; i >= 0; i-- {
		if m := headingPattern.FindStringSubmatch(strings.TrimSpace(bodyLines[i])); m != nil {
			return strings.TrimSpace(m[2]), len(m[1])
		}
	}

	for _, line := range strings.Split(text, "\n") {
		if m := headingPattern.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			return strings.TrimSpace(m[2]), len(m[1])
		}
	}

	return DefaultHeading, 1
}
