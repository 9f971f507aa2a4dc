package ingest

import (
	"strings"

	"gopkg.in/yaml.v3"
)

const frontMatterMarker = "---"

// Normalized is the result of stripping front matter from a raw document.
// LineOffset is the 1-indexed file line of the closing marker plus any
// leading blank lines trimmed from the body, so body line 1 maps to file
// line LineOffset+1.
type Normalized struct {
	Body       string
	Metadata   map[string]interface{}
	LineOffset int
}

// Normalize detects a YAML front matter block delimited by "---" lines at
// the top of the file. A malformed block (unclosed marker or invalid YAML)
// is non-fatal: the raw text is passed through unchanged with no metadata.
func Normalize(raw string) Normalized {
	lines := strings.Split(raw, "\n")

	if len(lines) == 0 || strings.TrimRight(lines[0], "\r") != frontMatterMarker {
		return trimLeadingBlanks(raw, 0, nil)
	}

	closing := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimRight(lines[i], "\r") == frontMatterMarker {
			closing = i
			break
		}
	}
	if closing == -1 {
		// Unclosed marker: treat as body text
		return trimLeadingBlanks(raw, 0, nil)
	}

	metadata := map[string]interface{}{}
	block := strings.Join(lines[1:closing], "\n")
	if err := yaml.Unmarshal([]byte(block), &metadata); err != nil {
		return trimLeadingBlanks(raw, 0, nil)
	}

	body := strings.Join(lines[closing+1:], "\n")
	return trimLeadingBlanks(body, closing+1, metadata)
}

func trimLeadingBlanks(body string, offset int, metadata map[string]interface{}) Normalized {
	for {
		idx := strings.Index(body, "\n")
		if idx == -1 {
			break
		}
		if strings.TrimSpace(body[:idx]) != "" {
			break
		}
		body = body[idx+1:]
		offset++
	}

	return Normalized{
		Body:       body,
		Metadata:   metadata,
		LineOffset: offset,
	}
}

// MetaString reads a string-valued front matter field, returning "" when
// absent or not a string.
func (n Normalized) MetaString(key string) string {
	if n.Metadata == nil {
		return ""
	}
	if v, ok := n.Metadata[key].(string); ok {
		return v
	}
	return ""
}
