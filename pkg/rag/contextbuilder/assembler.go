package contextbuilder

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"doc-assistant-be/pkg/rag/retrieve"
)

// NoContextSentinel is the context text emitted when retrieval returned
// nothing. The generation step must treat it as a signal to decline or
// hedge, never to fabricate an answer.
const NoContextSentinel = "No relevant documentation was found for this question."

// excerptLength caps citation excerpts.
const excerptLength = 200

// docsBaseURL prefixes the documentation-site locator built from a page
// slug.
const docsBaseURL = "https://developer.mozilla.org/en-US/docs/"

// Citation is a numbered, user-facing pointer from generated prose back
// to the chunk that grounded it. Indices follow rank order, 1-based and
// contiguous.
type Citation struct {
	Index   int    `json:"index"`
	Title   string `json:"title"`
	Locator string `json:"locator"`
	Excerpt string `json:"excerpt"`
}

// Assembled is the grounded prompt context plus its citation list.
type Assembled struct {
	ContextText string
	Citations   []Citation
}

// Assembler renders ranked results into prompt context. BaseURL prefixes
// the documentation-site links built from page slugs.
type Assembler struct {
	BaseURL string
}

func NewAssembler(baseURL string) *Assembler {
	if baseURL == "" {
		baseURL = docsBaseURL
	}
	return &Assembler{BaseURL: baseURL}
}

// Assemble renders ranked results into one prompt-context string and a
// parallel citation list. The per-result field order is fixed (title,
// source, section, link, relevance, text) so the downstream generation
// prompt is deterministic for identical rankings.
func Assemble(results []retrieve.SearchResult) Assembled {
	return NewAssembler("").Assemble(results)
}

func (a *Assembler) Assemble(results []retrieve.SearchResult) Assembled {
	if len(results) == 0 {
		return Assembled{
			ContextText: NoContextSentinel,
			Citations:   []Citation{},
		}
	}

	var sb strings.Builder
	citations := make([]Citation, 0, len(results))

	for i, res := range results {
		chunk := res.Chunk
		index := i + 1

		sb.WriteString(fmt.Sprintf("--- Source %d ---\n", index))
		sb.WriteString(fmt.Sprintf("Title: %s\n", chunk.Title))
		sb.WriteString(fmt.Sprintf("File: %s\n", chunk.SourcePath))
		if chunk.Heading != "" {
			sb.WriteString(fmt.Sprintf("Section: %s\n", chunk.Heading))
		}
		sb.WriteString(fmt.Sprintf("Link: %s\n", a.siteLocator(chunk.Slug, chunk.StartLine)))
		sb.WriteString(fmt.Sprintf("Relevance: %.1f%%\n", res.Similarity*100))
		sb.WriteString(chunk.Content)
		sb.WriteString("\n\n")

		citations = append(citations, Citation{
			Index:   index,
			Title:   chunk.Title,
			Locator: fmt.Sprintf("%s:%d", chunk.SourcePath, chunk.StartLine),
			Excerpt: excerpt(chunk.Content),
		})
	}

	return Assembled{
		ContextText: sb.String(),
		Citations:   citations,
	}
}

func (a *Assembler) siteLocator(slug string, startLine int) string {
	return fmt.Sprintf("%s%s#L%d", a.BaseURL, slug, startLine)
}

func excerpt(text string) string {
	if utf8.RuneCountInString(text) <= excerptLength {
		return text
	}
	return string([]rune(text)[:excerptLength]) + "..."
}
