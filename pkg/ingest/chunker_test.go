package ingest

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestChunkID(t *testing.T) {
	tests := []struct {
		name       string
		sourcePath string
		index      int
		want       string
	}{
		{
			name:       "nested path",
			sourcePath: "web/javascript/guide/functions/index.md",
			index:      0,
			want:       "web_javascript_guide_functions_index_chunk_0",
		},
		{
			name:       "flat file",
			sourcePath: "closures.md",
			index:      12,
			want:       "closures_chunk_12",
		},
		{
			name:       "windows separators",
			sourcePath: `web\api\fetch.md`,
			index:      2,
			want:       "web_api_fetch_chunk_2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ChunkID(tt.sourcePath, tt.index); got != tt.want {
				t.Errorf("ChunkID = %q, want %q", got, tt.want)
			}
		})
	}
}

const functionsDoc = `---
title: Functions
slug: Web/JavaScript/Guide/Functions
page-type: guide
---
# Functions

Functions are one of the fundamental building blocks.
A function is a reusable set of statements.

## Defining functions

A function definition consists of the function keyword.
It can return a value to the caller.
Parameters are listed inside the parentheses.`

func TestBuildChunksFunctionsGuide(t *testing.T) {
	norm := Normalize(functionsDoc)
	if norm.LineOffset != 5 {
		t.Fatalf("LineOffset = %d, want 5", norm.LineOffset)
	}

	doc := Document{
		SourcePath: "web/javascript/guide/functions/index.md",
		Title:      norm.MetaString("title"),
		Slug:       norm.MetaString("slug"),
		PageType:   norm.MetaString("page-type"),
		Metadata:   norm.Metadata,
	}

	chunks, err := BuildChunks(doc, norm.Body, norm.LineOffset, SplitConfig{TargetSize: 5000, Overlap: 0})
	if err != nil {
		t.Fatalf("BuildChunks error: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("chunk count = %d, want 1", len(chunks))
	}

	c := chunks[0]
	if c.ID != "web_javascript_guide_functions_index_chunk_0" {
		t.Errorf("ID = %q", c.ID)
	}
	if c.StartLine != 6 {
		t.Errorf("StartLine = %d, want 6 (first body line after front matter)", c.StartLine)
	}
	if c.EndLine != 15 {
		t.Errorf("EndLine = %d, want 15", c.EndLine)
	}
	if c.Heading != "Functions" || c.HeadingLevel != 1 {
		t.Errorf("Heading = %q (level %d), want %q (level 1)", c.Heading, c.HeadingLevel, "Functions")
	}
	if c.CharCount == 0 || c.WordCount == 0 {
		t.Errorf("counts not populated: chars=%d words=%d", c.CharCount, c.WordCount)
	}
}

func TestBuildChunksEmptyBody(t *testing.T) {
	doc := Document{SourcePath: "empty.md"}

	for _, body := range []string{"", "   \n\t\n"} {
		_, err := BuildChunks(doc, body, 0, DefaultSplitConfig())
		if !errors.Is(err, ErrEmptyDocument) {
			t.Errorf("BuildChunks(%q) error = %v, want ErrEmptyDocument", body, err)
		}
	}
}

func TestBuildChunksDeterministic(t *testing.T) {
	doc := Document{SourcePath: "guide/arrays.md"}
	body := buildLongBody()
	cfg := SplitConfig{TargetSize: 200, Overlap: 40}

	first, err := BuildChunks(doc, body, 0, cfg)
	if err != nil {
		t.Fatalf("BuildChunks error: %v", err)
	}
	second, err := BuildChunks(doc, body, 0, cfg)
	if err != nil {
		t.Fatalf("BuildChunks error: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("run lengths differ: %d vs %d", len(first), len(second))
	}
	seen := make(map[string]bool)
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Errorf("chunk %d id differs between runs: %q vs %q", i, first[i].ID, second[i].ID)
		}
		if seen[first[i].ID] {
			t.Errorf("duplicate id %q", first[i].ID)
		}
		seen[first[i].ID] = true
	}
}

func TestBuildChunksLineInvariants(t *testing.T) {
	doc := Document{SourcePath: "guide/arrays.md"}
	body := buildLongBody()
	offset := 4
	totalLines := offset + len(strings.Split(body, "\n"))

	chunks, err := BuildChunks(doc, body, offset, SplitConfig{TargetSize: 200, Overlap: 40})
	if err != nil {
		t.Fatalf("BuildChunks error: %v", err)
	}
	if len(chunks) < 3 {
		t.Fatalf("chunk count = %d, want several", len(chunks))
	}

	prevStart := 0
	for i, c := range chunks {
		if c.ChunkIndex != i {
			t.Errorf("chunk %d: ChunkIndex = %d", i, c.ChunkIndex)
		}
		if c.StartLine < prevStart {
			t.Errorf("chunk %d: StartLine %d before predecessor %d", i, c.StartLine, prevStart)
		}
		if c.StartLine <= offset {
			t.Errorf("chunk %d: StartLine %d inside front matter (offset %d)", i, c.StartLine, offset)
		}
		if c.EndLine < c.StartLine {
			t.Errorf("chunk %d: EndLine %d before StartLine %d", i, c.EndLine, c.StartLine)
		}
		if c.EndLine > totalLines {
			t.Errorf("chunk %d: EndLine %d past file end %d", i, c.EndLine, totalLines)
		}
		if c.Heading == "" {
			t.Errorf("chunk %d: empty heading", i)
		}
		prevStart = c.StartLine
	}
}

func TestBuildChunksCoverEveryBodyLine(t *testing.T) {
	doc := Document{SourcePath: "guide/iterators.md"}

	var sb strings.Builder
	sb.WriteString("# Iterators\n\n")
	for s := 1; s <= 8; s++ {
		fmt.Fprintf(&sb, "## Section %d\n\n", s)
		for l := 1; l <= 4; l++ {
			fmt.Fprintf(&sb, "Section %d line %d explains one aspect of the iteration protocol.\n", s, l)
		}
		sb.WriteString("\n")
	}
	body := sb.String()

	chunks, err := BuildChunks(doc, body, 0, SplitConfig{TargetSize: 400, Overlap: 80})
	if err != nil {
		t.Fatalf("BuildChunks error: %v", err)
	}
	if len(chunks) < 4 {
		t.Fatalf("chunk count = %d, want several", len(chunks))
	}

	// Every non-blank body line must fall inside at least one chunk's
	// [StartLine, EndLine] range; a hole means text exists that no
	// retrieval result can ever point back to.
	for n, line := range strings.Split(body, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lineNo := n + 1
		covered := false
		for _, c := range chunks {
			if lineNo >= c.StartLine && lineNo <= c.EndLine {
				covered = true
				break
			}
		}
		if !covered {
			t.Errorf("body line %d (%q) is not covered by any chunk", lineNo, line)
		}
	}
}

func TestLocateStartScansForwardOnly(t *testing.T) {
	bodyLines := []string{
		"# Guide",
		"repeated line",
		"other text",
		"", // 4
		"## Later",
		"more text",
		"repeated line", // 7
		"tail",
	}

	// The duplicate must resolve to its second occurrence once the scan
	// window has moved past the first.
	if got := locateStart(bodyLines, "repeated line\ntail", 5); got != 7 {
		t.Errorf("locateStart = %d, want 7", got)
	}
	// From the top the first occurrence wins.
	if got := locateStart(bodyLines, "repeated line", 1); got != 2 {
		t.Errorf("locateStart = %d, want 2", got)
	}
}

func TestAttributeHeading(t *testing.T) {
	bodyLines := []string{
		"# Guide",       // 1
		"",              // 2
		"Intro text.",   // 3
		"",              // 4
		"## Details",    // 5
		"",              // 6
		"Detail text.",  // 7
		"```",           // 8
		"# Not a title", // 9
		"```",           // 10
		"More text.",    // 11
	}

	tests := []struct {
		name      string
		startLine int
		want      string
		wantLevel int
	}{
		{"top of document", 1, "Guide", 1},
		{"inside first section", 3, "Guide", 1},
		{"inside subsection", 7, "Details", 2},
		// The scanner does not track code fences; the fenced "# Not a
		// title" wins for chunks starting after it.
		{"after fenced pseudo-heading", 11, "Not a title", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, level := attributeHeading(bodyLines, "chunk text", tt.startLine)
			if got != tt.want || level != tt.wantLevel {
				t.Errorf("attributeHeading = %q (level %d), want %q (level %d)", got, level, tt.want, tt.wantLevel)
			}
		})
	}
}

func TestAttributeHeadingFallbacks(t *testing.T) {
	// No heading anywhere above: the chunk's own text is scanned.
	got, level := attributeHeading([]string{"plain", "text"}, "lead in\n### Own Section\nbody", 2)
	if got != "Own Section" || level != 3 {
		t.Errorf("own-text fallback = %q (level %d)", got, level)
	}

	// No heading at all: default label.
	got, level = attributeHeading([]string{"plain", "text"}, "no markers here", 2)
	if got != DefaultHeading || level != 1 {
		t.Errorf("default fallback = %q (level %d)", got, level)
	}
}

func buildLongBody() string {
	var sb strings.Builder
	sb.WriteString("# Arrays\n\n")
	sections := []string{"Creating arrays", "Indexing", "Iteration", "Mutation", "Copying"}
	for _, s := range sections {
		sb.WriteString("## " + s + "\n\n")
		for i := 0; i < 4; i++ {
			sb.WriteString("Arrays hold ordered values and grow on demand as elements arrive. ")
			sb.WriteString("Access by index is constant time while search is linear.\n")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
