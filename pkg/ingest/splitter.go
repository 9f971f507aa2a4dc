package ingest

import (
	"strings"
	"unicode/utf8"
)

// SplitConfig controls the structural splitter. Both values are character
// counts; Overlap must be smaller than TargetSize.
type SplitConfig struct {
	TargetSize int
	Overlap    int
}

// DefaultSplitConfig matches the sizes used for documentation pages.
func DefaultSplitConfig() SplitConfig {
	return SplitConfig{
		TargetSize: 1500,
		Overlap:    200,
	}
}

// boundary is a split point pattern. cutAfter is how many characters of
// the matched pattern stay with the preceding piece, so concatenating all
// pieces always reproduces the input exactly.
type boundary struct {
	pattern  string
	cutAfter int
}

// Boundaries are attempted in strict priority order: section headings
// first, then paragraph breaks, lines, sentences, words. Heading patterns
// cut after the newline so the "## " marker opens the next piece.
var boundaries = []boundary{
	{"\n## ", 1},
	{"\n### ", 1},
	{"\n#### ", 1},
	{"\n##### ", 1},
	{"\n\n", 2},
	{"\n", 1},
	{". ", 2},
	{" ", 1},
}

// Split divides text into overlapping chunks of at most cfg.TargetSize
// characters, preferring the highest-priority structural boundary that
// keeps every piece under the target. The tail of each chunk (up to
// cfg.Overlap characters, aligned to piece boundaries) reappears at the
// head of the next chunk.
func Split(text string, cfg SplitConfig) []string {
	if cfg.TargetSize <= 0 {
		cfg.TargetSize = DefaultSplitConfig().TargetSize
	}
	if cfg.Overlap < 0 || cfg.Overlap >= cfg.TargetSize {
		cfg.Overlap = 0
	}

	if utf8.RuneCountInString(text) <= cfg.TargetSize {
		if text == "" {
			return nil
		}
		return []string{text}
	}

	pieces := splitRecursive(text, boundaries, cfg.TargetSize)
	return mergeWithOverlap(pieces, cfg)
}

// splitRecursive breaks text along the first boundary that occurs in it,
// then recurses with lower-priority boundaries on any piece still larger
// than the target. Pieces are contiguous slices of the input; nothing is
// dropped.
func splitRecursive(text string, bounds []boundary, target int) []string {
	if utf8.RuneCountInString(text) <= target {
		return []string{text}
	}
	if len(bounds) == 0 {
		return hardCut(text, target)
	}

	b := bounds[0]
	parts := splitAt(text, b)
	if len(parts) == 1 {
		// Boundary not present, fall through to the next priority
		return splitRecursive(text, bounds[1:], target)
	}

	var out []string
	for _, p := range parts {
		if utf8.RuneCountInString(p) > target {
			out = append(out, splitRecursive(p, bounds[1:], target)...)
		} else {
			out = append(out, p)
		}
	}
	return out
}

// splitAt cuts text at every occurrence of b.pattern, keeping the first
// b.cutAfter characters of the pattern with the preceding piece.
func splitAt(text string, b boundary) []string {
	var parts []string
	for {
		idx := strings.Index(text, b.pattern)
		if idx == -1 {
			break
		}
		cut := idx + b.cutAfter
		parts = append(parts, text[:cut])
		text = text[cut:]
	}
	if text != "" || len(parts) == 0 {
		parts = append(parts, text)
	}
	return parts
}

// hardCut is the last resort for pathological runs with no boundaries at
// all: raw slices of exactly target runes.
func hardCut(text string, target int) []string {
	runes := []rune(text)
	var parts []string
	for start := 0; start < len(runes); start += target {
		end := start + target
		if end > len(runes) {
			end = len(runes)
		}
		parts = append(parts, string(runes[start:end]))
	}
	return parts
}

// mergeWithOverlap packs pieces into chunks of at most cfg.TargetSize
// runes. Each new chunk is seeded with trailing pieces of its predecessor
// totalling at most cfg.Overlap runes; the seed shrinks from the front if
// the first fresh piece would not fit beside it.
func mergeWithOverlap(pieces []string, cfg SplitConfig) []string {
	var chunks []string
	var current []string
	currentLen := 0
	seedCount := 0 // pieces in current carried over from the previous chunk

	flush := func() {
		if len(current) == seedCount {
			return
		}
		chunks = append(chunks, strings.Join(current, ""))

		// Build the seed for the next chunk from the tail of this one
		var seed []string
		seedLen := 0
		for i := len(current) - 1; i >= 0; i-- {
			l := utf8.RuneCountInString(current[i])
			if seedLen+l > cfg.Overlap {
				break
			}
			seed = append([]string{current[i]}, seed...)
			seedLen += l
		}
		current = seed
		currentLen = seedLen
		seedCount = len(seed)
	}

	for _, piece := range pieces {
		l := utf8.RuneCountInString(piece)
		for currentLen+l > cfg.TargetSize && len(current) > 0 {
			if len(current) == seedCount {
				// Only the carried-over seed is left: shrink it from the
				// front so the fresh piece always fits
				currentLen -= utf8.RuneCountInString(current[0])
				current = current[1:]
				seedCount--
				continue
			}
			flush()
		}
		current = append(current, piece)
		currentLen += l
	}
	flush()

	return chunks
}
