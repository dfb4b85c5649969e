package extraction

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Match is one occurrence of a search term inside a text
type Match struct {
	Start int
	End   int
	Term  string
}

// Variants expands a name and its aliases into the lowercase terms that are searched for.
// "Tech Corp" also yields "techcorp"; "Monday.com" also yields "mondaycom".
// Longer terms come first so they win over their own prefixes.
func Variants(name string, aliases []string) []string {
	seen := make(map[string]bool)
	var terms []string

	add := func(term string) {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" || seen[term] {
			return
		}
		seen[term] = true
		terms = append(terms, term)
	}

	for _, candidate := range append([]string{name}, aliases...) {
		add(candidate)
		add(strings.ReplaceAll(candidate, " ", ""))
		add(stripPunctuation(candidate))
	}

	sort.SliceStable(terms, func(i, j int) bool {
		return len(terms[i]) > len(terms[j])
	})

	return terms
}

// Contains reports whether any term occurs in text on word boundaries
func Contains(text string, terms []string) bool {
	return len(FindAll(text, terms)) > 0
}

// FindAll returns the non-overlapping, word-bounded occurrences of terms in text,
// ordered by position. Matching is case-insensitive.
func FindAll(text string, terms []string) []Match {
	if text == "" || len(terms) == 0 {
		return nil
	}

	haystack := foldedText(text)
	var matches []Match

	for _, term := range terms {
		term = strings.ToLower(term)
		if term == "" {
			continue
		}
		offset := 0
		for {
			idx := strings.Index(haystack[offset:], term)
			if idx < 0 {
				break
			}
			start := offset + idx
			end := start + len(term)
			if isBoundary(haystack, start, end) && !overlaps(matches, start, end) {
				matches = append(matches, Match{Start: start, End: end, Term: term})
			}
			offset = start + 1
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Start < matches[j].Start
	})

	return matches
}

// foldedText lowercases text while keeping byte offsets aligned with the original.
// Runes whose lowercase form has a different width, and invalid bytes, are kept as-is.
func foldedText(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if r == utf8.RuneError && size == 1 {
			b.WriteByte(text[i])
			i++
			continue
		}
		lower := unicode.ToLower(r)
		if utf8.RuneLen(lower) != size {
			lower = r
		}
		b.WriteRune(lower)
		i += size
	}
	return b.String()
}

func isBoundary(text string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:start])
		if isWordRune(r) {
			return false
		}
	}
	if end < len(text) {
		r, _ := utf8.DecodeRuneInString(text[end:])
		if isWordRune(r) {
			return false
		}
	}
	return true
}

func overlaps(matches []Match, start, end int) bool {
	for _, m := range matches {
		if start < m.End && m.Start < end {
			return true
		}
	}
	return false
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func stripPunctuation(s string) string {
	var b strings.Builder
	for _, r := range s {
		if isWordRune(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Snippets cuts a window of radius bytes around each match, snapped to word
// boundaries, merging windows that overlap. At most limit snippets are returned.
func Snippets(text string, matches []Match, radius, limit int) []string {
	type window struct{ start, end int }
	var windows []window

	for _, m := range matches {
		start := m.Start - radius
		if start < 0 {
			start = 0
		}
		end := m.End + radius
		if end > len(text) {
			end = len(text)
		}
		start, end = snap(text, start, end, m)

		if n := len(windows); n > 0 && start <= windows[n-1].end {
			if end > windows[n-1].end {
				windows[n-1].end = end
			}
			continue
		}
		windows = append(windows, window{start, end})
	}

	snippets := make([]string, 0, len(windows))
	for _, w := range windows {
		if limit > 0 && len(snippets) >= limit {
			break
		}
		snippet := strings.Join(strings.Fields(text[w.start:w.end]), " ")
		if snippet != "" {
			snippets = append(snippets, snippet)
		}
	}

	return snippets
}

// snap moves window edges off partial words without cutting into the match itself
func snap(text string, start, end int, m Match) (int, int) {
	if start > 0 && !unicode.IsSpace(runeBefore(text, start)) {
		if idx := strings.IndexFunc(text[start:m.Start], unicode.IsSpace); idx >= 0 {
			start += idx
		} else {
			start = m.Start
		}
	}
	if end < len(text) && !unicode.IsSpace(runeAt(text, end)) {
		if idx := strings.LastIndexFunc(text[m.End:end], unicode.IsSpace); idx >= 0 {
			end = m.End + idx
		} else {
			end = m.End
		}
	}
	// keep edges on rune boundaries
	for start > 0 && !utf8.RuneStart(text[start]) {
		start--
	}
	for end < len(text) && !utf8.RuneStart(text[end]) {
		end++
	}
	return start, end
}

func runeBefore(text string, i int) rune {
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return r
}

func runeAt(text string, i int) rune {
	r, _ := utf8.DecodeRuneInString(text[i:])
	return r
}
