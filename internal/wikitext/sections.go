// Package wikitext partitions a wikitext document into its ordered
// sections. The split is purely line-structural: a section starts at each
// heading line of level 2 or greater, and section 0 is everything before
// the first heading. Concatenating the section texts in order reproduces
// the document byte for byte.
package wikitext

import "strings"

// Section is one contiguous slice of a wikitext document.
type Section struct {
	Index int
	// Heading is the heading line that opens the section, without its
	// trailing newline. Empty for section 0.
	Heading string
	// Text is the raw document slice for this section, heading included.
	Text string
}

// Split partitions doc into sections. The result always has at least one
// element: section 0, which is empty when the document opens with a heading.
func Split(doc string) []Section {
	var starts []int
	var headings []string

	pos := 0
	for pos < len(doc) {
		lineEnd := len(doc)
		if nl := strings.IndexByte(doc[pos:], '\n'); nl >= 0 {
			lineEnd = pos + nl
		}
		line := doc[pos:lineEnd]
		if IsHeading(line) {
			starts = append(starts, pos)
			headings = append(headings, line)
		}
		if lineEnd == len(doc) {
			break
		}
		pos = lineEnd + 1
	}

	sections := make([]Section, 0, len(starts)+1)
	end := len(doc)
	if len(starts) > 0 {
		end = starts[0]
	}
	sections = append(sections, Section{Index: 0, Text: doc[:end]})
	for i, start := range starts {
		end := len(doc)
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		sections = append(sections, Section{
			Index:   i + 1,
			Heading: headings[i],
			Text:    doc[start:end],
		})
	}
	return sections
}

// IsHeading reports whether line (without its newline) is a wikitext
// heading of level 2 or greater: its text, ignoring surrounding whitespace,
// opens and closes with at least two '=' characters.
func IsHeading(line string) bool {
	trimmed := strings.TrimSpace(line)
	return len(trimmed) >= 4 &&
		strings.HasPrefix(trimmed, "==") &&
		strings.HasSuffix(trimmed, "==")
}

// At returns the text of the section with the given ordinal index, or the
// empty string when the document has fewer sections. Sections are aligned
// across revisions by index, so a missing index merges as an empty input.
func At(sections []Section, index int) string {
	if index < 0 || index >= len(sections) {
		return ""
	}
	return sections[index].Text
}
