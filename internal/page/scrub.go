// Package page post-processes rendered article HTML: it scrubs sentinels
// that rendering left inside markup, expands the surviving sentinels into
// styled spans, and splices the finished body into the live page shell.
package page

import (
	"strings"

	"github.com/wikimirror/wikimirror/internal/merge"
)

// Scrub removes sentinel code points that ended up inside HTML tag
// delimiters, where they would corrupt attributes. Sentinels in text
// content are preserved for the span expansion. Scrub is idempotent.
//
// A sentinel that landed inside a wikitext construct expanding into
// attribute text (an image filename, a template argument) has already
// corrupted that construct before rendering; that lossage is accepted.
func Scrub(html string) string {
	var b strings.Builder
	b.Grow(len(html))
	inTag := false
	for _, r := range html {
		switch r {
		case '<':
			inTag = true
		case '>':
			inTag = false
		case merge.Open, merge.Close:
			if inTag {
				continue
			}
		}
		b.WriteRune(r)
	}
	return b.String()
}

var spanReplacer = strings.NewReplacer(
	string(merge.Open), `<span class="restored-vandalism">`,
	string(merge.Close), `</span>`,
)

// ExpandSpans rewrites the sentinels surviving Scrub into span elements so
// the merged-in vandalism can be styled. The output contains no sentinel
// code points.
func ExpandSpans(html string) string {
	return spanReplacer.Replace(html)
}
