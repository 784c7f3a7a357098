package page

import (
	"strings"
	"testing"

	"github.com/wikimirror/wikimirror/internal/merge"
)

var (
	op = string(merge.Open)
	cl = string(merge.Close)
)

func TestScrub_RemovesSentinelsInsideTags(t *testing.T) {
	in := `<img src="Foo ` + op + ` bar.jpg">text ` + op + ` inside ` + cl + ` tail`
	want := `<img src="Foo  bar.jpg">text ` + op + ` inside ` + cl + ` tail`
	if got := Scrub(in); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestScrub_PreservesSentinelsInTextContent(t *testing.T) {
	in := "<p>" + op + "defaced" + cl + "</p>"
	if got := Scrub(in); got != in {
		t.Errorf("expected unchanged %q, got %q", in, got)
	}
}

func TestScrub_Idempotent(t *testing.T) {
	inputs := []string{
		`<img src="a` + op + `b.jpg">` + op + `text` + cl,
		"<p>plain</p>",
		op + "bare sentinels" + cl,
		`<a href="x` + cl + `">link</a>`,
		"",
	}
	for _, in := range inputs {
		once := Scrub(in)
		twice := Scrub(once)
		if once != twice {
			t.Errorf("not idempotent for %q: %q vs %q", in, once, twice)
		}
	}
}

func TestScrub_NoSentinelsIsNoOp(t *testing.T) {
	in := `<div class="x"><p>hello &lt;world&gt;</p></div>`
	if got := Scrub(in); got != in {
		t.Errorf("expected unchanged %q, got %q", in, got)
	}
}

func TestScrub_EscapedAngleBracketsAreText(t *testing.T) {
	// &lt; does not open a tag, so a sentinel after it stays.
	in := "&lt;" + op + "kept" + cl + "&gt;"
	if got := Scrub(in); got != in {
		t.Errorf("expected unchanged %q, got %q", in, got)
	}
}

func TestExpandSpans(t *testing.T) {
	in := "<p>before " + op + "defaced text" + cl + " after</p>"
	want := `<p>before <span class="restored-vandalism">defaced text</span> after</p>`
	if got := ExpandSpans(in); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestExpandSpans_OutputHasNoSentinels(t *testing.T) {
	in := op + "a" + cl + " plain " + op + "b" + cl
	got := ExpandSpans(in)
	if strings.ContainsRune(got, merge.Open) || strings.ContainsRune(got, merge.Close) {
		t.Errorf("sentinels survived expansion: %q", got)
	}
}
