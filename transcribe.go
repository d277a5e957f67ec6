package epdmock

import (
	"regexp"
	"strings"
)

var transcriptions = []struct {
	re   *regexp.Regexp
	repl string
}{
	// Enum member access: TextAlign.LEFT -> TextAlign::LEFT
	{regexp.MustCompile(`\bTextAlign\.`), "TextAlign::"},
	// Loop induction variables: for (var i = 0; ...) -> for (int i = 0; ...)
	{regexp.MustCompile(`\bfor\s*\(\s*(?:var|let)\s`), "for (int "},
}

// Transcribe turns the source text of a render routine into a firmware lambda
// body. It is a textual rewrite, not a translation:
//
//   - the first line (the routine's signature) and the last line (its closing
//     brace) are dropped, ignoring trailing blank lines; a source of fewer
//     than three lines yields "";
//   - TextAlign.X becomes TextAlign::X;
//   - "for (var" and "for (let" become "for (int".
//
// Everything else passes through unchanged and may need manual fixing.
func Transcribe(src string) string {
	src = strings.TrimRight(strings.ReplaceAll(src, "\r\n", "\n"), " \t\n")
	first := strings.IndexByte(src, '\n')
	last := strings.LastIndexByte(src, '\n')
	if first < 0 || first == last {
		return ""
	}
	body := src[first+1 : last+1]
	for _, t := range transcriptions {
		body = t.re.ReplaceAllString(body, t.repl)
	}
	return body
}

// SourceRoutine is a render routine that also carries its own source text,
// exported with Transcribe.
type SourceRoutine struct {
	Source string
	Func   RenderFunc
}

// Render runs the routine.
func (r SourceRoutine) Render(it *Gfx) error {
	return r.Func(it)
}

// Code returns the transcribed source.
func (r SourceRoutine) Code() string {
	return Transcribe(r.Source)
}
