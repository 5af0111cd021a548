package workspace

import (
	"regexp"
	"strings"
	"unicode/utf8"

	mdwerror "github.com/msto63/codasai/foundation/core/error"
)

// Span is a byte range [Start, End) of file contents
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Lines returns the 1-based first and last line the span touches
func (s Span) Lines(contents string) (first, last int) {
	first = strings.Count(contents[:s.Start], "\n") + 1
	end := s.End
	if end > s.Start {
		end--
	}
	last = strings.Count(contents[:end], "\n") + 1
	return first, last
}

// Highlight finds the span starting at the first match of from and ending
// after the first character of the next match of to. Both patterns are
// multi-line regular expressions. The search for to begins one character
// past the start; when to does not match the span covers that one
// character. ok is false when from does not match.
func Highlight(contents, from, to string) (span Span, ok bool, err error) {
	reFrom, err := compile(from)
	if err != nil {
		return Span{}, false, err
	}
	reTo, err := compile(to)
	if err != nil {
		return Span{}, false, err
	}

	loc := reFrom.FindStringIndex(contents)
	if loc == nil || loc[0] >= len(contents) {
		return Span{}, false, nil
	}
	start := loc[0]

	_, size := utf8.DecodeRuneInString(contents[start:])
	searchFrom := start + size

	end := start
	if rel := reTo.FindStringIndex(contents[searchFrom:]); rel != nil {
		end = searchFrom + rel[0]
	}
	if end < len(contents) {
		_, size = utf8.DecodeRuneInString(contents[end:])
		end += size
	}

	return Span{Start: start, End: end}, true, nil
}

func compile(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile("(?m)" + pattern)
	if err != nil {
		return nil, mdwerror.Wrap(err, "invalid highlight pattern").
			WithCode(mdwerror.CodeInvalidInput).
			WithOperation("workspace.Highlight").
			WithDetail("pattern", pattern)
	}
	return re, nil
}
