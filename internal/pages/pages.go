// Package pages parses page selections supplied as form parameters.
//
// A selection is "all", "first", "last", or a comma-separated list of
// 1-indexed pages and inclusive ranges, e.g. "1-3,5,9".
package pages

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrSyntax reports a malformed selection string.
var ErrSyntax = errors.New("malformed page selection")

// ErrOutOfRange reports a page outside the document.
var ErrOutOfRange = errors.New("page out of range")

type span struct {
	from, to int
}

// Selection is a parsed page selection, independent of any document.
type Selection struct {
	all   bool
	first bool
	last  bool
	spans []span
}

// All selects every page.
func All() Selection { return Selection{all: true} }

// Parse parses a selection string.
func Parse(s string) (Selection, error) {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "all", "":
		return Selection{all: true}, nil
	case "first":
		return Selection{first: true}, nil
	case "last":
		return Selection{last: true}, nil
	}

	var sel Selection
	for _, token := range strings.Split(s, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			return Selection{}, fmt.Errorf("%w: empty element", ErrSyntax)
		}
		from, to, ok := parseSpan(token)
		if !ok {
			return Selection{}, fmt.Errorf("%w: %q", ErrSyntax, token)
		}
		sel.spans = append(sel.spans, span{from: from, to: to})
	}
	return sel, nil
}

func parseSpan(token string) (from, to int, ok bool) {
	if i := strings.IndexByte(token, '-'); i > 0 {
		a, errA := strconv.Atoi(strings.TrimSpace(token[:i]))
		b, errB := strconv.Atoi(strings.TrimSpace(token[i+1:]))
		if errA != nil || errB != nil || a < 1 || b < a {
			return 0, 0, false
		}
		return a, b, true
	}
	n, err := strconv.Atoi(token)
	if err != nil || n < 1 {
		return 0, 0, false
	}
	return n, n, true
}

// IsAll reports whether the selection covers every page.
func (s Selection) IsAll() bool { return s.all }

// Resolve expands the selection against a document with pageCount pages,
// returning the selected pages in selection order (1-indexed).
func (s Selection) Resolve(pageCount int) ([]int, error) {
	if pageCount < 1 {
		return nil, fmt.Errorf("%w: document has no pages", ErrOutOfRange)
	}
	switch {
	case s.all:
		out := make([]int, pageCount)
		for i := range out {
			out[i] = i + 1
		}
		return out, nil
	case s.first:
		return []int{1}, nil
	case s.last:
		return []int{pageCount}, nil
	}

	var out []int
	for _, sp := range s.spans {
		if sp.from > pageCount || sp.to > pageCount {
			return nil, fmt.Errorf("%w: document has %d pages", ErrOutOfRange, pageCount)
		}
		for p := sp.from; p <= sp.to; p++ {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no pages selected", ErrSyntax)
	}
	return out, nil
}

// Strings formats pages for pdfcpu's page-selection syntax.
func Strings(pages []int) []string {
	out := make([]string, len(pages))
	for i, p := range pages {
		out[i] = strconv.Itoa(p)
	}
	return out
}
