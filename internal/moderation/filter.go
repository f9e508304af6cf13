// Package moderation provides content filtering and moderation capabilities.
// It screens chat messages for prohibited content and enforces community
// guidelines before messages are delivered to recipients.
package moderation

import "strings"

// defaultTerms is the built-in prohibited term list. Terms may contain
// spaces; matching is case-insensitive on whole-word boundaries.
var defaultTerms = []string{
	"kill yourself",
	"kys",
	"go die",
}

// Filter screens message text against a prohibited term list and a set of
// spam pattern checks. A Filter is immutable after construction and safe for
// concurrent use.
type Filter struct {
	terms []string
}

// NewFilter creates a Filter with the built-in term list.
func NewFilter() *Filter {
	return NewFilterWithTerms(defaultTerms)
}

// NewFilterWithTerms creates a Filter with a custom term list. Terms are
// lowercased at construction; empty terms are dropped.
func NewFilterWithTerms(terms []string) *Filter {
	cleaned := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			cleaned = append(cleaned, t)
		}
	}
	return &Filter{terms: cleaned}
}

// TermCount returns the number of prohibited terms the filter carries.
func (f *Filter) TermCount() int {
	return len(f.terms)
}

// Check screens text and returns a blocking FilterResult on the first
// prohibited term or spam pattern match. Term matching runs first.
func (f *Filter) Check(text string) FilterResult {
	lower := strings.ToLower(text)
	for _, term := range f.terms {
		if containsWord(lower, term) {
			return FilterResult{
				Blocked: true,
				Reason:  "prohibited_term",
				Term:    term,
			}
		}
	}
	return f.checkSpamPatterns(text)
}

// containsWord reports whether needle occurs in haystack on word boundaries.
// Both arguments must already be lowercased. A boundary is the string edge or
// any non-letter, non-digit rune, so "badword!" matches "badword" but
// "badwordsmith" does not.
func containsWord(haystack, needle string) bool {
	for start := 0; ; {
		idx := strings.Index(haystack[start:], needle)
		if idx < 0 {
			return false
		}
		idx += start

		if boundaryBefore(haystack, idx) && boundaryAfter(haystack, idx+len(needle)) {
			return true
		}
		start = idx + 1
		if start >= len(haystack) {
			return false
		}
	}
}

func boundaryBefore(s string, idx int) bool {
	if idx == 0 {
		return true
	}
	return !isWordRune(rune(s[idx-1]))
}

func boundaryAfter(s string, idx int) bool {
	if idx >= len(s) {
		return true
	}
	return !isWordRune(rune(s[idx]))
}

func isWordRune(r rune) bool {
	return r == '_' ||
		(r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9')
}
