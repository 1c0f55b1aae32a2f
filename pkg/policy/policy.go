// Package policy implements input sanitization and output content
// classification for the conversation engine.
//
// Sanitization is total: it never rejects input, only normalizes it.
// Classification is a capability interface so the naive denylist matcher
// can be swapped for a richer classifier without touching callers.
package policy

import (
	"strings"
	"unicode"

	"github.com/dunehq/dune/pkg/domain"
)

// DefaultDenylist is the built-in set of forbidden terms.
var DefaultDenylist = []string{
	"system prompt",
	"reveal instructions",
	"password",
	"secret",
}

// reasonDisallowed deliberately does not name the matched term, to avoid
// leaking policy contents back to the caller.
const reasonDisallowed = "output contains disallowed content"

// Sanitize strips control characters and surrounding whitespace.
// It is total and idempotent: Sanitize(Sanitize(x)) == Sanitize(x).
func Sanitize(text string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, text)
	return strings.TrimSpace(cleaned)
}

// Classifier evaluates a candidate output and returns a verdict.
// Implementations must be safe for concurrent use.
type Classifier interface {
	Evaluate(text string) domain.Verdict
}

// Denylist is a Classifier that denies any text containing one of the
// configured terms, matched case-insensitively as a substring. The term
// list is read-only after construction and may be shared freely.
type Denylist struct {
	terms []string
}

// NewDenylist builds a Denylist from the given terms. Terms are lowercased;
// empty terms are dropped.
func NewDenylist(terms []string) *Denylist {
	normalized := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			normalized = append(normalized, t)
		}
	}
	return &Denylist{terms: normalized}
}

// Evaluate checks the candidate against the term list. The first matching
// term short-circuits with a denial.
func (d *Denylist) Evaluate(text string) domain.Verdict {
	lower := strings.ToLower(text)
	for _, term := range d.terms {
		if strings.Contains(lower, term) {
			return domain.Verdict{Allowed: false, Reason: reasonDisallowed}
		}
	}
	return domain.Verdict{Allowed: true}
}
