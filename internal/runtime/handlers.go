package runtime

import (
	"context"
	"fmt"
	"strings"

	"github.com/dunehq/dune/pkg/domain"
	"github.com/dunehq/dune/pkg/policy"
)

// Handler synthesizes the candidate reply for one stage. The engine owns
// everything around it: policy vetting, blocked-message substitution,
// auditing and the transition itself.
type Handler func(ctx context.Context, sess domain.Session) string

// inputPreview bounds how much sanitized user input a template may echo.
const inputPreview = 64

// inputPlaceholder marks where the bounded input prefix lands in a template.
const inputPlaceholder = "{{input}}"

// templateHandler renders the node template, substituting a bounded prefix
// of the sanitized user input. Sanitization is total, so this never fails.
func templateHandler(node domain.Node) Handler {
	return func(ctx context.Context, sess domain.Session) string {
		text := policy.Sanitize(sess.RawInput)
		if runes := []rune(text); len(runes) > inputPreview {
			text = string(runes[:inputPreview])
		}
		return strings.ReplaceAll(node.Template, inputPlaceholder, text)
	}
}

// blockedMessage is the fixed, policy-safe substitute for a denied reply.
// The raw candidate is never emitted, and the generation is never retried
// to get past the filter.
func blockedMessage(node domain.Node) string {
	if node.Blocked != "" {
		return node.Blocked
	}
	return fmt.Sprintf("[%s] Response blocked by policy", node.ID)
}
