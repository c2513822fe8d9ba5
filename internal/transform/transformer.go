// Package transform rewrites source chat text so it renders safely on the
// destination platform.
package transform

import "github.com/soyeahso/ircrelay/internal/domain"

// Transformer applies an ordered list of rules. It holds no mutable state
// and is safe for concurrent use.
type Transformer struct {
	rules []Rule
}

// New returns a Transformer using rules, or DefaultRules when none are given.
func New(rules ...Rule) *Transformer {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Transformer{rules: rules}
}

// Body runs every rule over raw in order.
func (t *Transformer) Body(raw string) string {
	out := raw
	for _, r := range t.rules {
		out = r.Apply(out)
	}
	return out
}

// Format renders ev as "[author] body".
func (t *Transformer) Format(ev domain.ChatEvent) string {
	return "[" + ev.Author + "] " + t.Body(ev.Body)
}
