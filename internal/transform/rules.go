package transform

import (
	"regexp"
	"strings"

	"mvdan.cc/xurls/v2"
)

// Rule is one named rewrite. Replace receives the whole body and the
// submatch index slice of a single match and returns its substitute.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
	Replace func(body string, loc []int) string
}

// Apply rewrites every non-overlapping match of the rule in body.
func (r Rule) Apply(body string) string {
	matches := r.Pattern.FindAllStringSubmatchIndex(body, -1)
	if len(matches) == 0 {
		return body
	}

	var b strings.Builder
	b.Grow(len(body) + 2*len(matches))
	last := 0
	for _, loc := range matches {
		b.WriteString(body[last:loc[0]])
		b.WriteString(r.Replace(body, loc))
		last = loc[1]
	}
	b.WriteString(body[last:])
	return b.String()
}

var (
	broadcastPattern = regexp.MustCompile(`@(everyone|here)`)
	rolePattern      = regexp.MustCompile(`<@&(\d{17,19})>`)
	linkPattern      = xurls.Relaxed()
	actionPattern    = regexp.MustCompile(`^\x01ACTION(?: (.*))?\x01$`)
)

// group returns submatch n of the match at loc, or "" when it did not take part.
func group(body string, loc []int, n int) string {
	if 2*n+1 >= len(loc) || loc[2*n] < 0 {
		return ""
	}
	return body[loc[2*n]:loc[2*n+1]]
}

// BroadcastMentions turns @everyone and @here into inert text.
var BroadcastMentions = Rule{
	Name:    "broadcast-mentions",
	Pattern: broadcastPattern,
	Replace: func(body string, loc []int) string {
		return "at-" + group(body, loc, 1)
	},
}

// RoleMentions turns <@&id> role pings into at-role-id.
var RoleMentions = Rule{
	Name:    "role-mentions",
	Pattern: rolePattern,
	Replace: func(body string, loc []int) string {
		return "at-role-" + group(body, loc, 1)
	},
}

// Links wraps every link in angle brackets so the destination renders it
// without an embed. A link already enclosed in <...> is kept as is.
var Links = Rule{
	Name:    "links",
	Pattern: linkPattern,
	Replace: func(body string, loc []int) string {
		url := body[loc[0]:loc[1]]
		if loc[0] > 0 && body[loc[0]-1] == '<' && loc[1] < len(body) && body[loc[1]] == '>' {
			return url
		}
		return "<" + url + ">"
	},
}

// Action renders a CTCP ACTION body as "(*) text".
var Action = Rule{
	Name:    "action",
	Pattern: actionPattern,
	Replace: func(body string, loc []int) string {
		text := strings.TrimSpace(group(body, loc, 1))
		if text == "" {
			return "(*)"
		}
		return "(*) " + text
	},
}

// DefaultRules returns the relay's rewrite rules in application order.
func DefaultRules() []Rule {
	return []Rule{BroadcastMentions, RoleMentions, Links, Action}
}
