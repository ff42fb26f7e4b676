// Package markup turns raw chat message text into display-ready HTML.
package markup

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Marker transforms raw message text. Implementations never fail: anything
// they cannot handle is returned unchanged.
type Marker interface {
	Mark(raw string) string
}

// MarkerFunc adapts an ordinary function to the Marker interface.
type MarkerFunc func(raw string) string

// Mark calls f(raw).
func (f MarkerFunc) Mark(raw string) string {
	return f(raw)
}

// Passthrough is a Marker that stores text verbatim.
var Passthrough Marker = MarkerFunc(func(raw string) string { return raw })

var (
	codeSegmentRegex = regexp.MustCompile("```[\\s\\S]*?```|`[^`\\n]+`")
	slackLinkRegex   = regexp.MustCompile(`<([^<>|\s]+)(?:\|([^<>]*))?>`)
)

// SlackMarker renders the platform's mrkdwn dialect as sanitized HTML.
type SlackMarker struct {
	markdown goldmark.Markdown
	policy   *bluemonday.Policy
}

// NewSlackMarker creates a SlackMarker with the UGC sanitization policy.
func NewSlackMarker() *SlackMarker {
	return &SlackMarker{
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.Strikethrough, extension.Linkify),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
		policy: bluemonday.UGCPolicy(),
	}
}

// Mark converts mrkdwn to CommonMark, renders it and sanitizes the result.
func (m *SlackMarker) Mark(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return raw
	}

	var buf bytes.Buffer
	if err := m.markdown.Convert([]byte(toCommonMark(raw)), &buf); err != nil {
		return raw
	}

	return strings.TrimSpace(m.policy.Sanitize(buf.String()))
}

// toCommonMark rewrites the mrkdwn constructs that differ from CommonMark,
// leaving code spans and blocks untouched.
func toCommonMark(s string) string {
	var out strings.Builder
	last := 0
	for _, loc := range codeSegmentRegex.FindAllStringIndex(s, -1) {
		out.WriteString(convertSegment(s[last:loc[0]]))
		out.WriteString(s[loc[0]:loc[1]])
		last = loc[1]
	}
	out.WriteString(convertSegment(s[last:]))
	return out.String()
}

func convertSegment(s string) string {
	s = slackLinkRegex.ReplaceAllStringFunc(s, convertLink)
	s = convertEmphasis(s, '*', "**")
	s = convertEmphasis(s, '~', "~~")
	return s
}

// convertLink handles <url|label>, <@user>, <#channel|name> and <!special>.
func convertLink(match string) string {
	parts := slackLinkRegex.FindStringSubmatch(match)
	target, label := parts[1], parts[2]

	switch target[0] {
	case '@':
		if label != "" {
			return "@" + strings.TrimPrefix(label, "@")
		}
		return target
	case '#':
		if label != "" {
			return "#" + label
		}
		return target
	case '!':
		if label != "" {
			return label
		}
		name, _, _ := strings.Cut(target[1:], "^")
		return "@" + name
	}

	if label == "" {
		return "<" + target + ">"
	}
	return "[" + label + "](" + target + ")"
}

// convertEmphasis replaces delim-wrapped spans with repl-wrapped spans. A
// span opens after a non-word byte, closes before one, and never crosses a
// line break or touches whitespace on its inner side.
func convertEmphasis(s string, delim byte, repl string) string {
	var out strings.Builder
	i := 0
	for i < len(s) {
		if s[i] != delim || !canOpen(s, i) {
			out.WriteByte(s[i])
			i++
			continue
		}
		end := findClose(s, i, delim)
		if end < 0 {
			out.WriteByte(s[i])
			i++
			continue
		}
		out.WriteString(repl)
		out.WriteString(s[i+1 : end])
		out.WriteString(repl)
		i = end + 1
	}
	return out.String()
}

func canOpen(s string, i int) bool {
	if i > 0 && isWordByte(s[i-1]) {
		return false
	}
	return i+1 < len(s) && !isSpaceByte(s[i+1]) && s[i+1] != s[i]
}

func findClose(s string, open int, delim byte) int {
	for j := open + 1; j < len(s); j++ {
		switch {
		case s[j] == '\n':
			return -1
		case s[j] == delim:
			if isSpaceByte(s[j-1]) || j == open+1 {
				continue
			}
			if j+1 < len(s) && isWordByte(s[j+1]) {
				continue
			}
			return j
		}
	}
	return -1
}

func isWordByte(b byte) bool {
	return b == '_' || b >= '0' && b <= '9' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}

func isSpaceByte(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
