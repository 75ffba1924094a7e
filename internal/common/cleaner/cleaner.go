package cleaner

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	breakRe      = regexp.MustCompile(`(?i)<br\s*/?>|</p>|</li>|</div>|</h[1-6]>`)
	blankLinesRe = regexp.MustCompile(`\n[ \t]*\n(?:[ \t]*\n)+`)
	inlineSpace  = regexp.MustCompile(`[ \t\x{00A0}]+`)
)

// Cleaner turns scraped HTML into safe markup or plain text
type Cleaner struct {
	policy *bluemonday.Policy
	strict *bluemonday.Policy
}

// NewCleaner creates a cleaner that keeps basic formatting for Sanitize
func NewCleaner() *Cleaner {
	policy := bluemonday.NewPolicy()
	policy.AllowElements("p", "br", "strong", "b", "em", "i", "ul", "ol", "li")
	policy.AllowAttrs("href").OnElements("a")
	policy.RequireParseableURLs(true)
	policy.AllowURLSchemes("http", "https", "mailto")

	return &Cleaner{policy: policy, strict: bluemonday.StrictPolicy()}
}

// Sanitize strips scripts, styles and unknown attributes
func (c *Cleaner) Sanitize(s string) string {
	return strings.TrimSpace(c.policy.Sanitize(s))
}

// Text removes all markup, keeping block boundaries as line breaks
func (c *Cleaner) Text(s string) string {
	if s == "" {
		return ""
	}
	s = breakRe.ReplaceAllString(s, "\n")
	s = c.strict.Sanitize(s)
	s = html.UnescapeString(s)

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(inlineSpace.ReplaceAllString(line, " "))
	}
	s = strings.Join(lines, "\n")
	s = blankLinesRe.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// TextMap runs Text over every string value, recursing into nested maps
func (c *Cleaner) TextMap(data map[string]any) map[string]any {
	result := make(map[string]any, len(data))
	for k, v := range data {
		switch val := v.(type) {
		case string:
			result[k] = c.Text(val)
		case map[string]any:
			result[k] = c.TextMap(val)
		default:
			result[k] = v
		}
	}
	return result
}
