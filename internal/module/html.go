package module

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	spaceRe = regexp.MustCompile(`\s+`)
	idRe    = regexp.MustCompile(`\d{4,}`)
)

// Text returns the squeezed text of the first match of selector inside s
func Text(s *goquery.Selection, selector string) string {
	if selector == "" {
		return ""
	}
	return Squeeze(s.Find(selector).First().Text())
}

// Texts returns the squeezed, non-empty texts of every match
func Texts(s *goquery.Selection, selector string) []string {
	var out []string
	s.Find(selector).Each(func(_ int, item *goquery.Selection) {
		if t := Squeeze(item.Text()); t != "" {
			out = append(out, t)
		}
	})
	return out
}

// Squeeze collapses runs of whitespace
func Squeeze(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

// AbsURL resolves href against base; unparsable input comes back unchanged
func AbsURL(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	return b.ResolveReference(ref).String()
}

// IDFromURL takes the first long run of digits in the link path, which is
// how every supported site numbers its ads. Links without one yield their path.
func IDFromURL(link string) string {
	u, err := url.Parse(link)
	path := link
	if err == nil {
		path = u.Path
	}
	if id := idRe.FindString(path); id != "" {
		return id
	}
	return strings.Trim(path, "/")
}

// Labeled collects "label: value" pairs from a definition-like block,
// keyed by the lower-cased label
func Labeled(s *goquery.Selection, rowSelector, labelSelector, valueSelector string) map[string]string {
	out := make(map[string]string)
	s.Find(rowSelector).Each(func(_ int, row *goquery.Selection) {
		label := strings.TrimSuffix(Text(row, labelSelector), ":")
		value := Text(row, valueSelector)
		if label != "" && value != "" {
			out[strings.ToLower(strings.TrimSpace(label))] = value
		}
	})
	return out
}
