package normalizer

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/project-tktt/vacancy-hub/internal/domain"
)

// Field selects the vocabulary a raw value is normalized against
type Field string

const (
	FieldExperience Field = "experience"
	FieldEmployment Field = "employment"
	FieldSchedule   Field = "schedule"
	FieldCurrency   Field = "currency"
	FieldSkills     Field = "skills"
)

// fuzzy fallback only looks at tokens at least this long
const fuzzyMinRunes = 5

var (
	spaceRe = regexp.MustCompile(`\s+`)
	yearsRe = regexp.MustCompile(`(\d+)\s*(?:\+\s*)?(?:год|лет|year|ani)`)
	// "от 3 до 6 лет", "1-3 years", "de la 1 la 3 ani": the lower bound decides
	rangeRe = regexp.MustCompile(`(\d+)\s*(?:года?|лет|years?|ani?)?\s*(?:-|–|до|to|la)\s*\d+\s*(?:год|лет|year|ani)`)
)

// Normalize maps a free-text value to the canonical vocabulary of field.
// A miss returns ("", false); callers decide the default.
func Normalize(raw string, field Field) (string, bool) {
	text := clean(raw)
	if text == "" {
		return "", false
	}

	switch field {
	case FieldExperience:
		// a stated number of years beats the range markers
		if v, ok := experienceTable.Exact[text]; ok {
			return v, true
		}
		if v, ok := matchRules(text, []Rule{noExperienceRule}); ok {
			return v, true
		}
		if v, ok := experienceFromYears(text); ok {
			return v, true
		}
		return matchWithFuzzy(text, experienceTable)
	case FieldEmployment:
		return matchWithFuzzy(text, employmentTable)
	case FieldSchedule:
		return matchWithFuzzy(text, scheduleTable)
	case FieldCurrency:
		return Match(text, currencyTable)
	case FieldSkills:
		for _, rule := range skillTable {
			if strings.EqualFold(text, rule.Value) {
				return rule.Value, true
			}
		}
		if v, ok := matchRules(text, skillTable); ok {
			return v, true
		}
		return fuzzyMatch(text, skillTable)
	}
	return "", false
}

// Match runs the exact and rule tiers of table against input
func Match(input string, table Table) (string, bool) {
	text := clean(input)
	if text == "" {
		return "", false
	}
	if v, ok := table.Exact[text]; ok {
		return v, true
	}
	return matchRules(text, table.Rules)
}

func matchWithFuzzy(text string, table Table) (string, bool) {
	if v, ok := Match(text, table); ok {
		return v, true
	}
	return fuzzyMatch(text, table.Rules)
}

func matchRules(text string, rules []Rule) (string, bool) {
	for _, rule := range rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(text, kw) {
				return rule.Value, true
			}
		}
		for _, p := range rule.Prefixes {
			if containsPrefix(text, p) {
				return rule.Value, true
			}
		}
		for _, tok := range rule.Tokens {
			if containsWord(text, tok) {
				return rule.Value, true
			}
		}
	}
	return "", false
}

// fuzzyMatch accepts a single typo in long tokens
func fuzzyMatch(text string, rules []Rule) (string, bool) {
	tokens := tokenize(text)
	for _, rule := range rules {
		for _, list := range [][]string{rule.Keywords, rule.Prefixes, rule.Tokens} {
			for _, kw := range list {
				if strings.ContainsRune(kw, ' ') || len([]rune(kw)) < fuzzyMinRunes {
					continue
				}
				for _, tok := range tokens {
					if len([]rune(tok)) < fuzzyMinRunes {
						continue
					}
					if levenshtein(tok, kw) <= 1 {
						return rule.Value, true
					}
				}
			}
		}
	}
	return "", false
}

func experienceFromYears(text string) (string, bool) {
	m := rangeRe.FindStringSubmatch(text)
	if len(m) < 2 {
		m = yearsRe.FindStringSubmatch(text)
	}
	if len(m) < 2 {
		return "", false
	}
	years, err := strconv.Atoi(m[1])
	if err != nil {
		return "", false
	}
	switch {
	case years == 0:
		return string(domain.ExperienceNone), true
	case years < 3:
		return string(domain.ExperienceOneThree), true
	case years < 6:
		return string(domain.ExperienceThreeSix), true
	default:
		return string(domain.ExperienceSixPlus), true
	}
}

// ExtractSkills returns the known skills mentioned in free text.
// The result is a set: each skill appears once, in table order.
func ExtractSkills(text string) []string {
	text = clean(text)
	if text == "" {
		return nil
	}
	var out []string
	for _, rule := range skillTable {
		if _, ok := matchRules(text, []Rule{rule}); ok {
			out = append(out, rule.Value)
		}
	}
	return out
}

// ExtractCurrency finds a currency marker in text, falling back to the
// source's default. The result is never empty.
func ExtractCurrency(text, fallback string) string {
	if code, ok := Normalize(text, FieldCurrency); ok {
		return code
	}
	if fallback == "" {
		return CurrencyMDL
	}
	return strings.ToUpper(fallback)
}

// Slug turns an unmatched value into an opaque diagnostic token
func Slug(raw string) string {
	var b strings.Builder
	pending := false
	for _, r := range strings.ToLower(raw) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pending && b.Len() > 0 {
				b.WriteByte('_')
			}
			pending = false
			b.WriteRune(r)
			continue
		}
		pending = true
	}
	return b.String()
}

func clean(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "ё", "е")
	return spaceRe.ReplaceAllString(s, " ")
}

func tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// containsPrefix reports whether some word of text starts with prefix
func containsPrefix(text, prefix string) bool {
	return containsAt(text, prefix, false)
}

// containsWord reports whether word occurs in text with no letter or digit on either side
func containsWord(text, word string) bool {
	return containsAt(text, word, true)
}

func containsAt(text, word string, wholeWord bool) bool {
	for from := 0; from < len(text); {
		idx := strings.Index(text[from:], word)
		if idx < 0 {
			return false
		}
		start := from + idx
		end := start + len(word)
		if boundaryBefore(text, start) && (!wholeWord || boundaryAfter(text, end)) {
			return true
		}
		from = start + 1
		for from < len(text) && !isRuneStart(text[from]) {
			from++
		}
	}
	return false
}

func boundaryBefore(text string, i int) bool {
	if i == 0 {
		return true
	}
	r := lastRune(text[:i])
	return !isWordRune(r)
}

func boundaryAfter(text string, i int) bool {
	if i >= len(text) {
		return true
	}
	r := []rune(text[i:])[0]
	return !isWordRune(r) && r != '+' && r != '#'
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func lastRune(s string) rune {
	r := []rune(s)
	return r[len(r)-1]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}
