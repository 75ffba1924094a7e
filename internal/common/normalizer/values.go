package normalizer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// numberRe allows thousands separated by spaces, NBSP or dots: "10 000", "1.500"
var numberRe = regexp.MustCompile(`\d{1,3}(?:[ \x{00A0}\x{202F}.]\d{3})+|\d+`)

// String returns the first non-empty string under any of keys
func String(data map[string]any, keys ...string) string {
	for _, key := range keys {
		if val, ok := data[key]; ok {
			switch v := val.(type) {
			case string:
				if v != "" {
					return strings.TrimSpace(v)
				}
			case float64:
				return fmt.Sprintf("%.0f", v)
			case int:
				return strconv.Itoa(v)
			}
		}
	}
	return ""
}

// Int returns the first integer-like value under any of keys
func Int(data map[string]any, keys ...string) (int, bool) {
	for _, key := range keys {
		if val, ok := data[key]; ok {
			switch v := val.(type) {
			case float64:
				return int(v), true
			case int:
				return v, true
			case int64:
				return int(v), true
			case string:
				if i, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
					return i, true
				}
			}
		}
	}
	return 0, false
}

// StringList extracts []string from data
func StringList(data map[string]any, key string) []string {
	val, ok := data[key]
	if !ok || val == nil {
		return nil
	}
	switch v := val.(type) {
	case []string:
		return v
	case []any:
		var result []string
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				result = append(result, s)
			}
		}
		return result
	case string:
		if v != "" {
			return []string{v}
		}
	}
	return nil
}

// Numbers returns every integer found in text, with thousands separators removed
func Numbers(text string) []int {
	var out []int
	for _, m := range numberRe.FindAllString(text, -1) {
		digits := strings.Map(func(r rune) rune {
			if r >= '0' && r <= '9' {
				return r
			}
			return -1
		}, m)
		if n, err := strconv.Atoi(digits); err == nil {
			out = append(out, n)
		}
	}
	return out
}

var ruMonths = map[string]time.Month{
	"янв": time.January, "фев": time.February, "мар": time.March, "апр": time.April,
	"мая": time.May, "май": time.May, "июн": time.June, "июл": time.July, "авг": time.August,
	"сен": time.September, "окт": time.October, "ноя": time.November, "дек": time.December,
}

var ruDateRe = regexp.MustCompile(`(\d{1,2})\s+([а-я]+)\.?\s*(\d{4})?`)

// ParseTime understands ISO dates, dd.mm.yyyy, unix seconds, Russian month
// names and the words "сегодня"/"вчера". Unknown input yields fallback.
func ParseTime(val any, fallback time.Time) time.Time {
	switch v := val.(type) {
	case time.Time:
		return v
	case float64:
		return time.Unix(int64(v), 0)
	case int64:
		return time.Unix(v, 0)
	case int:
		return time.Unix(int64(v), 0)
	case string:
		return parseTimeString(v, fallback)
	}
	return fallback
}

func parseTimeString(s string, fallback time.Time) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}

	formats := []string{
		time.RFC3339,
		"2006-01-02T15:04:05-0700",
		"2006-01-02T15:04:05Z",
		"2006-01-02 15:04:05",
		"2006-01-02",
		"02.01.2006 15:04",
		"02.01.2006",
		"02/01/2006",
	}
	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
		return time.Unix(ts, 0)
	}

	lower := strings.ToLower(s)
	switch {
	case strings.HasPrefix(lower, "сегодня"), strings.HasPrefix(lower, "azi"):
		return truncateDay(fallback)
	case strings.HasPrefix(lower, "вчера"), strings.HasPrefix(lower, "ieri"):
		return truncateDay(fallback).AddDate(0, 0, -1)
	}

	if m := ruDateRe.FindStringSubmatch(lower); len(m) == 4 {
		day, _ := strconv.Atoi(m[1])
		month, ok := lookupMonth(m[2])
		if ok && day >= 1 && day <= 31 {
			year := fallback.Year()
			if m[3] != "" {
				year, _ = strconv.Atoi(m[3])
			}
			return time.Date(year, month, day, 0, 0, 0, 0, fallback.Location())
		}
	}
	return fallback
}

func lookupMonth(word string) (time.Month, bool) {
	r := []rune(word)
	if len(r) < 3 {
		return 0, false
	}
	m, ok := ruMonths[string(r[:3])]
	return m, ok
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
