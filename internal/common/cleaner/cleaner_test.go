package cleaner_test

import (
	"strings"
	"testing"

	"github.com/project-tktt/vacancy-hub/internal/common/cleaner"
)

func TestText(t *testing.T) {
	c := cleaner.NewCleaner()
	in := `<p>Требования:</p><ul><li>опыт &amp; знания</li><li>английский</li></ul><script>alert(1)</script>`

	got := c.Text(in)
	if strings.Contains(got, "<") || strings.Contains(got, "alert") {
		t.Errorf("markup or script left in %q", got)
	}
	if !strings.Contains(got, "опыт & знания") {
		t.Errorf("entities not decoded: %q", got)
	}
	if !strings.Contains(got, "Требования:\n") {
		t.Errorf("block boundary lost: %q", got)
	}
}

func TestSanitize_DropsScripts(t *testing.T) {
	c := cleaner.NewCleaner()
	got := c.Sanitize(`<b>ok</b><a href="javascript:alert(1)">x</a><script>bad()</script>`)
	if strings.Contains(got, "script") || strings.Contains(got, "javascript") {
		t.Errorf("Sanitize left unsafe content: %q", got)
	}
	if !strings.Contains(got, "<b>ok</b>") {
		t.Errorf("Sanitize removed allowed markup: %q", got)
	}
}

func TestTextMap_Nested(t *testing.T) {
	c := cleaner.NewCleaner()
	out := c.TextMap(map[string]any{
		"title": "<b>Повар</b>",
		"extra": map[string]any{"note": "<i>ночь</i>"},
		"count": 3,
	})
	if out["title"] != "Повар" {
		t.Errorf("title = %v", out["title"])
	}
	if nested := out["extra"].(map[string]any); nested["note"] != "ночь" {
		t.Errorf("nested = %v", nested["note"])
	}
	if out["count"] != 3 {
		t.Errorf("non-string changed: %v", out["count"])
	}
}
