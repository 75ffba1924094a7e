package queue_test

import (
	"testing"

	"github.com/project-tktt/vacancy-hub/internal/domain"
	"github.com/project-tktt/vacancy-hub/internal/queue"
)

func TestDedupeKey(t *testing.T) {
	a := queue.DedupeKey(queue.JobRefreshSource, domain.SourceRabotaMD, " Повар ")
	b := queue.DedupeKey(queue.JobRefreshSource, domain.SourceRabotaMD, "повар")
	if a != b {
		t.Errorf("query case and spacing should not matter: %q vs %q", a, b)
	}
	if a != "refresh-source:rabota.md:повар" {
		t.Errorf("DedupeKey = %q", a)
	}
	if a == queue.DedupeKey(queue.JobRefreshSource, domain.SourceHHRU, "повар") {
		t.Error("sources must not share a key")
	}
}
