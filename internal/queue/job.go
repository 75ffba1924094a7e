package queue

import (
	"fmt"
	"strings"
	"time"

	"github.com/project-tktt/vacancy-hub/internal/domain"
)

// Job names understood by the background worker
const (
	JobRefreshSource     = "refresh-source"
	JobRefreshDictionary = "refresh-dictionary"
)

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityNormal Priority = "normal"
)

// BackgroundJob is the payload of every queued job
type BackgroundJob struct {
	Source      domain.Source `json:"source"`
	SearchQuery string        `json:"search_query,omitempty"`
	MaxPages    int           `json:"max_pages,omitempty"`
	// User whose cached searches are dropped once the refresh lands
	UserID string `json:"user_id,omitempty"`
}

// Job is what travels through Redis
type Job struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Payload    BackgroundJob `json:"payload"`
	Priority   Priority      `json:"priority"`
	DedupeKey  string        `json:"dedupe_key,omitempty"`
	EnqueuedAt time.Time     `json:"enqueued_at"`
}

type EnqueueOptions struct {
	Priority  Priority
	DedupeKey string
}

// DedupeKey builds the conventional key for a job on a source and query
func DedupeKey(name string, source domain.Source, query string) string {
	return fmt.Sprintf("%s:%s:%s", name, source, strings.ToLower(strings.TrimSpace(query)))
}
