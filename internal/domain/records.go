package domain

import "time"

// ParseStatus is the outcome of a single scrape attempt
type ParseStatus string

const (
	ParseSuccess ParseStatus = "success"
	ParseError   ParseStatus = "error"
)

// ParseLog is one row of the append-only scrape audit trail
type ParseLog struct {
	ID             string        `json:"id"`
	Source         Source        `json:"source"`
	SearchQuery    string        `json:"search_query"`
	Status         ParseStatus   `json:"status"`
	VacanciesFound int           `json:"vacancies_found"`
	VacanciesNew   int           `json:"vacancies_new"`
	Duration       time.Duration `json:"duration"`
	Error          string        `json:"error,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
}

// DictionaryEntry is a profession title as a particular source names it
type DictionaryEntry struct {
	ID            int64      `json:"id"`
	Source        Source     `json:"source"`
	Profession    string     `json:"profession"`
	ProfessionID  string     `json:"profession_id,omitempty"`
	Category      string     `json:"category,omitempty"`
	Synonyms      []string   `json:"synonyms"`
	VacancyCount  int        `json:"vacancy_count,omitempty"`
	LastCheckedAt *time.Time `json:"last_checked_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Subscription is a user's saved search that gets notified about new vacancies
type Subscription struct {
	ID           string     `json:"id"`
	UserID       string     `json:"user_id"`
	Filters      Filters    `json:"filters"`
	Sources      []Source   `json:"sources"`
	IsActive     bool       `json:"is_active"`
	LastNotified *time.Time `json:"last_notified,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
