package domain

import (
	"strings"
	"time"
)

// Source identifies a job site the vacancies are scraped from
type Source string

const (
	SourceRabotaMD Source = "rabota.md"
	Source999MD    Source = "999.md"
	SourceMaklerMD Source = "makler.md"
	SourceHHRU     Source = "hh.ru"
)

// AllSources returns every supported source in a stable order
func AllSources() []Source {
	return []Source{SourceRabotaMD, Source999MD, SourceMaklerMD, SourceHHRU}
}

// ParseSource validates a source name
func ParseSource(s string) (Source, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, src := range AllSources() {
		if string(src) == s {
			return src, true
		}
	}
	return "", false
}

// Experience is the canonical required-experience bucket
type Experience string

const (
	ExperienceNone     Experience = "no_experience"
	ExperienceOneThree Experience = "between_1_and_3"
	ExperienceThreeSix Experience = "between_3_and_6"
	ExperienceSixPlus  Experience = "more_than_6"
)

// Employment is the canonical employment type
type Employment string

const (
	EmploymentFull      Employment = "full"
	EmploymentPart      Employment = "part"
	EmploymentProject   Employment = "project"
	EmploymentProbation Employment = "probation"
)

// Schedule is the canonical work format
type Schedule string

const (
	ScheduleOffice Schedule = "office"
	ScheduleRemote Schedule = "remote"
	ScheduleHybrid Schedule = "hybrid"
)

// LocationType tells domestic postings from postings abroad.
// The stored value is the display string; Code gives the stable identifier.
type LocationType string

const (
	LocationDomestic LocationType = "В Молдове"
	LocationAbroad   LocationType = "За границей"
)

// Code returns the locale-independent identifier
func (l LocationType) Code() string {
	switch l {
	case LocationDomestic:
		return "domestic"
	case LocationAbroad:
		return "abroad"
	}
	return ""
}

// ParseLocationType accepts both codes and display strings
func ParseLocationType(s string) (LocationType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "domestic", "moldova", strings.ToLower(string(LocationDomestic)):
		return LocationDomestic, true
	case "abroad", strings.ToLower(string(LocationAbroad)):
		return LocationAbroad, true
	}
	return "", false
}

// RawVacancy is a source-specific record produced by a parser, before normalization
type RawVacancy struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	URL         string         `json:"url"`
	Source      Source         `json:"source"`
	Data        map[string]any `json:"data"`
	ExtractedAt time.Time      `json:"extracted_at"`
}

// RawData is the free-form bag of source extras and normalization diagnostics.
//
// Known keys: originalCurrency, originalSalaryMin, originalSalaryMax, salaryText,
// normalization (map of field -> unmatched slug), plus per-source extras.
type RawData map[string]any

// Vacancy is the canonical record persisted in the record store
type Vacancy struct {
	ID       int64  `json:"id"`
	Source   Source `json:"source"`
	SourceID string `json:"source_id"`

	Title       string `json:"title"`
	Company     string `json:"company"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Category    string `json:"category,omitempty"`

	// Salary is kept in the reference currency
	SalaryMin      *int   `json:"salary_min,omitempty"`
	SalaryMax      *int   `json:"salary_max,omitempty"`
	SalaryCurrency string `json:"salary_currency"`

	Experience Experience `json:"experience,omitempty"`
	Employment Employment `json:"employment,omitempty"`
	Schedule   Schedule   `json:"schedule,omitempty"`
	Skills     []string   `json:"skills"`

	WorkLocationType LocationType `json:"work_location_type"`

	SourceURL   string    `json:"source_url"`
	PublishedAt time.Time `json:"published_at"`
	RawData     RawData   `json:"raw_data,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NaturalKey returns the (source, sourceId) identity as a single string
func (v *Vacancy) NaturalKey() string {
	return string(v.Source) + ":" + v.SourceID
}
