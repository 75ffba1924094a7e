package api

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	apperrors "github.com/project-tktt/vacancy-hub/internal/errors"
)

const sourceEnum = `{"type": "string", "enum": ["rabota.md", "999.md", "makler.md", "hh.ru"]}`

const filtersSchema = `{
	"type": "object",
	"properties": {
		"keywords":        {"type": "array", "items": {"type": "string"}},
		"locations":       {"type": "array", "items": {"type": "string"}},
		"salary_min":      {"type": "integer", "minimum": 0},
		"experience":      {"type": "array", "items": {"enum": ["no_experience", "between_1_and_3", "between_3_and_6", "more_than_6"]}},
		"schedule":        {"type": "array", "items": {"enum": ["office", "remote", "hybrid"]}},
		"employment":      {"type": "array", "items": {"enum": ["full", "part", "project", "probation"]}},
		"skills":          {"type": "array", "items": {"type": "string"}},
		"sources":         {"type": "array", "items": ` + sourceEnum + `},
		"category":        {"type": "string"},
		"location_type":   {"enum": ["В Молдове", "За границей", "domestic", "abroad"]},
		"published_since": {"type": "string", "format": "date-time"}
	},
	"additionalProperties": false
}`

var (
	createSubscriptionSchema = mustSchema(`{
		"type": "object",
		"required": ["userId", "filters"],
		"properties": {
			"userId":  {"type": "string", "minLength": 1},
			"filters": ` + filtersSchema + `,
			"sources": {"type": "array", "items": ` + sourceEnum + `}
		}
	}`)

	patchSubscriptionSchema = mustSchema(`{
		"type": "object",
		"minProperties": 1,
		"properties": {
			"filters":   ` + filtersSchema + `,
			"sources":   {"type": "array", "items": ` + sourceEnum + `},
			"is_active": {"type": "boolean"}
		},
		"additionalProperties": false
	}`)

	forceParseSchema = mustSchema(`{
		"type": "object",
		"required": ["query"],
		"properties": {
			"query":    {"type": "string"},
			"sources":  {"type": "array", "items": ` + sourceEnum + `},
			"maxPages": {"type": "integer", "minimum": 1, "maximum": 50}
		}
	}`)

	dictionarySearchSchema = mustSchema(`{
		"type": "object",
		"required": ["query"],
		"properties": {
			"query":   {"type": "string", "minLength": 1},
			"sources": {"type": "array", "items": ` + sourceEnum + `}
		}
	}`)

	dictionaryRefreshSchema = mustSchema(`{
		"type": "object",
		"properties": {
			"source": ` + sourceEnum + `
		}
	}`)
)

func mustSchema(s string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(s))
	if err != nil {
		panic(fmt.Sprintf("invalid request schema: %v", err))
	}
	return schema
}

// validate checks a request body against a schema. An empty body is
// validated as an empty object.
func validate(schema *gojsonschema.Schema, body []byte) error {
	if len(strings.TrimSpace(string(body))) == 0 {
		body = []byte("{}")
	}
	res, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return apperrors.InvalidInput("malformed JSON body", err)
	}
	if res.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return apperrors.InvalidInput("schema validation failed: "+strings.Join(msgs, "; "), nil)
}
