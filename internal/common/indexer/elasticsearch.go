package indexer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"

	"github.com/project-tktt/vacancy-hub/internal/domain"
)

// Document is the indexed shape of a vacancy; raw data stays in the record store
type Document struct {
	Key              string    `json:"key"`
	Source           string    `json:"source"`
	SourceID         string    `json:"source_id"`
	Title            string    `json:"title"`
	Company          string    `json:"company"`
	Description      string    `json:"description"`
	Location         string    `json:"location"`
	Category         string    `json:"category,omitempty"`
	SalaryMin        *int      `json:"salary_min,omitempty"`
	SalaryMax        *int      `json:"salary_max,omitempty"`
	Experience       string    `json:"experience,omitempty"`
	Employment       string    `json:"employment,omitempty"`
	Schedule         string    `json:"schedule,omitempty"`
	Skills           []string  `json:"skills"`
	WorkLocationType string    `json:"work_location_type"`
	SourceURL        string    `json:"source_url"`
	PublishedAt      time.Time `json:"published_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func NewDocument(v *domain.Vacancy) Document {
	return Document{
		Key:              v.NaturalKey(),
		Source:           string(v.Source),
		SourceID:         v.SourceID,
		Title:            v.Title,
		Company:          v.Company,
		Description:      v.Description,
		Location:         v.Location,
		Category:         v.Category,
		SalaryMin:        v.SalaryMin,
		SalaryMax:        v.SalaryMax,
		Experience:       string(v.Experience),
		Employment:       string(v.Employment),
		Schedule:         string(v.Schedule),
		Skills:           v.Skills,
		WorkLocationType: v.WorkLocationType.Code(),
		SourceURL:        v.SourceURL,
		PublishedAt:      v.PublishedAt,
		UpdatedAt:        v.UpdatedAt,
	}
}

// ElasticsearchIndexer indexes vacancies to Elasticsearch
type ElasticsearchIndexer struct {
	client    *elasticsearch.Client
	indexName string
	logger    *zap.Logger
}

// NewElasticsearchIndexer creates a new Elasticsearch indexer
func NewElasticsearchIndexer(addresses []string, indexName string, logger *zap.Logger) (*ElasticsearchIndexer, error) {
	cfg := elasticsearch.Config{
		Addresses: addresses,
	}

	client, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("create es client: %w", err)
	}

	// Check connection
	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("es info: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("es error: %s", res.Status())
	}

	return &ElasticsearchIndexer{
		client:    client,
		indexName: indexName,
		logger:    logger,
	}, nil
}

// Index indexes a single vacancy
func (i *ElasticsearchIndexer) Index(ctx context.Context, v *domain.Vacancy) error {
	data, err := json.Marshal(NewDocument(v))
	if err != nil {
		return fmt.Errorf("marshal vacancy: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      i.indexName,
		DocumentID: v.NaturalKey(),
		Body:       bytes.NewReader(data),
		Refresh:    "false",
	}

	res, err := req.Do(ctx, i.client)
	if err != nil {
		return fmt.Errorf("index request: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index error: %s", res.Status())
	}

	return nil
}

// BulkBody builds the NDJSON payload of a bulk index request
func BulkBody(indexName string, vacancies []*domain.Vacancy) ([]byte, error) {
	var buf bytes.Buffer
	for _, v := range vacancies {
		meta := map[string]any{
			"index": map[string]any{
				"_index": indexName,
				"_id":    v.NaturalKey(),
			},
		}
		metaBytes, err := json.Marshal(meta)
		if err != nil {
			return nil, fmt.Errorf("marshal meta %s: %w", v.NaturalKey(), err)
		}
		docBytes, err := json.Marshal(NewDocument(v))
		if err != nil {
			return nil, fmt.Errorf("marshal vacancy %s: %w", v.NaturalKey(), err)
		}
		buf.Write(metaBytes)
		buf.WriteByte('\n')
		buf.Write(docBytes)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// BulkIndex indexes multiple vacancies at once. Per-document failures are
// logged; only a failed request is returned.
func (i *ElasticsearchIndexer) BulkIndex(ctx context.Context, vacancies []*domain.Vacancy) error {
	if len(vacancies) == 0 {
		return nil
	}

	body, err := BulkBody(i.indexName, vacancies)
	if err != nil {
		return err
	}

	res, err := i.client.Bulk(bytes.NewReader(body), i.client.Bulk.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("bulk request: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("bulk error: %s", res.Status())
	}

	// Parse response to check for individual errors
	var bulkRes struct {
		Errors bool `json:"errors"`
		Items  []struct {
			Index struct {
				ID     string `json:"_id"`
				Status int    `json:"status"`
				Error  struct {
					Type   string `json:"type"`
					Reason string `json:"reason"`
				} `json:"error"`
			} `json:"index"`
		} `json:"items"`
	}

	if err := json.NewDecoder(res.Body).Decode(&bulkRes); err != nil {
		return fmt.Errorf("parse bulk response: %w", err)
	}

	if bulkRes.Errors {
		for _, item := range bulkRes.Items {
			if item.Index.Status >= 400 {
				i.logger.Warn("bulk index error",
					zap.String("id", item.Index.ID),
					zap.String("type", item.Index.Error.Type),
					zap.String("reason", item.Index.Error.Reason),
				)
			}
		}
	}

	return nil
}

// DeletePublishedBefore removes documents the record store no longer keeps
func (i *ElasticsearchIndexer) DeletePublishedBefore(ctx context.Context, cutoff time.Time) (int, error) {
	query := fmt.Sprintf(`{"query":{"range":{"published_at":{"lt":%q}}}}`, cutoff.UTC().Format(time.RFC3339))

	res, err := i.client.DeleteByQuery(
		[]string{i.indexName},
		strings.NewReader(query),
		i.client.DeleteByQuery.WithContext(ctx),
	)
	if err != nil {
		return 0, fmt.Errorf("delete by query: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, fmt.Errorf("delete by query error: %s", res.Status())
	}

	var out struct {
		Deleted int `json:"deleted"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("parse delete response: %w", err)
	}
	return out.Deleted, nil
}

// EnsureIndex creates the index with Russian/Romanian-friendly settings if it doesn't exist
func (i *ElasticsearchIndexer) EnsureIndex(ctx context.Context) error {
	// Check if index exists
	res, err := i.client.Indices.Exists([]string{i.indexName}, i.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("check index: %w", err)
	}
	res.Body.Close()

	if res.StatusCode == 200 {
		return nil // Index already exists
	}

	// ё/е and ă/a fold together so either spelling matches
	mapping := `{
		"settings": {
			"analysis": {
				"char_filter": {
					"yo_filter": {"type": "mapping", "mappings": ["ё => е", "Ё => Е"]}
				},
				"analyzer": {
					"vacancy_analyzer": {
						"type": "custom",
						"char_filter": ["yo_filter"],
						"tokenizer": "standard",
						"filter": ["lowercase", "asciifolding"]
					}
				}
			}
		},
		"mappings": {
			"properties": {
				"key": {"type": "keyword"},
				"source": {"type": "keyword"},
				"source_id": {"type": "keyword"},
				"title": {
					"type": "text",
					"analyzer": "vacancy_analyzer",
					"fields": {"keyword": {"type": "keyword"}}
				},
				"company": {"type": "text", "analyzer": "vacancy_analyzer"},
				"description": {"type": "text", "analyzer": "vacancy_analyzer"},
				"location": {"type": "text", "analyzer": "vacancy_analyzer", "fields": {"keyword": {"type": "keyword"}}},
				"category": {"type": "keyword"},
				"salary_min": {"type": "integer"},
				"salary_max": {"type": "integer"},
				"experience": {"type": "keyword"},
				"employment": {"type": "keyword"},
				"schedule": {"type": "keyword"},
				"skills": {"type": "keyword"},
				"work_location_type": {"type": "keyword"},
				"source_url": {"type": "keyword"},
				"published_at": {"type": "date"},
				"updated_at": {"type": "date"}
			}
		}
	}`

	res, err = i.client.Indices.Create(
		i.indexName,
		i.client.Indices.Create.WithBody(strings.NewReader(mapping)),
		i.client.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("create index error: %s", res.Status())
	}

	i.logger.Info("created index", zap.String("index", i.indexName))
	return nil
}
