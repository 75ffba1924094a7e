// Package subscription manages saved searches and notifies their owners
// about new matching vacancies.
package subscription

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/project-tktt/vacancy-hub/internal/domain"
	apperrors "github.com/project-tktt/vacancy-hub/internal/errors"
	"github.com/project-tktt/vacancy-hub/internal/storage"
)

// Patch holds the fields an update may change; nil leaves a field as is
type Patch struct {
	Filters  *domain.Filters `json:"filters,omitempty"`
	Sources  []domain.Source `json:"sources,omitempty"`
	IsActive *bool           `json:"is_active,omitempty"`
}

type Service struct {
	store  storage.SubscriptionStore
	logger *zap.Logger
}

func NewService(store storage.SubscriptionStore, logger *zap.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Create saves an active subscription
func (s *Service) Create(ctx context.Context, userID string, filters domain.Filters, sources []domain.Source) (*domain.Subscription, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required", nil)
	}
	if err := validSources(sources); err != nil {
		return nil, err
	}

	sub := &domain.Subscription{
		UserID:   userID,
		Filters:  filters,
		Sources:  sources,
		IsActive: true,
	}
	if err := s.store.Create(ctx, sub); err != nil {
		return nil, apperrors.Internal("create subscription", err)
	}
	s.logger.Info("subscription created", zap.String("id", sub.ID), zap.String("user_id", userID))
	return sub, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Subscription, error) {
	sub, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, notFound(id, err)
	}
	return sub, nil
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]*domain.Subscription, error) {
	subs, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal("list subscriptions", err)
	}
	if subs == nil {
		subs = []*domain.Subscription{}
	}
	return subs, nil
}

func (s *Service) Update(ctx context.Context, id string, p Patch) (*domain.Subscription, error) {
	sub, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, notFound(id, err)
	}
	if p.Filters != nil {
		sub.Filters = *p.Filters
	}
	if p.Sources != nil {
		if err := validSources(p.Sources); err != nil {
			return nil, err
		}
		sub.Sources = p.Sources
	}
	if p.IsActive != nil {
		sub.IsActive = *p.IsActive
	}
	if err := s.store.Update(ctx, sub); err != nil {
		return nil, notFound(id, err)
	}
	return sub, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return notFound(id, err)
	}
	s.logger.Info("subscription deleted", zap.String("id", id))
	return nil
}

func validSources(sources []domain.Source) error {
	for _, src := range sources {
		if _, ok := domain.ParseSource(string(src)); !ok {
			return apperrors.InvalidInput("unknown source "+string(src), nil)
		}
	}
	return nil
}

func notFound(id string, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return apperrors.NotFound("subscription "+id, err)
	}
	return apperrors.Internal("subscription "+id, err)
}
