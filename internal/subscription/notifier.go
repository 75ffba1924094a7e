package subscription

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/project-tktt/vacancy-hub/internal/domain"
	"github.com/project-tktt/vacancy-hub/internal/storage"
	"github.com/project-tktt/vacancy-hub/internal/telemetry"
)

const (
	DefaultSubject = "vacancies.notify"
	connectTimeout = 10 * time.Second
)

var tracer = telemetry.Tracer("github.com/project-tktt/vacancy-hub/internal/subscription")

// Publisher sends a message on a subject; *nats.Conn satisfies it
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Notification is the message a subscriber's bot receives
type Notification struct {
	SubscriptionID string            `json:"subscription_id"`
	UserID         string            `json:"user_id"`
	Vacancies      []*domain.Vacancy `json:"vacancies"`
	SentAt         time.Time         `json:"sent_at"`
}

// Connect dials NATS with reconnects enabled
func Connect(url string) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Timeout(connectTimeout),
		nats.RetryOnFailedConnect(true),
		nats.ReconnectWait(time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS: %w", err)
	}
	return nc, nil
}

type Notifier struct {
	subscriptions storage.SubscriptionStore
	vacancies     storage.VacancyStore
	publisher     Publisher
	subject       string
	logger        *zap.Logger
	now           func() time.Time
}

func NewNotifier(subs storage.SubscriptionStore, vacancies storage.VacancyStore, pub Publisher, subject string, logger *zap.Logger) *Notifier {
	if subject == "" {
		subject = DefaultSubject
	}
	return &Notifier{
		subscriptions: subs,
		vacancies:     vacancies,
		publisher:     pub,
		subject:       subject,
		logger:        logger,
		now:           time.Now,
	}
}

// WithClock replaces the notifier's time source
func (n *Notifier) WithClock(now func() time.Time) *Notifier {
	n.now = now
	return n
}

// NotifyAll publishes, per active subscription, the vacancies first seen since
// its last notification. It returns the number of messages sent; a failing
// subscription is logged and the rest continue.
func (n *Notifier) NotifyAll(ctx context.Context) (int, error) {
	ctx, span := tracer.Start(ctx, "subscription.NotifyAll")
	defer span.End()

	subs, err := n.subscriptions.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("list active subscriptions: %w", err)
	}

	sent := 0
	for _, sub := range subs {
		ok, err := n.notify(ctx, sub)
		if err != nil {
			n.logger.Warn("notify failed", zap.String("subscription_id", sub.ID), zap.Error(err))
			continue
		}
		if ok {
			sent++
		}
	}
	span.SetAttributes(attribute.Int("subscriptions", len(subs)), attribute.Int("sent", sent))
	return sent, nil
}

func (n *Notifier) notify(ctx context.Context, sub *domain.Subscription) (bool, error) {
	at := n.now()
	since := sub.CreatedAt
	if sub.LastNotified != nil {
		since = *sub.LastNotified
	}

	f := sub.Filters
	// sites backdate and re-list, so new means first seen here
	f.CreatedSince = &since
	if len(sub.Sources) > 0 {
		f.Sources = sub.Sources
	}
	found, err := n.vacancies.FindMany(ctx, f)
	if err != nil {
		return false, fmt.Errorf("find vacancies: %w", err)
	}
	if len(found) == 0 {
		return false, nil
	}

	data, err := json.Marshal(Notification{SubscriptionID: sub.ID, UserID: sub.UserID, Vacancies: found, SentAt: at})
	if err != nil {
		return false, fmt.Errorf("marshal notification: %w", err)
	}
	if err := n.publisher.Publish(n.subject, data); err != nil {
		return false, fmt.Errorf("publish: %w", err)
	}
	if err := n.subscriptions.MarkNotified(ctx, sub.ID, at); err != nil {
		return true, fmt.Errorf("mark notified: %w", err)
	}

	n.logger.Debug("subscription notified",
		zap.String("subscription_id", sub.ID),
		zap.Int("vacancies", len(found)),
	)
	return true, nil
}
