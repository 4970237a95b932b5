// Package notify tells users about booking events. Every notification is stored
// as an in-app message and, when a publisher is configured, sent to kafka for
// the email worker. Delivery failures are logged and never returned: a booking
// that committed must not fail because a notification did not go out.
package notify

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/Domenick1991/travelbooking/internal/kafka"
	"github.com/Domenick1991/travelbooking/internal/lib/logger/sl"
	"github.com/Domenick1991/travelbooking/internal/repository"
)

type Publisher interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type Notification struct {
	UserID    string
	Type      string
	Message   string
	BookingID int64
	PackageID int64
}

type Emitter struct {
	notifications repository.NotificationRepository
	profiles      repository.ProfileRepository
	publisher     Publisher
	topic         string
	log           *slog.Logger
	now           func() time.Time
}

type Option func(*Emitter)

// WithPublisher sends each notification to topic as a kafka.NotificationEvent.
func WithPublisher(p Publisher, topic string) Option {
	return func(e *Emitter) {
		e.publisher = p
		e.topic = topic
	}
}

func NewEmitter(log *slog.Logger, notifications repository.NotificationRepository, profiles repository.ProfileRepository, opts ...Option) *Emitter {
	e := &Emitter{
		notifications: notifications,
		profiles:      profiles,
		log:           log,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Emitter) Notify(ctx context.Context, n Notification) {
	const op = "notify.Emitter.Notify"

	log := e.log.With(
		slog.String("op", op),
		slog.String("type", n.Type),
		slog.String("user_id", n.UserID),
	)

	if err := e.notifications.Create(ctx, &domain.UserNotification{
		UserID:  n.UserID,
		Message: n.Message,
	}); err != nil {
		log.Error("failed to store notification", sl.Err(err))
	}

	if e.publisher == nil || e.topic == "" {
		return
	}

	event := kafka.NotificationEvent{
		Type:      n.Type,
		UserID:    n.UserID,
		Message:   n.Message,
		BookingID: n.BookingID,
		PackageID: n.PackageID,
		CreatedAt: e.now(),
	}
	if profile, err := e.profiles.GetProfile(ctx, n.UserID); err == nil {
		event.Email = profile.Email
	}

	if err := e.publisher.Publish(ctx, e.topic, strconv.FormatInt(n.PackageID, 10), event); err != nil {
		log.Error("failed to publish notification", sl.Err(err))
	}
}
