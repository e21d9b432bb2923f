package event

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	pkgkafka "github.com/yvoloshyn/contactsgo/pkg/kafka"

	"github.com/yvoloshyn/contactsgo/internal/domain"
)

// Kafka topic constants for user domain events. The notification consumer
// downstream turns confirmation events into outbound email; delivery is
// entirely out-of-band for this service.
const (
	TopicUserRegistered            = "contacts.user.registered"
	TopicUserConfirmed             = "contacts.user.confirmed"
	TopicUserConfirmationRequested = "contacts.user.confirmation-requested"
)

// Aggregate type constant.
const AggregateTypeUser = "user"

// Source identifier for events originating from this service.
const SourceContactsAPI = "contacts-api"

// ConfirmationData is the payload for events that carry an email-confirmation
// token to the notification consumer.
type ConfirmationData struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Token    string `json:"token"`
}

// UserConfirmedData is the payload for a user.confirmed event.
type UserConfirmedData struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

// Producer publishes user domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the contacts service.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishUserRegistered publishes a user.registered event carrying the
// confirmation token for the welcome email.
func (p *Producer) PublishUserRegistered(ctx context.Context, user *domain.User, token string) error {
	data := ConfirmationData{
		ID:       user.ID,
		Email:    user.Email,
		Username: user.Username,
		Token:    token,
	}

	event, err := pkgkafka.NewEvent(TopicUserRegistered, strconv.FormatInt(user.ID, 10), AggregateTypeUser, SourceContactsAPI, data)
	if err != nil {
		return fmt.Errorf("create user.registered event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicUserRegistered, event); err != nil {
		return fmt.Errorf("publish user.registered event: %w", err)
	}

	p.logger.DebugContext(ctx, "published user.registered event",
		slog.Int64("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return nil
}

// PublishConfirmationRequested publishes a user.confirmation-requested event
// with a fresh confirmation token for re-sending the verification email.
func (p *Producer) PublishConfirmationRequested(ctx context.Context, user *domain.User, token string) error {
	data := ConfirmationData{
		ID:       user.ID,
		Email:    user.Email,
		Username: user.Username,
		Token:    token,
	}

	event, err := pkgkafka.NewEvent(TopicUserConfirmationRequested, strconv.FormatInt(user.ID, 10), AggregateTypeUser, SourceContactsAPI, data)
	if err != nil {
		return fmt.Errorf("create user.confirmation-requested event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicUserConfirmationRequested, event); err != nil {
		return fmt.Errorf("publish user.confirmation-requested event: %w", err)
	}

	p.logger.DebugContext(ctx, "published user.confirmation-requested event",
		slog.Int64("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return nil
}

// PublishUserConfirmed publishes a user.confirmed event.
func (p *Producer) PublishUserConfirmed(ctx context.Context, user *domain.User) error {
	data := UserConfirmedData{
		ID:    user.ID,
		Email: user.Email,
	}

	event, err := pkgkafka.NewEvent(TopicUserConfirmed, strconv.FormatInt(user.ID, 10), AggregateTypeUser, SourceContactsAPI, data)
	if err != nil {
		return fmt.Errorf("create user.confirmed event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicUserConfirmed, event); err != nil {
		return fmt.Errorf("publish user.confirmed event: %w", err)
	}

	p.logger.DebugContext(ctx, "published user.confirmed event",
		slog.Int64("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return nil
}
