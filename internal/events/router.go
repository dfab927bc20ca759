package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
)

// RoleAssigner is the slice of the role service the subscriber needs.
type RoleAssigner interface {
	AssignDefaultRole(ctx context.Context, userID string) error
}

// RegistrationSubscriber consumes user.registered events and assigns the
// default student role to the new user.
type RegistrationSubscriber struct {
	router *message.Router
	logger *slog.Logger
}

// NewRegistrationSubscriber wires a watermill router with a single
// no-publisher handler on the registration topic.
func NewRegistrationSubscriber(brokers []string, consumerGroup string, roles RoleAssigner, logger *slog.Logger) (*RegistrationSubscriber, error) {
	wmLogger := watermill.NewSlogLogger(logger)

	subscriber, err := kafka.NewSubscriber(
		kafka.SubscriberConfig{
			Brokers:       brokers,
			Unmarshaler:   kafka.DefaultMarshaler{},
			ConsumerGroup: consumerGroup,
		},
		wmLogger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka subscriber: %w", err)
	}

	router, err := message.NewRouter(message.RouterConfig{}, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create router: %w", err)
	}
	router.AddMiddleware(middleware.Recoverer)

	router.AddNoPublisherHandler(
		"assign_default_role",
		TopicUserRegistered,
		subscriber,
		registrationHandler(roles, logger),
	)

	return &RegistrationSubscriber{router: router, logger: logger}, nil
}

// registrationHandler assigns the default role for each registration
// event. Malformed payloads are dropped, not retried.
func registrationHandler(roles RoleAssigner, logger *slog.Logger) message.NoPublishHandlerFunc {
	return func(msg *message.Message) error {
		var event UserRegisteredEvent
		if err := json.Unmarshal(msg.Payload, &event); err != nil {
			logger.Error("dropping malformed registration event", "message_id", msg.UUID, "error", err)
			return nil
		}

		if err := roles.AssignDefaultRole(msg.Context(), event.UserID); err != nil {
			logger.Error("failed to assign default role", "user_id", event.UserID, "error", err)
			return err
		}

		logger.Info("default role assigned", "user_id", event.UserID)
		return nil
	}
}

// Run blocks until ctx is canceled.
func (s *RegistrationSubscriber) Run(ctx context.Context) error {
	return s.router.Run(ctx)
}

func (s *RegistrationSubscriber) Close() error {
	return s.router.Close()
}
