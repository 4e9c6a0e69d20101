package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmarakov/storypin/internal/client/api"
	"github.com/dmarakov/storypin/internal/client/repositories/session"
	"github.com/dmarakov/storypin/internal/common"
	"github.com/dmarakov/storypin/internal/logging"
)

// NotificationService registers push subscriptions with the API. Both
// operations require a logged-in session.
type NotificationService struct {
	client  api.Client
	session session.Repository
	log     logging.Logger
}

func NewNotificationService(client api.Client, sessionRepo session.Repository, log logging.Logger) *NotificationService {
	return &NotificationService{
		client:  client,
		session: sessionRepo,
		log:     log.With("component", "notifications"),
	}
}

func (n *NotificationService) Subscribe(ctx context.Context, sub api.Subscription) error {
	if strings.TrimSpace(sub.Endpoint) == "" {
		return &common.ValidationError{Problems: []string{"subscription endpoint is required"}}
	}
	token, err := n.requireToken(ctx)
	if err != nil {
		return err
	}
	if err := n.client.SubscribeNotifications(ctx, sub, token); err != nil {
		return fmt.Errorf("subscribe failed: %w", err)
	}
	n.log.Info(ctx, "push subscription registered", "endpoint", sub.Endpoint)
	return nil
}

func (n *NotificationService) Unsubscribe(ctx context.Context, endpoint string) error {
	if strings.TrimSpace(endpoint) == "" {
		return &common.ValidationError{Problems: []string{"subscription endpoint is required"}}
	}
	token, err := n.requireToken(ctx)
	if err != nil {
		return err
	}
	if err := n.client.UnsubscribeNotifications(ctx, endpoint, token); err != nil {
		return fmt.Errorf("unsubscribe failed: %w", err)
	}
	n.log.Info(ctx, "push subscription removed", "endpoint", endpoint)
	return nil
}

func (n *NotificationService) requireToken(ctx context.Context) (string, error) {
	token, err := n.session.Get(ctx, session.TokenKey)
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", common.ErrAuthRequired
	}
	return token, nil
}
