package api

import (
	"context"

	"github.com/dmarakov/storypin/internal/client/models"
)

// ListParams narrows a story list request. Zero values are omitted from the
// query string.
type ListParams struct {
	Page         int
	Size         int
	WithLocation bool

	// Token is the optional bearer token. Anonymous requests leave it empty.
	Token string
}

// LoginResult is the server's answer to a successful login.
type LoginResult struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Token  string `json:"token"`
}

// Subscription is a push-notification subscription registered with the API.
type Subscription struct {
	Endpoint string           `json:"endpoint"`
	Keys     SubscriptionKeys `json:"keys"`
}

type SubscriptionKeys struct {
	P256dh string `json:"p256dh"`
	Auth   string `json:"auth"`
}

// Client wraps the story REST API. Transport and server failures come back as
// typed errors: *StatusError for HTTP-level rejections (matching the
// common sentinels via errors.Is), plain errors for transport problems.
type Client interface {
	Register(ctx context.Context, name, email, password string) error
	Login(ctx context.Context, email, password string) (*LoginResult, error)

	GetStories(ctx context.Context, p ListParams) ([]models.RawStory, error)
	GetStoryDetail(ctx context.Context, id, token string) (*models.RawStory, error)

	AddStory(ctx context.Context, draft models.StoryDraft, token string) error
	AddStoryGuest(ctx context.Context, draft models.StoryDraft) error

	SubscribeNotifications(ctx context.Context, sub Subscription, token string) error
	UnsubscribeNotifications(ctx context.Context, endpoint, token string) error
}
