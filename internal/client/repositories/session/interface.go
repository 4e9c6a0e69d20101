package session

import "context"

// Storage keys for the durable session set.
const (
	TokenKey = "token"
	UserKey  = "user"
)

// Repository is durable key-value storage for the auth session: the bearer
// token and the serialized user profile.
type Repository interface {
	// Get returns the value for key, or "" when the key is absent.
	Get(ctx context.Context, key string) (string, error)

	Set(ctx context.Context, key, value string) error

	// SetAll writes every pair atomically: either the whole session lands
	// or none of it does.
	SetAll(ctx context.Context, values map[string]string) error

	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
