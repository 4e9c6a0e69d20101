package services

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/dmarakov/storypin/internal/client/api"
	"github.com/dmarakov/storypin/internal/client/models"
	"github.com/dmarakov/storypin/internal/client/repositories/session"
	"github.com/dmarakov/storypin/internal/common"
	"github.com/dmarakov/storypin/internal/logging"
	"github.com/golang-jwt/jwt/v5"
)

// DefaultMinAuthDelay pads login/registration so the loading state is visible
// even on fast links. Purely a UX floor, not a correctness concern.
const DefaultMinAuthDelay = 2 * time.Second

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// AuthService handles login, registration, and the durable session.
// Authentication state is exactly "a non-empty token is stored".
type AuthService struct {
	client   api.Client
	session  session.Repository
	log      logging.Logger
	minDelay time.Duration
}

type AuthOption func(*AuthService)

// WithMinDelay overrides the artificial auth delay; tests pass 0.
func WithMinDelay(d time.Duration) AuthOption {
	return func(a *AuthService) { a.minDelay = d }
}

func NewAuthService(client api.Client, sessionRepo session.Repository, log logging.Logger, opts ...AuthOption) *AuthService {
	a := &AuthService{
		client:   client,
		session:  sessionRepo,
		log:      log.With("component", "auth"),
		minDelay: DefaultMinAuthDelay,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Login validates credentials locally (fail fast, no wasted I/O), then
// authenticates and persists the session.
func (a *AuthService) Login(ctx context.Context, email, password string) (*models.User, error) {
	if problems := validateLogin(email, password); len(problems) > 0 {
		return nil, &common.ValidationError{Problems: problems}
	}

	start := time.Now()
	res, err := a.client.Login(ctx, email, password)
	a.padDelay(ctx, start)
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	user := models.User{UserID: res.UserID, Name: res.Name, Email: email}
	if err := a.saveSession(ctx, res.Token, user); err != nil {
		return nil, err
	}
	a.log.Info(ctx, "logged in", "user_id", user.UserID)
	return &user, nil
}

// Register creates an account. The caller still has to log in afterwards.
func (a *AuthService) Register(ctx context.Context, name, email, password string) error {
	if problems := validateRegistration(name, email, password); len(problems) > 0 {
		return &common.ValidationError{Problems: problems}
	}

	start := time.Now()
	err := a.client.Register(ctx, name, email, password)
	a.padDelay(ctx, start)
	if err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}
	return nil
}

// Logout destroys the stored session.
func (a *AuthService) Logout(ctx context.Context) error {
	if err := a.session.Clear(ctx); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}
	return nil
}

// Token returns the stored bearer token, "" when logged out.
func (a *AuthService) Token(ctx context.Context) string {
	token, err := a.session.Get(ctx, session.TokenKey)
	if err != nil {
		a.log.Warn(ctx, "failed to read token", "error", err)
		return ""
	}
	return token
}

func (a *AuthService) IsAuthenticated(ctx context.Context) bool {
	return a.Token(ctx) != ""
}

// CurrentUser returns the stored profile, or nil when logged out.
func (a *AuthService) CurrentUser(ctx context.Context) (*models.User, error) {
	raw, err := a.session.Get(ctx, session.UserKey)
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, nil
	}
	var user models.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, fmt.Errorf("corrupt stored user profile: %w", err)
	}
	return &user, nil
}

// SessionExpired inspects the stored token's exp claim without verifying the
// signature (the server owns verification). Opaque or claim-less tokens are
// treated as still valid.
func (a *AuthService) SessionExpired(ctx context.Context) bool {
	token := a.Token(ctx)
	if token == "" {
		return false
	}

	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return false
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}

func (a *AuthService) saveSession(ctx context.Context, token string, user models.User) error {
	profile, err := json.Marshal(user)
	if err != nil {
		return err
	}

	// Token and profile land in one atomic write: a failure must not leave
	// the client half-authenticated.
	err = a.session.SetAll(ctx, map[string]string{
		session.TokenKey: token,
		session.UserKey:  string(profile),
	})
	if err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	return nil
}

// padDelay sleeps out the remainder of the minimum auth delay, honoring
// context cancellation.
func (a *AuthService) padDelay(ctx context.Context, start time.Time) {
	remaining := a.minDelay - time.Since(start)
	if remaining <= 0 {
		return
	}
	select {
	case <-time.After(remaining):
	case <-ctx.Done():
	}
}

func validateLogin(email, password string) []string {
	var problems []string

	switch {
	case strings.TrimSpace(email) == "":
		problems = append(problems, "email is required")
	case !emailRe.MatchString(email):
		problems = append(problems, "email format is invalid")
	}

	switch {
	case strings.TrimSpace(password) == "":
		problems = append(problems, "password is required")
	case len(password) < 8:
		problems = append(problems, "password must be at least 8 characters")
	}

	return problems
}

func validateRegistration(name, email, password string) []string {
	var problems []string

	switch {
	case strings.TrimSpace(name) == "":
		problems = append(problems, "name is required")
	case len(strings.TrimSpace(name)) < 2:
		problems = append(problems, "name must be at least 2 characters")
	}

	problems = append(problems, validateLogin(email, password)...)

	if strings.TrimSpace(password) != "" {
		if !strings.ContainsFunc(password, func(r rune) bool { return r >= 'a' && r <= 'z' }) {
			problems = append(problems, "password must contain a lowercase letter")
		}
		if !strings.ContainsFunc(password, func(r rune) bool { return r >= 'A' && r <= 'Z' }) {
			problems = append(problems, "password must contain an uppercase letter")
		}
		if !strings.ContainsFunc(password, func(r rune) bool { return r >= '0' && r <= '9' }) {
			problems = append(problems, "password must contain a digit")
		}
	}

	return problems
}
