// Package api wraps the story REST API over HTTP.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"time"

	"github.com/dmarakov/storypin/internal/client/models"
	"github.com/sethvargo/go-retry"
)

const (
	DefaultTimeout        = 30 * time.Second
	defaultMaxRetries     = 2
	defaultInitialBackoff = 500 * time.Millisecond
)

// HTTPClient is the production Client implementation.
//
// Idempotent reads are retried with exponential backoff on transport errors
// and 5xx responses; 4xx responses and all writes are never retried, so a
// submission cannot be duplicated by the transport layer.
type HTTPClient struct {
	baseURL    string
	http       *http.Client
	maxRetries uint64
	backoff    time.Duration
}

type Option func(*HTTPClient)

func WithHTTPClient(h *http.Client) Option {
	return func(c *HTTPClient) { c.http = h }
}

func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) { c.http.Timeout = d }
}

func WithRetries(max uint64, initialBackoff time.Duration) Option {
	return func(c *HTTPClient) {
		c.maxRetries = max
		c.backoff = initialBackoff
	}
}

// NewHTTPClient returns a Client for the API at baseURL (e.g.
// "https://story-api.example.com/v1").
func NewHTTPClient(baseURL string, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL:    baseURL,
		http:       &http.Client{Timeout: DefaultTimeout},
		maxRetries: defaultMaxRetries,
		backoff:    defaultInitialBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// envelope is the API's uniform response wrapper.
type envelope struct {
	Error       bool              `json:"error"`
	Message     string            `json:"message"`
	ListStory   []models.RawStory `json:"listStory"`
	Story       *models.RawStory  `json:"story"`
	LoginResult *LoginResult      `json:"loginResult"`
}

func (c *HTTPClient) Register(ctx context.Context, name, email, password string) error {
	body := map[string]string{"name": name, "email": email, "password": password}
	_, err := c.postJSON(ctx, "/register", "", body)
	return err
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	body := map[string]string{"email": email, "password": password}
	env, err := c.postJSON(ctx, "/login", "", body)
	if err != nil {
		return nil, err
	}
	if env.LoginResult == nil || env.LoginResult.Token == "" {
		return nil, fmt.Errorf("malformed login response")
	}
	return env.LoginResult, nil
}

func (c *HTTPClient) GetStories(ctx context.Context, p ListParams) ([]models.RawStory, error) {
	q := url.Values{}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.Size > 0 {
		q.Set("size", strconv.Itoa(p.Size))
	}
	if p.WithLocation {
		q.Set("location", "1")
	}
	path := "/stories"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	env, err := c.getWithRetry(ctx, path, p.Token)
	if err != nil {
		return nil, err
	}
	return env.ListStory, nil
}

func (c *HTTPClient) GetStoryDetail(ctx context.Context, id, token string) (*models.RawStory, error) {
	env, err := c.getWithRetry(ctx, "/stories/"+url.PathEscape(id), token)
	if err != nil {
		return nil, err
	}
	if env.Story == nil {
		return nil, fmt.Errorf("malformed story detail response")
	}
	return env.Story, nil
}

func (c *HTTPClient) AddStory(ctx context.Context, draft models.StoryDraft, token string) error {
	return c.postStoryForm(ctx, "/stories", draft, token)
}

func (c *HTTPClient) AddStoryGuest(ctx context.Context, draft models.StoryDraft) error {
	return c.postStoryForm(ctx, "/stories/guest", draft, "")
}

func (c *HTTPClient) SubscribeNotifications(ctx context.Context, sub Subscription, token string) error {
	_, err := c.doJSON(ctx, http.MethodPost, "/notifications/subscribe", token, sub)
	return err
}

func (c *HTTPClient) UnsubscribeNotifications(ctx context.Context, endpoint, token string) error {
	body := map[string]string{"endpoint": endpoint}
	_, err := c.doJSON(ctx, http.MethodDelete, "/notifications/subscribe", token, body)
	return err
}

// getWithRetry performs a GET, retrying transport failures and 5xx responses
// with exponential backoff. 4xx responses fail immediately.
func (c *HTTPClient) getWithRetry(ctx context.Context, path, token string) (*envelope, error) {
	var env *envelope
	backoff := retry.WithMaxRetries(c.maxRetries, retry.NewExponential(c.backoff))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		var err error
		env, err = c.do(ctx, http.MethodGet, path, token, "", nil)
		if err == nil {
			return nil
		}
		var se *StatusError
		if errors.As(err, &se) && se.Code < 500 {
			return err
		}
		return retry.RetryableError(err)
	})
	if err != nil {
		return nil, err
	}
	return env, nil
}

func (c *HTTPClient) postJSON(ctx context.Context, path, token string, body any) (*envelope, error) {
	return c.doJSON(ctx, http.MethodPost, path, token, body)
}

func (c *HTTPClient) doJSON(ctx context.Context, method, path, token string, body any) (*envelope, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding request body: %w", err)
	}
	return c.do(ctx, method, path, token, "application/json", payload)
}

func (c *HTTPClient) postStoryForm(ctx context.Context, path string, draft models.StoryDraft, token string) error {
	body, contentType, err := encodeStoryForm(draft)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, http.MethodPost, path, token, contentType, body)
	return err
}

// do performs one HTTP exchange and decodes the response envelope. A non-2xx
// status, or a 2xx whose envelope flags an error, becomes a *StatusError.
func (c *HTTPClient) do(ctx context.Context, method, path, token, contentType string, body []byte) (*envelope, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	// A body that does not decode is tolerated on success paths with no
	// payload; error statuses still surface below.
	_ = json.NewDecoder(resp.Body).Decode(&env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Message: env.Message}
	}
	if env.Error {
		return nil, &StatusError{Code: resp.StatusCode, Message: env.Message}
	}
	return &env, nil
}

// encodeStoryForm builds the multipart payload: description, photo, and the
// optional coordinate pair.
func encodeStoryForm(draft models.StoryDraft) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField("description", draft.Description); err != nil {
		return nil, "", err
	}

	if draft.Photo != nil {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name="photo"; filename=%q`, draft.Photo.Name))
		header.Set("Content-Type", draft.Photo.MIME)
		part, err := w.CreatePart(header)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(draft.Photo.Data); err != nil {
			return nil, "", err
		}
	}

	if draft.Lat != "" && draft.Lon != "" {
		if err := w.WriteField("lat", draft.Lat); err != nil {
			return nil, "", err
		}
		if err := w.WriteField("lon", draft.Lon); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
