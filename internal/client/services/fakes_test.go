package services

import (
	"context"
	"sort"

	"github.com/dmarakov/storypin/internal/client/api"
	"github.com/dmarakov/storypin/internal/client/models"
	"github.com/dmarakov/storypin/internal/common"
)

// fakeClient lets each test override only the calls it cares about.
// Unoverridden calls panic, which is exactly what we want: they mark an
// unexpected network round trip.
type fakeClient struct {
	api.Client

	loginFn    func(ctx context.Context, email, password string) (*api.LoginResult, error)
	registerFn func(ctx context.Context, name, email, password string) error

	getStoriesFn     func(ctx context.Context, p api.ListParams) ([]models.RawStory, error)
	getStoryDetailFn func(ctx context.Context, id, token string) (*models.RawStory, error)

	addStoryFn      func(ctx context.Context, draft models.StoryDraft, token string) error
	addStoryGuestFn func(ctx context.Context, draft models.StoryDraft) error

	subscribeFn   func(ctx context.Context, sub api.Subscription, token string) error
	unsubscribeFn func(ctx context.Context, endpoint, token string) error
}

func (f *fakeClient) Login(ctx context.Context, email, password string) (*api.LoginResult, error) {
	return f.loginFn(ctx, email, password)
}

func (f *fakeClient) Register(ctx context.Context, name, email, password string) error {
	return f.registerFn(ctx, name, email, password)
}

func (f *fakeClient) GetStories(ctx context.Context, p api.ListParams) ([]models.RawStory, error) {
	return f.getStoriesFn(ctx, p)
}

func (f *fakeClient) GetStoryDetail(ctx context.Context, id, token string) (*models.RawStory, error) {
	return f.getStoryDetailFn(ctx, id, token)
}

func (f *fakeClient) AddStory(ctx context.Context, draft models.StoryDraft, token string) error {
	return f.addStoryFn(ctx, draft, token)
}

func (f *fakeClient) AddStoryGuest(ctx context.Context, draft models.StoryDraft) error {
	return f.addStoryGuestFn(ctx, draft)
}

func (f *fakeClient) SubscribeNotifications(ctx context.Context, sub api.Subscription, token string) error {
	return f.subscribeFn(ctx, sub, token)
}

func (f *fakeClient) UnsubscribeNotifications(ctx context.Context, endpoint, token string) error {
	return f.unsubscribeFn(ctx, endpoint, token)
}

// fakeProbe reports a fixed connectivity state.
type fakeProbe struct {
	online bool
}

func (f *fakeProbe) IsOnline(context.Context) bool { return f.online }

func (f *fakeProbe) Check(context.Context) error {
	if f.online {
		return nil
	}
	return common.ErrOffline
}

// memStories is an in-memory stories.Repository.
type memStories struct {
	byID   map[string]models.Story
	getErr error
	putErr error
}

func newMemStories() *memStories {
	return &memStories{byID: map[string]models.Story{}}
}

func (m *memStories) Put(_ context.Context, story *models.Story) error {
	if m.putErr != nil {
		return m.putErr
	}
	m.byID[story.ID] = *story
	return nil
}

func (m *memStories) GetAll(context.Context) ([]models.Story, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	out := make([]models.Story, 0, len(m.byID))
	for _, s := range m.byID {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStories) Delete(_ context.Context, id string) error {
	delete(m.byID, id)
	return nil
}

func (m *memStories) Clear(context.Context) error {
	m.byID = map[string]models.Story{}
	return nil
}

// memPending is an in-memory pending.Repository preserving enqueue order.
type memPending struct {
	items  []models.PendingStory
	putErr error
}

func (m *memPending) Put(_ context.Context, story *models.PendingStory) error {
	if m.putErr != nil {
		return m.putErr
	}
	m.items = append(m.items, *story)
	return nil
}

func (m *memPending) GetAll(context.Context) ([]models.PendingStory, error) {
	out := make([]models.PendingStory, len(m.items))
	copy(out, m.items)
	return out, nil
}

func (m *memPending) Delete(_ context.Context, id string) error {
	for i, item := range m.items {
		if item.ID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *memPending) Clear(context.Context) error {
	m.items = nil
	return nil
}

// memSession is an in-memory session.Repository.
type memSession struct {
	values    map[string]string
	setAllErr error
}

func newMemSession() *memSession {
	return &memSession{values: map[string]string{}}
}

func (m *memSession) Get(_ context.Context, key string) (string, error) {
	return m.values[key], nil
}

func (m *memSession) Set(_ context.Context, key, value string) error {
	m.values[key] = value
	return nil
}

func (m *memSession) SetAll(_ context.Context, values map[string]string) error {
	if m.setAllErr != nil {
		return m.setAllErr
	}
	for key, value := range values {
		m.values[key] = value
	}
	return nil
}

func (m *memSession) Delete(_ context.Context, key string) error {
	delete(m.values, key)
	return nil
}

func (m *memSession) Clear(context.Context) error {
	m.values = map[string]string{}
	return nil
}

// memFavorites is an in-memory favorites.Repository.
type memFavorites struct {
	byID map[string]models.Story
}

func newMemFavorites() *memFavorites {
	return &memFavorites{byID: map[string]models.Story{}}
}

func (m *memFavorites) Put(_ context.Context, story *models.Story) error {
	m.byID[story.ID] = *story
	return nil
}

func (m *memFavorites) GetAll(context.Context) ([]models.Story, error) {
	out := make([]models.Story, 0, len(m.byID))
	for _, s := range m.byID {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memFavorites) Delete(_ context.Context, id string) error {
	delete(m.byID, id)
	return nil
}

func (m *memFavorites) Clear(context.Context) error {
	m.byID = map[string]models.Story{}
	return nil
}

func (m *memFavorites) Has(_ context.Context, id string) (bool, error) {
	_, ok := m.byID[id]
	return ok, nil
}

func validPhoto() *models.Photo {
	return &models.Photo{Name: "photo.jpg", MIME: "image/jpeg", Data: []byte("jpeg-bytes")}
}
