package cacheworker

import (
	"context"
	"errors"
	"testing"

	"github.com/dmarakov/storypin/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePushPayload(t *testing.T) {
	t.Run("empty data yields all defaults", func(t *testing.T) {
		p := ParsePushPayload(nil)
		assert.Equal(t, "Storypin", p.Title)
		assert.Equal(t, "You have a new notification", p.Body)
		assert.Equal(t, "/images/icon-192x192.png", p.Icon)
		assert.Equal(t, "/images/icon-72x72.png", p.Badge)
		assert.Equal(t, "/", p.URL)
	})

	t.Run("malformed json yields defaults", func(t *testing.T) {
		p := ParsePushPayload([]byte("{not json"))
		assert.Equal(t, "Storypin", p.Title)
	})

	t.Run("partial payload keeps given fields", func(t *testing.T) {
		p := ParsePushPayload([]byte(`{"title":"New story nearby","url":"/stories/42"}`))
		assert.Equal(t, "New story nearby", p.Title)
		assert.Equal(t, "/stories/42", p.URL)
		// Unset fields still get defaults.
		assert.Equal(t, "You have a new notification", p.Body)
	})
}

type recordingNotifier struct {
	shown []PushPayload
	err   error
}

func (r *recordingNotifier) Show(_ context.Context, p PushPayload) error {
	if r.err != nil {
		return r.err
	}
	r.shown = append(r.shown, p)
	return nil
}

type fakeWindow struct {
	focused bool
}

func (f *fakeWindow) Focus(context.Context) error {
	f.focused = true
	return nil
}

type fakeRegistry struct {
	windows []Window
	opened  []string
}

func (f *fakeRegistry) List(context.Context) ([]Window, error) { return f.windows, nil }

func (f *fakeRegistry) Open(_ context.Context, url string) error {
	f.opened = append(f.opened, url)
	return nil
}

func TestHandlePush_ShowsNotification(t *testing.T) {
	notifier := &recordingNotifier{}
	d := NewDispatcher(notifier, &fakeRegistry{}, logging.Nop{})

	require.NoError(t, d.HandlePush(context.Background(), []byte(`{"title":"hi"}`)))

	require.Len(t, notifier.shown, 1)
	assert.Equal(t, "hi", notifier.shown[0].Title)
}

func TestHandlePush_NotifierFailureSurfaces(t *testing.T) {
	notifier := &recordingNotifier{err: errors.New("no notification daemon")}
	d := NewDispatcher(notifier, &fakeRegistry{}, logging.Nop{})

	assert.Error(t, d.HandlePush(context.Background(), nil))
}

func TestHandleClick_FocusesExistingWindow(t *testing.T) {
	win := &fakeWindow{}
	reg := &fakeRegistry{windows: []Window{win}}
	d := NewDispatcher(&recordingNotifier{}, reg, logging.Nop{})

	require.NoError(t, d.HandleClick(context.Background(), "/stories/42"))

	assert.True(t, win.focused)
	assert.Empty(t, reg.opened, "an existing window is focused, never duplicated")
}

func TestHandleClick_OpensWhenNoWindowExists(t *testing.T) {
	reg := &fakeRegistry{}
	d := NewDispatcher(&recordingNotifier{}, reg, logging.Nop{})

	require.NoError(t, d.HandleClick(context.Background(), "/stories/42"))
	assert.Equal(t, []string{"/stories/42"}, reg.opened)
}

func TestHandleClick_EmptyURLDefaultsToRoot(t *testing.T) {
	reg := &fakeRegistry{}
	d := NewDispatcher(&recordingNotifier{}, reg, logging.Nop{})

	require.NoError(t, d.HandleClick(context.Background(), ""))
	assert.Equal(t, []string{"/"}, reg.opened)
}
