// Package services contains the application services of the storypin client.
// This file is the story synchronizer: remote-first reads with a local
// fallback, write-through caching, and the queue-then-replay write path.
package services

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dmarakov/storypin/internal/client/api"
	"github.com/dmarakov/storypin/internal/client/models"
	"github.com/dmarakov/storypin/internal/client/repositories/pending"
	"github.com/dmarakov/storypin/internal/client/repositories/session"
	"github.com/dmarakov/storypin/internal/client/repositories/stories"
	"github.com/dmarakov/storypin/internal/common"
	"github.com/dmarakov/storypin/internal/logging"
	"github.com/google/uuid"
)

// OfflineDataMessage tags fallback reads so the user knows the data may be
// stale.
const OfflineDataMessage = "you are offline, showing the last locally available stories"

// DefaultFeaturedLimit bounds the featured-stories read.
const DefaultFeaturedLimit = 6

// maxPhotoBytes is the upload ceiling for a story photo.
const maxPhotoBytes = 1 << 20

// ConnectivityChecker gates remote branches. Satisfied by *connectivity.Probe.
type ConnectivityChecker interface {
	IsOnline(ctx context.Context) bool
	Check(ctx context.Context) error
}

// StoryService orchestrates story reads and writes so that presentation code
// never learns which path produced the data.
type StoryService struct {
	client  api.Client
	stories stories.Repository
	pending pending.Repository
	session session.Repository
	probe   ConnectivityChecker
	log     logging.Logger
}

func NewStoryService(
	client api.Client,
	storyRepo stories.Repository,
	pendingRepo pending.Repository,
	sessionRepo session.Repository,
	probe ConnectivityChecker,
	log logging.Logger,
) *StoryService {
	return &StoryService{
		client:  client,
		stories: storyRepo,
		pending: pendingRepo,
		session: sessionRepo,
		probe:   probe,
		log:     log.With("component", "stories"),
	}
}

// AddResult reports where a validated story draft ended up.
type AddResult struct {
	// Queued is true when the draft was stored locally for deferred replay
	// instead of being posted.
	Queued bool

	// PendingID is the client-generated queue key when Queued.
	PendingID string
}

// GetAllStories is the dual-path read. With the API reachable it fetches the
// remote list, caches every story locally, and returns live data; on any
// failure it serves the local cache instead. It never returns an error:
// the worst case is an empty list with the offline message.
func (s *StoryService) GetAllStories(ctx context.Context, p api.ListParams) *models.StoryList {
	if err := s.probe.Check(ctx); err == nil {
		p.Token = s.token(ctx)
		raw, err := s.client.GetStories(ctx, p)
		if err == nil {
			list := models.NormalizeAll(raw)
			s.cacheStories(ctx, list)
			return &models.StoryList{Stories: list, Live: true}
		}
		s.log.Warn(ctx, "remote story list failed, falling back to local store", "error", err)
	}

	return s.fromLocalStore(ctx)
}

// GetStoriesWithLocation asks the API for located stories and re-filters
// locally, in case the server ignored the filter.
func (s *StoryService) GetStoriesWithLocation(ctx context.Context, p api.ListParams) *models.StoryList {
	p.WithLocation = true
	list := s.GetAllStories(ctx, p)
	list.Stories = models.FilterByLocation(list.Stories, true)
	return list
}

// GetFeaturedStories returns the first limit stories of the standard read.
// An empty result is a distinct failure (common.ErrEmptyResult) so the caller
// can render an empty state rather than a transport error.
func (s *StoryService) GetFeaturedStories(ctx context.Context, limit int) (*models.StoryList, error) {
	if limit <= 0 {
		limit = DefaultFeaturedLimit
	}

	list := s.GetAllStories(ctx, api.ListParams{Size: limit})
	if len(list.Stories) == 0 {
		return nil, common.ErrEmptyResult
	}
	if len(list.Stories) > limit {
		list.Stories = list.Stories[:limit]
	}
	return list, nil
}

// GetStoryDetail fetches one story. It requires a session, validates the id
// before any I/O, and maps 404/403 onto the shared sentinels.
func (s *StoryService) GetStoryDetail(ctx context.Context, id string) (*models.Story, error) {
	token := s.token(ctx)
	if token == "" {
		return nil, common.ErrAuthRequired
	}
	if strings.TrimSpace(id) == "" {
		return nil, &common.ValidationError{Problems: []string{"story id must not be empty"}}
	}

	if err := s.probe.Check(ctx); err != nil {
		return nil, err
	}

	raw, err := s.client.GetStoryDetail(ctx, id, token)
	if err != nil {
		return nil, err
	}
	story := models.Normalize(*raw)
	return &story, nil
}

// AddStory validates the draft, then branches on connectivity: reachable API
// gets an immediate POST (authenticated or guest), an unreachable one gets a
// local queue entry for deferred replay. A transport failure of the POST
// itself also queues; an explicit server rejection never does.
func (s *StoryService) AddStory(ctx context.Context, draft models.StoryDraft) (*AddResult, error) {
	if problems := validateDraft(draft); len(problems) > 0 {
		return nil, &common.ValidationError{Problems: problems}
	}

	if err := s.probe.Check(ctx); err != nil {
		return s.queueDraft(ctx, draft)
	}

	token := s.token(ctx)
	var err error
	if token != "" {
		err = s.client.AddStory(ctx, draft, token)
	} else {
		err = s.client.AddStoryGuest(ctx, draft)
	}
	if err != nil {
		var se *api.StatusError
		if errors.As(err, &se) {
			return nil, &common.SubmissionError{Message: se.Message, StatusCode: se.Code}
		}
		// The connection died between the probe and the POST. Same treatment
		// as a failed probe: queue for replay.
		s.log.Warn(ctx, "story submission failed in transit, queueing for replay", "error", err)
		return s.queueDraft(ctx, draft)
	}
	return &AddResult{}, nil
}

func (s *StoryService) queueDraft(ctx context.Context, draft models.StoryDraft) (*AddResult, error) {
	p := &models.PendingStory{
		ID:          uuid.NewString(),
		Description: draft.Description,
		PhotoName:   draft.Photo.Name,
		PhotoMIME:   draft.Photo.MIME,
		PhotoData:   draft.Photo.Data,
		QueuedAt:    time.Now().UTC(),
	}
	if draft.Lat != "" && draft.Lon != "" {
		lat, _ := strconv.ParseFloat(draft.Lat, 64)
		lon, _ := strconv.ParseFloat(draft.Lon, 64)
		p.Lat, p.Lon = &lat, &lon
	}

	if err := s.pending.Put(ctx, p); err != nil {
		return nil, errors.Join(common.ErrStorage, err)
	}
	s.log.Info(ctx, "story queued for deferred sync", "pending_id", p.ID)
	return &AddResult{Queued: true, PendingID: p.ID}, nil
}

// fromLocalStore is the fallback read path. Storage failures degrade to an
// empty list; this path never errors.
func (s *StoryService) fromLocalStore(ctx context.Context) *models.StoryList {
	rows, err := s.stories.GetAll(ctx)
	if err != nil {
		s.log.Error(ctx, "local store read failed", "error", err)
		rows = nil
	}

	list := make([]models.Story, 0, len(rows))
	for _, row := range rows {
		list = append(list, models.Normalize(row.Raw()))
	}
	return &models.StoryList{Stories: list, Message: OfflineDataMessage}
}

// cacheStories writes the remote result through to the local store. Failures
// are logged and swallowed: a broken cache must not break a live read.
func (s *StoryService) cacheStories(ctx context.Context, list []models.Story) {
	for i := range list {
		if err := s.stories.Put(ctx, &list[i]); err != nil {
			s.log.Warn(ctx, "failed to cache story", "id", list[i].ID, "error", err)
		}
	}
}

func (s *StoryService) token(ctx context.Context) string {
	token, err := s.session.Get(ctx, session.TokenKey)
	if err != nil {
		s.log.Warn(ctx, "failed to read session token", "error", err)
		return ""
	}
	return token
}

// validateDraft collects every input problem instead of stopping at the
// first one.
func validateDraft(draft models.StoryDraft) []string {
	var problems []string

	if len(strings.TrimSpace(draft.Description)) < 10 {
		problems = append(problems, "description must be at least 10 characters")
	}

	if draft.Photo == nil || len(draft.Photo.Data) == 0 {
		problems = append(problems, "a photo is required")
	} else {
		if len(draft.Photo.Data) > maxPhotoBytes {
			problems = append(problems, "photo must be at most 1 MiB")
		}
		if !strings.HasPrefix(draft.Photo.MIME, "image/") {
			problems = append(problems, "photo must be an image file")
		}
	}

	if draft.Lat != "" || draft.Lon != "" {
		if lat, err := strconv.ParseFloat(draft.Lat, 64); err != nil || math.IsNaN(lat) || math.IsInf(lat, 0) {
			problems = append(problems, "latitude is not a valid number")
		} else if lat < -90 || lat > 90 {
			problems = append(problems, "latitude must be between -90 and 90")
		}

		if lon, err := strconv.ParseFloat(draft.Lon, 64); err != nil || math.IsNaN(lon) || math.IsInf(lon, 0) {
			problems = append(problems, "longitude is not a valid number")
		} else if lon < -180 || lon > 180 {
			problems = append(problems, "longitude must be between -180 and 180")
		}
	}

	return problems
}
