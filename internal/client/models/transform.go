package models

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Field defaults applied by Normalize.
const (
	UnknownID          = "unknown"
	AnonymousName      = "Anonymous"
	EmptyDescription   = "No description"
	DateUnavailable    = "date unavailable"
	shortDescriptionAt = 100
)

// Sort keys accepted by Sort. Anything else leaves the input order unchanged.
const (
	SortNewest = "newest"
	SortOldest = "oldest"
	SortByName = "name"
)

// dateLayout is how formatted dates are presented to the user.
const dateLayout = "2 January 2006 15:04"

// Normalize turns a server- or store-shaped record into the safe Story shape:
// every missing field replaced by its documented default, derived fields
// recomputed. Pure apart from the current-time default for CreatedAt.
func Normalize(raw RawStory) Story {
	s := Story{
		ID:          raw.ID,
		Name:        raw.Name,
		Description: raw.Description,
		PhotoURL:    raw.PhotoURL,
		CreatedAt:   raw.CreatedAt,
		Lat:         raw.Lat,
		Lon:         raw.Lon,
	}
	if s.ID == "" {
		s.ID = UnknownID
	}
	if s.Name == "" {
		s.Name = AnonymousName
	}
	if s.Description == "" {
		s.Description = EmptyDescription
	}
	if s.PhotoURL == "" {
		s.PhotoURL = PlaceholderPhotoURL
	}
	if s.CreatedAt == "" {
		s.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}

	s.FormattedDate = FormatDate(s.CreatedAt)
	s.ShortDescription = Truncate(s.Description, shortDescriptionAt)
	s.HasLocation = s.Lat != nil && s.Lon != nil
	return s
}

// NormalizeAll maps Normalize over a raw slice. A nil input yields an empty,
// non-nil slice so callers can range and marshal without nil checks.
func NormalizeAll(raw []RawStory) []Story {
	out := make([]Story, 0, len(raw))
	for _, r := range raw {
		out = append(out, Normalize(r))
	}
	return out
}

// FormatDate renders an ISO-8601 timestamp for display. Unparseable input
// degrades to DateUnavailable instead of failing.
func FormatDate(value string) string {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		if t, err = time.Parse(time.RFC3339Nano, value); err != nil {
			return DateUnavailable
		}
	}
	return t.Format(dateLayout)
}

// Truncate shortens text to at most max runes, appending an ellipsis when
// anything was cut.
func Truncate(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}

// Search returns the stories whose name or description contains query,
// case-insensitively. An empty query returns an unfiltered copy.
func Search(stories []Story, query string) []Story {
	trimmed := strings.ToLower(strings.TrimSpace(query))
	if trimmed == "" {
		out := make([]Story, len(stories))
		copy(out, stories)
		return out
	}

	out := make([]Story, 0, len(stories))
	for _, s := range stories {
		if strings.Contains(strings.ToLower(s.Name), trimmed) ||
			strings.Contains(strings.ToLower(s.Description), trimmed) {
			out = append(out, s)
		}
	}
	return out
}

// FilterByLocation partitions on coordinate presence: want=true keeps stories
// with both coordinates, want=false keeps the rest.
func FilterByLocation(stories []Story, want bool) []Story {
	out := make([]Story, 0, len(stories))
	for _, s := range stories {
		hasCoords := s.Lat != nil && s.Lon != nil
		if hasCoords == want {
			out = append(out, s)
		}
	}
	return out
}

// Sort returns a sorted copy of stories. SortNewest/SortOldest order by
// createdAt (missing or invalid dates are treated as the epoch), SortByName
// orders by author name using locale-aware collation. The sort is stable, and
// an unknown key returns the input order unchanged.
func Sort(stories []Story, key string) []Story {
	out := make([]Story, len(stories))
	copy(out, stories)

	switch key {
	case SortNewest:
		sort.SliceStable(out, func(i, j int) bool {
			return parseOrEpoch(out[i].CreatedAt).After(parseOrEpoch(out[j].CreatedAt))
		})
	case SortOldest:
		sort.SliceStable(out, func(i, j int) bool {
			return parseOrEpoch(out[i].CreatedAt).Before(parseOrEpoch(out[j].CreatedAt))
		})
	case SortByName:
		c := collate.New(language.English, collate.Loose)
		sort.SliceStable(out, func(i, j int) bool {
			return c.CompareString(out[i].Name, out[j].Name) < 0
		})
	}
	return out
}

func parseOrEpoch(value string) time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Unix(0, 0)
	}
	return t
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
