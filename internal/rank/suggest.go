package rank

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/hiverapp/hiver/internal/models"
	"github.com/hiverapp/hiver/pkg/logging"
)

// ProfileSource provides the profiles a suggestion run draws from
type ProfileSource interface {
	GetByID(ctx context.Context, id string) (*models.Profile, error)
	List(ctx context.Context) ([]*models.Profile, error)
}

// ConnectionSource provides the viewer's existing edges for exclusion
type ConnectionSource interface {
	ListConnectionsFor(ctx context.Context, profileID string) ([]*models.Connection, error)
}

// Suggestion is one "people you may know" candidate
type Suggestion struct {
	ProfileID       string        `json:"id"`
	Name            string        `json:"name"`
	AvatarURL       string        `json:"avatar_url"`
	Location        string        `json:"location"`
	Level           models.Level  `json:"level"`
	Interests       []string      `json:"interests"`
	SharedInterests int           `json:"shared_interests_count"`
}

// Suggester ranks connection candidates by shared declared interests
type Suggester struct {
	profiles    ProfileSource
	connections ConnectionSource
	logger      *zap.Logger
}

// NewSuggester creates a suggestion ranker
func NewSuggester(profiles ProfileSource, connections ConnectionSource) *Suggester {
	return &Suggester{
		profiles:    profiles,
		connections: connections,
		logger:      logging.GetLogger().With(zap.String("component", "suggestion-ranker")),
	}
}

// Suggest returns at most limit candidates for the viewer, ranked by
// descending shared-interest count, ties by profile id ascending. Profiles
// the viewer already has any edge with (pending or accepted, either
// direction) are excluded, as is the viewer. The ranker fails open: a store
// failure yields an empty result, never an error.
func (s *Suggester) Suggest(ctx context.Context, viewer string, limit int) []Suggestion {
	if viewer == "" || limit <= 0 {
		return []Suggestion{}
	}

	viewerProfile, err := s.profiles.GetByID(ctx, viewer)
	if err != nil || viewerProfile == nil {
		s.logger.Warn("suggestion ranker could not load viewer profile",
			zap.String("viewer", viewer), zap.Error(err))
		return []Suggestion{}
	}

	edges, err := s.connections.ListConnectionsFor(ctx, viewer)
	if err != nil {
		s.logger.Warn("suggestion ranker could not load connections", zap.Error(err))
		return []Suggestion{}
	}
	excluded := make(map[string]bool, len(edges)+1)
	excluded[viewer] = true
	for _, edge := range edges {
		excluded[edge.OtherParty(viewer)] = true
	}

	candidates, err := s.profiles.List(ctx)
	if err != nil {
		s.logger.Warn("suggestion ranker could not load candidates", zap.Error(err))
		return []Suggestion{}
	}

	return rankCandidates(viewerProfile, candidates, excluded, limit)
}

// rankCandidates is the pure ranking step over an already-loaded pool
func rankCandidates(viewer *models.Profile, pool []*models.Profile, excluded map[string]bool, limit int) []Suggestion {
	suggestions := make([]Suggestion, 0, len(pool))
	for _, candidate := range pool {
		if excluded[candidate.ID] {
			continue
		}
		suggestions = append(suggestions, Suggestion{
			ProfileID:       candidate.ID,
			Name:            candidate.Name,
			AvatarURL:       candidate.AvatarURL,
			Location:        candidate.Location.String,
			Level:           candidate.Level,
			Interests:       candidate.Interests,
			SharedInterests: sharedInterestCount(viewer.Interests, candidate.Interests),
		})
	}

	sort.Slice(suggestions, func(i, j int) bool {
		if suggestions[i].SharedInterests != suggestions[j].SharedInterests {
			return suggestions[i].SharedInterests > suggestions[j].SharedInterests
		}
		return suggestions[i].ProfileID < suggestions[j].ProfileID
	})

	if len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}
	return suggestions
}

// sharedInterestCount counts case-insensitive overlap between interest lists
func sharedInterestCount(a, b []string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]bool, len(a))
	for _, interest := range a {
		set[strings.ToLower(strings.TrimSpace(interest))] = true
	}
	count := 0
	seen := make(map[string]bool, len(b))
	for _, interest := range b {
		key := strings.ToLower(strings.TrimSpace(interest))
		if set[key] && !seen[key] {
			seen[key] = true
			count++
		}
	}
	return count
}
