package rank

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/hiverapp/hiver/internal/cache"
	"github.com/hiverapp/hiver/internal/db"
	"github.com/hiverapp/hiver/internal/models"
	"github.com/hiverapp/hiver/pkg/logging"
)

// trendingCacheTTL keeps the ranked list fresh without hammering the
// aggregate query on every page load.
const trendingCacheTTL = time.Minute

// candidatePoolSize caps how many upcoming hives the ranker considers
const candidatePoolSize = 200

// EventSource provides upcoming hives with their attendance counts
type EventSource interface {
	ListUpcomingWithCounts(ctx context.Context, limit int) ([]*db.HiveWithCount, error)
}

// TrendingHive is one ranked entry
type TrendingHive struct {
	ID            string              `json:"id"`
	HostID        string              `json:"host_id"`
	Title         string              `json:"title"`
	Category      models.HiveCategory `json:"category"`
	Location      string              `json:"location"`
	EventDate     time.Time           `json:"event_date"`
	EventTime     string              `json:"event_time"`
	CoverImageURL string              `json:"cover_image_url"`
	RSVPCount     int64               `json:"rsvp_count"`
	TrendingScore float64             `json:"trending_score"`
}

// TrendingRanker orders upcoming hives by attendance and recency
type TrendingRanker struct {
	events EventSource
	cache  *cache.Cache
	logger *zap.Logger
	now    func() time.Time
}

// NewTrendingRanker creates a trending ranker; cache may be nil
func NewTrendingRanker(events EventSource, redisCache *cache.Cache) *TrendingRanker {
	return &TrendingRanker{
		events: events,
		cache:  redisCache,
		logger: logging.GetLogger().With(zap.String("component", "trending-ranker")),
		now:    time.Now,
	}
}

// Trending returns at most limit upcoming hives ordered by descending
// trending score, ties broken by earliest event date. Past events are never
// returned. The ranker fails open: a store failure yields an empty result.
func (t *TrendingRanker) Trending(ctx context.Context, limit int) []TrendingHive {
	if limit <= 0 {
		return []TrendingHive{}
	}

	cacheKey := cache.HashKey("trending_hives", fmt.Sprintf("%d", limit))
	if t.cache != nil {
		var cached []TrendingHive
		if err := t.cache.GetJSON(cacheKey, &cached); err == nil {
			return cached
		}
	}

	rows, err := t.events.ListUpcomingWithCounts(ctx, candidatePoolSize)
	if err != nil {
		t.logger.Warn("trending ranker could not load hives", zap.Error(err))
		return []TrendingHive{}
	}

	ranked := t.rank(rows, limit)

	if t.cache != nil {
		if err := t.cache.SetJSON(cacheKey, ranked, trendingCacheTTL); err != nil {
			t.logger.Debug("failed to cache trending hives", zap.Error(err))
		}
	}
	return ranked
}

// rank scores and orders the candidate rows
func (t *TrendingRanker) rank(rows []*db.HiveWithCount, limit int) []TrendingHive {
	now := t.now().UTC()
	todayDate := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	ranked := make([]TrendingHive, 0, len(rows))
	for _, row := range rows {
		if row.EventDate.Before(todayDate) {
			continue
		}
		ranked = append(ranked, TrendingHive{
			ID:            row.ID,
			HostID:        row.HostID,
			Title:         row.Title,
			Category:      row.Category,
			Location:      row.Location,
			EventDate:     row.EventDate,
			EventTime:     row.EventTime,
			CoverImageURL: row.CoverImageURL,
			RSVPCount:     row.RSVPCount,
			TrendingScore: trendingScore(row.RSVPCount, row.EventDate, todayDate),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].TrendingScore != ranked[j].TrendingScore {
			return ranked[i].TrendingScore > ranked[j].TrendingScore
		}
		if !ranked[i].EventDate.Equal(ranked[j].EventDate) {
			return ranked[i].EventDate.Before(ranked[j].EventDate)
		}
		return ranked[i].ID < ranked[j].ID
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// trendingScore decays attendance by how far out the event is: a hive
// tomorrow with 10 RSVPs outranks one next month with the same count.
func trendingScore(rsvpCount int64, eventDate, today time.Time) float64 {
	daysUntil := eventDate.Sub(today).Hours() / 24
	if daysUntil < 0 {
		daysUntil = 0
	}
	return float64(rsvpCount) / (1 + daysUntil)
}
