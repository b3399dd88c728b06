package rank

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hiverapp/hiver/internal/db"
	"github.com/hiverapp/hiver/internal/models"
)

type fakeEventSource struct {
	rows []*db.HiveWithCount
	fail bool
}

func (f *fakeEventSource) ListUpcomingWithCounts(ctx context.Context, limit int) ([]*db.HiveWithCount, error) {
	if f.fail {
		return nil, errors.New("store down")
	}
	return f.rows, nil
}

var rankerNow = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

func hiveRow(id string, daysOut int, rsvps int64) *db.HiveWithCount {
	return &db.HiveWithCount{
		Hive: models.Hive{
			ID:        id,
			Title:     "hive-" + id,
			EventDate: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, daysOut),
		},
		RSVPCount: rsvps,
	}
}

func newTestRanker(rows ...*db.HiveWithCount) *TrendingRanker {
	ranker := NewTrendingRanker(&fakeEventSource{rows: rows}, nil)
	ranker.now = func() time.Time { return rankerNow }
	return ranker
}

func TestTrending_OrderByScore(t *testing.T) {
	// same attendance, sooner event wins; same distance, more attendance wins
	ranker := newTestRanker(
		hiveRow("far-popular", 30, 20),
		hiveRow("soon-popular", 1, 20),
		hiveRow("soon-quiet", 1, 2),
	)

	got := ranker.Trending(context.Background(), 10)
	wantOrder := []string{"soon-popular", "soon-quiet", "far-popular"}
	if len(got) != len(wantOrder) {
		t.Fatalf("Trending returned %d entries, want %d", len(got), len(wantOrder))
	}
	for i, want := range wantOrder {
		if got[i].ID != want {
			t.Errorf("position %d = %s, want %s", i, got[i].ID, want)
		}
	}
}

func TestTrending_ExcludesPastEvents(t *testing.T) {
	ranker := newTestRanker(
		hiveRow("yesterday", -1, 100),
		hiveRow("today", 0, 1),
	)

	got := ranker.Trending(context.Background(), 10)
	if len(got) != 1 || got[0].ID != "today" {
		t.Errorf("Trending = %+v, want only the upcoming hive", got)
	}
}

func TestTrending_TieBreakByEarliestDate(t *testing.T) {
	// zero attendance everywhere: all scores are 0, earliest date first
	ranker := newTestRanker(
		hiveRow("later", 10, 0),
		hiveRow("sooner", 2, 0),
		hiveRow("middle", 5, 0),
	)

	got := ranker.Trending(context.Background(), 10)
	wantOrder := []string{"sooner", "middle", "later"}
	for i, want := range wantOrder {
		if got[i].ID != want {
			t.Errorf("position %d = %s, want %s", i, got[i].ID, want)
		}
	}
}

func TestTrending_Limit(t *testing.T) {
	ranker := newTestRanker(
		hiveRow("a", 1, 5),
		hiveRow("b", 2, 5),
		hiveRow("c", 3, 5),
	)

	if got := ranker.Trending(context.Background(), 2); len(got) != 2 {
		t.Errorf("Trending with limit 2 returned %d entries", len(got))
	}
}

func TestTrending_FailsOpen(t *testing.T) {
	ranker := NewTrendingRanker(&fakeEventSource{fail: true}, nil)

	got := ranker.Trending(context.Background(), 5)
	if len(got) != 0 {
		t.Errorf("Trending during outage should return empty, got %d entries", len(got))
	}
}

func TestTrendingScore(t *testing.T) {
	today := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		rsvps    int64
		daysOut  int
		expected float64
	}{
		{"today", 10, 0, 10},
		{"tomorrow", 10, 1, 5},
		{"in four days", 10, 4, 2},
		{"no attendance", 0, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			date := today.AddDate(0, 0, tt.daysOut)
			if got := trendingScore(tt.rsvps, date, today); got != tt.expected {
				t.Errorf("trendingScore(%d, +%dd) = %v, want %v", tt.rsvps, tt.daysOut, got, tt.expected)
			}
		})
	}
}
