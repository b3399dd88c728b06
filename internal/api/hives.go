package api

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hiverapp/hiver/internal/db"
	"github.com/hiverapp/hiver/internal/models"
	"github.com/hiverapp/hiver/internal/rank"
	"github.com/hiverapp/hiver/internal/security"
)

const defaultListLimit = 20
const maxListLimit = 100

// HiveAPI exposes hive and RSVP methods
type HiveAPI struct {
	hives    *db.HiveRepository
	rsvps    *db.RSVPRepository
	profiles *db.ProfileRepository
	trending *rank.TrendingRanker
}

// NewHiveAPI creates a new hive API
func NewHiveAPI(hives *db.HiveRepository, rsvps *db.RSVPRepository, profiles *db.ProfileRepository, trending *rank.TrendingRanker) *HiveAPI {
	return &HiveAPI{
		hives:    hives,
		rsvps:    rsvps,
		profiles: profiles,
		trending: trending,
	}
}

// clampLimit bounds an optional client-supplied limit
func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}

// CreateHive handles hiver_api.create_hive
func (a *HiveAPI) CreateHive(c *gin.Context, params json.RawMessage) (interface{}, error) {
	viewer, err := requireViewer(c)
	if err != nil {
		return nil, err
	}
	var p struct {
		Title         string `json:"title"`
		Description   string `json:"description"`
		Category      string `json:"category"`
		Location      string `json:"location"`
		EventDate     string `json:"event_date"`
		EventTime     string `json:"event_time"`
		MaxAttendees  int64  `json:"max_attendees"`
		CoverImageURL string `json:"cover_image_url"`
	}
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}

	title := security.SanitizeText(p.Title)
	if title == "" {
		return nil, NewError(ErrInvalidParams, "missing required parameter: title")
	}
	if !models.ValidCategory(p.Category) {
		return nil, NewError(ErrInvalidParams, "unknown category")
	}
	location := security.SanitizeText(p.Location)
	if location == "" {
		return nil, NewError(ErrInvalidParams, "missing required parameter: location")
	}
	eventDate, err := time.Parse("2006-01-02", p.EventDate)
	if err != nil {
		return nil, NewError(ErrInvalidParams, "event_date must be YYYY-MM-DD")
	}

	now := time.Now().UTC()
	hive := &models.Hive{
		ID:            uuid.NewString(),
		HostID:        viewer,
		Title:         title,
		Description:   nullString(security.SanitizeText(p.Description)),
		Category:      models.HiveCategory(p.Category),
		Location:      location,
		EventDate:     eventDate,
		EventTime:     p.EventTime,
		MaxAttendees:  p.MaxAttendees,
		CoverImageURL: p.CoverImageURL,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := a.hives.Create(c.Request.Context(), hive); err != nil {
		return nil, err
	}
	if err := a.profiles.AwardXP(c.Request.Context(), viewer, models.XPForHiveCreated); err != nil {
		// the hive exists; losing the XP award is not worth failing the call
		logAwardFailure(viewer, err)
	}
	return hiveView(hive, 0), nil
}

// GetHive handles hiver_api.get_hive
func (a *HiveAPI) GetHive(c *gin.Context, params json.RawMessage) (interface{}, error) {
	var p struct {
		HiveID string `json:"hive_id"`
	}
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	hive, err := a.hives.GetByID(c.Request.Context(), p.HiveID)
	if err != nil {
		return nil, err
	}
	if hive == nil {
		return nil, NewError(ErrNotFound, "hive not found")
	}
	count, err := a.rsvps.CountForHive(c.Request.Context(), hive.ID)
	if err != nil {
		return nil, err
	}
	view := hiveView(hive, count)
	if viewer := viewerID(c); viewer != "" {
		attending, err := a.rsvps.Exists(c.Request.Context(), hive.ID, viewer)
		if err != nil {
			return nil, err
		}
		view["attending"] = attending
	}
	return view, nil
}

// ListHives handles hiver_api.list_hives
func (a *HiveAPI) ListHives(c *gin.Context, params json.RawMessage) (interface{}, error) {
	var p struct {
		HostID string `json:"host_id"`
		Limit  int    `json:"limit"`
	}
	if len(params) > 0 {
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, NewError(ErrInvalidParams, "invalid parameters format")
		}
	}

	ctx := c.Request.Context()
	if p.HostID != "" {
		hives, err := a.hives.ListByHost(ctx, p.HostID)
		if err != nil {
			return nil, err
		}
		return hiveViews(hives), nil
	}
	hives, err := a.hives.ListUpcoming(ctx, clampLimit(p.Limit))
	if err != nil {
		return nil, err
	}
	return hiveViews(hives), nil
}

// GetTrendingHives handles hiver_api.get_trending_hives
func (a *HiveAPI) GetTrendingHives(c *gin.Context, params json.RawMessage) (interface{}, error) {
	var p struct {
		Limit int `json:"limit"`
	}
	if len(params) > 0 {
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, NewError(ErrInvalidParams, "invalid parameters format")
		}
	}
	return a.trending.Trending(c.Request.Context(), clampLimit(p.Limit)), nil
}

// RSVP handles hiver_api.rsvp
func (a *HiveAPI) RSVP(c *gin.Context, params json.RawMessage) (interface{}, error) {
	viewer, err := requireViewer(c)
	if err != nil {
		return nil, err
	}
	var p struct {
		HiveID string `json:"hive_id"`
	}
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}

	ctx := c.Request.Context()
	hive, err := a.hives.GetByID(ctx, p.HiveID)
	if err != nil {
		return nil, err
	}
	if hive == nil {
		return nil, NewError(ErrNotFound, "hive not found")
	}
	if hive.MaxAttendees > 0 {
		count, err := a.rsvps.CountForHive(ctx, hive.ID)
		if err != nil {
			return nil, err
		}
		if count >= hive.MaxAttendees {
			return nil, NewError(ErrConflict, "hive is full")
		}
	}

	rsvp := &models.RSVP{
		ID:        uuid.NewString(),
		HiveID:    hive.ID,
		UserID:    viewer,
		CreatedAt: time.Now().UTC(),
	}
	if err := a.rsvps.Create(ctx, rsvp); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// already attending; keep the call idempotent and skip the award
			return gin.H{"attending": true}, nil
		}
		return nil, err
	}
	if err := a.profiles.AwardXP(ctx, viewer, models.XPForRSVP); err != nil {
		logAwardFailure(viewer, err)
	}
	return gin.H{"attending": true}, nil
}

// UnRSVP handles hiver_api.unrsvp
func (a *HiveAPI) UnRSVP(c *gin.Context, params json.RawMessage) (interface{}, error) {
	viewer, err := requireViewer(c)
	if err != nil {
		return nil, err
	}
	var p struct {
		HiveID string `json:"hive_id"`
	}
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if err := a.rsvps.Delete(c.Request.Context(), p.HiveID, viewer); err != nil {
		return nil, err
	}
	return gin.H{"attending": false}, nil
}

// hiveView shapes a hive for the response
func hiveView(hive *models.Hive, rsvpCount int64) gin.H {
	view := gin.H{
		"id":              hive.ID,
		"host_id":         hive.HostID,
		"title":           hive.Title,
		"description":     hive.Description.String,
		"category":        hive.Category,
		"location":        hive.Location,
		"event_date":      hive.EventDate.Format("2006-01-02"),
		"event_time":      hive.EventTime,
		"max_attendees":   hive.MaxAttendees,
		"cover_image_url": hive.CoverImageURL,
		"rsvp_count":      rsvpCount,
		"created_at":      hive.CreatedAt,
	}
	if hive.Host != nil {
		view["host"] = gin.H{
			"id":         hive.Host.ID,
			"name":       hive.Host.Name,
			"avatar_url": hive.Host.AvatarURL,
		}
	}
	return view
}

func hiveViews(hives []*models.Hive) []gin.H {
	views := make([]gin.H, 0, len(hives))
	for _, hive := range hives {
		views = append(views, hiveView(hive, 0))
	}
	return views
}
