package api

import (
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hiverapp/hiver/internal/db"
	"github.com/hiverapp/hiver/internal/models"
	"github.com/hiverapp/hiver/internal/rank"
	"github.com/hiverapp/hiver/internal/security"
)

// ProfileAPI exposes profile, suggestion and notification methods
type ProfileAPI struct {
	profiles      *db.ProfileRepository
	notifications *db.NotificationRepository
	suggester     *rank.Suggester
}

// NewProfileAPI creates a new profile API
func NewProfileAPI(profiles *db.ProfileRepository, notifications *db.NotificationRepository, suggester *rank.Suggester) *ProfileAPI {
	return &ProfileAPI{
		profiles:      profiles,
		notifications: notifications,
		suggester:     suggester,
	}
}

// GetProfile handles hiver_api.get_profile
func (a *ProfileAPI) GetProfile(c *gin.Context, params json.RawMessage) (interface{}, error) {
	var p struct {
		ProfileID string `json:"profile_id"`
	}
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	profile, err := a.profiles.GetByID(c.Request.Context(), p.ProfileID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, NewError(ErrNotFound, "profile not found")
	}
	return profileView(profile), nil
}

// UpdateProfile handles hiver_api.update_profile. Only the caller's own
// profile can be updated; omitted fields keep their value.
func (a *ProfileAPI) UpdateProfile(c *gin.Context, params json.RawMessage) (interface{}, error) {
	viewer, err := requireViewer(c)
	if err != nil {
		return nil, err
	}
	var p struct {
		Name      *string  `json:"name"`
		Bio       *string  `json:"bio"`
		Location  *string  `json:"location"`
		AvatarURL *string  `json:"avatar_url"`
		Interests []string `json:"interests"`
		ArtistBio *string  `json:"artist_bio"`
		Genres    []string `json:"genres"`
	}
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}

	ctx := c.Request.Context()
	profile, err := a.profiles.GetByID(ctx, viewer)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, NewError(ErrNotFound, "profile not found")
	}

	if p.Name != nil {
		name := security.SanitizeText(*p.Name)
		if name == "" {
			return nil, NewError(ErrInvalidParams, "name cannot be empty")
		}
		profile.Name = name
	}
	if p.Bio != nil {
		profile.Bio = nullString(security.SanitizeText(*p.Bio))
	}
	if p.Location != nil {
		profile.Location = nullString(security.SanitizeText(*p.Location))
	}
	if p.AvatarURL != nil {
		profile.AvatarURL = *p.AvatarURL
	}
	if p.Interests != nil {
		profile.Interests = sanitizeList(p.Interests)
	}
	if p.ArtistBio != nil {
		profile.ArtistBio = nullString(security.SanitizeText(*p.ArtistBio))
	}
	if p.Genres != nil {
		profile.Genres = sanitizeList(p.Genres)
	}
	profile.UpdatedAt = time.Now().UTC()

	if err := a.profiles.Update(ctx, profile); err != nil {
		return nil, err
	}
	return profileView(profile), nil
}

// ListProfiles handles hiver_api.list_profiles
func (a *ProfileAPI) ListProfiles(c *gin.Context, params json.RawMessage) (interface{}, error) {
	profiles, err := a.profiles.List(c.Request.Context())
	if err != nil {
		return nil, err
	}
	views := make([]gin.H, 0, len(profiles))
	for _, profile := range profiles {
		views = append(views, profileView(profile))
	}
	return views, nil
}

// SuggestConnections handles hiver_api.suggest_connections
func (a *ProfileAPI) SuggestConnections(c *gin.Context, params json.RawMessage) (interface{}, error) {
	viewer, err := requireViewer(c)
	if err != nil {
		return nil, err
	}
	var p struct {
		Limit int `json:"limit"`
	}
	if len(params) > 0 {
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, NewError(ErrInvalidParams, "invalid parameters format")
		}
	}
	return a.suggester.Suggest(c.Request.Context(), viewer, clampLimit(p.Limit)), nil
}

// GetNotificationPreferences handles hiver_api.get_notification_preferences
func (a *ProfileAPI) GetNotificationPreferences(c *gin.Context, params json.RawMessage) (interface{}, error) {
	viewer, err := requireViewer(c)
	if err != nil {
		return nil, err
	}
	prefs, err := a.notifications.Get(c.Request.Context(), viewer)
	if err != nil {
		return nil, err
	}
	if prefs == nil {
		prefs = models.DefaultNotificationPreferences(viewer)
	}
	return prefs, nil
}

// UpdateNotificationPreferences handles hiver_api.update_notification_preferences
func (a *ProfileAPI) UpdateNotificationPreferences(c *gin.Context, params json.RawMessage) (interface{}, error) {
	viewer, err := requireViewer(c)
	if err != nil {
		return nil, err
	}

	ctx := c.Request.Context()
	prefs, err := a.notifications.Get(ctx, viewer)
	if err != nil {
		return nil, err
	}
	if prefs == nil {
		prefs = models.DefaultNotificationPreferences(viewer)
	}
	// apply the partial update over current values
	if err := decodeParams(params, prefs); err != nil {
		return nil, err
	}
	prefs.UserID = viewer

	if err := a.notifications.Upsert(ctx, prefs); err != nil {
		return nil, err
	}
	return prefs, nil
}

// sanitizeList sanitizes each entry and drops the ones that end up empty
func sanitizeList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if cleaned := security.SanitizeText(item); cleaned != "" {
			out = append(out, cleaned)
		}
	}
	return out
}

// profileView shapes a public profile for the response
func profileView(profile *models.Profile) gin.H {
	view := gin.H{
		"id":         profile.ID,
		"name":       profile.Name,
		"user_type":  profile.UserType,
		"bio":        profile.Bio.String,
		"location":   profile.Location.String,
		"avatar_url": profile.AvatarURL,
		"interests":  profile.Interests,
		"xp":         profile.XP,
		"level":      profile.Level,
		"created_at": profile.CreatedAt,
	}
	if profile.UserType == models.UserTypeArtist {
		view["artist_bio"] = profile.ArtistBio.String
		view["genres"] = profile.Genres
	}
	return view
}
