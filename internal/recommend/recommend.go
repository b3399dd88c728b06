package recommend

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/hiverapp/hiver/internal/models"
	"github.com/hiverapp/hiver/internal/rank"
	"github.com/hiverapp/hiver/pkg/config"
	"github.com/hiverapp/hiver/pkg/logging"
)

// upcomingPoolSize caps how many hives the prompt offers the model
const upcomingPoolSize = 50

// pastRSVPSample is how many recent RSVPs describe the user's taste
const pastRSVPSample = 10

const systemPrompt = `You are a smart event recommendation assistant. Analyze the user's profile and suggest the most relevant upcoming events from the list. Consider their interests, location, past event preferences, and experience level. Return ONLY a JSON array of hive IDs in order of relevance, like: ["id1", "id2", "id3"]`

// ProfileSource loads the viewer's profile for the prompt
type ProfileSource interface {
	GetByID(ctx context.Context, id string) (*models.Profile, error)
}

// RSVPSource loads the viewer's recent RSVPs for the prompt
type RSVPSource interface {
	ListRecentForUser(ctx context.Context, userID string, limit int) ([]*models.RSVP, error)
}

// HiveSource loads the upcoming hives the model picks from
type HiveSource interface {
	ListUpcoming(ctx context.Context, limit int) ([]*models.Hive, error)
}

// Recommender produces personalized hive recommendations from an LLM, with
// the trending ranker as fallback whenever the model is unavailable or its
// output cannot be used.
type Recommender struct {
	client   *openai.Client
	model    string
	profiles ProfileSource
	rsvps    RSVPSource
	hives    HiveSource
	trending *rank.TrendingRanker
	logger   *zap.Logger
}

// New creates a recommender. When the recommendation service is not
// configured every call takes the trending fallback.
func New(cfg *config.RecommendConfig, profiles ProfileSource, rsvps RSVPSource, hives HiveSource, trending *rank.TrendingRanker) *Recommender {
	r := &Recommender{
		model:    cfg.Model,
		profiles: profiles,
		rsvps:    rsvps,
		hives:    hives,
		trending: trending,
		logger:   logging.GetLogger().With(zap.String("component", "recommender")),
	}
	if cfg.Enabled {
		clientCfg := openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			clientCfg.BaseURL = cfg.BaseURL
		}
		r.client = openai.NewClientWithConfig(clientCfg)
	}
	return r
}

// RecommendHives returns at most limit upcoming hives for the viewer. Any
// failure on the model path falls back to the trending ranking; the method
// itself never fails.
func (r *Recommender) RecommendHives(ctx context.Context, viewer string, limit int) []*models.Hive {
	if limit <= 0 {
		return []*models.Hive{}
	}

	upcoming, err := r.hives.ListUpcoming(ctx, upcomingPoolSize)
	if err != nil {
		r.logger.Warn("could not load upcoming hives", zap.Error(err))
		return []*models.Hive{}
	}
	if len(upcoming) == 0 {
		return []*models.Hive{}
	}

	byID := make(map[string]*models.Hive, len(upcoming))
	for _, hive := range upcoming {
		byID[hive.ID] = hive
	}

	ids := r.modelPicks(ctx, viewer, upcoming)
	if ids == nil {
		return r.fallback(ctx, byID, limit)
	}

	picked := make([]*models.Hive, 0, limit)
	for _, id := range ids {
		if hive, ok := byID[id]; ok {
			picked = append(picked, hive)
			if len(picked) == limit {
				break
			}
		}
	}
	if len(picked) == 0 {
		return r.fallback(ctx, byID, limit)
	}
	return picked
}

// modelPicks asks the LLM for an ordered id list; nil means fall back
func (r *Recommender) modelPicks(ctx context.Context, viewer string, upcoming []*models.Hive) []string {
	if r.client == nil || viewer == "" {
		return nil
	}

	profile, err := r.profiles.GetByID(ctx, viewer)
	if err != nil || profile == nil {
		r.logger.Warn("could not load viewer profile for recommendations",
			zap.String("viewer", viewer), zap.Error(err))
		return nil
	}

	pastRSVPs, err := r.rsvps.ListRecentForUser(ctx, viewer, pastRSVPSample)
	if err != nil {
		r.logger.Warn("could not load past RSVPs for recommendations", zap.Error(err))
		pastRSVPs = nil
	}

	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: r.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(profile, pastRSVPs, upcoming)},
		},
	})
	if err != nil {
		r.logger.Warn("recommendation model call failed", zap.Error(err))
		return nil
	}
	if len(resp.Choices) == 0 {
		r.logger.Warn("recommendation model returned no choices")
		return nil
	}

	ids := parseRecommendedIDs(resp.Choices[0].Message.Content)
	if len(ids) == 0 {
		r.logger.Warn("recommendation model output had no usable id list")
		return nil
	}
	return ids
}

// fallback substitutes the trending ranking, restricted to the loaded pool
func (r *Recommender) fallback(ctx context.Context, byID map[string]*models.Hive, limit int) []*models.Hive {
	out := make([]*models.Hive, 0, limit)
	for _, entry := range r.trending.Trending(ctx, limit) {
		if hive, ok := byID[entry.ID]; ok {
			out = append(out, hive)
		}
	}
	return out
}

// buildPrompt renders the viewer context the model reasons over
func buildPrompt(profile *models.Profile, pastRSVPs []*models.RSVP, upcoming []*models.Hive) string {
	var b strings.Builder

	b.WriteString("User Profile:\n")
	fmt.Fprintf(&b, "- Name: %s\n", profile.Name)
	interests := "none specified"
	if len(profile.Interests) > 0 {
		interests = strings.Join(profile.Interests, ", ")
	}
	fmt.Fprintf(&b, "- Interests: %s\n", interests)
	location := "not specified"
	if profile.Location.Valid && profile.Location.String != "" {
		location = profile.Location.String
	}
	fmt.Fprintf(&b, "- Location: %s\n", location)
	fmt.Fprintf(&b, "- Level: %s (%d XP)\n", profile.Level, profile.XP)

	b.WriteString("\nPast Events Attended:\n")
	if len(pastRSVPs) == 0 {
		b.WriteString("No past events\n")
	}
	for _, rsvp := range pastRSVPs {
		if rsvp.Hive == nil {
			continue
		}
		fmt.Fprintf(&b, "- %s (%s)\n", rsvp.Hive.Title, rsvp.Hive.Category)
	}

	b.WriteString("\nAvailable Upcoming Hives:\n")
	for i, hive := range upcoming {
		fmt.Fprintf(&b, "%d. %s - %s - %s - %s - id:%s\n",
			i+1, hive.Title, hive.Category, hive.Location,
			hive.EventDate.Format("2006-01-02"), hive.ID)
	}

	return b.String()
}

var jsonArrayPattern = regexp.MustCompile(`\[[\s\S]*\]`)

// parseRecommendedIDs extracts the first JSON string array from model output
func parseRecommendedIDs(content string) []string {
	match := jsonArrayPattern.FindString(content)
	if match == "" {
		return nil
	}
	var ids []string
	if err := json.Unmarshal([]byte(match), &ids); err != nil {
		return nil
	}
	return ids
}
