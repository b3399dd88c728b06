package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hiverapp/hiver/internal/cache"
	"github.com/hiverapp/hiver/internal/db"
	"github.com/hiverapp/hiver/internal/rank"
	"github.com/hiverapp/hiver/internal/recommend"
	"github.com/hiverapp/hiver/internal/relationship"
	"github.com/hiverapp/hiver/pkg/config"
	"github.com/hiverapp/hiver/pkg/logging"
)

// Router sets up API routes
type Router struct {
	handler *JSONRPCHandler
	db      *db.DB
	cache   *cache.Cache
	logger  *zap.Logger

	recommendCfg *config.RecommendConfig
}

// NewRouter creates a new API router
func NewRouter(database *db.DB, redisCache *cache.Cache, recommendCfg *config.RecommendConfig) *Router {
	handler := NewJSONRPCHandler()
	router := &Router{
		handler:      handler,
		db:           database,
		cache:        redisCache,
		logger:       logging.GetLogger().With(zap.String("component", "api-router")),
		recommendCfg: recommendCfg,
	}

	// Register all API methods
	router.registerMethods()

	return router
}

// SetupRoutes sets up all API routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	// Health check endpoints
	engine.GET("/health", r.healthHandler)
	engine.GET("/.well-known/healthcheck.json", r.healthHandler)

	// JSON-RPC endpoint
	engine.POST("/", r.handler.Handle)
}

// registerMethods registers all API methods
func (r *Router) registerMethods() {
	repo := db.NewRepository(r.db.DB)
	profiles := db.NewProfileRepository(repo)
	hives := db.NewHiveRepository(repo)
	rsvps := db.NewRSVPRepository(repo)
	posts := db.NewPostRepository(repo)
	notifications := db.NewNotificationRepository(repo)

	store := db.NewRelationshipStore(r.db)
	engine := relationship.NewEngine(store)
	suggester := rank.NewSuggester(profiles, store)
	trending := rank.NewTrendingRanker(hives, r.cache)
	recommender := recommend.New(r.recommendCfg, profiles, rsvps, hives, trending)

	// Follows and connections
	rel := NewRelationshipAPI(engine)
	r.handler.RegisterMethod("hiver_api.follow", rel.Follow)
	r.handler.RegisterMethod("hiver_api.unfollow", rel.Unfollow)
	r.handler.RegisterMethod("hiver_api.get_follow_status", rel.GetFollowStatus)
	r.handler.RegisterMethod("hiver_api.get_follower_count", rel.GetFollowerCount)
	r.handler.RegisterMethod("hiver_api.request_connection", rel.RequestConnection)
	r.handler.RegisterMethod("hiver_api.accept_connection", rel.AcceptConnection)
	r.handler.RegisterMethod("hiver_api.reject_connection", rel.RejectConnection)
	r.handler.RegisterMethod("hiver_api.cancel_connection", rel.CancelConnection)
	r.handler.RegisterMethod("hiver_api.remove_connection", rel.RemoveConnection)
	r.handler.RegisterMethod("hiver_api.get_connection_status", rel.GetConnectionStatus)
	r.handler.RegisterMethod("hiver_api.list_connections", rel.ListConnections)

	// Hives, RSVPs and trending
	hiveAPI := NewHiveAPI(hives, rsvps, profiles, trending)
	r.handler.RegisterMethod("hiver_api.create_hive", hiveAPI.CreateHive)
	r.handler.RegisterMethod("hiver_api.get_hive", hiveAPI.GetHive)
	r.handler.RegisterMethod("hiver_api.list_hives", hiveAPI.ListHives)
	r.handler.RegisterMethod("hiver_api.get_trending_hives", hiveAPI.GetTrendingHives)
	r.handler.RegisterMethod("hiver_api.rsvp", hiveAPI.RSVP)
	r.handler.RegisterMethod("hiver_api.unrsvp", hiveAPI.UnRSVP)

	// Artist posts and feed
	feed := NewFeedAPI(posts, profiles)
	r.handler.RegisterMethod("hiver_api.create_post", feed.CreatePost)
	r.handler.RegisterMethod("hiver_api.get_feed", feed.GetFeed)
	r.handler.RegisterMethod("hiver_api.like_post", feed.LikePost)
	r.handler.RegisterMethod("hiver_api.unlike_post", feed.UnlikePost)

	// Profiles, suggestions and notification preferences
	profileAPI := NewProfileAPI(profiles, notifications, suggester)
	r.handler.RegisterMethod("hiver_api.get_profile", profileAPI.GetProfile)
	r.handler.RegisterMethod("hiver_api.update_profile", profileAPI.UpdateProfile)
	r.handler.RegisterMethod("hiver_api.list_profiles", profileAPI.ListProfiles)
	r.handler.RegisterMethod("hiver_api.suggest_connections", profileAPI.SuggestConnections)
	r.handler.RegisterMethod("hiver_api.get_notification_preferences", profileAPI.GetNotificationPreferences)
	r.handler.RegisterMethod("hiver_api.update_notification_preferences", profileAPI.UpdateNotificationPreferences)

	// Personalized recommendations
	recommendAPI := NewRecommendAPI(recommender)
	r.handler.RegisterMethod("recommend.hives", recommendAPI.RecommendHives)
}

// healthHandler handles health check requests
func (r *Router) healthHandler(c *gin.Context) {
	c.JSON(200, gin.H{
		"status":  "OK",
		"service": "hiver-api",
	})
}
