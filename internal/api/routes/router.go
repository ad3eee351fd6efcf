package routes

import (
	"net/http"

	"github.com/crossroads-hq/crossroads-backend/internal/api/handlers"
	"github.com/crossroads-hq/crossroads-backend/internal/api/middleware"
	"github.com/crossroads-hq/crossroads-backend/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	businessHandler     *handlers.BusinessHandler
	userHandler         *handlers.UserHandler
	reviewHandler       *handlers.ReviewHandler
	subscriptionHandler *handlers.SubscriptionHandler
	postHandler         *handlers.PostHandler
	adminHandler        *handlers.AdminHandler
	triggerHandler      *handlers.TriggerHandler
	storageHandler      *handlers.StorageHandler

	auth          *middleware.AuthMiddleware
	webhookSecret string
	metrics       *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	businessHandler *handlers.BusinessHandler,
	userHandler *handlers.UserHandler,
	reviewHandler *handlers.ReviewHandler,
	subscriptionHandler *handlers.SubscriptionHandler,
	postHandler *handlers.PostHandler,
	adminHandler *handlers.AdminHandler,
	triggerHandler *handlers.TriggerHandler,
	storageHandler *handlers.StorageHandler,
	auth *middleware.AuthMiddleware,
	webhookSecret string,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:                 http.NewServeMux(),
		businessHandler:     businessHandler,
		userHandler:         userHandler,
		reviewHandler:       reviewHandler,
		subscriptionHandler: subscriptionHandler,
		postHandler:         postHandler,
		adminHandler:        adminHandler,
		triggerHandler:      triggerHandler,
		storageHandler:      storageHandler,
		auth:                auth,
		webhookSecret:       webhookSecret,
		metrics:             metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Public business endpoints; Optional auth so signed-in callers carry a
	// principal through to the services
	r.public("GET /api/businesses", r.businessHandler.ListBusinesses)
	r.public("GET /api/businesses/search", r.businessHandler.SearchBusinesses)
	r.public("GET /api/businesses/{id}", r.businessHandler.GetBusiness)
	r.public("GET /api/businesses/{id}/reviews", r.reviewHandler.ListReviews)
	r.public("GET /api/businesses/{id}/posts", r.postHandler.ListPosts)

	// Authenticated business endpoints
	r.protected("POST /api/businesses", r.businessHandler.CreateBusiness)
	r.protected("GET /api/businesses/mine", r.businessHandler.ListMyBusinesses)
	r.protected("PUT /api/businesses/{id}", r.businessHandler.UpdateBusiness)
	r.protected("DELETE /api/businesses/{id}", r.businessHandler.DeleteBusiness)
	r.protected("POST /api/businesses/{id}/images", r.storageHandler.UploadBusinessImage)

	// Review endpoints
	r.protected("POST /api/businesses/{id}/reviews", r.reviewHandler.CreateReview)
	r.protected("PUT /api/reviews/{id}", r.reviewHandler.UpdateReview)
	r.protected("DELETE /api/reviews/{id}", r.reviewHandler.DeleteReview)

	// Subscription endpoints
	r.protected("POST /api/businesses/{id}/subscribe", r.subscriptionHandler.Subscribe)
	r.protected("DELETE /api/businesses/{id}/subscribe", r.subscriptionHandler.Unsubscribe)
	r.protected("GET /api/businesses/{id}/subscribers", r.subscriptionHandler.ListSubscribers)
	r.protected("GET /api/subscriptions", r.subscriptionHandler.ListMySubscriptions)

	// Post endpoints
	r.protected("POST /api/businesses/{id}/posts", r.postHandler.CreatePost)
	r.protected("DELETE /api/posts/{id}", r.postHandler.DeletePost)

	// User endpoints
	r.protected("GET /api/users/me", r.userHandler.GetMe)
	r.protected("GET /api/users/{id}", r.userHandler.GetUser)
	r.protected("PUT /api/users/{id}", r.userHandler.UpdateUser)
	r.protected("DELETE /api/users/{id}", r.userHandler.DeleteUser)
	r.protected("GET /api/users/{id}/businesses", r.businessHandler.ListUserBusinesses)

	// Storage endpoints
	r.protected("POST /api/storage/profile-picture", r.storageHandler.UploadProfilePicture)
	r.protected("GET /api/storage/url", r.storageHandler.GetMediaURL)
	r.protected("DELETE /api/storage", r.storageHandler.DeleteMedia)

	// Admin endpoints; the services enforce the admin group themselves
	r.protected("GET /api/admin/businesses", r.adminHandler.ListBusinesses)
	r.protected("PUT /api/admin/businesses/{id}/status", r.adminHandler.SetBusinessStatus)
	r.protected("GET /api/admin/users", r.userHandler.ListUsers)
	r.protected("POST /api/admin/groups/change", r.adminHandler.ChangeGroup)
	r.protected("GET /api/admin/users/{username}/groups", r.adminHandler.ListGroups)

	// Identity-provider trigger webhooks, authenticated by shared secret
	webhookAuth := middleware.WebhookAuthMiddleware(r.webhookSecret)
	r.mux.Handle("POST /webhooks/identity/pre-signup", webhookAuth(http.HandlerFunc(r.triggerHandler.PreSignup)))
	r.mux.Handle("POST /webhooks/identity/post-confirmation", webhookAuth(http.HandlerFunc(r.triggerHandler.PostConfirmation)))

	// Apply middleware in reverse order (last middleware wraps first)
	// CORS must be outermost so error responses also get CORS headers.
	var handler http.Handler = r.mux
	handler = middleware.CacheHeadersMiddleware(handler)
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.CORSMiddleware(handler)

	return handler
}

func (r *Router) public(pattern string, handlerFunc http.HandlerFunc) {
	r.mux.Handle(pattern, r.auth.Optional(handlerFunc))
}

func (r *Router) protected(pattern string, handlerFunc http.HandlerFunc) {
	r.mux.Handle(pattern, r.auth.Require(handlerFunc))
}
