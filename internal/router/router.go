package router

import (
	"net/http"
	"time"

	"github.com/accountd/accountd/internal/auth"
	"github.com/accountd/accountd/internal/handler"
	"github.com/accountd/accountd/internal/middleware"
)

// New creates and configures the HTTP router
func New(h *handler.Handler, mw *middleware.Middleware, tokenSvc *auth.TokenService) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoints (no auth required)
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /ready", h.Ready)

	// Public routes (rate limited)
	registerRateLimit := mw.RateLimit(middleware.RateLimitConfig{
		Name:   "register",
		Limit:  5,
		Window: 1 * time.Hour,
		KeyFn:  middleware.IPKey,
	})
	loginRateLimit := mw.RateLimit(middleware.RateLimitConfig{
		Name:   "login",
		Limit:  10,
		Window: 15 * time.Minute,
		KeyFn:  middleware.IPKey,
	})

	mux.Handle("POST /register/{$}", registerRateLimit(http.HandlerFunc(h.Register)))
	mux.Handle("POST /login/{$}", loginRateLimit(http.HandlerFunc(h.Login)))
	mux.HandleFunc("GET /verify-email/{id}/{token}", h.VerifyEmail)

	// Protected routes (require auth)
	authMw := mw.Auth(tokenSvc)

	mux.Handle("GET /users/{$}", authMw(http.HandlerFunc(h.ListUsers)))
	mux.Handle("POST /users/{$}", authMw(http.HandlerFunc(h.CreateUser)))
	mux.Handle("POST /users/search", authMw(http.HandlerFunc(h.SearchUsers)))
	mux.Handle("POST /users/date", authMw(http.HandlerFunc(h.SearchUsersByDate)))
	mux.Handle("GET /users/{id}", authMw(http.HandlerFunc(h.GetUser)))
	mux.Handle("PUT /users/{id}", authMw(http.HandlerFunc(h.UpdateUser)))
	mux.Handle("DELETE /users/{id}", authMw(http.HandlerFunc(h.DeleteUser)))
	mux.Handle("POST /users/{id}/unlock", authMw(http.HandlerFunc(h.UnlockUser)))
	mux.Handle("GET /users/{id}/audit", authMw(http.HandlerFunc(h.GetUserAudit)))

	// Apply middleware stack
	var root http.Handler = mux

	// Security headers
	root = mw.SecurityHeaders(root)

	// Request logging
	root = mw.Logger(root)

	// Request ID
	root = mw.RequestID(root)

	// Panic recovery (outermost)
	root = mw.Recover(root)

	return root
}
