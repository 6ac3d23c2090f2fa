package api

import (
	"net/http"
	"time"

	"github.com/mlakar/foundling/internal/embed"
	"github.com/mlakar/foundling/internal/match"
	"github.com/mlakar/foundling/internal/notify"
	"github.com/mlakar/foundling/internal/store"
)

// Deps holds the wired services the router hands to its handlers.
type Deps struct {
	Store        *store.Store
	Engine       *match.Engine
	Embedder     embed.Service      // nil when no provider is configured
	Notifier     *notify.Dispatcher // nil when notifications are disabled
	JWTSecret    string
	EmbedTimeout time.Duration
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(deps Deps) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{Store: deps.Store, JWTSecret: deps.JWTSecret}
	itemsHandler := &ItemsHandler{
		Store:        deps.Store,
		Engine:       deps.Engine,
		Embedder:     deps.Embedder,
		Notifier:     deps.Notifier,
		EmbedTimeout: deps.EmbedTimeout,
	}

	authMW := AuthMiddleware(deps.JWTSecret)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Public: account creation, login and browsing.
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("GET /api/items", itemsHandler.List)
	mux.HandleFunc("GET /api/items/similar", itemsHandler.Similar)

	// Authenticated routes.
	mux.Handle("GET /api/auth/verify", authMW(http.HandlerFunc(authHandler.Verify)))
	mux.Handle("POST /api/items", authMW(http.HandlerFunc(itemsHandler.Create)))
	mux.Handle("POST /api/items/{id}/found", authMW(http.HandlerFunc(itemsHandler.MarkFound)))

	return mux
}
