package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/resonance/internal/api/handler"
	"github.com/mcoot/resonance/internal/api/middleware"
	"github.com/mcoot/resonance/internal/api/response"
	"github.com/mcoot/resonance/internal/api/sse"
	"github.com/mcoot/resonance/internal/services/identity"
	"github.com/mcoot/resonance/internal/services/player"
	"github.com/mcoot/resonance/internal/services/settings"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger          *slog.Logger
	IdentityService *identity.Service
	SettingsStore   *settings.Store
	PlayerMachine   *player.Machine
	Hub             *sse.Hub
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	identityHandler := handler.NewIdentityHandler(cfg.IdentityService)
	settingsHandler := handler.NewSettingsHandler(cfg.SettingsStore)
	playerHandler := handler.NewPlayerHandler(cfg.PlayerMachine)
	eventsHandler := handler.NewEventsHandler(cfg.Hub, cfg.PlayerMachine, cfg.SettingsStore, cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Logging(cfg.Logger))
	api.Use(middleware.Recovery(cfg.Logger))
	api.Use(middleware.Fingerprint())

	// Identity routes
	api.HandleFunc("/identity", identityHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/identity", identityHandler.Commit).Methods(http.MethodPut)

	// Settings routes
	api.HandleFunc("/settings", settingsHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/settings", settingsHandler.Update).Methods(http.MethodPatch)
	api.HandleFunc("/settings/reset", settingsHandler.Reset).Methods(http.MethodPost)

	// Player routes
	api.HandleFunc("/player", playerHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/player/intents", playerHandler.Dispatch).Methods(http.MethodPost)

	// Event stream for views
	api.HandleFunc("/events", eventsHandler.Stream).Methods(http.MethodGet)

	// Health check endpoint
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.Health{Status: "ok"})
}
