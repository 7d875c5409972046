package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/mmcdole/lineup/internal/catalog"
	"github.com/mmcdole/lineup/internal/domain"
	"github.com/mmcdole/lineup/internal/league"
)

// Error codes returned in the error body
const (
	codeBadRequest = "BAD_REQUEST"
	codeNotFound   = "NOT_FOUND"
	codeInternal   = "INTERNAL_ERROR"
)

// requestTimeout bounds a whole request, including upstream retries.
const requestTimeout = 2 * time.Minute

// Handler serves the lineup report API
type Handler struct {
	leagues *league.Service
	players *catalog.Service
	logger  *slog.Logger
}

// NewHandler creates a new API handler
func NewHandler(leagues *league.Service, players *catalog.Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{leagues: leagues, players: players, logger: logger}
}

// Router builds the chi router with middleware and every route mounted.
func (h *Handler) Router(corsOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(Logger(h.logger))
	r.Use(Recoverer(h.logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		// {user} is a handle for the lookup route and a user ID everywhere else
		r.Get("/users/{user}", withTimeout(h.resolveUser))
		r.Get("/users/{user}/status", withTimeout(h.statusReport))
		r.Get("/users/{user}/top-players", withTimeout(h.topPlayers))
		r.Get("/users/{user}/player-details", withTimeout(h.playerDetails))

		r.Get("/players/search", withTimeout(h.searchPlayers))

		r.Get("/catalog/info", h.catalogInfo)
		r.Post("/catalog/refresh", withTimeout(h.refreshCatalog))
	})

	return r
}

func withTimeout(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
		defer cancel()
		next(w, r.WithContext(ctx))
	}
}

func (h *Handler) resolveUser(w http.ResponseWriter, r *http.Request) {
	handle := strings.TrimSpace(chi.URLParam(r, "user"))
	if handle == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "handle required")
		return
	}
	userID, err := h.leagues.ResolveUser(r.Context(), handle)
	if err != nil {
		h.handleSvcError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user_id": userID})
}

func (h *Handler) statusReport(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user")
	q := r.URL.Query()
	result := h.leagues.StatusReport(r.Context(), userID, queryBool(q.Get("refresh")), queryBool(q.Get("showBestBall")))
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) topPlayers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.leagues.TopPlayers(r.Context(), chi.URLParam(r, "user")))
}

func (h *Handler) playerDetails(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid player name")
		return
	}
	details, err := h.leagues.PlayerDetails(r.Context(), chi.URLParam(r, "user"), name)
	if err != nil {
		h.handleSvcError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

func (h *Handler) searchPlayers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	writeJSON(w, http.StatusOK, h.players.Search(r.Context(), q.Get("query"), q["positions"]))
}

func (h *Handler) catalogInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.players.Info(r.Context()))
}

func (h *Handler) refreshCatalog(w http.ResponseWriter, r *http.Request) {
	players, err := h.players.Refresh(r.Context())
	if err != nil {
		h.handleSvcError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "players": len(players)})
}

func queryBool(v string) bool {
	return strings.EqualFold(strings.TrimSpace(v), "true")
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{"code": code, "message": message},
	})
}

func (h *Handler) handleSvcError(w http.ResponseWriter, err error) {
	var notFound *catalog.NotFoundError
	switch {
	case errors.As(err, &notFound):
		suggestions := notFound.Suggestions
		if suggestions == nil {
			suggestions = []string{}
		}
		writeJSON(w, http.StatusNotFound, map[string]any{
			"error":       map[string]any{"code": codeNotFound, "message": err.Error()},
			"suggestions": suggestions,
		})
	case errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrPlayerNotFound):
		writeError(w, http.StatusNotFound, codeNotFound, err.Error())
	default:
		h.logger.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, codeInternal, err.Error())
	}
}
