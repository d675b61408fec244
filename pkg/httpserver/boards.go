package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/tradeboard/rewards-core/internal/scoring"
	"go.uber.org/zap"
)

// BoardReader is the read-side of the score manager consumed by the
// dashboard endpoints.
type BoardReader interface {
	Leaderboard(ctx context.Context, window scoring.Window, limit int64) ([]scoring.Entry, error)
	CategoryLeaderboard(ctx context.Context, category string, limit int64) ([]scoring.Entry, error)
	Rank(ctx context.Context, window scoring.Window, actorID string) (scoring.Entry, error)
	History(ctx context.Context, actorID string, limit int64) ([]scoring.Record, error)
}

// BoardHandler serves leaderboard and history reads.
type BoardHandler struct {
	boards BoardReader
	logger *zap.Logger
}

// NewBoardHandler creates a new board handler.
func NewBoardHandler(boards BoardReader, logger *zap.Logger) *BoardHandler {
	return &BoardHandler{boards: boards, logger: logger}
}

// HandleLeaderboard serves GET /api/leaderboard?window=...&category=...&limit=N.
// A category query overrides the window.
func (h *BoardHandler) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r.URL.Query().Get("limit"))

	var entries []scoring.Entry
	var err error
	if category := r.URL.Query().Get("category"); category != "" {
		entries, err = h.boards.CategoryLeaderboard(r.Context(), category, limit)
	} else {
		window := scoring.Window(r.URL.Query().Get("window"))
		if window == "" {
			window = scoring.WindowLifetime
		}
		entries, err = h.boards.Leaderboard(r.Context(), window, limit)
	}

	if err != nil {
		h.logger.Error("leaderboard-read-failed", zap.Error(err))
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, map[string]interface{}{"entries": entries})
}

// HandleRank serves GET /api/actors/{actorID}/rank?window=...
func (h *BoardHandler) HandleRank(w http.ResponseWriter, r *http.Request) {
	actorID := chi.URLParam(r, "actorID")
	window := scoring.Window(r.URL.Query().Get("window"))
	if window == "" {
		window = scoring.WindowLifetime
	}

	entry, err := h.boards.Rank(r.Context(), window, actorID)
	if errors.Is(err, scoring.ErrNotRanked) {
		writeError(w, http.StatusNotFound, "actor not ranked")
		return
	}
	if err != nil {
		h.logger.Error("rank-read-failed", zap.Error(err))
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, entry)
}

// HandleHistory serves GET /api/actors/{actorID}/history?limit=N.
func (h *BoardHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	actorID := chi.URLParam(r, "actorID")
	limit := parseLimit(r.URL.Query().Get("limit"))

	records, err := h.boards.History(r.Context(), actorID, limit)
	if err != nil {
		h.logger.Error("history-read-failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, map[string]interface{}{"records": records})
}

func parseLimit(raw string) int64 {
	if raw == "" {
		return 10
	}
	limit, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || limit <= 0 {
		return 10
	}
	if limit > 100 {
		return 100
	}
	return limit
}

func writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
