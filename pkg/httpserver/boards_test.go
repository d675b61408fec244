package httpserver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tradeboard/rewards-core/internal/scoring"
	"go.uber.org/zap"
)

type fakeBoards struct {
	entries    []scoring.Entry
	records    []scoring.Record
	rankEntry  scoring.Entry
	err        error
	lastWindow scoring.Window
	lastCat    string
	lastLimit  int64
}

func (f *fakeBoards) Leaderboard(_ context.Context, window scoring.Window, limit int64) ([]scoring.Entry, error) {
	f.lastWindow, f.lastLimit = window, limit
	return f.entries, f.err
}

func (f *fakeBoards) CategoryLeaderboard(_ context.Context, category string, limit int64) ([]scoring.Entry, error) {
	f.lastCat, f.lastLimit = category, limit
	return f.entries, f.err
}

func (f *fakeBoards) Rank(_ context.Context, window scoring.Window, _ string) (scoring.Entry, error) {
	f.lastWindow = window
	return f.rankEntry, f.err
}

func (f *fakeBoards) History(_ context.Context, _ string, limit int64) ([]scoring.Record, error) {
	f.lastLimit = limit
	return f.records, f.err
}

func boardRouter(boards BoardReader) http.Handler {
	handler := NewBoardHandler(boards, zap.NewNop())
	r := chi.NewRouter()
	r.Get("/api/leaderboard", handler.HandleLeaderboard)
	r.Get("/api/actors/{actorID}/history", handler.HandleHistory)
	r.Get("/api/actors/{actorID}/rank", handler.HandleRank)
	return r
}

func TestHandleLeaderboard(t *testing.T) {
	boards := &fakeBoards{entries: []scoring.Entry{
		{ActorID: "alice", Score: 150, Rank: 1},
		{ActorID: "bob", Score: 90, Rank: 2},
	}}
	router := boardRouter(boards)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/leaderboard?window=day&limit=5", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, scoring.WindowDay, boards.lastWindow)
	assert.Equal(t, int64(5), boards.lastLimit)

	var payload struct {
		Entries []scoring.Entry `json:"entries"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&payload))
	require.Len(t, payload.Entries, 2)
	assert.Equal(t, "alice", payload.Entries[0].ActorID)
}

func TestHandleLeaderboard_DefaultsToLifetime(t *testing.T) {
	boards := &fakeBoards{}
	router := boardRouter(boards)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/leaderboard", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, scoring.WindowLifetime, boards.lastWindow)
	assert.Equal(t, int64(10), boards.lastLimit)
}

func TestHandleLeaderboard_CategoryOverridesWindow(t *testing.T) {
	boards := &fakeBoards{}
	router := boardRouter(boards)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/leaderboard?window=day&category=trading", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "trading", boards.lastCat)
	assert.Empty(t, boards.lastWindow)
}

func TestHandleLeaderboard_ReadError(t *testing.T) {
	boards := &fakeBoards{err: errors.New("bad window")}
	router := boardRouter(boards)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/leaderboard?window=bogus", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleRank(t *testing.T) {
	boards := &fakeBoards{rankEntry: scoring.Entry{ActorID: "alice", Score: 150, Rank: 3}}
	router := boardRouter(boards)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/actors/alice/rank?window=month", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, scoring.WindowMonth, boards.lastWindow)

	var entry scoring.Entry
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&entry))
	assert.Equal(t, int64(3), entry.Rank)
}

func TestHandleRank_NotRanked(t *testing.T) {
	boards := &fakeBoards{err: scoring.ErrNotRanked}
	router := boardRouter(boards)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/actors/nobody/rank", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleHistory(t *testing.T) {
	boards := &fakeBoards{records: []scoring.Record{
		{Kind: scoring.KindTrade, Score: 50, Timestamp: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)},
	}}
	router := boardRouter(boards)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/actors/alice/history?limit=20", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(20), boards.lastLimit)

	var payload struct {
		Records []scoring.Record `json:"records"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&payload))
	require.Len(t, payload.Records, 1)
	assert.Equal(t, scoring.KindTrade, payload.Records[0].Kind)
}

func TestParseLimit(t *testing.T) {
	assert.Equal(t, int64(10), parseLimit(""))
	assert.Equal(t, int64(10), parseLimit("junk"))
	assert.Equal(t, int64(10), parseLimit("-5"))
	assert.Equal(t, int64(10), parseLimit("0"))
	assert.Equal(t, int64(25), parseLimit("25"))
	assert.Equal(t, int64(100), parseLimit("5000"))
}
