// Package api serves the read-only HTTP query surface over the message
// store: paged room history and content search. It is consumed by the web
// client alongside the WebSocket stream.
package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/commune/chat-app/internal/chat"
)

// Defaults for the history endpoint.
const (
	DefaultHistoryLimit = 50
)

// MessageReader is the store surface the API reads from.
type MessageReader interface {
	History(ctx context.Context, room string, limit, skip int) ([]chat.Message, error)
	Search(ctx context.Context, query, room string) ([]chat.Message, error)
}

// Handler serves the message query endpoints.
type Handler struct {
	messages MessageReader
}

// NewHandler creates a Handler backed by the given reader.
func NewHandler(messages MessageReader) *Handler {
	return &Handler{messages: messages}
}

// Register mounts the query endpoints on the given mux-style registrar.
func (h *Handler) Register(mount func(pattern string, handler http.Handler)) {
	mount("/api/messages/history", http.HandlerFunc(h.handleHistory))
	mount("/api/messages/search", http.HandlerFunc(h.handleSearch))
}

// messageView is the JSON shape returned by both endpoints.
type messageView struct {
	ID        string          `json:"id"`
	Sender    string          `json:"sender"`
	Content   string          `json:"content"`
	Room      string          `json:"room"`
	Image     string          `json:"image,omitempty"`
	Reactions []chat.Reaction `json:"reactions"`
	Timestamp int64           `json:"timestamp"`
}

func toViews(msgs []chat.Message) []messageView {
	views := make([]messageView, 0, len(msgs))
	for _, m := range msgs {
		reactions := m.Reactions
		if reactions == nil {
			reactions = []chat.Reaction{}
		}
		views = append(views, messageView{
			ID:        m.ID,
			Sender:    m.Sender,
			Content:   m.Content,
			Room:      m.Room,
			Image:     m.Image,
			Reactions: reactions,
			Timestamp: m.CreatedAt.UnixMilli(),
		})
	}
	return views
}

// handleHistory serves GET /api/messages/history?room=&limit=&skip=.
// Results are oldest-first within the requested page.
func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	room := r.URL.Query().Get("room")
	if room == "" {
		room = chat.RoomGlobal
	}
	limit := queryInt(r, "limit", DefaultHistoryLimit)
	skip := queryInt(r, "skip", 0)

	msgs, err := h.messages.History(r.Context(), room, limit, skip)
	if err != nil {
		log.Printf("[api] history room=%s: %v", room, err)
		writeError(w, http.StatusInternalServerError, "failed to load history")
		return
	}
	writeJSON(w, toViews(msgs))
}

// handleSearch serves GET /api/messages/search?q=&room=. Queries shorter
// than two characters produce an empty result.
func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query().Get("q")
	room := r.URL.Query().Get("room")
	if room == "" {
		room = chat.RoomGlobal
	}

	msgs, err := h.messages.Search(r.Context(), query, room)
	if err != nil {
		log.Printf("[api] search room=%s: %v", room, err)
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}
	writeJSON(w, toViews(msgs))
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
