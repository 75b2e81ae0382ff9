package leaderboard

import (
	"encoding/json"
	"errors"
	"log"
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 4 << 10

// Routes returns the handler for GET / and POST /, meant to be mounted at
// /leaderboard (or /api/leaderboard)
func Routes(b *Board) http.Handler {
	h := &routeHandlers{board: b}
	r := chi.NewRouter()
	r.Get("/", h.list)
	r.Post("/", h.submit)
	return r
}

type routeHandlers struct {
	board *Board
}

// submitRequest keeps score raw so a non-numeric value is a 400, not a
// decode error
type submitRequest struct {
	Name  string          `json:"name"`
	Score json.RawMessage `json:"score"`
}

func (h *routeHandlers) list(w http.ResponseWriter, r *http.Request) {
	entries, err := h.board.List(r.Context())
	if err != nil {
		log.Printf("❌ Leaderboard read failed: %v", err)
		writeError(w, "Failed to retrieve leaderboard data.", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(entries))
}

func (h *routeHandlers) submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid name or score", http.StatusBadRequest)
		return
	}
	score, err := parseScore(req.Score)
	if err != nil {
		writeError(w, "Invalid name or score", http.StatusBadRequest)
		return
	}

	entries, err := h.board.Submit(r.Context(), req.Name, score)
	switch {
	case errors.Is(err, ErrNameTooLong):
		writeError(w, "Name too long (max 20 chars)", http.StatusBadRequest)
	case errors.Is(err, ErrNameRequired), errors.Is(err, ErrInvalidScore):
		writeError(w, "Invalid name or score", http.StatusBadRequest)
	case err != nil:
		log.Printf("❌ Leaderboard update failed: %v", err)
		writeError(w, "Failed to update leaderboard.", http.StatusInternalServerError)
	default:
		writeJSON(w, http.StatusCreated, nonNil(entries))
	}
}

// parseScore accepts a non-negative JSON number with no fractional part
func parseScore(raw json.RawMessage) (int, error) {
	if len(raw) == 0 {
		return 0, ErrInvalidScore
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, ErrInvalidScore
	}
	if f != math.Trunc(f) || f < 0 || f > math.MaxInt32 {
		return 0, ErrInvalidScore
	}
	return int(f), nil
}

func nonNil(entries []Entry) []Entry {
	if entries == nil {
		return []Entry{}
	}
	return entries
}

func writeJSON(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, message string, code int) {
	writeJSON(w, code, map[string]string{"message": message})
}
