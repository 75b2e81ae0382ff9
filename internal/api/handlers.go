package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"ecoroam/internal/audio"
	"ecoroam/internal/questions"
)

const maxFlowBodyBytes = 4 << 10

type routerHandlers struct {
	questions questions.Source
	music     *audio.Music
}

// Question generation flows. Request bodies match what HTTPSource sends, so
// a client can point QUESTION_API_URL at this server's /api/flows.

func (h *routerHandlers) handleTriviaFlow(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Topic string `json:"topic"`
	}
	if !decodeFlow(w, r, &req) {
		return
	}
	q, err := h.questions.Trivia(r.Context(), strings.TrimSpace(req.Topic))
	h.writeQuestion(w, "trivia", q, err)
}

func (h *routerHandlers) handleCauseEffectFlow(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EconomicCondition string `json:"economicCondition"`
	}
	if !decodeFlow(w, r, &req) {
		return
	}
	q, err := h.questions.CauseEffect(r.Context(), strings.TrimSpace(req.EconomicCondition))
	h.writeQuestion(w, "cause_effect", q, err)
}

func decodeFlow(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxFlowBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return false
	}
	return true
}

func (h *routerHandlers) writeQuestion(w http.ResponseWriter, category string, q questions.Question, err error) {
	if err == nil {
		err = q.Validate()
	}
	RecordQuestionFetch(category, err)
	if err != nil {
		log.Printf("❌ Question flow %s failed: %v", category, err)
		writeError(w, "Failed to generate question.", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

// Sound cues

func handleListCues(w http.ResponseWriter, r *http.Request) {
	names := make([]string, 0, len(audio.Cues()))
	for _, c := range audio.Cues() {
		names = append(names, c.String())
	}
	writeJSON(w, http.StatusOK, names)
}

func handleCue(w http.ResponseWriter, r *http.Request) {
	cue, err := audio.ParseCue(chi.URLParam(r, "cue"))
	if err != nil {
		writeError(w, "Unknown sound cue", http.StatusNotFound)
		return
	}
	data, err := audio.Render(cue)
	if err != nil {
		log.Printf("❌ Sound cue %s failed: %v", cue, err)
		writeError(w, "Failed to render sound", http.StatusInternalServerError)
		return
	}
	writeWAV(w, data, "public, max-age=86400")
}

func (h *routerHandlers) handleMusic(w http.ResponseWriter, r *http.Request) {
	if h.music == nil {
		writeError(w, "No background music configured", http.StatusNotFound)
		return
	}
	data, err := h.music.WAV()
	if err != nil {
		writeError(w, "Background music unavailable", http.StatusServiceUnavailable)
		return
	}
	writeWAV(w, data, "public, max-age=3600")
}

func writeWAV(w http.ResponseWriter, data []byte, cache string) {
	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", cache)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Helper functions (package-level for reuse)

func writeJSON(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(data)
}

// writeError uses the same {"message": ...} body as the leaderboard routes
func writeError(w http.ResponseWriter, message string, code int) {
	writeJSON(w, code, map[string]string{"message": message})
}
