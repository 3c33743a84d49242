// internal/api/http/quizzes.go
package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/practice-exam/internal/catalog"
)

// envelope is the response shape every /api route returns.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, envelope{Success: false, Error: msg})
}

func ListQuizzesHandler(store catalog.Reader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := store.ListQuizzes(r.Context())
		if err != nil {
			log.Printf("list quizzes: %v", err)
			writeError(w, http.StatusInternalServerError, "Failed to fetch quizzes")
			return
		}
		if list == nil {
			list = []catalog.QuizSummary{}
		}
		writeData(w, list)
	}
}

func GetQuizHandler(store catalog.Reader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		examID := strings.TrimSpace(chi.URLParam(r, "examID"))
		if examID == "" {
			writeError(w, http.StatusNotFound, "Quiz not found")
			return
		}
		quiz, err := store.GetQuizDetail(r.Context(), examID)
		switch {
		case errors.Is(err, catalog.ErrNotFound):
			writeError(w, http.StatusNotFound, "Quiz not found")
		case err != nil:
			log.Printf("get quiz %s: %v", examID, err)
			writeError(w, http.StatusInternalServerError, "Failed to fetch quiz")
		default:
			writeData(w, quiz)
		}
	}
}

type healthResponse struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

func HealthHandler(now func() time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, healthResponse{
			Success:   true,
			Message:   "API server is running",
			Timestamp: now().UTC(),
		})
	}
}
