// cmd/router-server/api.go
package main

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"tourism-router/internal/common/logger"
	"tourism-router/internal/models"
	"tourism-router/internal/router"
)

const maxBodyBytes = 64 * 1024

type apiServer struct {
	router *router.Router
	logger logger.Logger
}

type askRequest struct {
	Text      string   `json:"text"`
	SessionID string   `json:"sessionId"`
	UserID    string   `json:"userId,omitempty"`
	History   []string `json:"history,omitempty"`
}

type feedbackRequest struct {
	SessionID  string `json:"sessionId"`
	QuestionID string `json:"questionId"`
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	Rating     string `json:"rating"`
	Correction string `json:"correction,omitempty"`
}

func (s *apiServer) register(mux *http.ServeMux) {
	mux.HandleFunc("/api/ask", s.handleAsk)
	mux.HandleFunc("/api/feedback", s.handleFeedback)
	mux.HandleFunc("/api/feedback/stats", s.handleFeedbackStats)
	mux.HandleFunc("/api/learning/export", s.handleLearningExport)
	mux.HandleFunc("/api/learning/import", s.handleLearningImport)
}

func (s *apiServer) handleAsk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "use POST")
		return
	}

	var req askRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Text == "" || req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "text and sessionId are required")
		return
	}

	answer, err := s.router.Ask(r.Context(), models.Query{
		Text:      req.Text,
		UserID:    req.UserID,
		SessionID: req.SessionID,
		History:   req.History,
		Timestamp: time.Now(),
	})
	if err != nil {
		// only context cancellation reaches here
		writeError(w, http.StatusRequestTimeout, "request cancelled")
		return
	}

	writeJSON(w, http.StatusOK, answer)
}

func (s *apiServer) handleFeedback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "use POST")
		return
	}

	var req feedbackRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rating := models.Rating(req.Rating)
	switch rating {
	case models.RatingPositive, models.RatingNegative, models.RatingNeutral:
	default:
		writeError(w, http.StatusBadRequest, "rating must be positive, negative or neutral")
		return
	}

	id := s.router.RegisterFeedback(req.SessionID, req.QuestionID, req.Question, req.Answer, rating, req.Correction)
	writeJSON(w, http.StatusAccepted, map[string]string{"feedbackId": id})
}

func (s *apiServer) handleFeedbackStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "use GET")
		return
	}
	writeJSON(w, http.StatusOK, s.router.FeedbackStats())
}

func (s *apiServer) handleLearningExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "use GET")
		return
	}
	writeJSON(w, http.StatusOK, s.router.ExportLearning())
}

func (s *apiServer) handleLearningImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "use POST")
		return
	}

	raw, err := io.ReadAll(io.LimitReader(r.Body, 4*1024*1024))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable body")
		return
	}

	if err := s.router.ImportLearning(raw); err != nil {
		s.logger.Warn("learning import rejected", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusUnprocessableEntity, "payload failed validation")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "imported"})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
