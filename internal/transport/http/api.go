package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"quizlink-service/internal/app"
	"quizlink-service/internal/domain"
)

// APIHandler exposes the state machine as JSON for script-driven shells.
type APIHandler struct {
	service *app.QuizService
	stores  StoreResolver
	log     *slog.Logger
}

func NewAPIHandler(service *app.QuizService, stores StoreResolver, log *slog.Logger) *APIHandler {
	return &APIHandler{service: service, stores: stores, log: log}
}

type answerRequest struct {
	TestName    string `json:"testName"`
	QuestionIdx int    `json:"questionIdx"`
	AnswerIdx   int    `json:"answerIdx"`
}

type transition struct {
	Query string    `json:"query"`
	State app.State `json:"state"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeState returns the state derived from the request's query string.
func (h *APIHandler) ServeState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.View(r.Context(), r.URL.Query()))
}

// ServeAnswer submits an answer and returns the next query and its state.
func (h *APIHandler) ServeAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Message: "invalid answer payload"})
		return
	}

	store := h.stores(w, r)
	next, state, err := h.service.Answer(r.Context(), store, req.TestName, req.QuestionIdx, req.AnswerIdx)
	switch {
	case errors.Is(err, domain.ErrQuizNotFound):
		writeJSON(w, http.StatusNotFound, errorPayload{Message: err.Error()})
		return
	case errors.Is(err, domain.ErrQuestionNotFound):
		writeJSON(w, http.StatusBadRequest, errorPayload{Message: err.Error()})
		return
	case err != nil:
		h.log.Error("answer not recorded", "testName", req.TestName, "err", err)
		writeJSON(w, http.StatusInternalServerError, errorPayload{Message: "answer not recorded"})
		return
	}
	writeJSON(w, http.StatusOK, transition{Query: next.Encode(), State: state})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
