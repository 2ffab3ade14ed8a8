package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"quizlink-service/internal/domain"
)

// AssetHandler serves quiz documents at /quiz/<name>.json. Names may contain dots.
type AssetHandler struct {
	docs DocumentLoader
	log  *slog.Logger
}

func NewAssetHandler(docs DocumentLoader, log *slog.Logger) *AssetHandler {
	return &AssetHandler{docs: docs, log: log}
}

func (h *AssetHandler) ServeDocument(w http.ResponseWriter, r *http.Request) {
	name, ok := strings.CutSuffix(chi.URLParam(r, "file"), ".json")
	if !ok || name == "" {
		http.NotFound(w, r)
		return
	}
	doc, err := h.docs.LoadDocument(r.Context(), name)
	if errors.Is(err, domain.ErrQuizNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.log.Error("load quiz document", "testName", name, "err", err)
		http.Error(w, "quiz unavailable", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}
