package http

import (
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"quizlink-service/internal/app"
	"quizlink-service/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// PageHandler is the HTML shell: it renders whichever view the URL derives to
// and turns answer clicks into redirects to the next URL.
type PageHandler struct {
	service *app.QuizService
	stores  StoreResolver
	log     *slog.Logger
}

func NewPageHandler(service *app.QuizService, stores StoreResolver, log *slog.Logger) *PageHandler {
	return &PageHandler{service: service, stores: stores, log: log}
}

// ServeView renders the state derived from the query string.
func (h *PageHandler) ServeView(w http.ResponseWriter, r *http.Request) {
	state := h.service.View(r.Context(), r.URL.Query())
	h.render(w, state)
}

// ServeAnswer records the clicked answer and redirects to the next state,
// the server-side counterpart of pushing a history entry.
func (h *PageHandler) ServeAnswer(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	name := r.PostForm.Get(app.ParamTestName)
	questionIdx := formInt(r.PostForm.Get("questionIdx"))
	answerIdx := formInt(r.PostForm.Get("answerIdx"))

	store := h.stores(w, r)
	next, _, err := h.service.Answer(r.Context(), store, name, questionIdx, answerIdx)
	if err != nil {
		// Failures are never shown; fall back to the view the user came from.
		if !errors.Is(err, domain.ErrQuizNotFound) && !errors.Is(err, domain.ErrQuestionNotFound) {
			h.log.Warn("answer not recorded", "testName", name, "question", questionIdx, "err", err)
		}
		back := url.Values{}
		back.Set(app.ParamTestName, name)
		back.Set(app.ParamIndex, strconv.Itoa(questionIdx))
		http.Redirect(w, r, "/?"+back.Encode(), http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/?"+next.Encode(), http.StatusSeeOther)
}

func (h *PageHandler) render(w http.ResponseWriter, state app.State) {
	name := "empty"
	switch state.View {
	case app.ViewQuestion:
		name = "question"
	case app.ViewResult:
		name = "result"
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := pageTemplates.ExecuteTemplate(w, name, state); err != nil {
		h.log.Error("render page", "view", name, "err", err)
	}
}

// formInt reads a form integer; anything unparsable counts as 0.
func formInt(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return n
}
