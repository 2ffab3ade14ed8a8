package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"quizlink-service/internal/app"
)

// DocumentLoader returns the raw quiz document served as the static asset.
type DocumentLoader interface {
	LoadDocument(ctx context.Context, name string) (map[string]any, error)
}

// Options wires the shells into the quiz use cases.
type Options struct {
	Service   *app.QuizService
	Documents DocumentLoader
	// Stores keeps answer records server-side. Nil keeps them in browser cookies
	// and disables the websocket shell, which cannot set cookies.
	Stores         app.AnswerStores
	AllowedOrigins []string
	Logger         *slog.Logger
}

// NewRouter mounts the page, API, asset and websocket routes.
func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	resolve := CookieStores()
	if opts.Stores != nil {
		resolve = ServerSideStores(opts.Stores)
	}
	pages := NewPageHandler(opts.Service, resolve, log)
	api := NewAPIHandler(opts.Service, resolve, log)
	assets := NewAssetHandler(opts.Documents, log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, requestLogger(log), middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Get("/", pages.ServeView)
	r.Post("/answer", pages.ServeAnswer)

	r.Group(func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type"},
			MaxAge:         300,
		}))
		r.Get("/quiz/{file}", assets.ServeDocument)
		r.Get("/api/state", api.ServeState)
		r.Post("/api/answer", api.ServeAnswer)
	})

	if opts.Stores != nil {
		ws := NewWSHandler(opts.Service, opts.Stores, log)
		r.Get("/ws", ws.ServeWS)
	}
	return r
}

func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Debug("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
