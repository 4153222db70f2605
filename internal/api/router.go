package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/starford/noted/internal/noteservice"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	AllowedOrigins []string
	AllowedMethods []string
	// Events, if non-nil, is mounted at GET /events.
	Events http.Handler
	// Logger receives access logs. Defaults to slog.Default().
	Logger *slog.Logger
}

// NewRouter creates a chi router with every route and middleware mounted.
func NewRouter(svc *noteservice.Service, opts RouterOptions) chi.Router {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: opts.AllowedMethods,
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/", h.Health)
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
	})
	r.Get("/health/ready", h.Ready)

	// Notes CRUD.
	r.Post("/add-note", h.CreateNote)
	r.Get("/notes", h.ListNotes)
	r.Delete("/delete-note/{id}", h.DeleteNote)
	r.Put("/edit-note/{id}", h.UpdateNote)

	if opts.Events != nil {
		r.Get("/events", opts.Events.ServeHTTP)
	}

	return r
}
