package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/squarefactory/lsf-submit/scheduler"
)

func NewRouter(lsf *scheduler.LSF, timeout time.Duration) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)

	r.Post("/submit", func(w http.ResponseWriter, r *http.Request) {
		Submit(w, r, lsf, timeout)
	})
	r.Get("/options", func(w http.ResponseWriter, r *http.Request) {
		Options(w, r, lsf)
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		Health(w, r, lsf)
	})

	return r
}
