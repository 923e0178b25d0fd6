package api

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/render"
	"github.com/squarefactory/lsf-submit/scheduler"
)

func Health(w http.ResponseWriter, r *http.Request, lsf *scheduler.LSF) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := lsf.HealthCheck(ctx); err != nil {
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, Error{Error: err.Error()})
		log.Printf("health failed: %s", err)
		return
	}
	render.JSON(w, r, OK{"ok"})
}
