package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/render"
	"github.com/squarefactory/lsf-submit/scheduler"
	"github.com/squarefactory/lsf-submit/utils"
)

// maxRequestBytes caps a submit body, script included.
const maxRequestBytes = 8 << 20

const jobNamePrefix = "job-"

// Submit pipes the request script to bsub. The shared client's options are
// only read here, never mutated.
func Submit(w http.ResponseWriter, r *http.Request, lsf *scheduler.LSF, timeout time.Duration) {
	var req SubmitRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		render.Status(r, status)
		render.JSON(w, r, Error{Error: err.Error()})
		log.Printf("failed to decode submit request: %s", err)
		return
	}
	if len(req.Script) == 0 {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, Error{Error: "script not defined"})
		return
	}

	// Jobs get a random name unless the request or the configuration sets one.
	name := req.Name
	if _, ok := lsf.EffectiveOptions(req.Options).Get("J"); !ok && name == "" {
		name = jobNamePrefix + utils.GenerateRandomString(8)
	}
	overrides := []*scheduler.Options{req.Options}
	if name != "" {
		overrides = append(overrides, scheduler.NewOptions(scheduler.Option{
			Key:   "J",
			Value: scheduler.Arg(name),
		}))
	}

	ctx := r.Context()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	out, err := lsf.Submit(ctx, []byte(req.Script), overrides...)
	if err != nil {
		render.Status(r, statusFor(err))
		render.JSON(w, r, Error{Error: err.Error(), Data: string(out)})
		return
	}
	render.JSON(w, r, OK{string(out)})
}

// Options shows what Submit would run with no call-time overrides.
func Options(w http.ResponseWriter, r *http.Request, lsf *scheduler.LSF) {
	cmd, err := lsf.Command()
	if err != nil {
		render.Status(r, statusFor(err))
		render.JSON(w, r, Error{Error: err.Error()})
		return
	}
	render.JSON(w, r, OptionsResponse{
		Options: lsf.EffectiveOptions(),
		Command: cmd,
	})
}

func statusFor(err error) int {
	var escapeErr *scheduler.EscapeError
	var exitErr *scheduler.ExitError
	switch {
	case errors.As(err, &escapeErr):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &exitErr):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
