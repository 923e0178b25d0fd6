package api

import "github.com/squarefactory/lsf-submit/scheduler"

type Error struct {
	Error string `json:"error"`
	Data  string `json:"data,omitempty"`
}

type OK struct {
	Data string `json:"data"`
}

type SubmitRequest struct {
	// Script is piped to bsub unmodified.
	Script string `json:"script"`
	// Name of the job. Overrides -J when set.
	Name string `json:"name,omitempty"`
	// Options are call-time overrides, applied in document order.
	Options *scheduler.Options `json:"options,omitempty"`
}

type OptionsResponse struct {
	Options *scheduler.Options `json:"options"`
	Command string             `json:"command"`
}
