// Package worker hosts the asynq handler registry for background analysis
// jobs.
package worker

import (
	"context"

	"github.com/hibiken/asynq"
)

// Mux collects task handlers before the asynq server starts; today that is
// only the analysis job runner.
type Mux struct{ mux *asynq.ServeMux }

func NewMux() *Mux { return &Mux{mux: asynq.NewServeMux()} }

// HandleFunc binds a task type to its handler.
func (m *Mux) HandleFunc(taskType string, h func(ctx context.Context, task *asynq.Task) error) {
	m.mux.HandleFunc(taskType, h)
}

func (m *Mux) Mux() *asynq.ServeMux { return m.mux }
