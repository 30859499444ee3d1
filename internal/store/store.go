// Package store persists modelling runs and their score reports.
package store

import (
	"context"
	"encoding/json"
	"time"
)

// Run kinds.
const (
	RunKindFit      = "fit"
	RunKindCrossval = "crossval"
	RunKindPredict  = "predict"
)

// RunStatus tracks a run through its lifecycle.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run records one fit, cross-validation, or prediction invocation.
type Run struct {
	ID        string          `json:"id"`
	Kind      string          `json:"kind"`
	Dataset   string          `json:"dataset"`
	Model     json.RawMessage `json:"model,omitempty"`
	Report    json.RawMessage `json:"report,omitempty"`
	Status    RunStatus       `json:"status"`
	Error     string          `json:"error,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Kind   string    `json:"kind,omitempty"`
	Status RunStatus `json:"status,omitempty"`
	Limit  int       `json:"limit,omitempty"`
	Offset int       `json:"offset,omitempty"`
}

// Store defines the persistence interface for modelling runs.
type Store interface {
	CreateRun(ctx context.Context, kind, dataset string, modelCfg any) (*Run, error)
	CompleteRun(ctx context.Context, runID string, report any) error
	FailRun(ctx context.Context, runID string, runErr error) error
	GetRun(ctx context.Context, runID string) (*Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]Run, error)

	Migrate(ctx context.Context) error
	Close() error
}
