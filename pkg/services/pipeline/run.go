package pipeline

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ekaya-inc/ekaya-normalize/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-normalize/pkg/database"
	"github.com/ekaya-inc/ekaya-normalize/pkg/source"
)

// StageRecord tracks one stage's progress through a run.
type StageRecord struct {
	Stage     StageName
	State     StageState
	Rows      int64
	StartedAt time.Time
	Duration  time.Duration
	Err       error
}

// Run is the state of one pipeline execution. It is owned by a single
// goroutine; stages run strictly one after another.
type Run struct {
	ID        uuid.UUID
	Store     database.Store
	Source    source.Source
	BatchSize int

	// Progress receives stage progress; nil means log only.
	Progress ProgressReporter

	records map[StageName]*StageRecord
}

// NewRun creates a run reading src and writing to store.
// A non-positive batchSize selects database.DefaultPageSize.
func NewRun(store database.Store, src source.Source, batchSize int) *Run {
	if batchSize <= 0 {
		batchSize = database.DefaultPageSize
	}
	return &Run{
		ID:        uuid.New(),
		Store:     store,
		Source:    src,
		BatchSize: batchSize,
		records:   make(map[StageName]*StageRecord),
	}
}

// Record returns the record of a stage, creating it in NotStarted if needed.
func (r *Run) Record(name StageName) *StageRecord {
	rec, ok := r.records[name]
	if !ok {
		rec = &StageRecord{Stage: name, State: StateNotStarted}
		r.records[name] = rec
	}
	return rec
}

// State returns the current state of a stage.
func (r *Run) State(name StageName) StageState {
	return r.Record(name).State
}

// advance moves a stage to next, rejecting out-of-order transitions.
func (r *Run) advance(name StageName, next StageState) error {
	rec := r.Record(name)
	if !rec.State.CanTransition(next) {
		return fmt.Errorf("%w: stage %s cannot move from %s to %s",
			apperrors.ErrInvalidTransition, name, rec.State, next)
	}
	rec.State = next
	return nil
}

// RequireCommitted fails unless the parent stage committed in this run.
func (r *Run) RequireCommitted(parent StageName) error {
	if state := r.State(parent); state != StateCommitted {
		return fmt.Errorf("%w: %s is %s", apperrors.ErrNotCommitted, parent, state)
	}
	return nil
}
