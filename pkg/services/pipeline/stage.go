package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jinzhu/inflection"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-normalize/pkg/database"
	"github.com/ekaya-inc/ekaya-normalize/pkg/models"
)

// StageName identifies a stage; it is also the lookup name the stage exposes.
type StageName string

const (
	StageRegion          StageName = "region"
	StageCountry         StageName = "country"
	StageCustomer        StageName = "customer"
	StageProductCategory StageName = "product_category"
	StageProduct         StageName = "product"
	StageOrderDetail     StageName = "order_detail"
)

// Stage populates one table of the normalized schema.
type Stage interface {
	// Name returns the stage name (e.g., "country")
	Name() StageName

	// DependsOn lists the stages whose tables this stage references.
	DependsOn() []StageName

	// Table returns the table this stage recreates and fills.
	Table() models.Table

	// Execute runs the stage inside its own transaction. Returns an error if the stage fails.
	Execute(ctx context.Context, run *Run) error
}

// ProgressReporter provides a way for stages to report execution progress.
type ProgressReporter interface {
	ReportProgress(ctx context.Context, stage StageName, current, total int, message string) error
}

// LogProgressReporter reports progress through a zap logger.
type LogProgressReporter struct {
	Logger *zap.Logger
}

func (p *LogProgressReporter) ReportProgress(ctx context.Context, stage StageName, current, total int, message string) error {
	p.Logger.Debug(message,
		zap.String("stage", string(stage)),
		zap.Int("current", current),
		zap.Int("total", total))
	return nil
}

// BaseStage provides common functionality for all stages.
type BaseStage struct {
	name   StageName
	deps   []StageName
	table  models.Table
	logger *zap.Logger
}

// NewBaseStage creates a new base stage with common dependencies.
func NewBaseStage(name StageName, table models.Table, deps []StageName, logger *zap.Logger) *BaseStage {
	return &BaseStage{
		name:   name,
		deps:   deps,
		table:  table,
		logger: logger.Named(string(name)),
	}
}

// Name returns the stage name.
func (b *BaseStage) Name() StageName { return b.name }

// DependsOn returns the parent stages.
func (b *BaseStage) DependsOn() []StageName { return b.deps }

// Table returns the target table.
func (b *BaseStage) Table() models.Table { return b.table }

// Logger returns the stage's logger.
func (b *BaseStage) Logger() *zap.Logger { return b.logger }

// noun is the human name of the stage's rows, e.g. "product category".
func (b *BaseStage) noun() string {
	return strings.ReplaceAll(string(b.name), "_", " ")
}

// ReportProgress forwards to the run's reporter. Failures are logged, never returned.
func (b *BaseStage) ReportProgress(ctx context.Context, run *Run, current, total int, message string) {
	if run.Progress == nil {
		return
	}
	if err := run.Progress.ReportProgress(ctx, b.name, current, total, message); err != nil {
		b.logger.Warn("Failed to report progress", zap.Error(err))
	}
}

// stageWork is the stage-specific part of an execution.
type stageWork struct {
	// extract reads the source and returns the number of candidates.
	extract func(ctx context.Context) (int, error)
	// resolve turns candidates into insert rows using parent lookups.
	resolve func(ctx context.Context, tx database.Tx) ([][]any, error)
	// batched selects multi-row INSERT pages instead of one statement per row.
	batched bool
}

// execute drives the stage through its states inside one transaction:
// recreate the table, extract, resolve, insert, commit.
func (b *BaseStage) execute(ctx context.Context, run *Run, work stageWork) (err error) {
	rec := run.Record(b.name)
	if !rec.State.CanTransition(StateTableEnsured) {
		return fmt.Errorf("stage %s: %w", b.name, run.advance(b.name, StateTableEnsured))
	}
	rec.StartedAt = time.Now()
	defer func() {
		rec.Duration = time.Since(rec.StartedAt)
		if err != nil {
			rec.Err = err
			if rec.State.CanTransition(StateFailed) {
				rec.State = StateFailed
			}
			err = fmt.Errorf("stage %s: %w", b.name, err)
		}
	}()

	b.logger.Info("Starting stage",
		zap.String("run_id", run.ID.String()),
		zap.String("table", b.table.Name))

	d := run.Store.Dialect()
	tx, err := run.Store.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				b.logger.Debug("Rollback failed", zap.Error(rbErr))
			}
		}
	}()

	if err := database.EnsureTable(ctx, tx, d, b.table); err != nil {
		return err
	}
	if err := run.advance(b.name, StateTableEnsured); err != nil {
		return err
	}

	candidates, err := work.extract(ctx)
	if err != nil {
		return err
	}
	if err := run.advance(b.name, StateCandidatesExtracted); err != nil {
		return err
	}
	b.ReportProgress(ctx, run, 1, 3, fmt.Sprintf("Extracted %d %s candidates", candidates, b.noun()))

	for _, dep := range b.deps {
		if err := run.RequireCommitted(dep); err != nil {
			return err
		}
	}
	rows, err := work.resolve(ctx, tx)
	if err != nil {
		return err
	}
	if err := run.advance(b.name, StateForeignKeysResolved); err != nil {
		return err
	}
	b.ReportProgress(ctx, run, 2, 3, fmt.Sprintf("Resolved references for %d rows", len(rows)))

	if work.batched {
		_, err = database.InsertBatched(ctx, tx, d, b.table, rows, run.BatchSize)
	} else {
		_, err = database.InsertEach(ctx, tx, d, b.table, rows)
	}
	if err != nil {
		return err
	}
	if err := run.advance(b.name, StateInserted); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	rec.Rows = int64(len(rows))
	if err := run.advance(b.name, StateCommitted); err != nil {
		return err
	}
	b.ReportProgress(ctx, run, 3, 3, fmt.Sprintf("Inserted %d %s", len(rows), inflection.Plural(b.noun())))

	b.logger.Info(fmt.Sprintf("Inserted %d %s", len(rows), inflection.Plural(b.noun())),
		zap.String("run_id", run.ID.String()),
		zap.Int("candidates", candidates),
		zap.Int64("rows", rec.Rows),
		zap.Duration("duration", time.Since(rec.StartedAt)))
	return nil
}
