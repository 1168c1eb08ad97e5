package pipeline

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-normalize/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-normalize/pkg/metrics"
)

// Pipeline runs registered stages in dependency order.
type Pipeline struct {
	stages  []Stage
	index   map[StageName]int
	logger  *zap.Logger
	metrics *metrics.Recorder
}

// New creates an empty pipeline. recorder may be nil.
func New(logger *zap.Logger, recorder *metrics.Recorder) *Pipeline {
	return &Pipeline{
		index:   make(map[StageName]int),
		logger:  logger.Named("pipeline"),
		metrics: recorder,
	}
}

// Register adds a stage. Registration order breaks ties in the execution order.
func (p *Pipeline) Register(stage Stage) error {
	if _, ok := p.index[stage.Name()]; ok {
		return fmt.Errorf("%w: %s", apperrors.ErrDuplicateStage, stage.Name())
	}
	p.index[stage.Name()] = len(p.stages)
	p.stages = append(p.stages, stage)
	return nil
}

// Stages returns the registered stages in registration order.
func (p *Pipeline) Stages() []Stage {
	return append([]Stage(nil), p.stages...)
}

// Order validates the dependency graph and returns every stage in
// topological order. Among ready stages the earliest registered runs first.
func (p *Pipeline) Order() ([]Stage, error) {
	indegree := make([]int, len(p.stages))
	children := make([][]int, len(p.stages))
	for i, s := range p.stages {
		for _, dep := range s.DependsOn() {
			j, ok := p.index[dep]
			if !ok {
				return nil, fmt.Errorf("%w: %s depends on %s", apperrors.ErrUnknownDependency, s.Name(), dep)
			}
			indegree[i]++
			children[j] = append(children[j], i)
		}
	}

	done := make([]bool, len(p.stages))
	order := make([]Stage, 0, len(p.stages))
	for len(order) < len(p.stages) {
		next := -1
		for i := range p.stages {
			if !done[i] && indegree[i] == 0 {
				next = i
				break
			}
		}
		if next < 0 {
			var stuck []string
			for i, s := range p.stages {
				if !done[i] {
					stuck = append(stuck, string(s.Name()))
				}
			}
			return nil, fmt.Errorf("%w: %s", apperrors.ErrDependencyCycle, strings.Join(stuck, ", "))
		}
		done[next] = true
		order = append(order, p.stages[next])
		for _, c := range children[next] {
			indegree[c]--
		}
	}
	return order, nil
}

// Plan returns the stages to execute for the requested names: the named stages
// plus all their transitive dependencies, in execution order. No names selects
// every stage.
func (p *Pipeline) Plan(only ...StageName) ([]Stage, error) {
	order, err := p.Order()
	if err != nil {
		return nil, err
	}
	if len(only) == 0 {
		return order, nil
	}

	want := make(map[StageName]bool)
	var visit func(name StageName) error
	visit = func(name StageName) error {
		if want[name] {
			return nil
		}
		i, ok := p.index[name]
		if !ok {
			return fmt.Errorf("%w: %s", apperrors.ErrUnknownDependency, name)
		}
		want[name] = true
		for _, dep := range p.stages[i].DependsOn() {
			if err := visit(dep); err != nil {
				return err
			}
		}
		return nil
	}
	for _, name := range only {
		if err := visit(name); err != nil {
			return nil, err
		}
	}

	plan := make([]Stage, 0, len(want))
	for _, s := range order {
		if want[s.Name()] {
			plan = append(plan, s)
		}
	}
	return plan, nil
}

// Execute runs the planned stages one after another and stops at the first
// failure. The summary is returned even when a stage fails.
func (p *Pipeline) Execute(ctx context.Context, run *Run, only ...StageName) (*Summary, error) {
	plan, err := p.Plan(only...)
	if err != nil {
		return nil, err
	}

	summary := newSummary(run, plan)
	p.logger.Info("Starting pipeline",
		zap.String("run_id", run.ID.String()),
		zap.String("source", run.Source.Name()),
		zap.String("store", run.Store.Dialect().Name()),
		zap.Int("stages", len(plan)))

	for _, stage := range plan {
		if err := ctx.Err(); err != nil {
			return summary.finish(run, err), err
		}

		err := stage.Execute(ctx, run)
		rec := run.Record(stage.Name())
		p.metrics.ObserveStage(string(stage.Name()), rec.Rows, rec.Duration, err)
		if err != nil {
			p.logger.Error("Stage failed",
				zap.String("run_id", run.ID.String()),
				zap.String("stage", string(stage.Name())),
				zap.String("state", string(rec.State)),
				zap.Error(err))
			return summary.finish(run, err), err
		}
	}

	summary.finish(run, nil)
	p.logger.Info("Pipeline complete",
		zap.String("run_id", run.ID.String()),
		zap.Duration("duration", summary.elapsed))
	return summary, nil
}

// ParseStageNames validates names against the registered stages.
func (p *Pipeline) ParseStageNames(names []string) ([]StageName, error) {
	out := make([]StageName, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		name := StageName(n)
		if _, ok := p.index[name]; !ok {
			return nil, fmt.Errorf("unknown stage %q", n)
		}
		out = append(out, name)
	}
	return out, nil
}
