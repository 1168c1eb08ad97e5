package pipeline

import (
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Summary reports the outcome of a run.
type Summary struct {
	RunID     string         `yaml:"run_id"`
	Source    string         `yaml:"source"`
	Store     string         `yaml:"store"`
	StartedAt time.Time      `yaml:"started_at"`
	Duration  string         `yaml:"duration"`
	Succeeded bool           `yaml:"succeeded"`
	Error     string         `yaml:"error,omitempty"`
	Stages    []StageSummary `yaml:"stages"`

	elapsed time.Duration
}

// StageSummary is the final state of one planned stage.
type StageSummary struct {
	Name     StageName  `yaml:"name"`
	Table    string     `yaml:"table"`
	State    StageState `yaml:"state"`
	Rows     int64      `yaml:"rows"`
	Duration string     `yaml:"duration,omitempty"`
	Error    string     `yaml:"error,omitempty"`
}

func newSummary(run *Run, plan []Stage) *Summary {
	s := &Summary{
		RunID:     run.ID.String(),
		Source:    run.Source.Name(),
		Store:     run.Store.Dialect().Name(),
		StartedAt: time.Now().UTC(),
		Stages:    make([]StageSummary, len(plan)),
	}
	for i, stage := range plan {
		s.Stages[i] = StageSummary{Name: stage.Name(), Table: stage.Table().Name}
	}
	return s
}

// finish copies the stage records of run into the summary.
func (s *Summary) finish(run *Run, err error) *Summary {
	s.elapsed = time.Since(s.StartedAt)
	s.Duration = s.elapsed.Round(time.Millisecond).String()
	s.Succeeded = err == nil
	if err != nil {
		s.Error = err.Error()
	}
	for i := range s.Stages {
		rec := run.Record(s.Stages[i].Name)
		s.Stages[i].State = rec.State
		s.Stages[i].Rows = rec.Rows
		if !rec.StartedAt.IsZero() {
			s.Stages[i].Duration = rec.Duration.Round(time.Millisecond).String()
		}
		if rec.Err != nil {
			s.Stages[i].Error = rec.Err.Error()
		}
	}
	return s
}

// Stage returns the summary of the named stage.
func (s *Summary) Stage(name StageName) (StageSummary, bool) {
	for _, st := range s.Stages {
		if st.Name == name {
			return st, true
		}
	}
	return StageSummary{}, false
}

// WriteYAML encodes the summary as YAML.
func (s *Summary) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	return enc.Close()
}

// WriteFile writes the YAML summary to path.
func (s *Summary) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := s.WriteYAML(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
