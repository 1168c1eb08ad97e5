package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ekaya-inc/ekaya-normalize/pkg/testhelpers"
)

func TestRegionStage_LogsCompletion(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	store := testhelpers.NewSQLiteStore(t)
	run := NewRun(store, export(sampleLines...), 0)

	require.NoError(t, NewRegionStage(zap.New(core)).Execute(context.Background(), run))

	done := logs.FilterMessage("Inserted 2 regions").All()
	require.Len(t, done, 1)
	assert.Equal(t, "region", done[0].LoggerName)
	assert.Equal(t, run.ID.String(), done[0].ContextMap()["run_id"])
	assert.Equal(t, int64(2), done[0].ContextMap()["rows"])
}

func TestStage_ProgressReported(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	store := testhelpers.NewSQLiteStore(t)
	run := NewRun(store, export(sampleLines...), 0)
	run.Progress = &LogProgressReporter{Logger: zap.New(core)}

	require.NoError(t, NewRegionStage(zap.NewNop()).Execute(context.Background(), run))

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, "Extracted 2 region candidates", entries[0].Message)
	assert.Equal(t, "Inserted 2 regions", entries[2].Message)
	assert.Equal(t, "region", entries[2].ContextMap()["stage"])
}

func TestStage_ReexecuteCommittedFails(t *testing.T) {
	store := testhelpers.NewSQLiteStore(t)
	run := NewRun(store, export(sampleLines...), 0)
	stage := NewRegionStage(zap.NewNop())

	require.NoError(t, stage.Execute(context.Background(), run))
	err := stage.Execute(context.Background(), run)
	require.Error(t, err)
	assert.Equal(t, StateCommitted, run.State(StageRegion))
	assert.Equal(t, int64(2), countRows(t, store, "region"))
}
