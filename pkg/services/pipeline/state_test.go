package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStageState_ForwardTransitions(t *testing.T) {
	sequence := []StageState{
		StateNotStarted,
		StateTableEnsured,
		StateCandidatesExtracted,
		StateForeignKeysResolved,
		StateInserted,
		StateCommitted,
	}
	for i := 0; i < len(sequence)-1; i++ {
		assert.True(t, sequence[i].CanTransition(sequence[i+1]), "%s -> %s", sequence[i], sequence[i+1])
	}
}

func TestStageState_RejectsSkips(t *testing.T) {
	assert.False(t, StateNotStarted.CanTransition(StateCandidatesExtracted))
	assert.False(t, StateTableEnsured.CanTransition(StateInserted))
	assert.False(t, StateInserted.CanTransition(StateTableEnsured))
	assert.False(t, StateNotStarted.CanTransition(StateNotStarted))
}

func TestStageState_Terminal(t *testing.T) {
	assert.True(t, StateCommitted.IsTerminal())
	assert.True(t, StateFailed.IsTerminal())
	assert.False(t, StateInserted.IsTerminal())

	assert.True(t, StateInserted.CanTransition(StateFailed))
	assert.False(t, StateCommitted.CanTransition(StateFailed))
	assert.False(t, StateFailed.CanTransition(StateTableEnsured))
}
