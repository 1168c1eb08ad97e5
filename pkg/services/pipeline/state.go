package pipeline

// StageState is the lifecycle position of one stage within a run.
type StageState string

const (
	StateNotStarted          StageState = "not_started"
	StateTableEnsured        StageState = "table_ensured"
	StateCandidatesExtracted StageState = "candidates_extracted"
	StateForeignKeysResolved StageState = "foreign_keys_resolved"
	StateInserted            StageState = "inserted"
	StateCommitted           StageState = "committed"
	StateFailed              StageState = "failed"
)

// forward lists the single legal successor of each non-terminal state.
var forward = map[StageState]StageState{
	StateNotStarted:          StateTableEnsured,
	StateTableEnsured:        StateCandidatesExtracted,
	StateCandidatesExtracted: StateForeignKeysResolved,
	StateForeignKeysResolved: StateInserted,
	StateInserted:            StateCommitted,
}

// IsTerminal returns true if no further transition is possible.
func (s StageState) IsTerminal() bool {
	return s == StateCommitted || s == StateFailed
}

// CanTransition reports whether moving from s to next is legal.
// Any non-terminal state may fail.
func (s StageState) CanTransition(next StageState) bool {
	if s.IsTerminal() {
		return false
	}
	if next == StateFailed {
		return true
	}
	return forward[s] == next
}
