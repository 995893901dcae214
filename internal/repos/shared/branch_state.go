package shared

// Divergence is the single relationship of a local branch to its upstream.
type Divergence int

// Divergence values. At most one relationship holds at a time.
const (
	DivergenceNone Divergence = iota
	DivergenceAhead
	DivergenceBehind
	DivergenceDiverged
)

// BranchState holds the signals parsed for one directory during one run.
type BranchState struct {
	IsRepository     bool
	HasUpstream      bool
	LocalBranchName  string
	RemoteBranchName string
	FetchFailed      bool
	FetchUnreachable bool
	StatusKnown      bool
	IsClean          bool
	Divergence       Divergence
	StatusOutput     string
}

// IsAhead reports local commits missing upstream.
func (state BranchState) IsAhead() bool {
	return state.Divergence == DivergenceAhead
}

// IsBehind reports upstream commits missing locally.
func (state BranchState) IsBehind() bool {
	return state.Divergence == DivergenceBehind
}

// HasDiverged reports commits missing on both sides.
func (state BranchState) HasDiverged() bool {
	return state.Divergence == DivergenceDiverged
}

// AfterCommit returns the state following a successful automatic commit.
// A branch in sync becomes ahead, a branch behind becomes diverged.
func (state BranchState) AfterCommit() BranchState {
	updated := state
	updated.IsClean = true
	switch state.Divergence {
	case DivergenceNone:
		updated.Divergence = DivergenceAhead
	case DivergenceBehind:
		updated.Divergence = DivergenceDiverged
	}
	return updated
}

// ReconciliationOutcome records what reconciliation did for one directory.
type ReconciliationOutcome struct {
	IsRepository bool
	Committed    bool
	Pushed       bool
	Pulled       bool
}
