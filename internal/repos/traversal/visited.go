package traversal

import "github.com/temirov/gitcheck/internal/repos/shared"

// Verdict is what probing taught the traversal about a directory.
type Verdict int

// Verdict values.
const (
	VerdictNotRepository Verdict = iota
	VerdictRepository
	VerdictUnavailable
)

// VisitedSet records the directories probed during one run with their verdicts,
// and separately the search roots already enumerated. It only grows.
type VisitedSet struct {
	verdicts map[shared.Directory]Verdict
	searched shared.DirectorySet
}

// NewVisitedSet constructs an empty set.
func NewVisitedSet() *VisitedSet {
	return &VisitedSet{verdicts: make(map[shared.Directory]Verdict), searched: shared.NewDirectorySet()}
}

// Verdict returns the recorded verdict and whether the directory was probed.
func (visitedSet *VisitedSet) Verdict(directory shared.Directory) (Verdict, bool) {
	verdict, probed := visitedSet.verdicts[directory]
	return verdict, probed
}

// Record stores the verdict of a probed directory.
func (visitedSet *VisitedSet) Record(directory shared.Directory, verdict Verdict) {
	visitedSet.verdicts[directory] = verdict
}

// MarkSearched records an enumerated search root and reports whether it was new.
func (visitedSet *VisitedSet) MarkSearched(directory shared.Directory) bool {
	if visitedSet.searched.Contains(directory) {
		return false
	}
	visitedSet.searched.Add(directory)
	return true
}

// ProbedCount returns how many directories were probed.
func (visitedSet *VisitedSet) ProbedCount() int {
	return len(visitedSet.verdicts)
}
