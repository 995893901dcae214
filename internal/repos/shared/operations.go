package shared

import (
	"errors"
	"strconv"
	"strings"
)

const (
	recursionUnboundedLiteralConstant = "all"
	recursionUnboundedDisplayConstant = "ALL"
)

// ErrInvalidRecursionDepth reports a recursion argument that is neither an unsigned integer nor "all".
var ErrInvalidRecursionDepth = errors.New("must be an unsigned integer or 'all'")

// OperationRequest lists the actions requested for a run.
type OperationRequest struct {
	CheckStatus bool
	DoCommit    bool
	DoPush      bool
	DoPull      bool
}

// DefaultOperationRequest checks status and performs no mutating action.
func DefaultOperationRequest() OperationRequest {
	return OperationRequest{CheckStatus: true}
}

// StatusRequired reports whether the working tree status must be classified.
// Any mutating action forces a status check.
func (request OperationRequest) StatusRequired() bool {
	return request.CheckStatus || request.DoCommit || request.DoPush || request.DoPull
}

// CommitRequested reports whether uncommitted changes should be committed.
func (request OperationRequest) CommitRequested() bool {
	return request.DoCommit || request.DoPush || request.DoPull
}

// RecursionBudget bounds how deep the traversal descends below a search root.
// The zero value disables recursion.
type RecursionBudget struct {
	unbounded bool
	depth     int
}

// UnboundedRecursion places no limit on descent.
func UnboundedRecursion() RecursionBudget {
	return RecursionBudget{unbounded: true}
}

// BoundedRecursion limits descent to depth levels. Negative depths are treated as zero.
func BoundedRecursion(depth int) RecursionBudget {
	if depth < 0 {
		depth = 0
	}
	return RecursionBudget{depth: depth}
}

// ParseRecursionBudget accepts an unsigned integer or the literal "all".
func ParseRecursionBudget(rawValue string) (RecursionBudget, error) {
	trimmedValue := strings.TrimSpace(rawValue)
	if strings.EqualFold(trimmedValue, recursionUnboundedLiteralConstant) {
		return UnboundedRecursion(), nil
	}
	if len(trimmedValue) == 0 || strings.ContainsAny(trimmedValue, "+-") {
		return RecursionBudget{}, ErrInvalidRecursionDepth
	}
	depth, parseError := strconv.ParseUint(trimmedValue, 10, 31)
	if parseError != nil {
		return RecursionBudget{}, ErrInvalidRecursionDepth
	}
	return BoundedRecursion(int(depth)), nil
}

// Allows reports whether a non-repository found while searching at level may itself be searched.
func (budget RecursionBudget) Allows(level int) bool {
	return budget.unbounded || level < budget.depth
}

// IsUnbounded reports whether the budget has no limit.
func (budget RecursionBudget) IsUnbounded() bool {
	return budget.unbounded
}

// Depth returns the depth limit; meaningless when unbounded.
func (budget RecursionBudget) Depth() int {
	return budget.depth
}

// String renders the budget as "ALL" or the decimal depth.
func (budget RecursionBudget) String() string {
	if budget.unbounded {
		return recursionUnboundedDisplayConstant
	}
	return strconv.Itoa(budget.depth)
}
