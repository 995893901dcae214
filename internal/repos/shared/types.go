package shared

import (
	"context"
	"io/fs"

	"github.com/temirov/gitcheck/internal/execshell"
)

// FileSystem exposes filesystem operations required by repository services.
type FileSystem interface {
	Stat(path string) (fs.FileInfo, error)
	ReadDir(path string) ([]fs.DirEntry, error)
	Abs(path string) (string, error)
	MkdirAll(path string, permissions fs.FileMode) error
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte, permissions fs.FileMode) error
	Rename(oldPath string, newPath string) error
}

// ConfirmationPrompter collects user confirmations prior to mutating actions.
type ConfirmationPrompter interface {
	Confirm(prompt string) (bool, error)
}

// GitExecutor exposes the subset of shell execution used by repository services.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// SubdirectoryLister enumerates the immediate subdirectories of a search root.
type SubdirectoryLister interface {
	ListSubdirectories(root Directory) ([]Directory, error)
}

// BranchProber derives the BranchState of one directory.
type BranchProber interface {
	Probe(executionContext context.Context, directory Directory, request OperationRequest) (BranchState, error)
}

// BranchReconciler performs the requested actions for a probed directory.
type BranchReconciler interface {
	Reconcile(executionContext context.Context, directory Directory, state BranchState, request OperationRequest) (ReconciliationOutcome, error)
}
