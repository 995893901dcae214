package dependencies

import (
	"go.uber.org/zap"

	"github.com/temirov/gitcheck/internal/execshell"
	"github.com/temirov/gitcheck/internal/repos/discovery"
	"github.com/temirov/gitcheck/internal/repos/filesystem"
	"github.com/temirov/gitcheck/internal/repos/shared"
)

// ResolveSubdirectoryLister returns the provided lister or a filesystem-backed default.
func ResolveSubdirectoryLister(existing shared.SubdirectoryLister, fileSystem shared.FileSystem) shared.SubdirectoryLister {
	if existing != nil {
		return existing
	}
	return discovery.NewFilesystemSubdirectoryLister(fileSystem)
}

// ResolveFileSystem returns the provided filesystem or an OS-backed default.
func ResolveFileSystem(existing shared.FileSystem) shared.FileSystem {
	if existing != nil {
		return existing
	}
	return filesystem.OSFileSystem{}
}

// ResolveLogger returns the provided logger or a no-op logger.
func ResolveLogger(existing *zap.Logger) *zap.Logger {
	if existing != nil {
		return existing
	}
	return zap.NewNop()
}

// ResolveGitExecutor returns the provided executor or constructs a shell-backed default
// reporting command events to the supplied observer.
func ResolveGitExecutor(existing shared.GitExecutor, logger *zap.Logger, eventObserver execshell.CommandEventObserver) (shared.GitExecutor, error) {
	if existing != nil {
		return existing, nil
	}

	commandRunner := execshell.NewOSCommandRunner()
	shellExecutor, creationError := execshell.NewShellExecutorWithObserver(logger, commandRunner, eventObserver)
	if creationError != nil {
		return nil, creationError
	}
	return shellExecutor, nil
}
