package discovery

import (
	"fmt"

	"github.com/temirov/gitcheck/internal/repos/filesystem"
	"github.com/temirov/gitcheck/internal/repos/shared"
)

const (
	gitMetadataDirectoryNameConstant = ".git"
	listSubdirectoriesErrorTemplate  = "list subdirectories of %s: %w"
)

// FilesystemSubdirectoryLister enumerates immediate subdirectories on disk.
type FilesystemSubdirectoryLister struct {
	fileSystem shared.FileSystem
}

// NewFilesystemSubdirectoryLister constructs a lister; a nil filesystem uses the OS.
func NewFilesystemSubdirectoryLister(fileSystem shared.FileSystem) *FilesystemSubdirectoryLister {
	if fileSystem == nil {
		fileSystem = filesystem.OSFileSystem{}
	}
	return &FilesystemSubdirectoryLister{fileSystem: fileSystem}
}

// ListSubdirectories returns the directories directly below root in name order.
// Symbolic links are followed; entries that cannot be inspected and the git
// metadata directory are omitted.
func (lister *FilesystemSubdirectoryLister) ListSubdirectories(root shared.Directory) ([]shared.Directory, error) {
	entries, readError := lister.fileSystem.ReadDir(root.String())
	if readError != nil {
		return nil, fmt.Errorf(listSubdirectoriesErrorTemplate, root, readError)
	}

	subdirectories := make([]shared.Directory, 0, len(entries))
	for _, entry := range entries {
		if entry.Name() == gitMetadataDirectoryNameConstant {
			continue
		}

		candidate := root.Join(entry.Name())
		if !entry.IsDir() {
			info, statError := lister.fileSystem.Stat(candidate.String())
			if statError != nil || !info.IsDir() {
				continue
			}
		}
		subdirectories = append(subdirectories, candidate)
	}
	return subdirectories, nil
}
