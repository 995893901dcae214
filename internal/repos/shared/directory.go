package shared

import (
	"errors"
	"path/filepath"
	"sort"
	"strings"
)

// ErrInvalidDirectory reports an empty or non-absolute directory.
var ErrInvalidDirectory = errors.New("directory must be a non-empty absolute path")

// Directory is an absolute filesystem path.
type Directory string

// NewDirectory validates and cleans an absolute path.
func NewDirectory(path string) (Directory, error) {
	trimmedPath := strings.TrimSpace(path)
	if len(trimmedPath) == 0 || strings.ContainsAny(trimmedPath, "\n\r") || !filepath.IsAbs(trimmedPath) {
		return "", ErrInvalidDirectory
	}
	return Directory(filepath.Clean(trimmedPath)), nil
}

// String returns the path.
func (directory Directory) String() string {
	return string(directory)
}

// Join returns the child directory with the given entry name.
func (directory Directory) Join(name string) Directory {
	return Directory(filepath.Join(string(directory), name))
}

// DirectorySet is an unordered set of directories keyed by their identity.
type DirectorySet map[Directory]struct{}

// NewDirectorySet builds a set from the supplied directories.
func NewDirectorySet(directories ...Directory) DirectorySet {
	set := make(DirectorySet, len(directories))
	for _, directory := range directories {
		set[directory] = struct{}{}
	}
	return set
}

// Contains reports membership. A nil set contains nothing.
func (set DirectorySet) Contains(directory Directory) bool {
	_, exists := set[directory]
	return exists
}

// Add inserts a directory.
func (set DirectorySet) Add(directory Directory) {
	set[directory] = struct{}{}
}

// Sorted lists the members in ascending order.
func (set DirectorySet) Sorted() []Directory {
	directories := make([]Directory, 0, len(set))
	for directory := range set {
		directories = append(directories, directory)
	}
	sort.Slice(directories, func(first int, second int) bool {
		return directories[first] < directories[second]
	})
	return directories
}
