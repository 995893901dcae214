package pathutils

import (
	"os"
	"path/filepath"
	"sort"
)

// WorkingDirectoryProvider resolves the directory relative paths are anchored to.
type WorkingDirectoryProvider func() (string, error)

// DirectoryNormalizer turns user supplied directory arguments into absolute,
// deduplicated, sorted paths.
type DirectoryNormalizer struct {
	homeExpander             *HomeExpander
	workingDirectoryProvider WorkingDirectoryProvider
}

// NewDirectoryNormalizer constructs a normalizer using the process working directory.
func NewDirectoryNormalizer() *DirectoryNormalizer {
	return NewDirectoryNormalizerWithProviders(nil, nil)
}

// NewDirectoryNormalizerWithProviders constructs a normalizer with explicit collaborators.
func NewDirectoryNormalizerWithProviders(homeExpander *HomeExpander, workingDirectoryProvider WorkingDirectoryProvider) *DirectoryNormalizer {
	if homeExpander == nil {
		homeExpander = NewHomeExpander()
	}
	if workingDirectoryProvider == nil {
		workingDirectoryProvider = os.Getwd
	}
	return &DirectoryNormalizer{homeExpander: homeExpander, workingDirectoryProvider: workingDirectoryProvider}
}

// Absolute expands the home prefix and anchors a relative path to the working directory.
func (normalizer *DirectoryNormalizer) Absolute(candidatePath string) string {
	expandedPath := normalizer.homeExpander.Expand(candidatePath)
	if filepath.IsAbs(expandedPath) {
		return filepath.Clean(expandedPath)
	}

	workingDirectory, workingDirectoryError := normalizer.workingDirectoryProvider()
	if workingDirectoryError != nil {
		absolutePath, absoluteError := filepath.Abs(expandedPath)
		if absoluteError != nil {
			return filepath.Clean(expandedPath)
		}
		return absolutePath
	}
	return filepath.Join(workingDirectory, expandedPath)
}

// Normalize returns the absolute form of every non-blank candidate, without duplicates, in ascending order.
func (normalizer *DirectoryNormalizer) Normalize(candidatePaths []string) []string {
	uniquePaths := make(map[string]struct{}, len(candidatePaths))
	for _, expandedPath := range normalizer.homeExpander.ExpandAll(candidatePaths) {
		uniquePaths[normalizer.Absolute(expandedPath)] = struct{}{}
	}

	normalizedPaths := make([]string, 0, len(uniquePaths))
	for uniquePath := range uniquePaths {
		normalizedPaths = append(normalizedPaths, uniquePath)
	}
	sort.Strings(normalizedPaths)
	return normalizedPaths
}

// CanonicalIdentity resolves symbolic links so that two spellings of the same
// directory compare equal. Unresolvable paths fall back to their cleaned absolute form.
func CanonicalIdentity(directoryPath string) string {
	absolutePath, absoluteError := filepath.Abs(directoryPath)
	if absoluteError != nil {
		absolutePath = filepath.Clean(directoryPath)
	}
	resolvedPath, resolveError := filepath.EvalSymlinks(absolutePath)
	if resolveError != nil {
		return absolutePath
	}
	return resolvedPath
}
