package configstore

import "sort"

// DirectoryKind names one of the directory lists of a configuration.
type DirectoryKind string

// Directory list kinds, in storage order.
const (
	KindRepositories DirectoryKind = "repos"
	KindSearch       DirectoryKind = "search"
	KindIgnore       DirectoryKind = "ignore"
)

// Kinds lists every directory kind in storage order.
func Kinds() []DirectoryKind {
	return []DirectoryKind{KindRepositories, KindSearch, KindIgnore}
}

// Entry is one named configuration.
type Entry struct {
	Repositories []string `json:"repos,omitempty" mapstructure:"repos"`
	Search       []string `json:"search,omitempty" mapstructure:"search"`
	Ignore       []string `json:"ignore,omitempty" mapstructure:"ignore"`
}

// IsEmpty reports whether the configuration holds no directory at all.
func (entry Entry) IsEmpty() bool {
	return len(entry.Repositories) == 0 && len(entry.Search) == 0 && len(entry.Ignore) == 0
}

// Directories returns the list stored under kind.
func (entry Entry) Directories(kind DirectoryKind) []string {
	switch kind {
	case KindRepositories:
		return entry.Repositories
	case KindSearch:
		return entry.Search
	case KindIgnore:
		return entry.Ignore
	default:
		return nil
	}
}

func (entry *Entry) setDirectories(kind DirectoryKind, directories []string) {
	switch kind {
	case KindRepositories:
		entry.Repositories = directories
	case KindSearch:
		entry.Search = directories
	case KindIgnore:
		entry.Ignore = directories
	}
}

// Merge returns the union of both entries with every list sorted and free of duplicates.
func (entry Entry) Merge(other Entry) Entry {
	var merged Entry
	for _, kind := range Kinds() {
		merged.setDirectories(kind, sortedUnion(entry.Directories(kind), other.Directories(kind)))
	}
	return merged
}

func sortedUnion(first []string, second []string) []string {
	unique := make(map[string]struct{}, len(first)+len(second))
	for _, directory := range first {
		unique[directory] = struct{}{}
	}
	for _, directory := range second {
		unique[directory] = struct{}{}
	}
	if len(unique) == 0 {
		return nil
	}
	union := make([]string, 0, len(unique))
	for directory := range unique {
		union = append(union, directory)
	}
	sort.Strings(union)
	return union
}

// With returns the entry with directories added to the kind list.
func (entry Entry) With(kind DirectoryKind, directories ...string) Entry {
	var addition Entry
	addition.setDirectories(kind, directories)
	return entry.Merge(addition)
}

// Without returns the entry with directory removed from the kind list and whether it was listed.
func (entry Entry) Without(kind DirectoryKind, directory string) (Entry, bool) {
	current := entry.Directories(kind)
	remaining := make([]string, 0, len(current))
	removed := false
	for _, candidate := range current {
		if candidate == directory {
			removed = true
			continue
		}
		remaining = append(remaining, candidate)
	}
	if !removed {
		return entry, false
	}
	if len(remaining) == 0 {
		remaining = nil
	}
	updated := entry
	updated.setDirectories(kind, remaining)
	return updated, true
}
