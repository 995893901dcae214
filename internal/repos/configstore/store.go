package configstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"go.uber.org/zap"

	"github.com/temirov/gitcheck/internal/repos/dependencies"
	"github.com/temirov/gitcheck/internal/repos/shared"
)

const (
	storeFilePermissionsConstant             = 0o644
	storeDirectoryPermissionsConstant        = 0o755
	storeIndentConstant                      = "    "
	emptyStoreContentConstant                = "{}\n"
	temporaryFileSuffixConstant              = ".tmp"
	malformedStoreTemplateConstant           = "%w: %s: %v"
	malformedEntryTemplateConstant           = "%w: configuration %s: %v"
	readStoreTemplateConstant                = "read configuration store %s: %w"
	writeStoreTemplateConstant               = "write configuration store %s: %w"
	missingConfigurationTemplateConstant     = "Configuration %s does not exist."
	emptyConfigurationTemplateConstant       = "%w: %s"
	storeCreatedLogMessageConstant           = "configuration store created"
	storeWrittenLogMessageConstant           = "configuration store written"
	pathFieldNameConstant                    = "path"
	configurationsFieldNameConstant          = "configurations"
	storePathRequiredMessageConstant         = "configuration store path must be provided"
	malformedStoreMessageConstant            = "malformed configuration store"
	configurationNotFoundMessageConstant     = "configuration does not exist"
	emptyConfigurationMessageConstant        = "cannot save empty configuration"
	configurationNameRequiredMessageConstant = "configuration name must be provided"
)

// ErrStorePathRequired indicates the store was constructed without a path.
var ErrStorePathRequired = errors.New(storePathRequiredMessageConstant)

// ErrMalformedStore indicates a store file that is not an object of well-formed configurations.
var ErrMalformedStore = errors.New(malformedStoreMessageConstant)

// ErrConfigurationNotFound indicates a configuration name absent from the store.
var ErrConfigurationNotFound = errors.New(configurationNotFoundMessageConstant)

// ErrEmptyConfiguration indicates an attempt to save a configuration without directories.
var ErrEmptyConfiguration = errors.New(emptyConfigurationMessageConstant)

// ErrConfigurationNameRequired indicates a blank configuration name.
var ErrConfigurationNameRequired = errors.New(configurationNameRequiredMessageConstant)

// MissingConfigurationError names the configuration that does not exist.
type MissingConfigurationError struct {
	Name string
}

// Error renders the user-facing message.
func (missingConfigurationError MissingConfigurationError) Error() string {
	return fmt.Sprintf(missingConfigurationTemplateConstant, missingConfigurationError.Name)
}

// Is matches ErrConfigurationNotFound.
func (missingConfigurationError MissingConfigurationError) Is(target error) bool {
	return target == ErrConfigurationNotFound
}

// Dependencies enumerates the collaborators of a Store.
type Dependencies struct {
	FileSystem shared.FileSystem
	Logger     *zap.Logger
}

// PurgedDirectory identifies a directory removed from a configuration.
type PurgedDirectory struct {
	Configuration string
	Kind          DirectoryKind
	Directory     string
}

// PurgeReport lists what a purge removed.
type PurgeReport struct {
	PurgedDirectories     []PurgedDirectory
	DeletedConfigurations []string
}

// Changed reports whether the purge removed anything.
func (report PurgeReport) Changed() bool {
	return len(report.PurgedDirectories) > 0 || len(report.DeletedConfigurations) > 0
}

// Store persists named configurations in a JSON file.
type Store struct {
	path       string
	fileSystem shared.FileSystem
	logger     *zap.Logger
}

// NewStore constructs a Store backed by the file at path.
func NewStore(path string, dependencySet Dependencies) (*Store, error) {
	trimmedPath := strings.TrimSpace(path)
	if len(trimmedPath) == 0 {
		return nil, ErrStorePathRequired
	}
	return &Store{
		path:       trimmedPath,
		fileSystem: dependencies.ResolveFileSystem(dependencySet.FileSystem),
		logger:     dependencies.ResolveLogger(dependencySet.Logger),
	}, nil
}

// Path returns the location of the store file.
func (store *Store) Path() string {
	return store.path
}

// Names lists the stored configuration names in ascending order.
func (store *Store) Names() ([]string, error) {
	entries, readError := store.read()
	if readError != nil {
		return nil, readError
	}
	return sortedNames(entries), nil
}

// Entries returns every stored configuration.
func (store *Store) Entries() (map[string]Entry, error) {
	return store.read()
}

// Exists reports whether a configuration is stored under name.
func (store *Store) Exists(name string) (bool, error) {
	entries, readError := store.read()
	if readError != nil {
		return false, readError
	}
	_, exists := entries[name]
	return exists, nil
}

// Load returns the union of the named configurations. Every name must exist.
func (store *Store) Load(names ...string) (Entry, error) {
	entries, readError := store.read()
	if readError != nil {
		return Entry{}, readError
	}
	if missingError := requireNames(entries, names); missingError != nil {
		return Entry{}, missingError
	}

	var merged Entry
	for _, name := range names {
		merged = merged.Merge(entries[name])
	}
	return merged, nil
}

// Save stores entry under name, replacing any previous configuration of that name.
func (store *Store) Save(name string, entry Entry) error {
	trimmedName := strings.TrimSpace(name)
	if len(trimmedName) == 0 {
		return ErrConfigurationNameRequired
	}
	if entry.IsEmpty() {
		return fmt.Errorf(emptyConfigurationTemplateConstant, ErrEmptyConfiguration, trimmedName)
	}

	entries, readError := store.read()
	if readError != nil {
		return readError
	}
	entries[trimmedName] = Entry{}.Merge(entry)
	return store.write(entries)
}

// Delete removes the named configurations. Nothing is removed when any name is unknown.
func (store *Store) Delete(names ...string) error {
	entries, readError := store.read()
	if readError != nil {
		return readError
	}
	if missingError := requireNames(entries, names); missingError != nil {
		return missingError
	}
	for _, name := range names {
		delete(entries, name)
	}
	return store.write(entries)
}

// Purge removes directories that no longer exist and deletes configurations left empty.
func (store *Store) Purge() (PurgeReport, error) {
	entries, readError := store.read()
	if readError != nil {
		return PurgeReport{}, readError
	}

	report := PurgeReport{PurgedDirectories: []PurgedDirectory{}, DeletedConfigurations: []string{}}
	for _, name := range sortedNames(entries) {
		entry := entries[name]
		var retained Entry
		for _, kind := range Kinds() {
			kept := make([]string, 0, len(entry.Directories(kind)))
			for _, directory := range entry.Directories(kind) {
				if store.isDirectory(directory) {
					kept = append(kept, directory)
					continue
				}
				report.PurgedDirectories = append(report.PurgedDirectories, PurgedDirectory{Configuration: name, Kind: kind, Directory: directory})
			}
			if len(kept) > 0 {
				retained.setDirectories(kind, kept)
			}
		}
		if retained.IsEmpty() {
			delete(entries, name)
			report.DeletedConfigurations = append(report.DeletedConfigurations, name)
			continue
		}
		entries[name] = retained
	}

	if !report.Changed() {
		return report, nil
	}
	return report, store.write(entries)
}

func (store *Store) isDirectory(directory string) bool {
	info, statError := store.fileSystem.Stat(directory)
	return statError == nil && info.IsDir()
}

// read loads the store, creating an empty one when the file does not exist.
func (store *Store) read() (map[string]Entry, error) {
	content, readError := store.fileSystem.ReadFile(store.path)
	if errors.Is(readError, fs.ErrNotExist) {
		if createError := store.create(); createError != nil {
			return nil, createError
		}
		return map[string]Entry{}, nil
	}
	if readError != nil {
		return nil, fmt.Errorf(readStoreTemplateConstant, store.path, readError)
	}

	var rawEntries map[string]any
	if decodeError := json.Unmarshal(content, &rawEntries); decodeError != nil {
		return nil, fmt.Errorf(malformedStoreTemplateConstant, ErrMalformedStore, store.path, decodeError)
	}
	if rawEntries == nil {
		return nil, fmt.Errorf(malformedStoreTemplateConstant, ErrMalformedStore, store.path, "top-level value is not an object")
	}

	entries := make(map[string]Entry, len(rawEntries))
	for name, rawEntry := range rawEntries {
		entry, entryError := decodeEntry(rawEntry)
		if entryError != nil {
			return nil, fmt.Errorf(malformedEntryTemplateConstant, ErrMalformedStore, name, entryError)
		}
		entries[name] = entry
	}
	return entries, nil
}

func decodeEntry(rawEntry any) (Entry, error) {
	var entry Entry
	decoder, decoderError := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused: true,
		Result:      &entry,
	})
	if decoderError != nil {
		return Entry{}, decoderError
	}
	if decodeError := decoder.Decode(rawEntry); decodeError != nil {
		return Entry{}, decodeError
	}
	return entry, nil
}

func (store *Store) create() error {
	if mkdirError := store.fileSystem.MkdirAll(filepath.Dir(store.path), storeDirectoryPermissionsConstant); mkdirError != nil {
		return fmt.Errorf(writeStoreTemplateConstant, store.path, mkdirError)
	}
	if writeError := store.fileSystem.WriteFile(store.path, []byte(emptyStoreContentConstant), storeFilePermissionsConstant); writeError != nil {
		return fmt.Errorf(writeStoreTemplateConstant, store.path, writeError)
	}
	store.logger.Debug(storeCreatedLogMessageConstant, zap.String(pathFieldNameConstant, store.path))
	return nil
}

// write replaces the store file through a temporary sibling.
func (store *Store) write(entries map[string]Entry) error {
	content, encodeError := json.MarshalIndent(entries, "", storeIndentConstant)
	if encodeError != nil {
		return fmt.Errorf(writeStoreTemplateConstant, store.path, encodeError)
	}
	content = append(content, '\n')

	if mkdirError := store.fileSystem.MkdirAll(filepath.Dir(store.path), storeDirectoryPermissionsConstant); mkdirError != nil {
		return fmt.Errorf(writeStoreTemplateConstant, store.path, mkdirError)
	}
	temporaryPath := store.path + temporaryFileSuffixConstant
	if writeError := store.fileSystem.WriteFile(temporaryPath, content, storeFilePermissionsConstant); writeError != nil {
		return fmt.Errorf(writeStoreTemplateConstant, store.path, writeError)
	}
	if renameError := store.fileSystem.Rename(temporaryPath, store.path); renameError != nil {
		return fmt.Errorf(writeStoreTemplateConstant, store.path, renameError)
	}
	store.logger.Debug(storeWrittenLogMessageConstant, zap.String(pathFieldNameConstant, store.path), zap.Int(configurationsFieldNameConstant, len(entries)))
	return nil
}

func requireNames(entries map[string]Entry, names []string) error {
	for _, name := range names {
		if _, exists := entries[name]; !exists {
			return MissingConfigurationError{Name: name}
		}
	}
	return nil
}

func sortedNames(entries map[string]Entry) []string {
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
