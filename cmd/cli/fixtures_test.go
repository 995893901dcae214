package cli_test

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"4d63.com/testcli"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"

	"github.com/temirov/gitcheck/cmd/cli"
)

const (
	programNameConstant                 = "git-check"
	fixtureAuthorNameConstant           = "Tests"
	fixtureAuthorEmailConstant          = "tests@example.com"
	fixtureBranchNameConstant           = "main"
	fixtureFileNameConstant             = "README.md"
	fixtureDirectoryPermissionsConstant = 0o755
	fixtureFilePermissionsConstant      = 0o644
	homeEnvironmentNameConstant         = "HOME"
	xdgConfigEnvironmentConstant        = "XDG_CONFIG_HOME"
)

// isolateEnvironment points HOME and the user configuration directory at a fresh
// directory and gives git a fixed identity.
func isolateEnvironment(testInstance *testing.T) string {
	testInstance.Helper()
	homeDirectory := testcli.MkdirTemp(testInstance)
	testInstance.Setenv(homeEnvironmentNameConstant, homeDirectory)
	testInstance.Setenv(xdgConfigEnvironmentConstant, filepath.Join(homeDirectory, ".config"))
	testInstance.Setenv("GIT_CONFIG_NOSYSTEM", "1")
	testInstance.Setenv("GIT_AUTHOR_NAME", fixtureAuthorNameConstant)
	testInstance.Setenv("GIT_AUTHOR_EMAIL", fixtureAuthorEmailConstant)
	testInstance.Setenv("GIT_COMMITTER_NAME", fixtureAuthorNameConstant)
	testInstance.Setenv("GIT_COMMITTER_EMAIL", fixtureAuthorEmailConstant)
	return homeDirectory
}

// newWorkspace creates and enters a working directory holding the named subdirectories.
func newWorkspace(testInstance *testing.T, subdirectories ...string) string {
	testInstance.Helper()
	workspace := testcli.MkdirTemp(testInstance)
	resolvedWorkspace, resolveError := filepath.EvalSymlinks(workspace)
	require.NoError(testInstance, resolveError)
	for _, subdirectory := range subdirectories {
		require.NoError(testInstance, os.MkdirAll(filepath.Join(resolvedWorkspace, subdirectory), fixtureDirectoryPermissionsConstant))
	}
	testcli.Chdir(testInstance, resolvedWorkspace)
	return resolvedWorkspace
}

func runGitCheck(testInstance *testing.T, stdin io.Reader, arguments ...string) (int, string, string) {
	testInstance.Helper()
	return testcli.Main(testInstance, append([]string{programNameConstant}, arguments...), stdin, cli.Run)
}

func fixtureSignature() *object.Signature {
	return &object.Signature{Name: fixtureAuthorNameConstant, Email: fixtureAuthorEmailConstant, When: time.Now()}
}

func initRepository(testInstance *testing.T, path string) *git.Repository {
	testInstance.Helper()
	repository, initError := git.PlainInitWithOptions(path, &git.PlainInitOptions{
		InitOptions: git.InitOptions{DefaultBranch: plumbing.NewBranchReferenceName(fixtureBranchNameConstant)},
	})
	require.NoError(testInstance, initError)
	return repository
}

func commitFile(testInstance *testing.T, repository *git.Repository, content string, message string) plumbing.Hash {
	testInstance.Helper()
	worktree, worktreeError := repository.Worktree()
	require.NoError(testInstance, worktreeError)

	filePath := filepath.Join(worktree.Filesystem.Root(), fixtureFileNameConstant)
	require.NoError(testInstance, os.WriteFile(filePath, []byte(content), fixtureFilePermissionsConstant))
	_, addError := worktree.Add(fixtureFileNameConstant)
	require.NoError(testInstance, addError)

	hash, commitError := worktree.Commit(message, &git.CommitOptions{Author: fixtureSignature()})
	require.NoError(testInstance, commitError)
	return hash
}

// remoteFixture is a bare repository with two commits on main.
type remoteFixture struct {
	path   string
	first  plumbing.Hash
	second plumbing.Hash
}

func newRemoteFixture(testInstance *testing.T) remoteFixture {
	testInstance.Helper()
	fixtureRoot := testcli.MkdirTemp(testInstance)
	seedPath := filepath.Join(fixtureRoot, "seed")
	remotePath := filepath.Join(fixtureRoot, "remote.git")

	seed := initRepository(testInstance, seedPath)
	first := commitFile(testInstance, seed, "first\n", "first")
	second := commitFile(testInstance, seed, "second\n", "second")

	_, cloneError := git.PlainClone(remotePath, true, &git.CloneOptions{URL: seedPath})
	require.NoError(testInstance, cloneError)

	return remoteFixture{path: remotePath, first: first, second: second}
}

func (fixture remoteFixture) clone(testInstance *testing.T, path string) *git.Repository {
	testInstance.Helper()
	repository, cloneError := git.PlainClone(path, false, &git.CloneOptions{URL: fixture.path})
	require.NoError(testInstance, cloneError)
	return repository
}

func (fixture remoteFixture) branchHash(testInstance *testing.T) plumbing.Hash {
	testInstance.Helper()
	repository, openError := git.PlainOpen(fixture.path)
	require.NoError(testInstance, openError)
	return referenceHash(testInstance, repository)
}

func referenceHash(testInstance *testing.T, repository *git.Repository) plumbing.Hash {
	testInstance.Helper()
	reference, referenceError := repository.Reference(plumbing.NewBranchReferenceName(fixtureBranchNameConstant), true)
	require.NoError(testInstance, referenceError)
	return reference.Hash()
}

func resetHard(testInstance *testing.T, repository *git.Repository, commit plumbing.Hash) {
	testInstance.Helper()
	worktree, worktreeError := repository.Worktree()
	require.NoError(testInstance, worktreeError)
	require.NoError(testInstance, worktree.Reset(&git.ResetOptions{Commit: commit, Mode: git.HardReset}))
}

// reopen reads the repository again so references written by the git binary are visible.
func reopen(testInstance *testing.T, path string) *git.Repository {
	testInstance.Helper()
	repository, openError := git.PlainOpen(path)
	require.NoError(testInstance, openError)
	return repository
}
