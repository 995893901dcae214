package cli_test

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	checkingDirectoryTemplate = "-- Checking directory: %s --"
	trackingBranchLine        = "- BRANCH: main -> origin/main -"
	remoteUpToDateLine        = "- REMOTE UP TO DATE -"
	branchCleanLine           = "- BRANCH CLEAN -"
	branchNotCleanLine        = "-- BRANCH NOT CLEAN:"
	branchBehindLine          = "-- BRANCH IS BEHIND REMOTE"
	branchDivergedLine        = "-- BRANCH DIVERGED FROM REMOTE"
	commitMadeLine            = "- COMMIT MADE -"
	pushMadeLine              = "- PUSH MADE -"
	pullMadeLine              = "- PULL MADE -"
	pushSkippedDivergedLine   = "-- PUSH SKIPPED: branch diverged from remote"
	pullSkippedDivergedLine   = "-- PULL SKIPPED: branch diverged from remote"
	notRepositoryLine         = "- NOT A GIT REPOSITORY -"
)

func TestCheckCleanRepositoryTakesNoAction(testInstance *testing.T) {
	isolateEnvironment(testInstance)
	workspace := newWorkspace(testInstance)
	remote := newRemoteFixture(testInstance)
	repositoryPath := filepath.Join(workspace, "clean")
	remote.clone(testInstance, repositoryPath)

	exitCode, stdout, stderr := runGitCheck(testInstance, nil, "--repo", "clean", "--commit", "--push", "--pull")
	require.Equal(testInstance, 0, exitCode, stderr)
	require.Contains(testInstance, stdout, fmt.Sprintf(checkingDirectoryTemplate, repositoryPath))
	require.Contains(testInstance, stdout, trackingBranchLine)
	require.Contains(testInstance, stdout, remoteUpToDateLine)
	require.Contains(testInstance, stdout, branchCleanLine)
	for _, unexpected := range []string{commitMadeLine, pushMadeLine, pullMadeLine, "SKIPPED", "ERROR"} {
		require.NotContains(testInstance, stdout, unexpected)
	}
	require.Equal(testInstance, remote.second, remote.branchHash(testInstance))
}

func TestCheckCommitsAndPushesLocalChanges(testInstance *testing.T) {
	isolateEnvironment(testInstance)
	workspace := newWorkspace(testInstance)
	remote := newRemoteFixture(testInstance)
	repositoryPath := filepath.Join(workspace, "dirty")
	remote.clone(testInstance, repositoryPath)
	require.NoError(testInstance, os.WriteFile(filepath.Join(repositoryPath, "notes.txt"), []byte("pending\n"), fixtureFilePermissionsConstant))

	exitCode, stdout, stderr := runGitCheck(testInstance, nil, "--repo", "dirty", "--commit", "--push")
	require.Equal(testInstance, 0, exitCode, stderr)
	require.Contains(testInstance, stdout, branchNotCleanLine)
	require.Contains(testInstance, stdout, commitMadeLine)
	require.Contains(testInstance, stdout, pushMadeLine)

	localHead := referenceHash(testInstance, reopen(testInstance, repositoryPath))
	require.NotEqual(testInstance, remote.second, localHead)
	require.Equal(testInstance, localHead, remote.branchHash(testInstance))
}

func TestCheckPullsWhenBehind(testInstance *testing.T) {
	isolateEnvironment(testInstance)
	workspace := newWorkspace(testInstance)
	remote := newRemoteFixture(testInstance)
	repositoryPath := filepath.Join(workspace, "behind")
	repository := remote.clone(testInstance, repositoryPath)
	resetHard(testInstance, repository, remote.first)

	exitCode, stdout, stderr := runGitCheck(testInstance, nil, "--repo", "behind", "--pull")
	require.Equal(testInstance, 0, exitCode, stderr)
	require.Contains(testInstance, stdout, branchBehindLine)
	require.Contains(testInstance, stdout, pullMadeLine)
	require.NotContains(testInstance, stdout, commitMadeLine)
	require.Equal(testInstance, remote.second, referenceHash(testInstance, reopen(testInstance, repositoryPath)))
}

func TestCheckNeverSynchronisesDivergedHistory(testInstance *testing.T) {
	isolateEnvironment(testInstance)
	workspace := newWorkspace(testInstance)
	remote := newRemoteFixture(testInstance)
	repositoryPath := filepath.Join(workspace, "diverged")
	repository := remote.clone(testInstance, repositoryPath)
	resetHard(testInstance, repository, remote.first)
	localCommit := commitFile(testInstance, repository, "local\n", "local")

	exitCode, stdout, stderr := runGitCheck(testInstance, nil, "--repo", "diverged", "--commit", "--push", "--pull")
	require.Equal(testInstance, 0, exitCode, stderr)
	require.Contains(testInstance, stdout, branchDivergedLine)
	require.Contains(testInstance, stdout, pushSkippedDivergedLine)
	require.Contains(testInstance, stdout, pullSkippedDivergedLine)
	require.NotContains(testInstance, stdout, pushMadeLine)
	require.NotContains(testInstance, stdout, pullMadeLine)

	require.Equal(testInstance, remote.second, remote.branchHash(testInstance))
	require.Equal(testInstance, localCommit, referenceHash(testInstance, reopen(testInstance, repositoryPath)))
}

func TestCheckRecursiveSearchHonoursDepth(testInstance *testing.T) {
	testCases := []struct {
		name          string
		recursion     string
		warning       string
		expectsDeeper bool
	}{
		{name: "DepthOne", recursion: "1", warning: "WARNING: Recursive search set to 1. This can be dangerous."},
		{name: "Unbounded", recursion: "all", warning: "WARNING: Recursive search set to ALL. This can be dangerous.", expectsDeeper: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			isolateEnvironment(testInstance)
			workspace := newWorkspace(testInstance, filepath.Join("root", "outer", "middle"))
			outerPath := filepath.Join(workspace, "root", "outer")
			innerPath := filepath.Join(outerPath, "inner")
			middlePath := filepath.Join(outerPath, "middle")
			deepPath := filepath.Join(middlePath, "deep")
			commitFile(testInstance, initRepository(testInstance, innerPath), "inner\n", "inner")
			commitFile(testInstance, initRepository(testInstance, deepPath), "deep\n", "deep")

			exitCode, stdout, stderr := runGitCheck(testInstance, nil, "--search", "root", "--recursive", testCase.recursion)
			require.Equal(testInstance, 0, exitCode, stderr)
			require.Contains(testInstance, stdout, testCase.warning)
			require.Contains(testInstance, stdout, notRepositoryLine)
			require.Contains(testInstance, stdout, fmt.Sprintf(checkingDirectoryTemplate, outerPath))
			require.Contains(testInstance, stdout, fmt.Sprintf(checkingDirectoryTemplate, innerPath))
			require.Contains(testInstance, stdout, fmt.Sprintf(checkingDirectoryTemplate, middlePath))
			if testCase.expectsDeeper {
				require.Contains(testInstance, stdout, fmt.Sprintf(checkingDirectoryTemplate, deepPath))
				return
			}
			require.NotContains(testInstance, stdout, fmt.Sprintf(checkingDirectoryTemplate, deepPath))
		})
	}
}

func TestCheckIgnoredDirectoriesAreNeitherCheckedNorSearched(testInstance *testing.T) {
	isolateEnvironment(testInstance)
	workspace := newWorkspace(testInstance, filepath.Join("root", "skipped"))
	keptPath := filepath.Join(workspace, "root", "kept")
	hiddenPath := filepath.Join(workspace, "root", "skipped", "hidden")
	commitFile(testInstance, initRepository(testInstance, keptPath), "kept\n", "kept")
	commitFile(testInstance, initRepository(testInstance, hiddenPath), "hidden\n", "hidden")

	exitCode, stdout, stderr := runGitCheck(testInstance, nil, "--search", "root", "--ignore", filepath.Join("root", "skipped"), "--recursive", "all", "--repo", filepath.Join("root", "kept"))
	require.Equal(testInstance, 0, exitCode, stderr)
	require.Contains(testInstance, stdout, fmt.Sprintf(checkingDirectoryTemplate, keptPath))
	require.NotContains(testInstance, stdout, filepath.Join(workspace, "root", "skipped")+" --")
	require.NotContains(testInstance, stdout, hiddenPath+" --")
	require.Equal(testInstance, 1, strings.Count(stdout, fmt.Sprintf(checkingDirectoryTemplate, keptPath)))
}
