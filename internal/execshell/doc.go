// Package execshell runs git as a subprocess on behalf of git-check.
//
// ShellExecutor validates its collaborators, logs every invocation, notifies a
// CommandEventObserver, and converts non-zero exit codes into
// CommandFailedError values that still carry the captured output. The
// OSCommandRunner is the os/exec backed CommandRunner used outside tests.
package execshell
