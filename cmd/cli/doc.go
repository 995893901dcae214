// Package cli builds the git-check command line: the Cobra root command with its
// flag grammar, the viper backed configuration, the zap logger, and the
// orchestration that turns one invocation into a traversal, a configuration store
// operation, or an interactive console session.
package cli
