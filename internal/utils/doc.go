// Package utils exposes reusable helpers consumed by the git-check commands.
//
// It houses the ConfigurationLoader and LoggerFactory abstractions that
// integrate Viper, environment variables, and zap logging for the CLI, along
// with the FlushingWriter used by the report sink.
package utils
