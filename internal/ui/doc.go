// Package ui renders the user-facing report and the git command event log.
package ui
