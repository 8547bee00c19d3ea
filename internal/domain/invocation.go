// Package domain holds the types shared by the parser, the dispatcher and the
// persistence layer. It has no infrastructure dependency.
package domain

import (
	"strings"
	"time"
)

// Invocation is one parsed command line, as recorded in the journal.
type Invocation struct {
	ID        string
	Command   string
	Args      []string
	Values    []string // canonical name=value lines, in insertion order
	ExitCode  int
	Error     string
	StartedAt time.Time
	Duration  time.Duration
}

// Succeeded reports whether the invocation exited cleanly.
func (i Invocation) Succeeded() bool {
	return i.ExitCode == 0 && i.Error == ""
}

// CommandLine rejoins the raw arguments for display.
func (i Invocation) CommandLine() string {
	return strings.Join(i.Args, " ")
}
