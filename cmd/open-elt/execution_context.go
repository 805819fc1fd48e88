package main

import (
	"sync"

	"github.com/spf13/cobra"
)

// commandExecutionContext captures which command is running so the fatal
// error path can decide between structured logging and plain stderr.
type commandExecutionContext struct {
	CommandPath       string
	UsesStructuredLog bool
}

var (
	executionContextMu sync.Mutex
	executionContext   commandExecutionContext
)

func setCommandExecutionContext(ctx commandExecutionContext) {
	executionContextMu.Lock()
	defer executionContextMu.Unlock()
	executionContext = ctx
}

func resetCommandExecutionContext() {
	setCommandExecutionContext(commandExecutionContext{})
}

func currentCommandExecutionContext() commandExecutionContext {
	executionContextMu.Lock()
	defer executionContextMu.Unlock()
	return executionContext
}

// commandUsesStructuredLogging reports whether a command's failures should
// go through the JSON logger. Operator-facing helpers print plain text.
func commandUsesStructuredLogging(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "consent-url":
		return false
	default:
		return true
	}
}

func recordExecutionContext(cmd *cobra.Command) {
	setCommandExecutionContext(commandExecutionContext{
		CommandPath:       cmd.CommandPath(),
		UsesStructuredLog: commandUsesStructuredLogging(cmd),
	})
}
