// Package repl provides the interactive mode of authclient.
//
//   - repl.go: read-eval-print loop, line splitting, per-command interrupt
//   - completer.go: command name suggestions for help and typos
//   - history.go: command history persisted to ~/.authclient/history
//
// Every line is split into arguments and handed to an Executor, which runs
// it through the same command tree as the one-shot CLI.
package repl
