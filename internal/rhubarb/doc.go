// Package rhubarb wraps the Rhubarb Lip Sync command line analyzer.
//
// Analyzer locates the executable by probing a fixed candidate list, builds
// the argument list for a Request, runs it through a services.Executor with a
// bounded wait and returns the raw export as an Output. Locating the binary
// is cached in a PathCache shared across concurrent runs.
//
// Failures map onto the shared error kinds: no executable found is
// ToolNotFound, a deadline is ToolTimeout, and a non-zero exit or missing
// artifact is ToolExecutionError carrying the analyzer's stderr verbatim.
// Nothing is retried.
package rhubarb
