// Package cli implements the command-line interface for bookclubs.
//
// The cli package provides the Cobra-based CLI with the clean, fetch, books
// and reviews commands. It loads the layered configuration, sets up the run
// logger and metrics, and coordinates the source, storage, clean, calendar
// and catalog packages. Summaries are written as text or JSON.
package cli
