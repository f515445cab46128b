// Package source fetches raw book club events from the SerpAPI google_events
// engine.
//
// Each configured query is paged ten results at a time until a page comes
// back empty, the page limit is reached, or the run has used its request
// budget. Transient failures are retried with exponential backoff. Events are
// flattened into raw records whose nested address and venue values are kept
// as literal text for the cleaning stage.
package source
