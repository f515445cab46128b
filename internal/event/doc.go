// Package event provides the tabular record model for scraped book-club events.
//
// A Batch holds an ordered header plus rows keyed by column name. Raw batches come
// from an event source (CSV, JSON, or the SerpAPI client); the clean package enriches
// the same batch in place with derived columns and reorders it for output.
package event
