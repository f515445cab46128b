// Package clean turns a raw batch of scraped book-club events into the
// cleaned, analysis-ready batch.
//
// Run drives the stages in order: fields are trimmed and blank rows dropped,
// then each record gets its schedule, book, tag, venue and address columns
// derived, and finally records without a title or link are filtered out,
// duplicate links removed and the columns put in their canonical order.
// Nothing a single record contains can fail the batch; facets that cannot be
// derived are left empty and logged at DEBUG.
package clean
