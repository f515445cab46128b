// Package bookinfo pulls the featured book out of free-text event titles and
// descriptions and tags events by genre or audience.
//
// Extraction runs an ordered chain of heuristic rules:
//
//	"Book Club: 'The Night Circus' by Erin Morgenstern"   -> by_split
//	"Reading Louise Penny's A World of Curiosities"       -> possessive
//
// The first rule yielding both a title and an author wins; the title is tried
// before the description. Tags come from a fixed keyword dictionary matched on
// whole words.
package bookinfo
