// Package literal decodes and encodes the small structured literals that scraped
// event data carries inside string columns, such as a venue written as
// {'name': 'Elliott Bay Book Company', 'rating': 4.8} or an address written as
// ['1521 10th Ave', 'Seattle, WA'].
//
// Parse accepts only a mapping or a sequence of primitive scalars (strings,
// numbers, booleans, None/null) in either Python or JSON spelling. Anything else
// returns ErrMalformed; nothing is ever evaluated.
package literal
