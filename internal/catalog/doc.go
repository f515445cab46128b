// Package catalog converts book metadata and review dumps from JSON Lines to
// CSV.
//
// ConvertBooks keeps the most common categories of each book and drops
// columns that are not useful for recommendations. ConvertReviews groups well
// rated reviews by user and keeps users who reviewed more than one book.
package catalog
