// Package schedule turns free-text "when" strings from event listings into
// structured start and end timestamps.
//
// A when-string such as "Wed, Feb 18, 7 – 8:30 PM" is split on commas into a
// day-of-week token, a date token, and a time token. The date token is resolved
// against a fixed list of month/day layouts, the time token is scanned for up to
// two clock times with AM/PM inherited from right to left, and the two are
// combined. An end time that is not after the start rolls over to the next day
// unless the time token names its own end date, as in
// "11 PM – Thu, Apr 16, 12 AM".
//
// Nothing in this package returns an error: unresolvable tokens yield empty
// fields.
package schedule
