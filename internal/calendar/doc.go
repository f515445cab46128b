// Package calendar exports cleaned book club events as iCalendar (RFC 5545).
//
// Only events with a resolved start time are exported. Times are written as
// floating local times because the source listings carry no time zone.
package calendar
