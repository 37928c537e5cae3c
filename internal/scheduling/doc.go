// Package scheduling holds the pure parts of the session scheduler: interval
// overlap, conflict classification, batch analysis, slot suggestions and
// weekly recurrence expansion. Nothing here performs I/O; callers fetch the
// persisted sessions and pass them in.
package scheduling
