// Package allocation seats eligible students on classroom benches and assigns
// invigilators to the rooms a session uses.
//
// Every function in this package is pure: inputs are never mutated and updated
// student and invigilator snapshots are returned as new slices. Sessions that
// share students or invigilators must be planned one after another, feeding the
// snapshot returned by one call into the next (see PlanSessions).
package allocation
