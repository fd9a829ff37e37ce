// Package input implements input acquisition for the two period slots.
//
// Admission happens before a file reaches a slot: only the declared
// spreadsheet media type is accepted, and a multi-file candidate keeps only
// its first entry. File contents are never inspected.
package input
