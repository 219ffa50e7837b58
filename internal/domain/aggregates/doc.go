// Package aggregates defines domain-facing aggregate contracts for the course
// lifecycle.
//
// Contracts avoid persistence and transport details. Each write method is a
// semantic boundary where authorization and invariants are enforced atomically.
package aggregates
