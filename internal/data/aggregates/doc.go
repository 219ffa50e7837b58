// Package aggregates contains infrastructure implementations of the course
// lifecycle aggregate contracts.
//
// Implementations compose table-level repos from internal/data/repos, own the
// transaction boundary of every operation, and consult internal/policy after
// reloading the actor and the owning course inside that transaction.
package aggregates
