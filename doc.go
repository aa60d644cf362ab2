// Package mbo implements model-based optimization and quantifier elimination
// for linear real arithmetic.
//
// A Tableau holds a conjunction of linear constraints over exact rationals
// together with a model, an assignment of a value to every variable that
// satisfies every constraint. Starting from that model it can
//   - maximize a linear objective over the constraints (Maximize), and
//   - eliminate variables from the constraint set while preserving
//     satisfiability under the model (Project).
//
// Both operations are model-guided: among the valid pivots they always pick
// the one consistent with the current variable values, so the model stays a
// witness of the (shrinking) constraint set throughout.
//
// The tableau never decides satisfiability from scratch and never searches
// for a model; being handed a satisfying model is a precondition, and the
// model is maintained incrementally from there. Maximize and Project mutate
// the tableau destructively. Callers that need to retry or backtrack must
// clone the tableau beforehand; there is no undo log.
package mbo
