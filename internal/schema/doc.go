// Package schema models what the optimizer knows about a pipeline's data: the
// set of column names present at a point in the pipeline, and the declared
// effect each transformation has on that set.
//
// # Pass-through model
//
// A transformation declares a Signature: the columns it consumes (Input) and
// the columns it emits (Output). Every column not mentioned by the signature
// is assumed to flow through untouched, so the schema after a step is
//
//	(current - Input) ∪ Output
//
// which is what NextState computes.
//
// # Canonical states
//
// A Manager interns column sets into *State handles. Value-equal sets always
// resolve to the identical handle for the lifetime of the Manager, which lets
// the graph compare states by pointer. Sets are keyed by an explicit,
// length-prefixed encoding of their sorted members rather than by a hash, so
// two different sets can never share a handle.
package schema
