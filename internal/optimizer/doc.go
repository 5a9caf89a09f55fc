// Package optimizer removes steps that provably contribute nothing to a
// pipeline's final schema.
//
// An Optimizer builds a fresh graph.Graph for every call, runs each Strategy
// against it concurrently, unions what they flag, and returns a pruned copy
// of the pipeline. Two strategies ship with the package:
//
//   - RedundancyStrategy flags steps whose transition is a self-loop.
//   - CycleStrategy flags every step on a simple cycle of schema states.
//
// New strategies plug in by implementing Strategy; neither the graph builder
// nor the Optimizer needs to change.
//
// Source and sink are structural. They take part in graph construction and a
// strategy may flag them, but they are never removed and never reported by
// RedundantStepIDs.
//
// Only steps declaring a signature are analyzed. Steps without one are
// invisible here and always survive optimization.
package optimizer
