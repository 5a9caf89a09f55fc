// Package graph builds the schema-state transformation graph of a pipeline.
//
// # Why Graph Package Exists
//
// The optimizer never looks at data. All it knows is how each signed step
// changes the set of columns, so a pipeline is reduced to a walk over schema
// states:
//
//	∅ --source--> {id, name} --rename--> {id, full_name} --drop--> {id}
//
// Each distinct column set becomes one node and each signed step becomes one
// edge from the state before it ran to the state after. Optimization
// strategies then reason about the shape of that walk: a step whose edge is a
// self-loop changed nothing, and a group of steps that brings the walk back
// to a state it already visited changed nothing in total.
//
// # Structure
//
//   - **Node:** wraps one canonical schema.State. Node 0 is always the empty
//     schema, the state before the source runs.
//   - **Edge:** carries the id and signature of the step that caused the
//     transition. The graph is a multigraph: two steps making the same
//     transition produce two parallel edges. Source and sink edges are
//     flagged Structural.
//
// Nodes and edges keep insertion order, so building the same pipeline twice
// yields the same graph, the same Fingerprint, and the same SimpleCycles.
//
// # Lifecycle
//
// A Graph is built fresh by Build for one optimization pass, read by any
// number of strategies concurrently, and discarded afterwards. It is never
// mutated once Build returns.
package graph
