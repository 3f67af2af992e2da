// Package graph provides the facade used to build and query the computation
// graph.
//
// # Why Graph Package Exists
//
// The graph is the single source of truth for which module invocations exist
// and how their ports are wired. Building it never executes anything: Invoke
// only validates the port bindings, appends one node and records its edges.
// Execution is the job of the executor, which reads the graph through this
// facade.
//
// # Architecture: The Facade Pattern
//
//	┌─────────────────────────────────────┐
//	│           Graph Facade              │
//	│  (Invoke, Node, NodeOf,             │
//	│   DependenciesOf, AllNodes)         │
//	└─────────────────┬───────────────────┘
//	                  │
//	                  ▼
//	          ┌────────────────┐
//	          │ Topology Store │
//	          │  (Structure)   │
//	          └────────────────┘
//
// Computed values never live in the graph. They are kept in nodestore.Store
// instances owned by the executor (pass-local) and by the activation cache.
//
// # Invariants
//
//   - Append-only: nodes are never removed or modified.
//   - Every edge points from an earlier-created node to a later-created one, so
//     the graph is acyclic by construction and creation order is a valid
//     topological order.
//   - A handle is only valid in the graph that created it.
//
// # Thread-Safety
//
// All Graph methods are thread-safe. Invoke holds a lock so sequence numbers
// are assigned without gaps.
package graph
