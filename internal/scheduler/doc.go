// Package scheduler decides which nodes an evaluation pass must run and in
// what order.
//
// # How It Works
//
// Starting from the requested output handles, the scheduler walks backward
// along input edges and collects the upstream closure. A node whose outputs are
// already available (for example from a consuming activation cache) ends the
// walk on its branch: its producers are not needed.
//
// The closure is returned sorted by creation sequence. Because the graph only
// ever records edges from an earlier node to a later one, creation order is a
// valid topological order, and it is deterministic: ties between independent
// nodes are broken by creation order.
//
// # Relationship with Other Components
//
//   - **Graph:** queried for the producer of each handle and for dependencies
//   - **Executor:** runs the returned plan front to back
package scheduler
