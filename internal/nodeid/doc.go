// internal/nodeid/doc.go

/*
Package nodeid provides a structured, type-safe representation for node and
output-port identifiers within a computation graph.

A node is identified by the graph that owns it and its creation sequence
number. A handle names one output port of one node. Both are plain comparable
structs so they can key maps directly; nothing in the engine keys values by
pointer identity.

The canonical text format of a handle is `graph[G].node[N].port`, e.g.
`graph[1].node[3].mod_out`.
*/
package nodeid
