// Package dag orders named declarations by their dependencies. The pipeline
// builder uses it to sort `call` blocks before invoking them on a graph, and
// to reject cycles between them.
package dag
