// Package node defines the vertex type of the computation graph.
package node
