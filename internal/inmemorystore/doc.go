// Package inmemorystore provides a thread-safe, in-memory implementation
// of the nodestore.Store interface. It is suitable for pass-local values and
// for activation cache entries, neither of which needs to be persisted.
package inmemorystore
