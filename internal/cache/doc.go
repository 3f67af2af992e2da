// Package cache implements the activation cache: an optional memoization
// layer that keeps the output values of one inference call, batch by batch,
// so later calls can reuse them instead of recomputing upstream nodes.
//
// The cache is governed by an explicit state machine:
//
//	Disabled ──Begin(populate)──▶ Populating ──Commit──▶ Populated
//	   ▲                              │                      │
//	   │                            Abort              Begin(consume)
//	   │                              │                      ▼
//	   └──────────Clear───────────────┴──────────────── Consuming
//
// There is no implicit invalidation: a cache must be populated, consumed and
// cleared explicitly. A rejected Begin leaves the state untouched.
package cache
