// Package checkpoint saves and restores the parameters of stateful modules.
//
// A Snapshot holds the state dicts of every stateful module, keyed by module
// instance name, together with the step and epoch it was taken at. Snapshots
// are encoded with msgpack and compressed with zstd.
//
// DirStore keeps snapshots as `checkpoint-STEP-<n>.nmc` files in a local
// directory and restores the one with the highest step. GCSStore mirrors a
// DirStore to a Cloud Storage bucket.
package checkpoint
