// Package builder turns a planned node into a Task by resolving each bound
// input handle to a concrete value.
//
// # How It Works
//
// For each declared input port of the node:
//  1. **Pass-local values:** the value computed earlier in the same pass wins
//  2. **Activation cache:** otherwise a consuming cache view is consulted
//  3. **Failure:** otherwise the handle cannot be resolved and a
//     *graph.MissingInputError names it
//
// Resolution is by handle identity only. Two handles carrying equal values are
// still different inputs.
package builder
