// Package dispatcher drives the train and infer actions over a built graph.
//
// Both actions discover the data-source nodes in the closure of their targets,
// pull batches from them in lockstep (the shortest source ends the epoch) and
// run one evaluation pass per batch through the executor.
//
// Infer honors the activation cache flags: the cache is validated and begun
// before anything runs, committed when the action succeeds and aborted (which
// discards a partial population) when it fails. A consuming infer replays the
// recorded batches instead of reading the data sources.
//
// Train calls the callbacks' hooks around every batch and epoch, hands the
// loss values to the Optimizer every BatchesPerStep batches, and stops after
// NumEpochs epochs or MaxSteps optimizer steps.
package dispatcher
