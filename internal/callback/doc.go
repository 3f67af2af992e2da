// Package callback defines the hooks the train action invokes and the
// built-in callbacks.
//
// A callback is any value implementing a subset of the capability interfaces
// below. The dispatcher probes each callback with a type assertion and only
// calls the hooks it implements.
//
// Hook order for one train action:
//
//	OnTrainStart
//	  OnEpochStart
//	    OnBatchStart → (forward, optimizer step) → OnBatchEnd → evaluations
//	  OnEpochEnd
//	OnTrainEnd
package callback
