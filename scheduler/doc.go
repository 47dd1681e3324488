// Package scheduler drives a coroutine runtime with a round-robin sweep loop.
//
// Each sweep visits the registered task ids in creation order and resumes
// those still active. Sweeps repeat until a Stopper reports true, no task is
// active, a sweep limit is reached or the context ends.
//
// By default a raised stop condition takes effect at the next sweep boundary:
// the sweep in which a task raised it still offers every later task its turn.
// StopImmediately abandons the rest of the sweep instead.
package scheduler
