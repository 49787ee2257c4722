// Package scheduler turns a sir.Graph into a schedule across
// heterogeneous devices (CPU/GPU/FPGA/WASM/JVM/TPU):
//
//   - Task extraction from graph vertices, with heuristic cycle and
//     parallelism estimates.
//   - Device eligibility (hardware affinity, memory, feature tags) and
//     per-device time estimation.
//   - CausalScheduler: a greedy earliest-finish-time dispatcher over the
//     dependency DAG, deterministic given stable vertex/device ids.
//   - AdaptiveScheduler: wraps CausalScheduler with online profiling and
//     migrates a task to a device whose observed average time beats the
//     current assignment by at least the migration threshold.
//   - WorkStealingScheduler: per-device FIFO queues with tail-stealing
//     from the busiest queue for locality.
//
// Errors:
//
//	ErrNoEligibleDevice names the case of a task that no configured
//	device can run. No scheduler returns it: CausalScheduler marks such
//	a task Failed, and WorkStealingScheduler.AddTask leaves it unqueued.
package scheduler

import "errors"

// ErrNoEligibleDevice indicates no configured device satisfies a task's
// affinity, memory, or feature-tag requirements.
var ErrNoEligibleDevice = errors.New("scheduler: no eligible device for task")
