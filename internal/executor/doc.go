// Package executor decides which tasks in a resolved order actually need to
// run and runs them, sequentially or on a bounded worker pool. Staleness is
// judged by filesystem modification times, evaluated immediately before each
// task's gating decision and never cached across the run.
package executor
