// Package pipeline builds the dataset end to end.
//
// An Orchestrator loads or discards the checkpoint, dispatches every pending
// id onto a bounded worker pool, merges the assembled records into the
// accumulator for the configured variant and writes the final output.
//
// Checkpoints follow a contiguous high-water mark: last_id is the largest id
// such that every id from the start up to it has finished, successfully or
// not. A checkpoint is written each time that mark crosses a multiple of
// the checkpoint cadence, so out-of-order completion never lets a resume
// skip unfinished work. Records already present in a restored accumulator
// are not fetched again.
package pipeline
