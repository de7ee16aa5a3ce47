// Package checkpoint persists build progress so an interrupted run can
// resume. A checkpoint records the high-water mark and the accumulated
// records; it is overwritten atomically and removed once the final output
// is on disk.
package checkpoint
