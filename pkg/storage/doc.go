// Package storage writes files so that a crash never leaves a torn file
// behind. Manager keeps a directory of keyed artifacts; WriteJSON and
// WriteFileAtomic cover single documents such as checkpoints and output.
package storage
