// Package filehandler implements the File and Rotating file handler
// variants. Both share a single fileBase: a lazily-opened
// *os.File behind a bufio.Writer, guarded by one write lock so that a
// rotation (close, rename chain, reopen) can never interleave with a
// write from either the sync or the async path — the write lock is
// what makes rotation atomic from the writer's perspective.
//
// Rotating wraps the same fileBase with non-zero rotation parameters;
// File simply never triggers a rotation check.
package filehandler
