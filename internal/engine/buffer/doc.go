// Package buffer provides the editor's thread-safe text buffer.
//
// The buffer stores its content as a single string plus an index of line
// start offsets, which is all a single-file viewer needs. It provides:
//
//   - Thread-safe read/write access via sync.RWMutex
//   - Coordinate conversion between byte offsets and line/column points
//   - Read-only snapshots for concurrent access
//   - Line ending normalization (CRLF and CR become LF on load)
//   - Revision tracking
//   - Per-document display settings (tab width, language ID, path)
//
// Basic usage:
//
//	buf := buffer.NewBufferFromString("node a:\n    do x\n", buffer.WithLanguage("rivet"))
//	buf.Insert(8, "    ")
//	pt := buf.OffsetToPoint(10) // (1:2)
//
// Offsets are byte offsets. Columns in Point are bytes from line start.
package buffer
