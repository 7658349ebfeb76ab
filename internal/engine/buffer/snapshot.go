package buffer

// Snapshot is a read-only view of a buffer at one revision. It is safe for
// concurrent access and does not change when the buffer is edited.
type Snapshot struct {
	text       string
	lineStarts []int
	revisionID RevisionID
	tabWidth   int
	language   string
}

// Text returns the snapshot content.
func (s *Snapshot) Text() string {
	return s.text
}

// Len returns the content length in bytes.
func (s *Snapshot) Len() ByteOffset {
	return len(s.text)
}

// LineCount returns the number of lines.
func (s *Snapshot) LineCount() uint32 {
	return uint32(len(s.lineStarts))
}

// LineText returns the content of a line without its newline.
func (s *Snapshot) LineText(line uint32) string {
	return lineText(s.text, s.lineStarts, line)
}

// LineStartOffset returns the offset of the first byte of a line.
func (s *Snapshot) LineStartOffset(line uint32) ByteOffset {
	return lineStart(s.text, s.lineStarts, line)
}

// OffsetToPoint converts a byte offset to a point.
func (s *Snapshot) OffsetToPoint(offset ByteOffset) Point {
	return offsetToPoint(s.text, s.lineStarts, offset)
}

// PointToOffset converts a point to a byte offset.
func (s *Snapshot) PointToOffset(p Point) ByteOffset {
	return pointToOffset(s.text, s.lineStarts, p)
}

// RevisionID returns the revision the snapshot was taken at.
func (s *Snapshot) RevisionID() RevisionID {
	return s.revisionID
}

// TabWidth returns the tab width at snapshot time.
func (s *Snapshot) TabWidth() int {
	return s.tabWidth
}

// IndentUnit returns the tab width at snapshot time.
func (s *Snapshot) IndentUnit() int {
	return s.tabWidth
}

// LanguageID returns the language at snapshot time.
func (s *Snapshot) LanguageID() string {
	return s.language
}
