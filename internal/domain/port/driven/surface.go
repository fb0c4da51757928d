package driven

// Surface is the line-addressed editing surface a document is rendered onto.
// Line numbers are 0-based; ranges are half-open. Writes made through this
// interface must not be echoed back to the document as user edits.
type Surface interface {
	LineCount() int
	// Lines returns a copy of lines [start, end).
	Lines(start, end int) []string
	// SetLines replaces lines [start, end) with lines. start == end inserts.
	SetLines(start, end int, lines []string)
}
