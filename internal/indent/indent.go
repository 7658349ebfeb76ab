package indent

import (
	"fmt"
	"math"
	"regexp"
)

const (
	// PaletteSize is the number of colour slots indentation cycles through.
	PaletteSize = 7

	// DefaultUnit is the indentation width used when no usable width is known.
	DefaultUnit = 4
)

// leadingWhitespace matches a run of tabs and spaces anchored at a line start.
var leadingWhitespace = regexp.MustCompile(`(?m)^[\t ]+`)

// Range is a half-open byte range [Start, End) into a document.
type Range struct {
	Start int
	End   int
}

// String returns a human-readable representation of the range.
func (r Range) String() string {
	return fmt.Sprintf("[%d, %d)", r.Start, r.End)
}

// Len returns the number of bytes covered by the range.
func (r Range) Len() int {
	return r.End - r.Start
}

// IsEmpty returns true if the range covers no bytes.
func (r Range) IsEmpty() bool {
	return r.End <= r.Start
}

// Contains returns true if offset lies within the range.
func (r Range) Contains(offset int) bool {
	return offset >= r.Start && offset < r.End
}

// Overlaps returns true if the two ranges share at least one byte.
func (r Range) Overlaps(other Range) bool {
	return r.Start < other.End && other.Start < r.End
}

// Run is a maximal line-leading run of tab and space characters.
type Run struct {
	Start int
	Len   int
}

// End returns the offset just past the run.
func (r Run) End() int {
	return r.Start + r.Len
}

// Buckets holds the ranges to paint for each palette slot.
type Buckets [PaletteSize][]Range

// Ranges returns the ranges for the given colour slot.
// Out-of-range indices return nil.
func (b *Buckets) Ranges(colorIndex int) []Range {
	if colorIndex < 0 || colorIndex >= PaletteSize {
		return nil
	}
	return b[colorIndex]
}

// Total returns the number of ranges across all buckets.
func (b *Buckets) Total() int {
	n := 0
	for i := range b {
		n += len(b[i])
	}
	return n
}

// DepthColor maps an indentation depth to its palette slot.
func DepthColor(depth int) int {
	return depth % PaletteSize
}

// FindRuns returns every line-leading whitespace run in document order.
func FindRuns(text string) []Run {
	matches := leadingWhitespace.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}
	runs := make([]Run, 0, len(matches))
	for _, m := range matches {
		runs = append(runs, Run{Start: m[0], Len: m[1] - m[0]})
	}
	return runs
}

// Compute partitions every leading whitespace run of text into chunks of
// unit bytes and assigns each chunk to the bucket of its depth.
//
// A unit of zero or less is replaced with DefaultUnit. Depth restarts at
// zero for every run. Within each bucket ranges are in document order.
func Compute(text string, unit int) Buckets {
	if unit <= 0 {
		unit = DefaultUnit
	}

	var buckets Buckets
	for _, run := range FindRuns(text) {
		depth := 0
		for i := 0; i < run.Len; i += unit {
			start := run.Start + i
			end := min(start+unit, run.End())
			slot := DepthColor(depth)
			buckets[slot] = append(buckets[slot], Range{Start: start, End: end})
			depth++
		}
	}
	return buckets
}

// ResolveUnit normalises a host-reported indentation width.
//
// Positive whole numbers of any integer or float type are accepted; any
// other value, including nil, zero, negatives, fractions and non-numeric
// types, yields DefaultUnit.
func ResolveUnit(v any) int {
	switch n := v.(type) {
	case int:
		return positiveOrDefault(int64(n))
	case int8:
		return positiveOrDefault(int64(n))
	case int16:
		return positiveOrDefault(int64(n))
	case int32:
		return positiveOrDefault(int64(n))
	case int64:
		return positiveOrDefault(n)
	case uint:
		return positiveOrDefault(int64(min(n, math.MaxInt32)))
	case uint8:
		return positiveOrDefault(int64(n))
	case uint16:
		return positiveOrDefault(int64(n))
	case uint32:
		return positiveOrDefault(int64(n))
	case uint64:
		return positiveOrDefault(int64(min(n, math.MaxInt32)))
	case float32:
		return wholeOrDefault(float64(n))
	case float64:
		return wholeOrDefault(n)
	default:
		return DefaultUnit
	}
}

func positiveOrDefault(n int64) int {
	if n <= 0 || n > math.MaxInt32 {
		return DefaultUnit
	}
	return int(n)
}

func wholeOrDefault(f float64) int {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return DefaultUnit
	}
	if f <= 0 || f > math.MaxInt32 {
		return DefaultUnit
	}
	return int(f)
}
