// Package indent computes rainbow indentation decorations.
//
// The package is pure: it knows nothing about editors, terminals or
// timers. Given the full text of a document and an indentation unit it
// returns, for each of the PaletteSize colour slots, the byte ranges that
// should be painted in that colour.
//
// Every maximal run of tabs and spaces at the start of a line is split into
// consecutive chunks of unit bytes. The chunk at depth d goes to bucket
// d mod PaletteSize, and the last chunk of a run is truncated at the run's
// end:
//
//	buckets := indent.Compute("if x:\n    y\n        z\n", 4)
//	// buckets[0] == []Range{{6, 10}, {12, 16}}
//	// buckets[1] == []Range{{16, 20}}
//
// Tabs and spaces advance the scan identically; a tab counts as one
// position, not as a tab stop.
package indent
