// Package nav resolves the deterministic page order of a guide corpus from
// numeric path prefixes (`NN_name` / `NN-name`) and materializes it as a
// weighted navigation tree with routes, breadcrumbs, and prev/next chains.
package nav

import (
	"sort"
	"strconv"
)

// Prefix is the parsed ordering prefix of one path segment.
type Prefix struct {
	// Present reports whether the segment carries a numeric ordering prefix.
	// A prefix is one or more digits followed by `_` or `-`; bare digits
	// without a separator do not count.
	Present bool
	// Number is the parsed prefix value (leading zeros allowed).
	Number int
	// Name is the segment with the prefix stripped; equals the raw segment
	// when no prefix is present.
	Name string
}

// ParsePrefix parses a path segment's ordering prefix.
func ParsePrefix(segment string) Prefix {
	i := 0
	for i < len(segment) && segment[i] >= '0' && segment[i] <= '9' {
		i++
	}
	if i == 0 || i >= len(segment) {
		return Prefix{Name: segment}
	}
	if segment[i] != '_' && segment[i] != '-' {
		return Prefix{Name: segment}
	}
	n, err := strconv.Atoi(segment[:i])
	if err != nil {
		return Prefix{Name: segment}
	}
	return Prefix{Present: true, Number: n, Name: segment[i+1:]}
}

// Less is the sibling ordering relation: prefixed segments before unprefixed
// ones, prefixed segments by number ascending, all remaining ties (duplicate
// numbers, or two unprefixed segments) by full segment name ascending.
func Less(a, b string) bool {
	pa, pb := ParsePrefix(a), ParsePrefix(b)
	if pa.Present != pb.Present {
		return pa.Present
	}
	if pa.Present && pa.Number != pb.Number {
		return pa.Number < pb.Number
	}
	return a < b
}

// SortSegments returns the segments in resolved sibling order. The input is
// not modified. Sorting is idempotent: applying it to its own output yields
// the same slice.
func SortSegments(segments []string) []string {
	out := make([]string, len(segments))
	copy(out, segments)
	sort.SliceStable(out, func(i, j int) bool { return Less(out[i], out[j]) })
	return out
}
