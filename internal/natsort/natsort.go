// Package natsort orders names the way people read them: digit runs compare
// by numeric value and letters compare without regard to case, so "doc2"
// sorts before "doc10".
package natsort

import (
	"strings"

	"github.com/maruel/natural"
)

// Compare returns -1, 0 or +1. Names that are equal under the natural rules
// but differ in raw form fall back to byte order so the result is a total
// order. Names need not be valid UTF-8.
func Compare(a, b string) int {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	switch {
	case natural.Less(la, lb):
		return -1
	case natural.Less(lb, la):
		return 1
	}
	return strings.Compare(a, b)
}

// Less reports whether a sorts before b.
func Less(a, b string) bool { return Compare(a, b) < 0 }
