package natsort_test

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/dgallion1/docserve/internal/natsort"
)

func TestCompare(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b string
		want int
	}{
		{"a1", "a2", -1},
		{"a2", "a10", -1},
		{"a10", "a2", 1},
		{"doc2", "doc10", -1},
		{"Apple", "banana", -1},
		{"banana", "Apple", 1},
		{"intro", "Intro", 1}, // equal naturally, byte order decides
		{"a", "a1", -1},
		{"same", "same", 0},
		{"v1.10", "v1.9", 1},
		{"page9", "page0010", -1},
		{"a\xff", "a\xfe", 1},
		{"\xffz", "a", 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, natsort.Compare(tt.a, tt.b), "Compare(%q, %q)", tt.a, tt.b)
	}
}

func TestSortNumericAware(t *testing.T) {
	t.Parallel()

	names := []string{"a2.md", "a10.md", "a1.md"}
	slices.SortFunc(names, natsort.Compare)
	assert.Equal(t, []string{"a1.md", "a2.md", "a10.md"}, names)
}

func TestCompareIsATotalOrder(t *testing.T) {
	t.Parallel()

	name := rapid.StringMatching(`[a-cA-C]{0,2}([1-9][0-9]{0,2})?[a-cA-C.]{0,2}([1-9][0-9]{0,2})?`)
	rapid.Check(t, func(t *rapid.T) {
		a := name.Draw(t, "a")
		b := name.Draw(t, "b")
		c := name.Draw(t, "c")

		if natsort.Compare(a, b) != -natsort.Compare(b, a) {
			t.Fatalf("not antisymmetric: %q %q", a, b)
		}
		if (natsort.Compare(a, b) == 0) != (a == b) {
			t.Fatalf("zero only for identical names: %q %q", a, b)
		}
		if natsort.Less(a, b) && natsort.Less(b, c) && !natsort.Less(a, c) {
			t.Fatalf("not transitive: %q %q %q", a, b, c)
		}
	})
}

func TestCompareArbitraryBytes(t *testing.T) {
	t.Parallel()

	raw := rapid.Custom(func(t *rapid.T) string {
		return string(rapid.SliceOfN(rapid.Byte(), 0, 8).Draw(t, "bytes"))
	})
	rapid.Check(t, func(t *rapid.T) {
		a := raw.Draw(t, "a")
		b := raw.Draw(t, "b")

		if natsort.Compare(a, b) != -natsort.Compare(b, a) {
			t.Fatalf("not antisymmetric: %q %q", a, b)
		}
		if (natsort.Compare(a, b) == 0) != (a == b) {
			t.Fatalf("zero only for identical names: %q %q", a, b)
		}
	})
}

func TestSortInvalidUTF8(t *testing.T) {
	t.Parallel()

	names := []string{"b.md", "a\xff.md", "a\xfe.md", "\xc3"}
	assert.NotPanics(t, func() { slices.SortFunc(names, natsort.Compare) })
	assert.Equal(t, []string{"a\xfe.md", "a\xff.md", "b.md", "\xc3"}, names)
}
