package nav

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParsePrefix(t *testing.T) {
	tests := []struct {
		segment string
		want    Prefix
	}{
		{"01_getting-started", Prefix{Present: true, Number: 1, Name: "getting-started"}},
		{"2-advanced", Prefix{Present: true, Number: 2, Name: "advanced"}},
		{"007_bond", Prefix{Present: true, Number: 7, Name: "bond"}},
		{"10_deployment", Prefix{Present: true, Number: 10, Name: "deployment"}},
		{"guide", Prefix{Name: "guide"}},
		{"01", Prefix{Name: "01"}},             // bare digits: no separator, no prefix
		{"01intro", Prefix{Name: "01intro"}},   // digits must be followed by _ or -
		{"_intro", Prefix{Name: "_intro"}},     // no digits before the separator
		{"01_", Prefix{Present: true, Number: 1, Name: ""}},
		{"", Prefix{Name: ""}},
	}

	for _, tt := range tests {
		t.Run(tt.segment, func(t *testing.T) {
			require.Equal(t, tt.want, ParsePrefix(tt.segment))
		})
	}
}

func TestSortSegments_NumericOrder(t *testing.T) {
	in := []string{"02_foundation", "01_getting-started", "04_advanced", "03_intermediate"}
	want := []string{"01_getting-started", "02_foundation", "03_intermediate", "04_advanced"}

	require.Equal(t, want, SortSegments(in))
}

func TestSortSegments_DuplicatePrefix_AlphabeticalTieBreak(t *testing.T) {
	require.Equal(t,
		[]string{"01_intro", "01_setup"},
		SortSegments([]string{"01_setup", "01_intro"}))
}

func TestSortSegments_UnprefixedAfterPrefixed(t *testing.T) {
	require.Equal(t,
		[]string{"03_x", "guide"},
		SortSegments([]string{"guide", "03_x"}))
}

func TestSortSegments_UnprefixedAlphabetical(t *testing.T) {
	require.Equal(t,
		[]string{"appendix", "glossary", "resources"},
		SortSegments([]string{"resources", "appendix", "glossary"}))
}

func TestSortSegments_ZeroPaddingIrrelevant(t *testing.T) {
	require.Equal(t,
		[]string{"1_first", "02_second", "10_tenth"},
		SortSegments([]string{"10_tenth", "02_second", "1_first"}))
}

func TestSortSegments_MixedSeparators(t *testing.T) {
	require.Equal(t,
		[]string{"01-dashes", "02_underscores"},
		SortSegments([]string{"02_underscores", "01-dashes"}))
}

func TestSortSegments_Idempotent(t *testing.T) {
	in := []string{"02_b", "01_a", "zz", "01_b", "aa", "3-c"}

	once := SortSegments(in)
	twice := SortSegments(once)
	require.Equal(t, once, twice)
}

func TestSortSegments_DoesNotMutateInput(t *testing.T) {
	in := []string{"02_b", "01_a"}
	_ = SortSegments(in)
	require.Equal(t, []string{"02_b", "01_a"}, in)
}

func TestSortSegments_BareDigitsSortAsUnprefixed(t *testing.T) {
	// "01" has no separator, so it lands with the unprefixed group.
	require.Equal(t,
		[]string{"02_real", "01", "guide"},
		SortSegments([]string{"01", "guide", "02_real"}))
}
