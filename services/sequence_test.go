package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNextProjectNumber_FirstOfYear(t *testing.T) {
	require.Equal(t, "PRJ-2025-001", NextProjectNumber(2025, ""))
}

func TestNextProjectNumber_Increments(t *testing.T) {
	for n := 1; n < 30; n++ {
		last := fmt.Sprintf("PRJ-2025-%03d", n)
		want := fmt.Sprintf("PRJ-2025-%03d", n+1)
		require.Equal(t, want, NextProjectNumber(2025, last))
	}
}

func TestNextProjectNumber_PaddingBoundaries(t *testing.T) {
	tests := []struct {
		last string
		want string
	}{
		{"PRJ-2025-009", "PRJ-2025-010"},
		{"PRJ-2025-099", "PRJ-2025-100"},
		{"PRJ-2025-999", "PRJ-2025-1000"},
		{"PRJ-2025-1000", "PRJ-2025-1001"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, NextProjectNumber(2025, tt.last))
	}
}

func TestNextProjectNumber_YearsAreIndependent(t *testing.T) {
	require.Equal(t, "PRJ-2026-001", NextProjectNumber(2026, ""))
	require.Equal(t, "PRJ-2024-043", NextProjectNumber(2024, "PRJ-2024-042"))
}

func TestNextProjectNumber_MalformedLastNumber(t *testing.T) {
	// An unparseable trailing segment falls back to sequence 1 rather than
	// failing the allocation.
	require.Equal(t, "PRJ-2025-001", NextProjectNumber(2025, "PRJ-2025-abc"))
	require.Equal(t, "PRJ-2025-001", NextProjectNumber(2025, "garbage"))
}

func TestProjectNumberPrefix(t *testing.T) {
	require.Equal(t, "PRJ-2025-", projectNumberPrefix(2025))
}

func TestMaxProjectSequence_NumericNotLexicographic(t *testing.T) {
	// A descending string sort ranks "999" above "1000"; the numeric max must
	// not, or the allocator would hand out an already-taken number once a year
	// crosses four digits.
	numbers := []string{"PRJ-2025-998", "PRJ-2025-999", "PRJ-2025-1000"}
	require.Equal(t, 1000, MaxProjectSequence(numbers))
	require.Equal(t, "PRJ-2025-1001", NextProjectNumber(2025, "PRJ-2025-1000"))
}

func TestMaxProjectSequence(t *testing.T) {
	tests := []struct {
		name    string
		numbers []string
		want    int
	}{
		{"empty", nil, 0},
		{"single", []string{"PRJ-2025-007"}, 7},
		{"unordered", []string{"PRJ-2025-002", "PRJ-2025-010", "PRJ-2025-005"}, 10},
		{"skips malformed", []string{"PRJ-2025-abc", "garbage", "PRJ-2025-003"}, 3},
		{"all malformed", []string{"PRJ-2025-abc", "garbage"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, MaxProjectSequence(tt.numbers))
		})
	}
}
