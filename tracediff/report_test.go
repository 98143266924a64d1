// Copyright 2026 The Erigon Authors
// This file is part of Erigon.
//
// Erigon is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Erigon is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Erigon. If not, see <http://www.gnu.org/licenses/>.

package tracediff

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func mismatchedResult(t *testing.T) *ComparisonResult {
	t.Helper()
	leftDoc := map[string]any{
		"type":    "CALL",
		"to":      "0x01",
		"gasUsed": "0x5208",
		"calls":   []any{map[string]any{"type": "STATICCALL"}},
	}
	rightDoc := map[string]any{
		"type":    "CALL",
		"gasUsed": "0x5209",
		"output":  "0xff",
	}
	return Diff(mustNormalize(t, leftDoc), mustNormalize(t, rightDoc))
}

func TestSummarizeCounts(t *testing.T) {
	result := mismatchedResult(t)
	summary := result.Summarize()

	require.False(t, summary.Match)
	require.Equal(t, len(result.Entries()), summary.Total)
	require.Equal(t, 1, summary.ByCategory[MissingInRight]) // to
	require.Equal(t, 1, summary.ByCategory[MissingInLeft])  // output
	require.Equal(t, 1, summary.ByCategory[ValueMismatch])  // gasUsed
	require.Equal(t, 2, summary.ByCategory[StructureMismatch])
	require.Zero(t, summary.ByCategory[TypeMismatch])
}

func TestSummarizeMatch(t *testing.T) {
	frame := mustNormalize(t, simpleTransferDoc())
	summary := Diff(frame, frame).Summarize()
	require.True(t, summary.Match)
	require.Zero(t, summary.Total)
}

func TestRenderSummaryGroupsByCategory(t *testing.T) {
	rendered := mismatchedResult(t).RenderSummary()
	require.Contains(t, rendered, "FAIL")
	require.Contains(t, rendered, string(ValueMismatch))
	require.Contains(t, rendered, string(StructureMismatch))
	require.Contains(t, rendered, "root.gasUsed")
}

func TestRenderSummaryCapsPerCategory(t *testing.T) {
	result := &ComparisonResult{}
	for i := 0; i < maxListedPerCategory+5; i++ {
		result.add(DiffEntry{
			Path: CallPath{i}, Field: "gasUsed", Category: ValueMismatch,
			Left: "1", Right: "2",
		})
	}
	rendered := result.RenderSummary()
	require.Contains(t, rendered, "... and 5 more")
	require.Equal(t, maxListedPerCategory, strings.Count(rendered, "    - "))
}

func TestRenderDetailedListsEverything(t *testing.T) {
	result := mismatchedResult(t)
	rendered := result.RenderDetailed()
	for i := range result.Entries() {
		require.Contains(t, rendered, "Difference #"+string(rune('1'+i)))
	}
	require.Contains(t, rendered, "root.to")
	require.Contains(t, rendered, "root.output")
	require.Contains(t, rendered, AbsentValue)
}

func TestRenderOnMatch(t *testing.T) {
	frame := mustNormalize(t, simpleTransferDoc())
	result := Diff(frame, frame)
	require.Contains(t, result.RenderSummary(), "PASS")
	require.Contains(t, result.RenderDetailed(), "no differences")
}
