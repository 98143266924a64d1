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

func renderFixture(t *testing.T) *CallFrame {
	t.Helper()
	return mustNormalize(t, map[string]any{
		"type":    "CALL",
		"from":    "0x8943545177806ed17b9f23f0a21ee5948ecaa776",
		"to":      "0x0202020202020202020202020202020202020202",
		"gas":     "0x5208",
		"gasUsed": "0x5208",
		"input":   "0xa9059cbb00000000000000000000000000000000",
		"error":   "execution reverted",
		"calls": []any{
			map[string]any{"type": "STATICCALL", "to": "0x03"},
			map[string]any{
				"type":         "DELEGATECALL",
				"revertReason": "insufficient balance",
				"calls":        []any{map[string]any{"type": "CREATE"}},
			},
		},
	})
}

func TestRenderTreeDeterministic(t *testing.T) {
	frame := renderFixture(t)
	first := RenderTree(frame)
	second := RenderTree(frame)
	require.Equal(t, first, second)
}

func TestRenderTreeShape(t *testing.T) {
	rendered := RenderTree(renderFixture(t))
	lines := strings.Split(rendered, "\n")

	// One header line per frame plus the detail lines of frames that have
	// any; children indent one level deeper than their parent.
	require.Contains(t, lines[0], "CALL")
	var depth1, depth2 int
	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, treeIndent+treeIndent+"|- "):
			depth2++
		case strings.HasPrefix(line, treeIndent+"|- "):
			depth1++
		}
	}
	require.Equal(t, 2, depth1)
	require.Equal(t, 1, depth2)
}

func TestAbbreviate(t *testing.T) {
	require.Equal(t, "0x", abbreviate("0x", 12))
	require.Equal(t, "0x0303", abbreviate("0x0303", 12))
	long := "0xa9059cbb00000000000000000000000000000000"
	require.Equal(t, "0xa9059cbb00...", abbreviate(long, 12))
}

func TestCountCalls(t *testing.T) {
	counts := CountCalls(renderFixture(t))
	require.Equal(t, map[string]int{
		"CALL":         1,
		"STATICCALL":   1,
		"DELEGATECALL": 1,
		"CREATE":       1,
	}, counts)
}

func TestCountCallsUnknownType(t *testing.T) {
	frame := mustNormalize(t, map[string]any{
		"calls": []any{map[string]any{"type": "CALL"}},
	})
	counts := CountCalls(frame)
	require.Equal(t, 1, counts["UNKNOWN"])
	require.Equal(t, 1, counts["CALL"])
}
