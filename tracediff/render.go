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
	"fmt"
	"strings"
)

const (
	treeIndent    = "  "
	abbrevHexLen  = 12
	abbrevDataLen = 18
)

// RenderTree renders a call tree for human inspection: one line per frame,
// depth-first pre-order, indented by depth. Deterministic for a given tree.
func RenderTree(frame *CallFrame) string {
	var sb strings.Builder
	renderFrame(&sb, frame, 0)
	return strings.TrimRight(sb.String(), "\n")
}

func renderFrame(sb *strings.Builder, f *CallFrame, depth int) {
	prefix := strings.Repeat(treeIndent, depth)

	callType := f.Type()
	if callType == "" {
		callType = "UNKNOWN"
	}
	sb.WriteString(prefix)
	sb.WriteString("|- ")
	sb.WriteString(callType)
	if from := f.From(); from != "" {
		sb.WriteString(" ")
		sb.WriteString(abbreviate(from, abbrevHexLen))
	}
	if to := f.To(); to != "" {
		sb.WriteString(" -> ")
		sb.WriteString(abbreviate(to, abbrevHexLen))
	}
	if wei, ok := f.WeiValue(); ok && !wei.IsZero() {
		fmt.Fprintf(sb, " value=%s", wei.Dec())
	}
	sb.WriteString("\n")

	var details []string
	if gas, ok := f.Gas(); ok {
		details = append(details, fmt.Sprintf("gas=%d", gas))
	}
	if gasUsed, ok := f.GasUsed(); ok {
		details = append(details, fmt.Sprintf("gasUsed=%d", gasUsed))
	}
	if in, ok := f.Field("input"); ok {
		details = append(details, "in="+abbreviate(in.String(), abbrevDataLen))
	}
	if out, ok := f.Field("output"); ok {
		details = append(details, "out="+abbreviate(out.String(), abbrevDataLen))
	}
	if len(details) > 0 {
		sb.WriteString(prefix)
		sb.WriteString("|  ")
		sb.WriteString(strings.Join(details, " "))
		sb.WriteString("\n")
	}
	if errMsg, ok := f.Field("error"); ok {
		fmt.Fprintf(sb, "%s|  error: %s\n", prefix, errMsg)
	}
	if reason, ok := f.Field("revertReason"); ok {
		fmt.Fprintf(sb, "%s|  revert: %s\n", prefix, reason)
	}

	for _, child := range f.Calls {
		renderFrame(sb, child, depth+1)
	}
}

// abbreviate shortens long opaque strings for display, keeping short ones
// intact.
func abbreviate(s string, max int) string {
	if len(s) <= max+3 {
		return s
	}
	return s[:max] + "..."
}

// CountCalls tallies frames per call type across the whole tree. Frames
// without a type are counted under "UNKNOWN".
func CountCalls(frame *CallFrame) map[string]int {
	counts := make(map[string]int)
	countCallsInto(frame, counts)
	return counts
}

func countCallsInto(f *CallFrame, counts map[string]int) {
	callType := f.Type()
	if callType == "" {
		callType = "UNKNOWN"
	}
	counts[callType]++
	for _, child := range f.Calls {
		countCallsInto(child, counts)
	}
}
