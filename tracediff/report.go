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

// maxListedPerCategory caps how many entries the grouped summary prints for
// one category. The detailed report always lists everything.
const maxListedPerCategory = 10

// Summary is the per-category aggregate of one comparison.
type Summary struct {
	Total      int
	ByCategory map[DiffCategory]int
	Match      bool
}

// Summarize counts the discrepancies per category.
func (r *ComparisonResult) Summarize() Summary {
	s := Summary{
		Total:      len(r.entries),
		ByCategory: make(map[DiffCategory]int),
		Match:      r.IsMatch(),
	}
	for _, e := range r.entries {
		s.ByCategory[e.Category]++
	}
	return s
}

// RenderSummary renders a grouped, capped listing in the style of the batch
// console output: one block per category, first entries of each, a trailer
// for the rest.
func (r *ComparisonResult) RenderSummary() string {
	if r.IsMatch() {
		return "PASS: results match exactly"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "FAIL: found %d difference(s):\n", len(r.entries))

	byCategory := make(map[DiffCategory][]DiffEntry)
	for _, e := range r.entries {
		byCategory[e.Category] = append(byCategory[e.Category], e)
	}
	for _, category := range diffCategories {
		entries := byCategory[category]
		if len(entries) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "\n  %s (%d):\n", category, len(entries))
		for i, e := range entries {
			if i == maxListedPerCategory {
				fmt.Fprintf(&sb, "    ... and %d more\n", len(entries)-maxListedPerCategory)
				break
			}
			fmt.Fprintf(&sb, "    - %s\n", e)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

// RenderDetailed lists every discrepancy with its path, in discovery order.
func (r *ComparisonResult) RenderDetailed() string {
	if r.IsMatch() {
		return "results match exactly - no differences found"
	}

	var sb strings.Builder
	sb.WriteString(strings.Repeat("=", 60) + "\n")
	sb.WriteString("DETAILED COMPARISON REPORT\n")
	sb.WriteString(strings.Repeat("=", 60) + "\n")
	fmt.Fprintf(&sb, "Total differences: %d\n", len(r.entries))
	for i, e := range r.entries {
		fmt.Fprintf(&sb, "\nDifference #%d:\n", i+1)
		fmt.Fprintf(&sb, "  Path:     %s\n", e.Path.FieldPath(e.Field))
		fmt.Fprintf(&sb, "  Category: %s\n", e.Category)
		fmt.Fprintf(&sb, "  Left:     %s\n", e.Left)
		fmt.Fprintf(&sb, "  Right:    %s\n", e.Right)
	}
	return strings.TrimRight(sb.String(), "\n")
}
