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
	"strconv"
)

// DiffCategory classifies one detected discrepancy.
type DiffCategory string

const (
	MissingInLeft     DiffCategory = "missing_in_left"
	MissingInRight    DiffCategory = "missing_in_right"
	ValueMismatch     DiffCategory = "value_mismatch"
	TypeMismatch      DiffCategory = "type_mismatch"
	StructureMismatch DiffCategory = "structure_mismatch"
)

// diffCategories lists every category in reporting order.
var diffCategories = []DiffCategory{
	MissingInLeft, MissingInRight, ValueMismatch, TypeMismatch, StructureMismatch,
}

const (
	// FieldFrame is the field sentinel for entries about a frame as a
	// whole, such as a child-count mismatch.
	FieldFrame = "<frame>"
	// FieldSubtree is the field sentinel for an extra or missing child
	// subtree beyond the shared prefix.
	FieldSubtree = "<subtree>"
	// AbsentValue renders a value that one side does not have.
	AbsentValue = "absent"
)

// DiffEntry is one detected discrepancy between the two trees.
type DiffEntry struct {
	Path     CallPath
	Field    string
	Category DiffCategory
	Left     string
	Right    string
}

func (e DiffEntry) String() string {
	path := e.Path.FieldPath(e.Field)
	switch e.Category {
	case MissingInLeft:
		return fmt.Sprintf("%s: missing in left (right has: %s)", path, e.Right)
	case MissingInRight:
		return fmt.Sprintf("%s: missing in right (left has: %s)", path, e.Left)
	case TypeMismatch:
		return fmt.Sprintf("%s: type mismatch - left: %s vs right: %s", path, e.Left, e.Right)
	case StructureMismatch:
		return fmt.Sprintf("%s: structure mismatch - left: %s vs right: %s", path, e.Left, e.Right)
	default:
		return fmt.Sprintf("%s: left=%s vs right=%s", path, e.Left, e.Right)
	}
}

// ComparisonResult owns the ordered discrepancy list of one comparison. It
// is created by Diff and immutable afterwards.
type ComparisonResult struct {
	entries []DiffEntry
}

func (r *ComparisonResult) add(e DiffEntry) {
	r.entries = append(r.entries, e)
}

// Entries returns the discrepancies in discovery order.
func (r *ComparisonResult) Entries() []DiffEntry {
	return r.entries
}

// IsMatch reports whether the two trees were semantically equivalent.
func (r *ComparisonResult) IsMatch() bool {
	return len(r.entries) == 0
}

// Diff compares two canonical call trees depth-first in pre-order, tracking
// the child-index path. Scalar fields are compared literally; child lists
// positionally, with no reordering heuristic. Neither tree is mutated and
// no diff, however large, is an error.
func Diff(left, right *CallFrame) *ComparisonResult {
	result := &ComparisonResult{}
	diffFrames(left, right, nil, result)
	return result
}

func diffFrames(left, right *CallFrame, path CallPath, result *ComparisonResult) {
	for _, name := range scalarFields {
		lv, lok := left.Field(name)
		rv, rok := right.Field(name)
		switch {
		case lok && !rok:
			result.add(DiffEntry{
				Path: path, Field: name, Category: MissingInRight,
				Left: lv.String(), Right: AbsentValue,
			})
		case !lok && rok:
			result.add(DiffEntry{
				Path: path, Field: name, Category: MissingInLeft,
				Left: AbsentValue, Right: rv.String(),
			})
		case !lok && !rok:
			// Absent on both sides: silence is success.
		case !lv.SameKind(rv):
			result.add(DiffEntry{
				Path: path, Field: name, Category: TypeMismatch,
				Left: lv.Describe(), Right: rv.Describe(),
			})
		case !lv.Equal(rv):
			result.add(DiffEntry{
				Path: path, Field: name, Category: ValueMismatch,
				Left: lv.String(), Right: rv.String(),
			})
		}
	}

	leftCalls, rightCalls := left.Calls, right.Calls
	if len(leftCalls) != len(rightCalls) {
		result.add(DiffEntry{
			Path: path, Field: FieldFrame, Category: StructureMismatch,
			Left:  childCount(len(leftCalls)),
			Right: childCount(len(rightCalls)),
		})
	}

	shared := min(len(leftCalls), len(rightCalls))
	for i := 0; i < shared; i++ {
		diffFrames(leftCalls[i], rightCalls[i], path.child(i), result)
	}
	for i := shared; i < len(leftCalls); i++ {
		result.add(DiffEntry{
			Path: path.child(i), Field: FieldSubtree, Category: StructureMismatch,
			Left: leftCalls[i].summarize(), Right: AbsentValue,
		})
	}
	for i := shared; i < len(rightCalls); i++ {
		result.add(DiffEntry{
			Path: path.child(i), Field: FieldSubtree, Category: StructureMismatch,
			Left: AbsentValue, Right: rightCalls[i].summarize(),
		})
	}
}

func childCount(n int) string {
	return strconv.Itoa(n) + " calls"
}
