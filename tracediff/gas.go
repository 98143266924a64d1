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

import "fmt"

// GasReading holds one numeric gas field observed on both sides of a frame
// pair. A side missing the field (or carrying an unparseable value) is
// marked not-ok and the reading is not comparable; it is never zero-filled.
type GasReading struct {
	Left    uint64
	Right   uint64
	LeftOK  bool
	RightOK bool
}

// Comparable reports whether both sides supplied the field.
func (g GasReading) Comparable() bool {
	return g.LeftOK && g.RightOK
}

// Delta is right minus left. Only meaningful when Comparable.
func (g GasReading) Delta() int64 {
	return int64(g.Right) - int64(g.Left)
}

// HigherSide names the side with the larger value: "left", "right" or
// "equal". Only meaningful when Comparable.
func (g GasReading) HigherSide() string {
	switch {
	case g.Left > g.Right:
		return "left"
	case g.Right > g.Left:
		return "right"
	default:
		return "equal"
	}
}

func (g GasReading) String() string {
	switch {
	case g.Comparable():
		return fmt.Sprintf("left=%d right=%d (%+d)", g.Left, g.Right, g.Delta())
	case g.LeftOK:
		return fmt.Sprintf("left=%d right=absent (not comparable)", g.Left)
	case g.RightOK:
		return fmt.Sprintf("left=absent right=%d (not comparable)", g.Right)
	default:
		return "absent on both sides"
	}
}

// GasRecord is the gas drill-down for one frame pair present in both trees.
type GasRecord struct {
	Path    CallPath
	Gas     GasReading
	GasUsed GasReading
}

// HasDiscrepancy reports whether either comparable field differs. Gas
// differences are informational and never feed pass/fail on their own;
// absolute accounting may legitimately differ between clients.
func (r GasRecord) HasDiscrepancy() bool {
	return (r.Gas.Comparable() && r.Gas.Delta() != 0) ||
		(r.GasUsed.Comparable() && r.GasUsed.Delta() != 0)
}

// AnalyzeGas walks the two trees along their shared positional structure
// and extracts the numeric gas fields of every frame pair, root first.
// Frames present on only one side are not visited.
func AnalyzeGas(left, right *CallFrame) []GasRecord {
	var records []GasRecord
	analyzeGasFrames(left, right, nil, &records)
	return records
}

func analyzeGasFrames(left, right *CallFrame, path CallPath, records *[]GasRecord) {
	record := GasRecord{Path: path}
	record.Gas.Left, record.Gas.LeftOK = left.Gas()
	record.Gas.Right, record.Gas.RightOK = right.Gas()
	record.GasUsed.Left, record.GasUsed.LeftOK = left.GasUsed()
	record.GasUsed.Right, record.GasUsed.RightOK = right.GasUsed()
	*records = append(*records, record)

	shared := min(len(left.Calls), len(right.Calls))
	for i := 0; i < shared; i++ {
		analyzeGasFrames(left.Calls[i], right.Calls[i], path.child(i), records)
	}
}

// TotalGasUsed returns the root frame's consumed gas. Nested call gas is
// already included in the parent's figure, so the root alone is the total.
func TotalGasUsed(frame *CallFrame) uint64 {
	total, _ := frame.GasUsed()
	return total
}
