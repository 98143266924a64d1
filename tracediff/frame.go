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
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
)

// scalarFields is the recognized scalar field set of a call frame, in
// canonical order. Anything outside this set is dropped by normalization.
var scalarFields = []string{
	"from", "to", "type", "input", "output",
	"error", "revertReason", "gas", "gasUsed", "value",
}

// FieldKind tags the canonical representation of a scalar field value.
// It is the Go-side rendering of the JSON scalar types, so a numeric
// 21000 and the string "21000" stay distinguishable after normalization.
type FieldKind uint8

const (
	KindString FieldKind = iota
	KindNumber
	KindBool
	// KindObject marks a structured value sitting in a scalar field slot.
	// It is compared through its canonical JSON encoding but reported with
	// its own kind, so it never masquerades as a plain string.
	KindObject
)

func (k FieldKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// FieldValue is one canonical scalar field value: a tagged union over the
// JSON scalar kinds. Values are compared literally, the way the source
// tracers emitted them.
type FieldValue struct {
	kind FieldKind
	str  string
	num  json.Number
	b    bool
	obj  any
}

func StringValue(s string) FieldValue {
	return FieldValue{kind: KindString, str: s}
}

func NumberValue(n json.Number) FieldValue {
	return FieldValue{kind: KindNumber, num: n}
}

func BoolValue(b bool) FieldValue {
	return FieldValue{kind: KindBool, b: b}
}

// objectValue keeps both the decoded structure (for re-projection) and its
// canonical encoding (for literal comparison and display).
func objectValue(raw any, encoded string) FieldValue {
	return FieldValue{kind: KindObject, str: encoded, obj: raw}
}

func (v FieldValue) Kind() FieldKind { return v.kind }

// String returns the literal rendering of the value, without kind
// decoration.
func (v FieldValue) String() string {
	switch v.kind {
	case KindNumber:
		return v.num.String()
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return v.str
	}
}

// Describe renders the value together with its kind, used when reporting
// type mismatches.
func (v FieldValue) Describe() string {
	return fmt.Sprintf("%s(%s)", v.kind, v.String())
}

func (v FieldValue) SameKind(other FieldValue) bool {
	return v.kind == other.kind
}

func (v FieldValue) Equal(other FieldValue) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNumber:
		return v.num == other.num
	case KindBool:
		return v.b == other.b
	default:
		return v.str == other.str
	}
}

// raw returns the value as the decoded-JSON type it was projected from.
func (v FieldValue) raw() any {
	switch v.kind {
	case KindNumber:
		return v.num
	case KindBool:
		return v.b
	case KindObject:
		return v.obj
	default:
		return v.str
	}
}

// Uint64 interprets the value as an unsigned integer. Tracers emit gas
// fields either as 0x-prefixed hex strings, as decimal strings, or as bare
// JSON numbers; all three are accepted.
func (v FieldValue) Uint64() (uint64, bool) {
	switch v.kind {
	case KindNumber:
		n, err := strconv.ParseUint(v.num.String(), 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	case KindString:
		if strings.HasPrefix(v.str, "0x") || strings.HasPrefix(v.str, "0X") {
			n, err := hexutil.DecodeUint64(strings.ToLower(v.str))
			if err != nil {
				return 0, false
			}
			return n, true
		}
		n, err := strconv.ParseUint(v.str, 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// Wei interprets the value as a wei amount, which can exceed 64 bits.
func (v FieldValue) Wei() (*uint256.Int, bool) {
	switch v.kind {
	case KindNumber:
		amount, err := uint256.FromDecimal(v.num.String())
		if err != nil {
			return nil, false
		}
		return amount, true
	case KindString:
		if strings.HasPrefix(v.str, "0x") || strings.HasPrefix(v.str, "0X") {
			amount, err := uint256.FromHex(strings.ToLower(v.str))
			if err != nil {
				return nil, false
			}
			return amount, true
		}
		amount, err := uint256.FromDecimal(v.str)
		if err != nil {
			return nil, false
		}
		return amount, true
	default:
		return nil, false
	}
}

// CallFrame is one node of a canonical call trace: the recognized scalar
// fields that were actually present in the raw document, plus the ordered
// child calls. Absent and null raw fields are not represented at all, so
// two traces differing only in null-vs-absent canonicalize identically.
type CallFrame struct {
	fields map[string]FieldValue
	Calls  []*CallFrame
}

func newCallFrame() *CallFrame {
	return &CallFrame{fields: make(map[string]FieldValue)}
}

// Field returns the canonical value of a recognized scalar field and
// whether it is present.
func (f *CallFrame) Field(name string) (FieldValue, bool) {
	v, ok := f.fields[name]
	return v, ok
}

func (f *CallFrame) setField(name string, v FieldValue) {
	f.fields[name] = v
}

// fieldString returns the literal string of a field, or "" when absent.
func (f *CallFrame) fieldString(name string) string {
	if v, ok := f.fields[name]; ok {
		return v.String()
	}
	return ""
}

func (f *CallFrame) Type() string { return f.fieldString("type") }
func (f *CallFrame) From() string { return f.fieldString("from") }
func (f *CallFrame) To() string   { return f.fieldString("to") }

// Gas returns the supplied gas budget when present and parseable.
func (f *CallFrame) Gas() (uint64, bool) {
	v, ok := f.fields["gas"]
	if !ok {
		return 0, false
	}
	return v.Uint64()
}

// GasUsed returns the consumed gas when present and parseable.
func (f *CallFrame) GasUsed() (uint64, bool) {
	v, ok := f.fields["gasUsed"]
	if !ok {
		return 0, false
	}
	return v.Uint64()
}

// WeiValue returns the transferred value in wei when present and parseable.
func (f *CallFrame) WeiValue() (*uint256.Int, bool) {
	v, ok := f.fields["value"]
	if !ok {
		return nil, false
	}
	return v.Wei()
}

// IsEmpty reports whether the frame carries no recognized fields and no
// children. Empty frames on both sides compare equal.
func (f *CallFrame) IsEmpty() bool {
	return len(f.fields) == 0 && len(f.Calls) == 0
}

// AsDocument re-projects the canonical frame back into the raw document
// shape. Normalizing the result yields an identical frame.
func (f *CallFrame) AsDocument() map[string]any {
	doc := make(map[string]any)
	for _, name := range scalarFields {
		if v, ok := f.fields[name]; ok {
			doc[name] = v.raw()
		}
	}
	if len(f.Calls) > 0 {
		calls := make([]any, len(f.Calls))
		for i, child := range f.Calls {
			calls[i] = child.AsDocument()
		}
		doc["calls"] = calls
	}
	return doc
}

// summarize gives a one-line description of a frame, used when a whole
// subtree is present on only one side.
func (f *CallFrame) summarize() string {
	var sb strings.Builder
	if t := f.Type(); t != "" {
		sb.WriteString(t)
	} else {
		sb.WriteString("frame")
	}
	if to := f.To(); to != "" {
		sb.WriteString(" to=")
		sb.WriteString(to)
	}
	if n := len(f.Calls); n > 0 {
		fmt.Fprintf(&sb, " (+%d nested)", n)
	}
	return sb.String()
}

// CallPath addresses a frame inside a call tree as the sequence of child
// indices from the root. The root itself is the empty path.
type CallPath []int

// child returns a copy of the path extended by one index. The receiver is
// never aliased, so paths recorded in diff entries stay stable while the
// walk continues.
func (p CallPath) child(i int) CallPath {
	extended := make(CallPath, len(p), len(p)+1)
	copy(extended, p)
	return append(extended, i)
}

func (p CallPath) String() string {
	var sb strings.Builder
	sb.WriteString("root")
	for _, i := range p {
		fmt.Fprintf(&sb, ".calls[%d]", i)
	}
	return sb.String()
}

// FieldPath renders the path with a field name appended, for diff listings.
func (p CallPath) FieldPath(field string) string {
	return p.String() + "." + field
}

// Equal reports whether two paths address the same frame.
func (p CallPath) Equal(other CallPath) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}
