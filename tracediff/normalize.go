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

	jsoniter "github.com/json-iterator/go"
)

// jsonCfg decodes documents with json.Number so that numeric and string
// scalars stay distinguishable, and encodes with sorted map keys so that
// canonicalized non-scalar values render deterministically.
var jsonCfg = jsoniter.Config{UseNumber: true, SortMapKeys: true}.Froze()

// MalformedTraceError reports a raw document whose node or child element is
// not a JSON object. It is fatal for the one document only; batch callers
// catch it per scenario and continue.
type MalformedTraceError struct {
	Path   CallPath
	Reason string
}

func (e *MalformedTraceError) Error() string {
	return fmt.Sprintf("malformed trace at %s: %s", e.Path, e.Reason)
}

type normalizer struct {
	normalizeHex bool
}

// NormalizeOption tweaks how raw documents are canonicalized.
type NormalizeOption func(*normalizer)

// WithHexNormalization strips redundant leading zeros from 0x-prefixed
// string values before storing them, so "0x0" and "0x00" compare equal.
// Off by default: the reference comparison is literal.
func WithHexNormalization() NormalizeOption {
	return func(n *normalizer) { n.normalizeHex = true }
}

// Normalize converts a raw decoded trace document into its canonical
// CallFrame tree. Recognized fields whose raw value is null, absent, or the
// empty string are dropped; children under "calls" are normalized
// recursively in order, with an absent key meaning no children. The only
// failure mode is a node or child element that is not a JSON object.
func Normalize(doc any, opts ...NormalizeOption) (*CallFrame, error) {
	n := &normalizer{}
	for _, opt := range opts {
		opt(n)
	}
	return n.node(doc, nil)
}

func (n *normalizer) node(doc any, path CallPath) (*CallFrame, error) {
	m, ok := doc.(map[string]any)
	if !ok {
		return nil, &MalformedTraceError{Path: path, Reason: fmt.Sprintf("node is %T, not an object", doc)}
	}

	frame := newCallFrame()
	for _, name := range scalarFields {
		raw, present := m[name]
		if !present || raw == nil {
			continue
		}
		value, keep := n.scalar(raw)
		if !keep {
			continue
		}
		frame.setField(name, value)
	}

	raw, present := m["calls"]
	if !present || raw == nil {
		return frame, nil
	}
	children, ok := raw.([]any)
	if !ok {
		return nil, &MalformedTraceError{Path: path, Reason: fmt.Sprintf("calls is %T, not a sequence", raw)}
	}
	for i, childDoc := range children {
		child, err := n.node(childDoc, path.child(i))
		if err != nil {
			return nil, err
		}
		frame.Calls = append(frame.Calls, child)
	}
	return frame, nil
}

// scalar canonicalizes one raw field value. The second return is false when
// the value must be dropped (empty string). Non-scalar values sitting in a
// scalar field position are not an error per the normalization contract;
// they are kept as object-kind values compared through their compact JSON
// encoding, so the differ reports them literally and an object-vs-string
// disagreement still counts as a type mismatch.
func (n *normalizer) scalar(raw any) (FieldValue, bool) {
	switch v := raw.(type) {
	case string:
		if v == "" {
			return FieldValue{}, false
		}
		if n.normalizeHex {
			v = normalizeHexValue(v)
		}
		return StringValue(v), true
	case json.Number:
		return NumberValue(v), true
	case bool:
		return BoolValue(v), true
	case float64:
		// Decoded without UseNumber; re-render losslessly.
		return NumberValue(json.Number(strconv.FormatFloat(v, 'f', -1, 64))), true
	case int:
		return NumberValue(json.Number(strconv.Itoa(v))), true
	case int64:
		return NumberValue(json.Number(strconv.FormatInt(v, 10))), true
	case uint64:
		return NumberValue(json.Number(strconv.FormatUint(v, 10))), true
	default:
		encoded, err := jsonCfg.MarshalToString(raw)
		if err != nil {
			encoded = fmt.Sprintf("%v", raw)
		}
		return objectValue(raw, encoded), true
	}
}

// normalizeHexValue strips leading zeros from a 0x-prefixed value, keeping
// at least one digit.
func normalizeHexValue(s string) string {
	if !strings.HasPrefix(s, "0x") || len(s) <= 2 {
		return s
	}
	stripped := strings.TrimLeft(s[2:], "0")
	if stripped == "" {
		stripped = "0"
	}
	return "0x" + stripped
}
