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
	"regexp"
	"strings"
)

// Clients word failure strings differently for the same fault. The table
// maps known patterns to a shared form so that, for example, Besu's
// "Invalid input length" and Geth's "invalid input length: expected 128"
// count as the same failure. Matching is case-insensitive against the
// lowercased message; first match wins.
var errorNormalizations = []struct {
	pattern    *regexp.Regexp
	normalized string
}{
	{regexp.MustCompile(`invalid input length.*expected \d+`), "invalid input length"},
	{regexp.MustCompile(`input length.*must be.*\d+`), "invalid input length"},
	{regexp.MustCompile(`point not on curve`), "point not on curve"},
	{regexp.MustCompile(`invalid point encoding`), "point not on curve"},
	{regexp.MustCompile(`out of gas`), "out of gas"},
	{regexp.MustCompile(`gas.*insufficient`), "out of gas"},
	{regexp.MustCompile(`execution reverted`), "execution reverted"},
	{regexp.MustCompile(`revert`), "execution reverted"},
}

// NormalizeErrorMessage maps a client-specific failure string to its
// normalized form. Unrecognized messages are returned lowercased.
func NormalizeErrorMessage(msg string) string {
	if msg == "" {
		return ""
	}
	lowered := strings.ToLower(msg)
	for _, n := range errorNormalizations {
		if n.pattern.MatchString(lowered) {
			return n.normalized
		}
	}
	return lowered
}

// ErrorComparison relates the error strings of two frames. Semantic match
// is informational only; it never affects the structural diff outcome.
type ErrorComparison struct {
	Left            string
	Right           string
	LeftNormalized  string
	RightNormalized string
	ExactMatch      bool
	SemanticMatch   bool
}

// CompareErrorMessages compares two failure strings literally and through
// normalization. An empty string stands for "no error on that side".
func CompareErrorMessages(left, right string) ErrorComparison {
	c := ErrorComparison{
		Left:            left,
		Right:           right,
		LeftNormalized:  NormalizeErrorMessage(left),
		RightNormalized: NormalizeErrorMessage(right),
		ExactMatch:      left == right,
	}
	c.SemanticMatch = c.LeftNormalized == c.RightNormalized
	return c
}
