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
	"context"
	"fmt"
	"testing"

	"github.com/ledgerwatch/log/v3"
	"github.com/stretchr/testify/require"
)

func quietLogger() log.Logger {
	logger := log.New()
	logger.SetHandler(log.DiscardHandler())
	return logger
}

func TestRunBatchAggregation(t *testing.T) {
	matching := simpleTransferDoc()

	pairs := map[string]DocumentPair{
		"SimpleTransfer":   {Left: matching, Right: simpleTransferDoc()},
		"ContractCall":     {Left: matching, Right: matching},
		"PrecompileModExp": {Left: matching, Right: "not an object"},
	}

	batch := RunBatch(context.Background(), pairs, WithLogger(quietLogger()))

	require.Equal(t, 3, batch.Total())
	require.Equal(t, 2, batch.Passed)
	require.Equal(t, 0, batch.Failed)
	require.Equal(t, 1, batch.Malformed)

	malformed := batch.Get("PrecompileModExp")
	require.True(t, malformed.Malformed())
	var traceErr *MalformedTraceError
	require.ErrorAs(t, malformed.Err, &traceErr)

	// The malformed entry does not prevent the others from completing.
	require.True(t, batch.Get("SimpleTransfer").Passed())
	require.True(t, batch.Get("ContractCall").Passed())
}

func TestRunBatchDistinguishesFailureCategories(t *testing.T) {
	diverging := simpleTransferDoc()
	diverging["gasUsed"] = "0x9999"

	pairs := map[string]DocumentPair{
		"pass":      {Left: simpleTransferDoc(), Right: simpleTransferDoc()},
		"diff":      {Left: simpleTransferDoc(), Right: diverging},
		"malformed": {Left: []any{}, Right: simpleTransferDoc()},
	}

	batch := RunBatch(context.Background(), pairs, WithLogger(quietLogger()))

	require.True(t, batch.Get("pass").Passed())
	require.True(t, batch.Get("diff").Failed())
	require.False(t, batch.Get("diff").Malformed())
	require.True(t, batch.Get("malformed").Malformed())
	require.False(t, batch.Get("malformed").Failed())
	require.Equal(t, 1, batch.Passed)
	require.Equal(t, 1, batch.Failed)
	require.Equal(t, 1, batch.Malformed)
}

func TestRunBatchCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pairs := map[string]DocumentPair{
		"first":  {Left: simpleTransferDoc(), Right: simpleTransferDoc()},
		"second": {Left: simpleTransferDoc(), Right: simpleTransferDoc()},
	}
	batch := RunBatch(ctx, pairs, WithLogger(quietLogger()))

	// Cancellation is not a statement about the documents; the scenarios
	// are canceled, not malformed.
	require.Equal(t, 2, batch.Canceled)
	require.Zero(t, batch.Malformed)
	require.Zero(t, batch.Passed)
	require.Zero(t, batch.Failed)
	for _, result := range batch.All() {
		require.True(t, result.Canceled())
		require.False(t, result.Malformed())
		require.ErrorIs(t, result.Err, context.Canceled)
	}
}

func TestRunBatchUnavailablePair(t *testing.T) {
	pairs := map[string]DocumentPair{
		"Good": {Left: simpleTransferDoc(), Right: simpleTransferDoc()},
		"Bad":  {Err: fmt.Errorf("left document: decode trace: unexpected EOF")},
	}
	batch := RunBatch(context.Background(), pairs, WithLogger(quietLogger()))

	require.Equal(t, 1, batch.Passed)
	require.Equal(t, 1, batch.Malformed)
	require.Zero(t, batch.Canceled)
	bad := batch.Get("Bad")
	require.True(t, bad.Malformed())
	require.False(t, bad.Canceled())
	require.EqualError(t, bad.Err, "left document: decode trace: unexpected EOF")
}

func TestRunBatchResultsIncludeGasRecords(t *testing.T) {
	diverging := simpleTransferDoc()
	diverging["gasUsed"] = "0x5209"

	batch := RunBatch(context.Background(), map[string]DocumentPair{
		"scenario": {Left: simpleTransferDoc(), Right: diverging},
	}, WithLogger(quietLogger()))

	result := batch.Get("scenario")
	require.Len(t, result.GasRecords, 1)
	require.Equal(t, int64(1), result.GasRecords[0].GasUsed.Delta())
}

func TestRunBatchNamesSorted(t *testing.T) {
	pairs := map[string]DocumentPair{}
	for _, name := range []string{"zeta", "alpha", "mid"} {
		pairs[name] = DocumentPair{Left: simpleTransferDoc(), Right: simpleTransferDoc()}
	}
	batch := RunBatch(context.Background(), pairs, WithLogger(quietLogger()))
	require.Equal(t, []string{"alpha", "mid", "zeta"}, batch.Names())
}

func TestRunBatchParallelMatchesSerial(t *testing.T) {
	pairs := map[string]DocumentPair{}
	for i := 0; i < 16; i++ {
		left := simpleTransferDoc()
		right := simpleTransferDoc()
		if i%3 == 0 {
			right["gasUsed"] = "0x5209"
		}
		pairs[fmt.Sprintf("scenario-%02d", i)] = DocumentPair{Left: left, Right: right}
	}

	serial := RunBatch(context.Background(), pairs, WithWorkers(1), WithLogger(quietLogger()))
	parallel := RunBatch(context.Background(), pairs, WithWorkers(8), WithLogger(quietLogger()))

	require.Equal(t, serial.Names(), parallel.Names())
	require.Equal(t, serial.Passed, parallel.Passed)
	require.Equal(t, serial.Failed, parallel.Failed)
	require.Equal(t, serial.Malformed, parallel.Malformed)
	for _, name := range serial.Names() {
		require.Equal(t,
			serial.Get(name).Result.Entries(),
			parallel.Get(name).Result.Entries(),
			"scenario %s", name)
	}
}
