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
	"errors"
	"fmt"
	"runtime"
	"sort"

	"github.com/ledgerwatch/log/v3"
	"golang.org/x/sync/errgroup"
)

// DocumentPair is one scenario's two raw decoded trace documents. Err
// records a failure to obtain either document (unreadable or undecodable
// file); the batch runner folds it into that scenario's malformed outcome
// instead of comparing.
type DocumentPair struct {
	Left  any
	Right any
	Err   error
}

// ScenarioResult is the outcome of comparing one scenario pair. Either Err
// is set (the documents could not be normalized) or Result and GasRecords
// are.
type ScenarioResult struct {
	Name       string
	Result     *ComparisonResult
	GasRecords []GasRecord
	Err        error
}

// Passed reports a clean comparison with zero discrepancies.
func (r *ScenarioResult) Passed() bool {
	return r.Err == nil && r.Result.IsMatch()
}

// Failed reports a completed comparison that found discrepancies. Malformed
// scenarios are not "failed": they are an infrastructure problem, not a
// behavioral difference.
func (r *ScenarioResult) Failed() bool {
	return r.Err == nil && !r.Result.IsMatch()
}

// Malformed reports that at least one document of the pair could not be
// obtained or normalized. Cancellation is kept apart: it says nothing about
// the documents.
func (r *ScenarioResult) Malformed() bool {
	return r.Err != nil && !r.Canceled()
}

// Canceled reports that the scenario was never compared because the batch
// context was done before it ran.
func (r *ScenarioResult) Canceled() bool {
	return r.Err != nil && (errors.Is(r.Err, context.Canceled) || errors.Is(r.Err, context.DeadlineExceeded))
}

// BatchResult aggregates the per-scenario outcomes of one batch run.
type BatchResult struct {
	byName map[string]*ScenarioResult

	Passed    int
	Failed    int
	Malformed int
	Canceled  int
}

func (b *BatchResult) Total() int {
	return len(b.byName)
}

// Get returns the result of one scenario, or nil if the batch never saw it.
func (b *BatchResult) Get(name string) *ScenarioResult {
	return b.byName[name]
}

// Names returns every scenario name in sorted order, so iteration is stable
// regardless of how the batch was scheduled.
func (b *BatchResult) Names() []string {
	names := make([]string, 0, len(b.byName))
	for name := range b.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns the scenario results ordered by name.
func (b *BatchResult) All() []*ScenarioResult {
	results := make([]*ScenarioResult, 0, len(b.byName))
	for _, name := range b.Names() {
		results = append(results, b.byName[name])
	}
	return results
}

type batchRunner struct {
	workers       int
	logger        log.Logger
	normalizeOpts []NormalizeOption
}

// BatchOption configures a batch run.
type BatchOption func(*batchRunner)

// WithWorkers bounds how many scenarios are compared concurrently.
// Defaults to GOMAXPROCS.
func WithWorkers(n int) BatchOption {
	return func(b *batchRunner) {
		if n > 0 {
			b.workers = n
		}
	}
}

// WithLogger routes per-scenario progress to the given logger.
func WithLogger(logger log.Logger) BatchOption {
	return func(b *batchRunner) { b.logger = logger }
}

// WithNormalizeOptions applies normalization options to both sides of every
// pair.
func WithNormalizeOptions(opts ...NormalizeOption) BatchOption {
	return func(b *batchRunner) { b.normalizeOpts = opts }
}

// RunBatch normalizes, diffs and gas-analyzes every scenario pair. A
// malformed document fails its own scenario only; the rest of the batch
// completes. Scenarios run on a bounded worker pool, but results are keyed
// and ordered by name, so concurrency never changes observable output. If
// the context ends before a scenario runs, that scenario is marked canceled,
// not malformed.
func RunBatch(ctx context.Context, pairs map[string]DocumentPair, opts ...BatchOption) *BatchResult {
	runner := &batchRunner{
		workers: runtime.GOMAXPROCS(0),
		logger:  log.New(),
	}
	for _, opt := range opts {
		opt(runner)
	}

	batch := &BatchResult{byName: make(map[string]*ScenarioResult, len(pairs))}
	for name := range pairs {
		batch.byName[name] = &ScenarioResult{Name: name}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runner.workers)
	for name, pair := range pairs {
		pair := pair
		result := batch.byName[name]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				result.Err = err
				return nil
			}
			runner.runScenario(result, pair)
			return nil
		})
	}
	_ = g.Wait() // scenario failures are captured per result, never returned

	for _, result := range batch.byName {
		switch {
		case result.Canceled():
			batch.Canceled++
		case result.Malformed():
			batch.Malformed++
		case result.Passed():
			batch.Passed++
		default:
			batch.Failed++
		}
	}
	return batch
}

func (b *batchRunner) runScenario(result *ScenarioResult, pair DocumentPair) {
	if pair.Err != nil {
		result.Err = pair.Err
		b.logger.Warn("scenario documents unavailable", "scenario", result.Name, "err", result.Err)
		return
	}

	left, err := Normalize(pair.Left, b.normalizeOpts...)
	if err != nil {
		result.Err = fmt.Errorf("left document: %w", err)
		b.logger.Warn("scenario document malformed", "scenario", result.Name, "err", result.Err)
		return
	}
	right, err := Normalize(pair.Right, b.normalizeOpts...)
	if err != nil {
		result.Err = fmt.Errorf("right document: %w", err)
		b.logger.Warn("scenario document malformed", "scenario", result.Name, "err", result.Err)
		return
	}

	result.Result = Diff(left, right)
	result.GasRecords = AnalyzeGas(left, right)
	if result.Result.IsMatch() {
		b.logger.Debug("scenario matched", "scenario", result.Name)
	} else {
		b.logger.Warn("scenario mismatch", "scenario", result.Name, "differences", len(result.Result.Entries()))
	}
}
