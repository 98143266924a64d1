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

// tracediff compares call-tracer output of two Ethereum clients. It takes
// already-captured debug_traceTransaction responses (callTracer), brings
// them into a canonical form and reports structural and gas differences.
package main

import (
	"fmt"
	"os"

	"github.com/google/go-cmp/cmp"
	jsoniter "github.com/json-iterator/go"
	"github.com/ledgerwatch/log/v3"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/erigontech/tracediff/tracediff"
)

func main() {
	logger := log.New()

	var (
		verbose     bool
		normalize   bool
		hexNorm     bool
		workers     int
		jsonOutput  bool
		leftSuffix  string
		rightSuffix string
		verbosity   int
	)

	rootCmd := &cobra.Command{
		Use:           "tracediff",
		Short:         "compare callTracer output between two Ethereum clients",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.SetHandler(log.LvlFilterHandler(log.Lvl(verbosity), log.StderrHandler))
		},
	}
	rootCmd.PersistentFlags().IntVar(&verbosity, "verbosity", int(log.LvlInfo), "log verbosity (0=crit .. 5=trace)")

	withVerbose := func(cmd *cobra.Command) {
		cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print call trees and the full detailed report")
	}
	withHexNorm := func(cmd *cobra.Command) {
		cmd.Flags().BoolVar(&hexNorm, "normalize-hex", false, "treat 0x0 and 0x00 as equal")
	}
	normalizeOpts := func() []tracediff.NormalizeOption {
		if hexNorm {
			return []tracediff.NormalizeOption{tracediff.WithHexNormalization()}
		}
		return nil
	}
	fsys := afero.NewOsFs()

	compareCmd := &cobra.Command{
		Use:   "compare <left.json> <right.json>",
		Short: "compare two trace files and report differences",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			left, right, err := loadPair(fsys, args[0], args[1], normalizeOpts())
			if err != nil {
				return err
			}

			result := tracediff.Diff(left, right)
			fmt.Println(result.RenderSummary())

			printGasDiscrepancies(tracediff.AnalyzeGas(left, right))
			compareErrors(left, right)

			if verbose {
				fmt.Println("\n--- Left Call Tree ---")
				fmt.Println(tracediff.RenderTree(left))
				fmt.Println("\n--- Right Call Tree ---")
				fmt.Println(tracediff.RenderTree(right))
				if !result.IsMatch() {
					fmt.Println()
					fmt.Println(result.RenderDetailed())
				}
			}
			if !result.IsMatch() {
				return fmt.Errorf("%d difference(s) found", len(result.Entries()))
			}
			return nil
		},
	}
	withVerbose(compareCmd)
	withHexNorm(compareCmd)

	analyzeCmd := &cobra.Command{
		Use:   "analyze <trace.json>",
		Short: "inspect a single trace file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			frame, err := loadOne(fsys, args[0], normalizeOpts())
			if err != nil {
				return err
			}
			fmt.Printf("File: %s\n", args[0])
			fmt.Printf("Call counts: %v\n", tracediff.CountCalls(frame))
			fmt.Printf("Total gas used: %d\n", tracediff.TotalGasUsed(frame))
			_, hasErr := frame.Field("error")
			_, hasRevert := frame.Field("revertReason")
			fmt.Printf("Has error: %v\n", hasErr)
			fmt.Printf("Has revert: %v\n", hasRevert)
			if verbose {
				fmt.Println("\n--- Call Tree ---")
				fmt.Println(tracediff.RenderTree(frame))
			}
			return nil
		},
	}
	withVerbose(analyzeCmd)

	treeCmd := &cobra.Command{
		Use:   "tree <trace.json>",
		Short: "print the call tree of a trace file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			frame, err := loadOne(fsys, args[0], normalizeOpts())
			if err != nil {
				return err
			}
			fmt.Println(tracediff.RenderTree(frame))
			return nil
		},
	}

	diffCmd := &cobra.Command{
		Use:   "diff <left.json> <right.json>",
		Short: "print a textual document diff of two trace files",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			leftDoc, err := tracediff.LoadDocument(fsys, args[0])
			if err != nil {
				return err
			}
			rightDoc, err := tracediff.LoadDocument(fsys, args[1])
			if err != nil {
				return err
			}
			if normalize {
				left, err := tracediff.Normalize(leftDoc, normalizeOpts()...)
				if err != nil {
					return err
				}
				right, err := tracediff.Normalize(rightDoc, normalizeOpts()...)
				if err != nil {
					return err
				}
				leftDoc, rightDoc = left.AsDocument(), right.AsDocument()
			}
			if diff := cmp.Diff(leftDoc, rightDoc); diff != "" {
				fmt.Println(diff)
				return fmt.Errorf("documents differ")
			}
			fmt.Println("no differences found")
			return nil
		},
	}
	diffCmd.Flags().BoolVar(&normalize, "normalize", false, "canonicalize both documents before diffing")
	withHexNorm(diffCmd)

	batchCmd := &cobra.Command{
		Use:   "batch <dir>",
		Short: "compare every scenario pair found in a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pairs, err := tracediff.DiscoverPairs(fsys, args[0], leftSuffix, rightSuffix)
			if err != nil {
				return err
			}
			if len(pairs) == 0 {
				return fmt.Errorf("no scenario pairs found in %s", args[0])
			}

			batch := tracediff.RunBatch(cmd.Context(), pairs,
				tracediff.WithWorkers(workers),
				tracediff.WithLogger(logger),
				tracediff.WithNormalizeOptions(normalizeOpts()...),
			)

			if jsonOutput {
				return printBatchJSON(batch)
			}
			printBatch(batch)
			if batch.Failed > 0 || batch.Malformed > 0 || batch.Canceled > 0 {
				return fmt.Errorf("%d of %d scenarios did not pass", batch.Failed+batch.Malformed+batch.Canceled, batch.Total())
			}
			return nil
		},
	}
	batchCmd.Flags().IntVar(&workers, "workers", 0, "max scenarios compared concurrently (0 = GOMAXPROCS)")
	batchCmd.Flags().BoolVar(&jsonOutput, "json", false, "print machine-readable results")
	batchCmd.Flags().StringVar(&leftSuffix, "left-suffix", tracediff.DefaultLeftSuffix, "filename suffix of left-hand traces")
	batchCmd.Flags().StringVar(&rightSuffix, "right-suffix", tracediff.DefaultRightSuffix, "filename suffix of right-hand traces")
	withHexNorm(batchCmd)

	rootCmd.AddCommand(compareCmd, analyzeCmd, treeCmd, diffCmd, batchCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadOne(fsys afero.Fs, path string, opts []tracediff.NormalizeOption) (*tracediff.CallFrame, error) {
	doc, err := tracediff.LoadDocument(fsys, path)
	if err != nil {
		return nil, err
	}
	return tracediff.Normalize(doc, opts...)
}

func loadPair(fsys afero.Fs, leftPath, rightPath string, opts []tracediff.NormalizeOption) (*tracediff.CallFrame, *tracediff.CallFrame, error) {
	left, err := loadOne(fsys, leftPath, opts)
	if err != nil {
		return nil, nil, err
	}
	right, err := loadOne(fsys, rightPath, opts)
	if err != nil {
		return nil, nil, err
	}
	return left, right, nil
}

func compareErrors(left, right *tracediff.CallFrame) {
	leftErr, _ := left.Field("error")
	rightErr, _ := right.Field("error")
	if leftErr.String() == "" && rightErr.String() == "" {
		return
	}
	c := tracediff.CompareErrorMessages(leftErr.String(), rightErr.String())
	if c.ExactMatch {
		return
	}
	fmt.Println("\n--- Error Message Comparison ---")
	fmt.Printf("  Left:  %q (normalized: %q)\n", c.Left, c.LeftNormalized)
	fmt.Printf("  Right: %q (normalized: %q)\n", c.Right, c.RightNormalized)
	fmt.Printf("  Semantic match: %v\n", c.SemanticMatch)
}

func printGasDiscrepancies(records []tracediff.GasRecord) {
	var header bool
	for _, record := range records {
		if !record.HasDiscrepancy() {
			continue
		}
		if !header {
			fmt.Println("\n--- Gas Discrepancies (informational) ---")
			header = true
		}
		if record.Gas.Comparable() && record.Gas.Delta() != 0 {
			fmt.Printf("  %s.gas: %s, higher: %s\n", record.Path, record.Gas, record.Gas.HigherSide())
		}
		if record.GasUsed.Comparable() && record.GasUsed.Delta() != 0 {
			fmt.Printf("  %s.gasUsed: %s, higher: %s\n", record.Path, record.GasUsed, record.GasUsed.HigherSide())
		}
	}
}

func printBatch(batch *tracediff.BatchResult) {
	fmt.Println("Batch Comparison Results")
	fmt.Println("========================")
	for _, result := range batch.All() {
		switch {
		case result.Canceled():
			fmt.Printf("%s: CANCELED: %v\n", result.Name, result.Err)
		case result.Malformed():
			fmt.Printf("%s: ERROR: %v\n", result.Name, result.Err)
		case result.Passed():
			fmt.Printf("%s: PASS\n", result.Name)
		default:
			summary := result.Result.Summarize()
			fmt.Printf("%s: FAIL (%d diffs)\n", result.Name, summary.Total)
		}
	}
	fmt.Printf("\nTotal: %d passed, %d failed, %d malformed, %d canceled\n", batch.Passed, batch.Failed, batch.Malformed, batch.Canceled)
}

type batchScenarioJSON struct {
	Match       bool   `json:"match"`
	Differences int    `json:"differences,omitempty"`
	Error       string `json:"error,omitempty"`
}

func printBatchJSON(batch *tracediff.BatchResult) error {
	out := make(map[string]batchScenarioJSON, batch.Total())
	for _, result := range batch.All() {
		s := batchScenarioJSON{Match: result.Passed()}
		if result.Err != nil {
			s.Error = result.Err.Error()
		} else if result.Failed() {
			s.Differences = len(result.Result.Entries())
		}
		out[result.Name] = s
	}
	encoded, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(encoded))
	return nil
}
