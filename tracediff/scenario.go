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
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

const (
	// DefaultLeftSuffix and DefaultRightSuffix are the scenario file naming
	// convention of the capture step: <scenario>_geth.json next to
	// <scenario>_besu.json.
	DefaultLeftSuffix  = "_geth"
	DefaultRightSuffix = "_besu"
)

// LoadDocument reads and decodes one trace file. Numbers are decoded as
// json.Number so the normalizer can keep numeric and string scalars apart.
// When the file is a whole JSON-RPC response, the "result" member is
// unwrapped; a bare trace object is returned as-is.
func LoadDocument(fsys afero.Fs, path string) (any, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	doc, err := DecodeDocument(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// DiscoverPairs scans a directory for scenario trace pairs following the
// <name><leftSuffix>.json / <name><rightSuffix>.json convention and loads
// both sides of every complete pair. Left files without a right-hand
// counterpart are skipped. A file that cannot be read or decoded fails its
// own scenario only: the error is recorded on that pair and the remaining
// scenarios are still discovered, so the batch runner can report it as
// malformed alongside the healthy results.
func DiscoverPairs(fsys afero.Fs, dir, leftSuffix, rightSuffix string) (map[string]DocumentPair, error) {
	entries, err := afero.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}

	pairs := make(map[string]DocumentPair)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), leftSuffix+".json") {
			continue
		}
		scenario := strings.TrimSuffix(entry.Name(), leftSuffix+".json")
		rightPath := filepath.Join(dir, scenario+rightSuffix+".json")
		if exists, _ := afero.Exists(fsys, rightPath); !exists {
			continue
		}

		left, err := LoadDocument(fsys, filepath.Join(dir, entry.Name()))
		if err != nil {
			pairs[scenario] = DocumentPair{Err: fmt.Errorf("left document: %w", err)}
			continue
		}
		right, err := LoadDocument(fsys, rightPath)
		if err != nil {
			pairs[scenario] = DocumentPair{Err: fmt.Errorf("right document: %w", err)}
			continue
		}
		pairs[scenario] = DocumentPair{Left: left, Right: right}
	}
	return pairs, nil
}

// DecodeDocument decodes an in-memory JSON trace, with the same number
// handling and envelope unwrapping as LoadDocument.
func DecodeDocument(data []byte) (any, error) {
	var doc any
	if err := jsonCfg.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode trace: %w", err)
	}
	if envelope, ok := doc.(map[string]any); ok {
		if result, ok := envelope["result"]; ok {
			if _, isObject := result.(map[string]any); isObject {
				return result, nil
			}
		}
	}
	return doc, nil
}
