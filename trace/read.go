// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package trace

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ava-labs/dininghall"
)

// ReadAll parses every event of a trace. Blank lines, the header and the footer are skipped.
// Events of text traces are numbered in file order.
func ReadAll(r io.Reader, format Format) ([]dininghall.Event, error) {
	scanner := bufio.NewScanner(r)

	var (
		events []dininghall.Event
		lineNo int
	)
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 || string(line) == Header || string(line) == Footer {
			continue
		}

		e, err := DecodeLine(line, format)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if e.Seq == 0 {
			e.Seq = uint64(len(events) + 1)
		}
		events = append(events, e)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed reading trace: %w", err)
	}
	return events, nil
}

// ReadFile reads a trace file, picking the format from its extension.
func ReadFile(path string) ([]dininghall.Event, error) {
	format := FormatText
	if filepath.Ext(path) == FormatJSON.Extension() {
		format = FormatJSON
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed opening trace file %s: %w", path, err)
	}
	defer file.Close()

	return ReadAll(file, format)
}
