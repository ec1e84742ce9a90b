// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package trace

import (
	"fmt"
	"os"
	"strings"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

const (
	// Header is the first line of a text trace.
	Header = "--- Trace Log Started ---"
	// Footer is the last line of a text trace that was closed cleanly.
	Footer = "--- Trace Log Finished ---"

	// a trace file always starts empty
	FileFlags       = os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	FilePermissions = 0o644

	// width of the action column in text traces
	actionWidth = 15
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

func (f Format) String() string {
	return string(f)
}

// Extension returns the file extension used for traces of this format.
func (f Format) Extension() string {
	if f == FormatJSON {
		return ".jsonl"
	}
	return ".txt"
}
