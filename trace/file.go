// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package trace

import (
	"fmt"
	"os"
	"sync"

	"github.com/ava-labs/dininghall"
	"go.uber.org/multierr"
)

var _ dininghall.EventSink = (*FileSink)(nil)

// FileSink appends one line per event to a file. Every line is written with a single
// write call, so a crash leaves at most one partial line behind.
type FileSink struct {
	path   string
	format Format

	// guards file and closed, independently of the monitor
	lock   sync.Mutex
	file   *os.File
	closed bool
}

func OpenFile(path string, format Format) (*FileSink, error) {
	format, err := ParseFormat(string(format))
	if err != nil {
		return nil, err
	}

	file, err := os.OpenFile(path, FileFlags, FilePermissions)
	if err != nil {
		return nil, fmt.Errorf("failed opening trace file %s: %w", path, err)
	}

	if format == FormatText {
		if _, err := file.WriteString(Header + "\n"); err != nil {
			return nil, multierr.Append(
				fmt.Errorf("failed writing trace header to %s: %w", path, err),
				file.Close())
		}
	}

	return &FileSink{
		path:   path,
		format: format,
		file:   file,
	}, nil
}

func (fs *FileSink) Path() string {
	return fs.path
}

func (fs *FileSink) Emit(e dininghall.Event) error {
	line, err := EncodeLine(e, fs.format)
	if err != nil {
		return err
	}
	line = append(line, '\n')

	fs.lock.Lock()
	defer fs.lock.Unlock()

	if fs.closed {
		return ErrClosed
	}

	if _, err := fs.file.Write(line); err != nil {
		return fmt.Errorf("failed appending to trace file %s: %w", fs.path, err)
	}
	return nil
}

// Close writes the footer of text traces, syncs and closes the file.
// Text traces start with Header, written by OpenFile.
func (fs *FileSink) Close() error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	if fs.closed {
		return nil
	}
	fs.closed = true

	var err error
	if fs.format == FormatText {
		_, writeErr := fs.file.WriteString(Footer + "\n")
		err = multierr.Append(err, writeErr)
	}
	err = multierr.Append(err, fs.file.Sync())
	err = multierr.Append(err, fs.file.Close())
	if err != nil {
		return fmt.Errorf("failed closing trace file %s: %w", fs.path, err)
	}
	return nil
}
