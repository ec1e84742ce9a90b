// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package trace

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/ava-labs/dininghall"
	jsoniter "github.com/json-iterator/go"
)

var (
	ErrUnknownFormat = errors.New("unknown trace format")
	ErrMalformedLine = errors.New("malformed trace line")
	ErrClosed        = errors.New("trace sink is closed")

	json = jsoniter.ConfigCompatibleWithStandardLibrary

	// [1700000000.123456] [Student 01] REQ_ENTRY       | Eat:0 Wait:0 | trying to sit
	textLine = regexp.MustCompile(`^\[(\d+)\.(\d{6})\] \[Student (\d+)\] (\S+)\s*\| Eat:(-?\d+) Wait:(-?\d+) \| ?(.*)$`)
)

// EncodeLine renders one event as a single line, without the trailing newline.
func EncodeLine(e dininghall.Event, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.Marshal(e)
	case FormatText:
		line := fmt.Sprintf("[%d.%06d] [Student %s] %-*s | Eat:%d Wait:%d | %s",
			e.Time.Unix(), e.Time.Nanosecond()/int(time.Microsecond),
			e.Student, actionWidth, e.Action,
			e.Eating, e.WaitingToEat, e.Reason)
		return []byte(line), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// DecodeLine parses a line produced by EncodeLine. Text lines carry no sequence number,
// so the returned event has Seq zero and the caller assigns one.
func DecodeLine(line []byte, format Format) (dininghall.Event, error) {
	switch format {
	case FormatJSON:
		var e dininghall.Event
		if err := json.Unmarshal(line, &e); err != nil {
			return dininghall.Event{}, fmt.Errorf("%w: %w", ErrMalformedLine, err)
		}
		return e, nil
	case FormatText:
		return decodeText(string(line))
	default:
		return dininghall.Event{}, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func decodeText(line string) (dininghall.Event, error) {
	m := textLine.FindStringSubmatch(line)
	if m == nil {
		return dininghall.Event{}, fmt.Errorf("%w: %q", ErrMalformedLine, line)
	}

	// The regular expression guarantees the numeric groups are digits.
	sec, _ := strconv.ParseInt(m[1], 10, 64)
	usec, _ := strconv.ParseInt(m[2], 10, 64)
	student, _ := strconv.Atoi(m[3])
	eating, _ := strconv.Atoi(m[5])
	waiting, _ := strconv.Atoi(m[6])

	action, err := dininghall.ParseAction(m[4])
	if err != nil {
		return dininghall.Event{}, fmt.Errorf("%w: %w", ErrMalformedLine, err)
	}

	return dininghall.Event{
		Time:         time.Unix(sec, usec*int64(time.Microsecond)),
		Student:      dininghall.StudentID(student),
		Action:       action,
		Reason:       m[7],
		Eating:       eating,
		WaitingToEat: waiting,
	}, nil
}
