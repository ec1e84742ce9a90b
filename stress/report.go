// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package stress

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

type ScenarioReport struct {
	Scenario  Scenario
	Successes int
	Deadlocks int
	Failures  int
	Meals     int
	Aborts    int
	// total duration of successful runs
	elapsed time.Duration
}

func (sr *ScenarioReport) add(res RunResult) {
	switch res.Verdict {
	case Success:
		sr.Successes++
		sr.elapsed += res.Duration
	case Deadlock:
		sr.Deadlocks++
	default:
		sr.Failures++
	}
	sr.Meals += res.Meals
	sr.Aborts += res.Aborted
}

// MeanDuration is the average duration of the successful runs.
func (sr ScenarioReport) MeanDuration() time.Duration {
	if sr.Successes == 0 {
		return 0
	}
	return sr.elapsed / time.Duration(sr.Successes)
}

type Report struct {
	Runs      int
	Scenarios []ScenarioReport
}

// Passed is true when no run of any scenario deadlocked or failed.
func (r Report) Passed() bool {
	for _, sr := range r.Scenarios {
		if sr.Deadlocks > 0 || sr.Failures > 0 {
			return false
		}
	}
	return true
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	goodStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	badStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))

	columns = []int{36, 10, 10, 10, 10, 16}
)

func cell(style lipgloss.Style, width int, text string) string {
	return style.Width(width).Render(text)
}

func row(cells ...string) string {
	return strings.Join(cells, " | ")
}

// ProgressMark is the single character printed for each finished run.
func ProgressMark(res RunResult) string {
	switch res.Verdict {
	case Success:
		return goodStyle.Render(".")
	case Deadlock:
		return badStyle.Render("D")
	default:
		return badStyle.Render("E")
	}
}

// Render writes the report as a table followed by the final verdict.
func (r Report) Render(w io.Writer) error {
	plain := lipgloss.NewStyle()

	lines := []string{
		headerStyle.Render("Stress test report"),
		"",
		row(
			cell(headerStyle, columns[0], "Scenario"),
			cell(headerStyle, columns[1], "Success"),
			cell(headerStyle, columns[2], "Deadlocks"),
			cell(headerStyle, columns[3], "Failures"),
			cell(headerStyle, columns[4], "Aborts"),
			cell(headerStyle, columns[5], "Mean time (s)"),
		),
		strings.Repeat("-", 104),
	}

	for _, sr := range r.Scenarios {
		successStyle := goodStyle
		if sr.Successes != r.Runs {
			successStyle = warnStyle
		}
		deadlockStyle := goodStyle
		if sr.Deadlocks > 0 {
			deadlockStyle = badStyle
		}
		failureStyle := plain
		if sr.Failures > 0 {
			failureStyle = badStyle
		}

		lines = append(lines, row(
			cell(plain, columns[0], fmt.Sprintf("%s (%s)", sr.Scenario, sr.Scenario.Label)),
			cell(successStyle, columns[1], fmt.Sprint(sr.Successes)),
			cell(deadlockStyle, columns[2], fmt.Sprint(sr.Deadlocks)),
			cell(failureStyle, columns[3], fmt.Sprint(sr.Failures)),
			cell(plain, columns[4], fmt.Sprint(sr.Aborts)),
			cell(plain, columns[5], fmt.Sprintf("%.4f", sr.MeanDuration().Seconds())),
		))
	}

	lines = append(lines, strings.Repeat("-", 104), "")
	if r.Passed() {
		lines = append(lines, goodStyle.Render("PASSED: no deadlocks or failures in the tested scenarios."))
	} else {
		lines = append(lines, badStyle.Render("FAILED: stability problems were detected."))
	}

	_, err := io.WriteString(w, strings.Join(lines, "\n")+"\n")
	return err
}
