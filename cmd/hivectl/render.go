package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/lexcodex/hivemind/hive"
)

var (
	colorPrimary = lipgloss.Color("39")
	colorSuccess = lipgloss.Color("42")
	colorError   = lipgloss.Color("196")
	colorDim     = lipgloss.Color("241")

	goalStyle      = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	completedStyle = lipgloss.NewStyle().Foreground(colorSuccess)
	failedStyle    = lipgloss.NewStyle().Foreground(colorError)
	dimStyle       = lipgloss.NewStyle().Foreground(colorDim)
)

// renderReport prints the mission trace: one line per step plus the tally.
func renderReport(w io.Writer, report *hive.MissionReport) {
	fmt.Fprintln(w, goalStyle.Render(report.Mission.Goal))
	for _, step := range report.Steps {
		marker := completedStyle.Render("ok")
		if step.Status == hive.StepStatusFailed {
			marker = failedStyle.Render("fail")
		}
		fmt.Fprintf(w, "  [%s] %d %s\n", marker, step.StepID, step.Action)
		if step.Observation != "" {
			fmt.Fprintf(w, "       %s\n", dimStyle.Render(step.Observation))
		}
	}
	result := report.Mission.Result
	summary := fmt.Sprintf("%d/%d steps succeeded", result.SuccessfulSteps, result.TotalSteps)
	if report.Success {
		fmt.Fprintln(w, completedStyle.Render(summary))
	} else {
		fmt.Fprintln(w, failedStyle.Render(summary))
	}
}

// terminalGate asks escalation questions on the command's stdin/stdout.
func terminalGate(cmd *cobra.Command) hive.FeedbackGate {
	reader := bufio.NewReader(cmd.InOrStdin())
	return hive.FeedbackFunc(func(ctx context.Context, question string) (string, error) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n> ", goalStyle.Render(question))
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return "", err
		}
		return strings.TrimSpace(line), nil
	})
}
