package cmd

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/jmgilman/iconkeep/internal/keeper"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	failureStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	kindStyle    = lipgloss.NewStyle().Faint(true)
)

var pastTense = map[keeper.Operation]string{
	keeper.OpBackup:  "Backed up",
	keeper.OpRestore: "Restored",
}

// writeResult prints the outcome of one app: successes to out, failures
// to errOut.
func writeResult(out, errOut io.Writer, op keeper.Operation, res keeper.Result) {
	if res.Err != nil {
		fmt.Fprintf(errOut, "Error: %s: %v %s\n", res.Ref, res.Err, kindStyle.Render("("+string(keeper.Classify(res.Err))+")"))
		return
	}
	fmt.Fprintf(out, "%s icon for %s -> %s\n", pastTense[op], res.Ref, res.Path)
}

// writeReport prints every result of a batch followed by a summary line.
func writeReport(out, errOut io.Writer, report *keeper.BatchReport) {
	for _, res := range report.Results {
		writeResult(out, errOut, report.Op, res)
	}
	fmt.Fprintln(out, summary(report))
}

func summary(report *keeper.BatchReport) string {
	total := len(report.Results)
	failed := len(report.Failed())

	line := fmt.Sprintf("%s %d of %d apps", pastTense[report.Op], report.Succeeded(), total)
	if failed == 0 {
		return successStyle.Render(line)
	}
	return failureStyle.Render(fmt.Sprintf("%s, %d failed", line, failed))
}
