package report

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/liuxd6825/flakerun/execution"
)

// ConsoleReporter renders the end of batch summary for a terminal, successes
// in green and errors in red.
type ConsoleReporter struct {
	NoColor bool
	// OutputRoot is printed as the location of the artifacts when set.
	OutputRoot string
}

var _ Reporter = ConsoleReporter{}

func getColor(noColor bool, attributes ...color.Attribute) *color.Color {
	if noColor {
		c := color.New()
		c.DisableColor()
		return c
	}

	c := color.New(attributes...)
	c.EnableColor()
	return c
}

func (r ConsoleReporter) Begin(w io.Writer, b *execution.BatchResult) error {
	bold := getColor(r.NoColor, color.Bold)
	name := b.Scenario
	if name == "" {
		name = "scenario"
	}
	_, err := fmt.Fprintf(w, "\n%s %s\n\n", bold.Sprint(name), getColor(r.NoColor, color.Faint).Sprintf("(batch %s)", b.ID))
	return err
}

func (r ConsoleReporter) Report(w io.Writer, res *execution.RunResult) error {
	dur := getColor(r.NoColor, color.Faint).Sprintf("%s", res.Duration.Round(time.Millisecond))
	if res.Outcome == execution.Success {
		_, err := fmt.Fprintf(w, "  %d. %s %s\n", res.RunIndex, getColor(r.NoColor, color.FgGreen).Sprint("Success"), dur)
		return err
	}
	_, err := fmt.Fprintf(w, "  %d. %s %s\n", res.RunIndex,
		getColor(r.NoColor, color.FgRed).Sprintf("Error: %s", res.Reason()), dur)
	return err
}

func (r ConsoleReporter) End(w io.Writer, b *execution.BatchResult) error {
	c := getColor(r.NoColor, color.FgGreen, color.Bold)
	if b.Failures() > 0 {
		c = getColor(r.NoColor, color.FgRed, color.Bold)
	}
	if _, err := fmt.Fprintf(w, "\n%s\n", c.Sprint(b.Summary())); err != nil {
		return err
	}
	if r.OutputRoot == "" {
		return nil
	}
	_, err := fmt.Fprintf(w, "artifacts: %s\n", r.OutputRoot)
	return err
}
