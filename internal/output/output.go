// Package output renders scan reports for the terminal: severity-tagged
// event lines and a summary table of probe results.
package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/probeworks/netsweep/internal/probe"
	"github.com/probeworks/netsweep/internal/scan"
)

// Style maps event severities and probe verdicts to terminal colors.
type Style struct {
	Info    *color.Color
	Warning *color.Color
	Fatal   *color.Color

	Positive *color.Color
	Negative *color.Color
	Neutral  *color.Color
}

// DefaultStyle returns the standard terminal style. Colors degrade to
// plain text automatically when stdout is not a terminal.
func DefaultStyle() *Style {
	return &Style{
		Info:     color.New(color.FgCyan),
		Warning:  color.New(color.FgYellow),
		Fatal:    color.New(color.FgRed, color.Bold),
		Positive: color.New(color.FgGreen),
		Negative: color.New(color.FgRed),
		Neutral:  color.New(color.FgYellow),
	}
}

// severity returns the color for an event severity.
func (s *Style) severity(sev scan.Severity) *color.Color {
	switch sev {
	case scan.SeverityWarning:
		return s.Warning
	case scan.SeverityFatal:
		return s.Fatal
	default:
		return s.Info
	}
}

// verdict returns the color for a probe verdict.
func (s *Style) verdict(v probe.Verdict) *color.Color {
	switch v {
	case probe.VerdictAlive, probe.VerdictOpen:
		return s.Positive
	case probe.VerdictDown, probe.VerdictClosed:
		return s.Negative
	default:
		return s.Neutral
	}
}

// Format renders one severity-tagged line, e.g. "[warning] ignoring
// invalid port tokens: banana".
func (s *Style) Format(sev scan.Severity, msg string) string {
	tag := s.severity(sev).Sprintf("[%s]", sev)
	return fmt.Sprintf("%s %s", tag, msg)
}

// Renderer writes scan reports to a stream.
type Renderer struct {
	out   io.Writer
	style *Style
}

// NewRenderer creates a renderer writing to out with the default style.
func NewRenderer(out io.Writer) *Renderer {
	return &Renderer{out: out, style: DefaultStyle()}
}

// Events writes every report event as a severity-tagged line in report
// order: warnings first, then one line per result.
func (r *Renderer) Events(report *scan.Report) {
	for _, event := range report.Events() {
		fmt.Fprintln(r.out, r.style.Format(event.Severity, event.Message))
	}
}

// Table writes the report's results as a table, followed by a summary
// line. Liveness reports omit the port and protocol columns.
func (r *Renderer) Table(report *scan.Report) {
	table := tablewriter.NewWriter(r.out)

	if report.Mode == scan.ModeLiveness {
		table.Header("Address", "State", "Time")
		for i := range report.Results {
			res := &report.Results[i]
			_ = table.Append([]string{
				res.Address,
				r.style.verdict(res.Verdict).Sprint(string(res.Verdict)),
				res.Duration.Round(time.Millisecond).String(),
			})
		}
	} else {
		table.Header("Address", "Port", "Proto", "State", "Time")
		for i := range report.Results {
			res := &report.Results[i]
			_ = table.Append([]string{
				res.Address,
				fmt.Sprintf("%d", res.Port),
				string(res.Protocol),
				r.style.verdict(res.Verdict).Sprint(verdictLabel(res.Verdict)),
				res.Duration.Round(time.Millisecond).String(),
			})
		}
	}

	_ = table.Render()
	fmt.Fprintln(r.out, summaryLine(report))
}

// verdictLabel renders the presentation form of a verdict. The unknown
// port verdict is shown as "open|filtered" since a silent UDP peer
// cannot be told apart from a filtered one.
func verdictLabel(v probe.Verdict) string {
	if v == probe.VerdictUnknown {
		return "open|filtered"
	}
	return string(v)
}

// summaryLine condenses the report stats into one line.
func summaryLine(report *scan.Report) string {
	parts := []string{
		fmt.Sprintf("%d hosts", report.Stats.Hosts),
		fmt.Sprintf("%d probes", report.Stats.Probes),
	}
	if report.Mode == scan.ModeLiveness {
		parts = append(parts,
			fmt.Sprintf("%d alive", report.Stats.Alive),
			fmt.Sprintf("%d down", report.Stats.Down))
	} else {
		parts = append(parts,
			fmt.Sprintf("%d open", report.Stats.Open),
			fmt.Sprintf("%d closed", report.Stats.Closed))
		if report.Stats.Unknown > 0 {
			parts = append(parts, fmt.Sprintf("%d open|filtered", report.Stats.Unknown))
		}
	}
	parts = append(parts, fmt.Sprintf("in %s", report.Duration.Round(time.Millisecond)))
	return strings.Join(parts, ", ")
}
