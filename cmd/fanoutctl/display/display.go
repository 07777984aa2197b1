// Package display provides output formatting for fanoutctl.
//
// Every function honors the global --output flag: "table" renders aligned
// text with text/tabwriter, "json" writes indented JSON of the daemon's data.
//
// TABLE CONVENTIONS:
//   - Delta status is colored: green increased, yellow unchanged, red otherwise
//   - Counters and timestamps go through go-humanize
//   - Verbose mode adds request ids, rotation cursors and zero outcome counts
//
// JSON output is the daemon's data payload unchanged, so it is stable enough
// for scripts.
package display

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/concave-dev/fanout/cmd/fanoutctl/config"
	"github.com/concave-dev/fanout/internal/api/handlers"
	"github.com/concave-dev/fanout/internal/logging"
	"github.com/concave-dev/fanout/internal/measure"
	"github.com/concave-dev/fanout/internal/orchestrator"
	"github.com/concave-dev/fanout/internal/remote"
	"github.com/dustin/go-humanize"
)

// Out is where all output is written.
var Out io.Writer = os.Stdout

// Status colors
var (
	goodStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#60F281")).Bold(true)
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFE763")).Bold(true)
	badStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4473")).Bold(true)
)

// writeJSON writes v as indented JSON to Out
func writeJSON(v any) {
	encoder := json.NewEncoder(Out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		logging.Error("Failed to encode JSON: %v", err)
		fmt.Fprintln(Out, "Error encoding JSON output")
	}
}

// statusStyle picks the color for a delta status.
func statusStyle(s measure.Status) lipgloss.Style {
	switch s {
	case measure.Increased:
		return goodStyle
	case measure.Unchanged:
		return warnStyle
	default:
		return badStyle
	}
}

// DisplayDispatchResult prints the outcome of one dispatch request.
//
// The table shows the measured identity, both counter reads, the colored
// delta and the dispatch report. A counter read the daemon could not trust
// is marked (unreliable); the delta of such a request is reported as
// unchanged by the daemon, not guessed here.
func DisplayDispatchResult(resp *orchestrator.Response) {
	if config.Global.Output == "json" {
		writeJSON(resp)
		return
	}

	w := tabwriter.NewWriter(Out, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "Target:\t%d (%s)\n", resp.TargetID, resp.Name)
	fmt.Fprintf(w, "Group:\t%s (%s, batch %s)\n", resp.Group, resp.Mode, humanize.Comma(int64(resp.BatchSize)))
	fmt.Fprintf(w, "Before:\t%s%s\n", humanize.Comma(resp.Before), reliability(resp.BeforeReliable))
	fmt.Fprintf(w, "After:\t%s%s\n", humanize.Comma(resp.After), reliability(resp.AfterReliable))
	fmt.Fprintf(w, "Delta:\t%+d %s\n", resp.Delta, statusStyle(resp.Status).Render(resp.Status.String()))

	report := resp.Dispatch
	fmt.Fprintf(w, "Dispatch:\t%s attempted, %s succeeded, %s failed in %v\n",
		humanize.Comma(int64(report.Attempted)), humanize.Comma(int64(report.Succeeded)),
		humanize.Comma(int64(report.Failed)), report.Elapsed.Round(time.Millisecond))
	if outcomes := formatCounts(report.Counts); outcomes != "" {
		fmt.Fprintf(w, "Outcomes:\t%s\n", outcomes)
	}
	if resp.Note != "" {
		fmt.Fprintf(w, "Note:\t%s\n", resp.Note)
	}
	if config.Global.Verbose && resp.RequestID != "" {
		fmt.Fprintf(w, "Request:\t%s\n", resp.RequestID)
	}
	w.Flush()
}

// reliability marks unreliable counter reads
func reliability(reliable bool) string {
	if reliable {
		return ""
	}
	return " " + warnStyle.Render("(unreliable)")
}

// formatCounts renders per-code tallies in a fixed order. Zero counts are
// shown only in verbose mode.
func formatCounts(counts map[string]int) string {
	var parts []string
	for _, code := range remote.Codes {
		n := counts[code.String()]
		if n == 0 && !config.Global.Verbose {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=%s", code, humanize.Comma(int64(n))))
	}
	return strings.Join(parts, " ")
}

// DisplayPools prints pool sizes and rotation cursors per group.
//
// Groups sharing a pool are listed separately, each with its own cursor,
// since rotation state is kept per group. The cursor column appears only in
// verbose mode.
func DisplayPools(pools []orchestrator.PoolStatus) {
	if config.Global.Output == "json" {
		if pools == nil {
			pools = []orchestrator.PoolStatus{}
		}
		writeJSON(pools)
		return
	}
	if len(pools) == 0 {
		fmt.Fprintln(Out, "No groups configured")
		return
	}

	w := tabwriter.NewWriter(Out, 0, 0, 2, ' ', 0)
	defer w.Flush()

	if config.Global.Verbose {
		fmt.Fprintln(w, "GROUP\tPOOL\tDISPATCH\tMEASUREMENT\tCURSOR\tROTATION\tSTATUS")
	} else {
		fmt.Fprintln(w, "GROUP\tPOOL\tDISPATCH\tMEASUREMENT\tSTATUS")
	}

	for _, p := range pools {
		status := poolState(p)
		if config.Global.Verbose {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
				p.Group, p.Pool, humanize.Comma(int64(p.Dispatch)), humanize.Comma(int64(p.Measurement)),
				p.Cursor, rotation(p), status)
		} else {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				p.Group, p.Pool, humanize.Comma(int64(p.Dispatch)), humanize.Comma(int64(p.Measurement)), status)
		}
	}
}

// poolState summarizes whether a group can serve dispatches.
func poolState(p orchestrator.PoolStatus) string {
	switch {
	case p.Dispatch == 0:
		return "no dispatch pool"
	case p.Measurement == 0:
		return "no measurement pool"
	default:
		return "ready"
	}
}

// rotation shows how far the cursor has moved through the pool.
func rotation(p orchestrator.PoolStatus) string {
	if p.Dispatch == 0 {
		return "-"
	}
	return fmt.Sprintf("%.0f%%", float64(p.Cursor)/float64(p.Dispatch)*100)
}

// DisplayPoolsReload prints the result of a pool cache purge.
func DisplayPoolsReload(purged bool) {
	if config.Global.Output == "json" {
		writeJSON(map[string]bool{"purged": purged})
		return
	}
	if purged {
		fmt.Fprintln(Out, "Pool cache purged; pools are re-read on the next request")
	} else {
		fmt.Fprintln(Out, "Pool caching is disabled; pools are already read on every request")
	}
}

// DisplayHealth prints the daemon health report.
func DisplayHealth(health *handlers.HealthResponse) {
	if config.Global.Output == "json" {
		writeJSON(health)
		return
	}

	style := goodStyle
	if health.Status != "healthy" {
		style = badStyle
	}

	w := tabwriter.NewWriter(Out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Status:\t%s\n", style.Render(health.Status))
	fmt.Fprintf(w, "Version:\t%s\n", health.Version)
	fmt.Fprintf(w, "Uptime:\t%s\n", health.Uptime)
	if !health.Timestamp.IsZero() {
		fmt.Fprintf(w, "Checked:\t%s\n", humanize.Time(health.Timestamp))
	}
	w.Flush()

	if len(health.Checks) == 0 {
		return
	}
	fmt.Fprintln(Out)
	w = tabwriter.NewWriter(Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CHECK\tSTATUS\tMESSAGE")
	for _, check := range health.Checks {
		fmt.Fprintf(w, "%s\t%s\t%s\n", check.Name, check.Status, check.Message)
	}
	w.Flush()
}
