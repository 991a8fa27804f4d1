package output

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/prowlsec/prowl/internal/engine"
)

var tableHeaders = []string{"Host", "IP", "Status", "Open Ports", "Technologies", "Pages"}

// WriteTable renders the per-subdomain results as a styled terminal table.
func WriteTable(w io.Writer, scan *engine.DomainScan, noColor bool) {
	if len(scan.Subdomains) == 0 {
		fmt.Fprintln(w, "\nNo subdomains scanned.")
		return
	}

	var rows [][]string
	for _, sub := range scan.Subdomains {
		var portCells []string
		for _, p := range sub.OpenPorts {
			cell := strconv.Itoa(p.Port)
			if p.Service != "unknown" {
				cell += "/" + p.Service
			}
			portCells = append(portCells, cell)
		}

		rows = append(rows, []string{
			sub.Host,
			sub.IP,
			string(sub.Status),
			strings.Join(portCells, ","),
			truncate(strings.Join(dedupeStrings(sub.Technologies), ", "), 40),
			strconv.Itoa(len(sub.Pages)),
		})
	}

	// Sort by host, keeping the root domain first.
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i][0] == scan.Domain {
			return true
		}
		if rows[j][0] == scan.Domain {
			return false
		}
		return rows[i][0] < rows[j][0]
	})

	fmt.Fprintln(w)

	if noColor {
		writeSimpleTable(w, rows)
		return
	}

	t := table.New().
		Headers(tableHeaders...).
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
			}
			return lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
		})

	for _, row := range rows {
		t.Row(row...)
	}

	fmt.Fprintln(w, t.Render())
}

func writeSimpleTable(w io.Writer, rows [][]string) {
	widths := make([]int, len(tableHeaders))
	for i, h := range tableHeaders {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	for i, h := range tableHeaders {
		if i > 0 {
			fmt.Fprint(w, " | ")
		}
		fmt.Fprintf(w, "%-*s", widths[i], h)
	}
	fmt.Fprintln(w)

	for i, width := range widths {
		if i > 0 {
			fmt.Fprint(w, "-+-")
		}
		fmt.Fprint(w, strings.Repeat("-", width))
	}
	fmt.Fprintln(w)

	for _, row := range rows {
		for i, cell := range row {
			if i > 0 {
				fmt.Fprint(w, " | ")
			}
			fmt.Fprintf(w, "%-*s", widths[i], cell)
		}
		fmt.Fprintln(w)
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

func dedupeStrings(ss []string) []string {
	seen := make(map[string]bool, len(ss))
	var out []string
	for _, s := range ss {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
