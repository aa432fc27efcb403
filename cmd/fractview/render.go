package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/term"

	"github.com/wippyai/fractview/param"
	"github.com/wippyai/fractview/provider"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	keyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	borderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7D56F4"))
)

// maxValueWidth bounds the value column; longer values are elided.
const maxValueWidth = 48

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// tableRow is one table entry rendered as text.
type tableRow struct {
	key       string
	owner     string
	typ       string
	value     string
	isDefault bool
}

func tableRows(p *provider.Provider) []tableRow {
	entries := p.Table().Entries()
	rows := make([]tableRow, len(entries))
	for i, e := range entries {
		owner := "*"
		if !p.IsShared(e.Key) {
			owner = strconv.FormatUint(uint64(e.Owner), 10)
		}
		rows[i] = tableRow{
			key:       e.Key,
			owner:     owner,
			typ:       e.Parameter.Type.String(),
			value:     summarize(param.Text(e.Parameter.Type, e.Parameter.Value), maxValueWidth),
			isDefault: e.Parameter.IsDefault,
		}
	}
	return rows
}

// summarize collapses whitespace and cuts s to at most width runes.
func summarize(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-3]) + "..."
}

// writeTable prints the parameter table of p. Terminals get a styled table,
// anything else tab separated lines with a header.
func writeTable(w io.Writer, p *provider.Provider, styled bool) error {
	rows := tableRows(p)

	if !styled {
		if _, err := fmt.Fprintln(w, "KEY\tOWNER\tTYPE\tDEFAULT\tVALUE"); err != nil {
			return err
		}
		for _, r := range rows {
			def := "no"
			if r.isDefault {
				def = "yes"
			}
			if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.key, r.owner, r.typ, def, r.value); err != nil {
				return err
			}
		}
		return nil
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers("KEY", "OWNER", "TYPE", "VALUE").
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case row == table.HeaderRow:
				return base.Bold(true)
			case col == 0:
				return base.Inherit(keyStyle)
			case col == 2:
				return base.Inherit(typeStyle)
			case col == 3 && row < len(rows) && rows[row].isDefault:
				return base.Inherit(helpStyle)
			}
			return base
		})
	for _, r := range rows {
		t.Row(r.key, r.owner, r.typ, r.value)
	}

	_, err := fmt.Fprintln(w, t.Render())
	return err
}
