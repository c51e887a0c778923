package output

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/termenv"

	"github.com/pranshuparmar/sockowner/pkg/model"
)

const maxProcessWidth = 24

func headerStyle(w io.Writer) lipgloss.Style {
	r := lipgloss.NewRenderer(w, termenv.WithProfile(termenv.ANSI256))
	return r.NewStyle().
		Foreground(lipgloss.Color("#5f5fd7")). // Purple/Blue
		Bold(true)
}

// RenderTable prints one row per socket.
func RenderTable(w io.Writer, records []model.Record, colorEnabled bool) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No open sockets found.")
		return err
	}

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.Protocol.String(),
			r.Address.String(),
			fmt.Sprint(r.Port),
			fmt.Sprint(r.PID),
			truncate.StringWithTail(r.Process, maxProcessWidth, "…"),
		})
	}
	return writeTable(w, []string{"PROTO", "LOCAL ADDRESS", "PORT", "PID", "PROCESS"}, rows, colorEnabled)
}

// writeTable aligns columns first and styles the header afterwards, since
// escape sequences would otherwise count towards column widths.
func writeTable(w io.Writer, header []string, rows [][]string, colorEnabled bool) error {
	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	out := buf.String()
	if colorEnabled {
		head, rest, _ := strings.Cut(out, "\n")
		out = headerStyle(w).Render(strings.TrimRight(head, " ")) + "\n" + rest
	}
	_, err := io.WriteString(w, out)
	return err
}
