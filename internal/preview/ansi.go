package preview

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	ansiBold     = lipgloss.NewStyle().Bold(true)
	ansiRule     = lipgloss.NewStyle().Faint(true)
	ansiSelected = lipgloss.NewStyle().Background(lipgloss.Color("57")).Foreground(lipgloss.Color("231"))
)

// RenderANSI styles the document's text grid for terminal output: bold
// lines bold, rules dimmed, and the selected block highlighted.
func RenderANSI(d Document) string {
	var sb strings.Builder

	for _, b := range d.Blocks {
		for _, ln := range b.Lines {
			var row string
			switch ln.Kind {
			case LineDivider:
				row = ansiRule.Render(dashedRule(d.Columns))
			case LineDoubleRule:
				row = ansiRule.Render(doubleRule(d.Columns))
			case LineBlank:
				row = ""
			default:
				row = ln.Text
				if ln.Bold || b.Style.Bold {
					row = ansiBold.Render(row)
				}
			}
			if b.Selected {
				row = ansiSelected.Render(stripForHighlight(ln, d.Columns))
			}
			sb.WriteString(row)
			sb.WriteByte('\n')
		}
	}

	return sb.String()
}

func stripForHighlight(ln Line, columns int) string {
	switch ln.Kind {
	case LineDivider:
		return dashedRule(columns)
	case LineDoubleRule:
		return doubleRule(columns)
	case LineBlank:
		return strings.Repeat(" ", columns)
	default:
		return ln.Text
	}
}
