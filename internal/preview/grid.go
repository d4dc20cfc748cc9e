package preview

import (
	"strings"

	"github.com/tablewise/printstudio/pkg/templatefmt"
)

// grid lays text out on the simulated paper. The paper holds a fixed number
// of character columns; a styled character occupies HScale columns, so the
// usable width of a block shrinks as characters widen (width_mult) and
// grows under the condensed font B.
type grid struct {
	columns int
	style   templatefmt.Style
}

func newGrid(columns int, st templatefmt.Style) grid {
	return grid{columns: columns, style: st}
}

// width returns how many characters of this block's style fit on one line.
func (g grid) width() int {
	scale := g.style.HScale
	if scale <= 0 {
		scale = 1
	}
	n := int(float64(g.columns) / scale)
	if n < 1 {
		n = 1
	}
	return n
}

// line aligns text inside the block's usable width using the block's
// resolved alignment.
func (g grid) line(text string) string {
	return g.alignLine(text, g.style.Align)
}

func (g grid) left(text string) string   { return g.alignLine(text, templatefmt.AlignLeft) }
func (g grid) center(text string) string { return g.alignLine(text, templatefmt.AlignCenter) }

func (g grid) alignLine(text string, align templatefmt.Align) string {
	w := g.width()
	r := []rune(text)
	if len(r) > w {
		return string(r[:w])
	}

	pad := w - len(r)
	switch align {
	case templatefmt.AlignRight:
		return strings.Repeat(" ", pad) + text
	case templatefmt.AlignCenter:
		l := pad / 2
		return strings.Repeat(" ", l) + text + strings.Repeat(" ", pad-l)
	default:
		return text + strings.Repeat(" ", pad)
	}
}

// pair lays a label on the left edge and a value on the right edge of one
// line, the classic receipt two-column row.
func (g grid) pair(label, value string) string {
	w := g.width()
	lr, vr := []rune(label), []rune(value)

	gap := w - len(lr) - len(vr)
	if gap < 1 {
		// Truncate the label before sacrificing the value.
		keep := w - len(vr) - 1
		if keep < 0 {
			keep = 0
		}
		if keep < len(lr) {
			lr = lr[:keep]
		}
		gap = w - len(lr) - len(vr)
		if gap < 1 {
			gap = 1
		}
	}
	return string(lr) + strings.Repeat(" ", gap) + string(vr)
}

// halves packs two label:value pairs into one line, each in half the width.
func (g grid) halves(left, right string) string {
	w := g.width()
	half := w / 2
	return padTo(left, half) + padTo(right, w-half)
}

// cells lays out fixed-width table columns. A negative width marks the
// flexible column that absorbs the remaining space; its content is
// truncated rather than wrapped.
func (g grid) cells(widths []int, values []string) string {
	total := g.width()
	fixed := 0
	flexAt := -1
	for i, w := range widths {
		if w < 0 {
			flexAt = i
			continue
		}
		fixed += w
	}

	var sb strings.Builder
	for i, w := range widths {
		if i == flexAt {
			w = total - fixed
			if w < 1 {
				w = 1
			}
		}
		v := ""
		if i < len(values) {
			v = values[i]
		}
		sb.WriteString(padTo(v, w))
	}
	return sb.String()
}

func padTo(text string, width int) string {
	r := []rune(text)
	if len(r) >= width {
		return string(r[:width])
	}
	return text + strings.Repeat(" ", width-len(r))
}

func padLeftTo(text string, width int) string {
	r := []rune(text)
	if len(r) >= width {
		return string(r[:width])
	}
	return strings.Repeat(" ", width-len(r)) + text
}

func dashedRule(columns int) string {
	return strings.Repeat("-", columns)
}

func doubleRule(columns int) string {
	return strings.Repeat("=", columns)
}
