// Package preview renders a template into a deterministic reproduction of
// what a thermal printer would output: a monospace character grid honoring
// the document column capacity, per-block style resolution, and the font-B
// compression simulation.
package preview

import (
	"github.com/tablewise/printstudio/pkg/templatefmt"
)

// Mode selects which output document is being previewed.
type Mode string

const (
	ModeBill    Mode = "bill"
	ModeReceipt Mode = "receipt"
	ModeKOT     Mode = "kot"
)

// ParseMode converts a wire string into a Mode.
func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case ModeBill, ModeReceipt, ModeKOT:
		return Mode(s), true
	}
	return "", false
}

// Includes reports whether a block participates in the given mode. Kitchen
// tickets are a separate document family with no bill/receipt split, so kot
// mode consults isVisible alone.
func Includes(b templatefmt.Block, mode Mode) bool {
	if !b.IsVisible {
		return false
	}
	switch mode {
	case ModeBill:
		return b.ShowOnBill
	case ModeReceipt:
		return b.ShowOnReceipt
	default:
		return true
	}
}

// LineKind distinguishes the structural line shapes a block can emit.
type LineKind int

const (
	LineText LineKind = iota
	LineDivider
	LineDoubleRule
	LineQR
	LineBlank
)

// Line is one laid-out row of the simulated paper. Text lines are already
// padded and aligned on the column grid.
type Line struct {
	Kind LineKind
	Text string
	Bold bool
}

// BlockView is the rendered form of one block.
type BlockView struct {
	ID       string
	Type     templatefmt.BlockType
	Selected bool
	Style    templatefmt.Style
	Lines    []Line
}

// Document is the full rendered preview.
type Document struct {
	PaperWidth  templatefmt.PaperWidth
	Columns     int
	LineSpacing float64
	Blocks      []BlockView
}

// TextLines flattens the document to plain strings, one per printed row.
func (d Document) TextLines() []string {
	var out []string
	for _, b := range d.Blocks {
		for _, ln := range b.Lines {
			switch ln.Kind {
			case LineDivider:
				out = append(out, dashedRule(d.Columns))
			case LineDoubleRule:
				out = append(out, doubleRule(d.Columns))
			case LineBlank:
				out = append(out, "")
			default:
				out = append(out, ln.Text)
			}
		}
	}
	return out
}

// HasBlock reports whether a block with the given id made it into the
// rendered output.
func (d Document) HasBlock(id string) bool {
	for _, b := range d.Blocks {
		if b.ID == id {
			return true
		}
	}
	return false
}

// Render produces the preview document for a template. It is a pure
// function of its inputs: the same template, mode, selection and context
// always yield the same document. A nil context falls back to built-in
// sample data so the preview stays meaningful with no live order.
// selectedID marks one block for visual highlighting only; it never affects
// layout.
func Render(tpl templatefmt.Template, mode Mode, selectedID string, ctx *Context) Document {
	if ctx == nil {
		ctx = SampleContext()
	}

	doc := Document{
		PaperWidth:  tpl.Global.PaperWidth,
		Columns:     tpl.Global.Columns(),
		LineSpacing: tpl.Global.LineSpacing,
	}

	for _, b := range tpl.Blocks {
		if !Includes(b, mode) {
			continue
		}

		st := templatefmt.Resolve(b, tpl.Global)
		g := newGrid(doc.Columns, st)

		bv := BlockView{
			ID:       b.ID,
			Type:     b.Type,
			Selected: selectedID != "" && b.ID == selectedID,
			Style:    st,
		}

		body := renderBlock(b, g, ctx)
		for i := 0; i < st.PaddingTop; i++ {
			bv.Lines = append(bv.Lines, Line{Kind: LineBlank})
		}
		bv.Lines = append(bv.Lines, body...)
		for i := 0; i < st.PaddingBottom; i++ {
			bv.Lines = append(bv.Lines, Line{Kind: LineBlank})
		}

		doc.Blocks = append(doc.Blocks, bv)
	}

	return doc
}

func renderBlock(b templatefmt.Block, g grid, ctx *Context) []Line {
	switch b.Type {
	case templatefmt.TypeHeader:
		return renderHeader(b, g, ctx)
	case templatefmt.TypeBillInfo:
		return renderBillInfo(b, g, ctx)
	case templatefmt.TypeCustomer:
		return renderCustomer(b, g, ctx)
	case templatefmt.TypeItems:
		return renderItems(b, g, ctx)
	case templatefmt.TypeTotals:
		return renderTotals(b, g, ctx)
	case templatefmt.TypePayments:
		return renderPayments(b, g, ctx)
	case templatefmt.TypePartialPay:
		return renderPartialPay(b, g, ctx)
	case templatefmt.TypeFooter:
		return renderFooter(b, g)
	case templatefmt.TypeText:
		return renderText(b, g)
	case templatefmt.TypeDivider:
		return []Line{{Kind: LineDivider}}
	case templatefmt.TypeQR:
		return renderQR(b, g)
	case templatefmt.TypeGlobalSettings:
		// Never legitimate in the content stream; render an inert
		// diagnostic label rather than live document content.
		return []Line{{Kind: LineText, Text: g.center("[global settings]")}}
	default:
		return []Line{{Kind: LineText, Text: g.center("[unknown block]")}}
	}
}
