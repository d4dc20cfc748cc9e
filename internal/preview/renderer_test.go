package preview

import (
	"strings"
	"testing"

	"github.com/tablewise/printstudio/pkg/templatefmt"
)

func mustBlock(t *testing.T, typ templatefmt.BlockType) templatefmt.Block {
	t.Helper()
	b, err := templatefmt.NewBlock(typ)
	if err != nil {
		t.Fatalf("NewBlock(%s) failed: %v", typ, err)
	}
	return b
}

func TestIncludes_ModeFiltering(t *testing.T) {
	b := templatefmt.Block{IsVisible: true, ShowOnBill: false, ShowOnReceipt: true}

	if Includes(b, ModeBill) {
		t.Error("showOnBill=false must exclude the block from bill mode")
	}
	if !Includes(b, ModeReceipt) {
		t.Error("showOnReceipt=true must include the block in receipt mode")
	}
	if !Includes(b, ModeKOT) {
		t.Error("kot mode must consult isVisible alone")
	}

	b.IsVisible = false
	for _, mode := range []Mode{ModeBill, ModeReceipt, ModeKOT} {
		if Includes(b, mode) {
			t.Errorf("isVisible=false must exclude the block from %s", mode)
		}
	}
}

// The end-to-end scenario: header + divider + footer where the footer is
// excluded from bills.
func TestRender_BillOmitsFooterHiddenOnBill(t *testing.T) {
	header := mustBlock(t, templatefmt.TypeHeader)
	divider := mustBlock(t, templatefmt.TypeDivider)
	footer := mustBlock(t, templatefmt.TypeFooter)
	footer.Config["message"] = "THANK YOU"
	footer.ShowOnBill = false

	tpl := templatefmt.Template{
		Family: templatefmt.FamilyReceipt,
		Global: templatefmt.GlobalConfig{
			FontFamily: templatefmt.FontA, FontSize: 12,
			LineSpacing: 1.2, PaperWidth: templatefmt.Paper80,
		},
		Blocks: []templatefmt.Block{header, divider, footer},
	}

	bill := Render(tpl, ModeBill, "", nil)
	if len(bill.Blocks) != 2 {
		t.Fatalf("bill mode rendered %d blocks, want 2", len(bill.Blocks))
	}
	if bill.HasBlock(footer.ID) {
		t.Error("footer must be omitted entirely from bill mode")
	}
	if !bill.HasBlock(header.ID) || !bill.HasBlock(divider.ID) {
		t.Error("header and divider must appear in bill mode")
	}

	receipt := Render(tpl, ModeReceipt, "", nil)
	if len(receipt.Blocks) != 3 {
		t.Fatalf("receipt mode rendered %d blocks, want 3", len(receipt.Blocks))
	}
	joined := strings.Join(receipt.TextLines(), "\n")
	if !strings.Contains(joined, "THANK YOU") {
		t.Error("receipt mode must include the footer message")
	}
}

func TestRender_ColumnsFromGlobal(t *testing.T) {
	tpl := templatefmt.DefaultTemplate(templatefmt.FamilyReceipt)
	tpl.Global.PaperWidth = templatefmt.Paper58
	tpl.Global.ColumnCapacity = 0

	doc := Render(tpl, ModeReceipt, "", nil)
	if doc.Columns != 32 {
		t.Errorf("columns = %d, want 32 for 58mm", doc.Columns)
	}

	for _, b := range doc.Blocks {
		for _, ln := range b.Lines {
			if ln.Kind == LineText && len([]rune(ln.Text)) > 32 {
				t.Errorf("line overflows 32 columns: %q", ln.Text)
			}
		}
	}
}

func TestRender_SelectionHighlightOnly(t *testing.T) {
	tpl := templatefmt.DefaultTemplate(templatefmt.FamilyReceipt)
	target := tpl.Blocks[0].ID

	plain := Render(tpl, ModeReceipt, "", nil)
	selected := Render(tpl, ModeReceipt, target, nil)

	if len(plain.Blocks) != len(selected.Blocks) {
		t.Fatal("selection must not change layout")
	}
	if !selected.Blocks[0].Selected {
		t.Error("selected flag missing on the targeted block")
	}
	if plain.Blocks[0].Selected {
		t.Error("no block should be selected without a selection id")
	}
	for i := range plain.Blocks {
		a := strings.Join(linesOf(plain.Blocks[i]), "\n")
		b := strings.Join(linesOf(selected.Blocks[i]), "\n")
		if a != b {
			t.Errorf("block %d content changed under selection", i)
		}
	}
}

func linesOf(b BlockView) []string {
	out := make([]string, len(b.Lines))
	for i, ln := range b.Lines {
		out[i] = ln.Text
	}
	return out
}

func TestBillInfo_LegacyAndDetailedAreExclusive(t *testing.T) {
	legacy := mustBlock(t, templatefmt.TypeBillInfo)

	if billInfoDetailed(legacy) {
		t.Error("a bill_info block with no detail flags must use the legacy layout")
	}

	// A detail flag present but disabled must not switch layouts.
	legacy.Config["show_station"] = false
	if billInfoDetailed(legacy) {
		t.Error("a disabled detail flag must not select the detailed layout")
	}

	for _, flag := range billInfoDetailFlags {
		detailed := mustBlock(t, templatefmt.TypeBillInfo)
		detailed.Config[flag] = true
		if !billInfoDetailed(detailed) {
			t.Errorf("flag %s must select the detailed layout", flag)
		}
	}
}

func TestBillInfo_LegacyLayoutContent(t *testing.T) {
	b := mustBlock(t, templatefmt.TypeBillInfo)
	b.Config["show_table"] = true

	tpl := singleBlockTemplate(b)
	doc := Render(tpl, ModeReceipt, "", nil)
	joined := strings.Join(doc.TextLines(), "\n")

	if !strings.Contains(joined, "Bill No:") {
		t.Error("legacy layout must carry the bill number")
	}
	if !strings.Contains(joined, "Table:") {
		t.Error("legacy layout must honor show_table")
	}
	if strings.Contains(joined, "Station") {
		t.Error("legacy layout must not gain detailed fields")
	}
}

func TestBillInfo_DetailedLayoutContent(t *testing.T) {
	b := mustBlock(t, templatefmt.TypeBillInfo)
	b.Config["show_station"] = true
	b.Config["show_kot_number"] = true

	tpl := singleBlockTemplate(b)
	doc := Render(tpl, ModeKOT, "", nil)
	joined := strings.Join(doc.TextLines(), "\n")

	if !strings.Contains(joined, "Station:") || !strings.Contains(joined, "KOT:") {
		t.Errorf("detailed layout missing enabled fields:\n%s", joined)
	}
	if strings.Contains(joined, "Bill No:") {
		t.Error("detailed layout must replace the legacy bill row")
	}
}

func TestItems_SampleFallback(t *testing.T) {
	b := mustBlock(t, templatefmt.TypeItems)
	tpl := singleBlockTemplate(b)

	doc := Render(tpl, ModeReceipt, "", &Context{Restaurant: Restaurant{Name: "X"}})
	joined := strings.Join(doc.TextLines(), "\n")

	if !strings.Contains(joined, "Chicken Momo") {
		t.Error("items block must fall back to sample rows with no live order")
	}
}

func TestItems_ColumnToggles(t *testing.T) {
	b := mustBlock(t, templatefmt.TypeItems)
	b.Config["show_serial"] = false
	b.Config["show_rate"] = false

	tpl := singleBlockTemplate(b)
	doc := Render(tpl, ModeReceipt, "", nil)
	header := doc.Blocks[0].Lines[0].Text

	if strings.Contains(header, "SN") || strings.Contains(header, "Rate") {
		t.Errorf("disabled columns still present in header: %q", header)
	}
	if !strings.Contains(header, "Qty") || !strings.Contains(header, "Amount") {
		t.Errorf("mandatory and enabled columns missing: %q", header)
	}
}

func TestQR_BorderedBox(t *testing.T) {
	qr := mustBlock(t, templatefmt.TypeQR)
	tpl := templatefmt.Template{
		Family: templatefmt.FamilyReceipt,
		Global: templatefmt.DefaultGlobal(templatefmt.FamilyReceipt),
		Blocks: []templatefmt.Block{qr},
	}

	doc := Render(tpl, ModeReceipt, "", nil)
	if len(doc.Blocks) != 1 {
		t.Fatalf("rendered %d blocks, want 1", len(doc.Blocks))
	}

	lines := doc.Blocks[0].Lines
	if len(lines) != 5 {
		t.Fatalf("qr box has %d lines, want 5", len(lines))
	}
	for i, ln := range lines {
		if ln.Kind != LineQR {
			t.Errorf("line %d kind = %v, want LineQR", i, ln.Kind)
		}
	}

	border := "+" + strings.Repeat("-", 10) + "+"
	if top := strings.TrimSpace(lines[0].Text); top != border {
		t.Errorf("top border = %q, want %q", top, border)
	}
	if bottom := strings.TrimSpace(lines[4].Text); bottom != border {
		t.Errorf("bottom border = %q, want %q", bottom, border)
	}
	if !strings.Contains(lines[2].Text, "QR") {
		t.Errorf("label row = %q, want it to carry the QR marker", lines[2].Text)
	}
	if label := strings.TrimSpace(lines[2].Text); len(label) != len(border) {
		t.Errorf("label row width = %d, want %d", len(label), len(border))
	}
}

func TestText_PlaceholderWhenEmpty(t *testing.T) {
	b := mustBlock(t, templatefmt.TypeText)
	tpl := singleBlockTemplate(b)

	doc := Render(tpl, ModeReceipt, "", nil)
	if !strings.Contains(doc.Blocks[0].Lines[0].Text, "tap to set text") {
		t.Error("empty text block must render a placeholder prompt")
	}

	b.Config["content"] = "No outside food"
	tpl = singleBlockTemplate(b)
	doc = Render(tpl, ModeReceipt, "", nil)
	if !strings.Contains(doc.Blocks[0].Lines[0].Text, "No outside food") {
		t.Error("configured text content not rendered")
	}
}

func TestGlobalSettings_RendersInertDiagnostic(t *testing.T) {
	// Erroneously placed in the content list; must render as a diagnostic
	// label, never as live content.
	b := templatefmt.Block{
		ID: "stray", Type: templatefmt.TypeGlobalSettings,
		Config: templatefmt.Config{}, IsVisible: true, ShowOnBill: true, ShowOnReceipt: true,
	}
	tpl := singleBlockTemplate(b)

	doc := Render(tpl, ModeReceipt, "", nil)
	if len(doc.Blocks) != 1 {
		t.Fatal("stray global_settings block missing from output")
	}
	if !strings.Contains(doc.Blocks[0].Lines[0].Text, "[global settings]") {
		t.Error("expected the inert diagnostic label")
	}
}

func TestTotals_DiscountAndGrandTotal(t *testing.T) {
	b := mustBlock(t, templatefmt.TypeTotals)
	tpl := singleBlockTemplate(b)

	doc := Render(tpl, ModeReceipt, "", nil)
	lines := doc.Blocks[0].Lines

	if len(lines) != 3 {
		t.Fatalf("totals rendered %d lines, want discount + rule + total", len(lines))
	}
	if !strings.Contains(lines[0].Text, "Discount") {
		t.Error("discount line missing")
	}
	if lines[1].Kind != LineDoubleRule {
		t.Error("expected a double-ruled separator before the grand total")
	}
	if !lines[2].Bold || !strings.Contains(lines[2].Text, "600.00") {
		t.Errorf("grand total must be bold with the amount: %+v", lines[2])
	}
}

func TestPartialPay_DueRow(t *testing.T) {
	b := mustBlock(t, templatefmt.TypePartialPay)
	tpl := singleBlockTemplate(b)

	doc := Render(tpl, ModeReceipt, "", nil)
	lines := doc.Blocks[0].Lines
	last := lines[len(lines)-1]

	if !last.Bold || !strings.Contains(last.Text, "Due") {
		t.Errorf("partial_pay must end with a bold due row: %+v", last)
	}
}

func TestRender_Deterministic(t *testing.T) {
	tpl := templatefmt.DefaultTemplate(templatefmt.FamilyReceipt)

	a := strings.Join(Render(tpl, ModeReceipt, "", nil).TextLines(), "\n")
	b := strings.Join(Render(tpl, ModeReceipt, "", nil).TextLines(), "\n")
	if a != b {
		t.Error("rendering the same input twice produced different output")
	}
}

func TestFontB_WidensUsableColumns(t *testing.T) {
	b := mustBlock(t, templatefmt.TypeText)
	b.Config["content"] = strings.Repeat("x", 60)
	b.Config["font_type"] = "B"
	b.Config["align"] = "left"

	tpl := singleBlockTemplate(b)
	doc := Render(tpl, ModeReceipt, "", nil)

	// 42 columns at 0.8 columns per condensed character fits 52 characters.
	got := len([]rune(doc.Blocks[0].Lines[0].Text))
	if got != 52 {
		t.Errorf("condensed line width = %d characters, want 52", got)
	}
}

func singleBlockTemplate(b templatefmt.Block) templatefmt.Template {
	return templatefmt.Template{
		Family: templatefmt.FamilyReceipt,
		Global: templatefmt.GlobalConfig{
			FontFamily: templatefmt.FontA, FontSize: 12,
			LineSpacing: 1.2, PaperWidth: templatefmt.Paper80, ColumnCapacity: 42,
		},
		Blocks: []templatefmt.Block{b},
	}
}
