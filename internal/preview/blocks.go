package preview

import (
	"fmt"
	"strings"

	"github.com/tablewise/printstudio/pkg/templatefmt"
)

func amount(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func renderHeader(b templatefmt.Block, g grid, ctx *Context) []Line {
	r := ctx.Restaurant

	lines := []Line{{Kind: LineText, Text: g.line(r.Name), Bold: true}}
	if b.Config.Bool("show_address") && r.Address != "" {
		lines = append(lines, Line{Kind: LineText, Text: g.line(r.Address)})
	}
	if b.Config.Bool("show_phone") && r.Phone != "" {
		lines = append(lines, Line{Kind: LineText, Text: g.line("Tel: " + r.Phone)})
	}
	if b.Config.Bool("show_email") && r.Email != "" {
		lines = append(lines, Line{Kind: LineText, Text: g.line(r.Email)})
	}
	if b.Config.Bool("show_pan") && r.PAN != "" {
		lines = append(lines, Line{Kind: LineText, Text: g.line("PAN: " + r.PAN)})
	}
	if tagline := b.Config.Str("tagline", ""); tagline != "" {
		lines = append(lines, Line{Kind: LineText, Text: g.line(tagline)})
	}
	return append(lines, Line{Kind: LineDivider})
}

// Detail-only flags of the bill_info block. When none of them is enabled
// the block renders its original simple layout, so templates created before
// these fields existed do not silently gain unrequested rows.
var billInfoDetailFlags = []string{
	"show_kot_number", "show_station", "show_type",
	"show_date", "show_user", "show_time", "show_category",
}

func billInfoDetailed(b templatefmt.Block) bool {
	for _, flag := range billInfoDetailFlags {
		if b.Config.Bool(flag) {
			return true
		}
	}
	return false
}

func renderBillInfo(b templatefmt.Block, g grid, ctx *Context) []Line {
	if billInfoDetailed(b) {
		return renderBillInfoDetailed(b, g, ctx)
	}
	return renderBillInfoSimple(b, g, ctx)
}

func renderBillInfoDetailed(b templatefmt.Block, g grid, ctx *Context) []Line {
	kot := ctx.KOT
	if kot == nil {
		kot = SampleContext().KOT
	}
	order := ctx.Order
	if order == nil {
		order = SampleContext().Order
	}

	var pairs []string
	add := func(flag, label, value string) {
		if b.Config.Bool(flag) && value != "" {
			pairs = append(pairs, label+": "+value)
		}
	}

	add("show_kot_number", "KOT", kot.TicketNumber)
	add("show_station", "Station", kot.Station)
	add("show_type", "Type", kot.Type)
	if b.Config.BoolOr("show_table", true) && order.Table != "" {
		pairs = append(pairs, "Table: "+order.Table)
	}
	add("show_date", "Date", kot.At.Format("2006-01-02"))
	add("show_time", "Time", kot.At.Format("15:04"))
	add("show_user", "User", kot.User)
	add("show_category", "Category", kot.Category)

	// Two fields per row, at most five rows.
	var lines []Line
	for i := 0; i < len(pairs) && len(lines) < 5; i += 2 {
		if i+1 < len(pairs) {
			lines = append(lines, Line{Kind: LineText, Text: g.halves(pairs[i], pairs[i+1])})
		} else {
			lines = append(lines, Line{Kind: LineText, Text: g.left(pairs[i])})
		}
	}
	return append(lines, Line{Kind: LineDivider})
}

func renderBillInfoSimple(b templatefmt.Block, g grid, ctx *Context) []Line {
	order := ctx.Order
	if order == nil {
		order = SampleContext().Order
	}

	lines := []Line{{
		Kind: LineText,
		Text: g.pair("Bill No: "+order.BillNumber, order.PlacedAt.Format("2006-01-02")),
	}}
	if b.Config.Bool("show_order_number") && order.Number != "" {
		lines = append(lines, Line{Kind: LineText, Text: g.left("Order: " + order.Number)})
	}
	if b.Config.Bool("show_table") && order.Table != "" {
		lines = append(lines, Line{Kind: LineText, Text: g.left("Table: " + order.Table)})
	}
	return append(lines, Line{Kind: LineDivider})
}

func renderCustomer(b templatefmt.Block, g grid, ctx *Context) []Line {
	order := ctx.Order
	if order == nil {
		order = SampleContext().Order
	}

	lines := []Line{{Kind: LineText, Text: g.line(order.Customer), Bold: true}}
	if b.Config.Bool("show_phone") && order.Phone != "" {
		lines = append(lines, Line{Kind: LineText, Text: g.line(order.Phone)})
	}
	return append(lines, Line{Kind: LineDivider})
}

func renderItems(b templatefmt.Block, g grid, ctx *Context) []Line {
	order := ctx.Order
	if order == nil || len(order.Items) == 0 {
		order = SampleContext().Order
	}

	showSerial := b.Config.BoolOr("show_serial", true)
	showRate := b.Config.BoolOr("show_rate", true)
	showAmount := b.Config.BoolOr("show_amount", true)

	// Item name takes whatever the enabled fixed columns leave over.
	var widths []int
	var header []string
	if showSerial {
		widths = append(widths, 4)
		header = append(header, b.Config.Str("label_serial", "SN"))
	}
	widths = append(widths, -1)
	header = append(header, b.Config.Str("label_item", "Item"))
	widths = append(widths, 5)
	header = append(header, b.Config.Str("label_qty", "Qty"))
	if showRate {
		widths = append(widths, 8)
		header = append(header, b.Config.Str("label_rate", "Rate"))
	}
	if showAmount {
		widths = append(widths, 9)
		header = append(header, b.Config.Str("label_amount", "Amount"))
	}

	lines := []Line{
		{Kind: LineText, Text: g.cells(widths, header), Bold: true},
		{Kind: LineDivider},
	}

	for i, item := range order.Items {
		var row []string
		if showSerial {
			row = append(row, fmt.Sprintf("%d", i+1))
		}
		row = append(row, item.Name, fmt.Sprintf("%d", item.Quantity))
		if showRate {
			row = append(row, amount(item.Rate))
		}
		if showAmount {
			row = append(row, amount(item.Amount))
		}
		lines = append(lines, Line{Kind: LineText, Text: g.cells(widths, row)})
	}

	return append(lines, Line{Kind: LineDivider})
}

func renderTotals(b templatefmt.Block, g grid, ctx *Context) []Line {
	order := ctx.Order
	if order == nil {
		order = SampleContext().Order
	}

	var lines []Line
	if b.Config.BoolOr("show_discount", true) && order.Discount > 0 {
		lines = append(lines, Line{
			Kind: LineText,
			Text: g.pair("Discount", "-"+amount(order.Discount)),
		})
	}
	lines = append(lines, Line{Kind: LineDoubleRule})
	return append(lines, Line{
		Kind: LineText,
		Text: g.pair(b.Config.Str("label", "TOTAL"), amount(order.GrandTotal)),
		Bold: true,
	})
}

func renderPayments(b templatefmt.Block, g grid, ctx *Context) []Line {
	order := ctx.Order
	if order == nil || len(order.Payments) == 0 {
		order = SampleContext().Order
	}

	lines := []Line{
		{Kind: LineDivider},
		{Kind: LineText, Text: g.line(b.Config.Str("label", "PAYMENTS")), Bold: true},
	}
	for _, p := range order.Payments {
		lines = append(lines, Line{Kind: LineText, Text: g.pair(p.Method, amount(p.Amount))})
	}
	return lines
}

func renderPartialPay(b templatefmt.Block, g grid, ctx *Context) []Line {
	order := ctx.Order
	if order == nil || len(order.Tendered) == 0 {
		order = SampleContext().Order
	}

	lines := []Line{
		{Kind: LineDivider},
		{Kind: LineText, Text: g.line(b.Config.Str("label", "PARTIAL PAYMENT"))},
	}
	for _, p := range order.Tendered {
		lines = append(lines, Line{Kind: LineText, Text: g.pair(p.Method, amount(p.Amount))})
	}
	return append(lines, Line{
		Kind: LineText,
		Text: g.pair("Due", amount(order.Due)),
		Bold: true,
	})
}

func renderFooter(b templatefmt.Block, g grid) []Line {
	return []Line{
		{Kind: LineDivider},
		{Kind: LineText, Text: g.center(b.Config.Str("message", ""))},
	}
}

func renderText(b templatefmt.Block, g grid) []Line {
	content := b.Config.Str("content", "")
	if content == "" {
		// No default content is assumed for free-text blocks.
		return []Line{{Kind: LineText, Text: g.center("[ tap to set text ]")}}
	}
	return []Line{{Kind: LineText, Text: g.line(content)}}
}

// renderQR draws a bordered square placeholder standing in for the printed
// QR payload.
func renderQR(b templatefmt.Block, g grid) []Line {
	const boxWidth = 12
	top := "+" + strings.Repeat("-", boxWidth-2) + "+"
	empty := "|" + strings.Repeat(" ", boxWidth-2) + "|"
	label := "|" + padLeftTo("QR", (boxWidth-2)/2+1) + strings.Repeat(" ", boxWidth-2-(boxWidth-2)/2-1) + "|"

	return []Line{
		{Kind: LineQR, Text: g.center(top)},
		{Kind: LineQR, Text: g.center(empty)},
		{Kind: LineQR, Text: g.center(label)},
		{Kind: LineQR, Text: g.center(empty)},
		{Kind: LineQR, Text: g.center(top)},
	}
}
