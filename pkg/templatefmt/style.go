package templatefmt

// Align is the horizontal alignment of a block's text on the paper.
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// Style is the effective rendering style of one block after layering its
// config overrides on top of the document defaults.
type Style struct {
	FontFamily FontFamily
	FontSize   int
	Bold       bool
	WidthMult  int
	HeightMult int
	Align      Align

	PaddingTop    int
	PaddingBottom int

	// Font-B preview simulation. Font B is a condensed bitmap font, so the
	// on-screen preview compresses characters horizontally (HScale) and
	// widens the layout container with a compensating negative margin so
	// condensed text keeps its column span without shifting out of the
	// printable area. Purely cosmetic; not a hardware instruction.
	HScale         float64
	LayoutWidthPct float64
	MarginLeftPct  float64
}

// Resolve computes the effective style for a block. font_type and font_size
// override the document defaults when present; bold, width_mult and
// height_mult have no document-level default and fall back to false/1/1;
// align defaults to center.
func Resolve(b Block, g GlobalConfig) Style {
	s := Style{
		FontFamily:     g.FontFamily,
		FontSize:       g.FontSize,
		WidthMult:      1,
		HeightMult:     1,
		Align:          AlignCenter,
		LayoutWidthPct: 100,
	}

	if ft := FontFamily(b.Config.Str("font_type", "")); ft == FontA || ft == FontB {
		s.FontFamily = ft
	}
	if fs := b.Config.Int("font_size", 0); fs > 0 {
		s.FontSize = fs
	}
	s.Bold = b.Config.Bool("bold")
	s.WidthMult = clampMult(b.Config.Int("width_mult", 1))
	s.HeightMult = clampMult(b.Config.Int("height_mult", 1))

	switch Align(b.Config.Str("align", "")) {
	case AlignLeft:
		s.Align = AlignLeft
	case AlignRight:
		s.Align = AlignRight
	case AlignCenter:
		s.Align = AlignCenter
	}

	if p := b.Config.Int("padding_top", 0); p > 0 {
		s.PaddingTop = p
	}
	if p := b.Config.Int("padding_bottom", 0); p > 0 {
		s.PaddingBottom = p
	}

	s.HScale = float64(s.WidthMult)
	if s.FontFamily == FontB {
		s.HScale = 0.8 * float64(s.WidthMult)
		s.LayoutWidthPct = 125
		switch s.Align {
		case AlignCenter:
			s.MarginLeftPct = -12.5
		case AlignRight:
			s.MarginLeftPct = -25
		default:
			s.MarginLeftPct = 0
		}
	}

	return s
}

func clampMult(n int) int {
	if n < 1 {
		return 1
	}
	if n > 8 {
		return 8
	}
	return n
}
