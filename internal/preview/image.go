package preview

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/tablewise/printstudio/pkg/templatefmt"
)

// Pixel widths of the simulated paper, matching common 203dpi thermal
// printers.
func paperPixels(w templatefmt.PaperWidth) int {
	if w == templatefmt.Paper58 {
		return 384
	}
	return 576
}

var monospaceFonts = []string{
	"/usr/share/fonts/truetype/dejavu/DejaVuSansMono.ttf",
	"/usr/share/fonts/truetype/liberation/LiberationMono-Regular.ttf",
	"/System/Library/Fonts/Menlo.ttc",
	"C:\\Windows\\Fonts\\consola.ttf",
}

// ImageRenderer rasterizes a rendered document to a PNG the way the paper
// would look. Text is drawn on a monospace face; font-B compression is
// applied as a horizontal scale around each line's anchor.
type ImageRenderer struct {
	width  int
	height int
	ctx    *gg.Context
	y      float64
}

// NewImageRenderer allocates a canvas for the given paper width. The canvas
// grows as content is drawn.
func NewImageRenderer(paper templatefmt.PaperWidth) *ImageRenderer {
	width := paperPixels(paper)
	initialHeight := 1000

	ctx := gg.NewContext(width, initialHeight)
	ctx.SetColor(color.White)
	ctx.Clear()
	ctx.SetColor(color.Black)

	return &ImageRenderer{
		width:  width,
		height: initialHeight,
		ctx:    ctx,
	}
}

// RenderPNG rasterizes the document and returns encoded PNG bytes.
func RenderPNG(d Document) ([]byte, error) {
	r := NewImageRenderer(d.PaperWidth)

	for _, b := range d.Blocks {
		if err := r.drawBlock(d, b); err != nil {
			return nil, err
		}
	}

	img := r.cropToContent()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (r *ImageRenderer) drawBlock(d Document, b BlockView) error {
	st := b.Style
	lineHeight := float64(st.FontSize) * 2 * d.LineSpacing * float64(st.HeightMult)
	if lineHeight < 14 {
		lineHeight = 14
	}

	r.loadFace(float64(st.FontSize) * 2)

	qrDrawn := false
	for _, ln := range b.Lines {
		switch ln.Kind {
		case LineDivider:
			r.drawRule(false)
		case LineDoubleRule:
			r.drawRule(true)
		case LineBlank:
			r.y += lineHeight / 2
		case LineQR:
			// The placeholder rows collapse into one drawn code.
			if !qrDrawn {
				qrDrawn = true
				if err := r.drawQR(); err != nil {
					return err
				}
			}
		default:
			r.drawTextLine(ln.Text, st, lineHeight)
		}
	}

	return nil
}

func (r *ImageRenderer) drawTextLine(text string, st templatefmt.Style, lineHeight float64) {
	r.ensureHeight(int(lineHeight) + 10)

	// Horizontal compression for font B, expansion for width multipliers.
	scale := st.HScale
	if scale <= 0 {
		scale = 1
	}

	x := 4.0
	y := r.y + lineHeight*0.75

	r.ctx.Push()
	r.ctx.ScaleAbout(scale, float64(st.HeightMult), x, y)
	r.ctx.DrawString(text, x, y)
	if st.Bold {
		// Cheap faux-bold: overstrike one pixel to the right.
		r.ctx.DrawString(text, x+1, y)
	}
	r.ctx.Pop()

	r.y += lineHeight
}

func (r *ImageRenderer) drawRule(double bool) {
	r.ensureHeight(16)
	y := r.y + 7
	margin := 8.0

	r.ctx.SetLineWidth(2)
	if double {
		r.ctx.DrawLine(margin, y-2, float64(r.width)-margin, y-2)
		r.ctx.Stroke()
		r.ctx.DrawLine(margin, y+2, float64(r.width)-margin, y+2)
		r.ctx.Stroke()
	} else {
		dash := 8.0
		gap := 5.0
		for x := margin; x < float64(r.width)-margin; x += dash + gap {
			end := x + dash
			if end > float64(r.width)-margin {
				end = float64(r.width) - margin
			}
			r.ctx.DrawLine(x, y, end, y)
			r.ctx.Stroke()
		}
	}

	r.y += 16
}

func (r *ImageRenderer) drawQR() error {
	qr, err := qrcode.New("printstudio-preview", qrcode.Medium)
	if err != nil {
		return err
	}

	size := r.width - 160
	if size > 320 {
		size = 320
	}
	if size < 96 {
		size = 96
	}

	img := qr.Image(256)
	scaled := imaging.Resize(img, size, size, imaging.NearestNeighbor)

	r.ensureHeight(size + 20)
	x := (r.width - size) / 2
	r.ctx.DrawImage(scaled, x, int(r.y))
	r.y += float64(size) + 10

	return nil
}

func (r *ImageRenderer) loadFace(points float64) {
	for _, path := range monospaceFonts {
		if _, err := os.Stat(path); err == nil {
			if err := r.ctx.LoadFontFace(path, points); err == nil {
				return
			}
		}
	}
	// Fall through to gg's built-in face.
}

func (r *ImageRenderer) ensureHeight(needed int) {
	if int(r.y)+needed <= r.height {
		return
	}

	newHeight := r.height * 2
	if newHeight < int(r.y)+needed {
		newHeight = int(r.y) + needed + 1000
	}

	newCtx := gg.NewContext(r.width, newHeight)
	newCtx.SetColor(color.White)
	newCtx.Clear()
	newCtx.DrawImage(r.ctx.Image(), 0, 0)
	newCtx.SetColor(color.Black)

	r.ctx = newCtx
	r.height = newHeight
}

func (r *ImageRenderer) cropToContent() image.Image {
	finalHeight := int(r.y) + 30
	if finalHeight > r.height {
		finalHeight = r.height
	}

	img := r.ctx.Image()
	return img.(interface {
		SubImage(r image.Rectangle) image.Image
	}).SubImage(image.Rect(0, 0, r.width, finalHeight))
}
