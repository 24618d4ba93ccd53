package cp437atlas

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
)

// Metrics holds the extents of one glyph relative to its pen origin, in
// pixels at the trial's point size. The Y axis points up from the baseline:
// MaxY is the top of the glyph, MinY the bottom (negative for descenders).
type Metrics struct {
	MinX, MaxX int
	MinY, MaxY int
}

// RenderStyle selects how much surrounding space a glyph raster carries.
type RenderStyle int

const (
	// StyleShaded renders into a raster spanning the full line height with
	// the baseline at Ascent from the top, so rasters blitted at the same Y
	// stay baseline-aligned without any per-glyph offset.
	StyleShaded RenderStyle = iota
	// StyleTight renders into a raster cropped to the glyph bounding box.
	StyleTight
)

// Font is a parsed TrueType font. It carries no size or hinting state;
// size-specific views are created with Trial so that no metric caches
// survive from one size probe to the next.
type Font struct {
	ttf  *truetype.Font
	path string
}

// LoadFont reads and parses a TrueType font file.
func LoadFont(path string) (*Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read font %s: %w", path, err)
	}
	f, err := ParseFont(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font %s: %w", path, err)
	}
	f.path = path
	return f, nil
}

// ParseFont parses TrueType font data already in memory.
func ParseFont(data []byte) (*Font, error) {
	ttf, err := freetype.ParseFont(data)
	if err != nil {
		return nil, err
	}
	return &Font{ttf: ttf}, nil
}

// TrialFont is a single-point-size view of a Font with hinting disabled.
// Hinting must stay off while measuring: hinted metrics shift per size and
// break the monotonic convergence the size policies rely on.
type TrialFont struct {
	font *Font
	face font.Face
	size float64
}

// Trial opens a fresh face at the given point size. Callers own the trial
// and must Close it; trials are never reused across solver iterations.
func (f *Font) Trial(size float64) *TrialFont {
	face := truetype.NewFace(f.ttf, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	return &TrialFont{font: f, face: face, size: size}
}

// Close releases the trial's face.
func (t *TrialFont) Close() error {
	return t.face.Close()
}

// Size returns the trial's point size.
func (t *TrialFont) Size() float64 {
	return t.size
}

// Ascent returns the pixels the font extends above the baseline.
func (t *TrialFont) Ascent() int {
	return t.face.Metrics().Ascent.Ceil()
}

// Descent returns the pixels the font extends below the baseline.
func (t *TrialFont) Descent() int {
	return t.face.Metrics().Descent.Ceil()
}

// LineHeight returns the height of a shaded single-line raster.
func (t *TrialFont) LineHeight() int {
	return t.Ascent() + t.Descent()
}

// GlyphMetrics returns the pixel extents of r at the trial size. The second
// return is false when the font has no glyph for r.
func (t *TrialFont) GlyphMetrics(r rune) (Metrics, bool) {
	if t.font.ttf.Index(r) == 0 {
		return Metrics{}, false
	}
	bounds, _, ok := t.face.GlyphBounds(r)
	if !ok {
		return Metrics{}, false
	}
	// GlyphBounds uses Y-down coordinates; flip to Y-up from the baseline.
	return Metrics{
		MinX: bounds.Min.X.Floor(),
		MaxX: bounds.Max.X.Ceil(),
		MinY: (-bounds.Max.Y).Floor(),
		MaxY: (-bounds.Min.Y).Ceil(),
	}, true
}

// TextExtent measures a single-line string, returning its advance width and
// the shaded line height. A zero height indicates a degenerate size.
func (t *TrialFont) TextExtent(s string) (width, height int) {
	return font.MeasureString(t.face, s).Ceil(), t.LineHeight()
}

// RenderGlyph rasterizes r with opaque ink on an opaque background. The
// raster shape follows the style: shaded rasters are MaxX wide and
// LineHeight tall, tight rasters cover exactly the glyph bounding box.
func (t *TrialFont) RenderGlyph(r rune, style RenderStyle, ink, bg color.Color) (*image.RGBA, error) {
	m, ok := t.GlyphMetrics(r)
	if !ok {
		return nil, fmt.Errorf("no glyph for %q", r)
	}

	var w, h, penX, baseline int
	switch style {
	case StyleTight:
		w = m.MaxX - m.MinX
		h = m.MaxY - m.MinY
		penX = -m.MinX
		baseline = m.MaxY
	default:
		w = m.MaxX
		h = t.LineHeight()
		penX = 0
		baseline = t.Ascent()
	}
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("glyph %q has zero extent (%dx%d)", r, w, h)
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	ctx := freetype.NewContext()
	ctx.SetDPI(72)
	ctx.SetFont(t.font.ttf)
	ctx.SetFontSize(t.size)
	ctx.SetClip(img.Bounds())
	ctx.SetDst(img)
	ctx.SetSrc(image.NewUniform(ink))
	ctx.SetHinting(font.HintingNone)

	if _, err := ctx.DrawString(string(r), freetype.Pt(penX, baseline)); err != nil {
		return nil, fmt.Errorf("failed to render %q: %w", r, err)
	}
	return img, nil
}
