package cp437atlas

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log"
	"os"
)

// GridSize is the atlas layout: 16 columns by 16 rows, one cell per
// code-page byte value, cell i at column i%16, row i/16.
const GridSize = 16

// VerticalPlacement decides where a glyph raster sits vertically inside its
// cell. The horizontal rule (centering) is universal; the vertical rule is
// a per-font-convention heuristic, so it is pluggable.
type VerticalPlacement interface {
	OffsetY(m Metrics, glyphHeight, cellHeight, descent int) int
}

// TopPlacement pins every glyph to the top of its cell.
type TopPlacement struct{}

func (TopPlacement) OffsetY(_ Metrics, _, _, _ int) int { return 0 }

// CenterPlacement centers the glyph vertically in the cell.
type CenterPlacement struct{}

func (CenterPlacement) OffsetY(_ Metrics, glyphHeight, cellHeight, _ int) int {
	off := (cellHeight - glyphHeight) / 2
	if off < 0 {
		off = 0
	}
	return off
}

// BaselinePlacement reproduces the shaded-render convention: a raster that
// already spans the full cell height needs no offset, a glyph with no
// descender contribution (its bottom within one pixel of the baseline,
// MinY >= -1) is pushed down to sit on the baseline, and everything else
// stays at the top.
type BaselinePlacement struct{}

func (BaselinePlacement) OffsetY(m Metrics, glyphHeight, cellHeight, _ int) int {
	switch {
	case glyphHeight == cellHeight:
		return 0
	case m.MinY >= -1:
		off := cellHeight - glyphHeight
		if off < 0 {
			off = 0
		}
		return off
	default:
		return 0
	}
}

// Atlas composes the 256 code-page glyphs into a 16x16 grid raster. It
// exclusively owns the buffer during Compose and hands it off whole.
type Atlas struct {
	font     *Font
	resolved ResolvedFont
	cell     CellGeometry

	placement  VerticalPlacement
	style      RenderStyle
	ink        color.Color
	background color.Color

	warn  *log.Logger
	debug *log.Logger
}

// AtlasOption is a functional option for configuring an Atlas.
type AtlasOption func(*Atlas)

// NewAtlas creates an Atlas for a resolved font and cell geometry.
// Defaults: shaded rendering, baseline placement, black ink on a white
// background, warnings to stderr, per-glyph diagnostics off.
func NewAtlas(f *Font, resolved ResolvedFont, cell CellGeometry, opts ...AtlasOption) *Atlas {
	a := &Atlas{
		font:       f,
		resolved:   resolved,
		cell:       cell,
		placement:  BaselinePlacement{},
		style:      StyleShaded,
		ink:        color.Black,
		background: color.White,
		warn:       log.New(os.Stderr, "", 0),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// WithPlacement sets the vertical placement policy.
func WithPlacement(p VerticalPlacement) AtlasOption {
	return func(a *Atlas) { a.placement = p }
}

// WithRenderStyle sets the glyph raster style.
func WithRenderStyle(s RenderStyle) AtlasOption {
	return func(a *Atlas) { a.style = s }
}

// WithBackground sets the cell fill color.
func WithBackground(c color.Color) AtlasOption {
	return func(a *Atlas) { a.background = c }
}

// WithInk sets the glyph foreground color.
func WithInk(c color.Color) AtlasOption {
	return func(a *Atlas) { a.ink = c }
}

// WithWarnLog redirects clip warnings (nil silences them).
func WithWarnLog(l *log.Logger) AtlasOption {
	return func(a *Atlas) { a.warn = l }
}

// WithDebugLog enables per-glyph skip diagnostics.
func WithDebugLog(l *log.Logger) AtlasOption {
	return func(a *Atlas) { a.debug = l }
}

// Bounds returns the pixel dimensions of the composed atlas.
func (a *Atlas) Bounds() (width, height int) {
	return a.cell.Width * GridSize, a.cell.Height * GridSize
}

// Compose renders all 256 glyphs into a fresh atlas buffer. A glyph that is
// absent, fails to render, or has a zero extent leaves its cell as
// background; a glyph larger than its cell is clipped with a warning.
func (a *Atlas) Compose() (*image.RGBA, error) {
	width, height := a.Bounds()
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("degenerate atlas geometry %dx%d (cell %dx%d)",
			width, height, a.cell.Width, a.cell.Height)
	}

	atlas := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(atlas, atlas.Bounds(), image.NewUniform(a.background), image.Point{}, draw.Src)

	t := a.font.Trial(a.resolved.Size)
	defer t.Close()

	for i := 0; i < 256; i++ {
		ch := Char(byte(i))

		m, ok := t.GlyphMetrics(ch)
		if !ok {
			logf(a.debug, "Skipping '%c' (index %d) — not in font", ch, i)
			continue
		}
		if m.MinX == m.MaxX || m.MinY == m.MaxY {
			logf(a.debug, "Skipping '%c' (index %d) — zero extent (minx=%d maxx=%d miny=%d maxy=%d)",
				ch, i, m.MinX, m.MaxX, m.MinY, m.MaxY)
			continue
		}

		glyph, err := t.RenderGlyph(ch, a.style, a.ink, a.background)
		if err != nil {
			logf(a.debug, "Skipping '%c' (index %d) — render failed: %v", ch, i, err)
			continue
		}
		gw := glyph.Bounds().Dx()
		gh := glyph.Bounds().Dy()
		if gw == 0 || gh == 0 {
			logf(a.debug, "Skipping '%c' (index %d) — empty raster", ch, i)
			continue
		}

		cellX := (i % GridSize) * a.cell.Width
		cellY := (i / GridSize) * a.cell.Height

		offX := (a.cell.Width - gw) / 2
		if offX < 0 {
			offX = 0
		}
		offY := a.placement.OffsetY(m, gh, a.cell.Height, a.resolved.Descent)
		if offY < 0 {
			offY = 0
		}

		// Clip to the cell so an oversized glyph never bleeds into its
		// neighbors.
		clipW := gw
		if clipW > a.cell.Width-offX {
			clipW = a.cell.Width - offX
		}
		clipH := gh
		if clipH > a.cell.Height-offY {
			clipH = a.cell.Height - offY
		}
		if clipW < gw || clipH < gh {
			logf(a.warn, "Warning: char '%c' (index %d) exceeds its cell: glyph %dx%d at offset (%d,%d) clipped to %dx%d",
				ch, i, gw, gh, offX, offY, clipW, clipH)
		}
		if clipW <= 0 || clipH <= 0 {
			continue
		}

		if a.debug != nil {
			logf(a.debug, "%c  miny=%d, maxy=%d, asc=%d, dsc=%d, glyph=%dx%d, cell=%dx%d, y_offset=%d",
				ch, m.MinY, m.MaxY, a.resolved.Ascent, a.resolved.Descent,
				gw, gh, a.cell.Width, a.cell.Height, offY)
		}

		dst := image.Rect(cellX+offX, cellY+offY, cellX+offX+clipW, cellY+offY+clipH)
		draw.Draw(atlas, dst, glyph, image.Point{}, draw.Src)
	}

	return atlas, nil
}
