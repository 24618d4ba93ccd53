package cp437atlas

import (
	"fmt"
	"log"
	"math"
)

// CellGeometry is the target character cell in pixels. Width is always set
// by the caller; Height is zero when it is derived from rendering instead.
type CellGeometry struct {
	Width  int
	Height int
}

// ResolvedFont is the outcome of a size search: the accepted point size and
// the scalar metrics observed at that size. It is only meaningful together
// with the Font it was solved against.
type ResolvedFont struct {
	Size       float64
	MaxWidth   int // widest MaxX over all mapped glyphs present in the font
	Ascent     int
	Descent    int
	LineHeight int
}

// SizePolicy finds a point size whose rendered glyphs satisfy a target cell
// constraint. Each iteration opens a fresh trial face so no hinting or
// metric state leaks between probes.
type SizePolicy interface {
	Solve(f *Font, target CellGeometry) (ResolvedFont, error)
}

const (
	widthMatchMaxIter   = 127
	heightDescendStart  = 44
	proportionalMaxIter = 15
	proportionalTol     = 0.5
)

// maxGlyphWidth measures the widest mapped glyph at the trial size. Glyphs
// absent from the font are skipped.
func maxGlyphWidth(t *TrialFont) int {
	maxWidth := 0
	for i := 0; i < 256; i++ {
		m, ok := t.GlyphMetrics(Char(byte(i)))
		if !ok {
			continue
		}
		if m.MaxX > maxWidth {
			maxWidth = m.MaxX
		}
	}
	return maxWidth
}

// resolveAt captures the scalar metrics of an accepted size.
func resolveAt(f *Font, size float64) ResolvedFont {
	t := f.Trial(size)
	defer t.Close()
	return ResolvedFont{
		Size:       size,
		MaxWidth:   maxGlyphWidth(t),
		Ascent:     t.Ascent(),
		Descent:    t.Descent(),
		LineHeight: t.LineHeight(),
	}
}

func logf(l *log.Logger, format string, args ...interface{}) {
	if l != nil {
		l.Printf(format, args...)
	}
}

// WidthMatchPolicy tries integer point sizes ascending from 1 and accepts
// the first size whose widest mapped glyph reaches the target cell width.
// If no size within the bound reaches it, the last observation is accepted
// and the result is simply narrower than requested.
type WidthMatchPolicy struct {
	Log *log.Logger
}

func (p WidthMatchPolicy) Solve(f *Font, target CellGeometry) (ResolvedFont, error) {
	if target.Width <= 0 {
		return ResolvedFont{}, fmt.Errorf("target cell width must be positive, got %d", target.Width)
	}

	size := 1.0
	maxWidth := 0
	for iter := 1; iter <= widthMatchMaxIter; iter++ {
		size = float64(iter)
		t := f.Trial(size)
		maxWidth = maxGlyphWidth(t)
		t.Close()

		if maxWidth >= target.Width {
			logf(p.Log, "Iteration %d: font_size=%.4fpt, max_width=%d >= font_width=%d — done",
				iter, size, maxWidth, target.Width)
			break
		}
		logf(p.Log, "Iteration %d: font_size=%.4fpt, max_width=%d < font_width=%d",
			iter, size, maxWidth, target.Width)
	}
	return resolveAt(f, size), nil
}

// HeightDescendPolicy tries integer point sizes descending from Start
// (default 44). It stops at the first size whose printable-ASCII line
// height fits the target, then steps back up one size to leave a one-size
// margin.
type HeightDescendPolicy struct {
	Start int
	Log   *log.Logger
}

// printable ASCII, rendered as one string to measure line height.
func asciiPrintable() string {
	b := make([]byte, 0, 95)
	for c := byte(32); c <= 126; c++ {
		b = append(b, c)
	}
	return string(b)
}

func (p HeightDescendPolicy) Solve(f *Font, target CellGeometry) (ResolvedFont, error) {
	if target.Height <= 0 {
		return ResolvedFont{}, fmt.Errorf("target cell height must be positive, got %d", target.Height)
	}
	start := p.Start
	if start <= 0 {
		start = heightDescendStart
	}

	sample := asciiPrintable()
	chosen := 1
	for size := start; size >= 1; size-- {
		t := f.Trial(float64(size))
		_, h := t.TextExtent(sample)
		t.Close()

		if h <= target.Height {
			logf(p.Log, "Size %dpt: line height %d <= target %d — stepping back up", size, h, target.Height)
			chosen = size + 1
			if chosen > start {
				chosen = start
			}
			return resolveAt(f, float64(chosen)), nil
		}
		logf(p.Log, "Size %dpt: line height %d > target %d", size, h, target.Height)
		chosen = size
	}
	// Even 1pt was too tall; accept the last size tried.
	return resolveAt(f, float64(chosen)), nil
}

// HeightProportionalPolicy starts from 0.75 of the target height (nominal
// point size roughly matches body height at that ratio) and rescales the
// size proportionally against the rendered height of a reference glyph
// until the error drops under half a pixel. After the iteration bound the
// last size is accepted; a residual above the tolerance is only a warning.
type HeightProportionalPolicy struct {
	Ref rune // reference glyph, 'M' when zero
	Log *log.Logger
}

func (p HeightProportionalPolicy) Solve(f *Font, target CellGeometry) (ResolvedFont, error) {
	if target.Height <= 0 {
		return ResolvedFont{}, fmt.Errorf("target cell height must be positive, got %d", target.Height)
	}
	ref := p.Ref
	if ref == 0 {
		ref = 'M'
	}

	size := float64(target.Height) * 0.75
	residual := math.Inf(1)
	for iter := 1; iter <= proportionalMaxIter; iter++ {
		t := f.Trial(size)
		m, ok := t.GlyphMetrics(ref)
		t.Close()
		if !ok {
			return ResolvedFont{}, fmt.Errorf("reference glyph %q not present in font", ref)
		}

		actual := m.MaxY - m.MinY
		if actual <= 0 {
			return ResolvedFont{}, fmt.Errorf("reference glyph %q rendered with zero height at %.4fpt", ref, size)
		}
		residual = math.Abs(float64(actual) - float64(target.Height))
		logf(p.Log, "Iteration %d: font_size=%.4fpt, ref_height=%d, target=%d, error=%.2f",
			iter, size, actual, target.Height, residual)
		if residual < proportionalTol {
			break
		}
		size *= float64(target.Height) / float64(actual)
	}
	if residual >= proportionalTol {
		logf(p.Log, "Warning: size search did not converge, accepting %.4fpt with %.2fpx residual error",
			size, residual)
	}
	return resolveAt(f, size), nil
}
