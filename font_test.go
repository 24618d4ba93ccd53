package cp437atlas

import (
	"image"
	"image/color"
	"testing"

	"golang.org/x/image/font/gofont/goregular"
)

// hasInk reports whether any pixel of the raster classifies as ink under
// the packer's brightness rule.
func hasInk(img *image.RGBA) bool {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := img.RGBAAt(x, y)
			if (int(c.R)+int(c.G)+int(c.B))/3 < InkThreshold {
				return true
			}
		}
	}
	return false
}

// testFont parses the embedded Go Regular face so tests need no fixture
// files on disk.
func testFont(t *testing.T) *Font {
	t.Helper()
	f, err := ParseFont(goregular.TTF)
	if err != nil {
		t.Fatalf("Failed to parse embedded test font: %v", err)
	}
	return f
}

func TestLoadFontMissingFile(t *testing.T) {
	if _, err := LoadFont("testdata/no_such_font.ttf"); err == nil {
		t.Fatal("expected error loading a missing font file")
	}
}

func TestParseFontInvalidData(t *testing.T) {
	if _, err := ParseFont([]byte("this is not a truetype font")); err == nil {
		t.Fatal("expected error parsing invalid font data")
	}
}

func TestTrialMetrics(t *testing.T) {
	f := testFont(t)
	trial := f.Trial(24)
	defer trial.Close()

	if trial.Size() != 24 {
		t.Errorf("Size() = %v, want 24", trial.Size())
	}
	if trial.Ascent() <= 0 {
		t.Errorf("Ascent() = %d, want > 0", trial.Ascent())
	}
	if trial.Descent() < 0 {
		t.Errorf("Descent() = %d, want >= 0", trial.Descent())
	}
	if got := trial.LineHeight(); got != trial.Ascent()+trial.Descent() {
		t.Errorf("LineHeight() = %d, want ascent+descent = %d",
			got, trial.Ascent()+trial.Descent())
	}

	m, ok := trial.GlyphMetrics('M')
	if !ok {
		t.Fatal("GlyphMetrics('M') not found")
	}
	if m.MaxX <= m.MinX {
		t.Errorf("'M' has no horizontal extent: %+v", m)
	}
	if m.MaxY <= 0 {
		t.Errorf("'M' should rise above the baseline: %+v", m)
	}

	// 'g' descends below the baseline.
	g, ok := trial.GlyphMetrics('g')
	if !ok {
		t.Fatal("GlyphMetrics('g') not found")
	}
	if g.MinY >= 0 {
		t.Errorf("'g' should drop below the baseline, MinY = %d", g.MinY)
	}
}

func TestGlyphMetricsMissingRune(t *testing.T) {
	f := testFont(t)
	trial := f.Trial(16)
	defer trial.Close()

	// Go Regular has no Thai coverage.
	if _, ok := trial.GlyphMetrics('ก'); ok {
		t.Error("expected no metrics for a rune outside the font's coverage")
	}
}

func TestRenderGlyphShaded(t *testing.T) {
	f := testFont(t)
	trial := f.Trial(24)
	defer trial.Close()

	m, _ := trial.GlyphMetrics('M')
	img, err := trial.RenderGlyph('M', StyleShaded, color.Black, color.White)
	if err != nil {
		t.Fatalf("RenderGlyph failed: %v", err)
	}
	if got := img.Bounds().Dx(); got != m.MaxX {
		t.Errorf("shaded raster width = %d, want MaxX = %d", got, m.MaxX)
	}
	if got := img.Bounds().Dy(); got != trial.LineHeight() {
		t.Errorf("shaded raster height = %d, want line height = %d", got, trial.LineHeight())
	}
	if !hasInk(img) {
		t.Error("shaded 'M' raster contains no ink pixels")
	}
}

func TestRenderGlyphTight(t *testing.T) {
	f := testFont(t)
	trial := f.Trial(24)
	defer trial.Close()

	m, _ := trial.GlyphMetrics('M')
	img, err := trial.RenderGlyph('M', StyleTight, color.Black, color.White)
	if err != nil {
		t.Fatalf("RenderGlyph failed: %v", err)
	}
	if got, want := img.Bounds().Dx(), m.MaxX-m.MinX; got != want {
		t.Errorf("tight raster width = %d, want %d", got, want)
	}
	if got, want := img.Bounds().Dy(), m.MaxY-m.MinY; got != want {
		t.Errorf("tight raster height = %d, want %d", got, want)
	}
	if !hasInk(img) {
		t.Error("tight 'M' raster contains no ink pixels")
	}
}

func TestRenderGlyphMissingRune(t *testing.T) {
	f := testFont(t)
	trial := f.Trial(24)
	defer trial.Close()

	if _, err := trial.RenderGlyph('ก', StyleShaded, color.Black, color.White); err == nil {
		t.Error("expected error rendering a rune outside the font's coverage")
	}
}

func TestTextExtent(t *testing.T) {
	f := testFont(t)
	trial := f.Trial(24)
	defer trial.Close()

	w, h := trial.TextExtent("Hello")
	if w <= 0 {
		t.Errorf("text width = %d, want > 0", w)
	}
	if h != trial.LineHeight() {
		t.Errorf("text height = %d, want line height = %d", h, trial.LineHeight())
	}
}
