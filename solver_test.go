package cp437atlas

import (
	"testing"

	"golang.org/x/image/font/gofont/gomono"
)

func testMonoFont(t *testing.T) *Font {
	t.Helper()
	f, err := ParseFont(gomono.TTF)
	if err != nil {
		t.Fatalf("Failed to parse embedded mono test font: %v", err)
	}
	return f
}

func TestWidthMatchSolve(t *testing.T) {
	f := testMonoFont(t)
	const targetWidth = 10

	resolved, err := WidthMatchPolicy{}.Solve(f, CellGeometry{Width: targetWidth})
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}

	if resolved.MaxWidth < targetWidth {
		t.Errorf("MaxWidth = %d, want >= %d", resolved.MaxWidth, targetWidth)
	}
	if resolved.Size != float64(int(resolved.Size)) {
		t.Errorf("Size = %v, want an integer point size", resolved.Size)
	}
	if resolved.LineHeight != resolved.Ascent+resolved.Descent {
		t.Errorf("LineHeight = %d, want ascent+descent = %d",
			resolved.LineHeight, resolved.Ascent+resolved.Descent)
	}

	// The accepted size is the first trial that reached the target, and
	// max widths are monotonically non-decreasing along the trace.
	prev := 0
	for size := 1; size < int(resolved.Size); size++ {
		trial := f.Trial(float64(size))
		w := maxGlyphWidth(trial)
		trial.Close()
		if w >= targetWidth {
			t.Errorf("size %d already reached target width (%d >= %d), but solver accepted %v",
				size, w, targetWidth, resolved.Size)
		}
		if w < prev {
			t.Errorf("max width regressed from %d to %d at size %d", prev, w, size)
		}
		prev = w
	}
}

func TestWidthMatchInvalidTarget(t *testing.T) {
	f := testMonoFont(t)
	if _, err := (WidthMatchPolicy{}).Solve(f, CellGeometry{Width: 0}); err == nil {
		t.Error("expected error for non-positive target width")
	}
}

func TestHeightDescendStepBack(t *testing.T) {
	f := testMonoFont(t)
	const targetHeight = 16

	resolved, err := HeightDescendPolicy{}.Solve(f, CellGeometry{Width: 8, Height: targetHeight})
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}

	chosen := int(resolved.Size)
	if chosen < 1 || chosen > heightDescendStart {
		t.Fatalf("Size = %v, want within [1, %d]", resolved.Size, heightDescendStart)
	}

	sample := asciiPrintable()
	if chosen > 1 {
		// The size below the chosen one is the first that fit the target.
		trial := f.Trial(float64(chosen - 1))
		_, h := trial.TextExtent(sample)
		trial.Close()
		if h > targetHeight {
			t.Errorf("size %d has line height %d > target %d; step-back rule violated",
				chosen-1, h, targetHeight)
		}
	}
	if chosen < heightDescendStart {
		// The chosen size itself still exceeds the target: it is the
		// one-size margin above the first fit.
		trial := f.Trial(float64(chosen))
		_, h := trial.TextExtent(sample)
		trial.Close()
		if h <= targetHeight {
			t.Errorf("size %d fits the target (%d <= %d) but was chosen as the margin size",
				chosen, h, targetHeight)
		}
	}
}

func TestHeightDescendInvalidTarget(t *testing.T) {
	f := testMonoFont(t)
	if _, err := (HeightDescendPolicy{}).Solve(f, CellGeometry{Width: 8}); err == nil {
		t.Error("expected error for missing target height")
	}
}

func TestHeightProportionalSolve(t *testing.T) {
	f := testMonoFont(t)
	const targetHeight = 20

	resolved, err := HeightProportionalPolicy{}.Solve(f, CellGeometry{Width: 10, Height: targetHeight})
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	if resolved.Size <= 0 {
		t.Fatalf("Size = %v, want > 0", resolved.Size)
	}

	trial := f.Trial(resolved.Size)
	m, ok := trial.GlyphMetrics('M')
	trial.Close()
	if !ok {
		t.Fatal("reference glyph missing after solve")
	}
	got := m.MaxY - m.MinY
	if diff := got - targetHeight; diff < -1 || diff > 1 {
		t.Errorf("reference glyph height = %d, want %d +-1", got, targetHeight)
	}
}

func TestHeightProportionalMissingReference(t *testing.T) {
	f := testMonoFont(t)
	// Go Mono has no Thai coverage.
	_, err := HeightProportionalPolicy{Ref: 'ก'}.Solve(f, CellGeometry{Width: 10, Height: 16})
	if err == nil {
		t.Error("expected error for a reference glyph outside the font's coverage")
	}
}
