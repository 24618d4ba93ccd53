// Command cp437atlas generates a CP437 font atlas from a TTF file: a 16x16
// grid of fixed-size character cells, written either as a PNG image or as a
// 32-bit-aligned bitmask dump for inclusion in shader source.
package main

import (
	"flag"
	"fmt"
	"image/color"
	"image/png"
	"log"
	"os"

	"github.com/wbrown/cp437atlas"
)

func main() {
	fontPath := flag.String("font", "",
		"Path to the TTF font file (required)")
	cellWidth := flag.Int("width", 0,
		"Target character cell width in pixels (required)")
	cellHeight := flag.Int("height", 0,
		"Target character cell height in pixels (descend and proportional policies)")
	policy := flag.String("policy", "width",
		"Size policy: width (match widest glyph to -width, derive height), "+
			"descend (descend from 44pt until the line fits -height), or "+
			"proportional (rescale against a reference glyph until it matches -height)")
	output := flag.String("output", "",
		"Output PNG file path (ignored if -hexdump is provided)")
	hexDump := flag.String("hexdump", "",
		"Dump the hex bitmap to stdout under this array name instead of saving an image")
	debug := flag.Bool("debug", false,
		"Enable per-glyph debug output")
	flag.Parse()

	if *fontPath == "" || *cellWidth <= 0 {
		fmt.Println("Both -font and a positive -width are required")
		flag.PrintDefaults()
		os.Exit(1)
	}
	if *output == "" && *hexDump == "" {
		log.Fatal("Error: either -output or -hexdump must be provided")
	}

	trace := log.New(os.Stderr, "", 0)
	var debugLog *log.Logger
	if *debug {
		debugLog = trace
	}

	f, err := cp437atlas.LoadFont(*fontPath)
	if err != nil {
		log.Fatalf("Failed to load font: %v", err)
	}

	var (
		sizer      cp437atlas.SizePolicy
		target     cp437atlas.CellGeometry
		style      = cp437atlas.StyleShaded
		placement  cp437atlas.VerticalPlacement = cp437atlas.BaselinePlacement{}
		background color.Color                  = color.White
	)
	switch *policy {
	case "width":
		sizer = cp437atlas.WidthMatchPolicy{Log: trace}
		target = cp437atlas.CellGeometry{Width: *cellWidth}
	case "descend":
		if *cellHeight <= 0 {
			log.Fatal("Error: the descend policy requires a positive -height")
		}
		sizer = cp437atlas.HeightDescendPolicy{Log: trace}
		target = cp437atlas.CellGeometry{Width: *cellWidth, Height: *cellHeight}
		style = cp437atlas.StyleTight
	case "proportional":
		if *cellHeight <= 0 {
			log.Fatal("Error: the proportional policy requires a positive -height")
		}
		sizer = cp437atlas.HeightProportionalPolicy{Log: trace}
		target = cp437atlas.CellGeometry{Width: *cellWidth, Height: *cellHeight}
		style = cp437atlas.StyleTight
		placement = cp437atlas.CenterPlacement{}
		background = color.RGBA{R: 0xF0, G: 0xF0, B: 0xF0, A: 0xFF}
	default:
		log.Fatalf("Unknown policy %q (want width, descend, or proportional)", *policy)
	}

	resolved, err := sizer.Solve(f, target)
	if err != nil {
		log.Fatalf("Size search failed: %v", err)
	}

	cell := target
	if *policy == "width" {
		// Cell width is the solver's observed maximum, which can differ
		// from the requested width; cell height comes from a test render
		// of the full character set.
		t := f.Trial(resolved.Size)
		_, h := t.TextExtent(cp437atlas.AllChars())
		t.Close()
		if h == 0 {
			log.Fatal("Error: all rendered glyphs have zero height. " +
				"This likely means the font size is too small or the font file is invalid.")
		}
		cell = cp437atlas.CellGeometry{Width: resolved.MaxWidth, Height: h}
		trace.Printf("Cell: %dx%d (width specified, height derived)", cell.Width, cell.Height)
	} else {
		trace.Printf("Cell: %dx%d", cell.Width, cell.Height)
	}

	trace.Printf("Final: font_size=%.4fpt, ascent=%d, descent=%d, height=%d, max_width=%d",
		resolved.Size, resolved.Ascent, resolved.Descent, resolved.LineHeight, resolved.MaxWidth)

	atlas := cp437atlas.NewAtlas(f, resolved, cell,
		cp437atlas.WithRenderStyle(style),
		cp437atlas.WithPlacement(placement),
		cp437atlas.WithBackground(background),
		cp437atlas.WithWarnLog(trace),
		cp437atlas.WithDebugLog(debugLog),
	)
	img, err := atlas.Compose()
	if err != nil {
		log.Fatalf("Failed to compose atlas: %v", err)
	}
	atlasWidth, atlasHeight := atlas.Bounds()
	trace.Printf("Atlas: %dx%d", atlasWidth, atlasHeight)

	if *hexDump != "" {
		packed := cp437atlas.Pack(img, cell.Width, cell.Height)
		if err := packed.WriteHex(os.Stdout, *hexDump); err != nil {
			log.Fatalf("Failed to write hex dump: %v", err)
		}
		return
	}

	out, err := os.Create(*output)
	if err != nil {
		log.Fatalf("Failed to create output file: %v", err)
	}
	if err := png.Encode(out, img); err != nil {
		out.Close()
		log.Fatalf("Failed to save PNG: %v", err)
	}
	if err := out.Close(); err != nil {
		log.Fatalf("Failed to close output file: %v", err)
	}
	fmt.Printf("Font atlas saved to %s\n", *output)
}
