package cp437atlas

import (
	"fmt"
	"image"
	"io"
)

// InkThreshold is the average channel brightness below which a pixel counts
// as glyph ink when packing.
const InkThreshold = 128

// PackedBitmap is a bit-per-pixel mask of an atlas raster. Each scanline is
// padded to a multiple of 32 bits so a consumer can address any pixel as
// word (y*PaddedWidth+x)/32, bit x%32, without knowing row boundaries.
type PackedBitmap struct {
	Words       []uint32
	Width       int
	Height      int
	PaddedWidth int
	CellWidth   int
	CellHeight  int
}

// Pack converts an RGBA atlas raster into a packed bitmask. Sub-images are
// handled: packing starts at the raster's own origin, not the backing
// array's.
func Pack(img *image.RGBA, cellWidth, cellHeight int) *PackedBitmap {
	b := img.Bounds()
	pix := img.Pix[img.PixOffset(b.Min.X, b.Min.Y):]
	return PackRaw(pix, b.Dx(), b.Dy(), img.Stride, 4, cellWidth, cellHeight)
}

// PackRaw packs a raw byte-packed pixel buffer with the given pitch and
// bytes per pixel. Only the first three channels are read, so both RGB and
// RGBA layouts work. A pixel is ink when (r+g+b)/3 < InkThreshold.
func PackRaw(pix []byte, width, height, pitch, bpp, cellWidth, cellHeight int) *PackedBitmap {
	paddedWidth := (width + 31) / 32 * 32

	words := make([]uint32, 0, height*paddedWidth/32)
	for y := 0; y < height; y++ {
		var word uint32
		for x := 0; x < paddedWidth; x++ {
			if x < width {
				off := y*pitch + x*bpp
				if off+2 < len(pix) {
					brightness := (int(pix[off]) + int(pix[off+1]) + int(pix[off+2])) / 3
					if brightness < InkThreshold {
						word |= 1 << (x % 32)
					}
				}
			}
			if x%32 == 31 {
				words = append(words, word)
				word = 0
			}
		}
	}

	return &PackedBitmap{
		Words:       words,
		Width:       width,
		Height:      height,
		PaddedWidth: paddedWidth,
		CellWidth:   cellWidth,
		CellHeight:  cellHeight,
	}
}

// Bit reports whether the pixel at (x, y) was classified as ink. Padding
// bits and out-of-range coordinates are background.
func (p *PackedBitmap) Bit(x, y int) bool {
	if x < 0 || x >= p.PaddedWidth || y < 0 || y >= p.Height {
		return false
	}
	return p.Words[(y*p.PaddedWidth+x)/32]&(1<<(x%32)) != 0
}

// WriteHex writes the bitmask as a shader-includable text dump: layout
// header comments, a labeled array of 32-bit words eight per line, and the
// cell-size and lookup-helper macros.
func (p *PackedBitmap) WriteHex(w io.Writer, name string) error {
	ew := &errWriter{w: w}

	ew.printf("// Pixel dimensions: %d wide x %d tall\n", p.Width, p.Height)
	ew.printf("// Padded scanline width (map_w for shader): %d\n", p.PaddedWidth)
	ew.printf("// Character grid: %dx%d\n", GridSize, GridSize)
	ew.printf("// Character cell: %dx%d pixels\n", p.CellWidth, p.CellHeight)
	ew.printf("// Packing: per-row, 32-bit aligned\n\n")

	ew.printf("//!LONGVAR uint[] font_data_%s\n", name)
	for i, v := range p.Words {
		if i%8 == 0 {
			if i > 0 {
				ew.printf("\n")
			}
			ew.printf("//!  ")
		} else {
			ew.printf(" ")
		}
		ew.printf("0x%08X ", v)
	}
	ew.printf("\n//!ENDLONGVAR\n")

	ew.printf("#define font_%s_width (%d)\n", name, p.CellWidth)
	ew.printf("#define font_%s_height (%d)\n", name, p.CellHeight)
	ew.printf("#define font_%s(uv,pos,txt,start,len) (fontstr(uv,pos,txt,start,len,%d,%d,%d,%s))\n",
		name, p.CellWidth, p.CellHeight, p.PaddedWidth, name)
	ew.printf("#define multiline_%s(uv,pos,txt,starts,lens) multiline_font((uv), (pos), (txt), (starts), (lens), %d, %d, %d, %s)\n",
		name, p.CellWidth, p.CellHeight, p.PaddedWidth, name)

	return ew.err
}

// errWriter sticks on the first write error.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...interface{}) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
