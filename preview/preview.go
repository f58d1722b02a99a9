// Package preview renders a selected image as a small terminal thumbnail.
// Each character cell shows two vertically stacked pixels using an upper
// half block with separate foreground and background colours.
package preview

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	DefaultWidth  = 32
	DefaultHeight = 16

	// DefaultMaxPixels caps the decoded bitmap, about 160MB of RGBA
	DefaultMaxPixels = 40_000_000

	halfBlock = "▀"
)

// Options bound the thumbnail size in terminal cells
type Options struct {
	Width  int
	Height int

	// MaxPixels rejects larger images before decoding; DefaultMaxPixels when zero
	MaxPixels int
}

// Thumbnail is a rendered preview plus the source image dimensions
type Thumbnail struct {
	Text   string
	Width  int
	Height int
	Format string
}

// Render decodes the image at path and renders it within opts
func Render(path string, opts Options) (*Thumbnail, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	limit := opts.MaxPixels
	if limit <= 0 {
		limit = DefaultMaxPixels
	}
	if int64(cfg.Width)*int64(cfg.Height) > int64(limit) {
		return nil, fmt.Errorf("image is too large to preview (%dx%d)", cfg.Width, cfg.Height)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind image: %w", err)
	}

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	b := img.Bounds()
	return &Thumbnail{
		Text:   RenderImage(img, opts),
		Width:  b.Dx(),
		Height: b.Dy(),
		Format: format,
	}, nil
}

// RenderImage scales img to fit opts, keeping its aspect ratio, and renders it
func RenderImage(img image.Image, opts Options) string {
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}

	src := img.Bounds()
	if src.Dx() == 0 || src.Dy() == 0 {
		return ""
	}
	w, h := fit(src.Dx(), src.Dy(), opts.Width, opts.Height*2)

	// flatten transparency onto white the way a browser preview would show it
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, src, draw.Over, nil)

	var sb strings.Builder
	for y := 0; y < h; y += 2 {
		for x := 0; x < w; x++ {
			style := lipgloss.NewStyle().Foreground(hex(dst.RGBAAt(x, y)))
			if y+1 < h {
				style = style.Background(hex(dst.RGBAAt(x, y+1)))
			}
			sb.WriteString(style.Render(halfBlock))
		}
		if y+2 < h {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// fit scales (w, h) down into (maxW, maxH) preserving the ratio
func fit(w, h, maxW, maxH int) (int, int) {
	if w <= maxW && h <= maxH {
		return w, h
	}
	scale := min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	fw := max(1, int(float64(w)*scale))
	fh := max(1, int(float64(h)*scale))
	return fw, fh
}

func hex(c color.RGBA) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
}
