package preview

import (
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/tiff"
)

// Sampler is a continuous density field; ok is false where nothing is loaded.
type Sampler interface {
	DensityAt(p mgl32.Vec3) (float32, bool)
}

// Axis is the normal of the slice plane.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	return [...]string{"x", "y", "z"}[a]
}

// ParseAxis accepts "x", "y" or "z".
func ParseAxis(s string) (Axis, error) {
	switch s {
	case "x":
		return AxisX, nil
	case "y":
		return AxisY, nil
	case "z":
		return AxisZ, nil
	}
	return 0, fmt.Errorf("preview: unknown axis %q", s)
}

// SliceOptions describes an axis-aligned cross-section.
type SliceOptions struct {
	Axis   Axis
	Center mgl32.Vec3 // centre of the image; Center[Axis] is the slice level
	Extent float32    // world units covered by the image edge
	Pixels int        // samples per image edge
	Scale  int        // nearest-neighbour upscale factor, 1 for none
	Iso    float32
	Label  bool
}

var (
	colUnloaded = color.RGBA{40, 40, 40, 255}
	colSurface  = color.RGBA{255, 255, 255, 255}
)

// planeAxes returns the two world axes spanning the image for a slice normal.
// The image v axis grows downward, so for vertical slices it maps to -Y.
func planeAxes(a Axis) (u, v int) {
	switch a {
	case AxisX:
		return 2, 1
	case AxisY:
		return 0, 2
	}
	return 0, 1
}

// RenderSlice samples the density field on a grid and colours it: solid in
// earth tones, empty space in blue, the iso band in white.
func RenderSlice(s Sampler, o SliceOptions) *image.RGBA {
	if o.Pixels <= 0 {
		o.Pixels = 128
	}
	if o.Scale <= 0 {
		o.Scale = 1
	}
	img := image.NewRGBA(image.Rect(0, 0, o.Pixels, o.Pixels))
	ua, va := planeAxes(o.Axis)
	step := o.Extent / float32(o.Pixels)
	band := step / 2

	for py := range o.Pixels {
		for px := range o.Pixels {
			p := o.Center
			p[ua] += (float32(px) - float32(o.Pixels)/2 + 0.5) * step
			off := (float32(py) - float32(o.Pixels)/2 + 0.5) * step
			if va == 1 {
				p[va] -= off
			} else {
				p[va] += off
			}
			img.SetRGBA(px, py, shade(s, p, o.Iso, band))
		}
	}

	out := img
	if o.Scale > 1 {
		out = image.NewRGBA(image.Rect(0, 0, o.Pixels*o.Scale, o.Pixels*o.Scale))
		draw.NearestNeighbor.Scale(out, out.Bounds(), img, img.Bounds(), draw.Src, nil)
	}
	if o.Label {
		label(out, fmt.Sprintf("%s=%.1f", o.Axis, o.Center[o.Axis]))
	}
	return out
}

func shade(s Sampler, p mgl32.Vec3, iso, band float32) color.RGBA {
	d, ok := s.DensityAt(p)
	if !ok {
		return colUnloaded
	}
	rel := d - iso
	switch {
	case rel > -band && rel < band:
		return colSurface
	case rel <= 0:
		// deeper solid is darker
		k := uint8(mgl32.Clamp(-rel, 0, 1) * 100)
		return color.RGBA{160 - k, 110 - k/2, 60 - k/3, 255}
	default:
		k := uint8(mgl32.Clamp(rel, 0, 1) * 120)
		return color.RGBA{90, 150 - k/2, 230 - k/2, 255}
	}
}

func label(img draw.Image, text string) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(colSurface),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(4, 13),
	}
	d.DrawString(text)
}

// WriteTIFF encodes img as a deflate-compressed TIFF.
func WriteTIFF(w io.Writer, img image.Image) error {
	return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
}
