// Package orientation rotates decoded page images into display orientation.
//
// Rotation is expressed the way PDF viewers apply /Rotate: translate the
// source so the rotated bounding box lands at the origin, then rotate by a
// multiple of 90 degrees clockwise. For 90 and 270 degrees the destination
// swaps width and height.
package orientation

import (
	"fmt"
	"image"

	"golang.org/x/image/math/f64"
)

// Angle is a clockwise display rotation in degrees: 0, 90, 180 or 270.
type Angle int

const (
	Angle0   Angle = 0
	Angle90  Angle = 90
	Angle180 Angle = 180
	Angle270 Angle = 270
)

// Normalize reduces a raw /Rotate value to an Angle. Values are taken modulo
// 360 with negative values wrapping, and anything between quadrants is
// truncated to the quadrant below.
func Normalize(raw int) Angle {
	deg := raw % 360
	if deg < 0 {
		deg += 360
	}
	return Angle(deg / 90 * 90)
}

// Quadrant returns the number of clockwise quarter turns.
func (a Angle) Quadrant() int {
	return int(a) / 90
}

// Swaps reports whether rotating by a exchanges width and height.
func (a Angle) Swaps() bool {
	return a == Angle90 || a == Angle270
}

func (a Angle) String() string {
	return fmt.Sprintf("%d°", int(a))
}

// Size returns the destination size of a w×h image rotated by a.
func (a Angle) Size(w, h int) (int, int) {
	if a.Swaps() {
		return h, w
	}
	return w, h
}

// Transform returns the affine map from source to destination coordinates for
// an image of the given source bounds. The translation for each quadrant
// keeps the rotated image in the positive quadrant:
//
//	90:  translate (h, 0), rotate 90
//	180: translate (w, h), rotate 180
//	270: translate (0, w), rotate 270
//
// Coordinates follow image conventions (y grows downward), so a positive
// rotation turns clockwise on screen.
func (a Angle) Transform(w, h int) f64.Aff3 {
	fw, fh := float64(w), float64(h)

	// Each matrix is T·R with R the quadrant rotation [cos -sin; sin cos].
	switch a {
	case Angle90:
		return f64.Aff3{
			0, -1, fh,
			1, 0, 0,
		}
	case Angle180:
		return f64.Aff3{
			-1, 0, fw,
			0, -1, fh,
		}
	case Angle270:
		return f64.Aff3{
			0, 1, 0,
			-1, 0, fw,
		}
	default:
		return f64.Aff3{
			1, 0, 0,
			0, 1, 0,
		}
	}
}

// Correct rotates src by a into a new buffer. Angle0 returns src itself.
// Pixels are moved byte for byte, so repeated rotation is lossless.
func Correct(src *image.NRGBA, a Angle) *image.NRGBA {
	if a == Angle0 {
		return src
	}

	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dw, dh := a.Size(w, h)
	dst := image.NewNRGBA(image.Rect(0, 0, dw, dh))

	m := a.Transform(w, h)
	for y := 0; y < h; y++ {
		// Pixel centers map onto pixel centers, so flooring is exact.
		cy := float64(y) + 0.5
		srow := src.PixOffset(b.Min.X, b.Min.Y+y)
		for x := 0; x < w; x++ {
			cx := float64(x) + 0.5
			dx := int(m[0]*cx + m[1]*cy + m[2])
			dy := int(m[3]*cx + m[4]*cy + m[5])

			si := srow + 4*x
			di := dst.PixOffset(dx, dy)
			copy(dst.Pix[di:di+4:di+4], src.Pix[si:si+4:si+4])
		}
	}

	return dst
}
