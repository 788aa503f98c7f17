package demo

import (
	"image"
	"image/draw"
	"io"

	"github.com/pkg/errors"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// SVG shows a vector image rasterised once to the canvas size.
type SVG struct {
	img *image.RGBA
}

// NewSVG parses an SVG document and renders it at width x height.
func NewSVG(r io.Reader, width, height int) (*SVG, error) {
	icon, err := oksvg.ReadIconStream(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse svg")
	}
	icon.SetTarget(0, 0, float64(width), float64(height))

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	scanner := rasterx.NewScannerGV(width, height, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(width, height, scanner), 1)
	return &SVG{img: img}, nil
}

func (s *SVG) Draw(dst draw.Image, frame int) {
	draw.Draw(dst, dst.Bounds(), s.img, image.Point{}, draw.Src)
}
