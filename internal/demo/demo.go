// Package demo holds the animated scenes shown by the hub75 command.
package demo

import (
	"context"
	"image/draw"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// ErrUnknownScene is returned by ByName.
var ErrUnknownScene = errors.New("demo: unknown scene")

// Canvas is a double-buffered drawing surface such as *rgbmatrix.Canvas.
type Canvas interface {
	draw.Image
	Swap(waitVSync bool) error
}

// Scene draws one frame of an animation. The destination starts out black.
type Scene interface {
	Draw(dst draw.Image, frame int)
}

// Options configure the scenes returned by ByName.
type Options struct {
	Width, Height int
	Text          string
	// SVG is the path of the image shown by the svg scene.
	SVG string
}

// ByName returns the scene called name: patterns, square, text or svg.
func ByName(name string, o Options) (Scene, error) {
	switch name {
	case "patterns":
		return Patterns{Hold: 30}, nil
	case "square":
		return Square{}, nil
	case "text":
		return NewText(o.Text, nil), nil
	case "svg":
		f, err := os.Open(o.SVG)
		if err != nil {
			return nil, errors.Wrap(err, "failed to open svg")
		}
		defer f.Close()
		return NewSVG(f, o.Width, o.Height)
	}
	return nil, errors.Wrapf(ErrUnknownScene, "%q", name)
}

// Run draws s into c and swaps on vsync, at most fps times per second, until
// ctx is done. A non-positive fps runs at the panel refresh rate.
func Run(ctx context.Context, c Canvas, s Scene, fps int) error {
	var tick <-chan time.Time
	if fps > 0 {
		ticker := time.NewTicker(time.Second / time.Duration(fps))
		defer ticker.Stop()
		tick = ticker.C
	}
	log.Debug().Int("fps", fps).Msgf("running %T", s)

	for frame := 0; ctx.Err() == nil; frame++ {
		s.Draw(c, frame)
		if err := c.Swap(true); err != nil {
			return errors.Wrap(err, "failed to swap")
		}
		if tick != nil {
			select {
			case <-ctx.Done():
			case <-tick:
			}
		}
	}
	return ctx.Err()
}
