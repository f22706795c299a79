package app

import (
	"fmt"
	"image"
	"image/color"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	dpi            = 96.0
	titleFontSize  = 13.0
	labelFontSize  = 9.0
	tickMarkLength = 5
)

type textAlign int

const (
	alignLeft textAlign = iota
	alignCenter
	alignRight
)

// annotator draws text onto the rendered figure.
type annotator struct {
	font *truetype.Font

	title      *freetype.Context
	titleFace  font.Face
	label      *freetype.Context
	labelFace  font.Face
	foreground image.Image
}

func newAnnotator(fg color.Color) (*annotator, error) {
	parsedFont, err := freetype.ParseFont(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}

	a := &annotator{font: parsedFont, foreground: image.NewUniform(fg)}
	a.title, a.titleFace = a.newContext(titleFontSize)
	a.label, a.labelFace = a.newContext(labelFontSize)
	return a, nil
}

func (a *annotator) newContext(size float64) (*freetype.Context, font.Face) {
	ctx := freetype.NewContext()
	ctx.SetDPI(dpi)
	ctx.SetFont(a.font)
	ctx.SetFontSize(size)
	ctx.SetHinting(font.HintingNone)
	ctx.SetSrc(a.foreground)

	face := truetype.NewFace(a.font, &truetype.Options{
		Size:    size,
		DPI:     dpi,
		Hinting: font.HintingNone,
	})
	return ctx, face
}

func (a *annotator) Close() error {
	var err error
	if a.titleFace != nil {
		err = a.titleFace.Close()
	}
	if a.labelFace != nil {
		if cErr := a.labelFace.Close(); cErr != nil && err == nil {
			err = cErr
		}
	}
	return err
}

func (a *annotator) bind(img *image.RGBA) {
	a.title.SetDst(img)
	a.title.SetClip(img.Bounds())
	a.label.SetDst(img)
	a.label.SetClip(img.Bounds())
}

// drawTitle draws s with its baseline vertically centered on y.
func (a *annotator) drawTitle(s string, x, y int, align textAlign) error {
	return drawString(a.title, a.titleFace, s, x, y, align)
}

func (a *annotator) drawLabel(s string, x, y int, align textAlign) error {
	return drawString(a.label, a.labelFace, s, x, y, align)
}

func (a *annotator) titleWidth(s string) int {
	return font.MeasureString(a.titleFace, s).Round()
}

func drawString(ctx *freetype.Context, face font.Face, s string, x, y int, align textAlign) error {
	width := font.MeasureString(face, s).Round()
	switch align {
	case alignCenter:
		x -= width / 2
	case alignRight:
		x -= width
	}

	metrics := face.Metrics()
	baseline := y + (metrics.Ascent.Round()-metrics.Descent.Round())/2

	if _, err := ctx.DrawString(s, freetype.Pt(x, baseline)); err != nil {
		return fmt.Errorf("drawing %q: %w", s, err)
	}
	return nil
}
