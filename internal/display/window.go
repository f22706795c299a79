// Package display shows a rendered figure in a desktop window.
package display

import (
	"image"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

const (
	maxWindowWidth  = 1600
	maxWindowHeight = 1000
)

// Show opens a window with img and blocks until the window is closed.
func Show(title string, img image.Image) error {
	b := img.Bounds()
	w, h := fitWindow(b.Dx(), b.Dy(), maxWindowWidth, maxWindowHeight)

	ebiten.SetWindowTitle(title)
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(10)

	return ebiten.RunGame(&viewer{src: img})
}

type viewer struct {
	src image.Image
	img *ebiten.Image
}

func (v *viewer) Update() error {
	return nil
}

func (v *viewer) Draw(screen *ebiten.Image) {
	if v.img == nil {
		v.img = ebiten.NewImageFromImage(v.src)
	}
	screen.DrawImage(v.img, nil)
}

// Layout keeps the logical screen at the figure size; ebiten scales it to the window.
func (v *viewer) Layout(_, _ int) (int, int) {
	b := v.src.Bounds()
	return b.Dx(), b.Dy()
}

// fitWindow scales (w, h) down to fit into (maxW, maxH), keeping the aspect ratio.
func fitWindow(w, h, maxW, maxH int) (int, int) {
	if w <= 0 || h <= 0 {
		return maxW, maxH
	}
	if w <= maxW && h <= maxH {
		return w, h
	}

	scale := min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	return max(1, int(math.Round(float64(w)*scale))), max(1, int(math.Round(float64(h)*scale)))
}
