package goportal

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

var (
	whiteImage = ebiten.NewImage(3, 3)
	whiteSub   *ebiten.Image

	crosshairColor = color.RGBA{R: 255, G: 255, B: 255, A: 200}
	pauseShade     = color.RGBA{A: 140}
)

func init() {
	whiteImage.Fill(color.White)
	whiteSub = whiteImage.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
}

// fillConvexPolygon fills the polygon as a triangle fan.
func fillConvexPolygon(screen *ebiten.Image, xp, yp []float32, clr color.RGBA) {
	if len(xp) < 3 {
		return
	}

	indices := make([]uint16, 0, (len(xp)-2)*3)
	for i := 2; i < len(xp); i++ {
		indices = append(indices, 0, uint16(i-1), uint16(i))
	}

	vertices := make([]ebiten.Vertex, len(xp))
	cr := float32(clr.R) / 255.0
	cg := float32(clr.G) / 255.0
	cb := float32(clr.B) / 255.0
	ca := float32(clr.A) / 255.0

	for i := range xp {
		vertices[i] = ebiten.Vertex{
			DstX:   xp[i],
			DstY:   yp[i],
			SrcX:   1,
			SrcY:   1,
			ColorR: cr,
			ColorG: cg,
			ColorB: cb,
			ColorA: ca,
		}
	}

	screen.DrawTriangles(vertices, indices, whiteSub, &ebiten.DrawTrianglesOptions{AntiAlias: true})
}

func drawLine(screen *ebiten.Image, x0, y0, x1, y1 float32, clr color.Color) {
	vector.StrokeLine(screen, x0, y0, x1, y1, 1, clr, false)
}

func drawCrosshair(screen *ebiten.Image) {
	b := screen.Bounds()
	cx, cy := float32(b.Dx())/2, float32(b.Dy())/2
	const arm = 6
	drawLine(screen, cx-arm, cy, cx+arm, cy, crosshairColor)
	drawLine(screen, cx, cy-arm, cx, cy+arm, crosshairColor)
}

// drawPauseOverlay darkens the screen and draws a pause symbol.
func drawPauseOverlay(screen *ebiten.Image) {
	b := screen.Bounds()
	w, h := float32(b.Dx()), float32(b.Dy())
	fillConvexPolygon(screen, []float32{0, w, w, 0}, []float32{0, 0, h, h}, pauseShade)

	cx, cy := w/2, h/2
	for _, x := range []float32{cx - 14, cx + 6} {
		fillConvexPolygon(screen,
			[]float32{x, x + 8, x + 8, x},
			[]float32{cy - 18, cy - 18, cy + 18, cy + 18},
			crosshairColor)
	}
}
