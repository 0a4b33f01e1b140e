package goportal

import (
	"math"

	"github.com/aquilax/go-perlin"
	"github.com/go-gl/mathgl/mgl32"
)

// NewTriangleMesh is a single colour interpolated triangle standing on y=0.1.
func NewTriangleMesh(name string) *Mesh {
	return NewMesh(name,
		[]mgl32.Vec3{
			{-0.5, 0.1, -1},
			{0, 1.1, -1},
			{0.5, 0.1, -1},
		},
		[]mgl32.Vec3{
			{1, 0, 0},
			{0, 1, 0},
			{0, 0, 1},
		},
	)
}

// NewQuadMesh is a width×height rectangle in the local XY plane centred on the origin.
func NewQuadMesh(name string, width, height float32, color mgl32.Vec3) *Mesh {
	hw, hh := width/2, height/2
	a := mgl32.Vec3{-hw, -hh, 0}
	b := mgl32.Vec3{hw, -hh, 0}
	c := mgl32.Vec3{hw, hh, 0}
	d := mgl32.Vec3{-hw, hh, 0}
	return NewMesh(name, []mgl32.Vec3{a, b, c, a, c, d}, fill(6, color))
}

// NewBoxMesh is an axis aligned box centred on the origin. Each face gets a
// slightly different shade of color so edges stay visible without lighting.
func NewBoxMesh(name string, size, color mgl32.Vec3) *Mesh {
	h := size.Mul(0.5)
	p := func(x, y, z float32) mgl32.Vec3 {
		return mgl32.Vec3{x * h.X(), y * h.Y(), z * h.Z()}
	}
	faces := []struct {
		quad  [4]mgl32.Vec3
		shade float32
	}{
		{[4]mgl32.Vec3{p(-1, -1, 1), p(1, -1, 1), p(1, 1, 1), p(-1, 1, 1)}, 1.0},
		{[4]mgl32.Vec3{p(1, -1, -1), p(-1, -1, -1), p(-1, 1, -1), p(1, 1, -1)}, 0.7},
		{[4]mgl32.Vec3{p(1, -1, 1), p(1, -1, -1), p(1, 1, -1), p(1, 1, 1)}, 0.85},
		{[4]mgl32.Vec3{p(-1, -1, -1), p(-1, -1, 1), p(-1, 1, 1), p(-1, 1, -1)}, 0.8},
		{[4]mgl32.Vec3{p(-1, 1, 1), p(1, 1, 1), p(1, 1, -1), p(-1, 1, -1)}, 0.95},
		{[4]mgl32.Vec3{p(-1, -1, -1), p(1, -1, -1), p(1, -1, 1), p(-1, -1, 1)}, 0.6},
	}
	var verts, colors []mgl32.Vec3
	for _, f := range faces {
		q := f.quad
		verts = append(verts, q[0], q[1], q[2], q[0], q[2], q[3])
		colors = append(colors, fill(6, color.Mul(f.shade))...)
	}
	return NewMesh(name, verts, colors)
}

// NewPlaneGridMesh is a size×size checkerboard on y=0 with the given number
// of cells per side. Cell colours are modulated by Perlin noise so that
// otherwise identical views through a portal can be told apart.
func NewPlaneGridMesh(name string, size float32, divisions int, even, odd mgl32.Vec3, seed int64) *Mesh {
	if divisions < 1 {
		divisions = 1
	}
	noise := perlin.NewPerlin(2, 2, 3, seed)
	cell := size / float32(divisions)
	origin := -size / 2

	var verts, colors []mgl32.Vec3
	for i := 0; i < divisions; i++ {
		for j := 0; j < divisions; j++ {
			x0 := origin + float32(i)*cell
			z0 := origin + float32(j)*cell
			a := mgl32.Vec3{x0, 0, z0}
			b := mgl32.Vec3{x0, 0, z0 + cell}
			c := mgl32.Vec3{x0 + cell, 0, z0 + cell}
			d := mgl32.Vec3{x0 + cell, 0, z0}
			verts = append(verts, a, b, c, a, c, d)

			base := even
			if (i+j)%2 == 1 {
				base = odd
			}
			n := noise.Noise2D(float64(i)/float64(divisions)*4, float64(j)/float64(divisions)*4)
			tint := mgl32.Clamp(1+float32(n)*0.5, 0.4, 1.4)
			colors = append(colors, fill(6, clampColor(base.Mul(tint)))...)
		}
	}
	return NewMesh(name, verts, colors)
}

// NewTorusMesh is a ring in the local XY plane with an elliptical centre line
// of radii rx and ry and a circular tube of the given radius.
func NewTorusMesh(name string, rx, ry, tube float32, segments, sides int, color mgl32.Vec3) *Mesh {
	if segments < 3 {
		segments = 3
	}
	if sides < 3 {
		sides = 3
	}
	point := func(i, j int) (mgl32.Vec3, float32) {
		u := 2 * math.Pi * float64(i%segments) / float64(segments)
		v := 2 * math.Pi * float64(j%sides) / float64(sides)
		cu, su := float32(math.Cos(u)), float32(math.Sin(u))
		cv, sv := float32(math.Cos(v)), float32(math.Sin(v))
		centre := mgl32.Vec3{rx * cu, ry * su, 0}
		radial := mgl32.Vec3{cu, su, 0}
		p := centre.Add(radial.Mul(tube * cv)).Add(localForward.Mul(tube * sv))
		// lighter on the outward facing side of the tube
		return p, 0.65 + 0.35*sv
	}

	var verts, colors []mgl32.Vec3
	for i := 0; i < segments; i++ {
		for j := 0; j < sides; j++ {
			a, sa := point(i, j)
			b, sb := point(i+1, j)
			c, sc := point(i+1, j+1)
			d, sd := point(i, j+1)
			verts = append(verts, a, b, c, a, c, d)
			colors = append(colors,
				color.Mul(sa), color.Mul(sb), color.Mul(sc),
				color.Mul(sa), color.Mul(sc), color.Mul(sd))
		}
	}
	return NewMesh(name, verts, colors)
}

func fill(n int, color mgl32.Vec3) []mgl32.Vec3 {
	out := make([]mgl32.Vec3, n)
	for i := range out {
		out[i] = color
	}
	return out
}

func clampColor(c mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{mgl32.Clamp(c[0], 0, 1), mgl32.Clamp(c[1], 0, 1), mgl32.Clamp(c[2], 0, 1)}
}
