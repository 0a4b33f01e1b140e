package goportal

import (
	"image"
	"image/color"
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// Depth range of the raster projection.
const (
	rasterNear = float32(0.05)
	rasterFar  = float32(200)
)

// RasterStats counts work done since the last ResetStats.
type RasterStats struct {
	Draws     int
	Triangles int
	Fragments int
}

// clipVertex is a vertex carried through the clipping stages.
type clipVertex struct {
	world mgl32.Vec3
	clip  mgl32.Vec4
	color mgl32.Vec3
}

// screenVertex is a vertex after the perspective divide.
type screenVertex struct {
	x, y, z float32
	invW    float32
	color   mgl32.Vec3 // premultiplied by invW
}

// Raster is a software Surface with a colour, depth and stencil buffer.
type Raster struct {
	width, height int
	img           *image.RGBA
	depth         []float32
	stencil       []uint8

	viewProj mgl32.Mat4
	clip     mgl32.Vec4
	clipOn   bool
	state    StencilState

	stats RasterStats

	mu       sync.Mutex
	prepared map[*Mesh][]clipVertex
}

// NewRaster allocates buffers for a width×height target.
func NewRaster(width, height int) *Raster {
	r := &Raster{
		state:    StencilOff,
		viewProj: mgl32.Ident4(),
		prepared: make(map[*Mesh][]clipVertex),
	}
	r.Resize(width, height)
	return r
}

// Resize reallocates the buffers. Contents are lost.
func (r *Raster) Resize(width, height int) {
	width = max(width, 1)
	height = max(height, 1)
	r.width, r.height = width, height
	r.img = image.NewRGBA(image.Rect(0, 0, width, height))
	r.depth = make([]float32, width*height)
	r.stencil = make([]uint8, width*height)
	r.Clear(color.RGBA{A: 255})
}

func (r *Raster) Size() (int, int) {
	return r.width, r.height
}

func (r *Raster) AspectRatio() float32 {
	return float32(r.width) / float32(r.height)
}

// Clear fills the colour buffer with c and resets depth and stencil.
func (r *Raster) Clear(c color.RGBA) {
	pix := r.img.Pix
	for i := 0; i < len(pix); i += 4 {
		pix[i], pix[i+1], pix[i+2], pix[i+3] = c.R, c.G, c.B, c.A
	}
	r.ClearDepth()
	r.ClearStencil()
}

func (r *Raster) ClearDepth() {
	for i := range r.depth {
		r.depth[i] = 1
	}
}

func (r *Raster) ClearStencil() {
	clear(r.stencil)
}

// Pix is the RGBA colour buffer, row major, four bytes per pixel.
func (r *Raster) Pix() []byte {
	return r.img.Pix
}

func (r *Raster) Image() *image.RGBA {
	return r.img
}

func (r *Raster) At(x, y int) color.RGBA {
	return r.img.RGBAAt(x, y)
}

func (r *Raster) StencilAt(x, y int) uint8 {
	return r.stencil[y*r.width+x]
}

func (r *Raster) DepthAt(x, y int) float32 {
	return r.depth[y*r.width+x]
}

func (r *Raster) Stats() RasterStats {
	return r.stats
}

func (r *Raster) ResetStats() {
	r.stats = RasterStats{}
}

func (r *Raster) SetCamera(view mgl32.Mat4, fov, aspect float32) {
	proj := mgl32.Perspective(mgl32.DegToRad(fov), aspect, rasterNear, rasterFar)
	r.viewProj = proj.Mul4(view)
}

func (r *Raster) SetClipPlane(plane mgl32.Vec4, enabled bool) {
	r.clip = plane
	r.clipOn = enabled
}

func (r *Raster) SetStencilState(state StencilState) {
	r.state = state
}

// Draw rasterises mesh transformed by model under the current state.
func (r *Raster) Draw(mesh *Mesh, model mgl32.Mat4) {
	if mesh == nil {
		return
	}
	verts := r.prepare(mesh)
	r.stats.Draws++

	mvp := r.viewProj.Mul4(model)
	poly := make([]clipVertex, 0, 9)
	scratch := make([]clipVertex, 0, 9)
	for i := 0; i+2 < len(verts); i += 3 {
		poly = poly[:0]
		for _, v := range verts[i : i+3] {
			p := v.clip
			v.world = model.Mul4x1(p).Vec3()
			v.clip = mvp.Mul4x1(p)
			poly = append(poly, v)
		}
		if r.clipOn {
			poly, scratch = clipPolygon(poly, scratch[:0], r.planeDistance), poly
		}
		// near plane: z ≥ -w in clip space
		poly, scratch = clipPolygon(poly, scratch[:0], nearDistance), poly
		if len(poly) < 3 {
			continue
		}
		r.stats.Triangles++
		r.fillPolygon(poly)
	}
}

// prepare caches the homogeneous form of a mesh until the mesh is freed. In
// the cached copy clip holds the model space position.
func (r *Raster) prepare(mesh *Mesh) []clipVertex {
	r.mu.Lock()
	defer r.mu.Unlock()
	if verts, ok := r.prepared[mesh]; ok {
		return verts
	}
	n := len(mesh.Vertices)
	verts := make([]clipVertex, n)
	for i, p := range mesh.Vertices {
		c := mgl32.Vec3{1, 1, 1}
		if i < len(mesh.Colors) {
			c = mesh.Colors[i]
		}
		verts[i] = clipVertex{clip: p.Vec4(1), color: c}
	}
	r.prepared[mesh] = verts
	mesh.OnRelease(func() {
		r.mu.Lock()
		delete(r.prepared, mesh)
		r.mu.Unlock()
	})
	return verts
}

func (r *Raster) planeDistance(v clipVertex) float32 {
	return r.clip.Dot(v.world.Vec4(1))
}

func nearDistance(v clipVertex) float32 {
	return v.clip.Z() + v.clip.W()
}

// clipPolygon keeps the part of poly where dist ≥ 0, appending the result to
// out. Attributes on new vertices are interpolated linearly.
func clipPolygon(poly, out []clipVertex, dist func(clipVertex) float32) []clipVertex {
	if len(poly) == 0 {
		return out
	}
	prev := poly[len(poly)-1]
	prevD := dist(prev)
	for _, cur := range poly {
		curD := dist(cur)
		if curD >= 0 {
			if prevD < 0 {
				out = append(out, lerpVertex(prev, cur, prevD/(prevD-curD)))
			}
			out = append(out, cur)
		} else if prevD >= 0 {
			out = append(out, lerpVertex(prev, cur, prevD/(prevD-curD)))
		}
		prev, prevD = cur, curD
	}
	return out
}

func lerpVertex(a, b clipVertex, t float32) clipVertex {
	return clipVertex{
		world: a.world.Add(b.world.Sub(a.world).Mul(t)),
		clip:  a.clip.Add(b.clip.Sub(a.clip).Mul(t)),
		color: a.color.Add(b.color.Sub(a.color).Mul(t)),
	}
}

func (r *Raster) toScreen(v clipVertex) screenVertex {
	w := v.clip.W()
	if w < 1e-6 {
		w = 1e-6
	}
	invW := 1 / w
	ndc := v.clip.Vec3().Mul(invW)
	return screenVertex{
		x:     (ndc.X() + 1) * 0.5 * float32(r.width),
		y:     (1 - ndc.Y()) * 0.5 * float32(r.height),
		z:     (ndc.Z() + 1) * 0.5,
		invW:  invW,
		color: v.color.Mul(invW),
	}
}

func (r *Raster) fillPolygon(poly []clipVertex) {
	s0 := r.toScreen(poly[0])
	prev := r.toScreen(poly[1])
	for _, v := range poly[2:] {
		cur := r.toScreen(v)
		r.fillTriangle(s0, prev, cur)
		prev = cur
	}
}

func edge(ax, ay, bx, by, px, py float32) float32 {
	return (bx-ax)*(py-ay) - (by-ay)*(px-ax)
}

// fillTriangle is a barycentric scan over the triangle's bounding box. Both
// windings are drawn.
func (r *Raster) fillTriangle(a, b, c screenVertex) {
	area := edge(a.x, a.y, b.x, b.y, c.x, c.y)
	if area == 0 || isNaN32(area) {
		return
	}
	minX := clamp(int(math.Floor(float64(min(a.x, b.x, c.x)))), 0, r.width-1)
	maxX := clamp(int(math.Ceil(float64(max(a.x, b.x, c.x)))), 0, r.width-1)
	minY := clamp(int(math.Floor(float64(min(a.y, b.y, c.y)))), 0, r.height-1)
	maxY := clamp(int(math.Ceil(float64(max(a.y, b.y, c.y)))), 0, r.height-1)

	st := r.state
	pix := r.img.Pix
	for y := minY; y <= maxY; y++ {
		py := float32(y) + 0.5
		for x := minX; x <= maxX; x++ {
			px := float32(x) + 0.5
			w0 := edge(b.x, b.y, c.x, c.y, px, py) / area
			w1 := edge(c.x, c.y, a.x, a.y, px, py) / area
			w2 := 1 - w0 - w1
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}
			i := y*r.width + x
			if st.Test == StencilEqualRef && r.stencil[i] != st.Ref {
				continue
			}
			z := w0*a.z + w1*b.z + w2*c.z
			if z < 0 || z >= r.depth[i] {
				continue
			}
			r.stats.Fragments++
			if st.DepthWrite {
				r.depth[i] = z
			}
			if st.WriteRef {
				r.stencil[i] = st.Ref
			}
			if !st.ColorWrite {
				continue
			}
			invW := w0*a.invW + w1*b.invW + w2*c.invW
			col := a.color.Mul(w0).Add(b.color.Mul(w1)).Add(c.color.Mul(w2)).Mul(1 / invW)
			o := i * 4
			pix[o] = toByte(col.X())
			pix[o+1] = toByte(col.Y())
			pix[o+2] = toByte(col.Z())
			pix[o+3] = 255
		}
	}
}

func toByte(f float32) uint8 {
	return uint8(mgl32.Clamp(f, 0, 1)*255 + 0.5)
}

func isNaN32(f float32) bool {
	return f != f
}
