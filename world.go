package goportal

import (
	"log/slog"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Stencil values stamped by the two portal windows.
const (
	stencilA uint8 = 1
	stencilB uint8 = 2
)

// Movement speed multipliers.
const (
	runFactor   = float32(2)
	crawlFactor = float32(0.1)
)

const DefaultMoveSpeed = float32(3)

// World is one complete snapshot of the simulation.
type World struct {
	Camera   Camera
	Entities []*Entity
	Portals  *PortalPair
	// PortalRendering enables the stencil pass that fills the portal windows.
	PortalRendering bool
	// MoveSpeed is the camera speed in units per second at the normal tier.
	MoveSpeed float32
}

func NewWorld(camera Camera) *World {
	return &World{
		Camera:          camera,
		PortalRendering: true,
		MoveSpeed:       DefaultMoveSpeed,
	}
}

// AddEntity appends e. The world owns it from now on.
func (w *World) AddEntity(e *Entity) {
	w.Entities = append(w.Entities, e)
}

// SetPortals installs pair, releasing any previous pair.
func (w *World) SetPortals(pair *PortalPair) {
	if w.Portals != nil && w.Portals != pair {
		w.Portals.Release()
	}
	w.Portals = pair
}

// Tick moves the camera from input and advances every entity by dt seconds.
func (w *World) Tick(dt float32, input InputState) {
	w.Camera.Translate(w.movement(dt, input), w.Portals)
	for _, e := range w.Entities {
		e.step(dt, w.Portals)
	}
}

// movement maps pressed keys to a world space displacement. Horizontal
// movement follows the camera's yaw; up and down are along world Y.
func (w *World) movement(dt float32, input InputState) mgl32.Vec3 {
	if input == nil {
		return mgl32.Vec3{}
	}
	var local mgl32.Vec3
	if input.IsPressed(KeyForward) {
		local[2]--
	}
	if input.IsPressed(KeyBack) {
		local[2]++
	}
	if input.IsPressed(KeyLeft) {
		local[0]--
	}
	if input.IsPressed(KeyRight) {
		local[0]++
	}
	if input.IsPressed(KeyUp) {
		local[1]++
	}
	if input.IsPressed(KeyDown) {
		local[1]--
	}
	if local.Len() == 0 {
		return mgl32.Vec3{}
	}

	speed := w.MoveSpeed
	switch {
	case input.IsPressed(KeyCrawl):
		speed *= crawlFactor
	case input.IsPressed(KeyRun):
		speed *= runFactor
	}

	heading := mgl32.QuatRotate(-w.Camera.Yaw(), worldUp)
	return heading.Rotate(local.Normalize()).Mul(speed * dt)
}

// Render draws the world from its camera. With a portal pair present and
// portal rendering on, the portal windows are first filled with the scene
// as seen through them, using the stencil buffer to keep each view inside
// its own window.
func (w *World) Render(s Surface) {
	aspect := s.AspectRatio()
	cam := &w.Camera
	s.SetStencilState(StencilOff)
	s.SetClipPlane(mgl32.Vec4{}, false)
	s.SetCamera(cam.View(), cam.FOV(), aspect)

	pair := w.Portals
	if pair == nil || !w.PortalRendering {
		w.renderScene(s)
		return
	}
	a, b := pair.A, pair.B
	s.ClearStencil()

	// seed A's depth, then mark the visible part of B
	s.SetStencilState(DepthOnly)
	a.Render(s)
	s.SetStencilState(StencilMark(stencilB))
	b.Render(s)
	s.ClearDepth()

	// and the other way round
	s.SetStencilState(DepthOnly)
	b.Render(s)
	s.SetStencilState(StencilMark(stencilA))
	a.Render(s)
	s.ClearDepth()

	w.renderThrough(s, a, b, stencilA, aspect)
	w.renderThrough(s, b, a, stencilB, aspect)

	// keep the flat portal surfaces out of the colour buffer but in front of
	// whatever lies behind them
	s.SetClipPlane(mgl32.Vec4{}, false)
	s.SetCamera(cam.View(), cam.FOV(), aspect)
	s.SetStencilState(DepthOnly)
	a.Render(s)
	b.Render(s)

	s.SetStencilState(StencilOff)
	w.renderScene(s)
}

// renderThrough draws the scene seen through in, restricted to stencil ref.
func (w *World) renderThrough(s Surface, in, out *Portal, ref uint8, aspect float32) {
	v := w.Camera.TransformThroughPortal(in, out)
	if !finite(v.Position()) {
		slog.Debug("skipping portal view", "position", v.Position())
		return
	}
	s.SetStencilState(StencilEqual(ref))
	s.SetCamera(v.View(), v.FOV(), aspect)
	if plane, ok := v.ClipPlane(); ok {
		s.SetClipPlane(plane.Vec4(), true)
	}
	w.renderScene(s)
	s.SetClipPlane(mgl32.Vec4{}, false)
}

// renderScene draws the entities and the portal outlines.
func (w *World) renderScene(s Surface) {
	for _, e := range w.Entities {
		e.Render(s)
	}
	if w.Portals != nil {
		w.Portals.A.RenderOutline(s)
		w.Portals.B.RenderOutline(s)
	}
}

// Clone deep copies the world. Meshes are shared by reference.
func (w *World) Clone() *World {
	c := *w
	c.Entities = make([]*Entity, len(w.Entities))
	for i, e := range w.Entities {
		c.Entities[i] = e.Clone()
	}
	c.Portals = w.Portals.Clone()
	return &c
}

// Release drops the world's mesh references. The world must not be used afterwards.
func (w *World) Release() {
	for _, e := range w.Entities {
		e.Release()
	}
	w.Entities = nil
	w.Portals.Release()
	w.Portals = nil
}

func finite(v mgl32.Vec3) bool {
	for _, f := range v {
		if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
			return false
		}
	}
	return true
}
