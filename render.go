package goportal

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"
)

// Surface is everything the engine needs from a rendering backend. Calls are
// issued strictly in order from the goroutine that owns the backend.
type Surface interface {
	// SetCamera sets the view matrix and a perspective projection with the
	// vertical field of view in degrees.
	SetCamera(view mgl32.Mat4, fov, aspect float32)
	// SetClipPlane discards world space points where dot(plane, (p,1)) < 0.
	SetClipPlane(plane mgl32.Vec4, enabled bool)
	Draw(mesh *Mesh, model mgl32.Mat4)
	SetStencilState(state StencilState)
	ClearDepth()
	ClearStencil()
	AspectRatio() float32
}

// StencilFunc selects the stencil comparison applied before a fragment is written.
type StencilFunc int

const (
	StencilAlways StencilFunc = iota
	StencilEqualRef
)

// StencilState is a full per-draw write mask and stencil configuration.
// Depth testing is always on.
type StencilState struct {
	ColorWrite bool
	DepthWrite bool
	Test       StencilFunc
	Ref        uint8
	// WriteRef replaces the stencil value with Ref wherever the fragment
	// passes the depth test.
	WriteRef bool
}

// StencilOff is ordinary rendering with the stencil buffer ignored.
var StencilOff = StencilState{ColorWrite: true, DepthWrite: true, Test: StencilAlways}

// DepthOnly writes depth and nothing else.
var DepthOnly = StencilState{DepthWrite: true, Test: StencilAlways}

// StencilMark stamps ref into the stencil buffer where geometry passes the depth test.
func StencilMark(ref uint8) StencilState {
	return StencilState{Test: StencilAlways, Ref: ref, WriteRef: true}
}

// StencilEqual renders normally but only where the stencil value equals ref.
func StencilEqual(ref uint8) StencilState {
	return StencilState{ColorWrite: true, DepthWrite: true, Test: StencilEqualRef, Ref: ref}
}

// Mesh is a triangle list with one colour per vertex. Meshes are shared
// between world snapshots and reference counted; the last Release runs the
// hooks registered with OnRelease so a backend can free its copy.
type Mesh struct {
	Name     string
	Vertices []mgl32.Vec3
	Colors   []mgl32.Vec3

	refs      atomic.Int32
	mu        sync.Mutex
	onRelease []func()
}

// NewMesh returns a mesh holding one reference.
func NewMesh(name string, vertices, colors []mgl32.Vec3) *Mesh {
	m := &Mesh{Name: name, Vertices: vertices, Colors: colors}
	m.refs.Store(1)
	return m
}

// Triangles is the number of whole triangles in the mesh.
func (m *Mesh) Triangles() int {
	return len(m.Vertices) / 3
}

// Retain adds a reference and returns the mesh for chaining.
func (m *Mesh) Retain() *Mesh {
	if m == nil {
		return nil
	}
	m.refs.Add(1)
	return m
}

// Release drops a reference. Releasing a freed mesh is a no-op.
func (m *Mesh) Release() {
	if m == nil {
		return
	}
	n := m.refs.Add(-1)
	switch {
	case n == 0:
		m.mu.Lock()
		hooks := m.onRelease
		m.onRelease = nil
		m.mu.Unlock()
		slog.Debug("mesh freed", "mesh", m.Name)
		for _, f := range hooks {
			f()
		}
	case n < 0:
		m.refs.Store(0)
	}
}

// Refs reports the live reference count.
func (m *Mesh) Refs() int {
	return int(m.refs.Load())
}

// OnRelease registers f to run once when the last reference is dropped.
func (m *Mesh) OnRelease(f func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onRelease = append(m.onRelease, f)
}
