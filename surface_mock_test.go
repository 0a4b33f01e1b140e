package goportal

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// recordingSurface is a Surface that logs every call for testing purposes.
type recordingSurface struct {
	calls  []string
	views  []mgl32.Mat4
	labels map[mgl32.Vec3]string
}

func newRecordingSurface() *recordingSurface {
	return &recordingSurface{labels: make(map[mgl32.Vec3]string)}
}

// label names draws whose model matrix translates to position.
func (s *recordingSurface) label(position mgl32.Vec3, name string) {
	s.labels[position] = name
}

func (s *recordingSurface) SetCamera(view mgl32.Mat4, fov, aspect float32) {
	s.views = append(s.views, view)
	s.calls = append(s.calls, "camera")
}

func (s *recordingSurface) SetClipPlane(plane mgl32.Vec4, enabled bool) {
	if enabled {
		s.calls = append(s.calls, "clip on")
		return
	}
	s.calls = append(s.calls, "clip off")
}

func (s *recordingSurface) Draw(mesh *Mesh, model mgl32.Mat4) {
	name := mesh.Name
	if l, ok := s.labels[model.Col(3).Vec3()]; ok {
		name += " " + l
	}
	s.calls = append(s.calls, "draw "+name)
}

func (s *recordingSurface) SetStencilState(state StencilState) {
	s.calls = append(s.calls, "stencil "+describeStencil(state))
}

func (s *recordingSurface) ClearDepth() {
	s.calls = append(s.calls, "clear depth")
}

func (s *recordingSurface) ClearStencil() {
	s.calls = append(s.calls, "clear stencil")
}

func (s *recordingSurface) AspectRatio() float32 {
	return 4.0 / 3.0
}

func describeStencil(st StencilState) string {
	switch {
	case st == StencilOff:
		return "off"
	case st == DepthOnly:
		return "depth"
	case st.WriteRef:
		return fmt.Sprintf("mark %d", st.Ref)
	case st.Test == StencilEqualRef:
		return fmt.Sprintf("equal %d", st.Ref)
	}
	return fmt.Sprintf("%+v", st)
}
