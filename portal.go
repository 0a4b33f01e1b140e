package goportal

import (
	"github.com/go-gl/mathgl/mgl32"
)

var (
	portalSurfaceColor = mgl32.Vec3{0.05, 0.05, 0.08}
	portalBlue         = mgl32.Vec3{0.1, 0.45, 1}
	portalOrange       = mgl32.Vec3{1, 0.55, 0.1}
)

// Portal is an oriented rectangle. Its local +Z axis, rotated by Orientation,
// is the outward normal; the rectangle spans local X (width) and Y (height).
type Portal struct {
	Position    mgl32.Vec3
	Orientation mgl32.Quat
	HalfWidth   float32
	HalfHeight  float32

	surface *Mesh
	outline *Mesh
}

// NewPortal builds a portal of the given full width and height with a flat
// quad surface and a torus shaped outline.
func NewPortal(position mgl32.Vec3, orientation mgl32.Quat, width, height float32) *Portal {
	hw, hh := width/2, height/2
	return &Portal{
		Position:    position,
		Orientation: orientation.Normalize(),
		HalfWidth:   hw,
		HalfHeight:  hh,
		surface:     NewQuadMesh("portal surface", width, height, portalSurfaceColor),
		outline:     portalOutline(hw, hh, portalBlue),
	}
}

func portalOutline(hw, hh float32, color mgl32.Vec3) *Mesh {
	tube := 0.06 * min(hw, hh)
	return NewTorusMesh("portal outline", hw+tube, hh+tube, tube, 48, 8, color)
}

// Tint replaces the outline with one of the given colour.
func (p *Portal) Tint(color mgl32.Vec3) {
	p.outline.Release()
	p.outline = portalOutline(p.HalfWidth, p.HalfHeight, color)
}

// Normal is the outward facing unit normal.
func (p *Portal) Normal() mgl32.Vec3 {
	return p.Orientation.Rotate(localForward).Normalize()
}

// Up is the rectangle's local +Y axis in world space.
func (p *Portal) Up() mgl32.Vec3 {
	return p.Orientation.Rotate(worldUp).Normalize()
}

// ModelMatrix is translation(position) · rotation(orientation).
func (p *Portal) ModelMatrix() mgl32.Mat4 {
	return TranslationMatrix(p.Position).Mul4(p.Orientation.Mat4())
}

// Corners returns the world space corners counter clockwise seen from the front.
func (p *Portal) Corners() [4]mgl32.Vec3 {
	m := p.ModelMatrix()
	local := [4]mgl32.Vec3{
		{-p.HalfWidth, -p.HalfHeight, 0},
		{p.HalfWidth, -p.HalfHeight, 0},
		{p.HalfWidth, p.HalfHeight, 0},
		{-p.HalfWidth, p.HalfHeight, 0},
	}
	var world [4]mgl32.Vec3
	for i, c := range local {
		world[i] = m.Mul4x1(c.Vec4(1)).Vec3()
	}
	return world
}

func (p *Portal) Plane() Plane {
	return NewPlaneFromPoint(p.Position, p.Normal())
}

// SideOf is the oriented half space test against the portal plane.
func (p *Portal) SideOf(point mgl32.Vec3) Side {
	return p.Plane().SideOf(point)
}

// Intersect tests ray against the portal rectangle.
func (p *Portal) Intersect(ray Ray) (Intersection, bool) {
	return RayRectangleIntersection(ray, p.Corners())
}

func (p *Portal) Render(s Surface) {
	s.Draw(p.surface, p.ModelMatrix())
}

func (p *Portal) RenderOutline(s Surface) {
	s.Draw(p.outline, p.ModelMatrix())
}

// Clone copies the portal by value and shares its meshes.
func (p *Portal) Clone() *Portal {
	c := *p
	c.surface = p.surface.Retain()
	c.outline = p.outline.Retain()
	return &c
}

func (p *Portal) Release() {
	p.surface.Release()
	p.outline.Release()
	p.surface, p.outline = nil, nil
}

// PortalPair bonds two portals; each is the exit of the other.
type PortalPair struct {
	A, B *Portal
}

// NewPortalPair pairs a and b and tints them so they can be told apart.
func NewPortalPair(a, b *Portal) *PortalPair {
	a.Tint(portalBlue)
	b.Tint(portalOrange)
	return &PortalPair{A: a, B: b}
}

// Exit returns the partner of entry.
func (pp *PortalPair) Exit(entry *Portal) *Portal {
	if entry == pp.A {
		return pp.B
	}
	return pp.A
}

// Transform returns the exit for entry and the rotation carrying entry's
// frame onto the exit's.
func (pp *PortalPair) Transform(entry *Portal) (*Portal, mgl32.Quat) {
	exit := pp.Exit(entry)
	return exit, PortalRotation(entry, exit)
}

func (pp *PortalPair) Clone() *PortalPair {
	if pp == nil {
		return nil
	}
	return &PortalPair{A: pp.A.Clone(), B: pp.B.Clone()}
}

func (pp *PortalPair) Release() {
	if pp == nil {
		return
	}
	pp.A.Release()
	pp.B.Release()
}

// PortalRotation maps the basis of in onto the basis of out.
func PortalRotation(in, out *Portal) mgl32.Quat {
	return out.Orientation.Mul(in.Orientation.Inverse()).Normalize()
}

// TransformPoint carries a world point through in and out of out.
func TransformPoint(in, out *Portal, point mgl32.Vec3) mgl32.Vec3 {
	r := PortalRotation(in, out)
	return out.Position.Add(r.Rotate(point.Sub(in.Position)))
}

// YawDelta is the signed horizontal angle from in's normal to out's normal.
// Any vertical tilt of the portals is ignored.
func YawDelta(in, out *Portal) float32 {
	return HeadingXZ(out.Normal()) - HeadingXZ(in.Normal())
}

// Traversal describes a segment crossing one portal of a pair.
type Traversal struct {
	Entry    *Portal
	Exit     *Portal
	Hit      Intersection
	Rotation mgl32.Quat
	// Position is the end of the segment carried through to the exit side.
	Position mgl32.Vec3
}

// Traverse tests the segment origin→origin+movement against both portals.
// A portal is crossed when the segment hits its rectangle within the
// movement length and the two ends lie in different half spaces of its
// plane. Points on the plane count as Front, so a move that ends on the
// surface from the front stays, and one that ends there from behind
// crosses. When both portals are crossed the nearer wins.
func (pp *PortalPair) Traverse(origin, movement mgl32.Vec3) (Traversal, bool) {
	length := movement.Len()
	if pp == nil || length == 0 {
		return Traversal{}, false
	}
	ray := Ray{Origin: origin, Direction: movement}
	end := origin.Add(movement)

	var best Traversal
	found := false
	for _, entry := range [2]*Portal{pp.A, pp.B} {
		if entry.SideOf(origin) == entry.SideOf(end) {
			continue
		}
		hit, ok := entry.Intersect(ray)
		if !ok || hit.T > length+planeThickness {
			continue
		}
		if found && hit.T >= best.Hit.T {
			continue
		}
		exit, rot := pp.Transform(entry)
		best = Traversal{
			Entry:    entry,
			Exit:     exit,
			Hit:      hit,
			Rotation: rot,
			Position: TransformPoint(entry, exit, end),
		}
		found = true
	}
	return best, found
}
