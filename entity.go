package goportal

import "github.com/go-gl/mathgl/mgl32"

// EntityKind says whether an entity may move.
type EntityKind int

const (
	Dynamic EntityKind = iota
	Static
)

func (k EntityKind) String() string {
	if k == Static {
		return "static"
	}
	return "dynamic"
}

type Entity struct {
	Position mgl32.Vec3
	Velocity mgl32.Vec3
	Mesh     *Mesh
	Kind     EntityKind
}

// NewEntity takes ownership of one reference to mesh.
func NewEntity(position, velocity mgl32.Vec3, mesh *Mesh, kind EntityKind) *Entity {
	return &Entity{
		Position: position,
		Velocity: velocity,
		Mesh:     mesh,
		Kind:     kind,
	}
}

// Tick advances the entity by velocity×dt. Static entities never move.
func (e *Entity) Tick(dt float32) {
	if e.Kind == Static {
		return
	}
	e.Position = e.Position.Add(e.Velocity.Mul(dt))
}

// step moves the entity through the portal pair when its path for this tick
// crosses one, turning the velocity with it.
func (e *Entity) step(dt float32, pair *PortalPair) {
	if e.Kind == Static {
		return
	}
	if pair == nil {
		e.Tick(dt)
		return
	}
	move := e.Velocity.Mul(dt)
	tr, ok := pair.Traverse(e.Position, move)
	if !ok {
		e.Tick(dt)
		return
	}
	e.Position = tr.Position
	e.Velocity = tr.Rotation.Rotate(e.Velocity)
}

func (e *Entity) ModelMatrix() mgl32.Mat4 {
	return TranslationMatrix(e.Position)
}

func (e *Entity) Render(s Surface) {
	if e.Mesh == nil {
		return
	}
	s.Draw(e.Mesh, e.ModelMatrix())
}

// Clone copies the entity by value and shares its mesh.
func (e *Entity) Clone() *Entity {
	c := *e
	c.Mesh = e.Mesh.Retain()
	return &c
}

// Release drops the entity's mesh reference.
func (e *Entity) Release() {
	e.Mesh.Release()
	e.Mesh = nil
}
