package goportal

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Side tags which half space of an oriented plane a point lies in.
type Side int

const (
	Front Side = iota
	Back
)

func (s Side) String() string {
	if s == Back {
		return "back"
	}
	return "front"
}

// Flip returns the opposite side.
func (s Side) Flip() Side {
	if s == Back {
		return Front
	}
	return Back
}

// Plane is the oriented plane Ax + By + Cz + D = 0. (A, B, C) points to the front.
type Plane struct {
	A, B, C, D float32
}

// planeThickness snaps points this close to the plane onto it.
const planeThickness = 1e-5

func NewPlaneFromPoint(point, normal mgl32.Vec3) Plane {
	n := normal.Normalize()
	return Plane{
		A: n.X(),
		B: n.Y(),
		C: n.Z(),
		D: -n.Dot(point),
	}
}

func (p Plane) Normal() mgl32.Vec3 {
	return mgl32.Vec3{p.A, p.B, p.C}
}

// Distance is the signed distance of point from the plane, zero inside the
// plane thickness.
func (p Plane) Distance(point mgl32.Vec3) float32 {
	num := p.A*point.X() + p.B*point.Y() + p.C*point.Z() + p.D
	if math.Abs(float64(num)) < planeThickness {
		return 0
	}
	return num
}

// SideOf reports which half space point lies in. Points on the plane count as Front.
func (p Plane) SideOf(point mgl32.Vec3) Side {
	if p.Distance(point) < 0 {
		return Back
	}
	return Front
}

// Flipped returns the same plane facing the other way.
func (p Plane) Flipped() Plane {
	return Plane{A: -p.A, B: -p.B, C: -p.C, D: -p.D}
}

// Vec4 packs the plane for a clip distance test: dot(Vec4, (x,y,z,1)) >= 0 is kept.
func (p Plane) Vec4() mgl32.Vec4 {
	return mgl32.Vec4{p.A, p.B, p.C, p.D}
}
