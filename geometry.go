package goportal

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	// rayEpsilon rejects rays that are parallel to a triangle.
	rayEpsilon = float32(1e-7)
	// antiparallelCos is the cosine below which two unit vectors are treated as opposite.
	antiparallelCos = float32(-1 + 1e-6)
)

var (
	worldUp      = mgl32.Vec3{0, 1, 0}
	localForward = mgl32.Vec3{0, 0, 1}
	viewForward  = mgl32.Vec3{0, 0, -1}
)

// Ray is a half line starting at Origin. Direction need not be normalized.
type Ray struct {
	Origin    mgl32.Vec3
	Direction mgl32.Vec3
}

// Intersection is a ray hit. T is the distance from the ray origin to Point.
type Intersection struct {
	Point mgl32.Vec3
	T     float32
}

// TranslationMatrix returns the homogeneous matrix translating by v.
func TranslationMatrix(v mgl32.Vec3) mgl32.Mat4 {
	return mgl32.Translate3D(v.X(), v.Y(), v.Z())
}

// RotationBetween returns the rotation that maps unit vector a onto unit vector b.
//
// The rotation axis is a×b and the cosine of the angle is a·b; the quaternion
// (1+a·b, a×b) normalised is the half-angle form of Rodrigues' rotation.
// When a and b point in opposite directions the axis is undefined, so the
// rotation is half a turn about an axis perpendicular to a, chosen from the
// world axis least aligned with a so the result is stable.
func RotationBetween(a, b mgl32.Vec3) mgl32.Quat {
	a = a.Normalize()
	b = b.Normalize()
	cos := a.Dot(b)
	if cos < antiparallelCos {
		return mgl32.QuatRotate(math.Pi, perpendicular(a))
	}
	q := mgl32.Quat{W: 1 + cos, V: a.Cross(b)}
	return q.Normalize()
}

// perpendicular returns a unit vector orthogonal to v.
func perpendicular(v mgl32.Vec3) mgl32.Vec3 {
	axis := mgl32.Vec3{1, 0, 0}
	ax, ay, az := mgl32.Abs(v.X()), mgl32.Abs(v.Y()), mgl32.Abs(v.Z())
	if ay < ax && ay <= az {
		axis = mgl32.Vec3{0, 1, 0}
	} else if az < ax && az < ay {
		axis = mgl32.Vec3{0, 0, 1}
	}
	return v.Cross(axis).Normalize()
}

// RayTriangleIntersection runs the Möller–Trumbore test. T is expressed in
// multiples of ray.Direction.
func RayTriangleIntersection(ray Ray, tri [3]mgl32.Vec3) (Intersection, bool) {
	edge1 := tri[1].Sub(tri[0])
	edge2 := tri[2].Sub(tri[0])
	h := ray.Direction.Cross(edge2)
	a := edge1.Dot(h)
	if a > -rayEpsilon && a < rayEpsilon {
		return Intersection{}, false
	}

	f := 1 / a
	s := ray.Origin.Sub(tri[0])
	u := f * s.Dot(h)
	if u < 0 || u > 1 {
		return Intersection{}, false
	}

	q := s.Cross(edge1)
	v := f * ray.Direction.Dot(q)
	if v < 0 || u+v > 1 {
		return Intersection{}, false
	}

	t := f * edge2.Dot(q)
	if t < 0 {
		// line hit behind the origin
		return Intersection{}, false
	}
	return Intersection{Point: ray.Origin.Add(ray.Direction.Mul(t)), T: t}, true
}

// RayRectangleIntersection tests a ray against the rectangle with the given
// corners in winding order. The rectangle is split into two triangles and the
// nearest hit with t ≥ 0 is returned. T is the world distance along the ray.
func RayRectangleIntersection(ray Ray, corners [4]mgl32.Vec3) (Intersection, bool) {
	if ray.Direction.Len() == 0 {
		return Intersection{}, false
	}
	ray.Direction = ray.Direction.Normalize()

	tris := [2][3]mgl32.Vec3{
		{corners[0], corners[1], corners[2]},
		{corners[0], corners[2], corners[3]},
	}
	var best Intersection
	found := false
	for _, tri := range tris {
		hit, ok := RayTriangleIntersection(ray, tri)
		if !ok {
			continue
		}
		if !found || hit.T < best.T {
			best, found = hit, true
		}
	}
	return best, found
}

// HeadingXZ returns the horizontal angle of v measured from +Z towards +X.
// A rotation of phi radians about +Y increases the heading by phi.
func HeadingXZ(v mgl32.Vec3) float32 {
	return float32(math.Atan2(float64(v.X()), float64(v.Z())))
}

// WrapAngle maps a onto [0, 2π).
func WrapAngle(a float32) float32 {
	w := float32(math.Mod(float64(a), 2*math.Pi))
	if w < 0 {
		w += 2 * math.Pi
	}
	if w >= 2*math.Pi {
		w = 0
	}
	return w
}

// OrientationFromEuler builds a rotation from yaw, pitch and roll in radians,
// applied roll first, then pitch about X, then yaw about Y.
func OrientationFromEuler(yaw, pitch, roll float32) mgl32.Quat {
	return mgl32.AnglesToQuat(yaw, pitch, roll, mgl32.YXZ)
}
