package goportal

import (
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	// MaxPitch keeps the camera just short of looking straight up or down.
	MaxPitch = float32(1.2)
	// rotateScale divides raw rotation input.
	rotateScale = float32(10)
)

// Camera is a free roaming first person camera. At yaw 0 and pitch 0 it
// looks down -Z with +Y up; positive yaw turns right and positive pitch
// looks down.
//
// frame is an extra rotation applied before yaw and pitch. It is the identity
// for the player camera and holds the inter-portal rotation for the scratch
// copies returned by TransformThroughPortal.
type Camera struct {
	position mgl32.Vec3
	yaw      float32
	pitch    float32
	fov      float32
	frame    mgl32.Quat

	clip    Plane
	hasClip bool

	view mgl32.Mat4
}

// NewCamera places a camera at position with a vertical field of view in degrees.
func NewCamera(position mgl32.Vec3, fov float32) Camera {
	c := Camera{
		position: position,
		fov:      fov,
		frame:    mgl32.QuatIdent(),
	}
	c.updateView()
	return c
}

// SetAngles sets yaw and pitch directly, applying the same wrap and clamp as Rotate.
func (c *Camera) SetAngles(yaw, pitch float32) {
	c.yaw = WrapAngle(yaw)
	c.pitch = mgl32.Clamp(pitch, -MaxPitch, MaxPitch)
	c.updateView()
}

// Rotate turns the camera by dx/10 radians of yaw and dy/10 radians of pitch.
func (c *Camera) Rotate(dx, dy float32) {
	c.yaw += dx / rotateScale
	c.pitch += dy / rotateScale
	c.pitch = mgl32.Clamp(c.pitch, -MaxPitch, MaxPitch)
	c.yaw = WrapAngle(c.yaw)
	c.updateView()
}

// Orientation is the camera's rotation from view space to world space.
func (c *Camera) Orientation() mgl32.Quat {
	yaw := mgl32.QuatRotate(-c.yaw, worldUp)
	pitch := mgl32.QuatRotate(-c.pitch, mgl32.Vec3{1, 0, 0})
	return c.frame.Mul(yaw).Mul(pitch).Normalize()
}

// Forward is the unit view direction in world space.
func (c *Camera) Forward() mgl32.Vec3 {
	return c.Orientation().Rotate(viewForward).Normalize()
}

func (c *Camera) updateView() {
	rot := c.Orientation().Inverse().Mat4()
	c.view = rot.Mul4(TranslationMatrix(c.position.Mul(-1)))
}

// TransformThroughPortal returns a copy of the camera as seen coming out of
// out when looking into in. The receiver is not modified.
//
// The copy carries a clip plane on out's surface so geometry between the
// virtual eye and the exit portal is not drawn. Which side of out is kept
// follows from which side of in the real camera is on.
func (c *Camera) TransformThroughPortal(in, out *Portal) Camera {
	side := in.SideOf(c.position)
	r := PortalRotation(in, out)

	v := *c
	v.position = out.Position.Add(r.Rotate(c.position.Sub(in.Position)))
	v.frame = r.Mul(c.frame).Normalize()

	// Seen from in's front the view continues behind out, and vice versa.
	v.clip = out.Plane()
	if side == Front {
		v.clip = v.clip.Flipped()
	}
	v.hasClip = true
	v.updateView()
	return v
}

// Translate moves the camera by movement. If the move crosses a portal of
// pair the camera is teleported to the matching point past the other portal
// and its yaw turned by the horizontal angle between the portals. Pitch is
// left alone even when the portals are tilted. It reports whether a portal
// was crossed.
func (c *Camera) Translate(movement mgl32.Vec3, pair *PortalPair) bool {
	tr, crossed := pair.Traverse(c.position, movement)
	if crossed {
		c.position = tr.Position
		c.yaw = WrapAngle(c.yaw - YawDelta(tr.Entry, tr.Exit))
		slog.Debug("camera crossed portal",
			"hit", tr.Hit.Point, "position", c.position, "yaw", c.yaw)
	} else {
		c.position = c.position.Add(movement)
	}
	c.updateView()
	return crossed
}

func (c *Camera) View() mgl32.Mat4 {
	return c.view
}

// FOV is the vertical field of view in degrees.
func (c *Camera) FOV() float32 {
	return c.fov
}

func (c *Camera) Position() mgl32.Vec3 {
	return c.position
}

func (c *Camera) Yaw() float32 {
	return c.yaw
}

func (c *Camera) Pitch() float32 {
	return c.pitch
}

// ClipPlane is set on cameras produced by TransformThroughPortal.
func (c *Camera) ClipPlane() (Plane, bool) {
	return c.clip, c.hasClip
}
