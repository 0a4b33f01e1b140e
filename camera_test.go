package goportal

import (
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertAngleNear compares angles modulo a full turn.
func assertAngleNear(t *testing.T, want, got float32) {
	t.Helper()
	d := WrapAngle(got - want)
	assert.Less(t, min(d, 2*math.Pi-d), float32(float32Tolerance), "angle %v, want %v", got, want)
}

func TestCameraRotate(t *testing.T) {
	testCases := []struct {
		name       string
		dx, dy     float32
		yaw, pitch float32
	}{
		{"no input", 0, 0, 0, 0},
		{"turn right", 10, 0, 1, 0},
		{"turn left wraps", -10, 0, 2*math.Pi - 1, 0},
		{"look down", 0, 5, 0, 0.5},
		{"pitch clamps down", 0, 20, 0, MaxPitch},
		{"pitch clamps up", 0, -50, 0, -MaxPitch},
		{"full turn wraps to zero", 20 * math.Pi, 0, 0, 0},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := NewCamera(mgl32.Vec3{}, 70)
			c.Rotate(tc.dx, tc.dy)
			assertAngleNear(t, tc.yaw, c.Yaw())
			assert.InDelta(t, tc.pitch, c.Pitch(), float32Tolerance)
		})
	}
}

func TestCameraRotateRepeatedlyStaysInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	c := NewCamera(mgl32.Vec3{}, 70)
	for i := 0; i < 1000; i++ {
		dx := (rng.Float32() - 0.5) * 200
		dy := (rng.Float32() - 0.5) * 40
		c.Rotate(dx, dy)
		require.GreaterOrEqual(t, c.Pitch(), float32(-MaxPitch), "step %d", i)
		require.LessOrEqual(t, c.Pitch(), float32(MaxPitch), "step %d", i)
		require.GreaterOrEqual(t, c.Yaw(), float32(0), "step %d", i)
		require.Less(t, c.Yaw(), float32(2*math.Pi), "step %d", i)
	}
}

func TestCameraForward(t *testing.T) {
	testCases := []struct {
		name       string
		yaw, pitch float32
		want       mgl32.Vec3
	}{
		{"default looks down -Z", 0, 0, mgl32.Vec3{0, 0, -1}},
		{"positive yaw turns right", math.Pi / 2, 0, mgl32.Vec3{1, 0, 0}},
		{"half turn", math.Pi, 0, mgl32.Vec3{0, 0, 1}},
		{"positive pitch looks down", 0, 1, mgl32.Vec3{0, -float32(math.Sin(1)), -float32(math.Cos(1))}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := NewCamera(mgl32.Vec3{}, 70)
			c.SetAngles(tc.yaw, tc.pitch)
			assertVecNear(t, tc.want, c.Forward())
		})
	}
}

func TestCameraView(t *testing.T) {
	c := NewCamera(mgl32.Vec3{1, 2, 3}, 70)
	c.SetAngles(0.4, -0.3)
	v := c.View()

	eye := v.Mul4x1(c.Position().Vec4(1)).Vec3()
	assertVecNear(t, mgl32.Vec3{}, eye)

	ahead := c.Position().Add(c.Forward().Mul(5))
	assertVecNear(t, mgl32.Vec3{0, 0, -5}, v.Mul4x1(ahead.Vec4(1)).Vec3())
}

// passThroughPair has two identical portals four units apart along Z.
func passThroughPair() *PortalPair {
	a := NewPortal(mgl32.Vec3{0, 0, 0}, mgl32.QuatIdent(), 2, 2)
	b := NewPortal(mgl32.Vec3{0, 0, -4}, mgl32.QuatIdent(), 2, 2)
	return NewPortalPair(a, b)
}

// turnedPair has B a quarter turn from A, facing +X.
func turnedPair() *PortalPair {
	a := NewPortal(mgl32.Vec3{0, 0, 0}, mgl32.QuatIdent(), 2, 2)
	b := NewPortal(mgl32.Vec3{10, 0, 0}, OrientationFromEuler(math.Pi/2, 0, 0), 2, 2)
	return NewPortalPair(a, b)
}

func TestCameraTransformThroughPortal(t *testing.T) {
	testCases := []struct {
		name        string
		pair        *PortalPair
		position    mgl32.Vec3
		wantPos     mgl32.Vec3
		wantForward mgl32.Vec3
		keep, drop  mgl32.Vec3
	}{
		{
			name:        "identical orientation",
			pair:        passThroughPair(),
			position:    mgl32.Vec3{0.5, 0, 3},
			wantPos:     mgl32.Vec3{0.5, 0, -1},
			wantForward: mgl32.Vec3{0, 0, -1},
			keep:        mgl32.Vec3{0, 0, -5},
			drop:        mgl32.Vec3{0, 0, -3},
		},
		{
			name:        "quarter turn",
			pair:        turnedPair(),
			position:    mgl32.Vec3{0, 0, 2},
			wantPos:     mgl32.Vec3{12, 0, 0},
			wantForward: mgl32.Vec3{-1, 0, 0},
			keep:        mgl32.Vec3{9, 0, 0},
			drop:        mgl32.Vec3{11, 0, 0},
		},
		{
			name:        "from behind the entry",
			pair:        passThroughPair(),
			position:    mgl32.Vec3{0, 0, -2},
			wantPos:     mgl32.Vec3{0, 0, -6},
			wantForward: mgl32.Vec3{0, 0, -1},
			keep:        mgl32.Vec3{0, 0, -3},
			drop:        mgl32.Vec3{0, 0, -5},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			defer tc.pair.Release()
			c := NewCamera(tc.position, 70)
			before := c

			v := c.TransformThroughPortal(tc.pair.A, tc.pair.B)

			assert.Equal(t, before, c, "receiver must not change")
			assertVecNear(t, tc.wantPos, v.Position())
			assertVecNear(t, tc.wantForward, v.Forward())
			assert.Equal(t, c.Yaw(), v.Yaw())
			assert.Equal(t, c.FOV(), v.FOV())

			plane, ok := v.ClipPlane()
			require.True(t, ok)
			assert.Greater(t, plane.Vec4().Dot(tc.keep.Vec4(1)), float32(0))
			assert.Less(t, plane.Vec4().Dot(tc.drop.Vec4(1)), float32(0))

			_, ok = c.ClipPlane()
			assert.False(t, ok)
		})
	}
}

func TestCameraTransformRoundTrip(t *testing.T) {
	pair := turnedPair()
	defer pair.Release()
	c := NewCamera(mgl32.Vec3{0.3, 0.4, 2}, 70)
	c.SetAngles(0.3, 0.2)

	there := c.TransformThroughPortal(pair.A, pair.B)
	back := there.TransformThroughPortal(pair.B, pair.A)

	assertVecNear(t, c.Position(), back.Position())
	assertVecNear(t, c.Forward(), back.Forward())
}

func TestCameraTranslate(t *testing.T) {
	testCases := []struct {
		name     string
		pair     func() *PortalPair
		position mgl32.Vec3
		yaw      float32
		move     mgl32.Vec3
		crossed  bool
		wantPos  mgl32.Vec3
		wantYaw  float32
	}{
		{
			name:     "no portals",
			pair:     func() *PortalPair { return nil },
			position: mgl32.Vec3{1, 2, 3},
			move:     mgl32.Vec3{0, 0, -1},
			wantPos:  mgl32.Vec3{1, 2, 2},
		},
		{
			name:     "short of the portal",
			pair:     passThroughPair,
			position: mgl32.Vec3{0.25, 0.1, 3},
			move:     mgl32.Vec3{0, 0, -1},
			wantPos:  mgl32.Vec3{0.25, 0.1, 2},
		},
		{
			name:     "landing exactly on the portal stays",
			pair:     passThroughPair,
			position: mgl32.Vec3{0.25, 0.1, 1},
			move:     mgl32.Vec3{0, 0, -1},
			wantPos:  mgl32.Vec3{0.25, 0.1, 0},
		},
		{
			name:     "stepping back off the surface stays",
			pair:     passThroughPair,
			position: mgl32.Vec3{0.25, 0.1, 0},
			move:     mgl32.Vec3{0, 0, 1},
			wantPos:  mgl32.Vec3{0.25, 0.1, 1},
		},
		{
			name:     "arriving on the surface from behind crosses",
			pair:     passThroughPair,
			position: mgl32.Vec3{0.25, 0.1, -1},
			move:     mgl32.Vec3{0, 0, 1},
			crossed:  true,
			wantPos:  mgl32.Vec3{0.25, 0.1, -4},
		},
		{
			name:     "pass through from the surface",
			pair:     passThroughPair,
			position: mgl32.Vec3{0.25, 0.1, 0},
			move:     mgl32.Vec3{0, 0, -1},
			crossed:  true,
			wantPos:  mgl32.Vec3{0.25, 0.1, -5},
		},
		{
			name:     "missing the rectangle",
			pair:     passThroughPair,
			position: mgl32.Vec3{3, 0, 1},
			move:     mgl32.Vec3{0, 0, -2},
			wantPos:  mgl32.Vec3{3, 0, -1},
		},
		{
			name:     "quarter turn",
			pair:     turnedPair,
			position: mgl32.Vec3{0.2, 0.3, 1},
			move:     mgl32.Vec3{0, 0, -2},
			crossed:  true,
			wantPos:  mgl32.Vec3{9, 0.3, -0.2},
			wantYaw:  3 * math.Pi / 2,
		},
		{
			name:     "quarter turn back",
			pair:     turnedPair,
			position: mgl32.Vec3{9, 0.3, 0.2},
			yaw:      3 * math.Pi / 2,
			move:     mgl32.Vec3{2, 0, 0},
			crossed:  true,
			wantPos:  mgl32.Vec3{-0.2, 0.3, 1},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			pair := tc.pair()
			defer pair.Release()
			c := NewCamera(tc.position, 70)
			c.SetAngles(tc.yaw, 0)

			crossed := c.Translate(tc.move, pair)

			assert.Equal(t, tc.crossed, crossed)
			assertVecNear(t, tc.wantPos, c.Position())
			assertAngleNear(t, tc.wantYaw, c.Yaw())
		})
	}
}

// Two portals four units apart with identical orientation. The pair is glued
// rigidly: leaving A through its back emerges behind B, and leaving A through
// its front emerges in front of B, each at the distance travelled past A.
func TestCameraPassThroughScenario(t *testing.T) {
	testCases := []struct {
		name     string
		position mgl32.Vec3
		yaw      float32
		offset   float32
	}{
		{"forward from the surface", mgl32.Vec3{0.25, 0.1, 0}, 0, -1},
		{"out through the front", mgl32.Vec3{0.25, 0.1, -0.5}, math.Pi, 0.5},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			pair := passThroughPair()
			defer pair.Release()
			c := NewCamera(tc.position, 70)
			c.SetAngles(tc.yaw, 0)
			yaw := c.Yaw()

			require.True(t, c.Translate(c.Forward(), pair))

			off := c.Position().Sub(pair.B.Position)
			assert.InDelta(t, tc.offset, off.Dot(pair.B.Normal()), float32Tolerance)
			assert.InDelta(t, 0.25, off.X(), float32Tolerance)
			assert.InDelta(t, 0.1, off.Y(), float32Tolerance)
			assertAngleNear(t, yaw, c.Yaw())
			assert.Equal(t, float32(0), c.Pitch())
		})
	}
}

func TestCameraTranslateKeepsPitch(t *testing.T) {
	a := NewPortal(mgl32.Vec3{}, mgl32.QuatIdent(), 2, 2)
	// tilted exit: the yaw still follows the horizontal heading only
	b := NewPortal(mgl32.Vec3{0, 0, -10}, OrientationFromEuler(math.Pi, 0.3, 0), 2, 2)
	pair := NewPortalPair(a, b)
	defer pair.Release()

	c := NewCamera(mgl32.Vec3{0.1, 0.1, 0.5}, 70)
	c.SetAngles(0, 0.4)
	require.True(t, c.Translate(mgl32.Vec3{0, 0, -1}, pair))

	assert.InDelta(t, 0.4, c.Pitch(), float32Tolerance)
	assertAngleNear(t, math.Pi, c.Yaw())
}
