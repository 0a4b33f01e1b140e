package goportal

import (
	"image/color"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	posA   = mgl32.Vec3{0, 0, 0}
	posB   = mgl32.Vec3{10, 0, 0}
	posBox = mgl32.Vec3{0, 0, -3}
)

// newTestWorld has a box behind portal A and portal B off to the side facing +X.
func newTestWorld() *World {
	w := NewWorld(NewCamera(mgl32.Vec3{0, 0, 3}, 70))
	w.AddEntity(NewEntity(posBox, mgl32.Vec3{}, NewBoxMesh("box", mgl32.Vec3{1, 1, 1}, mgl32.Vec3{0, 1, 0}), Static))
	a := NewPortal(posA, mgl32.QuatIdent(), 2, 2)
	b := NewPortal(posB, OrientationFromEuler(math.Pi/2, 0, 0), 2, 2)
	w.SetPortals(NewPortalPair(a, b))
	return w
}

func labelled(s *recordingSurface) *recordingSurface {
	s.label(posA, "A")
	s.label(posB, "B")
	return s
}

func TestWorldRenderPhases(t *testing.T) {
	w := newTestWorld()
	defer w.Release()
	s := labelled(newRecordingSurface())

	w.Render(s)

	scene := []string{"draw box", "draw portal outline A", "draw portal outline B"}
	var want []string
	want = append(want, "stencil off", "clip off", "camera", "clear stencil")
	want = append(want,
		"stencil depth", "draw portal surface A",
		"stencil mark 2", "draw portal surface B",
		"clear depth",
		"stencil depth", "draw portal surface B",
		"stencil mark 1", "draw portal surface A",
		"clear depth",
	)
	want = append(want, "stencil equal 1", "camera", "clip on")
	want = append(want, scene...)
	want = append(want, "clip off")
	want = append(want, "stencil equal 2", "camera", "clip on")
	want = append(want, scene...)
	want = append(want, "clip off")
	want = append(want, "clip off", "camera", "stencil depth", "draw portal surface A", "draw portal surface B")
	want = append(want, "stencil off")
	want = append(want, scene...)

	assert.Equal(t, want, s.calls)

	// the primary camera is restored for the last pass
	require.Len(t, s.views, 4)
	assert.Equal(t, w.Camera.View(), s.views[0])
	assert.Equal(t, w.Camera.View(), s.views[3])
	assert.NotEqual(t, s.views[0], s.views[1])
}

func TestWorldRenderWithoutPortals(t *testing.T) {
	testCases := []struct {
		name  string
		setup func(w *World)
		want  []string
	}{
		{
			name:  "no pair",
			setup: func(w *World) { w.SetPortals(nil) },
			want:  []string{"stencil off", "clip off", "camera", "draw box"},
		},
		{
			name:  "portal rendering off",
			setup: func(w *World) { w.PortalRendering = false },
			want: []string{"stencil off", "clip off", "camera",
				"draw box", "draw portal outline A", "draw portal outline B"},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := newTestWorld()
			defer w.Release()
			tc.setup(w)
			s := labelled(newRecordingSurface())
			w.Render(s)
			assert.Equal(t, tc.want, s.calls)
		})
	}
}

func TestWorldRenderThroughPortal(t *testing.T) {
	w := newTestWorld()
	defer w.Release()
	// only visible from B's front, behind B
	w.AddEntity(NewEntity(mgl32.Vec3{8, 0, 0}, mgl32.Vec3{}, NewBoxMesh("red", mgl32.Vec3{1, 1, 1}, mgl32.Vec3{1, 0, 0}), Static))

	r := NewRaster(64, 48)
	sky := color.RGBA{B: 255, A: 255}
	r.Clear(sky)
	w.Render(r)

	c := r.At(32, 24)
	assert.Greater(t, c.R, uint8(150), "centre pixel %v", c)
	assert.Less(t, c.G, uint8(50), "centre pixel %v", c)

	// with the stencil pass off the box behind A shows instead
	w.PortalRendering = false
	r.Clear(sky)
	w.Render(r)
	c = r.At(32, 24)
	assert.Greater(t, c.G, uint8(150), "centre pixel %v", c)
	assert.Less(t, c.R, uint8(50), "centre pixel %v", c)
}

func TestWorldMovementTiers(t *testing.T) {
	testCases := []struct {
		name    string
		yaw     float32
		pressed StaticInput
		want    mgl32.Vec3
	}{
		{"idle", 0, StaticInput{}, mgl32.Vec3{}},
		{"forward", 0, StaticInput{KeyForward: true}, mgl32.Vec3{0, 0, -3}},
		{"back", 0, StaticInput{KeyBack: true}, mgl32.Vec3{0, 0, 3}},
		{"strafe right", 0, StaticInput{KeyRight: true}, mgl32.Vec3{3, 0, 0}},
		{"up", 0, StaticInput{KeyUp: true}, mgl32.Vec3{0, 3, 0}},
		{"down", 0, StaticInput{KeyDown: true}, mgl32.Vec3{0, -3, 0}},
		{"run", 0, StaticInput{KeyForward: true, KeyRun: true}, mgl32.Vec3{0, 0, -6}},
		{"crawl", 0, StaticInput{KeyForward: true, KeyCrawl: true}, mgl32.Vec3{0, 0, -0.3}},
		{"crawl beats run", 0, StaticInput{KeyForward: true, KeyRun: true, KeyCrawl: true}, mgl32.Vec3{0, 0, -0.3}},
		{"run alone does nothing", 0, StaticInput{KeyRun: true}, mgl32.Vec3{}},
		{"opposite keys cancel", 0, StaticInput{KeyLeft: true, KeyRight: true}, mgl32.Vec3{}},
		{"forward after turning right", math.Pi / 2, StaticInput{KeyForward: true}, mgl32.Vec3{3, 0, 0}},
		{"diagonal keeps speed", 0, StaticInput{KeyForward: true, KeyLeft: true},
			mgl32.Vec3{-3 / math.Sqrt2, 0, -3 / math.Sqrt2}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cam := NewCamera(mgl32.Vec3{}, 70)
			cam.SetAngles(tc.yaw, 0)
			w := NewWorld(cam)
			w.Tick(1, tc.pressed)
			assertVecNear(t, tc.want, w.Camera.Position())
		})
	}
}

func TestWorldTickNilInput(t *testing.T) {
	w := NewWorld(NewCamera(mgl32.Vec3{1, 2, 3}, 70))
	w.AddEntity(NewEntity(mgl32.Vec3{}, mgl32.Vec3{1, 0, 0}, nil, Dynamic))
	w.Tick(0.5, nil)
	assertVecNear(t, mgl32.Vec3{1, 2, 3}, w.Camera.Position())
	assertVecNear(t, mgl32.Vec3{0.5, 0, 0}, w.Entities[0].Position)
}

func TestWorldTickCarriesEntityThroughPortal(t *testing.T) {
	w := newTestWorld()
	defer w.Release()
	ball := NewEntity(mgl32.Vec3{0.2, 0.1, 0.5}, mgl32.Vec3{0, 0, -1}, nil, Dynamic)
	w.AddEntity(ball)

	w.Tick(1, nil)

	// half a unit past A comes out half a unit past B, heading the way B's
	// rotation turns -Z
	assertVecNear(t, mgl32.Vec3{9.5, 0.1, -0.2}, ball.Position)
	assertVecNear(t, mgl32.Vec3{-1, 0, 0}, ball.Velocity)
}

func TestWorldCloneSharesMeshes(t *testing.T) {
	w := newTestWorld()
	box := w.Entities[0].Mesh
	require.Equal(t, 1, box.Refs())

	c := w.Clone()
	assert.Equal(t, 2, box.Refs())
	assert.NotSame(t, w.Entities[0], c.Entities[0])
	assert.NotSame(t, w.Portals.A, c.Portals.A)

	c.Entities[0].Position = mgl32.Vec3{9, 9, 9}
	assert.Equal(t, posBox, w.Entities[0].Position)

	c.Release()
	assert.Equal(t, 1, box.Refs())
	w.Release()
	assert.Equal(t, 0, box.Refs())
}
