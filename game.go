package goportal

import (
	"log/slog"
	"sync/atomic"
)

// Game double buffers the World. Input and simulation mutate the next
// snapshot while rendering reads the current one; Swap publishes next as
// current and starts a fresh copy to mutate.
type Game struct {
	worlds  [2]*World
	current atomic.Uint32
	frame   uint64
	paused  bool
	quit    atomic.Bool
}

// NewGame takes ownership of world.
func NewGame(world *World) *Game {
	g := &Game{}
	g.worlds[0] = world
	g.worlds[1] = world.Clone()
	g.current.Store(0)
	return g
}

// Current is the settled snapshot to render.
func (g *Game) Current() *World {
	return g.worlds[g.current.Load()]
}

// Next is the snapshot being simulated.
func (g *Game) Next() *World {
	return g.worlds[1-g.current.Load()]
}

// Swap makes next the current world and replaces the old current with a copy of it.
func (g *Game) Swap() {
	next := 1 - g.current.Load()
	g.current.Store(next)
	old := g.worlds[1-next]
	g.worlds[1-next] = g.worlds[next].Clone()
	old.Release()
	g.frame++
}

// Frame counts swaps.
func (g *Game) Frame() uint64 {
	return g.frame
}

// Tick simulates dt seconds on the next world unless paused.
func (g *Game) Tick(dt float32, input InputState) {
	if g.paused {
		return
	}
	g.Next().Tick(dt, input)
}

// Rotate feeds a mouse delta to the next world's camera unless paused.
func (g *Game) Rotate(dx, dy float32) {
	if g.paused {
		return
	}
	g.Next().Camera.Rotate(dx, dy)
}

// Render draws the current world.
func (g *Game) Render(s Surface) {
	g.Current().Render(s)
}

// TogglePortalRendering flips the stencil pass on the next world.
func (g *Game) TogglePortalRendering() {
	w := g.Next()
	w.PortalRendering = !w.PortalRendering
	slog.Info("portal rendering", "enabled", w.PortalRendering)
}

func (g *Game) TogglePaused() {
	g.paused = !g.paused
	slog.Info("pause toggled", "paused", g.paused)
}

func (g *Game) Paused() bool {
	return g.paused
}

func (g *Game) Quit() {
	g.quit.Store(true)
}

func (g *Game) ShouldQuit() bool {
	return g.quit.Load()
}

// Close releases both snapshots.
func (g *Game) Close() {
	for i, w := range g.worlds {
		if w != nil {
			w.Release()
			g.worlds[i] = nil
		}
	}
}
