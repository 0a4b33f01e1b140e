package goportal

import (
	"fmt"
	"image/color"
	"log/slog"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

var skyColor = color.RGBA{R: 0x87, G: 0xce, B: 0xeb, A: 0xff}

// App runs a Game inside an ebiten window.
//
// Escape toggles pause and releases the mouse, Q quits while paused, P
// toggles portal rendering and F1 toggles the debug overlay.
type App struct {
	game   *Game
	input  InputState
	raster *Raster
	frame  *ebiten.Image

	width, height int
	scale         int
	dt            float32
	mouseScale    float32

	cursorX, cursorY int
	haveCursor       bool
	showHUD          bool
}

// NewApp wraps game using the window, movement and controls sections of cfg.
func NewApp(game *Game, cfg Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	bindings, err := cfg.Bindings()
	if err != nil {
		return nil, err
	}
	w := cfg.Window
	rw, rh := max(w.Width/w.Scale, 1), max(w.Height/w.Scale, 1)
	return &App{
		game:       game,
		input:      ebitenInput{bindings: bindings},
		raster:     NewRaster(rw, rh),
		frame:      ebiten.NewImage(rw, rh),
		width:      w.Width,
		height:     w.Height,
		scale:      w.Scale,
		dt:         1 / float32(w.TPS),
		mouseScale: cfg.Movement.MouseScale,
		showHUD:    true,
	}, nil
}

func (a *App) Update() error {
	if a.game.ShouldQuit() {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		a.game.TogglePaused()
		a.haveCursor = false
	}
	if a.game.Paused() && inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		a.game.Quit()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		a.game.TogglePortalRendering()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF1) {
		a.showHUD = !a.showHUD
	}

	if a.game.Paused() {
		ebiten.SetCursorMode(ebiten.CursorModeVisible)
	} else {
		ebiten.SetCursorMode(ebiten.CursorModeCaptured)
		a.look()
	}

	a.game.Tick(a.dt, a.input)
	a.game.Swap()
	return nil
}

// look turns the camera by the cursor movement since the last update.
func (a *App) look() {
	x, y := ebiten.CursorPosition()
	if a.haveCursor {
		dx, dy := float32(x-a.cursorX), float32(y-a.cursorY)
		if dx != 0 || dy != 0 {
			a.game.Rotate(dx*a.mouseScale, dy*a.mouseScale)
		}
	}
	a.cursorX, a.cursorY = x, y
	a.haveCursor = true
}

func (a *App) Draw(screen *ebiten.Image) {
	a.raster.Clear(skyColor)
	a.raster.ResetStats()
	a.game.Render(a.raster)
	a.frame.WritePixels(a.raster.Pix())

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(a.scale), float64(a.scale))
	screen.DrawImage(a.frame, op)

	drawCrosshair(screen)
	if a.game.Paused() {
		drawPauseOverlay(screen)
	}
	if a.showHUD {
		a.drawDebug(screen)
	}
}

func (a *App) drawDebug(screen *ebiten.Image) {
	w := a.game.Current()
	cam := &w.Camera
	st := a.raster.Stats()
	p := cam.Position()
	msg := fmt.Sprintf("FPS %0.1f  TPS %0.1f\npos %.2f %.2f %.2f  yaw %.2f  pitch %.2f\ndraws %d  tris %d  frags %d\nportals %v",
		ebiten.ActualFPS(), ebiten.ActualTPS(),
		p.X(), p.Y(), p.Z(), cam.Yaw(), cam.Pitch(),
		st.Draws, st.Triangles, st.Fragments,
		w.Portals != nil && w.PortalRendering)
	ebitenutil.DebugPrint(screen, msg)
}

func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return a.width, a.height
}

// Run opens the window and blocks until the game quits. Both world
// snapshots are released on return.
func Run(cfg Config) error {
	world, err := cfg.BuildWorld()
	if err != nil {
		return err
	}
	game := NewGame(world)
	defer game.Close()

	app, err := NewApp(game, cfg)
	if err != nil {
		return err
	}
	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetWindowTitle(cfg.Window.Title)
	ebiten.SetTPS(cfg.Window.TPS)
	slog.Info("starting", "width", cfg.Window.Width, "height", cfg.Window.Height, "tps", cfg.Window.TPS)
	if err := ebiten.RunGame(app); err != nil {
		return fmt.Errorf("run game: %w", err)
	}
	return nil
}
