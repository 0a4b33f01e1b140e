package goportal

import (
	"fmt"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
)

// Key is a logical movement action.
type Key int

const (
	KeyForward Key = iota
	KeyBack
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyRun
	KeyCrawl
)

var keyNames = map[Key]string{
	KeyForward: "forward",
	KeyBack:    "back",
	KeyLeft:    "left",
	KeyRight:   "right",
	KeyUp:      "up",
	KeyDown:    "down",
	KeyRun:     "run",
	KeyCrawl:   "crawl",
}

func (k Key) String() string {
	if s, ok := keyNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Key(%d)", int(k))
}

// ParseKey maps an action name such as "forward" to its Key.
func ParseKey(name string) (Key, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for k, s := range keyNames {
		if s == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown action %q", name)
}

// InputState is polled once per tick.
type InputState interface {
	IsPressed(key Key) bool
}

// StaticInput is a fixed set of pressed keys.
type StaticInput map[Key]bool

func (s StaticInput) IsPressed(key Key) bool {
	return s[key]
}

// KeyBindings maps actions to physical keys.
type KeyBindings map[Key][]ebiten.Key

func DefaultKeyBindings() KeyBindings {
	return KeyBindings{
		KeyForward: {ebiten.KeyW, ebiten.KeyArrowUp},
		KeyBack:    {ebiten.KeyS, ebiten.KeyArrowDown},
		KeyLeft:    {ebiten.KeyA, ebiten.KeyArrowLeft},
		KeyRight:   {ebiten.KeyD, ebiten.KeyArrowRight},
		KeyUp:      {ebiten.KeySpace, ebiten.KeyE},
		KeyDown:    {ebiten.KeyQ},
		KeyRun:     {ebiten.KeyShift},
		KeyCrawl:   {ebiten.KeyControl},
	}
}

// Bind replaces the physical keys for action. Key names follow ebiten, e.g. "W" or "ArrowUp".
func (b KeyBindings) Bind(action string, keys ...string) error {
	k, err := ParseKey(action)
	if err != nil {
		return err
	}
	var phys []ebiten.Key
	for _, name := range keys {
		var ek ebiten.Key
		if err := ek.UnmarshalText([]byte(name)); err != nil {
			return fmt.Errorf("binding %s: %w", action, err)
		}
		phys = append(phys, ek)
	}
	b[k] = phys
	return nil
}

// ebitenInput polls the keyboard through ebiten.
type ebitenInput struct {
	bindings KeyBindings
}

func (in ebitenInput) IsPressed(key Key) bool {
	for _, k := range in.bindings[key] {
		if ebiten.IsKeyPressed(k) {
			return true
		}
	}
	return false
}
