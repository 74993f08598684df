package grid

import "time"

// MouseButton identifies the button of a pointer event.
type MouseButton int

const (
	ButtonNone MouseButton = iota
	ButtonLeft
	ButtonRight
	ButtonMiddle
)

func (b MouseButton) String() string {
	switch b {
	case ButtonLeft:
		return "left"
	case ButtonRight:
		return "right"
	case ButtonMiddle:
		return "middle"
	}
	return "none"
}

// Modifiers is a bit set of held modifier keys.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModCtrl
	ModAlt
)

// Has reports whether every modifier in m is held.
func (m Modifiers) Has(mod Modifiers) bool { return m&mod == mod }

// PointerEvent is a pointer sample in grid pixels.
type PointerEvent struct {
	X, Y   int32
	Button MouseButton
	Mods   Modifiers
	Time   time.Time
}

// Point returns the event position.
func (e PointerEvent) Point() Point { return Point{X: e.X, Y: e.Y} }

// Key is a navigation or editing key.
type Key int

const (
	KeyNone Key = iota
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyTab
	KeyBacktab
	KeyEnter
	KeyEscape
	KeyF2
	KeySpace
	KeyDelete
	KeyRune
)

// KeyEvent is a key press. Rune is set for KeyRune.
type KeyEvent struct {
	Key  Key
	Rune rune
	Mods Modifiers
}
