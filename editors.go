package main

import (
	"slices"
	"strconv"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"vgrid/internal/grid"
)

// controlHost is the view that embeds editor controls.
type controlHost interface {
	toScreen(p grid.Point) (x, y int)
	focusEditor(p tview.Primitive)
	releaseEditorFocus()
	// editorKey offers a key to the grid first and reports whether the grid
	// consumed it.
	editorKey(event *tcell.EventKey) bool
}

// editorControl is a grid control backed by a tview primitive.
type editorControl interface {
	grid.Control
	Primitive() tview.Primitive
	Visible() bool
	place()
}

// stepper is implemented by controls that react to the scroll wheel.
type stepper interface {
	Step(delta int)
}

// popupControl is implemented by controls that can open a popup outside
// their cell. While it is open the control owns the pointer and the keys.
type popupControl interface {
	popupOpen() bool
}

// baseControl carries the state every embedded editor shares.
type baseControl struct {
	host    controlHost
	prim    tview.Primitive
	bounds  grid.Rect
	visible bool
	filling bool
	changed func()
}

func (b *baseControl) SetContentsChangedFunc(f func()) { b.changed = f }

func (b *baseControl) notify() {
	if !b.filling && b.changed != nil {
		b.changed()
	}
}

// fill runs f without reporting content changes.
func (b *baseControl) fill(f func()) {
	b.filling = true
	defer func() { b.filling = false }()
	f()
}

func (b *baseControl) SetBounds(r grid.Rect) {
	b.bounds = r
	b.place()
}

// place moves the primitive over its cell. The host origin can change
// between SetBounds and the next draw, so the view calls it again.
func (b *baseControl) place() {
	if b.host == nil {
		return
	}
	x, y := b.host.toScreen(grid.Point{X: b.bounds.X, Y: b.bounds.Y})
	b.prim.SetRect(x, y, int(b.bounds.W), int(b.bounds.H))
}

func (b *baseControl) Show(focus bool) {
	b.visible = true
	if focus && b.host != nil {
		b.host.focusEditor(b.prim)
	}
}

func (b *baseControl) Hide() {
	if !b.visible {
		return
	}
	b.visible = false
	if b.host != nil {
		b.host.releaseEditorFocus()
	}
}

func (b *baseControl) Visible() bool { return b.visible }

func (b *baseControl) Primitive() tview.Primitive { return b.prim }

func (b *baseControl) click(p grid.Point, handler func(action tview.MouseAction, event *tcell.EventMouse, setFocus func(p tview.Primitive)) (bool, tview.Primitive)) {
	if b.host == nil || handler == nil {
		return
	}
	x, y := b.host.toScreen(p)
	ev := tcell.NewEventMouse(x, y, tcell.Button1, tcell.ModNone)
	handler(tview.MouseLeftDown, ev, b.host.focusEditor)
}

func (b *baseControl) capture(event *tcell.EventKey) *tcell.EventKey {
	if b.host != nil && b.host.editorKey(event) {
		return nil
	}
	return event
}

// textControl edits free text in a single-line input field.
type textControl struct {
	baseControl
	field *tview.InputField
}

func newTextControl(host controlHost) *textControl {
	c := &textControl{}
	c.init(host)
	c.field.SetInputCapture(c.capture)
	return c
}

func (c *textControl) init(host controlHost) {
	c.field = tview.NewInputField()
	c.host, c.prim = host, c.field
	c.field.SetFieldBackgroundColor(tcell.ColorDarkSlateGray).
		SetFieldTextColor(tcell.ColorWhite)
	c.field.SetChangedFunc(func(string) { c.notify() })
}

func (c *textControl) ClearData() {
	c.fill(func() { c.field.SetText("") })
}

func (c *textControl) SetData(s string) {
	c.fill(func() { c.field.SetText(s) })
}

func (c *textControl) Data() string { return c.field.GetText() }

func (c *textControl) WantsInitialClick() bool { return true }

// HandleInitialClick places the caret under the click.
func (c *textControl) HandleInitialClick(p grid.Point) {
	c.click(p, c.field.MouseHandler())
}

// spinControl edits integers. Alt or Ctrl with Up/Down, or the scroll
// wheel, steps the value.
type spinControl struct {
	textControl
}

func newSpinControl(host controlHost) *spinControl {
	c := &spinControl{}
	c.init(host)
	c.field.SetAcceptanceFunc(tview.InputFieldInteger)
	c.field.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Modifiers()&(tcell.ModAlt|tcell.ModCtrl) != 0 {
			switch event.Key() {
			case tcell.KeyUp:
				c.Step(1)
				return nil
			case tcell.KeyDown:
				c.Step(-1)
				return nil
			}
		}
		return c.capture(event)
	})
	return c
}

func (c *spinControl) WantsInitialClick() bool { return false }

// Step adds delta to the value. Text that is not an integer counts as 0.
func (c *spinControl) Step(delta int) {
	n, _ := strconv.ParseInt(c.field.GetText(), 10, 64)
	c.field.SetText(strconv.FormatInt(n+int64(delta), 10))
}

// enumControl picks one of a column's allowed values.
type enumControl struct {
	baseControl
	dropDown *tview.DropDown
	options  []string
	// raw keeps a value that matches no option, e.g. NULL.
	raw string
}

func newEnumControl(host controlHost) *enumControl {
	c := &enumControl{dropDown: tview.NewDropDown()}
	c.host, c.prim = host, c.dropDown
	c.dropDown.SetFieldBackgroundColor(tcell.ColorDarkSlateGray).
		SetFieldTextColor(tcell.ColorWhite)
	c.dropDown.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if c.dropDown.IsOpen() {
			return event
		}
		// Space and Alt+Down open the list.
		if event.Key() == tcell.KeyRune && event.Rune() == ' ' {
			return event
		}
		if event.Key() == tcell.KeyDown && event.Modifiers()&tcell.ModAlt != 0 {
			return event
		}
		return c.capture(event)
	})
	return c
}

// SetOptions replaces the values offered by the list.
func (c *enumControl) SetOptions(values []string) {
	c.options = slices.Clone(values)
	c.fill(func() {
		c.dropDown.SetOptions(c.options, func(string, int) { c.notify() })
	})
}

func (c *enumControl) ClearData() {
	c.raw = ""
	c.fill(func() { c.dropDown.SetCurrentOption(-1) })
}

func (c *enumControl) SetData(s string) {
	c.raw = s
	c.fill(func() { c.dropDown.SetCurrentOption(slices.Index(c.options, s)) })
}

func (c *enumControl) Data() string {
	if i, text := c.dropDown.GetCurrentOption(); i >= 0 {
		return text
	}
	return c.raw
}

func (c *enumControl) WantsInitialClick() bool { return true }

func (c *enumControl) popupOpen() bool { return c.dropDown.IsOpen() }

// HandleInitialClick drops the list down.
func (c *enumControl) HandleInitialClick(p grid.Point) {
	c.click(p, c.dropDown.MouseHandler())
}
