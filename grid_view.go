package main

import (
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	"github.com/rivo/tview"

	"vgrid/internal/dblib"
	"vgrid/internal/grid"
)

// gridStyles are the colors the grid is painted with.
type gridStyles struct {
	header     tcell.Style
	frozen     tcell.Style
	cell       tcell.Style
	selected   tcell.Style
	focused    tcell.Style
	lineNumber tcell.Style
	link       tcell.Style
	null       tcell.Style
	separator  tcell.Style
	marker     tcell.Style
}

func defaultGridStyles() gridStyles {
	base := tcell.StyleDefault.Background(tcell.ColorReset).Foreground(tcell.ColorReset)
	return gridStyles{
		header:     base.Bold(true),
		frozen:     base.Foreground(tcell.ColorGray),
		cell:       base,
		selected:   base.Background(tcell.ColorDarkBlue).Foreground(tcell.ColorWhite),
		focused:    base.Background(tcell.ColorBlue).Foreground(tcell.ColorWhite).Bold(true),
		lineNumber: base.Foreground(tcell.ColorGray),
		link:       base.Foreground(tcell.ColorSteelBlue).Underline(true),
		null:       base.Foreground(tcell.ColorGray).Italic(true),
		separator:  base.Foreground(tcell.ColorGray),
		marker:     base.Foreground(tcell.ColorYellow).Bold(true),
	}
}

// cellSource is what the view reads cell text and checkbox state from.
type cellSource interface {
	grid.DataSource
	grid.ButtonStateSource
}

// GridView is a tview primitive that hosts a grid engine. Grid coordinates
// are offsets from the view's inner rectangle, one pixel per terminal cell.
type GridView struct {
	*tview.Box
	grid    *grid.Grid
	source  cellSource
	styles  gridStyles
	editors map[grid.EditType]editorControl

	originX, originY int
	size             grid.Rect

	// sortIndicator returns the glyph for a header's sort button.
	sortIndicator func(colID int) rune
	// setFocus moves application focus. It is nil in headless use.
	setFocus func(p tview.Primitive)
}

// NewGridView wraps g. source must be the grid's data source.
func NewGridView(g *grid.Grid, source cellSource) *GridView {
	return &GridView{
		Box:     tview.NewBox(),
		grid:    g,
		source:  source,
		styles:  defaultGridStyles(),
		editors: make(map[grid.EditType]editorControl),
	}
}

// SetFocusFunc sets how the view moves application focus to and from its
// editors.
func (gv *GridView) SetFocusFunc(f func(p tview.Primitive)) *GridView {
	gv.setFocus = f
	return gv
}

// SetSortIndicatorFunc sets the glyph shown in each header button.
func (gv *GridView) SetSortIndicatorFunc(f func(colID int) rune) *GridView {
	gv.sortIndicator = f
	return gv
}

// RegisterEditor makes c the editor for edit type t.
func (gv *GridView) RegisterEditor(t grid.EditType, c editorControl) error {
	if err := gv.grid.RegisterControl(t, c); err != nil {
		return err
	}
	gv.editors[t] = c
	return nil
}

// RegisterDefaultEditors registers the text, enum and spin editors.
func (gv *GridView) RegisterDefaultEditors() error {
	for t, c := range map[grid.EditType]editorControl{
		editText: newTextControl(gv),
		editEnum: newEnumControl(gv),
		editSpin: newSpinControl(gv),
	} {
		if err := gv.RegisterEditor(t, c); err != nil {
			return err
		}
	}
	return nil
}

// activeEditor returns the visible editor, if any.
func (gv *GridView) activeEditor() editorControl {
	s := gv.grid.EditSession()
	if s == nil {
		return nil
	}
	if c, ok := gv.editors[s.Type]; ok && c.Visible() {
		return c
	}
	return nil
}

func (gv *GridView) toScreen(p grid.Point) (int, int) {
	return gv.originX + int(p.X), gv.originY + int(p.Y)
}

func (gv *GridView) toGrid(x, y int) grid.Point {
	return grid.Point{X: int32(x - gv.originX), Y: int32(y - gv.originY)}
}

func (gv *GridView) focusEditor(p tview.Primitive) {
	if gv.setFocus != nil {
		gv.setFocus(p)
	}
}

func (gv *GridView) releaseEditorFocus() {
	if gv.setFocus != nil {
		gv.setFocus(gv)
	}
}

func (gv *GridView) editorKey(event *tcell.EventKey) bool {
	ev, ok := translateKey(event)
	if !ok {
		return false
	}
	return gv.grid.HandleKey(ev)
}

// syncRect hands the inner rectangle to the grid when it changed.
func (gv *GridView) syncRect() {
	x, y, width, height := gv.GetInnerRect()
	gv.originX, gv.originY = x, y
	r := grid.Rect{W: int32(max(width, 0)), H: int32(max(height, 0))}
	if r != gv.size {
		gv.size = r
		gv.grid.SetRect(r)
	}
}

// Draw implements tview.Primitive.
func (gv *GridView) Draw(screen tcell.Screen) {
	gv.Box.DrawForSubclass(screen, gv)
	gv.syncRect()
	if gv.size.Empty() {
		return
	}

	gv.grid.Paint(&tcellRenderer{view: gv, screen: screen})

	if x, ok := gv.grid.InsertMarker(); ok {
		for y := int32(0); y < gv.size.H; y++ {
			sx, sy := gv.toScreen(grid.Point{X: x, Y: y})
			screen.SetContent(sx, sy, '┃', nil, gv.styles.marker)
		}
	}

	if ed := gv.activeEditor(); ed != nil {
		ed.place()
		ed.Primitive().Draw(screen)
	}
}

// Focus implements tview.Primitive. An open editor takes the focus.
func (gv *GridView) Focus(delegate func(p tview.Primitive)) {
	if ed := gv.activeEditor(); ed != nil {
		delegate(ed.Primitive())
		return
	}
	gv.Box.Focus(delegate)
}

// HasFocus implements tview.Primitive.
func (gv *GridView) HasFocus() bool {
	if ed := gv.activeEditor(); ed != nil && ed.Primitive().HasFocus() {
		return true
	}
	return gv.Box.HasFocus()
}

// InputHandler translates key presses for the grid.
func (gv *GridView) InputHandler() func(event *tcell.EventKey, setFocus func(p tview.Primitive)) {
	return gv.WrapInputHandler(func(event *tcell.EventKey, setFocus func(p tview.Primitive)) {
		if ed := gv.activeEditor(); ed != nil {
			if h := ed.Primitive().InputHandler(); h != nil {
				h(event, setFocus)
				return
			}
		}
		if ev, ok := translateKey(event); ok {
			breadcrumbs.RecordKey(event.Name())
			gv.grid.HandleKey(ev)
		}
	})
}

// MouseHandler feeds pointer events to the grid. While the grid holds a
// capture the view keeps receiving events from outside its rectangle.
func (gv *GridView) MouseHandler() func(action tview.MouseAction, event *tcell.EventMouse, setFocus func(p tview.Primitive)) (bool, tview.Primitive) {
	return gv.WrapMouseHandler(func(action tview.MouseAction, event *tcell.EventMouse, setFocus func(p tview.Primitive)) (bool, tview.Primitive) {
		x, y := event.Position()
		capturing := gv.grid.Capture().Active()
		if !capturing && !gv.InRect(x, y) {
			return false, nil
		}

		if ed := gv.activeEditor(); ed != nil && !capturing && (inPrimitive(ed.Primitive(), x, y) || popupOpen(ed)) {
			switch action {
			case tview.MouseScrollUp, tview.MouseScrollDown:
				if s, ok := ed.(stepper); ok {
					if action == tview.MouseScrollUp {
						s.Step(1)
					} else {
						s.Step(-1)
					}
					return true, nil
				}
			}
			if h := ed.Primitive().MouseHandler(); h != nil {
				return h(action, event, setFocus)
			}
		}

		p := gv.toGrid(x, y)
		ev := grid.PointerEvent{X: p.X, Y: p.Y, Mods: translateMods(event.Modifiers()), Time: event.When()}
		switch action {
		case tview.MouseLeftDown, tview.MouseRightDown, tview.MouseMiddleDown:
			setFocus(gv)
			ev.Button = pressedButton(action)
			gv.grid.PointerDown(ev)
			if c := gv.grid.Capture(); c.Active() {
				breadcrumbs.RecordGesture(c.Hit.Area.String(), c.Row, c.Col)
			}
		case tview.MouseMove:
			gv.grid.PointerMove(ev)
		case tview.MouseLeftUp:
			ev.Button = grid.ButtonLeft
			gv.grid.PointerUp(ev)
		case tview.MouseRightUp:
			ev.Button = grid.ButtonRight
			gv.grid.PointerUp(ev)
		case tview.MouseMiddleUp:
			ev.Button = grid.ButtonMiddle
			gv.grid.PointerUp(ev)
		case tview.MouseScrollUp:
			gv.grid.ScrollRows(-3)
		case tview.MouseScrollDown:
			gv.grid.ScrollRows(3)
		case tview.MouseScrollLeft:
			gv.grid.ScrollColumns(-1)
		case tview.MouseScrollRight:
			gv.grid.ScrollColumns(1)
		}

		if gv.grid.Capture().Active() {
			return true, gv
		}
		return true, nil
	})
}

func pressedButton(action tview.MouseAction) grid.MouseButton {
	switch action {
	case tview.MouseRightDown:
		return grid.ButtonRight
	case tview.MouseMiddleDown:
		return grid.ButtonMiddle
	}
	return grid.ButtonLeft
}

func popupOpen(c editorControl) bool {
	p, ok := c.(popupControl)
	return ok && p.popupOpen()
}

func inPrimitive(p tview.Primitive, x, y int) bool {
	px, py, w, h := p.GetRect()
	return x >= px && x < px+w && y >= py && y < py+h
}

func translateMods(m tcell.ModMask) grid.Modifiers {
	var mods grid.Modifiers
	if m&tcell.ModShift != 0 {
		mods |= grid.ModShift
	}
	if m&tcell.ModCtrl != 0 {
		mods |= grid.ModCtrl
	}
	if m&tcell.ModAlt != 0 {
		mods |= grid.ModAlt
	}
	return mods
}

var keyMap = map[tcell.Key]grid.Key{
	tcell.KeyUp:      grid.KeyUp,
	tcell.KeyDown:    grid.KeyDown,
	tcell.KeyLeft:    grid.KeyLeft,
	tcell.KeyRight:   grid.KeyRight,
	tcell.KeyHome:    grid.KeyHome,
	tcell.KeyEnd:     grid.KeyEnd,
	tcell.KeyPgUp:    grid.KeyPageUp,
	tcell.KeyPgDn:    grid.KeyPageDown,
	tcell.KeyTab:     grid.KeyTab,
	tcell.KeyBacktab: grid.KeyBacktab,
	tcell.KeyEnter:   grid.KeyEnter,
	tcell.KeyEscape:  grid.KeyEscape,
	tcell.KeyF2:      grid.KeyF2,
	tcell.KeyDelete:  grid.KeyDelete,
}

// translateKey maps a terminal key to a grid key. Control letters arrive as
// their own key codes and become the letter with ModCtrl.
func translateKey(event *tcell.EventKey) (grid.KeyEvent, bool) {
	mods := translateMods(event.Modifiers())
	key := event.Key()
	if k, ok := keyMap[key]; ok {
		return grid.KeyEvent{Key: k, Mods: mods}, true
	}
	if key == tcell.KeyRune {
		if event.Rune() == ' ' {
			return grid.KeyEvent{Key: grid.KeySpace, Mods: mods}, true
		}
		return grid.KeyEvent{Key: grid.KeyRune, Rune: event.Rune(), Mods: mods}, true
	}
	if key >= tcell.KeyCtrlA && key <= tcell.KeyCtrlZ {
		return grid.KeyEvent{Key: grid.KeyRune, Rune: rune('a' + key - tcell.KeyCtrlA), Mods: mods | grid.ModCtrl}, true
	}
	return grid.KeyEvent{}, false
}

// tcellRenderer paints grid cells onto a tcell screen.
type tcellRenderer struct {
	view   *GridView
	screen tcell.Screen
}

func (r *tcellRenderer) fill(rect grid.Rect, style tcell.Style) {
	for y := rect.Y; y < rect.Bottom(); y++ {
		for x := rect.X; x < rect.Right(); x++ {
			sx, sy := r.view.toScreen(grid.Point{X: x, Y: y})
			r.screen.SetContent(sx, sy, ' ', nil, style)
		}
	}
}

// text writes s starting at x on row y, drawing only inside clip and
// stopping at limit.
func (r *tcellRenderer) text(s string, x, y, limit int32, clip grid.Rect, style tcell.Style) {
	for _, ch := range s {
		w := int32(runewidth.RuneWidth(ch))
		if w == 0 {
			continue
		}
		if x+w > limit {
			return
		}
		if x >= clip.X && x+w <= clip.Right() {
			sx, sy := r.view.toScreen(grid.Point{X: x, Y: y})
			r.screen.SetContent(sx, sy, ch, nil, style)
		}
		x += w
	}
}

// separator draws the column line right of bounds.
func (r *tcellRenderer) separator(bounds, clip grid.Rect) {
	x := bounds.Right()
	if x >= r.view.size.W || x < clip.X || x > clip.Right() {
		return
	}
	for y := clip.Y; y < clip.Bottom(); y++ {
		sx, sy := r.view.toScreen(grid.Point{X: x, Y: y})
		r.screen.SetContent(sx, sy, tview.Borders.Vertical, nil, r.view.styles.separator)
	}
}

func (r *tcellRenderer) RenderHeader(h grid.PaintHeader) {
	st := r.view.styles
	style := st.header
	if h.State.Has(grid.StateSelected) || h.State.Has(grid.StatePressed) {
		style = style.Reverse(true)
	}
	r.fill(h.Rect, style)

	pad := int32(1)
	limit := h.Rect.Right() - pad
	if !h.Button.Empty() {
		limit = h.Button.X
		glyph := '↕'
		if r.view.sortIndicator != nil {
			glyph = r.view.sortIndicator(h.ColID)
		}
		bstyle := style
		if h.State.Has(grid.StatePressed) {
			bstyle = bstyle.Reverse(false)
		}
		r.text(string(glyph), h.Button.X, h.Button.Y, h.Button.Right(), h.Rect, bstyle)
	}
	r.text(h.Title, h.Rect.X+pad, h.Rect.Y, limit, h.Rect, style)
	r.separator(h.Rect, h.Rect)
}

func (r *tcellRenderer) RenderCell(c grid.PaintCell) {
	st := r.view.styles
	style := st.cell
	switch c.Type {
	case grid.ColumnLineNumber:
		style = st.lineNumber
	case grid.ColumnHyperlink:
		style = st.link
	}
	switch {
	case c.State.Has(grid.StateFocused):
		style = st.focused
	case c.State.Has(grid.StateSelected):
		style = st.selected
	case c.State.Has(grid.StateFrozen) && c.Type != grid.ColumnLineNumber:
		fg, _, _ := st.frozen.Decompose()
		style = style.Foreground(fg)
	}
	r.fill(c.Rect, style)
	defer r.separator(c.Bounds, c.Rect)

	if c.State.Has(grid.StateEditing) {
		return
	}

	pad := int32(1)
	start, limit := c.Bounds.X+pad, c.Bounds.Right()-pad
	var text string
	switch c.Type {
	case grid.ColumnCheckBox:
		text = "[ ]"
		if r.view.source.CellButtonState(c.Row, c.ColID) {
			text = "[x]"
		}
		if c.State.Has(grid.StatePressed) {
			style = style.Reverse(true)
		}
	case grid.ColumnLineNumber:
		text = r.view.source.CellDisplayValue(c.Row, c.ColID)
		start = max(start, limit-int32(runewidth.StringWidth(text)))
	default:
		text = r.view.source.CellDisplayValue(c.Row, c.ColID)
		if text == dblib.NullDisplay && c.Type == grid.ColumnText && !c.State.Has(grid.StateSelected) {
			style = st.null
		}
	}
	r.text(text, start, c.Bounds.Y, limit, c.Rect, style)
}
