// Package grid is a virtualized, editable data grid engine. It owns the
// viewport over a very large row space, the selection blocks, and the
// pointer and keyboard state machine that drives both, including the
// lifecycle of embedded cell editors. Painting, the editor widgets and the
// cell data live with the host and are reached through small interfaces.
//
// A Grid is single-threaded: every method must be called from the host's
// event thread. Timers reach the grid through the Scheduler, which is
// expected to marshal callbacks onto that thread.
package grid

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/mattn/go-runewidth"
)

// TextMeasurer measures display text in grid pixels.
type TextMeasurer interface {
	TextWidth(s string) int32
}

// CellWidthMeasurer measures text in terminal cells, scaled by a fixed
// character width. It is the default measurer.
type CellWidthMeasurer struct {
	CharWidth int32
}

func (m CellWidthMeasurer) TextWidth(s string) int32 {
	return int32(runewidth.StringWidth(s)) * max(m.CharWidth, 1)
}

// Options configure a Grid.
type Options struct {
	Mode SelectionMode

	CellHeight      int32
	HeaderHeight    int32
	ColumnLineWidth int32
	RowLineWidth    int32
	CellPadding     int32

	FrozenColumns int32
	FrozenRows    int64

	// DragThreshold is the distance the pointer must travel before a
	// press becomes a drag.
	DragThreshold int32
	// ResizeTolerance is how far from a column border a press still
	// grabs it.
	ResizeTolerance   int32
	HeaderButtonWidth int32
	AverageCharWidth  int32

	HyperlinkDelay     time.Duration
	AutoScrollInterval time.Duration

	// EditOnNavigate starts an edit session when keyboard navigation lands
	// on an editable cell.
	EditOnNavigate bool

	Logger    *slog.Logger
	Scheduler Scheduler
	Measurer  TextMeasurer
}

// DefaultOptions returns pixel-oriented defaults.
func DefaultOptions() Options {
	return Options{
		Mode:               CellBlocks,
		CellHeight:         20,
		HeaderHeight:       22,
		ColumnLineWidth:    1,
		RowLineWidth:       1,
		CellPadding:        2,
		DragThreshold:      4,
		ResizeTolerance:    2,
		HeaderButtonWidth:  16,
		AverageCharWidth:   7,
		HyperlinkDelay:     500 * time.Millisecond,
		AutoScrollInterval: 50 * time.Millisecond,
		EditOnNavigate:     true,
	}
}

// Grid wires the viewport, the selection and the interaction state machine.
type Grid struct {
	opts     Options
	log      *slog.Logger
	sched    Scheduler
	measurer TextMeasurer

	source   DataSource
	controls ControlRegistry
	cols     *ColumnSet
	vp       *Viewport
	sel      *SelectionManager
	capture  Capture
	edit     *EditSession

	hyperlinkTimer  *deferred
	autoScrollTimer *deferred

	onSelectionChanged   func(blocks []CellBlock)
	onColumnWidthChanged func(colID int, width int32)
	onColumnsReordered   func(from, to int32)
	onHeaderButton       func(colID int, button MouseButton, area Rect)
	onCellClicking       func(row int64, colID int, rect Rect, button MouseButton) bool
	onCellClicked        func(row int64, colID int, rect Rect, button MouseButton)
	onHyperlink          func(row int64, colID int, text string)
	onContentsChanged    func(row int64, colID int, c Control)
	onInvalidate         func(r Rect)
	onScroll             func(h, v ScrollRange)
	onError              func(err error)
	columnDraggable      func(colID int) bool
	customCell           func(ev CustomCellEvent) error
}

// New creates a grid over source with the given columns.
func New(source DataSource, cols []Column, opts Options) (*Grid, error) {
	if source == nil {
		return nil, fmt.Errorf("nil data source: %w", ErrInvalidArgument)
	}
	set, err := NewColumnSet(cols)
	if err != nil {
		return nil, err
	}
	g := &Grid{
		opts:     opts,
		log:      opts.Logger,
		sched:    opts.Scheduler,
		measurer: opts.Measurer,
		source:   source,
		controls: make(ControlRegistry),
		cols:     set,
		sel:      NewSelectionManager(opts.Mode),
	}
	if g.log == nil {
		g.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if g.sched == nil {
		g.sched = NewScheduler(nil)
	}
	if g.measurer == nil {
		g.measurer = CellWidthMeasurer{CharWidth: opts.AverageCharWidth}
	}
	g.capture.Reset()

	g.vp = NewViewport(opts.CellHeight, opts.HeaderHeight, opts.ColumnLineWidth, opts.RowLineWidth)
	if err := g.vp.SetColumnWidths(set.Widths()); err != nil {
		return nil, err
	}
	if err := g.vp.SetRowCount(source.RowCount()); err != nil {
		return nil, err
	}
	if err := g.vp.SetFirstScrollableColumn(min(opts.FrozenColumns, set.Len())); err != nil {
		return nil, err
	}
	if err := g.vp.SetFirstScrollableRow(opts.FrozenRows); err != nil {
		return nil, err
	}
	return g, nil
}

// Viewport exposes the grid's viewport for read access.
func (g *Grid) Viewport() *Viewport { return g.vp }

// Selection exposes the grid's selection for read access. Mutations that
// should notify observers go through Grid methods.
func (g *Grid) Selection() *SelectionManager { return g.sel }

// Capture returns a copy of the current gesture record.
func (g *Grid) Capture() Capture { return g.capture }

// Columns returns the columns in UI order.
func (g *Grid) Columns() []Column { return g.cols.Slice() }

// Column returns the column at UI position col.
func (g *Grid) Column(col int32) (Column, bool) {
	if !g.cols.Valid(col) {
		return Column{}, false
	}
	return g.cols.At(col), true
}

// ColumnPosition maps a storage ID to its UI position.
func (g *Grid) ColumnPosition(colID int) (int32, bool) { return g.cols.Position(colID) }

// Logger returns the grid's logger.
func (g *Grid) Logger() *slog.Logger { return g.log }

// SetSelectionChangedFunc is called with the blocks after every selection
// change made through the grid.
func (g *Grid) SetSelectionChangedFunc(f func(blocks []CellBlock)) *Grid {
	g.onSelectionChanged = f
	return g
}

// SetColumnWidthChangedFunc is called when a resize gesture changed a width.
func (g *Grid) SetColumnWidthChangedFunc(f func(colID int, width int32)) *Grid {
	g.onColumnWidthChanged = f
	return g
}

// SetColumnsReorderedFunc is called with UI positions after a column moved.
func (g *Grid) SetColumnsReorderedFunc(f func(from, to int32)) *Grid {
	g.onColumnsReordered = f
	return g
}

// SetHeaderButtonClickedFunc is called when a header button is released
// over itself.
func (g *Grid) SetHeaderButtonClickedFunc(f func(colID int, button MouseButton, area Rect)) *Grid {
	g.onHeaderButton = f
	return g
}

// SetCellClickingFunc is called before a press changes the selection.
// Returning false vetoes the press.
func (g *Grid) SetCellClickingFunc(f func(row int64, colID int, rect Rect, button MouseButton) bool) *Grid {
	g.onCellClicking = f
	return g
}

// SetCellClickedFunc is called when a press on a cell is released.
func (g *Grid) SetCellClickedFunc(f func(row int64, colID int, rect Rect, button MouseButton)) *Grid {
	g.onCellClicked = f
	return g
}

// SetHyperlinkClickedFunc is called when a hyperlink is activated.
func (g *Grid) SetHyperlinkClickedFunc(f func(row int64, colID int, text string)) *Grid {
	g.onHyperlink = f
	return g
}

// SetControlContentsChangedFunc relays the active control's change
// notification.
func (g *Grid) SetControlContentsChangedFunc(f func(row int64, colID int, c Control)) *Grid {
	g.onContentsChanged = f
	return g
}

// SetInvalidateFunc asks the host to repaint r. An empty Rect means the
// whole grid.
func (g *Grid) SetInvalidateFunc(f func(r Rect)) *Grid {
	g.onInvalidate = f
	return g
}

// SetScrollChangedFunc reports new scrollbar states.
func (g *Grid) SetScrollChangedFunc(f func(h, v ScrollRange)) *Grid {
	g.onScroll = f
	return g
}

// SetErrorFunc receives failures recovered from host callbacks.
func (g *Grid) SetErrorFunc(f func(err error)) *Grid {
	g.onError = f
	return g
}

// SetColumnDraggableFunc decides whether a header may be dragged to
// reorder columns. Without it no column can be dragged.
func (g *Grid) SetColumnDraggableFunc(f func(colID int) bool) *Grid {
	g.columnDraggable = f
	return g
}

// SetCustomCellFunc handles pointer gestures over custom cells. An error
// aborts the gesture.
func (g *Grid) SetCustomCellFunc(f func(ev CustomCellEvent) error) *Grid {
	g.customCell = f
	return g
}

// SetRect moves or resizes the grid's client rectangle.
func (g *Grid) SetRect(r Rect) {
	g.vp.SetRect(r)
	g.viewportChanged()
}

// SetSelectionMode switches the mode and clears the selection.
func (g *Grid) SetSelectionMode(mode SelectionMode) {
	g.sel.Clear(false)
	g.sel.SetMode(mode)
	g.selectionChanged()
}

// SetFrozenColumns changes the frozen column prefix.
func (g *Grid) SetFrozenColumns(n int32) error {
	if err := g.vp.SetFirstScrollableColumn(n); err != nil {
		return err
	}
	g.viewportChanged()
	return nil
}

// SetFrozenRows changes the frozen row prefix.
func (g *Grid) SetFrozenRows(n int64) error {
	if err := g.vp.SetFirstScrollableRow(n); err != nil {
		return err
	}
	g.viewportChanged()
	return nil
}

// Refresh re-reads the row count from the data source.
func (g *Grid) Refresh() error {
	return g.SetRowCount(g.source.RowCount())
}

// SetRowCount changes the number of rows, keeping the scroll position and
// dropping selection and edit state past the new end.
func (g *Grid) SetRowCount(n int64) error {
	if err := g.vp.SetRowCount(n); err != nil {
		return err
	}
	if g.edit != nil && g.edit.Row >= n {
		g.CancelEdit()
	}
	if g.sel.TruncateRows(n) {
		g.selectionChanged()
	}
	g.viewportChanged()
	return nil
}

// SetColumnWidth resizes the column at UI position col.
func (g *Grid) SetColumnWidth(col, width int32) error {
	if err := g.vp.SetColumnWidth(col, width); err != nil {
		return err
	}
	g.cols.setWidth(col, g.vp.ColumnWidth(col))
	g.viewportChanged()
	return nil
}

// SetColumns replaces every column, clearing the selection.
func (g *Grid) SetColumns(cols []Column) error {
	g.CancelEdit()
	g.sel.Clear(true)
	if err := g.cols.Reset(cols); err != nil {
		return err
	}
	if err := g.vp.SetColumnWidths(g.cols.Widths()); err != nil {
		return err
	}
	g.selectionChanged()
	g.viewportChanged()
	return nil
}

// InsertColumn adds c at UI position at. The selection is cleared because
// block columns are UI positions.
func (g *Grid) InsertColumn(at int32, c Column) error {
	if err := g.cols.Insert(at, c); err != nil {
		return err
	}
	if err := g.vp.InsertColumn(at, c.Width); err != nil {
		_, _ = g.cols.Delete(at)
		return err
	}
	g.clearSelectionKeepFocus(func(col int32) int32 {
		if col >= at {
			return col + 1
		}
		return col
	})
	g.viewportChanged()
	return nil
}

// DeleteColumn removes the column at UI position at. The selection is
// cleared before the column goes.
func (g *Grid) DeleteColumn(at int32) error {
	if !g.cols.Valid(at) {
		return fmt.Errorf("delete column %d: %w", at, ErrInvalidArgument)
	}
	if g.edit != nil && g.edit.ColID == g.cols.ID(at) {
		g.CancelEdit()
	}
	g.clearSelectionKeepFocus(func(col int32) int32 {
		switch {
		case col == at:
			return min(col, g.cols.Len()-2)
		case col > at:
			return col - 1
		}
		return col
	})
	if _, err := g.cols.Delete(at); err != nil {
		return err
	}
	if err := g.vp.DeleteColumn(at); err != nil {
		return err
	}
	g.viewportChanged()
	return nil
}

// MoveColumn moves the column at UI position from to position to.
func (g *Grid) MoveColumn(from, to int32) error {
	if err := g.cols.Move(from, to); err != nil {
		return err
	}
	if err := g.vp.MoveColumn(from, to); err != nil {
		return err
	}
	g.clearSelectionKeepFocus(func(col int32) int32 {
		switch {
		case col == from:
			return to
		case from < to && col > from && col <= to:
			return col - 1
		case to < from && col >= to && col < from:
			return col + 1
		}
		return col
	})
	g.log.Debug("column moved", slog.Int("from", int(from)), slog.Int("to", int(to)))
	if g.onColumnsReordered != nil {
		g.onColumnsReordered(from, to)
	}
	g.viewportChanged()
	return nil
}

// clearSelectionKeepFocus drops every block and remaps the focus column.
func (g *Grid) clearSelectionKeepFocus(remap func(col int32) int32) {
	row, col := g.sel.CurrentCell()
	g.sel.Clear(true)
	if col >= 0 {
		if col = remap(col); col >= 0 {
			g.sel.SetCurrentCell(row, col)
		}
	}
	g.selectionChanged()
}

// ScrollRows scrolls vertically by delta rows.
func (g *Grid) ScrollRows(delta int64) bool {
	if !g.vp.ScrollRowsBy(delta) {
		return false
	}
	g.viewportChanged()
	return true
}

// ScrollColumns scrolls horizontally by delta columns.
func (g *Grid) ScrollColumns(delta int32) bool {
	if !g.vp.ScrollColumnsBy(delta) {
		return false
	}
	g.viewportChanged()
	return true
}

// SetHScrollPos moves the horizontal scrollbar.
func (g *Grid) SetHScrollPos(pos int64) bool {
	if !g.vp.ScrollTo(pos) {
		return false
	}
	g.viewportChanged()
	return true
}

// SetVScrollPos moves the vertical scrollbar.
func (g *Grid) SetVScrollPos(pos int64) bool {
	if !g.vp.ScrollRowsTo(pos) {
		return false
	}
	g.viewportChanged()
	return true
}

// EnsureCellIsVisible scrolls (row, col) into view.
func (g *Grid) EnsureCellIsVisible(row int64, col int32, makeFirstColFullyVisible bool) bool {
	if !g.vp.EnsureCellIsVisible(row, col, makeFirstColFullyVisible) {
		return false
	}
	g.viewportChanged()
	return true
}

// CellRect returns the on-screen rectangle of a cell, or the zero Rect.
func (g *Grid) CellRect(row int64, col int32) Rect { return g.vp.CellRect(row, col) }

// viewportChanged follows every change of the visible window.
func (g *Grid) viewportChanged() {
	g.repositionEditor()
	if g.onScroll != nil {
		g.onScroll(g.vp.HScroll(), g.vp.VScroll())
	}
	g.invalidate(Rect{})
}

func (g *Grid) invalidate(r Rect) {
	if g.onInvalidate != nil {
		g.onInvalidate(r)
	}
}

func (g *Grid) selectionChanged() {
	if g.onSelectionChanged != nil {
		g.onSelectionChanged(g.sel.Blocks())
	}
	g.invalidate(Rect{})
}

// SelectAll selects every cell in multi-block modes.
func (g *Grid) SelectAll() bool {
	if !g.sel.SelectAll(g.vp.RowCount(), g.cols.Len()) {
		return false
	}
	g.selectionChanged()
	return true
}

// SetSelection replaces the selection.
func (g *Grid) SetSelection(blocks []CellBlock) error {
	for _, b := range blocks {
		if b.RowEnd >= g.vp.RowCount() || b.ColEnd >= g.cols.Len() {
			return fmt.Errorf("block %v outside %d rows x %d columns: %w", b, g.vp.RowCount(), g.cols.Len(), ErrInvalidArgument)
		}
	}
	if err := g.sel.SetBlocks(blocks); err != nil {
		return err
	}
	g.selectionChanged()
	return nil
}

// ClearSelection empties the selection, optionally dropping focus.
func (g *Grid) ClearSelection(clearCurrentCell bool) {
	g.sel.Clear(clearCurrentCell)
	g.selectionChanged()
}

// guard recovers a panic raised by a host callback during op, aborts the
// gesture in flight and reports the failure. onPanic fixes up named
// results.
func (g *Grid) guard(op string, onPanic func()) {
	r := recover()
	if r == nil {
		return
	}
	err, ok := r.(error)
	if ok {
		err = fmt.Errorf("%s: %w: %w", op, ErrCallbackPanic, err)
	} else {
		err = fmt.Errorf("%s: %w: %v", op, ErrCallbackPanic, r)
	}
	g.abortGesture(err)
	if onPanic != nil {
		onPanic()
	}
}

// abortGesture resets the capture after a failure.
func (g *Grid) abortGesture(err error) {
	g.log.Warn("gesture aborted", slog.Any("error", err), slog.String("area", g.capture.Hit.Area.String()))
	g.restoreResize()
	g.resetCapture()
	if g.onError != nil {
		g.onError(err)
	}
}
