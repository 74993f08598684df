package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"slices"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"vgrid/internal/dblib"
	"vgrid/internal/grid"
)

const (
	pageGrid     = "grid"
	pageSelector = "selector"
)

// selectorPurpose is what the fuzzy selector is open for.
type selectorPurpose int

const (
	selectTable selectorPurpose = iota
	selectColumn
)

// Editor is the terminal front end: a grid over one relation, a status bar
// and a fuzzy selector overlay.
type Editor struct {
	ctx      context.Context
	app      *tview.Application
	pages    *tview.Pages
	layout   *tview.Flex
	view     *GridView
	grid     *grid.Grid
	source   *relationSource
	relation *dblib.Relation
	opts     grid.Options
	width    int32
	log      *slog.Logger

	db     *sql.DB
	dbType dblib.DatabaseType
	tables []string

	statusBar *tview.TextView
	selector  *FuzzySelector
	purpose   selectorPurpose
	scroll    grid.ScrollRange
}

// newEditor builds the editor around rel. db and tables may be empty, which
// disables table switching.
func newEditor(ctx context.Context, app *tview.Application, rel *dblib.Relation, opts grid.Options, width int32, log *slog.Logger) (*Editor, error) {
	e := &Editor{
		ctx:   ctx,
		app:   app,
		pages: tview.NewPages(),
		opts:  opts,
		width: width,
		log:   log,
	}
	e.opts.Logger = log
	e.opts.Scheduler = grid.NewScheduler(func(f func()) { app.QueueUpdateDraw(f) })

	e.statusBar = tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false)
	e.statusBar.SetBackgroundColor(tcell.ColorLightGray)
	e.statusBar.SetTextColor(tcell.ColorBlack)

	e.selector = NewFuzzySelector(nil, "", e.selectorChosen, e.closeSelector)
	e.layout = tview.NewFlex().SetDirection(tview.FlexRow)
	e.pages.AddPage(pageGrid, e.layout, true, true)
	overlay := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(e.selector, 8, 0, true).
		AddItem(nil, 0, 1, false)
	e.pages.AddPage(pageSelector, overlay, true, false)

	if err := e.setRelation(rel); err != nil {
		return nil, err
	}
	e.pages.SetInputCapture(e.handleKey)
	return e, nil
}

// setRelation replaces the grid with one over rel.
func (e *Editor) setRelation(rel *dblib.Relation) error {
	source, err := newRelationSource(e.ctx, rel, e.log)
	if err != nil {
		return err
	}
	g, err := grid.New(source, buildColumns(rel, e.width, source.RowCount()), e.opts)
	if err != nil {
		return err
	}
	view := NewGridView(g, source).
		SetFocusFunc(func(p tview.Primitive) { e.app.SetFocus(p) }).
		SetSortIndicatorFunc(e.sortIndicator)
	if err := view.RegisterDefaultEditors(); err != nil {
		return err
	}

	e.relation, e.source, e.grid, e.view = rel, source, g, view
	e.scroll = grid.ScrollRange{}
	e.wireGrid()
	e.wireSource()

	e.layout.Clear().
		AddItem(e.view, 0, 1, true).
		AddItem(e.statusBar, 1, 0, false)
	e.app.SetFocus(e.view)
	e.SetStatusMessage(e.relationTitle())
	return nil
}

func (e *Editor) relationTitle() string {
	mode := " (read-only)"
	if e.relation.Editable() {
		mode = ""
	}
	return fmt.Sprintf("%s %s%s", databaseIcons[e.relation.DBType], e.relation.Name, mode)
}

func (e *Editor) wireSource() {
	e.source.onError = e.SetStatusErrorWithSentry
	e.source.onCommitted = func(row int64, column string) {
		e.SetStatusMessage(fmt.Sprintf("Saved %s in row %d", column, row+1))
	}
}

func (e *Editor) wireGrid() {
	e.grid.SetSelectionChangedFunc(func(blocks []grid.CellBlock) {
		breadcrumbs.RecordSelection(len(blocks))
		if !e.grid.Editing() {
			e.updateStatusForSelection(blocks)
		}
	})
	e.grid.SetColumnWidthChangedFunc(func(colID int, width int32) {
		if pos, ok := e.grid.ColumnPosition(colID); ok {
			col, _ := e.grid.Column(pos)
			e.SetStatusMessage(fmt.Sprintf("%s: width %d", col.Title, width))
		}
	})
	e.grid.SetColumnsReorderedFunc(func(from, to int32) {
		col, _ := e.grid.Column(to)
		e.SetStatusMessage(fmt.Sprintf("Moved %s to position %d", col.Title, to))
	})
	e.grid.SetColumnDraggableFunc(func(colID int) bool {
		return colID != lineNumberColumnID
	})
	e.grid.SetHeaderButtonClickedFunc(func(colID int, _ grid.MouseButton, _ grid.Rect) {
		e.toggleSort(colID)
	})
	e.grid.SetCellClickedFunc(func(row int64, colID int, _ grid.Rect, button grid.MouseButton) {
		pos, _ := e.grid.ColumnPosition(colID)
		if col, ok := e.grid.Column(pos); ok && col.Type == grid.ColumnCheckBox && button == grid.ButtonLeft {
			e.source.ToggleCheckBox(row, colID)
		}
	})
	e.grid.SetHyperlinkClickedFunc(func(row int64, colID int, text string) {
		breadcrumbs.RecordGesture("hyperlink", row, int32(colID))
		e.SetStatusMessage("Link: " + text)
	})
	e.grid.SetControlContentsChangedFunc(func(_ int64, colID int, c grid.Control) {
		e.updateStatusForEditMode(colID, c.Data())
	})
	e.grid.SetScrollChangedFunc(func(_, v grid.ScrollRange) {
		e.scroll = v
	})
	e.grid.SetErrorFunc(e.SetStatusErrorWithSentry)
}

// sortIndicator is the glyph of a header's sort button.
func (e *Editor) sortIndicator(colID int) rune {
	col, ok := e.source.column(colID)
	sort := e.source.sort
	switch {
	case !ok || sort == nil || sort.Name != col.Name:
		return '↕'
	case sort.Asc:
		return '▲'
	}
	return '▼'
}

func (e *Editor) toggleSort(colID int) {
	col, ok := e.source.column(colID)
	if !ok {
		return
	}
	sort, err := e.source.ToggleSort(col.Name)
	if err != nil {
		e.SetStatusErrorWithSentry(err)
		return
	}
	if err := e.grid.Refresh(); err != nil {
		e.SetStatusErrorWithSentry(err)
		return
	}
	if sort == nil {
		e.SetStatusMessage("Unsorted")
		return
	}
	e.SetStatusMessage("Sorted by " + sort.String())
}

// reload refetches the relation's rows.
func (e *Editor) reload() {
	if !e.grid.CommitEdit() {
		return
	}
	if err := e.source.Reload(); err != nil {
		e.SetStatusErrorWithSentry(err)
		return
	}
	if err := e.grid.Refresh(); err != nil {
		e.SetStatusErrorWithSentry(err)
		return
	}
	e.SetStatusMessage(fmt.Sprintf("Reloaded %d rows", e.source.RowCount()))
}

// cycleSelectionMode switches to the next selection mode.
func (e *Editor) cycleSelectionMode() {
	modes := []grid.SelectionMode{grid.CellBlocks, grid.RowBlocks, grid.ColumnBlocks, grid.SingleCell, grid.SingleRow, grid.SingleColumn}
	i := slices.Index(modes, e.grid.Selection().Mode())
	next := modes[(i+1)%len(modes)]
	e.grid.SetSelectionMode(next)
	e.SetStatusMessage("Selection mode: " + next.String())
}

// freezeThroughFocus freezes every column up to the focus column, or
// unfreezes back to the line numbers when that is already the case.
func (e *Editor) freezeThroughFocus() {
	_, col := e.grid.Selection().CurrentCell()
	n := max(col+1, 1)
	if n == e.grid.Viewport().FirstScrollableColumn() {
		n = 1
	}
	if err := e.grid.SetFrozenColumns(n); err != nil {
		e.SetStatusError(err)
		return
	}
	e.SetStatusMessage(fmt.Sprintf("%d columns frozen", n-1))
}

func (e *Editor) openSelector(purpose selectorPurpose) {
	var items []string
	switch purpose {
	case selectTable:
		if len(e.tables) == 0 {
			return
		}
		items = e.tables
		e.selector.inputField.SetPlaceholder("Switch to table...")
	case selectColumn:
		for _, c := range e.grid.Columns() {
			if c.ID != lineNumberColumnID {
				items = append(items, c.Title)
			}
		}
		e.selector.inputField.SetPlaceholder("Jump to column...")
	}
	if !e.grid.CommitEdit() {
		return
	}
	e.purpose = purpose
	e.selector.SetItems(items)
	e.pages.ShowPage(pageSelector)
	e.app.SetFocus(e.selector)
}

func (e *Editor) closeSelector() {
	e.pages.HidePage(pageSelector)
	e.app.SetFocus(e.view)
}

func (e *Editor) selectorChosen(item string) {
	e.closeSelector()
	switch e.purpose {
	case selectTable:
		e.switchTable(item)
	case selectColumn:
		e.jumpToColumn(item)
	}
}

func (e *Editor) switchTable(name string) {
	rel, err := dblib.NewRelation(e.ctx, e.db, e.dbType, name, dblib.WithLogger(e.log))
	if err != nil {
		e.SetStatusErrorWithSentry(err)
		return
	}
	breadcrumbs.RecordDatabase("open " + name)
	if err := e.setRelation(rel); err != nil {
		e.SetStatusErrorWithSentry(err)
	}
}

// jumpToColumn focuses the named column on the current row.
func (e *Editor) jumpToColumn(title string) {
	row, _ := e.grid.Selection().CurrentCell()
	if row < 0 {
		row = e.grid.Viewport().FirstVisibleRow()
	}
	for i, c := range e.grid.Columns() {
		if c.Title != title {
			continue
		}
		if err := e.grid.FocusCell(row, int32(i)); err != nil {
			e.SetStatusError(err)
		}
		return
	}
}

// handleKey processes the editor-wide shortcuts.
func (e *Editor) handleKey(event *tcell.EventKey) *tcell.EventKey {
	if name, _ := e.pages.GetFrontPage(); name == pageSelector {
		return event
	}
	switch event.Key() {
	case tcell.KeyCtrlQ:
		e.app.Stop()
	case tcell.KeyCtrlO:
		e.openSelector(selectTable)
	case tcell.KeyCtrlF:
		e.openSelector(selectColumn)
	case tcell.KeyCtrlR:
		e.reload()
	case tcell.KeyCtrlT:
		if e.grid.Editing() {
			return event
		}
		e.cycleSelectionMode()
	case tcell.KeyCtrlL:
		if e.grid.Editing() {
			return event
		}
		e.freezeThroughFocus()
	default:
		return event
	}
	breadcrumbs.RecordKey(event.Name())
	return nil
}

// runEditor connects, resolves the relation to show and runs the terminal
// UI until the user quits.
func runEditor(ctx context.Context, config *Config, settings *Settings, opts grid.Options, table, query string) error {
	log := newLogger()

	db, dbType, err := config.connect(ctx)
	if err != nil {
		CaptureError(err)
		return err
	}
	defer db.Close()

	tables, err := listTables(ctx, db, dbType)
	if err != nil {
		CaptureError(err)
		return err
	}
	if table == "" && query == "" {
		if table, err = pickTable(config.Database, dbType, tables); err != nil || table == "" {
			return err
		}
	}

	var rel *dblib.Relation
	if query != "" {
		rel, err = dblib.NewQueryRelation(ctx, db, dbType, query, dblib.WithLogger(log))
	} else {
		rel, err = dblib.NewRelation(ctx, db, dbType, table, dblib.WithLogger(log))
	}
	if err != nil {
		CaptureError(err)
		return err
	}

	app := tview.NewApplication().EnableMouse(true)
	editor, err := newEditor(ctx, app, rel, opts, settings.columnWidth(), log)
	if err != nil {
		CaptureError(err)
		return err
	}
	editor.db, editor.dbType, editor.tables = db, dbType, tables

	if err := app.SetRoot(editor.pages, true).SetFocus(editor.view).Run(); err != nil {
		CaptureError(err)
		return err
	}
	return nil
}
