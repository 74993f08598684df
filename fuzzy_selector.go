package main

import (
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// fuzzyMatch performs fuzzy matching and returns match status and positions.
// It matches characters from search in order within text (case-insensitive).
func fuzzyMatch(search, text string) (bool, []int) {
	search = strings.ToLower(search)
	text = strings.ToLower(text)
	want := []rune(search)

	var positions []int
	searchIdx := 0
	for i, char := range []rune(text) {
		if searchIdx < len(want) && char == want[searchIdx] {
			positions = append(positions, i)
			searchIdx++
		}
	}
	return searchIdx == len(want), positions
}

func isPrefixMatch(search, text string) bool {
	return strings.HasPrefix(strings.ToLower(text), strings.ToLower(search))
}

// filterItems returns the items matching search, prefix matches first, with
// the matched rune positions of each.
func filterItems(items []string, search string) ([]string, [][]int) {
	if search == "" {
		return items, make([][]int, len(items))
	}
	var prefixed, fuzzy []string
	var prefixPos, fuzzyPos [][]int
	for _, item := range items {
		ok, positions := fuzzyMatch(search, item)
		switch {
		case !ok:
		case isPrefixMatch(search, item):
			prefixed = append(prefixed, item)
			prefixPos = append(prefixPos, positions)
		default:
			fuzzy = append(fuzzy, item)
			fuzzyPos = append(fuzzyPos, positions)
		}
	}
	return append(prefixed, fuzzy...), append(prefixPos, fuzzyPos...)
}

// formatMatchWithColor highlights the matched positions with tview color
// tags.
func formatMatchWithColor(item string, positions []int) string {
	if len(positions) == 0 {
		return tview.Escape(item)
	}
	highlight := make(map[int]bool, len(positions))
	for _, pos := range positions {
		highlight[pos] = true
	}

	var result strings.Builder
	for i, r := range []rune(item) {
		if highlight[i] {
			result.WriteString("[darkgreen::b]")
			result.WriteString(tview.Escape(string(r)))
			result.WriteString("[-::-]")
		} else {
			result.WriteString(tview.Escape(string(r)))
		}
	}
	return result.String()
}

// cleanNames removes newlines and whitespace from names and drops empties.
func cleanNames(names []string) []string {
	cleaned := make([]string, 0, len(names))
	for _, name := range names {
		if name = strings.TrimSpace(strings.ReplaceAll(name, "\n", "")); name != "" {
			cleaned = append(cleaned, name)
		}
	}
	return cleaned
}

// FuzzySelector is a search box over a list of names, shown as an overlay.
// The editor uses it to switch tables and to jump to a column.
type FuzzySelector struct {
	*tview.Box
	items         []string
	searchText    string
	selectedIndex int
	maxVisible    int

	inputField   *tview.InputField
	dropdownList *tview.List
	innerFlex    *tview.Flex
	dropdownFlex *tview.Flex

	onSelect func(item string)
	onClose  func()
}

// NewFuzzySelector creates a selector over items.
func NewFuzzySelector(items []string, placeholder string, onSelect func(string), onClose func()) *FuzzySelector {
	fs := &FuzzySelector{
		Box:        tview.NewBox(),
		items:      cleanNames(items),
		maxVisible: 6,
		onSelect:   onSelect,
		onClose:    onClose,
	}
	fs.buildInnerLayout(placeholder)
	return fs
}

// SetItems replaces the names offered and clears the search.
func (fs *FuzzySelector) SetItems(items []string) *FuzzySelector {
	fs.items = cleanNames(items)
	fs.clearSearchText()
	return fs
}

func (fs *FuzzySelector) calculateFiltered(search string) ([]string, [][]int) {
	return filterItems(fs.items, search)
}

// Draw implements tview.Primitive. The list is rebuilt from the search text
// on every frame.
func (fs *FuzzySelector) Draw(screen tcell.Screen) {
	fs.Box.DrawForSubclass(screen, fs)
	fs.updateDropdownList()
	x, y, width, height := fs.GetInnerRect()
	fs.innerFlex.SetRect(x, y, width, height)
	fs.innerFlex.Draw(screen)
}

// InputHandler forwards keys to the search field.
func (fs *FuzzySelector) InputHandler() func(event *tcell.EventKey, setFocus func(p tview.Primitive)) {
	return fs.WrapInputHandler(func(event *tcell.EventKey, setFocus func(p tview.Primitive)) {
		if handler := fs.inputField.InputHandler(); handler != nil {
			handler(event, setFocus)
		}
	})
}

// MouseHandler highlights on hover and selects on click.
func (fs *FuzzySelector) MouseHandler() func(action tview.MouseAction, event *tcell.EventMouse, setFocus func(p tview.Primitive)) (bool, tview.Primitive) {
	return fs.WrapMouseHandler(func(action tview.MouseAction, event *tcell.EventMouse, setFocus func(p tview.Primitive)) (bool, tview.Primitive) {
		mouseX, mouseY := event.Position()
		listX, listY, listWidth, listHeight := fs.dropdownList.GetRect()
		if mouseX >= listX && mouseX < listX+listWidth && mouseY >= listY && mouseY < listY+listHeight {
			filtered, _ := fs.calculateFiltered(fs.searchText)
			itemIndex := mouseY - listY
			if itemIndex >= 0 && itemIndex < len(filtered) {
				switch action {
				case tview.MouseMove:
					fs.dropdownList.SetCurrentItem(itemIndex)
					fs.selectedIndex = itemIndex
					return true, nil
				case tview.MouseLeftClick:
					fs.selectItem(filtered[itemIndex])
					return true, nil
				}
			}
		}
		if handler := fs.innerFlex.MouseHandler(); handler != nil {
			return handler(action, event, setFocus)
		}
		return false, nil
	})
}

// Focus forwards focus to the search field.
func (fs *FuzzySelector) Focus(delegate func(p tview.Primitive)) {
	delegate(fs.inputField)
}

func (fs *FuzzySelector) HasFocus() bool {
	return fs.inputField.HasFocus() || fs.dropdownList.HasFocus()
}

func (fs *FuzzySelector) buildInnerLayout(placeholder string) {
	fs.createInputField(placeholder)
	fs.dropdownList = fs.newDropdownList()
	fs.dropdownFlex = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(fs.inputField, 1, 0, true).
		AddItem(fs.dropdownList, fs.listHeight(len(fs.items)), 0, false)
	fs.innerFlex = tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(tview.NewBox(), 1, 0, false).
		AddItem(fs.dropdownFlex, 0, 1, true)
}

func (fs *FuzzySelector) listHeight(n int) int {
	return min(max(n, 1), fs.maxVisible)
}

// updateDropdownList refills the list without rebuilding the input field.
func (fs *FuzzySelector) updateDropdownList() {
	filtered, positions := fs.calculateFiltered(fs.searchText)
	fs.dropdownList.Clear()
	if len(filtered) == 0 {
		fs.dropdownList.AddItem("No results", "", 0, nil)
	}
	for i, item := range filtered {
		name := item
		fs.dropdownList.AddItem(formatMatchWithColor(item, positions[i]), "", 0, func() {
			fs.selectItem(name)
		})
	}
	fs.selectedIndex = min(max(fs.selectedIndex, 0), max(len(filtered)-1, 0))
	fs.dropdownList.SetCurrentItem(fs.selectedIndex)
	fs.dropdownFlex.ResizeItem(fs.dropdownList, fs.listHeight(len(filtered)), 0)
}

func (fs *FuzzySelector) selectItem(item string) {
	fs.clearSearchText()
	if fs.onSelect != nil {
		fs.onSelect(item)
	}
}

func (fs *FuzzySelector) createInputField(placeholder string) {
	fs.inputField = tview.NewInputField().
		SetLabel("").
		SetPlaceholder(placeholder).
		SetFieldWidth(0)

	fs.inputField.SetChangedFunc(func(text string) {
		fs.searchText = text
		fs.selectedIndex = 0
	})

	fs.inputField.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		filtered, _ := fs.calculateFiltered(fs.searchText)
		switch event.Key() {
		case tcell.KeyEscape:
			fs.clearSearchText()
			if fs.onClose != nil {
				fs.onClose()
			}
			return nil
		case tcell.KeyDown, tcell.KeyTab:
			if len(filtered) > 0 {
				fs.selectedIndex = (fs.selectedIndex + 1) % len(filtered)
			}
			return nil
		case tcell.KeyUp, tcell.KeyBacktab:
			if len(filtered) > 0 {
				fs.selectedIndex = (fs.selectedIndex - 1 + len(filtered)) % len(filtered)
			}
			return nil
		case tcell.KeyEnter:
			if fs.selectedIndex >= 0 && fs.selectedIndex < len(filtered) {
				fs.selectItem(filtered[fs.selectedIndex])
			}
			return nil
		}
		return event
	})
}

func (fs *FuzzySelector) clearSearchText() {
	fs.searchText = ""
	fs.inputField.SetText("")
	fs.selectedIndex = 0
}

func (fs *FuzzySelector) newDropdownList() *tview.List {
	return tview.NewList().
		SetWrapAround(true).
		ShowSecondaryText(false)
}
