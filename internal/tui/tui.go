package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	goerrors "github.com/go-errors/errors"
	"github.com/jesseduffield/gocui"
	"github.com/selintasman/todo-list/internal/db"
	"github.com/selintasman/todo-list/internal/model"
	"github.com/selintasman/todo-list/internal/todo"
)

const (
	viewHeader  = "header"
	viewFooter  = "footer"
	viewTasks   = "tasks"
	viewHistory = "history"
	viewPopup   = "popup"
	viewHelp    = "help"
)

type UI struct {
	store   *todo.Store
	journal *db.Store
	gui     *gocui.Gui

	tasks      []model.Task
	total      int
	searchText string
	mode       model.SortMode
	history    []model.HistoryEntry

	selected        int
	selectedHistory int
	focus           string

	popup      *popupState
	helpActive bool
	status     string
	exportDir  string
	now        func() time.Time
}

type Options struct {
	ExportDir string
}

func Run(store *todo.Store, journal *db.Store, opts Options) error {
	gui, err := gocui.NewGui(gocui.NewGuiOpts{OutputMode: gocui.OutputNormal})
	if err != nil {
		return err
	}
	defer gui.Close()

	ui := newUI(store, journal, opts)
	ui.gui = gui
	gui.Mouse = true

	gui.SetManagerFunc(ui.layout)
	if err := ui.bindKeys(gui); err != nil {
		return err
	}
	if err := ui.loadTasks(); err != nil {
		return err
	}

	if err := gui.MainLoop(); err != nil && err != gocui.ErrQuit {
		return err
	}

	return nil
}

func newUI(store *todo.Store, journal *db.Store, opts Options) *UI {
	return &UI{
		store:     store,
		journal:   journal,
		focus:     viewTasks,
		exportDir: opts.ExportDir,
		now:       time.Now,
	}
}

func (u *UI) bindKeys(gui *gocui.Gui) error {
	global := []struct {
		key     any
		handler func(*gocui.Gui, *gocui.View) error
	}{
		{gocui.KeyCtrlC, u.quit},
		{'q', u.quit},
		{'r', u.reload},
		{'a', u.addTask},
		{'x', u.markDone},
		{'d', u.deleteTask},
		{'C', u.clearAll},
		{'p', u.cyclePriority},
		{'f', u.editFinishDate},
		{'/', u.startSearch},
		{'g', u.clearSearch},
		{'t', u.toggleSortByDate},
		{'y', u.toggleSortByPriority},
		{'s', u.applySort},
		{'e', u.exportPDF},
		{'?', u.toggleHelp},
		{gocui.KeyTab, u.switchFocus},
	}
	for _, binding := range global {
		if err := gui.SetKeybinding("", binding.key, gocui.ModNone, binding.handler); err != nil {
			return err
		}
	}

	for _, name := range []string{viewTasks, viewHistory} {
		if err := gui.SetKeybinding(name, gocui.KeyArrowDown, gocui.ModNone, u.moveDown); err != nil {
			return err
		}
		if err := gui.SetKeybinding(name, 'j', gocui.ModNone, u.moveDown); err != nil {
			return err
		}
		if err := gui.SetKeybinding(name, gocui.KeyArrowUp, gocui.ModNone, u.moveUp); err != nil {
			return err
		}
		if err := gui.SetKeybinding(name, 'k', gocui.ModNone, u.moveUp); err != nil {
			return err
		}
		if err := gui.SetKeybinding(name, gocui.MouseWheelUp, gocui.ModNone, u.moveUp); err != nil {
			return err
		}
		if err := gui.SetKeybinding(name, gocui.MouseWheelDown, gocui.ModNone, u.moveDown); err != nil {
			return err
		}
	}

	if err := gui.SetKeybinding(viewPopup, gocui.KeyEnter, gocui.ModNone, u.submitPopup); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewPopup, gocui.KeyEsc, gocui.ModNone, u.cancelPopup); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewHelp, gocui.KeyEsc, gocui.ModNone, u.closeHelp); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewHelp, 'q', gocui.ModNone, u.closeHelp); err != nil {
		return err
	}
	return nil
}

func (u *UI) layout(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	if maxX <= 0 || maxY <= 0 {
		return nil
	}

	headerView, err := gui.SetView(viewHeader, 0, 0, maxX-1, 1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	headerView.Frame = false
	headerView.Wrap = true
	u.renderHeader(headerView)

	footerY1 := max(maxY-1, 2)
	footerY0 := max(footerY1-3, 2)
	footerView, err := gui.SetView(viewFooter, 0, footerY0, maxX-1, footerY1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	footerView.Frame = false
	footerView.Wrap = true
	footerView.FgColor = gocui.ColorDefault | gocui.AttrDim
	u.renderFooter(footerView)

	bodyTop := 2
	bodyBottom := footerY0 - 1
	if bodyBottom <= bodyTop {
		return nil
	}

	tasksX1 := max(maxX*2/3, 30)
	if tasksX1 >= maxX-1 {
		tasksX1 = maxX - 1
	}

	tasksView, err := gui.SetView(viewTasks, 0, bodyTop, tasksX1, bodyBottom, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		tasksView.Title = "Tasks"
	}
	applyViewStyle(tasksView, u.focus == viewTasks)
	u.renderTaskList(tasksView)

	if tasksX1+1 < maxX-1 {
		historyView, err := gui.SetView(viewHistory, tasksX1+1, bodyTop, maxX-1, bodyBottom, 0)
		if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
			return err
		}
		if goerrors.Is(err, gocui.ErrUnknownView) {
			historyView.Title = "History"
		}
		applyViewStyle(historyView, u.focus == viewHistory)
		u.renderHistory(historyView)
	}

	if u.popup != nil {
		if err := u.showPopup(gui); err != nil {
			return err
		}
	} else {
		_ = gui.DeleteView(viewPopup)
	}

	if u.helpActive {
		if err := u.showHelp(gui); err != nil {
			return err
		}
	} else {
		_ = gui.DeleteView(viewHelp)
	}

	if gui.CurrentView() == nil {
		_, _ = gui.SetCurrentView(u.focus)
	}

	gui.Cursor = u.popup != nil
	return nil
}

func (u *UI) loadTasks() error {
	snapshot := u.store.Snapshot()
	u.tasks = snapshot.Tasks
	u.total = snapshot.Total
	u.searchText = snapshot.SearchText
	u.mode = snapshot.Mode

	if u.selected >= len(u.tasks) {
		u.selected = max(len(u.tasks)-1, 0)
	}
	return u.loadHistory()
}

// loadHistory shows the journal of the selected task, or the latest entries
// when the list is empty.
func (u *UI) loadHistory() error {
	if u.journal == nil {
		u.history = nil
		return nil
	}

	var (
		history []model.HistoryEntry
		err     error
	)
	if selected := u.selectedTask(); selected != nil {
		history, err = u.journal.ListHistory(context.Background(), selected.ID)
	} else {
		history, err = u.journal.ListRecent(context.Background(), 20)
	}
	if err != nil {
		return err
	}
	u.history = history
	if u.selectedHistory >= len(u.history) {
		u.selectedHistory = max(len(u.history)-1, 0)
	}
	return nil
}

func (u *UI) renderHeader(view *gocui.View) {
	view.Clear()
	query := u.searchText
	if query == "" {
		query = "type / to search"
	}
	fmt.Fprintf(view, "To-do List | Search: %s | Sort: %s | Showing %d of %d", query, formatSortMode(u.mode), len(u.tasks), u.total)
}

func (u *UI) renderFooter(view *gocui.View) {
	view.Clear()
	fmt.Fprintln(view, "a add | x done | d delete | C clear all | p priority | f finish date | e export pdf")
	fmt.Fprintln(view, "/ search | g clear search | t sort by date | y sort by priority | s sort | tab pane | ? help | q quit")
	if u.status != "" {
		fmt.Fprint(view, u.status)
	}
}

func (u *UI) renderTaskList(view *gocui.View) {
	view.Clear()
	focused := u.focus == viewTasks
	for i, task := range u.tasks {
		prefix := " "
		if i == u.selected {
			if focused {
				prefix = ">"
			} else {
				prefix = "*"
			}
		}
		fmt.Fprintf(view, "%s %s\n", prefix, formatTaskSummary(i, task))
	}
	if focused && len(u.tasks) > 0 {
		view.SetCursor(0, u.selected)
	}
}

func (u *UI) renderHistory(view *gocui.View) {
	view.Clear()
	focused := u.focus == viewHistory
	for i, entry := range u.history {
		prefix := " "
		if i == u.selectedHistory && focused {
			prefix = ">"
		}
		fmt.Fprintf(view, "%s %s\n", prefix, formatHistoryLine(entry))
	}
	if focused && len(u.history) > 0 {
		view.SetCursor(0, u.selectedHistory)
	}
}

func (u *UI) showPopup(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	width := max(40, maxX/2)
	height := 2
	x0 := (maxX - width) / 2
	y0 := (maxY - height) / 2

	view, err := gui.SetView(viewPopup, x0, y0, x0+width, y0+height, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		view.Wrap = true
		view.Clear()
		fmt.Fprint(view, u.popup.value)
		view.SetCursor(len([]rune(u.popup.value)), 0)
	}
	view.Title = u.popup.title()
	view.Editable = true
	view.Editor = gocui.DefaultEditor
	_, _ = gui.SetCurrentView(viewPopup)
	return nil
}

func (u *UI) showHelp(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	width := max(60, maxX/2)
	height := 16
	x0 := (maxX - width) / 2
	y0 := (maxY - height) / 2

	view, err := gui.SetView(viewHelp, x0, y0, x0+width, y0+height, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		view.Title = "Help"
		view.Wrap = true
	}
	view.Clear()
	fmt.Fprint(view, helpText())
	_, _ = gui.SetCurrentView(viewHelp)
	return nil
}

func (u *UI) selectedTask() *model.Task {
	if u.selected >= 0 && u.selected < len(u.tasks) {
		return &u.tasks[u.selected]
	}
	return nil
}

// act runs a task list mutation and reloads the displayed sequence so the
// selection index always refers to the latest snapshot.
func (u *UI) act(fn func() error) error {
	if err := fn(); err != nil {
		u.status = err.Error()
		return u.loadTasks()
	}
	u.status = ""
	return u.loadTasks()
}

func (u *UI) addTask(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	u.popup = &popupState{kind: popupAdd}
	return nil
}

func (u *UI) startSearch(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	u.popup = &popupState{kind: popupSearch, value: initialPopupValue(popupSearch, nil, u.searchText)}
	return nil
}

func (u *UI) editFinishDate(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	selected := u.selectedTask()
	if selected == nil {
		return nil
	}
	u.popup = &popupState{kind: popupDate, taskID: selected.ID, value: initialPopupValue(popupDate, selected, "")}
	return nil
}

func (u *UI) submitPopup(gui *gocui.Gui, view *gocui.View) error {
	if u.popup == nil {
		return nil
	}
	value := ""
	if view != nil {
		value = view.Buffer()
	}
	if err := u.applyPopup(strings.TrimSpace(value)); err != nil {
		u.status = err.Error()
		return nil
	}
	u.status = ""
	u.closePopup(gui)
	return u.loadTasks()
}

func (u *UI) cancelPopup(gui *gocui.Gui, _ *gocui.View) error {
	u.closePopup(gui)
	return nil
}

func (u *UI) closePopup(gui *gocui.Gui) {
	u.popup = nil
	if gui == nil {
		return
	}
	_ = gui.DeleteView(viewPopup)
	_, _ = gui.SetCurrentView(u.focus)
}

func (u *UI) markDone(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	selected := u.selectedTask()
	if selected == nil {
		return nil
	}
	id := selected.ID
	return u.act(func() error { return u.store.MarkAsDoneByID(id) })
}

func (u *UI) deleteTask(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	selected := u.selectedTask()
	if selected == nil {
		return nil
	}
	id := selected.ID
	return u.act(func() error { return u.store.DeleteByID(id) })
}

func (u *UI) clearAll(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	u.selected = 0
	return u.act(func() error {
		u.store.ClearAll()
		return nil
	})
}

func (u *UI) cyclePriority(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	selected := u.selectedTask()
	if selected == nil {
		return nil
	}
	id := selected.ID
	next := model.NextPriority(selected.Priority)
	return u.act(func() error {
		_, err := u.store.SetPriorityByID(id, next)
		return err
	})
}

func (u *UI) clearSearch(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	return u.act(func() error {
		u.store.SetSearchText("")
		return nil
	})
}

func (u *UI) toggleSortByDate(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	return u.act(func() error {
		u.store.ToggleSortByDate()
		return nil
	})
}

func (u *UI) toggleSortByPriority(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	return u.act(func() error {
		u.store.ToggleSortByPriority()
		return nil
	})
}

func (u *UI) applySort(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	return u.act(func() error {
		u.store.ApplySort()
		return nil
	})
}

func (u *UI) exportPDF(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	path, err := writeExport(u.exportDir, u.tasks, u.now())
	if err != nil {
		u.status = err.Error()
		return nil
	}
	u.status = "exported " + path
	return nil
}

func (u *UI) switchFocus(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	if u.focus == viewTasks {
		u.focus = viewHistory
	} else {
		u.focus = viewTasks
	}
	if gui != nil {
		_, _ = gui.SetCurrentView(u.focus)
	}
	return nil
}

func (u *UI) moveDown(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	switch u.focus {
	case viewTasks:
		if u.selected < len(u.tasks)-1 {
			u.selected++
			return u.loadHistory()
		}
	case viewHistory:
		if u.selectedHistory < len(u.history)-1 {
			u.selectedHistory++
		}
	}
	return nil
}

func (u *UI) moveUp(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	switch u.focus {
	case viewTasks:
		if u.selected > 0 {
			u.selected--
			return u.loadHistory()
		}
	case viewHistory:
		if u.selectedHistory > 0 {
			u.selectedHistory--
		}
	}
	return nil
}

func (u *UI) reload(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	u.status = ""
	return u.loadTasks()
}

func (u *UI) toggleHelp(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() && !u.helpActive {
		return nil
	}
	u.helpActive = !u.helpActive
	if !u.helpActive {
		return u.closeHelp(gui, nil)
	}
	return nil
}

func (u *UI) closeHelp(gui *gocui.Gui, _ *gocui.View) error {
	u.helpActive = false
	if gui == nil {
		return nil
	}
	_ = gui.DeleteView(viewHelp)
	_, _ = gui.SetCurrentView(u.focus)
	return nil
}

func (u *UI) inputActive() bool {
	return u.popup != nil || u.helpActive
}

func (u *UI) quit(_ *gocui.Gui, _ *gocui.View) error {
	if u.popup != nil {
		return nil
	}
	return gocui.ErrQuit
}

func helpText() string {
	return strings.Join([]string{
		"Navigation:",
		"  j/k or arrows move selection | tab switch tasks/history",
		"",
		"Tasks:",
		"  a add | x mark done (moves to the end) | d delete | C clear all",
		"  p cycle priority Low/Medium/High | f set finish date",
		"",
		"Search and sort:",
		"  / search | g clear search",
		"  t toggle sort by date | y toggle sort by priority | s sort now",
		"",
		"Other:",
		"  e export shown tasks to pdf | r reload | ? help | esc close | q quit",
	}, "\n")
}

func applyViewStyle(view *gocui.View, focused bool) {
	view.Frame = true
	view.Highlight = focused
	view.SelBgColor = gocui.ColorBlue
	view.SelFgColor = gocui.ColorBlack
	if focused {
		view.FrameColor = gocui.ColorCyan
		view.TitleColor = gocui.ColorCyan
	} else {
		view.FrameColor = gocui.ColorDefault
		view.TitleColor = gocui.ColorDefault
	}
}
