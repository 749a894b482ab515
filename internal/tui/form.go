package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/selintasman/todo-list/internal/export"
	"github.com/selintasman/todo-list/internal/model"
	"github.com/selintasman/todo-list/internal/todo"
)

type popupKind int

const (
	popupAdd popupKind = iota
	popupSearch
	popupDate
)

type popupState struct {
	kind   popupKind
	taskID string
	value  string
}

func (p *popupState) title() string {
	switch p.kind {
	case popupSearch:
		return "Search"
	case popupDate:
		return "Finish Date (YYYY-MM-DD)"
	default:
		return "Add Todo"
	}
}

// applyPopup runs the action behind the open popup with the typed value.
func (u *UI) applyPopup(value string) error {
	if u.popup == nil {
		return nil
	}

	switch u.popup.kind {
	case popupSearch:
		u.store.SetSearchText(value)
		u.selected = 0
	case popupDate:
		date, err := todo.ParseFinishDate(value, u.now())
		if err != nil {
			return err
		}
		if err := u.store.SetFinishDateByID(u.popup.taskID, date); err != nil {
			return err
		}
	default:
		text, err := todo.ParseText(value)
		if err != nil {
			return err
		}
		if _, err := u.store.Add(text); err != nil {
			return err
		}
	}
	return nil
}

func initialPopupValue(kind popupKind, task *model.Task, searchText string) string {
	switch kind {
	case popupSearch:
		return searchText
	case popupDate:
		if task != nil && task.FinishDate != nil {
			return task.FinishDate.Format(todo.DateLayout)
		}
	}
	return ""
}

func writeExport(dir string, tasks []model.Task, now time.Time) (string, error) {
	data, err := export.Export(tasks, "pdf")
	if err != nil {
		return "", err
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, fmt.Sprintf("todos-%s.pdf", now.Format("20060102-150405")))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
