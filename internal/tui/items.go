package tui

import (
	"fmt"
	"strings"

	"github.com/selintasman/todo-list/internal/model"
	"github.com/selintasman/todo-list/internal/todo"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiOrange = "\x1b[33m"
	ansiDim    = "\x1b[2m"
)

func priorityLabel(priority model.Priority) string {
	switch priority {
	case model.PriorityLow:
		return ansiGreen + "Low" + ansiReset
	case model.PriorityMedium:
		return ansiOrange + "Medium" + ansiReset
	case model.PriorityHigh:
		return ansiRed + "High" + ansiReset
	default:
		return "-"
	}
}

func formatDue(task model.Task) string {
	if task.FinishDate == nil {
		return "no date"
	}
	return task.FinishDate.Format(todo.DateLayout)
}

func formatTaskSummary(index int, task model.Task) string {
	done := " "
	text := task.Text
	if task.IsDone {
		done = "x"
		text = ansiDim + text + ansiReset
	}
	return fmt.Sprintf("[%s] Task %d | %s | %s | %s", done, index+1, text, priorityLabel(task.Priority), formatDue(task))
}

func formatSortMode(mode model.SortMode) string {
	switch mode {
	case model.SortByDate:
		return "[x] date  [ ] priority"
	case model.SortByPriority:
		return "[ ] date  [x] priority"
	default:
		return "[ ] date  [ ] priority"
	}
}

func formatHistoryLine(entry model.HistoryEntry) string {
	return fmt.Sprintf("%s | %s | %s", entry.CreatedAt.Local().Format("15:04:05"), entry.EventType, strings.TrimSpace(entry.Details))
}
