package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/selintasman/todo-list/internal/model"
	"github.com/selintasman/todo-list/internal/todo"
)

var ErrUnknownFormat = errors.New("unknown export format")

func ContentType(format string) string {
	switch strings.ToLower(format) {
	case "json":
		return "application/json"
	case "csv":
		return "text/csv"
	case "pdf":
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}

// Export renders tasks in display order as json, csv or pdf.
func Export(tasks []model.Task, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "json":
		return json.MarshalIndent(tasks, "", "  ")
	case "csv":
		var b bytes.Buffer
		w := csv.NewWriter(&b)
		_ = w.Write([]string{"task", "text", "priority", "finish_date", "done"})
		for i, task := range tasks {
			_ = w.Write([]string{fmt.Sprint(i + 1), task.Text, task.Priority.String(), formatDate(task.FinishDate), fmt.Sprint(task.IsDone)})
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return nil, err
		}
		return b.Bytes(), nil
	case "pdf":
		pdf := gofpdf.New("P", "mm", "A4", "")
		pdf.AddPage()
		pdf.SetFont("Arial", "B", 14)
		pdf.Cell(40, 10, "To-do List")
		pdf.Ln(12)
		pdf.SetFont("Arial", "", 10)
		tr := pdf.UnicodeTranslatorFromDescriptor("")
		for i, task := range tasks {
			mark := " "
			if task.IsDone {
				mark = "x"
			}
			line := fmt.Sprintf("[%s] Task %d: %s  priority=%s  due=%s", mark, i+1, task.Text, valueOrNone(task.Priority.String()), formatDate(task.FinishDate))
			pdf.MultiCell(0, 6, tr(line), "0", "L", false)
		}
		var buf bytes.Buffer
		if err := pdf.Output(&buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("%w %s", ErrUnknownFormat, format)
	}
}

func formatDate(value *time.Time) string {
	if value == nil {
		return ""
	}
	return value.Format(todo.DateLayout)
}

func valueOrNone(value string) string {
	if value == "" {
		return "none"
	}
	return value
}
