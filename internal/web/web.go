package web

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/selintasman/todo-list/internal/db"
	"github.com/selintasman/todo-list/internal/export"
	"github.com/selintasman/todo-list/internal/model"
	"github.com/selintasman/todo-list/internal/todo"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.tmpl"))

type Server struct {
	store   *todo.Store
	journal *db.Store
	now     func() time.Time
}

type taskRow struct {
	Task       model.Task
	Number     int
	FinishDate string
	Style      template.CSS
}

func NewServer(store *todo.Store, journal *db.Store) *Server {
	return &Server{store: store, journal: journal, now: time.Now}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.indexHandler)
	mux.HandleFunc("POST /tasks", s.addHandler)
	mux.HandleFunc("POST /tasks/{id}/done", s.doneHandler)
	mux.HandleFunc("POST /tasks/{id}/delete", s.deleteHandler)
	mux.HandleFunc("POST /tasks/{id}/priority", s.priorityHandler)
	mux.HandleFunc("POST /tasks/{id}/date", s.dateHandler)
	mux.HandleFunc("POST /clear", s.clearHandler)
	mux.HandleFunc("POST /search", s.searchHandler)
	mux.HandleFunc("POST /sort/date", s.sortDateHandler)
	mux.HandleFunc("POST /sort/priority", s.sortPriorityHandler)
	mux.HandleFunc("POST /sort/apply", s.applySortHandler)
	mux.HandleFunc("GET /api/tasks", s.apiTasksHandler)
	mux.HandleFunc("GET /api/history", s.apiHistoryHandler)
	mux.HandleFunc("GET /export", s.exportHandler)
	return mux
}

func (s *Server) indexHandler(w http.ResponseWriter, r *http.Request) {
	snapshot := s.store.Snapshot()

	data := struct {
		Total          int
		SearchText     string
		SortByDate     bool
		SortByPriority bool
		Today          string
		Rows           []taskRow
	}{
		Total:          snapshot.Total,
		SearchText:     snapshot.SearchText,
		SortByDate:     snapshot.Mode == model.SortByDate,
		SortByPriority: snapshot.Mode == model.SortByPriority,
		Today:          s.now().Format(todo.DateLayout),
		Rows:           buildTaskRows(snapshot.Tasks),
	}

	if err := indexTemplate.Execute(w, data); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
}

func buildTaskRows(tasks []model.Task) []taskRow {
	rows := make([]taskRow, 0, len(tasks))
	for i, task := range tasks {
		color := model.PriorityColor(task.Priority)
		row := taskRow{
			Task:   task,
			Number: i + 1,
			Style:  template.CSS(fmt.Sprintf("color: %s; background-color: %s; border-radius: 32px", color.Color, color.Background)),
		}
		if task.FinishDate != nil {
			row.FinishDate = task.FinishDate.Format(todo.DateLayout)
		}
		rows = append(rows, row)
	}
	return rows
}

func (s *Server) addHandler(w http.ResponseWriter, r *http.Request) {
	text, err := todo.ParseText(r.FormValue("text"))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	task, err := s.store.Add(text)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	respond(w, r, http.StatusCreated, task)
}

func (s *Server) doneHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.store.MarkAsDoneByID(r.PathValue("id")); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	respond(w, r, http.StatusOK, s.store.Snapshot())
}

func (s *Server) deleteHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteByID(r.PathValue("id")); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	respond(w, r, http.StatusOK, s.store.Snapshot())
}

func (s *Server) priorityHandler(w http.ResponseWriter, r *http.Request) {
	priority, err := todo.ParsePriority(r.FormValue("priority"))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	hint, err := s.store.SetPriorityByID(r.PathValue("id"), priority)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	respond(w, r, http.StatusOK, hint)
}

func (s *Server) dateHandler(w http.ResponseWriter, r *http.Request) {
	date, err := todo.ParseFinishDate(r.FormValue("date"), s.now())
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	if err := s.store.SetFinishDateByID(r.PathValue("id"), date); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	respond(w, r, http.StatusOK, s.store.Snapshot())
}

func (s *Server) clearHandler(w http.ResponseWriter, r *http.Request) {
	s.store.ClearAll()
	respond(w, r, http.StatusOK, s.store.Snapshot())
}

func (s *Server) searchHandler(w http.ResponseWriter, r *http.Request) {
	s.store.SetSearchText(r.FormValue("q"))
	respond(w, r, http.StatusOK, s.store.Snapshot())
}

func (s *Server) sortDateHandler(w http.ResponseWriter, r *http.Request) {
	s.store.ToggleSortByDate()
	respond(w, r, http.StatusOK, s.store.Snapshot())
}

func (s *Server) sortPriorityHandler(w http.ResponseWriter, r *http.Request) {
	s.store.ToggleSortByPriority()
	respond(w, r, http.StatusOK, s.store.Snapshot())
}

func (s *Server) applySortHandler(w http.ResponseWriter, r *http.Request) {
	s.store.ApplySort()
	respond(w, r, http.StatusOK, s.store.Snapshot())
}

func (s *Server) apiTasksHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Snapshot())
}

func (s *Server) apiHistoryHandler(w http.ResponseWriter, r *http.Request) {
	if s.journal == nil {
		writeJSON(w, http.StatusOK, []model.HistoryEntry{})
		return
	}

	var (
		history []model.HistoryEntry
		err     error
	)
	if taskID := strings.TrimSpace(r.URL.Query().Get("task")); taskID != "" {
		history, err = s.journal.ListHistory(r.Context(), taskID)
	} else {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		history, err = s.journal.ListRecent(r.Context(), limit)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func (s *Server) exportHandler(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}
	data, err := export.Export(s.store.Filtered(), format)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	w.Header().Set("Content-Type", export.ContentType(format))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=todos.%s", strings.ToLower(format)))
	_, _ = w.Write(data)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, todo.ErrNotFound), errors.Is(err, todo.ErrInvalidIndex):
		return http.StatusNotFound
	case errors.Is(err, todo.ErrEmptyText),
		errors.Is(err, todo.ErrInvalidPriority),
		errors.Is(err, todo.ErrInvalidDate),
		errors.Is(err, todo.ErrPastDate),
		errors.Is(err, export.ErrUnknownFormat):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respond redirects browser form posts back to the list and answers API
// clients with JSON.
func respond(w http.ResponseWriter, r *http.Request, status int, payload any) {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		writeJSON(w, status, payload)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.WriteHeader(status)
	_, _ = w.Write([]byte(err.Error()))
}
