package todo

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/selintasman/todo-list/internal/model"
)

var (
	ErrInvalidIndex    = errors.New("invalid task index")
	ErrInvalidPriority = errors.New("invalid priority")
	ErrEmptyText       = errors.New("task text is required")
	ErrNotFound        = errors.New("task not found")
)

type Options struct {
	// CollapseOnSort makes ApplySort replace the task list with the sorted
	// search results, dropping every task that does not match the search.
	CollapseOnSort bool
	// UndatedLast sorts tasks without a finish date after dated ones.
	UndatedLast bool
	// OnEvent is called for each successful mutation after the store lock is
	// released, in mutation order. It may read the store but must not mutate it.
	OnEvent func(model.Event)
	Now     func() time.Time
}

// Store holds the ordered task list of one session. Operations that take an
// index address the displayed sequence, which is the search result view.
type Store struct {
	mu sync.Mutex
	// emitMu is taken before mu is released so hooks run in mutation order.
	emitMu  sync.Mutex
	pending []model.Event

	tasks          []model.Task
	searchText     string
	sortByDate     bool
	sortByPriority bool

	opts Options
}

// Snapshot is a consistent read of the store taken under one lock.
type Snapshot struct {
	Tasks      []model.Task   `json:"tasks"`
	Total      int            `json:"total"`
	SearchText string         `json:"search_text"`
	Mode       model.SortMode `json:"sort_mode"`
}

func NewStore(opts Options) *Store {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Store{opts: opts}
}

func (s *Store) Add(text string) (model.Task, error) {
	if text == "" {
		return model.Task{}, ErrEmptyText
	}

	s.mu.Lock()
	defer s.unlock()

	task := model.Task{ID: uuid.NewString(), Text: text}
	s.tasks = append(s.tasks, task)
	s.emit(model.EventAdded, task.ID, fmt.Sprintf("added: text='%s'", text))
	return cloneTask(task), nil
}

func (s *Store) SetFinishDate(index int, date time.Time) error {
	s.mu.Lock()
	defer s.unlock()

	pos, err := s.resolve(index)
	if err != nil {
		return err
	}
	s.setFinishDate(pos, date)
	return nil
}

func (s *Store) SetFinishDateByID(id string, date time.Time) error {
	s.mu.Lock()
	defer s.unlock()

	pos, err := s.lookup(id)
	if err != nil {
		return err
	}
	s.setFinishDate(pos, date)
	return nil
}

func (s *Store) setFinishDate(pos int, date time.Time) {
	task := &s.tasks[pos]
	before := formatDate(task.FinishDate)
	task.FinishDate = &date
	s.emit(model.EventFinishDate, task.ID, formatChange("finish date", before, formatDate(task.FinishDate)))
}

// SetPriority returns the display colors for the new priority.
func (s *Store) SetPriority(index int, priority model.Priority) (model.ColorHint, error) {
	if !priority.Valid() {
		return model.ColorHint{}, fmt.Errorf("%w: %d", ErrInvalidPriority, priority)
	}

	s.mu.Lock()
	defer s.unlock()

	pos, err := s.resolve(index)
	if err != nil {
		return model.ColorHint{}, err
	}
	s.setPriority(pos, priority)
	return model.PriorityColor(priority), nil
}

func (s *Store) SetPriorityByID(id string, priority model.Priority) (model.ColorHint, error) {
	if !priority.Valid() {
		return model.ColorHint{}, fmt.Errorf("%w: %d", ErrInvalidPriority, priority)
	}

	s.mu.Lock()
	defer s.unlock()

	pos, err := s.lookup(id)
	if err != nil {
		return model.ColorHint{}, err
	}
	s.setPriority(pos, priority)
	return model.PriorityColor(priority), nil
}

func (s *Store) setPriority(pos int, priority model.Priority) {
	task := &s.tasks[pos]
	before := task.Priority.String()
	task.Priority = priority
	s.emit(model.EventPriority, task.ID, formatChange("priority", before, priority.String()))
}

// MarkAsDone flags the task done and moves it to the end of the list. An
// active sort mode is not re-applied.
func (s *Store) MarkAsDone(index int) error {
	s.mu.Lock()
	defer s.unlock()

	pos, err := s.resolve(index)
	if err != nil {
		return err
	}
	s.markDone(pos)
	return nil
}

func (s *Store) MarkAsDoneByID(id string) error {
	s.mu.Lock()
	defer s.unlock()

	pos, err := s.lookup(id)
	if err != nil {
		return err
	}
	s.markDone(pos)
	return nil
}

func (s *Store) markDone(pos int) {
	task := s.tasks[pos]
	task.IsDone = true
	s.tasks = append(slices.Delete(s.tasks, pos, pos+1), task)
	s.emit(model.EventDone, task.ID, fmt.Sprintf("done: text='%s' moved from %d to %d", task.Text, pos, len(s.tasks)-1))
}

func (s *Store) Delete(index int) error {
	s.mu.Lock()
	defer s.unlock()

	pos, err := s.resolve(index)
	if err != nil {
		return err
	}
	s.delete(pos)
	return nil
}

func (s *Store) DeleteByID(id string) error {
	s.mu.Lock()
	defer s.unlock()

	pos, err := s.lookup(id)
	if err != nil {
		return err
	}
	s.delete(pos)
	return nil
}

func (s *Store) delete(pos int) {
	task := s.tasks[pos]
	s.tasks = slices.Delete(s.tasks, pos, pos+1)
	s.emit(model.EventDeleted, task.ID, formatDeletedDetails(task))
}

func (s *Store) ClearAll() {
	s.mu.Lock()
	defer s.unlock()

	count := len(s.tasks)
	s.tasks = nil
	s.emit(model.EventCleared, "", fmt.Sprintf("cleared: %d tasks", count))
}

func (s *Store) SetSearchText(text string) {
	s.mu.Lock()
	defer s.unlock()

	if text == s.searchText {
		return
	}
	before := s.searchText
	s.searchText = text
	s.emit(model.EventSearch, "", formatChange("search", before, text))
}

func (s *Store) SearchText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.searchText
}

func (s *Store) ToggleSortByDate() {
	s.mu.Lock()
	defer s.unlock()

	s.sortByDate = !s.sortByDate
	s.sortByPriority = false
	s.emit(model.EventSortMode, "", "sort mode: "+s.mode().String())
}

func (s *Store) ToggleSortByPriority() {
	s.mu.Lock()
	defer s.unlock()

	s.sortByPriority = !s.sortByPriority
	s.sortByDate = false
	s.emit(model.EventSortMode, "", "sort mode: "+s.mode().String())
}

func (s *Store) SortByDate() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortByDate
}

func (s *Store) SortByPriority() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortByPriority
}

func (s *Store) Mode() model.SortMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode()
}

func (s *Store) mode() model.SortMode {
	switch {
	case s.sortByDate:
		return model.SortByDate
	case s.sortByPriority:
		return model.SortByPriority
	default:
		return model.SortNone
	}
}

// Tasks returns the full task list in stored order, ignoring the search.
func (s *Store) Tasks() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]model.Task, 0, len(s.tasks))
	for _, task := range s.tasks {
		result = append(result, cloneTask(task))
	}
	return result
}

// Filtered returns the displayed sequence: tasks whose text contains the
// search text, case-insensitively.
func (s *Store) Filtered() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filtered()
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// IndexOf reports the position of a task in the displayed sequence.
func (s *Store) IndexOf(id string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for index, pos := range s.visible() {
		if s.tasks[pos].ID == id {
			return index, true
		}
	}
	return -1, false
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{
		Tasks:      s.filtered(),
		Total:      len(s.tasks),
		SearchText: s.searchText,
		Mode:       s.mode(),
	}
}

func (s *Store) filtered() []model.Task {
	positions := s.visible()
	result := make([]model.Task, 0, len(positions))
	for _, pos := range positions {
		result = append(result, cloneTask(s.tasks[pos]))
	}
	return result
}

// visible maps displayed indices to positions in s.tasks.
func (s *Store) visible() []int {
	needle := strings.ToLower(s.searchText)
	positions := make([]int, 0, len(s.tasks))
	for pos, task := range s.tasks {
		if strings.Contains(strings.ToLower(task.Text), needle) {
			positions = append(positions, pos)
		}
	}
	return positions
}

func (s *Store) resolve(index int) (int, error) {
	positions := s.visible()
	if index < 0 || index >= len(positions) {
		return 0, fmt.Errorf("%w: %d (displayed %d)", ErrInvalidIndex, index, len(positions))
	}
	return positions[index], nil
}

func (s *Store) lookup(id string) (int, error) {
	for pos, task := range s.tasks {
		if task.ID == id {
			return pos, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// emit queues an event while s.mu is held; unlock delivers it.
func (s *Store) emit(eventType, taskID, details string) {
	if s.opts.OnEvent == nil {
		return
	}
	s.pending = append(s.pending, model.Event{Type: eventType, TaskID: taskID, Details: details, At: s.opts.Now()})
}

// unlock releases s.mu and then hands queued events to OnEvent.
func (s *Store) unlock() {
	pending := s.pending
	s.pending = nil
	if len(pending) == 0 {
		s.mu.Unlock()
		return
	}

	s.emitMu.Lock()
	s.mu.Unlock()
	defer s.emitMu.Unlock()
	for _, event := range pending {
		s.opts.OnEvent(event)
	}
}

func cloneTask(task model.Task) model.Task {
	if task.FinishDate != nil {
		date := *task.FinishDate
		task.FinishDate = &date
	}
	return task
}

func formatDeletedDetails(task model.Task) string {
	return fmt.Sprintf("deleted: text='%s' priority=%s due=%s done=%t", task.Text, valueOrNone(task.Priority.String()), formatDate(task.FinishDate), task.IsDone)
}

func formatChange(field, before, after string) string {
	return fmt.Sprintf("%s: '%s' -> '%s'", field, valueOrNone(before), valueOrNone(after))
}

func valueOrNone(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "none"
	}
	return trimmed
}

func formatDate(value *time.Time) string {
	if value == nil {
		return "none"
	}
	return value.Format(DateLayout)
}
