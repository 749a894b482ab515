package todo

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/selintasman/todo-list/internal/model"
)

// ApplySort orders the displayed tasks by the active sort mode.
//
// By default only the tasks matching the search are reordered, each taking
// one of the slots the matches already occupied, and every other task keeps
// its position. With Options.CollapseOnSort the sorted search result replaces
// the whole list, so tasks hidden by the search are dropped even when no sort
// mode is active.
func (s *Store) ApplySort() {
	s.mu.Lock()
	defer s.unlock()

	positions := s.visible()
	view := make([]model.Task, 0, len(positions))
	for _, pos := range positions {
		view = append(view, s.tasks[pos])
	}

	mode := s.mode()
	switch mode {
	case model.SortByDate:
		slices.SortStableFunc(view, s.compareFinishDate)
	case model.SortByPriority:
		slices.SortStableFunc(view, comparePriority)
	}

	before := len(s.tasks)
	if s.opts.CollapseOnSort {
		s.tasks = view
	} else {
		for i, pos := range positions {
			s.tasks[pos] = view[i]
		}
	}

	s.emit(model.EventSorted, "", fmt.Sprintf("sorted: mode=%s matched=%d tasks=%d->%d", mode, len(view), before, len(s.tasks)))
}

func (s *Store) compareFinishDate(a, b model.Task) int {
	switch {
	case a.FinishDate == nil && b.FinishDate == nil:
		return 0
	case a.FinishDate == nil:
		if s.opts.UndatedLast {
			return 1
		}
		return -1
	case b.FinishDate == nil:
		if s.opts.UndatedLast {
			return -1
		}
		return 1
	default:
		return a.FinishDate.Compare(*b.FinishDate)
	}
}

// comparePriority sorts higher ranks first.
func comparePriority(a, b model.Task) int {
	return cmp.Compare(b.Priority.Rank(), a.Priority.Rank())
}
