package todo

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/selintasman/todo-list/internal/model"
)

const DateLayout = "2006-01-02"

var (
	ErrInvalidDate = errors.New("invalid finish date")
	ErrPastDate    = errors.New("finish date is before today")
)

// Input parsing for presentation layers. The store itself only rejects
// empty text, so forms run these before calling into it.

func ParseText(value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", ErrEmptyText
	}
	return trimmed, nil
}

func ParsePriority(value string) (model.Priority, error) {
	priority, ok := model.ParsePriority(value)
	if !ok {
		return model.PriorityUnset, fmt.Errorf("%w %q", ErrInvalidPriority, strings.TrimSpace(value))
	}
	return priority, nil
}

// ParseFinishDate reads a YYYY-MM-DD date in now's location and rejects days
// before now's day.
func ParseFinishDate(value string, now time.Time) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	parsed, err := time.ParseInLocation(DateLayout, trimmed, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q", ErrInvalidDate, trimmed)
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if parsed.Before(today) {
		return time.Time{}, fmt.Errorf("%w: %s", ErrPastDate, trimmed)
	}
	return parsed, nil
}
