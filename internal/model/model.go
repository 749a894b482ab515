package model

import (
	"fmt"
	"strings"
	"time"
)

type Task struct {
	ID         string     `json:"id"`
	Text       string     `json:"text"`
	FinishDate *time.Time `json:"finish_date"`
	IsDone     bool       `json:"is_done"`
	Priority   Priority   `json:"priority"`
}

type Priority int

const (
	PriorityUnset Priority = iota
	PriorityLow
	PriorityMedium
	PriorityHigh
)

// Rank orders priorities for sorting. Unset ranks below Low.
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	default:
		return 0
	}
}

func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "Low"
	case PriorityMedium:
		return "Medium"
	case PriorityHigh:
		return "High"
	default:
		return ""
	}
}

func (p Priority) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Priority) UnmarshalText(data []byte) error {
	value := strings.TrimSpace(string(data))
	if value == "" {
		*p = PriorityUnset
		return nil
	}
	parsed, ok := ParsePriority(value)
	if !ok {
		return fmt.Errorf("unknown priority %q", value)
	}
	*p = parsed
	return nil
}

// ParsePriority accepts Low, Medium and High in any case.
func ParsePriority(value string) (Priority, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "low":
		return PriorityLow, true
	case "medium":
		return PriorityMedium, true
	case "high":
		return PriorityHigh, true
	default:
		return PriorityUnset, false
	}
}

// NextPriority cycles unset -> Low -> Medium -> High -> Low.
func NextPriority(p Priority) Priority {
	switch p {
	case PriorityLow:
		return PriorityMedium
	case PriorityMedium:
		return PriorityHigh
	default:
		return PriorityLow
	}
}

type ColorHint struct {
	Color      string `json:"color"`
	Background string `json:"background"`
}

func PriorityColor(p Priority) ColorHint {
	switch p {
	case PriorityLow:
		return ColorHint{Color: "white", Background: "rgb(39 114 89)"}
	case PriorityMedium:
		return ColorHint{Color: "white", Background: "rgb(240 93 7 / 84%)"}
	case PriorityHigh:
		return ColorHint{Color: "white", Background: "rgb(186 17 59)"}
	default:
		return ColorHint{Color: "black", Background: "white"}
	}
}

type SortMode int

const (
	SortNone SortMode = iota
	SortByDate
	SortByPriority
)

func (m SortMode) String() string {
	switch m {
	case SortByDate:
		return "date"
	case SortByPriority:
		return "priority"
	default:
		return "none"
	}
}

func (m SortMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

const (
	EventAdded      = "added"
	EventFinishDate = "finish_date"
	EventPriority   = "priority"
	EventDone       = "done"
	EventDeleted    = "deleted"
	EventCleared    = "cleared"
	EventSearch     = "search"
	EventSortMode   = "sort_mode"
	EventSorted     = "sorted"
)

type Event struct {
	Type    string
	TaskID  string
	Details string
	At      time.Time
}

type HistoryEntry struct {
	ID        int64     `json:"id"`
	TaskID    string    `json:"task_id"`
	EventType string    `json:"event_type"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"created_at"`
}
