package model

import (
	"fmt"
	"strings"
)

// FilterType selects which of the date's trackers are shown.
type FilterType string

const (
	FilterAll          FilterType = "all"
	FilterToday        FilterType = "today"
	FilterCompleted    FilterType = "completed"
	FilterNotCompleted FilterType = "not-completed"
)

var FilterTypes = []FilterType{FilterAll, FilterToday, FilterCompleted, FilterNotCompleted}

func (f FilterType) Title() string {
	switch f {
	case FilterAll:
		return "Все трекеры"
	case FilterToday:
		return "Трекеры на сегодня"
	case FilterCompleted:
		return "Завершённые"
	case FilterNotCompleted:
		return "Незавершённые"
	default:
		return string(f)
	}
}

func (f FilterType) Valid() bool {
	for _, known := range FilterTypes {
		if f == known {
			return true
		}
	}
	return false
}

// ParseFilterType accepts the canonical names plus a few spellings used
// in chat ("notcompleted", "done", "todo").
func ParseFilterType(s string) (FilterType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return FilterAll, nil
	case "today":
		return FilterToday, nil
	case "completed", "done":
		return FilterCompleted, nil
	case "not-completed", "notcompleted", "not_completed", "todo":
		return FilterNotCompleted, nil
	}
	return "", fmt.Errorf("unknown filter %q", s)
}
