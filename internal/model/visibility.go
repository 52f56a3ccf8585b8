package model

import "time"

// DueTrackers keeps the trackers due on onDate. Category order and tracker
// order are preserved and categories left empty are dropped. The input is
// not modified.
func DueTrackers(categories []Category, onDate time.Time, cal Calendar) []Category {
	out := make([]Category, 0, len(categories))
	for _, cat := range categories {
		var due []Tracker
		for _, tr := range cat.Trackers {
			if tr.DueOn(cal, onDate) {
				due = append(due, tr)
			}
		}
		if len(due) == 0 {
			continue
		}
		cat.Trackers = due
		out = append(out, cat)
	}
	return out
}
