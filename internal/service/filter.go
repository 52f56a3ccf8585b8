package service

import (
	"strings"

	"habit-tracker/internal/model"
)

// Search keeps trackers whose name contains query, ignoring case. An empty
// query returns the input unchanged. Categories left empty are dropped.
func Search(categories []model.Category, query string) []model.Category {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return categories
	}
	return keepTrackers(categories, func(t model.Tracker) bool {
		return strings.Contains(strings.ToLower(t.Name), needle)
	})
}

// FilterByCompletion keeps trackers whose completion state equals want.
func FilterByCompletion(categories []model.Category, completed func(trackerID string) bool, want bool) []model.Category {
	return keepTrackers(categories, func(t model.Tracker) bool {
		return completed(t.ID) == want
	})
}

func keepTrackers(categories []model.Category, keep func(model.Tracker) bool) []model.Category {
	out := make([]model.Category, 0, len(categories))
	for _, cat := range categories {
		var kept []model.Tracker
		for _, tr := range cat.Trackers {
			if keep(tr) {
				kept = append(kept, tr)
			}
		}
		if len(kept) == 0 {
			continue
		}
		cat.Trackers = kept
		out = append(out, cat)
	}
	return out
}
