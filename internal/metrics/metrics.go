// Package metrics derives budget aggregates from the dream checklist.
package metrics

import (
	"math"

	"dreamportal/internal/models"
)

// Summary is the derived view the stats board renders. It is recomputed
// from scratch whenever items, savings, or milestones change.
type Summary struct {
	// TotalTarget is the combined price of every dream item.
	TotalTarget float64 `json:"total_target"`
	// Invested is the weighted progress contribution of every item plus
	// the manually tracked baseline savings.
	Invested float64 `json:"invested"`
	// ProgressPercent is invested over total, capped at 100.
	ProgressPercent int `json:"progress_percent"`
	// CurrentLevel is the highest milestone already reached, if any.
	CurrentLevel *models.BudgetLevel `json:"current_level,omitempty"`
	// NextLevel is the lowest milestone still ahead, if any.
	NextLevel *models.BudgetLevel `json:"next_level,omitempty"`
}

// Compute derives the summary. Pure function: no state, no I/O.
//
// Invested reads the exact 0-100 progress fraction per item rather than
// the coarse status stage, so the bar moves continuously instead of in
// jumps.
func Compute(items []models.DreamItem, initialSavings float64, levels models.LevelList) Summary {
	var total, invested float64
	for _, item := range items {
		total += item.Price
		invested += item.Price * float64(models.ClampProgress(item.Progress)) / 100
	}
	invested += initialSavings

	percent := 0
	if total > 0 {
		percent = int(math.Round(math.Min(invested/total, 1) * 100))
	}

	summary := Summary{
		TotalTarget:     total,
		Invested:        invested,
		ProgressPercent: percent,
	}

	for _, level := range levels.Sorted() {
		level := level
		if invested >= level.Target {
			summary.CurrentLevel = &level
		} else if summary.NextLevel == nil {
			summary.NextLevel = &level
		}
	}

	return summary
}
