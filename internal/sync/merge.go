package sync

import (
	"dreamportal/internal/gateway"
	"dreamportal/internal/models"
)

// Merge functions fold a realtime change into a collection. They are pure
// (current collection, change) -> new collection transitions, written to be
// order-insensitive and idempotent: the optimistic local write and its
// remote echo may arrive in either order, and either may repeat.

// mergeItemChange applies one item change. INSERT discards notifications
// whose id is already present, because the optimistic insert beat the echo;
// UPDATE ignores ids that are not present; DELETE of an absent id is a no-op.
func mergeItemChange(items []models.DreamItem, change gateway.Change) []models.DreamItem {
	switch change.Type {
	case gateway.ChangeInsert:
		for _, existing := range items {
			if existing.ID == change.ID {
				return items
			}
		}
		item := models.NormalizeItem(change.Record)
		if item.ID == "" {
			item.ID = change.ID
		}
		return append([]models.DreamItem{item}, items...)

	case gateway.ChangeUpdate:
		for i, existing := range items {
			if existing.ID == change.ID {
				item := models.NormalizeItem(change.Record)
				if item.ID == "" {
					item.ID = change.ID
				}
				if item.OwnerID == "" {
					item.OwnerID = existing.OwnerID
				}
				out := make([]models.DreamItem, len(items))
				copy(out, items)
				out[i] = item
				return out
			}
		}
		return items

	case gateway.ChangeDelete:
		return removeItem(items, change.ID)
	}
	return items
}

func removeItem(items []models.DreamItem, id string) []models.DreamItem {
	out := make([]models.DreamItem, 0, len(items))
	for _, item := range items {
		if item.ID != id {
			out = append(out, item)
		}
	}
	return out
}

// mergeEventChange applies one calendar-event change. Events are only ever
// inserted and deleted.
func mergeEventChange(events []models.CalendarEvent, change gateway.Change) []models.CalendarEvent {
	switch change.Type {
	case gateway.ChangeInsert:
		for _, existing := range events {
			if existing.ID == change.ID {
				return events
			}
		}
		event := models.NormalizeEvent(change.Record)
		if event.ID == "" {
			event.ID = change.ID
		}
		return append(append([]models.CalendarEvent{}, events...), event)

	case gateway.ChangeDelete:
		out := make([]models.CalendarEvent, 0, len(events))
		for _, event := range events {
			if event.ID != change.ID {
				out = append(out, event)
			}
		}
		return out
	}
	return events
}

// mergeSettingsChange folds a profile UPDATE into the current settings.
// Theme fields merge partially; milestones and savings replace wholesale
// when the notification carries them.
func mergeSettingsChange(settings models.Settings, record map[string]interface{}) models.Settings {
	if themeRaw, ok := record["theme"].(map[string]interface{}); ok && len(themeRaw) > 0 {
		settings.Theme = models.MergeTheme(settings.Theme, themeRaw)
	}
	if _, ok := record["budget_levels"]; ok {
		if levels := models.NormalizeLevels(record["budget_levels"]); levels != nil {
			settings.BudgetLevels = levels
		}
	}
	if v, ok := record["initial_savings"]; ok && v != nil {
		settings.InitialSavings = savingsValue(v, settings.InitialSavings)
	}
	return settings
}

func savingsValue(v interface{}, fallback float64) float64 {
	switch n := v.(type) {
	case float64:
		if n >= 0 {
			return n
		}
		return 0
	case int:
		if n >= 0 {
			return float64(n)
		}
		return 0
	}
	return fallback
}
