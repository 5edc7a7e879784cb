package models

import (
	"encoding/json"
	"strconv"
	"time"

	"dreamportal/internal/uuid"
)

// Normalization turns raw records from any persistence source (database
// rows decoded as JSON, realtime payloads, local document files) into
// fully defaulted entities. These functions are total: malformed input
// maps to a valid default, never an error.

// NormalizeItem builds a DreamItem from a raw record.
func NormalizeItem(raw map[string]interface{}) DreamItem {
	progress := ClampProgress(int(numValue(raw["progress"], 0)))
	item := DreamItem{
		ID:             strValue(raw["id"], ""),
		OwnerID:        strValue(raw["owner_id"], ""),
		Title:          strValue(raw["title"], DefaultItemTitle),
		Price:          nonNegative(numValue(raw["price"], 0)),
		Progress:       progress,
		Status:         StatusForProgress(progress),
		Link:           strValue(raw["link"], ""),
		CreatedAt:      timestampValue(raw["created_at"]),
		Image:          strValue(raw["image"], ""),
		ImageFit:       fitValue(raw["image_fit"]),
		ImageScale:     positiveOr(numValue(raw["image_scale"], 1), 1),
		ImagePositionX: clampPercent(numValue(raw["image_position_x"], 50)),
		ImagePositionY: clampPercent(numValue(raw["image_position_y"], 50)),
	}
	if item.Title == "" {
		item.Title = DefaultItemTitle
	}
	return item
}

// NormalizeEvent builds a CalendarEvent from a raw record.
func NormalizeEvent(raw map[string]interface{}) CalendarEvent {
	event := CalendarEvent{
		ID:          strValue(raw["id"], ""),
		OwnerID:     strValue(raw["owner_id"], ""),
		Title:       strValue(raw["title"], DefaultEventTitle),
		Date:        dateValue(raw["date"]),
		Description: strValue(raw["description"], ""),
	}
	if event.Title == "" {
		event.Title = DefaultEventTitle
	}
	return event
}

// NormalizeSettings builds Settings from a raw profile record, falling back
// to defaults for anything absent or malformed.
func NormalizeSettings(raw map[string]interface{}) Settings {
	settings := DefaultSettings()
	if themeRaw, ok := raw["theme"].(map[string]interface{}); ok && len(themeRaw) > 0 {
		settings.Theme = MergeTheme(settings.Theme, themeRaw)
	}
	if levels := NormalizeLevels(raw["budget_levels"]); len(levels) > 0 {
		settings.BudgetLevels = levels
	}
	settings.InitialSavings = nonNegative(numValue(raw["initial_savings"], 0))
	return settings
}

// MergeTheme overlays the fields present in a raw theme document onto the
// base theme. Absent keys keep their current values; this is the partial
// merge the realtime profile protocol requires.
func MergeTheme(base Theme, raw map[string]interface{}) Theme {
	set := func(target *string, key string) {
		if v, ok := raw[key].(string); ok && v != "" {
			*target = v
		}
	}
	set(&base.PrimaryColor, "primaryColor")
	set(&base.SecondaryColor, "secondaryColor")
	set(&base.PortalTitle, "portalTitle")
	set(&base.PortalTitleColor, "portalTitleColor")
	set(&base.PortalSubtitle, "portalSubtitle")
	set(&base.PortalSubtitleColor, "portalSubtitleColor")
	set(&base.BackgroundImage, "backgroundImage")
	set(&base.CardColor, "cardColor")
	set(&base.FontColor, "fontColor")
	set(&base.BgGradientStart, "bgGradientStart")
	set(&base.BgGradientEnd, "bgGradientEnd")
	set(&base.ActionButtonColor, "actionButtonColor")
	set(&base.ObjectAnimation, "objectAnimation")
	return base
}

// NormalizeLevels coerces a raw milestone list. Entries that are not
// objects are skipped; missing ids are regenerated, targets clamp to >= 0.
func NormalizeLevels(raw interface{}) LevelList {
	entries, ok := raw.([]interface{})
	if !ok {
		return nil
	}
	levels := make(LevelList, 0, len(entries))
	for _, entry := range entries {
		rec, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		level := BudgetLevel{
			ID:     strValue(rec["id"], ""),
			Label:  strValue(rec["label"], "Marco"),
			Target: nonNegative(numValue(rec["target"], 0)),
		}
		if level.ID == "" {
			level.ID = uuid.New()
		}
		levels = append(levels, level)
	}
	return levels
}

func strValue(v interface{}, fallback string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return fallback
}

// numValue coerces the numeric encodings seen across backends: float64
// from JSON, integer types from SQL scans, json.Number, numeric strings.
func numValue(v interface{}, fallback float64) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return f
		}
	case string:
		if f, err := strconv.ParseFloat(n, 64); err == nil {
			return f
		}
	}
	return fallback
}

// timestampValue accepts an epoch-millisecond number or a date string and
// normalizes to epoch milliseconds, defaulting to now.
func timestampValue(v interface{}) int64 {
	switch t := v.(type) {
	case float64:
		if t > 0 {
			return int64(t)
		}
	case int64:
		if t > 0 {
			return t
		}
	case json.Number:
		if ms, err := t.Int64(); err == nil && ms > 0 {
			return ms
		}
	case string:
		if ms, err := strconv.ParseInt(t, 10, 64); err == nil && ms > 0 {
			return ms
		}
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return parsed.UnixMilli()
		}
		if parsed, err := time.Parse(EventDateLayout, t); err == nil {
			return parsed.UnixMilli()
		}
	}
	return time.Now().UnixMilli()
}

func dateValue(v interface{}) string {
	if s, ok := v.(string); ok {
		if _, err := time.Parse(EventDateLayout, s); err == nil {
			return s
		}
	}
	return time.Now().Format(EventDateLayout)
}

func fitValue(v interface{}) ImageFit {
	if s, ok := v.(string); ok && ImageFit(s) == FitContain {
		return FitContain
	}
	return FitCover
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

func positiveOr(v, fallback float64) float64 {
	if v <= 0 {
		return fallback
	}
	return v
}
