package models

import (
	"testing"
	"time"
)

func TestNormalizeItem(t *testing.T) {
	t.Run("complete_record", func(t *testing.T) {
		raw := map[string]interface{}{
			"id":               "abc",
			"owner_id":         "owner-1",
			"title":            "Viagem ao Japão",
			"price":            12500.0,
			"progress":         42.0,
			"link":             "https://example.com",
			"created_at":       1700000000000.0,
			"image":            "https://cdn/img.jpg",
			"image_fit":        "contain",
			"image_scale":      1.5,
			"image_position_x": 25.0,
			"image_position_y": 75.0,
		}
		item := NormalizeItem(raw)

		if item.Title != "Viagem ao Japão" || item.Price != 12500 || item.Progress != 42 {
			t.Errorf("unexpected core fields: %+v", item)
		}
		if item.Status != StatusInProgress {
			t.Errorf("status must derive from progress, got %s", item.Status)
		}
		if item.CreatedAt != 1700000000000 {
			t.Errorf("expected epoch ms kept, got %d", item.CreatedAt)
		}
		if item.ImageFit != FitContain || item.ImageScale != 1.5 {
			t.Errorf("unexpected image fields: %+v", item)
		}
	})

	t.Run("empty_record_gets_defaults", func(t *testing.T) {
		item := NormalizeItem(map[string]interface{}{})

		if item.Title != DefaultItemTitle {
			t.Errorf("expected placeholder title, got %q", item.Title)
		}
		if item.Price != 0 || item.Progress != 0 {
			t.Errorf("expected zero price/progress, got %v/%d", item.Price, item.Progress)
		}
		if item.Status != StatusPending {
			t.Errorf("expected PENDING, got %s", item.Status)
		}
		if item.ImageFit != FitCover || item.ImageScale != 1 {
			t.Errorf("expected cover/1 image defaults, got %s/%v", item.ImageFit, item.ImageScale)
		}
		if item.ImagePositionX != 50 || item.ImagePositionY != 50 {
			t.Errorf("expected centered position, got %v/%v", item.ImagePositionX, item.ImagePositionY)
		}
		if item.CreatedAt == 0 {
			t.Error("expected created_at defaulted to now")
		}
	})

	t.Run("malformed_values_never_panic", func(t *testing.T) {
		raw := map[string]interface{}{
			"title":       nil,
			"price":       "not-a-number",
			"progress":    []int{1, 2},
			"created_at":  map[string]string{},
			"image_fit":   42,
			"image_scale": "zero",
		}
		item := NormalizeItem(raw)

		if item.Title != DefaultItemTitle || item.Price != 0 || item.Progress != 0 {
			t.Errorf("malformed input must fall back to defaults: %+v", item)
		}
		if item.ImageFit != FitCover || item.ImageScale != 1 {
			t.Errorf("malformed image input must fall back: %+v", item)
		}
	})

	t.Run("status_field_in_record_is_ignored", func(t *testing.T) {
		raw := map[string]interface{}{"progress": 85.0, "status": "PENDING"}
		item := NormalizeItem(raw)
		if item.Status != StatusAlmostThere {
			t.Errorf("stored status must not override derivation, got %s", item.Status)
		}
	})

	t.Run("date_string_timestamp", func(t *testing.T) {
		raw := map[string]interface{}{"created_at": "2024-03-01T10:00:00Z"}
		item := NormalizeItem(raw)
		want := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC).UnixMilli()
		if item.CreatedAt != want {
			t.Errorf("expected %d, got %d", want, item.CreatedAt)
		}
	})
}

func TestNormalizeEvent(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		event := NormalizeEvent(map[string]interface{}{})
		if event.Title != DefaultEventTitle {
			t.Errorf("expected placeholder title, got %q", event.Title)
		}
		if _, err := time.Parse(EventDateLayout, event.Date); err != nil {
			t.Errorf("expected valid default date, got %q", event.Date)
		}
	})

	t.Run("invalid_date_replaced", func(t *testing.T) {
		event := NormalizeEvent(map[string]interface{}{"date": "03/15/2024"})
		if _, err := time.Parse(EventDateLayout, event.Date); err != nil {
			t.Errorf("expected normalized date, got %q", event.Date)
		}
	})
}

func TestNormalizeSettings(t *testing.T) {
	t.Run("empty_profile_gets_defaults", func(t *testing.T) {
		settings := NormalizeSettings(map[string]interface{}{})
		if settings.Theme != DefaultTheme() {
			t.Error("expected default theme")
		}
		if len(settings.BudgetLevels) != 3 {
			t.Errorf("expected 3 seeded levels, got %d", len(settings.BudgetLevels))
		}
		if settings.InitialSavings != 0 {
			t.Errorf("expected zero savings, got %v", settings.InitialSavings)
		}
	})

	t.Run("partial_theme_merges_over_defaults", func(t *testing.T) {
		raw := map[string]interface{}{
			"theme": map[string]interface{}{"primaryColor": "#0ea5e9"},
		}
		settings := NormalizeSettings(raw)
		if settings.Theme.PrimaryColor != "#0ea5e9" {
			t.Errorf("expected merged primary color, got %q", settings.Theme.PrimaryColor)
		}
		if settings.Theme.PortalTitle != DefaultTheme().PortalTitle {
			t.Error("unset theme fields must keep defaults")
		}
	})

	t.Run("levels_replace_wholesale", func(t *testing.T) {
		raw := map[string]interface{}{
			"budget_levels": []interface{}{
				map[string]interface{}{"id": "a", "label": "Solo", "target": 300.0},
			},
			"initial_savings": 150.0,
		}
		settings := NormalizeSettings(raw)
		if len(settings.BudgetLevels) != 1 || settings.BudgetLevels[0].Target != 300 {
			t.Errorf("expected single replacement level, got %+v", settings.BudgetLevels)
		}
		if settings.InitialSavings != 150 {
			t.Errorf("expected savings 150, got %v", settings.InitialSavings)
		}
	})

	t.Run("malformed_level_entries_skipped", func(t *testing.T) {
		raw := map[string]interface{}{
			"budget_levels": []interface{}{
				"garbage",
				map[string]interface{}{"label": "Sem ID", "target": -5.0},
			},
		}
		levels := NormalizeLevels(raw["budget_levels"])
		if len(levels) != 1 {
			t.Fatalf("expected 1 usable level, got %d", len(levels))
		}
		if levels[0].ID == "" {
			t.Error("missing level id must be regenerated")
		}
		if levels[0].Target != 0 {
			t.Errorf("negative target must clamp to 0, got %v", levels[0].Target)
		}
	})
}

func TestLevelListSorted(t *testing.T) {
	levels := LevelList{
		{ID: "c", Target: 15000},
		{ID: "a", Target: 1000},
		{ID: "b", Target: 5000},
	}
	sorted := levels.Sorted()
	if sorted[0].ID != "a" || sorted[1].ID != "b" || sorted[2].ID != "c" {
		t.Errorf("expected ascending target order, got %+v", sorted)
	}
	if levels[0].ID != "c" {
		t.Error("Sorted must not mutate the receiver")
	}
}
