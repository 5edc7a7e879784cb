package gateway

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"dreamportal/internal/models"
	"dreamportal/internal/testutil"
)

func newTestLocal(t *testing.T) (Gateway, string) {
	t.Helper()
	dir := t.TempDir()
	gw, err := NewLocalGateway(dir, NewMemoryFeed())
	if err != nil {
		t.Fatalf("failed to create local gateway: %v", err)
	}
	return gw, dir
}

func TestLocalItems(t *testing.T) {
	ctx := context.Background()

	t.Run("missing_document_is_empty_state", func(t *testing.T) {
		gw, _ := newTestLocal(t)
		items, err := gw.ListItems(ctx, "owner-1")
		testutil.AssertNoError(t, err)
		if len(items) != 0 {
			t.Errorf("expected no items, got %d", len(items))
		}
	})

	t.Run("create_round_trips_through_document", func(t *testing.T) {
		gw, dir := newTestLocal(t)

		item := &models.DreamItem{OwnerID: "owner-1", Title: "Viagem", Price: 3000, Progress: 50}
		testutil.AssertNoError(t, gw.CreateItem(ctx, item))

		if _, err := os.Stat(filepath.Join(dir, "owner-1", "items.v1.json")); err != nil {
			t.Fatalf("expected versioned document on disk: %v", err)
		}

		items, err := gw.ListItems(ctx, "owner-1")
		testutil.AssertNoError(t, err)
		if len(items) != 1 {
			t.Fatalf("expected 1 item, got %d", len(items))
		}
		if items[0].Title != "Viagem" || items[0].Price != 3000 || items[0].Progress != 50 {
			t.Errorf("unexpected round trip: %+v", items[0])
		}
		if items[0].Status != models.StatusInProgress {
			t.Errorf("status must derive on read, got %s", items[0].Status)
		}
	})

	t.Run("newest_items_first", func(t *testing.T) {
		gw, _ := newTestLocal(t)
		first := &models.DreamItem{OwnerID: "owner-1", Title: "Primeiro"}
		second := &models.DreamItem{OwnerID: "owner-1", Title: "Segundo"}
		testutil.AssertNoError(t, gw.CreateItem(ctx, first))
		testutil.AssertNoError(t, gw.CreateItem(ctx, second))

		items, err := gw.ListItems(ctx, "owner-1")
		testutil.AssertNoError(t, err)
		if items[0].Title != "Segundo" {
			t.Errorf("expected newest first, got %+v", items)
		}
	})

	t.Run("update_rewrites_document", func(t *testing.T) {
		gw, _ := newTestLocal(t)
		item := &models.DreamItem{OwnerID: "owner-1", Title: "Casa"}
		testutil.AssertNoError(t, gw.CreateItem(ctx, item))

		progress := 100
		testutil.AssertNoError(t, gw.UpdateItem(ctx, "owner-1", item.ID, models.ItemPatch{Progress: &progress}.Fields()))

		items, err := gw.ListItems(ctx, "owner-1")
		testutil.AssertNoError(t, err)
		if items[0].Progress != 100 || items[0].Status != models.StatusDone {
			t.Errorf("expected updated progress/status, got %+v", items[0])
		}
	})

	t.Run("update_unknown_id", func(t *testing.T) {
		gw, _ := newTestLocal(t)
		title := "x"
		err := gw.UpdateItem(ctx, "owner-1", "missing", models.ItemPatch{Title: &title}.Fields())
		testutil.AssertAppError(t, err, "ITEM_NOT_FOUND")
	})

	t.Run("delete_is_idempotent", func(t *testing.T) {
		gw, _ := newTestLocal(t)
		item := &models.DreamItem{OwnerID: "owner-1", Title: "Sonho"}
		testutil.AssertNoError(t, gw.CreateItem(ctx, item))
		testutil.AssertNoError(t, gw.DeleteItem(ctx, "owner-1", item.ID))
		testutil.AssertNoError(t, gw.DeleteItem(ctx, "owner-1", item.ID))
	})

	t.Run("corrupt_document_surfaces_error_not_empty", func(t *testing.T) {
		gw, dir := newTestLocal(t)
		path := filepath.Join(dir, "owner-1", "items.v1.json")
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
			t.Fatal(err)
		}

		_, err := gw.ListItems(ctx, "owner-1")
		if err == nil {
			t.Fatal("corrupt storage must surface an error, not an empty collection")
		}
	})
}

func TestLocalSettings(t *testing.T) {
	ctx := context.Background()

	t.Run("load_seeds_default_profile", func(t *testing.T) {
		gw, dir := newTestLocal(t)
		settings, err := gw.LoadSettings(ctx, "owner-1", "a@b.com")
		testutil.AssertNoError(t, err)

		if settings.Theme != models.DefaultTheme() || len(settings.BudgetLevels) != 3 {
			t.Errorf("expected defaulted profile, got %+v", settings)
		}
		if _, err := os.Stat(filepath.Join(dir, "owner-1", "profile.v1.json")); err != nil {
			t.Errorf("expected profile document persisted: %v", err)
		}
	})

	t.Run("save_merges_into_existing_document", func(t *testing.T) {
		gw, _ := newTestLocal(t)
		savings := 777.0
		testutil.AssertNoError(t, gw.SaveSettings(ctx, "owner-1", "a@b.com", SettingsPatch{InitialSavings: &savings}))

		levels := models.LevelList{{ID: "only", Label: "Único", Target: 42}}
		testutil.AssertNoError(t, gw.SaveSettings(ctx, "owner-1", "a@b.com", SettingsPatch{BudgetLevels: &levels}))

		settings, err := gw.LoadSettings(ctx, "owner-1", "a@b.com")
		testutil.AssertNoError(t, err)
		if settings.InitialSavings != 777 {
			t.Errorf("expected savings kept across saves, got %v", settings.InitialSavings)
		}
		if len(settings.BudgetLevels) != 1 || settings.BudgetLevels[0].Target != 42 {
			t.Errorf("expected levels replaced wholesale, got %+v", settings.BudgetLevels)
		}
	})
}

func TestLocalFailedWritePreservesDocument(t *testing.T) {
	ctx := context.Background()
	gw, dir := newTestLocal(t)

	item := &models.DreamItem{OwnerID: "owner-1", Title: "Sobrevivente"}
	testutil.AssertNoError(t, gw.CreateItem(ctx, item))

	// Make the owner directory read-only so the temp-file write fails,
	// then verify the original document is untouched.
	ownerDir := filepath.Join(dir, "owner-1")
	if err := os.Chmod(ownerDir, 0o555); err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Chmod(ownerDir, 0o755) }()

	second := &models.DreamItem{OwnerID: "owner-1", Title: "Perdido"}
	if err := gw.CreateItem(ctx, second); err == nil {
		t.Skip("filesystem permits writes despite read-only dir; cannot simulate failure")
	}

	if err := os.Chmod(ownerDir, 0o755); err != nil {
		t.Fatal(err)
	}
	items, err := gw.ListItems(ctx, "owner-1")
	testutil.AssertNoError(t, err)
	if len(items) != 1 || items[0].Title != "Sobrevivente" {
		t.Errorf("failed write corrupted the stored document: %+v", items)
	}
}

func TestLocalPurge(t *testing.T) {
	ctx := context.Background()
	gw, dir := newTestLocal(t)

	testutil.AssertNoError(t, gw.CreateItem(ctx, &models.DreamItem{OwnerID: "owner-1", Title: "a"}))
	testutil.AssertNoError(t, gw.Purge(ctx, "owner-1"))

	if _, err := os.Stat(filepath.Join(dir, "owner-1")); !os.IsNotExist(err) {
		t.Error("expected owner directory removed")
	}
}
