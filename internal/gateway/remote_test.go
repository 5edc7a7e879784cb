package gateway

import (
	"context"
	"testing"
	"time"

	"dreamportal/internal/models"
	"dreamportal/internal/testutil"
)

func newTestRemote(t *testing.T) (Gateway, func()) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	gw := NewRemoteGateway(db, NewMemoryFeed())
	return gw, func() { testutil.TeardownTestDB(t, db) }
}

func TestRemoteItems(t *testing.T) {
	ctx := context.Background()

	t.Run("empty_owner_is_valid_state", func(t *testing.T) {
		gw, teardown := newTestRemote(t)
		defer teardown()

		items, err := gw.ListItems(ctx, "owner-1")
		testutil.AssertNoError(t, err)
		if len(items) != 0 {
			t.Errorf("expected no items, got %d", len(items))
		}
	})

	t.Run("create_assigns_identity_and_status", func(t *testing.T) {
		gw, teardown := newTestRemote(t)
		defer teardown()

		item := &models.DreamItem{OwnerID: "owner-1", Title: "Viagem", Price: 3000, Progress: 85}
		testutil.AssertNoError(t, gw.CreateItem(ctx, item))

		if item.ID == "" {
			t.Fatal("expected assigned id")
		}
		if item.CreatedAt == 0 {
			t.Error("expected assigned creation timestamp")
		}
		if item.Status != models.StatusAlmostThere {
			t.Errorf("create must derive status, got %s", item.Status)
		}
	})

	t.Run("list_orders_newest_first", func(t *testing.T) {
		gw, teardown := newTestRemote(t)
		defer teardown()

		older := &models.DreamItem{OwnerID: "owner-1", Title: "Antigo", CreatedAt: 1000}
		newer := &models.DreamItem{OwnerID: "owner-1", Title: "Novo", CreatedAt: 2000}
		testutil.AssertNoError(t, gw.CreateItem(ctx, older))
		testutil.AssertNoError(t, gw.CreateItem(ctx, newer))

		items, err := gw.ListItems(ctx, "owner-1")
		testutil.AssertNoError(t, err)
		if len(items) != 2 || items[0].Title != "Novo" {
			t.Errorf("expected newest first, got %+v", items)
		}
	})

	t.Run("update_persists_partial_fields", func(t *testing.T) {
		gw, teardown := newTestRemote(t)
		defer teardown()

		item := &models.DreamItem{OwnerID: "owner-1", Title: "Casa", Price: 100000}
		testutil.AssertNoError(t, gw.CreateItem(ctx, item))

		progress := 100
		fields := models.ItemPatch{Progress: &progress}.Fields()
		testutil.AssertNoError(t, gw.UpdateItem(ctx, "owner-1", item.ID, fields))

		items, err := gw.ListItems(ctx, "owner-1")
		testutil.AssertNoError(t, err)
		if items[0].Progress != 100 || items[0].Status != models.StatusDone {
			t.Errorf("expected progress/status persisted together, got %+v", items[0])
		}
		if items[0].Title != "Casa" || items[0].Price != 100000 {
			t.Error("untouched fields must survive a partial update")
		}
	})

	t.Run("update_unknown_id", func(t *testing.T) {
		gw, teardown := newTestRemote(t)
		defer teardown()

		title := "x"
		err := gw.UpdateItem(ctx, "owner-1", "missing", models.ItemPatch{Title: &title}.Fields())
		testutil.AssertAppError(t, err, "ITEM_NOT_FOUND")
	})

	t.Run("update_scoped_to_owner", func(t *testing.T) {
		gw, teardown := newTestRemote(t)
		defer teardown()

		item := &models.DreamItem{OwnerID: "owner-1", Title: "Meu"}
		testutil.AssertNoError(t, gw.CreateItem(ctx, item))

		title := "roubado"
		err := gw.UpdateItem(ctx, "owner-2", item.ID, models.ItemPatch{Title: &title}.Fields())
		testutil.AssertAppError(t, err, "ITEM_NOT_FOUND")
	})

	t.Run("delete_is_idempotent", func(t *testing.T) {
		gw, teardown := newTestRemote(t)
		defer teardown()

		item := &models.DreamItem{OwnerID: "owner-1", Title: "Sonho"}
		testutil.AssertNoError(t, gw.CreateItem(ctx, item))
		testutil.AssertNoError(t, gw.DeleteItem(ctx, "owner-1", item.ID))
		testutil.AssertNoError(t, gw.DeleteItem(ctx, "owner-1", item.ID))

		items, err := gw.ListItems(ctx, "owner-1")
		testutil.AssertNoError(t, err)
		if len(items) != 0 {
			t.Errorf("expected empty collection, got %d items", len(items))
		}
	})
}

func TestRemoteSettings(t *testing.T) {
	ctx := context.Background()

	t.Run("load_creates_profile_if_absent", func(t *testing.T) {
		gw, teardown := newTestRemote(t)
		defer teardown()

		settings, err := gw.LoadSettings(ctx, "owner-1", "a@b.com")
		testutil.AssertNoError(t, err)

		if settings.Theme != models.DefaultTheme() {
			t.Error("fresh profile must carry the default theme")
		}
		if len(settings.BudgetLevels) != 3 {
			t.Errorf("fresh profile must seed default milestones, got %d", len(settings.BudgetLevels))
		}
		if settings.InitialSavings != 0 {
			t.Errorf("fresh profile must start with zero savings, got %v", settings.InitialSavings)
		}

		// A second load reads the same document rather than recreating it.
		again, err := gw.LoadSettings(ctx, "owner-1", "a@b.com")
		testutil.AssertNoError(t, err)
		if again.Theme != settings.Theme {
			t.Error("second load must return the persisted profile")
		}
	})

	t.Run("save_upserts_partial_document", func(t *testing.T) {
		gw, teardown := newTestRemote(t)
		defer teardown()

		savings := 2500.0
		testutil.AssertNoError(t, gw.SaveSettings(ctx, "owner-1", "a@b.com", SettingsPatch{InitialSavings: &savings}))

		settings, err := gw.LoadSettings(ctx, "owner-1", "a@b.com")
		testutil.AssertNoError(t, err)
		if settings.InitialSavings != 2500 {
			t.Errorf("expected savings persisted, got %v", settings.InitialSavings)
		}
		if settings.Theme != models.DefaultTheme() {
			t.Error("unsaved fields must keep their defaults")
		}

		theme := models.DefaultTheme()
		theme.PrimaryColor = "#10b981"
		testutil.AssertNoError(t, gw.SaveSettings(ctx, "owner-1", "a@b.com", SettingsPatch{Theme: &theme}))

		settings, err = gw.LoadSettings(ctx, "owner-1", "a@b.com")
		testutil.AssertNoError(t, err)
		if settings.Theme.PrimaryColor != "#10b981" {
			t.Errorf("expected theme persisted, got %q", settings.Theme.PrimaryColor)
		}
		if settings.InitialSavings != 2500 {
			t.Error("saving the theme must not clobber savings")
		}
	})
}

func TestRemoteSubscribe(t *testing.T) {
	ctx := context.Background()
	gw, teardown := newTestRemote(t)
	defer teardown()

	got := make(chan Change, 8)
	sub, err := gw.Subscribe("owner-1", func(c Change) { got <- c })
	testutil.AssertNoError(t, err)
	defer sub.Close()

	item := &models.DreamItem{OwnerID: "owner-1", Title: "Lua de mel", Price: 8000}
	testutil.AssertNoError(t, gw.CreateItem(ctx, item))

	select {
	case c := <-got:
		if c.Type != ChangeInsert || c.Collection != CollectionItems || c.ID != item.ID {
			t.Errorf("unexpected change: %+v", c)
		}
		if c.Record["title"] != "Lua de mel" {
			t.Errorf("change must carry the raw record, got %+v", c.Record)
		}
	case <-time.After(time.Second):
		t.Fatal("no INSERT notification after create")
	}

	testutil.AssertNoError(t, gw.DeleteItem(ctx, "owner-1", item.ID))
	select {
	case c := <-got:
		if c.Type != ChangeDelete || c.ID != item.ID {
			t.Errorf("unexpected change: %+v", c)
		}
	case <-time.After(time.Second):
		t.Fatal("no DELETE notification after delete")
	}
}

func TestRemotePurge(t *testing.T) {
	ctx := context.Background()
	gw, teardown := newTestRemote(t)
	defer teardown()

	testutil.AssertNoError(t, gw.CreateItem(ctx, &models.DreamItem{OwnerID: "owner-1", Title: "a"}))
	testutil.AssertNoError(t, gw.CreateEvent(ctx, &models.CalendarEvent{OwnerID: "owner-1", Title: "b", Date: "2026-01-01"}))
	if _, err := gw.LoadSettings(ctx, "owner-1", "a@b.com"); err != nil {
		t.Fatalf("load settings: %v", err)
	}

	testutil.AssertNoError(t, gw.Purge(ctx, "owner-1"))

	items, err := gw.ListItems(ctx, "owner-1")
	testutil.AssertNoError(t, err)
	events, err := gw.ListEvents(ctx, "owner-1")
	testutil.AssertNoError(t, err)
	if len(items) != 0 || len(events) != 0 {
		t.Errorf("expected everything purged, got %d items %d events", len(items), len(events))
	}
}
