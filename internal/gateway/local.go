package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"syscall"

	apperrors "dreamportal/internal/errors"
	"dreamportal/internal/models"
)

// Fixed, versioned document keys for the local backend. Bumping a suffix
// leaves older documents untouched for migration.
const (
	itemsDocKey   = "items.v1.json"
	eventsDocKey  = "events.v1.json"
	profileDocKey = "profile.v1.json"
)

// localGateway persists each collection as one JSON document per owner on
// disk, fully rewritten on every change. This is the self-hosted,
// single-machine backend; its change feed is in-process only.
type localGateway struct {
	dir  string
	feed Feed
	mu   sync.Mutex
}

// NewLocalGateway creates a Gateway over on-disk JSON documents.
func NewLocalGateway(dir string, feed Feed) (Gateway, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &localGateway{dir: dir, feed: feed}, nil
}

func (g *localGateway) docPath(ownerID, key string) string {
	return filepath.Join(g.dir, ownerID, key)
}

// readDoc loads a collection document as raw records. A missing file is a
// valid empty state, not an error.
func (g *localGateway) readDoc(path string) ([]map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	var records []map[string]interface{}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return records, nil
}

// writeDoc rewrites a document atomically: the new content lands in a temp
// file that replaces the old one only after a successful write, so a
// failed write never corrupts the previously stored state.
func (g *localGateway) writeDoc(path string, doc interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return storageErr(err)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".write-*")
	if err != nil {
		return storageErr(err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return storageErr(err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return storageErr(err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return storageErr(err)
	}
	return nil
}

// storageErr distinguishes an exhausted disk from other I/O failures so
// the user can be told to free space rather than shown a generic error.
func storageErr(err error) error {
	if errors.Is(err, syscall.ENOSPC) || errors.Is(err, syscall.EDQUOT) {
		return apperrors.Wrap(apperrors.ErrStorageFull, err)
	}
	return apperrors.Wrap(apperrors.ErrInternalServer, err)
}

func (g *localGateway) ListItems(ctx context.Context, ownerID string) ([]models.DreamItem, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	records, err := g.readDoc(g.docPath(ownerID, itemsDocKey))
	if err != nil {
		return nil, err
	}
	items := make([]models.DreamItem, 0, len(records))
	for _, record := range records {
		item := models.NormalizeItem(record)
		item.OwnerID = ownerID
		items = append(items, item)
	}
	return items, nil
}

func (g *localGateway) CreateItem(ctx context.Context, item *models.DreamItem) error {
	item.EnsureIdentity()
	item.Status = models.StatusForProgress(item.Progress)

	g.mu.Lock()
	defer g.mu.Unlock()

	path := g.docPath(item.OwnerID, itemsDocKey)
	records, err := g.readDoc(path)
	if err != nil {
		return err
	}
	records = append([]map[string]interface{}{recordOf(item)}, records...)
	if err := g.writeDoc(path, records); err != nil {
		return err
	}

	g.feed.Publish(item.OwnerID, Change{
		Type:       ChangeInsert,
		Collection: CollectionItems,
		ID:         item.ID,
		Record:     recordOf(item),
	})
	return nil
}

func (g *localGateway) UpdateItem(ctx context.Context, ownerID, id string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	path := g.docPath(ownerID, itemsDocKey)
	records, err := g.readDoc(path)
	if err != nil {
		return err
	}

	var updated map[string]interface{}
	for _, record := range records {
		if strValue(record["id"]) == id {
			for key, value := range fields {
				record[key] = value
			}
			updated = record
			break
		}
	}
	if updated == nil {
		return apperrors.ErrItemNotFound
	}
	if err := g.writeDoc(path, records); err != nil {
		return err
	}

	g.feed.Publish(ownerID, Change{
		Type:       ChangeUpdate,
		Collection: CollectionItems,
		ID:         id,
		Record:     updated,
	})
	return nil
}

func (g *localGateway) DeleteItem(ctx context.Context, ownerID, id string) error {
	if err := g.deleteRecord(ownerID, itemsDocKey, id); err != nil {
		return err
	}
	g.feed.Publish(ownerID, Change{
		Type:       ChangeDelete,
		Collection: CollectionItems,
		ID:         id,
	})
	return nil
}

func (g *localGateway) ListEvents(ctx context.Context, ownerID string) ([]models.CalendarEvent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	records, err := g.readDoc(g.docPath(ownerID, eventsDocKey))
	if err != nil {
		return nil, err
	}
	events := make([]models.CalendarEvent, 0, len(records))
	for _, record := range records {
		event := models.NormalizeEvent(record)
		event.OwnerID = ownerID
		events = append(events, event)
	}
	return events, nil
}

func (g *localGateway) CreateEvent(ctx context.Context, event *models.CalendarEvent) error {
	event.EnsureIdentity()

	g.mu.Lock()
	defer g.mu.Unlock()

	path := g.docPath(event.OwnerID, eventsDocKey)
	records, err := g.readDoc(path)
	if err != nil {
		return err
	}
	records = append(records, recordOf(event))
	if err := g.writeDoc(path, records); err != nil {
		return err
	}

	g.feed.Publish(event.OwnerID, Change{
		Type:       ChangeInsert,
		Collection: CollectionEvents,
		ID:         event.ID,
		Record:     recordOf(event),
	})
	return nil
}

func (g *localGateway) DeleteEvent(ctx context.Context, ownerID, id string) error {
	if err := g.deleteRecord(ownerID, eventsDocKey, id); err != nil {
		return err
	}
	g.feed.Publish(ownerID, Change{
		Type:       ChangeDelete,
		Collection: CollectionEvents,
		ID:         id,
	})
	return nil
}

// deleteRecord drops a record by id. Removing an id that is already gone
// rewrites nothing and succeeds.
func (g *localGateway) deleteRecord(ownerID, key, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	path := g.docPath(ownerID, key)
	records, err := g.readDoc(path)
	if err != nil {
		return err
	}
	kept := records[:0]
	found := false
	for _, record := range records {
		if strValue(record["id"]) == id {
			found = true
			continue
		}
		kept = append(kept, record)
	}
	if !found {
		return nil
	}
	return g.writeDoc(path, kept)
}

func (g *localGateway) LoadSettings(ctx context.Context, ownerID, email string) (models.Settings, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	path := g.docPath(ownerID, profileDocKey)
	raw, err := g.readProfileDoc(path)
	if err != nil {
		return models.Settings{}, err
	}
	if raw == nil {
		profile := models.NewProfile(ownerID, email)
		if err := g.writeDoc(path, recordOf(profile)); err != nil {
			return models.Settings{}, err
		}
		return profile.Settings(), nil
	}
	return models.NormalizeSettings(raw), nil
}

func (g *localGateway) SaveSettings(ctx context.Context, ownerID, email string, patch SettingsPatch) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	path := g.docPath(ownerID, profileDocKey)
	raw, err := g.readProfileDoc(path)
	if err != nil {
		return err
	}
	if raw == nil {
		raw = recordOf(models.NewProfile(ownerID, email))
	}

	record := make(map[string]interface{})
	if patch.Theme != nil {
		raw["theme"] = recordOf(patch.Theme)
		record["theme"] = recordOf(patch.Theme)
	}
	if patch.BudgetLevels != nil {
		raw["budget_levels"] = listRecord(*patch.BudgetLevels)
		record["budget_levels"] = listRecord(*patch.BudgetLevels)
	}
	if patch.InitialSavings != nil {
		raw["initial_savings"] = *patch.InitialSavings
		record["initial_savings"] = *patch.InitialSavings
	}
	if len(record) == 0 {
		return nil
	}
	if err := g.writeDoc(path, raw); err != nil {
		return err
	}

	g.feed.Publish(ownerID, Change{
		Type:       ChangeUpdate,
		Collection: CollectionProfile,
		ID:         ownerID,
		Record:     record,
	})
	return nil
}

func (g *localGateway) readProfileDoc(path string) (map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return raw, nil
}

func (g *localGateway) Subscribe(ownerID string, fn func(Change)) (Subscription, error) {
	return g.feed.Subscribe(ownerID, fn)
}

func (g *localGateway) Purge(ctx context.Context, ownerID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := os.RemoveAll(filepath.Join(g.dir, ownerID)); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

func strValue(v interface{}) string {
	s, _ := v.(string)
	return s
}
