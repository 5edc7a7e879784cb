// Package gateway abstracts the portal's persistence backends behind one
// interface: CRUD per collection plus a realtime change feed. The
// Synchronization Core depends only on this interface; whether rows live
// in Postgres or in local document files is wiring detail.
package gateway

import (
	"context"
	"encoding/json"

	"dreamportal/internal/models"
)

// ChangeType classifies a realtime change notification.
type ChangeType string

const (
	ChangeInsert ChangeType = "INSERT"
	ChangeUpdate ChangeType = "UPDATE"
	ChangeDelete ChangeType = "DELETE"
)

// Collection names used in change notifications.
const (
	CollectionItems   = "items"
	CollectionEvents  = "events"
	CollectionProfile = "profile"
)

// Change is one notification on the feed. DELETE carries only the ID;
// INSERT and UPDATE carry the raw record, which consumers run through
// entity normalization.
type Change struct {
	Type       ChangeType             `json:"type"`
	Collection string                 `json:"collection"`
	ID         string                 `json:"id"`
	Record     map[string]interface{} `json:"record,omitempty"`
}

// Subscription is a disposable handle for a feed registration. Close stops
// notifications; it is safe to call any number of times, including after
// the owning session has ended.
type Subscription interface {
	Close()
}

// SettingsPatch carries the changed parts of a settings save. The profile
// document is upserted as a whole, but the feed notification names only
// the fields that actually changed so other sessions can merge partially.
type SettingsPatch struct {
	Theme          *models.Theme
	BudgetLevels   *models.LevelList
	InitialSavings *float64
}

// Gateway is the persistence surface consumed by the Synchronization Core.
//
// List operations surface failures as errors, never as silently empty
// collections; an owner with no rows yet is a valid empty state. Deletes
// are idempotent. LoadSettings performs create-if-absent: account creation
// and profile creation are decoupled events, so the first read seeds a
// defaulted profile document.
type Gateway interface {
	ListItems(ctx context.Context, ownerID string) ([]models.DreamItem, error)
	CreateItem(ctx context.Context, item *models.DreamItem) error
	UpdateItem(ctx context.Context, ownerID, id string, fields map[string]interface{}) error
	DeleteItem(ctx context.Context, ownerID, id string) error

	ListEvents(ctx context.Context, ownerID string) ([]models.CalendarEvent, error)
	CreateEvent(ctx context.Context, event *models.CalendarEvent) error
	DeleteEvent(ctx context.Context, ownerID, id string) error

	LoadSettings(ctx context.Context, ownerID, email string) (models.Settings, error)
	SaveSettings(ctx context.Context, ownerID, email string, patch SettingsPatch) error

	Subscribe(ownerID string, fn func(Change)) (Subscription, error)

	// Purge removes every trace of an owner: items, events, profile.
	Purge(ctx context.Context, ownerID string) error
}

// recordOf flattens an entity into the raw map form carried on the feed,
// using the entity's JSON tags so keys match what normalization expects.
func recordOf(entity interface{}) map[string]interface{} {
	data, err := json.Marshal(entity)
	if err != nil {
		return map[string]interface{}{}
	}
	var record map[string]interface{}
	if err := json.Unmarshal(data, &record); err != nil {
		return map[string]interface{}{}
	}
	return record
}

// listRecord is recordOf for list-valued payloads such as milestone sets.
func listRecord(entity interface{}) []interface{} {
	data, err := json.Marshal(entity)
	if err != nil {
		return nil
	}
	var record []interface{}
	if err := json.Unmarshal(data, &record); err != nil {
		return nil
	}
	return record
}
