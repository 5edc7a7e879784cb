package gateway

import (
	"context"
	"errors"

	"gorm.io/gorm"

	apperrors "dreamportal/internal/errors"
	"dreamportal/internal/models"
)

// remoteGateway persists collections as rows in a relational store via
// GORM and broadcasts changes on a shared feed. This is the hosted
// backend: every session of the couple sees the same rows and the same
// change stream.
type remoteGateway struct {
	db   *gorm.DB
	feed Feed
}

// NewRemoteGateway creates a Gateway over a relational database and a feed.
func NewRemoteGateway(db *gorm.DB, feed Feed) Gateway {
	return &remoteGateway{db: db, feed: feed}
}

func (g *remoteGateway) ListItems(ctx context.Context, ownerID string) ([]models.DreamItem, error) {
	var items []models.DreamItem
	err := g.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return items, nil
}

func (g *remoteGateway) CreateItem(ctx context.Context, item *models.DreamItem) error {
	item.Status = models.StatusForProgress(item.Progress)
	if err := g.db.WithContext(ctx).Create(item).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	g.feed.Publish(item.OwnerID, Change{
		Type:       ChangeInsert,
		Collection: CollectionItems,
		ID:         item.ID,
		Record:     recordOf(item),
	})
	return nil
}

func (g *remoteGateway) UpdateItem(ctx context.Context, ownerID, id string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	result := g.db.WithContext(ctx).
		Model(&models.DreamItem{}).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Updates(fields)
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrItemNotFound
	}

	var item models.DreamItem
	if err := g.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).First(&item).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	g.feed.Publish(ownerID, Change{
		Type:       ChangeUpdate,
		Collection: CollectionItems,
		ID:         id,
		Record:     recordOf(&item),
	})
	return nil
}

func (g *remoteGateway) DeleteItem(ctx context.Context, ownerID, id string) error {
	err := g.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&models.DreamItem{}).Error
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	// Zero rows affected is fine: deletes are idempotent.
	g.feed.Publish(ownerID, Change{
		Type:       ChangeDelete,
		Collection: CollectionItems,
		ID:         id,
	})
	return nil
}

func (g *remoteGateway) ListEvents(ctx context.Context, ownerID string) ([]models.CalendarEvent, error) {
	var events []models.CalendarEvent
	err := g.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("date ASC").
		Find(&events).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return events, nil
}

func (g *remoteGateway) CreateEvent(ctx context.Context, event *models.CalendarEvent) error {
	if err := g.db.WithContext(ctx).Create(event).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	g.feed.Publish(event.OwnerID, Change{
		Type:       ChangeInsert,
		Collection: CollectionEvents,
		ID:         event.ID,
		Record:     recordOf(event),
	})
	return nil
}

func (g *remoteGateway) DeleteEvent(ctx context.Context, ownerID, id string) error {
	err := g.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&models.CalendarEvent{}).Error
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	g.feed.Publish(ownerID, Change{
		Type:       ChangeDelete,
		Collection: CollectionEvents,
		ID:         id,
	})
	return nil
}

// LoadSettings reads the owner's profile document, seeding a defaulted one
// on first use. Account creation and profile creation are decoupled, so
// the profile may legitimately not exist yet.
func (g *remoteGateway) LoadSettings(ctx context.Context, ownerID, email string) (models.Settings, error) {
	var profile models.Profile
	err := g.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		fresh := models.NewProfile(ownerID, email)
		if err := g.db.WithContext(ctx).Create(fresh).Error; err != nil {
			return models.Settings{}, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return fresh.Settings(), nil
	}
	if err != nil {
		return models.Settings{}, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	settings := profile.Settings()
	if len(settings.BudgetLevels) == 0 {
		settings.BudgetLevels = models.DefaultLevels()
	}
	return settings, nil
}

func (g *remoteGateway) SaveSettings(ctx context.Context, ownerID, email string, patch SettingsPatch) error {
	updates := make(map[string]interface{})
	record := make(map[string]interface{})
	if patch.Theme != nil {
		updates["theme"] = *patch.Theme
		record["theme"] = recordOf(patch.Theme)
	}
	if patch.BudgetLevels != nil {
		updates["budget_levels"] = *patch.BudgetLevels
		record["budget_levels"] = listRecord(*patch.BudgetLevels)
	}
	if patch.InitialSavings != nil {
		updates["initial_savings"] = *patch.InitialSavings
		record["initial_savings"] = *patch.InitialSavings
	}
	if len(updates) == 0 {
		return nil
	}

	var profile models.Profile
	err := g.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		fresh := models.NewProfile(ownerID, email)
		if patch.Theme != nil {
			fresh.Theme = *patch.Theme
		}
		if patch.BudgetLevels != nil {
			fresh.BudgetLevels = *patch.BudgetLevels
		}
		if patch.InitialSavings != nil {
			fresh.InitialSavings = *patch.InitialSavings
		}
		if err := g.db.WithContext(ctx).Create(fresh).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	} else if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	} else {
		err = g.db.WithContext(ctx).
			Model(&models.Profile{}).
			Where("owner_id = ?", ownerID).
			Updates(updates).Error
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	g.feed.Publish(ownerID, Change{
		Type:       ChangeUpdate,
		Collection: CollectionProfile,
		ID:         ownerID,
		Record:     record,
	})
	return nil
}

func (g *remoteGateway) Subscribe(ownerID string, fn func(Change)) (Subscription, error) {
	return g.feed.Subscribe(ownerID, fn)
}

func (g *remoteGateway) Purge(ctx context.Context, ownerID string) error {
	db := g.db.WithContext(ctx)
	if err := db.Where("owner_id = ?", ownerID).Delete(&models.DreamItem{}).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := db.Where("owner_id = ?", ownerID).Delete(&models.CalendarEvent{}).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := db.Where("owner_id = ?", ownerID).Delete(&models.Profile{}).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
