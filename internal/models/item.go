package models

import (
	"time"

	"gorm.io/gorm"

	"dreamportal/internal/uuid"
)

// ItemStatus represents the coarse progress stage of a dream item.
type ItemStatus string

const (
	StatusPending     ItemStatus = "PENDING"
	StatusInProgress  ItemStatus = "IN_PROGRESS"
	StatusAlmostThere ItemStatus = "ALMOST_THERE"
	StatusDone        ItemStatus = "DONE"
)

// ImageFit controls how a card image is framed.
type ImageFit string

const (
	FitCover   ImageFit = "cover"
	FitContain ImageFit = "contain"
)

// DefaultItemTitle is the placeholder shown for items saved without a title.
const DefaultItemTitle = "Sem título"

// StatusForProgress maps an exact progress value to its status stage.
// Status is never stored independently of progress; every write path
// derives it through this function.
func StatusForProgress(progress int) ItemStatus {
	switch {
	case progress <= 0:
		return StatusPending
	case progress >= 100:
		return StatusDone
	case progress >= 80:
		return StatusAlmostThere
	default:
		return StatusInProgress
	}
}

// ClampProgress bounds a progress value to the 0-100 range.
func ClampProgress(progress int) int {
	if progress < 0 {
		return 0
	}
	if progress > 100 {
		return 100
	}
	return progress
}

// DreamItem is one entry on the couple's dream checklist.
type DreamItem struct {
	ID             string     `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID        string     `gorm:"type:uuid;index;not null" json:"owner_id"`
	Title          string     `gorm:"not null" json:"title"`
	Price          float64    `gorm:"default:0" json:"price"`
	Status         ItemStatus `gorm:"default:PENDING" json:"status"`
	Progress       int        `gorm:"default:0" json:"progress"`
	Link           string     `json:"link"`
	CreatedAt      int64      `gorm:"autoCreateTime:milli" json:"created_at"`
	Image          string     `json:"image,omitempty"`
	ImageFit       ImageFit   `gorm:"default:cover" json:"image_fit"`
	ImageScale     float64    `gorm:"default:1" json:"image_scale"`
	ImagePositionX float64    `gorm:"default:50" json:"image_position_x"`
	ImagePositionY float64    `gorm:"default:50" json:"image_position_y"`
}

// BeforeCreate hook generates a UUIDv7 and creation timestamp for new rows.
func (i *DreamItem) BeforeCreate(tx *gorm.DB) error {
	i.EnsureIdentity()
	return nil
}

// EnsureIdentity fills in the ID and CreatedAt if unset. The local document
// backend calls this directly since it bypasses GORM hooks.
func (i *DreamItem) EnsureIdentity() {
	if i.ID == "" {
		i.ID = uuid.New()
	}
	if i.CreatedAt == 0 {
		i.CreatedAt = time.Now().UnixMilli()
	}
}

// ItemPatch carries a partial update for a dream item. Nil fields are
// untouched. A progress change re-derives the status in the same apply.
type ItemPatch struct {
	Title          *string   `json:"title,omitempty"`
	Price          *float64  `json:"price,omitempty"`
	Progress       *int      `json:"progress,omitempty"`
	Link           *string   `json:"link,omitempty"`
	Image          *string   `json:"image,omitempty"`
	ImageFit       *ImageFit `json:"image_fit,omitempty"`
	ImageScale     *float64  `json:"image_scale,omitempty"`
	ImagePositionX *float64  `json:"image_position_x,omitempty"`
	ImagePositionY *float64  `json:"image_position_y,omitempty"`
}

// Apply mutates the item with the patch's present fields. Progress and the
// derived status change together, atomically from the caller's view.
func (p ItemPatch) Apply(item *DreamItem) {
	if p.Title != nil {
		item.Title = *p.Title
	}
	if p.Price != nil && *p.Price >= 0 {
		item.Price = *p.Price
	}
	if p.Progress != nil {
		item.Progress = ClampProgress(*p.Progress)
		item.Status = StatusForProgress(item.Progress)
	}
	if p.Link != nil {
		item.Link = *p.Link
	}
	if p.Image != nil {
		item.Image = *p.Image
	}
	if p.ImageFit != nil {
		if *p.ImageFit == FitContain {
			item.ImageFit = FitContain
		} else {
			item.ImageFit = FitCover
		}
	}
	if p.ImageScale != nil && *p.ImageScale > 0 {
		item.ImageScale = *p.ImageScale
	}
	if p.ImagePositionX != nil {
		item.ImagePositionX = clampPercent(*p.ImagePositionX)
	}
	if p.ImagePositionY != nil {
		item.ImagePositionY = clampPercent(*p.ImagePositionY)
	}
}

// Fields returns the patch as a column map for partial persistence, so the
// gateway writes only what changed.
func (p ItemPatch) Fields() map[string]interface{} {
	fields := make(map[string]interface{})
	if p.Title != nil {
		fields["title"] = *p.Title
	}
	if p.Price != nil {
		fields["price"] = *p.Price
	}
	if p.Progress != nil {
		progress := ClampProgress(*p.Progress)
		fields["progress"] = progress
		fields["status"] = StatusForProgress(progress)
	}
	if p.Link != nil {
		fields["link"] = *p.Link
	}
	if p.Image != nil {
		fields["image"] = *p.Image
	}
	if p.ImageFit != nil {
		fields["image_fit"] = *p.ImageFit
	}
	if p.ImageScale != nil {
		fields["image_scale"] = *p.ImageScale
	}
	if p.ImagePositionX != nil {
		fields["image_position_x"] = *p.ImagePositionX
	}
	if p.ImagePositionY != nil {
		fields["image_position_y"] = *p.ImagePositionY
	}
	return fields
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
