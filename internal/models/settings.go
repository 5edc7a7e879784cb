package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
)

// Theme is the flat customization record for a portal: colors, labels,
// background image, and the floating-object animation. Serialized as one
// JSON document inside the profile row.
type Theme struct {
	PrimaryColor        string `json:"primaryColor"`
	SecondaryColor      string `json:"secondaryColor"`
	PortalTitle         string `json:"portalTitle"`
	PortalTitleColor    string `json:"portalTitleColor"`
	PortalSubtitle      string `json:"portalSubtitle"`
	PortalSubtitleColor string `json:"portalSubtitleColor"`
	BackgroundImage     string `json:"backgroundImage"`
	CardColor           string `json:"cardColor"`
	FontColor           string `json:"fontColor"`
	BgGradientStart     string `json:"bgGradientStart"`
	BgGradientEnd       string `json:"bgGradientEnd"`
	ActionButtonColor   string `json:"actionButtonColor"`
	ObjectAnimation     string `json:"objectAnimation"`
}

// Value implements driver.Valuer so Theme persists as a JSON column.
func (t Theme) Value() (driver.Value, error) {
	return json.Marshal(t)
}

// Scan implements sql.Scanner for JSON columns.
func (t *Theme) Scan(value interface{}) error {
	if value == nil {
		*t = DefaultTheme()
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, t)
	case string:
		return json.Unmarshal([]byte(v), t)
	default:
		return fmt.Errorf("unsupported theme column type %T", value)
	}
}

// DefaultTheme returns the out-of-the-box portal look.
func DefaultTheme() Theme {
	return Theme{
		PrimaryColor:        "#ec4899",
		SecondaryColor:      "#fce7f3",
		PortalTitle:         "Nossos Sonhos",
		PortalTitleColor:    "#1f2937",
		PortalSubtitle:      "Planejando a vida",
		PortalSubtitleColor: "#6b7280",
		BackgroundImage:     "https://images.unsplash.com/photo-1502481851512-e9e2529bbbf9?q=80&w=2070&auto=format&fit=crop",
		CardColor:           "#ffffff",
		FontColor:           "#374151",
		BgGradientStart:     "#fff5f5",
		BgGradientEnd:       "#fed7e2",
		ActionButtonColor:   "#ec4899",
		ObjectAnimation:     "animate-pulse",
	}
}

// BudgetLevel is a user-defined savings milestone.
type BudgetLevel struct {
	ID     string  `json:"id"`
	Label  string  `json:"label"`
	Target float64 `json:"target"`
}

// LevelList is an ordered milestone set persisted as a JSON column.
type LevelList []BudgetLevel

// Value implements driver.Valuer.
func (l LevelList) Value() (driver.Value, error) {
	if l == nil {
		l = LevelList{}
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner.
func (l *LevelList) Scan(value interface{}) error {
	if value == nil {
		*l = LevelList{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("unsupported levels column type %T", value)
	}
}

// Sorted returns the levels ordered by target ascending. Storage order is
// unspecified; display and milestone lookup always use this order.
func (l LevelList) Sorted() LevelList {
	out := make(LevelList, len(l))
	copy(out, l)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Target < out[j].Target })
	return out
}

// DefaultLevels seeds the three starter milestones for a fresh profile.
func DefaultLevels() LevelList {
	return LevelList{
		{ID: "1", Label: "Primeiros Passos", Target: 1000},
		{ID: "2", Label: "Conquista Média", Target: 5000},
		{ID: "3", Label: "Grande Marco", Target: 15000},
	}
}

// Settings is the in-memory profile state owned by a Synchronization Core:
// theme, milestone set, and the manually tracked baseline savings.
type Settings struct {
	Theme          Theme     `json:"theme"`
	BudgetLevels   LevelList `json:"budget_levels"`
	InitialSavings float64   `json:"initial_savings"`
}

// DefaultSettings returns the state a session holds before its profile
// loads, and after it ends.
func DefaultSettings() Settings {
	return Settings{
		Theme:          DefaultTheme(),
		BudgetLevels:   DefaultLevels(),
		InitialSavings: 0,
	}
}

// Profile is the persisted per-owner settings document. The whole document
// is upserted on every settings change rather than field-by-field.
type Profile struct {
	OwnerID        string    `gorm:"type:uuid;primaryKey;column:owner_id" json:"owner_id"`
	Email          string    `json:"email"`
	Theme          Theme     `gorm:"type:jsonb" json:"theme"`
	BudgetLevels   LevelList `gorm:"type:jsonb" json:"budget_levels"`
	InitialSavings float64   `gorm:"default:0" json:"initial_savings"`
}

// Settings extracts the in-memory settings view of the profile.
func (p *Profile) Settings() Settings {
	return Settings{
		Theme:          p.Theme,
		BudgetLevels:   p.BudgetLevels,
		InitialSavings: p.InitialSavings,
	}
}

// NewProfile builds a fully defaulted profile document for a new owner.
func NewProfile(ownerID, email string) *Profile {
	return &Profile{
		OwnerID:        ownerID,
		Email:          email,
		Theme:          DefaultTheme(),
		BudgetLevels:   DefaultLevels(),
		InitialSavings: 0,
	}
}
