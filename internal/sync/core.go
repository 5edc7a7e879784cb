// Package sync implements the per-owner Synchronization Core: the in-memory
// authoritative session state for one couple's portal. Reads are served from
// memory; mutations apply locally first and persist in the background; the
// gateway's change feed folds writes from other sessions back in.
package sync

import (
	"context"
	stderrors "errors"
	"sort"
	"strings"
	gosync "sync"

	"go.uber.org/zap"

	"dreamportal/internal/errors"
	"dreamportal/internal/gateway"
	"dreamportal/internal/logger"
	"dreamportal/internal/metrics"
	"dreamportal/internal/models"
	"dreamportal/internal/uuid"
)

// State is the lifecycle stage of one synchronized collection.
type State string

const (
	StateEmpty   State = "empty"
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateError   State = "error"
)

// NewItem is the caller-supplied shape of an item to add. Everything except
// the title is optional and defaulted.
type NewItem struct {
	Title          string
	Price          float64
	Link           string
	Image          string
	ImageFit       models.ImageFit
	ImageScale     float64
	ImagePositionX float64
	ImagePositionY float64
}

// NewEvent is the caller-supplied shape of a calendar event to add.
type NewEvent struct {
	Title       string
	Date        string
	Description string
}

// Snapshot is a point-in-time copy of the session state, safe for the
// caller to hold after the lock is released.
type Snapshot struct {
	State    State                  `json:"state"`
	Items    []models.DreamItem     `json:"items"`
	Events   []models.CalendarEvent `json:"events"`
	Settings models.Settings        `json:"settings"`
	Metrics  metrics.Summary        `json:"metrics"`
}

// Core is the synchronization session for one owner. All exported methods
// are safe for concurrent use.
//
// The mutation methods follow a strict optimistic policy: the local state
// changes immediately and the method returns; persistence runs in the
// background and a failure is logged, never rolled back. The change feed
// is the eventual corrector, so the merge functions must tolerate the
// optimistic write and its own echo arriving in any order.
type Core struct {
	ownerID string
	email   string
	gw      gateway.Gateway
	log     *zap.SugaredLogger

	mu     gosync.RWMutex
	closed bool

	itemsState    State
	eventsState   State
	settingsState State

	items         []models.DreamItem
	events        []models.CalendarEvent
	settings      models.Settings
	pendingDelete string

	sub       gateway.Subscription
	closeOnce gosync.Once
}

// NewCore builds an idle session for the owner. Nothing is loaded until
// Start.
func NewCore(gw gateway.Gateway, ownerID, email string) *Core {
	return &Core{
		ownerID:       ownerID,
		email:         email,
		gw:            gw,
		log:           logger.Get().With("owner_id", ownerID),
		itemsState:    StateEmpty,
		eventsState:   StateEmpty,
		settingsState: StateEmpty,
		settings:      models.DefaultSettings(),
	}
}

// Start loads every collection and subscribes to the change feed. A failed
// first load leaves the session in the error state and returns
// ErrConnectionFailed; calling Start again retries from scratch. Once the
// session is ready, Start acts as a refresh: a failure is logged and the
// ready state, including its data, survives untouched.
func (c *Core) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return errors.ErrSessionClosed
	}
	refreshing := c.itemsState == StateReady && c.eventsState == StateReady && c.settingsState == StateReady
	if !refreshing {
		c.itemsState, c.eventsState, c.settingsState = StateLoading, StateLoading, StateLoading
	}
	c.mu.Unlock()

	settings, settingsErr := c.gw.LoadSettings(ctx, c.ownerID, c.email)
	items, itemsErr := c.gw.ListItems(ctx, c.ownerID)
	events, eventsErr := c.gw.ListEvents(ctx, c.ownerID)

	if err := firstError(settingsErr, itemsErr, eventsErr); err != nil {
		if refreshing {
			c.log.Warnw("background refresh failed, keeping current state", "error", err)
			return nil
		}
		c.mu.Lock()
		c.itemsState, c.eventsState, c.settingsState = StateError, StateError, StateError
		c.mu.Unlock()
		return errors.Wrap(errors.ErrConnectionFailed, err)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return errors.ErrSessionClosed
	}
	c.settings = settings
	c.items = items
	c.events = events
	c.itemsState, c.eventsState, c.settingsState = StateReady, StateReady, StateReady
	needSub := c.sub == nil
	c.mu.Unlock()

	if needSub {
		sub, err := c.gw.Subscribe(c.ownerID, c.handleChange)
		if err != nil {
			// Data is loaded; a dead feed degrades liveness, not correctness.
			c.log.Errorw("change feed subscription failed", "error", err)
		} else {
			c.mu.Lock()
			if c.closed {
				c.mu.Unlock()
				sub.Close()
				return errors.ErrSessionClosed
			}
			c.sub = sub
			c.mu.Unlock()
		}
	}
	return nil
}

// Close ends the session: the feed subscription is disposed and the state
// resets to empty. Background persistence still in flight resolves against
// a closed session and is discarded. Safe to call repeatedly.
func (c *Core) Close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		sub := c.sub
		c.sub = nil
		c.items = nil
		c.events = nil
		c.settings = models.DefaultSettings()
		c.pendingDelete = ""
		c.itemsState, c.eventsState, c.settingsState = StateEmpty, StateEmpty, StateEmpty
		c.mu.Unlock()
		if sub != nil {
			sub.Close()
		}
	})
}

// State reports the coarsest collection state, which drives the whole-page
// loading and error surfaces.
func (c *Core) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stateLocked()
}

// Snapshot returns a consistent copy of the whole session, with derived
// metrics computed from the same locked view.
func (c *Core) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	events := append([]models.CalendarEvent{}, c.events...)
	sort.SliceStable(events, func(i, j int) bool { return events[i].Date < events[j].Date })
	return Snapshot{
		State:    c.stateLocked(),
		Items:    append([]models.DreamItem{}, c.items...),
		Events:   events,
		Settings: c.settings,
		Metrics:  metrics.Compute(c.items, c.settings.InitialSavings, c.settings.BudgetLevels),
	}
}

func (c *Core) stateLocked() State {
	states := []State{c.itemsState, c.eventsState, c.settingsState}
	for _, s := range []State{StateError, StateLoading, StateEmpty} {
		for _, got := range states {
			if got == s {
				return s
			}
		}
	}
	return StateReady
}

// Items returns a copy of the item collection, newest first.
func (c *Core) Items() []models.DreamItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.DreamItem{}, c.items...)
}

// Events returns a copy of the calendar, ordered by date.
func (c *Core) Events() []models.CalendarEvent {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := append([]models.CalendarEvent{}, c.events...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// Settings returns the current settings.
func (c *Core) Settings() models.Settings {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.settings
}

// Metrics computes the derived financial summary from current state.
func (c *Core) Metrics() metrics.Summary {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return metrics.Compute(c.items, c.settings.InitialSavings, c.settings.BudgetLevels)
}

// AddItem inserts a dream item optimistically and persists it in the
// background. The returned item carries its assigned identity so the echo
// from the feed dedupes against it.
func (c *Core) AddItem(input NewItem) (models.DreamItem, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return models.DreamItem{}, errors.WithMessage(errors.ErrInvalidInput, "item title is required")
	}

	item := models.DreamItem{
		OwnerID:        c.ownerID,
		Title:          title,
		Price:          input.Price,
		Status:         models.StatusPending,
		Progress:       0,
		Link:           strings.TrimSpace(input.Link),
		Image:          input.Image,
		ImageFit:       input.ImageFit,
		ImageScale:     input.ImageScale,
		ImagePositionX: input.ImagePositionX,
		ImagePositionY: input.ImagePositionY,
	}
	if item.Price < 0 {
		item.Price = 0
	}
	if item.ImageFit != models.FitContain {
		item.ImageFit = models.FitCover
	}
	if item.ImageScale <= 0 {
		item.ImageScale = 1
	}
	if item.ImagePositionX == 0 && item.ImagePositionY == 0 {
		item.ImagePositionX, item.ImagePositionY = 50, 50
	}
	item.EnsureIdentity()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return models.DreamItem{}, errors.ErrSessionClosed
	}
	c.items = append([]models.DreamItem{item}, c.items...)
	c.mu.Unlock()

	persisted := item
	c.persist("create item", func(ctx context.Context) error {
		return c.gw.CreateItem(ctx, &persisted)
	})
	return item, nil
}

// UpdateItem applies a partial patch to an item. Progress changes carry
// their derived status in the same local apply and the same persisted write.
func (c *Core) UpdateItem(id string, patch models.ItemPatch) (models.DreamItem, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return models.DreamItem{}, errors.ErrSessionClosed
	}
	idx := -1
	for i := range c.items {
		if c.items[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		c.mu.Unlock()
		return models.DreamItem{}, errors.ErrItemNotFound
	}
	patch.Apply(&c.items[idx])
	updated := c.items[idx]
	c.mu.Unlock()

	fields := patch.Fields()
	if len(fields) > 0 {
		c.persist("update item", func(ctx context.Context) error {
			return c.gw.UpdateItem(ctx, c.ownerID, id, fields)
		})
	}
	return updated, nil
}

// MarkForDelete records the item awaiting delete confirmation.
func (c *Core) MarkForDelete(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pendingDelete = id
}

// PendingDelete reports the item currently awaiting confirmation, if any.
func (c *Core) PendingDelete() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pendingDelete
}

// DeleteItem removes an item optimistically. The pending-delete selection
// clears immediately, before the background call resolves. Deleting an id
// that is already gone is a no-op.
func (c *Core) DeleteItem(id string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return errors.ErrSessionClosed
	}
	c.items = removeItem(c.items, id)
	if c.pendingDelete == id {
		c.pendingDelete = ""
	}
	c.mu.Unlock()

	c.persist("delete item", func(ctx context.Context) error {
		return c.gw.DeleteItem(ctx, c.ownerID, id)
	})
	return nil
}

// AddEvent inserts a calendar event optimistically.
func (c *Core) AddEvent(input NewEvent) (models.CalendarEvent, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return models.CalendarEvent{}, errors.WithMessage(errors.ErrInvalidInput, "event title is required")
	}
	date := models.NormalizeEvent(map[string]interface{}{"date": input.Date}).Date

	event := models.CalendarEvent{
		OwnerID:     c.ownerID,
		Title:       title,
		Date:        date,
		Description: strings.TrimSpace(input.Description),
	}
	event.EnsureIdentity()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return models.CalendarEvent{}, errors.ErrSessionClosed
	}
	c.events = append(c.events, event)
	c.mu.Unlock()

	persisted := event
	c.persist("create event", func(ctx context.Context) error {
		return c.gw.CreateEvent(ctx, &persisted)
	})
	return event, nil
}

// DeleteEvent removes an event optimistically; unknown ids are a no-op.
func (c *Core) DeleteEvent(id string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return errors.ErrSessionClosed
	}
	out := make([]models.CalendarEvent, 0, len(c.events))
	for _, e := range c.events {
		if e.ID != id {
			out = append(out, e)
		}
	}
	c.events = out
	c.mu.Unlock()

	c.persist("delete event", func(ctx context.Context) error {
		return c.gw.DeleteEvent(ctx, c.ownerID, id)
	})
	return nil
}

// UpdateTheme replaces the theme and persists the full theme document.
func (c *Core) UpdateTheme(theme models.Theme) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return errors.ErrSessionClosed
	}
	c.settings.Theme = theme
	c.mu.Unlock()

	c.persist("save theme", func(ctx context.Context) error {
		return c.gw.SaveSettings(ctx, c.ownerID, c.email, gateway.SettingsPatch{Theme: &theme})
	})
	return nil
}

// UpdateSavings sets the manually tracked baseline savings. Negative values
// clamp to zero.
func (c *Core) UpdateSavings(value float64) error {
	if value < 0 {
		value = 0
	}
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return errors.ErrSessionClosed
	}
	c.settings.InitialSavings = value
	c.mu.Unlock()

	c.persist("save savings", func(ctx context.Context) error {
		return c.gw.SaveSettings(ctx, c.ownerID, c.email, gateway.SettingsPatch{InitialSavings: &value})
	})
	return nil
}

// UpdateLevels replaces the milestone set wholesale. Milestones arriving
// without an id get one assigned.
func (c *Core) UpdateLevels(levels models.LevelList) error {
	for i := range levels {
		if levels[i].ID == "" {
			levels[i].ID = uuid.New()
		}
	}
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return errors.ErrSessionClosed
	}
	c.settings.BudgetLevels = levels
	c.mu.Unlock()

	c.persist("save milestones", func(ctx context.Context) error {
		return c.gw.SaveSettings(ctx, c.ownerID, c.email, gateway.SettingsPatch{BudgetLevels: &levels})
	})
	return nil
}

// handleChange folds one feed notification into local state. Changes
// arriving after Close are dropped.
func (c *Core) handleChange(change gateway.Change) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	switch change.Collection {
	case gateway.CollectionItems:
		c.items = mergeItemChange(c.items, change)
	case gateway.CollectionEvents:
		c.events = mergeEventChange(c.events, change)
	case gateway.CollectionProfile:
		if change.Type == gateway.ChangeUpdate || change.Type == gateway.ChangeInsert {
			c.settings = mergeSettingsChange(c.settings, change.Record)
		}
	}
}

// persist runs a gateway write in the background. Failures are logged and
// the optimistic state stands; resolutions that land after Close are
// discarded silently.
func (c *Core) persist(op string, fn func(ctx context.Context) error) {
	go func() {
		err := fn(context.Background())
		if err == nil {
			return
		}
		c.mu.RLock()
		closed := c.closed
		c.mu.RUnlock()
		if closed {
			return
		}
		var appErr *errors.AppError
		if stderrors.As(err, &appErr) && appErr.Code == errors.ErrStorageFull.Code {
			c.log.Errorw("persistence failed: storage full", "op", op)
			return
		}
		c.log.Errorw("background persistence failed", "op", op, "error", err)
	}()
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
