package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "dreamportal/internal/errors"
	"dreamportal/internal/models"
	"dreamportal/internal/sync"
)

// PortalHandler serves the synchronized portal state: the snapshot, item
// and event mutations, settings, and derived metrics. Every request runs
// against the caller's sync session, which starts lazily on first access.
type PortalHandler struct {
	sessions *sync.Manager
}

// NewPortalHandler creates a new PortalHandler
func NewPortalHandler(sessions *sync.Manager) *PortalHandler {
	return &PortalHandler{sessions: sessions}
}

// core resolves the caller's session, starting it if needed.
func (h *PortalHandler) core(c *gin.Context) (*sync.Core, error) {
	userID, err := getUserID(c)
	if err != nil {
		return nil, err
	}
	core, err := h.sessions.Acquire(c.Request.Context(), userID, getEmail(c))
	if err != nil {
		return nil, err
	}
	return core, nil
}

// CreateItemRequest represents a new dream item payload
type CreateItemRequest struct {
	Title          string  `json:"title" binding:"required,max=200"`
	Price          float64 `json:"price" binding:"omitempty,min=0"`
	Link           string  `json:"link" binding:"omitempty,max=2000"`
	Image          string  `json:"image"`
	ImageFit       string  `json:"image_fit" binding:"omitempty,image_fit"`
	ImageScale     float64 `json:"image_scale" binding:"omitempty,min=0"`
	ImagePositionX float64 `json:"image_position_x" binding:"omitempty,min=0,max=100"`
	ImagePositionY float64 `json:"image_position_y" binding:"omitempty,min=0,max=100"`
}

// UpdateItemRequest represents a partial item update; absent fields are
// left untouched.
type UpdateItemRequest struct {
	Title          *string  `json:"title" binding:"omitempty,max=200"`
	Price          *float64 `json:"price" binding:"omitempty,min=0"`
	Progress       *int     `json:"progress" binding:"omitempty,min=0,max=100"`
	Link           *string  `json:"link" binding:"omitempty,max=2000"`
	Image          *string  `json:"image"`
	ImageFit       *string  `json:"image_fit" binding:"omitempty,image_fit"`
	ImageScale     *float64 `json:"image_scale" binding:"omitempty,min=0"`
	ImagePositionX *float64 `json:"image_position_x" binding:"omitempty,min=0,max=100"`
	ImagePositionY *float64 `json:"image_position_y" binding:"omitempty,min=0,max=100"`
}

// CreateEventRequest represents a new calendar event payload
type CreateEventRequest struct {
	Title       string `json:"title" binding:"required,max=200"`
	Date        string `json:"date" binding:"required,event_date"`
	Description string `json:"description" binding:"omitempty,max=2000"`
}

// ThemeRequest carries a full theme replacement.
type ThemeRequest struct {
	PrimaryColor        string `json:"primaryColor" binding:"required,hex_color"`
	SecondaryColor      string `json:"secondaryColor" binding:"required,hex_color"`
	PortalTitle         string `json:"portalTitle" binding:"required,max=100"`
	PortalTitleColor    string `json:"portalTitleColor" binding:"required,hex_color"`
	PortalSubtitle      string `json:"portalSubtitle" binding:"max=200"`
	PortalSubtitleColor string `json:"portalSubtitleColor" binding:"required,hex_color"`
	BackgroundImage     string `json:"backgroundImage" binding:"max=2000"`
	CardColor           string `json:"cardColor" binding:"required,hex_color"`
	FontColor           string `json:"fontColor" binding:"required,hex_color"`
	BgGradientStart     string `json:"bgGradientStart" binding:"required,hex_color"`
	BgGradientEnd       string `json:"bgGradientEnd" binding:"required,hex_color"`
	ActionButtonColor   string `json:"actionButtonColor" binding:"required,hex_color"`
	ObjectAnimation     string `json:"objectAnimation" binding:"required,object_animation"`
}

// SavingsRequest sets the manually tracked baseline savings.
type SavingsRequest struct {
	InitialSavings float64 `json:"initial_savings" binding:"min=0"`
}

// LevelRequest is one milestone in a wholesale milestone replacement.
type LevelRequest struct {
	ID     string  `json:"id"`
	Label  string  `json:"label" binding:"required,max=100"`
	Target float64 `json:"target" binding:"min=0"`
}

// LevelsRequest replaces the milestone set.
type LevelsRequest struct {
	Levels []LevelRequest `json:"levels" binding:"required,dive"`
}

// GetPortal returns the whole synchronized snapshot
// @Summary     Get portal snapshot
// @Description Get the full synchronized state: items, events, settings, and derived metrics
// @Tags        portal
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} sync.Snapshot "Portal snapshot"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     503 {object} ErrorResponse "Backend unreachable"
// @Router      /portal [get]
func (h *PortalHandler) GetPortal(c *gin.Context) {
	core, err := h.core(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, core.Snapshot())
}

// Refresh reloads the snapshot from the backend
// @Summary     Refresh portal data
// @Description Reload collections from the backend; a failed refresh keeps current data
// @Tags        portal
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} sync.Snapshot "Portal snapshot after refresh"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /portal/refresh [post]
func (h *PortalHandler) Refresh(c *gin.Context) {
	core, err := h.core(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if err := core.Start(c.Request.Context()); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, core.Snapshot())
}

// GetMetrics returns the derived financial summary
// @Summary     Get metrics
// @Description Get total target, invested amount, overall progress, and milestone positions
// @Tags        portal
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} metrics.Summary "Derived metrics"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /portal/metrics [get]
func (h *PortalHandler) GetMetrics(c *gin.Context) {
	core, err := h.core(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, core.Metrics())
}

// CreateItem adds a dream item
// @Summary     Create dream item
// @Description Add a dream item; it appears immediately and persists in the background
// @Tags        items
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateItemRequest true "New item"
// @Success     201 {object} models.DreamItem "Created item"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /portal/items [post]
func (h *PortalHandler) CreateItem(c *gin.Context) {
	var req CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	core, err := h.core(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	item, err := core.AddItem(sync.NewItem{
		Title:          req.Title,
		Price:          req.Price,
		Link:           req.Link,
		Image:          req.Image,
		ImageFit:       models.ImageFit(req.ImageFit),
		ImageScale:     req.ImageScale,
		ImagePositionX: req.ImagePositionX,
		ImagePositionY: req.ImagePositionY,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// UpdateItem applies a partial update to a dream item
// @Summary     Update dream item
// @Description Patch item fields; progress changes re-derive the status
// @Tags        items
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string            true "Item ID"
// @Param       request body UpdateItemRequest true "Fields to change"
// @Success     200 {object} models.DreamItem "Updated item"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Item not found"
// @Router      /portal/items/{id} [patch]
func (h *PortalHandler) UpdateItem(c *gin.Context) {
	var req UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	core, err := h.core(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	patch := models.ItemPatch{
		Title:          req.Title,
		Price:          req.Price,
		Progress:       req.Progress,
		Link:           req.Link,
		Image:          req.Image,
		ImageScale:     req.ImageScale,
		ImagePositionX: req.ImagePositionX,
		ImagePositionY: req.ImagePositionY,
	}
	if req.ImageFit != nil {
		fit := models.ImageFit(*req.ImageFit)
		patch.ImageFit = &fit
	}

	item, err := core.UpdateItem(c.Param("id"), patch)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// DeleteItem removes a dream item
// @Summary     Delete dream item
// @Description Remove an item; repeat deletes are a no-op
// @Tags        items
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Item ID"
// @Success     204 "Item removed"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /portal/items/{id} [delete]
func (h *PortalHandler) DeleteItem(c *gin.Context) {
	core, err := h.core(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if err := core.DeleteItem(c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CreateEvent adds a calendar event
// @Summary     Create calendar event
// @Description Add a dated event to the shared calendar
// @Tags        events
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateEventRequest true "New event"
// @Success     201 {object} models.CalendarEvent "Created event"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /portal/events [post]
func (h *PortalHandler) CreateEvent(c *gin.Context) {
	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	core, err := h.core(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	event, err := core.AddEvent(sync.NewEvent{
		Title:       req.Title,
		Date:        req.Date,
		Description: req.Description,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, event)
}

// DeleteEvent removes a calendar event
// @Summary     Delete calendar event
// @Description Remove an event; repeat deletes are a no-op
// @Tags        events
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Event ID"
// @Success     204 "Event removed"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /portal/events/{id} [delete]
func (h *PortalHandler) DeleteEvent(c *gin.Context) {
	core, err := h.core(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if err := core.DeleteEvent(c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UpdateTheme replaces the portal theme
// @Summary     Update theme
// @Description Replace the portal's customization settings
// @Tags        settings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body ThemeRequest true "Theme"
// @Success     200 {object} models.Settings "Updated settings"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /portal/settings/theme [put]
func (h *PortalHandler) UpdateTheme(c *gin.Context) {
	var req ThemeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	core, err := h.core(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := core.UpdateTheme(models.Theme{
		PrimaryColor:        req.PrimaryColor,
		SecondaryColor:      req.SecondaryColor,
		PortalTitle:         req.PortalTitle,
		PortalTitleColor:    req.PortalTitleColor,
		PortalSubtitle:      req.PortalSubtitle,
		PortalSubtitleColor: req.PortalSubtitleColor,
		BackgroundImage:     req.BackgroundImage,
		CardColor:           req.CardColor,
		FontColor:           req.FontColor,
		BgGradientStart:     req.BgGradientStart,
		BgGradientEnd:       req.BgGradientEnd,
		ActionButtonColor:   req.ActionButtonColor,
		ObjectAnimation:     req.ObjectAnimation,
	}); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, core.Settings())
}

// UpdateSavings sets the baseline savings
// @Summary     Update initial savings
// @Description Set the manually tracked savings added on top of item progress
// @Tags        settings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body SavingsRequest true "Savings"
// @Success     200 {object} models.Settings "Updated settings"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /portal/settings/savings [put]
func (h *PortalHandler) UpdateSavings(c *gin.Context) {
	var req SavingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	core, err := h.core(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if err := core.UpdateSavings(req.InitialSavings); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, core.Settings())
}

// UpdateLevels replaces the milestone set
// @Summary     Update milestones
// @Description Replace the savings milestone set wholesale
// @Tags        settings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body LevelsRequest true "Milestones"
// @Success     200 {object} models.Settings "Updated settings"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /portal/settings/levels [put]
func (h *PortalHandler) UpdateLevels(c *gin.Context) {
	var req LevelsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	core, err := h.core(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	levels := make(models.LevelList, 0, len(req.Levels))
	for _, l := range req.Levels {
		levels = append(levels, models.BudgetLevel{ID: l.ID, Label: l.Label, Target: l.Target})
	}
	if err := core.UpdateLevels(levels); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, core.Settings())
}
