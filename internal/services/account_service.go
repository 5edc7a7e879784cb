package services

import (
	"context"

	"gorm.io/gorm"

	apperrors "dreamportal/internal/errors"
	"dreamportal/internal/gateway"
	"dreamportal/internal/logger"
	"dreamportal/internal/models"
	"dreamportal/internal/storage"
	syncpkg "dreamportal/internal/sync"
)

// accountService handles whole-account operations that span every
// subsystem: the sync session, portal data, uploaded assets, and the
// user row itself.
type accountService struct {
	db       *gorm.DB
	gw       gateway.Gateway
	assets   *storage.Store
	sessions *syncpkg.Manager
}

// NewAccountService creates a new AccountServicer.
func NewAccountService(db *gorm.DB, gw gateway.Gateway, assets *storage.Store, sessions *syncpkg.Manager) AccountServicer {
	return &accountService{db: db, gw: gw, assets: assets, sessions: sessions}
}

// DeleteAccount removes the user and everything they own. The sync session
// closes first so no background write races the purge; then portal data,
// then assets, then the account row. Each stage must succeed before the
// next runs, so a partial failure leaves the account intact and retryable.
func (s *accountService) DeleteAccount(ctx context.Context, userID string) error {
	var user models.User
	if err := s.db.Where("id = ?", userID).First(&user).Error; err != nil {
		return apperrors.ErrUserNotFound
	}

	s.sessions.Release(userID)

	if err := s.gw.Purge(ctx, userID); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := s.assets.Purge(userID); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := s.db.Delete(&user).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	logger.Get().Infow("account deleted", "user_id", userID)
	return nil
}
