package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"dreamportal/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("couple%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestItem creates a dream item with the given price and progress.
func CreateTestItem(t *testing.T, db *gorm.DB, ownerID string, price float64, progress int) *models.DreamItem {
	t.Helper()

	item := &models.DreamItem{
		OwnerID:   ownerID,
		Title:     fmt.Sprintf("Sonho %d", nextID()),
		Price:     price,
		Progress:  progress,
		Status:    models.StatusForProgress(progress),
		CreatedAt: time.Now().UnixMilli() - nextID(),
	}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("failed to create test item: %v", err)
	}
	return item
}

// CreateTestEvent creates a calendar event on the given date.
func CreateTestEvent(t *testing.T, db *gorm.DB, ownerID, date string) *models.CalendarEvent {
	t.Helper()

	event := &models.CalendarEvent{
		OwnerID: ownerID,
		Title:   fmt.Sprintf("Evento %d", nextID()),
		Date:    date,
	}
	if err := db.Create(event).Error; err != nil {
		t.Fatalf("failed to create test event: %v", err)
	}
	return event
}
