package services

import (
	"testing"

	"dreamportal/internal/testutil"
)

func TestCreateUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	service := NewUserService(db)

	t.Run("creates_user_with_hashed_password", func(t *testing.T) {
		user, err := service.CreateUser("Couple@Example.com", "password123")
		testutil.AssertNoError(t, err)

		if user.ID == "" {
			t.Error("expected assigned id")
		}
		if user.Email != "couple@example.com" {
			t.Errorf("email must be lowercased, got %q", user.Email)
		}
		if user.Password == "password123" {
			t.Error("password must not be stored in plain text")
		}
		if !service.VerifyPassword(user, "password123") {
			t.Error("stored hash must verify against the original password")
		}
	})

	t.Run("rejects_duplicate_email", func(t *testing.T) {
		_, err := service.CreateUser("dup@example.com", "password123")
		testutil.AssertNoError(t, err)

		_, err = service.CreateUser("dup@example.com", "password456")
		testutil.AssertAppError(t, err, "DUPLICATE_EMAIL")
	})

	t.Run("rejects_missing_fields", func(t *testing.T) {
		_, err := service.CreateUser("", "password123")
		testutil.AssertAppError(t, err, "INVALID_INPUT")

		_, err = service.CreateUser("a@b.com", "")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestAttemptLogin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	service := NewUserService(db)

	user := testutil.CreateTestUser(t, db)

	t.Run("valid_credentials", func(t *testing.T) {
		got, err := service.AttemptLogin(user.Email, "password123")
		testutil.AssertNoError(t, err)
		if got.ID != user.ID {
			t.Errorf("expected user %s, got %s", user.ID, got.ID)
		}
		if got.LastLoginAt == nil {
			t.Error("expected login timestamp")
		}
	})

	t.Run("wrong_password", func(t *testing.T) {
		_, err := service.AttemptLogin(user.Email, "wrong")
		testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")
	})

	t.Run("unknown_email_yields_same_error", func(t *testing.T) {
		_, err := service.AttemptLogin("nobody@example.com", "password123")
		testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")
	})
}

func TestGetUserByID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	service := NewUserService(db)

	user := testutil.CreateTestUser(t, db)

	got, err := service.GetUserByID(user.ID)
	testutil.AssertNoError(t, err)
	if got.Email != user.Email {
		t.Errorf("expected %q, got %q", user.Email, got.Email)
	}

	_, err = service.GetUserByID("00000000-0000-0000-0000-000000000000")
	testutil.AssertAppError(t, err, "USER_NOT_FOUND")
}
