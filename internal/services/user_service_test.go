package services

import (
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"moneymanager/internal/models"
	"moneymanager/internal/testutil"
)

func newTestUserService(t *testing.T) (UserServicer, func()) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	svc := NewUserService(db)
	svc.(*userService).bcryptCost = bcrypt.MinCost
	return svc, func() { testutil.TeardownTestDB(t, db) }
}

func TestCreateUser(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		svc, done := newTestUserService(t)
		defer done()

		user, err := svc.CreateUser(" Alice@Example.com ", "password123", "Alice Smith")
		testutil.AssertNoError(t, err)

		if user.ID == "" {
			t.Fatal("expected user ID to be assigned")
		}
		if user.Email != "alice@example.com" {
			t.Errorf("expected normalized email, got %s", user.Email)
		}
		if user.FullName != "Alice Smith" {
			t.Errorf("expected full name Alice Smith, got %s", user.FullName)
		}
		if user.Password == "password123" {
			t.Error("password must be stored hashed")
		}
		if !user.IsActive {
			t.Error("expected user to be active")
		}
	})

	t.Run("duplicate_email", func(t *testing.T) {
		svc, done := newTestUserService(t)
		defer done()

		_, err := svc.CreateUser("dup@example.com", "password123", "")
		testutil.AssertNoError(t, err)

		_, err = svc.CreateUser("DUP@example.com", "password456", "")
		testutil.AssertAppError(t, err, "DUPLICATE_EMAIL")
	})

	tests := []struct {
		name     string
		email    string
		password string
		code     string
	}{
		{"empty_email", "", "password123", "INVALID_INPUT"},
		{"empty_password", "bob@example.com", "", "INVALID_INPUT"},
		{"short_password", "bob@example.com", "short", "INVALID_INPUT"},
		{"malformed_email", "not-an-email", "password123", "INVALID_EMAIL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, done := newTestUserService(t)
			defer done()

			_, err := svc.CreateUser(tt.email, tt.password, "")
			testutil.AssertAppError(t, err, tt.code)
		})
	}
}

func TestGetUser(t *testing.T) {
	svc, done := newTestUserService(t)
	defer done()

	created, err := svc.CreateUser("carol@example.com", "password123", "Carol")
	testutil.AssertNoError(t, err)

	byEmail, err := svc.GetUserByEmail("CAROL@example.com")
	testutil.AssertNoError(t, err)
	if byEmail.ID != created.ID {
		t.Errorf("expected %s, got %s", created.ID, byEmail.ID)
	}

	byID, err := svc.GetUserByID(created.ID)
	testutil.AssertNoError(t, err)
	if byID.Email != created.Email {
		t.Errorf("expected %s, got %s", created.Email, byID.Email)
	}

	_, err = svc.GetUserByEmail("nobody@example.com")
	testutil.AssertAppError(t, err, "USER_NOT_FOUND")

	_, err = svc.GetUserByID("0190f1a2-0000-7000-8000-000000000099")
	testutil.AssertAppError(t, err, "USER_NOT_FOUND")
}

func TestAttemptLogin(t *testing.T) {
	t.Run("success_records_login", func(t *testing.T) {
		svc, done := newTestUserService(t)
		defer done()
		_, err := svc.CreateUser("dave@example.com", "password123", "")
		testutil.AssertNoError(t, err)

		user, err := svc.AttemptLogin("dave@example.com", "password123")
		testutil.AssertNoError(t, err)
		if user.LastLoginAt == nil {
			t.Error("expected last login to be recorded")
		}
	})

	t.Run("unknown_email_and_wrong_password_look_alike", func(t *testing.T) {
		svc, done := newTestUserService(t)
		defer done()
		_, err := svc.CreateUser("erin@example.com", "password123", "")
		testutil.AssertNoError(t, err)

		_, err = svc.AttemptLogin("ghost@example.com", "password123")
		testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")
		_, err = svc.AttemptLogin("erin@example.com", "wrong-password")
		testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")
	})

	t.Run("locks_after_repeated_failures", func(t *testing.T) {
		svc, done := newTestUserService(t)
		defer done()
		now := time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC)
		svc.(*userService).now = func() time.Time { return now }
		_, err := svc.CreateUser("frank@example.com", "password123", "")
		testutil.AssertNoError(t, err)

		for i := 1; i < maxFailedLogins; i++ {
			_, err = svc.AttemptLogin("frank@example.com", "wrong-password")
			testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")
		}
		_, err = svc.AttemptLogin("frank@example.com", "wrong-password")
		testutil.AssertAppError(t, err, "ACCOUNT_LOCKED")

		// Correct password is refused while locked.
		_, err = svc.AttemptLogin("frank@example.com", "password123")
		testutil.AssertAppError(t, err, "ACCOUNT_LOCKED")

		now = now.Add(lockoutDuration + time.Second)
		_, err = svc.AttemptLogin("frank@example.com", "password123")
		testutil.AssertNoError(t, err)
	})

	t.Run("success_resets_counter", func(t *testing.T) {
		svc, done := newTestUserService(t)
		defer done()
		created, err := svc.CreateUser("gina@example.com", "password123", "")
		testutil.AssertNoError(t, err)

		_, err = svc.AttemptLogin("gina@example.com", "wrong-password")
		testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")
		_, err = svc.AttemptLogin("gina@example.com", "password123")
		testutil.AssertNoError(t, err)

		user, err := svc.GetUserByID(created.ID)
		testutil.AssertNoError(t, err)
		if user.FailedLoginAttempts != 0 {
			t.Errorf("expected counter reset, got %d", user.FailedLoginAttempts)
		}
	})
}

func TestRefreshTokenHash(t *testing.T) {
	svc, done := newTestUserService(t)
	defer done()
	user, err := svc.CreateUser("hank@example.com", "password123", "")
	testutil.AssertNoError(t, err)

	testutil.AssertNoError(t, svc.StoreRefreshTokenHash(user.ID, "abc123"))
	hash, err := svc.GetRefreshTokenHash(user.ID)
	testutil.AssertNoError(t, err)
	if hash != "abc123" {
		t.Errorf("expected stored hash, got %q", hash)
	}

	testutil.AssertNoError(t, svc.ClearRefreshTokenHash(user.ID))
	hash, err = svc.GetRefreshTokenHash(user.ID)
	testutil.AssertNoError(t, err)
	if hash != "" {
		t.Errorf("expected cleared hash, got %q", hash)
	}

	err = svc.StoreRefreshTokenHash("0190f1a2-0000-7000-8000-000000000099", "x")
	testutil.AssertAppError(t, err, "USER_NOT_FOUND")
}

func TestUpdateProfile(t *testing.T) {
	svc, done := newTestUserService(t)
	defer done()
	user, err := svc.CreateUser("ivy@example.com", "password123", "Ivy")
	testutil.AssertNoError(t, err)

	updated, err := svc.UpdateProfile(user.ID, "  Ivy Jones ")
	testutil.AssertNoError(t, err)
	if updated.FullName != "Ivy Jones" {
		t.Errorf("expected trimmed name, got %q", updated.FullName)
	}

	_, err = svc.UpdateProfile(user.ID, " ")
	testutil.AssertAppError(t, err, "INVALID_INPUT")
}

func TestChangePassword(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		svc, done := newTestUserService(t)
		defer done()
		user, err := svc.CreateUser("jack@example.com", "password123", "")
		testutil.AssertNoError(t, err)
		testutil.AssertNoError(t, svc.StoreRefreshTokenHash(user.ID, "session"))

		testutil.AssertNoError(t, svc.ChangePassword(user.ID, "password123", "newpassword456"))

		_, err = svc.AttemptLogin("jack@example.com", "newpassword456")
		testutil.AssertNoError(t, err)
		hash, _ := svc.GetRefreshTokenHash(user.ID)
		if hash != "" {
			t.Error("expected refresh token to be revoked")
		}
	})

	t.Run("wrong_current_password", func(t *testing.T) {
		svc, done := newTestUserService(t)
		defer done()
		user, err := svc.CreateUser("kate@example.com", "password123", "")
		testutil.AssertNoError(t, err)

		err = svc.ChangePassword(user.ID, "nope", "newpassword456")
		testutil.AssertAppError(t, err, "INVALID_PASSWORD")
	})

	t.Run("short_new_password", func(t *testing.T) {
		svc, done := newTestUserService(t)
		defer done()
		user, err := svc.CreateUser("liam@example.com", "password123", "")
		testutil.AssertNoError(t, err)

		err = svc.ChangePassword(user.ID, "password123", "short")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestDeleteUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewUserService(db)

	user := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)
	account := testutil.CreateTestAccount(t, db, user.ID)
	cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)
	testutil.CreateTestTransaction(t, db, user.ID, account.ID, cat.ID, models.TransactionTypeExpense, testutil.Money(t, "5"), time.Now())
	testutil.CreateTestRecurring(t, db, user.ID, account.ID, cat.ID, models.TransactionTypeExpense, testutil.Money(t, "5"), time.Now())
	testutil.CreateTestBudget(t, db, user.ID, cat.ID)
	testutil.CreateTestGoal(t, db, user.ID, testutil.Money(t, "1000"))
	otherAccount := testutil.CreateTestAccount(t, db, other.ID)

	testutil.AssertNoError(t, svc.DeleteUser(user.ID))

	for name, model := range map[string]interface{}{
		"users":        &models.User{},
		"accounts":     &models.Account{},
		"categories":   &models.Category{},
		"transactions": &models.Transaction{},
		"recurring":    &models.RecurringTransaction{},
		"budgets":      &models.Budget{},
		"goals":        &models.SavingsGoal{},
	} {
		var count int64
		q := db.Unscoped().Model(model)
		if name == "users" {
			q = q.Where("id = ?", user.ID)
		} else {
			q = q.Where("user_id = ?", user.ID)
		}
		q.Count(&count)
		if count != 0 {
			t.Errorf("expected no %s left, got %d", name, count)
		}
	}

	testutil.ReloadAccount(t, db, otherAccount.ID)

	err := svc.DeleteUser(user.ID)
	testutil.AssertAppError(t, err, "USER_NOT_FOUND")
}
