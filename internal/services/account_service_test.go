package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"moneymanager/internal/models"
	"moneymanager/internal/pagination"
	"moneymanager/internal/testutil"
)

func TestCreateAccount(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)
		user := testutil.CreateTestUser(t, db)

		account, err := svc.CreateAccount(user.ID, CreateAccountInput{
			Name:        "Savings",
			Type:        models.AccountTypeSavings,
			Description: "My savings",
			Currency:    "usd",
		})
		testutil.AssertNoError(t, err)

		if account.ID == "" {
			t.Fatal("expected account ID")
		}
		if account.Name != "Savings" {
			t.Errorf("expected name Savings, got %s", account.Name)
		}
		if account.Type != models.AccountTypeSavings {
			t.Errorf("expected type savings, got %s", account.Type)
		}
		if account.Currency != "USD" {
			t.Errorf("expected currency USD, got %s", account.Currency)
		}
		if !account.IsActive {
			t.Error("expected account to be active")
		}
	})

	t.Run("opening_balance_without_transaction", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)
		user := testutil.CreateTestUser(t, db)

		account, err := svc.CreateAccount(user.ID, CreateAccountInput{
			Name:           "Checking",
			InitialBalance: testutil.Money(t, "100.00"),
		})
		testutil.AssertNoError(t, err)
		testutil.AssertBalance(t, db, account.ID, "100.00")

		var txCount int64
		db.Model(&models.Transaction{}).Where("account_id = ?", account.ID).Count(&txCount)
		if txCount != 0 {
			t.Errorf("expected no opening transaction, got %d", txCount)
		}
	})

	t.Run("defaults", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)
		user := testutil.CreateTestUser(t, db)

		account, err := svc.CreateAccount(user.ID, CreateAccountInput{Name: "Wallet"})
		testutil.AssertNoError(t, err)
		if account.Type != models.AccountTypeCash {
			t.Errorf("expected default type cash, got %s", account.Type)
		}
		if account.Currency != "EUR" {
			t.Errorf("expected default currency EUR, got %s", account.Currency)
		}
	})

	t.Run("empty_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateAccount(user.ID, CreateAccountInput{Name: "   "})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestGetUserAccounts(t *testing.T) {
	t.Run("only_own_active_accounts", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)
		user := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)

		testutil.CreateTestAccount(t, db, user.ID)
		testutil.CreateTestAccount(t, db, user.ID)
		testutil.CreateTestAccount(t, db, other.ID)
		deleted := testutil.CreateTestAccount(t, db, user.ID)
		testutil.AssertNoError(t, svc.DeleteAccount(user.ID, deleted.ID))

		result, err := svc.GetUserAccounts(user.ID, pagination.PageRequest{})
		testutil.AssertNoError(t, err)
		if result.TotalItems != 2 {
			t.Errorf("expected 2 accounts, got %d", result.TotalItems)
		}
	})

	t.Run("sorted_by_balance", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)
		user := testutil.CreateTestUser(t, db)

		testutil.CreateTestAccountWithBalance(t, db, user.ID, decimal.NewFromInt(5))
		testutil.CreateTestAccountWithBalance(t, db, user.ID, decimal.NewFromInt(50))
		testutil.CreateTestAccountWithBalance(t, db, user.ID, decimal.NewFromInt(20))

		result, err := svc.GetUserAccounts(user.ID, pagination.PageRequest{Sort: "-balance"})
		testutil.AssertNoError(t, err)
		if len(result.Data) != 3 || !result.Data[0].Balance.Equal(decimal.NewFromInt(50)) {
			t.Errorf("expected highest balance first, got %+v", result.Data)
		}
	})

	t.Run("pagination", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)
		user := testutil.CreateTestUser(t, db)

		for i := 0; i < 5; i++ {
			testutil.CreateTestAccount(t, db, user.ID)
		}

		result, err := svc.GetUserAccounts(user.ID, pagination.PageRequest{Page: 2, PageSize: 2})
		testutil.AssertNoError(t, err)
		if len(result.Data) != 2 {
			t.Errorf("expected 2 items on page 2, got %d", len(result.Data))
		}
		if result.TotalPages != 3 {
			t.Errorf("expected 3 pages, got %d", result.TotalPages)
		}
	})
}

func TestGetAccountByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)
		user := testutil.CreateTestUser(t, db)
		created := testutil.CreateTestAccount(t, db, user.ID)

		account, err := svc.GetAccountByID(user.ID, created.ID)
		testutil.AssertNoError(t, err)
		if account.ID != created.ID {
			t.Errorf("expected ID %s, got %s", created.ID, account.ID)
		}
	})

	t.Run("other_users_account", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)
		user := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, other.ID)

		_, err := svc.GetAccountByID(user.ID, account.ID)
		testutil.AssertAppError(t, err, "ACCOUNT_NOT_FOUND")
	})
}

func TestUpdateAccount(t *testing.T) {
	t.Run("updates_descriptive_fields", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)
		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccountWithBalance(t, db, user.ID, decimal.NewFromInt(10))

		name := "Renamed"
		accountType := models.AccountTypeBank
		updated, err := svc.UpdateAccount(user.ID, account.ID, AccountUpdateFields{Name: &name, Type: &accountType})
		testutil.AssertNoError(t, err)

		if updated.Name != "Renamed" || updated.Type != models.AccountTypeBank {
			t.Errorf("unexpected account after update: %+v", updated)
		}
		testutil.AssertBalance(t, db, account.ID, "10")
	})

	t.Run("empty_name_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)
		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, user.ID)

		name := ""
		_, err := svc.UpdateAccount(user.ID, account.ID, AccountUpdateFields{Name: &name})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestDeleteAccount(t *testing.T) {
	t.Run("cancels_recurring_templates", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)
		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, user.ID)
		category := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)
		rec := testutil.CreateTestRecurring(t, db, user.ID, account.ID, category.ID,
			models.TransactionTypeExpense, decimal.NewFromInt(10), testutil.Day(2030, 1, 1))

		testutil.AssertNoError(t, svc.DeleteAccount(user.ID, account.ID))

		_, err := svc.GetAccountByID(user.ID, account.ID)
		testutil.AssertAppError(t, err, "ACCOUNT_NOT_FOUND")

		var reloaded models.RecurringTransaction
		db.Where("id = ?", rec.ID).First(&reloaded)
		if reloaded.Active || reloaded.CancelledAt == nil {
			t.Errorf("expected recurring template to be cancelled, got %+v", reloaded)
		}
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)
		user := testutil.CreateTestUser(t, db)

		err := svc.DeleteAccount(user.ID, "0190f1a2-0000-7000-8000-00000000dead")
		testutil.AssertAppError(t, err, "ACCOUNT_NOT_FOUND")
	})
}

func TestApplyTransactionEffect(t *testing.T) {
	tests := []struct {
		name      string
		start     string
		txType    models.TransactionType
		amount    string
		reversing bool
		want      string
	}{
		{"income_adds", "100.00", models.TransactionTypeIncome, "25.50", false, "125.50"},
		{"expense_subtracts", "100.00", models.TransactionTypeExpense, "30.00", false, "70.00"},
		{"reverse_income", "125.50", models.TransactionTypeIncome, "25.50", true, "100.00"},
		{"reverse_expense", "70.00", models.TransactionTypeExpense, "30.00", true, "100.00"},
		{"expense_can_go_negative", "10.00", models.TransactionTypeExpense, "30.00", false, "-20.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testutil.SetupTestDB(t)
			defer testutil.TeardownTestDB(t, db)
			svc := NewAccountService(db)
			user := testutil.CreateTestUser(t, db)
			account := testutil.CreateTestAccountWithBalance(t, db, user.ID, testutil.Money(t, tt.start))

			err := db.Transaction(func(tx *gorm.DB) error {
				locked, err := svc.LockAccount(tx, user.ID, account.ID)
				if err != nil {
					return err
				}
				return svc.ApplyTransactionEffect(tx, locked, tt.txType, testutil.Money(t, tt.amount), tt.reversing)
			})
			testutil.AssertNoError(t, err)
			testutil.AssertBalance(t, db, account.ID, tt.want)

			if v := testutil.ReloadAccount(t, db, account.ID).Version; v != 1 {
				t.Errorf("expected version 1, got %d", v)
			}
		})
	}

	t.Run("stale_version_is_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)
		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccountWithBalance(t, db, user.ID, testutil.Money(t, "100.00"))

		err := db.Transaction(func(tx *gorm.DB) error {
			locked, err := svc.LockAccount(tx, user.ID, account.ID)
			if err != nil {
				return err
			}
			// Another writer commits in between.
			if err := tx.Model(&models.Account{}).Where("id = ?", account.ID).
				Updates(map[string]interface{}{"balance": decimal.NewFromInt(90), "version": 1}).Error; err != nil {
				return err
			}
			return svc.ApplyTransactionEffect(tx, locked, models.TransactionTypeExpense, decimal.NewFromInt(30), false)
		})
		testutil.AssertAppError(t, err, "CONCURRENT_UPDATE")
		testutil.AssertBalance(t, db, account.ID, "100.00")
	})

	t.Run("invalid_type", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)
		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, user.ID)

		err := svc.ApplyTransactionEffect(db, account, models.TransactionType("TRANSFER"), decimal.NewFromInt(1), false)
		testutil.AssertAppError(t, err, "INVALID_TRANSACTION_TYPE")
	})
}

func TestLockAccount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewAccountService(db)
	user := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)
	account := testutil.CreateTestAccount(t, db, other.ID)

	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := svc.LockAccount(tx, user.ID, account.ID)
		return err
	})
	testutil.AssertAppError(t, err, "ACCOUNT_NOT_FOUND")
}
