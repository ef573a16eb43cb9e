package services

import (
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"moneymanager/internal/pagination"
	"moneymanager/internal/testutil"
)

func TestCreateGoal(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewSavingsGoalService(db)
		user := testutil.CreateTestUser(t, db)

		deadline := testutil.Day(2025, time.December, 31)
		goal, err := svc.CreateGoal(user.ID, CreateGoalInput{
			Name:         "Holiday",
			TargetAmount: testutil.Money(t, "1500.00"),
			Deadline:     &deadline,
		})
		testutil.AssertNoError(t, err)

		if goal.Name != "Holiday" || !goal.CurrentAmount.IsZero() {
			t.Errorf("unexpected goal: %+v", goal)
		}
		if goal.Color == "" {
			t.Error("expected default color")
		}
	})

	t.Run("invalid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewSavingsGoalService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateGoal(user.ID, CreateGoalInput{Name: "", TargetAmount: testutil.Money(t, "1")})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
		_, err = svc.CreateGoal(user.ID, CreateGoalInput{Name: "Car", TargetAmount: decimal.Zero})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestGetUserGoals(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewSavingsGoalService(db)
	user := testutil.CreateTestUser(t, db)

	late := testutil.Day(2030, time.January, 1)
	soon := testutil.Day(2025, time.January, 1)
	for _, in := range []CreateGoalInput{
		{Name: "Open ended", TargetAmount: testutil.Money(t, "10")},
		{Name: "Late", TargetAmount: testutil.Money(t, "10"), Deadline: &late},
		{Name: "Soon", TargetAmount: testutil.Money(t, "10"), Deadline: &soon},
	} {
		_, err := svc.CreateGoal(user.ID, in)
		testutil.AssertNoError(t, err)
	}

	result, err := svc.GetUserGoals(user.ID, pagination.PageRequest{})
	testutil.AssertNoError(t, err)

	want := []string{"Soon", "Late", "Open ended"}
	if len(result.Data) != len(want) {
		t.Fatalf("expected %d goals, got %d", len(want), len(result.Data))
	}
	for i, name := range want {
		if result.Data[i].Name != name {
			t.Errorf("position %d: expected %s, got %s", i, name, result.Data[i].Name)
		}
	}
}

func TestAddFunds(t *testing.T) {
	t.Run("accumulates", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewSavingsGoalService(db)
		user := testutil.CreateTestUser(t, db)
		goal := testutil.CreateTestGoal(t, db, user.ID, testutil.Money(t, "100"))

		_, err := svc.AddFunds(user.ID, goal.ID, testutil.Money(t, "10.10"))
		testutil.AssertNoError(t, err)
		updated, err := svc.AddFunds(user.ID, goal.ID, testutil.Money(t, "0.20"))
		testutil.AssertNoError(t, err)

		if !updated.CurrentAmount.Equal(testutil.Money(t, "10.30")) {
			t.Errorf("expected 10.30, got %s", updated.CurrentAmount)
		}
	})

	t.Run("concurrent_deposits", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewSavingsGoalService(db)
		user := testutil.CreateTestUser(t, db)
		goal := testutil.CreateTestGoal(t, db, user.ID, testutil.Money(t, "100"))

		deposit := testutil.Money(t, "1.50")
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := svc.AddFunds(user.ID, goal.ID, deposit); err != nil {
					t.Errorf("AddFunds failed: %v", err)
				}
			}()
		}
		wg.Wait()

		reloaded, err := svc.GetGoalByID(user.ID, goal.ID)
		testutil.AssertNoError(t, err)
		if !reloaded.CurrentAmount.Equal(testutil.Money(t, "15.00")) {
			t.Errorf("expected 15.00, got %s", reloaded.CurrentAmount)
		}
	})

	t.Run("invalid_amount", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewSavingsGoalService(db)
		user := testutil.CreateTestUser(t, db)
		goal := testutil.CreateTestGoal(t, db, user.ID, testutil.Money(t, "100"))

		_, err := svc.AddFunds(user.ID, goal.ID, testutil.Money(t, "-5"))
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("other_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewSavingsGoalService(db)
		user := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		goal := testutil.CreateTestGoal(t, db, user.ID, testutil.Money(t, "100"))

		_, err := svc.AddFunds(other.ID, goal.ID, testutil.Money(t, "5"))
		testutil.AssertAppError(t, err, "GOAL_NOT_FOUND")
	})
}

func TestDeleteGoal(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewSavingsGoalService(db)
	user := testutil.CreateTestUser(t, db)
	goal := testutil.CreateTestGoal(t, db, user.ID, testutil.Money(t, "100"))

	testutil.AssertNoError(t, svc.DeleteGoal(user.ID, goal.ID))
	_, err := svc.GetGoalByID(user.ID, goal.ID)
	testutil.AssertAppError(t, err, "GOAL_NOT_FOUND")
}
