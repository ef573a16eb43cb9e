package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "moneymanager/internal/errors"
	"moneymanager/internal/models"
	"moneymanager/internal/pagination"
	"moneymanager/internal/services"
)

// --- mock savings goal service ---

type mockGoalService struct {
	createGoalFn   func(userID string, input services.CreateGoalInput) (*models.SavingsGoal, error)
	getUserGoalsFn func(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.SavingsGoal], error)
	getGoalByIDFn  func(userID, goalID string) (*models.SavingsGoal, error)
	addFundsFn     func(userID, goalID string, amount decimal.Decimal) (*models.SavingsGoal, error)
	deleteGoalFn   func(userID, goalID string) error
}

func (m *mockGoalService) CreateGoal(userID string, input services.CreateGoalInput) (*models.SavingsGoal, error) {
	if m.createGoalFn != nil {
		return m.createGoalFn(userID, input)
	}
	return &models.SavingsGoal{Base: models.Base{ID: testGoalID}, UserID: userID, Name: input.Name, TargetAmount: input.TargetAmount}, nil
}

func (m *mockGoalService) GetUserGoals(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.SavingsGoal], error) {
	if m.getUserGoalsFn != nil {
		return m.getUserGoalsFn(userID, page)
	}
	resp := pagination.NewPageResponse([]models.SavingsGoal{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockGoalService) GetGoalByID(userID, goalID string) (*models.SavingsGoal, error) {
	if m.getGoalByIDFn != nil {
		return m.getGoalByIDFn(userID, goalID)
	}
	return &models.SavingsGoal{Base: models.Base{ID: goalID}, UserID: userID}, nil
}

func (m *mockGoalService) AddFunds(userID, goalID string, amount decimal.Decimal) (*models.SavingsGoal, error) {
	if m.addFundsFn != nil {
		return m.addFundsFn(userID, goalID, amount)
	}
	return &models.SavingsGoal{Base: models.Base{ID: goalID}, CurrentAmount: amount}, nil
}

func (m *mockGoalService) DeleteGoal(userID, goalID string) error {
	if m.deleteGoalFn != nil {
		return m.deleteGoalFn(userID, goalID)
	}
	return nil
}

var _ services.SavingsGoalServicer = (*mockGoalService)(nil)

const testGoalID = "0190f1a2-8888-7000-8000-000000000008"

func setupGoalRouter(handler *SavingsGoalHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(testUserID))
	auth.POST("/goals", handler.CreateGoal)
	auth.GET("/goals", handler.GetGoals)
	auth.GET("/goals/:id", handler.GetGoal)
	auth.PUT("/goals/:id/add", handler.AddFunds)
	auth.DELETE("/goals/:id", handler.DeleteGoal)
	return r
}

func TestSavingsGoalHandler_CreateGoal(t *testing.T) {
	t.Run("returns 201 with deadline", func(t *testing.T) {
		var got services.CreateGoalInput
		svc := &mockGoalService{
			createGoalFn: func(userID string, input services.CreateGoalInput) (*models.SavingsGoal, error) {
				got = input
				return &models.SavingsGoal{Base: models.Base{ID: testGoalID}, UserID: userID, Name: input.Name, TargetAmount: input.TargetAmount}, nil
			},
		}
		audit := &mockAuditService{}
		r := setupGoalRouter(NewSavingsGoalHandler(svc, audit))

		rec := doRequest(r, http.MethodPost, "/goals", `{"name":"Bike","target_amount":"800","deadline":"2024-09-01"}`)
		assertStatus(t, rec, http.StatusCreated)
		if got.Deadline == nil || got.Deadline.Format("2006-01-02") != "2024-09-01" {
			t.Errorf("unexpected deadline: %v", got.Deadline)
		}
		goal := parseJSON(t, rec)["goal"].(map[string]interface{})
		if goal["target_amount"] != "800" {
			t.Errorf("expected target 800, got %v", goal["target_amount"])
		}
		if len(audit.entries) != 1 || audit.entries[0].resourceType != "savings_goal" {
			t.Errorf("expected goal audit entry, got %+v", audit.entries)
		}
	})

	t.Run("rejects invalid payloads", func(t *testing.T) {
		r := setupGoalRouter(NewSavingsGoalHandler(&mockGoalService{}, &mockAuditService{}))

		for name, body := range map[string]string{
			"no name":      `{"target_amount":"100"}`,
			"zero target":  `{"name":"Car","target_amount":"0"}`,
			"bad deadline": `{"name":"Car","target_amount":"100","deadline":"next year"}`,
			"bad color":    `{"name":"Car","target_amount":"100","color":"red"}`,
		} {
			t.Run(name, func(t *testing.T) {
				rec := doRequest(r, http.MethodPost, "/goals", body)
				assertStatus(t, rec, http.StatusBadRequest)
			})
		}
	})
}

func TestSavingsGoalHandler_AddFunds(t *testing.T) {
	t.Run("deposits amount", func(t *testing.T) {
		var got decimal.Decimal
		svc := &mockGoalService{
			addFundsFn: func(_, goalID string, amount decimal.Decimal) (*models.SavingsGoal, error) {
				got = amount
				return &models.SavingsGoal{Base: models.Base{ID: goalID}, CurrentAmount: amount}, nil
			},
		}
		r := setupGoalRouter(NewSavingsGoalHandler(svc, &mockAuditService{}))

		rec := doRequest(r, http.MethodPut, "/goals/"+testGoalID+"/add", `{"amount":"12.34"}`)
		assertStatus(t, rec, http.StatusOK)
		if !got.Equal(decimal.RequireFromString("12.34")) {
			t.Errorf("expected 12.34, got %s", got)
		}
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		r := setupGoalRouter(NewSavingsGoalHandler(&mockGoalService{}, &mockAuditService{}))

		rec := doRequest(r, http.MethodPut, "/goals/"+testGoalID+"/add", `{"amount":"-3"}`)
		assertStatus(t, rec, http.StatusBadRequest)
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("goal not found", func(t *testing.T) {
		svc := &mockGoalService{
			addFundsFn: func(string, string, decimal.Decimal) (*models.SavingsGoal, error) {
				return nil, apperrors.ErrGoalNotFound
			},
		}
		r := setupGoalRouter(NewSavingsGoalHandler(svc, &mockAuditService{}))

		rec := doRequest(r, http.MethodPut, "/goals/"+testGoalID+"/add", `{"amount":"5"}`)
		assertStatus(t, rec, http.StatusNotFound)
		assertErrorCode(t, parseJSON(t, rec), "GOAL_NOT_FOUND")
	})
}

func TestSavingsGoalHandler_GetAndDelete(t *testing.T) {
	audit := &mockAuditService{}
	r := setupGoalRouter(NewSavingsGoalHandler(&mockGoalService{}, audit))

	rec := doRequest(r, http.MethodGet, "/goals", "")
	assertStatus(t, rec, http.StatusOK)

	rec = doRequest(r, http.MethodGet, "/goals/"+testGoalID, "")
	assertStatus(t, rec, http.StatusOK)

	rec = doRequest(r, http.MethodDelete, "/goals/"+testGoalID, "")
	assertStatus(t, rec, http.StatusOK)
	if len(audit.entries) != 1 || audit.entries[0].action != services.AuditActionDelete {
		t.Errorf("expected delete audit entry, got %+v", audit.entries)
	}

	rec = doRequest(r, http.MethodDelete, "/goals/nope", "")
	assertStatus(t, rec, http.StatusBadRequest)
}
