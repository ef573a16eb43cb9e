package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"moneymanager/internal/config"
	"moneymanager/internal/events"
	"moneymanager/internal/logger"
	"moneymanager/internal/server"
	"moneymanager/internal/testutil"
	"moneymanager/internal/validator"
)

const pipelineKey = "integration-pipeline-key"

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
	Events *events.Recorder
}

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test", "error")
	validator.Register()
	config.Set(&config.Config{
		Env:             "test",
		JWTSecret:       "integration-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: time.Hour,
	})
}

// setupApp creates a full application stack backed by an isolated in-memory SQLite.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })

	recorder := &events.Recorder{}
	router := server.NewRouter(server.NewServices(db, recorder), server.Options{PipelineAPIKey: pipelineKey})

	return &testApp{DB: db, Router: router, Events: recorder}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// runSweep calls the pipeline endpoint for the given day.
func (app *testApp) runSweep(t *testing.T, date string) map[string]interface{} {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/pipeline/recurring/run?date="+date, http.NoBody)
	req.Header.Set("X-API-Key", pipelineKey)
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	mustStatus(t, rec, http.StatusOK)
	return parseJSON(t, rec)
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func mustStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}

// registerUser registers a new user and returns the access token, refresh token, and user ID.
func (app *testApp) registerUser(t *testing.T, email, password string) (accessToken, refreshToken, userID string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q,"full_name":"Test User"}`, email, password)
	rec := app.request(http.MethodPost, "/api/v1/auth/register", body, "")
	mustStatus(t, rec, http.StatusCreated)
	result := parseJSON(t, rec)
	user := result["user"].(map[string]interface{})
	return result["access_token"].(string), result["refresh_token"].(string), user["id"].(string)
}

// loginUser logs in and returns the access and refresh tokens.
func (app *testApp) loginUser(t *testing.T, email, password string) (accessToken, refreshToken string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q}`, email, password)
	rec := app.request(http.MethodPost, "/api/v1/auth/login", body, "")
	mustStatus(t, rec, http.StatusOK)
	result := parseJSON(t, rec)
	return result["access_token"].(string), result["refresh_token"].(string)
}

// createAccount opens an account and returns its ID.
func (app *testApp) createAccount(t *testing.T, token, name, initialBalance string) string {
	t.Helper()
	body := fmt.Sprintf(`{"name":%q,"initial_balance":%q}`, name, initialBalance)
	rec := app.request(http.MethodPost, "/api/v1/accounts", body, token)
	mustStatus(t, rec, http.StatusCreated)
	return parseJSON(t, rec)["account"].(map[string]interface{})["id"].(string)
}

// createCategory creates a category and returns its ID.
func (app *testApp) createCategory(t *testing.T, token, name, categoryType string) string {
	t.Helper()
	body := fmt.Sprintf(`{"name":%q,"type":%q}`, name, categoryType)
	rec := app.request(http.MethodPost, "/api/v1/categories", body, token)
	mustStatus(t, rec, http.StatusCreated)
	return parseJSON(t, rec)["category"].(map[string]interface{})["id"].(string)
}

// createTransaction records a transaction and returns the response body.
func (app *testApp) createTransaction(t *testing.T, token, accountID, categoryID, txType, amount, date string) map[string]interface{} {
	t.Helper()
	body := fmt.Sprintf(`{"account_id":%q,"category_id":%q,"type":%q,"amount":%q`, accountID, categoryID, txType, amount)
	if date != "" {
		body += fmt.Sprintf(`,"date":%q`, date)
	}
	body += "}"
	rec := app.request(http.MethodPost, "/api/v1/transactions", body, token)
	mustStatus(t, rec, http.StatusCreated)
	return parseJSON(t, rec)["transaction"].(map[string]interface{})
}

// accountBalance reads the account through the API.
func (app *testApp) accountBalance(t *testing.T, token, accountID string) decimal.Decimal {
	t.Helper()
	rec := app.request(http.MethodGet, "/api/v1/accounts/"+accountID, "", token)
	mustStatus(t, rec, http.StatusOK)
	raw := parseJSON(t, rec)["account"].(map[string]interface{})["balance"].(string)
	return decimal.RequireFromString(raw)
}

func assertBalance(t *testing.T, app *testApp, token, accountID, want string) {
	t.Helper()
	got := app.accountBalance(t, token, accountID)
	if !got.Equal(decimal.RequireFromString(want)) {
		t.Errorf("expected balance %s, got %s", want, got)
	}
}
