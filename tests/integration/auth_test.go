package integration

import (
	"fmt"
	"net/http"
	"testing"
)

func TestAuthFlow_RegisterLoginProfileRefresh(t *testing.T) {
	app := setupApp(t)

	// Step 1: Register
	accessToken, refreshToken, userID := app.registerUser(t, "auth@test.com", "password123")
	if accessToken == "" || refreshToken == "" {
		t.Fatal("expected non-empty tokens from registration")
	}
	if userID == "" {
		t.Fatal("expected a user ID")
	}

	// Step 2: Login with same credentials, different case
	loginAccess, loginRefresh := app.loginUser(t, "Auth@Test.com", "password123")

	// Step 3: Access profile with login access token
	rec := app.request(http.MethodGet, "/api/v1/profile", "", loginAccess)
	mustStatus(t, rec, http.StatusOK)
	user := parseJSON(t, rec)["user"].(map[string]interface{})
	if user["email"] != "auth@test.com" || user["id"] != userID {
		t.Errorf("unexpected profile: %v", user)
	}

	// Step 4: Refresh token rotates
	rec = app.request(http.MethodPost, "/api/v1/auth/refresh", fmt.Sprintf(`{"refresh_token":%q}`, loginRefresh), "")
	mustStatus(t, rec, http.StatusOK)
	rotated := parseJSON(t, rec)["refresh_token"].(string)

	// Step 5: The old refresh token no longer works
	rec = app.request(http.MethodPost, "/api/v1/auth/refresh", fmt.Sprintf(`{"refresh_token":%q}`, loginRefresh), "")
	mustStatus(t, rec, http.StatusUnauthorized)

	// Step 6: Logout revokes the rotated one as well
	rec = app.request(http.MethodPost, "/api/v1/auth/logout", "", loginAccess)
	mustStatus(t, rec, http.StatusOK)
	rec = app.request(http.MethodPost, "/api/v1/auth/refresh", fmt.Sprintf(`{"refresh_token":%q}`, rotated), "")
	mustStatus(t, rec, http.StatusUnauthorized)
}

func TestAuthFlow_RegisterDuplicateEmail(t *testing.T) {
	app := setupApp(t)
	app.registerUser(t, "dup@test.com", "password123")

	rec := app.request(http.MethodPost, "/api/v1/auth/register", `{"email":"DUP@test.com","password":"password123"}`, "")
	mustStatus(t, rec, http.StatusConflict)
	errObj := parseJSON(t, rec)["error"].(map[string]interface{})
	if errObj["code"] != "DUPLICATE_EMAIL" {
		t.Errorf("expected DUPLICATE_EMAIL, got %v", errObj["code"])
	}
}

func TestAuthFlow_AccountLockout(t *testing.T) {
	app := setupApp(t)
	app.registerUser(t, "lock@test.com", "password123")

	body := `{"email":"lock@test.com","password":"wrong-password"}`
	for i := 0; i < 4; i++ {
		rec := app.request(http.MethodPost, "/api/v1/auth/login", body, "")
		mustStatus(t, rec, http.StatusUnauthorized)
	}
	rec := app.request(http.MethodPost, "/api/v1/auth/login", body, "")
	mustStatus(t, rec, http.StatusLocked)

	// The right password is refused while locked.
	rec = app.request(http.MethodPost, "/api/v1/auth/login", `{"email":"lock@test.com","password":"password123"}`, "")
	mustStatus(t, rec, http.StatusLocked)
}

func TestAuthFlow_ChangePassword(t *testing.T) {
	app := setupApp(t)
	token, refresh, _ := app.registerUser(t, "pw@test.com", "password123")

	rec := app.request(http.MethodPut, "/api/v1/profile/password",
		`{"current_password":"nope-nope","new_password":"newpassword1"}`, token)
	mustStatus(t, rec, http.StatusBadRequest)

	rec = app.request(http.MethodPut, "/api/v1/profile/password",
		`{"current_password":"password123","new_password":"newpassword1"}`, token)
	mustStatus(t, rec, http.StatusOK)

	// Existing refresh tokens are revoked.
	rec = app.request(http.MethodPost, "/api/v1/auth/refresh", fmt.Sprintf(`{"refresh_token":%q}`, refresh), "")
	mustStatus(t, rec, http.StatusUnauthorized)

	app.loginUser(t, "pw@test.com", "newpassword1")
}

func TestAuthFlow_DeleteProfileRemovesData(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "gone@test.com", "password123")
	accountID := app.createAccount(t, token, "Wallet", "10")
	categoryID := app.createCategory(t, token, "Food", "EXPENSE")
	app.createTransaction(t, token, accountID, categoryID, "EXPENSE", "5", "")

	rec := app.request(http.MethodDelete, "/api/v1/profile", "", token)
	mustStatus(t, rec, http.StatusOK)

	rec = app.request(http.MethodPost, "/api/v1/auth/login", `{"email":"gone@test.com","password":"password123"}`, "")
	mustStatus(t, rec, http.StatusUnauthorized)

	// The email can be registered again.
	app.registerUser(t, "gone@test.com", "password123")
}

func TestAuthFlow_ProtectedRoutes(t *testing.T) {
	app := setupApp(t)
	_, refresh, _ := app.registerUser(t, "tok@test.com", "password123")

	rec := app.request(http.MethodGet, "/api/v1/profile", "", "")
	mustStatus(t, rec, http.StatusUnauthorized)

	rec = app.request(http.MethodGet, "/api/v1/profile", "", "not-a-jwt")
	mustStatus(t, rec, http.StatusUnauthorized)

	// Refresh tokens are not access tokens.
	rec = app.request(http.MethodGet, "/api/v1/profile", "", refresh)
	mustStatus(t, rec, http.StatusUnauthorized)
}
