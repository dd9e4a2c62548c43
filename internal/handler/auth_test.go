package handler_test

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/rotiroti/backoffice/internal/auth"
	"github.com/rotiroti/backoffice/internal/database"
	"github.com/rotiroti/backoffice/internal/enum"
	"github.com/rotiroti/backoffice/internal/handler"
	"github.com/rotiroti/backoffice/internal/logger"
)

// --- Mock store ---

type mockAuthStore struct {
	userByEmail map[string]database.User
	userByID    map[uuid.UUID]database.User
}

func newMockAuthStore() *mockAuthStore {
	return &mockAuthStore{
		userByEmail: make(map[string]database.User),
		userByID:    make(map[uuid.UUID]database.User),
	}
}

func (m *mockAuthStore) addUser(u database.User) {
	m.userByEmail[u.Email] = u
	m.userByID[u.ID] = u
}

func (m *mockAuthStore) GetUserByEmail(_ context.Context, email string) (database.User, error) {
	u, ok := m.userByEmail[email]
	if !ok {
		return database.User{}, database.ErrNotFound
	}
	return u, nil
}

func (m *mockAuthStore) GetUserByID(_ context.Context, id uuid.UUID) (database.User, error) {
	u, ok := m.userByID[id]
	if !ok {
		return database.User{}, database.ErrNotFound
	}
	return u, nil
}

// --- Helpers ---

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return string(h)
}

func makeTestUser(t *testing.T) database.User {
	t.Helper()
	return database.User{
		ID:             uuid.New(),
		BranchID:       database.Int8(7),
		Email:          "cashier@bakery.test",
		HashedPassword: hashPassword(t, "correct-password"),
		FullName:       "Test Cashier",
		Role:           string(enum.RoleCashier),
		IsActive:       true,
	}
}

func authAPI(t *testing.T, store *mockAuthStore) *testAPI {
	t.Helper()
	r := chi.NewRouter()
	handler.NewAuthHandler(store, testSecret, logger.Discard()).RegisterRoutes(r)
	return &testAPI{t: t, handler: r}
}

type tokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         struct {
		ID       uuid.UUID `json:"id"`
		BranchID *int64    `json:"branch_id"`
		Role     string    `json:"role"`
	} `json:"user"`
}

// --- Login tests ---

func TestLogin_Success(t *testing.T) {
	store := newMockAuthStore()
	user := makeTestUser(t)
	store.addUser(user)
	api := authAPI(t, store)

	rr := api.do(http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "Cashier@Bakery.test ",
		"password": "correct-password",
	})
	expectStatus(t, rr, http.StatusOK)

	var pair tokenPair
	decodeData(t, rr, &pair)
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("expected both tokens")
	}
	if pair.User.ID != user.ID || pair.User.Role != "cashier" {
		t.Errorf("user: got %+v", pair.User)
	}
	if pair.User.BranchID == nil || *pair.User.BranchID != 7 {
		t.Errorf("branch_id: got %v, want 7", pair.User.BranchID)
	}

	claims, err := auth.ValidateToken(testSecret, pair.AccessToken)
	if err != nil {
		t.Fatalf("validate access token: %v", err)
	}
	if claims.UserID != user.ID || claims.Role != enum.RoleCashier {
		t.Errorf("claims: got %+v", claims)
	}
	if claims.BranchID == nil || *claims.BranchID != 7 {
		t.Errorf("claims branch: got %v, want 7", claims.BranchID)
	}
}

func TestLogin_Rejections(t *testing.T) {
	store := newMockAuthStore()
	store.addUser(makeTestUser(t))
	inactive := makeTestUser(t)
	inactive.ID = uuid.New()
	inactive.Email = "gone@bakery.test"
	inactive.IsActive = false
	store.addUser(inactive)
	api := authAPI(t, store)

	tests := []struct {
		name   string
		body   map[string]string
		status int
	}{
		{"wrong password", map[string]string{"email": "cashier@bakery.test", "password": "nope"}, http.StatusUnauthorized},
		{"unknown email", map[string]string{"email": "who@bakery.test", "password": "correct-password"}, http.StatusUnauthorized},
		{"inactive user", map[string]string{"email": "gone@bakery.test", "password": "correct-password"}, http.StatusUnauthorized},
		{"missing password", map[string]string{"email": "cashier@bakery.test"}, http.StatusBadRequest},
		{"missing email", map[string]string{"password": "correct-password"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := api.do(http.MethodPost, "/auth/login", "", tt.body)
			expectStatus(t, rr, tt.status)
		})
	}
}

// --- Refresh tests ---

func TestRefresh_Success(t *testing.T) {
	store := newMockAuthStore()
	user := makeTestUser(t)
	store.addUser(user)
	api := authAPI(t, store)

	refresh, err := auth.GenerateRefreshToken(testSecret, user.ID)
	if err != nil {
		t.Fatalf("generate refresh token: %v", err)
	}
	rr := api.do(http.MethodPost, "/auth/refresh", "", map[string]string{"refresh_token": refresh})
	expectStatus(t, rr, http.StatusOK)

	var pair tokenPair
	decodeData(t, rr, &pair)
	if _, err := auth.ValidateToken(testSecret, pair.AccessToken); err != nil {
		t.Fatalf("new access token invalid: %v", err)
	}
}

func TestRefresh_Rejections(t *testing.T) {
	store := newMockAuthStore()
	user := makeTestUser(t)
	store.addUser(user)
	api := authAPI(t, store)

	otherSecret, _ := auth.GenerateRefreshToken("other-secret", user.ID)
	unknownUser, _ := auth.GenerateRefreshToken(testSecret, uuid.New())
	access, _ := auth.GenerateToken(testSecret, user.ID, nil, enum.RoleCashier)

	tests := []struct {
		name   string
		token  string
		status int
	}{
		{"empty", "", http.StatusBadRequest},
		{"garbage", "not-a-jwt", http.StatusUnauthorized},
		{"wrong secret", otherSecret, http.StatusUnauthorized},
		{"unknown user", unknownUser, http.StatusUnauthorized},
		{"access token has no subject", access, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := api.do(http.MethodPost, "/auth/refresh", "", map[string]string{"refresh_token": tt.token})
			expectStatus(t, rr, tt.status)
		})
	}
}

// --- Full router ---

func TestLoginAndMeThroughRouter(t *testing.T) {
	api := newTestAPI(t)

	rr := api.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "manager@bakery.local",
		"password": demoPassword,
	})
	expectStatus(t, rr, http.StatusOK)
	var pair tokenPair
	decodeData(t, rr, &pair)

	rr = api.do(http.MethodGet, "/api/auth/me", pair.AccessToken, nil)
	expectStatus(t, rr, http.StatusOK)
	var me struct {
		Email    string `json:"email"`
		Role     string `json:"role"`
		BranchID *int64 `json:"branch_id"`
	}
	decodeData(t, rr, &me)
	if me.Email != "manager@bakery.local" || me.Role != "branch_manager" {
		t.Errorf("me: got %+v", me)
	}
	if me.BranchID == nil || *me.BranchID != api.mainID {
		t.Errorf("me branch: got %v, want %d", me.BranchID, api.mainID)
	}
	if body := rr.Body.String(); strings.Contains(body, "hashed_password") {
		t.Error("profile must not expose the password hash")
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	api := newTestAPI(t)
	for _, p := range []string{"/api/auth/me", "/api/daily-sales", "/api/cash-box", "/api/dashboard/stats", "/api/notifications"} {
		rr := api.do(http.MethodGet, p, "", nil)
		expectStatus(t, rr, http.StatusUnauthorized)
	}
	rr := api.do(http.MethodGet, "/api/daily-sales", "Bearer-less", nil)
	expectStatus(t, rr, http.StatusUnauthorized)
}
