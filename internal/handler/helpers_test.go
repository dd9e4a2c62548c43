package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rotiroti/backoffice/internal/auth"
	"github.com/rotiroti/backoffice/internal/config"
	"github.com/rotiroti/backoffice/internal/database"
	"github.com/rotiroti/backoffice/internal/enum"
	"github.com/rotiroti/backoffice/internal/logger"
	"github.com/rotiroti/backoffice/internal/memstore"
	"github.com/rotiroti/backoffice/internal/router"
)

const (
	testSecret   = "test-secret"
	demoPassword = "bakery-demo"
)

// testAPI is the full router over a seeded in-memory store.
type testAPI struct {
	t       *testing.T
	handler http.Handler
	store   *memstore.Store
	mainID  int64
	northID int64
	users   map[enum.Role]database.User
	tokens  map[enum.Role]string
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	store := memstore.New()
	demo, err := store.SeedDemo(context.Background(), demoPassword)
	if err != nil {
		t.Fatalf("seed demo: %v", err)
	}

	cfg := &config.Config{
		JWTSecret:      testSecret,
		AllowedOrigins: []string{"http://localhost:5173"},
		Location:       time.UTC,
		AppVersion:     "test",
	}
	api := &testAPI{
		t:       t,
		handler: router.New(cfg, store, nil, logger.Discard()),
		store:   store,
		mainID:  demo.Branches[0].ID,
		northID: demo.Branches[1].ID,
		users:   map[enum.Role]database.User{},
		tokens:  map[enum.Role]string{},
	}
	for _, u := range demo.Users {
		role := enum.Role(u.Role)
		api.users[role] = u
		api.tokens[role] = tokenFor(t, u)
	}
	return api
}

func tokenFor(t *testing.T, u database.User) string {
	t.Helper()
	var branch *int64
	if u.BranchID.Valid {
		id := u.BranchID.Int64
		branch = &id
	}
	token, err := auth.GenerateToken(testSecret, u.ID, branch, enum.Role(u.Role))
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return token
}

// addUser creates a user directly in the store and returns their token.
func (a *testAPI) addUser(role enum.Role, branchID int64, email string) (database.User, string) {
	a.t.Helper()
	u, err := a.store.CreateUser(context.Background(), database.CreateUserParams{
		BranchID:       database.Int8(branchID),
		Email:          email,
		HashedPassword: "x",
		FullName:       email,
		Role:           string(role),
	})
	if err != nil {
		a.t.Fatalf("create user %s: %v", email, err)
	}
	return u, tokenFor(a.t, u)
}

func (a *testAPI) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			a.t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	a.handler.ServeHTTP(rr, req)
	return rr
}

func (a *testAPI) as(role enum.Role, method, path string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	return a.do(method, path, a.tokens[role], body)
}

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func expectStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("status: got %d, want %d (body: %s)", rr.Code, want, rr.Body.String())
	}
}

// decodeData unwraps the response envelope into dst.
func decodeData(t *testing.T, rr *httptest.ResponseRecorder, dst any) {
	t.Helper()
	var resp apiResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v (body: %s)", err, rr.Body.String())
	}
	if !resp.Success {
		t.Fatalf("response not successful: %s", resp.Message)
	}
	if err := json.Unmarshal(resp.Data, dst); err != nil {
		t.Fatalf("decode data: %v (data: %s)", err, resp.Data)
	}
}

func pathf(format string, args ...any) string { return fmt.Sprintf(format, args...) }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func expectDecimal(t *testing.T, name string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Errorf("%s: got %s, want %s", name, got, want)
	}
}

// Response shapes decoded by the tests.

type dailySalesJSON struct {
	ID          int64           `json:"id"`
	BranchID    int64           `json:"branch_id"`
	CashierID   string          `json:"cashier_id"`
	SalesDate   string          `json:"sales_date"`
	TotalSales  decimal.Decimal `json:"total_sales"`
	Discrepancy decimal.Decimal `json:"discrepancy"`
	Status      string          `json:"status"`
}

type cashBoxJSON struct {
	BranchID       int64           `json:"branch_id"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
}

type transactionJSON struct {
	ID              int64           `json:"id"`
	Amount          decimal.Decimal `json:"amount"`
	Type            string          `json:"type"`
	Source          string          `json:"source"`
	ReferenceNumber string          `json:"reference_number"`
}

type ledgerJSON struct {
	Transaction transactionJSON `json:"transaction"`
	CashBox     cashBoxJSON     `json:"cash_box"`
	Created     bool            `json:"created"`
}

type shiftBody map[string]any

func shift(salesDate, shiftType, cash, network string) shiftBody {
	return shiftBody{
		"sales_date":          salesDate,
		"shift_type":          shiftType,
		"total_cash_sales":    cash,
		"total_network_sales": network,
		"total_transactions":  10,
	}
}

// approvedShift submits a shift as the main branch cashier and approves it
// as the supervisor.
func (a *testAPI) approvedShift(body shiftBody) dailySalesJSON {
	a.t.Helper()
	rr := a.as(enum.RoleCashier, http.MethodPost, "/api/daily-sales", body)
	expectStatus(a.t, rr, http.StatusCreated)
	var sale dailySalesJSON
	decodeData(a.t, rr, &sale)

	rr = a.as(enum.RoleSupervisor, http.MethodPost, pathf("/api/daily-sales/%d/approve", sale.ID), nil)
	expectStatus(a.t, rr, http.StatusOK)
	decodeData(a.t, rr, &sale)
	return sale
}
