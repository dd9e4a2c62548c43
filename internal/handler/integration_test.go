//go:build integration

package handler_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/bcrypt"

	"github.com/rotiroti/backoffice/internal/config"
	"github.com/rotiroti/backoffice/internal/database"
	"github.com/rotiroti/backoffice/internal/enum"
	"github.com/rotiroti/backoffice/internal/logger"
	"github.com/rotiroti/backoffice/internal/router"
	"github.com/rotiroti/backoffice/internal/ws"
)

// TestIntegrationFlow exercises the shift-to-HQ cash lifecycle against a real
// PostgreSQL database through the full router.
func TestIntegrationFlow(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	connStr, cleanup := setupPostgresContainer(t, ctx)
	defer cleanup()
	runMigrations(t, connStr)

	pool, err := database.NewPool(ctx, connStr)
	if err != nil {
		t.Fatalf("create pool: %v", err)
	}
	defer pool.Close()
	store := database.NewStore(pool)

	log := logger.Discard()
	hub := ws.NewHub(log)
	go hub.Run(ctx)

	cfg := &config.Config{
		JWTSecret:      "integration-test-secret",
		AllowedOrigins: []string{"http://localhost:5173"},
		Location:       time.UTC,
		AppVersion:     "integration",
	}
	server := httptest.NewServer(router.New(cfg, store, hub, log))
	defer server.Close()

	// --- 1. Bootstrap branch and admin directly ---
	branch, err := store.CreateBranch(ctx, database.CreateBranchParams{Name: "Main Branch"})
	if err != nil {
		t.Fatalf("create branch: %v", err)
	}
	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if _, err := store.CreateUser(ctx, database.CreateUserParams{
		Email:          "admin@test.local",
		HashedPassword: string(hashed),
		FullName:       "HQ Admin",
		Role:           string(enum.RoleAdmin),
	}); err != nil {
		t.Fatalf("create admin: %v", err)
	}

	admin := login(t, server, "admin@test.local", "password123")

	// --- 2. Staff accounts through the API ---
	for _, u := range []map[string]any{
		{"email": "cashier@test.local", "password": "password123", "full_name": "Cashier", "role": "cashier", "branch_id": branch.ID},
		{"email": "manager@test.local", "password": "password123", "full_name": "Manager", "role": "branch_manager", "branch_id": branch.ID},
	} {
		call(t, server, http.MethodPost, "/api/users", admin, u, http.StatusCreated, nil)
	}
	cashier := login(t, server, "cashier@test.local", "password123")
	manager := login(t, server, "manager@test.local", "password123")

	// --- 3. Two shifts, approved ---
	var shifts []dailySalesJSON
	for _, s := range []shiftBody{
		shift("2026-10-15", "morning", "1200.00", "300.00"),
		shift("2026-10-15", "evening", "800.00", "100.00"),
	} {
		var sale dailySalesJSON
		call(t, server, http.MethodPost, "/api/daily-sales", cashier, s, http.StatusCreated, &sale)
		call(t, server, http.MethodPost, pathf("/api/daily-sales/%d/approve", sale.ID), manager, nil, http.StatusOK, &sale)
		shifts = append(shifts, sale)
	}

	// --- 4. Consolidate and close the day ---
	var rec consolidatedJSON
	call(t, server, http.MethodPost, "/api/consolidated-sales", admin,
		map[string]any{"branch_id": branch.ID, "sales_date": "2026-10-15"}, http.StatusCreated, &rec)
	if rec.ShiftCount != 2 {
		t.Fatalf("shift_count: got %d, want 2", rec.ShiftCount)
	}
	expectDecimal(t, "consolidated total", rec.TotalSales, "2400")
	call(t, server, http.MethodPost, pathf("/api/consolidated-sales/%d/close", rec.ID), manager, nil, http.StatusOK, &rec)

	// --- 5. Deposit shift cash concurrently; one posting per shift ---
	// The branch has no cash box yet, so the first postings race to open it.
	if _, err := store.GetCashBoxByBranch(ctx, branch.ID); !errors.Is(err, database.ErrNotFound) {
		t.Fatalf("cash box before deposits: got err %v, want not found", err)
	}
	var wg sync.WaitGroup
	created := make(chan bool, 4)
	for _, s := range shifts {
		for range 2 {
			wg.Add(1)
			go func(id int64) {
				defer wg.Done()
				var res ledgerJSON
				status := callStatus(t, server, http.MethodPost, pathf("/api/cash-box/daily-sales/%d", id), manager, nil, &res)
				if status != http.StatusCreated && status != http.StatusOK {
					t.Errorf("process daily sales %d: status %d", id, status)
				}
				created <- res.Created
			}(s.ID)
		}
	}
	wg.Wait()
	close(created)
	var postings int
	for c := range created {
		if c {
			postings++
		}
	}
	if postings != 2 {
		t.Fatalf("deposits posted: got %d, want 2", postings)
	}

	var box cashBoxJSON
	call(t, server, http.MethodGet, pathf("/api/cash-box/%d", branch.ID), manager, nil, http.StatusOK, &box)
	expectDecimal(t, "balance", box.CurrentBalance, "2000")

	// --- 5b. Concurrent lazy creation opens exactly one box ---
	other, err := store.CreateBranch(ctx, database.CreateBranchParams{Name: "North Branch"})
	if err != nil {
		t.Fatalf("create branch: %v", err)
	}
	opened := make(chan bool, 8)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := store.ExecTx(ctx, func(q database.Querier) error {
				ok, err := q.CreateCashBoxIfMissing(ctx, database.CreateCashBoxParams{BranchID: other.ID})
				if err != nil {
					return err
				}
				if _, err := q.GetCashBoxByBranchForUpdate(ctx, other.ID); err != nil {
					return err
				}
				opened <- ok
				return nil
			})
			if err != nil {
				t.Errorf("open cash box: %v", err)
			}
		}()
	}
	wg.Wait()
	close(opened)
	var inserts int
	for ok := range opened {
		if ok {
			inserts++
		}
	}
	if inserts != 1 {
		t.Fatalf("cash boxes inserted: got %d, want 1", inserts)
	}

	// --- 6. Transfer to HQ, approve one, reject another ---
	var first, second transferResultJSON
	call(t, server, http.MethodPost, "/api/cash-box/transfers", manager, map[string]any{"amount": "1500"}, http.StatusCreated, &first)
	call(t, server, http.MethodPost, "/api/cash-box/transfers", manager, map[string]any{"amount": "600"}, http.StatusUnprocessableEntity, nil)
	call(t, server, http.MethodPost, "/api/cash-box/transfers", manager, map[string]any{"amount": "400"}, http.StatusCreated, &second)
	call(t, server, http.MethodPost, pathf("/api/cash-box/transfers/%d/approve", first.Transfer.ID), admin, nil, http.StatusOK, nil)
	call(t, server, http.MethodPost, pathf("/api/cash-box/transfers/%d/reject", second.Transfer.ID), admin,
		map[string]string{"reason": "count again"}, http.StatusOK, nil)

	call(t, server, http.MethodGet, pathf("/api/cash-box/%d", branch.ID), manager, nil, http.StatusOK, &box)
	expectDecimal(t, "balance after transfers", box.CurrentBalance, "500")

	// --- 7. Ledger sums to the balance ---
	var txs []transactionJSON
	call(t, server, http.MethodGet, pathf("/api/cash-box/%d/transactions?limit=100", branch.ID), manager, nil, http.StatusOK, &txs)
	sum := dec("0")
	for _, tx := range txs {
		if tx.Type == "deposit" {
			sum = sum.Add(tx.Amount)
		} else {
			sum = sum.Sub(tx.Amount)
		}
	}
	expectDecimal(t, "ledger sum", sum, "500")

	// --- 8. Consolidated record can now be marked transferred ---
	call(t, server, http.MethodPost, pathf("/api/consolidated-sales/%d/transfer", rec.ID), manager, nil, http.StatusOK, &rec)
	if rec.Status != "transferred" {
		t.Fatalf("consolidated status: got %s", rec.Status)
	}

	call(t, server, http.MethodGet, "/health", "", nil, http.StatusOK, nil)
}

// --- Setup helpers ---

func setupPostgresContainer(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()

	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("backoffice_test"),
		tcpostgres.WithUsername("bakery"),
		tcpostgres.WithPassword("bakery"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("get connection string: %v", err)
	}

	cleanup := func() {
		if err := pgContainer.Terminate(context.Background()); err != nil {
			t.Logf("terminate container: %v", err)
		}
	}
	return connStr, cleanup
}

func runMigrations(t *testing.T, connStr string) {
	t.Helper()

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		t.Fatalf("open db for migrations: %v", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		t.Fatalf("create migrate driver: %v", err)
	}

	// Go test runs with the package directory as cwd.
	m, err := migrate.NewWithDatabaseInstance("file://../../migrations", "postgres", driver)
	if err != nil {
		t.Fatalf("create migrate instance: %v", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		t.Fatalf("run migrations: %v", err)
	}
}

// --- HTTP helpers ---

func login(t *testing.T, server *httptest.Server, email, password string) string {
	t.Helper()
	var pair tokenPair
	call(t, server, http.MethodPost, "/api/auth/login", "", map[string]string{"email": email, "password": password}, http.StatusOK, &pair)
	if pair.AccessToken == "" {
		t.Fatalf("login %s: no access token", email)
	}
	return pair.AccessToken
}

func call(t *testing.T, server *httptest.Server, method, path, token string, body any, want int, dst any) {
	t.Helper()
	if status := callStatus(t, server, method, path, token, body, dst); status != want {
		t.Fatalf("%s %s: status %d, want %d", method, path, status, want)
	}
}

// callStatus performs the request and decodes the envelope's data into dst
// on success. Safe for use from multiple goroutines.
func callStatus(t *testing.T, server *httptest.Server, method, path, token string, body any, dst any) int {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Errorf("marshal body: %v", err)
			return 0
		}
	}
	req, err := http.NewRequest(method, server.URL+path, &buf)
	if err != nil {
		t.Errorf("create request: %v", err)
		return 0
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Errorf("do request: %v", err)
		return 0
	}
	defer resp.Body.Close()

	var env apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Errorf("%s %s: decode response: %v", method, path, err)
		return resp.StatusCode
	}
	if dst != nil && env.Success && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, dst); err != nil {
			t.Errorf("%s %s: decode data: %v", method, path, err)
		}
	}
	return resp.StatusCode
}
