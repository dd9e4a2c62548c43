package handler_test

import (
	"net/http"
	"testing"

	"github.com/rotiroti/backoffice/internal/enum"
)

func TestBranches(t *testing.T) {
	api := newTestAPI(t)

	t.Run("admin sees every branch", func(t *testing.T) {
		rr := api.as(enum.RoleAdmin, http.MethodGet, "/api/branches", nil)
		expectStatus(t, rr, http.StatusOK)
		var branches []struct {
			ID int64 `json:"id"`
		}
		decodeData(t, rr, &branches)
		if len(branches) != 2 {
			t.Fatalf("branches: got %d, want 2", len(branches))
		}
	})

	t.Run("branch staff see their own branch", func(t *testing.T) {
		rr := api.as(enum.RoleCashier, http.MethodGet, "/api/branches", nil)
		expectStatus(t, rr, http.StatusOK)
		var branches []struct {
			ID int64 `json:"id"`
		}
		decodeData(t, rr, &branches)
		if len(branches) != 1 || branches[0].ID != api.mainID {
			t.Fatalf("branches: got %+v, want only %d", branches, api.mainID)
		}
	})

	t.Run("other branch is forbidden", func(t *testing.T) {
		rr := api.as(enum.RoleBranchManager, http.MethodGet, pathf("/api/branches/%d", api.northID), nil)
		expectStatus(t, rr, http.StatusForbidden)
	})

	t.Run("only admin creates", func(t *testing.T) {
		body := map[string]string{"name": "Harbour Branch", "address": "Corniche"}
		expectStatus(t, api.as(enum.RoleBranchManager, http.MethodPost, "/api/branches", body), http.StatusForbidden)
		expectStatus(t, api.as(enum.RoleAdmin, http.MethodPost, "/api/branches", body), http.StatusCreated)
		expectStatus(t, api.as(enum.RoleAdmin, http.MethodPost, "/api/branches", body), http.StatusConflict)
		expectStatus(t, api.as(enum.RoleAdmin, http.MethodPost, "/api/branches", map[string]string{"name": " "}), http.StatusBadRequest)
	})
}

func TestCreateUser(t *testing.T) {
	api := newTestAPI(t)
	valid := map[string]any{
		"email":     "new.cashier@bakery.local",
		"password":  "longenough",
		"full_name": "New Cashier",
		"role":      "cashier",
		"branch_id": api.northID,
	}

	t.Run("non-admin forbidden", func(t *testing.T) {
		expectStatus(t, api.as(enum.RoleBranchManager, http.MethodPost, "/api/users", valid), http.StatusForbidden)
		expectStatus(t, api.as(enum.RoleBranchManager, http.MethodGet, "/api/users", nil), http.StatusForbidden)
	})

	t.Run("admin creates", func(t *testing.T) {
		rr := api.as(enum.RoleAdmin, http.MethodPost, "/api/users", valid)
		expectStatus(t, rr, http.StatusCreated)
		var u struct {
			Email    string `json:"email"`
			Role     string `json:"role"`
			BranchID *int64 `json:"branch_id"`
		}
		decodeData(t, rr, &u)
		if u.Role != "cashier" || u.BranchID == nil || *u.BranchID != api.northID {
			t.Errorf("user: got %+v", u)
		}
	})

	t.Run("duplicate email", func(t *testing.T) {
		expectStatus(t, api.as(enum.RoleAdmin, http.MethodPost, "/api/users", valid), http.StatusConflict)
	})

	tests := []struct {
		name   string
		mutate func(map[string]any)
	}{
		{"short password", func(b map[string]any) { b["password"] = "short" }},
		{"unknown role", func(b map[string]any) { b["role"] = "baker" }},
		{"branch role without branch", func(b map[string]any) { delete(b, "branch_id") }},
		{"missing branch", func(b map[string]any) { b["branch_id"] = 999 }},
		{"bad email", func(b map[string]any) { b["email"] = "no-at-sign" }},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := map[string]any{}
			for k, v := range valid {
				body[k] = v
			}
			body["email"] = pathf("user%d@bakery.local", i)
			tt.mutate(body)
			expectStatus(t, api.as(enum.RoleAdmin, http.MethodPost, "/api/users", body), http.StatusBadRequest)
		})
	}

	t.Run("list filters by branch", func(t *testing.T) {
		rr := api.as(enum.RoleAdmin, http.MethodGet, pathf("/api/users?branch_id=%d", api.northID), nil)
		expectStatus(t, rr, http.StatusOK)
		var users []struct {
			Email string `json:"email"`
		}
		decodeData(t, rr, &users)
		if len(users) != 1 || users[0].Email != "new.cashier@bakery.local" {
			t.Errorf("users: got %+v", users)
		}
	})
}
