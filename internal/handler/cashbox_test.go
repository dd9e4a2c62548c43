package handler_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/rotiroti/backoffice/internal/enum"
)

type transferJSON struct {
	ID              int64           `json:"id"`
	BranchID        int64           `json:"branch_id"`
	Amount          decimal.Decimal `json:"amount"`
	Method          string          `json:"transfer_method"`
	Status          string          `json:"status"`
	ReferenceNumber string          `json:"reference_number"`
}

type transferResultJSON struct {
	Transfer    transferJSON    `json:"transfer"`
	Transaction transactionJSON `json:"transaction"`
	CashBox     cashBoxJSON     `json:"cash_box"`
}

func (a *testAPI) post(role enum.Role, path string, body any, want int) *ledgerJSON {
	a.t.Helper()
	rr := a.as(role, http.MethodPost, path, body)
	expectStatus(a.t, rr, want)
	if want >= 300 {
		return nil
	}
	var entry ledgerJSON
	decodeData(a.t, rr, &entry)
	return &entry
}

func TestCashBoxLedger(t *testing.T) {
	api := newTestAPI(t)
	boxPath := pathf("/api/cash-box/%d", api.mainID)

	expectStatus(t, api.as(enum.RoleBranchManager, http.MethodGet, boxPath, nil), http.StatusNotFound)
	expectStatus(t, api.as(enum.RoleSupervisor, http.MethodPost, boxPath, nil), http.StatusForbidden)
	expectStatus(t, api.as(enum.RoleBranchManager, http.MethodPost, pathf("/api/cash-box/%d", api.northID), nil), http.StatusForbidden)
	expectStatus(t, api.as(enum.RoleBranchManager, http.MethodPost, boxPath, map[string]string{"notes": "front safe"}), http.StatusCreated)
	expectStatus(t, api.as(enum.RoleBranchManager, http.MethodPost, boxPath, nil), http.StatusConflict)

	tx := func(txType, amount string) map[string]any {
		return map[string]any{"type": txType, "amount": amount, "transaction_date": "2026-10-07"}
	}

	entry := api.post(enum.RoleSupervisor, "/api/cash-box/transactions", tx("deposit", "500"), http.StatusCreated)
	expectDecimal(t, "balance after deposit", entry.CashBox.CurrentBalance, "500")
	if !strings.HasPrefix(entry.Transaction.ReferenceNumber, "TX-") || entry.Transaction.Source != "manual" {
		t.Errorf("transaction: got %+v", entry.Transaction)
	}

	api.post(enum.RoleSupervisor, "/api/cash-box/transactions", tx("withdrawal", "600"), http.StatusUnprocessableEntity)
	entry = api.post(enum.RoleSupervisor, "/api/cash-box/transactions", tx("withdrawal", "200"), http.StatusCreated)
	expectDecimal(t, "balance after withdrawal", entry.CashBox.CurrentBalance, "300")

	bad := tx("deposit", "10")
	bad["source"] = "daily_sales"
	api.post(enum.RoleSupervisor, "/api/cash-box/transactions", bad, http.StatusBadRequest)
	api.post(enum.RoleSupervisor, "/api/cash-box/transactions", tx("deposit", "0"), http.StatusBadRequest)
	api.post(enum.RoleSupervisor, "/api/cash-box/transactions", tx("refund", "10"), http.StatusBadRequest)
	api.post(enum.RoleCashier, "/api/cash-box/transactions", tx("deposit", "10"), http.StatusForbidden)

	t.Run("daily sales deposit is idempotent", func(t *testing.T) {
		sale := api.approvedShift(shift("2026-10-07", "morning", "1000", "400"))
		processPath := pathf("/api/cash-box/daily-sales/%d", sale.ID)

		first := api.post(enum.RoleSupervisor, processPath, nil, http.StatusCreated)
		if !first.Created || first.Transaction.ReferenceNumber != pathf("DS-%d", sale.ID) {
			t.Fatalf("first processing: got %+v", first)
		}
		expectDecimal(t, "deposited", first.Transaction.Amount, "1000")
		expectDecimal(t, "balance", first.CashBox.CurrentBalance, "1300")

		replay := api.post(enum.RoleSupervisor, processPath, nil, http.StatusOK)
		if replay.Created || replay.Transaction.ID != first.Transaction.ID {
			t.Fatalf("replay: got %+v", replay)
		}
		expectDecimal(t, "balance after replay", replay.CashBox.CurrentBalance, "1300")

		rr := api.as(enum.RoleCashier, http.MethodGet, pathf("/api/daily-sales/%d", sale.ID), nil)
		expectStatus(t, rr, http.StatusOK)
		decodeData(t, rr, &sale)
		if sale.Status != "transferred" {
			t.Errorf("sale status: got %s, want transferred", sale.Status)
		}
	})

	t.Run("pending sales cannot be deposited", func(t *testing.T) {
		rr := api.as(enum.RoleCashier, http.MethodPost, "/api/daily-sales", shift("2026-10-08", "morning", "50", "0"))
		expectStatus(t, rr, http.StatusCreated)
		var sale dailySalesJSON
		decodeData(t, rr, &sale)
		api.post(enum.RoleSupervisor, pathf("/api/cash-box/daily-sales/%d", sale.ID), nil, http.StatusConflict)
	})

	t.Run("transaction listing", func(t *testing.T) {
		rr := api.as(enum.RoleBranchManager, http.MethodGet, boxPath+"/transactions", nil)
		expectStatus(t, rr, http.StatusOK)
		var txs []transactionJSON
		decodeData(t, rr, &txs)
		if len(txs) != 3 {
			t.Fatalf("transactions: got %d, want 3", len(txs))
		}

		rr = api.as(enum.RoleAdmin, http.MethodGet, "/api/cash-box/transactions?type=deposit", nil)
		expectStatus(t, rr, http.StatusOK)
		decodeData(t, rr, &txs)
		if len(txs) != 2 {
			t.Errorf("deposits: got %d, want 2", len(txs))
		}

		rr = api.as(enum.RoleAdmin, http.MethodGet, "/api/cash-box/transactions?source=daily_sales", nil)
		expectStatus(t, rr, http.StatusOK)
		decodeData(t, rr, &txs)
		if len(txs) != 1 {
			t.Errorf("daily sales deposits: got %d, want 1", len(txs))
		}

		expectStatus(t, api.as(enum.RoleBranchManager, http.MethodGet, pathf("/api/cash-box/%d/transactions", api.northID), nil), http.StatusForbidden)
	})

	t.Run("box listing is scoped", func(t *testing.T) {
		var boxes []cashBoxJSON
		rr := api.as(enum.RoleAdmin, http.MethodGet, "/api/cash-box", nil)
		expectStatus(t, rr, http.StatusOK)
		decodeData(t, rr, &boxes)
		if len(boxes) != 1 || boxes[0].BranchID != api.mainID {
			t.Errorf("boxes: got %+v", boxes)
		}
		expectStatus(t, api.as(enum.RoleCashier, http.MethodGet, pathf("/api/cash-box?branch_id=%d", api.northID), nil), http.StatusForbidden)
	})
}

func TestTransfersToHQ(t *testing.T) {
	api := newTestAPI(t)
	expectStatus(t, api.as(enum.RoleBranchManager, http.MethodPost, pathf("/api/cash-box/%d", api.mainID), nil), http.StatusCreated)
	api.post(enum.RoleSupervisor, "/api/cash-box/transactions", map[string]any{"type": "deposit", "amount": "1000"}, http.StatusCreated)

	create := func(role enum.Role, amount string, want int) transferResultJSON {
		t.Helper()
		rr := api.as(role, http.MethodPost, "/api/cash-box/transfers", map[string]any{"amount": amount, "transfer_date": "2026-10-09"})
		expectStatus(t, rr, want)
		var res transferResultJSON
		if want == http.StatusCreated {
			decodeData(t, rr, &res)
		}
		return res
	}

	create(enum.RoleSupervisor, "100", http.StatusForbidden)
	create(enum.RoleBranchManager, "1000.01", http.StatusUnprocessableEntity)

	first := create(enum.RoleBranchManager, "600", http.StatusCreated)
	if first.Transfer.Status != "pending" || first.Transfer.Method != "bank_transfer" {
		t.Fatalf("transfer: got %+v", first.Transfer)
	}
	if first.Transaction.Type != "transfer_to_hq" || first.Transaction.ReferenceNumber != pathf("HQ-%d", first.Transfer.ID) {
		t.Errorf("ledger entry: got %+v", first.Transaction)
	}
	expectDecimal(t, "balance held for transfer", first.CashBox.CurrentBalance, "400")

	approve := pathf("/api/cash-box/transfers/%d/approve", first.Transfer.ID)
	expectStatus(t, api.as(enum.RoleBranchManager, http.MethodPost, approve, nil), http.StatusForbidden)
	rr := api.as(enum.RoleAdmin, http.MethodPost, approve, nil)
	expectStatus(t, rr, http.StatusOK)
	var approved transferJSON
	decodeData(t, rr, &approved)
	if approved.Status != "approved" {
		t.Fatalf("status: got %s, want approved", approved.Status)
	}
	expectStatus(t, api.as(enum.RoleAdmin, http.MethodPost, approve, nil), http.StatusConflict)

	second := create(enum.RoleBranchManager, "150", http.StatusCreated)
	expectDecimal(t, "balance", second.CashBox.CurrentBalance, "250")

	reject := pathf("/api/cash-box/transfers/%d/reject", second.Transfer.ID)
	expectStatus(t, api.as(enum.RoleAdmin, http.MethodPost, reject, map[string]string{}), http.StatusBadRequest)
	rr = api.as(enum.RoleAdmin, http.MethodPost, reject, map[string]string{"reason": "wrong amount"})
	expectStatus(t, rr, http.StatusOK)
	var rejected transferResultJSON
	decodeData(t, rr, &rejected)
	if rejected.Transfer.Status != "rejected" || rejected.Transaction.ReferenceNumber != pathf("HQR-%d", second.Transfer.ID) {
		t.Fatalf("rejection: got %+v", rejected)
	}
	expectDecimal(t, "balance restored", rejected.CashBox.CurrentBalance, "400")

	t.Run("listing and scope", func(t *testing.T) {
		var list []transferJSON
		rr := api.as(enum.RoleBranchManager, http.MethodGet, "/api/cash-box/transfers?status=pending", nil)
		expectStatus(t, rr, http.StatusOK)
		decodeData(t, rr, &list)
		if len(list) != 0 {
			t.Errorf("pending: got %d, want 0", len(list))
		}
		rr = api.as(enum.RoleAdmin, http.MethodGet, "/api/cash-box/transfers", nil)
		expectStatus(t, rr, http.StatusOK)
		decodeData(t, rr, &list)
		if len(list) != 2 {
			t.Errorf("all: got %d, want 2", len(list))
		}

		_, northToken := api.addUser(enum.RoleBranchManager, api.northID, "north.manager@bakery.local")
		expectStatus(t, api.do(http.MethodGet, pathf("/api/cash-box/transfers/%d", first.Transfer.ID), northToken, nil), http.StatusNotFound)
		expectStatus(t, api.as(enum.RoleCashier, http.MethodGet, pathf("/api/cash-box/transfers/%d", first.Transfer.ID), nil), http.StatusOK)
	})
}
