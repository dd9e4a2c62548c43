package enum

import "fmt"

// ── Group A: State machines (CHECK constrained in DB) ──

const (
	DailySalesStatusPending     = "pending"
	DailySalesStatusApproved    = "approved"
	DailySalesStatusRejected    = "rejected"
	DailySalesStatusTransferred = "transferred" // rolled into a consolidated record or deposited to the cash box
	DailySalesStatusClosed      = "closed"
)

const (
	ConsolidatedStatusOpen        = "open"
	ConsolidatedStatusClosed      = "closed"
	ConsolidatedStatusTransferred = "transferred"
)

const (
	TransferStatusPending  = "pending"
	TransferStatusApproved = "approved"
	TransferStatusRejected = "rejected"
)

const (
	CashTxStatusCompleted = "completed"
)

// ── Group B: Ledger vocabularies (CHECK constrained in DB) ──

const (
	CashTxTypeDeposit      = "deposit"
	CashTxTypeWithdrawal   = "withdrawal"
	CashTxTypeTransferToHQ = "transfer_to_hq"
)

const (
	CashTxSourceDailySales = "daily_sales"
	CashTxSourceManual     = "manual"
	CashTxSourceTransfer   = "transfer"
)

const (
	TransferMethodBank         = "bank_transfer"
	TransferMethodCashDelivery = "cash_delivery"
	TransferMethodOther        = "other"
)

const (
	ShiftMorning = "morning"
	ShiftEvening = "evening"
	ShiftNight   = "night"
	ShiftFullDay = "full_day"
)

// ── Group C: Roles ──

// Role is a user's permission tier.
type Role string

const (
	RoleAdmin         Role = "admin"
	RoleBranchManager Role = "branch_manager"
	RoleSupervisor    Role = "supervisor"
	RoleCashier       Role = "cashier"
)

// ParseRole validates a role string.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleBranchManager, RoleSupervisor, RoleCashier:
		return Role(s), nil
	}
	return "", fmt.Errorf("invalid role %q", s)
}

// AtLeast reports whether r ranks at or above min in the hierarchy
// admin > branch_manager > supervisor > cashier.
func (r Role) AtLeast(min Role) bool {
	return roleRank[r] >= roleRank[min] && roleRank[r] > 0
}

var roleRank = map[Role]int{
	RoleCashier:       1,
	RoleSupervisor:    2,
	RoleBranchManager: 3,
	RoleAdmin:         4,
}

// ── Validators ──

func IsValidShift(s string) bool {
	switch s {
	case ShiftMorning, ShiftEvening, ShiftNight, ShiftFullDay:
		return true
	}
	return false
}

func IsValidCashTxType(s string) bool {
	switch s {
	case CashTxTypeDeposit, CashTxTypeWithdrawal, CashTxTypeTransferToHQ:
		return true
	}
	return false
}

func IsValidCashTxSource(s string) bool {
	switch s {
	case CashTxSourceDailySales, CashTxSourceManual, CashTxSourceTransfer:
		return true
	}
	return false
}

func IsValidTransferMethod(s string) bool {
	switch s {
	case TransferMethodBank, TransferMethodCashDelivery, TransferMethodOther:
		return true
	}
	return false
}

func IsValidDailySalesStatus(s string) bool {
	switch s {
	case DailySalesStatusPending, DailySalesStatusApproved, DailySalesStatusRejected,
		DailySalesStatusTransferred, DailySalesStatusClosed:
		return true
	}
	return false
}

func IsValidConsolidatedStatus(s string) bool {
	switch s {
	case ConsolidatedStatusOpen, ConsolidatedStatusClosed, ConsolidatedStatusTransferred:
		return true
	}
	return false
}

func IsValidTransferStatus(s string) bool {
	switch s {
	case TransferStatusPending, TransferStatusApproved, TransferStatusRejected:
		return true
	}
	return false
}
