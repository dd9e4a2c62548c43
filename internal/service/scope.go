package service

import (
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/rotiroti/backoffice/internal/database"
)

// Scope selects the branches an aggregate or listing covers: one branch,
// or every branch. The zero value is invalid; use Branch or AllBranches.
type Scope struct {
	branchID int64
	all      bool
}

func AllBranches() Scope { return Scope{all: true} }

func Branch(id int64) Scope { return Scope{branchID: id} }

func (s Scope) IsAll() bool { return s.all }

// BranchID returns the branch and true for a single-branch scope.
func (s Scope) BranchID() (int64, bool) {
	return s.branchID, !s.all
}

// Includes reports whether branchID falls inside the scope.
func (s Scope) Includes(branchID int64) bool {
	return s.all || s.branchID == branchID
}

func (s Scope) valid() bool {
	return s.all || s.branchID > 0
}

// filter is the nullable branch predicate used by list queries.
func (s Scope) filter() pgtype.Int8 {
	if s.all {
		return pgtype.Int8{}
	}
	return database.Int8(s.branchID)
}
