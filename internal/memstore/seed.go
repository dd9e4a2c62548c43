package memstore

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/rotiroti/backoffice/internal/database"
	"github.com/rotiroti/backoffice/internal/enum"
)

// Demo lists what SeedDemo created.
type Demo struct {
	Branches []database.Branch
	Users    []database.User
}

// SeedDemo creates two branches and one user per role, all sharing password.
func (s *Store) SeedDemo(ctx context.Context, password string) (Demo, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Demo{}, fmt.Errorf("hash demo password: %w", err)
	}

	var demo Demo
	err = s.ExecTx(ctx, func(q database.Querier) error {
		for _, b := range []database.CreateBranchParams{
			{Name: "Main Branch", Address: "King Fahd Road", Phone: "0110000001"},
			{Name: "North Branch", Address: "Olaya Street", Phone: "0110000002"},
		} {
			branch, err := q.CreateBranch(ctx, b)
			if err != nil {
				return fmt.Errorf("create branch %s: %w", b.Name, err)
			}
			demo.Branches = append(demo.Branches, branch)
		}

		main := database.Int8(demo.Branches[0].ID)
		for _, u := range []database.CreateUserParams{
			{Email: "admin@bakery.local", FullName: "HQ Admin", Role: string(enum.RoleAdmin)},
			{BranchID: main, Email: "manager@bakery.local", FullName: "Branch Manager", Role: string(enum.RoleBranchManager)},
			{BranchID: main, Email: "supervisor@bakery.local", FullName: "Shift Supervisor", Role: string(enum.RoleSupervisor)},
			{BranchID: main, Email: "cashier@bakery.local", FullName: "Front Cashier", Role: string(enum.RoleCashier)},
		} {
			u.HashedPassword = string(hash)
			user, err := q.CreateUser(ctx, u)
			if err != nil {
				return fmt.Errorf("create user %s: %w", u.Email, err)
			}
			demo.Users = append(demo.Users, user)
		}
		return nil
	})
	return demo, err
}
