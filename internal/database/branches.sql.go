package database

import (
	"context"
)

const branchColumns = `id, name, address, phone, is_active, created_at`

func scanBranch(row rowScanner) (Branch, error) {
	var i Branch
	err := row.Scan(&i.ID, &i.Name, &i.Address, &i.Phone, &i.IsActive, &i.CreatedAt)
	return i, err
}

const createBranch = `
INSERT INTO branches (name, address, phone)
VALUES ($1, $2, $3)
RETURNING ` + branchColumns

type CreateBranchParams struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

func (q *Queries) CreateBranch(ctx context.Context, arg CreateBranchParams) (Branch, error) {
	return scanBranch(q.db.QueryRow(ctx, createBranch, arg.Name, arg.Address, arg.Phone))
}

const getBranch = `SELECT ` + branchColumns + ` FROM branches WHERE id = $1`

func (q *Queries) GetBranch(ctx context.Context, id int64) (Branch, error) {
	return scanBranch(q.db.QueryRow(ctx, getBranch, id))
}

const listBranches = `SELECT ` + branchColumns + ` FROM branches WHERE is_active = true ORDER BY id`

func (q *Queries) ListBranches(ctx context.Context) ([]Branch, error) {
	rows, err := q.db.Query(ctx, listBranches)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Branch{}
	for rows.Next() {
		i, err := scanBranch(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
