// Package storage persists expense records in SQLite.
//
// The repository is the system's persistence collaborator: it stores the
// exchange shape (id, date, amount, vendor, description, category) and
// nothing derived. Anomaly flags are never written; they are recomputed
// from the working set on every read path.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"expenseiq/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateExpense inserts a record and returns its storage-assigned ID.
// Any caller-supplied ID is ignored; storage owns identity.
func (r *SQLiteRepository) CreateExpense(ctx context.Context, e core.Expense) (string, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (expense_date, amount_cents, vendor, description, category)
		 VALUES (?, ?, ?, ?, ?)`,
		e.Date.String(), e.Amount.Cents, e.Vendor, e.Description, string(e.Category))
	if err != nil {
		return "", fmt.Errorf("create expense: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("expense insert id: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved",
		"id", id,
		"date", e.Date.String(),
		"amount_cents", e.Amount.Cents,
		"vendor", e.Vendor,
		"category", e.Category)

	return strconv.FormatInt(id, 10), nil
}

// CreateExpenses bulk-inserts records in a single transaction, for CSV
// import. Returns the storage-assigned IDs in input order.
func (r *SQLiteRepository) CreateExpenses(ctx context.Context, records []core.Expense) ([]string, error) {
	if len(records) == 0 {
		return nil, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin import tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO expenses (expense_date, amount_cents, vendor, description, category)
		 VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("prepare import insert: %w", err)
	}
	defer stmt.Close()

	ids := make([]string, 0, len(records))
	for _, e := range records {
		res, err := stmt.ExecContext(ctx,
			e.Date.String(), e.Amount.Cents, e.Vendor, e.Description, string(e.Category))
		if err != nil {
			return nil, fmt.Errorf("insert imported expense: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("imported expense id: %w", err)
		}
		ids = append(ids, strconv.FormatInt(id, 10))
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import tx: %w", err)
	}

	slog.InfoContext(ctx, "Expenses imported", "count", len(ids))
	return ids, nil
}

// ListExpenses returns the active working set, newest first. Anomaly is
// intentionally absent from the schema; records come back unflagged.
func (r *SQLiteRepository) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, expense_date, amount_cents, vendor, description, category
		 FROM expenses
		 WHERE deleted_at IS NULL
		 ORDER BY expense_date DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		var (
			id       int64
			dateStr  string
			cents    int64
			vendor   string
			desc     string
			category string
		)
		if err := rows.Scan(&id, &dateStr, &cents, &vendor, &desc, &category); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}

		date, err := core.ParseDate(dateStr)
		if err != nil {
			return nil, fmt.Errorf("expense %d: stored date %q: %w", id, dateStr, err)
		}

		out = append(out, core.Expense{
			ID:          strconv.FormatInt(id, 10),
			Date:        date,
			Amount:      core.Money{Cents: cents},
			Vendor:      vendor,
			Description: desc,
			Category:    core.Category(category),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}

	return out, nil
}

// SoftDeleteExpense removes a record from the working set without losing
// the row. Returns sql.ErrNoRows when the record does not exist or is
// already deleted.
func (r *SQLiteRepository) SoftDeleteExpense(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET deleted_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("soft delete expense: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("soft delete rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	slog.InfoContext(ctx, "Expense soft deleted", "id", id)
	return nil
}
