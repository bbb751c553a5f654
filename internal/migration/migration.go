// Package migration runs one SQL file against Postgres inside a single
// transaction and reports row counts taken before and after it, in the
// same transaction.
package migration

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Tx is the part of pgx.Tx the runner uses.
type Tx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type DB interface {
	Begin(ctx context.Context) (Tx, error)
}

// Postgres adapts a pgx connection (or pool) to DB.
func Postgres(conn interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}) DB {
	return pgxDB{conn: conn}
}

type pgxDB struct {
	conn interface {
		Begin(ctx context.Context) (pgx.Tx, error)
	}
}

func (d pgxDB) Begin(ctx context.Context) (Tx, error) {
	tx, err := d.conn.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return tx, nil
}

// CountQuery is a labelled SELECT returning a single integer.
type CountQuery struct {
	Label string
	SQL   string
}

// DefaultCounts watch the student_exams -> exams foreign key.
var DefaultCounts = []CountQuery{
	{Label: "student_exams rows", SQL: `SELECT count(*) FROM student_exams`},
	{
		Label: "student_exams without exam",
		SQL: `SELECT count(*) FROM student_exams se
LEFT JOIN exams e ON e.id = se.exam_id
WHERE se.exam_id IS NOT NULL AND e.id IS NULL`,
	},
}

var ErrEmptySQL = errors.New("migration: sql is empty")

type Runner struct {
	DB     DB
	Counts []CountQuery
	Out    io.Writer
}

// Result holds the counts in the order of Runner.Counts. The SQL may hold
// several statements; LastTag is the command tag of the last one only, so
// the counts are what tell how many rows changed.
type Result struct {
	Before  []int64
	After   []int64
	LastTag string
}

// ─────────────────────────────────────────────────────────────────────────────
// Run executes sql between two rounds of counts and commits.
//
// Any failure (counting, executing or committing) rolls the transaction
// back, so the database is left exactly as it was.
// ─────────────────────────────────────────────────────────────────────────────
func (r *Runner) Run(ctx context.Context, sql string) (res Result, err error) {
	if sql == "" {
		return Result{}, ErrEmptySQL
	}
	out := r.Out
	if out == nil {
		out = io.Discard
	}

	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("migration.Run: begin: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				err = errors.Join(err, fmt.Errorf("migration.Run: rollback: %w", rbErr))
			}
			fmt.Fprintln(out, "rolled back")
		}
	}()

	if res.Before, err = r.count(ctx, tx, out, "before"); err != nil {
		return res, err
	}

	tag, err := tx.Exec(ctx, sql)
	if err != nil {
		return res, fmt.Errorf("migration.Run: exec: %w", err)
	}
	res.LastTag = tag.String()
	fmt.Fprintf(out, "executed (last statement: %s)\n", res.LastTag)

	if res.After, err = r.count(ctx, tx, out, "after"); err != nil {
		return res, err
	}

	if err := tx.Commit(ctx); err != nil {
		return res, fmt.Errorf("migration.Run: commit: %w", err)
	}
	committed = true
	fmt.Fprintln(out, "committed")
	return res, nil
}

func (r *Runner) count(ctx context.Context, tx Tx, out io.Writer, phase string) ([]int64, error) {
	counts := make([]int64, 0, len(r.Counts))
	fmt.Fprintf(out, "%s:\n", phase)
	for _, q := range r.Counts {
		var n int64
		if err := tx.QueryRow(ctx, q.SQL).Scan(&n); err != nil {
			return counts, fmt.Errorf("migration.Run: %s count %q: %w", phase, q.Label, err)
		}
		fmt.Fprintf(out, "  %s: %d\n", q.Label, n)
		counts = append(counts, n)
	}
	return counts, nil
}
