package migration

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type fakeRow struct {
	n   int64
	err error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*dest[0].(*int64) = r.n
	return nil
}

// fakeTx answers count queries from counts, which Exec rewrites with
// afterExec.
type fakeTx struct {
	counts    map[string]int64
	afterExec map[string]int64
	queryErr  error
	execErr   error
	commitErr error

	executed   []string
	committed  bool
	rolledBack bool
}

func (tx *fakeTx) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	if tx.execErr != nil {
		return pgconn.CommandTag{}, tx.execErr
	}
	tx.executed = append(tx.executed, sql)
	for k, v := range tx.afterExec {
		tx.counts[k] = v
	}
	return pgconn.NewCommandTag("ALTER TABLE"), nil
}

func (tx *fakeTx) QueryRow(_ context.Context, sql string, _ ...any) pgx.Row {
	if tx.queryErr != nil {
		return fakeRow{err: tx.queryErr}
	}
	return fakeRow{n: tx.counts[sql]}
}

func (tx *fakeTx) Commit(context.Context) error {
	if tx.commitErr != nil {
		return tx.commitErr
	}
	tx.committed = true
	return nil
}

func (tx *fakeTx) Rollback(context.Context) error {
	if tx.committed {
		return pgx.ErrTxClosed
	}
	tx.rolledBack = true
	return nil
}

type fakeDB struct {
	tx       *fakeTx
	beginErr error
}

func (db *fakeDB) Begin(context.Context) (Tx, error) {
	if db.beginErr != nil {
		return nil, db.beginErr
	}
	return db.tx, nil
}

func newFakeTx() *fakeTx {
	total, orphans := DefaultCounts[0].SQL, DefaultCounts[1].SQL
	return &fakeTx{
		counts:    map[string]int64{total: 10, orphans: 2},
		afterExec: map[string]int64{total: 8, orphans: 0},
	}
}

func TestRunCommitsAndReportsCounts(t *testing.T) {
	tx := newFakeTx()
	var out bytes.Buffer
	r := Runner{DB: &fakeDB{tx: tx}, Counts: DefaultCounts, Out: &out}

	res, err := r.Run(context.Background(), "DELETE FROM student_exams WHERE false")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := Result{Before: []int64{10, 2}, After: []int64{8, 0}, LastTag: "ALTER TABLE"}
	if diff := cmp.Diff(want, res); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}
	if !tx.committed || tx.rolledBack {
		t.Errorf("expected commit without rollback")
	}
	if len(tx.executed) != 1 {
		t.Errorf("expected sql executed once, got %d", len(tx.executed))
	}

	printed := out.String()
	for _, s := range []string{"before:", "  student_exams rows: 10", "after:", "  student_exams without exam: 0", "executed (last statement: ALTER TABLE)", "committed"} {
		if !strings.Contains(printed, s) {
			t.Errorf("output missing %q:\n%s", s, printed)
		}
	}
	if strings.Index(printed, "before:") > strings.Index(printed, "after:") {
		t.Errorf("before counts must be printed first")
	}
}

func TestRunRollsBack(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name  string
		setup func(tx *fakeTx)
	}{
		{name: "exec fails", setup: func(tx *fakeTx) { tx.execErr = boom }},
		{name: "count fails", setup: func(tx *fakeTx) { tx.queryErr = boom }},
		{name: "commit fails", setup: func(tx *fakeTx) { tx.commitErr = boom }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := newFakeTx()
			tt.setup(tx)
			var out bytes.Buffer
			r := Runner{DB: &fakeDB{tx: tx}, Counts: DefaultCounts, Out: &out}

			_, err := r.Run(context.Background(), "SELECT 1")
			if !errors.Is(err, boom) {
				t.Fatalf("expected wrapped boom, got %v", err)
			}
			if !tx.rolledBack || tx.committed {
				t.Errorf("expected rollback")
			}
			if !strings.Contains(out.String(), "rolled back") {
				t.Errorf("expected rollback notice")
			}
		})
	}
}

func TestRunBeginFails(t *testing.T) {
	boom := errors.New("no connection")
	r := Runner{DB: &fakeDB{beginErr: boom}, Counts: DefaultCounts}
	if _, err := r.Run(context.Background(), "SELECT 1"); !errors.Is(err, boom) {
		t.Fatalf("expected begin error, got %v", err)
	}
}

func TestRunEmptySQL(t *testing.T) {
	tx := newFakeTx()
	r := Runner{DB: &fakeDB{tx: tx}}
	if _, err := r.Run(context.Background(), ""); !errors.Is(err, ErrEmptySQL) {
		t.Fatalf("expected ErrEmptySQL, got %v", err)
	}
	if tx.committed || tx.rolledBack {
		t.Errorf("no transaction expected")
	}
}
