package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/aanand-mishra/ugs-portal/internal/migration"
)

type row struct{}

func (row) Scan(dest ...any) error {
	*dest[0].(*int64) = 3
	return nil
}

type tx struct{ sql []string }

func (t *tx) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	t.sql = append(t.sql, sql)
	return pgconn.NewCommandTag("ALTER TABLE"), nil
}
func (t *tx) QueryRow(context.Context, string, ...any) pgx.Row { return row{} }
func (t *tx) Commit(context.Context) error                     { return nil }
func (t *tx) Rollback(context.Context) error                   { return pgx.ErrTxClosed }

type db struct{ tx *tx }

func (d db) Begin(context.Context) (migration.Tx, error) { return d.tx, nil }

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
}

func Test_commandLine_run(t *testing.T) {
	dir := t.TempDir()
	sqlPath := filepath.Join(dir, "fix.sql")
	if err := os.WriteFile(sqlPath, []byte("ALTER TABLE x ADD y int;"), 0o600); err != nil {
		t.Fatal(err)
	}
	blank := filepath.Join(dir, "blank.sql")
	if err := os.WriteFile(blank, []byte("  \n"), 0o600); err != nil {
		t.Fatal(err)
	}
	envPath := filepath.Join(dir, ".env")
	if err := os.WriteFile(envPath, []byte("DATABASE_URL=postgres://u:p@db/ugs\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	missingEnv := filepath.Join(dir, "missing.env")
	t.Setenv("DATABASE_URL", "")

	fake := &tx{}
	var gotURL string
	connectFunc = func(_ context.Context, url string) (migration.DB, func(), error) {
		gotURL = url
		if url == "refuse" {
			return nil, nil, errors.New("connect: refused")
		}
		return db{tx: fake}, func() {}, nil
	}
	t.Cleanup(func() { connectFunc = connect })

	tests := []cliTest{
		{name: "help", args: []string{"-h"}, wantErr: errHelp},
		{name: "stray argument", args: []string{"-file", sqlPath, "extra"}, wantErr: errHelp},
		{name: "empty file flag", args: []string{"-file", ""}, wantErr: errHelp},
		{name: "missing file", args: []string{"-env", missingEnv, "-file", filepath.Join(dir, "nope.sql")}, wantErrStr: "read "},
		{name: "blank file", args: []string{"-env", missingEnv, "-file", blank}, wantErr: migration.ErrEmptySQL},
		{name: "runs", args: []string{"-env", missingEnv, "-file", sqlPath}},
	}
	for _, tt := range tests {
		args := append([]string{"migrate-fix-student-exam-fk"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			cli := commandLine{out: &out}
			err := cli.run(args)
			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
				}
			case tt.wantErrStr != "":
				if err == nil || !strings.Contains(err.Error(), tt.wantErrStr) {
					t.Errorf("cli.run() error = %v, want containing %q", err, tt.wantErrStr)
				}
			case err != nil:
				t.Errorf("cli.run() unexpected error = %v", err)
			default:
				if !strings.Contains(out.String(), "committed") {
					t.Errorf("expected commit in output, got:\n%s", out.String())
				}
			}
		})
	}

	if len(fake.sql) != 1 || fake.sql[0] != "ALTER TABLE x ADD y int;" {
		t.Fatalf("expected the file to run once, got %q", fake.sql)
	}

	t.Run("dotenv supplies DATABASE_URL", func(t *testing.T) {
		os.Unsetenv("DATABASE_URL")
		cli := commandLine{out: &bytes.Buffer{}}
		if err := cli.run([]string{"m", "-env", envPath, "-file", sqlPath}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if gotURL != "postgres://u:p@db/ugs" {
			t.Fatalf("expected url from .env, got %q", gotURL)
		}
	})

	t.Run("connect failure", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "refuse")
		cli := commandLine{out: &bytes.Buffer{}}
		if err := cli.run([]string{"m", "-env", missingEnv, "-file", sqlPath}); err == nil {
			t.Fatal("expected connect error")
		}
	})
}
