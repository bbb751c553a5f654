package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"

	"github.com/aanand-mishra/ugs-portal/internal/migration"
)

const defaultFile = "migrations/fix_student_exam_fk.sql"

var (
	readFileFunc = os.ReadFile // mockable
	connectFunc  = connect     // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	out io.Writer
}

// connect opens a Postgres connection. An empty url makes pgx read the PG*
// environment variables.
func connect(ctx context.Context, url string) (migration.DB, func(), error) {
	conn, err := pgx.Connect(ctx, url)
	if err != nil {
		return nil, nil, fmt.Errorf("connect: %w", err)
	}
	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close(ctx)
		return nil, nil, fmt.Errorf("ping: %w", err)
	}
	return migration.Postgres(conn), func() { _ = conn.Close(context.Background()) }, nil
}

// loadDotEnv loads path into the environment if it exists.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err == nil {
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("godotenv(%s): %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat(%s): %w", path, err)
	}
	return nil
}

func (cli *commandLine) run(args []string) error {
	fs := flag.NewFlagSet("migrate-fix-student-exam-fk", flag.ContinueOnError)
	fs.SetOutput(cli.out)
	file := fs.String("file", defaultFile, "SQL file to run")
	envFile := fs.String("env", ".env", "dotenv file loaded before connecting, if present")
	timeout := fs.Duration("timeout", 5*time.Minute, "overall deadline")

	var rest []string
	if len(args) > 1 {
		rest = args[1:]
	}
	if err := fs.Parse(rest); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return errHelp
		}
		return err
	}
	if fs.NArg() > 0 || *file == "" {
		fs.Usage()
		return errHelp
	}

	if err := loadDotEnv(*envFile); err != nil {
		return err
	}

	sql, err := readFileFunc(*file)
	if err != nil {
		return fmt.Errorf("read %s: %w", *file, err)
	}
	if strings.TrimSpace(string(sql)) == "" {
		return fmt.Errorf("%s: %w", *file, migration.ErrEmptySQL)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	db, closeDB, err := connectFunc(ctx, os.Getenv("DATABASE_URL"))
	if err != nil {
		return err
	}
	defer closeDB()

	slog.Info("running migration", slog.String("file", *file))
	runner := migration.Runner{DB: db, Counts: migration.DefaultCounts, Out: cli.out}
	res, err := runner.Run(ctx, string(sql))
	if err != nil {
		return err
	}
	attrs := []any{slog.String("file", *file)}
	for i, q := range runner.Counts {
		attrs = append(attrs, slog.Group(q.Label,
			slog.Int64("before", res.Before[i]),
			slog.Int64("after", res.After[i])))
	}
	slog.Info("migration committed", attrs...)
	return nil
}
