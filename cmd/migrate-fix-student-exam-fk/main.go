// Command migrate-fix-student-exam-fk applies migrations/fix_student_exam_fk.sql
// (or the file given with -file) to Postgres in one transaction, printing
// student_exams counts before and after.
//
// The connection comes from DATABASE_URL or, when it is unset, from the
// standard PGHOST / PGPORT / PGUSER / PGPASSWORD / PGDATABASE variables.
// A .env file in the working directory is loaded first if it exists.
//
//	go run ./cmd/migrate-fix-student-exam-fk -file migrations/fix_student_exam_fk.sql
package main

import (
	"errors"
	"log/slog"
	"os"
)

func main() {
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(log)

	cli := commandLine{out: os.Stdout}
	if err := cli.run(os.Args); err != nil {
		if !errors.Is(err, errHelp) {
			log.Error("migration failed", slog.String("error", err.Error()))
		}
		os.Exit(1)
	}
}
