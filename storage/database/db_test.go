package database

import (
	"database/sql"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
)

func TestMigrate(t *testing.T) {
	origUp := gooseUpFunc
	defer func() { gooseUpFunc = origUp }()

	var gotDir string
	gooseUpFunc = func(db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		gotDir = dir
		return nil
	}

	if err := Migrate(&sqlx.DB{}); err != nil {
		t.Fatalf("Migrate() failed: %v", err)
	}
	if gotDir != "migrations" {
		t.Errorf("goose dir = %s, want migrations", gotDir)
	}
}
