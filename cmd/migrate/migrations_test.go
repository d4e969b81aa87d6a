package main

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/pressly/goose/v3"
)

func TestCollectMigrations_ParsesMigrationsDir(t *testing.T) {
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("runtime.Caller failed")
	}
	// this file lives in cmd/migrate/, so repo root is ../..
	repoRoot := filepath.Clean(filepath.Join(filepath.Dir(thisFile), "..", ".."))
	dir := filepath.Join(repoRoot, "db", "migrations")

	if _, err := goose.CollectMigrations(dir, 0, goose.MaxVersion); err != nil {
		t.Fatalf("expected migrations to parse, got error: %v", err)
	}
}

func TestMigrations_CreateEveryTable(t *testing.T) {
	_, thisFile, _, _ := runtime.Caller(0)
	dir := filepath.Join(filepath.Dir(thisFile), "..", "..", "db", "migrations")

	migrations, err := goose.CollectMigrations(dir, 0, goose.MaxVersion)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	var all strings.Builder
	for _, m := range migrations {
		b, err := os.ReadFile(m.Source)
		if err != nil {
			t.Fatalf("read %s: %v", m.Source, err)
		}
		all.Write(b)
	}
	for _, table := range []string{"users", "authors", "books", "libraries", "library_books", "librarians", "token_blacklist"} {
		if !strings.Contains(all.String(), "CREATE TABLE "+table+" (") {
			t.Errorf("no migration creates %s", table)
		}
	}
}
