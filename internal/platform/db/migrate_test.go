package db

import (
	"os"
	"path/filepath"
	"testing"
)

func writeMigration(t *testing.T, dir, name, sql string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(sql), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestMigratorLoad_OrdersByVersion(t *testing.T) {
	dir := t.TempDir()
	writeMigration(t, dir, "002_indexes.sql", "CREATE INDEX x ON t(a);")
	writeMigration(t, dir, "001_core.sql", "CREATE TABLE t (a INT);")
	writeMigration(t, dir, "010_later.sql", "ALTER TABLE t ADD b INT;")

	migrations, err := NewMigrator(nil, dir).load()
	if err != nil {
		t.Fatal(err)
	}
	if len(migrations) != 3 {
		t.Fatalf("loaded %d migrations, want 3", len(migrations))
	}
	wantVersions := []int{1, 2, 10}
	wantNames := []string{"001_core.sql", "002_indexes.sql", "010_later.sql"}
	for i, m := range migrations {
		if m.Version != wantVersions[i] || m.Name != wantNames[i] {
			t.Errorf("migration %d = (%d, %s), want (%d, %s)",
				i, m.Version, m.Name, wantVersions[i], wantNames[i])
		}
		if m.SQL == "" {
			t.Errorf("migration %s has empty SQL", m.Name)
		}
	}
}

func TestMigratorLoad_SkipsNonMigrationFiles(t *testing.T) {
	dir := t.TempDir()
	writeMigration(t, dir, "001_core.sql", "CREATE TABLE t (a INT);")
	writeMigration(t, dir, "README.md", "notes")
	writeMigration(t, dir, "notes_draft.sql", "-- not versioned")
	writeMigration(t, dir, "plain.sql", "-- no prefix")
	if err := os.Mkdir(filepath.Join(dir, "archive"), 0o755); err != nil {
		t.Fatal(err)
	}

	migrations, err := NewMigrator(nil, dir).load()
	if err != nil {
		t.Fatal(err)
	}
	if len(migrations) != 1 || migrations[0].Name != "001_core.sql" {
		t.Fatalf("loaded %v, want only 001_core.sql", migrations)
	}
}

func TestMigratorLoad_MissingDir(t *testing.T) {
	if _, err := NewMigrator(nil, filepath.Join(t.TempDir(), "absent")).load(); err == nil {
		t.Fatal("expected error for missing migrations directory")
	}
}
