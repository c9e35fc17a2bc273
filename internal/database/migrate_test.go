package database

import (
	"errors"
	"io/fs"
	"strings"
	"testing"
)

func TestMigrate_EmptyDSN(t *testing.T) {
	if err := Migrate("", "up"); !errors.Is(err, ErrNoPrimaryDSN) {
		t.Fatalf("expected ErrNoPrimaryDSN, got %v", err)
	}
}

func TestMigrate_InvalidDirection(t *testing.T) {
	for _, direction := range []string{"", "sideways", "UP", "Down"} {
		t.Run(direction, func(t *testing.T) {
			err := Migrate("postgres://localhost/modesta", direction)
			if err == nil || !strings.Contains(err.Error(), "direction") {
				t.Errorf("expected direction error for %q, got %v", direction, err)
			}
		})
	}
}

func TestMigrationFS_Paired(t *testing.T) {
	entries, err := fs.ReadDir(MigrationFS, "migrations")
	if err != nil {
		t.Fatalf("read migrations: %v", err)
	}

	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		default:
			t.Errorf("unexpected file %s", name)
		}
	}

	if len(ups) == 0 {
		t.Fatal("no migrations embedded")
	}
	for version := range ups {
		if !downs[version] {
			t.Errorf("migration %s has no down step", version)
		}
	}
}

func TestUsersMigration_UniqueEmail(t *testing.T) {
	b, err := fs.ReadFile(MigrationFS, "migrations/000001_create_users.up.sql")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(b), "UNIQUE INDEX IF NOT EXISTS users_email_key ON users (email)") {
		t.Error("users.email must carry a unique index")
	}
}

func TestNewDBManager_EmptyDSN(t *testing.T) {
	if _, err := NewDBManager(t.Context(), Config{}); !errors.Is(err, ErrNoPrimaryDSN) {
		t.Fatalf("expected ErrNoPrimaryDSN, got %v", err)
	}
}
