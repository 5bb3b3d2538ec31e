package persistence

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestMigrationsAreEmbedded(t *testing.T) {
	names, err := migrationNames()
	if err != nil {
		t.Fatalf("list migrations: %v", err)
	}
	if len(names) == 0 || names[0] != "0001_ticket_history.sql" {
		t.Fatalf("migrations = %v", names)
	}

	body, err := migrationFiles.ReadFile("migrations/" + names[0])
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(body), "CREATE TABLE IF NOT EXISTS ticket_history") {
		t.Fatal("ticket_history migration missing table definition")
	}
}

func TestRunMigrationsWithoutPool(t *testing.T) {
	if err := RunMigrations(context.Background(), nil, zap.NewNop()); err != nil {
		t.Fatalf("expected nil without pool, got %v", err)
	}
}

func TestNilHandlesAreSafe(t *testing.T) {
	var pg *Postgres
	if pg.PoolHandle() != nil {
		t.Fatal("nil postgres should expose nil pool")
	}
	pg.Close()
	if err := pg.Ping(context.Background()); err == nil {
		t.Fatal("ping on unconfigured postgres should fail")
	}

	var rdb *Redis
	rdb.Close()
	if err := rdb.Ping(context.Background()); err == nil {
		t.Fatal("ping on unconfigured redis should fail")
	}
}
