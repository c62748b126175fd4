//nolint:errcheck // testsetup
package tcpostgres

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/mpapenbr/racetracker-store/pkg/db/migrate"
	database "github.com/mpapenbr/racetracker-store/pkg/db/postgres"
)

// tables in delete order
var allTables = []string{
	"base_station_runner",
	"checkpoint_runner",
	"runner",
	"checkpoint",
	"race",
	"setting",
}

// SetupTestDB creates a pg connection pool for a migrated test database
// running in a container.
func SetupTestDB() *pgxpool.Pool {
	ctx := context.Background()
	port, err := nat.NewPort("tcp", "5432")
	if err != nil {
		log.Fatal(err)
	}
	container, err := SetupPostgres(ctx,
		WithPort(port.Port()),
		WithInitialDatabase("postgres", "password", "postgres"),
		WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second)),
		WithName("racetracker-store-test"),
	)
	if err != nil {
		log.Fatal(err)
	}
	containerPort, _ := container.MappedPort(ctx, port)
	host, _ := container.Host(ctx)
	dbURL := fmt.Sprintf("postgresql://postgres:password@%s:%s/postgres?sslmode=disable",
		host, containerPort.Port())
	return migrateAndConnect(dbURL)
}

// SetupExternalTestDB uses the database given by TESTDB_URL
func SetupExternalTestDB() *pgxpool.Pool {
	return migrateAndConnect(os.Getenv("TESTDB_URL"))
}

func migrateAndConnect(dbURL string) *pgxpool.Pool {
	if err := migrate.MigrateDB(dbURL); err != nil {
		log.Fatal(err)
	}
	pool, err := database.InitWithURL(dbURL)
	if err != nil {
		log.Fatal(err)
	}
	return pool
}

func ClearAllTables(pool *pgxpool.Pool) {
	for _, table := range allTables {
		pool.Exec(context.Background(), "delete from "+table)
	}
}
