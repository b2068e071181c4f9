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
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/mpapenbr/race-strategy-sim/pkg/db/migrate"
	database "github.com/mpapenbr/race-strategy-sim/pkg/db/postgres"
)

const (
	containerName = "race-strategy-sim-test"
	dbUser        = "postgres"
	dbPassword    = "password"
	dbName        = "rss"
)

// SetupTestDB starts (or reuses) a postgres container and returns a pool on
// the migrated db.
func SetupTestDB() *pgxpool.Pool {
	ctx := context.Background()
	port, err := nat.NewPort("tcp", "5432")
	if err != nil {
		log.Fatal(err)
	}
	container, err := startContainer(ctx, port)
	if err != nil {
		log.Fatal(err)
	}
	containerPort, _ := container.MappedPort(ctx, port)
	host, _ := container.Host(ctx)
	dbURL := fmt.Sprintf("postgresql://%s:%s@%s:%s/%s",
		dbUser, dbPassword, host, containerPort.Port(), dbName)
	return migrateAndConnect(dbURL)
}

// startContainer runs postgres without fsync, the data is thrown away anyway.
//
//nolint:whitespace // editor/linter issue
func startContainer(
	ctx context.Context, port nat.Port,
) (testcontainers.Container, error) {
	req := testcontainers.ContainerRequest{
		Name:         containerName,
		Image:        "postgres:17",
		ExposedPorts: []string{port.Port()},
		Cmd:          []string{"postgres", "-c", "fsync=off"},
		Env: map[string]string{
			"POSTGRES_USER":     dbUser,
			"POSTGRES_PASSWORD": dbPassword,
			"POSTGRES_DB":       dbName,
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(30 * time.Second),
	}
	return testcontainers.GenericContainer(ctx,
		testcontainers.GenericContainerRequest{
			ContainerRequest: req,
			Started:          true,
			Reuse:            true,
		})
}

// SetupExternalTestDB uses the database referenced by TESTDB_URL.
func SetupExternalTestDB() *pgxpool.Pool {
	return migrateAndConnect(os.Getenv("TESTDB_URL"))
}

func migrateAndConnect(dbURL string) *pgxpool.Pool {
	if err := migrate.MigrateDB(dbURL); err != nil {
		log.Fatal(err)
	}
	return database.InitWithURL(dbURL)
}

func ClearResultTable(pool *pgxpool.Pool) {
	pool.Exec(context.Background(), "delete from race_result")
}

func ClearSetupTable(pool *pgxpool.Pool) {
	pool.Exec(context.Background(), "delete from car_setup")
}

func ClearAllTables(pool *pgxpool.Pool) {
	ClearResultTable(pool)
	ClearSetupTable(pool)
}
