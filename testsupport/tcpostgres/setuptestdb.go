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

	"github.com/mpapenbr/ustsa-points/pkg/db/migrate"
	database "github.com/mpapenbr/ustsa-points/pkg/db/postgres"
)

// SetupTestDB starts a postgres container, applies the migrations and
// returns a pool connected to it.
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
		WithName("ustsa-points-test"),
	)
	if err != nil {
		log.Fatal(err)
	}
	containerPort, _ := container.MappedPort(ctx, port)
	host, _ := container.Host(ctx)
	dbURL := fmt.Sprintf("postgresql://postgres:password@%s:%s/postgres?sslmode=disable",
		host, containerPort.Port())
	return setupWithURL(ctx, dbURL)
}

// SetupExternalTestDB uses the database referenced by TESTDB_URL.
func SetupExternalTestDB() *pgxpool.Pool {
	return setupWithURL(context.Background(), os.Getenv("TESTDB_URL"))
}

func setupWithURL(ctx context.Context, dbURL string) *pgxpool.Pool {
	if err := migrate.MigrateDB(dbURL); err != nil {
		log.Fatal(err)
	}
	pool, err := database.InitWithURL(ctx, dbURL)
	if err != nil {
		log.Fatal(err)
	}
	return pool
}

func ClearSeasonPointsTable(pool *pgxpool.Pool) {
	pool.Exec(context.Background(), "delete from season_points")
}

func ClearSeasonZeroTable(pool *pgxpool.Pool) {
	pool.Exec(context.Background(), "delete from season_zero")
}

func ClearSeasonRunTable(pool *pgxpool.Pool) {
	pool.Exec(context.Background(), "delete from season_run")
}

func ClearAllTables(pool *pgxpool.Pool) {
	ClearSeasonPointsTable(pool)
	ClearSeasonZeroTable(pool)
	ClearSeasonRunTable(pool)
}
