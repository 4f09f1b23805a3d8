package sql_test

import (
	dbsql "database/sql"
	"fmt"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/losbaristas/cafeteria-catalog/internal/repository/sql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
)

// testDB holds a PostgreSQL container with the schema applied.
type testDB struct {
	DB       *dbsql.DB
	Pool     *dockertest.Pool
	Resource *dockertest.Resource
}

// setupTestDB starts PostgreSQL with dockertest and runs the embedded migrations.
// The test is skipped in -short mode or when docker is unavailable.
func setupTestDB(t *testing.T) *testDB {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("Could not connect to docker: %s", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("Docker not available: %s", err)
	}
	pool.MaxWait = 120 * time.Second

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16",
		Env: []string{
			"POSTGRES_PASSWORD=secret",
			"POSTGRES_USER=testuser",
			"POSTGRES_DB=cafeteria",
			"listen_addresses='*'",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("Could not start resource: %s", err)
	}

	// Set container to expire after 2 minutes to avoid orphaned containers
	if err := resource.Expire(120); err != nil {
		t.Fatalf("Could not set expiration: %s", err)
	}

	databaseURL := fmt.Sprintf("postgres://testuser:secret@%s/cafeteria?sslmode=disable", resource.GetHostPort("5432/tcp"))

	var db *dbsql.DB
	if err = pool.Retry(func() error {
		var err error
		db, err = dbsql.Open("postgres", databaseURL)
		if err != nil {
			return err
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("Could not connect to database: %s", err)
	}

	if err := sql.RunMigrations(db); err != nil {
		t.Fatalf("Could not run migrations: %s", err)
	}

	tdb := &testDB{DB: db, Pool: pool, Resource: resource}
	t.Cleanup(func() { tdb.cleanup(t) })
	return tdb
}

func (tdb *testDB) cleanup(t *testing.T) {
	t.Helper()

	if err := tdb.DB.Close(); err != nil {
		t.Errorf("Could not close database: %s", err)
	}
	if err := tdb.Pool.Purge(tdb.Resource); err != nil {
		t.Errorf("Could not purge resource: %s", err)
	}
}

func (tdb *testDB) truncate(t *testing.T) {
	t.Helper()

	if _, err := tdb.DB.Exec("TRUNCATE TABLE productos, events RESTART IDENTITY"); err != nil {
		t.Fatalf("Could not truncate tables: %s", err)
	}
}
