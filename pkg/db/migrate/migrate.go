package migrate

import (
	"embed"
	"errors"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations
var migrations embed.FS

// MigrateDB applies all pending embedded migrations to the database at dbURI.
func MigrateDB(dbURI string) error {
	return MigrateDBFrom("", dbURI)
}

// MigrateDBFrom applies the migrations found at sourceURL (e.g. file:///migrations).
// An empty sourceURL uses the embedded migrations.
func MigrateDBFrom(sourceURL, dbURI string) error {
	m, err := newMigrate(sourceURL, dbURI)
	if err != nil {
		return err
	}
	defer m.Close()

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// Version returns the current schema version.
func Version(dbURI string) (version uint, dirty bool, err error) {
	m, err := newMigrate("", dbURI)
	if err != nil {
		return 0, false, err
	}
	defer m.Close()
	version, dirty, err = m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

func newMigrate(sourceURL, dbURI string) (*migrate.Migrate, error) {
	if sourceURL != "" {
		return migrate.New(sourceURL, toPgxURL(dbURI))
	}
	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		return nil, err
	}
	return migrate.NewWithSourceInstance("iofs", source, toPgxURL(dbURI))
}

func toPgxURL(dbURI string) string {
	for _, prefix := range []string{"postgresql://", "postgres://"} {
		if strings.HasPrefix(dbURI, prefix) {
			return "pgx5://" + strings.TrimPrefix(dbURI, prefix)
		}
	}
	return dbURI
}
