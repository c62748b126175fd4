package migrate

import (
	"embed"
	"errors"
	"regexp"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations
var migrations embed.FS

var schemeRegex = regexp.MustCompile("^postgres(ql)?://")

// MigrateDB applies the embedded migrations to the database at dbURI.
func MigrateDB(dbURI string) error {
	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		return err
	}

	m, err := migrate.NewWithSourceInstance("iofs", source,
		schemeRegex.ReplaceAllString(dbURI, "pgx5://"))
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
