// internal/migrate/migrate.go
//
// Schema migrations, applied at boot from the embedded SQL files.
//
// Notes
// -----
// • ErrNoChange is the steady state, not a failure.
// • The unique email index created here backstops first-login user
//   provisioning; without it the insert-ignore path cannot work.

package migrate

import (
	"errors"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"

	vpapi "github.com/volunteerpeel/vp-api"
)

// Up applies every pending migration.
func Up(db *sqlx.DB) error {
	sourceDriver, err := iofs.New(vpapi.Migrations, "migrations")
	if err != nil {
		return err
	}
	databaseDriver, err := mysql.WithInstance(db.DB, &mysql.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithInstance("iofs", sourceDriver, "mysql", databaseDriver)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
