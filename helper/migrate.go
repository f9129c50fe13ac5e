package helper

//nolint:revive
import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"spacebook/config"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog/log"
)

const migrationsSource = "file://migrations/postgres"

// Direction names a migration run accepted by cmd/migrate.
type Direction string

const (
	DirectionUp     Direction = "up"
	DirectionDown   Direction = "down"
	DirectionStepUp Direction = "step-up"
	DirectionDrop   Direction = "drop"
)

var ErrUnknownDirection = errors.New("unknown migration direction")

func ParseDirection(raw string) (Direction, error) {
	switch direction := Direction(raw); direction {
	case DirectionUp, DirectionDown, DirectionStepUp, DirectionDrop:
		return direction, nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownDirection, raw)
}

// DatabaseURL builds the write-side connection URL, with the migrations table as a query option.
func DatabaseURL(cfg *config.Config) string {
	write := cfg.DB.Postgres.Write

	query := url.Values{}

	if write.SSLMode != "" {
		query.Set("sslmode", write.SSLMode)
	}

	if cfg.DB.Postgres.MigrationTable != "" {
		query.Set("x-migrations-table", cfg.DB.Postgres.MigrationTable)
	}

	dsn := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(write.Username, write.Password),
		Host:     net.JoinHostPort(write.Host, write.Port),
		Path:     "/" + cfg.DB.Postgres.Prefix + write.Name,
		RawQuery: query.Encode(),
	}

	return dsn.String()
}

func apply(mig *migrate.Migrate, direction Direction) error {
	switch direction {
	case DirectionUp:
		return mig.Up() // nolint:wrapcheck
	case DirectionDown:
		return mig.Steps(-1) // nolint:wrapcheck
	case DirectionStepUp:
		return mig.Steps(1) // nolint:wrapcheck
	case DirectionDrop:
		return mig.Down() // nolint:wrapcheck
	}

	return fmt.Errorf("%w: %q", ErrUnknownDirection, direction)
}

// Run applies one migration direction against the write database. Having nothing to
// apply is not an error.
func Run(cfg *config.Config, direction Direction) error {
	mig, err := migrate.New(migrationsSource, DatabaseURL(cfg))
	if err != nil {
		return fmt.Errorf("error creating migrate instance: %w", err)
	}

	defer func() {
		if srcErr, dbErr := mig.Close(); srcErr != nil || dbErr != nil {
			log.Warn().AnErr("source", srcErr).AnErr("database", dbErr).Msg("failed to close migrate instance")
		}
	}()

	err = apply(mig, direction)

	switch {
	case errors.Is(err, migrate.ErrNoChange):
		log.Info().Str("direction", string(direction)).Msg("Database schema already up to date")
	case err != nil:
		return fmt.Errorf("error running %s migration: %w", direction, err)
	}

	version, dirty, err := mig.Version()

	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		log.Info().Str("direction", string(direction)).Msg("Database migrations applied, schema is empty")
	case err != nil:
		log.Warn().Err(err).Msg("failed to read schema version")
	default:
		log.Info().
			Str("direction", string(direction)).
			Uint("version", version).
			Bool("dirty", dirty).
			Msg("Database migrations applied")
	}

	return nil
}

// Up brings the schema to the latest version; the app calls it when auto-migrate is on.
func Up(cfg *config.Config) error {
	return Run(cfg, DirectionUp)
}
