package cmd

import (
	"fmt"

	"evspare/internal/config"
	"evspare/internal/db"
	"evspare/internal/repositories"
	"evspare/internal/services"
	"evspare/internal/session"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// openDatabase connects and, for sqlite or when DATABASE_AUTO_MIGRATE is set,
// creates the tables from the models.
func openDatabase(cfg config.Config, log zerolog.Logger) (*gorm.DB, error) {
	conn, err := db.Open(cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		return nil, err
	}
	if cfg.Database.AutoMigrate || cfg.Database.Driver == "sqlite" {
		if err := db.AutoMigrate(conn); err != nil {
			_ = db.Close(conn)
			return nil, err
		}
		log.Info().Str("driver", cfg.Database.Driver).Msg("database schema auto-migrated")
	}
	return conn, nil
}

// newAuthService builds the auth service over users with the configured hasher.
func newAuthService(cfg config.Config, users repositories.UserRepository, sessions session.Store, log zerolog.Logger) (*services.AuthService, error) {
	hasher, err := services.NewPasswordHasher(cfg.Auth.PasswordScheme, cfg.Auth.Pepper)
	if err != nil {
		return nil, fmt.Errorf("password hasher: %w", err)
	}
	return services.NewAuthService(users, sessions, session.NewSigner(cfg.Auth.JWTSecret), hasher, services.AuthOptions{
		TTL:    cfg.Session.TTL,
		Logger: log,
	}), nil
}
