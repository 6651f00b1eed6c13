// Package bootstrap wires the process-wide runtime shared by the binaries.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"thesisrepo/internal/cache"
	"thesisrepo/internal/config"
	"thesisrepo/internal/database"
	"thesisrepo/internal/models"
	"thesisrepo/internal/observability"
	"thesisrepo/internal/repository"
	"thesisrepo/internal/seed"
	"thesisrepo/internal/service"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedLookups installs the built-in faculties and departments.
	SeedLookups bool
}

// InitRuntime connects to DB and Redis and optionally runs built-in seeding.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	// Init Redis (may result in nil client if unreachable)
	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if opts.SeedLookups {
		if _, err := seed.Lookups(db.WithContext(ctx), seed.BuiltInFaculties); err != nil {
			return nil, nil, fmt.Errorf("failed to seed built-in faculties: %w", err)
		}
	}

	if err := EnsureDevRootAdmin(ctx, cfg, db); err != nil {
		return nil, nil, fmt.Errorf("failed to bootstrap development root admin: %w", err)
	}

	return db, r, nil
}

// EnsureDevRootAdmin creates the development root account, or promotes the
// existing account with that email, when DEV_BOOTSTRAP_ROOT is enabled in
// the development environment.
func EnsureDevRootAdmin(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil {
		return nil
	}
	if !strings.EqualFold(cfg.Env, "development") || !cfg.DevBootstrapRoot {
		return nil
	}

	fullName := strings.TrimSpace(cfg.DevRootFullName)
	if fullName == "" {
		fullName = "Repository Root"
	}
	email := strings.TrimSpace(strings.ToLower(cfg.DevRootEmail))
	if email == "" {
		email = "root@thesisrepo.local"
	}
	if cfg.DevRootPassword == "" {
		return fmt.Errorf("DEV_ROOT_PASSWORD must be set when DEV_BOOTSTRAP_ROOT is enabled")
	}

	users := service.NewUserService(repository.NewUserRepository(db))
	user, created, err := users.EnsureUser(ctx, fullName, email, cfg.DevRootPassword, models.RoleAdmin)
	if err != nil {
		return err
	}
	if !created && !user.IsAdmin() {
		if _, err := users.Promote(ctx, email, models.RoleAdmin); err != nil {
			return err
		}
	}

	observability.GlobalLogger.InfoContext(ctx, "development root admin ensured",
		slog.Uint64("user_id", uint64(user.ID)),
		slog.String("email", email),
		slog.Bool("created", created))
	return nil
}
