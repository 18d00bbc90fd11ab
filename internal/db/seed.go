package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	"timeclock/internal/auth"
	domauth "timeclock/internal/domain/auth"
	"timeclock/internal/platform/config"
)

// Seed is idempotent: every step inserts only what is missing, so it is safe
// to run on every boot.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if err := ensurePermissions(ctx, pool); err != nil {
		return err
	}

	roleIDs, err := ensureRoles(ctx, pool)
	if err != nil {
		return err
	}

	if err := ensureRolePermissions(ctx, pool, roleIDs); err != nil {
		return err
	}

	if _, err := ensureVenue(ctx, pool, cfg.SeedVenueName); err != nil {
		return err
	}

	if err := ensureDefaultPayRate(ctx, pool); err != nil {
		return err
	}

	if cfg.SeedAdminEmail != "" && cfg.SeedAdminPassword != "" {
		if err := ensureAdminUser(ctx, pool, roleIDs[domauth.RoleAdmin], cfg.SeedAdminEmail, cfg.SeedAdminPassword); err != nil {
			return err
		}
	}

	return nil
}

func ensurePermissions(ctx context.Context, pool *pgxpool.Pool) error {
	for _, perm := range domauth.DefaultPermissions {
		if _, err := pool.Exec(ctx, "INSERT INTO permissions (key) VALUES ($1) ON CONFLICT (key) DO NOTHING", perm); err != nil {
			return err
		}
	}
	return nil
}

func ensureRoles(ctx context.Context, pool *pgxpool.Pool) (map[string]string, error) {
	roleIDs := map[string]string{}
	for roleName := range domauth.RolePermissions {
		var id string
		err := pool.QueryRow(ctx, "SELECT id FROM roles WHERE name = $1", roleName).Scan(&id)
		if err == nil {
			roleIDs[roleName] = id
			continue
		}

		err = pool.QueryRow(ctx, "INSERT INTO roles (name) VALUES ($1) RETURNING id", roleName).Scan(&id)
		if err != nil {
			return nil, err
		}
		roleIDs[roleName] = id
	}
	return roleIDs, nil
}

func ensureRolePermissions(ctx context.Context, pool *pgxpool.Pool, roleIDs map[string]string) error {
	permMap := map[string]string{}
	rows, err := pool.Query(ctx, "SELECT id, key FROM permissions")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var id, key string
		if err := rows.Scan(&id, &key); err != nil {
			return err
		}
		permMap[key] = id
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for roleName, perms := range domauth.RolePermissions {
		roleID := roleIDs[roleName]
		for _, permKey := range perms {
			permID, ok := permMap[permKey]
			if !ok {
				return errors.New("permission not found: " + permKey)
			}
			if _, err := pool.Exec(ctx, "INSERT INTO role_permissions (role_id, permission_id) VALUES ($1, $2) ON CONFLICT DO NOTHING", roleID, permID); err != nil {
				return err
			}
		}
	}

	return nil
}

func ensureVenue(ctx context.Context, pool *pgxpool.Pool, name string) (string, error) {
	if name == "" {
		name = "Main Venue"
	}
	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM venues WHERE name = $1", name).Scan(&id)
	if err == nil {
		return id, nil
	}
	err = pool.QueryRow(ctx, "INSERT INTO venues (name) VALUES ($1) RETURNING id", name).Scan(&id)
	return id, err
}

// ensureDefaultPayRate seeds the singleton with conservative placeholder
// values; admins replace them through the rates endpoint.
func ensureDefaultPayRate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
    INSERT INTO pay_rates (is_default, weekday_rate, saturday_rate, sunday_rate, public_holiday_rate, paid_break_minutes)
    VALUES (true, 25, 30, 35, 50, 30)
    ON CONFLICT (is_default) WHERE is_default DO NOTHING
  `)
	return err
}

func ensureAdminUser(ctx context.Context, pool *pgxpool.Pool, roleID, email, password string) error {
	var userID string
	err := pool.QueryRow(ctx, "SELECT id FROM users WHERE email = $1", email).Scan(&userID)
	if err == nil {
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	if err := pool.QueryRow(ctx, `
    INSERT INTO users (email, password_hash, role_id)
    VALUES ($1, $2, $3)
    RETURNING id
  `, email, hash, roleID).Scan(&userID); err != nil {
		return err
	}

	_, err = pool.Exec(ctx, `
    INSERT INTO team_members (user_id, first_name, last_name)
    VALUES ($1, 'System', 'Admin')
  `, userID)
	return err
}
