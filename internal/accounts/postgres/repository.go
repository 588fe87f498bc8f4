// Package postgres provides the PostgreSQL implementation of the accounts
// repository.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/eventup/accounts/internal/accounts"
	"github.com/eventup/accounts/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository implements the accounts.Repository interface using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// CreateUser inserts the user and all of its profiles in one transaction.
func (r *Repository) CreateUser(ctx context.Context, user *domain.User) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `
		INSERT INTO users (id, name, email, cpf, password_hash, phone)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''))
		RETURNING created_at
	`
	err = tx.QueryRow(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.CPF,
		user.PasswordHash,
		user.Phone,
	).Scan(&user.CreatedAt)
	if err != nil {
		if conflictErr := translateConflict(err); conflictErr != nil {
			return conflictErr
		}
		return fmt.Errorf("create user: %w", err)
	}

	for i := range user.Profiles {
		p := &user.Profiles[i]
		err = tx.QueryRow(ctx, `
			INSERT INTO profiles (id, user_id, role)
			VALUES ($1, $2, $3)
			RETURNING is_active
		`, p.ID, p.UserID, p.Role).Scan(&p.IsActive)
		if err != nil {
			if conflictErr := translateConflict(err); conflictErr != nil {
				return conflictErr
			}
			return fmt.Errorf("create profile %s: %w", p.Role, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetUserByEmail retrieves a user with its profiles by email.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getUser(ctx, "email = $1", email)
}

// GetUserByID retrieves a user with its profiles by id.
func (r *Repository) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getUser(ctx, "id = $1", id)
}

func (r *Repository) getUser(ctx context.Context, where string, arg any) (*domain.User, error) {
	query := `
		SELECT id, name, email, cpf, password_hash, COALESCE(phone, ''), created_at
		FROM users
		WHERE ` + where

	var user domain.User
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.CPF,
		&user.PasswordHash,
		&user.Phone,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, accounts.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	profiles, err := r.getProfiles(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	user.Profiles = profiles

	return &user, nil
}

func (r *Repository) getProfiles(ctx context.Context, userID string) ([]domain.Profile, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, role, is_active
		FROM profiles
		WHERE user_id = $1
		ORDER BY role
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("get profiles: %w", err)
	}
	defer rows.Close()

	profiles := make([]domain.Profile, 0, 3)
	for rows.Next() {
		var p domain.Profile
		if err := rows.Scan(&p.ID, &p.UserID, &p.Role, &p.IsActive); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate profiles: %w", err)
	}
	return profiles, nil
}

// UpdateUser applies only the fields set in update.
func (r *Repository) UpdateUser(ctx context.Context, id string, update accounts.UserUpdate) error {
	sets := make([]string, 0, 4)
	args := make([]any, 0, 5)

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.Name != nil {
		add("name", *update.Name)
	}
	if update.Email != nil {
		add("email", *update.Email)
	}
	if update.Phone != nil {
		add("phone", *update.Phone)
	}
	if update.PasswordHash != nil {
		add("password_hash", *update.PasswordHash)
	}
	if len(sets) == 0 {
		return nil
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE users SET %s WHERE id = $%d",
		strings.Join(sets, ", "), len(args))

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		if conflictErr := translateConflict(err); conflictErr != nil {
			return conflictErr
		}
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return accounts.ErrUserNotFound
	}
	return nil
}

// CreateProfile inserts a role grant, leaving is_active to the column default.
func (r *Repository) CreateProfile(ctx context.Context, profile *domain.Profile) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO profiles (id, user_id, role)
		VALUES ($1, $2, $3)
		RETURNING is_active
	`, profile.ID, profile.UserID, profile.Role).Scan(&profile.IsActive)
	if err != nil {
		if conflictErr := translateConflict(err); conflictErr != nil {
			return conflictErr
		}
		return fmt.Errorf("create profile: %w", err)
	}
	return nil
}

// SetProfileActive updates the active flag of the (user, role) profile.
func (r *Repository) SetProfileActive(ctx context.Context, userID string, role domain.Role, active bool) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE profiles SET is_active = $3
		WHERE user_id = $1 AND role = $2
	`, userID, role, active)
	if err != nil {
		return fmt.Errorf("set profile active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return accounts.ErrProfileNotFound
	}
	return nil
}

// translateConflict maps unique-constraint violations to the service-level
// conflict sentinels. Returns nil for non-conflict errors.
func translateConflict(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return nil
	}
	switch pgErr.ConstraintName {
	case "users_email_key":
		return accounts.ErrEmailTaken
	case "users_cpf_key":
		return accounts.ErrCPFTaken
	case "profiles_user_id_role_key":
		return accounts.ErrProfileExists
	}
	return fmt.Errorf("unique violation on %s: %w", pgErr.ConstraintName, err)
}
