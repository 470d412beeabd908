// Package postgres implements the storage collaborators on PostgreSQL via
// pgx. UpdatePass uses an optimistic version check so a lost-update race
// surfaces as ErrVersionConflict instead of a silent overwrite.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hosteline/epass-server/internal/passes"
	"github.com/hosteline/epass-server/internal/users"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const passColumns = `id, owner_id, reason, status, start_time, end_time, binding_secret, actual_start, actual_end, version, created_at`

func (s *Store) CreatePass(ctx context.Context, pass *passes.Pass) (*passes.Pass, error) {
	id, err := uuid.Parse(pass.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid pass ID: %w", err)
	}
	ownerID, err := uuid.Parse(pass.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("invalid owner ID: %w", err)
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO passes (id, owner_id, reason, status, start_time, end_time, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+passColumns,
		id, ownerID, pass.Reason, string(pass.Status), pass.StartTime, pass.EndTime, pass.CreatedAt)

	created, err := scanPass(row)
	if err != nil {
		return nil, fmt.Errorf("insert pass: %w", err)
	}
	return created, nil
}

func (s *Store) GetPassByID(ctx context.Context, id string) (*passes.Pass, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, passes.ErrPassNotFound
	}

	row := s.pool.QueryRow(ctx, `SELECT `+passColumns+` FROM passes WHERE id = $1`, parsed)
	pass, err := scanPass(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, passes.ErrPassNotFound
		}
		return nil, fmt.Errorf("query pass: %w", err)
	}
	return pass, nil
}

func (s *Store) UpdatePass(ctx context.Context, id string, expectedVersion int64, update passes.Update) (*passes.Pass, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, passes.ErrPassNotFound
	}

	var status *string
	if update.Status != nil {
		v := string(*update.Status)
		status = &v
	}

	row := s.pool.QueryRow(ctx, `
		UPDATE passes
		SET status = COALESCE($3, status),
		    binding_secret = COALESCE($4, binding_secret),
		    actual_start = COALESCE($5, actual_start),
		    actual_end = COALESCE($6, actual_end),
		    version = version + 1
		WHERE id = $1 AND version = $2
		RETURNING `+passColumns,
		parsed, expectedVersion, status, update.BindingSecret, update.ActualStart, update.ActualEnd)

	pass, err := scanPass(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Distinguish a stale version from a missing record.
			var exists bool
			checkErr := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM passes WHERE id = $1)`, parsed).Scan(&exists)
			if checkErr != nil {
				return nil, fmt.Errorf("check pass existence: %w", checkErr)
			}
			if exists {
				return nil, passes.ErrVersionConflict
			}
			return nil, passes.ErrPassNotFound
		}
		return nil, fmt.Errorf("update pass: %w", err)
	}
	return pass, nil
}

func (s *Store) ListPassesByOwner(ctx context.Context, ownerID string) ([]passes.Pass, error) {
	parsed, err := uuid.Parse(ownerID)
	if err != nil {
		return nil, fmt.Errorf("invalid owner ID: %w", err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT `+passColumns+` FROM passes WHERE owner_id = $1 ORDER BY created_at DESC`, parsed)
	if err != nil {
		return nil, fmt.Errorf("query passes by owner: %w", err)
	}
	defer rows.Close()

	return collectPasses(rows)
}

func (s *Store) ListPendingPasses(ctx context.Context) ([]passes.Pass, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+passColumns+` FROM passes WHERE status = 'pending' ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("query pending passes: %w", err)
	}
	defer rows.Close()

	return collectPasses(rows)
}

func (s *Store) CreateUser(ctx context.Context, user *users.User) (*users.User, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO users (username, password_hash, role, name, phone_number, room_no, hostel)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, username, password_hash, role, name, phone_number, room_no, hostel, created_at`,
		user.Username, user.PasswordHash, user.Role, user.Name, user.PhoneNumber, user.RoomNo, user.Hostel)

	created, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, users.ErrUsernameExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return created, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*users.User, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, username, password_hash, role, name, phone_number, room_no, hostel, created_at
		FROM users WHERE username = $1`, username)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, users.ErrUserNotFound
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	return user, nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*users.User, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, users.ErrUserNotFound
	}

	row := s.pool.QueryRow(ctx, `
		SELECT id, username, password_hash, role, name, phone_number, room_no, hostel, created_at
		FROM users WHERE id = $1`, parsed)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, users.ErrUserNotFound
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	return user, nil
}

func scanPass(row pgx.Row) (*passes.Pass, error) {
	var (
		pass    passes.Pass
		id      uuid.UUID
		ownerID uuid.UUID
		status  string
	)
	err := row.Scan(&id, &ownerID, &pass.Reason, &status, &pass.StartTime, &pass.EndTime,
		&pass.BindingSecret, &pass.ActualStart, &pass.ActualEnd, &pass.Version, &pass.CreatedAt)
	if err != nil {
		return nil, err
	}
	pass.ID = id.String()
	pass.OwnerID = ownerID.String()
	pass.Status = passes.Status(status)
	return &pass, nil
}

func collectPasses(rows pgx.Rows) ([]passes.Pass, error) {
	var result []passes.Pass
	for rows.Next() {
		pass, err := scanPass(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pass: %w", err)
		}
		result = append(result, *pass)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate passes: %w", err)
	}
	return result, nil
}

func scanUser(row pgx.Row) (*users.User, error) {
	var (
		user users.User
		id   uuid.UUID
	)
	err := row.Scan(&id, &user.Username, &user.PasswordHash, &user.Role, &user.Name,
		&user.PhoneNumber, &user.RoomNo, &user.Hostel, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	user.ID = id.String()
	return &user, nil
}
