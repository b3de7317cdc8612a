package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ariefcatur/go-orders-api/internal/auth"
	"github.com/ariefcatur/go-orders-api/internal/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrValidation = errors.New("validation failed")
	ErrEmailTaken = errors.New("email already registered")
)

const uniqueViolation = "23505"

const userColumns = `id, first_name, last_name, email, phone, address, role, password`

type Repo struct {
	DB     *postgres.Gateway
	Log    zerolog.Logger
	Hasher auth.Hasher
}

func scanUser(row pgx.Row, u *User) error {
	return row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Phone, &u.Address, &u.Role, &u.Password)
}

func (r *Repo) List(ctx context.Context) ([]User, error) {
	rows, err := r.DB.Q().Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	out := []User{}
	for rows.Next() {
		var u User
		if err := scanUser(rows, &u); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *Repo) FindByID(ctx context.Context, id int64) (User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// FindByEmail includes the password hash for login checks.
func (r *Repo) FindByEmail(ctx context.Context, email string) (User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, strings.ToLower(email))
}

func (r *Repo) findOne(ctx context.Context, sql string, arg any) (User, error) {
	var u User
	err := scanUser(r.DB.Q().QueryRow(ctx, sql, arg), &u)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

// Create hashes the password and stores the user. Role defaults to customer.
func (r *Repo) Create(ctx context.Context, nu NewUser) (int64, error) {
	if nu.Email == "" || nu.Password == "" {
		return 0, fmt.Errorf("%w: email and password required", ErrValidation)
	}
	if nu.Role == "" {
		nu.Role = auth.RoleCustomer
	}
	hash, err := r.Hasher.Hash(nu.Password)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}

	var id int64
	err = r.DB.Q().QueryRow(ctx, `
		INSERT INTO users (first_name, last_name, email, phone, address, password, role)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		nu.FirstName, nu.LastName, strings.ToLower(nu.Email), nu.Phone, nu.Address, hash, nu.Role,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return 0, ErrEmailTaken
		}
		r.Log.Error().Err(err).Msg("create user failed")
		return 0, fmt.Errorf("create user: %w", err)
	}
	return id, nil
}

// Update writes the set fields; false when no user has the id.
func (r *Repo) Update(ctx context.Context, id int64, p Patch) (bool, error) {
	if p.Empty() {
		return false, fmt.Errorf("%w: no updatable fields", ErrValidation)
	}

	var (
		sets []string
		args []any
	)
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if p.FirstName != nil {
		add("first_name", *p.FirstName)
	}
	if p.LastName != nil {
		add("last_name", *p.LastName)
	}
	if p.Email != nil {
		add("email", strings.ToLower(*p.Email))
	}
	if p.Phone != nil {
		add("phone", *p.Phone)
	}
	if p.Address != nil {
		add("address", *p.Address)
	}
	if p.Password != nil {
		hash, err := r.Hasher.Hash(*p.Password)
		if err != nil {
			return false, fmt.Errorf("hash password: %w", err)
		}
		add("password", hash)
	}
	if p.Role != nil {
		add("role", *p.Role)
	}
	args = append(args, id)

	tag, err := r.DB.Q().Exec(ctx,
		fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args)), args...)
	if err != nil {
		r.Log.Error().Err(err).Int64("user_id", id).Msg("update user failed")
		return false, fmt.Errorf("update user: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *Repo) Delete(ctx context.Context, id int64) (bool, error) {
	err := r.DB.WithTx(ctx, func(ctx context.Context, q postgres.Querier) error {
		tag, err := q.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrNotFound):
		return false, nil
	default:
		r.Log.Error().Err(err).Int64("user_id", id).Msg("delete user rolled back")
		return false, fmt.Errorf("delete user: %w", err)
	}
}
