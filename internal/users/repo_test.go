package users

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/ariefcatur/go-orders-api/internal/auth"
	"github.com/ariefcatur/go-orders-api/internal/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var userCols = []string{"id", "first_name", "last_name", "email", "phone", "address", "role", "password"}

func newTestRepo(t *testing.T) (*Repo, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return &Repo{
		DB:     postgres.NewGateway(mock, time.Second),
		Log:    zerolog.Nop(),
		Hasher: auth.Hasher{Cost: bcrypt.MinCost},
	}, mock
}

func TestCreate_HashesPasswordAndDefaultsRole(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery("INSERT INTO users").
		WithArgs("Matti", "M", "matti@example.com", "", "", pgxmock.AnyArg(), auth.RoleCustomer).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(1337)))

	id, err := repo.Create(context.Background(), NewUser{
		FirstName: "Matti", LastName: "M", Email: "Matti@Example.com", Password: "secret",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1337), id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DuplicateEmail(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery("INSERT INTO users").WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := repo.Create(context.Background(), NewUser{Email: "a@b.fi", Password: "x"})
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestCreate_RequiresEmailAndPassword(t *testing.T) {
	repo, mock := newTestRepo(t)

	_, err := repo.Create(context.Background(), NewUser{Email: "a@b.fi"})
	require.ErrorIs(t, err, ErrValidation)
	_, err = repo.Create(context.Background(), NewUser{Password: "x"})
	require.ErrorIs(t, err, ErrValidation)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByEmail(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery("FROM users WHERE email").
		WithArgs("a@b.fi").
		WillReturnRows(pgxmock.NewRows(userCols).AddRow(int64(1), "A", "B", "a@b.fi", "", "", "admin", "$2a$hash"))

	u, err := repo.FindByEmail(context.Background(), "A@b.fi")
	require.NoError(t, err)
	assert.Equal(t, "admin", u.Role)
	assert.Equal(t, "$2a$hash", u.Password)
}

func TestFindByID_NotFound(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery("FROM users WHERE id").WithArgs(int64(9)).WillReturnError(pgx.ErrNoRows)

	_, err := repo.FindByID(context.Background(), 9)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdate_PartialWithRehash(t *testing.T) {
	repo, mock := newTestRepo(t)
	phone := "+358401234567"
	password := "new-secret"

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET phone = $1, password = $2 WHERE id = $3")).
		WithArgs(phone, pgxmock.AnyArg(), int64(3)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	ok, err := repo.Update(context.Background(), 3, Patch{Phone: &phone, Password: &password})
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_EmptyAndMissing(t *testing.T) {
	repo, mock := newTestRepo(t)

	_, err := repo.Update(context.Background(), 3, Patch{})
	require.ErrorIs(t, err, ErrValidation)

	name := "x"
	mock.ExpectExec("UPDATE users SET").WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	ok, err := repo.Update(context.Background(), 404, Patch{FirstName: &name})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDelete(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM users").WithArgs(int64(3)).WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM users").WithArgs(int64(4)).WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectRollback()

	ok, err := repo.Delete(context.Background(), 3)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Delete(context.Background(), 4)
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}
