package user

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dinerozz/focus-session-backend/internal/repository"
	"github.com/dinerozz/focus-session-backend/migrations"
	"github.com/dinerozz/focus-session-backend/pkg/utils"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*UserService, *utils.JWTManager) {
	t.Helper()

	db, err := repository.OpenSQLite(filepath.Join(t.TempDir(), "users.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migrations.Up(db.DB, "sqlite"))

	jwt := utils.NewJWTManager("test-secret", time.Hour)
	return NewUserService(repository.NewUserRepository(db), jwt), jwt
}

func TestRegisterAndLogin(t *testing.T) {
	svc, jwt := newTestService(t)
	ctx := context.Background()

	account, err := svc.Register(ctx, " Dana ", "Dana@Example.com ", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, "Dana", account.Name)
	assert.Equal(t, "dana@example.com", account.Email)
	assert.NotEqual(t, "s3cret-pass", account.PasswordHash)

	loggedIn, token, err := svc.Login(ctx, "DANA@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, account.ID, loggedIn.ID)

	claims, err := jwt.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, account.ID.String(), claims["user_id"])
	assert.Equal(t, time.Hour, svc.TokenTTL())
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Dana", "dana@example.com", "pass-one")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "Dana Again", "DANA@example.com", "pass-two")
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestRegister_PasswordLimitCountsBytes(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Noé", "noe@example.com", strings.Repeat("é", 72))
	assert.ErrorIs(t, err, ErrPasswordTooLong)

	_, err = svc.Register(ctx, "Noé", "noe@example.com", strings.Repeat("é", 36))
	assert.NoError(t, err)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Dana", "dana@example.com", "right-pass")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "dana@example.com", "wrong-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "nobody@example.com", "right-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestGetUserById(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	account, err := svc.Register(ctx, "Dana", "dana@example.com", "pass")
	require.NoError(t, err)

	found, err := svc.GetUserById(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, account.Email, found.Email)

	_, err = svc.GetUserById(ctx, uuid.Must(uuid.NewV4()))
	assert.ErrorIs(t, err, ErrUserNotFound)
}
