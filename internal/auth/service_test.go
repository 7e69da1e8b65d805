package auth

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/evemind/evemind/internal/store"
)

func newTestService(t *testing.T) (*Service, *store.Store) {
	t.Helper()

	st, err := store.Open(filepath.Join(t.TempDir(), "data.json"))
	require.NoError(t, err)
	return NewService(st, testSecret, time.Hour, 24*time.Hour), st
}

func createUser(t *testing.T, st *store.Store, email, password string, active bool) store.Record {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	rec, err := st.Create(context.Background(), "usuarios", store.Record{
		"nome":  "Maria",
		"email": email,
		"senha": string(hash),
		"tipo":  "member",
		"ativo": active,
	})
	require.NoError(t, err)
	return rec
}

func TestLoginSeedAdmin(t *testing.T) {
	svc, _ := newTestService(t)

	user, access, refresh, err := svc.Login("admin@evemind.com", "password")
	require.NoError(t, err)

	assert.Equal(t, 1, user.ID)
	assert.Equal(t, "admin", user.Role)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)

	claims, err := svc.Validate(access)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "admin@evemind.com", claims.Email)
}

func TestLoginFailures(t *testing.T) {
	svc, st := newTestService(t)
	createUser(t, st, "maria@example.com", "s3cret", false)

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{name: "wrong password", email: "admin@evemind.com", password: "nope"},
		{name: "unknown email", email: "ghost@example.com", password: "password"},
		{name: "substring email does not match", email: "admin", password: "password"},
		{name: "inactive user", email: "maria@example.com", password: "s3cret"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, _, err := svc.Login(tc.email, tc.password)
			assert.ErrorIs(t, err, ErrInvalidCredentials)
		})
	}
}

func TestValidateRejectsRefreshToken(t *testing.T) {
	svc, _ := newTestService(t)

	_, _, refresh, err := svc.Login("admin@evemind.com", "password")
	require.NoError(t, err)

	_, err = svc.Validate(refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefresh(t *testing.T) {
	svc, _ := newTestService(t)

	_, _, refresh, err := svc.Login("admin@evemind.com", "password")
	require.NoError(t, err)

	access, err := svc.Refresh(refresh)
	require.NoError(t, err)

	claims, err := svc.Validate(access)
	require.NoError(t, err)
	assert.Equal(t, 1, claims.UserID)
	assert.Equal(t, "admin", claims.Role)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	svc, _ := newTestService(t)

	_, access, _, err := svc.Login("admin@evemind.com", "password")
	require.NoError(t, err)

	_, err = svc.Refresh(access)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshDeletedUser(t *testing.T) {
	svc, st := newTestService(t)
	rec := createUser(t, st, "maria@example.com", "s3cret", true)

	_, _, refresh, err := svc.Login("maria@example.com", "s3cret")
	require.NoError(t, err)

	_, err = st.Delete(context.Background(), "usuarios", rec.ID())
	require.NoError(t, err)

	_, err = svc.Refresh(refresh)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
