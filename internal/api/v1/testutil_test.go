package v1_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/require"

	"github.com/evemind/evemind/internal/auth"
	"github.com/evemind/evemind/internal/store"
)

const testJWTSecret = "0123456789abcdef0123456789abcdef"

// newTestStore opens a freshly seeded store on a per-test temp file, so every
// test starts from the default dataset.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	st, err := store.Open(filepath.Join(t.TempDir(), "data.json"))
	require.NoError(t, err)
	return st
}

func newTestAPI(t *testing.T) (humatest.TestAPI, *store.Store) {
	t.Helper()

	_, api := humatest.New(t)
	return api, newTestStore(t)
}

func newAuthService(st *store.Store) *auth.Service {
	return auth.NewService(st, testJWTSecret, time.Hour, 24*time.Hour)
}
