package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/commerce-service/pkg/credential"
)

type fakeAuthenticator struct {
	token string
	err   error
	calls int
}

func (f *fakeAuthenticator) Authenticate(_ context.Context, _, _ string) (string, error) {
	f.calls++
	return f.token, f.err
}

type backendError struct {
	message string
}

func (e *backendError) Error() string       { return e.message }
func (e *backendError) UserMessage() string { return e.message }

func signedToken(t *testing.T, role string, expiresAt time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "user-1",
		"email": "a@b.com",
		"role":  role,
		"exp":   expiresAt.Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestLoginPopulatesSessionAndStorage(t *testing.T) {
	storage := NewMemoryStorage()
	auth := &fakeAuthenticator{token: signedToken(t, "admin", time.Now().Add(time.Hour))}
	store := NewStore(storage, auth, nil)

	require.NoError(t, store.Login(context.Background(), "a@b.com", "x"))

	claims, ok := store.Current()
	require.True(t, ok)
	assert.Equal(t, credential.RoleAdmin, claims.Role)
	assert.True(t, store.IsAdmin())
	assert.False(t, store.IsSuperAdmin())

	raw, err := storage.Get(credential.StorageKeyCredential)
	require.NoError(t, err)
	assert.Equal(t, auth.token, string(raw))

	encoded, err := storage.Get(credential.StorageKeyClaims)
	require.NoError(t, err)
	assert.NotEmpty(t, encoded)
}

func TestLoginFailureSurfacesBackendMessage(t *testing.T) {
	storage := NewMemoryStorage()
	auth := &fakeAuthenticator{err: &backendError{message: "Invalid credentials"}}
	store := NewStore(storage, auth, nil)

	err := store.Login(context.Background(), "a@b.com", "wrong")
	require.EqualError(t, err, "Invalid credentials")

	_, ok := store.Current()
	assert.False(t, ok, "session must stay empty")
	raw, _ := storage.Get(credential.StorageKeyCredential)
	assert.Empty(t, raw, "storage must stay unchanged")
}

func TestLoginFailureGenericFallback(t *testing.T) {
	store := NewStore(NewMemoryStorage(), &fakeAuthenticator{err: errors.New("dial tcp: refused")}, nil)

	err := store.Login(context.Background(), "a@b.com", "x")
	require.ErrorIs(t, err, ErrLoginFailed)
}

func TestLogoutIsIdempotent(t *testing.T) {
	storage := NewMemoryStorage()
	auth := &fakeAuthenticator{token: signedToken(t, "customer", time.Now().Add(time.Hour))}
	store := NewStore(storage, auth, nil)
	require.NoError(t, store.Login(context.Background(), "a@b.com", "x"))

	store.Logout()
	store.Logout()

	_, ok := store.Current()
	assert.False(t, ok)
	assert.Empty(t, store.Token())
	raw, _ := storage.Get(credential.StorageKeyCredential)
	assert.Empty(t, raw)
}

func TestInitializeRestoresPersistedSession(t *testing.T) {
	storage := NewMemoryStorage()
	token := signedToken(t, "super-admin", time.Now().Add(time.Hour))
	require.NoError(t, storage.Put(credential.StorageKeyCredential, []byte(token)))

	store := NewStore(storage, &fakeAuthenticator{}, nil)
	require.NoError(t, store.Initialize())

	claims, ok := store.Current()
	require.True(t, ok)
	assert.True(t, claims.IsSuperAdmin())
	assert.Equal(t, token, store.Token())
}

func TestInitializeDiscardsExpiredCredential(t *testing.T) {
	storage := NewMemoryStorage()
	token := signedToken(t, "admin", time.Now().Add(-10*time.Minute))
	require.NoError(t, storage.Put(credential.StorageKeyCredential, []byte(token)))
	require.NoError(t, storage.Put(credential.StorageKeyClaims, []byte(`{}`)))

	store := NewStore(storage, &fakeAuthenticator{}, nil)
	require.NoError(t, store.Initialize())

	_, ok := store.Current()
	assert.False(t, ok)

	raw, _ := storage.Get(credential.StorageKeyCredential)
	assert.Empty(t, raw, "stale credential must be cleared from storage")
	raw, _ = storage.Get(credential.StorageKeyClaims)
	assert.Empty(t, raw)
}

func TestInitializeDiscardsUndecodableCredential(t *testing.T) {
	storage := NewMemoryStorage()
	require.NoError(t, storage.Put(credential.StorageKeyCredential, []byte("garbage")))

	store := NewStore(storage, &fakeAuthenticator{}, nil)
	require.NoError(t, store.Initialize())

	_, ok := store.Current()
	assert.False(t, ok)
}

func TestExpiryDuringReadTriggersImplicitLogout(t *testing.T) {
	storage := NewMemoryStorage()
	auth := &fakeAuthenticator{token: signedToken(t, "admin", time.Now().Add(time.Second))}
	store := NewStore(storage, auth, nil)
	require.NoError(t, store.Login(context.Background(), "a@b.com", "x"))

	// Force the session past its expiry.
	store.mu.Lock()
	store.claims.ExpiresAt = time.Now().Add(-time.Second)
	store.mu.Unlock()

	assert.Empty(t, store.Token())
	_, ok := store.Current()
	assert.False(t, ok)
	raw, _ := storage.Get(credential.StorageKeyCredential)
	assert.Empty(t, raw)
}

func TestBoltStorageSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")

	storage, err := OpenBolt(path)
	require.NoError(t, err)
	require.NoError(t, storage.Put(credential.StorageKeyCredential, []byte("tok")))
	require.NoError(t, storage.Close())

	reopened, err := OpenBolt(path)
	require.NoError(t, err)
	defer reopened.Close()

	raw, err := reopened.Get(credential.StorageKeyCredential)
	require.NoError(t, err)
	assert.Equal(t, "tok", string(raw))

	require.NoError(t, reopened.Delete(credential.StorageKeyCredential))
	raw, err = reopened.Get(credential.StorageKeyCredential)
	require.NoError(t, err)
	assert.Nil(t, raw)
}
