package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/bluemoxon/bluemoxon/internal/auth"
	"github.com/bluemoxon/bluemoxon/internal/bookstore"
	"github.com/bluemoxon/bluemoxon/internal/domain"
)

// fakeStorage is an in-memory SessionStorage for unit tests.
type fakeStorage struct {
	usersByEmail map[string]domain.User
	usersByID    map[uuid.UUID]domain.User
	sessions     map[string]domain.Session
	purgeCalls   int
	touchCalls   int
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		usersByEmail: make(map[string]domain.User),
		usersByID:    make(map[uuid.UUID]domain.User),
		sessions:     make(map[string]domain.Session),
	}
}

func (f *fakeStorage) addUser(user domain.User) {
	f.usersByEmail[user.Email] = user
	f.usersByID[user.ID] = user
}

func (f *fakeStorage) UserByEmail(_ context.Context, email string) (domain.User, error) {
	user, ok := f.usersByEmail[email]
	if !ok {
		return domain.User{}, bookstore.ErrUserNotFound
	}

	return user, nil
}

func (f *fakeStorage) UserByID(_ context.Context, id uuid.UUID) (domain.User, error) {
	user, ok := f.usersByID[id]
	if !ok {
		return domain.User{}, bookstore.ErrUserNotFound
	}

	return user, nil
}

func (f *fakeStorage) InsertSession(_ context.Context, session domain.Session) error {
	f.sessions[session.Token] = session
	return nil
}

func (f *fakeStorage) SessionByToken(_ context.Context, token string) (domain.Session, error) {
	session, ok := f.sessions[token]
	if !ok {
		return domain.Session{}, bookstore.ErrSessionNotFound
	}

	return session, nil
}

func (f *fakeStorage) TouchSession(_ context.Context, token string, expiresAt time.Time) error {
	f.touchCalls++

	session, ok := f.sessions[token]
	if !ok {
		return bookstore.ErrSessionNotFound
	}

	session.ExpiresAt = expiresAt
	f.sessions[token] = session

	return nil
}

func (f *fakeStorage) DeleteSession(_ context.Context, token string) error {
	delete(f.sessions, token)
	return nil
}

func (f *fakeStorage) PurgeExpiredSessions(_ context.Context, now time.Time) (int64, error) {
	f.purgeCalls++

	purged := int64(0)
	for token, session := range f.sessions {
		if session.Expired(now) {
			delete(f.sessions, token)
			purged++
		}
	}

	return purged, nil
}

func mustHash(t *testing.T, password string) string {
	t.Helper()

	// cost 4 keeps the test fast; production hashing uses a higher cost
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	return string(hash)
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func Test_Login_Succeeds_WithCorrectPassword(t *testing.T) {
	// setup
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	storage := newFakeStorage()
	user := domain.User{ID: uuid.New(), Email: "edith@example.com", PasswordHash: mustHash(t, "correct horse")}
	storage.addUser(user)
	service := auth.NewService(storage, auth.WithClock(fixedClock(now)), auth.WithSessionTTL(time.Hour))

	// act
	session, err := service.Login(context.Background(), "edith@example.com", "correct horse")

	// assert
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, user.ID, session.UserID)
	assert.Equal(t, now.Add(time.Hour), session.ExpiresAt)
	assert.Contains(t, storage.sessions, session.Token)
}

func Test_Login_Fails_WithWrongPassword(t *testing.T) {
	// setup
	storage := newFakeStorage()
	storage.addUser(domain.User{ID: uuid.New(), Email: "edith@example.com", PasswordHash: mustHash(t, "correct horse")})
	service := auth.NewService(storage)

	// act
	_, err := service.Login(context.Background(), "edith@example.com", "battery staple")

	// assert
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	assert.Empty(t, storage.sessions)
}

func Test_Login_Fails_WithUnknownUser_SameErrorAsWrongPassword(t *testing.T) {
	// setup
	storage := newFakeStorage()
	service := auth.NewService(storage)

	// act
	_, err := service.Login(context.Background(), "nobody@example.com", "whatever")

	// assert
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func Test_Verify_ResolvesTokenToUser(t *testing.T) {
	// setup
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	storage := newFakeStorage()
	user := domain.User{ID: uuid.New(), Email: "edith@example.com", PasswordHash: mustHash(t, "pw")}
	storage.addUser(user)
	storage.sessions["tok-1"] = domain.Session{Token: "tok-1", UserID: user.ID, ExpiresAt: now.Add(time.Hour)}
	service := auth.NewService(storage, auth.WithClock(fixedClock(now)))

	// act
	verified, err := service.Verify(context.Background(), "tok-1")

	// assert
	require.NoError(t, err)
	assert.Equal(t, user.ID, verified.ID)
	assert.Equal(t, user.Email, verified.Email)
}

func Test_Verify_SlidesExpiryOfAgingSession(t *testing.T) {
	// setup: less than half the TTL remains, so verification renews it
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ttl := 4 * time.Hour
	storage := newFakeStorage()
	user := domain.User{ID: uuid.New(), Email: "edith@example.com", PasswordHash: mustHash(t, "pw")}
	storage.addUser(user)
	storage.sessions["aging"] = domain.Session{Token: "aging", UserID: user.ID, ExpiresAt: now.Add(time.Hour)}
	service := auth.NewService(storage, auth.WithClock(fixedClock(now)), auth.WithSessionTTL(ttl))

	// act
	_, err := service.Verify(context.Background(), "aging")

	// assert: the expiry moved forward to a full TTL from now
	require.NoError(t, err)
	assert.Equal(t, 1, storage.touchCalls)
	assert.Equal(t, now.Add(ttl), storage.sessions["aging"].ExpiresAt)
}

func Test_Verify_FreshSessionIsNotTouched(t *testing.T) {
	// setup: more than half the TTL remains, no write needed
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ttl := 4 * time.Hour
	storage := newFakeStorage()
	user := domain.User{ID: uuid.New(), Email: "edith@example.com", PasswordHash: mustHash(t, "pw")}
	storage.addUser(user)
	expiry := now.Add(3 * time.Hour)
	storage.sessions["fresh"] = domain.Session{Token: "fresh", UserID: user.ID, ExpiresAt: expiry}
	service := auth.NewService(storage, auth.WithClock(fixedClock(now)), auth.WithSessionTTL(ttl))

	// act
	_, err := service.Verify(context.Background(), "fresh")

	// assert
	require.NoError(t, err)
	assert.Equal(t, 0, storage.touchCalls)
	assert.Equal(t, expiry, storage.sessions["fresh"].ExpiresAt)
}

func Test_Verify_UnknownToken(t *testing.T) {
	// setup
	storage := newFakeStorage()
	service := auth.NewService(storage)

	// act
	_, err := service.Verify(context.Background(), "no-such-token")

	// assert
	assert.ErrorIs(t, err, bookstore.ErrSessionNotFound)
}

func Test_Verify_ExpiredSession_PurgesLazily(t *testing.T) {
	// setup
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	storage := newFakeStorage()
	user := domain.User{ID: uuid.New(), Email: "edith@example.com", PasswordHash: mustHash(t, "pw")}
	storage.addUser(user)
	storage.sessions["stale"] = domain.Session{Token: "stale", UserID: user.ID, ExpiresAt: now.Add(-time.Minute)}
	storage.sessions["also-stale"] = domain.Session{Token: "also-stale", UserID: user.ID, ExpiresAt: now.Add(-time.Hour)}
	storage.sessions["live"] = domain.Session{Token: "live", UserID: user.ID, ExpiresAt: now.Add(time.Hour)}
	service := auth.NewService(storage, auth.WithClock(fixedClock(now)))

	// act
	_, err := service.Verify(context.Background(), "stale")

	// assert
	assert.ErrorIs(t, err, auth.ErrSessionExpired)
	assert.Equal(t, 1, storage.purgeCalls)
	assert.NotContains(t, storage.sessions, "stale")
	assert.NotContains(t, storage.sessions, "also-stale")
	assert.Contains(t, storage.sessions, "live")
}

func Test_Logout_RemovesSession(t *testing.T) {
	// setup
	storage := newFakeStorage()
	storage.sessions["tok-1"] = domain.Session{Token: "tok-1", UserID: uuid.New()}
	service := auth.NewService(storage)

	// act
	err := service.Logout(context.Background(), "tok-1")

	// assert
	assert.NoError(t, err)
	assert.Empty(t, storage.sessions)
}

func Test_HashPassword_VerifiableWithBcrypt(t *testing.T) {
	// act
	hash, err := auth.HashPassword("correct horse")

	// assert
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("correct horse")))
	assert.Error(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("battery staple")))
}
