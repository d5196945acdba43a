package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluemoxon/bluemoxon/internal/auth"
	"github.com/bluemoxon/bluemoxon/internal/bookstore"
	"github.com/bluemoxon/bluemoxon/internal/domain"
	"github.com/bluemoxon/bluemoxon/internal/httpapi"
	obslog "github.com/bluemoxon/bluemoxon/internal/log"
	"github.com/bluemoxon/bluemoxon/internal/stats"
)

const validToken = "valid-session-token"

// fakeBooks is a configurable BookStorage double.
type fakeBooks struct {
	insertFunc func(ctx context.Context, book domain.Book) (domain.Book, error)
	byIDFunc   func(ctx context.Context, id uuid.UUID) (domain.Book, error)
	listFunc   func(ctx context.Context, filter bookstore.BookFilter) (domain.Books, error)
	updateFunc func(ctx context.Context, book domain.Book) (domain.Book, error)
	deleteFunc func(ctx context.Context, id uuid.UUID) error
}

func (f *fakeBooks) InsertBook(ctx context.Context, book domain.Book) (domain.Book, error) {
	if f.insertFunc == nil {
		return domain.Book{}, bookstore.ErrBookNotFound
	}
	return f.insertFunc(ctx, book)
}

func (f *fakeBooks) BookByID(ctx context.Context, id uuid.UUID) (domain.Book, error) {
	if f.byIDFunc == nil {
		return domain.Book{}, bookstore.ErrBookNotFound
	}
	return f.byIDFunc(ctx, id)
}

func (f *fakeBooks) Books(ctx context.Context, filter bookstore.BookFilter) (domain.Books, error) {
	if f.listFunc == nil {
		return domain.Books{}, nil
	}
	return f.listFunc(ctx, filter)
}

func (f *fakeBooks) UpdateBook(ctx context.Context, book domain.Book) (domain.Book, error) {
	if f.updateFunc == nil {
		return domain.Book{}, bookstore.ErrBookNotFound
	}
	return f.updateFunc(ctx, book)
}

func (f *fakeBooks) DeleteBook(ctx context.Context, id uuid.UUID) error {
	if f.deleteFunc == nil {
		return bookstore.ErrBookNotFound
	}
	return f.deleteFunc(ctx, id)
}

// fakePublishers is a configurable PublisherStorage double.
type fakePublishers struct {
	insertFunc func(ctx context.Context, publisher domain.Publisher) (domain.Publisher, error)
	listFunc   func(ctx context.Context) (domain.Publishers, error)
	byIDFunc   func(ctx context.Context, id uuid.UUID) (domain.Publisher, error)
}

func (f *fakePublishers) InsertPublisher(ctx context.Context, publisher domain.Publisher) (domain.Publisher, error) {
	if f.insertFunc == nil {
		if err := publisher.Validate(); err != nil {
			return domain.Publisher{}, err
		}
		publisher.ID = uuid.New()
		return publisher, nil
	}
	return f.insertFunc(ctx, publisher)
}

func (f *fakePublishers) Publishers(ctx context.Context) (domain.Publishers, error) {
	if f.listFunc == nil {
		return domain.Publishers{}, nil
	}
	return f.listFunc(ctx)
}

func (f *fakePublishers) PublisherByID(ctx context.Context, id uuid.UUID) (domain.Publisher, error) {
	if f.byIDFunc == nil {
		return domain.Publisher{}, bookstore.ErrPublisherNotFound
	}
	return f.byIDFunc(ctx, id)
}

// fakeStats is a configurable StatsProvider double.
type fakeStats struct {
	overviewFunc func(ctx context.Context) (stats.Overview, error)
	recentFunc   func(ctx context.Context, limit uint) (domain.Books, error)
}

func (f *fakeStats) Overview(ctx context.Context) (stats.Overview, error) {
	if f.overviewFunc == nil {
		return stats.Overview{}, nil
	}
	return f.overviewFunc(ctx)
}

func (f *fakeStats) ByCondition(_ context.Context) ([]stats.ConditionBucket, error) {
	return stats.ShapeConditionBuckets(nil), nil
}

func (f *fakeStats) ByPublisherTier(_ context.Context) ([]stats.TierBucket, error) {
	return stats.ShapeTierBuckets(nil), nil
}

func (f *fakeStats) RecentAcquisitions(ctx context.Context, limit uint) (domain.Books, error) {
	if f.recentFunc == nil {
		return domain.Books{}, nil
	}
	return f.recentFunc(ctx, limit)
}

// fakeAuth accepts validToken and rejects everything else.
type fakeAuth struct {
	user      domain.User
	loginFunc func(ctx context.Context, email, password string) (domain.Session, error)
}

func (f *fakeAuth) Login(ctx context.Context, email, password string) (domain.Session, error) {
	if f.loginFunc == nil {
		return domain.Session{}, auth.ErrInvalidCredentials
	}
	return f.loginFunc(ctx, email, password)
}

func (f *fakeAuth) Logout(_ context.Context, _ string) error {
	return nil
}

func (f *fakeAuth) Verify(_ context.Context, token string) (domain.User, error) {
	if token != validToken {
		return domain.User{}, bookstore.ErrSessionNotFound
	}
	return f.user, nil
}

// testDeps bundles the doubles so individual tests can tweak one of them.
type testDeps struct {
	books      *fakeBooks
	publishers *fakePublishers
	stats      *fakeStats
	auth       *fakeAuth
	limiter    *auth.LoginLimiter
}

func newTestDeps() *testDeps {
	return &testDeps{
		books:      &fakeBooks{},
		publishers: &fakePublishers{},
		stats:      &fakeStats{},
		auth:       &fakeAuth{user: domain.User{ID: uuid.New(), Email: "edith@example.com"}},
	}
}

func newTestHandler(deps *testDeps) http.Handler {
	logger := obslog.NewSlogLogger(slog.NewTextHandler(io.Discard, nil))
	server := httpapi.NewServer(deps.books, deps.publishers, deps.stats, deps.auth, deps.limiter, logger)

	return server.Routes()
}

func doRequest(t *testing.T, handler http.Handler, method, target, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, target, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)

	return recorder
}

func Test_Health_IsPublic(t *testing.T) {
	handler := newTestHandler(newTestDeps())

	rec := doRequest(t, handler, http.MethodGet, "/healthz", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func Test_Books_RequireAuthentication(t *testing.T) {
	handler := newTestHandler(newTestDeps())

	rec := doRequest(t, handler, http.MethodGet, "/api/v1/books", "", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func Test_Books_RejectUnknownToken(t *testing.T) {
	handler := newTestHandler(newTestDeps())

	rec := doRequest(t, handler, http.MethodGet, "/api/v1/books", "bogus", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func Test_Stats_RequireAuthentication(t *testing.T) {
	handler := newTestHandler(newTestDeps())

	for _, target := range []string{
		"/api/v1/stats/overview",
		"/api/v1/stats/conditions",
		"/api/v1/stats/tiers",
		"/api/v1/stats/recent",
	} {
		rec := doRequest(t, handler, http.MethodGet, target, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, target)
	}
}

func Test_FixPublisherTiers_RouteDoesNotExist(t *testing.T) {
	// The tier fix-up once lived at this path without any authentication.
	// It must stay gone: tier recalculation is CLI-only now.
	handler := newTestHandler(newTestDeps())

	for _, method := range []string{http.MethodGet, http.MethodPost} {
		for _, target := range []string{"/fix-publisher-tiers", "/api/v1/fix-publisher-tiers"} {
			rec := doRequest(t, handler, method, target, "", nil)
			assert.Equal(t, http.StatusNotFound, rec.Code, method+" "+target)

			rec = doRequest(t, handler, method, target, validToken, nil)
			assert.Equal(t, http.StatusNotFound, rec.Code, method+" "+target+" authenticated")
		}
	}
}

func Test_Login_Succeeds(t *testing.T) {
	// setup
	deps := newTestDeps()
	expires := time.Date(2026, 3, 8, 12, 0, 0, 0, time.UTC)
	deps.auth.loginFunc = func(_ context.Context, email, password string) (domain.Session, error) {
		if email == "edith@example.com" && password == "correct horse" {
			return domain.Session{Token: "fresh-token", ExpiresAt: expires}, nil
		}
		return domain.Session{}, auth.ErrInvalidCredentials
	}
	handler := newTestHandler(deps)

	// act
	rec := doRequest(t, handler, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "edith@example.com",
		"password": "correct horse",
	})

	// assert
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"token":"fresh-token","expires_at":"2026-03-08T12:00:00Z"}`, rec.Body.String())
}

func Test_Login_WrongCredentials(t *testing.T) {
	handler := newTestHandler(newTestDeps())

	rec := doRequest(t, handler, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "edith@example.com",
		"password": "battery staple",
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func Test_Login_Throttled(t *testing.T) {
	// setup: burst of 1, so the second attempt from the same address is throttled
	deps := newTestDeps()
	deps.limiter = auth.NewLoginLimiter(0.001, 1)
	handler := newTestHandler(deps)

	body := map[string]string{"email": "edith@example.com", "password": "pw"}

	// act
	first := doRequest(t, handler, http.MethodPost, "/api/v1/auth/login", "", body)
	second := doRequest(t, handler, http.MethodPost, "/api/v1/auth/login", "", body)

	// assert
	assert.Equal(t, http.StatusUnauthorized, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}

func Test_Logout_Succeeds(t *testing.T) {
	handler := newTestHandler(newTestDeps())

	rec := doRequest(t, handler, http.MethodPost, "/api/v1/auth/logout", validToken, nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func Test_CreateBook_ZeroPurchasePriceSurvives(t *testing.T) {
	// setup
	deps := newTestDeps()
	deps.books.insertFunc = func(_ context.Context, book domain.Book) (domain.Book, error) {
		book.ID = uuid.New()
		book.Version = 1
		return book, nil
	}
	handler := newTestHandler(deps)

	// act: a gifted copy recorded at zero cost
	rec := doRequest(t, handler, http.MethodPost, "/api/v1/books", validToken, map[string]any{
		"title":                "Wuthering Heights",
		"author":               "Emily Bronte",
		"purchase_price_cents": 0,
	})

	// assert: the zero is a recorded value, not an omitted one
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		PurchasePriceCents *int64 `json:"purchase_price_cents"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotNil(t, created.PurchasePriceCents)
	assert.Equal(t, int64(0), *created.PurchasePriceCents)
}

func Test_CreateBook_OmittedOptionalsStayAbsent(t *testing.T) {
	// setup
	deps := newTestDeps()
	var inserted domain.Book
	deps.books.insertFunc = func(_ context.Context, book domain.Book) (domain.Book, error) {
		inserted = book
		book.ID = uuid.New()
		return book, nil
	}
	handler := newTestHandler(deps)

	// act
	rec := doRequest(t, handler, http.MethodPost, "/api/v1/books", validToken, map[string]any{
		"title":  "Wuthering Heights",
		"author": "Emily Bronte",
	})

	// assert
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Nil(t, inserted.PurchasePriceCents)
	assert.Nil(t, inserted.Condition)
	assert.Nil(t, inserted.Edition)
	assert.NotContains(t, rec.Body.String(), "purchase_price_cents")
}

func Test_CreateBook_ValidationFailures(t *testing.T) {
	deps := newTestDeps()
	deps.books.insertFunc = func(_ context.Context, book domain.Book) (domain.Book, error) {
		if err := book.Validate(); err != nil {
			return domain.Book{}, err
		}
		return book, nil
	}
	handler := newTestHandler(deps)

	tests := []struct {
		name string
		body map[string]any
	}{
		{name: "blank_title", body: map[string]any{"title": " ", "author": "Emily Bronte"}},
		{name: "blank_author", body: map[string]any{"title": "Wuthering Heights", "author": ""}},
		{name: "negative_price", body: map[string]any{"title": "Wuthering Heights", "author": "Emily Bronte", "purchase_price_cents": -100}},
		{name: "unknown_condition", body: map[string]any{"title": "Wuthering Heights", "author": "Emily Bronte", "condition": "pristine"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, handler, http.MethodPost, "/api/v1/books", validToken, tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func Test_GetBook_NotFound(t *testing.T) {
	handler := newTestHandler(newTestDeps())

	rec := doRequest(t, handler, http.MethodGet, "/api/v1/books/"+uuid.NewString(), validToken, nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func Test_GetBook_InvalidID(t *testing.T) {
	handler := newTestHandler(newTestDeps())

	rec := doRequest(t, handler, http.MethodGet, "/api/v1/books/not-a-uuid", validToken, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func Test_ListBooks_InvalidConditionFilter(t *testing.T) {
	handler := newTestHandler(newTestDeps())

	rec := doRequest(t, handler, http.MethodGet, "/api/v1/books?condition=pristine", validToken, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func Test_ListBooks_FilterReachesStorage(t *testing.T) {
	// setup
	deps := newTestDeps()
	var seen bookstore.BookFilter
	deps.books.listFunc = func(_ context.Context, filter bookstore.BookFilter) (domain.Books, error) {
		seen = filter
		return domain.Books{}, nil
	}
	handler := newTestHandler(deps)

	// act
	rec := doRequest(t, handler, http.MethodGet, "/api/v1/books?q=dickens&condition=fine&limit=5&offset=10", validToken, nil)

	// assert
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "dickens", seen.Search())
	if assert.NotNil(t, seen.Condition()) {
		assert.Equal(t, domain.ConditionFine, *seen.Condition())
	}
	assert.Equal(t, uint(5), seen.Limit())
	assert.Equal(t, uint(10), seen.Offset())
}

func Test_UpdateBook_PinnedVersionConflict(t *testing.T) {
	// setup: a pinned version that lost the race is a client-visible conflict
	deps := newTestDeps()
	updateCalls := 0
	deps.books.updateFunc = func(_ context.Context, _ domain.Book) (domain.Book, error) {
		updateCalls++
		return domain.Book{}, bookstore.ErrConcurrencyConflict
	}
	handler := newTestHandler(deps)

	// act
	rec := doRequest(t, handler, http.MethodPut, "/api/v1/books/"+uuid.NewString(), validToken, map[string]any{
		"title":   "Wuthering Heights",
		"author":  "Emily Bronte",
		"version": 3,
	})

	// assert: no retry for pinned versions
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, 1, updateCalls)
}

func Test_UpdateBook_UnpinnedVersionAbsorbsRace(t *testing.T) {
	// setup: the first write loses a race, the retry resolves the new version
	deps := newTestDeps()
	bookID := uuid.New()
	currentVersion := uint(3)
	updateCalls := 0

	deps.books.byIDFunc = func(_ context.Context, id uuid.UUID) (domain.Book, error) {
		return domain.Book{ID: id, Title: "Wuthering Heights", Author: "Emily Bronte", Version: currentVersion}, nil
	}
	deps.books.updateFunc = func(_ context.Context, book domain.Book) (domain.Book, error) {
		updateCalls++
		if updateCalls == 1 {
			currentVersion = 4
			return domain.Book{}, bookstore.ErrConcurrencyConflict
		}
		book.Version++
		return book, nil
	}
	handler := newTestHandler(deps)

	// act
	rec := doRequest(t, handler, http.MethodPut, "/api/v1/books/"+bookID.String(), validToken, map[string]any{
		"title":  "Wuthering Heights",
		"author": "Emily Bronte",
	})

	// assert
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, updateCalls)

	var updated domain.Book
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, uint(5), updated.Version)
}

func Test_DeleteBook_Succeeds(t *testing.T) {
	deps := newTestDeps()
	deps.books.deleteFunc = func(_ context.Context, _ uuid.UUID) error { return nil }
	handler := newTestHandler(deps)

	rec := doRequest(t, handler, http.MethodDelete, "/api/v1/books/"+uuid.NewString(), validToken, nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func Test_CreatePublisher_StartsUnranked(t *testing.T) {
	// setup
	deps := newTestDeps()
	handler := newTestHandler(deps)

	// act: the payload cannot smuggle in a tier
	rec := doRequest(t, handler, http.MethodPost, "/api/v1/publishers", validToken, map[string]any{
		"name": "Chapman & Hall",
		"tier": 1,
	})

	// assert
	require.Equal(t, http.StatusCreated, rec.Code)

	var created domain.Publisher
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "Chapman & Hall", created.Name)
	assert.Equal(t, domain.TierUnranked, created.Tier)
}

func Test_CreatePublisher_DuplicateNameConflicts(t *testing.T) {
	// setup
	deps := newTestDeps()
	deps.publishers.insertFunc = func(_ context.Context, _ domain.Publisher) (domain.Publisher, error) {
		return domain.Publisher{}, bookstore.ErrPublisherExists
	}
	handler := newTestHandler(deps)

	// act
	rec := doRequest(t, handler, http.MethodPost, "/api/v1/publishers", validToken, map[string]any{"name": "Chapman & Hall"})

	// assert
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func Test_CreatePublisher_BlankNameRejected(t *testing.T) {
	handler := newTestHandler(newTestDeps())

	rec := doRequest(t, handler, http.MethodPost, "/api/v1/publishers", validToken, map[string]any{"name": "  "})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func Test_GetPublisher_NotFound(t *testing.T) {
	handler := newTestHandler(newTestDeps())

	rec := doRequest(t, handler, http.MethodGet, "/api/v1/publishers/"+uuid.NewString(), validToken, nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func Test_StatsOverview_ReturnsAggregates(t *testing.T) {
	// setup
	deps := newTestDeps()
	deps.stats.overviewFunc = func(_ context.Context) (stats.Overview, error) {
		return stats.Overview{BookCount: 42, PublisherCount: 7, BooksPriced: 40, BooksUnpriced: 2}, nil
	}
	handler := newTestHandler(deps)

	// act
	rec := doRequest(t, handler, http.MethodGet, "/api/v1/stats/overview", validToken, nil)

	// assert
	assert.Equal(t, http.StatusOK, rec.Code)

	var overview stats.Overview
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &overview))
	assert.Equal(t, int64(42), overview.BookCount)
	assert.Equal(t, int64(7), overview.PublisherCount)
}

func Test_StatsRecent_LimitHandling(t *testing.T) {
	// setup
	deps := newTestDeps()
	var seenLimit uint
	deps.stats.recentFunc = func(_ context.Context, limit uint) (domain.Books, error) {
		seenLimit = limit
		return domain.Books{}, nil
	}
	handler := newTestHandler(deps)

	// act + assert: explicit limit
	rec := doRequest(t, handler, http.MethodGet, "/api/v1/stats/recent?limit=3", validToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint(3), seenLimit)

	// act + assert: default limit
	rec = doRequest(t, handler, http.MethodGet, "/api/v1/stats/recent", validToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint(10), seenLimit)

	// act + assert: garbage limit
	rec = doRequest(t, handler, http.MethodGet, "/api/v1/stats/recent?limit=soon", validToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func Test_PanicInHandler_Returns500(t *testing.T) {
	// setup
	deps := newTestDeps()
	deps.books.listFunc = func(_ context.Context, _ bookstore.BookFilter) (domain.Books, error) {
		panic("boom")
	}
	handler := newTestHandler(deps)

	// act
	rec := doRequest(t, handler, http.MethodGet, "/api/v1/books", validToken, nil)

	// assert
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
