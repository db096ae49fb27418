package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/library/internal/auth"
	"github.com/mrlokans/library/internal/config"
	"github.com/mrlokans/library/internal/credentials"
	"github.com/mrlokans/library/internal/database"
	"github.com/mrlokans/library/internal/database/books"
	"github.com/mrlokans/library/internal/database/tokens"
	"github.com/mrlokans/library/internal/database/users"
	apphttp "github.com/mrlokans/library/internal/http"
	"github.com/mrlokans/library/internal/library"
)

func setupAPI(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "library.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	authService := auth.NewService(
		users.NewRepository(db.DB),
		tokens.NewRepository(db.DB),
		auth.NewTokenManager("test-secret", "library", time.Hour),
		config.Auth{BcryptCost: 4},
	)
	router, controller := apphttp.NewRouter(apphttp.RouterConfig{
		Database:    db,
		Books:       library.NewService(books.NewRepository(db.DB)),
		AuthService: authService,
	})
	t.Cleanup(controller.Stop)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func newLoggedInClient(t *testing.T, baseURL, username string) (*Client, *credentials.MemoryStore) {
	t.Helper()
	store := credentials.NewMemoryStore("")
	c, err := New(baseURL, WithCredentials(store))
	require.NoError(t, err)

	ctx := context.Background()
	_, err = c.Auth().Register(ctx, username, "password123")
	require.NoError(t, err)
	_, err = c.Auth().Login(ctx, username, "password123")
	require.NoError(t, err)
	return c, store
}

func sampleForm() library.BookForm {
	return library.BookForm{
		Name:        "Dune",
		ISBN:        "9780441013593",
		Description: "Desert planet",
		PageCount:   412,
		Author:      "Frank Herbert",
	}
}

func TestNew_DefaultHTTPClientHasNoTimeout(t *testing.T) {
	c, err := New("http://localhost:8188")
	require.NoError(t, err)
	assert.Zero(t, c.httpClient.Timeout)
}

func TestNew_RejectsInvalidBaseURL(t *testing.T) {
	for _, raw := range []string{"", "localhost:8188", "://nope"} {
		_, err := New(raw)
		assert.Error(t, err, raw)
	}

	c, err := New("http://localhost:8188/")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8188", c.baseURL.String())
}

func TestClient_RoundTrip(t *testing.T) {
	srv := setupAPI(t)
	c, store := newLoggedInClient(t, srv.URL, "reader")
	ctx := context.Background()

	token, err := store.Token(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	user, err := c.Auth().CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, "reader", user.Username)

	all, err := c.Books().GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.NotNil(t, all)

	created, err := c.Books().Create(ctx, sampleForm())
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, user.ID, created.UserID)

	fetched, err := c.Books().GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Frank Herbert", fetched.Author)

	form := sampleForm()
	form.Name = "Dune Messiah"
	form.PageCount = 256
	updated, err := c.Books().Update(ctx, created.ID, form)
	require.NoError(t, err)
	assert.Equal(t, "Dune Messiah", updated.Name)
	assert.Equal(t, 256, updated.PageCount)
	assert.True(t, updated.CreatedAt.Equal(created.CreatedAt))

	pages := 300
	patched, err := c.Books().Patch(ctx, created.ID, library.BookChanges{PageCount: &pages})
	require.NoError(t, err)
	assert.Equal(t, 300, patched.PageCount)
	assert.Equal(t, "Dune Messiah", patched.Name)

	all, err = c.Books().GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	msg, err := c.Books().Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Book deleted successfully", msg)

	_, err = c.Books().GetByID(ctx, created.ID)
	assert.True(t, IsNotFound(err))
}

func TestClient_ErrorsCarryServerMessage(t *testing.T) {
	srv := setupAPI(t)
	c, _ := newLoggedInClient(t, srv.URL, "reader")
	ctx := context.Background()

	form := sampleForm()
	form.PageCount = 0
	_, err := c.Books().Create(ctx, form)
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Page count must be at least 1", apiErr.Message)

	_, err = c.Books().GetByID(ctx, 12345)
	assert.True(t, IsNotFound(err))
	assert.EqualError(t, err, "Book not found")
}

func TestClient_WithoutCredentialIsUnauthorized(t *testing.T) {
	srv := setupAPI(t)

	c, err := New(srv.URL)
	require.NoError(t, err)

	_, err = c.Books().GetAll(context.Background())
	assert.True(t, IsUnauthorized(err))
	assert.False(t, IsNotFound(err))
}

func TestClient_OwnershipIsolation(t *testing.T) {
	srv := setupAPI(t)
	alice, _ := newLoggedInClient(t, srv.URL, "alice")
	bob, _ := newLoggedInClient(t, srv.URL, "bob")
	ctx := context.Background()

	book, err := alice.Books().Create(ctx, sampleForm())
	require.NoError(t, err)

	_, err = bob.Books().GetByID(ctx, book.ID)
	assert.True(t, IsNotFound(err))

	_, err = bob.Books().Delete(ctx, book.ID)
	assert.True(t, IsNotFound(err))

	list, err := bob.Books().GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestAuth_LoginFailureLeavesSlotEmpty(t *testing.T) {
	srv := setupAPI(t)
	store := credentials.NewMemoryStore("")
	c, err := New(srv.URL, WithCredentials(store))
	require.NoError(t, err)
	ctx := context.Background()

	_, err = c.Auth().Register(ctx, "reader", "password123")
	require.NoError(t, err)

	_, err = c.Auth().Login(ctx, "reader", "wrong-password")
	assert.True(t, IsUnauthorized(err))

	token, err := store.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestAuth_LogoutRevokesAndClears(t *testing.T) {
	srv := setupAPI(t)
	c, store := newLoggedInClient(t, srv.URL, "reader")
	ctx := context.Background()

	token, err := store.Token(ctx)
	require.NoError(t, err)

	require.NoError(t, c.Auth().Logout(ctx))

	remaining, err := store.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, remaining)

	// The old token no longer works even if replayed.
	replay, err := New(srv.URL, WithCredentials(credentials.NewMemoryStore(token)))
	require.NoError(t, err)
	_, err = replay.Books().GetAll(ctx)
	assert.True(t, IsUnauthorized(err))

	// Logging out again is a no-op.
	assert.NoError(t, c.Auth().Logout(ctx))
}

func TestAuth_LogoutClearsRejectedToken(t *testing.T) {
	srv := setupAPI(t)
	store := credentials.NewMemoryStore("stale-token")
	c, err := New(srv.URL, WithCredentials(store))
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, c.Auth().Logout(ctx))

	token, err := store.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestClient_NonJSONErrorUsesStatusText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	_, err = c.Books().GetAll(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "Bad Gateway", apiErr.Message)
}

func TestClient_SendsBearerHeader(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c, err := New(srv.URL, WithCredentials(credentials.NewMemoryStore("abc")), WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	_, err = c.Books().GetAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc", got)
}
