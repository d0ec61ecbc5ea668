package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/bookshelf/internal/auth"
	"github.com/openshelf/bookshelf/internal/books"
	"github.com/openshelf/bookshelf/internal/config"
	"github.com/openshelf/bookshelf/internal/covers"
	"github.com/openshelf/bookshelf/internal/database"
	"github.com/openshelf/bookshelf/internal/database/catalog"
	"github.com/openshelf/bookshelf/internal/database/readinglists"
	"github.com/openshelf/bookshelf/internal/database/users"
	"github.com/openshelf/bookshelf/internal/entities"
)

const testPassword = "Sup3r-Secret"

// setupTestApp builds the full router against a throwaway database.
func setupTestApp(t *testing.T) (*gin.Engine, *database.Database, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbPath := "./test_http_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	coverStore, err := covers.NewDiskStore(t.TempDir())
	require.NoError(t, err)

	authCfg := config.Auth{
		JWTSecret:       "test-secret",
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: 24 * time.Hour,
		BcryptCost:      4,
	}
	catalogRepo := catalog.NewRepository(db.DB)

	router := NewRouter(RouterConfig{
		Database:     db,
		AuthService:  auth.NewService(users.NewRepository(db.DB), authCfg),
		BooksService: books.NewService(catalogRepo, coverStore),
		ListsRepo:    readinglists.NewRepository(db.DB),
		CatalogRepo:  catalogRepo,
		JWTSecret:    []byte(authCfg.JWTSecret),
		CoversDir:    coverStore.Dir(),
	})

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return router, db, cleanup
}

// doJSON performs a JSON request, optionally authenticated.
func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(data)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// decodeBody unmarshals a JSON response body.
func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

// registerAndLogin creates a user through the API and returns an access token.
func registerAndLogin(t *testing.T, router *gin.Engine, username string) string {
	t.Helper()

	w := doJSON(t, router, "POST", "/api/auth/register", "", gin.H{
		"username": username,
		"email":    strings.ReplaceAll(username, " ", ".") + "@example.com",
		"password": testPassword,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, router, "POST", "/api/auth/login", "", gin.H{
		"username": username,
		"password": testPassword,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	token, ok := decodeBody(t, w)["access"].(string)
	require.True(t, ok, "login response missing access token")
	return token
}

// seedBook inserts a book directly, bypassing the upload endpoint.
func seedBook(t *testing.T, db *database.Database, title string) *entities.Book {
	t.Helper()

	author := entities.User{Username: "seed author", Email: "seed@example.com"}
	db.DB.Where("username = ?", author.Username).FirstOrCreate(&author)

	genre := entities.Genre{Name: "Fiction"}
	db.DB.Where("name = ?", genre.Name).FirstOrCreate(&genre)

	book := &entities.Book{
		Title:         title,
		Pages:         100,
		AuthorID:      author.ID,
		GenreID:       genre.ID,
		PublishedDate: time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
		IsAvailable:   true,
		Slug:          books.Slugify(title),
	}
	require.NoError(t, db.DB.Create(book).Error)
	return book
}
