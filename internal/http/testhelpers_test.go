package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/library/internal/database"
	"github.com/mrlokans/library/internal/database/books"
	"github.com/mrlokans/library/internal/entities"
	"github.com/mrlokans/library/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testApp struct {
	db      *database.Database
	repo    *books.Repository
	catalog *services.CatalogService
	handler http.Handler
}

// setupTestApp builds the full handler over a throw-away sqlite file.
// configure may adjust the RouterConfig before the router is built.
func setupTestApp(t *testing.T, configure func(*RouterConfig)) *testApp {
	t.Helper()

	dbPath := "./test_http_" + strings.NewReplacer("/", "_", " ", "_").Replace(t.Name()) + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close()
		os.Remove(dbPath)
	})

	repo := books.NewRepository(db.DB)
	catalog := services.NewCatalogService(repo, nil)

	cfg := RouterConfig{
		Catalog:  catalog,
		Database: db,
		Version:  "test",
	}
	if configure != nil {
		configure(&cfg)
	}

	return &testApp{
		db:      db,
		repo:    repo,
		catalog: catalog,
		handler: NewHandler(cfg),
	}
}

func (a *testApp) seed(t *testing.T, list ...entities.Book) []entities.Book {
	t.Helper()
	require.NoError(t, a.repo.CreateBatch(t.Context(), list))
	all, err := a.repo.All(t.Context())
	require.NoError(t, err)
	return all
}

func (a *testApp) get(path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	a.handler.ServeHTTP(w, req)
	return w
}

func (a *testApp) postForm(path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	a.handler.ServeHTTP(w, req)
	return w
}

func (a *testApp) do(method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	a.handler.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func formValues(title, author, genre, year string) url.Values {
	return url.Values{
		"title":  {title},
		"author": {author},
		"genre":  {genre},
		"year":   {year},
	}
}
