package http

import (
	"context"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/library/internal/analytics"
	"github.com/mrlokans/library/internal/config"
	"github.com/mrlokans/library/internal/demo"
	"github.com/mrlokans/library/internal/entities"
	"github.com/mrlokans/library/internal/security"
)

var csrfValuePattern = regexp.MustCompile(`name="gorilla.csrf.Token" value="([^"]+)"`)

func TestRouter_FlashAfterCreate(t *testing.T) {
	sessions := security.NewSessionManager(security.NewMemoryStore(), config.Security{SessionLifetime: time.Hour}, nil)
	app := setupTestApp(t, func(cfg *RouterConfig) {
		cfg.Sessions = sessions
	})

	w := app.postForm("/books", formValues("Dune", "Frank Herbert", "", ""))
	require.Equal(t, http.StatusSeeOther, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	page := app.get("/books/page/1", cookies...)
	assert.Contains(t, page.Body.String(), `<p class="flash">Book created</p>`)

	again := app.get("/books/page/1", cookies...)
	assert.NotContains(t, again.Body.String(), `class="flash"`)
}

func TestRouter_CSRF(t *testing.T) {
	app := setupTestApp(t, func(cfg *RouterConfig) {
		cfg.CSRFSecret = []byte("0123456789abcdef0123456789abcdef")
	})

	t.Run("POST without token is rejected", func(t *testing.T) {
		w := app.postForm("/books", formValues("Dune", "Frank Herbert", "", ""))
		assert.Equal(t, http.StatusForbidden, w.Code)

		count, err := app.repo.Count(context.Background())
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("token from the form is accepted", func(t *testing.T) {
		form := app.get("/books/new")
		require.Equal(t, http.StatusOK, form.Code)
		match := csrfValuePattern.FindStringSubmatch(form.Body.String())
		require.Len(t, match, 2, "form should carry the csrf field")

		values := formValues("Dune", "Frank Herbert", "", "")
		values.Set(security.CSRFFieldName, match[1])
		w := app.postForm("/books", values, form.Result().Cookies()...)
		assert.Equal(t, http.StatusSeeOther, w.Code)
	})

	t.Run("delete override keeps the token readable", func(t *testing.T) {
		stored := app.seed(t, entities.Book{Title: "Emma", Author: "Jane Austen"})
		var id uint
		for _, b := range stored {
			if b.Title == "Emma" {
				id = b.ID
			}
		}
		path := "/books/" + strconvU(id)

		confirm := app.get(path + "/delete")
		require.Equal(t, http.StatusOK, confirm.Code)
		match := csrfValuePattern.FindStringSubmatch(confirm.Body.String())
		require.Len(t, match, 2)

		values := url.Values{"_method": {"DELETE"}, security.CSRFFieldName: {match[1]}}
		w := app.postForm(path, values, confirm.Result().Cookies()...)
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, http.StatusNotFound, app.get(path).Code)
	})
}

func TestRouter_DemoMode(t *testing.T) {
	app := setupTestApp(t, func(cfg *RouterConfig) {
		cfg.DemoMiddleware = demo.NewMiddleware(true)
	})
	app.seed(t, entities.Book{Title: "Emma", Author: "Jane Austen"})

	list := app.get("/books/page/1")
	assert.Equal(t, http.StatusOK, list.Code)
	assert.Contains(t, list.Body.String(), "demo-banner")

	assert.Equal(t, http.StatusForbidden, app.postForm("/books", formValues("X", "Y", "", "")).Code)
	assert.Equal(t, http.StatusForbidden, app.do(http.MethodDelete, "/books/1").Code)

	search := app.postForm("/books/search", url.Values{"searchTerm": {"Emma"}})
	assert.Equal(t, http.StatusOK, search.Code)
	assert.Contains(t, search.Body.String(), "Emma")
}

type fakeExports struct {
	mu   sync.Mutex
	dirs []string
}

func (f *fakeExports) EnqueueExport(_ context.Context, dir string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dirs = append(f.dirs, dir)
	return "task-42", nil
}

func TestRouter_Export(t *testing.T) {
	exports := &fakeExports{}
	app := setupTestApp(t, func(cfg *RouterConfig) {
		cfg.Exports = exports
		cfg.ExportDir = "/var/lib/library/exports"
	})

	list := app.get("/books/page/1")
	assert.Contains(t, list.Body.String(), `action="/books/export"`)

	w := app.postForm("/books/export", url.Values{})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/books/page/1", w.Header().Get("Location"))
	assert.Equal(t, []string{"/var/lib/library/exports"}, exports.dirs)
}

func TestRouter_ExportButtonHiddenWithoutQueue(t *testing.T) {
	app := setupTestApp(t, nil)
	assert.NotContains(t, app.get("/books/page/1").Body.String(), `action="/books/export"`)
}

func TestRouter_Metrics(t *testing.T) {
	metrics := NewMetrics()
	app := setupTestApp(t, func(cfg *RouterConfig) {
		cfg.Metrics = metrics
	})

	require.Equal(t, http.StatusOK, app.get("/books/page/1").Code)
	require.Equal(t, http.StatusSeeOther, app.postForm("/books", formValues("Dune", "Frank Herbert", "", "")).Code)

	w := app.get("/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()

	assert.Contains(t, body, `library_http_requests_total{method="GET",route="/books/page/:pageNumber",status="200"} 1`)
	assert.Contains(t, body, `library_books_mutations_total{operation="create"} 1`)
	assert.Contains(t, body, "library_http_request_duration_seconds_bucket")
	assert.True(t, strings.Contains(body, "go_goroutines"))
}

func TestRouter_MetricsDisabled(t *testing.T) {
	app := setupTestApp(t, nil)
	assert.Equal(t, http.StatusNotFound, app.get("/metrics").Code)
}

func TestRouter_WriteRateLimit(t *testing.T) {
	limiter := security.NewRateLimiter(security.RateLimitConfig{MaxWrites: 2, WindowDuration: time.Hour})
	t.Cleanup(limiter.Stop)

	app := setupTestApp(t, func(cfg *RouterConfig) {
		cfg.WriteLimiter = limiter
	})

	assert.Equal(t, http.StatusSeeOther, app.postForm("/books", formValues("One", "A", "", "")).Code)
	assert.Equal(t, http.StatusSeeOther, app.postForm("/books", formValues("Two", "B", "", "")).Code)

	w := app.postForm("/books", formValues("Three", "C", "", ""))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	// Browsing and searching stay available.
	assert.Equal(t, http.StatusOK, app.get("/books/page/1").Code)
	assert.Equal(t, http.StatusOK, app.postForm("/books/search", url.Values{"searchTerm": {"One"}}).Code)

	total, err := app.repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}

func TestRouter_PlausibleScript(t *testing.T) {
	app := setupTestApp(t, func(cfg *RouterConfig) {
		cfg.Analytics = analytics.FromConfig(config.Plausible{
			Domain:    "library.example.org",
			ScriptURL: "https://stats.example.org/js/script.js",
		})
	})

	w := app.get("/books/page/1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `<script defer data-domain="library.example.org" src="https://stats.example.org/js/script.js"></script>`)
	assert.Contains(t, w.Header().Get("Content-Security-Policy"), "script-src 'self' https://stats.example.org")

	plain := setupTestApp(t, nil)
	w = plain.get("/books/page/1")
	assert.NotContains(t, w.Body.String(), "data-domain")
}
