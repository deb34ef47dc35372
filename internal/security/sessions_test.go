package security

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/gin-gonic/gin"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/library/internal/config"
)

var testSecurityConfig = config.Security{
	SessionLifetime: 24 * time.Hour,
	SecureCookies:   false,
}

func newFlashRouter(sm *SessionManager) *gin.Engine {
	router := gin.New()
	router.Use(sm.SessionLoadSave())
	router.POST("/put", func(c *gin.Context) {
		sm.PutFlash(c.Request.Context(), "Book created")
		c.Redirect(http.StatusSeeOther, "/pop")
	})
	router.GET("/pop", func(c *gin.Context) {
		c.String(http.StatusOK, sm.PopFlash(c.Request.Context()))
	})
	return router
}

func exerciseFlash(t *testing.T, store scs.Store) {
	t.Helper()
	sm := NewSessionManager(store, testSecurityConfig, nil)
	router := newFlashRouter(sm)

	putRR := httptest.NewRecorder()
	router.ServeHTTP(putRR, httptest.NewRequest(http.MethodPost, "/put", nil))
	require.Equal(t, http.StatusSeeOther, putRR.Code)

	cookies := putRR.Result().Cookies()
	require.Len(t, cookies, 1, "session cookie should be written before the redirect")
	assert.Equal(t, "library_session", cookies[0].Name)

	pop := func() string {
		req := httptest.NewRequest(http.MethodGet, "/pop", nil)
		req.AddCookie(cookies[0])
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		return rr.Body.String()
	}

	assert.Equal(t, "Book created", pop())
	assert.Empty(t, pop(), "flash is shown once")
}

func TestFlash_MemoryStore(t *testing.T) {
	exerciseFlash(t, NewMemoryStore())
}

func TestFlash_SQLiteStore(t *testing.T) {
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	defer db.Close()

	store, err := NewSQLiteStore(db)
	require.NoError(t, err)

	exerciseFlash(t, store)
}

func TestNewSessionManager_CookieConfig(t *testing.T) {
	cfg := testSecurityConfig
	cfg.SecureCookies = true
	sm := NewSessionManager(NewMemoryStore(), cfg, nil)

	assert.Equal(t, "library_session", sm.Cookie.Name)
	assert.True(t, sm.Cookie.HttpOnly)
	assert.True(t, sm.Cookie.Secure)
	assert.Equal(t, http.SameSiteStrictMode, sm.Cookie.SameSite)
	assert.Equal(t, 24*time.Hour, sm.Lifetime)
	assert.Equal(t, 12*time.Hour, sm.IdleTimeout)
}

func TestSessionLoadSave_NoCookieWhenUntouched(t *testing.T) {
	sm := NewSessionManager(NewMemoryStore(), testSecurityConfig, nil)
	router := newFlashRouter(sm)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/pop", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, rr.Result().Cookies())
}

func TestSessionLoadSave_CommitsBodylessResponse(t *testing.T) {
	sm := NewSessionManager(NewMemoryStore(), testSecurityConfig, nil)
	router := gin.New()
	router.Use(sm.SessionLoadSave())
	router.POST("/touch", func(c *gin.Context) {
		sm.PutFlash(c.Request.Context(), "Book updated")
	})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/touch", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, rr.Result().Cookies(), 1)
	assert.Equal(t, "library_session", rr.Result().Cookies()[0].Name)
}
