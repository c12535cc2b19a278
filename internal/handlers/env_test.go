package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	appdb "github.com/skovorodin/mini_shop/internal/db"
	"github.com/skovorodin/mini_shop/internal/handlers"
	"github.com/skovorodin/mini_shop/internal/middleware/auth"
	"github.com/skovorodin/mini_shop/internal/session"
)

type testEnv struct {
	T        *testing.T
	E        *echo.Echo
	DB       *gorm.DB
	Sessions *session.Manager
	Guard    *auth.SessionGuard
	A        *handlers.AuthHandler
	P        *handlers.ProductHandler
	C        *handlers.CartHandler
}

func newTestEnv(t *testing.T) *testEnv {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// one connection, one in-memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, appdb.Migrate(db))

	sessions := session.NewManager([]byte("test-secret"), time.Hour, session.NewMemoryStore())

	env := &testEnv{
		T:        t,
		E:        echo.New(),
		DB:       db,
		Sessions: sessions,
		Guard:    &auth.SessionGuard{DB: db, Sessions: sessions},
		A:        &handlers.AuthHandler{DB: db, Sessions: sessions},
		P:        &handlers.ProductHandler{DB: db},
		C:        &handlers.CartHandler{DB: db},
	}

	return env
}

func (env *testEnv) doJSONRequest(method, path string, body interface{}, cookies ...*http.Cookie) (*httptest.ResponseRecorder, echo.Context) {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c := env.E.NewContext(req, rec)
	return rec, c
}

// login registers a fresh user through the handlers and returns its id plus
// the session cookie the login response set.
func login(t *testing.T, env *testEnv, username string) (uint, *http.Cookie) {
	payload := map[string]string{"username": username, "password": "password"}

	recReg, cReg := env.doJSONRequest(http.MethodPost, "/register", payload)
	require.NoError(t, env.A.Register(cReg))
	require.Equal(t, http.StatusOK, recReg.Code)

	recLogin, cLogin := env.doJSONRequest(http.MethodPost, "/login", payload)
	require.NoError(t, env.A.Login(cLogin))
	require.Equal(t, http.StatusOK, recLogin.Code)

	var ck *http.Cookie
	for _, cookie := range recLogin.Result().Cookies() {
		if cookie.Name == session.CookieName {
			ck = cookie
		}
	}
	require.NotNil(t, ck, "login must set the session cookie")

	userID, err := env.Sessions.Resolve(cLogin.Request().Context(), ck.Value)
	require.NoError(t, err)

	return userID, ck
}

func requireHTTPError(t *testing.T, err error, code int) *echo.HTTPError {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError, got %v", err)
	require.Equal(t, code, he.Code)
	return he
}
