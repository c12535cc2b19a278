package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/skovorodin/mini_shop/internal/models"
	"github.com/skovorodin/mini_shop/internal/session"
)

func TestRegister(t *testing.T) {
	env := newTestEnv(t)

	payload := map[string]string{"username": "test_user", "password": "password"}
	rec, c := env.doJSONRequest(http.MethodPost, "/register", payload)

	require.NoError(t, env.A.Register(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "user registered", resp["message"])

	var user models.User
	require.NoError(t, env.DB.Where("username = ?", "test_user").First(&user).Error)
	require.NotEmpty(t, user.ID)
	require.NotEqual(t, "password", user.PasswordHash)
}

func TestRegisterMissingFields(t *testing.T) {
	env := newTestEnv(t)

	for _, payload := range []map[string]string{
		{"username": "test_user"},
		{"password": "password"},
		{},
	} {
		_, c := env.doJSONRequest(http.MethodPost, "/register", payload)
		requireHTTPError(t, env.A.Register(c), http.StatusBadRequest)
	}

	var count int64
	env.DB.Model(&models.User{}).Count(&count)
	require.Zero(t, count)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	env := newTestEnv(t)

	payload := map[string]string{"username": "test_user", "password": "password"}

	rec, c := env.doJSONRequest(http.MethodPost, "/register", payload)
	require.NoError(t, env.A.Register(c))
	require.Equal(t, http.StatusOK, rec.Code)

	_, cDup := env.doJSONRequest(http.MethodPost, "/register", payload)
	he := requireHTTPError(t, env.A.Register(cDup), http.StatusBadRequest)
	require.Equal(t, "user already exists", he.Message)

	var count int64
	env.DB.Model(&models.User{}).Where("username = ?", "test_user").Count(&count)
	require.Equal(t, int64(1), count)
}

func TestLoginInvalidCredentials(t *testing.T) {
	env := newTestEnv(t)

	regPayload := map[string]string{"username": "test_user", "password": "password"}
	_, cReg := env.doJSONRequest(http.MethodPost, "/register", regPayload)
	require.NoError(t, env.A.Register(cReg))

	// wrong password and unknown user must be indistinguishable
	var messages []interface{}
	for _, payload := range []map[string]string{
		{"username": "test_user", "password": "wrong"},
		{"username": "nobody", "password": "password"},
	} {
		rec, c := env.doJSONRequest(http.MethodPost, "/login", payload)
		he := requireHTTPError(t, env.A.Login(c), http.StatusUnauthorized)
		messages = append(messages, he.Message)
		require.Empty(t, rec.Result().Cookies(), "failed login must not set a session cookie")
	}
	require.Equal(t, messages[0], messages[1])
}

func TestLoginMissingFields(t *testing.T) {
	env := newTestEnv(t)

	_, c := env.doJSONRequest(http.MethodPost, "/login", map[string]string{"username": "x"})
	requireHTTPError(t, env.A.Login(c), http.StatusBadRequest)
}

func TestLoginCreatesSession(t *testing.T) {
	env := newTestEnv(t)

	userID, ck := login(t, env, "test_user")
	require.NotZero(t, userID)
	require.NotEmpty(t, ck.Value)

	resolved, err := env.Sessions.Resolve(t.Context(), ck.Value)
	require.NoError(t, err)
	require.Equal(t, userID, resolved)
}

func TestLoginCookieSecureFlag(t *testing.T) {
	env := newTestEnv(t)

	regPayload := map[string]string{"username": "test_user", "password": "password"}
	_, cReg := env.doJSONRequest(http.MethodPost, "/register", regPayload)
	require.NoError(t, env.A.Register(cReg))

	// plain-HTTP default: the session cookie must not be https-only
	rec, c := env.doJSONRequest(http.MethodPost, "/login", regPayload)
	require.NoError(t, env.A.Login(c))
	ck := rec.Result().Cookies()[0]
	require.Equal(t, session.CookieName, ck.Name)
	require.False(t, ck.Secure)
	require.True(t, ck.HttpOnly)

	env.A.SecureCookie = true
	recSec, cSec := env.doJSONRequest(http.MethodPost, "/login", regPayload)
	require.NoError(t, env.A.Login(cSec))
	require.True(t, recSec.Result().Cookies()[0].Secure)
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)

	_, ck := login(t, env, "test_user")

	rec, c := env.doJSONRequest(http.MethodPost, "/logout", nil, ck)
	require.NoError(t, env.A.Logout(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "logged out", resp["message"])

	_, err := env.Sessions.Resolve(t.Context(), ck.Value)
	require.ErrorIs(t, err, session.ErrNotFound)
}

func TestRequireLoginRejectsWithoutSession(t *testing.T) {
	env := newTestEnv(t)

	h := env.Guard.RequireLogin(env.C.GetCart)

	_, c := env.doJSONRequest(http.MethodGet, "/api/cart", nil)
	requireHTTPError(t, h(c), http.StatusUnauthorized)

	_, cBad := env.doJSONRequest(http.MethodGet, "/api/cart", nil, &http.Cookie{Name: session.CookieName, Value: "garbage"})
	requireHTTPError(t, h(cBad), http.StatusUnauthorized)
}

func TestRequireLoginSetsUserContext(t *testing.T) {
	env := newTestEnv(t)

	userID, ck := login(t, env, "test_user")

	h := env.Guard.RequireLogin(env.C.GetCart)
	rec, c := env.doJSONRequest(http.MethodGet, "/api/cart", nil, ck)
	require.NoError(t, h(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, userID, c.Get("userID"))
}
