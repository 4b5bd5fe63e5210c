package routes

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/mbolis/instaforms/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// registerAndLogin drives the real auth endpoints: register, then Basic
// auth login against the bearer server.
func registerAndLogin(t *testing.T, handler http.Handler, email string) tokenPair {
	t.Helper()

	body := fmt.Sprintf(`{"email":%q,"password":"correct horse"}`, email)
	resp := doJSON(t, handler, "POST", "/api/auth/register", body)
	require.Equal(t, http.StatusCreated, resp.Code)

	req := httptest.NewRequest("POST", "/api/auth/login", nil)
	req.SetBasicAuth(email, "correct horse")
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)

	var tokens tokenPair
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &tokens))
	require.NotEmpty(t, tokens.AccessToken)
	require.NotEmpty(t, tokens.RefreshToken)
	return tokens
}

func doBearerJSON(t *testing.T, handler http.Handler, method, target, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("content-type", "application/json")
	req.Header.Set("authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	return resp
}

func TestOwnerFormFlow(t *testing.T) {
	app := newTestApp(t)
	handler := Wire(app)
	tokens := registerAndLogin(t, handler, "ada@example.com")

	t.Run("anonymous access is rejected", func(t *testing.T) {
		resp := doJSON(t, handler, "GET", "/api/forms", "")
		assert.Equal(t, http.StatusUnauthorized, resp.Code)
		resp = doJSON(t, handler, "POST", "/api/forms", `{"title":"Sneaky"}`)
		assert.Equal(t, http.StatusUnauthorized, resp.Code)
	})

	var form model.Form
	t.Run("create form", func(t *testing.T) {
		body := `{
			"title": "Feedback",
			"fields": [{"label": "Name", "type": "text", "required": true, "order": 1}]
		}`
		resp := doBearerJSON(t, handler, "POST", "/api/forms", tokens.AccessToken, body)
		require.Equal(t, http.StatusCreated, resp.Code)

		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &form))
		require.NotZero(t, form.ID)
		require.Len(t, form.Fields, 1)
		assert.True(t, form.Active)
	})

	t.Run("list owned forms", func(t *testing.T) {
		resp := doBearerJSON(t, handler, "GET", "/api/forms", tokens.AccessToken, "")
		require.Equal(t, http.StatusOK, resp.Code)

		var body struct {
			Forms []model.Form `json:"forms"`
		}
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
		require.Len(t, body.Forms, 1)
		assert.Equal(t, "Feedback", body.Forms[0].Title)
	})

	t.Run("add field", func(t *testing.T) {
		target := fmt.Sprintf("/api/forms/%d/fields", form.ID)
		resp := doBearerJSON(t, handler, "POST", target, tokens.AccessToken,
			`{"label": "Age", "type": "number", "order": 2}`)
		require.Equal(t, http.StatusCreated, resp.Code)

		resp = doBearerJSON(t, handler, "GET", "/api/forms/"+strconv.Itoa(form.ID), tokens.AccessToken, "")
		require.Equal(t, http.StatusOK, resp.Code)

		var got model.Form
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))
		require.Len(t, got.Fields, 2)
		assert.Equal(t, "Name", got.Fields[0].Label)
		assert.Equal(t, "Age", got.Fields[1].Label)
	})

	t.Run("another owner sees nothing", func(t *testing.T) {
		other := registerAndLogin(t, handler, "grace@example.com")

		resp := doBearerJSON(t, handler, "GET", "/api/forms", other.AccessToken, "")
		require.Equal(t, http.StatusOK, resp.Code)
		var body struct {
			Forms []model.Form `json:"forms"`
		}
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
		assert.Empty(t, body.Forms)

		resp = doBearerJSON(t, handler, "GET", "/api/forms/"+strconv.Itoa(form.ID), other.AccessToken, "")
		assert.Equal(t, http.StatusNotFound, resp.Code)
	})
}

func TestRefresh(t *testing.T) {
	app := newTestApp(t)
	handler := Wire(app)
	tokens := registerAndLogin(t, handler, "ada@example.com")

	req := httptest.NewRequest("POST", "/api/auth/refresh", nil)
	req.Header.Set("authorization", "Refresh "+tokens.RefreshToken)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)

	var refreshed tokenPair
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &refreshed))
	require.NotEmpty(t, refreshed.AccessToken)

	// the fresh access token works against the owner surface
	r := doBearerJSON(t, handler, "GET", "/api/forms", refreshed.AccessToken, "")
	assert.Equal(t, http.StatusOK, r.Code)
}

func TestLogout(t *testing.T) {
	app := newTestApp(t)
	handler := Wire(app)
	tokens := registerAndLogin(t, handler, "ada@example.com")

	t.Run("requires a token", func(t *testing.T) {
		resp := doJSON(t, handler, "POST", "/api/auth/logout", "")
		assert.Equal(t, http.StatusUnauthorized, resp.Code)
	})

	resp := doBearerJSON(t, handler, "POST", "/api/auth/logout", tokens.AccessToken, "")
	require.Equal(t, http.StatusOK, resp.Code)

	t.Run("refresh token is dead afterwards", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/auth/refresh", nil)
		req.Header.Set("authorization", "Refresh "+tokens.RefreshToken)
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		assert.Equal(t, http.StatusUnauthorized, resp.Code)
	})
}
