package routes

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-chi/render"
	"github.com/mattn/go-sqlite3"
	"github.com/mbolis/instaforms/app"
	"github.com/mbolis/instaforms/httpx"
	"github.com/mbolis/instaforms/log"
	"github.com/mbolis/instaforms/validation"
	"golang.org/x/crypto/bcrypt"
)

func Register(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		err := render.DecodeJSON(r.Body, &body)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		if !validation.ValidEmail(body.Email) {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "register.email", "enter a valid email address")
			return
		}
		if len(body.Password) < 8 {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "register.password", "password must be at least 8 characters long")
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			httpx.LogInternalError(w, "register.hash_password", err)
			return
		}

		var userID int
		err = app.QueryRowContext(r.Context(), `
			INSERT INTO user (email, password_hash) VALUES (?, ?)
			RETURNING id`,
			body.Email, string(hash),
		).Scan(&userID)
		var sqlErr sqlite3.Error
		if errors.As(err, &sqlErr) && sqlErr.Code == sqlite3.ErrConstraint {
			httpx.LogStatusMsg(w, http.StatusConflict, log.DebugLevel, "db.insert_user.unique", "a user with this email already exists")
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.insert_user", err)
			return
		}

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"user": map[string]any{
				"id":    userID,
				"email": body.Email,
			},
			"message": "user registered successfully",
		})
	}
}

func Login(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok {
			httpx.LogStatus(w, http.StatusUnauthorized, log.DebugLevel, "login.basic_auth")
			return
		}

		body := url.Values{
			"grant_type": {"password"},
			"username":   {user},
			"password":   {pass},
		}
		r.Body = io.NopCloser(strings.NewReader(body.Encode()))
		r.Header.Set("content-type", "application/x-www-form-urlencoded")
		r.Header.Set("content-length", strconv.Itoa(len(body.Encode())))
		app.UserCredentials(w, r)
	}
}

// Logout deletes every token row of the caller. Refresh stops working
// immediately; access tokens are stateless and only lapse at their TTL.
func Logout(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middlewareUserID(w, r)
		if !ok {
			return
		}

		_, err := app.ExecContext(r.Context(), `
			DELETE FROM token
			WHERE email = (SELECT email FROM user WHERE id = ?)`,
			userID,
		)
		if err != nil {
			httpx.LogInternalError(w, "db.delete_tokens", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"message": "logged out successfully",
		})
	}
}

var reRefreshToken = regexp.MustCompile(`(?i)^refresh\s+(.*)`)

func Refresh(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("authorization")
		match := reRefreshToken.FindStringSubmatch(auth)
		if len(match) == 0 {
			httpx.LogStatus(w, http.StatusUnauthorized, log.DebugLevel, "refresh.token")
			return
		}
		token := match[1]

		body := url.Values{
			"grant_type":    {"refresh_token"},
			"refresh_token": {token},
		}

		req, err := http.NewRequest("POST", "/", strings.NewReader(body.Encode()))
		if err != nil {
			httpx.LogInternalError(w, "refresh.new_request", err)
			return
		}
		req.Header.Set("content-type", "application/x-www-form-urlencoded")
		req.Header.Set("content-length", strconv.Itoa(len(body.Encode())))

		resp := httpx.NewResponseBuffer()
		app.UserCredentials(resp, req)
		resp.Flush(w)
	}
}
