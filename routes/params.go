package routes

import (
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/mbolis/instaforms/httpx"
	"github.com/mbolis/instaforms/log"
	"github.com/mbolis/instaforms/routes/middlewares"
)

func urlParamId(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil {
		httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param."+name)
		return 0, false
	}
	return id, true
}

func middlewareUserID(w http.ResponseWriter, r *http.Request) (int, bool) {
	userID, ok := middlewares.UserID(r)
	if !ok {
		httpx.LogStatus(w, http.StatusUnauthorized, log.DebugLevel, "request.user")
		return 0, false
	}
	return userID, true
}

// clientIP is best-effort: first hop of X-Forwarded-For when present,
// otherwise the connection's remote host. Not authenticated.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
