package httpx

import (
	"fmt"
	"net/http"

	"github.com/mbolis/instaforms/log"
)

// Error responder helpers. Every handler reports failures through one of
// these, tagging the log line with a dotted code ("db.insert_form",
// "request.parse_body") so log output can be grepped by call site.

// LogInternalError logs err at error level under code and replies 500
// with the default status text. The error itself never leaves the server.
func LogInternalError(w http.ResponseWriter, code string, err error) {
	log.Errorf("%s: %s", code, err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// LogNotFound logs the missing id at debug level and replies 404 with an
// empty body.
func LogNotFound(w http.ResponseWriter, code string, id any) {
	log.Debugf("%s: not found (%v)", code, id)
	w.WriteHeader(http.StatusNotFound)
}

// LogStatus logs code at the given level and replies with status and its
// default status text.
func LogStatus(w http.ResponseWriter, status int, level log.Level, code string) {
	log.Log(level, code)
	http.Error(w, http.StatusText(status), status)
}

// LogStatusMsg is LogStatus with a formatted message, which is both logged
// and sent as the response body.
func LogStatusMsg(w http.ResponseWriter, status int, level log.Level, code string, msg string, args ...any) {
	errMsg := fmt.Sprintf(msg, args...)
	log.Log(level, code+":", errMsg)
	http.Error(w, errMsg, status)
}
