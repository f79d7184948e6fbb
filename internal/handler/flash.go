package handler

import (
	"net/http"
	"net/url"
	"strings"
)

// Flash is a transient, dismissible notice shown once after a redirect.
// Level is "success" or "error".
type Flash struct {
	Level   string
	Message string
}

const flashCookie = "flash"

// setFlash stores a one-shot notice in a cookie. The value is query-escaped
// because cookie values cannot carry spaces or semicolons.
func setFlash(w http.ResponseWriter, level, message string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    url.QueryEscape(level + ":" + message),
		Path:     "/",
		HttpOnly: true,
	})
}

// popFlash reads and clears the notice cookie. The zero Flash is returned
// when no notice is pending or the cookie is malformed.
func popFlash(w http.ResponseWriter, r *http.Request) Flash {
	c, err := r.Cookie(flashCookie)
	if err != nil {
		return Flash{}
	}
	// Clear regardless of whether the value parses.
	http.SetCookie(w, &http.Cookie{
		Name:   flashCookie,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
	raw, err := url.QueryUnescape(c.Value)
	if err != nil {
		return Flash{}
	}
	level, message, ok := strings.Cut(raw, ":")
	if !ok {
		return Flash{}
	}
	return Flash{Level: level, Message: message}
}
