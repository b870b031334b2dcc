package middleware

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/cantis/FlaskFactor2/internal/web/templates/layout"
)

// Flash categories; the layout styles each as .flash-<category>
const (
	FlashSuccess = "success"
	FlashInfo    = "info"
	FlashError   = "error"
)

const (
	flashCookieName = "flash"
	flashContextKey = contextKey("flash")
	flashMaxAge     = 60
)

func flashCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     flashCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// SetFlash queues a message for the next page the browser loads
func SetFlash(w http.ResponseWriter, category, message string) {
	http.SetCookie(w, flashCookie(url.QueryEscape(category+":"+message), flashMaxAge))
}

// GetFlash returns the message consumed by Flash for this request, if any
func GetFlash(ctx context.Context) *layout.FlashMessage {
	flash, _ := ctx.Value(flashContextKey).(*layout.FlashMessage)
	return flash
}

// Flash moves a queued message from its cookie into the request context.
// The message is shown once: the cookie is expired in the same response.
func Flash() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(flashCookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			http.SetCookie(w, flashCookie("", -1))
			ctx := context.WithValue(r.Context(), flashContextKey, parseFlash(cookie.Value))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func parseFlash(value string) *layout.FlashMessage {
	if decoded, err := url.QueryUnescape(value); err == nil {
		value = decoded
	}
	category, message, ok := strings.Cut(value, ":")
	if !ok {
		return &layout.FlashMessage{Type: FlashInfo, Message: value}
	}
	return &layout.FlashMessage{Type: category, Message: message}
}
