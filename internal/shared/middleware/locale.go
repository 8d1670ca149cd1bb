package middleware

import (
	"context"
	"net/http"

	"github.com/emiliopalmerini/huesite/internal/domain"
	"github.com/emiliopalmerini/huesite/internal/i18n"
)

const translatorKey contextKey = "translator"

// Locale resolves the request locale from the lang cookie, then
// Accept-Language, and stores its translator in the context.
func Locale(catalog *i18n.Catalog) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var cookieLang string
			if c, err := r.Cookie(domain.LocaleCookie); err == nil {
				cookieLang = c.Value
			}
			tag := catalog.Match(cookieLang, r.Header.Get("Accept-Language"))
			w.Header().Add("Vary", "Accept-Language")
			ctx := context.WithValue(r.Context(), translatorKey, catalog.Translator(tag))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetTranslator returns the request translator. ok is false outside the
// Locale middleware.
func GetTranslator(ctx context.Context) (i18n.Translator, bool) {
	t, ok := ctx.Value(translatorKey).(i18n.Translator)
	return t, ok
}
