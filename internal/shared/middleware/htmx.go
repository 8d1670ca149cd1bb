package middleware

import (
	"context"
	"net/http"
)

type contextKey string

const htmxKey contextKey = "htmx"

// HTMXRequest describes a request issued by htmx from a rendered page.
type HTMXRequest struct {
	// CurrentURL is the address of the page that made the request.
	CurrentURL string
}

// HTMX marks requests carrying HX-Request so the theme endpoints can answer
// with fragments for the page the visitor is on.
func HTMX(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("HX-Request") == "true" {
			req := HTMXRequest{CurrentURL: r.Header.Get("HX-Current-URL")}
			r = r.WithContext(context.WithValue(r.Context(), htmxKey, req))
		}
		next.ServeHTTP(w, r)
	})
}

func GetHTMX(r *http.Request) (HTMXRequest, bool) {
	req, ok := r.Context().Value(htmxKey).(HTMXRequest)
	return req, ok
}

func IsHTMX(r *http.Request) bool {
	_, ok := GetHTMX(r)
	return ok
}
