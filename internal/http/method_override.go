package http

import (
	"mime"
	"net/http"
	"strings"
)

// MethodOverrideField is the hidden form field naming the intended method.
const MethodOverrideField = "_method"

// MethodOverrideHeader is honoured for non-form clients.
const MethodOverrideHeader = "X-HTTP-Method-Override"

var overridableMethods = map[string]bool{
	http.MethodDelete: true,
	http.MethodPut:    true,
	http.MethodPatch:  true,
}

// MethodOverride rewrites POST requests carrying _method (form field) or
// X-HTTP-Method-Override (header) into that method before routing, so HTML
// forms can reach DELETE routes. It must wrap the engine: gin selects the
// route before any middleware runs.
func MethodOverride(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if method := overrideMethod(r); overridableMethods[method] {
				r.Method = method
			}
		}
		next.ServeHTTP(w, r)
	})
}

func overrideMethod(r *http.Request) string {
	if h := r.Header.Get(MethodOverrideHeader); h != "" {
		return strings.ToUpper(strings.TrimSpace(h))
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/x-www-form-urlencoded" {
		return ""
	}
	// ParseForm caches the body in r.PostForm, so handlers and CSRF
	// validation can still read the submitted fields afterwards.
	if err := r.ParseForm(); err != nil {
		return ""
	}
	return strings.ToUpper(strings.TrimSpace(r.PostForm.Get(MethodOverrideField)))
}
