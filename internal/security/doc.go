// Package security holds the browser-facing protections of the catalog UI:
// CSRF tokens on every form, response security headers, and the scs session
// manager that carries one-shot flash messages between a write and the
// redirect that follows it.
//
// Middleware order in the router:
//
//	router.Use(SecurityHeadersMiddleware())
//	router.Use(sessions.SessionLoadSave())
//	router.Use(CSRFMiddleware(secret, secureCookies))
package security
