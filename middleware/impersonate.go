package middleware

import (
	"errors"
	"net/http"

	tenauth "github.com/fixdesk/tenauth"
)

// ImpersonateHandler returns the endpoint a global admin posts to in
// order to enter a tenant's view. The target organization comes from
// the "org" form value (or query parameter). On success the caller is
// redirected to the home path, now scoped to the impersonated tenant;
// non-admins get 403.
func ImpersonateHandler(manager *tenauth.Manager) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		orgID := r.FormValue("org")

		err := manager.ImpersonateOrganization(r.Context(), w, r, orgID)
		switch {
		case errors.Is(err, tenauth.ErrUnauthorized):
			http.Error(w, "forbidden", http.StatusForbidden)
		case err != nil:
			http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		default:
			http.Redirect(w, r, manager.Config().Guard.HomePath, http.StatusFound)
		}
	})
}

// StopImpersonatingHandler returns the endpoint that exits the
// impersonated view and sends the restored admin back to the admin
// area. Calling it without an active impersonation is a harmless
// no-op that still redirects.
func StopImpersonatingHandler(manager *tenauth.Manager) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := manager.StopImpersonating(r.Context(), w, r); err != nil {
			http.Error(w, "service unavailable", http.StatusServiceUnavailable)
			return
		}
		http.Redirect(w, r, manager.Config().Guard.AdminPath, http.StatusFound)
	})
}

// LogoutHandler clears the session cookie and redirects to the login
// page.
func LogoutHandler(manager *tenauth.Manager) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		manager.Logout(w)
		http.Redirect(w, r, manager.Config().Guard.LoginPath, http.StatusFound)
	})
}
