package testutil

import (
	"net/http"

	id "auditlink/pkg/domain"
	"auditlink/pkg/requestcontext"
)

// WithPrincipal puts caller on the request context the way the auth
// middleware does, for tests that call handlers without a token.
func WithPrincipal(req *http.Request, caller string) *http.Request {
	ctx := requestcontext.WithPrincipal(req.Context(), id.Principal(caller))
	return req.WithContext(ctx)
}

// WithBearer sets the Authorization header for tests that run the full
// middleware chain.
func WithBearer(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}
