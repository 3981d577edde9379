package controllers

import (
	"net/http"

	"github.com/supermarketlabs/catalog-backend/api/middleware"
	"github.com/supermarketlabs/catalog-backend/internal/authz"
	pkgerrors "github.com/supermarketlabs/catalog-backend/pkg/errors"
)

// resolvePrincipal turns the request's verified claims into a Principal.
func resolvePrincipal(r *http.Request, gate *authz.Gate) (*authz.Principal, error) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	return gate.Resolve(r.Context(), claims)
}
