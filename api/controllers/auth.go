package controllers

import (
	"net/http"

	"github.com/supermarketlabs/catalog-backend/api/responses"
	"github.com/supermarketlabs/catalog-backend/api/validators"
	authsvc "github.com/supermarketlabs/catalog-backend/internal/auth"
	"github.com/supermarketlabs/catalog-backend/pkg/logger"
)

// Login exchanges credentials for an access token.
func Login(svc authsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload authsvc.LoginRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp, err := svc.Login(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, resp)
	}
}
