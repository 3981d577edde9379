package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/supermarketlabs/catalog-backend/api/middleware"
	"github.com/supermarketlabs/catalog-backend/api/responses"
	"github.com/supermarketlabs/catalog-backend/api/validators"
	usersvc "github.com/supermarketlabs/catalog-backend/internal/users"
	pkgerrors "github.com/supermarketlabs/catalog-backend/pkg/errors"
	"github.com/supermarketlabs/catalog-backend/pkg/logger"
)

type createUserRequest struct {
	Username  string `json:"username" validate:"required,min=3,max=64"`
	Password  string `json:"password" validate:"required,min=8,max=128"`
	Email     string `json:"email" validate:"required,email"`
	StoreName string `json:"store_name" validate:"required,min=1,max=128"`
}

type updateUserRequest struct {
	Username *string `json:"username,omitempty" validate:"omitempty,min=3,max=64"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=8,max=128"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
}

// RegisterUser handles public account registration.
func RegisterUser(svc usersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createUserRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.CreateUser(r.Context(), usersvc.CreateUserInput{
			Username:  payload.Username,
			Password:  payload.Password,
			Email:     payload.Email,
			StoreName: payload.StoreName,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, user)
	}
}

// GetUser returns the caller's own account.
func GetUser(svc usersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := authorizeSelf(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.GetUser(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, user)
	}
}

// UpdateUser applies changes to the caller's own account.
func UpdateUser(svc usersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := authorizeSelf(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateUserRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.UpdateUser(r.Context(), userID, usersvc.UpdateUserInput{
			Username: payload.Username,
			Password: payload.Password,
			Email:    payload.Email,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, user)
	}
}

// DeleteUser removes the caller's own account.
func DeleteUser(svc usersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := authorizeSelf(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		deletedID, err := svc.DeleteUser(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]uuid.UUID{"id": deletedID})
	}
}

// authorizeSelf parses the path user ID and confirms it matches the caller.
// Account management is strictly self-service.
func authorizeSelf(r *http.Request) (uuid.UUID, error) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}

	raw := chi.URLParam(r, "userID")
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id")
	}

	if userID != claims.UserID {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "access denied")
	}
	return userID, nil
}
