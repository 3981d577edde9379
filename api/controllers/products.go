package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/supermarketlabs/catalog-backend/api/responses"
	"github.com/supermarketlabs/catalog-backend/api/validators"
	"github.com/supermarketlabs/catalog-backend/internal/authz"
	productsvc "github.com/supermarketlabs/catalog-backend/internal/products"
	"github.com/supermarketlabs/catalog-backend/pkg/enums"
	pkgerrors "github.com/supermarketlabs/catalog-backend/pkg/errors"
	"github.com/supermarketlabs/catalog-backend/pkg/logger"
)

type createProductRequest struct {
	Name          string          `json:"name" validate:"required"`
	Category      string          `json:"category" validate:"required"`
	Price         decimal.Decimal `json:"price" validate:"required"`
	StockQuantity int             `json:"stock_quantity" validate:"gte=0"`
	Supplier      string          `json:"supplier" validate:"required"`
	Description   *string         `json:"description,omitempty"`
}

type updateProductRequest struct {
	Name        string          `json:"name" validate:"required"`
	Category    string          `json:"category" validate:"required"`
	Price       decimal.Decimal `json:"price" validate:"required"`
	Supplier    string          `json:"supplier" validate:"required"`
	Description *string         `json:"description,omitempty"`
	Version     int64           `json:"version" validate:"required,min=1"`
}

type stockRequest struct {
	Amount int `json:"amount" validate:"required"`
}

// CreateProduct handles product creation for the caller's store.
func CreateProduct(svc productsvc.Service, gate *authz.Gate, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, err := resolvePrincipal(r, gate)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		category, err := enums.ParseProductCategory(strings.TrimSpace(payload.Category))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category"))
			return
		}

		product, err := svc.CreateProduct(r.Context(), principal, productsvc.CreateProductInput{
			Name:          payload.Name,
			Category:      category,
			Price:         payload.Price,
			StockQuantity: payload.StockQuantity,
			Supplier:      payload.Supplier,
			Description:   payload.Description,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// GetProduct returns one product from the caller's store.
func GetProduct(svc productsvc.Service, gate *authz.Gate, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, err := resolvePrincipal(r, gate)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := parseProductID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.GetProduct(r.Context(), principal, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// ListProducts returns the caller's store catalog.
func ListProducts(svc productsvc.Service, gate *authz.Gate, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, err := resolvePrincipal(r, gate)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		products, err := svc.ListProducts(r.Context(), principal)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, products)
	}
}

// UpdateProduct replaces the descriptive fields of a product.
func UpdateProduct(svc productsvc.Service, gate *authz.Gate, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, err := resolvePrincipal(r, gate)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := parseProductID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		category, err := enums.ParseProductCategory(strings.TrimSpace(payload.Category))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category"))
			return
		}

		product, err := svc.UpdateProduct(r.Context(), principal, productID, productsvc.UpdateProductInput{
			Name:        payload.Name,
			Category:    category,
			Price:       payload.Price,
			Supplier:    payload.Supplier,
			Description: payload.Description,
			Version:     payload.Version,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// IncreaseStock adds stock to a product.
func IncreaseStock(svc productsvc.Service, gate *authz.Gate, logg *logger.Logger) http.HandlerFunc {
	return stockHandler(gate, logg, svc.IncreaseStock)
}

// DecreaseStock removes stock from a product.
func DecreaseStock(svc productsvc.Service, gate *authz.Gate, logg *logger.Logger) http.HandlerFunc {
	return stockHandler(gate, logg, svc.DecreaseStock)
}

func stockHandler(gate *authz.Gate, logg *logger.Logger, mutate func(ctx context.Context, principal *authz.Principal, productID uuid.UUID, qty int) (*productsvc.ProductDTO, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, err := resolvePrincipal(r, gate)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := parseProductID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload stockRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := mutate(r.Context(), principal, productID, payload.Amount)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// DeleteProduct removes a product from the caller's store.
func DeleteProduct(svc productsvc.Service, gate *authz.Gate, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, err := resolvePrincipal(r, gate)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := parseProductID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		deletedID, err := svc.DeleteProduct(r.Context(), principal, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]uuid.UUID{"id": deletedID})
	}
}

func parseProductID(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "productID")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id")
	}
	return id, nil
}
