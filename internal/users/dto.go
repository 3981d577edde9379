package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/supermarketlabs/catalog-backend/pkg/db/models"
)

// CreateUserInput holds the validated payload to register a user.
type CreateUserInput struct {
	Username  string
	Password  string
	Email     string
	StoreName string
}

// UpdateUserInput holds optional mutation values for a user record.
type UpdateUserInput struct {
	Username *string
	Password *string
	Email    *string
}

// UserDTO is the outward representation of a user; it never carries the hash.
type UserDTO struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	StoreName string    `json:"store_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toDTO(user *models.User, storeName string) *UserDTO {
	return &UserDTO{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		StoreName: storeName,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
