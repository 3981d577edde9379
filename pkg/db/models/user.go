package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the authenticated principal. The store binding is immutable after
// creation.
type User struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Username     string    `gorm:"column:username;not null;uniqueIndex"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	Email        string    `gorm:"column:email;not null;uniqueIndex"`
	StoreID      uuid.UUID `gorm:"column:store_id;type:uuid;not null"`
	Store        *Store    `gorm:"foreignKey:StoreID"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
