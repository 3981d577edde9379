package models

import (
	"time"

	"github.com/google/uuid"
)

// Store represents the tenant boundary; every product and user belongs to
// exactly one store.
type Store struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name      string    `gorm:"column:name;not null;uniqueIndex"`
	Products  []Product `gorm:"foreignKey:StoreID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
