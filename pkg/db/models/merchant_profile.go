package models

import (
	"time"

	"github.com/google/uuid"
)

// MerchantProfile carries the receipt header block. One row per install.
type MerchantProfile struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	DisplayName string    `gorm:"column:display_name;not null"`
	BranchName  string    `gorm:"column:branch_name;not null;default:''"`
	Address     string    `gorm:"column:address;not null;default:''"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
